package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/questgraph/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.Display.ShowMSQ)
	assert.True(t, cfg.Display.ShowJobAndAction)
	assert.True(t, cfg.Search.IncludeItems)
	assert.False(t, cfg.Search.IncludeActions, "action search is opt-in")
	assert.Equal(t, EngineGraphviz, cfg.Graph.Engine)
	assert.Equal(t, RGBA{0.0657, 0.175, 0, 1}, cfg.Colors.GraphMSQ)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[graph]\ncompress_msq = false\nengine = \"layered\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Graph.CompressMSQ)
	assert.Equal(t, EngineLayered, cfg.Graph.Engine)
	assert.True(t, cfg.Graph.ShowArrowheads, "unset keys keep defaults")
	assert.True(t, cfg.Display.ShowBlue)
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[graph]\nengine = \"force\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidEngine))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Search.IncludeActions = true
	cfg.Colors.GraphBlue = RGBA{0.1, 0.2, 0.3, 1}

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidateColorRange(t *testing.T) {
	cfg := Default()
	cfg.Colors.InitialBorder = RGBA{1.5, 0, 0, 1}
	assert.True(t, errors.Is(cfg.Validate(), errors.ErrCodeInvalidConfig))
}

func TestFilterFingerprint(t *testing.T) {
	a := Default()
	b := Default()
	assert.Equal(t, a.FilterFingerprint(), b.FilterFingerprint())

	b.Graph.CompressMSQ = false
	assert.Equal(t, a.FilterFingerprint(), b.FilterFingerprint(), "graph options do not affect search")

	b.Search.IncludeActions = true
	assert.NotEqual(t, a.FilterFingerprint(), b.FilterFingerprint())
}

func TestTopologyChanged(t *testing.T) {
	a := Default()
	b := Default()
	assert.False(t, TopologyChanged(a, b))

	b.Display.ShowBlue = false
	assert.False(t, TopologyChanged(a, b))

	b.Graph.ShowArrowheads = false
	assert.True(t, TopologyChanged(a, b))
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, Save(path, Default()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, log.New(os.Stderr), func(c Config) { changes <- c })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	cfg := Default()
	cfg.Graph.CompressMSQ = false
	require.NoError(t, Save(path, cfg))

	// A save can surface as several events, the first one possibly for a
	// truncated file, so wait for the final state.
	require.Eventually(t, func() bool {
		for {
			select {
			case got := <-changes:
				if !got.Graph.CompressMSQ {
					return true
				}
			default:
				return false
			}
		}
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
