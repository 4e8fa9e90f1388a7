package progress

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

func TestStore_Load(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    []uint32
		wantErr bool
	}{
		{name: "missing file", content: nil, want: []uint32{}},
		{name: "ids", content: ptr("completed = [3, 1, 2]\n"), want: []uint32{1, 2, 3}},
		{name: "zero ignored", content: ptr("completed = [0, 7]\n"), want: []uint32{7}},
		{name: "empty file", content: ptr(""), want: []uint32{}},
		{name: "malformed", content: ptr("completed = [\n"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "progress.toml")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}
			s := NewStore(path)
			err := s.Load()
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Completed())
			for _, id := range tt.want {
				assert.True(t, s.IsQuestComplete(id))
			}
			assert.False(t, s.IsQuestComplete(999))
		})
	}
}

func TestStore_Replace(t *testing.T) {
	s := NewStore("unused.toml")
	assert.False(t, s.IsQuestComplete(5))
	s.Replace([]uint32{5})
	assert.True(t, s.IsQuestComplete(5))
	assert.False(t, None{}.IsQuestComplete(5))
}

func TestStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.toml")
	require.NoError(t, os.WriteFile(path, []byte("completed = [1]\n"), 0o644))
	s := NewStore(path)
	require.NoError(t, s.Load())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, log.New(os.Stderr), func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("completed = [1, 2]\n"), 0o644))

	// A save can surface as several events, the first one possibly for a
	// truncated file, so wait for the final state.
	require.Eventually(t, func() bool { return s.IsQuestComplete(2) }, 5*time.Second, 20*time.Millisecond)
	assert.NotEmpty(t, changed)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func ptr(s string) *string { return &s }
