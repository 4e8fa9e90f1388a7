// Package config holds the user-facing settings of questgraph.
//
// Settings are persisted as TOML. A missing file is not an error: [Load]
// returns [Default]. The core packages read settings at the start of each
// recomputation or frame and never mutate them; edits go through [Save].
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/questgraph/pkg/cache"
	"github.com/matzehuels/questgraph/pkg/errors"
)

// Layout engine names accepted in [Graph.Engine].
const (
	EngineGraphviz = "graphviz"
	EngineLayered  = "layered"
)

// Config is the full settings document.
type Config struct {
	Language Language `toml:"language"`
	Display  Display  `toml:"display"`
	Search   Search   `toml:"search"`
	Graph    Graph    `toml:"graph"`
	Colors   Colors   `toml:"colors"`
}

// Language selects the data pack language per concern.
type Language struct {
	Quests    string `toml:"quests"`
	Rewards   string `toml:"rewards"`
	Instances string `toml:"instances"`
}

// Display gates which quest categories appear in search results.
type Display struct {
	ShowMSQ             bool `toml:"show_msq"`
	ShowNormal          bool `toml:"show_normal"`
	ShowBlue            bool `toml:"show_blue"`
	ShowEmote           bool `toml:"show_emote"`
	ShowInstanceUnlocks bool `toml:"show_instance_unlocks"`
	ShowWithRewards     bool `toml:"show_with_rewards"`
	ShowJobAndAction    bool `toml:"show_job_and_action"`
}

// Search selects which sub-fields a query is matched against besides the name.
type Search struct {
	IncludeItems     bool `toml:"include_items"`
	IncludeEmotes    bool `toml:"include_emotes"`
	IncludeInstances bool `toml:"include_instances"`
	IncludeActions   bool `toml:"include_actions"`
}

// Graph holds options that change the computed graph or its layout.
type Graph struct {
	CompressMSQ    bool   `toml:"compress_msq"`
	ShowArrowheads bool   `toml:"show_arrowheads"`
	Engine         string `toml:"engine"`
}

// RGBA is a color with float components in [0,1].
type RGBA [4]float64

// Colors is the node palette.
type Colors struct {
	GraphDefault    RGBA `toml:"graph_default"`
	GraphMSQ        RGBA `toml:"graph_msq"`
	GraphBlue       RGBA `toml:"graph_blue"`
	InitialBorder   RGBA `toml:"initial_border"`
	HighlightBorder RGBA `toml:"highlight_border"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		Language: Language{Quests: "en", Rewards: "en", Instances: "en"},
		Display: Display{
			ShowMSQ:             true,
			ShowNormal:          true,
			ShowBlue:            true,
			ShowEmote:           true,
			ShowInstanceUnlocks: true,
			ShowWithRewards:     true,
			ShowJobAndAction:    true,
		},
		Search: Search{
			IncludeItems:     true,
			IncludeEmotes:    true,
			IncludeInstances: true,
		},
		Graph: Graph{
			CompressMSQ:    true,
			ShowArrowheads: true,
			Engine:         EngineGraphviz,
		},
		Colors: Colors{
			GraphDefault:    RGBA{0.482, 0.376, 0.278, 1},
			GraphMSQ:        RGBA{0.0657, 0.175, 0, 1},
			GraphBlue:       RGBA{0, 0.196, 0.657, 1},
			InitialBorder:   RGBA{0.492, 0.492, 0.5, 1},
			HighlightBorder: RGBA{0.984, 0.984, 0.984, 1},
		},
	}
}

// Load reads settings from path. Keys absent from the file keep their
// defaults. A missing file yields [Default].
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes settings to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Validate checks enumerated values and color ranges.
func (c Config) Validate() error {
	switch c.Graph.Engine {
	case EngineGraphviz, EngineLayered:
	default:
		return errors.New(errors.ErrCodeInvalidEngine, "unknown layout engine %q", c.Graph.Engine)
	}
	for name, col := range map[string]RGBA{
		"graph_default":    c.Colors.GraphDefault,
		"graph_msq":        c.Colors.GraphMSQ,
		"graph_blue":       c.Colors.GraphBlue,
		"initial_border":   c.Colors.InitialBorder,
		"highlight_border": c.Colors.HighlightBorder,
	} {
		for _, v := range col {
			if v < 0 || v > 1 {
				return errors.New(errors.ErrCodeInvalidConfig, "color %s out of range: %v", name, col)
			}
		}
	}
	return nil
}

// FilterFingerprint identifies the settings a search result depends on.
// Cached filter results are only valid for an equal fingerprint.
func (c Config) FilterFingerprint() string {
	var buf bytes.Buffer
	_ = toml.NewEncoder(&buf).Encode(struct {
		Display Display
		Search  Search
	}{c.Display, c.Search})
	return cache.Hash(buf.Bytes())
}

// TopologyChanged reports whether switching from old to new requires the
// graph to be rebuilt and laid out again.
func TopologyChanged(old, new Config) bool {
	return old.Graph != new.Graph
}
