// Package cli implements the questgraph command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/questgraph/pkg/buildinfo"
	"github.com/matzehuels/questgraph/pkg/cache"
	"github.com/matzehuels/questgraph/pkg/config"
	"github.com/matzehuels/questgraph/pkg/datasource"
	"github.com/matzehuels/questgraph/pkg/errors"
	"github.com/matzehuels/questgraph/pkg/layout"
	"github.com/matzehuels/questgraph/pkg/observability"
	"github.com/matzehuels/questgraph/pkg/progress"
	"github.com/matzehuels/questgraph/pkg/quest"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "questgraph"

	// dataEnv overrides the default data pack directory.
	dataEnv = "QUESTGRAPH_DATA"

	// layoutTTL is how long cached layouts stay valid.
	layoutTTL = 30 * 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	flags    globalFlags
	registry *prometheus.Registry
	hooks    observability.Hooks
}

type globalFlags struct {
	verbose     bool
	dataDir     string
	lang        string
	configPath  string
	noCache     bool
	metricsAddr string
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	reg := prometheus.NewRegistry()
	return &CLI{
		Logger:   newLogger(w, level),
		registry: reg,
		hooks:    observability.NewPrometheus(reg).Hooks(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "questgraph explores quest prerequisite graphs",
		Long:         `questgraph searches a quest catalog and draws the graph of everything a quest requires and everything it unlocks.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.flags.verbose {
				c.SetLogLevel(LogDebug)
			}
			if c.flags.metricsAddr != "" {
				return c.serveMetrics(cmd.Context(), c.flags.metricsAddr)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.flags.dataDir, "data", defaultDataDir(), "directory holding <lang>.toml data packs")
	pf.StringVar(&c.flags.lang, "lang", "", "language for quests, rewards and duties (overrides the config file)")
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default "+filepath.Join("$XDG_CONFIG_HOME", appName, "config.toml")+")")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable the layout cache")
	pf.StringVar(&c.flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Setup
// =============================================================================

// loadConfig reads the config file and applies the --lang override.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath())
	if err != nil {
		return cfg, err
	}
	if c.flags.lang != "" {
		cfg.Language = config.Language{Quests: c.flags.lang, Rewards: c.flags.lang, Instances: c.flags.lang}
	}
	return cfg, nil
}

// loadCatalog builds the quest catalog for the configured languages.
func (c *CLI) loadCatalog(ctx context.Context, cfg config.Config) (*quest.Manager, error) {
	langs, err := quest.ParseLanguages(cfg.Language)
	if err != nil {
		return nil, err
	}
	src, err := datasource.NewTOMLProvider(c.flags.dataDir)
	if err != nil {
		return nil, err
	}

	m := quest.NewManager(src, quest.BuildOptions{Logger: c.Logger, Hooks: c.hooks.Pipeline})
	prog := newTimer(c.Logger)
	cat, err := m.Rebuild(ctx, langs)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d quests (%s)", cat.Len(), langs.Quests))
	return m, nil
}

// engines returns every layout engine, each wrapped in the layout cache.
func (c *CLI) engines() (map[string]layout.Engine, error) {
	store, err := newCache(c.flags.noCache)
	if err != nil {
		return nil, err
	}
	wrap := func(e layout.Engine) layout.Engine {
		return layout.NewCached(e, store,
			layout.WithTTL(layoutTTL),
			layout.WithCacheHooks(c.hooks.Cache),
			layout.WithLogger(c.Logger))
	}
	return map[string]layout.Engine{
		config.EngineGraphviz: wrap(layout.NewGraphviz()),
		config.EngineLayered:  wrap(layout.NewLayered()),
	}, nil
}

// engine returns the engine selected by cfg.
func (c *CLI) engine(cfg config.Config) (layout.Engine, error) {
	all, err := c.engines()
	if err != nil {
		return nil, err
	}
	e, ok := all[cfg.Graph.Engine]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidEngine, "unknown layout engine %q", cfg.Graph.Engine)
	}
	return e, nil
}

// loadProgress reads the completed-quest file. A malformed file is logged
// and treated as empty so drawing still works.
func (c *CLI) loadProgress() *progress.Store {
	store := progress.NewStore(c.progressPath())
	if err := store.Load(); err != nil {
		c.Logger.Warn("ignoring progress file", "path", store.Path(), "err", err)
	}
	return store
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Metrics
// =============================================================================

// serveMetrics exposes the CLI's registry until ctx is done.
func (c *CLI) serveMetrics(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "listen on %s", addr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler(c.registry))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			c.Logger.Warn("metrics server stopped", "err", err)
		}
	}()
	c.Logger.Debug("serving metrics", "addr", ln.Addr().String())
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/questgraph/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// configDir returns the config directory (~/.config/questgraph/).
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// defaultDataDir is $QUESTGRAPH_DATA, or ~/.local/share/questgraph.
func defaultDataDir() string {
	if dir := os.Getenv(dataEnv); dir != "" {
		return dir
	}
	dir, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "data"
	}
	return dir
}

func (c *CLI) configPath() string {
	if c.flags.configPath != "" {
		return c.flags.configPath
	}
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// progressPath is progress.toml next to the config file.
func (c *CLI) progressPath() string {
	path := c.configPath()
	if path == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(path), "progress.toml")
}
