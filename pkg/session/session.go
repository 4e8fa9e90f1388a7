// Package session runs graph recomputations for one viewer.
//
// A Session owns at most one flight: a background computation that builds
// the subgraph of a focus quest and lays it out. Starting a new flight
// cancels the previous one. The finished [layout.Result] is installed by
// an atomic swap and read lock-free by the drawing goroutine through
// [Session.Result], so a Session satisfies canvas.Source.
//
// # Usage
//
//	sess := session.New(session.Options{
//	    Catalogs: manager,
//	    Builder:  questgraph.NewBuilder(measurer),
//	    Config:   cfg,
//	})
//	defer sess.Close()
//
//	f := sess.Show(questID)
//	<-f.Done()
//	res := sess.Result()
package session

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/questgraph/pkg/config"
	"github.com/matzehuels/questgraph/pkg/errors"
	"github.com/matzehuels/questgraph/pkg/layout"
	"github.com/matzehuels/questgraph/pkg/observability"
	"github.com/matzehuels/questgraph/pkg/quest"
	"github.com/matzehuels/questgraph/pkg/questgraph"
)

// Catalogs yields the quest catalog to build from. *quest.Manager
// satisfies it; a nil catalog means none is loaded yet.
type Catalogs interface {
	Catalog() *quest.Catalog
}

// Options configures a Session. Catalogs and Builder are required.
type Options struct {
	Catalogs Catalogs
	Builder  *questgraph.Builder

	// Engines maps config engine names to engines. Nil selects a Graphviz
	// and a layered engine.
	Engines map[string]layout.Engine

	Config config.Config
	Logger *log.Logger
	Hooks  observability.PipelineHooks
}

// Session coordinates flights. It is safe for concurrent use.
type Session struct {
	catalogs Catalogs
	builder  *questgraph.Builder
	engines  map[string]layout.Engine
	logger   *log.Logger
	hooks    observability.PipelineHooks

	cfg       atomic.Pointer[config.Config]
	flight    atomic.Pointer[Flight]
	installed atomic.Pointer[installed]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type installed struct {
	flight *Flight
	result *layout.Result
}

// Flight is one recomputation for a focus quest.
type Flight struct {
	id     string
	focus  uint32
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// ID returns the request id used in log lines.
func (f *Flight) ID() string { return f.id }

// Focus returns the quest the flight computes.
func (f *Flight) Focus() uint32 { return f.focus }

// Done is closed when the flight finishes, fails or is cancelled.
func (f *Flight) Done() <-chan struct{} { return f.done }

// Err returns the flight's error once Done is closed. A superseded
// flight reports context.Canceled.
func (f *Flight) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// New creates a session without a focus.
func New(opts Options) *Session {
	s := &Session{
		catalogs: opts.Catalogs,
		builder:  opts.Builder,
		engines:  opts.Engines,
		logger:   opts.Logger,
		hooks:    opts.Hooks,
	}
	if s.engines == nil {
		s.engines = map[string]layout.Engine{
			config.EngineGraphviz: layout.NewGraphviz(),
			config.EngineLayered:  layout.NewLayered(),
		}
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.hooks == nil {
		s.hooks = observability.NoopPipelineHooks{}
	}
	cfg := opts.Config
	if cfg.Graph.Engine == "" {
		cfg.Graph = config.Default().Graph
	}
	s.cfg.Store(&cfg)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Focus returns the focus of the current flight, or 0 when nothing has
// been shown.
func (s *Session) Focus() uint32 {
	if f := s.flight.Load(); f != nil {
		return f.focus
	}
	return 0
}

// Result returns the layout of the current flight, or nil while it is
// still running or after it failed.
func (s *Session) Result() *layout.Result {
	in := s.installed.Load()
	if in == nil || in.flight != s.flight.Load() {
		return nil
	}
	return in.result
}

// Flight returns the current flight, or nil.
func (s *Session) Flight() *Flight { return s.flight.Load() }

// Config returns the settings the next flight will use.
func (s *Session) Config() config.Config { return *s.cfg.Load() }

// SetConfig installs new settings and starts a redraw when they change
// the graph's topology or layout.
func (s *Session) SetConfig(cfg config.Config) {
	old := s.cfg.Swap(&cfg)
	if config.TopologyChanged(*old, cfg) {
		s.logger.Debug("graph settings changed, redrawing")
		s.Redraw()
	}
}

// Show starts a flight for focus. If the current flight already has this
// focus and did not fail, Show returns it without starting another.
func (s *Session) Show(focus uint32) *Flight {
	return s.start(focus, false)
}

// Redraw recomputes the current focus. It returns nil when nothing has
// been shown yet.
func (s *Session) Redraw() *Flight {
	focus := s.Focus()
	if focus == 0 {
		return nil
	}
	return s.start(focus, true)
}

// Close cancels the running flight and waits for it to return.
func (s *Session) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

func (s *Session) start(focus uint32, force bool) *Flight {
	if cur := s.flight.Load(); !force && cur != nil && cur.focus == focus && !failed(cur) {
		return cur
	}
	if s.ctx.Err() != nil {
		f := &Flight{id: uuid.NewString(), focus: focus, cancel: func() {}, done: make(chan struct{}), err: s.ctx.Err()}
		close(f.done)
		return f
	}

	ctx, cancel := context.WithCancel(s.ctx)
	f := &Flight{id: uuid.NewString(), focus: focus, cancel: cancel, done: make(chan struct{})}
	if prev := s.flight.Swap(f); prev != nil {
		prev.cancel()
	}
	s.installed.Store(nil)

	s.wg.Add(1)
	go s.run(ctx, f)
	return f
}

func failed(f *Flight) bool {
	err := f.Err()
	return err != nil && !stderrors.Is(err, context.Canceled)
}

func (s *Session) run(ctx context.Context, f *Flight) {
	defer s.wg.Done()
	defer close(f.done)
	defer f.cancel()

	logger := s.logger.With("request", f.id, "quest", f.focus)
	logger.Debug("flight started")
	start := time.Now()

	res, err := s.compute(ctx, f.focus)
	if err != nil {
		f.err = err
		if stderrors.Is(err, context.Canceled) {
			logger.Debug("flight cancelled", "elapsed", time.Since(start))
		} else {
			logger.Error("graph computation failed", "err", err)
		}
		return
	}
	if s.flight.Load() != f {
		f.err = context.Canceled
		logger.Debug("flight superseded", "elapsed", time.Since(start))
		return
	}
	s.installed.Store(&installed{flight: f, result: res})
	logger.Debug("flight complete", "nodes", len(res.Nodes), "edges", len(res.Edges), "elapsed", time.Since(start))
}

func (s *Session) compute(ctx context.Context, focus uint32) (*layout.Result, error) {
	cat := s.catalogs.Catalog()
	if cat == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no quest catalog loaded")
	}
	cfg := s.Config()
	engine, ok := s.engines[cfg.Graph.Engine]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidEngine, "unknown layout engine %q", cfg.Graph.Engine)
	}

	g, err := s.builder.Build(ctx, cat, focus, questgraph.Options{CompressMSQ: cfg.Graph.CompressMSQ})
	if err != nil {
		return nil, err
	}

	s.hooks.OnLayoutStart(ctx, engine.Name(), len(g.Nodes))
	start := time.Now()
	res, err := engine.Layout(ctx, g, layout.Options{Arrowheads: cfg.Graph.ShowArrowheads})
	s.hooks.OnLayoutComplete(ctx, engine.Name(), time.Since(start), err)
	return res, err
}
