package layout

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/questgraph/pkg/cache"
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/observability"
	"github.com/matzehuels/questgraph/pkg/questgraph"
)

const cacheKeyType = "layout"

// CachedEngine reuses layouts of identical subgraphs. Geometry is stored as
// JSON under a key derived from the subgraph's fingerprint, the wrapped
// engine's name and the options.
type CachedEngine struct {
	inner  Engine
	cache  cache.Cache
	ttl    time.Duration
	hooks  observability.CacheHooks
	logger *log.Logger
}

// CachedOption configures a CachedEngine.
type CachedOption func(*CachedEngine)

// WithTTL sets the expiry of stored layouts. Zero keeps them forever.
func WithTTL(ttl time.Duration) CachedOption {
	return func(e *CachedEngine) { e.ttl = ttl }
}

// WithCacheHooks sets the cache hooks.
func WithCacheHooks(h observability.CacheHooks) CachedOption {
	return func(e *CachedEngine) { e.hooks = h }
}

// WithLogger sets the logger used for cache failures.
func WithLogger(l *log.Logger) CachedOption {
	return func(e *CachedEngine) { e.logger = l }
}

// NewCached wraps inner with c.
func NewCached(inner Engine, c cache.Cache, opts ...CachedOption) *CachedEngine {
	e := &CachedEngine{inner: inner, cache: c}
	for _, o := range opts {
		o(e)
	}
	if e.hooks == nil {
		e.hooks = observability.NoopCacheHooks{}
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return e
}

// Name returns the wrapped engine's name.
func (e *CachedEngine) Name() string { return e.inner.Name() }

// Layout implements [Engine]. Cache failures are logged and fall through
// to the wrapped engine.
func (e *CachedEngine) Layout(ctx context.Context, g *questgraph.Graph, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	key := cache.LayoutKey(e.inner.Name(), Fingerprint(g), opts.Arrowheads, opts.NodeSep, opts.RankSep)

	data, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("layout cache read failed", "err", err)
	}
	if ok {
		if r, ok := decodeResult(data, g); ok {
			e.hooks.OnCacheHit(ctx, cacheKeyType)
			return r, nil
		}
		e.logger.Debug("discarding stale layout cache entry", "key", key)
	}
	e.hooks.OnCacheMiss(ctx, cacheKeyType)

	r, err := e.inner.Layout(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	data, err = json.Marshal(r)
	if err != nil {
		e.logger.Warn("encode layout", "err", err)
		return r, nil
	}
	if err := e.cache.Set(ctx, key, data, e.ttl); err != nil {
		e.logger.Warn("layout cache write failed", "err", err)
		return r, nil
	}
	e.hooks.OnCacheSet(ctx, cacheKeyType, len(data))
	return r, nil
}

// decodeResult restores a cached layout and reattaches the node kinds,
// which are not serialized. It fails if the entry does not match g.
func decodeResult(data []byte, g *questgraph.Graph) (*Result, bool) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false
	}
	if len(r.Nodes) != len(g.Nodes) || r.Focus != g.Focus {
		return nil, false
	}
	for i := range r.Nodes {
		n, ok := g.Node(r.Nodes[i].ID)
		if !ok {
			return nil, false
		}
		r.Nodes[i].Kind = n.Kind
	}
	r.reindex()
	return &r, true
}

type fingerprintNode struct {
	ID    uint32   `json:"id"`
	Label string   `json:"label"`
	Size  geom.Vec `json:"size"`
}

type fingerprint struct {
	Focus uint32            `json:"focus"`
	Nodes []fingerprintNode `json:"nodes"`
	Edges []questgraph.Edge `json:"edges"`
}

// Fingerprint returns a content hash of everything a layout depends on:
// the focus, node ids, labels and sizes, and the edges, in order.
func Fingerprint(g *questgraph.Graph) string {
	f := fingerprint{Focus: g.Focus, Nodes: make([]fingerprintNode, len(g.Nodes)), Edges: g.Edges}
	for i, n := range g.Nodes {
		f.Nodes[i] = fingerprintNode{ID: n.ID, Label: n.Label, Size: n.Size}
	}
	data, _ := json.Marshal(f)
	return cache.Hash(data)
}
