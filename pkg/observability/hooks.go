// Package observability provides hooks for metrics and tracing.
//
// Instrumentation is optional and injected: components receive a [Hooks]
// value through their constructor instead of reaching for a global
// registry. The zero value of Hooks is usable and behaves as no-op hooks.
//
// # Architecture
//
//   - Hook interfaces per event category (pipeline, cache, render)
//   - No-op default implementations
//   - A Prometheus implementation in [NewPrometheus]
//
// # Usage
//
//	prom := observability.NewPrometheus(registry)
//	hooks := observability.Hooks{Pipeline: prom, Cache: prom, Render: prom}
//	sess := session.New(session.Options{Hooks: hooks, ...})
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from catalog building, subgraph building
// and layout computation.
type PipelineHooks interface {
	// Catalog events
	OnCatalogBuild(ctx context.Context, lang string, quests int, duration time.Duration, err error)
	OnFilter(ctx context.Context, cached bool, results int)

	// Subgraph events
	OnSubgraphBuild(ctx context.Context, nodes, edges int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, engine string, nodes int)
	OnLayoutComplete(ctx context.Context, engine string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives per-frame statistics from the canvas. It is called on
// the UI goroutine every frame and must not block.
type RenderHooks interface {
	OnFrame(drawn, culled int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnCatalogBuild(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnFilter(context.Context, bool, int)                               {}
func (NoopPipelineHooks) OnSubgraphBuild(context.Context, int, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                        {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnFrame(int, int) {}

// =============================================================================
// Hook Bundle
// =============================================================================

// Hooks bundles the hook categories passed to constructors.
// Nil members fall back to the no-op implementations.
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	Render   RenderHooks
}

// WithDefaults returns h with nil members replaced by no-op hooks.
func (h Hooks) WithDefaults() Hooks {
	if h.Pipeline == nil {
		h.Pipeline = NoopPipelineHooks{}
	}
	if h.Cache == nil {
		h.Cache = NoopCacheHooks{}
	}
	if h.Render == nil {
		h.Render = NoopRenderHooks{}
	}
	return h
}
