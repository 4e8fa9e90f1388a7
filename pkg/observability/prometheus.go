package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "questgraph"

// Prometheus implements every hook category with Prometheus collectors.
type Prometheus struct {
	catalogBuilds   *prometheus.CounterVec
	catalogQuests   prometheus.Gauge
	catalogDuration prometheus.Histogram
	filters         *prometheus.CounterVec
	subgraphBuilds  *prometheus.CounterVec
	subgraphNodes   prometheus.Histogram
	layoutDuration  *prometheus.HistogramVec
	layouts         *prometheus.CounterVec
	layoutsInFlight prometheus.Gauge
	cacheOps        *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	framesNodes     *prometheus.CounterVec
	frames          prometheus.Counter
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		catalogBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "catalog_builds_total",
			Help: "Quest catalog builds by language and outcome.",
		}, []string{"lang", "outcome"}),
		catalogQuests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "catalog_quests",
			Help: "Quests in the most recently built catalog.",
		}),
		catalogDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "catalog_build_seconds",
			Help:    "Quest catalog build duration.",
			Buckets: prometheus.DefBuckets,
		}),
		filters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "filter_queries_total",
			Help: "Search queries by cache outcome.",
		}, []string{"cache"}),
		subgraphBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "subgraph_builds_total",
			Help: "Subgraph builds by outcome.",
		}, []string{"outcome"}),
		subgraphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "subgraph_nodes",
			Help:    "Nodes per built subgraph.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		layoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_seconds",
			Help:    "Layout computation duration by engine.",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine"}),
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "layouts_total",
			Help: "Layout computations by engine and outcome.",
		}, []string{"engine", "outcome"}),
		layoutsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "layouts_in_flight",
			Help: "Layout computations currently running.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_operations_total",
			Help: "Cache operations by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}),
		framesNodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "frame_nodes_total",
			Help: "Nodes considered by the canvas, drawn or culled.",
		}, []string{"state"}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "frames_total",
			Help: "Canvas frames rendered.",
		}),
	}
	reg.MustRegister(
		p.catalogBuilds, p.catalogQuests, p.catalogDuration,
		p.filters, p.subgraphBuilds, p.subgraphNodes,
		p.layoutDuration, p.layouts, p.layoutsInFlight,
		p.cacheOps, p.cacheBytes, p.framesNodes, p.frames,
	)
	return p
}

// Hooks returns a bundle using p for every category.
func (p *Prometheus) Hooks() Hooks {
	return Hooks{Pipeline: p, Cache: p, Render: p}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

func (p *Prometheus) OnCatalogBuild(_ context.Context, lang string, quests int, d time.Duration, err error) {
	p.catalogBuilds.WithLabelValues(lang, outcome(err)).Inc()
	if err == nil {
		p.catalogQuests.Set(float64(quests))
		p.catalogDuration.Observe(d.Seconds())
	}
}

func (p *Prometheus) OnFilter(_ context.Context, cached bool, _ int) {
	if cached {
		p.filters.WithLabelValues("hit").Inc()
		return
	}
	p.filters.WithLabelValues("miss").Inc()
}

func (p *Prometheus) OnSubgraphBuild(_ context.Context, nodes, _ int, _ time.Duration, err error) {
	p.subgraphBuilds.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		p.subgraphNodes.Observe(float64(nodes))
	}
}

func (p *Prometheus) OnLayoutStart(context.Context, string, int) {
	p.layoutsInFlight.Inc()
}

func (p *Prometheus) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	p.layoutsInFlight.Dec()
	p.layouts.WithLabelValues(engine, outcome(err)).Inc()
	if err == nil {
		p.layoutDuration.WithLabelValues(engine).Observe(d.Seconds())
	}
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.Add(float64(size))
}

func (p *Prometheus) OnFrame(drawn, culled int) {
	p.frames.Inc()
	p.framesNodes.WithLabelValues("drawn").Add(float64(drawn))
	p.framesNodes.WithLabelValues("culled").Add(float64(culled))
}

// Handler returns an HTTP handler exposing the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ RenderHooks   = (*Prometheus)(nil)
)
