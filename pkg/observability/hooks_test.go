package observability

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnCatalogBuild(ctx, "en", 100, time.Second, nil)
	p.OnFilter(ctx, true, 3)
	p.OnSubgraphBuild(ctx, 4, 4, time.Millisecond, nil)
	p.OnLayoutStart(ctx, "graphviz", 4)
	p.OnLayoutComplete(ctx, "graphviz", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 1024)

	NoopRenderHooks{}.OnFrame(10, 2)
}

func TestWithDefaults(t *testing.T) {
	h := Hooks{}.WithDefaults()
	if _, ok := h.Pipeline.(NoopPipelineHooks); !ok {
		t.Error("Pipeline should default to NoopPipelineHooks")
	}
	if _, ok := h.Cache.(NoopCacheHooks); !ok {
		t.Error("Cache should default to NoopCacheHooks")
	}
	if _, ok := h.Render.(NoopRenderHooks); !ok {
		t.Error("Render should default to NoopRenderHooks")
	}

	custom := &testPipelineHooks{}
	h = Hooks{Pipeline: custom}.WithDefaults()
	if h.Pipeline != custom {
		t.Error("WithDefaults should keep explicit hooks")
	}
}

func TestPrometheusHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)
	ctx := context.Background()

	p.OnCatalogBuild(ctx, "en", 42, time.Second, nil)
	p.OnLayoutStart(ctx, "layered", 4)
	p.OnLayoutComplete(ctx, "layered", time.Millisecond, nil)
	p.OnLayoutStart(ctx, "layered", 4)
	p.OnLayoutComplete(ctx, "layered", time.Millisecond, context.Canceled)
	p.OnCacheMiss(ctx, "layout")
	p.OnCacheSet(ctx, "layout", 100)
	p.OnFrame(3, 1)

	if got := testutil.ToFloat64(p.catalogQuests); got != 42 {
		t.Errorf("catalog_quests = %v, want 42", got)
	}
	if got := testutil.ToFloat64(p.layouts.WithLabelValues("layered", "cancelled")); got != 1 {
		t.Errorf("cancelled layouts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.layoutsInFlight); got != 0 {
		t.Errorf("layouts_in_flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(p.cacheBytes); got != 100 {
		t.Errorf("cache bytes = %v, want 100", got)
	}

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "questgraph_frames_total 1") {
		t.Error("metrics endpoint should expose frames_total")
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{context.Canceled, "cancelled"},
		{context.DeadlineExceeded, "cancelled"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := outcome(tt.err); got != tt.want {
			t.Errorf("outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
