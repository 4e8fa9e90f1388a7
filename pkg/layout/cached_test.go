package layout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/questgraph/pkg/cache"
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/observability"
	"github.com/matzehuels/questgraph/pkg/questgraph"
)

type countingEngine struct {
	Engine
	calls int
}

func (e *countingEngine) Layout(ctx context.Context, g *questgraph.Graph, opts Options) (*Result, error) {
	e.calls++
	return e.Engine.Layout(ctx, g, opts)
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestCachedEngine(t *testing.T) {
	inner := &countingEngine{Engine: NewLayered()}
	hooks := &countingCacheHooks{}
	e := NewCached(inner, cache.NewMemoryCache(), WithCacheHooks(hooks))
	ctx := context.Background()

	first, err := e.Layout(ctx, diamond(), Options{})
	require.NoError(t, err)
	second, err := e.Layout(ctx, diamond(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, hooks.hits)
	assert.Equal(t, 1, hooks.misses)
	assert.Equal(t, 1, hooks.sets)
	assert.Equal(t, EngineLayered, e.Name())

	require.Len(t, second.Nodes, len(first.Nodes))
	for i := range first.Nodes {
		assert.Equal(t, first.Nodes[i].ID, second.Nodes[i].ID)
		assert.True(t, first.Nodes[i].Box.Min.Eq(second.Nodes[i].Box.Min, 1e-9))
		assert.Equal(t, first.Nodes[i].Kind, second.Nodes[i].Kind, "kinds are restored")
	}
	assert.Equal(t, first.Edges, second.Edges)
	box, ok := second.Node(4)
	require.True(t, ok)
	assert.Equal(t, uint32(4), box.ID)

	_, err = e.Layout(ctx, diamond(), Options{Arrowheads: true})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "options are part of the key")
}

func TestCachedEngine_NullCache(t *testing.T) {
	inner := &countingEngine{Engine: NewLayered()}
	e := NewCached(inner, cache.NewNullCache())
	for range 3 {
		_, err := e.Layout(context.Background(), diamond(), Options{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls)
}

func TestCachedEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCached(NewLayered(), cache.NewMemoryCache()).Layout(ctx, diamond(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(diamond())
	assert.Equal(t, a, Fingerprint(diamond()))
	assert.Len(t, a, 64)

	resized := diamond()
	resized.Nodes[0].Size = geom.V(81, 20)
	assert.NotEqual(t, a, Fingerprint(resized))

	refocused := questgraph.NewGraph(1, diamond().Nodes, diamond().Edges)
	assert.NotEqual(t, a, Fingerprint(refocused))
}
