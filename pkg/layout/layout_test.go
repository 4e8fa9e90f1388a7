package layout

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/questgraph"
)

func node(id uint32, w, h float64) questgraph.Node {
	label := fmt.Sprintf("Quest %d", id)
	return questgraph.Node{ID: id, Label: label, Kind: questgraph.LabelNode{Text: label}, Size: geom.V(w, h)}
}

// diamond: 1 → 2, 1 → 3, 2 → 4, 3 → 4, plus a long edge 1 → 4.
func diamond() *questgraph.Graph {
	return questgraph.NewGraph(4,
		[]questgraph.Node{node(1, 80, 20), node(2, 60, 20), node(3, 100, 20), node(4, 70, 20)},
		[]questgraph.Edge{{From: 1, To: 2}, {From: 1, To: 3}, {From: 2, To: 4}, {From: 3, To: 4}, {From: 1, To: 4}},
	)
}

func chainGraph(n int) *questgraph.Graph {
	nodes := make([]questgraph.Node, n)
	var edges []questgraph.Edge
	for i := range n {
		nodes[i] = node(uint32(i+1), 50, 14)
		if i > 0 {
			edges = append(edges, questgraph.Edge{From: uint32(i), To: uint32(i + 1)})
		}
	}
	return questgraph.NewGraph(uint32(n), nodes, edges)
}

func assertNoOverlap(t *testing.T, r *Result) {
	t.Helper()
	for i := range r.Nodes {
		for j := i + 1; j < len(r.Nodes); j++ {
			assert.False(t, r.Nodes[i].Box.Overlaps(r.Nodes[j].Box),
				"nodes %d and %d overlap", r.Nodes[i].ID, r.Nodes[j].ID)
		}
	}
}

// In graph space a prerequisite is drawn above its successor after the
// canvas negates y, so its graph-space y is larger.
func assertPrerequisitesAbove(t *testing.T, r *Result, g *questgraph.Graph) {
	t.Helper()
	for _, e := range g.Edges {
		from, ok := r.Node(e.From)
		require.True(t, ok)
		to, ok := r.Node(e.To)
		require.True(t, ok)
		assert.GreaterOrEqual(t, from.Box.Min.Y, to.Box.Max.Y, "edge %d -> %d", e.From, e.To)
	}
}

func TestLayered_Contract(t *testing.T) {
	g := diamond()
	r, err := NewLayered().Layout(context.Background(), g, Options{})
	require.NoError(t, err)

	assert.Equal(t, EngineLayered, r.Engine)
	assert.Equal(t, uint32(4), r.Focus)
	require.Len(t, r.Nodes, 4)
	require.Len(t, r.Edges, 5)
	assertNoOverlap(t, r)
	assertPrerequisitesAbove(t, r, g)

	for i, n := range g.Nodes {
		assert.InDelta(t, n.Size.X, r.Nodes[i].Box.Width(), 1e-9)
		assert.InDelta(t, n.Size.Y, r.Nodes[i].Box.Height(), 1e-9)
		assert.Equal(t, n.Label, r.Nodes[i].Label)
		assert.True(t, r.Bounds.Contains(r.Nodes[i].Box.Center()))
	}
	center, ok := r.Center()
	require.True(t, ok)
	assert.Equal(t, uint32(4), center.ID)
}

func TestLayered_EdgesTouchNodes(t *testing.T) {
	g := diamond()
	r, err := NewLayered().Layout(context.Background(), g, Options{})
	require.NoError(t, err)

	for _, e := range r.Edges {
		from, _ := r.Node(e.From)
		to, _ := r.Node(e.To)
		start := e.Segments[0].Start
		end := e.Segments[len(e.Segments)-1].End
		// Graph space is reflected: the bottom of a box is its Min.Y.
		assert.InDelta(t, from.Box.Min.Y, start.Y, 1e-9)
		assert.InDelta(t, from.Box.Center().X, start.X, 1e-9)
		assert.InDelta(t, to.Box.Max.Y, end.Y, 1e-9)
		assert.InDelta(t, to.Box.Center().X, end.X, 1e-9)
		assert.Nil(t, e.Arrow)
	}

	long := r.Edges[4]
	assert.Equal(t, uint32(1), long.From)
	assert.Equal(t, uint32(4), long.To)
	assert.Len(t, long.Segments, 2, "long edge bends through one virtual node")
}

func TestLayered_Arrowheads(t *testing.T) {
	g := diamond()
	r, err := NewLayered().Layout(context.Background(), g, Options{Arrowheads: true})
	require.NoError(t, err)

	for _, e := range r.Edges {
		require.NotNil(t, e.Arrow)
		to, _ := r.Node(e.To)
		assert.InDelta(t, to.Box.Max.Y, e.Arrow.Tip.Y, 1e-9)
		assert.InDelta(t, ArrowLength, e.Arrow.Tip.Sub(e.Arrow.Base).Len(), 1e-9)
		last := e.Segments[len(e.Segments)-1]
		assert.True(t, last.End.Eq(e.Arrow.Base, 1e-9))
	}
}

func TestLayered_Deterministic(t *testing.T) {
	a, err := NewLayered().Layout(context.Background(), diamond(), Options{})
	require.NoError(t, err)
	b, err := NewLayered().Layout(context.Background(), diamond(), Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLayered_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := NewLayered().Layout(ctx, chainGraph(10), Options{})
	assert.Nil(t, r)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLayered_Cycle(t *testing.T) {
	g := questgraph.NewGraph(1,
		[]questgraph.Node{node(1, 40, 10), node(2, 40, 10), node(3, 40, 10)},
		[]questgraph.Edge{{From: 1, To: 2}, {From: 2, To: 3}, {From: 3, To: 1}},
	)
	r, err := NewLayered().Layout(context.Background(), g, Options{})
	require.NoError(t, err)
	assertNoOverlap(t, r)
	assert.Len(t, r.Edges, 3, "the back edge is still drawn")
}

func TestLayered_Empty(t *testing.T) {
	r, err := NewLayered().Layout(context.Background(), questgraph.NewGraph(1, nil, nil), Options{})
	require.NoError(t, err)
	assert.Empty(t, r.Nodes)
	assert.Empty(t, r.Edges)
	_, ok := r.Center()
	assert.False(t, ok)
}

func TestLayered_WideRow(t *testing.T) {
	nodes := []questgraph.Node{node(1, 40, 10)}
	var edges []questgraph.Edge
	for i := uint32(2); i <= 30; i++ {
		nodes = append(nodes, node(i, 30+float64(i), 10))
		edges = append(edges, questgraph.Edge{From: 1, To: i})
	}
	g := questgraph.NewGraph(1, nodes, edges)
	r, err := NewLayered().Layout(context.Background(), g, Options{NodeSep: 5})
	require.NoError(t, err)
	assertNoOverlap(t, r)
	assertPrerequisitesAbove(t, r, g)
}

func TestWithArrowhead(t *testing.T) {
	tests := []struct {
		name string
		seg  Segment
		tip  geom.Vec
		base geom.Vec
	}{
		{
			name: "line",
			seg:  Line(geom.V(0, 0), geom.V(0, 30)),
			tip:  geom.V(0, 30),
			base: geom.V(0, 20),
		},
		{
			name: "cubic uses end tangent",
			seg:  Cubic(geom.V(0, 0), geom.V(0, 10), geom.V(20, 30), geom.V(40, 30)),
			tip:  geom.V(40, 30),
			base: geom.V(30, 30),
		},
		{
			name: "degenerate control point falls back to chord",
			seg:  Cubic(geom.V(0, 0), geom.V(0, 0), geom.V(0, 40), geom.V(0, 40)),
			tip:  geom.V(0, 40),
			base: geom.V(0, 30),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []Segment{tt.seg}
			out, arrow := withArrowhead(in)
			require.NotNil(t, arrow)
			assert.True(t, arrow.Tip.Eq(tt.tip, 1e-9))
			assert.True(t, arrow.Base.Eq(tt.base, 1e-9), "base %v", arrow.Base)
			assert.True(t, out[0].End.Eq(tt.base, 1e-9))
			assert.Equal(t, tt.seg, in[0], "input is not modified")
		})
	}
}

func TestCatmullRom(t *testing.T) {
	pts := []geom.Vec{geom.V(0, 0), geom.V(10, 50), geom.V(0, 100)}
	segs := catmullRom(pts)
	require.Len(t, segs, 2)
	assert.Equal(t, pts[0], segs[0].Start)
	assert.Equal(t, pts[1], segs[0].End)
	assert.Equal(t, pts[1], segs[1].Start)
	assert.Equal(t, pts[2], segs[1].End)
	// Tangent continuity at the joint.
	in := segs[0].End.Sub(segs[0].C2)
	out := segs[1].C1.Sub(segs[1].Start)
	assert.True(t, in.Eq(out, 1e-9))

	two := catmullRom([]geom.Vec{geom.V(0, 0), geom.V(20, 40)})
	require.Len(t, two, 1)
	assert.Equal(t, geom.V(0, 20), two[0].C1)
	assert.Equal(t, geom.V(20, 20), two[0].C2)
}
