package layout

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/questgraph/pkg/errors"
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/questgraph"
)

const sampleOutput = `digraph G {
	graph [bb="0,0,54,108",
		nodesep=0.2778,
		rankdir=TB,
		ranksep=0.5556
	];
	node [fixedsize=true,
		label="",
		margin=0,
		shape=box
	];
	edge [arrowhead=none];
	q1	[height=0.25,
		pos="27,99",
		width=0.75];
	q2	[height=0.25,
		pos="27,9",
		width=0.75];
	q1 -> q2	[pos="27,90 27,70 27,38 27,18"];
}
`

func TestParsePositions(t *testing.T) {
	p, err := parsePositions([]byte(sampleOutput))
	require.NoError(t, err)

	require.Contains(t, p.nodes, "q1")
	require.Contains(t, p.nodes, "q2")
	q1 := p.nodes["q1"]
	assert.InDelta(t, 0, q1.Min.X, 1e-9)
	assert.InDelta(t, 54, q1.Max.X, 1e-9)
	assert.InDelta(t, 0, q1.Min.Y, 1e-9)
	assert.InDelta(t, 18, q1.Max.Y, 1e-9)
	q2 := p.nodes["q2"]
	assert.InDelta(t, 90, q2.Min.Y, 1e-9)

	segs := p.edges[[2]string{"q1", "q2"}]
	require.Len(t, segs, 1)
	assert.Equal(t, SegmentCubic, segs[0].Kind)
	assert.Equal(t, geom.V(27, 18), segs[0].Start)
	assert.Equal(t, geom.V(27, 90), segs[0].End)
}

func TestParseSpline(t *testing.T) {
	flip := func(x, y float64) geom.Vec { return geom.V(x, 100-y) }

	tests := []struct {
		name    string
		in      string
		wantLen int
		wantEnd geom.Vec
		wantErr bool
	}{
		{name: "single cubic", in: "0,100 0,80 10,60 10,40", wantLen: 1, wantEnd: geom.V(10, 60)},
		{name: "two cubics", in: "0,100 0,90 0,80 0,70 0,60 0,50 0,40", wantLen: 2, wantEnd: geom.V(0, 60)},
		{name: "arrow tip appends line", in: "e,0,30 0,100 0,80 0,60 0,40", wantLen: 2, wantEnd: geom.V(0, 70)},
		{name: "start marker ignored", in: "s,0,100 0,100 0,80 0,60 0,40", wantLen: 1, wantEnd: geom.V(0, 60)},
		{name: "wrong point count", in: "0,0 1,1 2,2", wantErr: true},
		{name: "malformed point", in: "0,0 1;1 2,2 3,3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, err := parseSpline(tt.in, flip)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, segs, tt.wantLen)
			assert.Equal(t, tt.wantEnd, segs[len(segs)-1].End)
		})
	}
}

func TestParsePoint(t *testing.T) {
	v, err := parsePoint("12.5,-3")
	require.NoError(t, err)
	assert.Equal(t, geom.V(12.5, -3), v)

	v, err = parsePoint("4,5!")
	require.NoError(t, err)
	assert.Equal(t, geom.V(4, 5), v)

	_, err = parsePoint("7")
	assert.Error(t, err)
}

func TestToDOT(t *testing.T) {
	g := diamond()

	plain := ToDOT(g, Options{}, false)
	assert.Contains(t, plain, "rankdir=TB;")
	assert.Contains(t, plain, "fixedsize=true")
	assert.Contains(t, plain, "q1 [width=1.1111, height=0.2778];")
	assert.Contains(t, plain, "q1 -> q4;")
	assert.Contains(t, plain, "arrowhead=none")
	assert.NotContains(t, plain, "Quest 1")

	labeled := ToDOT(g, Options{Arrowheads: true}, true)
	assert.Contains(t, labeled, `label="Quest 1"`)
	assert.Contains(t, labeled, "penwidth=2")
	assert.NotContains(t, labeled, "arrowhead=none")
	assert.Equal(t, 5, strings.Count(labeled, " -> "))
}

func TestExport_UnsupportedFormat(t *testing.T) {
	_, err := Export(context.Background(), diamond(), Options{}, "gif")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	data, err := Export(context.Background(), diamond(), Options{}, FormatDOT)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph G")
}

func TestGraphviz_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := NewGraphviz().Layout(ctx, diamond(), Options{})
	assert.Nil(t, r)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGraphviz_Layout(t *testing.T) {
	if testing.Short() {
		t.Skip("runs Graphviz")
	}
	g := diamond()
	r, err := NewGraphviz().Layout(context.Background(), g, Options{Arrowheads: true})
	require.NoError(t, err)

	assert.Equal(t, EngineGraphviz, r.Engine)
	require.Len(t, r.Nodes, len(g.Nodes))
	assertNoOverlap(t, r)
	assertPrerequisitesAbove(t, r, g)
	for i, n := range g.Nodes {
		assert.InDelta(t, n.Size.X, r.Nodes[i].Box.Width(), 0.5)
	}
	for _, e := range r.Edges {
		assert.NotEmpty(t, e.Segments)
		assert.NotNil(t, e.Arrow)
	}
}

func TestGraphviz_Empty(t *testing.T) {
	r, err := NewGraphviz().Layout(context.Background(), questgraph.NewGraph(1, nil, nil), Options{})
	require.NoError(t, err)
	assert.Empty(t, r.Nodes)
}
