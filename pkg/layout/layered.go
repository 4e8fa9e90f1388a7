package layout

import (
	"context"

	"github.com/matzehuels/questgraph/pkg/dag"
	"github.com/matzehuels/questgraph/pkg/dag/transform"
	"github.com/matzehuels/questgraph/pkg/errors"
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/questgraph"
)

// EngineLayered is the name of [LayeredEngine].
const EngineLayered = "layered"

// defaultPlacementPasses bounds the coordinate assignment iterations.
const defaultPlacementPasses = 8

// LayeredEngine is a pure Go Sugiyama-style layout. It needs no native
// library and is used when Graphviz is unavailable or not wanted.
//
// The pipeline is: break cycles, longest-path layering, subdivision of
// long edges into virtual nodes, barycentric row ordering, coordinate
// assignment and Catmull-Rom edge routing.
type LayeredEngine struct {
	// Sweeps bounds the ordering sweeps. Zero uses transform.DefaultSweeps.
	Sweeps int

	// Passes bounds the coordinate assignment passes. Zero uses a default.
	Passes int
}

// NewLayered returns a LayeredEngine with default settings.
func NewLayered() *LayeredEngine { return &LayeredEngine{} }

// Name returns "layered".
func (e *LayeredEngine) Name() string { return EngineLayered }

// Layout implements [Engine].
func (e *LayeredEngine) Layout(ctx context.Context, g *questgraph.Graph, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	d, index := toDAG(g)
	transform.BreakCycles(d)
	transform.AssignLayers(d)
	transform.Subdivide(d)
	if !d.Acyclic() {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, dag.ErrGraphHasCycle, "layered layout")
	}

	orders, err := transform.OrderRows(ctx, d, e.Sweeps)
	if err != nil {
		return nil, err
	}

	p := &placement{g: d, orders: orders, opts: opts}
	p.assignRows()
	passes := e.Passes
	if passes <= 0 {
		passes = defaultPlacementPasses
	}
	if err := p.assignColumns(ctx, passes); err != nil {
		return nil, err
	}

	boxes := make([]geom.Rect, len(g.Nodes))
	for i := range g.Nodes {
		boxes[i] = p.box(i)
	}
	curves := make([][]Segment, len(g.Edges))
	for i, edge := range g.Edges {
		from, okFrom := index[edge.From]
		to, okTo := index[edge.To]
		if !okFrom || !okTo || from == to {
			continue
		}
		curves[i] = p.route(from, to)
	}
	return assemble(g, EngineLayered, boxes, curves, opts), nil
}

// toDAG maps the subgraph onto a DAG whose node ids are indices into
// g.Nodes. Edges to nodes outside the subgraph are dropped.
func toDAG(g *questgraph.Graph) (*dag.DAG, map[uint32]int) {
	d := dag.New()
	index := make(map[uint32]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
		mustAdd(d.AddNode(dag.Node{ID: i, Width: n.Size.X, Height: n.Size.Y}))
	}
	for _, e := range g.Edges {
		from, okFrom := index[e.From]
		to, okTo := index[e.To]
		if !okFrom || !okTo || from == to {
			continue
		}
		mustAdd(d.AddEdge(dag.Edge{From: from, To: to}))
	}
	return d, index
}

func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}

// placement holds the screen-space coordinates computed for a layered DAG.
// x is the horizontal center of every node, rowTop and rowHeight describe
// the horizontal bands of the rows.
type placement struct {
	g      *dag.DAG
	orders [][]int
	opts   Options

	x         map[int]float64
	rowTop    []float64
	rowHeight []float64
}

func (p *placement) assignRows() {
	p.rowTop = make([]float64, len(p.orders))
	p.rowHeight = make([]float64, len(p.orders))
	y := 0.0
	for r, row := range p.orders {
		for _, id := range row {
			n, _ := p.g.Node(id)
			p.rowHeight[r] = max(p.rowHeight[r], n.Height)
		}
		p.rowTop[r] = y
		y += p.rowHeight[r] + p.opts.RankSep
	}
}

// assignColumns packs every row left to right, then alternately pulls
// nodes towards the mean x of their parents and of their children. After
// each pull the row is made non-overlapping again by averaging a left
// packed and a right packed solution; both keep every gap, so their mean
// does too.
func (p *placement) assignColumns(ctx context.Context, passes int) error {
	p.x = make(map[int]float64, p.g.NodeCount())
	for _, row := range p.orders {
		want := make([]float64, len(row))
		p.separate(row, want)
	}

	for i := 0; i < passes; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for r := 1; r < len(p.orders); r++ {
			p.pull(p.orders[r], p.g.Parents)
		}
		for r := len(p.orders) - 2; r >= 0; r-- {
			p.pull(p.orders[r], p.g.Children)
		}
	}

	left := 0.0
	first := true
	for _, row := range p.orders {
		if len(row) == 0 {
			continue
		}
		if l := p.x[row[0]] - p.width(row[0])/2; first || l < left {
			left, first = l, false
		}
	}
	for id := range p.x {
		p.x[id] -= left
	}
	return nil
}

func (p *placement) pull(row []int, neighbours func(int) []int) {
	want := make([]float64, len(row))
	for i, id := range row {
		want[i] = p.x[id]
		adj := neighbours(id)
		if len(adj) == 0 {
			continue
		}
		sum := 0.0
		for _, nb := range adj {
			sum += p.x[nb]
		}
		want[i] = sum / float64(len(adj))
	}
	p.separate(row, want)
}

// separate sets x for row as close to want as the minimum gaps allow.
func (p *placement) separate(row []int, want []float64) {
	n := len(row)
	if n == 0 {
		return
	}
	gap := func(i int) float64 {
		return (p.width(row[i-1])+p.width(row[i]))/2 + p.opts.NodeSep
	}

	right := make([]float64, n)
	right[0] = want[0]
	for i := 1; i < n; i++ {
		right[i] = max(want[i], right[i-1]+gap(i))
	}
	left := make([]float64, n)
	left[n-1] = want[n-1]
	for i := n - 2; i >= 0; i-- {
		left[i] = min(want[i], left[i+1]-gap(i+1))
	}
	for i, id := range row {
		p.x[id] = (left[i] + right[i]) / 2
	}
}

func (p *placement) width(id int) float64 {
	n, _ := p.g.Node(id)
	return n.Width
}

// box returns the screen-space box of a regular node, vertically centered
// in its row band.
func (p *placement) box(id int) geom.Rect {
	n, _ := p.g.Node(id)
	top := p.rowTop[n.Row] + (p.rowHeight[n.Row]-n.Height)/2
	minX := p.x[id] - n.Width/2
	return geom.R(geom.V(minX, top), geom.V(minX+n.Width, top+n.Height))
}

// route returns the curve of the original edge from→to. Edges that were
// split run through the centers of their virtual nodes. Edges removed to
// break a cycle, or reversed by layering, are drawn as a single cubic.
func (p *placement) route(from, to int) []Segment {
	src := p.box(from)
	dst := p.box(to)
	start := geom.V(src.Center().X, src.Max.Y)
	end := geom.V(dst.Center().X, dst.Min.Y)

	pts := []geom.Vec{start}
	if chain, ok := p.chain(from, to); ok {
		for _, id := range chain {
			n, _ := p.g.Node(id)
			pts = append(pts, geom.V(p.x[id], p.rowTop[n.Row]+p.rowHeight[n.Row]/2))
		}
	} else {
		s, _ := p.g.Node(from)
		t, _ := p.g.Node(to)
		if s.Row >= t.Row {
			start = geom.V(src.Center().X, src.Min.Y)
			end = geom.V(dst.Center().X, dst.Max.Y)
			pts[0] = start
		}
	}
	pts = append(pts, end)
	return catmullRom(pts)
}

// chain returns the virtual nodes between from and to, in order. It
// reports false when the edge is not present in the DAG.
func (p *placement) chain(from, to int) ([]int, bool) {
	var out []int
	curr := from
	for {
		next := -1
		for _, c := range p.g.Children(curr) {
			if c == to {
				return out, true
			}
			n, _ := p.g.Node(c)
			if n.IsVirtual() && n.Edge == (dag.Edge{From: from, To: to}) {
				next = c
			}
		}
		if next < 0 {
			return nil, false
		}
		out = append(out, next)
		curr = next
	}
}

// catmullRom converts a polyline into cubic bezier segments through all of
// its points. Two points get a cubic with vertical end tangents.
func catmullRom(pts []geom.Vec) []Segment {
	if len(pts) == 2 {
		a, b := pts[0], pts[1]
		dy := (b.Y - a.Y) / 2
		return []Segment{Cubic(a, geom.V(a.X, a.Y+dy), geom.V(b.X, b.Y-dy), b)}
	}
	segs := make([]Segment, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		p0 := pts[max(i-1, 0)]
		p1 := pts[i]
		p2 := pts[i+1]
		p3 := pts[min(i+2, len(pts)-1)]
		c1 := p1.Add(p2.Sub(p0).Scale(1.0 / 6))
		c2 := p2.Sub(p3.Sub(p1).Scale(1.0 / 6))
		segs = append(segs, Cubic(p1, c1, c2, p2))
	}
	return segs
}
