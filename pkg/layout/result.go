package layout

import (
	"context"

	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/questgraph"
)

// Default spacing in pixels, matching the Graphviz defaults for nodesep
// and ranksep at 72 DPI rounded to the quest graph's scale.
const (
	DefaultNodeSep = 20.0
	DefaultRankSep = 40.0
)

// ArrowLength is the distance between an arrowhead's base and its tip.
const ArrowLength = 10.0

// Engine positions the nodes of a subgraph and routes its edges.
//
// Implementations place prerequisites above the quests they unlock, keep
// node boxes apart, and return a fresh [Result] on every call. A cancelled
// context makes Layout return ctx.Err() unwrapped.
type Engine interface {
	Name() string
	Layout(ctx context.Context, g *questgraph.Graph, opts Options) (*Result, error)
}

// Options configures a layout run.
type Options struct {
	// Arrowheads shortens every edge curve and adds an [Arrowhead].
	Arrowheads bool

	// NodeSep is the horizontal gap between boxes in a row.
	NodeSep float64

	// RankSep is the vertical gap between rows.
	RankSep float64
}

func (o Options) withDefaults() Options {
	if o.NodeSep <= 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.RankSep <= 0 {
		o.RankSep = DefaultRankSep
	}
	return o
}

// SegmentKind tells a straight segment from a cubic bezier.
type SegmentKind int

const (
	SegmentLine SegmentKind = iota
	SegmentCubic
)

// Segment is one piece of an edge curve. C1 and C2 are the bezier control
// points and are unused for lines.
type Segment struct {
	Kind  SegmentKind `json:"kind"`
	Start geom.Vec    `json:"start"`
	C1    geom.Vec    `json:"c1"`
	C2    geom.Vec    `json:"c2"`
	End   geom.Vec    `json:"end"`
}

// Line returns a straight segment.
func Line(a, b geom.Vec) Segment {
	return Segment{Kind: SegmentLine, Start: a, End: b}
}

// Cubic returns a cubic bezier segment.
func Cubic(a, c1, c2, b geom.Vec) Segment {
	return Segment{Kind: SegmentCubic, Start: a, C1: c1, C2: c2, End: b}
}

// Bounds returns the bounding box of the segment's points. For cubics this
// is the hull of the control polygon, which contains the curve.
func (s Segment) Bounds() geom.Rect {
	if s.Kind == SegmentCubic {
		return geom.Bounds(s.Start, s.C1, s.C2, s.End)
	}
	return geom.Bounds(s.Start, s.End)
}

func (s Segment) reflect() Segment {
	return Segment{Kind: s.Kind, Start: s.Start.Neg(), C1: s.C1.Neg(), C2: s.C2.Neg(), End: s.End.Neg()}
}

// Arrowhead marks the end of a directed edge. The triangle is drawn from
// Base towards Tip.
type Arrowhead struct {
	Base geom.Vec `json:"base"`
	Tip  geom.Vec `json:"tip"`
}

// NodeBox is a positioned node.
type NodeBox struct {
	ID    uint32          `json:"id"`
	Label string          `json:"label"`
	Kind  questgraph.Kind `json:"-"`
	Box   geom.Rect       `json:"box"`
}

// EdgeCurve is a routed edge.
type EdgeCurve struct {
	From     uint32     `json:"from"`
	To       uint32     `json:"to"`
	Segments []Segment  `json:"segments"`
	Arrow    *Arrowhead `json:"arrow,omitempty"`
}

// Bounds returns the box enclosing the curve and its arrowhead.
func (e EdgeCurve) Bounds() geom.Rect {
	var r geom.Rect
	for i, s := range e.Segments {
		if i == 0 {
			r = s.Bounds()
			continue
		}
		r = r.Union(s.Bounds())
	}
	if e.Arrow != nil {
		r = r.Union(geom.Bounds(e.Arrow.Base, e.Arrow.Tip))
	}
	return r
}

// Result is a finished layout in graph space. Engines compute top-down
// screen coordinates; a Result holds their point reflection so the
// canvas transform, which negates graph coordinates, draws it upright.
//
// A Result is never modified after an engine returns it and may be shared
// between goroutines.
type Result struct {
	Focus  uint32      `json:"focus"`
	Nodes  []NodeBox   `json:"nodes"`
	Edges  []EdgeCurve `json:"edges"`
	Bounds geom.Rect   `json:"bounds"`
	Engine string      `json:"engine"`

	index map[uint32]int
}

// Node returns the box of the node with the given id.
func (r *Result) Node(id uint32) (NodeBox, bool) {
	i, ok := r.index[id]
	if !ok {
		return NodeBox{}, false
	}
	return r.Nodes[i], true
}

// Center returns the box of the focus node.
func (r *Result) Center() (NodeBox, bool) { return r.Node(r.Focus) }

func (r *Result) reindex() {
	r.index = make(map[uint32]int, len(r.Nodes))
	for i, n := range r.Nodes {
		r.index[n.ID] = i
	}
}

// assemble builds a Result from screen-space boxes and curves. boxes is
// indexed like g.Nodes and curves like g.Edges; a nil curve drops the edge.
func assemble(g *questgraph.Graph, engine string, boxes []geom.Rect, curves [][]Segment, opts Options) *Result {
	r := &Result{
		Focus:  g.Focus,
		Nodes:  make([]NodeBox, 0, len(g.Nodes)),
		Edges:  make([]EdgeCurve, 0, len(g.Edges)),
		Engine: engine,
	}
	for i, n := range g.Nodes {
		box := geom.R(boxes[i].Min.Neg(), boxes[i].Max.Neg())
		r.Nodes = append(r.Nodes, NodeBox{ID: n.ID, Label: n.Label, Kind: n.Kind, Box: box})
		if i == 0 {
			r.Bounds = box
		} else {
			r.Bounds = r.Bounds.Union(box)
		}
	}
	for i, e := range g.Edges {
		segs := curves[i]
		if len(segs) == 0 {
			continue
		}
		var arrow *Arrowhead
		if opts.Arrowheads {
			segs, arrow = withArrowhead(segs)
		}
		curve := EdgeCurve{From: e.From, To: e.To, Segments: make([]Segment, len(segs))}
		for j, s := range segs {
			curve.Segments[j] = s.reflect()
		}
		if arrow != nil {
			curve.Arrow = &Arrowhead{Base: arrow.Base.Neg(), Tip: arrow.Tip.Neg()}
		}
		r.Edges = append(r.Edges, curve)
		r.Bounds = r.Bounds.Union(curve.Bounds())
	}
	r.reindex()
	return r
}

// withArrowhead shortens the last segment by [ArrowLength] along its end
// tangent and returns the arrowhead filling the gap. segs is not modified.
func withArrowhead(segs []Segment) ([]Segment, *Arrowhead) {
	out := make([]Segment, len(segs))
	copy(out, segs)
	last := &out[len(out)-1]

	tip := last.End
	dir := tip.Sub(last.Start)
	if last.Kind == SegmentCubic && !tip.Eq(last.C2, 1e-9) {
		dir = tip.Sub(last.C2)
	}
	if dir.Len() == 0 {
		return out, nil
	}
	base := tip.Sub(dir.Unit().Scale(ArrowLength))
	shift := base.Sub(tip)
	last.End = base
	if last.Kind == SegmentCubic {
		last.C2 = last.C2.Add(shift)
	}
	return out, &Arrowhead{Base: base, Tip: tip}
}
