package canvas

import (
	"github.com/matzehuels/questgraph/pkg/config"
	"github.com/matzehuels/questgraph/pkg/geom"
)

// Color is an RGBA color with components in [0,1].
type Color = config.RGBA

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c Color, a float64) Color {
	c[3] = a
	return c
}

// DrawList receives the primitives of one frame in painter's order.
// Implementations target a concrete surface: an SVG document, a terminal
// cell grid, or a recorder in tests.
type DrawList interface {
	// PushClip restricts drawing to r until the matching PopClip.
	PushClip(r geom.Rect)
	PopClip()

	RectFilled(r geom.Rect, c Color, rounding float64)
	Rect(r geom.Rect, c Color, rounding, thickness float64)
	Line(a, b geom.Vec, c Color, thickness float64)
	Bezier(a, c1, c2, b geom.Vec, c Color, thickness float64)
	TriangleFilled(a, b, c geom.Vec, col Color)

	// Text draws s with its top-left corner at pos and the given font size.
	Text(pos geom.Vec, size float64, c Color, s string)
}

// OpKind names a recorded primitive.
type OpKind string

const (
	OpPushClip       OpKind = "push_clip"
	OpPopClip        OpKind = "pop_clip"
	OpRectFilled     OpKind = "rect_filled"
	OpRect           OpKind = "rect"
	OpLine           OpKind = "line"
	OpBezier         OpKind = "bezier"
	OpTriangleFilled OpKind = "triangle_filled"
	OpText           OpKind = "text"
)

// Op is one recorded primitive. Points holds the line, bezier or triangle
// points and the text position; Rect holds the rectangle or clip.
type Op struct {
	Kind      OpKind
	Rect      geom.Rect
	Points    []geom.Vec
	Color     Color
	Rounding  float64
	Thickness float64
	Size      float64
	Text      string
}

// Recorder is a DrawList that keeps every primitive.
type Recorder struct {
	Ops []Op
}

// Reset drops the recorded primitives.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

// Count returns the number of recorded primitives of the given kind.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the recorded primitives of the given kind.
func (r *Recorder) Filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func (r *Recorder) PushClip(rect geom.Rect) {
	r.Ops = append(r.Ops, Op{Kind: OpPushClip, Rect: rect})
}

func (r *Recorder) PopClip() { r.Ops = append(r.Ops, Op{Kind: OpPopClip}) }

func (r *Recorder) RectFilled(rect geom.Rect, c Color, rounding float64) {
	r.Ops = append(r.Ops, Op{Kind: OpRectFilled, Rect: rect, Color: c, Rounding: rounding})
}

func (r *Recorder) Rect(rect geom.Rect, c Color, rounding, thickness float64) {
	r.Ops = append(r.Ops, Op{Kind: OpRect, Rect: rect, Color: c, Rounding: rounding, Thickness: thickness})
}

func (r *Recorder) Line(a, b geom.Vec, c Color, thickness float64) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Points: []geom.Vec{a, b}, Color: c, Thickness: thickness})
}

func (r *Recorder) Bezier(a, c1, c2, b geom.Vec, c Color, thickness float64) {
	r.Ops = append(r.Ops, Op{Kind: OpBezier, Points: []geom.Vec{a, c1, c2, b}, Color: c, Thickness: thickness})
}

func (r *Recorder) TriangleFilled(a, b, c geom.Vec, col Color) {
	r.Ops = append(r.Ops, Op{Kind: OpTriangleFilled, Points: []geom.Vec{a, b, c}, Color: col})
}

func (r *Recorder) Text(pos geom.Vec, size float64, c Color, s string) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Points: []geom.Vec{pos}, Size: size, Color: c, Text: s})
}

var _ DrawList = (*Recorder)(nil)
