package canvas

import (
	"github.com/matzehuels/questgraph/pkg/geom"
)

// Zoom limits and the change per wheel tick.
const (
	MinZoom  = 0.125
	MaxZoom  = 2.0
	ZoomStep = 0.055
)

// Viewport is the pan and zoom state of a canvas together with the drag
// gesture in progress. It is owned by the UI goroutine.
//
// Graph space maps to the screen with a pivot-anchored transform:
//
//	screen = pivot + (pivot - (origin + p + pan)) * zoom
//
// where pivot is the canvas center and origin its bottom-right corner.
// Zoom therefore scales distances from the canvas center.
type Viewport struct {
	Zoom float64
	Pan  geom.Vec

	pressed  bool
	dragging bool
	press    geom.Vec
	lastDrag geom.Vec
}

// NewViewport returns a viewport at zoom 1 without pan.
func NewViewport() Viewport { return Viewport{Zoom: 1} }

// Reset returns to zoom 1 and no pan and drops any drag in progress.
func (v *Viewport) Reset() { *v = NewViewport() }

// Dragging reports whether a drag gesture is in progress.
func (v Viewport) Dragging() bool { return v.dragging }

// ToScreen maps a graph-space point into area.
func (v *Viewport) ToScreen(area geom.Rect, p geom.Vec) geom.Vec {
	pivot := area.Center()
	return pivot.Add(pivot.Sub(area.Max.Add(p).Add(v.Pan)).Scale(v.Zoom))
}

// ToGraph is the inverse of ToScreen.
func (v *Viewport) ToGraph(area geom.Rect, s geom.Vec) geom.Vec {
	pivot := area.Center()
	return pivot.Sub(s.Sub(pivot).Scale(1 / v.Zoom)).Sub(area.Max).Sub(v.Pan)
}

// RectToScreen maps a graph-space rectangle into area. The transform
// negates, so the corners swap.
func (v *Viewport) RectToScreen(area geom.Rect, r geom.Rect) geom.Rect {
	return geom.R(v.ToScreen(area, r.Min), v.ToScreen(area, r.Max))
}

// CenterOn sets the pan so that graph point p is drawn at the pivot.
func (v *Viewport) CenterOn(area geom.Rect, p geom.Vec) {
	v.Pan = area.Center().Sub(area.Max).Sub(p)
}

// ZoomBy changes the zoom by ticks wheel steps, clamped to
// [MinZoom, MaxZoom].
func (v *Viewport) ZoomBy(ticks int) {
	v.Zoom = min(max(v.Zoom+float64(ticks)*ZoomStep, MinZoom), MaxZoom)
}

// update advances the gesture state machine by one frame and reports
// whether a button release should be hit-tested.
//
// Idle: wheel ticks zoom while the pointer is over the canvas, and a
// release is hit-tested. Dragging: while the left button stays down after
// a press inside the canvas, the movement since the last frame is
// subtracted from the pan; below zoom 1 the movement is divided by the
// zoom so content follows the pointer. Releasing a drag does not
// hit-test.
func (v *Viewport) update(area geom.Rect, in Input) bool {
	if in.LeftDown {
		if !v.pressed {
			if !area.Contains(in.Mouse) {
				return false
			}
			v.pressed = true
			v.press = in.Mouse
		}
		d := in.Mouse.Sub(v.press)
		if d == (geom.Vec{}) && !v.dragging {
			return false
		}
		if v.Zoom < 1 {
			d = d.Scale(1 / v.Zoom)
		}
		if v.dragging {
			v.Pan = v.Pan.Sub(d.Sub(v.lastDrag))
		}
		v.dragging = true
		v.lastDrag = d
		return false
	}

	wasDragging := v.dragging
	v.pressed = false
	v.dragging = false
	if wasDragging {
		return false
	}
	if in.Wheel != 0 && area.Contains(in.Mouse) {
		v.ZoomBy(in.Wheel)
	}
	return in.Released != ButtonNone && area.Contains(in.Mouse)
}
