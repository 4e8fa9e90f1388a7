// Package geom provides the small 2D vector and rectangle types shared by
// the builder, the layout engines and the canvas.
package geom

import "math"

// Vec is a 2D point or size.
type Vec struct {
	X, Y float64
}

// V is shorthand for Vec{x, y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(f float64) Vec { return Vec{v.X * f, v.Y * f} }
func (v Vec) Neg() Vec            { return Vec{-v.X, -v.Y} }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec) Dot(o Vec) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec) Eq(o Vec, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Unit returns v scaled to length 1, or the zero vector.
func (v Vec) Unit() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return v.Scale(1 / l)
}

// Rotate returns v rotated by angle radians counter-clockwise.
func (v Vec) Rotate(angle float64) Vec {
	s, c := math.Sincos(angle)
	return Vec{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Rect is an axis-aligned rectangle. Min holds the smaller coordinates
// after [Rect.Canon].
type Rect struct {
	Min, Max Vec
}

// R builds a canonical rectangle from two opposite corners.
func R(a, b Vec) Rect { return Rect{a, b}.Canon() }

// Canon returns r with Min and Max swapped per axis where needed.
func (r Rect) Canon() Rect {
	return Rect{
		Min: Vec{math.Min(r.Min.X, r.Max.X), math.Min(r.Min.Y, r.Max.Y)},
		Max: Vec{math.Max(r.Min.X, r.Max.X), math.Max(r.Min.Y, r.Max.Y)},
	}
}

// Width returns the horizontal span.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical span.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Size returns the width and height.
func (r Rect) Size() Vec { return r.Max.Sub(r.Min) }

// Center returns the midpoint.
func (r Rect) Center() Vec { return r.Min.Add(r.Max).Scale(0.5) }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Overlaps reports whether r and o share interior points.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X && r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Union returns the smallest rectangle containing r and o. An empty r is
// ignored.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	return Rect{
		Min: Vec{math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)},
		Max: Vec{math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Expand grows r to contain p.
func (r Rect) Expand(p Vec) Rect {
	return Rect{
		Min: Vec{math.Min(r.Min.X, p.X), math.Min(r.Min.Y, p.Y)},
		Max: Vec{math.Max(r.Max.X, p.X), math.Max(r.Max.Y, p.Y)},
	}
}

// Bounds returns the bounding rectangle of pts.
func Bounds(pts ...Vec) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{pts[0], pts[0]}
	for _, p := range pts[1:] {
		r = r.Expand(p)
	}
	return r
}
