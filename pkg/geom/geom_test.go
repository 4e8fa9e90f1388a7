package geom

import (
	"math"
	"testing"
)

func TestRectCanon(t *testing.T) {
	r := R(V(10, 5), V(2, 8))
	if r.Min != V(2, 5) || r.Max != V(10, 8) {
		t.Errorf("R() = %+v, want Min(2,5) Max(10,8)", r)
	}
	if r.Width() != 8 || r.Height() != 3 {
		t.Errorf("size = %v x %v, want 8 x 3", r.Width(), r.Height())
	}
}

func TestRectContains(t *testing.T) {
	r := R(V(0, 0), V(10, 10))
	tests := []struct {
		name string
		p    Vec
		want bool
	}{
		{"center", V(5, 5), true},
		{"corner", V(10, 10), true},
		{"outside", V(11, 5), false},
		{"negative", V(-0.1, 5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRectOverlaps(t *testing.T) {
	a := R(V(0, 0), V(10, 10))
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"inside", R(V(2, 2), V(3, 3)), true},
		{"touching edge", R(V(10, 0), V(20, 10)), false},
		{"disjoint", R(V(20, 20), V(30, 30)), false},
		{"partial", R(V(5, 5), V(15, 15)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundsAndUnion(t *testing.T) {
	b := Bounds(V(1, 5), V(-2, 3), V(4, -1))
	if b != R(V(-2, -1), V(4, 5)) {
		t.Errorf("Bounds() = %+v", b)
	}
	u := Rect{}.Union(R(V(1, 1), V(2, 2))).Union(R(V(-1, 0), V(0, 3)))
	if u != R(V(-1, 0), V(2, 3)) {
		t.Errorf("Union() = %+v", u)
	}
}

func TestVecRotate(t *testing.T) {
	got := V(1, 0).Rotate(math.Pi / 2)
	if !got.Eq(V(0, 1), 1e-12) {
		t.Errorf("Rotate(pi/2) = %v, want (0,1)", got)
	}
	if u := V(3, 4).Unit(); !u.Eq(V(0.6, 0.8), 1e-12) {
		t.Errorf("Unit() = %v", u)
	}
}
