// Package term implements a canvas draw list on a terminal cell grid.
//
// Drawing coordinates stay in pixels; every cell covers Cell pixels, so
// the same layout and viewport math serve the SVG and the terminal. A
// primitive touches the cells whose centers it covers. Axis-aligned
// hairlines such as the background grid tint cell backgrounds instead of
// placing runes, which keeps the grid from drowning labels.
package term

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/questgraph/pkg/canvas"
	"github.com/matzehuels/questgraph/pkg/geom"
)

// DefaultCell is the pixel size assumed for one terminal cell.
var DefaultCell = geom.V(8, 16)

// hairline is the thickest axis-aligned line drawn as a background tint.
const hairline = 2.0

type cell struct {
	r      rune
	fg, bg canvas.Color
}

// Grid is a cols×rows cell surface.
type Grid struct {
	cols, rows int
	size       geom.Vec
	cells      []cell
	clips      []geom.Rect
}

// New creates a grid filled with blank cells on a black background.
func New(cols, rows int, cellSize geom.Vec) *Grid {
	if cellSize.X <= 0 || cellSize.Y <= 0 {
		cellSize = DefaultCell
	}
	g := &Grid{cols: max(cols, 0), rows: max(rows, 0), size: cellSize}
	g.cells = make([]cell, g.cols*g.rows)
	g.Clear()
	return g
}

// Clear blanks every cell and drops any open clip so the grid can be
// reused for the next frame.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = cell{r: ' ', fg: canvas.Color{1, 1, 1, 1}, bg: canvas.Color{0, 0, 0, 1}}
	}
	g.clips = g.clips[:0]
}

// Area returns the grid's extent in pixels.
func (g *Grid) Area() geom.Rect {
	return geom.Rect{Max: geom.V(float64(g.cols)*g.size.X, float64(g.rows)*g.size.Y)}
}

// CellCenter returns the pixel position of the center of a cell, which is
// where a mouse event reported for that cell points.
func (g *Grid) CellCenter(col, row int) geom.Vec {
	return geom.V((float64(col)+0.5)*g.size.X, (float64(row)+0.5)*g.size.Y)
}

// Rune returns the rune at a cell, or 0 outside the grid.
func (g *Grid) Rune(col, row int) rune {
	c := g.at(col, row)
	if c == nil {
		return 0
	}
	return c.r
}

// Background returns the background color at a cell.
func (g *Grid) Background(col, row int) canvas.Color {
	c := g.at(col, row)
	if c == nil {
		return canvas.Color{}
	}
	return c.bg
}

// Row returns the runes of a row as a string.
func (g *Grid) Row(row int) string {
	var b strings.Builder
	for col := range g.cols {
		b.WriteRune(g.cells[row*g.cols+col].r)
	}
	return b.String()
}

// Render returns the grid as styled terminal text, one line per row.
func (g *Grid) Render() string {
	lines := make([]string, g.rows)
	for row := range g.rows {
		var b strings.Builder
		start := 0
		for col := 1; col <= g.cols; col++ {
			if col < g.cols && sameStyle(g.cells[row*g.cols+col], g.cells[row*g.cols+start]) {
				continue
			}
			run := g.cells[row*g.cols+start : row*g.cols+col]
			var text strings.Builder
			for _, c := range run {
				text.WriteRune(c.r)
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(run[0].fg))).
				Background(lipgloss.Color(hex(run[0].bg)))
			b.WriteString(style.Render(text.String()))
			start = col
		}
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}

func sameStyle(a, b cell) bool { return a.fg == b.fg && a.bg == b.bg }

func (g *Grid) PushClip(r geom.Rect) {
	if n := len(g.clips); n > 0 {
		r = intersect(r, g.clips[n-1])
	}
	g.clips = append(g.clips, r)
}

func (g *Grid) PopClip() {
	if len(g.clips) > 0 {
		g.clips = g.clips[:len(g.clips)-1]
	}
}

func (g *Grid) RectFilled(r geom.Rect, c canvas.Color, _ float64) {
	c0, r0, c1, r1 := g.span(r)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if cl := g.drawable(col, row); cl != nil {
				cl.bg = blend(c, cl.bg)
				cl.r = ' '
			}
		}
	}
}

func (g *Grid) Rect(r geom.Rect, c canvas.Color, rounding, _ float64) {
	c0, r0, c1, r1 := g.span(r)
	if c0 > c1 || r0 > r1 {
		return
	}
	corners := [4]rune{'┌', '┐', '└', '┘'}
	if rounding > 0 {
		corners = [4]rune{'╭', '╮', '╰', '╯'}
	}
	for col := c0 + 1; col < c1; col++ {
		g.stroke(col, r0, '─', c)
		g.stroke(col, r1, '─', c)
	}
	for row := r0 + 1; row < r1; row++ {
		g.stroke(c0, row, '│', c)
		g.stroke(c1, row, '│', c)
	}
	g.stroke(c0, r0, corners[0], c)
	g.stroke(c1, r0, corners[1], c)
	g.stroke(c0, r1, corners[2], c)
	g.stroke(c1, r1, corners[3], c)
}

func (g *Grid) Line(a, b geom.Vec, c canvas.Color, thickness float64) {
	if thickness <= hairline && (a.X == b.X || a.Y == b.Y) {
		g.tint(a, b, c)
		return
	}
	g.polyline([]geom.Vec{a, b}, c)
}

func (g *Grid) Bezier(a, c1, c2, b geom.Vec, c canvas.Color, _ float64) {
	length := a.Sub(c1).Len() + c1.Sub(c2).Len() + c2.Sub(b).Len()
	steps := max(8, int(length/min(g.size.X, g.size.Y)))
	pts := make([]geom.Vec, steps+1)
	for i := range pts {
		pts[i] = cubicAt(a, c1, c2, b, float64(i)/float64(steps))
	}
	g.polyline(pts, c)
}

// TriangleFilled marks the tip cell with an arrow pointing away from the
// base edge from a to c.
func (g *Grid) TriangleFilled(a, b, c geom.Vec, col canvas.Color) {
	dir := b.Sub(a.Add(c).Scale(0.5))
	r := '▼'
	switch {
	case math.Abs(dir.X) > math.Abs(dir.Y) && dir.X > 0:
		r = '▶'
	case math.Abs(dir.X) > math.Abs(dir.Y):
		r = '◀'
	case dir.Y < 0:
		r = '▲'
	}
	cx, cy := g.cellOf(b)
	g.stroke(cx, cy, r, col)
}

// Text writes s from the cell containing pos. Text smaller than half a
// cell is not legible and is skipped.
func (g *Grid) Text(pos geom.Vec, size float64, c canvas.Color, s string) {
	if size < g.size.Y/2 {
		return
	}
	col, row := g.cellOf(pos)
	for _, r := range s {
		if r == '\n' {
			row++
			col, _ = g.cellOf(pos)
			continue
		}
		if cl := g.drawable(col, row); cl != nil {
			cl.r = r
			cl.fg = blend(c, cl.bg)
		}
		col += max(lipgloss.Width(string(r)), 1)
	}
}

func (g *Grid) polyline(pts []geom.Vec, c canvas.Color) {
	for i := 0; i+1 < len(pts); i++ {
		if pts[i] == pts[i+1] {
			continue
		}
		x0, y0 := g.cellOf(pts[i])
		x1, y1 := g.cellOf(pts[i+1])
		r := lineRune(pts[i+1].Sub(pts[i]))
		bresenham(x0, y0, x1, y1, func(x, y int) { g.stroke(x, y, r, c) })
	}
}

func (g *Grid) tint(a, b geom.Vec, c canvas.Color) {
	x0, y0 := g.cellOf(a)
	x1, y1 := g.cellOf(b)
	bresenham(x0, y0, x1, y1, func(x, y int) {
		if cl := g.drawable(x, y); cl != nil {
			cl.bg = blend(c, cl.bg)
		}
	})
}

func (g *Grid) stroke(col, row int, r rune, c canvas.Color) {
	if cl := g.drawable(col, row); cl != nil {
		cl.r = r
		cl.fg = blend(c, cl.bg)
	}
}

func (g *Grid) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return nil
	}
	return &g.cells[row*g.cols+col]
}

// drawable returns the cell if it exists and its center is inside the
// current clip.
func (g *Grid) drawable(col, row int) *cell {
	c := g.at(col, row)
	if c == nil {
		return nil
	}
	if n := len(g.clips); n > 0 && !g.clips[n-1].Contains(g.CellCenter(col, row)) {
		return nil
	}
	return c
}

func (g *Grid) cellOf(p geom.Vec) (int, int) {
	return int(math.Floor(p.X / g.size.X)), int(math.Floor(p.Y / g.size.Y))
}

// span returns the cells whose centers lie inside r.
func (g *Grid) span(r geom.Rect) (c0, r0, c1, r1 int) {
	c0 = int(math.Ceil(r.Min.X/g.size.X - 0.5))
	r0 = int(math.Ceil(r.Min.Y/g.size.Y - 0.5))
	c1 = int(math.Floor(r.Max.X/g.size.X - 0.5))
	r1 = int(math.Floor(r.Max.Y/g.size.Y - 0.5))
	return c0, r0, c1, r1
}

func lineRune(d geom.Vec) rune {
	ax, ay := math.Abs(d.X), math.Abs(d.Y)
	switch {
	case ay <= ax*0.4:
		return '─'
	case ax <= ay*0.4:
		return '│'
	case (d.X > 0) == (d.Y > 0):
		return '╲'
	default:
		return '╱'
	}
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func cubicAt(a, c1, c2, b geom.Vec, t float64) geom.Vec {
	u := 1 - t
	return a.Scale(u * u * u).
		Add(c1.Scale(3 * u * u * t)).
		Add(c2.Scale(3 * u * t * t)).
		Add(b.Scale(t * t * t))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func intersect(a, b geom.Rect) geom.Rect {
	return geom.Rect{
		Min: geom.V(max(a.Min.X, b.Min.X), max(a.Min.Y, b.Min.Y)),
		Max: geom.V(min(a.Max.X, b.Max.X), min(a.Max.Y, b.Max.Y)),
	}
}

// blend composites c over an opaque background.
func blend(c, bg canvas.Color) canvas.Color {
	a := min(max(c[3], 0), 1)
	return canvas.Color{
		c[0]*a + bg[0]*(1-a),
		c[1]*a + bg[1]*(1-a),
		c[2]*a + bg[2]*(1-a),
		1,
	}
}

func hex(c canvas.Color) string {
	channel := func(v float64) int { return int(math.Round(min(max(v, 0), 1) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x", channel(c[0]), channel(c[1]), channel(c[2]))
}

var _ canvas.DrawList = (*Grid)(nil)
