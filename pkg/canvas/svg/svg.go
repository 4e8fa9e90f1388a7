// Package svg implements a canvas draw list that writes an SVG document.
//
// The CLI renders one canvas frame per focus quest into a Document and
// writes it to <id>.svg. Labels use the embedded Go font so they match the
// widths the builder measured.
package svg

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/questgraph/pkg/canvas"
	"github.com/matzehuels/questgraph/pkg/fonts"
	"github.com/matzehuels/questgraph/pkg/geom"
)

// Document accumulates SVG elements. Create one with [New] and finish it
// with [Document.Bytes].
type Document struct {
	width, height float64
	embedFont     bool

	body  bytes.Buffer
	clips []int
	next  int
}

// Option configures a Document.
type Option func(*Document)

// WithoutFont skips embedding the label font, for smaller files.
func WithoutFont() Option { return func(d *Document) { d.embedFont = false } }

// New creates a document of the given size in pixels.
func New(width, height float64, opts ...Option) *Document {
	d := &Document{width: width, height: height, embedFont: true}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Bytes closes open clip groups and returns the complete document.
func (d *Document) Bytes() []byte {
	for range d.clips {
		d.body.WriteString("</g>\n")
	}
	d.clips = nil

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		d.width, d.height, d.width, d.height)
	if d.embedFont {
		fmt.Fprintf(&buf, "  <defs><style>@font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }</style></defs>\n",
			fonts.FontFamily, fonts.RegularBase64())
	}
	buf.Write(d.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (d *Document) PushClip(r geom.Rect) {
	id := d.next
	d.next++
	fmt.Fprintf(&d.body, `  <clipPath id="clip%d"><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/></clipPath>`+"\n",
		id, r.Min.X, r.Min.Y, r.Width(), r.Height())
	fmt.Fprintf(&d.body, `  <g clip-path="url(#clip%d)">`+"\n", id)
	d.clips = append(d.clips, id)
}

func (d *Document) PopClip() {
	if len(d.clips) == 0 {
		return
	}
	d.clips = d.clips[:len(d.clips)-1]
	d.body.WriteString("  </g>\n")
}

func (d *Document) RectFilled(r geom.Rect, c canvas.Color, rounding float64) {
	fmt.Fprintf(&d.body, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s"/>`+"\n",
		r.Min.X, r.Min.Y, r.Width(), r.Height(), rounding, rgba(c))
}

func (d *Document) Rect(r geom.Rect, c canvas.Color, rounding, thickness float64) {
	fmt.Fprintf(&d.body, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
		r.Min.X, r.Min.Y, r.Width(), r.Height(), rounding, rgba(c), thickness)
}

func (d *Document) Line(a, b geom.Vec, c canvas.Color, thickness float64) {
	fmt.Fprintf(&d.body, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
		a.X, a.Y, b.X, b.Y, rgba(c), thickness)
}

func (d *Document) Bezier(a, c1, c2, b geom.Vec, c canvas.Color, thickness float64) {
	fmt.Fprintf(&d.body, `  <path d="M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
		a.X, a.Y, c1.X, c1.Y, c2.X, c2.Y, b.X, b.Y, rgba(c), thickness)
}

func (d *Document) TriangleFilled(a, b, c geom.Vec, col canvas.Color) {
	fmt.Fprintf(&d.body, `  <polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="%s"/>`+"\n",
		a.X, a.Y, b.X, b.Y, c.X, c.Y, rgba(col))
}

// Text places the label by its top-left corner; SVG positions text by its
// baseline, so the y coordinate is moved down by the font's ascent.
func (d *Document) Text(pos geom.Vec, size float64, c canvas.Color, s string) {
	baseline := pos.Y + size*ascent
	fmt.Fprintf(&d.body, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.2f" fill="%s">%s</text>`+"\n",
		pos.X, baseline, html.EscapeString(fonts.FallbackFontFamily), size, rgba(c), html.EscapeString(s))
}

// ascent is the Go font's ascent as a fraction of the font size.
const ascent = 0.93

func rgba(c canvas.Color) string {
	channel := func(v float64) int { return int(math.Round(min(max(v, 0), 1) * 255)) }
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", channel(c[0]), channel(c[1]), channel(c[2]), min(max(c[3], 0), 1))
}

var _ canvas.DrawList = (*Document)(nil)
