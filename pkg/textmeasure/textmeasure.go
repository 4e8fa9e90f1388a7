// Package textmeasure measures label text for node sizing.
//
// The builder sizes every node from its label, so the measurer must match
// the surface the graph is drawn on: [FontMeasurer] for SVG output drawn
// with the embedded Go font, [CellMeasurer] for the terminal where one cell
// is one unit.
package textmeasure

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/questgraph/pkg/fonts"
	"github.com/matzehuels/questgraph/pkg/geom"
)

// Measurer returns the size of a text block in drawing units.
type Measurer interface {
	MeasureText(s string) geom.Vec
}

// DefaultFontSize is the label size in pixels.
const DefaultFontSize = 13

// FontMeasurer measures text with the Go Regular font. It is safe for
// concurrent use.
type FontMeasurer struct {
	mu         sync.Mutex
	face       font.Face
	lineHeight float64
	size       float64
}

// NewFontMeasurer creates a measurer for the given pixel size at 72 DPI.
// A non-positive size selects DefaultFontSize.
func NewFontMeasurer(size float64) (*FontMeasurer, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	f, err := fonts.Regular()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, err
	}
	m := face.Metrics()
	return &FontMeasurer{
		face:       face,
		lineHeight: float64(m.Height) / 64,
		size:       size,
	}, nil
}

// Size returns the font size in pixels.
func (m *FontMeasurer) Size() float64 { return m.size }

// MeasureText returns the width of the widest line and the height of all
// lines.
func (m *FontMeasurer) MeasureText(s string) geom.Vec {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := strings.Split(s, "\n")
	w := 0.0
	for _, l := range lines {
		w = max(w, float64(font.MeasureString(m.face, l))/64)
	}
	return geom.V(w, m.lineHeight*float64(len(lines)))
}

// CellMeasurer measures text in terminal cells, honouring wide runes.
// Cell is the size of one cell in drawing units; the zero value counts
// cells directly.
type CellMeasurer struct {
	Cell geom.Vec
}

// MeasureText returns the cell width of the widest line and the line
// count, scaled by Cell.
func (m CellMeasurer) MeasureText(s string) geom.Vec {
	cell := m.Cell
	if cell.X <= 0 || cell.Y <= 0 {
		cell = geom.V(1, 1)
	}
	return geom.V(float64(lipgloss.Width(s))*cell.X, float64(lipgloss.Height(s))*cell.Y)
}

var (
	_ Measurer = (*FontMeasurer)(nil)
	_ Measurer = CellMeasurer{}
)
