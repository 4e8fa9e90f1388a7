// Package canvas draws a laid-out quest graph under pan and zoom.
//
// A [Canvas] runs on the UI goroutine. Every frame it reads the latest
// [layout.Result] from its [Source], advances the viewport with the
// frame's pointer [Input], emits primitives to a [DrawList], and
// hit-tests button releases against the node rectangles it drew.
//
// Frame order: background, grid, edges, nodes, border. Edges and nodes
// whose screen bounds miss the canvas are culled. When no quest is
// focused a message is drawn instead, and while the focused quest has no
// layout yet a loading spinner.
package canvas

import (
	"math"
	"time"

	"github.com/matzehuels/questgraph/pkg/config"
	"github.com/matzehuels/questgraph/pkg/events"
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/layout"
	"github.com/matzehuels/questgraph/pkg/observability"
	"github.com/matzehuels/questgraph/pkg/progress"
	"github.com/matzehuels/questgraph/pkg/quest"
	"github.com/matzehuels/questgraph/pkg/questgraph"
	"github.com/matzehuels/questgraph/pkg/textmeasure"
)

// Drawing constants.
const (
	GridSmall          = 10.0
	GridLarge          = 50.0
	GridSmallThickness = 1.0
	GridLargeThickness = 2.0

	EdgeThickness   = 3.0
	BorderThickness = 3.5
	NodeRounding    = 5.0

	// ArrowAngle is the opening angle of arrowhead triangles in degrees.
	ArrowAngle = 30.0

	// completedAlpha dims nodes of completed quests; completedTextAlpha
	// dims their labels.
	completedAlpha     = 0.5
	completedTextAlpha = float64(0x80) / 0xff

	spinnerDiameter = 86.0
	spinnerSpokes   = 12
)

// Messages drawn for the null states.
const (
	MessageNoQuest = "No quest selected"
	MessageLoading = "Loading"
)

// Palette holds the colors of a frame.
type Palette struct {
	Background Color
	Border     Color
	Text       Color
	Line       Color
	Grid       Color

	NodeDefault     Color
	NodeMSQ         Color
	NodeBlue        Color
	InitialBorder   Color
	HighlightBorder Color
}

// PaletteFrom returns the fixed chrome colors combined with the node
// colors of c.
func PaletteFrom(c config.Colors) Palette {
	return Palette{
		Background:      Color{0.13, 0.13, 0.13, 1},
		Border:          Color{0.3, 0.3, 0.3, 1},
		Text:            Color{0.9, 0.9, 0.9, 1},
		Line:            Color{0.7, 0.7, 0.7, 1},
		Grid:            Color{0.1, 0.1, 0.1, 1},
		NodeDefault:     c.GraphDefault,
		NodeMSQ:         c.GraphMSQ,
		NodeBlue:        c.GraphBlue,
		InitialBorder:   c.InitialBorder,
		HighlightBorder: c.HighlightBorder,
	}
}

// Source provides the focused quest and its latest layout. A Result for a
// different focus, or none at all, is drawn as loading.
type Source interface {
	Focus() uint32
	Result() *layout.Result
}

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// Input is the pointer state of one frame.
type Input struct {
	// Mouse is the pointer position in screen coordinates.
	Mouse geom.Vec
	// LeftDown is true while the left button is held.
	LeftDown bool
	// Released is the button released during this frame.
	Released Button
	// Wheel is the number of wheel ticks; positive zooms in.
	Wheel int
	// Elapsed animates the loading spinner.
	Elapsed time.Duration
}

// State tells what a frame showed.
type State int

const (
	StateNoQuest State = iota
	StateLoading
	StateReady
)

// DrawnNode is the screen rectangle of a node drawn in a frame.
type DrawnNode struct {
	ID   uint32
	Rect geom.Rect
}

// Frame summarizes one drawn frame.
type Frame struct {
	State  State
	Drawn  int
	Culled int

	// Nodes lists the drawn node rectangles in draw order. The slice is
	// reused by the next frame.
	Nodes []DrawnNode

	// Hit is the node under a released button, with Button the button.
	Hit    uint32
	Button Button
}

// Options configures a Canvas.
type Options struct {
	Palette  Palette
	Oracle   progress.Oracle
	Bus      *events.Bus
	Hooks    observability.RenderHooks
	Measurer textmeasure.Measurer

	// FontSize is the label size at zoom 1.
	FontSize float64
	// TextPadding offsets labels from the node's top-left corner at zoom 1.
	TextPadding geom.Vec
}

// Canvas draws the graph of a Source. It is not safe for concurrent use.
type Canvas struct {
	src  Source
	opts Options

	vp        Viewport
	result    *layout.Result
	recenter  bool
	focus     uint32
	highlight uint32
	drawn     []DrawnNode
}

// New creates a canvas reading from src.
func New(src Source, opts Options) *Canvas {
	if opts.Palette == (Palette{}) {
		opts.Palette = PaletteFrom(config.Default().Colors)
	}
	if opts.Oracle == nil {
		opts.Oracle = progress.None{}
	}
	if opts.Bus == nil {
		opts.Bus = events.New()
	}
	if opts.Hooks == nil {
		opts.Hooks = observability.NoopRenderHooks{}
	}
	if opts.Measurer == nil {
		opts.Measurer = textmeasure.CellMeasurer{Cell: geom.V(7, textmeasure.DefaultFontSize)}
	}
	if opts.FontSize <= 0 {
		opts.FontSize = textmeasure.DefaultFontSize
	}
	if opts.TextPadding == (geom.Vec{}) {
		opts.TextPadding = questgraph.TextPadding
	}
	return &Canvas{src: src, opts: opts, vp: NewViewport()}
}

// SetPalette replaces the colors used from the next frame on.
func (c *Canvas) SetPalette(p Palette) { c.opts.Palette = p }

// Viewport returns the current viewport.
func (c *Canvas) Viewport() Viewport { return c.vp }

// Highlight returns the quest highlighted by the last left click, or the
// focus quest if none was clicked since it was focused.
func (c *Canvas) Highlight() uint32 { return c.highlight }

// Frame draws one frame into area.
func (c *Canvas) Frame(dl DrawList, area geom.Rect, in Input) Frame {
	focus := c.src.Focus()
	if focus != c.focus {
		c.focus = focus
		c.highlight = focus
	}
	if focus == 0 {
		c.message(dl, area, MessageNoQuest)
		return Frame{State: StateNoQuest}
	}

	r := c.src.Result()
	if r == nil || r.Focus != focus {
		c.spinner(dl, area, in.Elapsed)
		c.message(dl, area, MessageLoading)
		return Frame{State: StateLoading}
	}
	if r != c.result {
		c.result = r
		c.vp.Reset()
		c.recenter = true
	}
	if c.recenter {
		center := r.Bounds.Center()
		if n, ok := r.Center(); ok {
			center = n.Box.Center()
		}
		c.vp.CenterOn(area, center)
		c.recenter = false
	}

	hitTest := c.vp.update(area, in)

	f := Frame{State: StateReady}
	dl.PushClip(area)
	dl.RectFilled(area, c.opts.Palette.Background, 0)
	c.grid(dl, area)
	c.edges(dl, area, r, &f)
	c.nodes(dl, area, r, &f)
	dl.Rect(area, c.opts.Palette.Border, 0, 1)
	dl.PopClip()

	f.Nodes = c.drawn
	if hitTest {
		c.hitTest(in, &f)
	}
	c.opts.Hooks.OnFrame(f.Drawn, f.Culled)
	return f
}

func (c *Canvas) grid(dl DrawList, area geom.Rect) {
	z := c.vp.Zoom
	size := area.Size().Scale(1 / z)
	lines := func(step, thickness float64) {
		for i := 0.0; i < size.X/step; i++ {
			x := area.Min.X + i*step*z
			dl.Line(geom.V(x, area.Min.Y), geom.V(x, area.Max.Y), c.opts.Palette.Grid, thickness)
		}
		for i := 0.0; i < size.Y/step; i++ {
			y := area.Min.Y + i*step*z
			dl.Line(geom.V(area.Min.X, y), geom.V(area.Max.X, y), c.opts.Palette.Grid, thickness)
		}
	}
	lines(GridSmall, GridSmallThickness)
	lines(GridLarge, GridLargeThickness)
}

func (c *Canvas) edges(dl DrawList, area geom.Rect, r *layout.Result, f *Frame) {
	z := c.vp.Zoom
	color := c.opts.Palette.Line
	for _, e := range r.Edges {
		if !visible(c.vp.RectToScreen(area, e.Bounds()), area) {
			f.Culled++
			continue
		}
		f.Drawn++
		for _, s := range e.Segments {
			a := c.vp.ToScreen(area, s.Start)
			b := c.vp.ToScreen(area, s.End)
			switch s.Kind {
			case layout.SegmentCubic:
				dl.Bezier(a, c.vp.ToScreen(area, s.C1), c.vp.ToScreen(area, s.C2), b, color, EdgeThickness*z)
			default:
				dl.Line(a, b, color, EdgeThickness*z)
			}
		}
		if e.Arrow != nil {
			arrow(dl, c.vp.ToScreen(area, e.Arrow.Base), c.vp.ToScreen(area, e.Arrow.Tip), color)
		}
	}
}

// arrow draws a filled triangle with its tip at end and its base centered
// on start, opening at ArrowAngle.
func arrow(dl DrawList, start, end geom.Vec, c Color) {
	h := end.Sub(start)
	if h.Len() == 0 {
		return
	}
	dir := h.Unit()
	side := geom.V(-dir.Y, dir.X).Scale(h.Len() * math.Tan(ArrowAngle*0.5*math.Pi/180))
	dl.TriangleFilled(start.Add(side), end, start.Sub(side), c)
}

func (c *Canvas) nodes(dl DrawList, area geom.Rect, r *layout.Result, f *Frame) {
	z := c.vp.Zoom
	p := c.opts.Palette
	c.drawn = c.drawn[:0]
	for _, n := range r.Nodes {
		rect := c.vp.RectToScreen(area, n.Box)
		if !visible(rect, area) {
			f.Culled++
			continue
		}
		f.Drawn++

		bg, text := p.NodeDefault, p.Text
		if k, ok := n.Kind.(questgraph.QuestNode); ok {
			bg = c.nodeColor(k.Record.Type)
			if c.opts.Oracle.IsQuestComplete(n.ID) {
				bg = WithAlpha(bg, completedAlpha)
				text = WithAlpha(text, completedTextAlpha)
			}
		}

		c.drawn = append(c.drawn, DrawnNode{ID: n.ID, Rect: rect})
		dl.RectFilled(rect, bg, NodeRounding)
		if border, ok := c.border(n.ID); ok {
			one := geom.V(1, 1)
			dl.Rect(geom.Rect{Min: rect.Min.Sub(one), Max: rect.Max.Add(one)}, border, NodeRounding, BorderThickness*z)
		}
		dl.Text(rect.Min.Add(c.opts.TextPadding.Scale(z)), c.opts.FontSize*z, text, n.Label)
	}
}

func (c *Canvas) nodeColor(t quest.Type) Color {
	switch t {
	case quest.TypeMSQ:
		return c.opts.Palette.NodeMSQ
	case quest.TypeBlue:
		return c.opts.Palette.NodeBlue
	default:
		return c.opts.Palette.NodeDefault
	}
}

// border returns the highlight border for the clicked quest, or the
// initial border for the focus quest.
func (c *Canvas) border(id uint32) (Color, bool) {
	switch id {
	case c.highlight:
		return c.opts.Palette.HighlightBorder, true
	case c.focus:
		return c.opts.Palette.InitialBorder, true
	default:
		return Color{}, false
	}
}

// hitTest resolves a release against the drawn rectangles; the first one
// in draw order containing the pointer wins.
func (c *Canvas) hitTest(in Input, f *Frame) {
	for _, d := range c.drawn {
		if !d.Rect.Contains(in.Mouse) {
			continue
		}
		f.Hit, f.Button = d.ID, in.Released
		switch in.Released {
		case ButtonLeft:
			c.highlight = d.ID
			events.Publish(c.opts.Bus, events.QuestSelected{ID: d.ID})
		case ButtonRight:
			events.Publish(c.opts.Bus, events.JournalRequested{ID: d.ID})
		}
		return
	}
}

func (c *Canvas) message(dl DrawList, area geom.Rect, text string) {
	size := c.opts.Measurer.MeasureText(text)
	pos := area.Center().Sub(size.Scale(0.5))
	dl.Text(pos, c.opts.FontSize, c.opts.Palette.Text, text)
}

// spinner draws spokes around the canvas center, the brightest one
// rotating once per second.
func (c *Canvas) spinner(dl DrawList, area geom.Rect, elapsed time.Duration) {
	center := area.Center()
	outer := spinnerDiameter / 2
	inner := outer * 0.6
	lead := int(elapsed.Seconds()*spinnerSpokes) % spinnerSpokes
	for i := range spinnerSpokes {
		angle := 2 * math.Pi * float64(i) / spinnerSpokes
		dir := geom.V(math.Cos(angle), math.Sin(angle))
		fade := float64((lead-i+spinnerSpokes)%spinnerSpokes) / spinnerSpokes
		col := WithAlpha(c.opts.Palette.Line, 1-0.8*fade)
		dl.Line(center.Add(dir.Scale(inner)), center.Add(dir.Scale(outer)), col, 5)
	}
}

// visible reports whether r touches area.
func visible(r, area geom.Rect) bool {
	return r.Max.X >= area.Min.X && r.Min.X <= area.Max.X &&
		r.Max.Y >= area.Min.Y && r.Min.Y <= area.Max.Y
}
