package canvas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/questgraph/pkg/config"
	"github.com/matzehuels/questgraph/pkg/events"
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/layout"
	"github.com/matzehuels/questgraph/pkg/progress"
	"github.com/matzehuels/questgraph/pkg/quest"
	"github.com/matzehuels/questgraph/pkg/questgraph"
)

type staticSource struct {
	focus  uint32
	result *layout.Result
}

func (s *staticSource) Focus() uint32          { return s.focus }
func (s *staticSource) Result() *layout.Result { return s.result }

var area = geom.R(geom.V(100, 50), geom.V(900, 650))

func questNode(id uint32, typ quest.Type) questgraph.Node {
	r := &quest.Record{ID: id, Name: "Quest", Type: typ, Reachable: true}
	return questgraph.Node{ID: id, Label: r.Name, Kind: questgraph.QuestNode{Record: r}, Size: geom.V(80, 20)}
}

// sample lays out 1 → 2 → 3 with 2 focused.
func sample(t *testing.T, arrows bool) *layout.Result {
	t.Helper()
	g := questgraph.NewGraph(2,
		[]questgraph.Node{questNode(1, quest.TypeMSQ), questNode(2, quest.TypeBlue), questNode(3, quest.TypeNormal)},
		[]questgraph.Edge{{From: 1, To: 2}, {From: 2, To: 3}},
	)
	r, err := layout.NewLayered().Layout(context.Background(), g, layout.Options{Arrowheads: arrows})
	require.NoError(t, err)
	return r
}

func drawnRect(t *testing.T, f Frame, id uint32) geom.Rect {
	t.Helper()
	for _, d := range f.Nodes {
		if d.ID == id {
			return d.Rect
		}
	}
	t.Fatalf("node %d not drawn", id)
	return geom.Rect{}
}

func TestViewport_RoundTrip(t *testing.T) {
	points := []geom.Vec{geom.V(0, 0), geom.V(-120.5, 33), geom.V(1e4, -7)}
	for _, zoom := range []float64{MinZoom, 0.5, 1, 1.37, MaxZoom} {
		for _, pan := range []geom.Vec{{}, geom.V(-400, -300), geom.V(12.25, 99)} {
			v := Viewport{Zoom: zoom, Pan: pan}
			for _, p := range points {
				got := v.ToGraph(area, v.ToScreen(area, p))
				assert.True(t, got.Eq(p, 1e-6), "zoom %v pan %v: %v != %v", zoom, pan, got, p)
			}
		}
	}
}

func TestViewport_PivotAnchoredZoom(t *testing.T) {
	v := NewViewport()
	p := geom.V(-300, -250)
	v.CenterOn(area, p)
	assert.True(t, v.ToScreen(area, p).Eq(area.Center(), 1e-9))

	v.ZoomBy(10)
	assert.True(t, v.ToScreen(area, p).Eq(area.Center(), 1e-9), "the pivot stays fixed under zoom")
}

func TestViewport_ZoomClamp(t *testing.T) {
	tests := []struct {
		ticks int
		want  float64
	}{
		{ticks: 1, want: 1 + ZoomStep},
		{ticks: -1, want: 1 - ZoomStep},
		{ticks: 100, want: MaxZoom},
		{ticks: -100, want: MinZoom},
	}
	for _, tt := range tests {
		v := NewViewport()
		v.ZoomBy(tt.ticks)
		assert.InDelta(t, tt.want, v.Zoom, 1e-9)
	}
}

func TestFrame_NoQuest(t *testing.T) {
	c := New(&staticSource{}, Options{})
	var rec Recorder
	f := c.Frame(&rec, area, Input{})

	assert.Equal(t, StateNoQuest, f.State)
	texts := rec.Filter(OpText)
	require.Len(t, texts, 1)
	assert.Equal(t, MessageNoQuest, texts[0].Text)
}

func TestFrame_Loading(t *testing.T) {
	src := &staticSource{focus: 2}
	c := New(src, Options{})
	var rec Recorder

	f := c.Frame(&rec, area, Input{})
	assert.Equal(t, StateLoading, f.State)
	assert.Equal(t, spinnerSpokes, rec.Count(OpLine))
	assert.Equal(t, MessageLoading, rec.Filter(OpText)[0].Text)

	// A result for another focus is stale and still shows loading.
	src.result = sample(t, false)
	src.focus = 3
	rec.Reset()
	f = c.Frame(&rec, area, Input{})
	assert.Equal(t, StateLoading, f.State)
}

func TestFrame_CentersFocus(t *testing.T) {
	c := New(&staticSource{focus: 2, result: sample(t, false)}, Options{})
	var rec Recorder
	f := c.Frame(&rec, area, Input{})

	require.Equal(t, StateReady, f.State)
	assert.Equal(t, 3, len(f.Nodes))
	rect := drawnRect(t, f, 2)
	assert.True(t, rect.Center().Eq(area.Center(), 1e-9))

	// Prerequisites are drawn above.
	assert.Less(t, drawnRect(t, f, 1).Max.Y, rect.Min.Y)
	assert.Greater(t, drawnRect(t, f, 3).Min.Y, rect.Max.Y)
}

func TestFrame_TransformRoundTrip(t *testing.T) {
	r := sample(t, false)
	c := New(&staticSource{focus: 2, result: r}, Options{})
	var rec Recorder
	c.Frame(&rec, area, Input{Mouse: area.Center(), Wheel: 4})
	f := c.Frame(&rec, area, Input{Mouse: area.Center()})

	vp := c.Viewport()
	require.InDelta(t, 1+4*ZoomStep, vp.Zoom, 1e-9)
	for _, d := range f.Nodes {
		box, ok := r.Node(d.ID)
		require.True(t, ok)
		got := geom.R(vp.ToGraph(area, d.Rect.Min), vp.ToGraph(area, d.Rect.Max))
		assert.True(t, got.Min.Eq(box.Box.Min, 1e-6), "node %d", d.ID)
		assert.True(t, got.Max.Eq(box.Box.Max, 1e-6), "node %d", d.ID)
	}
}

func TestFrame_HitTestCenter(t *testing.T) {
	bus := events.New()
	selected, unsub := events.Subscribe[events.QuestSelected](bus, 4)
	defer unsub()

	c := New(&staticSource{focus: 2, result: sample(t, false)}, Options{Bus: bus})
	var rec Recorder
	f := c.Frame(&rec, area, Input{})

	for _, d := range append([]DrawnNode(nil), f.Nodes...) {
		hit := c.Frame(&rec, area, Input{Mouse: d.Rect.Center(), Released: ButtonLeft})
		assert.Equal(t, d.ID, hit.Hit)
		assert.Equal(t, ButtonLeft, hit.Button)
		assert.Equal(t, d.ID, c.Highlight())
		ev := <-selected
		assert.Equal(t, d.ID, ev.ID)
	}

	miss := c.Frame(&rec, area, Input{Mouse: area.Min.Add(geom.V(1, 1)), Released: ButtonLeft})
	assert.Zero(t, miss.Hit)
}

func TestFrame_RightAndMiddleClick(t *testing.T) {
	bus := events.New()
	journal, unsubJournal := events.Subscribe[events.JournalRequested](bus, 4)
	defer unsubJournal()
	selected, unsubSelected := events.Subscribe[events.QuestSelected](bus, 4)
	defer unsubSelected()

	c := New(&staticSource{focus: 2, result: sample(t, false)}, Options{Bus: bus})
	var rec Recorder
	f := c.Frame(&rec, area, Input{})
	center := drawnRect(t, f, 1).Center()

	hit := c.Frame(&rec, area, Input{Mouse: center, Released: ButtonRight})
	assert.Equal(t, uint32(1), hit.Hit)
	assert.Equal(t, uint32(1), (<-journal).ID)
	assert.Equal(t, uint32(2), c.Highlight(), "right click does not highlight")

	hit = c.Frame(&rec, area, Input{Mouse: center, Released: ButtonMiddle})
	assert.Equal(t, uint32(1), hit.Hit)
	assert.Empty(t, selected)
	assert.Empty(t, journal)
}

func TestFrame_Drag(t *testing.T) {
	c := New(&staticSource{focus: 2, result: sample(t, false)}, Options{})
	var rec Recorder
	f := c.Frame(&rec, area, Input{})
	start := drawnRect(t, f, 2).Center()
	pan := c.Viewport().Pan

	c.Frame(&rec, area, Input{Mouse: start, LeftDown: true})
	c.Frame(&rec, area, Input{Mouse: start.Add(geom.V(10, 0)), LeftDown: true})
	f = c.Frame(&rec, area, Input{Mouse: start.Add(geom.V(30, 5)), LeftDown: true})
	assert.True(t, c.Viewport().Dragging())
	assert.True(t, c.Viewport().Pan.Eq(pan.Sub(geom.V(20, 5)), 1e-9), "first movement only starts the drag")

	// The content follows the pointer.
	moved := drawnRect(t, f, 2).Center()
	assert.True(t, moved.Eq(start.Add(geom.V(20, 5)), 1e-9))

	release := c.Frame(&rec, area, Input{Mouse: start.Add(geom.V(30, 5)), Released: ButtonLeft})
	assert.Zero(t, release.Hit, "releasing a drag does not select")
	assert.False(t, c.Viewport().Dragging())
}

func TestFrame_DragBelowZoomOne(t *testing.T) {
	c := New(&staticSource{focus: 2, result: sample(t, false)}, Options{})
	var rec Recorder
	c.Frame(&rec, area, Input{Mouse: area.Center(), Wheel: -10})
	zoom := c.Viewport().Zoom
	require.Less(t, zoom, 1.0)
	pan := c.Viewport().Pan

	p := area.Center()
	c.Frame(&rec, area, Input{Mouse: p, LeftDown: true})
	c.Frame(&rec, area, Input{Mouse: p.Add(geom.V(1, 0)), LeftDown: true})
	c.Frame(&rec, area, Input{Mouse: p.Add(geom.V(11, 0)), LeftDown: true})
	assert.InDelta(t, pan.X-10/zoom, c.Viewport().Pan.X, 1e-9)
}

func TestFrame_Culling(t *testing.T) {
	c := New(&staticSource{focus: 2, result: sample(t, false)}, Options{})
	var rec Recorder
	f := c.Frame(&rec, area, Input{})
	assert.Zero(t, f.Culled)
	assert.Equal(t, 5, f.Drawn, "three nodes and two edges")

	// Drag the graph far out of view.
	c.Frame(&rec, area, Input{Mouse: area.Max.Sub(geom.V(1, 1)), LeftDown: true})
	c.Frame(&rec, area, Input{Mouse: area.Max, LeftDown: true})
	rec.Reset()
	f = c.Frame(&rec, area, Input{Mouse: area.Max.Add(geom.V(5000, 5000)), LeftDown: true})
	assert.Equal(t, 5, f.Culled)
	assert.Zero(t, f.Drawn)
	assert.Empty(t, f.Nodes)
	assert.Zero(t, rec.Count(OpBezier))
}

func TestFrame_NodeStyles(t *testing.T) {
	store := progress.NewStore("unused.toml")
	store.Replace([]uint32{3})
	palette := PaletteFrom(config.Default().Colors)

	c := New(&staticSource{focus: 2, result: sample(t, true)}, Options{Oracle: store, Palette: palette})
	var rec Recorder
	c.Frame(&rec, area, Input{})

	var fills []Op
	for _, op := range rec.Filter(OpRectFilled) {
		if op.Rounding == NodeRounding {
			fills = append(fills, op)
		}
	}
	require.Len(t, fills, 3)
	assert.Equal(t, palette.NodeMSQ, fills[0].Color)
	assert.Equal(t, palette.NodeBlue, fills[1].Color)
	assert.Equal(t, WithAlpha(palette.NodeDefault, completedAlpha), fills[2].Color)

	texts := rec.Filter(OpText)
	require.Len(t, texts, 3)
	assert.Equal(t, palette.Text, texts[0].Color)
	assert.InDelta(t, completedTextAlpha, texts[2].Color[3], 1e-9)

	var borders []Op
	for _, op := range rec.Filter(OpRect) {
		if op.Rounding == NodeRounding {
			borders = append(borders, op)
		}
	}
	require.Len(t, borders, 1, "only the focus has a border")
	assert.Equal(t, palette.HighlightBorder, borders[0].Color)
	assert.InDelta(t, BorderThickness, borders[0].Thickness, 1e-9)

	assert.Equal(t, 2, rec.Count(OpTriangleFilled), "one arrowhead per edge")
}

func TestFrame_NewResultResetsViewport(t *testing.T) {
	src := &staticSource{focus: 2, result: sample(t, false)}
	c := New(src, Options{})
	var rec Recorder
	c.Frame(&rec, area, Input{Mouse: area.Center(), Wheel: 3})
	require.NotEqual(t, 1.0, c.Viewport().Zoom)

	src.result = sample(t, true)
	f := c.Frame(&rec, area, Input{})
	assert.Equal(t, 1.0, c.Viewport().Zoom)
	assert.True(t, drawnRect(t, f, 2).Center().Eq(area.Center(), 1e-9))
}

func TestArrow(t *testing.T) {
	var rec Recorder
	arrow(&rec, geom.V(0, 0), geom.V(0, 10), Color{1, 1, 1, 1})
	tris := rec.Filter(OpTriangleFilled)
	require.Len(t, tris, 1)
	assert.Equal(t, geom.V(0, 10), tris[0].Points[1])
	half := tris[0].Points[0].Sub(tris[0].Points[2]).Len() / 2
	assert.InDelta(t, 10*0.2679491924, half, 1e-6, "tan(15°) · length")
}
