package layout

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"gonum.org/v1/gonum/graph/formats/dot"
	"gonum.org/v1/gonum/graph/formats/dot/ast"

	"github.com/matzehuels/questgraph/pkg/errors"
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/questgraph"
)

// EngineGraphviz is the name of [GraphvizEngine].
const EngineGraphviz = "graphviz"

// pointsPerInch converts between Graphviz inches and layout pixels.
const pointsPerInch = 72.0

// Export formats supported by [Export].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// GraphvizEngine lays out subgraphs with the dot algorithm of Graphviz,
// compiled to WebAssembly by go-graphviz.
//
// Nodes are emitted as fixed-size boxes so Graphviz keeps the measured
// label sizes. The positioned graph is read back from Graphviz's dot
// output with gonum's DOT parser.
type GraphvizEngine struct{}

// NewGraphviz returns a GraphvizEngine.
func NewGraphviz() *GraphvizEngine { return &GraphvizEngine{} }

// Name returns "graphviz".
func (e *GraphvizEngine) Name() string { return EngineGraphviz }

// Layout implements [Engine].
func (e *GraphvizEngine) Layout(ctx context.Context, g *questgraph.Graph, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if len(g.Nodes) == 0 {
		return assemble(g, EngineGraphviz, nil, nil, opts), nil
	}

	out, err := render(ctx, ToDOT(g, opts, false), graphviz.XDOT)
	if err != nil {
		return nil, err
	}
	pos, err := parsePositions(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "parse graphviz output")
	}

	boxes := make([]geom.Rect, len(g.Nodes))
	for i, n := range g.Nodes {
		box, ok := pos.nodes[dotID(n.ID)]
		if !ok {
			return nil, errors.New(errors.ErrCodeLayoutFailed, "graphviz dropped node %d", n.ID)
		}
		boxes[i] = box
	}
	curves := make([][]Segment, len(g.Edges))
	for i, edge := range g.Edges {
		curves[i] = pos.edges[[2]string{dotID(edge.From), dotID(edge.To)}]
	}
	return assemble(g, EngineGraphviz, boxes, curves, opts), nil
}

// ToDOT converts a subgraph to Graphviz DOT. With labeled set the node
// labels and Graphviz arrowheads are written out for export; for layout
// the boxes stay empty and fixed to the measured sizes, and arrowheads are
// added afterwards by [Result] assembly.
func ToDOT(g *questgraph.Graph, opts Options, labeled bool) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	if labeled {
		buf.WriteString("  node [shape=box, style=\"rounded\", fixedsize=true, fontsize=13, margin=0];\n")
	} else {
		buf.WriteString("  node [shape=box, fixedsize=true, label=\"\", margin=0];\n")
	}
	if !labeled || !opts.Arrowheads {
		buf.WriteString("  edge [arrowhead=none];\n")
	}
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := []string{
			"width=" + inches(n.Size.X),
			"height=" + inches(n.Size.Y),
		}
		if labeled {
			attrs = append(attrs, fmt.Sprintf("label=%q", n.Label))
			if n.ID == g.Focus {
				attrs = append(attrs, "penwidth=2")
			}
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", dotID(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if _, ok := g.Node(e.From); !ok {
			continue
		}
		if _, ok := g.Node(e.To); !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", dotID(e.From), dotID(e.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Export renders the subgraph with Graphviz in the given format: "dot"
// returns the labeled DOT source, "svg" and "png" the rendered image.
func Export(ctx context.Context, g *questgraph.Graph, opts Options, format string) ([]byte, error) {
	src := ToDOT(g, opts, true)
	switch format {
	case FormatDOT:
		return []byte(src), nil
	case FormatSVG:
		return render(ctx, src, graphviz.SVG)
	case FormatPNG:
		return render(ctx, src, graphviz.PNG)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q", format)
	}
}

func dotID(id uint32) string { return "q" + strconv.FormatUint(uint64(id), 10) }

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

// render runs Graphviz on src. The WebAssembly call does not observe
// cancellation promptly, so it runs on its own goroutine and render
// returns as soon as ctx is done. The abandoned goroutine finishes and
// releases its Graphviz instance on its own.
func render(ctx context.Context, src string, format graphviz.Format) ([]byte, error) {
	type outcome struct {
		data []byte
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		data, err := renderSync(context.WithoutCancel(ctx), src, format)
		done <- outcome{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		return o.data, o.err
	}
}

func renderSync(ctx context.Context, src string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

// positions is the geometry read back from Graphviz, converted to
// top-down pixel coordinates.
type positions struct {
	nodes map[string]geom.Rect
	edges map[[2]string][]Segment
}

// parsePositions reads node boxes and edge splines from Graphviz's dot
// output. Graphviz puts the origin at the bottom left, so y is flipped
// against the graph's bounding box.
func parsePositions(out []byte) (*positions, error) {
	file, err := dot.ParseBytes(out)
	if err != nil {
		return nil, err
	}
	if len(file.Graphs) == 0 {
		return nil, fmt.Errorf("no graph in output")
	}
	graph := file.Graphs[0]

	var top float64
	for _, stmt := range graph.Stmts {
		switch s := stmt.(type) {
		case *ast.AttrStmt:
			if s.Kind != ast.GraphKind {
				continue
			}
			if bb, ok := attr(s.Attrs, "bb"); ok {
				if top, err = parseTop(bb); err != nil {
					return nil, err
				}
			}
		case *ast.Attr:
			if s.Key == "bb" {
				if top, err = parseTop(unquote(s.Val)); err != nil {
					return nil, err
				}
			}
		}
	}
	flip := func(x, y float64) geom.Vec { return geom.V(x, top-y) }

	p := &positions{nodes: make(map[string]geom.Rect), edges: make(map[[2]string][]Segment)}
	for _, stmt := range graph.Stmts {
		switch s := stmt.(type) {
		case *ast.NodeStmt:
			box, ok, err := nodeBox(s.Attrs, flip)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", s.Node.ID, err)
			}
			if ok {
				p.nodes[unquote(s.Node.ID)] = box
			}
		case *ast.EdgeStmt:
			from, okFrom := s.From.(*ast.Node)
			if !okFrom || s.To == nil {
				continue
			}
			to, okTo := s.To.Vertex.(*ast.Node)
			if !okTo {
				continue
			}
			spline, ok := attr(s.Attrs, "pos")
			if !ok {
				continue
			}
			segs, err := parseSpline(spline, flip)
			if err != nil {
				return nil, fmt.Errorf("edge %s -> %s: %w", from.ID, to.ID, err)
			}
			p.edges[[2]string{unquote(from.ID), unquote(to.ID)}] = segs
		}
	}
	return p, nil
}

func nodeBox(attrs []*ast.Attr, flip func(x, y float64) geom.Vec) (geom.Rect, bool, error) {
	pos, ok := attr(attrs, "pos")
	if !ok {
		return geom.Rect{}, false, nil
	}
	center, err := parsePoint(pos)
	if err != nil {
		return geom.Rect{}, false, err
	}
	w, err := floatAttr(attrs, "width")
	if err != nil {
		return geom.Rect{}, false, err
	}
	h, err := floatAttr(attrs, "height")
	if err != nil {
		return geom.Rect{}, false, err
	}
	c := flip(center.X, center.Y)
	half := geom.V(w*pointsPerInch/2, h*pointsPerInch/2)
	return geom.R(c.Sub(half), c.Add(half)), true, nil
}

// parseSpline parses an edge pos attribute: optional "s,x,y" and
// "e,x,y" endpoints followed by 3n+1 cubic bezier control points. When
// Graphviz drew an arrowhead, the "e" point is its tip and a final line
// segment is appended so the curve still ends at the target node.
func parseSpline(s string, flip func(x, y float64) geom.Vec) ([]Segment, error) {
	var (
		pts    []geom.Vec
		endTip *geom.Vec
	)
	for field := range strings.FieldsSeq(s) {
		switch {
		case strings.HasPrefix(field, "s,"):
			continue
		case strings.HasPrefix(field, "e,"):
			v, err := parsePoint(field[2:])
			if err != nil {
				return nil, err
			}
			tip := flip(v.X, v.Y)
			endTip = &tip
		default:
			v, err := parsePoint(field)
			if err != nil {
				return nil, err
			}
			pts = append(pts, flip(v.X, v.Y))
		}
	}
	if len(pts) < 4 || (len(pts)-1)%3 != 0 {
		return nil, fmt.Errorf("spline has %d control points", len(pts))
	}

	segs := make([]Segment, 0, (len(pts)-1)/3+1)
	for i := 0; i+3 < len(pts); i += 3 {
		segs = append(segs, Cubic(pts[i], pts[i+1], pts[i+2], pts[i+3]))
	}
	if endTip != nil {
		segs = append(segs, Line(pts[len(pts)-1], *endTip))
	}
	return segs, nil
}

func parseTop(bb string) (float64, error) {
	parts := strings.Split(bb, ",")
	if len(parts) != 4 {
		return 0, fmt.Errorf("malformed bb %q", bb)
	}
	return strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
}

func parsePoint(s string) (geom.Vec, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Vec{}, fmt.Errorf("malformed point %q", s)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return geom.Vec{}, err
	}
	// Graphviz may append ",!" to pinned positions.
	ys, _, _ = strings.Cut(ys, ",")
	ys = strings.TrimSuffix(ys, "!")
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return geom.Vec{}, err
	}
	return geom.V(x, y), nil
}

func floatAttr(attrs []*ast.Attr, key string) (float64, error) {
	v, ok := attr(attrs, key)
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	return strconv.ParseFloat(v, 64)
}

func attr(attrs []*ast.Attr, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return unquote(a.Val), true
		}
	}
	return "", false
}

func unquote(s string) string {
	s = strings.ReplaceAll(s, "\\\n", "")
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
