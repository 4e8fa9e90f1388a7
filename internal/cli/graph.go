package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/questgraph/pkg/canvas"
	"github.com/matzehuels/questgraph/pkg/canvas/svg"
	"github.com/matzehuels/questgraph/pkg/config"
	"github.com/matzehuels/questgraph/pkg/errors"
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/layout"
	"github.com/matzehuels/questgraph/pkg/observability"
	"github.com/matzehuels/questgraph/pkg/progress"
	"github.com/matzehuels/questgraph/pkg/quest"
	"github.com/matzehuels/questgraph/pkg/questgraph"
	"github.com/matzehuels/questgraph/pkg/textmeasure"
)

// svgMargin is the empty border around an exported graph, in pixels.
const svgMargin = 40

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string // output directory
	format   string // svg, dot or png
	engine   string
	compress bool
	arrows   bool
	noFont   bool
}

// graphJob is everything one focus quest needs to be drawn.
type graphJob struct {
	catalog  *quest.Catalog
	builder  *questgraph.Builder
	engine   layout.Engine
	measurer *textmeasure.FontMeasurer
	oracle   progress.Oracle
	cfg      config.Config
	opts     graphOpts
	hooks    observability.RenderHooks
}

// graphOutput describes one written file.
type graphOutput struct {
	path         string
	nodes, edges int
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	def := config.Default()
	opts := graphOpts{
		output:   ".",
		format:   layout.FormatSVG,
		compress: def.Graph.CompressMSQ,
		arrows:   def.Graph.ShowArrowheads,
	}

	cmd := &cobra.Command{
		Use:   "graph <quest-id>...",
		Short: "Draw the prerequisite graph of one or more quests",
		Long: `Graph builds the graph of every quest the focus quest requires and every
quest it unlocks, lays it out and writes <id>.svg. With --format dot or png
the graph is written through Graphviz instead. Several quests are drawn
concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uint32, len(args))
			for i, a := range args {
				id, err := errors.ParseQuestID(a)
				if err != nil {
					return err
				}
				ids[i] = id
			}
			switch opts.format {
			case layout.FormatSVG, layout.FormatDOT, layout.FormatPNG:
			default:
				return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be svg, dot or png)", opts.format)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("engine") {
				cfg.Graph.Engine = opts.engine
			}
			if flags.Changed("compress") {
				cfg.Graph.CompressMSQ = opts.compress
			}
			if flags.Changed("arrows") {
				cfg.Graph.ShowArrowheads = opts.arrows
			}
			return c.runGraph(cmd, ids, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", opts.output, "output directory")
	f.StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot, png")
	f.StringVar(&opts.engine, "engine", def.Graph.Engine, "layout engine for svg: graphviz, layered")
	f.BoolVar(&opts.compress, "compress", opts.compress, "collapse main scenario milestones into labels")
	f.BoolVar(&opts.arrows, "arrows", opts.arrows, "draw arrowheads")
	f.BoolVar(&opts.noFont, "no-font", false, "do not embed the label font in svg output")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, ids []uint32, cfg config.Config, opts graphOpts) error {
	ctx := cmd.Context()
	m, err := c.loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	engine, err := c.engine(cfg)
	if err != nil {
		return err
	}
	measurer, err := textmeasure.NewFontMeasurer(textmeasure.DefaultFontSize)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return err
	}

	job := graphJob{
		catalog:  m.Catalog(),
		builder:  questgraph.NewBuilder(measurer, questgraph.WithLogger(c.Logger), questgraph.WithHooks(c.hooks.Pipeline)),
		engine:   engine,
		measurer: measurer,
		oracle:   c.loadProgress(),
		cfg:      cfg,
		opts:     opts,
		hooks:    c.hooks.Render,
	}

	out := cmd.OutOrStdout()
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Drawing %d graph(s)...", len(ids)))
	spinner.Start()

	outputs := make([]graphOutput, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, id := range ids {
		g.Go(func() error {
			o, err := job.draw(gctx, id)
			if err != nil {
				return fmt.Errorf("quest %d: %w", id, err)
			}
			outputs[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		spinner.Stop()
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Drew %d graph(s)", len(ids)))

	for _, o := range outputs {
		printFile(out, o.path)
		printStats(out, o.nodes, o.edges, engine.Name())
	}
	return nil
}

// draw builds, lays out and writes the graph of one focus quest.
func (j graphJob) draw(ctx context.Context, id uint32) (graphOutput, error) {
	g, err := j.builder.Build(ctx, j.catalog, id, questgraph.Options{CompressMSQ: j.cfg.Graph.CompressMSQ})
	if err != nil {
		return graphOutput{}, err
	}
	lopts := layout.Options{Arrowheads: j.cfg.Graph.ShowArrowheads}

	var data []byte
	if j.opts.format == layout.FormatSVG {
		res, err := j.engine.Layout(ctx, g, lopts)
		if err != nil {
			return graphOutput{}, err
		}
		data = j.renderSVG(res)
	} else {
		data, err = layout.Export(ctx, g, lopts, j.opts.format)
		if err != nil {
			return graphOutput{}, err
		}
	}

	name := fmt.Sprintf("%d.%s", id, j.opts.format)
	if err := errors.ValidateFilename(name); err != nil {
		return graphOutput{}, err
	}
	path := filepath.Join(j.opts.output, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return graphOutput{}, err
	}
	return graphOutput{path: path, nodes: len(g.Nodes), edges: len(g.Edges)}, nil
}

// renderSVG draws one canvas frame into an SVG document. The canvas
// centers the focus quest, so the document extends equally on both sides
// of it to fit the whole graph.
func (j graphJob) renderSVG(res *layout.Result) []byte {
	area := exportArea(res)
	var opts []svg.Option
	if j.opts.noFont {
		opts = append(opts, svg.WithoutFont())
	}
	doc := svg.New(area.Width(), area.Height(), opts...)
	cv := canvas.New(staticSource{res}, canvas.Options{
		Palette:  canvas.PaletteFrom(j.cfg.Colors),
		Oracle:   j.oracle,
		Hooks:    j.hooks,
		Measurer: j.measurer,
		FontSize: j.measurer.Size(),
	})
	cv.Frame(doc, area, canvas.Input{})
	return doc.Bytes()
}

// exportArea is the smallest area centered on the focus quest that holds
// the whole graph plus a margin.
func exportArea(res *layout.Result) geom.Rect {
	b := res.Bounds
	c := b.Center()
	if n, ok := res.Center(); ok {
		c = n.Box.Center()
	}
	half := geom.V(
		max(c.X-b.Min.X, b.Max.X-c.X)+svgMargin,
		max(c.Y-b.Min.Y, b.Max.Y-c.Y)+svgMargin,
	)
	return geom.Rect{Max: half.Scale(2)}
}

// staticSource shows one finished layout.
type staticSource struct{ res *layout.Result }

func (s staticSource) Focus() uint32          { return s.res.Focus }
func (s staticSource) Result() *layout.Result { return s.res }
