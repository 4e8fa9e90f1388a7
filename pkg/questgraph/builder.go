package questgraph

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/questgraph/pkg/errors"
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/observability"
	"github.com/matzehuels/questgraph/pkg/quest"
	"github.com/matzehuels/questgraph/pkg/textmeasure"
)

// TextPadding is the space between a node's border and its label, per side.
var TextPadding = geom.V(5, 2)

// Lookup resolves quest ids. *quest.Catalog and *quest.Index satisfy it.
type Lookup interface {
	Get(id uint32) (*quest.Record, bool)
}

// Options selects how the subgraph is built.
type Options struct {
	// CompressMSQ replaces known main scenario milestones reached through
	// prerequisites with a label node.
	CompressMSQ bool
}

// Builder builds subgraphs. It is safe for concurrent use if its Measurer is.
type Builder struct {
	measurer textmeasure.Measurer
	logger   *log.Logger
	hooks    observability.PipelineHooks
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// WithHooks sets the pipeline hooks.
func WithHooks(h observability.PipelineHooks) BuilderOption {
	return func(b *Builder) { b.hooks = h }
}

// NewBuilder returns a builder sizing nodes with m.
func NewBuilder(m textmeasure.Measurer, opts ...BuilderOption) *Builder {
	b := &Builder{measurer: m}
	for _, o := range opts {
		o(b)
	}
	if b.logger == nil {
		b.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if b.hooks == nil {
		b.hooks = observability.NoopPipelineHooks{}
	}
	return b
}

// side records how the traversal reached a quest.
type side uint8

const (
	sideStart side = iota
	sideBackward
	sideForward
)

type visit struct {
	id   uint32
	side side
}

// Build collects the focus quest, everything it transitively requires and
// everything it transitively unlocks. The context is checked once per
// visited quest; on cancellation Build returns ctx.Err() and no graph.
func (b *Builder) Build(ctx context.Context, quests Lookup, focus uint32, opts Options) (*Graph, error) {
	start := time.Now()
	g, err := b.build(ctx, quests, focus, opts)
	nodes, edges := 0, 0
	if g != nil {
		nodes, edges = len(g.Nodes), len(g.Edges)
	}
	b.hooks.OnSubgraphBuild(ctx, nodes, edges, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("subgraph built", "quest", focus, "nodes", nodes, "edges", edges, "elapsed", time.Since(start))
	return g, nil
}

func (b *Builder) build(ctx context.Context, quests Lookup, focus uint32, opts Options) (*Graph, error) {
	if _, ok := quests.Get(focus); !ok {
		return nil, errors.New(errors.ErrCodeQuestNotFound, "quest %d not in catalog", focus)
	}

	g := &Graph{Focus: focus, index: make(map[uint32]int)}
	stack := []visit{{focus, sideStart}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := g.index[v.id]; seen {
			continue
		}
		rec, ok := quests.Get(v.id)
		if !ok {
			continue
		}

		// Milestones reached from the focus side, the focus included, stand
		// in for the whole chain before them.
		label, compress := "", false
		if v.side != sideForward && opts.CompressMSQ {
			label, compress = CompressedLabel(v.id)
		}
		if compress {
			b.add(g, v.id, label, LabelNode{Text: label})
		} else {
			b.add(g, v.id, rec.Name, QuestNode{Record: rec})
		}

		// Pushed in reverse so they pop in declared order.
		if v.side == sideStart || v.side == sideForward {
			for _, s := range slices.Backward(rec.Successors) {
				stack = append(stack, visit{s, sideForward})
			}
		}
		if !compress && (v.side == sideStart || v.side == sideBackward) {
			for _, p := range slices.Backward(rec.Prerequisites) {
				stack = append(stack, visit{p, sideBackward})
			}
		}
	}

	g.Edges = edgesOf(g)
	return g, nil
}

func (b *Builder) add(g *Graph, id uint32, label string, kind Kind) {
	size := b.measurer.MeasureText(label).Add(TextPadding.Scale(2))
	g.index[id] = len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{ID: id, Label: label, Kind: kind, Size: size})
}

// edgesOf links every node to those of its prerequisites that are part of
// the graph. References leaving the node set are dropped.
func edgesOf(g *Graph) []Edge {
	var edges []Edge
	seen := make(map[Edge]bool)
	for _, n := range g.Nodes {
		for _, p := range n.Prerequisites() {
			e := Edge{From: p, To: n.ID}
			if _, ok := g.index[p]; !ok || seen[e] {
				continue
			}
			seen[e] = true
			edges = append(edges, e)
		}
	}
	return edges
}
