// Package questgraph builds the dependency subgraph around a focus quest.
//
// [Builder.Build] walks backwards through prerequisites and forwards through
// successors of the focus quest and returns a fresh, immutable [Graph]. Main
// scenario chains can be compressed: a backward walk that reaches one of the
// well-known expansion or patch quests listed in the compression table stops
// there and shows a single label node instead of the whole story so far.
package questgraph

import (
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/quest"
)

// Kind is the payload of a node: either a [QuestNode] or a [LabelNode].
// Consumers switch over the two variants exhaustively.
type Kind interface {
	isKind()
}

// QuestNode is a node standing for a catalog quest.
type QuestNode struct {
	Record *quest.Record
}

// LabelNode is a synthetic node summarizing a compressed main scenario chain.
type LabelNode struct {
	Text string
}

func (QuestNode) isKind() {}
func (LabelNode) isKind() {}

// Node is a vertex of the subgraph. ID is the quest id, also for label
// nodes, which take the id of the quest they replace.
type Node struct {
	ID    uint32
	Label string
	Kind  Kind
	Size  geom.Vec
}

// Prerequisites returns the prerequisite ids of a quest node and nil for a
// label node.
func (n Node) Prerequisites() []uint32 {
	switch k := n.Kind.(type) {
	case QuestNode:
		return k.Record.Prerequisites
	case LabelNode:
		return nil
	default:
		panic("questgraph: unknown node kind")
	}
}

// Edge points from a prerequisite to the quest it unlocks.
type Edge struct {
	From, To uint32
}

// Graph is the subgraph around Focus. Nodes are in discovery order and
// edges in node order, so equal inputs produce equal graphs.
type Graph struct {
	Focus uint32
	Nodes []Node
	Edges []Edge

	index map[uint32]int
}

// NewGraph assembles a graph from parts. Later nodes with a repeated id
// are ignored.
func NewGraph(focus uint32, nodes []Node, edges []Edge) *Graph {
	g := &Graph{Focus: focus, index: make(map[uint32]int, len(nodes))}
	for _, n := range nodes {
		if _, ok := g.index[n.ID]; ok {
			continue
		}
		g.index[n.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, n)
	}
	g.Edges = edges
	return g
}

// Node returns the node with the given id.
func (g *Graph) Node(id uint32) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.Nodes) }
