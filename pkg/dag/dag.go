package dag

import (
	"errors"
	"maps"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

var (
	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [DAG.AddEdge] when either endpoint does
	// not exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSelfLoop is returned by [DAG.AddEdge] for an edge from a node to itself.
	ErrSelfLoop = errors.New("self loop")

	// ErrNonConsecutiveRows is returned by [DAG.Validate] when an edge
	// connects nodes that are not in adjacent rows (From.Row+1 != To.Row).
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive rows")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// NodeKind distinguishes original nodes from the synthetic nodes inserted
// while breaking long edges.
type NodeKind int

const (
	// NodeKindRegular is a node of the input graph.
	NodeKindRegular NodeKind = iota
	// NodeKindVirtual is a bend point on a subdivided edge. It has no size.
	NodeKindVirtual
)

// Node is a vertex with its layer and box size.
type Node struct {
	ID   int
	Row  int // 0 = top
	Kind NodeKind

	// Width and Height are the box size of regular nodes.
	Width, Height float64

	// Edge is the original edge a virtual node belongs to.
	Edge Edge
}

// IsVirtual reports whether the node was inserted to break a long edge.
func (n Node) IsVirtual() bool { return n.Kind == NodeKindVirtual }

// Edge is a directed connection between two nodes.
type Edge struct {
	From int
	To   int
}

// DAG is a directed graph organised into rows for layered drawing.
//
// Iteration order is always insertion order, so every algorithm run on the
// same input produces the same output. DAG is not safe for concurrent use.
type DAG struct {
	nodes    map[int]*Node
	order    []int
	edges    []Edge
	outgoing map[int][]int
	incoming map[int][]int
	nextID   int
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		nodes:    make(map[int]*Node),
		outgoing: make(map[int][]int),
		incoming: make(map[int][]int),
	}
}

// AddNode adds a node. Returns ErrDuplicateNodeID if the ID is taken.
func (d *DAG) AddNode(n Node) error {
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	d.nodes[n.ID] = node
	d.order = append(d.order, n.ID)
	if n.ID >= d.nextID {
		d.nextID = n.ID + 1
	}
	return nil
}

// NewID returns an ID not used by any node.
func (d *DAG) NewID() int {
	id := d.nextID
	d.nextID++
	return id
}

// AddEdge adds a directed edge between existing nodes. Parallel edges are
// collapsed into one.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownNode
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	if slices.Contains(d.outgoing[e.From], e.To) {
		return nil
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
func (d *DAG) RemoveEdge(from, to int) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(id int) bool { return id == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(id int) bool { return id == from })
}

// SetRows updates the row assignments of the nodes named in rows.
func (d *DAG) SetRows(rows map[int]int) {
	for id, r := range rows {
		if n, ok := d.nodes[id]; ok {
			n.Row = r
		}
	}
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// graph's nodes.
func (d *DAG) Nodes() []*Node {
	out := make([]*Node, len(d.order))
	for i, id := range d.order {
		out[i] = d.nodes[id]
	}
	return out
}

// Node returns the node with the given ID.
func (d *DAG) Node(id int) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the targets of the node's outgoing edges. The slice
// must not be modified.
func (d *DAG) Children(id int) []int { return d.outgoing[id] }

// Parents returns the sources of the node's incoming edges. The slice
// must not be modified.
func (d *DAG) Parents(id int) []int { return d.incoming[id] }

// InDegree returns the number of incoming edges.
func (d *DAG) InDegree(id int) int { return len(d.incoming[id]) }

// OutDegree returns the number of outgoing edges.
func (d *DAG) OutDegree(id int) int { return len(d.outgoing[id]) }

// Sources returns nodes without incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var out []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			out = append(out, d.nodes[id])
		}
	}
	return out
}

// Rows groups nodes by row in insertion order, indexed 0..MaxRow.
func (d *DAG) Rows() [][]*Node {
	if len(d.order) == 0 {
		return nil
	}
	rows := make([][]*Node, d.MaxRow()+1)
	for _, id := range d.order {
		n := d.nodes[id]
		rows[n.Row] = append(rows[n.Row], n)
	}
	return rows
}

// MaxRow returns the highest row index, or 0 for an empty graph.
func (d *DAG) MaxRow() int {
	m := 0
	for _, n := range d.nodes {
		m = max(m, n.Row)
	}
	return m
}

// Acyclic reports whether the graph has no directed cycle.
func (d *DAG) Acyclic() bool {
	g := simple.NewDirectedGraph()
	for _, id := range d.order {
		g.AddNode(simple.Node(int64(id)))
	}
	for _, e := range d.edges {
		g.SetEdge(g.NewEdge(simple.Node(int64(e.From)), simple.Node(int64(e.To))))
	}
	_, err := topo.Sort(g)
	return err == nil
}

// Validate checks that the graph is acyclic and that every edge connects
// consecutive rows.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		if d.nodes[e.To].Row != d.nodes[e.From].Row+1 {
			return ErrNonConsecutiveRows
		}
	}
	if !d.Acyclic() {
		return ErrGraphHasCycle
	}
	return nil
}

// PosMap maps each ID to its index in ids.
func PosMap(ids []int) map[int]int {
	m := make(map[int]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the IDs of nodes in order.
func NodeIDs(nodes []*Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// SortedIDs returns all node IDs in ascending order.
func (d *DAG) SortedIDs() []int {
	return slices.Sorted(maps.Keys(d.nodes))
}
