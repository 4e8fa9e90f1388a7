package transform

import "github.com/matzehuels/questgraph/pkg/dag"

// Subdivide replaces every edge spanning more than one row with a chain of
// virtual nodes, one per intermediate row. Each virtual node records the
// original edge so the router can rebuild the full curve:
//
//	Before: 1 (row 0) → 4 (row 3)
//	After:  1 → v → v → 4
//
// It returns the number of virtual nodes added.
func Subdivide(g *dag.DAG) int {
	added := 0
	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		if dst.Row <= src.Row+1 {
			continue
		}

		g.RemoveEdge(e.From, e.To)
		prev := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			id := g.NewID()
			mustAdd(g.AddNode(dag.Node{ID: id, Row: row, Kind: dag.NodeKindVirtual, Edge: e}))
			mustAdd(g.AddEdge(dag.Edge{From: prev, To: id}))
			prev = id
			added++
		}
		mustAdd(g.AddEdge(dag.Edge{From: prev, To: dst.ID}))
	}
	return added
}

// mustAdd panics on insertion errors that fresh IDs make impossible.
func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}
