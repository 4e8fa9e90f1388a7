package transform

import "github.com/matzehuels/questgraph/pkg/dag"

// AssignLayers assigns every node the length of the longest path reaching
// it, using Kahn's topological traversal. Sources land in row 0 and every
// parent ends up strictly above its children.
//
// The graph must be acyclic; nodes on a cycle keep row 0. Run
// [BreakCycles] first.
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[int]int, len(nodes))
	rows := make(map[int]int, len(nodes))
	queue := make([]int, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		rows[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}
