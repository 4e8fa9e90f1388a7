package transform

import "github.com/matzehuels/questgraph/pkg/dag"

// BreakCycles removes the back edges found by a depth-first search started
// from the sources, then from any node left unvisited. It returns the
// number of removed edges. The search uses an explicit stack so deep quest
// chains cannot exhaust the goroutine stack.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[int]int, g.NodeCount())
	var backEdges []dag.Edge

	type frame struct {
		id   int
		next int // index of the next child to visit
	}
	visit := func(root int) {
		stack := []frame{{id: root}}
		color[root] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				backEdges = append(backEdges, dag.Edge{From: top.id, To: child})
			}
		}
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e.From, e.To)
	}
	return len(backEdges)
}
