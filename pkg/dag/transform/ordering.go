package transform

import (
	"context"
	"slices"

	"github.com/matzehuels/questgraph/pkg/dag"
)

// DefaultSweeps bounds the number of down/up sweep pairs in [OrderRows].
const DefaultSweeps = 12

// OrderRows orders the nodes of each row to reduce edge crossings with the
// barycenter heuristic. Rows start in insertion order; each sweep reorders
// rows top-down by the mean position of their parents, then bottom-up by
// the mean position of their children. The best ordering seen, scored by
// [dag.CountCrossings], is returned. The context is checked once per sweep.
//
// The graph must already be layered and subdivided.
func OrderRows(ctx context.Context, g *dag.DAG, sweeps int) ([][]int, error) {
	rows := g.Rows()
	orders := make([][]int, len(rows))
	for r, nodes := range rows {
		orders[r] = dag.NodeIDs(nodes)
	}
	if sweeps <= 0 {
		sweeps = DefaultSweeps
	}

	best := clone(orders)
	bestScore := dag.CountCrossings(g, orders)
	for i := 0; i < sweeps && bestScore > 0; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for r := 1; r < len(orders); r++ {
			reorder(orders[r], orders[r-1], g.Parents)
		}
		for r := len(orders) - 2; r >= 0; r-- {
			reorder(orders[r], orders[r+1], g.Children)
		}
		if score := dag.CountCrossings(g, orders); score < bestScore {
			best, bestScore = clone(orders), score
		} else {
			break
		}
	}
	return best, nil
}

// reorder sorts row by the barycenter of each node's neighbours in adj.
// Nodes without neighbours keep their current position as barycenter. The
// sort is stable so ties keep their relative order.
func reorder(row, adj []int, neighbours func(int) []int) {
	pos := dag.PosMap(adj)
	self := dag.PosMap(row)
	bary := make(map[int]float64, len(row))
	for _, id := range row {
		sum, n := 0.0, 0
		for _, nb := range neighbours(id) {
			if p, ok := pos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			bary[id] = float64(self[id])
			continue
		}
		bary[id] = sum / float64(n)
	}
	slices.SortStableFunc(row, func(a, b int) int {
		switch {
		case bary[a] < bary[b]:
			return -1
		case bary[a] > bary[b]:
			return 1
		default:
			return 0
		}
	})
}

func clone(orders [][]int) [][]int {
	out := make([][]int, len(orders))
	for i, o := range orders {
		out[i] = slices.Clone(o)
	}
	return out
}
