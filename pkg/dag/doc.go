// Package dag provides a directed graph organised into rows (layers) for
// Sugiyama-style layered drawing.
//
// # Overview
//
// The layered layout engine copies a quest subgraph into a [DAG], assigns
// every node a row, breaks edges spanning several rows into chains of
// virtual nodes and then orders each row to reduce crossings. This package
// holds the data structure and the crossing counter; the steps live in the
// [transform] subpackage.
//
// Nodes are identified by integers. Iteration follows insertion order, so a
// layout computed twice from the same input is identical.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: 0, Width: 120, Height: 20})
//	g.AddNode(dag.Node{ID: 1, Width: 90, Height: 20})
//	g.AddEdge(dag.Edge{From: 0, To: 1})
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree (binary
// indexed tree) to count inversions in O(E log V) time, cheap enough to score
// every ordering sweep.
//
// # Acyclicity
//
// [DAG.Acyclic] runs a topological sort from gonum's graph/topo package.
// [transform.BreakCycles] must leave the graph acyclic before layering.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Each layout run builds its
// own graph.
//
// [transform]: github.com/matzehuels/questgraph/pkg/dag/transform
// [transform.BreakCycles]: github.com/matzehuels/questgraph/pkg/dag/transform#BreakCycles
package dag
