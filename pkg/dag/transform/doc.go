// Package transform prepares a [dag.DAG] for layered drawing.
//
// The steps run in this order:
//
//	transform.BreakCycles(g)   // drop back edges
//	transform.AssignLayers(g)  // longest-path rows
//	transform.Subdivide(g)     // virtual nodes on long edges
//	orders, err := transform.OrderRows(ctx, g, 0)
//
// # Cycle Breaking
//
// Quest data is expected to be acyclic, but a stale cross reference can
// close a loop. [BreakCycles] removes the back edges of a depth-first search
// so the remaining graph is a DAG.
//
// # Layer Assignment
//
// [AssignLayers] places each node one row below its deepest parent, so
// prerequisites are always drawn above the quests they unlock.
//
// # Edge Subdivision
//
// [Subdivide] breaks edges spanning several rows into single-row hops
// through virtual nodes. Virtual nodes take part in ordering and become the
// bend points of the routed curve.
//
// # Row Ordering
//
// [OrderRows] runs barycenter sweeps and keeps the ordering with the fewest
// crossings. It is the only step that can take noticeable time on large
// subgraphs and the only one that observes cancellation.
//
// [dag.DAG]: github.com/matzehuels/questgraph/pkg/dag#DAG
package transform
