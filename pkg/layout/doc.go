// Package layout positions quest subgraphs for drawing.
//
// An [Engine] turns a [questgraph.Graph] into an immutable [Result]: one box
// per node and one routed curve per edge, prerequisites above the quests
// they unlock. Two engines are provided:
//
//   - [GraphvizEngine]: the dot algorithm of Graphviz via go-graphviz
//   - [LayeredEngine]: a pure Go layered layout built on [dag] transforms
//
// [CachedEngine] wraps either one and stores computed geometry in a
// [cache.Cache], keyed by the subgraph's [Fingerprint].
//
// # Coordinates
//
// Engines work in top-down screen space with y growing downwards. The
// Result holds the point reflection of that space, which is what the canvas
// transform expects: it negates graph coordinates around the canvas
// center, so the reflected layout comes out upright and unmirrored.
//
// [dag]: github.com/matzehuels/questgraph/pkg/dag
// [cache.Cache]: github.com/matzehuels/questgraph/pkg/cache.Cache
package layout
