// Package render turns a behavior tree into the SVG drawing served to viewers.
//
// # Overview
//
// The tree is converted to Graphviz DOT with [ToDOT] and laid out by
// [RenderSVG] using the embedded Graphviz build from go-graphviz. Every node
// is emitted as a filled box whose SVG group id equals the node ID and whose
// edges carry "parent->child" titles; viewers rely on both to rebuild
// adjacency from the drawing alone.
//
// # Relayout
//
// When viewers collapse nodes, they report each collapsed node's grown size in
// inches. [Options.Dims] feeds those sizes back into the DOT attributes and
// [SpacingFor] widens node and rank separation so the larger boxes do not
// overlap:
//
//	opts := render.SpacingFor(dims)
//	opts.Dims = dims
//	svg, err := render.RenderSVG(ctx, render.ToDOT(tree, opts))
package render
