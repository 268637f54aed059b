// Package surface implements the rendered-surface contract over a Graphviz
// SVG document.
//
// A [Document] exposes what the viewer core needs from a drawing:
//
//   - node groups (g.node) with a stable id, a polygon shape and a text label
//   - edge groups (g.edge) whose title reads "u->v"
//   - the coordinate viewport (viewBox and height)
//   - a text-measurement capability for overlay sizing
//
// and accepts what the core produces: mutated polygon geometry, inserted
// overlay groups (g.collapsed-subtree) and per-element visibility.
//
// The DOM is held with github.com/beevik/etree so that mutated documents
// serialise back to SVG without losing Graphviz's markup. A Document is not
// safe for concurrent use; the viewer controller serialises access.
package surface
