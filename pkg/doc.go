// Package pkg provides the libraries behind btlive, a live view of behavior
// trees.
//
// # Overview
//
// A layout server renders a tree with Graphviz and streams node states. A
// viewer attaches to the drawing, keeps node colors live and lets users
// collapse subtrees into compact overlays; collapsed sizes are sent back to
// the server so the drawing is re-laid out around them.
//
// # Architecture
//
// Server side:
//
//	tree.json
//	    ↓
//	[io] → [dag] (validated tree)
//	    ↓
//	[render] (DOT → SVG, relayout spacing)
//	    ↓
//	[server] (/surface.svg, /msg, /relayout, /status)
//
// Viewer side:
//
//	/surface.svg → [surface] (SVG DOM) → [index] (nodes, edges, parents)
//	    ↓
//	[collapse] (persisted collapsed set, on [storage])
//	    ↓
//	[visibility] + [overlay] (hidden elements, collapsed overlays)
//	    ↓
//	[viewer] (controller, HTTP surface)
//	    ↑                 ↓
//	[livesync] (/msg)  [relayout] (/relayout)
//
// Shared: [colors] (state palette and color table), [fonts] (text metrics),
// [errors], [httputil], [observability] and [metrics].
package pkg
