// Package overlay lays out and draws the nested summary shown inside a
// collapsed node.
//
// Layout is pure: [Compute] turns a node's box, its hidden subtree and a text
// measurer into a [Layout] value holding the grown box, one [Row] per subtree
// node and the node's new size in inches. [Draw] and [Remove] are the only
// functions that touch the drawing.
//
// Sizing works in two passes over the subtree:
//
//   - heights, post-order: a leaf is one row; an internal node is a row, its
//     stacked children with gaps between them, and a bottom pad
//   - widths: depth*indent + left pad + measured label + right pad, maximised
//     over every node and the header
//
// The box only grows, always to the right and down from its top-left corner.
// The overlay always reflects the full subtree under the node, including
// parts below descendants that are themselves collapsed.
package overlay
