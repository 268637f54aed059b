// Package surfacetest builds Graphviz-shaped SVG drawings for tests.
package surfacetest

import (
	"bytes"
	"fmt"
	"html"
	"strings"
)

// Node box size used by Builder, in points.
const (
	BoxWidth  = 100
	BoxHeight = 40
	rowPitch  = 80
)

type node struct {
	id, label, fill string
}

// Builder accumulates nodes and edges and lays nodes out in one column.
type Builder struct {
	nodes []node
	seen  map[string]bool
	edges []string
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{seen: make(map[string]bool)}
}

// Chain returns a builder for edges given as "u->v" strings; nodes are added
// in order of first appearance with label == id.
func Chain(edges ...string) *Builder {
	b := New()
	for _, e := range edges {
		u, v, _ := strings.Cut(e, "->")
		b.Node(strings.TrimSpace(u), "", "")
		b.Node(strings.TrimSpace(v), "", "")
		b.RawEdge(e)
	}
	return b
}

// Node adds a node. Empty label defaults to id; empty fill to #eeeeee.
// Adding an id twice is a no-op.
func (b *Builder) Node(id, label, fill string) *Builder {
	if b.seen[id] {
		return b
	}
	b.seen[id] = true
	if label == "" {
		label = id
	}
	if fill == "" {
		fill = "#eeeeee"
	}
	b.nodes = append(b.nodes, node{id: id, label: label, fill: fill})
	return b
}

// RawEdge adds an edge group whose title is exactly title.
func (b *Builder) RawEdge(title string) *Builder {
	b.edges = append(b.edges, title)
	return b
}

// Height is the drawing height in points.
func (b *Builder) Height() float64 {
	return float64(len(b.nodes)*rowPitch + 20)
}

// Box returns the polygon bounding box of the i-th node in node space.
func (b *Builder) Box(i int) (minX, minY, maxX, maxY float64) {
	top := -b.Height() + 10 + float64(i*rowPitch)
	return 10, top, 10 + BoxWidth, top + BoxHeight
}

// Bytes renders the SVG.
func (b *Builder) Bytes() []byte {
	h := b.Height()
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="300pt" height="%gpt" viewBox="0.00 0.00 300.00 %g">`+"\n", h+8, h+8)
	fmt.Fprintf(&buf, `<g id="graph0" class="graph" transform="scale(1 1) rotate(0) translate(4 %g)">`+"\n", h+4)
	buf.WriteString("<title>G</title>\n")
	for i, n := range b.nodes {
		minX, minY, maxX, maxY := b.Box(i)
		fmt.Fprintf(&buf, `<g id="%s" class="node">`, html.EscapeString(n.id))
		fmt.Fprintf(&buf, `<title>%s</title>`, html.EscapeString(n.id))
		fmt.Fprintf(&buf, `<polygon fill="%s" stroke="black" points="%g,%g %g,%g %g,%g %g,%g %g,%g"/>`,
			n.fill, maxX, minY, minX, minY, minX, maxY, maxX, maxY, maxX, minY)
		fmt.Fprintf(&buf, `<text text-anchor="middle" x="%g" y="%g" font-family="Bitstream Vera Sans Mono" font-size="12.00">%s</text>`,
			(minX+maxX)/2, (minY+maxY)/2, html.EscapeString(n.label))
		buf.WriteString("</g>\n")
	}
	for i, e := range b.edges {
		title := strings.ReplaceAll(html.EscapeString(e), "-", "&#45;")
		fmt.Fprintf(&buf, `<g id="edge%d" class="edge"><title>%s</title><path fill="none" stroke="black" d="M60,0C60,0 60,0 60,0"/></g>`+"\n", i+1, title)
	}
	buf.WriteString("</g>\n</svg>\n")
	return buf.Bytes()
}
