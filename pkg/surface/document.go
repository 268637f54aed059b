package surface

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/beevik/etree"

	"github.com/matzehuels/btlive/pkg/errors"
	"github.com/matzehuels/btlive/pkg/fonts"
)

// OverlayClass is the class of the group holding a collapsed node's overlay.
const OverlayClass = "collapsed-subtree"

// Document is a parsed, mutable SVG drawing.
type Document struct {
	doc      *etree.Document
	root     *etree.Element
	measurer fonts.Measurer
}

// Parse reads an SVG drawing. It fails with [errors.ErrCodeInvalidSurface]
// when the markup is not XML or has no <svg> element.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimSpace(data)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSurface, err, "parse svg")
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		if root != nil {
			root = root.FindElement("//svg")
		}
		if root == nil {
			return nil, errors.New(errors.ErrCodeInvalidSurface, "no <svg> element in %d bytes", len(data))
		}
	}
	return &Document{doc: doc, root: root, measurer: fonts.Default()}, nil
}

// Bytes serialises the document.
func (d *Document) Bytes() ([]byte, error) {
	return d.doc.WriteToBytes()
}

// Clone returns a deep copy sharing the measurer.
func (d *Document) Clone() *Document {
	doc := d.doc.Copy()
	root := doc.Root()
	if root != nil && root.Tag != "svg" {
		root = root.FindElement("//svg")
	}
	return &Document{doc: doc, root: root, measurer: d.measurer}
}

// SetMeasurer replaces the text-measurement capability.
func (d *Document) SetMeasurer(m fonts.Measurer) {
	if m != nil {
		d.measurer = m
	}
}

// TextWidth measures text with the document's measurer.
func (d *Document) TextWidth(text string) float64 {
	return d.measurer.TextWidth(text)
}

// Nodes returns node groups with a non-empty id, in document order.
func (d *Document) Nodes() []*Node {
	var nodes []*Node
	for _, el := range d.root.FindElements("//g") {
		if !hasClass(el, "node") || el.SelectAttrValue("id", "") == "" {
			continue
		}
		nodes = append(nodes, &Node{el: el})
	}
	return nodes
}

// Edges returns edge groups in document order.
func (d *Document) Edges() []*Edge {
	var edges []*Edge
	for _, el := range d.root.FindElements("//g") {
		if hasClass(el, "edge") {
			edges = append(edges, &Edge{el: el})
		}
	}
	return edges
}

// OverlayRects returns every overlay rect tagged with a data-node-id, across
// all nodes. These are the rects recolored from the color table.
func (d *Document) OverlayRects() []*OverlayRect {
	var rects []*OverlayRect
	for _, g := range d.root.FindElements("//g") {
		if !hasClass(g, OverlayClass) {
			continue
		}
		for _, r := range g.FindElements(".//rect") {
			if id := r.SelectAttrValue("data-node-id", ""); id != "" {
				rects = append(rects, &OverlayRect{el: r})
			}
		}
	}
	return rects
}

var translateRe = regexp.MustCompile(`translate\(\s*(-?[0-9.eE+-]+)(?:[\s,]+(-?[0-9.eE+-]+))?\s*\)`)

// Offset returns the translation Graphviz applies to the root graph group,
// which maps node coordinates into viewport coordinates.
func (d *Document) Offset() (x, y float64) {
	for _, g := range d.root.ChildElements() {
		if g.Tag != "g" || !hasClass(g, "graph") {
			continue
		}
		m := translateRe.FindStringSubmatch(g.SelectAttrValue("transform", ""))
		if m == nil {
			return 0, 0
		}
		x, _ = strconv.ParseFloat(m[1], 64)
		if m[2] != "" {
			y, _ = strconv.ParseFloat(m[2], 64)
		}
		return x, y
	}
	return 0, 0
}

// Attr returns an attribute of the <svg> element.
func (d *Document) Attr(key string) string {
	return d.root.SelectAttrValue(key, "")
}

// SetAttr sets an attribute on the <svg> element.
func (d *Document) SetAttr(key, value string) {
	d.root.CreateAttr(key, value)
}
