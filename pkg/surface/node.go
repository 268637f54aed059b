package surface

import (
	"strings"

	"github.com/beevik/etree"
)

const (
	attrOrigPoints   = "data-orig-points"
	attrOrigDisplay  = "data-orig-display"
	attrOrigClipPath = "data-orig-clip-path"
	attrOrigOverflow = "data-orig-overflow"
)

// Node is a g.node element.
type Node struct {
	el *etree.Element
}

// ID returns the group id.
func (n *Node) ID() string { return n.el.SelectAttrValue("id", "") }

// Label returns the trimmed content of the first native text element, or "".
func (n *Node) Label() string {
	for _, t := range n.nativeElements("text") {
		if s := strings.TrimSpace(t.Text()); s != "" {
			return s
		}
	}
	return ""
}

// shape returns the node's polygon, skipping the overlay.
func (n *Node) shape() *etree.Element {
	if p := n.nativeElements("polygon"); len(p) > 0 {
		return p[0]
	}
	return nil
}

// HasShape reports whether the node has a polygon shape.
func (n *Node) HasShape() bool { return n.shape() != nil }

// Points returns the polygon points attribute.
func (n *Node) Points() (string, bool) {
	p := n.shape()
	if p == nil {
		return "", false
	}
	return p.SelectAttrValue("points", ""), true
}

// SetPoints replaces the polygon geometry.
func (n *Node) SetPoints(points string) {
	if p := n.shape(); p != nil {
		p.CreateAttr("points", points)
	}
}

// Bounds returns the polygon's bounding box.
func (n *Node) Bounds() (Rect, bool) {
	pts, ok := n.Points()
	if !ok {
		return Rect{}, false
	}
	r, err := ParsePoints(pts)
	if err != nil {
		return Rect{}, false
	}
	return r, true
}

// RememberShape stores the current polygon points on the group the first time
// it is called; later calls keep the original.
func (n *Node) RememberShape() {
	if n.el.SelectAttr(attrOrigPoints) != nil {
		return
	}
	pts, _ := n.Points()
	n.el.CreateAttr(attrOrigPoints, pts)
}

// RestoreShape puts back the remembered polygon points, if any, and forgets them.
func (n *Node) RestoreShape() {
	a := n.el.SelectAttr(attrOrigPoints)
	if a == nil {
		return
	}
	if a.Value != "" {
		n.SetPoints(a.Value)
	}
	n.el.RemoveAttr(attrOrigPoints)
}

// Fill returns the polygon fill attribute.
func (n *Node) Fill() string {
	if p := n.shape(); p != nil {
		return p.SelectAttrValue("fill", "")
	}
	return ""
}

// SetFill sets the polygon fill.
func (n *Node) SetFill(color string) {
	if p := n.shape(); p != nil {
		p.CreateAttr("fill", color)
	}
}

// SetHidden shows or hides the whole node group.
func (n *Node) SetHidden(hidden bool) { setHidden(n.el, hidden) }

// Hidden reports whether the node group is hidden.
func (n *Node) Hidden() bool { return isHidden(n.el) }

// HideNativeLabel hides every direct child except the polygon and the
// overlay, remembering each child's previous display value.
func (n *Node) HideNativeLabel() {
	for _, child := range n.el.ChildElements() {
		if child.Tag == "polygon" || child.Tag == "title" || hasClass(child, OverlayClass) {
			continue
		}
		if child.SelectAttr(attrOrigDisplay) == nil {
			child.CreateAttr(attrOrigDisplay, styleProp(child, "display"))
		}
		setStyleProp(child, "display", "none")
	}
}

// RestoreNativeLabel undoes HideNativeLabel.
func (n *Node) RestoreNativeLabel() {
	for _, child := range n.el.ChildElements() {
		if child.Tag == "polygon" || child.Tag == "title" || hasClass(child, OverlayClass) {
			continue
		}
		orig := child.SelectAttrValue(attrOrigDisplay, "")
		setStyleProp(child, "display", orig)
		child.RemoveAttr(attrOrigDisplay)
	}
}

// RemoveClipPaths disables clip-path attributes on the group and its
// descendants so the grown overlay is not clipped. Attributes are renamed
// in place, so [Node.RestoreClipPaths] puts them back in their original
// position.
func (n *Node) RemoveClipPaths() {
	renameAttr(n.el, "clip-path", attrOrigClipPath)
	for _, el := range n.el.FindElements(".//*") {
		renameAttr(el, "clip-path", attrOrigClipPath)
	}
	if n.el.SelectAttr(attrOrigOverflow) == nil {
		n.el.CreateAttr(attrOrigOverflow, styleProp(n.el, "overflow"))
	}
	setStyleProp(n.el, "overflow", "visible")
}

// RestoreClipPaths undoes RemoveClipPaths.
func (n *Node) RestoreClipPaths() {
	renameAttr(n.el, attrOrigClipPath, "clip-path")
	for _, el := range n.el.FindElements(".//*") {
		renameAttr(el, attrOrigClipPath, "clip-path")
	}
	if a := n.el.SelectAttr(attrOrigOverflow); a != nil {
		setStyleProp(n.el, "overflow", a.Value)
		n.el.RemoveAttr(attrOrigOverflow)
	}
}

func renameAttr(el *etree.Element, from, to string) {
	for i := range el.Attr {
		if el.Attr[i].Space == "" && el.Attr[i].Key == from {
			el.Attr[i].Key = to
			return
		}
	}
}

func (n *Node) overlay() *etree.Element {
	for _, child := range n.el.ChildElements() {
		if child.Tag == "g" && hasClass(child, OverlayClass) {
			return child
		}
	}
	return nil
}

// HasOverlay reports whether the node carries an overlay group.
func (n *Node) HasOverlay() bool { return n.overlay() != nil }

// SetOverlay replaces the node's overlay group content with shapes,
// translated by (tx, ty). The group is created on first use.
func (n *Node) SetOverlay(tx, ty float64, shapes []Shape) {
	g := n.overlay()
	if g == nil {
		g = n.el.CreateElement("g")
		g.CreateAttr("class", OverlayClass)
	}
	for _, c := range g.ChildElements() {
		g.RemoveChild(c)
	}
	g.CreateAttr("transform", "translate("+FormatNum(tx)+", "+FormatNum(ty)+")")
	for _, s := range shapes {
		el := g.CreateElement(s.Tag)
		for _, a := range s.Attrs {
			el.CreateAttr(a.Key, a.Value)
		}
		if s.Text != "" {
			el.SetText(s.Text)
		}
	}
}

// SetOverlayHidden shows or hides the overlay group, if present.
func (n *Node) SetOverlayHidden(hidden bool) {
	if g := n.overlay(); g != nil {
		setHidden(g, hidden)
	}
}

// OverlayHidden reports whether the overlay is present and hidden.
func (n *Node) OverlayHidden() bool {
	g := n.overlay()
	return g != nil && isHidden(g)
}

// RemoveOverlay deletes the overlay group.
func (n *Node) RemoveOverlay() {
	if g := n.overlay(); g != nil {
		n.el.RemoveChild(g)
	}
}

// nativeElements returns descendants with the given tag, outside the overlay.
func (n *Node) nativeElements(tag string) []*etree.Element {
	var out []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			if c.Tag == "g" && hasClass(c, OverlayClass) {
				continue
			}
			if c.Tag == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n.el)
	return out
}

// Attr is an SVG attribute.
type Attr struct {
	Key, Value string
}

// Shape is an element to insert into an overlay group.
type Shape struct {
	Tag   string
	Attrs []Attr
	Text  string
}

// OverlayRect is an overlay rect tied to a node id.
type OverlayRect struct {
	el *etree.Element
}

// NodeID returns the rect's data-node-id.
func (r *OverlayRect) NodeID() string { return r.el.SelectAttrValue("data-node-id", "") }

// SetFill sets the rect fill.
func (r *OverlayRect) SetFill(color string) { r.el.CreateAttr("fill", color) }

// Fill returns the rect fill.
func (r *OverlayRect) Fill() string { return r.el.SelectAttrValue("fill", "") }
