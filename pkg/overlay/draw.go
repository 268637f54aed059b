package overlay

import (
	"github.com/matzehuels/btlive/pkg/fonts"
	"github.com/matzehuels/btlive/pkg/surface"
)

// Overlay colors.
const (
	TextFill        = "#111"
	RowFill         = "#ffffff"
	RowStroke       = "#999"
	LabelStroke     = "#555"
	StrokeWidth     = "0.6"
	canvasExtraPadY = 8
)

// Prepare readies a node for an overlay: its original shape is remembered,
// native label elements are hidden and clip paths removed. It is safe to
// call repeatedly.
func Prepare(n *surface.Node) {
	n.RememberShape()
	n.HideNativeLabel()
	n.RemoveClipPaths()
}

// Draw grows the node's shape to l.Box, writes the overlay group and extends
// the canvas of doc so the grown box fits. fill returns the current color
// of a node id.
func Draw(doc *surface.Document, n *surface.Node, l Layout, fill func(id string) string) {
	n.SetPoints(surface.RectPoints(l.Box))
	n.SetOverlay(l.OriginX, l.OriginY, Shapes(l, fill))
	doc.EnsureVerticalBounds(l.Box.MinY-canvasExtraPadY, l.Box.MaxY+canvasExtraPadY)
}

// Remove restores the node's remembered shape, native label and clip
// paths and drops its overlay.
func Remove(n *surface.Node) {
	n.RestoreShape()
	n.RemoveOverlay()
	n.RestoreNativeLabel()
	n.RestoreClipPaths()
}

// Shapes returns the overlay elements for l: the header rect and text,
// then for every row a container rect spanning its nested rows, a label
// rect tagged with the row's node id and the label text.
func Shapes(l Layout, fill func(id string) string) []surface.Shape {
	m := l.Metrics
	shapes := make([]surface.Shape, 0, 2+3*len(l.Rows))
	shapes = append(shapes,
		rect(l.Header.X, l.Header.Y, l.Header.Width, m.RowH,
			surface.Attr{Key: "fill", Value: fill(l.Header.ID)},
			surface.Attr{Key: "stroke", Value: LabelStroke},
			surface.Attr{Key: "stroke-width", Value: StrokeWidth},
			surface.Attr{Key: "data-node-id", Value: l.Header.ID}),
		text(l.Header.X+m.LabelPadLeft, l.Header.Y+m.RowH-5, l.Header.Label),
	)
	for _, r := range l.Rows {
		shapes = append(shapes,
			rect(r.X, r.Y, r.Width, r.Height,
				surface.Attr{Key: "fill", Value: RowFill},
				surface.Attr{Key: "stroke", Value: RowStroke},
				surface.Attr{Key: "stroke-width", Value: StrokeWidth}),
			rect(r.X, r.Y, r.Width, m.RowH,
				surface.Attr{Key: "data-node-id", Value: r.ID},
				surface.Attr{Key: "fill", Value: fill(r.ID)},
				surface.Attr{Key: "stroke", Value: LabelStroke},
				surface.Attr{Key: "stroke-width", Value: StrokeWidth}),
			text(r.X+m.LabelPadLeft, r.Y+m.RowH-5, r.Label),
		)
	}
	return shapes
}

func rect(x, y, w, h float64, extra ...surface.Attr) surface.Shape {
	attrs := []surface.Attr{
		{Key: "x", Value: surface.FormatNum(x)},
		{Key: "y", Value: surface.FormatNum(y)},
		{Key: "width", Value: surface.FormatNum(w)},
		{Key: "height", Value: surface.FormatNum(h)},
		{Key: "rx", Value: "2"},
		{Key: "ry", Value: "2"},
	}
	return surface.Shape{Tag: "rect", Attrs: append(attrs, extra...)}
}

func text(x, y float64, s string) surface.Shape {
	return surface.Shape{
		Tag: "text",
		Attrs: []surface.Attr{
			{Key: "x", Value: surface.FormatNum(x)},
			{Key: "y", Value: surface.FormatNum(y)},
			{Key: "fill", Value: TextFill},
			{Key: "font-size", Value: "10px"},
			{Key: "font-family", Value: fonts.FontFamily},
		},
		Text: s,
	}
}

// Recolor sets the fill of every id-tagged overlay rect in doc from fill.
func Recolor(doc *surface.Document, fill func(id string) string) {
	for _, r := range doc.OverlayRects() {
		r.SetFill(fill(r.NodeID()))
	}
}
