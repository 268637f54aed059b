package overlay

import (
	"math"

	"github.com/matzehuels/btlive/pkg/fonts"
	"github.com/matzehuels/btlive/pkg/surface"
)

// PtPerIn converts drawing units to inches.
const PtPerIn = 72.0

// Metrics are the overlay spacing constants in drawing units.
type Metrics struct {
	PaddingX       float64
	TopPad         float64
	BottomPad      float64
	RowH           float64
	RowGap         float64
	Indent         float64
	InnerPadBottom float64
	LabelPadLeft   float64
	LabelPadRight  float64
}

// DefaultMetrics sizes rows for a 10px monospace face.
var DefaultMetrics = Metrics{
	PaddingX:       6,
	TopPad:         6,
	BottomPad:      8,
	RowH:           18,
	RowGap:         4,
	Indent:         12,
	InnerPadBottom: 6,
	LabelPadLeft:   4,
	LabelPadRight:  8,
}

// minRowWidth is the narrowest a row rect is drawn.
const minRowWidth = 10

// Dims is a node size in inches.
type Dims struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Row is one rendered line of the overlay, in overlay coordinates (origin
// at the top-left of the inner area).
type Row struct {
	ID    string
	Label string
	Depth int
	X, Y  float64
	Width float64
	// Height spans the row and all rows nested under it.
	Height float64
}

// Layout is the computed overlay for one collapsed node.
type Layout struct {
	ID string
	// Original is the shape box before growth; Box is the final box.
	Original surface.Rect
	Box      surface.Rect
	// OriginX and OriginY place the overlay group in node space.
	OriginX, OriginY float64
	InnerWidth       float64
	RequiredWidth    float64
	ContentHeight    float64
	Header           Row
	Rows             []Row
	Dims             Dims
	Metrics          Metrics
}

// Input is everything Compute needs.
type Input struct {
	ID      string
	Box     surface.Rect
	Tree    []*Subtree
	Label   func(id string) string
	Measure fonts.Measurer
	// Metrics defaults to DefaultMetrics when zero.
	Metrics Metrics
}

// Heights computes the height of every subtree node and the total stacked
// height of the top-level entries including the gaps between them.
func Heights(tree []*Subtree, m Metrics) (map[*Subtree]float64, float64) {
	heights := make(map[*Subtree]float64)
	var calc func(t *Subtree) float64
	calc = func(t *Subtree) float64 {
		if len(t.Children) == 0 {
			heights[t] = m.RowH
			return m.RowH
		}
		h := m.RowH + stack(t.Children, m.RowGap, calc) + m.InnerPadBottom
		heights[t] = h
		return h
	}
	total := stack(tree, m.RowGap, calc)
	return heights, total
}

func stack(items []*Subtree, gap float64, height func(*Subtree) float64) float64 {
	sum := 0.0
	for i, t := range items {
		sum += height(t)
		if i < len(items)-1 {
			sum += gap
		}
	}
	return sum
}

// RequiredWidth returns the inner width needed to show every label in tree
// at its depth, and the header label at depth 0.
func RequiredWidth(tree []*Subtree, header string, label func(id string) string, measure fonts.Measurer, m Metrics) float64 {
	width := m.LabelPadLeft + measure.TextWidth(header) + m.LabelPadRight
	var calc func(t *Subtree, depth int)
	calc = func(t *Subtree, depth int) {
		self := float64(depth)*m.Indent + m.LabelPadLeft + measure.TextWidth(label(t.ID)) + m.LabelPadRight
		width = max(width, self)
		for _, c := range t.Children {
			calc(c, depth+1)
		}
	}
	for _, t := range tree {
		calc(t, 0)
	}
	return width
}

// Compute lays out the overlay. It reports false when tree is empty, in
// which case there is nothing to draw.
func Compute(in Input) (Layout, bool) {
	if len(in.Tree) == 0 {
		return Layout{}, false
	}
	m := in.Metrics
	if m == (Metrics{}) {
		m = DefaultMetrics
	}
	label := in.Label
	if label == nil {
		label = func(id string) string { return id }
	}
	measure := in.Measure
	if measure == nil {
		measure = fonts.Fallback{}
	}

	header := label(in.ID)
	required := RequiredWidth(in.Tree, header, label, measure, m)
	innerWidth := max(in.Box.Width()-2*m.PaddingX, math.Ceil(required))
	totalWidth := innerWidth + 2*m.PaddingX

	heights, content := Heights(in.Tree, m)
	needed := m.TopPad + m.RowH + m.RowGap + content + m.BottomPad
	height := max(in.Box.Height(), needed)

	l := Layout{
		ID:       in.ID,
		Original: in.Box,
		Box: surface.Rect{
			MinX: in.Box.MinX,
			MinY: in.Box.MinY,
			MaxX: in.Box.MinX + totalWidth,
			MaxY: in.Box.MinY + height,
		},
		OriginX:       in.Box.MinX + m.PaddingX,
		OriginY:       in.Box.MinY + m.TopPad,
		InnerWidth:    innerWidth,
		RequiredWidth: required,
		ContentHeight: content,
		Header: Row{
			ID: in.ID, Label: header,
			Width: innerWidth, Height: m.RowH,
		},
		Dims:    Dims{W: totalWidth / PtPerIn, H: height / PtPerIn},
		Metrics: m,
	}

	var place func(t *Subtree, depth int, y float64) float64
	place = func(t *Subtree, depth int, y float64) float64 {
		x := float64(depth) * m.Indent
		h := heights[t]
		l.Rows = append(l.Rows, Row{
			ID:     t.ID,
			Label:  label(t.ID),
			Depth:  depth,
			X:      x,
			Y:      y,
			Width:  max(minRowWidth, innerWidth-x-2),
			Height: h,
		})
		cursor := y + m.RowH
		for i, c := range t.Children {
			cursor = place(c, depth+1, cursor)
			if i < len(t.Children)-1 {
				cursor += m.RowGap
			}
		}
		return y + h
	}

	cursor := m.RowH + m.RowGap
	for i, t := range in.Tree {
		cursor = place(t, 0, cursor)
		if i < len(in.Tree)-1 {
			cursor += m.RowGap
		}
	}
	return l, true
}
