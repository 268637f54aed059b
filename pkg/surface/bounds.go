package surface

import (
	"strconv"
	"strings"
)

// CanvasMargin is the space kept between overlay content and the viewport edge.
const CanvasMargin = 20

// ViewBox is the SVG viewBox attribute.
type ViewBox struct {
	X, Y, Width, Height float64
}

func (v ViewBox) String() string {
	return FormatNum(v.X) + " " + FormatNum(v.Y) + " " + FormatNum(v.Width) + " " + FormatNum(v.Height)
}

// ViewBox parses the root viewBox. It reports false when the attribute is
// missing or does not hold four numbers.
func (d *Document) ViewBox() (ViewBox, bool) {
	parts := strings.Fields(strings.ReplaceAll(d.root.SelectAttrValue("viewBox", ""), ",", " "))
	if len(parts) != 4 {
		return ViewBox{}, false
	}
	var n [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return ViewBox{}, false
		}
		n[i] = v
	}
	return ViewBox{X: n[0], Y: n[1], Width: n[2], Height: n[3]}, true
}

// SetViewBox writes the root viewBox.
func (d *Document) SetViewBox(vb ViewBox) {
	d.root.CreateAttr("viewBox", vb.String())
}

// Height returns the numeric part of the root height attribute ("256pt" -> 256).
func (d *Document) Height() (float64, bool) {
	num, _ := splitUnit(d.root.SelectAttrValue("height", ""))
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// EnsureVerticalBounds grows the viewport so that the node-space span
// [minY, maxY] plus CanvasMargin fits inside it. The top edge moves up and
// the bottom edge moves down as needed; the viewport never shrinks. When it
// grows, a numeric height attribute smaller than the new viewBox height is
// raised to match, keeping its unit. It reports whether anything changed.
func (d *Document) EnsureVerticalBounds(minY, maxY float64) bool {
	vb, ok := d.ViewBox()
	if !ok {
		return false
	}
	_, ty := d.Offset()
	minY += ty
	maxY += ty

	top := vb.Y
	bottom := vb.Y + vb.Height
	changed := false
	if minY-CanvasMargin < top {
		newTop := minY - CanvasMargin
		vb.Height += top - newTop
		vb.Y = newTop
		changed = true
	}
	if maxY+CanvasMargin > bottom {
		vb.Height = maxY + CanvasMargin - vb.Y
		changed = true
	}
	if !changed {
		return false
	}
	d.SetViewBox(vb)

	num, unit := splitUnit(d.root.SelectAttrValue("height", ""))
	if h, err := strconv.ParseFloat(num, 64); err == nil && h < vb.Height {
		d.root.CreateAttr("height", FormatNum(vb.Height)+unit)
	}
	return true
}

// splitUnit separates a length like "256pt" into "256" and "pt".
func splitUnit(s string) (num, unit string) {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		i--
	}
	return s[:i], s[i:]
}
