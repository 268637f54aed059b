package surface

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rect is an axis-aligned rectangle in drawing units.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns MaxX - MinX.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns MaxY - MinY.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// ParsePoints computes the bounding box of an SVG points list
// ("x1,y1 x2,y2 ..."). Pairs may be separated by whitespace; coordinates
// within a pair by a comma.
func ParsePoints(points string) (Rect, error) {
	fields := strings.Fields(points)
	if len(fields) == 0 {
		return Rect{}, fmt.Errorf("empty points")
	}
	r := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, pair := range fields {
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			return Rect{}, fmt.Errorf("malformed point %q", pair)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return Rect{}, fmt.Errorf("malformed x in %q: %w", pair, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return Rect{}, fmt.Errorf("malformed y in %q: %w", pair, err)
		}
		r.MinX = min(r.MinX, x)
		r.MaxX = max(r.MaxX, x)
		r.MinY = min(r.MinY, y)
		r.MaxY = max(r.MaxY, y)
	}
	return r, nil
}

// RectPoints formats r as a clockwise four-corner points list starting at
// the top-left corner.
func RectPoints(r Rect) string {
	return fmt.Sprintf("%s,%s %s,%s %s,%s %s,%s",
		FormatNum(r.MinX), FormatNum(r.MinY),
		FormatNum(r.MaxX), FormatNum(r.MinY),
		FormatNum(r.MaxX), FormatNum(r.MaxY),
		FormatNum(r.MinX), FormatNum(r.MaxY))
}

// FormatNum formats a coordinate with at most two decimals and no trailing zeros.
func FormatNum(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
