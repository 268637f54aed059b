package render

const (
	baseNodeSep = 1.0
	baseRankSep = 2.4
	baseMargin  = 0.8

	maxNodeSep = 3.0
	maxRankSep = 5.5
)

// SpacingFor derives graph separation from the largest requested node size.
// Separation grows proportionally to the size increase over the default node
// and is clamped; it never drops below the initial-drawing values.
func SpacingFor(dims map[string]Dims) Options {
	maxW, maxH := NodeWidthIn, NodeHeightIn
	if len(dims) > 0 {
		maxW, maxH = 0, 0
		for _, d := range dims {
			w, h := d.W, d.H
			if w <= 0 {
				w = NodeWidthIn
			}
			if h <= 0 {
				h = NodeHeightIn
			}
			maxW = max(maxW, w)
			maxH = max(maxH, h)
		}
	}

	return Options{
		NodeSep: max(baseNodeSep, min(maxNodeSep, baseNodeSep*(maxW/NodeWidthIn))),
		RankSep: max(baseRankSep, min(maxRankSep, baseRankSep*(maxH/NodeHeightIn))),
		Margin:  max(baseMargin, 0.25*max(maxW, maxH)),
	}
}
