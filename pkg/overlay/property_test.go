package overlay

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/btlive/pkg/fonts"
	"github.com/matzehuels/btlive/pkg/surface"
)

// randomTree attaches node i (1..n-1) under parent[i] % i, so node 0 is the
// collapsed root.
func randomTree(n int, parents []int) map[string][]string {
	adj := make(map[string][]string)
	for i := 1; i < n; i++ {
		p := parents[i%len(parents)] % i
		adj[strconv.Itoa(p)] = append(adj[strconv.Itoa(p)], strconv.Itoa(i))
	}
	return adj
}

func TestPropertyLayout(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	m := DefaultMetrics
	gens := []gopter.Gen{
		gen.IntRange(2, 25),
		gen.SliceOfN(25, gen.IntRange(0, 1000)),
		gen.Float64Range(20, 300),
		gen.Float64Range(20, 200),
	}

	properties.Property("box never shrinks and fits its content", prop.ForAll(
		func(n int, parents []int, w, h float64) bool {
			adj := randomTree(n, parents)
			box := surface.Rect{MinX: -w / 2, MinY: -h, MaxX: w / 2, MaxY: 0}
			l, ok := Compute(Input{ID: "0", Box: box, Tree: BuildSubtree(childrenOf(adj), "0"), Measure: fonts.Fallback{}})
			if !ok {
				return false
			}
			if l.Box.Width() < box.Width() || l.Box.Height() < box.Height() {
				return false
			}
			if l.Box.MinX != box.MinX || l.Box.MinY != box.MinY {
				return false
			}
			if l.InnerWidth < l.RequiredWidth {
				return false
			}
			return l.Box.Height() >= m.TopPad+m.RowH+m.RowGap+l.ContentHeight+m.BottomPad
		},
		gens...,
	))

	properties.Property("every node gets one row inside the content area", prop.ForAll(
		func(n int, parents []int, w, h float64) bool {
			adj := randomTree(n, parents)
			box := surface.Rect{MaxX: w, MaxY: h}
			tree := BuildSubtree(childrenOf(adj), "0")
			l, _ := Compute(Input{ID: "0", Box: box, Tree: tree, Measure: fonts.Fallback{}})
			if len(l.Rows) != n-1 || Count(tree) != n-1 {
				return false
			}
			top := m.RowH + m.RowGap
			bottom := top + l.ContentHeight
			for i, r := range l.Rows {
				if r.Y < top || r.Y+r.Height > bottom+1e-9 {
					return false
				}
				if i > 0 && r.Y <= l.Rows[i-1].Y {
					return false
				}
				if r.X != float64(r.Depth)*m.Indent {
					return false
				}
			}
			return true
		},
		gens...,
	))

	properties.TestingRun(t)
}
