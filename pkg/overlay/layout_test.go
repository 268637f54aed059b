package overlay

import (
	"reflect"
	"testing"

	"github.com/matzehuels/btlive/pkg/fonts"
	"github.com/matzehuels/btlive/pkg/surface"
)

// fixedWidths measures known strings from a table and everything else as 10.
type fixedWidths map[string]float64

func (f fixedWidths) TextWidth(s string) float64 {
	if w, ok := f[s]; ok {
		return w
	}
	return 10
}

func childrenOf(adj map[string][]string) func(string) []string {
	return func(id string) []string { return adj[id] }
}

func ids(tree []*Subtree) []string {
	var out []string
	var walk func(ts []*Subtree)
	walk = func(ts []*Subtree) {
		for _, t := range ts {
			out = append(out, t.ID)
			walk(t.Children)
		}
	}
	walk(tree)
	return out
}

func TestBuildSubtree(t *testing.T) {
	tests := []struct {
		name string
		adj  map[string][]string
		root string
		want []string
	}{
		{"chain", map[string][]string{"A": {"B"}, "B": {"C"}}, "A", []string{"B", "C"}},
		{"leaf", map[string][]string{"A": {"B"}}, "B", nil},
		{"fan out keeps order", map[string][]string{"A": {"C", "B"}, "B": {"D"}}, "A", []string{"C", "B", "D"}},
		{"diamond repeats shared node", map[string][]string{"A": {"B", "C"}, "B": {"D"}, "C": {"D"}}, "A", []string{"B", "D", "C", "D"}},
		{"cycle stops on path", map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"A", "B"}}, "A", []string{"B", "C"}},
		{"self loop", map[string][]string{"A": {"A", "B"}}, "A", []string{"B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(BuildSubtree(childrenOf(tt.adj), tt.root))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildSubtree() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeights(t *testing.T) {
	m := DefaultMetrics
	// B -> {C, D}, E leaf
	tree := BuildSubtree(childrenOf(map[string][]string{
		"A": {"B", "E"},
		"B": {"C", "D"},
	}), "A")

	heights, total := Heights(tree, m)
	b, e := tree[0], tree[1]
	if got, want := heights[b], m.RowH+(m.RowH+m.RowGap+m.RowH)+m.InnerPadBottom; got != want {
		t.Errorf("height(B) = %g, want %g", got, want)
	}
	if got := heights[e]; got != m.RowH {
		t.Errorf("height(E) = %g, want %g", got, m.RowH)
	}
	if want := heights[b] + m.RowGap + heights[e]; total != want {
		t.Errorf("total = %g, want %g", total, want)
	}
}

func TestRequiredWidth(t *testing.T) {
	m := DefaultMetrics
	label := func(id string) string { return id }
	// B is at depth 0 under A, C at depth 1, D at depth 2.
	tree := BuildSubtree(childrenOf(map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"D"}}), "A")

	tests := []struct {
		name   string
		widths fixedWidths
		want   float64
	}{
		{"depth 0 row", fixedWidths{"B": 50}, 0*12 + 4 + 50 + 8},
		{"depth 1 row", fixedWidths{"C": 50}, 1*12 + 4 + 50 + 8},
		{"depth 2 row", fixedWidths{"D": 50}, 2*12 + 4 + 50 + 8},
		{"header dominates", fixedWidths{"A": 100}, 4 + 100 + 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiredWidth(tree, "A", label, tt.widths, m); got != tt.want {
				t.Errorf("RequiredWidth() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestComputeGrowsToRequirement(t *testing.T) {
	// Header needs 4 + 128 + 8 = 140 inner width; the chain B->C->D->E
	// stacks to a content height of 90.
	box := surface.Rect{MinX: 10, MinY: -200, MaxX: 110, MaxY: -160}
	tree := BuildSubtree(childrenOf(map[string][]string{
		"A": {"B"}, "B": {"C"}, "C": {"D"}, "D": {"E"},
	}), "A")

	l, ok := Compute(Input{ID: "A", Box: box, Tree: tree, Measure: fixedWidths{"A": 128}})
	if !ok {
		t.Fatal("Compute() = false")
	}
	m := DefaultMetrics
	if l.ContentHeight != 90 {
		t.Fatalf("ContentHeight = %g, want 90", l.ContentHeight)
	}
	if l.RequiredWidth != 140 {
		t.Fatalf("RequiredWidth = %g, want 140", l.RequiredWidth)
	}
	if l.Box.Width() < 140 {
		t.Errorf("width %g < 140", l.Box.Width())
	}
	wantH := m.TopPad + m.RowH + m.RowGap + 90 + m.BottomPad
	if l.Box.Height() < wantH {
		t.Errorf("height %g < %g", l.Box.Height(), wantH)
	}
	if l.Box.Width() < 100 || l.Box.Height() < 40 {
		t.Errorf("box shrank: %+v", l.Box)
	}
	if l.Box.MinX != box.MinX || l.Box.MinY != box.MinY {
		t.Errorf("box moved: %+v", l.Box)
	}
	if l.InnerWidth != 140 || l.Box.Width() != 152 {
		t.Errorf("InnerWidth = %g, width = %g", l.InnerWidth, l.Box.Width())
	}
	if want := (Dims{W: 152 / PtPerIn, H: 126 / PtPerIn}); l.Dims != want {
		t.Errorf("Dims = %+v, want %+v", l.Dims, want)
	}
}

func TestComputeKeepsLargeBox(t *testing.T) {
	box := surface.Rect{MinX: 0, MinY: 0, MaxX: 400, MaxY: 300}
	tree := []*Subtree{{ID: "B"}}
	l, ok := Compute(Input{ID: "A", Box: box, Tree: tree, Measure: fonts.Fallback{}})
	if !ok {
		t.Fatal("Compute() = false")
	}
	if l.Box != box {
		t.Errorf("Box = %+v, want unchanged %+v", l.Box, box)
	}
	if l.InnerWidth != 400-2*DefaultMetrics.PaddingX {
		t.Errorf("InnerWidth = %g", l.InnerWidth)
	}
}

func TestComputeEmptyTree(t *testing.T) {
	if _, ok := Compute(Input{ID: "A", Box: surface.Rect{MaxX: 10, MaxY: 10}}); ok {
		t.Error("Compute() with no subtree = true")
	}
}

func TestComputeRowPositions(t *testing.T) {
	m := DefaultMetrics
	tree := BuildSubtree(childrenOf(map[string][]string{
		"A": {"B", "E"},
		"B": {"C", "D"},
	}), "A")
	l, _ := Compute(Input{
		ID:      "A",
		Box:     surface.Rect{MinX: 0, MinY: 0, MaxX: 200, MaxY: 40},
		Tree:    tree,
		Measure: fonts.Fallback{},
	})

	start := m.RowH + m.RowGap
	hB := m.RowH + m.RowH + m.RowGap + m.RowH + m.InnerPadBottom
	want := []Row{
		{ID: "B", Label: "B", Depth: 0, X: 0, Y: start, Height: hB},
		{ID: "C", Label: "C", Depth: 1, X: 12, Y: start + m.RowH, Height: m.RowH},
		{ID: "D", Label: "D", Depth: 1, X: 12, Y: start + 2*m.RowH + m.RowGap, Height: m.RowH},
		{ID: "E", Label: "E", Depth: 0, X: 0, Y: start + hB + m.RowGap, Height: m.RowH},
	}
	if len(l.Rows) != len(want) {
		t.Fatalf("Rows = %d, want %d", len(l.Rows), len(want))
	}
	for i, w := range want {
		w.Width = max(minRowWidth, l.InnerWidth-w.X-2)
		if l.Rows[i] != w {
			t.Errorf("Rows[%d] = %+v, want %+v", i, l.Rows[i], w)
		}
	}
	if l.Header.Y != 0 || l.Header.Height != m.RowH || l.Header.Width != l.InnerWidth {
		t.Errorf("Header = %+v", l.Header)
	}
}

func TestComputeNarrowRowsClamp(t *testing.T) {
	// A deep chain in a narrow box: rows never drop below the minimum width.
	adj := map[string][]string{}
	prev := "A"
	for _, id := range []string{"B", "C", "D", "E", "F", "G", "H", "I", "J", "K"} {
		adj[prev] = []string{id}
		prev = id
	}
	l, _ := Compute(Input{
		ID:      "A",
		Box:     surface.Rect{MaxX: 20, MaxY: 20},
		Tree:    BuildSubtree(childrenOf(adj), "A"),
		Label:   func(string) string { return "" },
		Measure: fixedWidths{},
		Metrics: Metrics{PaddingX: 6, RowH: 18, Indent: 12},
	})
	for _, r := range l.Rows {
		if r.Width < minRowWidth {
			t.Errorf("row %s width %g < %d", r.ID, r.Width, minRowWidth)
		}
	}
}
