package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/btlive/pkg/dag"
)

func sampleTree() *dag.DAG {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "1", Label: "Sequence", Meta: dag.Metadata{"kind": "Control"}})
	_ = g.AddNode(dag.Node{ID: "2", Label: "Spin"})
	_ = g.AddEdge(dag.Edge{From: "1", To: "2"})
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sampleTree(), Options{})

	for _, want := range []string{
		"digraph G",
		`"1" [id="1", label="Sequence\nControl"]`,
		`"2" [id="2", label="Spin"]`,
		`"1" -> "2"`,
		"shape=box, style=filled",
		"nodesep=1;",
		"ranksep=2.4;",
		"margin=0.8;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
}

func TestToDOT_DimsAndFills(t *testing.T) {
	dot := ToDOT(sampleTree(), Options{
		Dims:  map[string]Dims{"1": {W: 3.5, H: 1.25}, "2": {W: 0, H: 2}},
		Fills: map[string]string{"2": "#ff0000"},
	})

	if !strings.Contains(dot, "width=3.5, height=1.25") {
		t.Errorf("ToDOT() missing dims for node 1:\n%s", dot)
	}
	if strings.Contains(dot, `"2" [id="2", label="Spin", fillcolor="#ff0000", width=`) {
		t.Errorf("ToDOT() should skip zero width:\n%s", dot)
	}
	if !strings.Contains(dot, `fillcolor="#ff0000", height=2`) {
		t.Errorf("ToDOT() missing fill/height for node 2:\n%s", dot)
	}
}

func TestSpacingFor(t *testing.T) {
	tests := []struct {
		name                  string
		dims                  map[string]Dims
		nodeSep, rankSep, mgn float64
	}{
		{"no dims", nil, 1.0, 2.4, 0.8},
		{"double width", map[string]Dims{"a": {W: 4, H: 0.6}}, 2.0, 2.4, 1.0},
		{"clamped", map[string]Dims{"a": {W: 20, H: 6}}, 3.0, 5.5, 5.0},
		{"smaller than default", map[string]Dims{"a": {W: 1, H: 0.3}}, 1.0, 2.4, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SpacingFor(tt.dims)
			if got.NodeSep != tt.nodeSep || got.RankSep != tt.rankSep || got.Margin != tt.mgn {
				t.Errorf("SpacingFor() = %+v, want nodesep=%v ranksep=%v margin=%v",
					got, tt.nodeSep, tt.rankSep, tt.mgn)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg width="800pt" viewBox="0.00 0.00 800.00 600.00" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sampleTree(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
	if !strings.Contains(s, `id="1"`) || !strings.Contains(s, `class="node"`) {
		t.Error("RenderSVG() output missing node group ids")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
