package index_test

import (
	"reflect"
	"testing"

	"github.com/matzehuels/btlive/pkg/colors"
	"github.com/matzehuels/btlive/pkg/index"
	"github.com/matzehuels/btlive/pkg/surface"
	"github.com/matzehuels/btlive/pkg/surface/surfacetest"
)

func build(t *testing.T, b *surfacetest.Builder, table *colors.Table) *index.Index {
	t.Helper()
	doc, err := surface.Parse(b.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return index.Build(doc, table, nil)
}

func TestParseEdgeTitle(t *testing.T) {
	tests := []struct {
		title   string
		u, v    string
		wantErr error
	}{
		{"A->B", "A", "B", nil},
		{"  A  ->  B  ", "A", "B", nil},
		{"A->B->C", "A", "B->C", nil},
		{"A - B", "", "", index.ErrNoArrow},
		{"->B", "", "", index.ErrEmptyEndpoint},
		{"A-> ", "", "", index.ErrEmptyEndpoint},
		{"", "", "", index.ErrNoArrow},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			u, v, err := index.ParseEdgeTitle(tt.title)
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if u != tt.u || v != tt.v {
				t.Errorf("got (%q, %q), want (%q, %q)", u, v, tt.u, tt.v)
			}
		})
	}
}

func TestBuildAdjacency(t *testing.T) {
	b := surfacetest.Chain("A->B", "A->C", "B->D", "C->D")
	idx := build(t, b, nil)

	if got := idx.Nodes(); !reflect.DeepEqual(got, []string{"A", "B", "C", "D"}) {
		t.Errorf("Nodes() = %v", got)
	}
	if got := idx.Children("A"); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Errorf("Children(A) = %v", got)
	}
	if got := idx.Parents("D"); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Errorf("Parents(D) = %v", got)
	}
	if idx.HasChildren("D") {
		t.Error("HasChildren(D) = true")
	}
	if len(idx.Edges()) != 4 {
		t.Errorf("Edges() = %d", len(idx.Edges()))
	}

	// children and parents mirror each other
	for _, u := range idx.Nodes() {
		for _, v := range idx.Children(u) {
			if !idx.IsParent(v, u) {
				t.Errorf("%s in children[%s] but %s not in parents[%s]", v, u, u, v)
			}
		}
		for _, p := range idx.Parents(u) {
			if !idx.IsChild(p, u) {
				t.Errorf("%s in parents[%s] but not mirrored", p, u)
			}
		}
	}
}

func TestBuildSkipsMalformedEdges(t *testing.T) {
	b := surfacetest.Chain("A->B")
	b.RawEdge("garbage").RawEdge("->B").RawEdge("A->B")
	idx := build(t, b, nil)

	if got := idx.Skipped(); got != 2 {
		t.Errorf("Skipped() = %d, want 2", got)
	}
	if got := idx.Children("A"); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("duplicate edge duplicated child: %v", got)
	}
	if got := len(idx.Edges()); got != 2 {
		t.Errorf("Edges() = %d, want 2", got)
	}
}

func TestBuildSeedsColors(t *testing.T) {
	b := surfacetest.New().Node("A", "root", "#123456").Node("B", "", "").RawEdge("A->B")
	table := colors.NewTable()
	table.Set("B", "#ff0000")

	idx := build(t, b, table)
	if got := table.Get("A"); got != "#123456" {
		t.Errorf("A = %q, want original fill", got)
	}
	if got := table.Get("B"); got != "#ff0000" {
		t.Errorf("B = %q, existing entry must win", got)
	}
	if got := idx.Label("A"); got != "root" {
		t.Errorf("Label(A) = %q", got)
	}
	if got := idx.Label("missing"); got != "missing" {
		t.Errorf("Label(missing) = %q", got)
	}

	// Rebuilding is idempotent on the table.
	before := table.Snapshot()
	build(t, b, table)
	if !reflect.DeepEqual(before, table.Snapshot()) {
		t.Error("rebuild changed the color table")
	}
}
