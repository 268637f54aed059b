package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/btlive/pkg/dag"
)

// Default node size in inches. Relayout spacing scales relative to these.
const (
	NodeWidthIn  = 2.0
	NodeHeightIn = 0.6
)

// DefaultFill is the fill of nodes that have not reported a state yet.
const DefaultFill = "#eeeeee"

// Dims is a node size in inches.
type Dims struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Options configures DOT generation.
type Options struct {
	// Dims overrides width/height (inches) for individual nodes.
	Dims map[string]Dims
	// NodeSep, RankSep and Margin are graph attributes in inches.
	// Zero values fall back to the initial-drawing defaults.
	NodeSep float64
	RankSep float64
	Margin  float64
	// Fills sets the initial fill per node; missing ids use DefaultFill.
	Fills map[string]string
}

func (o Options) withDefaults() Options {
	if o.NodeSep == 0 {
		o.NodeSep = baseNodeSep
	}
	if o.RankSep == 0 {
		o.RankSep = baseRankSep
	}
	if o.Margin == 0 {
		o.Margin = baseMargin
	}
	return o
}

// ToDOT converts a tree to Graphviz DOT. Node and edge order follow the
// tree's insertion order so identical inputs give identical drawings.
func ToDOT(g *dag.DAG, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=filled, fillcolor=%q, fontname=\"Bitstream Vera Sans Mono\", fontsize=12, width=%s, height=%s];\n",
		DefaultFill, fmtInches(NodeWidthIn), fmtInches(NodeHeightIn))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", fmtInches(opts.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", fmtInches(opts.RankSep))
	fmt.Fprintf(&buf, "  margin=%s;\n", fmtInches(opts.Margin))
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(*n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n dag.Node, opts Options) []string {
	attrs := []string{
		fmt.Sprintf("id=%q", n.ID),
		fmt.Sprintf("label=%q", fmtLabel(n)),
	}
	if fill, ok := opts.Fills[n.ID]; ok && fill != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if d, ok := opts.Dims[n.ID]; ok {
		if d.W > 0 {
			attrs = append(attrs, "width="+fmtInches(d.W))
		}
		if d.H > 0 {
			attrs = append(attrs, "height="+fmtInches(d.H))
		}
	}
	return attrs
}

func fmtLabel(n dag.Node) string {
	if k := n.Kind(); k != "" {
		return n.DisplayLabel() + "\n" + k
	}
	return n.DisplayLabel()
}

func fmtInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
