// Package index derives parent/child adjacency and per-node lookups from a
// rendered drawing.
//
// An [Index] is built once per surface and discarded wholesale when the
// surface is replaced. Adjacency comes only from edge titles; there is no
// other source of truth, so children and parents are always mirror images.
package index

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/btlive/pkg/colors"
	"github.com/matzehuels/btlive/pkg/surface"
)

// Edge is a parsed edge and its element.
type Edge struct {
	U, V string
	Elem *surface.Edge
}

// Index holds the nodes, edges and adjacency of one surface.
type Index struct {
	nodes    map[string]*surface.Node
	order    []string
	edges    []Edge
	children map[string][]string
	parents  map[string][]string
	childSet map[string]map[string]bool
	parentOf map[string]map[string]bool
	skipped  int
}

// Build indexes doc. Node fills seed table for ids it has not seen; nothing
// else in table is touched. Malformed edge titles are skipped and logged.
// A nil table or logger is allowed.
func Build(doc *surface.Document, table *colors.Table, logger *log.Logger) *Index {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	idx := &Index{
		nodes:    make(map[string]*surface.Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
		childSet: make(map[string]map[string]bool),
		parentOf: make(map[string]map[string]bool),
	}

	for _, n := range doc.Nodes() {
		id := n.ID()
		if _, dup := idx.nodes[id]; dup {
			logger.Warn("duplicate node id", "id", id)
			continue
		}
		idx.nodes[id] = n
		idx.order = append(idx.order, id)
		if table != nil {
			table.Seed(id, n.Fill())
		}
	}

	for _, e := range doc.Edges() {
		title, ok := e.Title()
		if !ok {
			idx.skipped++
			logger.Warn("edge without title skipped")
			continue
		}
		u, v, err := ParseEdgeTitle(title)
		if err != nil {
			idx.skipped++
			logger.Warn("malformed edge title skipped", "title", title, "err", err)
			continue
		}
		idx.edges = append(idx.edges, Edge{U: u, V: v, Elem: e})
		idx.link(u, v)
	}

	logger.Debug("indexed surface", "nodes", len(idx.order), "edges", len(idx.edges), "skipped", idx.skipped)
	return idx
}

func (idx *Index) link(u, v string) {
	if idx.childSet[u] == nil {
		idx.childSet[u] = make(map[string]bool)
	}
	if !idx.childSet[u][v] {
		idx.childSet[u][v] = true
		idx.children[u] = append(idx.children[u], v)
	}
	if idx.parentOf[v] == nil {
		idx.parentOf[v] = make(map[string]bool)
	}
	if !idx.parentOf[v][u] {
		idx.parentOf[v][u] = true
		idx.parents[v] = append(idx.parents[v], u)
	}
}

// Node returns the element for id.
func (idx *Index) Node(id string) (*surface.Node, bool) {
	n, ok := idx.nodes[id]
	return n, ok
}

// Nodes returns node ids in document order.
func (idx *Index) Nodes() []string { return slices.Clone(idx.order) }

// Edges returns the parsed edges in document order.
func (idx *Index) Edges() []Edge { return slices.Clone(idx.edges) }

// Children returns the distinct children of id in first-seen order.
func (idx *Index) Children(id string) []string { return slices.Clone(idx.children[id]) }

// Parents returns the distinct parents of id in first-seen order.
func (idx *Index) Parents(id string) []string { return slices.Clone(idx.parents[id]) }

// HasChildren reports whether id has at least one child.
func (idx *Index) HasChildren(id string) bool { return len(idx.children[id]) > 0 }

// IsChild reports whether v is a child of u.
func (idx *Index) IsChild(u, v string) bool { return idx.childSet[u][v] }

// IsParent reports whether u is a parent of v.
func (idx *Index) IsParent(v, u string) bool { return idx.parentOf[v][u] }

// Label returns the node's native label, or its id when it has none or is
// not in the drawing.
func (idx *Index) Label(id string) string {
	if n, ok := idx.nodes[id]; ok {
		if l := n.Label(); l != "" {
			return l
		}
	}
	return id
}

// Skipped returns how many edges were dropped as malformed.
func (idx *Index) Skipped() int { return idx.skipped }
