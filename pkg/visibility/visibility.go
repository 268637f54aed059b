// Package visibility decides which nodes and edges of a drawing are shown
// for a given set of collapsed nodes.
//
// A node is hidden iff one of its strict ancestors is collapsed. An edge
// u->v is shown iff u is neither collapsed nor hidden and v is not hidden:
// edges out of a collapsed node lead into its overlay and are suppressed.
package visibility

import (
	"slices"

	"github.com/matzehuels/btlive/pkg/index"
)

// Graph is the adjacency the engine walks. The engine never modifies the
// slices it returns.
type Graph interface {
	Nodes() []string
	Edges() []index.Edge
	Parents(id string) []string
}

// Engine answers visibility queries against a graph and a collapsed set.
type Engine struct {
	graph     Graph
	collapsed func(id string) bool
}

// New returns an engine. collapsed reports membership in the collapsed set.
func New(g Graph, collapsed func(id string) bool) *Engine {
	return &Engine{graph: g, collapsed: collapsed}
}

// IsHidden reports whether any strict ancestor of id is collapsed. The walk
// is an iterative depth-first search with a visited set, so it terminates
// on cyclic input. id itself never counts as its own ancestor, even through
// a self-loop or a cycle.
func (e *Engine) IsHidden(id string) bool {
	visited := map[string]bool{id: true}
	stack := slices.Clone(e.graph.Parents(id))
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p == "" || visited[p] {
			continue
		}
		visited[p] = true
		if e.collapsed(p) {
			return true
		}
		stack = append(stack, e.graph.Parents(p)...)
	}
	return false
}

// EdgeVisible reports whether the edge u->v is shown.
func (e *Engine) EdgeVisible(u, v string) bool {
	return !e.collapsed(u) && !e.IsHidden(u) && !e.IsHidden(v)
}

// Result is a full visibility pass.
type Result struct {
	// Hidden holds ids of hidden nodes.
	Hidden map[string]bool
	// HiddenEdges holds indexes into Graph.Edges of hidden edges.
	HiddenEdges []int
	// Overlays holds ids whose overlay is shown: collapsed and not hidden.
	Overlays map[string]bool
}

// Compute evaluates every node and edge. Each node's ancestor walk runs once.
func (e *Engine) Compute() Result {
	res := Result{
		Hidden:   make(map[string]bool),
		Overlays: make(map[string]bool),
	}
	hidden := make(map[string]bool)
	isHidden := func(id string) bool {
		h, ok := hidden[id]
		if !ok {
			h = e.IsHidden(id)
			hidden[id] = h
		}
		return h
	}

	for _, id := range e.graph.Nodes() {
		if isHidden(id) {
			res.Hidden[id] = true
		} else if e.collapsed(id) {
			res.Overlays[id] = true
		}
	}
	for i, edge := range e.graph.Edges() {
		if e.collapsed(edge.U) || isHidden(edge.U) || isHidden(edge.V) {
			res.HiddenEdges = append(res.HiddenEdges, i)
		}
	}
	return res
}

// Apply writes a result onto the drawing indexed by idx. Elements not
// covered by the result are shown.
func Apply(idx *index.Index, res Result) {
	for _, id := range idx.Nodes() {
		n, _ := idx.Node(id)
		n.SetHidden(res.Hidden[id])
		n.SetOverlayHidden(!res.Overlays[id])
	}
	hiddenEdge := make(map[int]bool, len(res.HiddenEdges))
	for _, i := range res.HiddenEdges {
		hiddenEdge[i] = true
	}
	for i, e := range idx.Edges() {
		e.Elem.SetHidden(hiddenEdge[i])
	}
}
