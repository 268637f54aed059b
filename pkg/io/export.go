package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/btlive/pkg/dag"
)

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID    string       `json:"id"`
	Label string       `json:"label,omitempty"`
	Kind  string       `json:"kind,omitempty"`
	Meta  dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes a tree as JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *dag.DAG, w io.Writer) error {
	out := graph{
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		nd := node{ID: n.ID, Label: n.Label, Kind: n.Kind()}
		meta := dag.Metadata{}
		for k, v := range n.Meta {
			if k != "kind" {
				meta[k] = v
			}
		}
		if len(meta) > 0 {
			nd.Meta = meta
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
