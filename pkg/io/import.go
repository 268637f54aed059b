package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/btlive/pkg/dag"
	"github.com/matzehuels/btlive/pkg/errors"
)

// ReadJSON decodes a JSON tree from r and validates it.
//
// Errors are coded [errors.ErrCodeInvalidTree] and wrap the underlying dag
// error, so errors.Is(err, dag.ErrGraphHasCycle) works. ReadJSON does not
// close r.
func ReadJSON(r io.Reader) (*dag.DAG, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode")
	}

	g := dag.New(nil)
	for _, n := range data.Nodes {
		meta := dag.Metadata{}
		for k, v := range n.Meta {
			meta[k] = v
		}
		if n.Kind != "" {
			meta["kind"] = n.Kind
		}
		if err := g.AddNode(dag.Node{ID: n.ID, Label: n.Label, Meta: meta}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "node %q", n.ID)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "edge %s->%s", e.From, e.To)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "validate")
	}
	return g, nil
}

// ImportJSON reads a JSON tree file at path.
func ImportJSON(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
