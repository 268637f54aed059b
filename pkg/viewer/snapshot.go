package viewer

import (
	"maps"

	"github.com/matzehuels/btlive/pkg/overlay"
)

// NodeInfo describes one node for list views.
type NodeInfo struct {
	ID    string
	Label string
	Color string
	// Depth is the distance from the nearest root in a pre-order walk.
	Depth       int
	HasChildren bool
	Collapsed   bool
	Hidden      bool
}

// Snapshot is a copy of the render state.
type Snapshot struct {
	// Version increases with every change.
	Version  int
	Attached bool
	// Nodes are in pre-order from the roots, children in drawing order.
	Nodes     []NodeInfo
	Collapsed []string
	Dims      map[string]overlay.Dims
	Status    string
	SVG       []byte
}

// Snapshot returns a copy of the render state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:   c.version,
		Attached:  c.cur != nil,
		Collapsed: c.opts.Store.IDs(),
		Dims:      maps.Clone(c.dims),
		Status:    c.status,
	}
	if c.cur == nil {
		return snap
	}
	if svg, err := c.cur.doc.Bytes(); err == nil {
		snap.SVG = svg
	}

	idx := c.cur.idx
	seen := make(map[string]bool)
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if seen[id] {
			return
		}
		seen[id] = true
		n, _ := idx.Node(id)
		snap.Nodes = append(snap.Nodes, NodeInfo{
			ID:          id,
			Label:       idx.Label(id),
			Color:       c.opts.Colors.Get(id),
			Depth:       depth,
			HasChildren: idx.HasChildren(id),
			Collapsed:   c.opts.Store.Contains(id),
			Hidden:      n != nil && n.Hidden(),
		})
		for _, child := range idx.Children(id) {
			walk(child, depth+1)
		}
	}
	for _, id := range idx.Nodes() {
		if len(idx.Parents(id)) == 0 {
			walk(id, 0)
		}
	}
	// nodes only reachable through a cycle
	for _, id := range idx.Nodes() {
		walk(id, 0)
	}
	return snap
}
