package overlay

// Subtree is one node of a collapsed node's hidden subtree.
type Subtree struct {
	ID       string
	Children []*Subtree
}

// BuildSubtree expands the children of root recursively. root itself is not
// included. A branch stops where it would revisit an id already on its path,
// so cyclic input yields a finite tree.
func BuildSubtree(children func(id string) []string, root string) []*Subtree {
	path := map[string]bool{root: true}
	var expand func(id string) *Subtree
	expand = func(id string) *Subtree {
		t := &Subtree{ID: id}
		path[id] = true
		for _, c := range children(id) {
			if path[c] {
				continue
			}
			t.Children = append(t.Children, expand(c))
		}
		delete(path, id)
		return t
	}

	var out []*Subtree
	for _, c := range children(root) {
		if c == root {
			continue
		}
		out = append(out, expand(c))
	}
	return out
}

// Count returns the number of nodes in tree.
func Count(tree []*Subtree) int {
	n := 0
	for _, t := range tree {
		n += 1 + Count(t.Children)
	}
	return n
}
