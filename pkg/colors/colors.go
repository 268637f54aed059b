// Package colors holds the process-wide node color table and the palette
// used to turn behavior-tree node states into fills.
package colors

import (
	"maps"
	"strings"
	"sync"
)

// DefaultFill is used for nodes with no known color.
const DefaultFill = "#eeeeee"

// Table maps node ids to fill colors. Entries are only added or
// overwritten, never removed. A Table is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	colors map[string]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{colors: make(map[string]string)}
}

// IsColor reports whether v is accepted as a color value: a string
// starting with '#'.
func IsColor(v string) bool {
	return strings.HasPrefix(v, "#")
}

// Seed records fill for id unless the table already has an entry. An empty
// fill seeds DefaultFill. It reports whether the entry was added.
func (t *Table) Seed(id, fill string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.colors[id]; ok {
		return false
	}
	if fill == "" {
		fill = DefaultFill
	}
	t.colors[id] = fill
	return true
}

// Set overwrites the color of id when color is valid.
func (t *Table) Set(id, color string) bool {
	if !IsColor(color) {
		return false
	}
	t.mu.Lock()
	t.colors[id] = color
	t.mu.Unlock()
	return true
}

// Merge applies every valid color in update and returns how many entries
// were written. Invalid values leave prior entries untouched.
func (t *Table) Merge(update map[string]string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id, c := range update {
		if !IsColor(c) {
			continue
		}
		t.colors[id] = c
		n++
	}
	return n
}

// Get returns the color of id, falling back to DefaultFill.
func (t *Table) Get(id string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c := t.colors[id]; c != "" {
		return c
	}
	return DefaultFill
}

// Lookup returns the color of id and whether it is present.
func (t *Table) Lookup(id string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.colors[id]
	return c, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.colors)
}

// Snapshot returns a copy of the table.
func (t *Table) Snapshot() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.colors)
}
