package surface

import (
	"strings"

	"github.com/beevik/etree"
)

// Edge is a g.edge element.
type Edge struct {
	el *etree.Element
}

// Title returns the trimmed title text and whether a title element exists.
func (e *Edge) Title() (string, bool) {
	t := e.el.SelectElement("title")
	if t == nil {
		return "", false
	}
	return strings.TrimSpace(t.Text()), true
}

// SetHidden shows or hides the edge group.
func (e *Edge) SetHidden(hidden bool) { setHidden(e.el, hidden) }

// Hidden reports whether the edge group is hidden.
func (e *Edge) Hidden() bool { return isHidden(e.el) }
