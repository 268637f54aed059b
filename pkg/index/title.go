package index

import (
	"errors"
	"strings"
)

// Arrow separates endpoints in an edge title.
const Arrow = "->"

var (
	ErrNoArrow       = errors.New("edge title has no arrow")
	ErrEmptyEndpoint = errors.New("edge title has an empty endpoint")
)

// ParseEdgeTitle splits an edge title of the form "u -> v" on the first
// arrow and trims both endpoints. Text after a second arrow stays part of v.
func ParseEdgeTitle(title string) (u, v string, err error) {
	left, right, ok := strings.Cut(title, Arrow)
	if !ok {
		return "", "", ErrNoArrow
	}
	u, v = strings.TrimSpace(left), strings.TrimSpace(right)
	if u == "" || v == "" {
		return "", "", ErrEmptyEndpoint
	}
	return u, v, nil
}
