// Package fonts provides text metrics for the collapsed-subtree overlay.
//
// Overlay rows are drawn in a 10px monospace face. Widths are measured with
// the Go Mono font shipped in golang.org/x/image, which matches the advance
// of the Bitstream Vera Sans Mono face declared in the SVG closely enough for
// box sizing. When the face cannot be loaded, [Fallback] approximates six
// pixels per character.
package fonts

import (
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family written on overlay text elements.
const FontFamily = "Bitstream Vera Sans Mono, monospace"

// DefaultSize is the overlay font size in pixels.
const DefaultSize = 10.0

const fallbackCharWidth = 6.0

// Measurer reports the rendered width of a string in surface units.
type Measurer interface {
	TextWidth(text string) float64
}

// Mono measures text with the Go Mono face at a fixed size.
// It is safe for concurrent use.
type Mono struct {
	mu   sync.Mutex
	face font.Face
}

// NewMono loads the Go Mono face at size pixels (72 DPI, so 1pt == 1px).
func NewMono(size float64) (*Mono, error) {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	return &Mono{face: face}, nil
}

// TextWidth returns the advance width of text.
func (m *Mono) TextWidth(text string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(font.MeasureString(m.face, text)) / 64
}

// Fallback approximates widths at six pixels per rune; empty text counts as
// one rune so zero-width labels still reserve space.
type Fallback struct{}

// TextWidth returns the approximate width of text.
func (Fallback) TextWidth(text string) float64 {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		n = 1
	}
	return float64(n) * fallbackCharWidth
}

var (
	defaultMeasurer     Measurer
	defaultMeasurerOnce sync.Once
)

// Default returns the shared overlay measurer: Go Mono at [DefaultSize], or
// [Fallback] if the face fails to load.
func Default() Measurer {
	defaultMeasurerOnce.Do(func() {
		m, err := NewMono(DefaultSize)
		if err != nil {
			defaultMeasurer = Fallback{}
			return
		}
		defaultMeasurer = m
	})
	return defaultMeasurer
}
