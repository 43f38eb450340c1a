package textlayout

import (
	"math"
	"strings"

	"golang.org/x/text/width"
)

// LineBreak is the styled-track hard line break.
const LineBreak = `\N`

const (
	portraitCoefficient  = 0.52
	landscapeCoefficient = 1.32
)

// Weight returns the wrap budget units one rune consumes: 2 for CJK, wide,
// or non-ASCII runes and 1 otherwise.
func Weight(r rune) int {
	if r > 127 || IsCJK(r) {
		return 2
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// VisualWeight sums the rune weights of text.
func VisualWeight(text string) int {
	total := 0
	for _, r := range text {
		total += Weight(r)
	}
	return total
}

// MaxUnits is the per-line budget for a font size factor and orientation.
func MaxUnits(fontSizeFactor float64, portrait bool) float64 {
	coeff := landscapeCoefficient
	if portrait {
		coeff = portraitCoefficient
	}
	return coeff / fontSizeFactor
}

// Wrap greedily breaks CJK-bearing text into lines whose weight fits the
// budget derived from fontSizeFactor, joined with LineBreak. Text without
// CJK code points is returned unchanged; the renderer wraps it natively.
func Wrap(text string, fontSizeFactor float64, portrait bool) string {
	if text == "" || math.IsNaN(fontSizeFactor) || fontSizeFactor <= 0 {
		return text
	}
	if !ContainsCJK(text) {
		return text
	}

	budget := MaxUnits(fontSizeFactor, portrait)
	var (
		lines   []string
		current strings.Builder
		units   int
	)
	for _, r := range text {
		w := Weight(r)
		if current.Len() > 0 && float64(units+w) > budget {
			lines = append(lines, current.String())
			current.Reset()
			units = 0
		}
		current.WriteRune(r)
		units += w
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, LineBreak)
}
