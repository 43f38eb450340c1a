package textlayout

import (
	"unicode"

	"golang.org/x/text/width"
)

// ScriptClass is the styling class of a run of text.
type ScriptClass int

const (
	// Other covers Latin and every other non-CJK script.
	Other ScriptClass = iota
	// CJK marks text containing at least one CJK code point.
	CJK
)

func (c ScriptClass) String() string {
	if c == CJK {
		return "cjk"
	}
	return "other"
}

// IsCJK reports whether r is a CJK ideograph, CJK punctuation, or an East
// Asian fullwidth form.
func IsCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF:
		return true
	case r >= 0x3000 && r <= 0x303F:
		return true
	case unicode.Is(unicode.Han, r):
		return true
	}
	return width.LookupRune(r).Kind() == width.EastAsianFullwidth
}

// ContainsCJK reports whether text contains any CJK code point.
func ContainsCJK(text string) bool {
	for _, r := range text {
		if IsCJK(r) {
			return true
		}
	}
	return false
}

// Classify returns CJK when the run contains any CJK code point.
func Classify(run string) ScriptClass {
	if ContainsCJK(run) {
		return CJK
	}
	return Other
}
