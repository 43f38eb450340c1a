package style

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"bisub/internal/config"
	"bisub/internal/media/ffprobe"
	"bisub/internal/textlayout"
)

// Profile is the appearance of one script class.
type Profile struct {
	FontFamily string
	// FontSizeFactor is the font size as a fraction of frame height.
	FontSizeFactor float64
	// Color is packed 0xRRGGBB.
	Color       uint32
	MinFontSize float64
}

// Profiles holds the per-class appearance plus the line order policy.
type Profiles struct {
	CJK       Profile
	Other     Profile
	LineOrder string
}

// DefaultProfiles returns the built-in profiles.
func DefaultProfiles() Profiles {
	cfg := config.Default()
	profiles, _ := FromConfig(cfg.Style)
	return profiles
}

// FromConfig builds profiles from the style section.
func FromConfig(s config.Style) (Profiles, error) {
	cjkColor, err := config.ParseColor(s.CJKColor)
	if err != nil {
		return Profiles{}, fmt.Errorf("cjk colour: %w", err)
	}
	otherColor, err := config.ParseColor(s.OtherColor)
	if err != nil {
		return Profiles{}, fmt.Errorf("other colour: %w", err)
	}
	return Profiles{
		CJK: Profile{
			FontFamily:     s.CJKFont,
			FontSizeFactor: s.CJKFontSizeFactor,
			Color:          cjkColor,
			MinFontSize:    s.CJKMinFontSize,
		},
		Other: Profile{
			FontFamily:     s.OtherFont,
			FontSizeFactor: s.OtherFontSizeFactor,
			Color:          otherColor,
			MinFontSize:    s.OtherMinFontSize,
		},
		LineOrder: s.LineOrder,
	}, nil
}

// For returns the profile of a script class.
func (p Profiles) For(class textlayout.ScriptClass) Profile {
	if class == textlayout.CJK {
		return p.CJK
	}
	return p.Other
}

// FontSize returns the pixel size for a frame height, raised to MinFontSize
// and rounded to two decimals.
func (p Profile) FontSize(frameHeight int) float64 {
	size := float64(frameHeight) * p.FontSizeFactor
	if size < p.MinFontSize {
		size = p.MinFontSize
	}
	return math.Round(size*100) / 100
}

// Directive is an inline override block applied to one styled line.
type Directive struct {
	FontFamily string
	FontSize   float64
	Bold       bool
	Color      uint32
}

// String renders the override block, e.g. {\fnArial\fs64.8\b0\c&HFFFFFF&}.
func (d Directive) String() string {
	bold := 0
	if d.Bold {
		bold = 1
	}
	return fmt.Sprintf(`{\fn%s\fs%s\b%d\c%s}`,
		sanitizeFontName(d.FontFamily),
		strconv.FormatFloat(d.FontSize, 'f', -1, 64),
		bold,
		ColorTag(d.Color))
}

// ColorTag converts packed 0xRRGGBB into the BGR &HBBGGRR& form.
func ColorTag(rgb uint32) string {
	r := (rgb >> 16) & 0xFF
	g := (rgb >> 8) & 0xFF
	b := rgb & 0xFF
	return fmt.Sprintf("&H%02X%02X%02X&", b, g, r)
}

// StyledLine is one wrapped line of a cue with its directive.
type StyledLine struct {
	Class     textlayout.ScriptClass
	Directive Directive
	Text      string
}

func (l StyledLine) String() string {
	return l.Directive.String() + l.Text
}

var (
	overrideBlock = regexp.MustCompile(`\{[^}]*\}`)
	markupTag     = regexp.MustCompile(`(?i)</?(?:i|b|u|s|font)(?:\s[^>]*)?>`)
	lineSplitter  = regexp.MustCompile(`\\[Nn]|\r?\n`)
)

// StripMarkup removes override blocks and HTML-ish formatting tags.
func StripMarkup(text string) string {
	text = overrideBlock.ReplaceAllString(text, "")
	return markupTag.ReplaceAllString(text, "")
}

// SplitLines splits cue text on hard breaks and real newlines, dropping
// blank lines.
func SplitLines(text string) []string {
	parts := lineSplitter.Split(text, -1)
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// StyleLines classifies, sizes and wraps each line of a cue.
func StyleLines(text string, geometry ffprobe.Geometry, profiles Profiles) []StyledLine {
	lines := Arrange(SplitLines(StripMarkup(text)), profiles.LineOrder)
	styled := make([]StyledLine, 0, len(lines))
	portrait := geometry.Portrait()
	for _, line := range lines {
		class := textlayout.Classify(line)
		profile := profiles.For(class)
		styled = append(styled, StyledLine{
			Class: class,
			Directive: Directive{
				FontFamily: profile.FontFamily,
				FontSize:   profile.FontSize(geometry.Height),
				Bold:       class == textlayout.CJK,
				Color:      profile.Color,
			},
			Text: sanitizeText(textlayout.Wrap(line, profile.FontSizeFactor, portrait)),
		})
	}
	return styled
}

// StyleCue renders a cue's text as directive-prefixed lines joined by \N.
func StyleCue(text string, geometry ffprobe.Geometry, profiles Profiles) string {
	styled := StyleLines(text, geometry, profiles)
	parts := make([]string, len(styled))
	for i, line := range styled {
		parts[i] = line.String()
	}
	return strings.Join(parts, textlayout.LineBreak)
}

// Arrange reorders lines so CJK lines come first or last. Relative order
// within each class is kept.
func Arrange(lines []string, order string) []string {
	if order != config.LineOrderCJKFirst && order != config.LineOrderCJKLast {
		return lines
	}
	cjk := make([]string, 0, len(lines))
	other := make([]string, 0, len(lines))
	for _, line := range lines {
		if textlayout.Classify(line) == textlayout.CJK {
			cjk = append(cjk, line)
		} else {
			other = append(other, line)
		}
	}
	if order == config.LineOrderCJKFirst {
		return append(cjk, other...)
	}
	return append(other, cjk...)
}

// Literal braces in dialogue text would open an override block.
func sanitizeText(text string) string {
	return strings.NewReplacer("{", "(", "}", ")").Replace(text)
}

func sanitizeFontName(name string) string {
	return strings.NewReplacer(`\`, "", "{", "", "}", "").Replace(strings.TrimSpace(name))
}
