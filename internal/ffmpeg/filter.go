package ffmpeg

import (
	"strconv"
	"strings"
)

// Bar is a translucent box drawn across the bottom of the frame.
type Bar struct {
	// HeightRatio is the bar height as a fraction of frame height.
	HeightRatio float64
	// Opacity is 0 (transparent) to 1 (opaque).
	Opacity float64
}

// NewBar returns nil when the bar is disabled or has no height.
func NewBar(enabled bool, heightRatio, opacity float64) *Bar {
	if !enabled || heightRatio <= 0 {
		return nil
	}
	return &Bar{HeightRatio: heightRatio, Opacity: opacity}
}

func (b Bar) filter() string {
	ratio := formatFloat(b.HeightRatio)
	return "drawbox=x=0:y=ih-ih*" + ratio + ":w=iw:h=ih*" + ratio +
		":color=black@" + formatFloat(b.Opacity) + ":t=fill"
}

// FilterChain is the -vf graph that burns a styled track onto video.
type FilterChain struct {
	// Bar is drawn under the subtitles when non-nil.
	Bar *Bar
	// TrackName is the styled track path relative to the process working
	// directory, normally a bare file name.
	TrackName string
}

func (f FilterChain) String() string {
	filters := make([]string, 0, 2)
	if f.Bar != nil && f.Bar.HeightRatio > 0 {
		filters = append(filters, f.Bar.filter())
	}
	filters = append(filters, "ass="+EscapeFilterValue(f.TrackName))
	return strings.Join(filters, ",")
}

var (
	optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	graphEscaper  = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `[`, `\[`, `]`, `\]`, `,`, `\,`, `;`, `\;`)
)

// EscapeFilterValue escapes a filter option value for both the option
// parser and the filtergraph parser.
func EscapeFilterValue(value string) string {
	return graphEscaper.Replace(optionEscaper.Replace(value))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
