package track

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"bisub/internal/config"
	"bisub/internal/cue"
	"bisub/internal/fileutil"
	"bisub/internal/media/ffprobe"
	"bisub/internal/services"
	"bisub/internal/style"
)

// ErrNoCues is returned when a track would contain no dialogue.
var ErrNoCues = errors.New("no cues to render")

const (
	baseFontFamily     = "Arial"
	baseFontSizeRatio  = 0.04
	defaultMarginRatio = 0.10
	bottomCenter       = 2
	defaultOutline     = 2
	defaultShadow      = 1
	styleName          = "Default"
	tempPrefix         = "bisub-"
	Extension          = ".ass"
)

// Options controls track-level layout. Zero values select defaults.
type Options struct {
	Profiles style.Profiles
	// MarginV is the bottom margin in pixels; 0 selects 10% of frame height.
	MarginV int
	Outline float64
	Shadow  float64
}

// OptionsFromConfig derives track options from the style section.
func OptionsFromConfig(s config.Style) (Options, error) {
	profiles, err := style.FromConfig(s)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Profiles: profiles,
		MarginV:  s.MarginV,
		Outline:  s.Outline,
		Shadow:   s.Shadow,
	}, nil
}

// BaseStyle is the single named style every dialogue line layers over.
type BaseStyle struct {
	Name         string
	FontFamily   string
	FontSize     float64
	PrimaryColor uint32
	OutlineColor uint32
	Outline      float64
	Shadow       float64
	Alignment    int
	MarginV      int
}

// Event is one dialogue line.
type Event struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Track is a styled subtitle track ready to be written.
type Track struct {
	Geometry ffprobe.Geometry
	Style    BaseStyle
	Events   []Event
}

// Build styles every cue for the given geometry. Timing is taken from the
// cues with negative values clamped to zero and End raised to Start.
func Build(cues []cue.Cue, geometry ffprobe.Geometry, opts Options) (*Track, error) {
	if len(cues) == 0 {
		return nil, services.Wrap(services.ErrTrackBuild, "track", "build", "", ErrNoCues)
	}
	if geometry.Width <= 0 || geometry.Height <= 0 {
		geometry = ffprobe.DefaultGeometry
	}
	profiles := opts.Profiles
	if profiles.CJK.FontFamily == "" && profiles.Other.FontFamily == "" {
		profiles = style.DefaultProfiles()
	}

	t := &Track{
		Geometry: geometry,
		Style:    baseStyle(geometry, opts),
		Events:   make([]Event, 0, len(cues)),
	}
	for _, c := range cues {
		start := c.Start
		if start < 0 {
			start = 0
		}
		end := c.End
		if end < start {
			end = start
		}
		t.Events = append(t.Events, Event{
			Start: start,
			End:   end,
			Text:  style.StyleCue(c.Text, geometry, profiles),
		})
	}
	return t, nil
}

func baseStyle(geometry ffprobe.Geometry, opts Options) BaseStyle {
	margin := opts.MarginV
	if margin <= 0 {
		margin = int(math.Round(float64(geometry.Height) * defaultMarginRatio))
	}
	outline := opts.Outline
	if outline <= 0 {
		outline = defaultOutline
	}
	shadow := opts.Shadow
	if shadow <= 0 {
		shadow = defaultShadow
	}
	return BaseStyle{
		Name:         styleName,
		FontFamily:   baseFontFamily,
		FontSize:     math.Round(float64(geometry.Height)*baseFontSizeRatio*100) / 100,
		PrimaryColor: 0xFFFFFF,
		OutlineColor: 0x000000,
		Outline:      outline,
		Shadow:       shadow,
		Alignment:    bottomCenter,
		MarginV:      margin,
	}
}

// WriteTo serializes the track as ASS v4+.
func (t *Track) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	write := func(format string, args ...any) {
		n, _ := fmt.Fprintf(bw, format, args...)
		written += int64(n)
	}

	write("[Script Info]\n")
	write("; Generated by bisub\n")
	write("ScriptType: v4.00+\n")
	write("PlayResX: %d\n", t.Geometry.Width)
	write("PlayResY: %d\n", t.Geometry.Height)
	write("WrapStyle: 1\n")
	write("ScaledBorderAndShadow: yes\n\n")

	s := t.Style
	write("[V4+ Styles]\n")
	write("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	write("Style: %s,%s,%s,%s,&H000000FF,%s,&H80000000,0,0,0,0,100,100,0,0,1,%s,%s,%d,10,10,%d,1\n\n",
		s.Name, s.FontFamily, formatNumber(s.FontSize),
		styleColor(s.PrimaryColor), styleColor(s.OutlineColor),
		formatNumber(s.Outline), formatNumber(s.Shadow), s.Alignment, s.MarginV)

	write("[Events]\n")
	write("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, e := range t.Events {
		write("Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n", FormatTimestamp(e.Start), FormatTimestamp(e.End), s.Name, e.Text)
	}

	if err := bw.Flush(); err != nil {
		return written, err
	}
	return written, nil
}

// WriteFile writes the track to path, replacing any existing file.
func (t *Track) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return services.Wrap(services.ErrTrackBuild, "track", "create", path, err)
	}
	if _, err := t.WriteTo(file); err != nil {
		file.Close()
		_ = os.Remove(path)
		return services.Wrap(services.ErrTrackBuild, "track", "write", path, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return services.Wrap(services.ErrTrackBuild, "track", "close", path, err)
	}
	return nil
}

// BuildFile builds a track and writes it to path.
func BuildFile(path string, cues []cue.Cue, geometry ffprobe.Geometry, opts Options) (*Track, error) {
	t, err := Build(cues, geometry, opts)
	if err != nil {
		return nil, err
	}
	if err := t.WriteFile(path); err != nil {
		return nil, err
	}
	return t, nil
}

// TempPath returns a process-scoped temporary track name inside dir.
func TempPath(dir string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return filepath.Join(dir, fmt.Sprintf("%s%d-%s%s", tempPrefix, os.Getpid(), id, Extension))
}

// IsTempName reports whether name looks like a TempPath file name.
func IsTempName(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, tempPrefix) && strings.HasSuffix(base, Extension)
}

// Remove deletes a temporary track, ignoring files that are already gone.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	return fileutil.RemoveIfExists(path)
}

// FormatTimestamp renders h:mm:ss.cc, truncating to centiseconds.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := int64(d / (10 * time.Millisecond))
	h := cs / 360000
	m := (cs / 6000) % 60
	s := (cs / 100) % 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs%100)
}

// ParseTimestamp parses h:mm:ss.cc.
func ParseTimestamp(value string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q", value)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q", value)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q", value)
	}
	total := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	total += time.Duration(math.Round(sec*100)) * 10 * time.Millisecond
	return total, nil
}

// ReadEvents parses the Dialogue lines of an ASS file.
func ReadEvents(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		rest, ok := strings.CutPrefix(line, "Dialogue:")
		if !ok {
			continue
		}
		fields := strings.SplitN(strings.TrimSpace(rest), ",", 10)
		if len(fields) != 10 {
			return nil, fmt.Errorf("malformed dialogue line %q", line)
		}
		start, err := ParseTimestamp(fields[1])
		if err != nil {
			return nil, err
		}
		end, err := ParseTimestamp(fields[2])
		if err != nil {
			return nil, err
		}
		events = append(events, Event{Start: start, End: end, Text: fields[9]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	return events, nil
}

func styleColor(rgb uint32) string {
	r := (rgb >> 16) & 0xFF
	g := (rgb >> 8) & 0xFF
	b := rgb & 0xFF
	return fmt.Sprintf("&H00%02X%02X%02X", b, g, r)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
