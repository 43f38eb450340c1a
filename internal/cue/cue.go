package cue

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/asticode/go-astisub"

	"bisub/internal/services"
)

// Cue is one timed subtitle entry. Text holds one or more display lines
// separated by "\n".
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Duration returns End-Start.
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

// Lines returns the display lines of the cue.
func (c Cue) Lines() []string {
	return strings.Split(c.Text, "\n")
}

// Load reads an SRT file into normalized cues.
func Load(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cues", "read", path, err)
	}
	cues, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cues", "parse", path, err)
	}
	return cues, nil
}

// Parse decodes SRT content. Items without text are dropped and the rest are
// normalized.
func Parse(r io.Reader) ([]Cue, error) {
	subs, err := astisub.ReadFromSRT(r)
	if err != nil {
		return nil, fmt.Errorf("decode srt: %w", err)
	}
	cues := make([]Cue, 0, len(subs.Items))
	for _, item := range subs.Items {
		if item == nil {
			continue
		}
		lines := make([]string, 0, len(item.Lines))
		for _, line := range item.Lines {
			if text := strings.TrimSpace(line.String()); text != "" {
				lines = append(lines, text)
			}
		}
		if len(lines) == 0 {
			continue
		}
		cues = append(cues, Cue{
			Index: item.Index,
			Start: item.StartAt,
			End:   item.EndAt,
			Text:  strings.Join(lines, "\n"),
		})
	}
	return Normalize(cues), nil
}

// Normalize returns a copy with contiguous 1-based indices, timestamps
// clamped to zero, millisecond resolution, and End >= Start.
func Normalize(cues []Cue) []Cue {
	out := make([]Cue, len(cues))
	for i, c := range cues {
		c.Index = i + 1
		c.Start = clampMillis(c.Start)
		c.End = clampMillis(c.End)
		if c.End < c.Start {
			c.End = c.Start
		}
		out[i] = c
	}
	return out
}

func clampMillis(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Millisecond)
}
