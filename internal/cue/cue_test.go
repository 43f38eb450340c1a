package cue

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bisub/internal/services"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,500
Hello
你好

2
00:00:12,000 --> 00:00:14,250
This is a longer line
这是一个更长的句子

`

func TestParseSRT(t *testing.T) {
	cues, err := Parse(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	first := cues[0]
	if first.Index != 1 || first.Start != time.Second || first.End != 3500*time.Millisecond {
		t.Fatalf("unexpected first cue: %+v", first)
	}
	if first.Text != "Hello\n你好" {
		t.Fatalf("unexpected text %q", first.Text)
	}
	if got := cues[1].Lines(); len(got) != 2 || got[1] != "这是一个更长的句子" {
		t.Fatalf("unexpected lines %v", got)
	}
	if cues[1].Duration() != 2250*time.Millisecond {
		t.Fatalf("unexpected duration %v", cues[1].Duration())
	}
}

func TestNormalizeClampsAndReindexes(t *testing.T) {
	in := []Cue{
		{Index: 7, Start: -time.Second, End: 2 * time.Second, Text: "a"},
		{Index: 9, Start: 5 * time.Second, End: 4 * time.Second, Text: "b"},
		{Index: 3, Start: 1500*time.Millisecond + 700*time.Microsecond, End: 3 * time.Second, Text: "c"},
	}
	out := Normalize(in)
	for i, c := range out {
		if c.Index != i+1 {
			t.Fatalf("expected index %d, got %d", i+1, c.Index)
		}
		if c.Start < 0 || c.End < c.Start {
			t.Fatalf("invalid timing %+v", c)
		}
	}
	if out[1].End != out[1].Start {
		t.Fatalf("expected end clamped to start, got %+v", out[1])
	}
	if out[2].Start != 1500*time.Millisecond {
		t.Fatalf("expected millisecond truncation, got %v", out[2].Start)
	}
	if in[0].Index != 7 {
		t.Fatal("Normalize must not mutate its input")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.srt"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cues.srt")
	if err := os.WriteFile(path, []byte(sampleSRT), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cues, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
}
