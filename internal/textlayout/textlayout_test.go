package textlayout

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want ScriptClass
	}{
		{"", Other},
		{"Hello world", Other},
		{"你好", CJK},
		{"Hello 世界", CJK},
		{"Café", Other},
		{"「引用」", CJK},
		{"ＡＢＣ", CJK},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Fatalf("Classify(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if Classify(tc.in) != Classify(tc.in) {
			t.Fatalf("Classify(%q) not idempotent", tc.in)
		}
	}
}

func TestWeight(t *testing.T) {
	if Weight('a') != 1 || Weight(' ') != 1 {
		t.Fatal("ascii should weigh 1")
	}
	if Weight('你') != 2 || Weight('é') != 2 || Weight('Ａ') != 2 {
		t.Fatal("non-ascii should weigh 2")
	}
	if VisualWeight("ab你") != 4 {
		t.Fatalf("unexpected visual weight %d", VisualWeight("ab你"))
	}
}

func TestWrapLeavesNonCJKUnchanged(t *testing.T) {
	inputs := []string{
		"",
		"A long English sentence that would exceed any reasonable budget on a narrow portrait frame",
		"Ça va très bien, merci beaucoup pour votre aide aujourd'hui",
	}
	for _, in := range inputs {
		for _, portrait := range []bool{true, false} {
			if got := Wrap(in, 0.085, portrait); got != in {
				t.Fatalf("Wrap(%q) = %q, want unchanged", in, got)
			}
		}
	}
}

func TestWrapRejectsBadFactor(t *testing.T) {
	in := "你好世界"
	if Wrap(in, 0, false) != in || Wrap(in, -1, false) != in {
		t.Fatal("expected unchanged text for non-positive factor")
	}
}

func TestWrapRespectsBudget(t *testing.T) {
	text := strings.Repeat("这是一个很长的中文句子", 4)
	factor := 0.085
	for _, portrait := range []bool{true, false} {
		wrapped := Wrap(text, factor, portrait)
		budget := MaxUnits(factor, portrait)
		lines := strings.Split(wrapped, LineBreak)
		if len(lines) < 2 {
			t.Fatalf("expected wrapping (portrait=%v): %q", portrait, wrapped)
		}
		for _, line := range lines {
			if line == "" {
				t.Fatalf("empty line in %q", wrapped)
			}
			if float64(VisualWeight(line)) > budget && len([]rune(line)) > 1 {
				t.Fatalf("line %q weight %d exceeds budget %.2f", line, VisualWeight(line), budget)
			}
		}
		if strings.Join(lines, "") != text {
			t.Fatalf("wrapping lost characters: %q", wrapped)
		}
	}
}

func TestWrapPortraitBudget(t *testing.T) {
	// 0.52/0.085 = 6.11 units: three CJK runes per line.
	got := Wrap("一二三四五六七", 0.085, true)
	want := `一二三\N四五六\N七`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWrapOversizedRuneOwnLine(t *testing.T) {
	// Budget 0.52/0.4 = 1.3 units, below a single CJK rune.
	got := Wrap("你好", 0.4, true)
	if got != `你\N好` {
		t.Fatalf("got %q", got)
	}
}

func TestWrapShortLandscapeLineUnchanged(t *testing.T) {
	if got := Wrap("你好", 0.085, false); got != "你好" {
		t.Fatalf("got %q", got)
	}
}
