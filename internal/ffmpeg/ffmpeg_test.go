package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestTrackerProgress(t *testing.T) {
	tr := NewTracker(0)
	lines := []string{
		"Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mp4':",
		"  Duration: 00:00:10.00, start: 0.000000, bitrate: 1000 kb/s",
		"frame=  10 fps=0.0 q=0.0 size=       0kB time=00:00:01.00 bitrate=N/A speed=2x",
		"frame=  20 fps=0.0 q=0.0 size=       0kB time=00:00:00.50 bitrate=N/A speed=2x",
		"frame=  30 fps=0.0 q=0.0 size=       0kB time=00:00:05.55 bitrate=N/A speed=2x",
		"frame= 300 fps=0.0 q=0.0 size=       0kB time=00:00:10.00 bitrate=N/A speed=2x",
		"frame= 310 fps=0.0 q=0.0 size=       0kB time=00:00:12.00 bitrate=N/A speed=2x",
	}
	var reported []int
	for _, line := range lines {
		if p, ok := tr.Feed(line); ok {
			reported = append(reported, p)
		}
	}
	want := []int{10, 55, 99}
	if !reflect.DeepEqual(reported, want) {
		t.Fatalf("reported %v, want %v", reported, want)
	}
	if tr.Total() != 10 || tr.Last() != 99 {
		t.Fatalf("unexpected tracker state total=%v last=%v", tr.Total(), tr.Last())
	}
}

func TestTrackerUsesFirstDurationOnly(t *testing.T) {
	tr := NewTracker(0)
	tr.Feed("  Duration: 00:01:40.00, start: 0")
	tr.Feed("  Duration: 00:00:10.00, start: 0")
	if p, _ := tr.Feed("time=00:00:50.00"); p != 50 {
		t.Fatalf("expected 50, got %d", p)
	}
}

func TestTrackerFallbackTotal(t *testing.T) {
	tr := NewTracker(20)
	if p, ok := tr.Feed("size=1kB time=00:00:05.00 bitrate=1"); !ok || p != 25 {
		t.Fatalf("expected 25 from probed total, got %d %v", p, ok)
	}
	tr.Feed("  Duration: N/A, bitrate: N/A")
	if tr.Total() != 20 {
		t.Fatalf("unparsable duration should keep fallback, got %v", tr.Total())
	}
}

func TestTrackerUnknownTotalReportsNothing(t *testing.T) {
	tr := NewTracker(0)
	if _, ok := tr.Feed("time=00:00:05.00"); ok {
		t.Fatal("expected no progress without a total")
	}
	if _, ok := tr.Feed("time=-00:00:00.02"); ok {
		t.Fatal("expected no progress for negative time")
	}
}

func TestFilterChain(t *testing.T) {
	chain := FilterChain{Bar: &Bar{HeightRatio: 0.2, Opacity: 0.7}, TrackName: "bisub-1-abc.ass"}
	want := "drawbox=x=0:y=ih-ih*0.2:w=iw:h=ih*0.2:color=black@0.7:t=fill,ass=bisub-1-abc.ass"
	if got := chain.String(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	plain := FilterChain{TrackName: "t.ass"}
	if got := plain.String(); got != "ass=t.ass" {
		t.Fatalf("got %q", got)
	}
}

func TestEscapeFilterValue(t *testing.T) {
	cases := map[string]string{
		"plain.ass":       "plain.ass",
		`C:\subs\a.ass`:   `C\\:\\\\subs\\\\a.ass`,
		"it's [1],2;.ass": `it\\\'s \[1\]\,2\;.ass`,
	}
	for in, want := range cases {
		if got := EscapeFilterValue(in); got != want {
			t.Fatalf("EscapeFilterValue(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBurnSpecBuild(t *testing.T) {
	spec := BurnSpec{
		Input:   "/videos/in.mp4",
		Output:  "/videos/in_with_subs.mp4",
		Filters: FilterChain{TrackName: "t.ass"},
	}
	want := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", "/videos/in.mp4",
		"-vf", "ass=t.ass",
		"-c:v", "libx264", "-crf", "18", "-preset", "veryfast",
		"-c:a", "copy",
		"/videos/in_with_subs.mp4",
	}
	if got := spec.Build(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got  %v\nwant %v", got, want)
	}
}

func TestFrameSpecBuild(t *testing.T) {
	spec := FrameSpec{Input: "/v/in.mp4", Output: "/v/frame.png", Seek: 12500 * time.Millisecond, Filters: FilterChain{TrackName: "p.ass"}}
	got := strings.Join(spec.Build(), " ")
	want := "-hide_banner -nostdin -y -ss 12.500 -i /v/in.mp4 -vf ass=p.ass -frames:v 1 /v/frame.png"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestScanLinesSplitsCarriageReturns(t *testing.T) {
	input := "Duration: 00:00:10.00\nframe=1 time=00:00:01.00\rframe=2 time=00:00:02.00\r\nend"
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(ScanLines)
	var got []string
	for scanner.Scan() {
		got = append(got, scanner.Text())
	}
	want := []string{"Duration: 00:00:10.00", "frame=1 time=00:00:01.00", "frame=2 time=00:00:02.00", "end"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestExecutorStreamsMergedOutput(t *testing.T) {
	script := writeScript(t, "pwd\nprintf 'a\\rb\\n' >&2\necho c\n")
	dir := t.TempDir()
	var lines []string
	err := NewExecutor().Run(context.Background(), Command{Binary: script, Dir: dir}, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %q", lines)
	}
	resolved, _ := filepath.EvalSymlinks(dir)
	if lines[0] != dir && lines[0] != resolved {
		t.Fatalf("expected working dir %q, got %q", dir, lines[0])
	}
}

func TestExecutorExitCode(t *testing.T) {
	script := writeScript(t, "echo failing\nexit 3\n")
	err := NewExecutor().Run(context.Background(), Command{Binary: script}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := ExitCode(err); code != 3 {
		t.Fatalf("expected exit code 3, got %d (%v)", code, err)
	}
	if errors.Is(err, ErrStart) {
		t.Fatal("exit failure must not be a start failure")
	}
}

func TestExecutorStartFailure(t *testing.T) {
	err := NewExecutor().Run(context.Background(), Command{Binary: filepath.Join(t.TempDir(), "missing")}, nil)
	if !errors.Is(err, ErrStart) {
		t.Fatalf("expected ErrStart, got %v", err)
	}
	if ExitCode(err) != -1 {
		t.Fatalf("expected no exit code, got %d", ExitCode(err))
	}
}

func TestExecutorOversizedLineDoesNotHang(t *testing.T) {
	script := writeScript(t, "head -c 2000000 /dev/zero | tr '\\000' a\necho\nhead -c 2000000 /dev/zero\necho done\n")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	err := NewExecutor().Run(ctx, Command{Binary: script}, nil)
	if err == nil || !strings.Contains(err.Error(), "scan output") {
		t.Fatalf("expected scan error, got %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("run only finished after the deadline: %v", err)
	}
}

func TestExecutorCancelKillsProcessGroup(t *testing.T) {
	script := writeScript(t, "sleep 30\n")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := NewExecutor().Run(ctx, Command{Binary: script}, nil)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("cancellation took too long: %v", elapsed)
	}
}
