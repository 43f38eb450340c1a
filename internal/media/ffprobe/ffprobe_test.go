package ffprobe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"bisub/internal/logging"
	"bisub/internal/services"
)

func TestResultGeometry(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", Width: 1080, Height: 1920}},
		Format:  Format{Duration: "123.45"},
	}
	geometry, err := result.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if geometry.Width != 1080 || geometry.Height != 1920 || geometry.DurationSeconds != 123.45 {
		t.Fatalf("unexpected geometry: %+v", geometry)
	}
	if !geometry.Portrait() {
		t.Fatal("expected portrait geometry")
	}
}

func TestResultGeometryFallsBackToStreamDuration(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", Width: 640, Height: 360, Duration: "9.5"}},
		Format:  Format{Duration: "N/A"},
	}
	geometry, err := result.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if geometry.DurationSeconds != 9.5 {
		t.Fatalf("expected stream duration, got %v", geometry.DurationSeconds)
	}
}

func TestResultGeometryRejectsMissingVideo(t *testing.T) {
	cases := []Result{
		{Streams: []Stream{{CodecType: "audio"}}},
		{Streams: []Stream{{CodecType: "video", Width: 0, Height: 1080}}},
	}
	for _, result := range cases {
		if _, err := result.Geometry(); err == nil {
			t.Fatalf("expected error for %+v", result)
		}
	}
}

func TestInvalidDurationParsesAsNaN(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected NaN, got %v", result.DurationSeconds())
	}
	result.Streams = []Stream{{CodecType: "video", Width: 10, Height: 10}}
	geometry, err := result.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if geometry.DurationSeconds != 0 {
		t.Fatalf("expected unknown duration, got %v", geometry.DurationSeconds)
	}
}

func TestProbeGeometryFallsBackOnFailure(t *testing.T) {
	original := inspect
	t.Cleanup(func() { inspect = original })
	inspect = func(context.Context, string, string) (Result, error) {
		return Result{}, errors.New("not a video")
	}

	if _, err := Probe(context.Background(), "ffprobe", "/tmp/x.txt"); !errors.Is(err, services.ErrProbe) {
		t.Fatalf("expected ErrProbe, got %v", err)
	}
	got := ProbeGeometry(context.Background(), "ffprobe", "/tmp/x.txt", logging.NewNop())
	if got != DefaultGeometry {
		t.Fatalf("expected default geometry, got %+v", got)
	}
	if got.Width != 1920 || got.Height != 1080 || got.DurationSeconds != 0 {
		t.Fatalf("unexpected default: %+v", got)
	}
}

func TestProbeGeometryRunsBinary(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	body := "#!/bin/sh\ncat <<'EOF'\n{\"streams\":[{\"index\":0,\"codec_type\":\"video\",\"width\":1280,\"height\":720}],\"format\":{\"duration\":\"42.000000\"}}\nEOF\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	got := ProbeGeometry(context.Background(), script, filepath.Join(dir, "clip.mp4"), logging.NewNop())
	want := Geometry{Width: 1280, Height: 720, DurationSeconds: 42}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestProbeGeometryMissingBinary(t *testing.T) {
	got := ProbeGeometry(context.Background(), filepath.Join(t.TempDir(), "missing-ffprobe"), "/tmp/clip.mp4", nil)
	if got != DefaultGeometry {
		t.Fatalf("expected fallback, got %+v", got)
	}
}
