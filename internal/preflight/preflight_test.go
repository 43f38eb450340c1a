package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bisub/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDir(t *testing.T) {
	videoDir := t.TempDir()
	video := filepath.Join(videoDir, "a.mp4")

	results := CheckOutputDir(video, filepath.Join(videoDir, "a_with_subs.mp4"))
	if len(results) != 1 || !results[0].Passed {
		t.Fatalf("expected a single passing check, got %+v", results)
	}

	results = CheckOutputDir(video, filepath.Join(t.TempDir(), "missing", "out.mp4"))
	if len(results) != 2 {
		t.Fatalf("expected video and output checks, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 1 || failed[0].Name != "Output directory" {
		t.Fatalf("expected output directory failure, got %+v", failed)
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if failed := Failed(RunAll(&cfg)); len(failed) != 3 {
		t.Fatalf("expected all checks to fail before directories exist, got %+v", failed)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(&cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestCheckSystemDeps(t *testing.T) {
	binDir := t.TempDir()
	ffmpeg := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(ffmpeg, []byte("#!/bin/sh\necho ffmpeg version test\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Tools.FFmpeg = ffmpeg
	cfg.Tools.FFprobe = ""
	t.Setenv("PATH", "")

	statuses := CheckSystemDeps(context.Background(), &cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available || statuses[0].Version != "ffmpeg version test" {
		t.Fatalf("unexpected ffmpeg status %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatalf("expected ffprobe to be missing, got %+v", statuses[1])
	}
}
