package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bisub/internal/config"
	"bisub/internal/services"
)

func TestConsoleFormatIncludesComponentAndSubject(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	ctx := services.WithStage(services.WithJobID(context.Background(), "ab12"), "render")
	log := WithContext(ctx, NewComponentLogger(logger, "render"))
	log.Info("render complete", String("output", "/tmp/out.mp4"), String(FieldEventType, "render_complete"))

	out := buf.String()
	for _, fragment := range []string{"INFO", "[render]", "Job ab12 (render)", "render complete", "event_type: render_complete", "output: /tmp/out.mp4"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, out)
		}
	}
	if strings.Index(out, "event_type") > strings.Index(out, "output:") {
		t.Fatalf("expected highlighted event_type first:\n%s", out)
	}
}

func TestConsoleLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("info should be filtered: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn should be written: %s", buf.String())
	}
}

func TestJSONFormatProducesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	NewComponentLogger(logger, "preview").Info("frame written", Int("exit_code", 0))

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode json log: %v (%s)", err, buf.String())
	}
	if payload["component"] != "preview" || payload["msg"] != "frame written" || payload["level"] != "info" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key: %v", payload)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFileTeeReceivesDebug(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "bisub.log")
	logger, closer, err := New(Options{Level: "info", Format: "console", Writer: &buf, FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("ffmpeg line", String("line", "frame=1"))
	logger.Info("done")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if strings.Contains(buf.String(), "ffmpeg line") {
		t.Fatalf("console should not show debug: %s", buf.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "ffmpeg line") || !strings.Contains(string(data), "\"done\"") {
		t.Fatalf("log file missing records: %s", data)
	}
}

func TestNewFromConfigUsesLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"
	var console bytes.Buffer
	logger, closer, err := NewFromConfig(&cfg, &console, "error")
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Warn("probe fell back")
	closer.Close()
	if console.Len() != 0 {
		t.Fatalf("level override should suppress warnings on the console: %s", console.String())
	}
	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "bisub.log"))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "probe fell back") {
		t.Fatalf("log file should keep debug-level records: %s", data)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, _, _ := New(Options{Level: "info", Format: "console", Writer: &buf})
	WarnWithContext(logger, "probe failed", "probe_fallback", Error(errors.New("no such file")))
	out := buf.String()
	for _, fragment := range []string{"event_type: probe_fallback", "error_hint:", "impact:", "no such file"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, out)
		}
	}
}

func TestTeeHandlerFiltersNil(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for nil handlers")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
}
