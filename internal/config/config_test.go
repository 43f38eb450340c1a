package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bisub/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("BISUB_FFMPEG", "")
	t.Setenv("BISUB_FFPROBE", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "bisub")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.LockDir() != filepath.Join(wantState, "locks") {
		t.Fatalf("unexpected lock dir: %q", cfg.LockDir())
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.FFmpegBinary() != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.FFprobeBinary())
	}
	if cfg.Style.CJKFontSizeFactor != 0.085 || cfg.Style.OtherFontSizeFactor != 0.060 {
		t.Fatalf("unexpected font size factors: %+v", cfg.Style)
	}
	if cfg.Style.CJKColor != "#FFC300" || cfg.Style.OtherColor != "#FFFFFF" {
		t.Fatalf("unexpected colours: %q %q", cfg.Style.CJKColor, cfg.Style.OtherColor)
	}
	if cfg.Style.MarginV != 0 {
		t.Fatalf("expected automatic margin, got %d", cfg.Style.MarginV)
	}
	if !cfg.Render.BackgroundBar || cfg.Render.CRF != 18 || cfg.Render.Preset != "veryfast" {
		t.Fatalf("unexpected render defaults: %+v", cfg.Render)
	}
	if cfg.Preview.TimeoutSeconds != 20 || cfg.Preview.CueHoldMillis != 5000 {
		t.Fatalf("unexpected preview defaults: %+v", cfg.Preview)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	ffmpegDir := t.TempDir()
	ffmpegPath := filepath.Join(ffmpegDir, "ffmpeg")
	ffprobePath := filepath.Join(ffmpegDir, "ffprobe")
	for _, path := range []string{ffmpegPath, ffprobePath} {
		if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatalf("write stub: %v", err)
		}
	}

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"state_dir": "~/state",
		},
		"tools": map[string]any{
			"ffmpeg": ffmpegPath,
		},
		"style": map[string]any{
			"cjk_font":   "Noto Sans CJK SC",
			"cjk_color":  "#ff0000",
			"margin_v":   40,
			"line_order": "CJK_FIRST",
		},
		"render": map[string]any{
			"background_bar": false,
			"crf":            23,
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(cfgPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != cfgPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, "state") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if cfg.FFprobeBinary() != ffprobePath {
		t.Fatalf("expected sidecar ffprobe %q, got %q", ffprobePath, cfg.FFprobeBinary())
	}
	if cfg.Style.CJKFont != "Noto Sans CJK SC" || cfg.Style.CJKColor != "#FF0000" {
		t.Fatalf("unexpected cjk style: %+v", cfg.Style)
	}
	if cfg.Style.OtherFont != "Arial" {
		t.Fatalf("expected default other font, got %q", cfg.Style.OtherFont)
	}
	if cfg.Style.MarginV != 40 || cfg.Style.LineOrder != config.LineOrderCJKFirst {
		t.Fatalf("unexpected layout: %+v", cfg.Style)
	}
	if cfg.Render.BackgroundBar || cfg.Render.CRF != 23 {
		t.Fatalf("unexpected render: %+v", cfg.Render)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[style]\nfont_colour = \"red\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(cfgPath); err == nil {
		t.Fatal("expected parse error for unknown key")
	}
}

func TestEnvironmentToolFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BISUB_FFMPEG", "/opt/ff/ffmpeg")
	t.Setenv("BISUB_FFPROBE", "/opt/ff/ffprobe")
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[tools]\nffmpeg = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/opt/ff/ffmpeg" || cfg.FFprobeBinary() != "/opt/ff/ffprobe" {
		t.Fatalf("unexpected tools: %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"factor zero", func(c *config.Config) { c.Style.CJKFontSizeFactor = 0 }, "cjk_font_size_factor"},
		{"factor too large", func(c *config.Config) { c.Style.OtherFontSizeFactor = 1.5 }, "other_font_size_factor"},
		{"bad colour", func(c *config.Config) { c.Style.CJKColor = "yellow" }, "cjk_color"},
		{"negative margin", func(c *config.Config) { c.Style.MarginV = -1 }, "margin_v"},
		{"line order", func(c *config.Config) { c.Style.LineOrder = "random" }, "line_order"},
		{"crf", func(c *config.Config) { c.Render.CRF = 99 }, "render.crf"},
		{"bar ratio", func(c *config.Config) { c.Render.BarHeightRatio = 0 }, "bar_height_ratio"},
		{"bar opacity", func(c *config.Config) { c.Render.BarOpacity = 2 }, "bar_opacity"},
		{"suffix", func(c *config.Config) { c.Render.OutputSuffix = "a/b" }, "output_suffix"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	got, err := config.ParseColor("#FFC300")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if got != 0xFFC300 {
		t.Fatalf("got %06X", got)
	}
	if _, err := config.ParseColor("#12345"); err == nil {
		t.Fatal("expected error for short colour")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(encoded, "cjk_font_size_factor") {
		t.Fatalf("encoded config missing style keys:\n%s", encoded)
	}
}

func TestSidecarFFprobe(t *testing.T) {
	if got := config.SidecarFFprobe("ffmpeg"); got != "ffprobe" {
		t.Fatalf("bare name should resolve to PATH lookup, got %q", got)
	}
	dir := t.TempDir()
	if got := config.SidecarFFprobe(filepath.Join(dir, "ffmpeg")); got != "ffprobe" {
		t.Fatalf("missing sidecar should fall back, got %q", got)
	}
}
