package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Tools names the external ffmpeg/ffprobe pair.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Style contains per-script subtitle appearance plus track-level layout.
type Style struct {
	CJKFont             string  `toml:"cjk_font"`
	CJKFontSizeFactor   float64 `toml:"cjk_font_size_factor"`
	CJKColor            string  `toml:"cjk_color"`
	CJKMinFontSize      float64 `toml:"cjk_min_font_size"`
	OtherFont           string  `toml:"other_font"`
	OtherFontSizeFactor float64 `toml:"other_font_size_factor"`
	OtherColor          string  `toml:"other_color"`
	OtherMinFontSize    float64 `toml:"other_min_font_size"`
	// MarginV is the bottom margin in pixels. Zero selects 10% of frame height.
	MarginV   int     `toml:"margin_v"`
	Outline   float64 `toml:"outline"`
	Shadow    float64 `toml:"shadow"`
	LineOrder string  `toml:"line_order"`
}

// Render contains the compositing encoder settings.
type Render struct {
	VideoCodec     string  `toml:"video_codec"`
	CRF            int     `toml:"crf"`
	Preset         string  `toml:"preset"`
	AudioCodec     string  `toml:"audio_codec"`
	BackgroundBar  bool    `toml:"background_bar"`
	BarHeightRatio float64 `toml:"bar_height_ratio"`
	BarOpacity     float64 `toml:"bar_opacity"`
	OutputSuffix   string  `toml:"output_suffix"`
}

// Preview contains single-frame preview settings.
type Preview struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
	CueHoldMillis  int `toml:"cue_hold_ms"`
	SeekOffsetMs   int `toml:"seek_offset_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for bisub.
//
// Configuration sections by subsystem:
//   - Paths: state (history database, locks) and log directories
//   - Tools: ffmpeg and ffprobe executables
//   - Style: fonts, sizes and colours per script class, margins
//   - Render: encoder arguments and the background bar
//   - Preview: frame extraction timeout and cue timing
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Style   Style   `toml:"style"`
	Render  Render  `toml:"render"`
	Preview Preview `toml:"preview"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bisub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state, lock, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.LockDir(), c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable.
func (c *Config) FFmpegBinary() string {
	return c.Tools.FFmpeg
}

// FFprobeBinary returns the ffprobe executable. When none is configured the
// sidecar next to a path-qualified ffmpeg is preferred, then the PATH name.
func (c *Config) FFprobeBinary() string {
	if c.Tools.FFprobe != "" {
		return c.Tools.FFprobe
	}
	return SidecarFFprobe(c.Tools.FFmpeg)
}

// HistoryPath returns the render history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockDir returns the directory that holds per-output advisory locks.
func (c *Config) LockDir() string {
	if c.Paths.StateDir == "" {
		return ""
	}
	return filepath.Join(c.Paths.StateDir, "locks")
}

// SidecarFFprobe derives the ffprobe executable that ships beside ffmpeg.
// Bare command names resolve to "ffprobe" on PATH.
func SidecarFFprobe(ffmpeg string) string {
	ffmpeg = strings.TrimSpace(ffmpeg)
	if ffmpeg == "" || !strings.ContainsRune(ffmpeg, filepath.Separator) {
		return defaultFFprobe
	}
	dir := filepath.Dir(ffmpeg)
	base := filepath.Base(ffmpeg)
	name := defaultFFprobe
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".exe") {
		name += ext
	}
	candidate := filepath.Join(dir, name)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return defaultFFprobe
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	var sb strings.Builder
	encoder := toml.NewEncoder(&sb)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return sb.String(), nil
}
