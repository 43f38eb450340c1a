package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeStyle()
	c.normalizeRender()
	c.normalizePreview()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		if value, ok := os.LookupEnv("BISUB_FFMPEG"); ok {
			c.Tools.FFmpeg = strings.TrimSpace(value)
		}
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	if strings.HasPrefix(c.Tools.FFmpeg, "~") {
		if expanded, err := expandPath(c.Tools.FFmpeg); err == nil {
			c.Tools.FFmpeg = expanded
		}
	}

	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		if value, ok := os.LookupEnv("BISUB_FFPROBE"); ok {
			c.Tools.FFprobe = strings.TrimSpace(value)
		}
	}
	if strings.HasPrefix(c.Tools.FFprobe, "~") {
		if expanded, err := expandPath(c.Tools.FFprobe); err == nil {
			c.Tools.FFprobe = expanded
		}
	}
}

func (c *Config) normalizeStyle() {
	c.Style.CJKFont = strings.TrimSpace(c.Style.CJKFont)
	if c.Style.CJKFont == "" {
		c.Style.CJKFont = defaultCJKFont
	}
	c.Style.OtherFont = strings.TrimSpace(c.Style.OtherFont)
	if c.Style.OtherFont == "" {
		c.Style.OtherFont = defaultOtherFont
	}
	c.Style.CJKColor = strings.ToUpper(strings.TrimSpace(c.Style.CJKColor))
	if c.Style.CJKColor == "" {
		c.Style.CJKColor = defaultCJKColor
	}
	c.Style.OtherColor = strings.ToUpper(strings.TrimSpace(c.Style.OtherColor))
	if c.Style.OtherColor == "" {
		c.Style.OtherColor = defaultOtherColor
	}
	c.Style.LineOrder = strings.ToLower(strings.TrimSpace(c.Style.LineOrder))
	if c.Style.LineOrder == "" {
		c.Style.LineOrder = defaultLineOrder
	}
}

func (c *Config) normalizeRender() {
	c.Render.VideoCodec = strings.TrimSpace(c.Render.VideoCodec)
	if c.Render.VideoCodec == "" {
		c.Render.VideoCodec = defaultVideoCodec
	}
	c.Render.Preset = strings.TrimSpace(c.Render.Preset)
	if c.Render.Preset == "" {
		c.Render.Preset = defaultPreset
	}
	c.Render.AudioCodec = strings.TrimSpace(c.Render.AudioCodec)
	if c.Render.AudioCodec == "" {
		c.Render.AudioCodec = defaultAudioCodec
	}
	c.Render.OutputSuffix = strings.TrimSpace(c.Render.OutputSuffix)
	if c.Render.OutputSuffix == "" {
		c.Render.OutputSuffix = defaultOutputSuffix
	}
}

func (c *Config) normalizePreview() {
	if c.Preview.TimeoutSeconds <= 0 {
		c.Preview.TimeoutSeconds = defaultPreviewTimeoutSeconds
	}
	if c.Preview.CueHoldMillis <= 0 {
		c.Preview.CueHoldMillis = defaultPreviewCueHoldMillis
	}
	if c.Preview.SeekOffsetMs < 0 {
		c.Preview.SeekOffsetMs = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
