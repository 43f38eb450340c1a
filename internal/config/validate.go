package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStyle(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStyle() error {
	if err := validateFactor("style.cjk_font_size_factor", c.Style.CJKFontSizeFactor); err != nil {
		return err
	}
	if err := validateFactor("style.other_font_size_factor", c.Style.OtherFontSizeFactor); err != nil {
		return err
	}
	if _, err := ParseColor(c.Style.CJKColor); err != nil {
		return fmt.Errorf("style.cjk_color: %w", err)
	}
	if _, err := ParseColor(c.Style.OtherColor); err != nil {
		return fmt.Errorf("style.other_color: %w", err)
	}
	if c.Style.CJKMinFontSize < 0 || c.Style.OtherMinFontSize < 0 {
		return errors.New("style min font sizes must be non-negative")
	}
	if c.Style.MarginV < 0 {
		return errors.New("style.margin_v must be non-negative (0 selects automatic)")
	}
	if c.Style.Outline < 0 || c.Style.Shadow < 0 {
		return errors.New("style.outline and style.shadow must be non-negative")
	}
	switch c.Style.LineOrder {
	case LineOrderSource, LineOrderCJKFirst, LineOrderCJKLast:
	default:
		return fmt.Errorf("style.line_order: unsupported value %q (want %s, %s, or %s)", c.Style.LineOrder, LineOrderSource, LineOrderCJKFirst, LineOrderCJKLast)
	}
	return nil
}

func validateFactor(key string, value float64) error {
	if math.IsNaN(value) || value <= 0 || value >= 1 {
		return fmt.Errorf("%s must be between 0 and 1 (exclusive), got %v", key, value)
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.CRF < 0 || c.Render.CRF > 63 {
		return fmt.Errorf("render.crf must be between 0 and 63, got %d", c.Render.CRF)
	}
	if c.Render.BarHeightRatio <= 0 || c.Render.BarHeightRatio > 1 {
		return fmt.Errorf("render.bar_height_ratio must be in (0, 1], got %v", c.Render.BarHeightRatio)
	}
	if c.Render.BarOpacity < 0 || c.Render.BarOpacity > 1 {
		return fmt.Errorf("render.bar_opacity must be in [0, 1], got %v", c.Render.BarOpacity)
	}
	if strings.ContainsAny(c.Render.OutputSuffix, `/\`) {
		return errors.New("render.output_suffix must not contain path separators")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// ParseColor parses a "#RRGGBB" colour into a packed 0xRRGGBB value.
func ParseColor(value string) (uint32, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 {
		return 0, fmt.Errorf("colour %q must look like #RRGGBB", value)
	}
	parsed, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("colour %q must look like #RRGGBB", value)
	}
	return uint32(parsed), nil
}
