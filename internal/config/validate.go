package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePexels(); err != nil {
		return err
	}
	if err := c.validateVoice(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
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

func (c *Config) validatePexels() error {
	switch c.Pexels.Orientation {
	case "portrait", "landscape", "square":
	default:
		return fmt.Errorf("pexels.orientation must be portrait, landscape, or square (got %q)", c.Pexels.Orientation)
	}
	if c.Pexels.PerPage > 80 {
		return errors.New("pexels.per_page must not exceed 80")
	}
	return nil
}

func (c *Config) validateVoice() error {
	switch c.Voice.Mode {
	case "turbo", "quality":
	default:
		return fmt.Errorf("voice.mode must be turbo or quality (got %q)", c.Voice.Mode)
	}
	if c.Voice.Exaggeration < 0 || c.Voice.Exaggeration > 1.5 {
		return errors.New("voice.exaggeration must be between 0 and 1.5")
	}
	if c.Voice.CFGWeight < 0.1 || c.Voice.CFGWeight > 1 {
		return errors.New("voice.cfg_weight must be between 0.1 and 1")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	switch c.Captions.Style {
	case "dense", "classic":
		return nil
	default:
		return fmt.Errorf("captions.style must be dense or classic (got %q)", c.Captions.Style)
	}
}

func (c *Config) validateRender() error {
	switch c.Render.Position {
	case "bottom", "center", "top":
	default:
		return fmt.Errorf("render.position must be bottom, center, or top (got %q)", c.Render.Position)
	}
	if strings.ContainsAny(c.Render.BackgroundColor, " :'") {
		return fmt.Errorf("render.background_color %q is not a hex color", c.Render.BackgroundColor)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}
