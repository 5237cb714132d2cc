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
	c.normalizePexels()
	c.normalizeVoice()
	c.normalizeCaptions()
	c.normalizeRender()
	c.normalizeLogging()
	c.normalizeServer()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePexels() {
	c.Pexels.APIKey = strings.TrimSpace(c.Pexels.APIKey)
	if c.Pexels.APIKey == "" {
		if value, ok := os.LookupEnv("PEXELS_API_KEY"); ok {
			c.Pexels.APIKey = strings.TrimSpace(value)
		}
	}
	c.Pexels.BaseURL = strings.TrimRight(strings.TrimSpace(c.Pexels.BaseURL), "/")
	if c.Pexels.BaseURL == "" {
		c.Pexels.BaseURL = defaultPexelsBaseURL
	}
	c.Pexels.Orientation = strings.ToLower(strings.TrimSpace(c.Pexels.Orientation))
	if c.Pexels.Orientation == "" {
		c.Pexels.Orientation = defaultPexelsOrientation
	}
	if c.Pexels.PerPage <= 0 {
		c.Pexels.PerPage = defaultPexelsPerPage
	}
	if c.Pexels.MinVideoSeconds <= 0 {
		c.Pexels.MinVideoSeconds = defaultPexelsMinVideoSeconds
	}
	if c.Pexels.MinVideoHeight <= 0 {
		c.Pexels.MinVideoHeight = defaultPexelsMinVideoHeight
	}
	if c.Pexels.SearchTimeoutSeconds <= 0 {
		c.Pexels.SearchTimeoutSeconds = defaultPexelsSearchTimeout
	}
	if c.Pexels.DownloadTimeoutSeconds <= 0 {
		c.Pexels.DownloadTimeoutSeconds = defaultPexelsDownloadTimeout
	}
}

func (c *Config) normalizeVoice() {
	c.Voice.Mode = strings.ToLower(strings.TrimSpace(c.Voice.Mode))
	if c.Voice.Mode == "" {
		c.Voice.Mode = defaultVoiceMode
	}
	c.Voice.Language = strings.ToLower(strings.TrimSpace(c.Voice.Language))
	if c.Voice.Language == "" {
		c.Voice.Language = defaultVoiceLanguage
	}
	c.Voice.Python = strings.TrimSpace(c.Voice.Python)
	if c.Voice.Python == "" {
		c.Voice.Python = defaultVoicePython
	}
	c.Voice.Package = strings.TrimSpace(c.Voice.Package)
	if c.Voice.Package == "" {
		c.Voice.Package = defaultVoicePackage
	}
}

func (c *Config) normalizeCaptions() {
	c.Captions.Style = strings.ToLower(strings.TrimSpace(c.Captions.Style))
	switch c.Captions.Style {
	case "":
		c.Captions.Style = defaultCaptionStyle
	case "tiktok":
		c.Captions.Style = "dense"
	}
	c.Captions.WhisperXModel = strings.TrimSpace(c.Captions.WhisperXModel)
	if c.Captions.WhisperXModel == "" {
		c.Captions.WhisperXModel = defaultWhisperXModel
	}
	c.Captions.WhisperXHFToken = strings.TrimSpace(c.Captions.WhisperXHFToken)
	if c.Captions.WhisperXHFToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Captions.WhisperXHFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Captions.WhisperXHFToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeRender() {
	c.Render.FFmpegBinary = strings.TrimSpace(c.Render.FFmpegBinary)
	if c.Render.FFmpegBinary == "" {
		c.Render.FFmpegBinary = defaultFFmpegBinary
	}
	c.Render.FFprobeBinary = strings.TrimSpace(c.Render.FFprobeBinary)
	if c.Render.FFprobeBinary == "" {
		c.Render.FFprobeBinary = defaultFFprobeBinary
	}
	c.Render.BackgroundColor = strings.TrimSpace(c.Render.BackgroundColor)
	if c.Render.BackgroundColor == "" {
		c.Render.BackgroundColor = defaultBackgroundColor
	}
	if c.Render.FontSize <= 0 {
		c.Render.FontSize = defaultFontSize
	}
	c.Render.FontColor = strings.TrimSpace(c.Render.FontColor)
	if c.Render.FontColor == "" {
		c.Render.FontColor = defaultFontColor
	}
	c.Render.OutlineColor = strings.TrimSpace(c.Render.OutlineColor)
	if c.Render.OutlineColor == "" {
		c.Render.OutlineColor = defaultOutlineColor
	}
	if c.Render.OutlineWidth < 0 {
		c.Render.OutlineWidth = defaultOutlineWidth
	}
	c.Render.Position = strings.ToLower(strings.TrimSpace(c.Render.Position))
	if c.Render.Position == "" {
		c.Render.Position = defaultPosition
	}
	if c.Render.MarginV <= 0 {
		c.Render.MarginV = defaultMarginV
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

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	if c.Server.MaxUploadMiB <= 0 {
		c.Server.MaxUploadMiB = defaultServerMaxUploadMiB
	}
}
