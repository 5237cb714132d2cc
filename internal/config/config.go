package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	CacheDir  string `toml:"cache_dir"`
	LogDir    string `toml:"log_dir"`
}

// Pexels contains configuration for the stock media provider.
type Pexels struct {
	APIKey                 string `toml:"api_key"`
	BaseURL                string `toml:"base_url"`
	Orientation            string `toml:"orientation"`
	PerPage                int    `toml:"per_page"`
	MinVideoSeconds        int    `toml:"min_video_seconds"`
	MinVideoHeight         int    `toml:"min_video_height"`
	SearchTimeoutSeconds   int    `toml:"search_timeout_seconds"`
	DownloadTimeoutSeconds int    `toml:"download_timeout_seconds"`
}

// Voice contains configuration for the voice cloning model.
type Voice struct {
	Mode         string  `toml:"mode"`
	Language     string  `toml:"language"`
	Exaggeration float64 `toml:"exaggeration"`
	CFGWeight    float64 `toml:"cfg_weight"`
	Python       string  `toml:"python"`
	Package      string  `toml:"package"`
}

// Captions contains configuration for transcription and cue grouping.
type Captions struct {
	Style           string `toml:"style"`
	WhisperXModel   string `toml:"whisperx_model"`
	WhisperXHFToken string `toml:"whisperx_hf_token"`
}

// Render contains configuration for the ffmpeg assembler.
type Render struct {
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	FFprobeBinary   string `toml:"ffprobe_binary"`
	BackgroundColor string `toml:"background_color"`
	FontSize        int    `toml:"font_size"`
	FontColor       string `toml:"font_color"`
	OutlineColor    string `toml:"outline_color"`
	OutlineWidth    int    `toml:"outline_width"`
	Position        string `toml:"position"`
	MarginV         int    `toml:"margin_v"`
	DisableHardware bool   `toml:"disable_hardware"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Server contains configuration for the web surface.
type Server struct {
	Bind         string `toml:"bind"`
	MaxUploadMiB int    `toml:"max_upload_mib"`
}

// Config encapsulates all configuration values for voxreel.
//
// Configuration sections by subsystem:
//   - Paths: output, scratch, cache and log directories
//   - Pexels: stock media search and download
//   - Voice: Chatterbox voice cloning
//   - Captions: WhisperX transcription and cue grouping
//   - Render: ffmpeg binaries and subtitle styling
//   - Logging: log format and level
//   - Server: web surface bind address
type Config struct {
	Paths    Paths    `toml:"paths"`
	Pexels   Pexels   `toml:"pexels"`
	Voice    Voice    `toml:"voice"`
	Captions Captions `toml:"captions"`
	Render   Render   `toml:"render"`
	Logging  Logging  `toml:"logging"`
	Server   Server   `toml:"server"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/voxreel/config.toml")
}

// LoadDotEnv reads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat env file: %w", err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voxreel.toml")
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

// EnsureDirectories creates the directories a pipeline run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.CacheDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PexelsConfigured reports whether an API key long enough to be real is present.
func (c *Config) PexelsConfigured() bool {
	return len(strings.TrimSpace(c.Pexels.APIKey)) > minPexelsKeyLength
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

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "voxreel", "media")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/voxreel/media"
	}
	return filepath.Join(home, ".cache", "voxreel", "media")
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

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	redacted := *c
	if redacted.Pexels.APIKey != "" {
		redacted.Pexels.APIKey = "********"
	}
	if redacted.Captions.WhisperXHFToken != "" {
		redacted.Captions.WhisperXHFToken = "********"
	}
	data, err := toml.Marshal(redacted)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
