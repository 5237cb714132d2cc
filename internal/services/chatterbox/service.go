// Package chatterbox runs the Chatterbox voice cloning model in an isolated
// Python environment through uvx.
package chatterbox

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

//go:embed synthesize.py
var synthesizeScript []byte

// Defaults for the uvx environment.
const (
	UVXCommand     = "uvx"
	DefaultPython  = "3.11"
	DefaultPackage = "chatterbox-tts"
	scriptName     = "voxreel_chatterbox.py"
)

// Config captures runtime settings for the synthesis process.
type Config struct {
	// Python is the interpreter version uvx provisions.
	Python string
	// Package is the pip requirement providing the chatterbox module.
	Package string
	// Device is the torch device ("cpu" or "cuda").
	Device string
	// Half casts the model to float16.
	Half bool
	// ScriptDir is where the helper script is written.
	ScriptDir string
}

// Request describes one synthesis.
type Request struct {
	Text         string
	VoiceSample  string
	OutputPath   string
	Mode         string
	Language     string
	Exaggeration float64
	CFGWeight    float64
}

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Service launches synthesize.py under uvx.
type Service struct {
	cfg        Config
	scriptPath string
	runner     CommandRunner
}

// NewService writes the helper script into cfg.ScriptDir and returns a
// ready service.
func NewService(cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.Python) == "" {
		cfg.Python = DefaultPython
	}
	if strings.TrimSpace(cfg.Package) == "" {
		cfg.Package = DefaultPackage
	}
	if cfg.Device == "" {
		cfg.Device = "cpu"
	}
	if cfg.ScriptDir == "" {
		cfg.ScriptDir = os.TempDir()
	}
	if err := os.MkdirAll(cfg.ScriptDir, 0o755); err != nil {
		return nil, fmt.Errorf("chatterbox: ensure script dir: %w", err)
	}
	scriptPath := filepath.Join(cfg.ScriptDir, scriptName)
	if err := os.WriteFile(scriptPath, synthesizeScript, 0o644); err != nil {
		return nil, fmt.Errorf("chatterbox: write helper script: %w", err)
	}
	return &Service{cfg: cfg, scriptPath: scriptPath}, nil
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) {
	s.runner = runner
}

// ScriptPath returns the location of the helper script.
func (s *Service) ScriptPath() string {
	return s.scriptPath
}

// Close removes the helper script.
func (s *Service) Close() error {
	if s == nil || s.scriptPath == "" {
		return nil
	}
	if err := os.Remove(s.scriptPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Synthesize renders req.Text in the voice of req.VoiceSample to req.OutputPath.
func (s *Service) Synthesize(ctx context.Context, req Request) error {
	if s == nil {
		return errors.New("chatterbox: service is nil")
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("chatterbox: ensure output dir: %w", err)
	}
	textPath := req.OutputPath + ".txt"
	if err := os.WriteFile(textPath, []byte(req.Text), 0o644); err != nil {
		return fmt.Errorf("chatterbox: write text: %w", err)
	}
	defer os.Remove(textPath)

	args := s.buildArgs(req, textPath)
	output, err := s.run(ctx, UVXCommand, args...)
	if err != nil {
		return fmt.Errorf("chatterbox: %w: %s", err, tail(strings.TrimSpace(string(output)), 500))
	}
	info, err := os.Stat(req.OutputPath)
	if err != nil {
		return fmt.Errorf("chatterbox: output missing: %w", err)
	}
	if info.Size() == 0 {
		return errors.New("chatterbox: output is empty")
	}
	return nil
}

func (s *Service) buildArgs(req Request, textPath string) []string {
	args := []string{
		"--python", s.cfg.Python,
		"--from", s.cfg.Package,
		"--with", "torchaudio",
		"python", s.scriptPath,
		"--text-file", textPath,
		"--voice", req.VoiceSample,
		"--output", req.OutputPath,
		"--mode", req.Mode,
		"--language", req.Language,
		"--exaggeration", strconv.FormatFloat(req.Exaggeration, 'f', -1, 64),
		"--cfg-weight", strconv.FormatFloat(req.CFGWeight, 'f', -1, 64),
		"--device", s.cfg.Device,
	}
	if s.cfg.Half {
		args = append(args, "--half")
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.runner != nil {
		return s.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
