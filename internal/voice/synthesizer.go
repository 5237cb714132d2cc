// Package voice clones a speaker from a short sample and narrates a script.
package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"voxreel/internal/config"
	"voxreel/internal/deps"
	"voxreel/internal/hardware"
	"voxreel/internal/language"
	"voxreel/internal/logging"
	"voxreel/internal/resource"
	"voxreel/internal/services"
	"voxreel/internal/services/chatterbox"
)

const stageName = "voice"

// Parameter bounds accepted by the model.
const (
	MinExaggeration = 0.0
	MaxExaggeration = 1.5
	MinCFGWeight    = 0.1
	MaxCFGWeight    = 1.0
)

// Request describes one narration.
type Request struct {
	Text         string
	VoiceSample  string
	OutputPath   string
	Language     string
	Mode         Mode
	Exaggeration float64
	CFGWeight    float64
}

// Engine performs the synthesis.
type Engine interface {
	Synthesize(ctx context.Context, req chatterbox.Request) error
}

// Synthesizer validates requests and drives an on-demand engine.
type Synthesizer struct {
	engine *resource.Handle[Engine]
	logger *slog.Logger
}

// NewSynthesizer wraps an engine loader. release may be nil.
func NewSynthesizer(load resource.LoadFunc[Engine], release resource.ReleaseFunc[Engine], logger *slog.Logger) *Synthesizer {
	logger = logging.NewComponentLogger(logger, stageName)
	return &Synthesizer{
		engine: resource.NewHandle("voice model", load, release, logger),
		logger: logger,
	}
}

// NewChatterboxSynthesizer builds a Synthesizer that runs Chatterbox under uvx
// on the device chosen by the hardware profile.
func NewChatterboxSynthesizer(cfg *config.Config, profile *hardware.Profile, logger *slog.Logger) *Synthesizer {
	load := func(context.Context) (Engine, error) {
		if err := deps.Require(stageName, deps.Requirement{
			Name:        "uvx",
			Command:     chatterbox.UVXCommand,
			Description: "Runs Chatterbox",
		}); err != nil {
			return nil, err
		}
		ccfg := chatterbox.Config{
			Device: profile.TorchDevice(),
			Half:   profile.HalfPrecision(),
		}
		if cfg != nil {
			ccfg.Python = cfg.Voice.Python
			ccfg.Package = cfg.Voice.Package
			ccfg.ScriptDir = cfg.Paths.WorkDir
		}
		svc, err := chatterbox.NewService(ccfg)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	release := func(e Engine) error {
		if closer, ok := e.(interface{ Close() error }); ok {
			return closer.Close()
		}
		return nil
	}
	return NewSynthesizer(load, release, logger)
}

// Validate checks a request without running the model.
func Validate(req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return services.Wrap(services.ErrInput, stageName, "validate", "text is empty", nil)
	}
	info, err := os.Stat(req.VoiceSample)
	if err != nil || info.IsDir() {
		return services.Wrap(services.ErrInput, stageName, "validate", fmt.Sprintf("voice sample not found: %s", req.VoiceSample), nil)
	}
	if !language.Supported(req.Language) {
		return services.Wrap(services.ErrInput, stageName, "validate",
			fmt.Sprintf("unsupported language %q (supported: %s)", req.Language, strings.Join(language.SupportedCodes(), ", ")), nil)
	}
	if req.Exaggeration < MinExaggeration || req.Exaggeration > MaxExaggeration {
		return services.Wrap(services.ErrInput, stageName, "validate",
			fmt.Sprintf("exaggeration %.2f outside [%.1f, %.1f]", req.Exaggeration, MinExaggeration, MaxExaggeration), nil)
	}
	if req.CFGWeight < MinCFGWeight || req.CFGWeight > MaxCFGWeight {
		return services.Wrap(services.ErrInput, stageName, "validate",
			fmt.Sprintf("cfg weight %.2f outside [%.1f, %.1f]", req.CFGWeight, MinCFGWeight, MaxCFGWeight), nil)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return services.Wrap(services.ErrInput, stageName, "validate", "output path is empty", nil)
	}
	return nil
}

// Generate narrates req.Text and returns the WAV path.
func (s *Synthesizer) Generate(ctx context.Context, req Request) (string, error) {
	if err := Validate(req); err != nil {
		return "", err
	}
	engine, err := s.engine.Acquire(ctx)
	if err != nil {
		if errors.Is(err, services.ErrEnvironment) {
			return "", err
		}
		return "", services.Wrap(services.ErrModel, stageName, "load model", "voice model unavailable", err)
	}

	lang := language.ToISO2(req.Language)
	started := time.Now()
	s.logger.Info("cloning voice",
		logging.String("mode", req.Mode.String()),
		logging.String("language", lang),
		logging.Float64("exaggeration", req.Exaggeration),
		logging.Float64("cfg_weight", req.CFGWeight),
		logging.Int("text_chars", len([]rune(req.Text))),
	)
	err = engine.Synthesize(ctx, chatterbox.Request{
		Text:         strings.TrimSpace(req.Text),
		VoiceSample:  req.VoiceSample,
		OutputPath:   req.OutputPath,
		Mode:         req.Mode.String(),
		Language:     lang,
		Exaggeration: req.Exaggeration,
		CFGWeight:    req.CFGWeight,
	})
	if err != nil {
		return "", services.Wrap(services.ErrModel, stageName, "synthesize", "voice synthesis failed", err)
	}
	s.logger.Info("narration ready",
		logging.String("path", req.OutputPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return req.OutputPath, nil
}

// Release unloads the engine.
func (s *Synthesizer) Release() error {
	return s.engine.Release()
}
