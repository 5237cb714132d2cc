package captions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"voxreel/internal/config"
	"voxreel/internal/deps"
	"voxreel/internal/hardware"
	"voxreel/internal/logging"
	"voxreel/internal/resource"
	"voxreel/internal/services"
	"voxreel/internal/services/whisperx"
)

const stageName = "captions"

// Transcriber produces timed segments for an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) ([]whisperx.Segment, error)
}

// Generator transcribes narration and groups the words into cues.
type Generator struct {
	model  *resource.Handle[Transcriber]
	logger *slog.Logger
}

// NewGenerator wraps a transcriber loader in an on-demand handle.
func NewGenerator(load resource.LoadFunc[Transcriber], logger *slog.Logger) *Generator {
	logger = logging.NewComponentLogger(logger, stageName)
	return &Generator{
		model:  resource.NewHandle("transcriber", load, nil, logger),
		logger: logger,
	}
}

// NewWhisperXGenerator builds a Generator backed by WhisperX. The uvx
// launcher is checked when the model is first acquired. model overrides the
// configured WhisperX model when non-empty.
func NewWhisperXGenerator(cfg *config.Config, profile *hardware.Profile, model string, logger *slog.Logger) *Generator {
	load := func(context.Context) (Transcriber, error) {
		if err := deps.Require(stageName, deps.Requirement{
			Name:        "uvx",
			Command:     whisperx.UVXCommand,
			Description: "Runs WhisperX",
		}); err != nil {
			return nil, err
		}
		wcfg := whisperx.Config{Model: model}
		if cfg != nil {
			if wcfg.Model == "" {
				wcfg.Model = cfg.Captions.WhisperXModel
			}
			wcfg.HFToken = cfg.Captions.WhisperXHFToken
		}
		if profile != nil {
			wcfg.CUDAEnabled = profile.WhisperDevice() == "cuda"
			wcfg.ComputeType = profile.ComputeType
		}
		return serviceTranscriber{svc: whisperx.NewService(wcfg)}, nil
	}
	return NewGenerator(load, logger)
}

// serviceTranscriber writes WhisperX output next to the audio file.
type serviceTranscriber struct {
	svc *whisperx.Service
}

func (t serviceTranscriber) Transcribe(ctx context.Context, audioPath, language string) ([]whisperx.Segment, error) {
	return t.svc.Transcribe(ctx, audioPath, filepath.Join(filepath.Dir(audioPath), "whisperx"), language)
}

// Generate transcribes audioPath and groups its timed words by style.
// Words without alignment are skipped.
func (g *Generator) Generate(ctx context.Context, audioPath, language string, style Style) ([]Cue, error) {
	transcriber, err := g.model.Acquire(ctx)
	if err != nil {
		if errors.Is(err, services.ErrEnvironment) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrModel, stageName, "load transcriber", "transcription model unavailable", err)
	}

	started := time.Now()
	g.logger.Info("transcribing narration",
		logging.String("audio", audioPath),
		logging.String("language", language),
		logging.String("style", style.String()),
	)
	segments, err := transcriber.Transcribe(ctx, audioPath, language)
	if err != nil {
		return nil, services.Wrap(services.ErrModel, stageName, "transcribe", "transcription failed", err)
	}

	words, skipped := timedWords(segments)
	if skipped > 0 {
		g.logger.Debug("skipped words without timing", logging.Int("count", skipped))
	}
	cues := Group(words, style)
	g.logger.Info("captions generated",
		logging.Int("words", len(words)),
		logging.Int("cues", len(cues)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return cues, nil
}

// GenerateFile runs Generate and writes the cues to srtPath.
func (g *Generator) GenerateFile(ctx context.Context, audioPath, language string, style Style, srtPath string) ([]Cue, error) {
	cues, err := g.Generate(ctx, audioPath, language, style)
	if err != nil {
		return nil, err
	}
	if err := WriteSRTFile(srtPath, cues); err != nil {
		return nil, services.Wrap(services.ErrModel, stageName, "write srt", fmt.Sprintf("could not write %s", srtPath), err)
	}
	return cues, nil
}

// Release drops the loaded transcriber.
func (g *Generator) Release() error {
	return g.model.Release()
}

func timedWords(segments []whisperx.Segment) ([]Word, int) {
	var words []Word
	skipped := 0
	for _, seg := range segments {
		for _, w := range seg.Words {
			if !w.Timed() {
				skipped++
				continue
			}
			words = append(words, Word{
				Text:  w.Word,
				Start: secondsToDuration(*w.Start),
				End:   secondsToDuration(*w.End),
			})
		}
	}
	return words, skipped
}
