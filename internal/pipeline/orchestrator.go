package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"voxreel/internal/captions"
	"voxreel/internal/config"
	"voxreel/internal/hardware"
	"voxreel/internal/logging"
	"voxreel/internal/render"
	"voxreel/internal/services"
	"voxreel/internal/stockmedia"
	"voxreel/internal/voice"
)

const (
	speechFileName   = "speech.wav"
	subtitleFileName = "subtitles.srt"
	stageValidate    = "validate"
	stageBackground  = "background"
	stageVoice       = "voice"
	stageCaptions    = "captions"
	stageAssemble    = "assemble"
)

// MediaSelector picks a stock background for a script.
type MediaSelector interface {
	Available() bool
	AutoFetchBackground(ctx context.Context, text string, preferVideo bool, orientation string) stockmedia.Background
}

// Narrator clones the voice sample to speak the script.
type Narrator interface {
	Generate(ctx context.Context, req voice.Request) (string, error)
}

// Captioner transcribes narration into a cue file.
type Captioner interface {
	GenerateFile(ctx context.Context, audioPath, language string, style captions.Style, srtPath string) ([]captions.Cue, error)
}

// Assembler renders the final video.
type Assembler interface {
	Assemble(ctx context.Context, req render.Request) (string, error)
}

// Stages bundles the stage implementations.
type Stages struct {
	Media     MediaSelector
	Voice     Narrator
	Captions  Captioner
	Assembler Assembler
}

// Orchestrator runs the stages for one request at a time.
type Orchestrator struct {
	stages    Stages
	workDir   string
	outputDir string
	logger    *slog.Logger
	now       func() time.Time
}

// New builds an orchestrator from explicit stages. Media may be nil, in which
// case auto backgrounds degrade to a plain color.
func New(stages Stages, workDir, outputDir string, logger *slog.Logger) (*Orchestrator, error) {
	if stages.Voice == nil || stages.Captions == nil || stages.Assembler == nil {
		return nil, errors.New("pipeline: voice, captions and assembler stages are required")
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, errors.New("pipeline: work directory is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		stages:    stages,
		workDir:   workDir,
		outputDir: outputDir,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		now:       time.Now,
	}, nil
}

// NewFromConfig wires the production stages. It fails with an environment
// error when the encoder binaries are missing. A nil rng seeds one from the
// clock.
func NewFromConfig(cfg *config.Config, profile *hardware.Profile, rng *rand.Rand, logger *slog.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is nil")
	}
	assembler, err := render.NewAssembler(cfg, profile, logger)
	if err != nil {
		return nil, err
	}
	selector, err := stockmedia.NewFromConfig(cfg, rng, logger)
	if err != nil {
		return nil, fmt.Errorf("pipeline: media selector: %w", err)
	}
	return New(Stages{
		Media:     selector,
		Voice:     voice.NewChatterboxSynthesizer(cfg, profile, logger),
		Captions:  captions.NewWhisperXGenerator(cfg, profile, "", logger),
		Assembler: assembler,
	}, cfg.Paths.WorkDir, cfg.Paths.OutputDir, logger)
}

// MediaAvailable reports whether auto backgrounds can reach a provider.
func (o *Orchestrator) MediaAvailable() bool {
	return o.stages.Media != nil && o.stages.Media.Available()
}

// OutputDir is where videos without an explicit output path are written:
// the configured output directory, or the work directory when none is set.
func (o *Orchestrator) OutputDir() string {
	if o.outputDir == "" {
		return o.workDir
	}
	return o.outputDir
}

// Run executes every stage for req. Progress may be nil.
func (o *Orchestrator) Run(ctx context.Context, req Request, progress ProgressFunc) (Result, error) {
	if progress == nil {
		progress = func(Progress) {}
	}
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)
	started := o.now()

	speechPath := filepath.Join(o.workDir, speechFileName)
	srtPath := filepath.Join(o.workDir, subtitleFileName)
	voiceReq := voice.Request{
		Text:         req.Text,
		VoiceSample:  req.VoiceSample,
		OutputPath:   speechPath,
		Language:     req.Language,
		Mode:         req.VoiceMode,
		Exaggeration: req.Exaggeration,
		CFGWeight:    req.CFGWeight,
	}

	if err := o.validate(req, voiceReq); err != nil {
		logger.Warn("request rejected",
			logging.String(logging.FieldEventType, "request_invalid"),
			logging.Error(err),
		)
		return Result{RunID: runID}, err
	}
	if err := os.MkdirAll(o.workDir, 0o755); err != nil {
		return Result{RunID: runID}, services.Wrap(services.ErrEnvironment, stageValidate, "prepare work dir", "could not create work directory", err)
	}
	outputPath := o.outputPath(req.OutputPath, runID)

	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("background_mode", req.Background.String()),
		logging.String("language", req.Language),
		logging.String("output", outputPath),
	)

	progress(ProgressBackground)
	bg := o.background(services.WithStage(ctx, stageBackground), req)

	progress(ProgressVoice)
	voiceCtx := services.WithStage(ctx, stageVoice)
	if _, err := o.stages.Voice.Generate(voiceCtx, voiceReq); err != nil {
		return o.fail(voiceCtx, runID, bg, err)
	}

	progress(ProgressCaptions)
	captionCtx := services.WithStage(ctx, stageCaptions)
	cues, err := o.stages.Captions.GenerateFile(captionCtx, speechPath, req.Language, req.CaptionStyle, srtPath)
	if err != nil {
		return o.fail(captionCtx, runID, bg, err)
	}

	progress(ProgressAssemble)
	assembleCtx := services.WithStage(ctx, stageAssemble)
	video, err := o.stages.Assembler.Assemble(assembleCtx, render.Request{
		AudioPath:       speechPath,
		SubtitlePath:    srtPath,
		OutputPath:      outputPath,
		BackgroundPath:  bg.Path,
		BackgroundKind:  bg.Kind,
		BackgroundColor: req.BackgroundColor,
		Style:           req.Subtitles,
	})
	if err != nil {
		return o.fail(assembleCtx, runID, bg, err)
	}

	progress(ProgressDone)
	result := Result{
		RunID:      runID,
		VideoPath:  video,
		Background: bg,
		Cues:       len(cues),
		Status:     readyStatus(video, bg, req.Background),
		Elapsed:    o.now().Sub(started),
	}
	logger.Info("pipeline completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("video", video),
		logging.String("background", bg.Kind.String()),
		logging.Int("cues", result.Cues),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// validate rejects bad input before any stage does work. Voice parameters
// are checked here too so a bad language or bound never reaches the media
// search.
func (o *Orchestrator) validate(req Request, voiceReq voice.Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return services.Wrap(services.ErrInput, stageValidate, "", "text is required", nil)
	}
	if strings.TrimSpace(req.VoiceSample) == "" {
		return services.Wrap(services.ErrInput, stageValidate, "", "a voice sample (3-15s) is required", nil)
	}
	info, err := os.Stat(req.VoiceSample)
	if err != nil || info.IsDir() {
		return services.Wrap(services.ErrInput, stageValidate, "", fmt.Sprintf("voice sample not found: %s", req.VoiceSample), nil)
	}
	if req.Background == BackgroundManual && strings.TrimSpace(req.BackgroundPath) == "" {
		return services.Wrap(services.ErrInput, stageValidate, "", "manual background requires a file", nil)
	}
	return voice.Validate(voiceReq)
}

func (o *Orchestrator) background(ctx context.Context, req Request) stockmedia.Background {
	logger := logging.WithContext(ctx, o.logger)
	none := stockmedia.Background{Kind: render.BackgroundNone, Keywords: []string{}}
	switch req.Background {
	case BackgroundAuto:
		if !o.MediaAvailable() {
			logger.Info("stock media unavailable; using plain color background",
				logging.String("color", req.BackgroundColor))
			return none
		}
		return o.stages.Media.AutoFetchBackground(ctx, req.Text, !req.PreferPhoto, "portrait")
	case BackgroundManual:
		kind := render.DetectBackgroundKind(req.BackgroundPath)
		if kind == render.BackgroundNone {
			logging.WarnWithContext(logger, "manual background unusable", "background_unusable",
				logging.String("path", req.BackgroundPath),
				logging.String(logging.FieldErrorHint, "use an existing video (.mp4 .mov .avi .webm .mkv) or image (.jpg .jpeg .png .webp .bmp)"),
				logging.String(logging.FieldImpact, "rendering on a plain color background"),
			)
			return none
		}
		logger.Info("using manual background",
			logging.String("path", req.BackgroundPath),
			logging.String("kind", kind.String()))
		return stockmedia.Background{Path: req.BackgroundPath, Kind: kind, Keywords: []string{}}
	case BackgroundColor:
	}
	return none
}

func (o *Orchestrator) fail(ctx context.Context, runID string, bg stockmedia.Background, err error) (Result, error) {
	logging.ErrorWithContext(logging.WithContext(ctx, o.logger), "pipeline failed", "run_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hintFor(err)),
	)
	return Result{RunID: runID, Background: bg, Status: StatusMessage(err)}, err
}

func (o *Orchestrator) outputPath(requested, runID string) string {
	if p := strings.TrimSpace(requested); p != "" {
		return p
	}
	stamp := o.now().Format("20060102-150405")
	return filepath.Join(o.OutputDir(), fmt.Sprintf("voxreel-%s-%s.mp4", stamp, runID[:8]))
}

// Close unloads any models held by the stages.
func (o *Orchestrator) Close() error {
	var errs []error
	for _, stage := range []any{o.stages.Voice, o.stages.Captions} {
		if r, ok := stage.(interface{ Release() error }); ok {
			if err := r.Release(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// StatusMessage renders err as the single line shown to users.
func StatusMessage(err error) string {
	return services.StatusMessage(err)
}

func readyStatus(video string, bg stockmedia.Background, mode BackgroundMode) string {
	var info string
	switch {
	case len(bg.Keywords) > 0:
		info = strings.Join(bg.Keywords, ", ")
	case mode == BackgroundManual && bg.Kind != render.BackgroundNone:
		info = "manual"
	default:
		info = "plain color"
	}
	return fmt.Sprintf("Video ready: %s (background: %s, keywords: %s)", video, bg.Kind, info)
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrEnvironment):
		return "run voxreel doctor to check required binaries"
	case errors.Is(err, services.ErrRender):
		return "inspect the ffmpeg output above; set render.disable_hardware to skip GPU encoders"
	case errors.Is(err, services.ErrModel):
		return "check the uvx environment and GPU memory"
	default:
		return "check the request parameters"
	}
}
