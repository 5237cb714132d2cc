package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"voxreel/internal/config"
	"voxreel/internal/deps"
	"voxreel/internal/hardware"
	"voxreel/internal/logging"
	"voxreel/internal/media/ffprobe"
	"voxreel/internal/services"
)

const (
	stageName      = "render"
	stderrTailSize = 500
)

// Runner executes ffmpeg and returns its stderr.
type Runner func(ctx context.Context, binary string, args []string) ([]byte, error)

// DurationProbe measures a media file.
type DurationProbe func(ctx context.Context, path string) (time.Duration, error)

// RenderError reports a failed ffmpeg run with the tail of its diagnostics.
type RenderError struct {
	Encoder string
	Stderr  string
	Err     error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("%s: ffmpeg (%s) failed: %v", services.ErrRender, e.Encoder, e.Err)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *RenderError) Unwrap() []error {
	return []error{services.ErrRender, e.Err}
}

// Assembler composites narration, captions and a background into an MP4.
type Assembler struct {
	ffmpegBinary  string
	ffprobeBinary string
	profile       *hardware.Profile
	runner        Runner
	probe         DurationProbe
	skipDepCheck  bool
	logger        *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRunner replaces the ffmpeg executor.
func WithRunner(runner Runner) Option {
	return func(a *Assembler) {
		if runner != nil {
			a.runner = runner
		}
	}
}

// WithDurationProbe replaces the ffprobe duration lookup.
func WithDurationProbe(probe DurationProbe) Option {
	return func(a *Assembler) {
		if probe != nil {
			a.probe = probe
		}
	}
}

// WithoutDependencyCheck skips the binary lookup in NewAssembler.
func WithoutDependencyCheck() Option {
	return func(a *Assembler) {
		a.skipDepCheck = true
	}
}

// NewAssembler creates an assembler bound to the hardware profile. It fails
// with an environment error when ffmpeg or ffprobe cannot be found.
func NewAssembler(cfg *config.Config, profile *hardware.Profile, logger *slog.Logger, opts ...Option) (*Assembler, error) {
	a := &Assembler{
		ffmpegBinary:  "ffmpeg",
		ffprobeBinary: "ffprobe",
		profile:       profile,
		logger:        logging.NewComponentLogger(logger, stageName),
	}
	if cfg != nil {
		a.ffmpegBinary = cfg.Render.FFmpegBinary
		a.ffprobeBinary = cfg.Render.FFprobeBinary
	}
	a.runner = execRunner
	a.probe = func(ctx context.Context, path string) (time.Duration, error) {
		return ffprobe.Duration(ctx, a.ffprobeBinary, path)
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.profile == nil {
		a.profile = hardware.Fixed(2, hardware.AccelNone)
	}
	if !a.skipDepCheck {
		if err := deps.Require(stageName,
			deps.Requirement{Name: "FFmpeg", Command: a.ffmpegBinary},
			deps.Requirement{Name: "FFprobe", Command: a.ffprobeBinary},
		); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Assemble renders req and returns the output path. A failed hardware encode
// downgrades the shared profile and is retried once in software.
func (a *Assembler) Assemble(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return "", services.Wrap(services.ErrRender, stageName, "prepare output", "could not create output directory", err)
	}

	duration, err := a.probe(ctx, req.AudioPath)
	if err != nil {
		return "", services.Wrap(services.ErrRender, stageName, "probe duration", "could not read narration duration", err)
	}
	if duration <= 0 {
		return "", services.Wrap(services.ErrRender, stageName, "probe duration", "narration has zero duration", nil)
	}

	enc := SelectEncoder(a.profile)
	a.logger.Info("assembling video",
		logging.String("background", req.BackgroundKind.String()),
		logging.String("encoder", enc.Name()),
		logging.Duration("duration", duration),
	)
	started := time.Now()

	stderr, err := a.runner(ctx, a.ffmpegBinary, BuildArgs(req, duration, enc))
	if err != nil && enc.Accel() != hardware.AccelNone && ctx.Err() == nil {
		prev := a.profile.Downgrade()
		logging.WarnWithContext(a.logger, "hardware encode failed; retrying in software", "encoder_fallback",
			logging.String("encoder", enc.Name()),
			logging.String("accel", prev.String()),
			logging.Error(err),
			logging.String("stderr", tail(string(stderr), stderrTailSize)),
			logging.String(logging.FieldErrorHint, "check GPU drivers or set render.disable_hardware"),
			logging.String(logging.FieldImpact, "encoding continues on the CPU for the rest of this process"),
		)
		enc = SelectEncoder(a.profile)
		stderr, err = a.runner(ctx, a.ffmpegBinary, BuildArgs(req, duration, enc))
	}
	if err != nil {
		return "", &RenderError{
			Encoder: enc.Name(),
			Stderr:  tail(strings.TrimSpace(string(stderr)), stderrTailSize),
			Err:     err,
		}
	}

	attrs := []logging.Attr{
		logging.String("path", req.OutputPath),
		logging.String("encoder", enc.Name()),
		logging.Duration("elapsed", time.Since(started)),
	}
	if info, statErr := os.Stat(req.OutputPath); statErr == nil {
		attrs = append(attrs, logging.Float64("size_mb", float64(info.Size())/(1024*1024)))
	}
	a.logger.Info("video assembled", logging.Args(attrs...)...)
	return req.OutputPath, nil
}

func validate(req Request) error {
	if err := requireFile(req.AudioPath, "narration audio"); err != nil {
		return err
	}
	if err := requireFile(req.SubtitlePath, "subtitle file"); err != nil {
		return err
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return services.Wrap(services.ErrInput, stageName, "validate", "output path is empty", nil)
	}
	switch req.BackgroundKind {
	case BackgroundVideo, BackgroundImage:
		return requireFile(req.BackgroundPath, "background")
	case BackgroundNone:
		if req.BackgroundPath != "" {
			return services.Wrap(services.ErrInput, stageName, "validate", "plain color background must not carry a path", nil)
		}
		return nil
	default:
		return services.Wrap(services.ErrInput, stageName, "validate", fmt.Sprintf("unknown background kind %d", int(req.BackgroundKind)), nil)
	}
}

func requireFile(path, label string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrInput, stageName, "validate", label+" path is empty", nil)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return services.Wrap(services.ErrInput, stageName, "validate", fmt.Sprintf("%s not found: %s", label, path), nil)
	}
	return nil
}

func execRunner(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// IsRenderError reports whether err came from a failed ffmpeg run.
func IsRenderError(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}
