package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"voxreel/internal/captions"
	"voxreel/internal/config"
	"voxreel/internal/logging"
	"voxreel/internal/pipeline"
	"voxreel/internal/preflight"
	"voxreel/internal/render"
	"voxreel/internal/voice"
)

type generateOptions struct {
	text         string
	voice        string
	output       string
	lang         string
	bg           string
	noAutoBG     bool
	preferPhoto  bool
	bgColor      string
	ttsMode      string
	exaggeration float64
	cfgWeight    float64
	fontSize     int
	subStyle     string
	subPosition  string
	whisperModel string
	plain        bool
}

// runner is the slice of the orchestrator the generate command drives.
type runner interface {
	Run(ctx context.Context, req pipeline.Request, progress pipeline.ProgressFunc) (pipeline.Result, error)
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a narrated vertical video from a script and a voice sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("whisper-model") {
				cfg.Captions.WhisperXModel = strings.TrimSpace(opts.whisperModel)
			}

			req, err := pipeline.DefaultRequest(cfg)
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, &req); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			interactive := !opts.plain && shouldColorize(out)
			logger, err := ctx.newLogger(!interactive)
			if err != nil {
				return err
			}

			profile := ctx.hardwareProfile(cmd.Context(), logger)
			fmt.Fprintln(out, "Hardware profile:")
			fmt.Fprintln(out, profile.Summary())

			reportPreflight(cmd.Context(), ctx.configValue(), logger)

			orch, err := pipeline.NewFromConfig(cfg, profile, nil, logger)
			if err != nil {
				return errors.New(pipeline.StatusMessage(err))
			}
			defer func() {
				if err := orch.Close(); err != nil {
					logger.Debug("release models failed", logging.Error(err))
				}
			}()

			var result pipeline.Result
			if interactive {
				result, err = runWithProgressUI(cmd.Context(), orch, req, out)
			} else {
				result, err = runWithProgressLines(cmd.Context(), orch, req, out)
			}
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				status := result.Status
				if status == "" {
					status = pipeline.StatusMessage(err)
				}
				return errors.New(status)
			}
			if interactive {
				fmt.Fprintln(out, successStyle.Render(result.Status))
			} else {
				fmt.Fprintln(out, result.Status)
			}
			return nil
		},
	}

	bindGenerateFlags(cmd, &opts)
	return cmd
}

func bindGenerateFlags(cmd *cobra.Command, opts *generateOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.text, "text", "t", "", "Script to narrate")
	flags.StringVarP(&opts.voice, "voice", "v", "", "Voice sample to clone (.wav, 3-15s)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file (default: timestamped file in the output directory)")
	flags.StringVarP(&opts.lang, "lang", "l", "", "Language code (fr, en, es...)")
	flags.StringVar(&opts.bg, "bg", "", "Manual background image or video")
	flags.BoolVar(&opts.noAutoBG, "no-auto-bg", false, "Disable the stock media search")
	flags.BoolVar(&opts.preferPhoto, "prefer-photo", false, "Prefer stock photos over videos")
	flags.StringVar(&opts.bgColor, "bg-color", "", "Plain background color (hex)")
	flags.StringVar(&opts.ttsMode, "tts-mode", "", "Voice model variant (turbo or quality)")
	flags.Float64Var(&opts.exaggeration, "exaggeration", 0, "Expressiveness (0.0-1.5)")
	flags.Float64Var(&opts.cfgWeight, "cfg-weight", 0, "Text adherence (0.1-1.0)")
	flags.IntVar(&opts.fontSize, "font-size", 0, "Subtitle font size")
	flags.StringVar(&opts.subStyle, "sub-style", "", "Caption grouping (dense or classic)")
	flags.StringVar(&opts.subPosition, "sub-position", "", "Caption position (top, center or bottom)")
	flags.StringVar(&opts.whisperModel, "whisper-model", "", "WhisperX model name")
	flags.BoolVar(&opts.plain, "plain", false, "Print progress lines instead of the interactive display")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("voice")
}

// apply layers explicitly set flags over the configured defaults.
func (o generateOptions) apply(cmd *cobra.Command, req *pipeline.Request) error {
	flags := cmd.Flags()
	req.Text = o.text
	req.VoiceSample = strings.TrimSpace(o.voice)
	req.OutputPath = strings.TrimSpace(o.output)
	if flags.Changed("lang") {
		req.Language = strings.TrimSpace(o.lang)
	}
	switch {
	case strings.TrimSpace(o.bg) != "":
		req.Background = pipeline.BackgroundManual
		req.BackgroundPath = strings.TrimSpace(o.bg)
	case o.noAutoBG:
		req.Background = pipeline.BackgroundColor
	default:
		req.Background = pipeline.BackgroundAuto
	}
	req.PreferPhoto = o.preferPhoto
	if flags.Changed("bg-color") {
		req.BackgroundColor = strings.TrimSpace(o.bgColor)
	}
	if flags.Changed("tts-mode") {
		mode, err := voice.ParseMode(o.ttsMode)
		if err != nil {
			return err
		}
		req.VoiceMode = mode
	}
	if flags.Changed("exaggeration") {
		req.Exaggeration = o.exaggeration
	}
	if flags.Changed("cfg-weight") {
		req.CFGWeight = o.cfgWeight
	}
	if flags.Changed("font-size") {
		if o.fontSize <= 0 {
			return fmt.Errorf("font size must be positive, got %d", o.fontSize)
		}
		req.Subtitles.FontSize = o.fontSize
	}
	if flags.Changed("sub-style") {
		style, err := captions.ParseStyle(o.subStyle)
		if err != nil {
			return err
		}
		req.CaptionStyle = style
	}
	if flags.Changed("sub-position") {
		position, err := render.ParsePosition(o.subPosition)
		if err != nil {
			return err
		}
		req.Subtitles.Position = position
	}
	return nil
}

func runWithProgressLines(ctx context.Context, r runner, req pipeline.Request, out io.Writer) (pipeline.Result, error) {
	sampler := logging.NewProgressSampler(0.05)
	return r.Run(ctx, req, func(p pipeline.Progress) {
		if sampler.ShouldLog(p.Fraction, p.Label) {
			fmt.Fprintf(out, "[%3.0f%%] %s\n", p.Fraction*100, p.Label)
		}
	})
}

// reportPreflight logs failing checks; a run can still degrade gracefully
// around most of them.
func reportPreflight(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	for _, result := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "the run may fail or fall back"),
			logging.String(logging.FieldErrorHint, "run voxreel doctor for details"),
		)
	}
}
