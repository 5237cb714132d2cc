package pipeline

import (
	"fmt"
	"strings"
	"time"

	"voxreel/internal/captions"
	"voxreel/internal/config"
	"voxreel/internal/render"
	"voxreel/internal/stockmedia"
	"voxreel/internal/voice"
)

// BackgroundMode selects where the background layer comes from.
type BackgroundMode int

const (
	// BackgroundAuto searches stock media using keywords from the script.
	BackgroundAuto BackgroundMode = iota
	// BackgroundManual uses a file supplied by the caller.
	BackgroundManual
	// BackgroundColor renders a plain color.
	BackgroundColor
)

// ParseBackgroundMode accepts "auto", "manual" and "none".
func ParseBackgroundMode(value string) (BackgroundMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return BackgroundAuto, nil
	case "manual", "file":
		return BackgroundManual, nil
	case "none", "color":
		return BackgroundColor, nil
	default:
		return BackgroundAuto, fmt.Errorf("unknown background mode %q (expected auto, manual or none)", value)
	}
}

func (m BackgroundMode) String() string {
	switch m {
	case BackgroundManual:
		return "manual"
	case BackgroundColor:
		return "none"
	default:
		return "auto"
	}
}

// Request holds the inputs of one run.
type Request struct {
	Text           string
	VoiceSample    string
	OutputPath     string
	Language       string
	Background     BackgroundMode
	BackgroundPath string
	PreferPhoto    bool
	// BackgroundColor is used whenever no media background is available.
	BackgroundColor string
	VoiceMode       voice.Mode
	Exaggeration    float64
	CFGWeight       float64
	CaptionStyle    captions.Style
	Subtitles       render.SubtitleStyle
}

// DefaultRequest returns a request populated from configuration. Text and
// VoiceSample are left for the caller.
func DefaultRequest(cfg *config.Config) (Request, error) {
	req := Request{
		Language:        "fr",
		Background:      BackgroundAuto,
		BackgroundColor: "#1a1a2e",
		VoiceMode:       voice.ModeTurbo,
		Exaggeration:    0.6,
		CFGWeight:       0.5,
		CaptionStyle:    captions.StyleDense,
		Subtitles:       render.DefaultSubtitleStyle(),
	}
	if cfg == nil {
		return req, nil
	}
	mode, err := voice.ParseMode(cfg.Voice.Mode)
	if err != nil {
		return Request{}, err
	}
	style, err := captions.ParseStyle(cfg.Captions.Style)
	if err != nil {
		return Request{}, err
	}
	position, err := render.ParsePosition(cfg.Render.Position)
	if err != nil {
		return Request{}, err
	}
	req.Language = cfg.Voice.Language
	req.BackgroundColor = cfg.Render.BackgroundColor
	req.VoiceMode = mode
	req.Exaggeration = cfg.Voice.Exaggeration
	req.CFGWeight = cfg.Voice.CFGWeight
	req.CaptionStyle = style
	req.Subtitles = render.SubtitleStyle{
		FontSize:     cfg.Render.FontSize,
		FontColor:    cfg.Render.FontColor,
		OutlineColor: cfg.Render.OutlineColor,
		OutlineWidth: cfg.Render.OutlineWidth,
		Position:     position,
		MarginV:      cfg.Render.MarginV,
	}
	return req, nil
}

// Result describes a finished run.
type Result struct {
	RunID      string                `json:"run_id"`
	VideoPath  string                `json:"video"`
	Background stockmedia.Background `json:"background"`
	Cues       int                   `json:"cues"`
	Status     string                `json:"status"`
	Elapsed    time.Duration         `json:"elapsed"`
}

// Progress is a stage boundary notification.
type Progress struct {
	Fraction float64 `json:"fraction"`
	Label    string  `json:"label"`
}

// ProgressFunc receives progress updates. It must not block.
type ProgressFunc func(Progress)

// Stage boundaries in run order.
var (
	ProgressBackground = Progress{Fraction: 0.05, Label: "Fetching background"}
	ProgressVoice      = Progress{Fraction: 0.20, Label: "Cloning voice"}
	ProgressCaptions   = Progress{Fraction: 0.55, Label: "Generating captions"}
	ProgressAssemble   = Progress{Fraction: 0.80, Label: "Assembling video"}
	ProgressDone       = Progress{Fraction: 1.0, Label: "Done"}
)
