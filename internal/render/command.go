package render

import (
	"fmt"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Output canvas.
const (
	Width  = 1080
	Height = 1920
	FPS    = 30
)

// Request is everything needed to assemble one video.
type Request struct {
	AudioPath       string
	SubtitlePath    string
	OutputPath      string
	BackgroundPath  string
	BackgroundKind  BackgroundKind
	BackgroundColor string
	Style           SubtitleStyle
}

// buildStream assembles the ffmpeg graph for req: background layer, burned-in
// subtitles, encoder filters, then the narration as the audio track.
func buildStream(req Request, duration time.Duration, enc Encoder) *ffmpeg.Stream {
	seconds := strconv.FormatFloat(duration.Seconds(), 'f', 3, 64)
	size := fmt.Sprintf("%dx%d", Width, Height)

	var video *ffmpeg.Stream
	switch req.BackgroundKind {
	case BackgroundVideo:
		video = ffmpeg.Input(req.BackgroundPath, ffmpeg.KwArgs{"stream_loop": "-1"}).Video().
			Filter("scale", ffmpeg.Args{strconv.Itoa(Width), strconv.Itoa(Height)},
				ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
			Filter("crop", ffmpeg.Args{strconv.Itoa(Width), strconv.Itoa(Height)})
	case BackgroundImage:
		frames := int(duration.Seconds() * FPS)
		video = ffmpeg.Input(req.BackgroundPath, ffmpeg.KwArgs{"loop": "1"}).Video().
			Filter("scale", ffmpeg.Args{strconv.Itoa(Width * 2), strconv.Itoa(Height * 2)}).
			Filter("zoompan", nil, ffmpeg.KwArgs{
				"z":   "min(zoom+0.0003,1.15)",
				"x":   "iw/2-(iw/zoom/2)",
				"y":   "ih/2-(ih/zoom/2)",
				"d":   strconv.Itoa(frames),
				"s":   size,
				"fps": strconv.Itoa(FPS),
			})
	case BackgroundNone:
		source := fmt.Sprintf("color=c=%s:s=%s:d=%s:r=%d", ColorSource(req.BackgroundColor), size, seconds, FPS)
		video = ffmpeg.Input(source, ffmpeg.KwArgs{"f": "lavfi"}).Video()
	}

	video = video.Filter("subtitles", ffmpeg.Args{subtitlePath(req.SubtitlePath)},
		ffmpeg.KwArgs{"force_style": req.Style.ForceStyle()})
	video = enc.Apply(video)

	audio := ffmpeg.Input(req.AudioPath).Audio()

	kwargs := ffmpeg.KwArgs{
		"c:a":      "aac",
		"b:a":      "192k",
		"shortest": "",
		"t":        seconds,
		"movflags": "+faststart",
	}
	for k, v := range enc.OutputArgs() {
		kwargs[k] = v
	}

	global := append([]string{"-hide_banner", "-loglevel", "error"}, enc.GlobalArgs()...)
	return ffmpeg.Output([]*ffmpeg.Stream{video, audio}, req.OutputPath, kwargs).
		GlobalArgs(global...).
		OverWriteOutput()
}

// BuildArgs returns the ffmpeg argument list for req without running it.
func BuildArgs(req Request, duration time.Duration, enc Encoder) []string {
	return buildStream(req, duration, enc).GetArgs()
}
