package render

import (
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"voxreel/internal/hardware"
)

// Encoder contributes the video codec settings to a render graph.
type Encoder interface {
	// Name is the ffmpeg codec name.
	Name() string
	// Accel is the accelerator the encoder depends on.
	Accel() hardware.Accel
	// Apply appends any filters the encoder needs to the video stream.
	Apply(video *ffmpeg.Stream) *ffmpeg.Stream
	// OutputArgs are the per-output codec options.
	OutputArgs() ffmpeg.KwArgs
	// GlobalArgs are options placed outside the input/output groups.
	GlobalArgs() []string
}

// SelectEncoder picks the encoder for the accelerator currently in effect.
func SelectEncoder(profile *hardware.Profile) Encoder {
	switch profile.Accel() {
	case hardware.AccelVAAPI:
		device := hardware.DefaultVAAPIDevice
		if profile != nil && profile.VAAPIDevice != "" {
			device = profile.VAAPIDevice
		}
		return vaapiEncoder{device: device}
	case hardware.AccelNVENC:
		return nvencEncoder{}
	default:
		return softwareEncoder{threads: profile.EncoderThreads()}
	}
}

type softwareEncoder struct {
	threads int
}

func (softwareEncoder) Name() string                              { return "libx264" }
func (softwareEncoder) Accel() hardware.Accel                     { return hardware.AccelNone }
func (softwareEncoder) Apply(video *ffmpeg.Stream) *ffmpeg.Stream { return video }
func (softwareEncoder) GlobalArgs() []string                      { return nil }

func (e softwareEncoder) OutputArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"c:v":     "libx264",
		"preset":  "fast",
		"crf":     "23",
		"threads": strconv.Itoa(max(e.threads, 2)),
	}
}

type vaapiEncoder struct {
	device string
}

func (vaapiEncoder) Name() string          { return "h264_vaapi" }
func (vaapiEncoder) Accel() hardware.Accel { return hardware.AccelVAAPI }

// Apply uploads frames to the GPU after subtitles are burned in on the CPU.
func (vaapiEncoder) Apply(video *ffmpeg.Stream) *ffmpeg.Stream {
	return video.Filter("format", ffmpeg.Args{"nv12"}).Filter("hwupload", nil)
}

func (vaapiEncoder) OutputArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{"c:v": "h264_vaapi", "qp": "23"}
}

func (e vaapiEncoder) GlobalArgs() []string {
	return []string{"-vaapi_device", e.device}
}

type nvencEncoder struct{}

func (nvencEncoder) Name() string                              { return "h264_nvenc" }
func (nvencEncoder) Accel() hardware.Accel                     { return hardware.AccelNVENC }
func (nvencEncoder) Apply(video *ffmpeg.Stream) *ffmpeg.Stream { return video }
func (nvencEncoder) GlobalArgs() []string                      { return nil }

func (nvencEncoder) OutputArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{"c:v": "h264_nvenc", "preset": "p4", "cq": "23"}
}
