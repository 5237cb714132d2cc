package config

const (
	defaultOutputDir             = "~/Videos/voxreel"
	defaultWorkDir               = "~/.local/share/voxreel/work"
	defaultLogDir                = "~/.local/share/voxreel/logs"
	defaultPexelsBaseURL         = "https://api.pexels.com"
	defaultPexelsOrientation     = "portrait"
	defaultPexelsPerPage         = 5
	defaultPexelsMinVideoSeconds = 5
	defaultPexelsMinVideoHeight  = 720
	defaultPexelsSearchTimeout   = 10
	defaultPexelsDownloadTimeout = 60
	defaultVoiceMode             = "turbo"
	defaultVoiceLanguage         = "fr"
	defaultVoiceExaggeration     = 0.6
	defaultVoiceCFGWeight        = 0.5
	defaultVoicePython           = "3.11"
	defaultVoicePackage          = "chatterbox-tts"
	defaultCaptionStyle          = "dense"
	defaultWhisperXModel         = "large-v3-turbo"
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultBackgroundColor       = "#1a1a2e"
	defaultFontSize              = 28
	defaultFontColor             = "white"
	defaultOutlineColor          = "black"
	defaultOutlineWidth          = 3
	defaultPosition              = "center"
	defaultMarginV               = 100
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultServerBind            = "127.0.0.1:7860"
	defaultServerMaxUploadMiB    = 64
	minPexelsKeyLength           = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			CacheDir:  defaultCacheDir(),
			LogDir:    defaultLogDir,
		},
		Pexels: Pexels{
			BaseURL:                defaultPexelsBaseURL,
			Orientation:            defaultPexelsOrientation,
			PerPage:                defaultPexelsPerPage,
			MinVideoSeconds:        defaultPexelsMinVideoSeconds,
			MinVideoHeight:         defaultPexelsMinVideoHeight,
			SearchTimeoutSeconds:   defaultPexelsSearchTimeout,
			DownloadTimeoutSeconds: defaultPexelsDownloadTimeout,
		},
		Voice: Voice{
			Mode:         defaultVoiceMode,
			Language:     defaultVoiceLanguage,
			Exaggeration: defaultVoiceExaggeration,
			CFGWeight:    defaultVoiceCFGWeight,
			Python:       defaultVoicePython,
			Package:      defaultVoicePackage,
		},
		Captions: Captions{
			Style:         defaultCaptionStyle,
			WhisperXModel: defaultWhisperXModel,
		},
		Render: Render{
			FFmpegBinary:    defaultFFmpegBinary,
			FFprobeBinary:   defaultFFprobeBinary,
			BackgroundColor: defaultBackgroundColor,
			FontSize:        defaultFontSize,
			FontColor:       defaultFontColor,
			OutlineColor:    defaultOutlineColor,
			OutlineWidth:    defaultOutlineWidth,
			Position:        defaultPosition,
			MarginV:         defaultMarginV,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Server: Server{
			Bind:         defaultServerBind,
			MaxUploadMiB: defaultServerMaxUploadMiB,
		},
	}
}
