package config

const (
	defaultConfigPath = "~/.config/bisub/config.toml"
	defaultStateDir   = "~/.local/share/bisub"
	defaultLogDir     = "~/.local/share/bisub/logs"
	defaultFFmpeg     = "ffmpeg"
	defaultFFprobe    = "ffprobe"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"

	defaultCJKFont             = "Microsoft YaHei"
	defaultCJKFontSizeFactor   = 0.085
	defaultCJKColor            = "#FFC300"
	defaultCJKMinFontSize      = 26
	defaultOtherFont           = "Arial"
	defaultOtherFontSizeFactor = 0.060
	defaultOtherColor          = "#FFFFFF"
	defaultOtherMinFontSize    = 16
	defaultOutline             = 2
	defaultShadow              = 1
	defaultLineOrder           = LineOrderSource

	defaultVideoCodec     = "libx264"
	defaultCRF            = 18
	defaultPreset         = "veryfast"
	defaultAudioCodec     = "copy"
	defaultBarHeightRatio = 0.2
	defaultBarOpacity     = 0.7
	defaultOutputSuffix   = "_with_subs"

	defaultPreviewTimeoutSeconds = 20
	defaultPreviewCueHoldMillis  = 5000
	defaultPreviewSeekOffsetMs   = 500
)

// Line order values for Style.LineOrder.
const (
	LineOrderSource   = "source"
	LineOrderCJKFirst = "cjk_first"
	LineOrderCJKLast  = "cjk_last"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Tools: Tools{
			FFmpeg: defaultFFmpeg,
		},
		Style: Style{
			CJKFont:             defaultCJKFont,
			CJKFontSizeFactor:   defaultCJKFontSizeFactor,
			CJKColor:            defaultCJKColor,
			CJKMinFontSize:      defaultCJKMinFontSize,
			OtherFont:           defaultOtherFont,
			OtherFontSizeFactor: defaultOtherFontSizeFactor,
			OtherColor:          defaultOtherColor,
			OtherMinFontSize:    defaultOtherMinFontSize,
			Outline:             defaultOutline,
			Shadow:              defaultShadow,
			LineOrder:           defaultLineOrder,
		},
		Render: Render{
			VideoCodec:     defaultVideoCodec,
			CRF:            defaultCRF,
			Preset:         defaultPreset,
			AudioCodec:     defaultAudioCodec,
			BackgroundBar:  true,
			BarHeightRatio: defaultBarHeightRatio,
			BarOpacity:     defaultBarOpacity,
			OutputSuffix:   defaultOutputSuffix,
		},
		Preview: Preview{
			TimeoutSeconds: defaultPreviewTimeoutSeconds,
			CueHoldMillis:  defaultPreviewCueHoldMillis,
			SeekOffsetMs:   defaultPreviewSeekOffsetMs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
