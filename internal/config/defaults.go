package config

const (
	defaultOutputDir       = "~/soundcraft"
	defaultLogDir          = "~/.local/share/soundcraft/logs"
	defaultSessionDir      = "~/.local/share/soundcraft/sessions"
	defaultSampleRate      = 48000
	defaultTicksPerQuarter = 480
	defaultNotifyTimeout   = 10
	defaultTTSBinary       = "piper"
	defaultTTSModelDir     = "~/piper_voices"
	defaultTTSVoice        = "en_US-amy-low"
	defaultTTSTimeout      = 60
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			SessionDir: defaultSessionDir,
		},
		Audio: Audio{
			SampleRate:      defaultSampleRate,
			TicksPerQuarter: defaultTicksPerQuarter,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Sealed:         true,
			Errors:         true,
		},
		TTS: TTS{
			Binary:         defaultTTSBinary,
			ModelDir:       defaultTTSModelDir,
			Voice:          defaultTTSVoice,
			TimeoutSeconds: defaultTTSTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
