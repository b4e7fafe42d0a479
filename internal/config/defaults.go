package config

const (
	defaultOutputDir      = "~/audiobooks"
	defaultStateDir       = "~/.local/share/sonus"
	defaultLogDir         = "~/.local/share/sonus/logs"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultCutTimeout     = 600
	defaultProbeTimeout   = 60
	defaultHistoryKeep    = 100
	defaultNotifyTimeout  = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultMaxWorkerCount = 4
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			CutTimeout:    defaultCutTimeout,
			ProbeTimeout:  defaultProbeTimeout,
		},
		Export: Export{
			Workers: 0, // resolved against GOMAXPROCS during normalize
		},
		History: History{
			Enabled: true,
			Keep:    defaultHistoryKeep,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
