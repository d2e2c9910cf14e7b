package config

const (
	defaultUploadDir          = "~/.local/share/transcribr/uploads"
	defaultJobsDir            = "~/.local/share/transcribr/jobs"
	defaultLogDir             = "~/.local/share/transcribr/logs"
	defaultAPIBind            = "127.0.0.1:7410"
	defaultWorkers            = 2
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultFrameInterval      = 10
	defaultDedupeThreshold    = 10
	defaultWhisperBinary      = "whisper"
	defaultWhisperModel       = "medium"
	defaultWhisperTimeout     = 3600
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			JobsDir:   defaultJobsDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Workflow: Workflow{
			Workers:            defaultWorkers,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Frames: Frames{
			IntervalSeconds: defaultFrameInterval,
			DedupeThreshold: defaultDedupeThreshold,
		},
		Whisper: Whisper{
			Binary:         defaultWhisperBinary,
			Model:          defaultWhisperModel,
			TimeoutSeconds: defaultWhisperTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
