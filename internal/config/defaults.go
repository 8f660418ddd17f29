package config

const (
	defaultStagingDir           = "~/.local/share/oszimport/staging"
	defaultLogDir               = "~/.local/share/oszimport/logs"
	defaultStateDir             = "~/.local/share/oszimport"
	defaultExtension            = ".osz"
	defaultArchiveExtension     = ".zip"
	defaultBatchSize            = 5
	defaultProcessName          = "osu!.exe"
	defaultWorkerMemoryMaxMiB   = 80
	defaultPollIntervalMillis   = 200
	defaultBatchTimeoutSeconds  = 600
	defaultCleanupAttempts      = 5
	defaultCleanupDelayMillis   = 1000
	defaultStaleAfterHours      = 24
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	minPollIntervalMillis       = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		Import: Import{
			Extension:         defaultExtension,
			ArchiveExtensions: []string{defaultArchiveExtension},
			BatchSize:         defaultBatchSize,
		},
		Monitor: Monitor{
			ProcessName:         defaultProcessName,
			WorkerMemoryMaxMiB:  defaultWorkerMemoryMaxMiB,
			PollIntervalMillis:  defaultPollIntervalMillis,
			BatchTimeoutSeconds: defaultBatchTimeoutSeconds,
		},
		Cleanup: Cleanup{
			Attempts:        defaultCleanupAttempts,
			DelayMillis:     defaultCleanupDelayMillis,
			StaleAfterHours: defaultStaleAfterHours,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Import:         true,
			Errors:         true,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
