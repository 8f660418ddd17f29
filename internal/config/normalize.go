package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeImport()
	c.normalizeMonitor()
	c.normalizeLauncher()
	c.normalizeCleanup()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeImport() {
	c.Import.Extension = normalizeExtension(c.Import.Extension)
	if c.Import.Extension == "" {
		c.Import.Extension = defaultExtension
	}
	exts := make([]string, 0, len(c.Import.ArchiveExtensions))
	seen := make(map[string]struct{}, len(c.Import.ArchiveExtensions))
	for _, ext := range c.Import.ArchiveExtensions {
		normalized := strings.ToLower(normalizeExtension(ext))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = []string{defaultArchiveExtension}
	}
	c.Import.ArchiveExtensions = exts
	if c.Import.BatchSize == 0 {
		c.Import.BatchSize = defaultBatchSize
	}
}

// normalizeExtension trims whitespace and guarantees a leading dot. Case is
// preserved because item matching is case-sensitive.
func normalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func (c *Config) normalizeMonitor() {
	c.Monitor.ProcessName = strings.TrimSpace(c.Monitor.ProcessName)
	if c.Monitor.ProcessName == "" {
		c.Monitor.ProcessName = defaultProcessName
	}
	if c.Monitor.WorkerMemoryMaxMiB == 0 {
		c.Monitor.WorkerMemoryMaxMiB = defaultWorkerMemoryMaxMiB
	}
	if c.Monitor.PollIntervalMillis == 0 {
		c.Monitor.PollIntervalMillis = defaultPollIntervalMillis
	}
	if c.Monitor.SettleDelayMillis < 0 {
		c.Monitor.SettleDelayMillis = 0
	}
}

func (c *Config) normalizeLauncher() {
	command := make([]string, 0, len(c.Launcher.Command))
	for _, arg := range c.Launcher.Command {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			command = append(command, trimmed)
		}
	}
	c.Launcher.Command = command
}

func (c *Config) normalizeCleanup() {
	if c.Cleanup.Attempts == 0 {
		c.Cleanup.Attempts = defaultCleanupAttempts
	}
	if c.Cleanup.DelayMillis < 0 {
		c.Cleanup.DelayMillis = 0
	}
	if c.Cleanup.StaleAfterHours <= 0 {
		c.Cleanup.StaleAfterHours = defaultStaleAfterHours
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("OSZIMPORT_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
