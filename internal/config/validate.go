package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateCleanup(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.BatchSize < 1 {
		return errors.New("import.batch_size must be positive")
	}
	if strings.ContainsAny(c.Import.Extension, `/\`) {
		return fmt.Errorf("import.extension %q must not contain path separators", c.Import.Extension)
	}
	for _, ext := range c.Import.ArchiveExtensions {
		if strings.EqualFold(ext, c.Import.Extension) {
			return fmt.Errorf("import.archive_extensions must not include the item extension %q", ext)
		}
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if c.Monitor.WorkerMemoryMaxMiB < 1 {
		return errors.New("monitor.worker_memory_max_mib must be positive")
	}
	if c.Monitor.PollIntervalMillis < minPollIntervalMillis {
		return fmt.Errorf("monitor.poll_interval_ms must be at least %d", minPollIntervalMillis)
	}
	if c.Monitor.BatchTimeoutSeconds < 0 {
		return errors.New("monitor.batch_timeout_seconds must be zero (unbounded) or positive")
	}
	return nil
}

func (c *Config) validateCleanup() error {
	if c.Cleanup.Attempts < 1 {
		return errors.New("cleanup.attempts must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL, got %q", topic)
	}
	return nil
}
