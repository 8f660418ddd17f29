package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	StateDir   string `toml:"state_dir"`
}

// Import contains configuration for item discovery and batching.
type Import struct {
	Extension         string   `toml:"extension"`
	ArchiveExtensions []string `toml:"archive_extensions"`
	BatchSize         int      `toml:"batch_size"`
	Recursive         bool     `toml:"recursive"`
}

// Monitor contains configuration for worker-process completion detection.
type Monitor struct {
	ProcessName         string `toml:"process_name"`
	WorkerMemoryMaxMiB  int    `toml:"worker_memory_max_mib"`
	PollIntervalMillis  int    `toml:"poll_interval_ms"`
	BatchTimeoutSeconds int    `toml:"batch_timeout_seconds"`
	SettleDelayMillis   int    `toml:"settle_delay_ms"`
}

// Launcher overrides the OS default open action with an explicit command. The
// item path is appended as the final argument.
type Launcher struct {
	Command []string `toml:"command"`
}

// Cleanup contains configuration for staging directory removal.
type Cleanup struct {
	Attempts        int `toml:"attempts"`
	DelayMillis     int `toml:"delay_ms"`
	StaleAfterHours int `toml:"stale_after_hours"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Import         bool   `toml:"import"`
	Errors         bool   `toml:"errors"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for oszimport.
//
// Configuration sections by subsystem:
//   - Paths: staging, log, and state directories
//   - Import: item extension, archive formats, batch size
//   - Monitor: target process name, worker memory threshold, poll cadence
//   - Launcher: optional explicit open command
//   - Cleanup: removal retry budget and stale staging threshold
//   - Notifications: ntfy push notification settings
//   - History: run history database toggle
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Import        Import        `toml:"import"`
	Monitor       Monitor       `toml:"monitor"`
	Launcher      Launcher      `toml:"launcher"`
	Cleanup       Cleanup       `toml:"cleanup"`
	Notifications Notifications `toml:"notifications"`
	History       History       `toml:"history"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/oszimport/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("oszimport.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the importer writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WorkerMemoryThreshold returns the resident-memory bound below which a target
// process counts as an import worker.
func (c *Config) WorkerMemoryThreshold() uint64 {
	return uint64(c.Monitor.WorkerMemoryMaxMiB) * 1024 * 1024
}

// PollInterval returns the process-table sampling interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.PollIntervalMillis) * time.Millisecond
}

// BatchTimeout returns the per-batch completion wait bound. Zero means unbounded.
func (c *Config) BatchTimeout() time.Duration {
	return time.Duration(c.Monitor.BatchTimeoutSeconds) * time.Second
}

// SettleDelay returns the pause between dispatching a batch and the first sample.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Monitor.SettleDelayMillis) * time.Millisecond
}

// CleanupDelay returns the fixed delay between staging removal attempts.
func (c *Config) CleanupDelay() time.Duration {
	return time.Duration(c.Cleanup.DelayMillis) * time.Millisecond
}

// StaleAfter returns the age past which leftover staging directories are pruned.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Cleanup.StaleAfterHours) * time.Hour
}

// HistoryPath returns the run history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the single-run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "oszimport.lock")
}

// LogPath returns the structured log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "oszimport.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
