package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"oszimport/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OSZIMPORT_NTFY_TOPIC", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "oszimport", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Import.Extension != ".osz" {
		t.Fatalf("unexpected extension: %q", cfg.Import.Extension)
	}
	if len(cfg.Import.ArchiveExtensions) != 1 || cfg.Import.ArchiveExtensions[0] != ".zip" {
		t.Fatalf("unexpected archive extensions: %v", cfg.Import.ArchiveExtensions)
	}
	if cfg.Import.BatchSize != 5 {
		t.Fatalf("unexpected batch size: %d", cfg.Import.BatchSize)
	}
	if cfg.Monitor.ProcessName != "osu!.exe" {
		t.Fatalf("unexpected process name: %q", cfg.Monitor.ProcessName)
	}
	if got := cfg.WorkerMemoryThreshold(); got != 80*1024*1024 {
		t.Fatalf("unexpected worker memory threshold: %d", got)
	}
	if got := cfg.PollInterval(); got != 200*time.Millisecond {
		t.Fatalf("unexpected poll interval: %v", got)
	}
	if got := cfg.BatchTimeout(); got != 10*time.Minute {
		t.Fatalf("unexpected batch timeout: %v", got)
	}
	if cfg.Cleanup.Attempts != 5 || cfg.CleanupDelay() != time.Second {
		t.Fatalf("unexpected cleanup policy: %d attempts, %v delay", cfg.Cleanup.Attempts, cfg.CleanupDelay())
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected no ntfy topic by default, got %q", cfg.Notifications.NtfyTopic)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if filepath.Dir(cfg.HistoryPath()) != cfg.Paths.StateDir {
		t.Fatalf("history db should live in state dir, got %q", cfg.HistoryPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "oszimport.toml")

	type payload struct {
		Import struct {
			Extension         string   `toml:"extension"`
			ArchiveExtensions []string `toml:"archive_extensions"`
			BatchSize         int      `toml:"batch_size"`
		} `toml:"import"`
		Monitor struct {
			ProcessName         string `toml:"process_name"`
			BatchTimeoutSeconds int    `toml:"batch_timeout_seconds"`
		} `toml:"monitor"`
		Launcher struct {
			Command []string `toml:"command"`
		} `toml:"launcher"`
	}
	custom := payload{}
	custom.Import.Extension = "osk"
	custom.Import.ArchiveExtensions = []string{"ZIP", ".zip", " .7z "}
	custom.Import.BatchSize = 3
	custom.Monitor.ProcessName = " osu! "
	custom.Monitor.BatchTimeoutSeconds = 0
	custom.Launcher.Command = []string{"wine", " ", "osu!.exe"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Import.Extension != ".osk" {
		t.Fatalf("expected extension to gain a leading dot, got %q", cfg.Import.Extension)
	}
	if strings.Join(cfg.Import.ArchiveExtensions, ",") != ".zip,.7z" {
		t.Fatalf("expected normalized archive extensions, got %v", cfg.Import.ArchiveExtensions)
	}
	if cfg.Import.BatchSize != 3 {
		t.Fatalf("expected batch size 3, got %d", cfg.Import.BatchSize)
	}
	if cfg.Monitor.ProcessName != "osu!" {
		t.Fatalf("expected trimmed process name, got %q", cfg.Monitor.ProcessName)
	}
	if cfg.BatchTimeout() != 0 {
		t.Fatalf("expected unbounded batch timeout, got %v", cfg.BatchTimeout())
	}
	if strings.Join(cfg.Launcher.Command, " ") != "wine osu!.exe" {
		t.Fatalf("expected blank launcher args dropped, got %v", cfg.Launcher.Command)
	}
}

func TestEnvFallbackForNtfyTopic(t *testing.T) {
	t.Setenv("OSZIMPORT_NTFY_TOPIC", "https://ntfy.example/imports")
	configPath := filepath.Join(t.TempDir(), "missing.toml")

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/imports" {
		t.Fatalf("expected topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative batch", func(c *config.Config) { c.Import.BatchSize = -1 }, "import.batch_size"},
		{"zero batch", func(c *config.Config) { c.Import.BatchSize = 0 }, "import.batch_size"},
		{"extension separator", func(c *config.Config) { c.Import.Extension = "a/b" }, "import.extension"},
		{"archive equals item", func(c *config.Config) { c.Import.ArchiveExtensions = []string{".osz"} }, "archive_extensions"},
		{"memory", func(c *config.Config) { c.Monitor.WorkerMemoryMaxMiB = -5 }, "worker_memory_max_mib"},
		{"poll", func(c *config.Config) { c.Monitor.PollIntervalMillis = 1 }, "poll_interval_ms"},
		{"timeout", func(c *config.Config) { c.Monitor.BatchTimeoutSeconds = -1 }, "batch_timeout_seconds"},
		{"attempts", func(c *config.Config) { c.Cleanup.Attempts = -2 }, "cleanup.attempts"},
		{"topic", func(c *config.Config) { c.Notifications.NtfyTopic = "imports" }, "ntfy_topic"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateAcceptsLargeBatch(t *testing.T) {
	cfg := config.Default()
	cfg.Import.BatchSize = 100
	if err := cfg.Validate(); err != nil {
		t.Fatalf("batch size 100 rejected: %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Import.BatchSize != config.Default().Import.BatchSize {
		t.Fatalf("sample config should keep defaults, got batch size %d", cfg.Import.BatchSize)
	}
}
