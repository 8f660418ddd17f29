package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"oszimport/internal/config"
	"oszimport/internal/deps"
	"oszimport/internal/launcher"
	"oszimport/internal/procmon"
	"oszimport/internal/staging"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckLauncher verifies the binary used to open items is on PATH. An empty
// command falls back to the platform opener.
func CheckLauncher(command []string) Result {
	const name = "Item opener"

	binary := launcher.DefaultCommand()
	if len(command) > 0 {
		binary = strings.TrimSpace(command[0])
	} else if binary == "" {
		return Result{Name: name, Passed: true, Detail: "shell open (no helper binary)"}
	}

	status := deps.CheckBinaries([]deps.Requirement{{
		Name:        name,
		Command:     binary,
		Description: "Opens each item with the target application",
	}})[0]
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	return Result{Name: name, Passed: true, Detail: status.Path}
}

// CheckProcessMonitor verifies the process table can be read and reports how
// many matching processes are running. Finding none is not a failure.
func CheckProcessMonitor(ctx context.Context, monitor *procmon.Monitor) Result {
	const name = "Process monitor"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	samples, err := monitor.Snapshot(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cannot enumerate processes (%v)", err)}
	}
	workers := 0
	for _, s := range samples {
		if s.Worker {
			workers++
		}
	}
	if len(samples) == 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("no %q processes running", monitor.Name)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d %q process(es), %d busy importing", len(samples), monitor.Name, workers)}
}

// CheckStaleStaging reports temporary directories older than maxAge that a
// previous run left behind. It is advisory.
func CheckStaleStaging(stagingDir string, maxAge time.Duration) Result {
	const name = "Staging leftovers"

	dirs, err := staging.ListDirectories(stagingDir)
	if err != nil {
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("cannot list %s (%v)", stagingDir, err)}
	}
	stale := 0
	cutoff := time.Now().Add(-maxAge)
	for _, d := range dirs {
		if d.ModTime.Before(cutoff) {
			stale++
		}
	}
	if stale == 0 {
		return Result{Name: name, Passed: true, Advisory: true, Detail: fmt.Sprintf("%d temporary director(ies), none stale", len(dirs))}
	}
	return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("%d stale temporary director(ies); run oszimport staging clean", stale)}
}

// CheckNotifications reports whether ntfy delivery is configured. It is
// advisory and sends nothing.
func CheckNotifications(cfg *config.Config) Result {
	const name = "Notifications"

	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Result{Name: name, Passed: true, Advisory: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Advisory: true, Detail: topic}
}
