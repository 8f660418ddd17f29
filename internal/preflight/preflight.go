package preflight

import (
	"context"

	"oszimport/internal/config"
	"oszimport/internal/procmon"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Advisory results are informational and never block an import.
	Advisory bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckLauncher(cfg.Launcher.Command))

	monitor := procmon.New(cfg.Monitor.ProcessName, cfg.WorkerMemoryThreshold(), nil)
	results = append(results, CheckProcessMonitor(ctx, monitor))

	results = append(results, CheckStaleStaging(cfg.Paths.StagingDir, cfg.StaleAfter()))
	results = append(results, CheckNotifications(cfg))

	return results
}

// Failed returns the blocking results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Advisory {
			failed = append(failed, r)
		}
	}
	return failed
}
