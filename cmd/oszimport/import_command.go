package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"oszimport/internal/batch"
	"oszimport/internal/config"
	"oszimport/internal/events"
	"oszimport/internal/history"
	"oszimport/internal/launcher"
	"oszimport/internal/logging"
	"oszimport/internal/notifications"
	"oszimport/internal/preflight"
	"oszimport/internal/procmon"
	"oszimport/internal/runlock"
	"oszimport/internal/staging"
	"oszimport/internal/workflow"
)

type importOptions struct {
	jsonOutput bool
	noHistory  bool
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var batchSize int
	var timeout time.Duration
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Import every item in a directory or zip archive",
		Long: `Open every item under <path> with the target application in batches,
waiting for each batch to finish importing before starting the next.

<path> may be a directory or a zip archive. Archives are extracted into a
temporary directory under staging_dir that is removed when the run ends.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCfg := *cfg
			if cmd.Flags().Changed("batch-size") {
				runCfg.Import.BatchSize = batchSize
			}
			if cmd.Flags().Changed("timeout") {
				runCfg.Monitor.BatchTimeoutSeconds = int((timeout + time.Second - 1) / time.Second)
			}
			if err := runCfg.Validate(); err != nil {
				return err
			}
			return runImport(cmd, ctx, &runCfg, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 0, "Items opened per batch (overrides import.batch_size)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up when a batch is still importing after this long; 0 waits forever")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Emit events as JSON lines instead of console output")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this run in the history database")
	return cmd
}

func runImport(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, source string, opts importOptions) error {
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: "*.log",
		Exclude: []string{cfg.LogPath()},
	})

	if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, r := range failed {
			details = append(details, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
		return fmt.Errorf("preflight failed (run oszimport doctor):\n  %s", strings.Join(details, "\n  "))
	}

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	sourcePath, err := config.ExpandPath(source)
	if err != nil {
		return fmt.Errorf("resolve source path: %w", err)
	}

	var console *consoleSink
	var front events.Sink
	if opts.jsonOutput {
		front = events.NewJSONSink(cmd.OutOrStdout())
	} else {
		console = newConsoleSink(cmd.OutOrStdout())
		front = console
	}
	sink := events.Multi(events.LogSink{Logger: logging.NewComponentLogger(logger, "events")}, front)

	orch := buildOrchestrator(cfg, logger, sink)
	if console != nil {
		orch.Runner.(*batch.Runner).OnSample = console.workers
	}
	if cfg.History.Enabled && !opts.noHistory {
		store, err := history.OpenFromConfig(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions or pass --no-history"),
				logging.String(logging.FieldImpact, "this run will not appear in oszimport history"),
			)
		} else {
			defer store.Close()
			orch.History = store
		}
	}

	out, runErr := orch.Run(cmd.Context(), workflow.Request{
		SourcePath: sourcePath,
		BatchSize:  cfg.Import.BatchSize,
		Extension:  cfg.Import.Extension,
		Recursive:  cfg.Import.Recursive,
	})
	if console != nil && orch.History != nil {
		fmt.Fprintln(cmd.OutOrStdout(), console.p.faint(fmt.Sprintf("run %s (oszimport history show %s)", out.RunID, shortID(out.RunID))))
	}
	if runErr != nil {
		return fmt.Errorf("import %s: %w", sourcePath, runErr)
	}
	return nil
}

// buildOrchestrator wires the production components for cfg. History is left
// for the caller to attach.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger, sink events.Sink) *workflow.Orchestrator {
	monitor := procmon.New(cfg.Monitor.ProcessName, cfg.WorkerMemoryThreshold(), logger)
	runner := &batch.Runner{
		Opener:       launcher.New(cfg.Launcher.Command, logger),
		Counter:      monitor,
		Sink:         sink,
		PollInterval: cfg.PollInterval(),
		Timeout:      cfg.BatchTimeout(),
		Settle:       cfg.SettleDelay(),
		Logger:       logger,
	}
	return &workflow.Orchestrator{
		Resolver: &staging.Resolver{
			StagingDir:        cfg.Paths.StagingDir,
			ArchiveExtensions: cfg.Import.ArchiveExtensions,
			Logger:            logger,
		},
		Runner: runner,
		Cleaner: &staging.Cleaner{
			Attempts: cfg.Cleanup.Attempts,
			Delay:    cfg.CleanupDelay(),
			Logger:   logger,
		},
		Sink:     sink,
		Notifier: notifications.NewService(cfg),
		Logger:   logger,
	}
}
