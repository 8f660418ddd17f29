package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"oszimport/internal/batch"
	"oszimport/internal/events"
	"oszimport/internal/history"
	"oszimport/internal/items"
	"oszimport/internal/logging"
	"oszimport/internal/notifications"
	"oszimport/internal/services"
	"oszimport/internal/staging"
)

// Request describes one import run.
type Request struct {
	SourcePath string
	BatchSize  int
	Extension  string
	Recursive  bool
}

func (r Request) validate() error {
	if r.BatchSize <= 0 {
		return services.Wrap(services.ErrConfiguration, "workflow", "validate", fmt.Sprintf("batch size must be positive (got %d)", r.BatchSize), nil)
	}
	if strings.TrimSpace(r.Extension) == "" {
		return services.Wrap(services.ErrConfiguration, "workflow", "validate", "item extension is empty", nil)
	}
	return nil
}

// Outcome reports how a run ended. It is populated on every exit path.
type Outcome struct {
	RunID string
	// State is Completed, Empty or Failed once Run returns.
	State          batch.State
	Progress       batch.Progress
	LaunchFailures int
	Area           staging.Area
	// CleanupErr is set when the staging area survived removal. It does not
	// affect State.
	CleanupErr error
	Duration   time.Duration
}

// Resolver turns the requested path into a staging area.
type Resolver interface {
	Resolve(ctx context.Context, path string) (staging.Area, error)
}

// Lister enumerates work items in a directory.
type Lister interface {
	List(dir, ext string, recursive bool) ([]items.WorkItem, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(dir, ext string, recursive bool) ([]items.WorkItem, error)

// List implements Lister.
func (f ListerFunc) List(dir, ext string, recursive bool) ([]items.WorkItem, error) {
	return f(dir, ext, recursive)
}

// BatchRunner launches work in batches and waits for each to drain.
type BatchRunner interface {
	Run(ctx context.Context, work []items.WorkItem, size int) (batch.Result, error)
}

// Releaser tears down a staging area.
type Releaser interface {
	Release(ctx context.Context, area staging.Area) error
}

// RunRecorder persists run history.
type RunRecorder interface {
	BeginRun(ctx context.Context, run history.Run) error
	RecordItems(ctx context.Context, runID string, outcomes []history.Item) error
	FinishRun(ctx context.Context, run history.Run) error
}

// Orchestrator wires the import pipeline together. Resolver, Runner and
// Cleaner are required; the rest are optional.
type Orchestrator struct {
	Resolver Resolver
	// Lister defaults to items.List.
	Lister   Lister
	Runner   BatchRunner
	Cleaner  Releaser
	Sink     events.Sink
	History  RunRecorder
	Notifier notifications.Service
	Logger   *slog.Logger
	// NewRunID defaults to a random UUID.
	NewRunID func() string
	Now      func() time.Time
}

// Run executes one import. It returns a non-nil error for every fatal
// outcome; the Outcome is valid either way.
func (o *Orchestrator) Run(ctx context.Context, req Request) (out Outcome, err error) {
	runID := o.newRunID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(o.Logger, "orchestrator"))
	sink := o.Sink
	if sink == nil {
		sink = events.Discard
	}
	started := o.now()
	out = Outcome{RunID: runID, State: batch.StateIdle}

	var result batch.Result
	defer func() {
		if r := recover(); r != nil {
			logger.Error("import run panicked",
				logging.String("panic", fmt.Sprint(r)),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldEventType, "run_panic"),
				logging.Alert("panic"),
			)
			err = services.Wrap(services.ErrUnexpected, "workflow", "run", fmt.Sprintf("panic: %v", r), nil)
		}
		out.CleanupErr = o.release(ctx, logger, sink, runID, out.Area)
		out.Duration = o.now().Sub(started)
		if err != nil {
			out.State = batch.StateFailed
		}
		o.finish(ctx, logger, sink, req, &out, result, err)
	}()

	logger.Info("import run started",
		logging.String("source", req.SourcePath),
		logging.Int("batch_size", req.BatchSize),
		logging.String(logging.FieldEventType, "run_started"),
	)
	o.recordBegin(ctx, logger, req, runID, started)

	if vErr := req.validate(); vErr != nil {
		return out, vErr
	}

	out.State = batch.StateStaging
	area, rErr := o.Resolver.Resolve(ctx, req.SourcePath)
	if rErr != nil {
		return out, rErr
	}
	out.Area = area

	out.State = batch.StateListing
	lister := o.Lister
	if lister == nil {
		lister = ListerFunc(items.List)
	}
	work, lErr := lister.List(area.Dir, req.Extension, req.Recursive)
	if lErr != nil {
		return out, lErr
	}

	total := len(work)
	out.Progress = batch.Progress{Total: total, Batches: len(items.Partition(work, req.BatchSize))}
	sink.Emit(ctx, events.Event{
		Kind:    events.KindItemsFound,
		Time:    o.now(),
		RunID:   runID,
		Message: fmt.Sprintf("%d %s item(s) found", total, req.Extension),
		Batches: out.Progress.Batches,
		Total:   total,
	})
	if total == 0 {
		out.State = batch.StateEmpty
		return out, nil
	}
	o.notify(ctx, logger, "start", func(n notifications.Service, nctx context.Context) error {
		return n.NotifyImportStarted(nctx, req.SourcePath, total)
	})

	out.State = batch.StateLaunching
	var runErr error
	result, runErr = o.Runner.Run(ctx, work, req.BatchSize)
	out.Progress = result.Progress
	out.LaunchFailures = result.LaunchFailures()
	out.State = result.State
	if runErr != nil {
		return out, runErr
	}
	return out, nil
}

func (o *Orchestrator) release(ctx context.Context, logger *slog.Logger, sink events.Sink, runID string, area staging.Area) error {
	if o.Cleaner == nil {
		return nil
	}
	err := o.Cleaner.Release(context.WithoutCancel(ctx), area)
	if err == nil {
		if area.Temporary {
			sink.Emit(ctx, events.Event{
				Kind:    events.KindStatus,
				Time:    o.now(),
				RunID:   runID,
				Message: fmt.Sprintf("removed temporary directory %s", area.Dir),
			})
		}
		return nil
	}
	sink.Emit(ctx, events.Event{
		Kind:    events.KindRunWarning,
		Time:    o.now(),
		RunID:   runID,
		Message: fmt.Sprintf("temporary directory %s could not be removed", area.Dir),
		Err:     err,
	})
	logging.WarnWithContext(logger, "staging cleanup incomplete", "staging_cleanup_failed",
		logging.String("dir", area.Dir),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "close the target application and run oszimport staging clean"),
		logging.String(logging.FieldImpact, "temporary files remain on disk"),
	)
	return err
}

func (o *Orchestrator) finish(ctx context.Context, logger *slog.Logger, sink events.Sink, req Request, out *Outcome, result batch.Result, runErr error) {
	progress := out.Progress
	if runErr != nil {
		sink.Emit(ctx, events.Event{
			Kind:      events.KindRunFailed,
			Time:      o.now(),
			RunID:     out.RunID,
			Message:   failureMessage(runErr),
			Completed: progress.Completed,
			Total:     progress.Total,
			Err:       runErr,
		})
		logging.ErrorWithContext(logger, "import run failed", "run_failed",
			logging.Error(runErr),
			logging.String("state", out.State.String()),
			logging.Int("completed", progress.Completed),
			logging.Int("total", progress.Total),
			logging.String(logging.FieldErrorHint, failureHint(runErr)),
		)
		o.notify(ctx, logger, "error", func(n notifications.Service, nctx context.Context) error {
			return n.NotifyError(nctx, runErr, req.SourcePath)
		})
	} else {
		sink.Emit(ctx, events.Event{
			Kind:      events.KindRunFinished,
			Time:      o.now(),
			RunID:     out.RunID,
			Message:   fmt.Sprintf("finished: %d/%d successful", progress.Completed, progress.Total),
			Completed: progress.Completed,
			Total:     progress.Total,
		})
		logger.Info("import run finished",
			logging.Int("completed", progress.Completed),
			logging.Int("total", progress.Total),
			logging.Int("launch_failures", out.LaunchFailures),
			logging.Duration("duration", out.Duration.Round(time.Millisecond)),
			logging.String("state", out.State.String()),
			logging.String(logging.FieldEventType, "run_finished"),
		)
		if progress.Total > 0 {
			o.notify(ctx, logger, "completion", func(n notifications.Service, nctx context.Context) error {
				return n.NotifyImportCompleted(nctx, notifications.Summary{
					Source:         req.SourcePath,
					Completed:      progress.Completed,
					Total:          progress.Total,
					LaunchFailures: out.LaunchFailures,
					Duration:       out.Duration,
				})
			})
		}
	}
	o.recordFinish(ctx, logger, out, result, runErr)
}

func (o *Orchestrator) notify(ctx context.Context, logger *slog.Logger, kind string, send func(notifications.Service, context.Context) error) {
	if o.Notifier == nil {
		return
	}
	if err := send(o.Notifier, context.WithoutCancel(ctx)); err != nil {
		logger.Debug("notification failed",
			logging.String("notification", kind),
			logging.Error(err),
		)
	}
}

func (o *Orchestrator) recordBegin(ctx context.Context, logger *slog.Logger, req Request, runID string, started time.Time) {
	if o.History == nil {
		return
	}
	if err := o.History.BeginRun(context.WithoutCancel(ctx), history.Run{
		ID:        runID,
		Source:    req.SourcePath,
		BatchSize: req.BatchSize,
		StartedAt: started,
	}); err != nil {
		warnHistory(logger, "record run start", err)
	}
}

func (o *Orchestrator) recordFinish(ctx context.Context, logger *slog.Logger, out *Outcome, result batch.Result, runErr error) {
	if o.History == nil {
		return
	}
	hctx := context.WithoutCancel(ctx)

	if len(result.Outcomes) > 0 {
		records := make([]history.Item, 0, len(result.Outcomes))
		for i, outcome := range result.Outcomes {
			record := history.Item{
				Position: i,
				Batch:    outcome.Batch,
				Name:     outcome.Item.Name,
				Launched: outcome.Launched(),
			}
			if outcome.Err != nil {
				record.Error = outcome.Err.Error()
			}
			records = append(records, record)
		}
		if err := o.History.RecordItems(hctx, out.RunID, records); err != nil {
			warnHistory(logger, "record item outcomes", err)
		}
	}

	run := history.Run{
		ID:             out.RunID,
		StagingDir:     out.Area.Dir,
		Temporary:      out.Area.Temporary,
		Status:         historyStatus(out.State),
		Total:          out.Progress.Total,
		Completed:      out.Progress.Completed,
		LaunchFailures: out.LaunchFailures,
		FinishedAt:     o.now(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if out.CleanupErr != nil {
		run.CleanupError = out.CleanupErr.Error()
	}
	if err := o.History.FinishRun(hctx, run); err != nil {
		warnHistory(logger, "record run result", err)
	}
}

func warnHistory(logger *slog.Logger, op string, err error) {
	logging.WarnWithContext(logger, "run history update failed", "history_write_failed",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check state_dir permissions or run with --no-history"),
		logging.String(logging.FieldImpact, "this run is missing from oszimport history"),
	)
}

func historyStatus(state batch.State) history.Status {
	switch state {
	case batch.StateCompleted:
		return history.StatusCompleted
	case batch.StateEmpty:
		return history.StatusEmpty
	default:
		return history.StatusFailed
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "import cancelled"
	case errors.Is(err, services.ErrTimeout):
		return "import stopped: workers did not finish in time"
	default:
		return fmt.Sprintf("import failed: %v", err)
	}
}

func failureHint(err error) string {
	switch services.Marker(err) {
	case services.ErrResolution:
		return "pass a directory or a readable .zip archive"
	case services.ErrDirectoryNotFound:
		return "check the path exists and is a directory"
	case services.ErrTimeout:
		return "check the target application is running or raise monitor.batch_timeout_seconds"
	case services.ErrConfiguration:
		return "run oszimport config validate"
	default:
		return "check logs for details"
	}
}

func (o *Orchestrator) newRunID() string {
	if o.NewRunID != nil {
		if id := strings.TrimSpace(o.NewRunID()); id != "" {
			return id
		}
	}
	return uuid.NewString()
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
