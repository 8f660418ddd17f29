package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"oszimport/internal/events"
	"oszimport/internal/items"
	"oszimport/internal/launcher"
	"oszimport/internal/logging"
	"oszimport/internal/services"
)

// Progress tracks how far a run has advanced. Completed only grows, and only
// by whole batches.
type Progress struct {
	Batches   int
	Total     int
	Completed int
}

// ItemOutcome records what happened when an item was dispatched.
type ItemOutcome struct {
	Item  items.WorkItem
	Batch int
	Err   error
}

// Launched reports whether the OS accepted the open request.
func (o ItemOutcome) Launched() bool { return o.Err == nil }

// Result summarizes a Run call.
type Result struct {
	Progress
	State    State
	Outcomes []ItemOutcome
	// LaunchErrors aggregates every per-item launch failure, or is nil.
	LaunchErrors *multierror.Error
}

// LaunchFailures returns the number of items the OS refused to open.
func (r Result) LaunchFailures() int {
	if r.LaunchErrors == nil {
		return 0
	}
	return len(r.LaunchErrors.Errors)
}

// Runner drives batches through dispatch, wait and advance.
type Runner struct {
	Opener  launcher.Opener
	Counter WorkerCounter
	Sink    events.Sink
	// Pick defaults to PickRandom.
	Pick         Picker
	PollInterval time.Duration
	Timeout      time.Duration
	Settle       time.Duration
	// OnSample, when set, observes worker counts while a batch drains.
	OnSample func(batch, workers int)
	Logger   *slog.Logger
}

// Run launches work in batches of size and waits for each batch to drain.
// It returns a fatal error on cancellation, wait timeout, or a launcher error
// that is not a per-item failure. The returned Result is valid either way.
func (r *Runner) Run(ctx context.Context, work []items.WorkItem, size int) (Result, error) {
	batches := items.Partition(work, size)
	res := Result{
		Progress: Progress{Batches: len(batches), Total: len(work)},
		State:    StateLaunching,
	}
	if len(work) == 0 {
		res.State = StateEmpty
		return res, nil
	}

	sink := r.Sink
	if sink == nil {
		sink = events.Discard
	}
	pick := r.Pick
	if pick == nil {
		pick = PickRandom
	}
	runID, _ := services.RunIDFromContext(ctx)

	for i, batch := range batches {
		number := i + 1
		bctx := services.WithBatch(ctx, number)
		logger := logging.WithContext(bctx, logging.NewComponentLogger(r.Logger, "batch"))

		sink.Emit(bctx, events.Event{
			Kind:      events.KindBatchStarted,
			Time:      time.Now(),
			RunID:     runID,
			Message:   fmt.Sprintf("launching batch %d with %d item(s)", number, len(batch)),
			Batch:     number,
			Batches:   len(batches),
			BatchSize: len(batch),
			Completed: res.Completed,
			Total:     res.Total,
		})

		res.State = StateDispatch
		if err := r.dispatch(bctx, sink, runID, number, batch, &res, logger); err != nil {
			res.State = StateFailed
			return res, err
		}

		res.State = StateWaiting
		err := WaitForZero(bctx, r.Counter, WaitOptions{
			Interval: r.PollInterval,
			Timeout:  r.Timeout,
			Settle:   r.Settle,
			OnSample: r.sampleHook(number),
			Logger:   logger,
		})
		if err != nil {
			res.State = StateFailed
			return res, err
		}

		res.State = StateAdvance
		res.Completed += len(batch)
		sink.Emit(bctx, events.Event{
			Kind:      events.KindBatchCompleted,
			Time:      time.Now(),
			RunID:     runID,
			Message:   fmt.Sprintf("progress: %d/%d items imported", res.Completed, res.Total),
			Batch:     number,
			Batches:   len(batches),
			BatchSize: len(batch),
			Completed: res.Completed,
			Total:     res.Total,
		})
		representative := pick(batch)
		sink.Emit(bctx, events.Event{
			Kind:      events.KindItemImported,
			Time:      time.Now(),
			RunID:     runID,
			Message:   fmt.Sprintf("imported: %s", items.DisplayName(representative.Name)),
			Batch:     number,
			Completed: res.Completed,
			Total:     res.Total,
			Item:      representative.Name,
		})
		logger.Debug("batch drained",
			logging.Int("completed", res.Completed),
			logging.Int("total", res.Total),
			logging.String(logging.FieldEventType, "batch_drained"),
		)
	}

	res.State = StateCompleted
	return res, nil
}

func (r *Runner) dispatch(ctx context.Context, sink events.Sink, runID string, number int, batch []items.WorkItem, res *Result, logger *slog.Logger) error {
	for _, item := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.Opener.Open(ctx, item.Path)
		if err != nil && !errors.Is(err, services.ErrItemLaunch) {
			return err
		}
		res.Outcomes = append(res.Outcomes, ItemOutcome{Item: item, Batch: number, Err: err})
		if err == nil {
			logger.Debug("item launched", logging.String(logging.FieldItem, item.Name))
			continue
		}
		res.LaunchErrors = multierror.Append(res.LaunchErrors, err)
		sink.Emit(ctx, events.Event{
			Kind:      events.KindItemLaunchFailed,
			Time:      time.Now(),
			RunID:     runID,
			Message:   fmt.Sprintf("failed to launch %s", item.Name),
			Batch:     number,
			Completed: res.Completed,
			Total:     res.Total,
			Item:      item.Name,
			Err:       err,
		})
	}
	return nil
}

func (r *Runner) sampleHook(number int) func(int) {
	if r.OnSample == nil {
		return nil
	}
	return func(workers int) { r.OnSample(number, workers) }
}
