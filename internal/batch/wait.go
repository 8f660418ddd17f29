package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"oszimport/internal/logging"
	"oszimport/internal/services"
)

// DefaultPollInterval is used when WaitOptions.Interval is not positive.
const DefaultPollInterval = 200 * time.Millisecond

// WorkerCounter reports how many import workers are currently alive.
type WorkerCounter interface {
	Count(ctx context.Context) (int, error)
}

// CounterFunc adapts a function to the WorkerCounter interface.
type CounterFunc func(ctx context.Context) (int, error)

// Count implements WorkerCounter.
func (f CounterFunc) Count(ctx context.Context) (int, error) { return f(ctx) }

// WaitOptions bounds a WaitForZero call.
type WaitOptions struct {
	Interval time.Duration
	// Timeout of zero waits indefinitely.
	Timeout time.Duration
	// Settle delays the first sample so freshly launched workers can appear.
	Settle time.Duration
	// OnSample, when set, observes every successful sample.
	OnSample func(workers int)
	Logger   *slog.Logger
}

// WaitForZero polls counter until it reports zero workers. It samples once
// immediately (after Settle) and then every Interval. A failed sample is
// logged and polling continues. It returns ctx.Err() on cancellation and an
// ErrTimeout-marked error when Timeout elapses first.
func WaitForZero(ctx context.Context, counter WorkerCounter, opts WaitOptions) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	var deadline <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	timedOut := func() error {
		return services.Wrap(services.ErrTimeout, "batch", "wait", fmt.Sprintf("workers still running after %s", opts.Timeout), nil)
	}

	if opts.Settle > 0 {
		settle := time.NewTimer(opts.Settle)
		select {
		case <-ctx.Done():
			settle.Stop()
			return ctx.Err()
		case <-deadline:
			settle.Stop()
			return timedOut()
		case <-settle.C:
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failures := 0
	for {
		workers, err := counter.Count(ctx)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			failures++
			logger.Warn("worker sample failed; retrying",
				logging.Error(err),
				logging.Int("consecutive_failures", failures),
				logging.String(logging.FieldEventType, "worker_sample_failed"),
				logging.String(logging.FieldErrorHint, "check that the process table is readable"),
				logging.String(logging.FieldImpact, "completion check delayed until the next poll"),
			)
		case workers <= 0:
			if opts.OnSample != nil {
				opts.OnSample(0)
			}
			return nil
		default:
			failures = 0
			if opts.OnSample != nil {
				opts.OnSample(workers)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return timedOut()
		case <-ticker.C:
		}
	}
}
