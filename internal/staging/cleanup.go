package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"

	"oszimport/internal/logging"
	"oszimport/internal/services"
)

// Cleaner removes temporary staging areas with bounded retry.
type Cleaner struct {
	// Attempts is the total number of removal attempts, at least one.
	Attempts int
	Delay    time.Duration
	// Remove defaults to os.RemoveAll.
	Remove func(path string) error
	Logger *slog.Logger
}

// Release removes area when it is temporary. Lock and permission failures are
// retried up to Attempts times with a fixed Delay; any other failure stops
// immediately. The returned error is marked ErrCleanup and names the leftover
// directory.
func (c *Cleaner) Release(ctx context.Context, area Area) error {
	if !area.Temporary || area.Dir == "" {
		return nil
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(c.Logger, "staging"))

	attempts, err := c.removeWithRetry(ctx, area.Dir, logger)
	if err != nil {
		return services.Wrap(services.ErrCleanup, "staging", "cleanup",
			fmt.Sprintf("temporary directory %s left behind after %d attempt(s)", area.Dir, attempts), err)
	}
	logger.Info("temporary directory removed",
		logging.String("dir", area.Dir),
		logging.Int("attempts", attempts),
		logging.String(logging.FieldEventType, "staging_cleanup"),
	)
	return nil
}

func (c *Cleaner) removeWithRetry(ctx context.Context, dir string, logger *slog.Logger) (int, error) {
	remove := c.Remove
	if remove == nil {
		remove = os.RemoveAll
	}
	maxTries := max(c.Attempts, 1)

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		err := remove(dir)
		switch {
		case err == nil:
			return struct{}{}, nil
		case retryable(err):
			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(c.Delay)),
		backoff.WithMaxTries(uint(maxTries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("staging directory locked; retrying",
				logging.String("dir", dir),
				logging.Int("attempt", attempts),
				logging.Duration("retry_in", next),
				logging.Error(err),
			)
		}),
	)
	return attempts, err
}

// retryable reports whether a removal failure looks like transient lock
// contention rather than a permanent problem.
func retryable(err error) bool {
	return errors.Is(err, fs.ErrPermission) || isLockViolation(err)
}
