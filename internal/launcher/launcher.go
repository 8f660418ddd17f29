package launcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"oszimport/internal/logging"
	"oszimport/internal/services"
)

// Opener performs the OS "open" action on a single item.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) error

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context, path string) error { return f(ctx, path) }

// New returns a CommandOpener when command is non-empty and the platform
// SystemOpener otherwise.
func New(command []string, logger *slog.Logger) Opener {
	logger = logging.NewComponentLogger(logger, "launcher")
	if len(command) > 0 {
		return &CommandOpener{Argv: append([]string(nil), command...), Logger: logger}
	}
	return &SystemOpener{Logger: logger}
}

// SystemOpener uses the platform default open action.
type SystemOpener struct {
	Logger *slog.Logger
}

// Open implements Opener.
func (o *SystemOpener) Open(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkItem(path); err != nil {
		return err
	}
	if err := systemOpen(o.Logger, path); err != nil {
		return services.Wrap(services.ErrItemLaunch, "launcher", "open", path, err)
	}
	return nil
}

// CommandOpener starts Argv with the item path appended.
type CommandOpener struct {
	Argv   []string
	Logger *slog.Logger
}

// Open implements Opener.
func (o *CommandOpener) Open(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(o.Argv) == 0 || strings.TrimSpace(o.Argv[0]) == "" {
		return services.Wrap(services.ErrConfiguration, "launcher", "open", "launcher command is empty", nil)
	}
	if err := checkItem(path); err != nil {
		return err
	}
	argv := append(append([]string(nil), o.Argv...), path)
	if err := startDetached(o.Logger, argv); err != nil {
		return services.Wrap(services.ErrItemLaunch, "launcher", "open", path, err)
	}
	return nil
}

// DefaultCommand reports the helper binary the platform opener relies on, or
// an empty string when the open action is a system call.
func DefaultCommand() string {
	return defaultCommand
}

func checkItem(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrItemLaunch, "launcher", "open", fmt.Sprintf("%s: file vanished", path), err)
		}
		return services.Wrap(services.ErrItemLaunch, "launcher", "open", path, err)
	}
	if !info.Mode().IsRegular() {
		return services.Wrap(services.ErrItemLaunch, "launcher", "open", fmt.Sprintf("%s: not a regular file", path), nil)
	}
	return nil
}

// startDetached starts argv without waiting for it and reaps it in the
// background so no zombie is left behind.
func startDetached(logger *slog.Logger, argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // argv comes from config or the platform default
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil && logger != nil {
			logger.Debug("open helper exited with error",
				logging.String("command", argv[0]),
				logging.Error(err),
			)
		}
	}()
	return nil
}
