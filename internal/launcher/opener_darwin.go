//go:build darwin

package launcher

import "log/slog"

const defaultCommand = "open"

func systemOpen(logger *slog.Logger, path string) error {
	return startDetached(logger, []string{defaultCommand, path})
}
