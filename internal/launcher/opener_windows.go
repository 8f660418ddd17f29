//go:build windows

package launcher

import (
	"log/slog"

	"golang.org/x/sys/windows"
)

const defaultCommand = ""

func systemOpen(_ *slog.Logger, path string) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	return windows.ShellExecute(0, verb, file, nil, nil, windows.SW_SHOWNORMAL)
}
