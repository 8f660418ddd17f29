//go:build windows

package staging

import (
	"errors"

	"golang.org/x/sys/windows"
)

func isLockViolation(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) || errors.Is(err, windows.ERROR_LOCK_VIOLATION)
}
