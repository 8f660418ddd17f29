//go:build !windows

package staging

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isLockViolation(err error) bool {
	return errors.Is(err, unix.EBUSY) || errors.Is(err, unix.ETXTBSY)
}
