package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResolution marks a source path that is neither a usable archive nor a
	// directory, or an archive that could not be extracted.
	ErrResolution = errors.New("resolution error")
	// ErrDirectoryNotFound marks a search directory that is missing at listing time.
	ErrDirectoryNotFound = errors.New("directory not found")
	// ErrItemLaunch marks a single item the OS open action rejected.
	ErrItemLaunch = errors.New("item launch error")
	// ErrProcessInspection marks a process that vanished or became inaccessible
	// while it was being sampled.
	ErrProcessInspection = errors.New("process inspection error")
	// ErrCleanup marks a staging directory that survived the removal retry budget.
	ErrCleanup = errors.New("cleanup error")
	// ErrTimeout marks a completion wait that exceeded its bound.
	ErrTimeout = errors.New("timeout")
	// ErrConfiguration marks invalid settings detected before a run starts.
	ErrConfiguration = errors.New("configuration error")
	// ErrBusy marks a run refused because another run holds the import lock.
	ErrBusy = errors.New("import already running")
	// ErrUnexpected is the catch-all for anything else that goes wrong mid-run.
	ErrUnexpected = errors.New("unexpected error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUnexpected
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err ends a run. Per-item launch failures, per-sample
// inspection failures and cleanup failures are recoverable; everything else,
// including unclassified errors, is fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrItemLaunch), errors.Is(err, ErrProcessInspection), errors.Is(err, ErrCleanup):
		return false
	default:
		return true
	}
}

// Marker returns the sentinel err is tagged with, or ErrUnexpected when err
// carries no known marker.
func Marker(err error) error {
	for _, marker := range []error{
		ErrResolution,
		ErrDirectoryNotFound,
		ErrItemLaunch,
		ErrProcessInspection,
		ErrCleanup,
		ErrTimeout,
		ErrConfiguration,
		ErrBusy,
	} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return ErrUnexpected
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "import failure"
	}
	return strings.Join(parts, ": ")
}
