// Package logging assembles structured slog loggers and formatting helpers used
// across oszimport.
//
// It owns the console and JSON handlers, fans records out to the terminal and
// the persistent log file, and exposes context-aware helpers so pipeline code
// can tag log lines with run IDs, batch numbers, and component names. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
