// Package history persists a record of every import run in SQLite.
//
// Each run stores its source, batch size, final status and tally, plus one
// row per dispatched item noting whether the OS accepted the open request.
// The record fills the gap left by the completion heuristic: the run's
// Completed count says how many items were dispatched, while the item rows
// say which of them failed to launch.
//
// The schema is created on first open and guarded by a version number; a
// mismatch is reported rather than migrated.
package history
