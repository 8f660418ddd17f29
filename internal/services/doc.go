// Package services defines shared error markers and context helpers consumed by
// the import pipeline and its external integrations.
//
// Key responsibilities:
//   - Sentinel error markers plus the Wrap helper so every component reports
//     failures with the same shape, and IsFatal so the orchestrator can decide
//     whether a condition ends the run or is merely reported.
//   - Context helpers that stamp run IDs, batch numbers, and component names
//     for logging.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error classification, observability) stays uniform across components.
package services
