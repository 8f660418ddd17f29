// Package workflow sequences a single import run.
//
// The Orchestrator resolves the source into a staging area, lists the work
// items, hands them to the batch runner, and finally releases the staging
// area. It translates every outcome into events for the attached sink and a
// final tally of completed over total items.
//
// Recoverable problems (an item the OS would not open, a staging directory
// that could not be removed) become events and never change the outcome.
// Fatal problems (an unusable source, a missing directory, a wait timeout,
// cancellation, or anything unexpected including a panic) end the run with a
// run.failed event and an error. Either way the staging area is released
// exactly once, using a context that survives cancellation.
//
// Each run gets a UUID that is stamped on logs, events and the history
// record.
package workflow
