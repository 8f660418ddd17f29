// Package batch launches work items in fixed-size batches and waits for the
// target application's import workers to drain between batches.
//
// Each batch goes through three steps. Dispatch opens every item through a
// launcher.Opener; a per-item launch failure is recorded and does not stop
// the batch. Waiting polls a WorkerCounter until it reports zero, bounded by
// a timeout and the caller's context. Advance adds the batch size to the
// completed count and reports a representative item.
//
// Completed counts dispatched items. The application gives no per-item
// confirmation, so the runner cannot tell a finished import from one that was
// silently rejected. Per-item launch outcomes are kept separately in Result.
package batch
