// Package events carries run status and progress from the import pipeline to
// whatever front-end is attached.
//
// The pipeline never writes to a terminal directly; it emits Events to a Sink
// supplied by the caller. Kinds follow the "category.action" convention. For
// a run with items, the order is items.found, then for each batch
// batch.started, any item.launch_failed, batch.completed and item.imported,
// and finally run.finished or run.failed. The terminal event is always last.
// run.warning and status events may precede it and carry things like a
// staging directory that could not be removed.
package events
