// Package items discovers importable work items in a staging directory and
// splits them into launch batches.
//
// Listing is a single flat scan by default; matching is a case-sensitive
// suffix test against the configured item extension. Partition preserves
// enumeration order so batch k always covers the same slice of the list.
package items
