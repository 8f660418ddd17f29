// Package procmon counts the short-lived worker processes the target
// application spawns while it imports items.
//
// A worker is any process whose name equals the configured process name and
// whose resident memory is strictly below the configured threshold. The main
// application instance normally sits well above the threshold, so it is not
// counted. The heuristic has two known blind spots: a freshly started main
// instance still under the threshold is counted, and a worker that grows past
// the threshold is missed.
//
// Processes that exit or deny access between enumeration and inspection are
// skipped. Only a failure to enumerate the process table at all is reported
// to callers.
package procmon
