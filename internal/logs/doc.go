// Package logs reads back the structured JSON log file written by the
// logging package.
//
// Tail returns the last N lines with bounded memory, Follow streams lines
// appended after an offset until its context ends, and Parse/Filter/Format
// turn raw JSON records into terminal-friendly lines scoped to one run or a
// minimum level. The "oszimport logs" command is built on these helpers.
package logs
