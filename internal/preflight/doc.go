// Package preflight provides readiness checks for the filesystem paths,
// helper binaries, and process inspection that oszimport depends on.
//
// These checks run in two contexts:
//   - The import command calls RunAll before touching the source and refuses
//     to start when a required check fails.
//   - The CLI "oszimport doctor" command prints every Result as a table.
//
// Checks never mutate state; directories that do not exist yet are reported,
// not created.
package preflight
