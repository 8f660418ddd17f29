// Package main hosts the oszimport CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once, builds the
// structured logger, and hands each subcommand a commandContext. The import
// command wires the staging resolver, batch runner, process monitor, history
// store, and notifier into a workflow.Orchestrator and renders its events to
// the terminal. The remaining commands inspect workers, staging directories,
// run history, and the environment.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
