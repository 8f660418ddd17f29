// Package notifications pushes import milestones to ntfy.
//
// The ntfy implementation posts plain-text messages with Title, Tags and
// Priority headers to the configured topic URL. When no topic is configured,
// NewService returns a no-op so callers never need to nil-check. The
// [notifications] import and errors switches silence the corresponding
// messages without disabling the test command.
package notifications
