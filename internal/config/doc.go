// Package config loads, normalizes, and validates oszimport configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OSZIMPORT_NTFY_TOPIC. The Config type centralizes every knob the importer and
// CLI need, so staging/log/state directories, monitor thresholds, and retry
// budgets are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extensions, and clear validation errors.
package config
