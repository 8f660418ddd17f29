// Package staging owns the on-disk area an import run reads items from.
//
// Resolve turns the user's path into an Area. Archives are extracted into a
// fresh import-* directory under the configured staging_dir and marked
// temporary; directories are used in place. Release removes a temporary area,
// retrying while another process still holds files open, and reports a
// CleanupError when the directory survives every attempt.
//
// CleanStale and ListDirectories look after import-* directories left behind
// by earlier runs that were killed or could not clean up.
package staging
