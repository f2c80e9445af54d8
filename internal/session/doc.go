// Package session persists rendering sessions and parameter presets in a
// SQLite database under the configured session directory. A file lock
// guards the directory so concurrent soundcraft processes cannot interleave
// writes.
package session
