// Package notifications delivers push notifications for session lifecycle
// events via ntfy. When no topic is configured every notification is a
// silent no-op, so callers never branch on configuration.
package notifications
