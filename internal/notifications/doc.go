// Package notifications delivers push notifications for library events via
// ntfy. A noop implementation stands in when no topic is configured so
// callers never branch on availability.
package notifications
