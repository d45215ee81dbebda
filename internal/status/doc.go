// Package status carries the human-readable progress strings emitted while
// the library reconciles. The hub keeps a bounded history for late consumers
// and delivers events to sinks synchronously, preserving batch order.
package status
