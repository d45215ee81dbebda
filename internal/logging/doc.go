// Package logging wires log/slog with a compact console handler and a JSON
// handler, selected by configuration. Components attach a "component"
// attribute that the console handler promotes into the message prefix.
package logging
