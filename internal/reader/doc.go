// Package reader tracks the reading position within a chapter and drives
// page and chapter navigation. Page data resolves progressively in the
// background so rendering can begin before a chapter finishes loading; a
// generation counter discards results from superseded loads.
package reader
