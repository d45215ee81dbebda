// Package covers caches series cover art in a local thumbnail directory.
package covers
