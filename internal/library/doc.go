// Package library defines the persisted data model (Series, Chapter) and the
// SQLite store that owns it.
//
// The Store exposes per-series scoped operations only: read-all-chapters,
// upsert-series, upsert-chapters, delete-chapters. Reconciliation relies on
// that scoping to stay safe while the batch loop runs sequentially; no
// operation here ever touches another series' rows.
//
// Store-layer failures are fatal to the operation in progress and propagate to
// the caller. Treat this package as the single source of truth for library
// persistence semantics; schema changes bump the version in schema.go.
package library
