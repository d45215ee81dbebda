package testsupport

import (
	"context"
	"testing"

	"yomu/internal/config"
	"yomu/internal/library"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewSeries persists a minimal series for tests using the provided store.
func NewSeries(t testing.TB, store *library.Store, extensionID, sourceID, title string) *library.Series {
	t.Helper()

	series, err := store.UpsertSeries(context.Background(), &library.Series{
		ExtensionID: extensionID,
		SourceID:    sourceID,
		Title:       title,
	})
	if err != nil {
		t.Fatalf("store.UpsertSeries: %v", err)
	}
	return series
}
