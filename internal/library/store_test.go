package library_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"yomu/internal/library"
	"yomu/internal/testsupport"
)

func TestUpsertSeriesAssignsID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	series, err := store.UpsertSeries(ctx, &library.Series{
		ExtensionID: "webdex",
		SourceID:    "abc",
		Title:       "Sample Series",
		Status:      library.StatusOngoing,
		AltTitles:   []string{"Alt"},
		UserTags:    []string{"favorite"},
	})
	if err != nil {
		t.Fatalf("UpsertSeries failed: %v", err)
	}
	if series.ID == 0 {
		t.Fatal("expected series ID to be assigned")
	}

	fetched, err := store.GetSeries(ctx, series.ID)
	if err != nil {
		t.Fatalf("GetSeries failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Sample Series" {
		t.Fatalf("unexpected fetched series: %#v", fetched)
	}
	if len(fetched.UserTags) != 1 || fetched.UserTags[0] != "favorite" {
		t.Fatalf("user tags not round-tripped: %#v", fetched.UserTags)
	}

	found, err := store.FindSeriesBySource(ctx, "webdex", "abc")
	if err != nil {
		t.Fatalf("FindSeriesBySource failed: %v", err)
	}
	if found == nil || found.ID != series.ID {
		t.Fatalf("expected to find inserted series, got %#v", found)
	}
}

func TestUpsertSeriesUpdatesExisting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	series := testsupport.NewSeries(t, store, "webdex", "abc", "Old Title")
	series.Title = "New Title"
	updated, err := store.UpsertSeries(ctx, series)
	if err != nil {
		t.Fatalf("UpsertSeries update failed: %v", err)
	}
	if updated.ID != series.ID {
		t.Fatalf("update changed ID: %d -> %d", series.ID, updated.ID)
	}

	all, err := store.ListSeries(ctx)
	if err != nil {
		t.Fatalf("ListSeries failed: %v", err)
	}
	if len(all) != 1 || all[0].Title != "New Title" {
		t.Fatalf("unexpected series list: %#v", all)
	}
}

func TestUpsertChaptersRequiresPersistedSeries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.UpsertChapters(context.Background(), []library.Chapter{{SourceID: "c1"}}, &library.Series{})
	if !errors.Is(err, library.ErrNotPersisted) {
		t.Fatalf("expected ErrNotPersisted, got %v", err)
	}
}

func TestDeleteSeriesCascades(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	series := testsupport.NewSeries(t, store, "webdex", "abc", "Sample")
	chapters, err := store.UpsertChapters(ctx, []library.Chapter{
		{SourceID: "c1", ChapterNumber: "1", LanguageKey: "en", Time: time.Now()},
		{SourceID: "c2", ChapterNumber: "2", LanguageKey: "en", Time: time.Now()},
	}, series)
	if err != nil {
		t.Fatalf("UpsertChapters failed: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}

	deleted, err := store.DeleteSeries(ctx, series.ID)
	if err != nil {
		t.Fatalf("DeleteSeries failed: %v", err)
	}
	if !deleted {
		t.Fatal("expected series to be deleted")
	}

	remaining, err := store.ListSeriesChapters(ctx, series.ID)
	if err != nil {
		t.Fatalf("ListSeriesChapters failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected cascade delete, found %d chapters", len(remaining))
	}
}

func TestUpdateNumberUnread(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	series := testsupport.NewSeries(t, store, "webdex", "abc", "Sample")
	_, err := store.UpsertChapters(ctx, []library.Chapter{
		{SourceID: "c1", ChapterNumber: "1", LanguageKey: "en"},
		{SourceID: "c2", ChapterNumber: "2", LanguageKey: "en", Read: true},
		{SourceID: "c3", ChapterNumber: "2", LanguageKey: "ja"},
	}, series)
	if err != nil {
		t.Fatalf("UpsertChapters failed: %v", err)
	}

	unread, err := store.UpdateNumberUnread(ctx, series, library.NewLanguageSet([]string{"en"}))
	if err != nil {
		t.Fatalf("UpdateNumberUnread failed: %v", err)
	}
	if unread != 1 {
		t.Fatalf("expected 1 unread in preferred languages, got %d", unread)
	}

	fetched, err := store.GetSeries(ctx, series.ID)
	if err != nil {
		t.Fatalf("GetSeries failed: %v", err)
	}
	if fetched.NumberUnread != 1 {
		t.Fatalf("persisted NumberUnread = %d, want 1", fetched.NumberUnread)
	}

	// Empty set counts every language.
	unread, err = store.UpdateNumberUnread(ctx, series, nil)
	if err != nil {
		t.Fatalf("UpdateNumberUnread failed: %v", err)
	}
	if unread != 2 {
		t.Fatalf("expected 2 unread across all languages, got %d", unread)
	}
}

func TestCountUnread(t *testing.T) {
	chapters := []library.Chapter{
		{LanguageKey: "en"},
		{LanguageKey: "en", Read: true},
		{LanguageKey: "ja"},
	}
	if got := library.CountUnread(chapters, library.NewLanguageSet([]string{"en"})); got != 1 {
		t.Fatalf("CountUnread(en) = %d, want 1", got)
	}
	if got := library.CountUnread(chapters, nil); got != 2 {
		t.Fatalf("CountUnread(all) = %d, want 2", got)
	}
}
