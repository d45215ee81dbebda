package reader_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"yomu/internal/config"
	"yomu/internal/extension"
	"yomu/internal/library"
	"yomu/internal/reader"
	"yomu/internal/testsupport"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	cfg      *config.Config
	store    *library.Store
	registry *extension.Registry
	series   *library.Series
	chapters map[string]library.Chapter
	events   chan reader.PageEvent
	session  *reader.Session
}

// newFixture persists a three-chapter series backed by a fake source with the
// given page fixtures and opens a session on it.
func newFixture(t *testing.T, pageView, layout string, pages map[string][]byte) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t,
		testsupport.WithPreferredLanguages("en"),
		testsupport.WithReaderLayout(pageView, layout),
	)
	cfg.Reader.PreloadAmount = 0

	store := testsupport.MustOpenStore(t, cfg)
	series := testsupport.NewSeries(t, store, "fake", "abc", "Sample")

	persisted, err := store.UpsertChapters(context.Background(), []library.Chapter{
		{SourceID: "c1", ChapterNumber: "1", LanguageKey: "en", GroupName: "alpha"},
		{SourceID: "c2", ChapterNumber: "2", LanguageKey: "en", GroupName: "alpha"},
		{SourceID: "c3", ChapterNumber: "3", LanguageKey: "en", GroupName: "alpha"},
	}, series)
	if err != nil {
		t.Fatalf("UpsertChapters failed: %v", err)
	}

	registry := extension.NewRegistry()
	registry.Register(&testsupport.FakeSource{ID: "fake", Pages: pages})

	events := make(chan reader.PageEvent, 128)
	session, err := reader.NewSession(store, registry, cfg, testLogger(), func(evt reader.PageEvent) {
		events <- evt
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	byNumber := make(map[string]library.Chapter, len(persisted))
	for _, chapter := range persisted {
		byNumber[chapter.ChapterNumber] = chapter
	}

	return &fixture{
		cfg:      cfg,
		store:    store,
		registry: registry,
		series:   series,
		chapters: byNumber,
		events:   events,
		session:  session,
	}
}

func threePages() map[string][]byte {
	return map[string][]byte{
		"p1": []byte("one"),
		"p2": []byte("two"),
		"p3": []byte("three"),
	}
}

// drainUntilDone collects page events until the resolution for the session's
// current generation completes.
func (f *fixture) drainUntilDone(t *testing.T) []reader.PageEvent {
	t.Helper()

	timeout := time.After(5 * time.Second)
	var pages []reader.PageEvent
	for {
		select {
		case evt := <-f.events:
			if evt.Done {
				return pages
			}
			pages = append(pages, evt)
		case <-timeout:
			t.Fatal("timed out waiting for page resolution")
		}
	}
}

func (f *fixture) load(t *testing.T, chapterNumber string) {
	t.Helper()

	chapter, ok := f.chapters[chapterNumber]
	if !ok {
		t.Fatalf("no fixture chapter %q", chapterNumber)
	}
	if err := f.session.LoadChapter(context.Background(), chapter.ID); err != nil {
		t.Fatalf("LoadChapter failed: %v", err)
	}
	f.drainUntilDone(t)
}

func TestParsePageView(t *testing.T) {
	if _, err := reader.ParsePageView("double"); err != nil {
		t.Fatalf("ParsePageView(double) failed: %v", err)
	}
	if _, err := reader.ParsePageView("sideways"); err == nil {
		t.Fatal("expected error for unknown page view")
	}
	if _, err := reader.ParseLayoutDirection("vertical"); err == nil {
		t.Fatal("expected error for unknown layout direction")
	}
}

func TestLoadChapterResolvesPagesInOrder(t *testing.T) {
	f := newFixture(t, "single", "ltr", threePages())

	chapter := f.chapters["2"]
	if err := f.session.LoadChapter(context.Background(), chapter.ID); err != nil {
		t.Fatalf("LoadChapter failed: %v", err)
	}
	pages := f.drainUntilDone(t)

	if len(pages) != 3 {
		t.Fatalf("expected 3 page events, got %d", len(pages))
	}
	for i, evt := range pages {
		if evt.PageNumber != i+1 {
			t.Errorf("event %d: page %d, want %d", i, evt.PageNumber, i+1)
		}
		if evt.TotalPages != 3 {
			t.Errorf("event %d: total %d, want 3", i, evt.TotalPages)
		}
	}
	if f.session.State() != reader.StateLoaded {
		t.Fatal("expected loaded state")
	}
	if f.session.PageNumber() != 1 {
		t.Fatalf("page number = %d, want 1", f.session.PageNumber())
	}
	if f.session.LastPageNumber() != 3 {
		t.Fatalf("last page = %d, want 3", f.session.LastPageNumber())
	}

	relevant := f.session.RelevantChapters()
	if len(relevant) != 3 {
		t.Fatalf("relevant list has %d entries, want 3", len(relevant))
	}
	wantNumbers := []string{"3", "2", "1"}
	for i, want := range wantNumbers {
		if relevant[i].ChapterNumber != want {
			t.Errorf("relevant[%d] = %q, want %q", i, relevant[i].ChapterNumber, want)
		}
	}
}

func TestChangePageRTLSingleLeftAdvances(t *testing.T) {
	f := newFixture(t, "single", "rtl", threePages())
	f.load(t, "2")

	if err := f.session.ChangePage(context.Background(), true, false); err != nil {
		t.Fatalf("ChangePage failed: %v", err)
	}
	if got := f.session.PageNumber(); got != 2 {
		t.Fatalf("page = %d, want 2 (left advances when right-to-left)", got)
	}
}

func TestChangePageLTRDoubleStepsByTwo(t *testing.T) {
	f := newFixture(t, "double", "ltr", threePages())
	f.load(t, "2")

	if err := f.session.ChangePage(context.Background(), false, false); err != nil {
		t.Fatalf("ChangePage failed: %v", err)
	}
	if got := f.session.PageNumber(); got != 3 {
		t.Fatalf("page = %d, want 3", got)
	}
}

func TestChangePageToBound(t *testing.T) {
	f := newFixture(t, "single", "ltr", threePages())
	f.load(t, "2")

	if err := f.session.ChangePage(context.Background(), false, true); err != nil {
		t.Fatalf("ChangePage failed: %v", err)
	}
	if got := f.session.PageNumber(); got != 3 {
		t.Fatalf("page = %d, want last page 3", got)
	}
	if err := f.session.ChangePage(context.Background(), true, true); err != nil {
		t.Fatalf("ChangePage failed: %v", err)
	}
	if got := f.session.PageNumber(); got != 1 {
		t.Fatalf("page = %d, want 1", got)
	}
}

func TestPagePairDoubleOddStart(t *testing.T) {
	pages := map[string][]byte{
		"p1": []byte("1"), "p2": []byte("2"), "p3": []byte("3"),
		"p4": []byte("4"), "p5": []byte("5"), "p6": []byte("6"),
	}
	f := newFixture(t, "double-odd-start", "ltr", pages)
	f.load(t, "2")

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := f.session.ChangePage(ctx, false, false); err != nil {
			t.Fatalf("ChangePage failed: %v", err)
		}
	}
	if got := f.session.PageNumber(); got != 5 {
		t.Fatalf("page = %d, want 5", got)
	}

	first, second := f.session.PagePair()
	if first != 4 || second != 5 {
		t.Fatalf("pair = (%d, %d), want (4, 5)", first, second)
	}
}

func TestPagePairFirstPageSingleInOddStart(t *testing.T) {
	f := newFixture(t, "double-odd-start", "ltr", threePages())
	f.load(t, "2")

	first, second := f.session.PagePair()
	if first != 1 || second != 0 {
		t.Fatalf("pair = (%d, %d), want (1, 0)", first, second)
	}
}

func TestChangePageCascadesToNextChapter(t *testing.T) {
	f := newFixture(t, "single", "ltr", threePages())
	f.load(t, "2")

	ctx := context.Background()
	if err := f.session.ChangePage(ctx, false, true); err != nil {
		t.Fatalf("ChangePage failed: %v", err)
	}
	if err := f.session.ChangePage(ctx, false, false); err != nil {
		t.Fatalf("ChangePage failed: %v", err)
	}
	f.drainUntilDone(t)

	current := f.session.CurrentChapter()
	if current == nil || current.ChapterNumber != "3" {
		t.Fatalf("expected cascade into chapter 3, got %#v", current)
	}
	if got := f.session.PageNumber(); got != 1 {
		t.Fatalf("page = %d, want 1 after chapter change", got)
	}
}

func TestChangePageCascadesToPreviousChapter(t *testing.T) {
	f := newFixture(t, "single", "ltr", threePages())
	f.load(t, "2")

	if err := f.session.ChangePage(context.Background(), true, false); err != nil {
		t.Fatalf("ChangePage failed: %v", err)
	}
	f.drainUntilDone(t)

	current := f.session.CurrentChapter()
	if current == nil || current.ChapterNumber != "1" {
		t.Fatalf("expected cascade into chapter 1, got %#v", current)
	}
}

func TestChangePageClampsWithoutNeighbor(t *testing.T) {
	f := newFixture(t, "single", "ltr", threePages())
	f.load(t, "3")

	ctx := context.Background()
	if err := f.session.ChangePage(ctx, false, true); err != nil {
		t.Fatalf("ChangePage failed: %v", err)
	}
	if err := f.session.ChangePage(ctx, false, false); err != nil {
		t.Fatalf("ChangePage failed: %v", err)
	}

	current := f.session.CurrentChapter()
	if current == nil || current.ChapterNumber != "3" {
		t.Fatalf("expected to stay on chapter 3, got %#v", current)
	}
	if got := f.session.PageNumber(); got != 3 {
		t.Fatalf("page = %d, want clamp at last page 3", got)
	}
}

func TestChangeChapterNoNeighbor(t *testing.T) {
	f := newFixture(t, "single", "ltr", threePages())
	f.load(t, "3")

	changed, err := f.session.ChangeChapter(context.Background(), false)
	if err != nil {
		t.Fatalf("ChangeChapter failed: %v", err)
	}
	if changed {
		t.Fatal("expected no-op when no newer chapter exists")
	}
}

func TestExitClearsState(t *testing.T) {
	f := newFixture(t, "single", "ltr", threePages())
	f.load(t, "2")

	f.session.Exit()
	if f.session.State() != reader.StateEmpty {
		t.Fatal("expected empty state after exit")
	}
	if f.session.CurrentChapter() != nil || f.session.CurrentSeries() != nil {
		t.Fatal("expected chapter and series cleared")
	}
	if f.session.PageNumber() != 0 || f.session.LastPageNumber() != 0 {
		t.Fatal("expected page state cleared")
	}
}

func TestLoadChapterSupersedesPriorLoad(t *testing.T) {
	f := newFixture(t, "single", "ltr", threePages())

	ctx := context.Background()
	first := f.chapters["1"]
	second := f.chapters["2"]
	if err := f.session.LoadChapter(ctx, first.ID); err != nil {
		t.Fatalf("LoadChapter failed: %v", err)
	}
	if err := f.session.LoadChapter(ctx, second.ID); err != nil {
		t.Fatalf("LoadChapter failed: %v", err)
	}

	// Drain everything both loads emitted; events from the superseded load
	// carry an older generation.
	timeout := time.After(5 * time.Second)
	var latest uint64
	done := 0
	for done == 0 {
		select {
		case evt := <-f.events:
			if evt.Generation > latest {
				latest = evt.Generation
			}
			if evt.Done && evt.Generation == latest {
				done++
			}
		case <-timeout:
			t.Fatal("timed out waiting for page resolution")
		}
	}

	current := f.session.CurrentChapter()
	if current == nil || current.ID != second.ID {
		t.Fatalf("expected chapter 2 loaded, got %#v", current)
	}
}

func TestMarkReadCallbackInvokedOnLoad(t *testing.T) {
	f := newFixture(t, "single", "ltr", threePages())

	var marked []int64
	f.session.MarkRead = func(ctx context.Context, chapter *library.Chapter, series *library.Series) error {
		marked = append(marked, chapter.ID)
		return nil
	}

	f.load(t, "2")
	chapter := f.chapters["2"]
	if len(marked) != 1 || marked[0] != chapter.ID {
		t.Fatalf("marked = %v, want [%d]", marked, chapter.ID)
	}
}
