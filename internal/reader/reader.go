package reader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"yomu/internal/chapterid"
	"yomu/internal/config"
	"yomu/internal/extension"
	"yomu/internal/library"
)

// PageView controls how many physical pages are shown per reading position.
type PageView int

const (
	PageViewSingle PageView = iota
	PageViewDouble
	PageViewDoubleOddStart
)

// ParsePageView maps a configuration string to a page view mode.
func ParsePageView(value string) (PageView, error) {
	switch value {
	case "single":
		return PageViewSingle, nil
	case "double":
		return PageViewDouble, nil
	case "double-odd-start":
		return PageViewDoubleOddStart, nil
	}
	return PageViewSingle, fmt.Errorf("unknown page view %q", value)
}

// LayoutDirection is the reading direction of the content.
type LayoutDirection int

const (
	LayoutLTR LayoutDirection = iota
	LayoutRTL
)

// ParseLayoutDirection maps a configuration string to a layout direction.
func ParseLayoutDirection(value string) (LayoutDirection, error) {
	switch value {
	case "ltr":
		return LayoutLTR, nil
	case "rtl":
		return LayoutRTL, nil
	}
	return LayoutLTR, fmt.Errorf("unknown layout direction %q", value)
}

// State is the reading session's lifecycle state.
type State int

const (
	StateEmpty State = iota
	StateLoaded
)

// PageEvent announces that one page of the current chapter became available.
// Consumers must discard events whose generation does not match the session's
// current generation. A final event with Done set and no data marks the end
// of resolution for a generation.
type PageEvent struct {
	SessionID  string
	Generation uint64
	PageNumber int
	TotalPages int
	Data       []byte
	Done       bool
}

// MarkReadFunc records a chapter as read when the reader opens it.
type MarkReadFunc func(ctx context.Context, chapter *library.Chapter, series *library.Series) error

// Session tracks the current page and chapter and drives chapter transitions
// through the relevant chapter list. It reads from the store but never writes
// to it; marking chapters read is delegated to the MarkRead callback.
type Session struct {
	id       string
	store    *library.Store
	registry *extension.Registry
	logger   *slog.Logger
	sink     func(PageEvent)

	languages library.LanguageSet
	pageView  PageView
	layout    LayoutDirection
	preload   int

	// MarkRead, when set, is invoked after a chapter loads unread.
	MarkRead MarkReadFunc

	mu   sync.Mutex
	cond *sync.Cond

	state          State
	generation     uint64
	cancel         context.CancelFunc
	series         *library.Series
	chapter        *library.Chapter
	relevant       []library.Chapter
	pageNumber     int
	lastPageNumber int
	loading        bool
}

// NewSession builds a reading session from the reader configuration. The sink
// receives a PageEvent per resolved page and may be nil.
func NewSession(store *library.Store, registry *extension.Registry, cfg *config.Config, logger *slog.Logger, sink func(PageEvent)) (*Session, error) {
	pageView, err := ParsePageView(cfg.Reader.PageView)
	if err != nil {
		return nil, err
	}
	layout, err := ParseLayoutDirection(cfg.Reader.LayoutDirection)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = func(PageEvent) {}
	}

	s := &Session{
		id:        uuid.NewString(),
		store:     store,
		registry:  registry,
		logger:    logger.With("component", "reader"),
		sink:      sink,
		languages: library.NewLanguageSet(cfg.Library.PreferredLanguages),
		pageView:  pageView,
		layout:    layout,
		preload:   cfg.Reader.PreloadAmount,
		state:     StateEmpty,
	}
	s.cond = sync.NewCond(&s.mu)
	return s, nil
}

// ID identifies this session in emitted page events.
func (s *Session) ID() string { return s.id }

// Generation identifies the current chapter load. Page events carrying an
// older generation are stale and must be discarded by consumers.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PageNumber returns the current 1-indexed page, or 0 when empty.
func (s *Session) PageNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageNumber
}

// LastPageNumber returns the chapter's page count, or 0 until page references
// have resolved.
func (s *Session) LastPageNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPageNumber
}

// CurrentChapter returns the loaded chapter, or nil when empty.
func (s *Session) CurrentChapter() *library.Chapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapter
}

// CurrentSeries returns the loaded series, or nil when empty.
func (s *Session) CurrentSeries() *library.Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.series
}

// RelevantChapters returns the navigation list, newest number first.
func (s *Session) RelevantChapters() []library.Chapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]library.Chapter, len(s.relevant))
	copy(out, s.relevant)
	return out
}

// LoadChapter opens a chapter for reading. It reads the series and chapter
// from the store, rebuilds the navigation list when the series changed, resets
// the page position, and starts resolving page data in the background. Any
// in-flight page resolution from a previous load is superseded.
func (s *Session) LoadChapter(ctx context.Context, chapterID int64) error {
	chapter, err := s.store.GetChapter(ctx, chapterID)
	if err != nil {
		return err
	}
	if chapter == nil {
		return fmt.Errorf("chapter %d not found", chapterID)
	}
	series, err := s.store.GetSeries(ctx, chapter.SeriesID)
	if err != nil {
		return err
	}
	if series == nil {
		return fmt.Errorf("series %d not found", chapter.SeriesID)
	}
	source, err := s.registry.Get(series.ExtensionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	sameSeries := s.series != nil && s.series.ID == series.ID
	if !sameSeries || len(s.relevant) == 0 {
		s.mu.Unlock()
		all, err := s.store.ListSeriesChapters(ctx, series.ID)
		if err != nil {
			return err
		}
		relevant := chapterid.BuildRelevantList(all, *chapter, s.languages)
		s.mu.Lock()
		s.relevant = relevant
	}

	s.supersedeLocked()
	loadCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = StateLoaded
	s.series = series
	s.chapter = chapter
	s.pageNumber = 1
	s.lastPageNumber = 0
	generation := s.generation
	s.loading = true
	s.mu.Unlock()

	go s.resolvePages(loadCtx, generation, source, series, chapter)

	if !chapter.Read && s.MarkRead != nil {
		if err := s.MarkRead(ctx, chapter, series); err != nil {
			s.logger.Warn("mark read failed", "chapter", chapter.SourceID, "error", err)
		}
	}
	return nil
}

// ChangePage moves the reading position by one step. The step is one page in
// single view and two in double views, moving opposite to the visual arrow
// when the layout is right to left. toBound jumps to the first or last page
// instead. A step past either end does not clamp silently: it first attempts
// the adjacent chapter, and clamps only when no neighbor exists.
func (s *Session) ChangePage(ctx context.Context, left, toBound bool) error {
	s.mu.Lock()
	if s.state != StateLoaded {
		s.mu.Unlock()
		return nil
	}

	delta := 1
	if left {
		delta = -1
	}
	if s.layout == LayoutRTL {
		delta = -delta
	}

	if toBound {
		if delta < 0 {
			s.pageNumber = 1
		} else if s.lastPageNumber > 0 {
			s.pageNumber = s.lastPageNumber
		}
		s.cond.Broadcast()
		s.mu.Unlock()
		return nil
	}

	if s.pageView != PageViewSingle {
		delta *= 2
	}

	target := s.pageNumber + delta
	last := s.lastPageNumber

	if last > 0 && target > last {
		s.mu.Unlock()
		changed, err := s.ChangeChapter(ctx, false)
		if err != nil {
			return err
		}
		if !changed {
			s.mu.Lock()
			s.pageNumber = s.lastPageNumber
			s.cond.Broadcast()
			s.mu.Unlock()
		}
		return nil
	}
	if target < 1 {
		s.mu.Unlock()
		changed, err := s.ChangeChapter(ctx, true)
		if err != nil {
			return err
		}
		if !changed {
			s.mu.Lock()
			s.pageNumber = 1
			s.cond.Broadcast()
			s.mu.Unlock()
		}
		return nil
	}

	s.pageNumber = target
	s.cond.Broadcast()
	s.mu.Unlock()
	return nil
}

// ChangeChapter moves one slot through the navigation list. The list is
// ordered newest number first, so the previous chapter sits at a higher index.
// It reports false without loading anything when no neighbor exists.
func (s *Session) ChangeChapter(ctx context.Context, previous bool) (bool, error) {
	s.mu.Lock()
	if s.state != StateLoaded || s.chapter == nil {
		s.mu.Unlock()
		return false, nil
	}

	index := -1
	for i := range s.relevant {
		if s.relevant[i].ID == s.chapter.ID {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return false, nil
	}

	target := index - 1
	if previous {
		target = index + 1
	}
	if target < 0 || target >= len(s.relevant) {
		s.mu.Unlock()
		return false, nil
	}
	next := s.relevant[target]
	s.mu.Unlock()

	if err := s.LoadChapter(ctx, next.ID); err != nil {
		return false, err
	}
	return true, nil
}

// PagePair returns the physical pages shown at the current position. The
// second value is 0 when only one page is shown. In odd-start double view the
// current page sits on the right, so page 5 pairs with page 4.
func (s *Session) PagePair() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return 0, 0
	}

	switch s.pageView {
	case PageViewDouble:
		second := s.pageNumber + 1
		if s.lastPageNumber > 0 && second > s.lastPageNumber {
			return s.pageNumber, 0
		}
		return s.pageNumber, second
	case PageViewDoubleOddStart:
		first := s.pageNumber - 1
		if first < 1 {
			return s.pageNumber, 0
		}
		return first, s.pageNumber
	default:
		return s.pageNumber, 0
	}
}

// Exit clears all loaded state and discards in-flight page resolution.
func (s *Session) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
	s.state = StateEmpty
	s.series = nil
	s.chapter = nil
	s.relevant = nil
	s.pageNumber = 0
	s.lastPageNumber = 0
}

// supersedeLocked invalidates any in-flight page resolution. Stale goroutines
// observe the generation bump and drop their results.
func (s *Session) supersedeLocked() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loading = false
	s.cond.Broadcast()
}
