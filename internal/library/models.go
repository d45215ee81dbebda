package library

import (
	"strings"
	"time"
)

// SeriesStatus represents the publication state reported by the content source.
type SeriesStatus string

const (
	StatusOngoing   SeriesStatus = "ongoing"
	StatusCompleted SeriesStatus = "completed"
	StatusCancelled SeriesStatus = "cancelled"
)

var statusSet = map[SeriesStatus]struct{}{
	StatusOngoing:   {},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ParseSeriesStatus converts a string into a known SeriesStatus.
func ParseSeriesStatus(value string) (SeriesStatus, bool) {
	normalized := SeriesStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Series is a tracked work sourced from exactly one content extension.
//
// ID is zero until the series has been persisted. NumberUnread is a cached
// value recomputed from the chapter set after every mutation; it is never a
// source of truth.
type Series struct {
	ID               int64
	ExtensionID      string
	SourceID         string
	Title            string
	AltTitles        []string
	Description      string
	Authors          []string
	Tags             []string
	Status           SeriesStatus
	OriginalLanguage string
	NumberUnread     int
	RemoteCoverURL   string
	UserTags         []string
	TrackerKeys      map[string]string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Persisted reports whether the series has a local identifier.
func (s *Series) Persisted() bool {
	return s != nil && s.ID != 0
}

// Chapter is one releasable unit of a series from one source release.
//
// SourceID is stable across re-fetches of the same release and, together with
// the owning series, uniquely identifies a chapter. Multiple chapters may share
// a chapter number (duplicate releases by different groups or languages).
type Chapter struct {
	ID            int64
	SeriesID      int64
	SourceID      string
	Title         string
	ChapterNumber string
	VolumeNumber  string
	LanguageKey   string
	GroupName     string
	Time          time.Time
	Read          bool
}

// Persisted reports whether the chapter has a local identifier.
func (c *Chapter) Persisted() bool {
	return c != nil && c.ID != 0
}

// LanguageSet is the caller-supplied preferred-language filter. An empty set
// matches every language.
type LanguageSet map[string]struct{}

// NewLanguageSet builds a LanguageSet from BCP-47 tags.
func NewLanguageSet(tags []string) LanguageSet {
	set := make(LanguageSet, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			set[strings.ToLower(tag)] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the language key matches the set.
func (s LanguageSet) Contains(languageKey string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[strings.ToLower(strings.TrimSpace(languageKey))]
	return ok
}

// CountUnread returns the number of unread chapters whose language is in the
// preferred set. This is the definition of Series.NumberUnread.
func CountUnread(chapters []Chapter, languages LanguageSet) int {
	count := 0
	for _, chapter := range chapters {
		if !chapter.Read && languages.Contains(chapter.LanguageKey) {
			count++
		}
	}
	return count
}
