package extension

import (
	"context"
	"errors"

	"yomu/internal/library"
)

var (
	// ErrUnavailable indicates the requested content source is not loaded.
	ErrUnavailable = errors.New("extension unavailable")
	// ErrFetchFailed indicates a network or parse failure from a content source.
	ErrFetchFailed = errors.New("fetch failed")
)

// Metadata describes a content source.
type Metadata struct {
	ID   string
	Name string
}

// PageRequesterData carries source-specific values needed to resolve page
// URLs for one chapter. Callers treat it as opaque and pass it straight back
// to the source that produced it.
type PageRequesterData struct {
	Server    string
	Hash      string
	PageNames []string
}

// Source is a pluggable content source providing fetch/parse operations for
// series, chapters, and pages. Any call may fail; failures are reported to the
// caller, never retried here.
type Source interface {
	Metadata() Metadata

	// FetchSeries returns the source's current description of a series. The
	// returned series has no local identifier.
	FetchSeries(ctx context.Context, sourceID string) (*library.Series, error)

	// FetchChapters returns the source's current chapter listing. The same
	// chapter number may appear multiple times across groups and languages.
	FetchChapters(ctx context.Context, sourceID string) ([]library.Chapter, error)

	// FetchPageRequesterData resolves a chapter to the opaque data needed to
	// build page URLs.
	FetchPageRequesterData(ctx context.Context, seriesSourceID, chapterSourceID string) (*PageRequesterData, error)

	// PageURLs derives the ordered page URL list from requester data.
	PageURLs(data *PageRequesterData) []string

	// PageData fetches the bytes for one page URL.
	PageData(ctx context.Context, series *library.Series, url string) ([]byte, error)
}
