package testsupport

import (
	"context"
	"fmt"
	"sort"

	"yomu/internal/extension"
	"yomu/internal/library"
)

// FakeSource is a scriptable content source for tests. Errors, when set, are
// returned in place of the corresponding fixture data.
type FakeSource struct {
	ID   string
	Name string

	Series   *library.Series
	Chapters []library.Chapter
	Pages    map[string][]byte

	SeriesErr   error
	ChaptersErr error
	PagesErr    error

	FetchSeriesCalls   int
	FetchChaptersCalls int
}

var _ extension.Source = (*FakeSource)(nil)

func (f *FakeSource) Metadata() extension.Metadata {
	return extension.Metadata{ID: f.ID, Name: f.Name}
}

func (f *FakeSource) FetchSeries(ctx context.Context, sourceID string) (*library.Series, error) {
	f.FetchSeriesCalls++
	if f.SeriesErr != nil {
		return nil, f.SeriesErr
	}
	if f.Series == nil {
		return nil, fmt.Errorf("series %s: %w", sourceID, extension.ErrFetchFailed)
	}
	clone := *f.Series
	clone.SourceID = sourceID
	return &clone, nil
}

func (f *FakeSource) FetchChapters(ctx context.Context, sourceID string) ([]library.Chapter, error) {
	f.FetchChaptersCalls++
	if f.ChaptersErr != nil {
		return nil, f.ChaptersErr
	}
	out := make([]library.Chapter, len(f.Chapters))
	copy(out, f.Chapters)
	return out, nil
}

func (f *FakeSource) FetchPageRequesterData(ctx context.Context, seriesSourceID, chapterSourceID string) (*extension.PageRequesterData, error) {
	if f.PagesErr != nil {
		return nil, f.PagesErr
	}
	names := make([]string, 0, len(f.Pages))
	for name := range f.Pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return &extension.PageRequesterData{Hash: chapterSourceID, PageNames: names}, nil
}

func (f *FakeSource) PageURLs(data *extension.PageRequesterData) []string {
	return append([]string(nil), data.PageNames...)
}

func (f *FakeSource) PageData(ctx context.Context, series *library.Series, url string) ([]byte, error) {
	if f.PagesErr != nil {
		return nil, f.PagesErr
	}
	data, ok := f.Pages[url]
	if !ok {
		return nil, fmt.Errorf("page %s: %w", url, extension.ErrFetchFailed)
	}
	return data, nil
}
