package extension

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"yomu/internal/library"
)

// FilesystemID is the registry identifier of the local-folder source.
const FilesystemID = "filesystem"

// Chapter directories are named like "Chapter 12", "c12.5", or just "12.5 -
// Something"; the first number wins.
var chapterNumberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// FilesystemSource serves series from local directories. A series' source
// identifier is the absolute path of a directory whose subdirectories are
// chapters and whose files inside those are pages.
//
// The series record for a filesystem series is locally authoritative: callers
// skip FetchSeries during reconciliation and only regenerate the chapter list.
type FilesystemSource struct {
	language string
}

// NewFilesystemSource builds the local-folder source. Chapters it generates
// carry the provided language key.
func NewFilesystemSource(language string) *FilesystemSource {
	if strings.TrimSpace(language) == "" {
		language = "en"
	}
	return &FilesystemSource{language: language}
}

// Metadata implements Source.
func (f *FilesystemSource) Metadata() Metadata {
	return Metadata{ID: FilesystemID, Name: "Local Folders"}
}

// FetchSeries implements Source. The returned series only carries the fields
// derivable from the directory itself; everything else is user-edited locally.
func (f *FilesystemSource) FetchSeries(_ context.Context, sourceID string) (*library.Series, error) {
	info, err := os.Stat(sourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrFetchFailed, sourceID, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrFetchFailed, sourceID)
	}
	return &library.Series{
		ExtensionID:      FilesystemID,
		SourceID:         sourceID,
		Title:            filepath.Base(sourceID),
		Status:           library.StatusOngoing,
		OriginalLanguage: f.language,
	}, nil
}

// FetchChapters implements Source by walking the series directory. Each
// subdirectory containing at least one image becomes a chapter; the directory
// path is its stable source identifier.
func (f *FilesystemSource) FetchChapters(_ context.Context, sourceID string) ([]library.Chapter, error) {
	entries, err := os.ReadDir(sourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir %s: %w", ErrFetchFailed, sourceID, err)
	}

	var chapters []library.Chapter
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirPath := filepath.Join(sourceID, entry.Name())
		pages, err := listPageFiles(dirPath)
		if err != nil {
			return nil, err
		}
		if len(pages) == 0 {
			continue
		}

		chapter := library.Chapter{
			SourceID:      dirPath,
			Title:         entry.Name(),
			ChapterNumber: chapterNumberPattern.FindString(entry.Name()),
			LanguageKey:   f.language,
		}
		if info, err := entry.Info(); err == nil {
			chapter.Time = info.ModTime()
		}
		chapters = append(chapters, chapter)
	}

	sort.Slice(chapters, func(i, j int) bool { return chapters[i].SourceID < chapters[j].SourceID })
	return chapters, nil
}

// FetchPageRequesterData implements Source; the page names are the image file
// names inside the chapter directory.
func (f *FilesystemSource) FetchPageRequesterData(_ context.Context, _, chapterSourceID string) (*PageRequesterData, error) {
	pages, err := listPageFiles(chapterSourceID)
	if err != nil {
		return nil, err
	}
	return &PageRequesterData{Server: chapterSourceID, PageNames: pages}, nil
}

// PageURLs implements Source.
func (f *FilesystemSource) PageURLs(data *PageRequesterData) []string {
	if data == nil {
		return nil
	}
	urls := make([]string, len(data.PageNames))
	for i, name := range data.PageNames {
		urls[i] = filepath.Join(data.Server, name)
	}
	return urls
}

// PageData implements Source by reading the page file.
func (f *FilesystemSource) PageData(_ context.Context, _ *library.Series, url string) ([]byte, error) {
	data, err := os.ReadFile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: read page %s: %w", ErrFetchFailed, url, err)
	}
	return data, nil
}

func listPageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir %s: %w", ErrFetchFailed, dir, err)
	}
	var pages []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imageExtensions[ext]; ok {
			pages = append(pages, entry.Name())
		}
	}
	sort.Strings(pages)
	return pages, nil
}
