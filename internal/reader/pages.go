package reader

import (
	"context"

	"yomu/internal/extension"
	"yomu/internal/library"
)

// resolvePages fetches the chapter's page references and then resolves page
// bytes one at a time, publishing each page as soon as it is available. When
// a preload amount is configured, resolution pauses once it runs that far
// ahead of the current page and resumes as the reader advances. Results from
// a superseded generation are dropped, never published.
func (s *Session) resolvePages(ctx context.Context, generation uint64, source extension.Source, series *library.Series, chapter *library.Chapter) {
	defer func() {
		s.mu.Lock()
		current := generation == s.generation
		if current {
			s.loading = false
		}
		s.mu.Unlock()
		if current {
			s.sink(PageEvent{SessionID: s.id, Generation: generation, Done: true})
		}
	}()

	data, err := source.FetchPageRequesterData(ctx, series.SourceID, chapter.SourceID)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("page reference fetch failed", "chapter", chapter.SourceID, "error", err)
		}
		return
	}
	urls := source.PageURLs(data)

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return
	}
	s.lastPageNumber = len(urls)
	s.mu.Unlock()

	for i, url := range urls {
		pageNumber := i + 1
		if !s.waitForWindow(generation, pageNumber) {
			return
		}

		bytes, err := source.PageData(ctx, series, url)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("page fetch failed", "chapter", chapter.SourceID, "page", pageNumber, "error", err)
			continue
		}

		s.mu.Lock()
		if generation != s.generation {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.sink(PageEvent{
			SessionID:  s.id,
			Generation: generation,
			PageNumber: pageNumber,
			TotalPages: len(urls),
			Data:       bytes,
		})
	}
}

// waitForWindow blocks until the page falls inside the preload window for the
// current position, or reports false when the load was superseded.
func (s *Session) waitForWindow(generation uint64, pageNumber int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if generation != s.generation {
			return false
		}
		if s.preload <= 0 || pageNumber <= s.pageNumber+s.preload {
			return true
		}
		s.cond.Wait()
	}
}
