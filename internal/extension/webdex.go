package extension

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"yomu/internal/library"
)

// WebdexID is the registry identifier of the web catalog source.
const WebdexID = "webdex"

const webdexUserAgent = "yomu/0.1"

// WebdexSource scrapes a webdex-compatible HTML catalog. The catalog exposes
// one page per series at /series/<id> carrying the series header and chapter
// table, and one page per chapter at /chapter/<id> carrying the page images.
type WebdexSource struct {
	baseURL string
	client  *http.Client
}

// NewWebdexSource builds the web catalog source rooted at baseURL.
func NewWebdexSource(baseURL string, timeout time.Duration) *WebdexSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebdexSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Metadata implements Source.
func (w *WebdexSource) Metadata() Metadata {
	return Metadata{ID: WebdexID, Name: "Webdex"}
}

// FetchSeries implements Source.
func (w *WebdexSource) FetchSeries(ctx context.Context, sourceID string) (*library.Series, error) {
	doc, err := w.fetchDocument(ctx, w.baseURL+"/series/"+sourceID)
	if err != nil {
		return nil, err
	}

	series := &library.Series{
		ExtensionID:      WebdexID,
		SourceID:         sourceID,
		Title:            strings.TrimSpace(doc.Find("h1.series-title").First().Text()),
		Description:      strings.TrimSpace(doc.Find(".series-description").First().Text()),
		OriginalLanguage: strings.TrimSpace(doc.Find(".series-language").First().Text()),
	}
	if series.Title == "" {
		return nil, fmt.Errorf("%w: series %s has no title", ErrFetchFailed, sourceID)
	}

	doc.Find(".series-alt-title").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			series.AltTitles = append(series.AltTitles, text)
		}
	})
	doc.Find(".series-author").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			series.Authors = append(series.Authors, text)
		}
	})
	doc.Find(".series-tag").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			series.Tags = append(series.Tags, text)
		}
	})

	status, ok := library.ParseSeriesStatus(doc.Find(".series-status").First().Text())
	if !ok {
		status = library.StatusOngoing
	}
	series.Status = status

	if src, ok := doc.Find("img.series-cover").First().Attr("src"); ok {
		series.RemoteCoverURL = w.absoluteURL(src)
	}
	return series, nil
}

// FetchChapters implements Source.
func (w *WebdexSource) FetchChapters(ctx context.Context, sourceID string) ([]library.Chapter, error) {
	doc, err := w.fetchDocument(ctx, w.baseURL+"/series/"+sourceID)
	if err != nil {
		return nil, err
	}

	var chapters []library.Chapter
	doc.Find("tr.chapter").Each(func(_ int, sel *goquery.Selection) {
		chapterID, ok := sel.Attr("data-id")
		if !ok || strings.TrimSpace(chapterID) == "" {
			return
		}
		chapter := library.Chapter{
			SourceID:      strings.TrimSpace(chapterID),
			Title:         strings.TrimSpace(sel.Find(".chapter-title").First().Text()),
			ChapterNumber: strings.TrimSpace(sel.AttrOr("data-number", "")),
			VolumeNumber:  strings.TrimSpace(sel.AttrOr("data-volume", "")),
			LanguageKey:   strings.TrimSpace(sel.AttrOr("data-lang", "")),
			GroupName:     strings.TrimSpace(sel.AttrOr("data-group", "")),
		}
		if raw, ok := sel.Attr("data-time"); ok {
			if released, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
				chapter.Time = released
			}
		}
		chapters = append(chapters, chapter)
	})
	return chapters, nil
}

// FetchPageRequesterData implements Source.
func (w *WebdexSource) FetchPageRequesterData(ctx context.Context, _, chapterSourceID string) (*PageRequesterData, error) {
	doc, err := w.fetchDocument(ctx, w.baseURL+"/chapter/"+chapterSourceID)
	if err != nil {
		return nil, err
	}

	data := &PageRequesterData{Server: w.baseURL, Hash: chapterSourceID}
	doc.Find("img.page").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && strings.TrimSpace(src) != "" {
			data.PageNames = append(data.PageNames, strings.TrimSpace(src))
		}
	})
	if len(data.PageNames) == 0 {
		return nil, fmt.Errorf("%w: chapter %s has no pages", ErrFetchFailed, chapterSourceID)
	}
	return data, nil
}

// PageURLs implements Source.
func (w *WebdexSource) PageURLs(data *PageRequesterData) []string {
	if data == nil {
		return nil
	}
	urls := make([]string, len(data.PageNames))
	for i, name := range data.PageNames {
		urls[i] = w.absoluteURL(name)
	}
	return urls
}

// PageData implements Source.
func (w *WebdexSource) PageData(ctx context.Context, _ *library.Series, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", webdexUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get %s: status %d", ErrFetchFailed, url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFetchFailed, url, err)
	}
	return data, nil
}

func (w *WebdexSource) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", webdexUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get %s: status %d", ErrFetchFailed, url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrFetchFailed, url, err)
	}
	return doc, nil
}

func (w *WebdexSource) absoluteURL(value string) string {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return w.baseURL + "/" + strings.TrimLeft(value, "/")
}
