package covers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alexsergivan/transliterator"

	"yomu/internal/config"
	"yomu/internal/library"
)

var (
	translit       = transliterator.NewTransliterator(nil)
	unsafePathRune = regexp.MustCompile(`[^a-z0-9._-]+`)
)

// Manager downloads and caches series cover thumbnails. Downloads are a
// fire-and-forget side effect of reconciliation; a failed download never
// fails the reconciliation that triggered it.
type Manager struct {
	dir    string
	client *http.Client
	logger *slog.Logger
}

// NewManager builds a thumbnail manager rooted at the configured directory.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	timeout := time.Duration(cfg.Covers.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Manager{
		dir:    cfg.Paths.ThumbnailDir,
		client: &http.Client{Timeout: timeout},
		logger: logger.With("component", "covers"),
	}
}

// ThumbnailPath returns where the series' thumbnail lives on disk. The name
// combines a transliterated title slug with the series identifier so renames
// stay readable while the identifier keeps it unique.
func (m *Manager) ThumbnailPath(series *library.Series) string {
	slug := strings.ToLower(translit.Transliterate(series.Title, "en"))
	slug = strings.Trim(unsafePathRune.ReplaceAllString(slug, "-"), "-")
	if slug == "" {
		slug = "series"
	}
	return filepath.Join(m.dir, fmt.Sprintf("%s-%d", slug, series.ID))
}

// HasThumbnail reports whether a local thumbnail exists for the series.
func (m *Manager) HasThumbnail(series *library.Series) bool {
	info, err := os.Stat(m.ThumbnailPath(series))
	return err == nil && !info.IsDir()
}

// Download fetches the series' remote cover and writes it to the thumbnail
// cache, replacing any existing file.
func (m *Manager) Download(ctx context.Context, series *library.Series) error {
	url := strings.TrimSpace(series.RemoteCoverURL)
	if url == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build cover request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("download cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download cover: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("ensure thumbnail directory: %w", err)
	}

	path := m.ThumbnailPath(series)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create thumbnail %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("write thumbnail %s: %w", path, err)
	}
	return nil
}

// DownloadAsync runs Download in the background, logging failures instead of
// reporting them.
func (m *Manager) DownloadAsync(series *library.Series) {
	snapshot := *series
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.client.Timeout)
		defer cancel()
		if err := m.Download(ctx, &snapshot); err != nil {
			m.logger.Warn("cover download failed", "series", snapshot.Title, "error", err)
		}
	}()
}

// Delete removes the series' cached thumbnail, if any.
func (m *Manager) Delete(series *library.Series) error {
	err := os.Remove(m.ThumbnailPath(series))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete thumbnail: %w", err)
	}
	return nil
}
