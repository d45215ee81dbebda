package testsupport

import (
	"path/filepath"
	"testing"

	"yomu/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.ThumbnailDir = filepath.Join(base, "thumbnails")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithPreferredLanguages sets the preferred language filter on the test config.
func WithPreferredLanguages(tags ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Library.PreferredLanguages = tags
	}
}

// WithReaderLayout sets the page view and layout direction on the test config.
func WithReaderLayout(pageView, layoutDirection string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Reader.PageView = pageView
		cfg.Reader.LayoutDirection = layoutDirection
	}
}
