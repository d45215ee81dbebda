package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"yomu/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadPageView(t *testing.T) {
	cfg := config.Default()
	cfg.Reader.PageView = "triple"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported page view")
	}
}

func TestValidateRejectsBadLayoutDirection(t *testing.T) {
	cfg := config.Default()
	cfg.Reader.LayoutDirection = "down"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported layout direction")
	}
}

func TestValidateRejectsBadLanguageTag(t *testing.T) {
	cfg := config.Default()
	cfg.Library.PreferredLanguages = []string{"not a tag"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid language tag")
	}
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Covers.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestLoadAppliesFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"
thumbnail_dir = "` + dir + `/thumbs"
log_dir = "` + dir + `/logs"

[reader]
page_view = "double"
layout_direction = "RTL"

[webdex]
base_url = "https://example.com/"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Reader.PageView != "double" {
		t.Fatalf("page_view = %q, want double", cfg.Reader.PageView)
	}
	if cfg.Reader.LayoutDirection != "rtl" {
		t.Fatalf("layout_direction = %q, want normalized rtl", cfg.Reader.LayoutDirection)
	}
	if cfg.Webdex.BaseURL != "https://example.com" {
		t.Fatalf("base_url = %q, want trailing slash trimmed", cfg.Webdex.BaseURL)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing file to be reported")
	}
	if cfg.Reader.PageView != "single" {
		t.Fatalf("expected defaults, got page_view %q", cfg.Reader.PageView)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config did not load: exists=%v err=%v", exists, err)
	}
}
