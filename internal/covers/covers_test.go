package covers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"yomu/internal/covers"
	"yomu/internal/library"
	"yomu/internal/testsupport"
)

func newManager(t *testing.T) *covers.Manager {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return covers.NewManager(cfg, logger)
}

func TestThumbnailPathIsStableAndSafe(t *testing.T) {
	manager := newManager(t)
	series := &library.Series{ID: 7, Title: "Göttin der Jagd!"}

	path := manager.ThumbnailPath(series)
	if path != manager.ThumbnailPath(series) {
		t.Fatal("thumbnail path should be deterministic")
	}
	base := path[strings.LastIndex(path, "/")+1:]
	if strings.ContainsAny(base, " !?") {
		t.Fatalf("unsafe characters in thumbnail name: %q", base)
	}
	if !strings.HasSuffix(base, "-7") {
		t.Fatalf("expected series id suffix, got %q", base)
	}
}

func TestDownloadAndDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cover-bytes"))
	}))
	t.Cleanup(server.Close)

	manager := newManager(t)
	series := &library.Series{ID: 1, Title: "Sample", RemoteCoverURL: server.URL + "/cover.png"}

	if manager.HasThumbnail(series) {
		t.Fatal("no thumbnail should exist yet")
	}
	if err := manager.Download(context.Background(), series); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if !manager.HasThumbnail(series) {
		t.Fatal("thumbnail missing after download")
	}

	data, err := os.ReadFile(manager.ThumbnailPath(series))
	if err != nil {
		t.Fatalf("read thumbnail: %v", err)
	}
	if string(data) != "cover-bytes" {
		t.Fatalf("unexpected thumbnail contents: %q", data)
	}

	if err := manager.Delete(series); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if manager.HasThumbnail(series) {
		t.Fatal("thumbnail still present after delete")
	}
	// Deleting again is a no-op.
	if err := manager.Delete(series); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
}

func TestDownloadWithoutURLIsNoop(t *testing.T) {
	manager := newManager(t)
	series := &library.Series{ID: 2, Title: "No Cover"}
	if err := manager.Download(context.Background(), series); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if manager.HasThumbnail(series) {
		t.Fatal("no thumbnail should be written without a remote url")
	}
}

func TestDownloadErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	manager := newManager(t)
	series := &library.Series{ID: 3, Title: "Gone", RemoteCoverURL: server.URL + "/cover.png"}
	if err := manager.Download(context.Background(), series); err == nil {
		t.Fatal("expected error for missing cover")
	}
}
