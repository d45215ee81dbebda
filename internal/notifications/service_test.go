package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yomu/internal/config"
	"yomu/internal/notifications"
)

type captured struct {
	body     string
	title    string
	tags     string
	priority string
}

func newNtfyServer(t *testing.T, out *[]captured) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*out = append(*out, captured{
			body:     string(body),
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newService(topic string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return notifications.NewService(&cfg)
}

func TestNoTopicReturnsNoop(t *testing.T) {
	service := newService("")
	if err := service.NotifyRefreshStarted(context.Background(), 3); err != nil {
		t.Fatalf("noop service returned error: %v", err)
	}
	if err := service.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop service returned error: %v", err)
	}
}

func TestNotifyRefreshCompleted(t *testing.T) {
	var got []captured
	server := newNtfyServer(t, &got)
	service := newService(server.URL)

	err := service.NotifyRefreshCompleted(context.Background(), 5, 1, 90*time.Second)
	if err != nil {
		t.Fatalf("NotifyRefreshCompleted failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got))
	}
	if !strings.Contains(got[0].body, "5 series") || !strings.Contains(got[0].body, "1 failed") {
		t.Fatalf("unexpected body: %q", got[0].body)
	}
	if !strings.Contains(got[0].title, "with errors") {
		t.Fatalf("unexpected title: %q", got[0].title)
	}
}

func TestNotifyErrorSetsPriority(t *testing.T) {
	var got []captured
	server := newNtfyServer(t, &got)
	service := newService(server.URL)

	err := service.NotifyError(context.Background(), io.ErrUnexpectedEOF, "library refresh")
	if err != nil {
		t.Fatalf("NotifyError failed: %v", err)
	}
	if got[0].priority != "high" {
		t.Fatalf("priority = %q, want high", got[0].priority)
	}
	if !strings.Contains(got[0].body, "library refresh") {
		t.Fatalf("unexpected body: %q", got[0].body)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	service := newService(server.URL)
	if err := service.NotifySeriesAdded(context.Background(), "Sample"); err == nil {
		t.Fatal("expected error from 403 response")
	}
}
