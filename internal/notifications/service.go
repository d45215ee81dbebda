package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"yomu/internal/config"
)

const userAgent = "yomu/0.1"

// Service defines the notification surface exposed to library components.
type Service interface {
	NotifyRefreshStarted(ctx context.Context, count int) error
	NotifyRefreshCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	NotifySeriesAdded(ctx context.Context, title string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRefreshStarted(ctx context.Context, count int) error {
	data := payload{
		title:   "yomu - Library Refresh",
		message: fmt.Sprintf("Reloading %d series", count),
		tags:    []string{"yomu", "refresh", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRefreshCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if failed == 0 {
		title = "yomu - Refresh Complete"
		message = fmt.Sprintf("Reloaded %d series in %s", processed, duration)
	} else {
		title = "yomu - Refresh Complete (with errors)"
		message = fmt.Sprintf("Reloaded %d series, %d failed in %s", processed, failed, duration)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"yomu", "refresh", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySeriesAdded(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	data := payload{
		title:   "yomu - Series Added",
		message: fmt.Sprintf("Added to library: %s", title),
		tags:    []string{"yomu", "library", "added"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "yomu - Error",
		message:  builder.String(),
		tags:     []string{"yomu", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "yomu - Test",
		message:  "Notification system test",
		tags:     []string{"yomu", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Noop returns a notification service that silently discards every event.
func Noop() Service { return noopService{} }

type noopService struct{}

func (noopService) NotifyRefreshStarted(context.Context, int) error { return nil }
func (noopService) NotifyRefreshCompleted(context.Context, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifySeriesAdded(context.Context, string) error  { return nil }
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
