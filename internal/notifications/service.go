package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gloss/internal/config"
)

const userAgent = "Gloss/0.1.0"

// Service defines the notification surface exposed to the workflow manager
// and the CLI.
type Service interface {
	NotifyReviewStarted(ctx context.Context, lectureTitle string, noteCount int) error
	NotifyReviewCompleted(ctx context.Context, lectureTitle string, reviewed, failed int) error
	NotifyRunFailed(ctx context.Context, lectureTitle, message string) error
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

func (n *ntfyService) NotifyReviewStarted(ctx context.Context, lectureTitle string, noteCount int) error {
	lectureTitle = strings.TrimSpace(lectureTitle)
	data := payload{
		title:   "Gloss - Review Started",
		message: fmt.Sprintf("Reviewing %s (%d note(s))", lectureTitle, noteCount),
		tags:    []string{"gloss", "review", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReviewCompleted(ctx context.Context, lectureTitle string, reviewed, failed int) error {
	lectureTitle = strings.TrimSpace(lectureTitle)
	if failed > 0 {
		data := payload{
			title:    "Gloss - Review Complete (with errors)",
			message:  fmt.Sprintf("⚠️ Review complete: %s, %d of %d note(s) failed", lectureTitle, failed, reviewed),
			tags:     []string{"gloss", "review", "completed"},
			priority: "high",
		}
		return n.send(ctx, data)
	}
	data := payload{
		title:   "Gloss - Review Complete",
		message: fmt.Sprintf("✅ Review complete: %s (%d note(s))", lectureTitle, reviewed),
		tags:    []string{"gloss", "review", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, lectureTitle, message string) error {
	lectureTitle = strings.TrimSpace(lectureTitle)
	message = strings.TrimSpace(message)
	if message == "" {
		message = "unknown error"
	}
	data := payload{
		title:    "Gloss - Review Failed",
		message:  fmt.Sprintf("❌ Review failed: %s: %s", lectureTitle, message),
		tags:     []string{"gloss", "review", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Gloss - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"gloss", "test"},
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

type noopService struct{}

func (noopService) NotifyReviewStarted(context.Context, string, int) error        { return nil }
func (noopService) NotifyReviewCompleted(context.Context, string, int, int) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string) error         { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
