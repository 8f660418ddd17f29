package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"oszimport/internal/config"
)

const userAgent = "oszimport/0.1.0"

// Service defines the notification surface exposed to the orchestrator.
type Service interface {
	NotifyImportStarted(ctx context.Context, source string, total int) error
	NotifyImportCompleted(ctx context.Context, summary Summary) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// Summary describes a finished run.
type Summary struct {
	Source         string
	Completed      int
	Total          int
	LaunchFailures int
	Duration       time.Duration
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
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		importEvents: cfg.Notifications.Import,
		errorEvents:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	importEvents bool
	errorEvents  bool
}

func (n *ntfyService) NotifyImportStarted(ctx context.Context, source string, total int) error {
	if !n.importEvents {
		return nil
	}
	data := payload{
		title:   "oszimport - Import Started",
		message: fmt.Sprintf("Importing %d beatmap(s) from %s", total, displaySource(source)),
		tags:    []string{"oszimport", "import", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyImportCompleted(ctx context.Context, summary Summary) error {
	if !n.importEvents {
		return nil
	}
	duration := max(summary.Duration.Round(time.Second), 0)

	title := "oszimport - Import Complete"
	message := fmt.Sprintf("✅ Finished: %d/%d beatmaps imported from %s in %s",
		summary.Completed, summary.Total, displaySource(summary.Source), duration)
	tags := []string{"oszimport", "import", "completed"}
	if summary.LaunchFailures > 0 {
		title = "oszimport - Import Complete (with errors)"
		message = fmt.Sprintf("%s\n%d item(s) could not be opened", message, summary.LaunchFailures)
		tags = append(tags, "warning")
	}
	return n.send(ctx, payload{title: title, message: message, tags: tags})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errorEvents {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Import failed")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" for ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "oszimport - Error",
		message:  builder.String(),
		tags:     []string{"oszimport", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "oszimport - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"oszimport", "test"},
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

// displaySource trims a source path to its final element for phone-sized messages.
func displaySource(source string) string {
	source = strings.TrimRight(strings.TrimSpace(source), `/\`)
	if idx := strings.LastIndexAny(source, `/\`); idx >= 0 {
		source = source[idx+1:]
	}
	if source == "" {
		return "(unknown source)"
	}
	return source
}

type noopService struct{}

func (noopService) NotifyImportStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyImportCompleted(context.Context, Summary) error   { return nil }
func (noopService) NotifyError(context.Context, error, string) error       { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }
