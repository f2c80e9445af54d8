package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"soundcraft/internal/config"
)

const userAgent = "SoundCraft-Go/0.1.0"

// Service defines the notification surface exposed to the rendering
// pipeline.
type Service interface {
	NotifySessionSealed(ctx context.Context, name, wavPath string) error
	NotifySessionAborted(ctx context.Context, name string, cause error) error
	NotifyError(ctx context.Context, err error, context string) error
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
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		sendSealed: cfg.Notifications.Sealed,
		sendErrors: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	sendSealed bool
	sendErrors bool
}

func (n *ntfyService) NotifySessionSealed(ctx context.Context, name, wavPath string) error {
	if !n.sendSealed {
		return nil
	}
	name = strings.TrimSpace(name)
	message := fmt.Sprintf("Session sealed: %s", name)
	if wavPath = strings.TrimSpace(wavPath); wavPath != "" {
		message = fmt.Sprintf("%s\nArtifact: %s", message, wavPath)
	}
	data := payload{
		title:   "SoundCraft - Sealed",
		message: message,
		tags:    []string{"soundcraft", "session", "sealed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionAborted(ctx context.Context, name string, cause error) error {
	if !n.sendErrors {
		return nil
	}
	name = strings.TrimSpace(name)
	message := fmt.Sprintf("Session aborted: %s", name)
	if cause != nil {
		message = fmt.Sprintf("%s\nCause: %s", message, strings.TrimSpace(cause.Error()))
	}
	data := payload{
		title:    "SoundCraft - Aborted",
		message:  message,
		tags:     []string{"soundcraft", "session", "aborted"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.sendErrors {
		return nil
	}
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
		title:    "SoundCraft - Error",
		message:  builder.String(),
		tags:     []string{"soundcraft", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "SoundCraft - Test",
		message:  "Notification system test",
		tags:     []string{"soundcraft", "test"},
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

func (noopService) NotifySessionSealed(context.Context, string, string) error { return nil }
func (noopService) NotifySessionAborted(context.Context, string, error) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error          { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
