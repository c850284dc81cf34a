package notify

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"panebot/internal/config"
)

// webhookEnvelope is the generic JSON body posted to a user-supplied
// endpoint. Field names are part of the external contract.
type webhookEnvelope struct {
	Event       string   `json:"event"`
	SessionID   string   `json:"session_id"`
	Message     string   `json:"message"`
	Timestamp   string   `json:"timestamp"`
	TmuxSession string   `json:"tmux_session,omitempty"`
	ProjectName string   `json:"project_name,omitempty"`
	ProjectPath string   `json:"project_path,omitempty"`
	ModesUsed   []string `json:"modes_used,omitempty"`
	DurationMs  int64    `json:"duration_ms,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	ActiveMode  string   `json:"active_mode,omitempty"`
	Question    string   `json:"question,omitempty"`
}

type webhookSender struct {
	cfg    config.WebhookConfig
	client *http.Client
}

func newWebhookSender(cfg config.WebhookConfig) *webhookSender {
	return &webhookSender{cfg: cfg, client: newHTTPClient()}
}

func (s *webhookSender) Platform() string { return PlatformWebhook }

func (s *webhookSender) Send(ctx context.Context, p *Payload) SendResult {
	raw := strings.TrimSpace(s.cfg.URL)
	if raw == "" {
		return failure(PlatformWebhook, errNotConfigured)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return failure(PlatformWebhook, errInvalidURL)
	}

	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	env := webhookEnvelope{
		Event:       p.Event,
		SessionID:   p.SessionID,
		Message:     p.Message,
		Timestamp:   ts.UTC().Format(time.RFC3339),
		TmuxSession: p.TmuxSession,
		ProjectName: p.ProjectName,
		ProjectPath: p.ProjectPath,
		ModesUsed:   p.ModesUsed,
		DurationMs:  p.DurationMs,
		Reason:      p.Reason,
		ActiveMode:  p.ActiveMode,
		Question:    p.Question,
	}

	status, _, err := postJSON(ctx, s.client, raw, s.cfg.Headers, env)
	if err != nil {
		return failure(PlatformWebhook, transportCode(err))
	}
	if status < 200 || status > 299 {
		return failure(PlatformWebhook, errBadStatus)
	}
	return success(PlatformWebhook, "")
}
