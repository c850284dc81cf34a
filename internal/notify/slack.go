package notify

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"panebot/internal/config"
)

type slackSender struct {
	cfg    config.SlackConfig
	client *http.Client
}

func newSlackSender(cfg config.SlackConfig) *slackSender {
	return &slackSender{cfg: cfg, client: newHTTPClient()}
}

func (s *slackSender) Platform() string { return PlatformSlack }

func validSlackWebhook(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Hostname(), "hooks.slack.com")
}

func (s *slackSender) Send(ctx context.Context, p *Payload) SendResult {
	wu := strings.TrimSpace(s.cfg.WebhookURL)
	if wu == "" {
		return failure(PlatformSlack, errNotConfigured)
	}
	if !validSlackWebhook(wu) {
		return failure(PlatformSlack, errInvalidURL)
	}

	body := map[string]any{
		"text": composeText(PlatformSlack, s.cfg.Mention, bodyText(p), slackMaxChars),
	}
	if c := strings.TrimSpace(s.cfg.Channel); c != "" {
		body["channel"] = c
	}
	if u := strings.TrimSpace(s.cfg.Username); u != "" {
		body["username"] = u
	}
	if e := strings.TrimSpace(s.cfg.IconEmoji); e != "" {
		body["icon_emoji"] = e
	}

	status, _, err := postJSON(ctx, s.client, wu, nil, body)
	if err != nil {
		return failure(PlatformSlack, transportCode(err))
	}
	if status < 200 || status > 299 {
		return failure(PlatformSlack, errBadStatus)
	}
	return success(PlatformSlack, "")
}
