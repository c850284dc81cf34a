package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"panebot/internal/config"
)

const discordAPIBase = "https://discord.com/api/v10"

var discordBotTokenRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{50,}$`)

// allowedMentions suppresses broadcast pings. Only explicit user mentions
// survive, so a payload containing "@everyone" cannot ping the whole server.
type allowedMentions struct {
	Parse []string `json:"parse"`
}

// discordSender posts via webhook, or via the bot API when a token and
// channel are configured. Bot sends return a message id and are therefore
// the only Discord sends the reply listener can track.
type discordSender struct {
	cfg    config.DiscordConfig
	client *http.Client
}

func newDiscordSender(cfg config.DiscordConfig) *discordSender {
	return &discordSender{cfg: cfg, client: newHTTPClient()}
}

func (s *discordSender) useBot() bool {
	return strings.TrimSpace(s.cfg.BotToken) != "" && strings.TrimSpace(s.cfg.ChannelID) != ""
}

func (s *discordSender) Platform() string {
	if s.useBot() {
		return PlatformDiscordBot
	}
	return PlatformDiscord
}

func validDiscordWebhook(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "discord.com" || host == "discordapp.com"
}

func (s *discordSender) Send(ctx context.Context, p *Payload) SendResult {
	if s.useBot() {
		return s.sendBot(ctx, p)
	}
	return s.sendWebhook(ctx, p)
}

func (s *discordSender) sendWebhook(ctx context.Context, p *Payload) SendResult {
	wu := strings.TrimSpace(s.cfg.WebhookURL)
	if wu == "" {
		return failure(PlatformDiscord, errNotConfigured)
	}
	if !validDiscordWebhook(wu) {
		return failure(PlatformDiscord, errInvalidURL)
	}
	return s.sendWebhookTo(ctx, wu, p)
}

func (s *discordSender) sendWebhookTo(ctx context.Context, wu string, p *Payload) SendResult {
	body := map[string]any{
		"content":          composeText(PlatformDiscord, s.cfg.Mention, bodyText(p), discordMaxChars),
		"allowed_mentions": allowedMentions{Parse: []string{"users", "roles"}},
	}
	if u := strings.TrimSpace(s.cfg.Username); u != "" {
		body["username"] = u
	}

	status, _, err := postJSON(ctx, s.client, wu, nil, body)
	if err != nil {
		return failure(PlatformDiscord, transportCode(err))
	}
	if status < 200 || status > 299 {
		return failure(PlatformDiscord, errBadStatus)
	}
	// Webhook sends carry no message id, so replies cannot be tracked.
	return success(PlatformDiscord, "")
}

func (s *discordSender) sendBot(ctx context.Context, p *Payload) SendResult {
	token := strings.TrimSpace(s.cfg.BotToken)
	if !discordBotTokenRe.MatchString(token) {
		return failure(PlatformDiscordBot, errInvalidToken)
	}
	channel := strings.TrimSpace(s.cfg.ChannelID)

	body := map[string]any{
		"content":          composeText(PlatformDiscordBot, s.cfg.Mention, bodyText(p), discordMaxChars),
		"allowed_mentions": allowedMentions{Parse: []string{"users", "roles"}},
	}
	headers := map[string]string{"Authorization": "Bot " + token}

	status, resp, err := postJSON(ctx, s.client, discordAPIBase+"/channels/"+channel+"/messages", headers, body)
	if err != nil {
		return failure(PlatformDiscordBot, transportCode(err))
	}
	if status < 200 || status > 299 {
		return failure(PlatformDiscordBot, errBadStatus)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp, &created); err != nil || created.ID == "" {
		// Message went out; without an id it just isn't trackable.
		return success(PlatformDiscordBot, "")
	}
	return success(PlatformDiscordBot, created.ID)
}
