package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"panebot/internal/config"
	logx "panebot/pkg/logx"
)

func TestDispatchZeroEnabledPlatforms(t *testing.T) {
	nc := &config.NotificationsConfig{}

	res := Dispatch(context.Background(), nc, "session-end", &Payload{Message: "m"}, nil, logx.Nop())
	if res.AnySuccess {
		t.Fatal("expected AnySuccess=false")
	}
	if res.Results == nil || len(res.Results) != 0 {
		t.Fatalf("expected empty non-nil results, got %#v", res.Results)
	}
	if res.Event != "session-end" {
		t.Fatalf("expected event echoed, got %q", res.Event)
	}
}

func TestDispatchCapTruncation(t *testing.T) {
	// A webhook-style chat platform with a hard cap: Discord, fed a
	// 2500-char message. The composed content must be exactly the cap and
	// end with the marker.
	var sent struct {
		Content string `json:"content"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("decoding webhook body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := newDiscordSender(config.DiscordConfig{Enabled: true, WebhookURL: srv.URL})
	// Point validation at the test server by bypassing the host check.
	res := s.sendWebhookTo(context.Background(), srv.URL, &Payload{Message: strings.Repeat("a", 2500)})
	if !res.Success {
		t.Fatalf("send failed: %s", res.Error)
	}
	if n := len([]rune(sent.Content)); n != discordMaxChars {
		t.Fatalf("expected content of exactly %d chars, got %d", discordMaxChars, n)
	}
	if !strings.HasSuffix(sent.Content, truncationMarker) {
		t.Fatal("expected truncation marker suffix")
	}
}

func TestDispatchCollectsFailuresWithoutEscalating(t *testing.T) {
	nc := &config.NotificationsConfig{
		Telegram: config.TelegramConfig{Enabled: true, BotToken: "garbage", ChatID: "not-a-number"},
		Slack:    config.SlackConfig{Enabled: true, WebhookURL: "https://evil.example.com/hook"},
	}

	res := Dispatch(context.Background(), nc, "question", &Payload{Message: "m"}, nil, logx.Nop())
	if res.AnySuccess {
		t.Fatal("expected all sends to fail")
	}
	if len(res.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res.Results))
	}
	for _, r := range res.Results {
		if r.Success || r.Error == "" {
			t.Fatalf("expected failed result with code, got %+v", r)
		}
	}
}

func TestDispatchEventOverridesApply(t *testing.T) {
	enabled := true
	nc := &config.NotificationsConfig{
		Slack: config.SlackConfig{Enabled: false, WebhookURL: "https://hooks.slack.com/services/x"},
		Events: map[string]config.EventOverrides{
			"question": {Slack: &config.SlackOverride{Enabled: &enabled}},
		},
	}

	if got := len(buildSenders(nc, "session-end")); got != 0 {
		t.Fatalf("expected no senders for session-end, got %d", got)
	}
	senders := buildSenders(nc, "question")
	if len(senders) != 1 || senders[0].Platform() != PlatformSlack {
		t.Fatalf("expected the event override to enable slack, got %#v", senders)
	}
}

func TestPayloadForOverride(t *testing.T) {
	p := &Payload{Message: "full report", SessionID: "s1"}
	ov := map[string]string{"slack": "short form", "discord": "medium form"}

	if got := payloadFor(p, ov, PlatformSlack); got.Message != "short form" || got.SessionID != "s1" {
		t.Fatalf("slack override: %+v", got)
	}
	// Bot sends fall back to the discord key.
	if got := payloadFor(p, ov, PlatformDiscordBot); got.Message != "medium form" {
		t.Fatalf("discord-bot should use the discord override: %+v", got)
	}
	if got := payloadFor(p, ov, PlatformTelegram); got != p {
		t.Fatal("no override should return the shared payload")
	}
	if p.Message != "full report" {
		t.Fatal("overrides must not mutate the shared payload")
	}
}

func TestTransportCode(t *testing.T) {
	if code := transportCode(context.DeadlineExceeded); code != errTimeout {
		t.Fatalf("expected timeout code, got %q", code)
	}
}

func TestGenericWebhookEnvelope(t *testing.T) {
	var env webhookEnvelope
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Auth")
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			t.Errorf("decoding envelope: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := newWebhookSender(config.WebhookConfig{
		Enabled: true,
		URL:     srv.URL,
		Headers: map[string]string{"X-Auth": "secret"},
	})
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := s.Send(context.Background(), &Payload{
		Event:       "session-end",
		SessionID:   "s1",
		Message:     "done",
		Timestamp:   ts,
		TmuxSession: "work",
		ProjectName: "panebot",
		ModesUsed:   []string{"build", "test"},
		DurationMs:  1234,
		Reason:      "finished",
	})
	if !res.Success {
		t.Fatalf("send failed: %s", res.Error)
	}
	if gotHeader != "secret" {
		t.Fatalf("expected custom header forwarded, got %q", gotHeader)
	}
	if env.Event != "session-end" || env.SessionID != "s1" || env.Message != "done" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Timestamp != "2026-03-01T12:00:00Z" {
		t.Fatalf("expected RFC3339 timestamp, got %q", env.Timestamp)
	}
	if env.TmuxSession != "work" || env.DurationMs != 1234 || len(env.ModesUsed) != 2 {
		t.Fatalf("unexpected optional fields: %+v", env)
	}
}

func TestWebhookURLValidation(t *testing.T) {
	s := newWebhookSender(config.WebhookConfig{Enabled: true, URL: "ftp://host/x"})
	if res := s.Send(context.Background(), &Payload{}); res.Error != errInvalidURL {
		t.Fatalf("expected invalid_url, got %+v", res)
	}

	s = newWebhookSender(config.WebhookConfig{Enabled: true})
	if res := s.Send(context.Background(), &Payload{}); res.Error != errNotConfigured {
		t.Fatalf("expected not_configured, got %+v", res)
	}
}

func TestPlatformWebhookHostValidation(t *testing.T) {
	if validDiscordWebhook("https://discord.com/api/webhooks/1/x") != true {
		t.Fatal("discord.com webhook should validate")
	}
	if validDiscordWebhook("https://evil.com/api/webhooks/1/x") {
		t.Fatal("foreign host must not validate as discord webhook")
	}
	if validDiscordWebhook("http://discord.com/api/webhooks/1/x") {
		t.Fatal("plain http must not validate")
	}
	if !validSlackWebhook("https://hooks.slack.com/services/T/B/x") {
		t.Fatal("hooks.slack.com webhook should validate")
	}
	if validSlackWebhook("https://slack.com/services/T/B/x") {
		t.Fatal("non-hooks host must not validate as slack webhook")
	}
}
