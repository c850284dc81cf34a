package notify

import (
	"context"
	"time"
)

// Platform identifiers. These double as registry platform keys, so renaming
// one orphans existing mappings.
const (
	PlatformTelegram   = "telegram"
	PlatformDiscord    = "discord"
	PlatformDiscordBot = "discord-bot"
	PlatformSlack      = "slack"
	PlatformWebhook    = "webhook"
)

// Payload describes one session event. It is immutable per dispatch call.
type Payload struct {
	Event     string
	SessionID string
	Message   string
	Timestamp time.Time

	TmuxSession string
	ProjectName string
	ProjectPath string
	ModesUsed   []string
	DurationMs  int64
	Reason      string
	ActiveMode  string
	Question    string
}

// SendResult is the terminal outcome of one platform send. Error holds a
// short code ("invalid_url", "timeout", ...) rather than prose.
type SendResult struct {
	Platform  string `json:"platform"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

// DispatchResult aggregates one dispatch invocation.
type DispatchResult struct {
	Event      string       `json:"event"`
	Results    []SendResult `json:"results"`
	AnySuccess bool         `json:"any_success"`
}

// Sender delivers one payload to one platform and always resolves to a
// SendResult.
type Sender interface {
	Platform() string
	Send(ctx context.Context, p *Payload) SendResult
}

// Short error codes shared by the senders.
const (
	errInvalidURL     = "invalid_url"
	errInvalidToken   = "invalid_token"
	errInvalidChatID  = "invalid_chat_id"
	errNotConfigured  = "not_configured"
	errRequestFailed  = "request_failed"
	errBadStatus      = "bad_status"
	errTimeout        = "timeout"
	errDispatchFailed = "dispatch_timeout"
)

func failure(platform, code string) SendResult {
	return SendResult{Platform: platform, Error: code}
}

func success(platform, messageID string) SendResult {
	return SendResult{Platform: platform, Success: true, MessageID: messageID}
}
