package config

// Config is the resolved panebot configuration.
//
// The file on disk may be YAML or JSON; both are decoded strictly
// (unknown fields are rejected) so typos surface at load time.
type Config struct {
	Notifications NotificationsConfig `json:"notifications"`
	Listener      ListenerConfig      `json:"listener"`
	Logging       LoggingConfig       `json:"logging"`

	// StateDir overrides the default state root (~/.panebot).
	StateDir string `json:"state_dir,omitempty"`
}

// NotificationsConfig holds the top-level per-platform blocks plus optional
// per-event override blocks.
//
// An event-level block overrides the top-level block field by field: a field
// absent at event level inherits the top-level value. See merge.go.
type NotificationsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Discord  DiscordConfig  `json:"discord"`
	Slack    SlackConfig    `json:"slack"`
	Webhook  WebhookConfig  `json:"webhook"`

	// Events maps an event name (e.g. "session-end") to override blocks.
	Events map[string]EventOverrides `json:"events,omitempty"`
}

type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token,omitempty"`
	// ChatID is numeric ("123456") or a public channel handle ("@ops").
	ChatID  string `json:"chat_id,omitempty"`
	Mention string `json:"mention,omitempty"`
	// AllowedSenders lists Telegram user IDs whose replies may be injected.
	AllowedSenders []string `json:"allowed_senders,omitempty"`
}

type DiscordConfig struct {
	Enabled bool `json:"enabled"`
	// WebhookURL enables plain webhook sends (no reply tracking).
	WebhookURL string `json:"webhook_url,omitempty"`
	// BotToken+ChannelID enable bot sends, which return a message id and
	// make replies pollable.
	BotToken  string `json:"bot_token,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Mention   string `json:"mention,omitempty"`
	// AllowedSenders lists Discord user IDs whose replies may be injected.
	AllowedSenders []string `json:"allowed_senders,omitempty"`
}

type SlackConfig struct {
	Enabled    bool   `json:"enabled"`
	WebhookURL string `json:"webhook_url,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Username   string `json:"username,omitempty"`
	IconEmoji  string `json:"icon_emoji,omitempty"`
	Mention    string `json:"mention,omitempty"`
}

type WebhookConfig struct {
	Enabled bool              `json:"enabled"`
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// EventOverrides carries per-event platform overrides. All fields are
// pointers so "omitted" is distinguishable from an explicit zero value.
type EventOverrides struct {
	Telegram *TelegramOverride `json:"telegram,omitempty"`
	Discord  *DiscordOverride  `json:"discord,omitempty"`
	Slack    *SlackOverride    `json:"slack,omitempty"`
	Webhook  *WebhookOverride  `json:"webhook,omitempty"`
}

type TelegramOverride struct {
	Enabled        *bool     `json:"enabled,omitempty"`
	BotToken       *string   `json:"bot_token,omitempty"`
	ChatID         *string   `json:"chat_id,omitempty"`
	Mention        *string   `json:"mention,omitempty"`
	AllowedSenders *[]string `json:"allowed_senders,omitempty"`
}

type DiscordOverride struct {
	Enabled        *bool     `json:"enabled,omitempty"`
	WebhookURL     *string   `json:"webhook_url,omitempty"`
	BotToken       *string   `json:"bot_token,omitempty"`
	ChannelID      *string   `json:"channel_id,omitempty"`
	Username       *string   `json:"username,omitempty"`
	Mention        *string   `json:"mention,omitempty"`
	AllowedSenders *[]string `json:"allowed_senders,omitempty"`
}

type SlackOverride struct {
	Enabled    *bool   `json:"enabled,omitempty"`
	WebhookURL *string `json:"webhook_url,omitempty"`
	Channel    *string `json:"channel,omitempty"`
	Username   *string `json:"username,omitempty"`
	IconEmoji  *string `json:"icon_emoji,omitempty"`
	Mention    *string `json:"mention,omitempty"`
}

type WebhookOverride struct {
	Enabled *bool              `json:"enabled,omitempty"`
	URL     *string            `json:"url,omitempty"`
	Headers *map[string]string `json:"headers,omitempty"`
}

// ListenerConfig controls the reply listener daemon.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type ListenerConfig struct {
	Enabled bool `json:"enabled"`

	// PollInterval between ticks. Default "10s".
	PollInterval string `json:"poll_interval,omitempty"`

	// MaxRepliesPerMinute caps injections via a sliding window. Default 10.
	MaxRepliesPerMinute int `json:"max_replies_per_minute,omitempty"`

	// ReplyMaxChars caps sanitized reply text before injection. Default 500.
	ReplyMaxChars int `json:"reply_max_chars,omitempty"`

	// SourceTag prefixes injected text with a short origin tag like
	// "[telegram] ". Defaults to true when omitted.
	SourceTag *bool `json:"source_tag,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console bool        `json:"console,omitempty"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
	// MaxSizeKB rotates the file to a single .old generation past this size.
	// Default 1024 (1 MiB).
	MaxSizeKB int `json:"max_size_kb,omitempty"`
}
