package config

import (
	"os"
	"strings"
)

// Environment overlay. Credentials can be kept out of the config file and
// supplied via PANEBOT_* variables instead; when both are present, the
// environment wins.
//
// The listener's forked child deliberately does not inherit these (its
// environment is scrubbed of secret-bearing names), so it re-resolves
// credentials from the config file alone.

const (
	envTelegramBotToken  = "PANEBOT_TELEGRAM_BOT_TOKEN"
	envTelegramChatID    = "PANEBOT_TELEGRAM_CHAT_ID"
	envDiscordBotToken   = "PANEBOT_DISCORD_BOT_TOKEN"
	envDiscordWebhookURL = "PANEBOT_DISCORD_WEBHOOK_URL"
	envDiscordChannelID  = "PANEBOT_DISCORD_CHANNEL_ID"
	envSlackWebhookURL   = "PANEBOT_SLACK_WEBHOOK_URL"
	envWebhookURL        = "PANEBOT_WEBHOOK_URL"

	// EnvStateDir overrides the state root directory.
	EnvStateDir = "PANEBOT_STATE_DIR"
)

func applyEnv(cfg *Config) {
	overlay(&cfg.Notifications.Telegram.BotToken, envTelegramBotToken)
	overlay(&cfg.Notifications.Telegram.ChatID, envTelegramChatID)
	overlay(&cfg.Notifications.Discord.BotToken, envDiscordBotToken)
	overlay(&cfg.Notifications.Discord.WebhookURL, envDiscordWebhookURL)
	overlay(&cfg.Notifications.Discord.ChannelID, envDiscordChannelID)
	overlay(&cfg.Notifications.Slack.WebhookURL, envSlackWebhookURL)
	overlay(&cfg.Notifications.Webhook.URL, envWebhookURL)
	overlay(&cfg.StateDir, EnvStateDir)
}

func overlay(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
