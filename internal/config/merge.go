package config

// Effective config resolution.
//
// Each platform gets an explicit merge function instead of a generic
// deep-merge so the override semantics stay auditable: an event-level field
// overrides the top-level field only when it is present, never wholesale.

// EffectiveTelegram returns the Telegram config for an event.
func (c *NotificationsConfig) EffectiveTelegram(event string) TelegramConfig {
	out := c.Telegram
	ev, ok := c.Events[event]
	if !ok || ev.Telegram == nil {
		return out
	}
	o := ev.Telegram
	if o.Enabled != nil {
		out.Enabled = *o.Enabled
	}
	if o.BotToken != nil {
		out.BotToken = *o.BotToken
	}
	if o.ChatID != nil {
		out.ChatID = *o.ChatID
	}
	if o.Mention != nil {
		out.Mention = *o.Mention
	}
	if o.AllowedSenders != nil {
		out.AllowedSenders = *o.AllowedSenders
	}
	return out
}

// EffectiveDiscord returns the Discord config for an event.
func (c *NotificationsConfig) EffectiveDiscord(event string) DiscordConfig {
	out := c.Discord
	ev, ok := c.Events[event]
	if !ok || ev.Discord == nil {
		return out
	}
	o := ev.Discord
	if o.Enabled != nil {
		out.Enabled = *o.Enabled
	}
	if o.WebhookURL != nil {
		out.WebhookURL = *o.WebhookURL
	}
	if o.BotToken != nil {
		out.BotToken = *o.BotToken
	}
	if o.ChannelID != nil {
		out.ChannelID = *o.ChannelID
	}
	if o.Username != nil {
		out.Username = *o.Username
	}
	if o.Mention != nil {
		out.Mention = *o.Mention
	}
	if o.AllowedSenders != nil {
		out.AllowedSenders = *o.AllowedSenders
	}
	return out
}

// EffectiveSlack returns the Slack config for an event.
func (c *NotificationsConfig) EffectiveSlack(event string) SlackConfig {
	out := c.Slack
	ev, ok := c.Events[event]
	if !ok || ev.Slack == nil {
		return out
	}
	o := ev.Slack
	if o.Enabled != nil {
		out.Enabled = *o.Enabled
	}
	if o.WebhookURL != nil {
		out.WebhookURL = *o.WebhookURL
	}
	if o.Channel != nil {
		out.Channel = *o.Channel
	}
	if o.Username != nil {
		out.Username = *o.Username
	}
	if o.IconEmoji != nil {
		out.IconEmoji = *o.IconEmoji
	}
	if o.Mention != nil {
		out.Mention = *o.Mention
	}
	return out
}

// EffectiveWebhook returns the generic webhook config for an event.
func (c *NotificationsConfig) EffectiveWebhook(event string) WebhookConfig {
	out := c.Webhook
	ev, ok := c.Events[event]
	if !ok || ev.Webhook == nil {
		return out
	}
	o := ev.Webhook
	if o.Enabled != nil {
		out.Enabled = *o.Enabled
	}
	if o.URL != nil {
		out.URL = *o.URL
	}
	if o.Headers != nil {
		out.Headers = *o.Headers
	}
	return out
}
