package notify

import "testing"

func TestMentionPrefix(t *testing.T) {
	tests := []struct {
		platform string
		mention  string
		want     string
	}{
		{PlatformTelegram, "@operator_1", "@operator_1 "},
		{PlatformTelegram, "@abcd", ""},         // too short
		{PlatformTelegram, "operator_1", ""},    // missing @
		{PlatformTelegram, "@ops team", ""},     // space
		{PlatformDiscord, "<@123456789>", "<@123456789> "},
		{PlatformDiscord, "<@!123456789>", "<@!123456789> "},
		{PlatformDiscord, "<@&987>", "<@&987> "},
		{PlatformDiscord, "@everyone", ""},
		{PlatformDiscord, "<@abc>", ""},
		{PlatformDiscordBot, "<@123>", "<@123> "},
		{PlatformSlack, "<@U024BE7LH>", "<@U024BE7LH> "},
		{PlatformSlack, "<!here>", "<!here> "},
		{PlatformSlack, "<!channel>", "<!channel> "},
		{PlatformSlack, "<!everyone>", ""},
		{PlatformSlack, "@here", ""},
		{PlatformWebhook, "<@U024BE7LH>", ""}, // no mention syntax at all
		{PlatformTelegram, "", ""},
	}

	for _, tt := range tests {
		if got := mentionPrefix(tt.platform, tt.mention); got != tt.want {
			t.Errorf("mentionPrefix(%q, %q) = %q, want %q", tt.platform, tt.mention, got, tt.want)
		}
	}
}
