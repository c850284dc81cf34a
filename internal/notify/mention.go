package notify

import "regexp"

// Mention syntax whitelists. Anything that does not match is dropped
// silently rather than forwarded raw into a chat message.
var (
	// Telegram usernames: 5-32 word characters after "@".
	telegramMentionRe = regexp.MustCompile(`^@[A-Za-z0-9_]{5,32}$`)

	// Discord user (<@123>, <@!123>) and role (<@&123>) mentions.
	discordMentionRe = regexp.MustCompile(`^<@[!&]?[0-9]+>$`)

	// Slack user mentions (<@U...>/<@W...>) plus the two broadcast keywords.
	slackMentionRe = regexp.MustCompile(`^(<@[UW][A-Z0-9]+>|<!here>|<!channel>)$`)
)

// mentionPrefix returns the validated mention followed by a space, or ""
// when the mention is absent or malformed.
func mentionPrefix(platform, mention string) string {
	if mention == "" {
		return ""
	}
	var ok bool
	switch platform {
	case PlatformTelegram:
		ok = telegramMentionRe.MatchString(mention)
	case PlatformDiscord, PlatformDiscordBot:
		ok = discordMentionRe.MatchString(mention)
	case PlatformSlack:
		ok = slackMentionRe.MatchString(mention)
	}
	if !ok {
		return ""
	}
	return mention + " "
}
