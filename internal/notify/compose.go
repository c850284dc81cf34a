package notify

import "strings"

// Hard content-length caps, in characters.
const (
	telegramMaxChars = 4096
	discordMaxChars  = 2000
	slackMaxChars    = 40000
)

const truncationMarker = "..."

// composeText builds the outgoing text for one platform: optional validated
// mention prefix plus the payload body, truncated to the platform cap.
//
// The prefix is never truncated; the body absorbs the whole truncation so
// the composed result is at most max characters and, when truncated, ends
// with the marker.
func composeText(platform, mention, body string, max int) string {
	prefix := mentionPrefix(platform, mention)

	pr := []rune(prefix)
	br := []rune(body)
	if len(pr)+len(br) <= max {
		return prefix + body
	}

	budget := max - len(pr) - len(truncationMarker)
	if budget < 0 {
		budget = 0
	}
	if budget > len(br) {
		budget = len(br)
	}
	return prefix + string(br[:budget]) + truncationMarker
}

// bodyText renders the payload body shared by the chat platforms. The
// message is the caller's composed text; an open question, when present,
// rides along so the operator sees what the session is waiting on.
func bodyText(p *Payload) string {
	var b strings.Builder
	b.WriteString(p.Message)
	if q := strings.TrimSpace(p.Question); q != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(q)
	}
	return b.String()
}
