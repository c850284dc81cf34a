package listener

import (
	"strings"
	"unicode"
)

// sanitizeReply neutralizes untrusted reply text before it goes anywhere
// near a shell. The chain is order sensitive:
//
//  1. strip control bytes except newline, CR, tab
//  2. collapse newlines to spaces, so a reply is always one input line
//  3. escape backslashes before introducing new ones
//  4. escape backticks and the $( / ${ substitution openers
//  5. trim
//
// The pane controller applies its own lower-level escaping on top; the two
// layers do not trust each other.
func sanitizeReply(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()

	out = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(out)
	out = strings.ReplaceAll(out, `\`, `\\`)
	out = strings.ReplaceAll(out, "`", "\\`")
	out = strings.ReplaceAll(out, "$(", `\$(`)
	out = strings.ReplaceAll(out, "${", `\${`)

	return strings.TrimSpace(out)
}

// capRunes truncates s to at most max runes.
func capRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
