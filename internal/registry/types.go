package registry

import "time"

// SessionMapping is one registry record: an outbound platform message id
// mapped back to the session and pane it announced.
//
// CreatedAt stays a string on purpose. A mapping with a mangled timestamp
// must still decode so prune can classify it as corrupt and drop it, rather
// than failing the whole line.
type SessionMapping struct {
	Platform        string `json:"platform"`
	MessageID       string `json:"messageId"`
	SessionID       string `json:"sessionId"`
	TmuxPaneID      string `json:"tmuxPaneId"`
	TmuxSessionName string `json:"tmuxSessionName,omitempty"`
	Event           string `json:"event,omitempty"`
	CreatedAt       string `json:"createdAt"`
	Read            bool   `json:"read,omitempty"`
}

// CreatedTime parses CreatedAt. ok is false for missing or unparsable
// timestamps.
func (m *SessionMapping) CreatedTime() (time.Time, bool) {
	if m.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, m.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Now formats a timestamp the way CreatedAt stores it.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
