package listener

import (
	"encoding/json"
	"os"
	"time"
)

// DaemonState is the daemon's persisted view of itself: liveness hint,
// per-platform poll cursors, and lifetime counters. One instance exists,
// owned by the running daemon and read-modify-written every tick.
//
// IsRunning is a hint only; readers verify the pid independently since a
// crashed daemon leaves the flag set.
type DaemonState struct {
	IsRunning bool   `json:"isRunning"`
	PID       int    `json:"pid"`
	StartedAt string `json:"startedAt,omitempty"`
	LastPollAt string `json:"lastPollAt,omitempty"`

	TelegramLastUpdateID int64  `json:"telegramLastUpdateId"`
	DiscordLastMessageID string `json:"discordLastMessageId,omitempty"`

	MessagesInjected int64  `json:"messagesInjected"`
	Errors           int64  `json:"errors"`
	LastError        string `json:"lastError,omitempty"`
}

// LoadState reads the state file. Missing or corrupt state comes back as a
// fresh zero state, never an error; historical counters are nice to have,
// not load-bearing.
func LoadState(path string) *DaemonState {
	var st DaemonState
	data, err := os.ReadFile(path)
	if err != nil {
		return &st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return &DaemonState{}
	}
	return &st
}

// Save writes the state atomically via temp-file rename.
func (s *DaemonState) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// RecordError notes a tick-level failure in the counters.
func (s *DaemonState) RecordError(err error) {
	s.Errors++
	if err != nil {
		s.LastError = err.Error()
	}
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
