package listener

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	st := &DaemonState{
		IsRunning:            true,
		PID:                  4242,
		StartedAt:            "2026-08-29T10:00:00Z",
		TelegramLastUpdateID: 991,
		DiscordLastMessageID: "112233445566778899",
		MessagesInjected:     7,
	}
	if err := st.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := LoadState(path)
	if got.PID != 4242 || got.TelegramLastUpdateID != 991 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if got.DiscordLastMessageID != "112233445566778899" {
		t.Fatalf("discord cursor lost: %q", got.DiscordLastMessageID)
	}
	if got.MessagesInjected != 7 {
		t.Fatalf("counter lost: %d", got.MessagesInjected)
	}
}

func TestLoadStateMissingFile(t *testing.T) {
	st := LoadState(filepath.Join(t.TempDir(), "nope.json"))
	if st == nil || st.PID != 0 || st.IsRunning {
		t.Fatalf("missing file should yield zero state, got %+v", st)
	}
}

func TestLoadStateCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	st := LoadState(path)
	if st == nil || st.TelegramLastUpdateID != 0 {
		t.Fatalf("corrupt file should yield zero state, got %+v", st)
	}
}

func TestSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := &DaemonState{PID: 1}
	if err := st.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file should not survive a successful save")
	}
}

func TestRecordError(t *testing.T) {
	var st DaemonState
	st.RecordError(errors.New("telegram: connection refused"))
	st.RecordError(nil)
	if st.Errors != 2 {
		t.Fatalf("Errors = %d, want 2", st.Errors)
	}
	if st.LastError != "telegram: connection refused" {
		t.Fatalf("LastError = %q", st.LastError)
	}
}
