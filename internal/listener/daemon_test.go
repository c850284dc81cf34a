package listener

import (
	"os"
	"strconv"
	"strings"
	"testing"
)

func TestCuratedEnvFiltering(t *testing.T) {
	environ := []string{
		"PATH=/usr/bin",
		"HOME=/home/dev",
		"TMUX=/tmp/tmux-1000/default,123,0",
		"PANEBOT_STATE_DIR=/tmp/state",
		"PANEBOT_CONFIG=/home/dev/.panebot/panebot.yaml",
		"PANEBOT_TELEGRAM_BOT_TOKEN=12345:abcdef",
		"PANEBOT_DISCORD_WEBHOOK_URL=https://discord.com/api/webhooks/x",
		"PANEBOT_SLACK_WEBHOOK_URL=https://hooks.slack.com/services/x",
		"PANEBOT_API_KEY=hunter2",
		"PANEBOT_DB_PASSWORD=hunter2",
		"PANEBOT_SHARED_SECRET=hunter2",
		"AWS_SECRET_ACCESS_KEY=hunter2",
		"EDITOR=vim",
		"MALFORMED",
	}

	got := curatedEnv(environ)
	joined := "\n" + strings.Join(got, "\n") + "\n"

	for _, want := range []string{"PATH=/usr/bin", "HOME=/home/dev", "TMUX=", "PANEBOT_STATE_DIR=", "PANEBOT_CONFIG="} {
		if !strings.Contains(joined, "\n"+want) {
			t.Errorf("curated env should keep %q, got %v", want, got)
		}
	}
	for _, banned := range []string{"TOKEN", "SECRET", "WEBHOOK", "PASSWORD", "hunter2", "abcdef", "EDITOR", "MALFORMED"} {
		if strings.Contains(joined, banned) {
			t.Errorf("curated env leaked %q: %v", banned, got)
		}
	}
}

func TestIsSecretName(t *testing.T) {
	secret := []string{
		"PANEBOT_TELEGRAM_BOT_TOKEN",
		"PANEBOT_WEBHOOK_URL",
		"PANEBOT_API_KEY",
		"PANEBOT_PASSWORD",
		"panebot_client_secret",
	}
	for _, n := range secret {
		if !isSecretName(n) {
			t.Errorf("%q should be treated as secret", n)
		}
	}
	clear := []string{"PANEBOT_STATE_DIR", "PANEBOT_CONFIG", "PANEBOT_DEBUG"}
	for _, n := range clear {
		if isSecretName(n) {
			t.Errorf("%q should not be treated as secret", n)
		}
	}
}

func TestSenderAllowedDenyByDefault(t *testing.T) {
	if senderAllowed(nil, "42", "alice") {
		t.Fatal("empty allow-list must deny everyone")
	}
	if senderAllowed([]string{}, "42", "alice") {
		t.Fatal("empty allow-list must deny everyone")
	}
	if !senderAllowed([]string{"42"}, "42", "alice") {
		t.Fatal("id match should be allowed")
	}
	if !senderAllowed([]string{"alice"}, "42", "alice") {
		t.Fatal("username match should be allowed")
	}
	if !senderAllowed([]string{"@alice"}, "42", "alice") {
		t.Fatal("@username match should be allowed")
	}
	if senderAllowed([]string{"@alice"}, "99", "bob") {
		t.Fatal("unlisted sender must be denied")
	}
	if senderAllowed([]string{"@"}, "42", "") {
		t.Fatal("empty username must not match the bare @ entry")
	}
}

func TestStartIdempotentWithLiveOwner(t *testing.T) {
	dir := t.TempDir()
	self := os.Getpid()

	// The test process itself plays the live daemon.
	if err := os.WriteFile(PIDPath(dir), []byte(strconv.Itoa(self)+"\n"), 0o600); err != nil {
		t.Fatalf("write pid: %v", err)
	}

	for i := 0; i < 2; i++ {
		pid, already, err := Start(dir, "/nonexistent.yaml")
		if err != nil {
			t.Fatalf("Start call %d: %v", i+1, err)
		}
		if !already || pid != self {
			t.Fatalf("Start call %d = (%d, %v), want the live owner %d without forking", i+1, pid, already, self)
		}
	}

	data, err := os.ReadFile(PIDPath(dir))
	if err != nil {
		t.Fatalf("read pid: %v", err)
	}
	if strings.TrimSpace(string(data)) != strconv.Itoa(self) {
		t.Fatalf("pid file rewritten to %q", data)
	}
	// A short-circuited start forks nothing and writes no state.
	if _, err := os.Stat(StatePath(dir)); !os.IsNotExist(err) {
		t.Fatal("short-circuited start must not write state")
	}
}

func TestGetStatusNeverStarted(t *testing.T) {
	status, st := GetStatus(t.TempDir())
	if status != StatusNeverStarted || st != nil {
		t.Fatalf("fresh dir: got %v, %+v", status, st)
	}
}

func TestGetStatusStoppedIgnoresStaleFlag(t *testing.T) {
	dir := t.TempDir()

	// A crashed daemon leaves IsRunning set and a pid file naming a dead pid.
	st := &DaemonState{IsRunning: true, PID: 1 << 30}
	if err := st.Save(StatePath(dir)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(PIDPath(dir), []byte(strconv.Itoa(1<<30)+"\n"), 0o600); err != nil {
		t.Fatalf("write pid: %v", err)
	}

	status, got := GetStatus(dir)
	if status != StatusStopped {
		t.Fatalf("dead owner should report stopped, got %v", status)
	}
	if got == nil {
		t.Fatal("state should still be returned for inspection")
	}
}

func TestStopCleansUpAfterCrash(t *testing.T) {
	dir := t.TempDir()
	st := &DaemonState{IsRunning: true, PID: 1 << 30}
	if err := st.Save(StatePath(dir)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(PIDPath(dir), []byte(strconv.Itoa(1<<30)+"\n"), 0o600); err != nil {
		t.Fatalf("write pid: %v", err)
	}

	wasRunning, err := Stop(dir)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if wasRunning {
		t.Fatal("dead owner should not count as running")
	}
	if _, err := os.Stat(PIDPath(dir)); !os.IsNotExist(err) {
		t.Fatal("pid file should be removed")
	}
	after := LoadState(StatePath(dir))
	if after.IsRunning {
		t.Fatal("stale running flag should be cleared")
	}
}

func TestReadPID(t *testing.T) {
	dir := t.TempDir()
	if _, ok := ReadPID(dir); ok {
		t.Fatal("missing pid file should report not ok")
	}
	if err := os.WriteFile(PIDPath(dir), []byte("garbage\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := ReadPID(dir); ok {
		t.Fatal("unparsable pid file should report not ok")
	}
	if err := os.WriteFile(PIDPath(dir), []byte("  1234 \n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	pid, ok := ReadPID(dir)
	if !ok || pid != 1234 {
		t.Fatalf("ReadPID = %d, %v", pid, ok)
	}
}
