// Package tmux wraps the tmux operations used for reply injection via
// subprocess calls.
package tmux

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Common errors.
var (
	ErrNoServer     = errors.New("no tmux server running")
	ErrPaneNotFound = errors.New("pane not found")
)

// Tmux wraps tmux operations. The zero value is usable.
type Tmux struct{}

func NewTmux() *Tmux {
	return &Tmux{}
}

// run executes a tmux command and returns trimmed stdout.
// All commands include -u for UTF-8 support regardless of locale settings.
func (t *Tmux) run(args ...string) (string, error) {
	allArgs := append([]string{"-u"}, args...)
	cmd := exec.Command("tmux", allArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", t.wrapError(err, stderr.String(), args)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (t *Tmux) wrapError(err error, stderr string, args []string) error {
	stderr = strings.TrimSpace(stderr)

	if strings.Contains(stderr, "no server running") ||
		strings.Contains(stderr, "error connecting to") ||
		strings.Contains(stderr, "server exited unexpectedly") {
		return ErrNoServer
	}
	if strings.Contains(stderr, "can't find pane") ||
		strings.Contains(stderr, "can't find session") ||
		strings.Contains(stderr, "session not found") {
		return ErrPaneNotFound
	}

	if stderr != "" {
		return fmt.Errorf("tmux %s: %s", args[0], stderr)
	}
	return fmt.Errorf("tmux %s: %w", args[0], err)
}

// IsAvailable checks whether tmux is installed and invocable.
func (t *Tmux) IsAvailable() bool {
	return exec.Command("tmux", "-V").Run() == nil
}

// IsInsideTmux reports whether the current process runs inside a tmux client.
func IsInsideTmux() bool {
	return os.Getenv("TMUX") != ""
}

// HasPane checks whether a pane ID (e.g. "%5") still exists.
func (t *Tmux) HasPane(pane string) bool {
	_, err := t.run("display-message", "-t", pane, "-p", "#{pane_id}")
	return err == nil
}

// PaneSession returns the session name owning a pane.
func (t *Tmux) PaneSession(pane string) (string, error) {
	out, err := t.run("display-message", "-t", pane, "-p", "#{session_name}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentPane returns the pane ID of the invoking client, or "" when the
// process is not inside tmux.
func (t *Tmux) CurrentPane() string {
	if p := os.Getenv("TMUX_PANE"); p != "" {
		return p
	}
	if !IsInsideTmux() {
		return ""
	}
	out, err := t.run("display-message", "-p", "#{pane_id}")
	if err != nil {
		return ""
	}
	return out
}

// CurrentSession returns the session name of the invoking client, or "".
func (t *Tmux) CurrentSession() string {
	if !IsInsideTmux() {
		return ""
	}
	out, err := t.run("display-message", "-p", "#{session_name}")
	if err != nil {
		return ""
	}
	return out
}

// CapturePane captures the last lines of a pane's visible content.
func (t *Tmux) CapturePane(pane string, lines int) (string, error) {
	return t.run("capture-pane", "-p", "-t", pane, "-S", fmt.Sprintf("-%d", lines))
}

// sendDebounce is the pause between pasting text literally and pressing
// Enter. Sending Enter in the same command races the paste on loaded
// systems and drops the submit.
const sendDebounce = 100 * time.Millisecond

// SendText pastes text into a pane in literal mode and presses Enter.
// Literal mode (-l) keeps tmux from interpreting the text as key names;
// Enter goes as a separate command for reliability.
func (t *Tmux) SendText(pane, text string) error {
	if _, err := t.run("send-keys", "-t", pane, "-l", text); err != nil {
		return err
	}
	time.Sleep(sendDebounce)
	_, err := t.run("send-keys", "-t", pane, "Enter")
	return err
}
