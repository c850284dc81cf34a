package listener

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"panebot/internal/config"
	"panebot/internal/registry"
)

// Status of the daemon as seen from outside.
type Status string

const (
	// StatusNeverStarted means no state file exists at all.
	StatusNeverStarted Status = "never-started"
	// StatusStopped means state exists but no live process owns it.
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
)

func PIDPath(stateDir string) string   { return filepath.Join(stateDir, config.ListenerPIDName) }
func StatePath(stateDir string) string { return filepath.Join(stateDir, config.ListenerStateName) }
func LogPath(stateDir string) string   { return filepath.Join(stateDir, config.ListenerLogName) }

// ReadPID returns the PID file contents, or ok=false when the file is
// missing or unparsable.
func ReadPID(stateDir string) (int, bool) {
	data, err := os.ReadFile(PIDPath(stateDir))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// LiveOwner returns the PID of a live daemon, if any. A PID file naming a
// dead process does not count; that is the normal post-crash state.
func LiveOwner(stateDir string) (int, bool) {
	pid, ok := ReadPID(stateDir)
	if !ok || !registry.ProcessAlive(pid) {
		return 0, false
	}
	return pid, true
}

// Start launches the daemon as a detached child re-invoking this binary.
// Idempotent: a live owner means success without forking.
//
// The child gets a curated environment: generic variables from an explicit
// allow-list plus PANEBOT_* variables with secret-bearing names removed.
// Credentials are re-resolved by the child from the config file, so they
// never ride through the fork.
func Start(stateDir, cfgPath string) (pid int, alreadyRunning bool, err error) {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return 0, false, fmt.Errorf("creating state dir: %w", err)
	}

	if owner, ok := LiveOwner(stateDir); ok {
		return owner, true, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return 0, false, fmt.Errorf("resolving executable: %w", err)
	}

	cmd := exec.Command(exe, "listener", "run", "--config", cfgPath)
	cmd.Env = curatedEnv(os.Environ())
	cmd.SysProcAttr = detachAttr()

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err == nil {
		cmd.Stdin = devnull
		cmd.Stdout = devnull
		cmd.Stderr = devnull
		defer devnull.Close()
	}

	if err := cmd.Start(); err != nil {
		return 0, false, fmt.Errorf("forking listener: %w", err)
	}
	pid = cmd.Process.Pid
	_ = cmd.Process.Release()

	if err := os.WriteFile(PIDPath(stateDir), []byte(strconv.Itoa(pid)+"\n"), 0o600); err != nil {
		return 0, false, fmt.Errorf("writing pid file: %w", err)
	}

	// Initial state so status answers "starting" truthfully before the
	// first tick. Counters from previous runs survive.
	st := LoadState(StatePath(stateDir))
	st.IsRunning = true
	st.PID = pid
	st.StartedAt = nowStamp()
	st.LastError = ""
	if err := st.Save(StatePath(stateDir)); err != nil {
		return 0, false, fmt.Errorf("writing initial state: %w", err)
	}
	return pid, false, nil
}

// Stop signals a live daemon and cleans up the PID file. Stopping an
// already-stopped daemon is success after cleanup.
func Stop(stateDir string) (wasRunning bool, err error) {
	pid, ok := ReadPID(stateDir)
	if ok && registry.ProcessAlive(pid) {
		if err := signalStop(pid); err != nil {
			return false, fmt.Errorf("signaling pid %d: %w", pid, err)
		}
		wasRunning = true
	}

	_ = os.Remove(PIDPath(stateDir))

	if !wasRunning {
		// Stale state from a crashed daemon; make status truthful again.
		st := LoadState(StatePath(stateDir))
		if st.IsRunning {
			st.IsRunning = false
			st.PID = 0
			_ = st.Save(StatePath(stateDir))
		}
	}
	return wasRunning, nil
}

// GetStatus distinguishes never-started from stopped from running, using
// process liveness rather than the persisted IsRunning flag.
func GetStatus(stateDir string) (Status, *DaemonState) {
	if _, err := os.Stat(StatePath(stateDir)); err != nil {
		return StatusNeverStarted, nil
	}
	st := LoadState(StatePath(stateDir))
	if _, ok := LiveOwner(stateDir); ok {
		return StatusRunning, st
	}
	return StatusStopped, st
}

// envAllowlist is the generic environment the forked child keeps.
var envAllowlist = map[string]bool{
	"PATH": true, "HOME": true, "USER": true, "SHELL": true,
	"LANG": true, "LC_ALL": true, "TERM": true,
	"TMUX": true, "TMUX_PANE": true,
	"HTTP_PROXY": true, "HTTPS_PROXY": true, "NO_PROXY": true,
	"http_proxy": true, "https_proxy": true, "no_proxy": true,
}

// secretiveNames are substrings that mark a PANEBOT_* variable as
// credential-bearing and therefore excluded from the fork.
var secretiveNames = []string{"TOKEN", "SECRET", "WEBHOOK", "KEY", "PASSWORD"}

func curatedEnv(environ []string) []string {
	var out []string
	for _, kv := range environ {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			continue
		}
		name := kv[:eq]
		if envAllowlist[name] {
			out = append(out, kv)
			continue
		}
		if strings.HasPrefix(name, "PANEBOT_") && !isSecretName(name) {
			out = append(out, kv)
		}
	}
	return out
}

func isSecretName(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range secretiveNames {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
