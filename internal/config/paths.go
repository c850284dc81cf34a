package config

import (
	"os"
	"path/filepath"
	"strings"
)

// StateDir resolves the state root for registry, lock, PID, cursor state
// and listener log files.
//
// Resolution order: cfg.StateDir, then $PANEBOT_STATE_DIR, then ~/.panebot.
// cfg may be nil (e.g. before the config file exists).
func StateDir(cfg *Config) string {
	if cfg != nil {
		if d := strings.TrimSpace(cfg.StateDir); d != "" {
			return d
		}
	}
	if d := strings.TrimSpace(os.Getenv(EnvStateDir)); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		// last resort: relative dir in cwd
		return ".panebot"
	}
	return filepath.Join(home, ".panebot")
}

// DefaultPath returns the default config file location, honoring
// $PANEBOT_CONFIG when set.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv("PANEBOT_CONFIG")); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "panebot.yaml"
	}
	return filepath.Join(home, ".panebot", "panebot.yaml")
}

// State file names under the state root.
const (
	RegistryFileName  = "reply-session-registry.jsonl"
	RegistryLockName  = "reply-session-registry.lock"
	ListenerPIDName   = "reply-listener.pid"
	ListenerStateName = "reply-listener-state.json"
	ListenerLogName   = "reply-listener.log"
)
