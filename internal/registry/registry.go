package registry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"panebot/internal/config"
)

// ErrNotFound is returned by LookupByMessageID when no decodable record
// matches.
var ErrNotFound = errors.New("mapping not found")

// StaleAfter is how long a mapping survives before prune drops it.
const StaleAfter = 24 * time.Hour

// Registry stores session mappings in a JSONL log under the state root.
// Safe for use from multiple processes; all mutation goes through the file
// lock.
type Registry struct {
	dir      string
	logPath  string
	lockPath string
}

func New(stateDir string) *Registry {
	return &Registry{
		dir:      stateDir,
		logPath:  filepath.Join(stateDir, config.RegistryFileName),
		lockPath: filepath.Join(stateDir, config.RegistryLockName),
	}
}

// Register appends one mapping under the lock. A missing CreatedAt defaults
// to now. The log carries owner-only permissions since message ids leak
// session metadata.
func (r *Registry) Register(m SessionMapping) error {
	if m.Platform == "" || m.MessageID == "" {
		return fmt.Errorf("mapping requires platform and messageId")
	}
	if m.CreatedAt == "" {
		m.CreatedAt = Now()
	}

	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	lk := newFileLock(r.lockPath)
	if err := lk.Acquire(); err != nil {
		return fmt.Errorf("acquiring registry lock: %w", err)
	}
	defer lk.Release()

	line, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding mapping: %w", err)
	}

	f, err := os.OpenFile(r.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening registry log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("appending mapping: %w", err)
	}
	// A failure surfacing only at close (delayed flush) still means the
	// record may not be durable; callers must not treat it as registered.
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing registry log: %w", err)
	}
	return nil
}

// LoadAllMappings returns every decodable record in file order. Undecodable
// lines are skipped, never fatal.
func (r *Registry) LoadAllMappings() ([]SessionMapping, error) {
	data, err := os.ReadFile(r.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading registry log: %w", err)
	}

	var out []SessionMapping
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var m SessionMapping
		if err := json.Unmarshal(line, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// LookupByMessageID returns the last decodable record matching the pair, so
// the most recent append wins on duplicate ids.
func (r *Registry) LookupByMessageID(platform, messageID string) (*SessionMapping, error) {
	all, err := r.LoadAllMappings()
	if err != nil {
		return nil, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Platform == platform && all[i].MessageID == messageID {
			m := all[i]
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

// RemoveSession rewrites the log without the session's mappings.
func (r *Registry) RemoveSession(sessionID string) error {
	return r.rewrite(func(m *SessionMapping) bool {
		return m.SessionID != sessionID
	})
}

// RemoveMessagesByPane rewrites the log without the pane's mappings. Used
// when liveness verification finds the pane gone.
func (r *Registry) RemoveMessagesByPane(paneID string) error {
	return r.rewrite(func(m *SessionMapping) bool {
		return m.TmuxPaneID != paneID
	})
}

// MarkRead rewrites the matching records with their read flag set.
func (r *Registry) MarkRead(platform, messageID string) error {
	return r.update(func(m *SessionMapping) {
		if m.Platform == platform && m.MessageID == messageID {
			m.Read = true
		}
	})
}

// PruneStale rewrites the log keeping only records younger than maxAge.
// Records with missing or unparsable timestamps are corrupt and dropped.
func (r *Registry) PruneStale(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	return r.rewrite(func(m *SessionMapping) bool {
		t, ok := m.CreatedTime()
		return ok && !t.Before(cutoff)
	})
}

func (r *Registry) rewrite(keep func(*SessionMapping) bool) error {
	return r.mutate(func(all []SessionMapping) []SessionMapping {
		kept := all[:0]
		for i := range all {
			if keep(&all[i]) {
				kept = append(kept, all[i])
			}
		}
		return kept
	})
}

func (r *Registry) update(apply func(*SessionMapping)) error {
	return r.mutate(func(all []SessionMapping) []SessionMapping {
		for i := range all {
			apply(&all[i])
		}
		return all
	})
}

// mutate rewrites the whole log under the lock: load the decodable records,
// transform, write a temp file alongside, and rename it into place. Corrupt
// lines do not survive a rewrite.
func (r *Registry) mutate(transform func([]SessionMapping) []SessionMapping) error {
	lk := newFileLock(r.lockPath)
	if err := lk.Acquire(); err != nil {
		return fmt.Errorf("acquiring registry lock: %w", err)
	}
	defer lk.Release()

	all, err := r.LoadAllMappings()
	if err != nil {
		return err
	}
	next := transform(all)

	var buf bytes.Buffer
	for i := range next {
		line, err := json.Marshal(next[i])
		if err != nil {
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	tmp := r.logPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing registry rewrite: %w", err)
	}
	if err := os.Rename(tmp, r.logPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing registry log: %w", err)
	}
	return nil
}
