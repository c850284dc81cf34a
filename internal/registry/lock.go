package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// ErrLockBusy means the lock stayed held by a live process for the whole
// retry budget. The caller's write fails rather than proceeding unlocked.
var ErrLockBusy = errors.New("registry lock held by a live process")

type lockInfo struct {
	PID        int    `json:"pid"`
	AcquiredAt string `json:"acquiredAt"`
	Token      string `json:"token"`
}

const (
	lockRetryInterval = 50 * time.Millisecond
	lockRetryMax      = 500 * time.Millisecond
	lockWaitBudget    = 5 * time.Second
)

// fileLock is an exclusive cross-process lock backed by atomic file
// creation (O_CREATE|O_EXCL).
type fileLock struct {
	path  string
	token string

	waitBudget    time.Duration
	retryInterval time.Duration
}

func newFileLock(path string) *fileLock {
	return &fileLock{
		path:          path,
		waitBudget:    lockWaitBudget,
		retryInterval: lockRetryInterval,
	}
}

// Acquire takes the lock, reclaiming it immediately when the recorded owner
// is dead and backing off while the owner is alive. Liveness is
// authoritative: a slow-but-alive holder is never pre-empted on age.
func (l *fileLock) Acquire() error {
	deadline := time.Now().Add(l.waitBudget)
	interval := l.retryInterval

	for attempt := 0; ; attempt++ {
		// Every iteration is bounded, including the reclaim-and-retry path,
		// so churned corrupt lock bodies cannot spin past the budget.
		if attempt > 0 && time.Now().After(deadline) {
			return ErrLockBusy
		}

		ok, err := l.tryCreate()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		if l.reclaimDead() {
			// Dead owner removed; retry the create immediately.
			continue
		}

		time.Sleep(interval)
		if interval < lockRetryMax {
			interval *= 2
		}
	}
}

func (l *fileLock) tryCreate() (bool, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("creating lock file: %w", err)
	}

	token := uuid.NewString()
	info := lockInfo{
		PID:        os.Getpid(),
		AcquiredAt: Now(),
		Token:      token,
	}
	data, _ := json.Marshal(info)
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(l.path)
		return false, fmt.Errorf("writing lock body: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(l.path)
		return false, err
	}
	l.token = token
	return true, nil
}

// reclaimDead removes the lock file when its recorded owner is not a live
// process, or when its body is unreadable (treated as no lock at all).
// Returns true when the caller should retry creation immediately.
func (l *fileLock) reclaimDead() bool {
	data, err := os.ReadFile(l.path)
	if err != nil {
		// Holder may have released between our create attempt and this read.
		return os.IsNotExist(err)
	}

	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil || info.PID <= 0 {
		_ = os.Remove(l.path)
		return true
	}
	if ProcessAlive(info.PID) {
		return false
	}
	_ = os.Remove(l.path)
	return true
}

// Release drops the lock, but only if the on-disk token is still ours. A
// reclaim race could otherwise delete a lock some other writer now holds.
func (l *fileLock) Release() {
	if l.token == "" {
		return
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		l.token = ""
		return
	}
	var info lockInfo
	if err := json.Unmarshal(data, &info); err == nil && info.Token != l.token {
		l.token = ""
		return
	}
	_ = os.Remove(l.path)
	l.token = ""
}
