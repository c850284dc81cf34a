package registry

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testLock(t *testing.T) *fileLock {
	t.Helper()
	lk := newFileLock(filepath.Join(t.TempDir(), "test.lock"))
	lk.waitBudget = 300 * time.Millisecond
	lk.retryInterval = 10 * time.Millisecond
	return lk
}

func writeLockBody(t *testing.T, path string, info lockInfo) {
	t.Helper()
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal lock body: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write lock body: %v", err)
	}
}

func TestLockAcquireRelease(t *testing.T) {
	lk := testLock(t)

	if err := lk.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := os.Stat(lk.path); err != nil {
		t.Fatalf("lock file missing after acquire: %v", err)
	}

	var info lockInfo
	data, _ := os.ReadFile(lk.path)
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("lock body not json: %v", err)
	}
	if info.PID != os.Getpid() || info.Token == "" || info.AcquiredAt == "" {
		t.Fatalf("unexpected lock body: %+v", info)
	}

	lk.Release()
	if _, err := os.Stat(lk.path); !os.IsNotExist(err) {
		t.Fatal("lock file should be gone after release")
	}
}

func TestLockDeadOwnerReclaimedImmediately(t *testing.T) {
	lk := testLock(t)

	// PID far beyond pid_max so it cannot name a live process.
	writeLockBody(t, lk.path, lockInfo{PID: 1 << 30, AcquiredAt: Now(), Token: "stale"})

	start := time.Now()
	if err := lk.Acquire(); err != nil {
		t.Fatalf("Acquire over dead owner: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("dead-owner reclaim should not wait out a timeout, took %v", elapsed)
	}
}

func TestLockCorruptBodyTreatedAsNoLock(t *testing.T) {
	lk := testLock(t)

	if err := os.WriteFile(lk.path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("write corrupt body: %v", err)
	}
	if err := lk.Acquire(); err != nil {
		t.Fatalf("Acquire over corrupt lock: %v", err)
	}
}

func TestLockAcquireBoundedUnderCorruptChurn(t *testing.T) {
	lk := testLock(t)

	// A crashing writer keeps leaving corrupt lock bodies behind. Each one
	// is reclaimed and the create retried, but Acquire must still respect
	// its wait budget rather than chase the churn forever.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = os.WriteFile(lk.path, []byte("not json"), 0o600)
		}
	}()

	done := make(chan error, 1)
	go func() { done <- lk.Acquire() }()

	select {
	case err := <-done:
		// Winning the race against the churn is fine; running out of
		// budget is fine. Only spinning forever is a bug.
		if err != nil && !errors.Is(err, ErrLockBusy) {
			t.Fatalf("Acquire: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire ran past its wait budget")
	}

	close(stop)
	wg.Wait()
}

func TestLockLiveOwnerHonored(t *testing.T) {
	lk := testLock(t)

	// Our own pid is provably alive; the lock must be honored until the
	// budget runs out, regardless of how old AcquiredAt claims to be.
	writeLockBody(t, lk.path, lockInfo{
		PID:        os.Getpid(),
		AcquiredAt: time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339Nano),
		Token:      "held",
	})

	if err := lk.Acquire(); !errors.Is(err, ErrLockBusy) {
		t.Fatalf("expected ErrLockBusy against live owner, got %v", err)
	}
}

func TestLockContendersBothSucceed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contended.lock")

	acquire := func() error {
		lk := newFileLock(path)
		lk.waitBudget = 2 * time.Second
		lk.retryInterval = 5 * time.Millisecond
		if err := lk.Acquire(); err != nil {
			return err
		}
		time.Sleep(20 * time.Millisecond)
		lk.Release()
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = acquire()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("contender %d failed: %v", i, err)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("lock file should be released at the end")
	}
}

func TestRegisterFailsWhenLockHeld(t *testing.T) {
	dir := t.TempDir()
	r := New(dir)

	// Simulate another live writer holding the lock.
	lockPath := r.lockPath
	writeLockBody(t, lockPath, lockInfo{PID: os.Getpid(), AcquiredAt: Now(), Token: "other"})

	// Register waits out the full retry budget before failing.
	done := make(chan error, 1)
	go func() {
		done <- r.Register(SessionMapping{Platform: "telegram", MessageID: "1", SessionID: "s"})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrLockBusy) {
			t.Fatalf("expected ErrLockBusy, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Register did not return within the lock budget")
	}
}
