//go:build !windows

package registry

import (
	"errors"
	"syscall"
)

// ProcessAlive probes a pid with signal 0. EPERM means the process exists
// but belongs to another user, which still counts as alive.
func ProcessAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
