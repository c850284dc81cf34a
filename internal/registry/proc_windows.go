//go:build windows

package registry

import "os"

func ProcessAlive(pid int) bool {
	// FindProcess always succeeds on Windows; opening the handle is the
	// closest equivalent to a signal-0 probe.
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	defer p.Release()
	return true
}
