//go:build !windows

package listener

import "syscall"

// detachAttr puts the child in its own session so it survives the
// launcher's terminal going away.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

func signalStop(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}
