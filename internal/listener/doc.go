// Package listener implements the reply listener daemon.
//
// The daemon is a detached child process that polls chat platforms for
// replies to tracked notification messages and injects the sanitized text
// into the originating tmux pane. It owns the PID file, the persisted
// DaemonState, and its own log file; the registry is the only state it
// shares with other processes.
//
// One tick polls every enabled platform sequentially, so all DaemonState
// mutation stays single-threaded. Poll cursors are persisted before the
// injection they enable, which makes injection at-most-once across crashes:
// a crash between persist and inject loses the reply, it never doubles it.
package listener
