package proc

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// shellSignals are the terminal-generated signals the shell process must
// survive. They are always delivered to the terminal's foreground group, so
// a foreground job receives them directly; the shell sees them only when it
// is itself foreground with no job running.
//
// SIGKILL and SIGSTOP cannot be caught.
var shellSignals = []os.Signal{
	unix.SIGINT,
	unix.SIGQUIT,
	unix.SIGTSTP,
	unix.SIGTERM,
	unix.SIGPIPE,
}

// SignalManager configures the shell's own signal disposition.
//
// It deliberately installs no-op *handlers* rather than SIG_IGN: an ignored
// disposition persists across execve and would make every spawned program
// silently swallow interrupts, while a handler is reset to the default
// disposition by the kernel when the child replaces its image.
type SignalManager struct {
	ch   chan os.Signal
	done chan struct{}
}

// InstallSignalHandlers makes the terminal-generated interrupt, quit and
// stop signals no-ops for the shell process.
func InstallSignalHandlers() *SignalManager {
	m := &SignalManager{
		ch:   make(chan os.Signal, 8),
		done: make(chan struct{}),
	}
	signal.Notify(m.ch, shellSignals...)
	go func() {
		for {
			select {
			case <-m.ch: // discard
			case <-m.done:
				return
			}
		}
	}()
	return m
}

// Uninstall restores the default dispositions.
func (m *SignalManager) Uninstall() {
	signal.Stop(m.ch)
	close(m.done)
}

// ignoringTTOU runs fn with the terminal-generated background-write signal
// ignored. A backgrounded shell that reassigns the terminal foreground would
// otherwise be stopped by its own tcsetpgrp call.
func ignoringTTOU(fn func() error) error {
	signal.Ignore(unix.SIGTTOU)
	defer signal.Reset(unix.SIGTTOU)
	return fn()
}
