package proc

import (
	"log"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Session holds the shell's process-wide terminal state: its own process
// group, the controlling terminal descriptor, the saved terminal mode, and
// the group currently owning the foreground. It is created once at startup
// and mutated on every foreground/background transition.
type Session struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	// Interactive is true when Stdin is a terminal. Non-interactive
	// sessions skip every terminal-foreground operation.
	Interactive bool

	// TTY is the terminal file descriptor (Stdin's).
	TTY int

	// PGID is the shell's own process group.
	PGID int

	savedTermios *unix.Termios
	foreground   int
}

// NewSession builds a session around the given standard streams.
func NewSession(stdin, stdout, stderr *os.File) *Session {
	return &Session{Stdin: stdin, Stdout: stdout, Stderr: stderr}
}

// Init claims the terminal for the shell. If the shell was started in the
// background it stops its own group with SIGTTIN until promoted, then takes
// the foreground and saves the terminal mode for restoration at exit.
func (s *Session) Init() error {
	s.TTY = int(s.Stdin.Fd())
	s.Interactive = term.IsTerminal(s.TTY)
	if !s.Interactive {
		s.PGID = unix.Getpgrp()
		s.foreground = s.PGID
		return nil
	}

	for {
		pgid := unix.Getpgrp()
		fg, err := unix.IoctlGetInt(s.TTY, unix.TIOCGPGRP)
		if err != nil {
			return &ForegroundError{PGID: pgid, Err: err}
		}
		if pgid == fg {
			break
		}
		// Suspends the whole group; a SIGCONT arrives once promoted.
		_ = unix.Kill(-pgid, unix.SIGTTIN)
	}

	// Lead a fresh group so the terminal can be handed back to the shell
	// by its own ID. Fails with EPERM when already a leader.
	if err := unix.Setpgid(0, 0); err != nil && err != unix.EPERM {
		log.Printf("could not create shell process group: %v", err)
	}
	s.PGID = unix.Getpgrp()

	if err := s.setForeground(s.PGID); err != nil {
		return err
	}
	s.foreground = s.PGID

	tm, err := unix.IoctlGetTermios(s.TTY, unix.TCGETS)
	if err != nil {
		return err
	}
	s.savedTermios = tm
	return nil
}

// ForegroundGroup returns the process group currently owning the terminal.
// For non-interactive sessions this is always the shell's own group.
func (s *Session) ForegroundGroup() int {
	return s.foreground
}

// GiveForeground makes pgid the terminal's foreground process group.
func (s *Session) GiveForeground(pgid int) error {
	if !s.Interactive {
		return nil
	}
	if err := s.setForeground(pgid); err != nil {
		return err
	}
	s.foreground = pgid
	return nil
}

// ReclaimForeground returns the terminal foreground to the shell's own
// group, once its foreground job has settled.
func (s *Session) ReclaimForeground() error {
	return s.GiveForeground(unix.Getpgrp())
}

func (s *Session) setForeground(pgid int) error {
	err := ignoringTTOU(func() error {
		return unix.IoctlSetPointerInt(s.TTY, unix.TIOCSPGRP, pgid)
	})
	if err != nil {
		return &ForegroundError{PGID: pgid, Err: err}
	}
	return nil
}

// RestoreTerminal puts the terminal mode back the way Init found it.
// Called only during shell teardown.
func (s *Session) RestoreTerminal() error {
	if !s.Interactive || s.savedTermios == nil {
		return nil
	}
	return unix.IoctlSetTermios(s.TTY, unix.TCSETS, s.savedTermios)
}
