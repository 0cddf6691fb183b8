package proc

import (
	"io"
	"os"

	"gosh/core/shell"
)

// Resolver turns a program name into an executable path.
type Resolver interface {
	LookPath(name string) (string, error)
}

// Subprocess records one spawned pipeline member: the OS process ID and the
// command it executes.
type Subprocess struct {
	PID  int
	Spec shell.Command
}

// Launcher creates the OS processes for one pipeline, wiring pipes and file
// redirections parent-side. Every child is spawned through the exec-stub
// trampoline, so it parks in a self-stopped state until the coordinator
// finishes group assignment.
type Launcher struct {
	Resolver Resolver
	Session  *Session

	// Stub is the argv prefix of the trampoline, normally the shell's own
	// executable followed by StubCommand. Injectable for tests.
	Stub []string
	// StubEnv is appended to the inherited environment of every child.
	StubEnv []string
}

// NewLauncher builds a launcher spawning through the running binary.
func NewLauncher(resolver Resolver, session *Session) (*Launcher, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return &Launcher{
		Resolver: resolver,
		Session:  session,
		Stub:     []string{exe, StubCommand},
	}, nil
}

type fileList []io.Closer

func (fl fileList) Close() error {
	var lastErr error
	for _, f := range fl {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Launch spawns one self-stopped process per pipeline command, connecting
// adjacent commands with anonymous pipes and applying file redirections.
//
// Program resolution happens up front: if any command fails to resolve, the
// whole pipeline is aborted before a single process exists. On a spawn
// failure the already-created subprocesses are still returned alongside the
// error so the caller can settle them instead of abandoning them.
func (l *Launcher) Launch(p *shell.Pipeline) ([]Subprocess, error) {
	paths := make([]string, len(p.Commands))
	for i, c := range p.Commands {
		path, err := l.Resolver.LookPath(c.Name())
		if err != nil {
			return nil, &ResolutionError{Program: c.Name(), Err: err}
		}
		paths[i] = path
	}

	var toClose fileList
	defer toClose.Close()

	env := os.Environ()
	env = append(env, l.StubEnv...)

	var procs []Subprocess
	stdin := l.Session.Stdin
	for i, c := range p.Commands {
		in, out := stdin, l.Session.Stdout

		if c.InFile != "" {
			f, err := os.Open(c.InFile)
			if err != nil {
				return procs, &SpawnError{Program: c.Name(), Err: err}
			}
			toClose = append(toClose, f)
			in = f
		}
		if c.OutFile != "" {
			f, err := os.Create(c.OutFile)
			if err != nil {
				return procs, &SpawnError{Program: c.Name(), Err: err}
			}
			toClose = append(toClose, f)
			out = f
		}

		// All but the last command write into a pipe; the read end becomes
		// the next command's input.
		if i < len(p.Commands)-1 {
			r, w, err := os.Pipe()
			if err != nil {
				return procs, &SpawnError{Program: c.Name(), Err: err}
			}
			toClose = append(toClose, r, w)
			out = w
			stdin = r
		} else {
			stdin = l.Session.Stdin
		}

		argv := make([]string, 0, len(l.Stub)+1+len(c.Argv))
		argv = append(argv, l.Stub...)
		argv = append(argv, paths[i])
		argv = append(argv, c.Argv...)

		process, err := os.StartProcess(l.Stub[0], argv, &os.ProcAttr{
			Files: []*os.File{in, out, l.Session.Stderr},
			Env:   env,
		})
		if err != nil {
			return procs, &SpawnError{Program: c.Name(), Err: err}
		}
		// The coordinator reaps through wait4 directly; only the ID is kept.
		procs = append(procs, Subprocess{PID: process.Pid, Spec: c})
		_ = process.Release()
	}
	return procs, nil
}
