// Package core implements the shell: the read-eval loop, the command
// dispatcher, and the builtins.
package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/anmitsu/go-shlex"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"golang.org/x/term"

	"gosh/core/config"
	"gosh/core/job"
	"gosh/core/proc"
	"gosh/core/shell"
)

const DefaultPrompt = `\#: `

var errorColor = color.New(color.FgRed)

// Shell is one interactive shell session: a read-eval loop wired to the
// launcher, the process-group coordinator, and the job table.
type Shell struct {
	Config   *config.Configuration
	Readline *readline.Instance
	Session  *proc.Session
	Jobs     *job.Table

	signals     *proc.SignalManager
	launcher    *proc.Launcher
	coordinator *proc.Coordinator

	lineNum    int
	quit       bool
	quitStatus int
}

// NewShell claims the terminal, installs the shell's signal disposition,
// and prepares the read-eval loop.
func NewShell(configuration *config.Configuration) (*Shell, error) {
	session := proc.NewSession(os.Stdin, os.Stdout, os.Stderr)
	if err := session.Init(); err != nil {
		return nil, err
	}

	resolver := &PathResolver{
		Fs:       afero.NewOsFs(),
		Getenv:   os.Getenv,
		Fallback: configuration.Path,
	}
	launcher, err := proc.NewLauncher(resolver, session)
	if err != nil {
		return nil, err
	}

	jobs := job.NewTable()

	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(os.Stdin),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		FuncGetWidth: func() int {
			w, _, err := term.GetSize(session.TTY)
			if err != nil {
				return 80
			}
			return w
		},
		FuncIsTerminal: func() bool {
			return session.Interactive
		},
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	return &Shell{
		Config:      configuration,
		Readline:    rl,
		Session:     session,
		Jobs:        jobs,
		signals:     proc.InstallSignalHandlers(),
		launcher:    launcher,
		coordinator: &proc.Coordinator{Session: session, Jobs: jobs},
	}, nil
}

// Prompt expands the configured prompt template.
func (s *Shell) Prompt() string {
	prompt := s.Config.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	prompt = strings.ReplaceAll(prompt, `\#`, strconv.Itoa(s.lineNum))

	if strings.Contains(prompt, `\w`) {
		wd, err := os.Getwd()
		if err != nil {
			wd = "?"
		}
		if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(wd, home) {
			wd = "~" + strings.TrimPrefix(wd, home)
		}
		prompt = strings.ReplaceAll(prompt, `\w`, wd)
	}

	if os.Getuid() == 0 {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}
	return prompt
}

// Run is the read-eval loop. It returns the shell's final exit status when
// input is closed or the exit builtin runs.
func (s *Shell) Run() (int, error) {
	for !s.quit {
		s.notifyDone()
		s.Readline.SetPrompt(s.Prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return s.quitStatus, nil // Input closed, quit.

		case err == readline.ErrInterrupt:
			continue // Abandoned line.

		case err != nil:
			return s.quitStatus, err
		}

		s.lineNum++
		tokens, err := shlex.Split(line, true)
		if err != nil {
			s.printError(&shell.ParseError{Msg: "unexpected end of line"})
			continue
		}
		s.Execute(tokens)
	}
	return s.quitStatus, nil
}

// notifyDone performs the pull-based reap: background jobs observed to have
// exited are dropped from the table before the next prompt. The reap always
// runs; the configuration gates only the reporting.
func (s *Shell) notifyDone() {
	done := s.coordinator.ReapFinished()
	if !s.Config.NotifyDone {
		return
	}
	for _, e := range done {
		fmt.Fprintf(s.Session.Stdout, "[%d] Done\n", e.PID)
	}
}

// announceJob reports a freshly backgrounded pipeline with the same index
// the jobs listing uses, so the number stays valid for later inspection.
func (s *Shell) announceJob() {
	h := s.Jobs.Latest()
	if h == job.None {
		return
	}
	if e, ok := s.Jobs.Get(h); ok {
		fmt.Fprintf(s.Session.Stdout, "[%d] %d\n", int(h)+1, e.PID)
	}
}

// Execute interprets one tokenized command line and returns its exit
// status. Builtins run in-process; everything else goes through the
// launcher and the process-group coordinator.
func (s *Shell) Execute(tokens []string) int {
	pipeline, err := shell.Parse(tokens)
	if err != nil {
		s.printError(err)
		return 1
	}
	if pipeline.Empty() {
		return 0
	}

	if pipeline.Simple() && !pipeline.Background {
		cmd := pipeline.Commands[0]
		if cmd.InFile == "" && cmd.OutFile == "" {
			if builtin, ok := AllBuiltins[cmd.Name()]; ok {
				return builtin.Main(s, cmd.Argv)
			}
		}
	}

	procs, err := s.launcher.Launch(pipeline)
	if err != nil {
		s.printError(err)
		// Never abandon the siblings that did launch.
		s.coordinator.Settle(procs)
		var resErr *proc.ResolutionError
		if errors.As(err, &resErr) {
			return proc.ExecFailureStatus
		}
		return 1
	}

	status, err := s.coordinator.Run(procs, pipeline.Background)
	if err != nil {
		s.printError(err)
	}
	if pipeline.Background {
		s.announceJob()
	}
	return status
}

func (s *Shell) printError(err error) {
	errorColor.Fprintf(s.Session.Stderr, "gosh: %v\n", err)
}

// Close tears the session down: line editor, signal handlers, and the
// saved terminal mode.
func (s *Shell) Close() error {
	err := s.Readline.Close()
	s.signals.Uninstall()
	if rerr := s.Session.RestoreTerminal(); rerr != nil && err == nil {
		err = rerr
	}
	return err
}
