package core

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pborman/getopt/v2"

	"gosh/core/job"
)

// AllBuiltins holds every registered shell builtin.
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

var builtinDocs = []struct {
	name string
	doc  string
}{
	{"?", "show this help menu"},
	{"help", "show this help menu"},
	{"exit", "exit the command shell"},
	{"pwd", "print the current working directory path"},
	{"cd", "change the current working directory"},
	{"jobs", "list tracked background processes"},
	{"fg", "move a subprocess to the foreground"},
	{"bg", "move a subprocess to the background"},
	{"wait", "block until all background processes exit"},
}

// Help brings up the help menu.
func Help(s *Shell, args []string) int {
	for _, d := range builtinDocs {
		fmt.Fprintf(s.Session.Stdout, "%s - %s\n", d.name, d.doc)
	}
	return 0
}

// Pwd prints the current working directory.
func Pwd(s *Shell, args []string) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(s.Session.Stderr, "%s: %v\n", args[0], err)
		return 1
	}
	fmt.Fprintln(s.Session.Stdout, wd)
	return 0
}

// Cd changes the current working directory.
func Cd(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(s.Session.Stderr, "%s: %v\n", args[0], err)
			return 1
		}
		args = append(args, home)
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			fmt.Fprintf(s.Session.Stderr, "%s: %v\n", args[0], err)
			return 1
		}
	default:
		fmt.Fprintf(s.Session.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}

// Exit quits the shell, tearing down the job table first. The terminal
// mode is restored by Shell.Close.
func Exit(s *Shell, args []string) int {
	status := 0
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(s.Session.Stderr, "%s: %s: numeric argument required\n", args[0], args[1])
			n = 2
		}
		status = n
	}
	s.Jobs.Clear()
	s.quit = true
	s.quitStatus = status
	return status
}

// Jobs lists the tracked background processes, most recent first.
func Jobs(s *Shell, args []string) int {
	for h := s.Jobs.Latest(); h != job.None; h = s.Jobs.NextOlder(h) {
		if e, ok := s.Jobs.Get(h); ok {
			fmt.Fprintf(s.Session.Stdout, "[%d]\t%d\tgroup %d\n", int(h)+1, e.PID, e.PGID)
		}
	}
	return 0
}

// selectJob picks the job a fg/bg invocation operates on: the operand PID
// if given, otherwise the most recently tracked entry.
func selectJob(s *Shell, name string, operands []string) (job.Handle, bool) {
	switch len(operands) {
	case 0:
		h := s.Jobs.Latest()
		if h == job.None {
			fmt.Fprintf(s.Session.Stderr, "%s: no current job\n", name)
			return job.None, false
		}
		return h, true
	case 1:
		pid, err := strconv.Atoi(operands[0])
		if err != nil {
			fmt.Fprintf(s.Session.Stderr, "%s: argument must be a process ID\n", name)
			return job.None, false
		}
		h := s.Jobs.Find(pid)
		if h == job.None {
			fmt.Fprintf(s.Session.Stderr, "%s: %d: no such job\n", name, pid)
			return job.None, false
		}
		return h, true
	default:
		fmt.Fprintf(s.Session.Stderr, "%s: too many arguments\n", name)
		return job.None, false
	}
}

// Fg promotes a job to the terminal foreground and resumes it, then blocks
// until the job settles and the shell reclaims the terminal.
func Fg(s *Shell, args []string) int {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")
	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.Session.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: fg [PID]")
		fmt.Fprintln(w, "Move a background or stopped process to the foreground.")
		return 1
	}

	h, ok := selectJob(s, args[0], opts.Args())
	if !ok {
		return 1
	}
	status, err := s.coordinator.ForegroundJob(h)
	if err != nil {
		s.printError(err)
		return 1
	}
	return status
}

// Bg resumes a stopped job in the background; the terminal stays with the
// shell.
func Bg(s *Shell, args []string) int {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")
	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.Session.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: bg [PID]")
		fmt.Fprintln(w, "Resume a stopped process in the background.")
		return 1
	}

	h, ok := selectJob(s, args[0], opts.Args())
	if !ok {
		return 1
	}
	if err := s.coordinator.ResumeJob(h); err != nil {
		s.printError(err)
		return 1
	}
	return 0
}

// Wait blocks until every tracked background process has exited.
func Wait(s *Shell, args []string) int {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")
	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.Session.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: wait")
		fmt.Fprintln(w, "Wait for all background processes to exit.")
		return 1
	}

	s.coordinator.WaitAll()
	return 0
}

func init() {
	AllBuiltins["?"] = ShellBuiltinFunc(Help)
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
	AllBuiltins["pwd"] = ShellBuiltinFunc(Pwd)
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["jobs"] = ShellBuiltinFunc(Jobs)
	AllBuiltins["fg"] = ShellBuiltinFunc(Fg)
	AllBuiltins["bg"] = ShellBuiltinFunc(Bg)
	AllBuiltins["wait"] = ShellBuiltinFunc(Wait)
}
