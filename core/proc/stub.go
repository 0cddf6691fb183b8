package proc

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// StubCommand is the hidden argv[1] that routes a freshly spawned child
// into StubMain instead of the CLI.
const StubCommand = "exec-stub"

// ExecFailureStatus is the reserved exit status of a child whose final
// image replacement failed. The child cannot report the failure through any
// shared state, so the status is the only channel back to the parent.
const ExecFailureStatus = 127

// StubMain is the child-side half of the launch protocol. Go offers no way
// to run code between fork and exec, so the launcher re-execs the shell
// binary into this trampoline with the target program as arguments.
//
// The trampoline stops itself so the parent can finish process-group and
// terminal-foreground setup before the target program runs; once continued
// it replaces its image with the target. Signal dispositions need no reset
// here: the shell installs handlers, never SIG_IGN, and handlers were
// already reset to default by the exec that started this trampoline.
//
// args is <path> <argv...>. StubMain never returns.
func StubMain(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "exec-stub: missing program path")
		os.Exit(ExecFailureStatus)
	}

	// Self-stop: park until the parent has grouped every pipeline member
	// and sends SIGCONT to the group.
	_ = unix.Kill(unix.Getpid(), unix.SIGSTOP)

	err := unix.Exec(args[0], args[1:], os.Environ())
	// Exec only returns on failure.
	fmt.Fprintf(os.Stderr, "exec-stub: %s: %v\n", args[0], err)
	os.Exit(ExecFailureStatus)
}
