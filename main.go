package main

import (
	"os"

	"gosh/cmd"
	"gosh/core/proc"
)

func main() {
	// The exec trampoline runs in every spawned child and must not let the
	// CLI parse the target program's arguments.
	if len(os.Args) > 1 && os.Args[1] == proc.StubCommand {
		proc.StubMain(os.Args[2:]) // never returns
	}

	cmd.Execute()
}
