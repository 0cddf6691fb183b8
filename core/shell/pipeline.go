// Package shell parses tokenized command lines into pipelines.
//
// The grammar is a small subset of POSIX sh:
//
//	pipeline := command ('|' command)* ['&']
//	command  := word+ (('<' | '>') word)*
//
// Piping and file redirection are mutually exclusive within one pipeline.
package shell

import "strings"

// Operator tokens recognized by the parser. The tokenizer delivers these as
// ordinary words; the parser detects them by exact match.
const (
	OpPipe        = "|"
	OpRedirectIn  = "<"
	OpRedirectOut = ">"
	OpBackground  = "&"
)

// Command is one program invocation within a pipeline: the program name,
// its ordered argument list, and optional file redirections.
type Command struct {
	// Argv holds the program name followed by its arguments.
	Argv []string
	// InFile redirects standard input when non-empty.
	InFile string
	// OutFile redirects standard output when non-empty.
	OutFile string
}

// Name returns the program name.
func (c Command) Name() string {
	if len(c.Argv) == 0 {
		return ""
	}
	return c.Argv[0]
}

func (c Command) redirected() bool {
	return c.InFile != "" || c.OutFile != ""
}

func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(c.Argv, " "))
	if c.InFile != "" {
		sb.WriteString(" < ")
		sb.WriteString(c.InFile)
	}
	if c.OutFile != "" {
		sb.WriteString(" > ")
		sb.WriteString(c.OutFile)
	}
	return sb.String()
}

// Pipeline is an ordered sequence of commands. Adjacent commands are
// connected output to input. A trailing '&' marks background execution.
type Pipeline struct {
	Commands   []Command
	Background bool
}

// Empty reports whether the pipeline contains no commands. Empty pipelines
// parse successfully and execute as silent no-ops.
func (p *Pipeline) Empty() bool {
	return len(p.Commands) == 0
}

// Simple reports whether the pipeline is a single command with no pipes.
func (p *Pipeline) Simple() bool {
	return len(p.Commands) == 1
}

func (p *Pipeline) String() string {
	if p.Empty() {
		return "(empty)"
	}
	parts := make([]string, 0, len(p.Commands))
	for _, c := range p.Commands {
		parts = append(parts, c.String())
	}
	out := strings.Join(parts, " | ")
	if p.Background {
		out += " &"
	}
	return out
}
