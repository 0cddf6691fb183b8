package shell

import (
	"fmt"
	"unicode"
)

// ParseError reports malformed pipe or redirection syntax. It aborts only
// the current command line; the read-eval loop continues.
type ParseError struct {
	// Token is the offending token, empty when the error is at end of line.
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return "syntax error: " + e.Msg
	}
	return fmt.Sprintf("syntax error near %q: %s", e.Token, e.Msg)
}

func isOperator(tok string) bool {
	switch tok {
	case OpPipe, OpRedirectIn, OpRedirectOut, OpBackground:
		return true
	}
	return false
}

// isBlank reports whether the token carries no printable content, e.g. a
// line consisting solely of a control character sent through the terminal.
func isBlank(tok string) bool {
	for _, r := range tok {
		if !unicode.IsControl(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Parse turns an ordered token sequence into a Pipeline. Degenerate input
// (no tokens, or only blank tokens) yields an empty Pipeline and no error.
func Parse(tokens []string) (*Pipeline, error) {
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !isBlank(tok) {
			words = append(words, tok)
		}
	}
	if len(words) == 0 {
		return &Pipeline{}, nil
	}

	p := &Pipeline{}
	if words[len(words)-1] == OpBackground {
		p.Background = true
		words = words[:len(words)-1]
		if len(words) == 0 {
			return nil, &ParseError{Token: OpBackground, Msg: "missing command"}
		}
	}

	var segment []string
	flush := func() error {
		cmd, err := parseCommand(segment)
		if err != nil {
			return err
		}
		p.Commands = append(p.Commands, cmd)
		segment = nil
		return nil
	}

	for _, tok := range words {
		switch tok {
		case OpPipe:
			if len(segment) == 0 {
				return nil, &ParseError{Token: OpPipe, Msg: "missing command"}
			}
			if err := flush(); err != nil {
				return nil, err
			}
		case OpBackground:
			return nil, &ParseError{Token: OpBackground, Msg: "background marker must end the command line"}
		default:
			segment = append(segment, tok)
		}
	}
	if len(segment) == 0 {
		return nil, &ParseError{Token: OpPipe, Msg: "missing command"}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	// Redirection and piping are two separate execution paths; the grammar
	// has no combined form.
	if len(p.Commands) > 1 {
		for _, c := range p.Commands {
			if c.redirected() {
				return nil, &ParseError{Token: OpPipe, Msg: "cannot combine redirection with a pipeline"}
			}
		}
	}
	return p, nil
}

// parseCommand parses one pipe-free segment: word+ (('<' | '>') word)*
// Redirections trail the argument list; at most one per direction.
func parseCommand(words []string) (Command, error) {
	var cmd Command
	i := 0
	for ; i < len(words); i++ {
		tok := words[i]
		if tok == OpRedirectIn || tok == OpRedirectOut {
			break
		}
		cmd.Argv = append(cmd.Argv, tok)
	}
	if len(cmd.Argv) == 0 && i < len(words) {
		return Command{}, &ParseError{Token: words[i], Msg: "missing command"}
	}

	for i < len(words) {
		tok := words[i]
		switch tok {
		case OpRedirectIn, OpRedirectOut:
			if i+1 >= len(words) {
				return Command{}, &ParseError{Msg: "missing redirection target"}
			}
			target := words[i+1]
			if isOperator(target) {
				return Command{}, &ParseError{Token: target, Msg: "missing redirection target"}
			}
			if tok == OpRedirectIn {
				if cmd.InFile != "" {
					return Command{}, &ParseError{Token: tok, Msg: "multiple input redirections"}
				}
				cmd.InFile = target
			} else {
				if cmd.OutFile != "" {
					return Command{}, &ParseError{Token: tok, Msg: "multiple output redirections"}
				}
				cmd.OutFile = target
			}
			i += 2
		default:
			return Command{}, &ParseError{Token: tok, Msg: "unexpected token after redirection"}
		}
	}
	return cmd, nil
}
