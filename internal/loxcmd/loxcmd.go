// Package loxcmd implements the CLI driver: the REPL, the run-file
// mode, and the exit-code contract spec.md §6 requires from the host.
// It is the only place in this module that performs file I/O or argv
// parsing -- the core compiler/VM/memory-manager trio never touches
// either.
package loxcmd

import (
	"fmt"

	"github.com/mna/mainer"
)

const binName = "lox"

// exit codes, per spec.md §6.
const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
	exitUsageError   = 64
)

// Cmd is the CLI entry point, wired up by cmd/lox/main.go exactly like
// the teacher wires its own Cmd into mainer.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error { return nil }

// Main implements the spec's CLI surface: zero args starts the
// interactive prompt, one arg runs that file, more args is a usage
// error.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n", err)
		return mainer.ExitCode(exitUsageError)
	}

	switch len(c.args) {
	case 0:
		return mainer.ExitCode(runRepl(stdio))
	case 1:
		return mainer.ExitCode(runFile(stdio, c.args[0]))
	default:
		fmt.Fprintf(stdio.Stderr, "Usage: %s [path]\n", binName)
		return mainer.ExitCode(exitUsageError)
	}
}
