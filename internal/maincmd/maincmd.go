// Package maincmd implements the command surface of the glox binary.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/svetlins/glox/lang/machine"
)

const binName = "glox"

// Exit codes beyond mainer's defaults, one per error axis.
const (
	ExitCompileError mainer.ExitCode = 65
	ExitRuntimeError mainer.ExitCode = 70
)

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Bytecode compiler and virtual machine for the Lox language.

The <command> can be one of:
       run <path>                Compile and run a Lox script.
       repl                      Read and interpret statements from
                                 standard input, one line at a time.
       tokenize <path>           Execute the scanner alone and print
                                 the resulting tokens.
       disasm <path>             Compile a Lox script and print the
                                 disassembled bytecode of every
                                 function without running it.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

The machine is further configured through GLOX_-prefixed environment
variables: GLOX_TRACE_EXECUTION, GLOX_LOG_GC, GLOX_STRESS_GC and
GLOX_NEXT_GC.

Exit codes: 0 on success, 65 on a compile error, 70 on a runtime error.
`, binName)
)

// Cmd is the mainer command of the glox binary.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	switch cmd := c.args[0]; cmd {
	case "run", "tokenize", "disasm":
		if len(c.args) != 2 {
			return fmt.Errorf("%s: exactly one file must be provided", cmd)
		}
	case "repl":
		if len(c.args) != 1 {
			return fmt.Errorf("%s: no arguments expected", cmd)
		}
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	var p mainer.Parser
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	cfg, err := machine.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment: %s\n", err)
		return mainer.InvalidArgs
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	switch c.args[0] {
	case "run":
		return c.runFile(stdio, cfg, c.args[1])
	case "repl":
		return c.repl(ctx, stdio, cfg)
	case "tokenize":
		return c.tokenize(stdio, c.args[1])
	default:
		return c.disasm(stdio, cfg, c.args[1])
	}
}
