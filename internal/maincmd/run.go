package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mna/mainer"

	"github.com/svetlins/glox/lang/interp"
	"github.com/svetlins/glox/lang/machine"
)

// newInterp builds an interpreter on the command's stdio with the standard
// natives installed.
func newInterp(stdio mainer.Stdio, cfg machine.Config) *interp.Interp {
	in := interp.New(cfg, stdio.Stdout, stdio.Stderr)

	epoch := time.Now()
	in.DefineNative("clock", func(args []machine.Value) machine.Value {
		return machine.Number(time.Since(epoch).Seconds())
	})
	return in
}

func exitCode(res interp.Result) mainer.ExitCode {
	switch res {
	case interp.CompileError:
		return ExitCompileError
	case interp.RuntimeError:
		return ExitRuntimeError
	}
	return mainer.Success
}

func (c *Cmd) runFile(stdio mainer.Stdio, cfg machine.Config, path string) mainer.ExitCode {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}

	in := newInterp(stdio, cfg)
	defer in.Close()
	return exitCode(in.Interpret(string(b)))
}

// repl interprets one line at a time on a shared machine, so globals and
// natives persist for the whole session. Errors are reported and the loop
// continues. The prompt is only printed when stdin is a terminal.
func (c *Cmd) repl(ctx context.Context, stdio mainer.Stdio, cfg machine.Config) mainer.ExitCode {
	interactive := false
	if f, ok := stdio.Stdin.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	in := newInterp(stdio, cfg)
	defer in.Close()

	scan := bufio.NewScanner(stdio.Stdin)
	for {
		if interactive {
			fmt.Fprint(stdio.Stdout, "> ")
		}
		if !scan.Scan() || ctx.Err() != nil {
			break
		}
		in.Interpret(scan.Text())
	}
	if interactive {
		fmt.Fprintln(stdio.Stdout)
	}
	if err := scan.Err(); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}
	return mainer.Success
}
