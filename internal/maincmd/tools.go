package maincmd

import (
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/svetlins/glox/lang/compiler"
	"github.com/svetlins/glox/lang/machine"
	"github.com/svetlins/glox/lang/scanner"
	"github.com/svetlins/glox/lang/token"
)

// tokenize runs the scanner alone and prints one token per line. Scan
// errors surface as illegal tokens and flip the exit code to the compile
// error value.
func (c *Cmd) tokenize(stdio mainer.Stdio, path string) mainer.ExitCode {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}

	var s scanner.Scanner
	s.Init(string(b))

	hadError := false
	for {
		tok := s.Next()
		fmt.Fprintf(stdio.Stdout, "%4d  %-16s %s\n", tok.Line, tok.Kind, tok.Lexeme)
		if tok.Kind == token.ILLEGAL {
			hadError = true
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	if hadError {
		return ExitCompileError
	}
	return mainer.Success
}

// disasm compiles the script and lists the bytecode of the top-level
// function and every nested function without running any of it.
func (c *Cmd) disasm(stdio mainer.Stdio, cfg machine.Config, path string) mainer.ExitCode {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}

	heap := machine.NewHeap(cfg, stdio.Stderr)
	fn, err := compiler.Compile(string(b), heap, stdio.Stderr)
	if err != nil {
		return ExitCompileError
	}

	machine.DisassembleFunction(stdio.Stdout, fn)
	return mainer.Success
}
