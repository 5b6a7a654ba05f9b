// Package interp is the host-facing surface of the interpreter: it wires
// the compiler and the machine together and manages their shared lifecycle.
package interp

import (
	"io"
	"os"

	"github.com/dolthub/swiss"

	"github.com/svetlins/glox/lang/compiler"
	"github.com/svetlins/glox/lang/machine"
)

// Result is the outcome of interpreting a source string.
type Result int

const (
	Ok Result = iota
	CompileError
	RuntimeError
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "ok"
	case CompileError:
		return "compile error"
	case RuntimeError:
		return "runtime error"
	}
	return "unknown result"
}

// Interp owns one machine and the native functions registered with it. The
// machine is created lazily on the first Interpret so that every native
// registered beforehand is installed into a fresh globals table; the
// registry keeps last-registration-wins semantics in the meantime.
type Interp struct {
	cfg     machine.Config
	stdout  io.Writer
	stderr  io.Writer
	natives *swiss.Map[string, machine.NativeFn]
	m       *machine.Machine
}

// New returns an interpreter with the given configuration. Stdout receives
// print output; stderr receives compile diagnostics, runtime errors and GC
// logging. Nil writers select the process streams.
func New(cfg machine.Config, stdout, stderr io.Writer) *Interp {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Interp{
		cfg:     cfg,
		stdout:  stdout,
		stderr:  stderr,
		natives: swiss.NewMap[string, machine.NativeFn](8),
	}
}

// DefineNative registers a host function under name. Natives registered
// before the first Interpret are installed when the machine is created;
// later ones are installed immediately.
func (in *Interp) DefineNative(name string, fn machine.NativeFn) {
	in.natives.Put(name, fn)
	if in.m != nil {
		in.m.DefineNative(name, fn)
	}
}

// Machine returns the underlying machine, creating it on first use.
// Globals persist across Interpret calls on the same Interp, which is what
// makes a REPL session accumulate state.
func (in *Interp) Machine() *machine.Machine {
	if in.m == nil {
		in.m = machine.New(in.cfg, in.stdout, in.stderr)
		in.natives.Iter(func(name string, fn machine.NativeFn) bool {
			in.m.DefineNative(name, fn)
			return false
		})
	}
	return in.m
}

// Interpret compiles and runs a top-level script. Diagnostics have already
// been written to stderr when a non-Ok result is returned.
func (in *Interp) Interpret(src string) Result {
	m := in.Machine()
	fn, err := compiler.Compile(src, m.Heap(), in.stderr)
	if err != nil {
		return CompileError
	}
	if err := m.RunFunction(fn); err != nil {
		return RuntimeError
	}
	return Ok
}

// Close tears down the machine and drains its heap. The interpreter can be
// reused; a subsequent Interpret starts from a fresh machine.
func (in *Interp) Close() {
	if in.m != nil {
		in.m.Free()
		in.m = nil
	}
}
