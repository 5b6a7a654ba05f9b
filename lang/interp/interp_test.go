package interp_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svetlins/glox/internal/filetest"
	"github.com/svetlins/glox/lang/interp"
	"github.com/svetlins/glox/lang/machine"
)

var updateScriptTests = flag.Bool("test.update-script-tests", false, "If set, replace expected script test results with actual results.")

func run(t *testing.T, cfg machine.Config, src string) (string, string, interp.Result) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	in := interp.New(cfg, &stdout, &stderr)
	defer in.Close()
	res := in.Interpret(src)
	assert.Equal(t, 0, in.Machine().StackDepth(), "stack must balance after a script")
	return stdout.String(), stderr.String(), res
}

func TestInterpretScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"precedence", "print 1 + 2 * 3;", "7\n"},
		{"grouping", "print (1 + 2) * 3;", "9\n"},
		{"unary", "print -(1 + 2); print !true; print !nil; print !0;", "-3\nfalse\ntrue\nfalse\n"},
		{"concat", `var a = "foo"; var b = "bar"; print a + b;`, "foobar\n"},
		{"for sum", "var x = 0; for (var i = 0; i < 5; i = i + 1) x = x + i; print x;", "10\n"},
		{"while", "var n = 1; while (n < 100) n = n * 2; print n;", "128\n"},
		{"if else", "if (1 < 2) print \"yes\"; else print \"no\";", "yes\n"},
		{"else branch", "if (nil) print \"yes\"; else print \"no\";", "no\n"},
		{"interning", `print "a" == "a"; print "a" == "b";`, "true\nfalse\n"},
		{"nan compare", "print (0/0) == (0/0);", "false\n"},
		{"and value", "print 1 and 2; print nil and 2;", "2\nnil\n"},
		{"or value", "print nil or 2; print 1 or 2;", "2\n1\n"},
		{"closure args", `
fun make(n) {
  fun add(m) { return n + m; }
  return add;
}
var a3 = make(3);
print a3(4);
print a3(10);`, "7\n13\n"},
		{"shared upvalue", `
fun counter() {
  var c = 0;
  fun inc() { c = c + 1; return c; }
  return inc;
}
var k = counter();
print k(); print k(); print k();`, "1\n2\n3\n"},
		{"closure identity", `
fun counter() {
  var c = 0;
  fun inc() { c = c + 1; return c; }
  return inc;
}
var k1 = counter();
var k2 = counter();
print k1(); print k1(); print k2();`, "1\n2\n1\n"},
		{"recursion", `
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 2) + fib(n - 1);
}
print fib(10);`, "55\n"},
		{"print formats", `
fun f() {}
print 1/3;
print f;
print nil;`, "0.3333333333333333\n<fn f>\nnil\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stdout, stderr, res := run(t, machine.Config{}, c.src)
			require.Equal(t, interp.Ok, res, "stderr: %s", stderr)
			assert.Equal(t, c.want, stdout)

			// collecting on every allocation must not change the output
			stressOut, _, stressRes := run(t, machine.Config{StressGC: true}, c.src)
			require.Equal(t, interp.Ok, stressRes)
			assert.Equal(t, stdout, stressOut, "stress GC changed observable behavior")
		})
	}
}

// Short-circuit evaluation must skip the right operand entirely, which is
// only observable through a side effect.
func TestInterpretShortCircuit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	in := interp.New(machine.Config{}, &stdout, &stderr)
	defer in.Close()

	calls := 0
	in.DefineNative("probe", func(args []machine.Value) machine.Value {
		calls++
		return machine.True
	})

	require.Equal(t, interp.Ok, in.Interpret("false and probe();"))
	require.Equal(t, interp.Ok, in.Interpret("true or probe();"))
	assert.Equal(t, 0, calls, "short-circuited operand was evaluated")

	require.Equal(t, interp.Ok, in.Interpret("true and probe();"))
	require.Equal(t, interp.Ok, in.Interpret("false or probe();"))
	assert.Equal(t, 2, calls)
}

func TestInterpretNativeArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	in := interp.New(machine.Config{}, &stdout, &stderr)
	defer in.Close()

	in.DefineNative("mul", func(args []machine.Value) machine.Value {
		return machine.Number(args[0].Num() * args[1].Num())
	})
	require.Equal(t, interp.Ok, in.Interpret("print mul(6, 7);"))
	assert.Equal(t, "42\n", stdout.String())
}

// Globals persist across Interpret calls on one Interp; that is what makes
// a REPL session stateful.
func TestInterpretSessionState(t *testing.T) {
	var stdout, stderr bytes.Buffer
	in := interp.New(machine.Config{}, &stdout, &stderr)
	defer in.Close()

	require.Equal(t, interp.Ok, in.Interpret("var x = 40;"))
	require.Equal(t, interp.Ok, in.Interpret("x = x + 2;"))
	require.Equal(t, interp.Ok, in.Interpret("print x;"))
	assert.Equal(t, "42\n", stdout.String())

	// Close drops the machine; a new session starts clean
	in.Close()
	require.Equal(t, interp.RuntimeError, in.Interpret("print x;"))
	assert.Contains(t, stderr.String(), "Undefined variable 'x'.")
}

func TestInterpretCompileError(t *testing.T) {
	stdout, stderr, res := run(t, machine.Config{}, "var = 1;")
	assert.Equal(t, interp.CompileError, res)
	assert.Empty(t, stdout, "no bytecode may run after a compile error")
	assert.Equal(t, "[line 1] Error at '=': Expect variable name.\n", stderr)
}

func TestInterpretRuntimeErrorTrace(t *testing.T) {
	src := `fun act() {
  return 1 + nil;
}
fun go() {
  return act();
}
go();`
	stdout, stderr, res := run(t, machine.Config{}, src)
	assert.Equal(t, interp.RuntimeError, res)
	assert.Empty(t, stdout)
	assert.Equal(t, `Operands must be two numbers or two strings.
[line 2] in act()
[line 5] in go()
[line 7] in script
`, stderr)
}

// A runtime error resets the machine; the session keeps working.
func TestInterpretRecoversAfterRuntimeError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	in := interp.New(machine.Config{}, &stdout, &stderr)
	defer in.Close()

	require.Equal(t, interp.RuntimeError, in.Interpret("print -nil;"))
	require.Equal(t, interp.Ok, in.Interpret("print 1;"))
	assert.Equal(t, "1\n", stdout.String())
}

func TestInterpretDeepRecursionOverflows(t *testing.T) {
	_, stderr, res := run(t, machine.Config{}, "fun f() { f(); } f();")
	assert.Equal(t, interp.RuntimeError, res)
	assert.Contains(t, stderr, "Stack overflow.")
}

// TestScripts runs the .lox fixtures and compares stdout and stderr with
// their golden files, both normally and under stress GC: the outputs must
// be byte-identical either way.
func TestScripts(t *testing.T) {
	srcDir := filepath.Join("testdata", "scripts")

	for _, name := range filetest.ScriptFiles(t, srcDir, ".lox") {
		t.Run(name, func(t *testing.T) {
			b, err := os.ReadFile(filepath.Join(srcDir, name))
			require.NoError(t, err)

			for _, cfg := range []machine.Config{{}, {StressGC: true}} {
				stdout, stderr, _ := run(t, cfg, string(b))
				filetest.Golden(t, "output", filepath.Join(srcDir, name+".want"), stdout, updateScriptTests)
				filetest.Golden(t, "errors", filepath.Join(srcDir, name+".err"), stderr, updateScriptTests)
			}
		})
	}
}
