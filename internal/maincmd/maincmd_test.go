package maincmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lox")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func runCmd(t *testing.T, stdin string, args ...string) (mainer.ExitCode, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	stdio := mainer.Stdio{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}
	var c Cmd
	code := c.Main(append([]string{binName}, args...), stdio)
	return code, stdout.String(), stderr.String()
}

func TestRunExitCodes(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		code     mainer.ExitCode
		stdout   string
		inStderr string
	}{
		{"success", "print 6 * 7;", mainer.Success, "42\n", ""},
		{"compile error", "print 6 *;", ExitCompileError, "", "Expect expression."},
		{"runtime error", "print -nil;", ExitRuntimeError, "", "Operand must be a number."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, stdout, stderr := runCmd(t, "", "run", writeScript(t, c.src))
			assert.Equal(t, c.code, code)
			assert.Equal(t, c.stdout, stdout)
			if c.inStderr != "" {
				assert.Contains(t, stderr, c.inStderr)
			}
		})
	}
}

func TestRunMissingFile(t *testing.T) {
	code, _, stderr := runCmd(t, "", "run", filepath.Join(t.TempDir(), "nope.lox"))
	assert.Equal(t, mainer.Failure, code)
	assert.NotEmpty(t, stderr)
}

func TestRunClockNative(t *testing.T) {
	code, stdout, stderr := runCmd(t, "", "run", writeScript(t, "print clock() < 1;"))
	require.Equal(t, mainer.Success, code, "stderr: %s", stderr)
	assert.Equal(t, "true\n", stdout)
}

func TestReplSession(t *testing.T) {
	// globals persist across lines; errors do not end the session
	in := "var x = 1;\nprint y;\nprint x + 1;\n"
	code, stdout, stderr := runCmd(t, in, "repl")
	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "2\n", stdout)
	assert.Contains(t, stderr, "Undefined variable 'y'.")
}

func TestTokenize(t *testing.T) {
	code, stdout, _ := runCmd(t, "", "tokenize", writeScript(t, "var x = 1;"))
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout, "var")
	assert.Contains(t, stdout, "identifier")
	assert.Contains(t, stdout, "number literal")
	assert.Contains(t, stdout, "end of file")
}

func TestTokenizeError(t *testing.T) {
	code, stdout, _ := runCmd(t, "", "tokenize", writeScript(t, "var @;"))
	assert.Equal(t, ExitCompileError, code)
	assert.Contains(t, stdout, "Unexpected character.")
}

func TestDisasm(t *testing.T) {
	code, stdout, _ := runCmd(t, "", "disasm", writeScript(t, "fun f() { return 1; } print 2;"))
	require.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout, "== <script> ==")
	assert.Contains(t, stdout, "== <fn f> ==")
	assert.Contains(t, stdout, "closure")
	assert.Contains(t, stdout, "return")
}

func TestValidate(t *testing.T) {
	code, _, stderr := runCmd(t, "", "bogus")
	assert.Equal(t, mainer.InvalidArgs, code)
	assert.Contains(t, stderr, "unknown command: bogus")

	code, _, stderr = runCmd(t, "")
	assert.Equal(t, mainer.InvalidArgs, code)
	assert.Contains(t, stderr, "no command specified")

	code, _, stderr = runCmd(t, "", "run")
	assert.Equal(t, mainer.InvalidArgs, code)
	assert.Contains(t, stderr, "exactly one file must be provided")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCmd(t, "", "-v")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout, binName)
}
