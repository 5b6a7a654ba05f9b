// Package filetest provides the golden-file helpers shared by the test
// suites that compare tool output against checked-in expectations.
package filetest

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

var updateAllTests = flag.Bool("test.update-all-tests", false, "If set, sets all test.update-*-tests.")

// ScriptFiles returns the sorted names of the regular files in dir with the
// given extension (leading dot optional).
func ScriptFiles(t *testing.T, dir, ext string) []string {
	t.Helper()

	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}

	dents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, dent := range dents {
		if dent.Type().IsRegular() && filepath.Ext(dent.Name()) == ext {
			names = append(names, dent.Name())
		}
	}
	return names
}

// Golden compares got against the contents of goldFile and reports a diff
// on mismatch. A missing golden file compares as empty, so expected-empty
// outputs need no file at all. When update (or -test.update-all-tests) is
// set, the golden file is rewritten with got instead.
func Golden(t *testing.T, label, goldFile, got string, update *bool) {
	t.Helper()

	if *update || *updateAllTests {
		if got == "" {
			if err := os.Remove(goldFile); err != nil && !os.IsNotExist(err) {
				t.Fatal(err)
			}
			return
		}
		if err := os.WriteFile(goldFile, []byte(got), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantb, err := os.ReadFile(goldFile)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	want := string(wantb)
	if patch := diff.Diff(want, got); patch != "" {
		t.Errorf("%s does not match %s:\n%s", label, goldFile, patch)
	}
}
