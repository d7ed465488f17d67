// Package filetest drives the golden-file tests in lang/compiler and
// lang/vm: each case reads a fixture under testdata/in, runs it
// through the compiler or VM, and diffs the captured output against a
// checked-in testdata/out/<name>.want (and, for VM runs, a matching
// .err for stderr).
package filetest

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

var updateAll = flag.Bool("test.update-golden", false, "If set, overwrites every golden file with the actual test output.")

// SourceFiles lists the regular files directly under dir whose name
// ends in ext (a leading dot is added if missing).
func SourceFiles(t *testing.T, dir, ext string) []os.FileInfo {
	t.Helper()

	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}

	dents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	fis := make([]os.FileInfo, 0, len(dents))
	for _, dent := range dents {
		if !dent.Type().IsRegular() || (ext != "" && filepath.Ext(dent.Name()) != ext) {
			continue
		}
		fi, err := dent.Info()
		if err != nil {
			t.Fatal(err)
		}
		fis = append(fis, fi)
	}
	return fis
}

// DiffOutput compares output against resultDir/<fi.Name()>.want,
// rewriting the golden file instead when updateFlag (or -test.update-golden)
// is set.
func DiffOutput(t *testing.T, fi os.FileInfo, output, resultDir string, updateFlag *bool) {
	t.Helper()
	diffGolden(t, "output", filepath.Join(resultDir, fi.Name()+".want"), output, updateFlag)
}

// DiffErrors compares output against resultDir/<fi.Name()>.err, the
// same way DiffOutput compares against .want.
func DiffErrors(t *testing.T, fi os.FileInfo, output, resultDir string, updateFlag *bool) {
	t.Helper()
	diffGolden(t, "errors", filepath.Join(resultDir, fi.Name()+".err"), output, updateFlag)
}

func diffGolden(t *testing.T, label, goldFile, output string, updateFlag *bool) {
	t.Helper()

	if (updateFlag != nil && *updateFlag) || *updateAll {
		if err := os.WriteFile(goldFile, []byte(output), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantb, err := os.ReadFile(goldFile)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}

	want := string(wantb)
	if patch := diff.Diff(want, output); patch != "" {
		t.Errorf("%s mismatch against %s:\n%s", label, goldFile, patch)
	}
}
