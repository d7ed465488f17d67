package compiler_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/loxvm/internal/filetest"
	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

var testUpdateCompilerTests = flag.Bool("test.update-compiler-tests", false, "If set, replace expected compiler disassembly with actual results.")

func TestCompileGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lox") {
		t.Run(fi.Name(), func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)

			h := value.NewHeap()
			fn, err := compiler.Compile(string(source), h)
			require.NoError(t, err)

			out := disassemble(t, fn)
			filetest.DiffOutput(t, fi, out, resultDir, testUpdateCompilerTests)
		})
	}
}
