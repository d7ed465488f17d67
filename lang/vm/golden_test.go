package vm_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/loxvm/internal/filetest"
	"github.com/mna/loxvm/lang/value"
	"github.com/mna/loxvm/lang/vm"
	"github.com/stretchr/testify/require"
)

var testUpdateVMTests = flag.Bool("test.update-vm-tests", false, "If set, replace expected VM stdout/stderr with actual results.")

func TestInterpretGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lox") {
		t.Run(fi.Name(), func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)

			var out, errOut bytes.Buffer
			heap := value.NewHeap()
			m := vm.New(heap, &out, &errOut)
			m.Interpret(string(source))

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateVMTests)
			filetest.DiffErrors(t, fi, errOut.String(), resultDir, testUpdateVMTests)
		})
	}
}
