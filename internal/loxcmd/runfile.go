package loxcmd

import (
	"fmt"
	"os"

	"github.com/mna/loxvm/lang/value"
	"github.com/mna/loxvm/lang/vm"
	"github.com/mna/mainer"
)

// runFile reads path and interprets it as one program, translating the
// VM's terminal Result into the matching process exit code.
func runFile(stdio mainer.Stdio, path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "Could not read file \"%s\": %s\n", path, err)
		return exitIOError
	}

	heap := value.NewHeap()
	m := vm.New(heap, stdio.Stdout, stdio.Stderr)

	switch m.Interpret(string(source)) {
	case vm.ResultCompileError:
		return exitCompileError
	case vm.ResultRuntimeError:
		return exitRuntimeError
	default:
		return exitOK
	}
}
