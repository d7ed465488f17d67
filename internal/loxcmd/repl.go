package loxcmd

import (
	"bufio"
	"fmt"

	"github.com/mna/loxvm/lang/value"
	"github.com/mna/loxvm/lang/vm"
	"github.com/mna/mainer"
)

// runRepl reads one line at a time from stdio.Stdin and interprets it,
// sharing one VM (and so one heap, one globals table) across the whole
// session so definitions from earlier lines stay visible.
func runRepl(stdio mainer.Stdio) int {
	heap := value.NewHeap()
	m := vm.New(heap, stdio.Stdout, stdio.Stderr)

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			break
		}
		m.Interpret(scanner.Text())
	}
	return exitOK
}
