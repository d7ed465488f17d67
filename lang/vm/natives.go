package vm

import (
	"fmt"
	"time"

	"github.com/mna/loxvm/lang/value"
)

// printValue writes one print statement's value to Stdout, one line
// per call, per spec.md §6's output sink contract.
func (vm *VM) printValue(v value.Value) {
	fmt.Fprintln(vm.Stdout, v.String())
}

// defineNatives registers every host-provided native function. clock
// is the only one: a zero-arg function returning the seconds elapsed
// since process start as a float, for timing scripted benchmarks.
func (vm *VM) defineNatives() {
	vm.defineNative("clock", clockNative)
}

func (vm *VM) defineNative(name string, fn value.NativeFn) {
	native := vm.heap.NewNative(name, fn)
	vm.globals.Set(vm.heap.InternString(name), value.ObjValue(native))
}

var processStart = time.Now()

func clockNative(args []value.Value) (value.Value, error) {
	return value.NumberValue(time.Since(processStart).Seconds()), nil
}
