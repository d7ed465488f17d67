package vm

import (
	"unsafe"

	"github.com/mna/loxvm/lang/value"
	"golang.org/x/exp/slices"
)

// callValue implements CALL's callee dispatch: closures, classes
// (producing a new instance and optionally running init), bound
// methods, and natives, each per spec.md §4.3.
func (vm *VM) callValue(callee value.Value, argCount int) bool {
	if callee.IsObj() {
		switch o := callee.AsObj().(type) {
		case *value.ObjClosure:
			return vm.call(o, argCount)
		case *value.ObjClass:
			instance := vm.heap.NewInstance(o)
			vm.stack[vm.stackTop-argCount-1] = value.ObjValue(instance)
			if initializer, ok := o.Methods.Get(vm.initString); ok {
				return vm.call(initializer.AsObj().(*value.ObjClosure), argCount)
			}
			if argCount != 0 {
				vm.runtimeError("Expected 0 arguments but got %d.", argCount)
				return false
			}
			return true
		case *value.ObjBoundMethod:
			vm.stack[vm.stackTop-argCount-1] = o.Receiver
			return vm.call(o.Method, argCount)
		case *value.ObjNative:
			args := vm.stack[vm.stackTop-argCount : vm.stackTop]
			result, err := o.Fn(args)
			if err != nil {
				vm.runtimeError("%s", err.Error())
				return false
			}
			vm.stackTop -= argCount + 1
			vm.push(result)
			return true
		}
	}
	vm.runtimeError("Can only call functions and classes.")
	return false
}

func (vm *VM) call(closure *value.ObjClosure, argCount int) bool {
	if argCount != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
		return false
	}
	if vm.frameCount == FramesMax {
		vm.runtimeError("Stack overflow.")
		return false
	}

	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.stackTop - argCount - 1
	return true
}

// invoke fuses "look up method and call it" for OP_INVOKE: it first
// checks the instance's own fields (a field holding a callable value
// shadows a method of the same name), then its class's method table.
func (vm *VM) invoke(name *value.ObjString, argCount int) bool {
	receiver := vm.peek(argCount)
	if !receiver.Is(value.KindInstance) {
		vm.runtimeError("Only instances have methods.")
		return false
	}
	instance := receiver.AsObj().(*value.ObjInstance)

	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = field
		return vm.callValue(field, argCount)
	}

	return vm.invokeFromClass(instance.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *value.ObjClass, name *value.ObjString, argCount int) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	return vm.call(method.AsObj().(*value.ObjClosure), argCount)
}

// bindMethod looks up name in class's method table and, if found,
// pushes a BoundMethod pairing it with the value currently on top of
// the stack (the receiver), popping the receiver first.
func (vm *VM) bindMethod(class *value.ObjClass, name *value.ObjString) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	bound := vm.heap.NewBoundMethod(vm.peek(0), method.AsObj().(*value.ObjClosure))
	vm.pop()
	vm.push(value.ObjValue(bound))
	return true
}

// stackSlot recovers the index into vm.stack that loc currently points
// at. vm.stack is a fixed-size array field, never reallocated, so a
// pointer taken into it stays valid and orderable for the VM's
// lifetime.
func (vm *VM) stackSlot(loc *value.Value) int {
	base := unsafe.Pointer(&vm.stack[0])
	return int((uintptr(unsafe.Pointer(loc)) - uintptr(base)) / unsafe.Sizeof(vm.stack[0]))
}

// captureUpvalue returns the open upvalue for the stack slot at index
// local, reusing one already open at that address or creating and
// inserting a new one. openUpvalues is kept sorted by stack slot
// descending (spec.md's invariant), re-sorted via golang.org/x/exp/slices
// whenever a new upvalue is inserted.
func (vm *VM) captureUpvalue(local int) *value.ObjUpvalue {
	for _, uv := range vm.openUpvalues {
		if vm.stackSlot(uv.Location) == local {
			return uv
		}
	}

	created := vm.heap.NewUpvalue(&vm.stack[local])
	vm.openUpvalues = append(vm.openUpvalues, created)
	slices.SortFunc(vm.openUpvalues, func(a, b *value.ObjUpvalue) int {
		return vm.stackSlot(b.Location) - vm.stackSlot(a.Location)
	})
	return created
}

// closeUpvalues closes every open upvalue at or above the stack slot
// last, copying its value out of the stack into the upvalue itself and
// dropping it from the open list.
func (vm *VM) closeUpvalues(last int) {
	i := 0
	for i < len(vm.openUpvalues) && vm.stackSlot(vm.openUpvalues[i].Location) >= last {
		vm.openUpvalues[i].Close()
		i++
	}
	vm.openUpvalues = vm.openUpvalues[i:]
}
