package vm

import "github.com/mna/loxvm/lang/value"

// run drives the dispatch loop for the current top frame (and any
// frames pushed/popped by calls within it) until the outermost frame
// returns or a runtime error occurs.
func (vm *VM) run() Result {
	frame := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := frame.closure.Function.Chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := frame.closure.Function.Chunk.Code[frame.ip]
		lo := frame.closure.Function.Chunk.Code[frame.ip+1]
		frame.ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value {
		return frame.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *value.ObjString {
		return readConstant().AsString()
	}

	for {
		vm.heap.MaybeCollect(vm.heap.Roots)

		op := value.Opcode(readByte())
		switch op {
		case value.OpConstant:
			vm.push(readConstant())

		case value.OpNil:
			vm.push(value.NilValue)
		case value.OpTrue:
			vm.push(value.BoolValue(true))
		case value.OpFalse:
			vm.push(value.BoolValue(false))
		case value.OpPop:
			vm.pop()

		case value.OpGetLocal:
			slot := readByte()
			vm.push(vm.stack[frame.slots+int(slot)])
		case value.OpSetLocal:
			slot := readByte()
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case value.OpGetGlobal:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return ResultRuntimeError
			}
			vm.push(v)
		case value.OpDefineGlobal:
			name := readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case value.OpSetGlobal:
			name := readString()
			if !vm.globals.Has(name) {
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return ResultRuntimeError
			}
			vm.globals.Set(name, vm.peek(0))

		case value.OpGetUpvalue:
			slot := readByte()
			vm.push(*frame.closure.Upvalues[slot].Location)
		case value.OpSetUpvalue:
			slot := readByte()
			*frame.closure.Upvalues[slot].Location = vm.peek(0)

		case value.OpGetProperty:
			if !vm.peek(0).Is(value.KindInstance) {
				vm.runtimeError("Only instances have properties.")
				return ResultRuntimeError
			}
			instance := vm.peek(0).AsObj().(*value.ObjInstance)
			name := readString()
			if v, ok := instance.Fields.Get(name); ok {
				vm.pop()
				vm.push(v)
				break
			}
			if !vm.bindMethod(instance.Class, name) {
				return ResultRuntimeError
			}
		case value.OpSetProperty:
			if !vm.peek(1).Is(value.KindInstance) {
				vm.runtimeError("Only instances have fields.")
				return ResultRuntimeError
			}
			instance := vm.peek(1).AsObj().(*value.ObjInstance)
			name := readString()
			instance.Fields.Set(name, vm.peek(0))
			v := vm.pop()
			vm.pop()
			vm.push(v)

		case value.OpGetSuper:
			name := readString()
			superclass := vm.pop().AsObj().(*value.ObjClass)
			if !vm.bindMethod(superclass, name) {
				return ResultRuntimeError
			}

		case value.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.BoolValue(value.Equal(a, b)))
		case value.OpGreater:
			if !vm.binaryNumberOp(func(a, b float64) value.Value { return value.BoolValue(a > b) }) {
				return ResultRuntimeError
			}
		case value.OpLess:
			if !vm.binaryNumberOp(func(a, b float64) value.Value { return value.BoolValue(a < b) }) {
				return ResultRuntimeError
			}
		case value.OpAdd:
			if !vm.add() {
				return ResultRuntimeError
			}
		case value.OpSubtract:
			if !vm.binaryNumberOp(func(a, b float64) value.Value { return value.NumberValue(a - b) }) {
				return ResultRuntimeError
			}
		case value.OpMultiply:
			if !vm.binaryNumberOp(func(a, b float64) value.Value { return value.NumberValue(a * b) }) {
				return ResultRuntimeError
			}
		case value.OpDivide:
			if !vm.binaryNumberOp(func(a, b float64) value.Value { return value.NumberValue(a / b) }) {
				return ResultRuntimeError
			}

		case value.OpNot:
			vm.push(value.BoolValue(!vm.pop().Truth()))
		case value.OpNegate:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return ResultRuntimeError
			}
			vm.push(value.NumberValue(-vm.pop().AsNumber()))

		case value.OpPrint:
			vm.printValue(vm.pop())

		case value.OpJump:
			offset := readShort()
			frame.ip += offset
		case value.OpJumpIfFalse:
			offset := readShort()
			if !vm.peek(0).Truth() {
				frame.ip += offset
			}
		case value.OpLoop:
			offset := readShort()
			frame.ip -= offset

		case value.OpCall:
			argCount := int(readByte())
			if !vm.callValue(vm.peek(argCount), argCount) {
				return ResultRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case value.OpInvoke:
			name := readString()
			argCount := int(readByte())
			if !vm.invoke(name, argCount) {
				return ResultRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case value.OpSuperInvoke:
			name := readString()
			argCount := int(readByte())
			superclass := vm.pop().AsObj().(*value.ObjClass)
			if !vm.invokeFromClass(superclass, name, argCount) {
				return ResultRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case value.OpClosure:
			fn := readConstant().AsObj().(*value.ObjFunction)
			closure := vm.heap.NewClosure(fn)
			vm.push(value.ObjValue(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case value.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case value.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return ResultOK
			}
			vm.stackTop = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case value.OpClass:
			vm.push(value.ObjValue(vm.heap.NewClass(readString())))

		case value.OpInherit:
			superVal := vm.peek(1)
			if !superVal.Is(value.KindClass) {
				vm.runtimeError("Superclass must be a class.")
				return ResultRuntimeError
			}
			subclass := vm.peek(0).AsObj().(*value.ObjClass)
			subclass.Methods.CopyFrom(superVal.AsObj().(*value.ObjClass).Methods)
			vm.pop()

		case value.OpMethod:
			vm.defineMethod(readString())
		}
	}
}

func (vm *VM) binaryNumberOp(op func(a, b float64) value.Value) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.runtimeError("Operands must be numbers.")
		return false
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(op(a, b))
	return true
}

// add overloads '+' on numbers and strings per spec.md §4.2: both
// operands are peeked, not popped, before any allocation happens, so
// the newly interned concatenation result is never the only reference
// to live operands during the allocation (spec.md §4.4's allocation-
// safety discipline).
func (vm *VM) add() bool {
	b := vm.peek(0)
	a := vm.peek(1)

	switch {
	case a.Is(value.KindString) && b.Is(value.KindString):
		concatenated := a.AsString().Chars + b.AsString().Chars
		result := vm.heap.InternString(concatenated)
		vm.pop()
		vm.pop()
		vm.push(value.ObjValue(result))
		return true
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(value.NumberValue(a.AsNumber() + b.AsNumber()))
		return true
	default:
		vm.runtimeError("Operands must be numbers.")
		return false
	}
}

func (vm *VM) defineMethod(name *value.ObjString) {
	method := vm.peek(0)
	class := vm.peek(1).AsObj().(*value.ObjClass)
	class.Methods.Set(name, method)
	vm.pop()
}
