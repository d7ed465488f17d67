package value

import "github.com/dolthub/swiss"

// Heap owns every heap object allocated while compiling and running a
// single program: the intrusive allocation list, the string intern
// table, and the bytesAllocated/nextGC bookkeeping that drives the
// collector's growth-ratio trigger.
//
// Unlike the original's reallocate(), which may provoke a collection on
// every single allocation, Heap only collects when MaybeCollect is
// called explicitly. The compiler and VM call it at points where every
// value they still need is already stored somewhere root-reachable
// (the compiler's constant pool, the VM's operand stack) -- see
// lang/compiler and lang/vm for the call sites. This keeps the
// allocation-safety discipline spec.md §4.4 requires without needing a
// push/pop bracket around every single allocation.
type Heap struct {
	objects Obj
	strings *swiss.Map[string, *ObjString]

	bytesAllocated int64
	nextGC         int64

	// StressGC, when true, makes MaybeCollect run a collection on every
	// call regardless of bytesAllocated, to shake out GC bugs in tests.
	StressGC bool

	// Roots is called by MaybeCollect to mark every root the current
	// owner (compiler or VM) knows about. It is swapped by whichever
	// phase is currently allocating.
	Roots func(mark func(Value))

	// gray is the worklist of marked-but-unscanned objects during
	// tracing. It is a plain slice growing via Go's own allocator, never
	// routed through register/bytesAllocated, so growing it can never
	// itself provoke a nested collection (spec.md §9).
	gray []Obj

	// Collections counts how many collections have run, whether forced
	// by Collect or triggered by MaybeCollect, for tests.
	Collections int
}

const initialNextGC = 1 << 20 // 1 MiB

// NewHeap returns an empty heap ready to allocate.
func NewHeap() *Heap {
	return &Heap{
		strings: swiss.NewMap[string, *ObjString](0),
		nextGC:  initialNextGC,
	}
}

// BytesAllocated returns the heap's current live-allocation estimate.
func (h *Heap) BytesAllocated() int64 { return h.bytesAllocated }

// NextGC returns the byte threshold that triggers the next collection.
func (h *Heap) NextGC() int64 { return h.nextGC }

// register links o at the head of the allocation list and accounts for
// its approximate size.
func (h *Heap) register(o Obj, size int64) {
	o.setNextObj(h.objects)
	h.objects = o
	h.bytesAllocated += size
}

// NewFunction allocates an ObjFunction.
func (h *Heap) NewFunction() *ObjFunction {
	f := &ObjFunction{Chunk: Chunk{}}
	h.register(f, 64)
	return f
}

// NewNative allocates an ObjNative wrapping fn.
func (h *Heap) NewNative(name string, fn NativeFn) *ObjNative {
	n := &ObjNative{Name: name, Fn: fn}
	h.register(n, 32)
	return n
}

// NewClosure allocates an ObjClosure over fn with upvalueCount empty
// upvalue slots.
func (h *Heap) NewClosure(fn *ObjFunction) *ObjClosure {
	c := &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
	h.register(c, int64(24+8*fn.UpvalueCount))
	return c
}

// NewUpvalue allocates an open ObjUpvalue pointing at slot.
func (h *Heap) NewUpvalue(slot *Value) *ObjUpvalue {
	u := &ObjUpvalue{Location: slot}
	h.register(u, 32)
	return u
}

// NewClass allocates an ObjClass named name with an empty method table.
func (h *Heap) NewClass(name *ObjString) *ObjClass {
	c := &ObjClass{Name: name, Methods: NewTable()}
	h.register(c, 48)
	return c
}

// NewInstance allocates an ObjInstance of class with an empty field
// table.
func (h *Heap) NewInstance(class *ObjClass) *ObjInstance {
	i := &ObjInstance{Class: class, Fields: NewTable()}
	h.register(i, 48)
	return i
}

// NewBoundMethod allocates an ObjBoundMethod.
func (h *Heap) NewBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	b := &ObjBoundMethod{Receiver: receiver, Method: method}
	h.register(b, 40)
	return b
}
