package value

import "fmt"

// Kind discriminates the concrete variant of a heap Obj.
type Kind uint8

const (
	KindString Kind = iota
	KindFunction
	KindNative
	KindClosure
	KindUpvalue
	KindClass
	KindInstance
	KindBoundMethod
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNative:
		return "native function"
	case KindClosure:
		return "closure"
	case KindUpvalue:
		return "upvalue"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBoundMethod:
		return "bound method"
	default:
		return "unknown"
	}
}

// Obj is implemented by every heap-allocated value. Every concrete
// variant embeds Header, which supplies the GC bookkeeping methods, and
// separately implements Kind, String and Blacken.
type Obj interface {
	Kind() Kind
	String() string

	// Blacken marks every Value this object directly references by
	// calling mark on each of them. It is the generic tracing hook the
	// collector uses without needing a type switch of its own.
	Blacken(mark func(Value))

	isMarked() bool
	setMarked(bool)
	nextObj() Obj
	setNextObj(Obj)
}

// Header is embedded by every concrete Obj variant. It carries the
// collector's mark bit and the intrusive next-pointer that threads
// every live object into the heap's single allocation list.
type Header struct {
	marked bool
	next   Obj
}

func (h *Header) isMarked() bool    { return h.marked }
func (h *Header) setMarked(m bool)  { h.marked = m }
func (h *Header) nextObj() Obj      { return h.next }
func (h *Header) setNextObj(o Obj)  { h.next = o }

// ObjString is an immutable, interned byte sequence.
type ObjString struct {
	Header
	Chars string
	Hash  uint32
}

func (s *ObjString) Kind() Kind          { return KindString }
func (s *ObjString) String() string      { return s.Chars }
func (s *ObjString) Blacken(func(Value)) {}

// ObjFunction is a compiled function: its arity, the number of
// upvalues it closes over, its (possibly empty, for the top-level
// script) name, and its own Chunk.
type ObjFunction struct {
	Header
	Arity        int
	UpvalueCount int
	Name         *ObjString
	Chunk        Chunk
}

func (f *ObjFunction) Kind() Kind { return KindFunction }
func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}
func (f *ObjFunction) Blacken(mark func(Value)) {
	if f.Name != nil {
		mark(ObjValue(f.Name))
	}
	for _, c := range f.Chunk.Constants {
		mark(c)
	}
}

// NativeFn is the signature of a host-provided native function.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a host function so it can be called like any other
// Lox callable.
type ObjNative struct {
	Header
	Name string
	Fn   NativeFn
}

func (n *ObjNative) Kind() Kind          { return KindNative }
func (n *ObjNative) String() string      { return "<native fn>" }
func (n *ObjNative) Blacken(func(Value)) {}

// ObjUpvalue is an indirection cell shared between a frame and the
// closures that capture one of its locals. While open, Location points
// into the VM's value stack; once closed, Location points at Closed,
// which now owns the value.
type ObjUpvalue struct {
	Header
	Location *Value
	Closed   Value
}

func (u *ObjUpvalue) Kind() Kind     { return KindUpvalue }
func (u *ObjUpvalue) String() string { return "<upvalue>" }
func (u *ObjUpvalue) Blacken(mark func(Value)) {
	mark(*u.Location)
}

// Close closes the upvalue: it copies the current contents of its
// stack location into Closed and repoints Location at itself.
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// ObjClosure pairs a Function with the Upvalues it captured at
// creation time.
type ObjClosure struct {
	Header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) Kind() Kind     { return KindClosure }
func (c *ObjClosure) String() string { return c.Function.String() }
func (c *ObjClosure) Blacken(mark func(Value)) {
	mark(ObjValue(c.Function))
	for _, uv := range c.Upvalues {
		if uv != nil {
			mark(ObjValue(uv))
		}
	}
}

// ObjClass is a class: its name and its method table, mapping an
// interned method name to the Closure value that implements it.
type ObjClass struct {
	Header
	Name    *ObjString
	Methods *Table
}

func (c *ObjClass) Kind() Kind     { return KindClass }
func (c *ObjClass) String() string { return c.Name.Chars }
func (c *ObjClass) Blacken(mark func(Value)) {
	mark(ObjValue(c.Name))
	c.Methods.blacken(mark)
}

// ObjInstance is an instance of a class: the class it was created from
// plus its own field table.
type ObjInstance struct {
	Header
	Class  *ObjClass
	Fields *Table
}

func (i *ObjInstance) Kind() Kind     { return KindInstance }
func (i *ObjInstance) String() string { return fmt.Sprintf("%s instance", i.Class.Name.Chars) }
func (i *ObjInstance) Blacken(mark func(Value)) {
	mark(ObjValue(i.Class))
	i.Fields.blacken(mark)
}

// ObjBoundMethod pairs a receiver Value with the Closure that
// implements the method, produced by a GET_PROPERTY that resolves to a
// method instead of a field.
type ObjBoundMethod struct {
	Header
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) Kind() Kind     { return KindBoundMethod }
func (b *ObjBoundMethod) String() string { return b.Method.String() }
func (b *ObjBoundMethod) Blacken(mark func(Value)) {
	mark(b.Receiver)
	mark(ObjValue(b.Method))
}
