// Package value implements the runtime value model shared by the
// compiler and the virtual machine: the tagged Value type, the heap
// object layer (Obj and its concrete variants), the bytecode Chunk
// that a compiled function carries, and the mark-sweep memory manager
// that owns every heap object ever allocated.
//
// These four components are kept in a single package because they are
// mutually recursive (a Chunk's constant pool holds Values, an
// ObjFunction holds a Chunk, and the collector must reach into each
// concrete Obj to blacken it) in exactly the way value.h, object.h,
// chunk.h and memory.c are in the C original -- there, the cycle is
// broken by forward-declaring structs across headers compiled as one
// program; here, the same translation unit is just one Go package.
package value

import (
	"fmt"
	"math"
)

// Type is the discriminant of a Value.
type Type uint8

const (
	Nil Type = iota
	Bool
	Number
	ObjType
)

// Value is a tagged union: nil, a bool, a float64 or a reference to a
// heap-allocated Obj. The zero Value is the nil value.
type Value struct {
	typ    Type
	b      bool
	n      float64
	obj    Obj
}

// NilValue is the canonical nil value.
var NilValue = Value{typ: Nil}

// BoolValue returns the Value wrapping b.
func BoolValue(b bool) Value { return Value{typ: Bool, b: b} }

// NumberValue returns the Value wrapping n.
func NumberValue(n float64) Value { return Value{typ: Number, n: n} }

// ObjValue returns the Value wrapping the heap object o.
func ObjValue(o Obj) Value { return Value{typ: ObjType, obj: o} }

func (v Value) IsNil() bool    { return v.typ == Nil }
func (v Value) IsBool() bool   { return v.typ == Bool }
func (v Value) IsNumber() bool { return v.typ == Number }
func (v Value) IsObj() bool    { return v.typ == ObjType }

func (v Value) AsBool() bool     { return v.b }
func (v Value) AsNumber() float64 { return v.n }
func (v Value) AsObj() Obj       { return v.obj }

// Is reports whether v's heap object, if any, is of kind k.
func (v Value) Is(k Kind) bool { return v.typ == ObjType && v.obj.Kind() == k }

// AsString type-asserts v's object to *ObjString. The caller must have
// checked Is(KindString) first; as with the original, bytecode that
// reaches here is trusted to have the right shape.
func (v Value) AsString() *ObjString { return v.obj.(*ObjString) }

// Truth reports the value's truthiness: nil and false are falsy,
// everything else -- including 0 and the empty string -- is truthy.
func (v Value) Truth() bool {
	switch v.typ {
	case Nil:
		return false
	case Bool:
		return v.b
	default:
		return true
	}
}

// Equal implements Lox's "==": nil equals nil, bools compare by value,
// numbers by IEEE equality, and objects by identity (safe because
// strings are always interned). Values of differing types are never
// equal.
func Equal(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case Nil:
		return true
	case Bool:
		return a.b == b.b
	case Number:
		return a.n == b.n
	case ObjType:
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders v the way the `print` statement does.
func (v Value) String() string {
	switch v.typ {
	case Nil:
		return "nil"
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(v.n)
	case ObjType:
		return v.obj.String()
	default:
		return "<invalid value>"
	}
}

// formatNumber mimics clox's "%.14g"-ish printf of doubles: shortest
// round-trippable form, no trailing ".0" for integral values and
// special-cased infinities/NaN.
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	return fmt.Sprintf("%g", n)
}
