package value

import "github.com/dolthub/swiss"

// Table is a hash table keyed by interned string identity. It backs
// every class's method table and every instance's field table, per
// spec's "hash table keyed by object-string identity" requirement.
type Table struct {
	m *swiss.Map[*ObjString, Value]
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{m: swiss.NewMap[*ObjString, Value](0)}
}

func (t *Table) Get(name *ObjString) (Value, bool) { return t.m.Get(name) }
func (t *Table) Set(name *ObjString, v Value)       { t.m.Put(name, v) }
func (t *Table) Has(name *ObjString) bool           { return t.m.Has(name) }
func (t *Table) Len() int                           { return int(t.m.Count()) }

// CopyFrom copies every entry of src into t, overwriting any existing
// entries with the same key. Used by OP_INHERIT to copy a superclass's
// method table into its subclass.
func (t *Table) CopyFrom(src *Table) {
	src.m.Iter(func(k *ObjString, v Value) bool {
		t.m.Put(k, v)
		return false
	})
}

// MarkRoots marks every key and value in t. Used directly by the VM
// for its globals table, which is a GC root but not itself a heap Obj.
func (t *Table) MarkRoots(mark func(Value)) {
	t.blacken(mark)
}

func (t *Table) blacken(mark func(Value)) {
	t.m.Iter(func(k *ObjString, v Value) bool {
		mark(ObjValue(k))
		mark(v)
		return false
	})
}
