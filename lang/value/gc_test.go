package value_test

import (
	"testing"

	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func TestCollectSweepsUnreachable(t *testing.T) {
	h := value.NewHeap()
	root := h.InternString("kept")
	dropped := h.InternString("dropped")

	var rootVal value.Value
	h.Collect(func(mark func(value.Value)) {
		rootVal = value.ObjValue(root)
		mark(rootVal)
	})

	require.Equal(t, 1, h.Collections)
	// The kept string must still intern to the same object after a
	// collection that marked it as a root.
	require.Same(t, root, h.InternString("kept"))
	// The unmarked string was swept from the intern table, so interning
	// the same bytes again yields a fresh object.
	require.NotSame(t, dropped, h.InternString("dropped"))
}

func TestCollectTracesFunctionConstants(t *testing.T) {
	h := value.NewHeap()
	fn := h.NewFunction()
	name := h.InternString("inner")
	fn.Chunk.AddConstant(value.ObjValue(name))

	h.Collect(func(mark func(value.Value)) {
		mark(value.ObjValue(fn))
	})

	// name was reachable only via fn's constant pool; if Blacken traced
	// it correctly it must have survived the sweep and still be the
	// canonical interned object.
	require.Same(t, name, h.InternString("inner"))
}

func TestMaybeCollectRespectsStressGC(t *testing.T) {
	h := value.NewHeap()
	h.StressGC = true
	called := false
	h.MaybeCollect(func(mark func(value.Value)) {
		called = true
	})
	require.True(t, called)
	require.Equal(t, 1, h.Collections)
}

func TestMaybeCollectSkipsWhenBelowThreshold(t *testing.T) {
	h := value.NewHeap()
	called := false
	h.MaybeCollect(func(mark func(value.Value)) {
		called = true
	})
	require.False(t, called)
	require.Equal(t, 0, h.Collections)
}
