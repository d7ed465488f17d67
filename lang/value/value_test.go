package value_test

import (
	"testing"

	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func TestValueTruth(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"nil", value.NilValue, false},
		{"false", value.BoolValue(false), false},
		{"true", value.BoolValue(true), true},
		{"zero", value.NumberValue(0), true},
		{"number", value.NumberValue(1), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.v.Truth())
		})
	}
}

func TestValueEqual(t *testing.T) {
	h := value.NewHeap()
	a := value.ObjValue(h.InternString("hi"))
	b := value.ObjValue(h.InternString("hi"))
	require.True(t, value.Equal(a, b), "interned strings with identical content must be equal")

	require.True(t, value.Equal(value.NumberValue(1), value.NumberValue(1)))
	require.False(t, value.Equal(value.NumberValue(1), value.NumberValue(2)))
	require.False(t, value.Equal(value.NilValue, value.BoolValue(false)), "nil and false are distinct types")
	require.True(t, value.Equal(value.NilValue, value.NilValue))
}

func TestValueString(t *testing.T) {
	require.Equal(t, "nil", value.NilValue.String())
	require.Equal(t, "true", value.BoolValue(true).String())
	require.Equal(t, "1.5", value.NumberValue(1.5).String())
	require.Equal(t, "3", value.NumberValue(3).String())
}

func TestInternStringDedup(t *testing.T) {
	h := value.NewHeap()
	a := h.InternString("hello")
	b := h.InternString("hello")
	require.Same(t, a, b, "identical byte content must intern to the same object")

	c := h.InternString("world")
	require.NotSame(t, a, c)
}
