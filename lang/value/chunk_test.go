package value_test

import (
	"strings"
	"testing"

	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func TestOpcodeString(t *testing.T) {
	for op := value.Opcode(0); op <= value.OpMethod; op++ {
		s := op.String()
		require.NotEqual(t, "OP_UNKNOWN", s, "missing string representation of opcode %d", op)
		require.True(t, strings.HasPrefix(s, "OP_"))
	}
}

func TestChunkAddConstant(t *testing.T) {
	var c value.Chunk
	idx := c.AddConstant(value.NumberValue(42))
	require.Equal(t, 0, idx)
	require.Equal(t, value.NumberValue(42), c.Constants[idx])
	require.False(t, c.Full())
}

func TestChunkWrite(t *testing.T) {
	var c value.Chunk
	c.WriteOp(value.OpNil, 1)
	c.WriteOp(value.OpReturn, 1)
	require.Equal(t, []byte{byte(value.OpNil), byte(value.OpReturn)}, c.Code)
	require.Equal(t, []int{1, 1}, c.Lines)
}

func TestDisassembleInstruction(t *testing.T) {
	var c value.Chunk
	idx := c.AddConstant(value.NumberValue(1))
	c.Write(byte(value.OpConstant), 1)
	c.Write(byte(idx), 1)
	c.WriteOp(value.OpReturn, 2)

	var buf strings.Builder
	value.Disassemble(&buf, &c, "test chunk")
	out := buf.String()
	require.Contains(t, out, "== test chunk ==")
	require.Contains(t, out, "OP_CONSTANT")
	require.Contains(t, out, "OP_RETURN")
}
