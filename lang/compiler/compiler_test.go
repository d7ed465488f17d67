package compiler_test

import (
	"strings"
	"testing"

	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func disassemble(t *testing.T, fn *value.ObjFunction) string {
	t.Helper()
	var buf strings.Builder
	value.Disassemble(&buf, &fn.Chunk, fn.String())
	return buf.String()
}

func TestCompileArithmetic(t *testing.T) {
	h := value.NewHeap()
	fn, err := compiler.Compile("print 1 + 2 * 3;", h)
	require.NoError(t, err)

	out := disassemble(t, fn)
	require.Contains(t, out, "OP_CONSTANT")
	require.Contains(t, out, "OP_MULTIPLY")
	require.Contains(t, out, "OP_ADD")
	require.Contains(t, out, "OP_PRINT")
	require.Contains(t, out, "OP_RETURN")
}

func TestCompileGlobalVar(t *testing.T) {
	h := value.NewHeap()
	fn, err := compiler.Compile(`var a = "hi"; print a;`, h)
	require.NoError(t, err)

	out := disassemble(t, fn)
	require.Contains(t, out, "OP_DEFINE_GLOBAL")
	require.Contains(t, out, "OP_GET_GLOBAL")
}

func TestCompileLocalScope(t *testing.T) {
	h := value.NewHeap()
	fn, err := compiler.Compile(`{ var a = 1; print a; }`, h)
	require.NoError(t, err)

	out := disassemble(t, fn)
	require.Contains(t, out, "OP_GET_LOCAL")
	require.NotContains(t, out, "OP_DEFINE_GLOBAL")
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	h := value.NewHeap()
	fn, err := compiler.Compile(`fun make(x) { fun inner() { return x; } return inner; }`, h)
	require.NoError(t, err)

	out := disassemble(t, fn)
	require.Contains(t, out, "OP_CLOSURE")

	// inner's OP_CLOSURE lives in make's chunk and captures make's local
	// slot 1 (the parameter x).
	var makeOut string
	for _, c := range fn.Chunk.Constants {
		if c.Is(value.KindFunction) {
			makeOut += disassemble(t, c.AsObj().(*value.ObjFunction))
		}
	}
	require.Contains(t, makeOut, "local 1")
}

func TestCompileClassInheritance(t *testing.T) {
	h := value.NewHeap()
	fn, err := compiler.Compile(`class A { greet() { print "hi"; } } class B < A {}`, h)
	require.NoError(t, err)

	out := disassemble(t, fn)
	require.Contains(t, out, "OP_CLASS")
	require.Contains(t, out, "OP_INHERIT")
	require.Contains(t, out, "OP_METHOD")
}

func TestCompileErrorUndefinedSyntax(t *testing.T) {
	h := value.NewHeap()
	_, err := compiler.Compile("var ;", h)
	require.Error(t, err)
	var ce *compiler.CompileError
	require.ErrorAs(t, err, &ce)
	require.NotEmpty(t, ce.Messages)
	require.Contains(t, ce.Messages[0], "[line 1] Error at ';'")
}

func TestCompileErrorReturnFromInitializer(t *testing.T) {
	h := value.NewHeap()
	_, err := compiler.Compile(`class A { init() { return 1; } }`, h)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Can't return a value from an initializer.")
}

func TestCompileErrorDuplicateLocal(t *testing.T) {
	h := value.NewHeap()
	_, err := compiler.Compile(`{ var a = 1; var a = 2; }`, h)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Already a variable with this name in this scope.")
}

func TestCompileForLoop(t *testing.T) {
	h := value.NewHeap()
	fn, err := compiler.Compile(`var sum = 0; for (var i = 1; i <= 5; i = i + 1) sum = sum + i; print sum;`, h)
	require.NoError(t, err)

	out := disassemble(t, fn)
	require.Contains(t, out, "OP_JUMP_IF_FALSE")
	require.Contains(t, out, "OP_LOOP")
}

func TestCompileSuperInvoke(t *testing.T) {
	h := value.NewHeap()
	fn, err := compiler.Compile(`class A { greet() { print "hi"; } } class B < A { greet() { super.greet(); } }`, h)
	require.NoError(t, err)

	// The super call is compiled into B.greet's own chunk, so list every
	// method function held in the script's constant pool too.
	out := disassemble(t, fn)
	for _, c := range fn.Chunk.Constants {
		if c.Is(value.KindFunction) {
			out += disassemble(t, c.AsObj().(*value.ObjFunction))
		}
	}
	require.Contains(t, out, "OP_SUPER_INVOKE")
}
