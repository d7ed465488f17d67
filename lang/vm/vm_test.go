package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/loxvm/lang/value"
	"github.com/mna/loxvm/lang/vm"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string) (stdout, stderr string, result vm.Result) {
	t.Helper()
	var out, errOut bytes.Buffer
	heap := value.NewHeap()
	m := vm.New(heap, &out, &errOut)
	result = m.Interpret(source)
	return out.String(), errOut.String(), result
}

func TestEndToEndArithmetic(t *testing.T) {
	out, _, res := run(t, "print 1 + 2 * 3;")
	require.Equal(t, vm.ResultOK, res)
	require.Equal(t, "7\n", out)
}

func TestEndToEndStringConcat(t *testing.T) {
	out, _, res := run(t, `var a = "hi"; var b = "!"; print a + b;`)
	require.Equal(t, vm.ResultOK, res)
	require.Equal(t, "hi!\n", out)
}

func TestEndToEndForLoop(t *testing.T) {
	out, _, res := run(t, `var sum = 0; for (var i = 1; i <= 5; i = i + 1) sum = sum + i; print sum;`)
	require.Equal(t, vm.ResultOK, res)
	require.Equal(t, "15\n", out)
}

func TestEndToEndClosure(t *testing.T) {
	out, _, res := run(t, `fun make(x) { fun inner() { return x; } return inner; } var f = make(42); print f();`)
	require.Equal(t, vm.ResultOK, res)
	require.Equal(t, "42\n", out)
}

func TestEndToEndInheritance(t *testing.T) {
	out, _, res := run(t, `class A { greet() { print "hi"; } } class B < A {} B().greet();`)
	require.Equal(t, vm.ResultOK, res)
	require.Equal(t, "hi\n", out)
}

func TestEndToEndRuntimeError(t *testing.T) {
	_, errOut, res := run(t, `var x; print x + 1;`)
	require.Equal(t, vm.ResultRuntimeError, res)
	require.Contains(t, errOut, "Operands must be numbers.")
	require.Contains(t, errOut, "[line 1] in script")
}

func TestMethodResolutionOverride(t *testing.T) {
	out, _, res := run(t, `
class Base { greet() { print "base"; } }
class Derived < Base {}
Derived().greet();
class Derived2 < Base { greet() { print "derived"; } }
Derived2().greet();
`)
	require.Equal(t, vm.ResultOK, res)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, []string{"base", "derived"}, lines)
}

func TestUpvalueClosureAcrossCalls(t *testing.T) {
	out, _, res := run(t, `
fun counter() {
  var n = 0;
  fun inc() {
    n = n + 1;
    return n;
  }
  return inc;
}
var c = counter();
print c();
print c();
print c();
`)
	require.Equal(t, vm.ResultOK, res)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestInitializerConvention(t *testing.T) {
	out, _, res := run(t, `
class Point {
  init(x, y) {
    this.x = x;
    this.y = y;
  }
  sum() {
    return this.x + this.y;
  }
}
var p = Point(3, 4);
print p.sum();
`)
	require.Equal(t, vm.ResultOK, res)
	require.Equal(t, "7\n", out)
}

func TestNativeClock(t *testing.T) {
	out, _, res := run(t, `print clock() >= 0;`)
	require.Equal(t, vm.ResultOK, res)
	require.Equal(t, "true\n", out)
}

func TestUndefinedVariableRuntimeError(t *testing.T) {
	_, errOut, res := run(t, `print undefined_name;`)
	require.Equal(t, vm.ResultRuntimeError, res)
	require.Contains(t, errOut, "Undefined variable 'undefined_name'.")
}
