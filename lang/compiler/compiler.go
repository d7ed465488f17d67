// Package compiler implements a single-pass Pratt parser that compiles
// Lox source directly into bytecode, without building an intermediate
// AST. Scope, local, and upvalue resolution happen inline as each
// declaration is parsed.
package compiler

import (
	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
	"golang.org/x/exp/slices"
)

// maxLocals, maxUpvalues and maxArgs mirror the bytecode ABI's
// single-byte slot/argument-count operands; exceeding them is a
// compile error, not a panic.
const (
	maxLocals   = 256
	maxUpvalues = 256
	maxArgs     = 255
)

// FunctionType distinguishes the top-level script from a user-defined
// function, a method, or a class initializer, since return-statement
// rules and slot-0 naming differ between them.
type FunctionType uint8

const (
	TypeScript FunctionType = iota
	TypeFunction
	TypeMethod
	TypeInitializer
)

// local records one local variable binding in a function's Locals
// array.
type local struct {
	name       string
	depth      int // -1 while its initializer is being compiled
	isCaptured bool
}

// upvalueRef records one compile-time upvalue binding.
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// classCompiler tracks the class currently being compiled, chained to
// its enclosing class (if any, for nested classes) so `this` and
// `super` resolve against the right context.
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// fnCompiler holds the compile-time state for one function body,
// chained to the compiler of the function lexically enclosing it.
type fnCompiler struct {
	enclosing *fnCompiler

	function *value.ObjFunction
	typ      FunctionType

	locals     [maxLocals]local
	localCount int
	scopeDepth int

	upvalues [maxUpvalues]upvalueRef
}

// parser drives the single token of lookahead the Pratt parser needs:
// the token just consumed and the one not yet consumed.
type parser struct {
	scan *scanner.Scanner
	heap *value.Heap

	current  scanner.Token
	previous scanner.Token

	hadError  bool
	panicMode bool
	errs      []string

	current_ *fnCompiler
	class    *classCompiler
}

// Compile compiles source into a top-level ObjFunction representing
// the implicit `main` script, allocating every constant and nested
// function via heap. It returns a *CompileError aggregating every
// recovered parse error if compilation failed.
func Compile(source string, heap *value.Heap) (*value.ObjFunction, error) {
	var sc scanner.Scanner
	sc.Init(source)

	p := &parser{scan: &sc, heap: heap}
	p.pushCompiler(TypeScript, "")

	// While this Compile call owns allocation, roots are every function
	// currently being built, up the compiler chain (spec.md §4.4's
	// root-enumeration contract for the compiler), plus whatever the
	// caller's root hook (if any, e.g. a VM reusing this heap across
	// calls) marks. That hook alone is restored once compilation
	// finishes.
	previousRoots := heap.Roots
	heap.Roots = func(mark func(value.Value)) {
		if previousRoots != nil {
			previousRoots(mark)
		}
		p.markCompilerRoots(mark)
	}
	defer func() { heap.Roots = previousRoots }()

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	p.consume(token.EOF, "Expect end of expression.")

	fn := p.popCompiler()
	if p.hadError {
		return nil, &CompileError{Messages: p.errs}
	}
	return fn, nil
}

func (p *parser) pushCompiler(typ FunctionType, name string) {
	fc := &fnCompiler{
		enclosing: p.current_,
		typ:       typ,
		function:  p.heap.NewFunction(),
	}
	if name != "" {
		fc.function.Name = p.heap.InternString(name)
	}
	// Slot 0 is reserved: named "this" for methods/initializers so
	// resolveLocal can find it, empty (unreachable by name) otherwise.
	slot0 := &fc.locals[0]
	fc.localCount = 1
	if typ != TypeFunction && typ != TypeScript {
		slot0.name = "this"
	} else {
		slot0.name = ""
	}
	slot0.depth = 0

	p.current_ = fc
}

// popCompiler finishes the current function: emits the implicit final
// return, then restores the enclosing compiler as current. fn's
// UpvalueCount was kept current by resolveUpvalue as upvalues were
// added.
func (p *parser) popCompiler() *value.ObjFunction {
	p.emitReturn()
	fn := p.current_.function
	p.current_ = p.current_.enclosing
	return fn
}

func (p *parser) chunk() *value.Chunk {
	return &p.current_.function.Chunk
}

// markCompilerRoots marks every function currently being built, up the
// chain of nested fnCompilers, so none of them (nor anything already
// reachable from their constant pools) can be collected mid-compile.
func (p *parser) markCompilerRoots(mark func(value.Value)) {
	for fc := p.current_; fc != nil; fc = fc.enclosing {
		mark(value.ObjValue(fc.function))
	}
}

// --- token stream plumbing ---

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scan.ScanToken()
		if p.current.Type != token.ILLEGAL {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(t token.Token) bool {
	return p.current.Type == t
}

func (p *parser) match(t token.Token) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(t token.Token, message string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *parser) errorAtCurrent(message string) {
	p.errorAt(p.current, message)
}

func (p *parser) error(message string) {
	p.errorAt(p.previous, message)
}

func (p *parser) errorAt(tok scanner.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	p.errs = append(p.errs, formatError(tok.Line, tok.Lexeme, tok.Type == token.EOF, message))
}

// synchronize discards tokens until it reaches what looks like a
// statement boundary, so one error doesn't cascade into a flood of
// spurious follow-on errors.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Type != token.EOF {
		if p.previous.Type == token.SEMI {
			return
		}
		switch p.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// --- emission helpers ---

func (p *parser) emitByte(b byte) {
	p.chunk().Write(b, p.previous.Line)
}

func (p *parser) emitOp(op value.Opcode) {
	p.chunk().WriteOp(op, p.previous.Line)
}

func (p *parser) emitOps(op1, op2 value.Opcode) {
	p.emitOp(op1)
	p.emitOp(op2)
}

func (p *parser) emitOpByte(op value.Opcode, b byte) {
	p.emitOp(op)
	p.emitByte(b)
}

func (p *parser) emitReturn() {
	if p.current_.typ == TypeInitializer {
		p.emitOpByte(value.OpGetLocal, 0)
	} else {
		p.emitOp(value.OpNil)
	}
	p.emitOp(value.OpReturn)
}

// emitConstant pushes v as a CONSTANT load.
func (p *parser) emitConstant(v value.Value) {
	p.emitOpByte(value.OpConstant, p.makeConstant(v))
}

// makeConstant interns v into the current chunk's constant pool,
// deduplicating identical values already present so repeated literals
// (or the same identifier used as a global name twice) share a slot.
func (p *parser) makeConstant(v value.Value) byte {
	c := p.chunk()
	if i := slices.IndexFunc(c.Constants, func(existing value.Value) bool {
		return value.Equal(existing, v)
	}); i != -1 {
		return byte(i)
	}
	if c.Full() {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(c.AddConstant(v))
}

// identifierConstant interns name as a string constant, used for every
// global/property/method name reference.
func (p *parser) identifierConstant(name string) byte {
	return p.makeConstant(value.ObjValue(p.heap.InternString(name)))
}

// emitJump emits a two-byte placeholder jump and returns its offset
// for later patching.
func (p *parser) emitJump(op value.Opcode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.chunk().Code) - 2
}

// patchJump backfills the jump at offset with the distance from just
// after its operand to the current code position.
func (p *parser) patchJump(offset int) {
	jump := len(p.chunk().Code) - offset - 2
	if jump > 0xffff {
		p.error("Too much code to jump over.")
		return
	}
	p.chunk().Code[offset] = byte(jump >> 8)
	p.chunk().Code[offset+1] = byte(jump & 0xff)
}

// emitLoop emits OP_LOOP back to loopStart.
func (p *parser) emitLoop(loopStart int) {
	p.emitOp(value.OpLoop)
	offset := len(p.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		p.error("Loop body too large.")
	}
	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset & 0xff))
}
