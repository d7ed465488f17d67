package compiler

import "github.com/mna/loxvm/lang/value"

func (p *parser) beginScope() {
	p.current_.scopeDepth++
}

// endScope pops every local declared in the scope just left, emitting
// OP_CLOSE_UPVALUE for ones captured by a closure and OP_POP otherwise.
func (p *parser) endScope() {
	fc := p.current_
	fc.scopeDepth--
	for fc.localCount > 0 && fc.locals[fc.localCount-1].depth > fc.scopeDepth {
		if fc.locals[fc.localCount-1].isCaptured {
			p.emitOp(value.OpCloseUpvalue)
		} else {
			p.emitOp(value.OpPop)
		}
		fc.localCount--
	}
}

// declareVariable registers the variable named by p.previous as a new
// local in the current scope (a no-op at global scope, where binding
// happens by name at runtime instead).
func (p *parser) declareVariable(name string) {
	if p.current_.scopeDepth == 0 {
		return
	}
	fc := p.current_
	for i := fc.localCount - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if l.depth != -1 && l.depth < fc.scopeDepth {
			break
		}
		if l.name == name {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) addLocal(name string) {
	fc := p.current_
	if fc.localCount == maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	l := &fc.locals[fc.localCount]
	fc.localCount++
	l.name = name
	l.depth = -1
	l.isCaptured = false
}

// markInitialized records that the most recently added local's
// initializer has finished compiling, making it visible to name
// resolution (and, at function-top scope, a no-op since such names are
// handled as globals already bound by the defining statement itself).
func (p *parser) markInitialized() {
	if p.current_.scopeDepth == 0 {
		return
	}
	p.current_.locals[p.current_.localCount-1].depth = p.current_.scopeDepth
}

// resolveLocal looks up name among fc's locals, innermost scope first.
// Returns -1 if not found. A local found with depth -1 (still being
// initialized, i.e. `var x = x;`) is a compile error.
func resolveLocal(p *parser, fc *fnCompiler, name string) int {
	for i := fc.localCount - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if l.name == name {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue resolves name as an upvalue of fc: a local of fc's
// enclosing function, or (recursively) an upvalue of it. Each outer
// compiler visited along the way has its matching local marked
// isCaptured. Returns -1 if name isn't found anywhere in the
// enclosing chain (so it must be a global).
func resolveUpvalue(p *parser, fc *fnCompiler, name string) int {
	if fc.enclosing == nil {
		return -1
	}
	if local := resolveLocal(p, fc.enclosing, name); local != -1 {
		fc.enclosing.locals[local].isCaptured = true
		return addUpvalue(p, fc, uint8(local), true)
	}
	if up := resolveUpvalue(p, fc.enclosing, name); up != -1 {
		return addUpvalue(p, fc, uint8(up), false)
	}
	return -1
}

// addUpvalue deduplicates by (index, isLocal) before appending a new
// compile-time upvalue entry.
func addUpvalue(p *parser, fc *fnCompiler, index uint8, isLocal bool) int {
	count := fc.function.UpvalueCount
	for i := 0; i < count; i++ {
		uv := &fc.upvalues[i]
		if int(uv.index) == int(index) && uv.isLocal == isLocal {
			return i
		}
	}
	if count == maxUpvalues {
		p.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues[count] = upvalueRef{index: index, isLocal: isLocal}
	fc.function.UpvalueCount++
	return count
}
