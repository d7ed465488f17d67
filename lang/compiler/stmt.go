package compiler

import (
	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
)

func (p *parser) declaration() {
	switch {
	case p.match(token.CLASS):
		p.classDeclaration()
	case p.match(token.FUN):
		p.funDeclaration()
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}

	// Safe checkpoint: every value this declaration allocated is either
	// already in a function's constant pool or (for the just-finished
	// top-level fnCompiler chain) reachable via markCompilerRoots.
	p.heap.MaybeCollect(p.heap.Roots)
}

func (p *parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.LBRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after value.")
	p.emitOp(value.OpPrint)
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after expression.")
	p.emitOp(value.OpPop)
}

func (p *parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
}

func (p *parser) ifStatement() {
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.statement()

	elseJump := p.emitJump(value.OpJump)
	p.patchJump(thenJump)
	p.emitOp(value.OpPop)

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := len(p.chunk().Code)
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(value.OpPop)
}

// forStatement desugars `for (init; cond; inc) body` into a scope
// wrapping the initializer, a conditional exit jump, and a forward
// jump over the increment clause that loops back after the body runs.
func (p *parser) forStatement() {
	p.beginScope()
	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMI):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.chunk().Code)
	exitJump := -1
	if !p.match(token.SEMI) {
		p.expression()
		p.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = p.emitJump(value.OpJumpIfFalse)
		p.emitOp(value.OpPop)
	}

	if !p.match(token.RPAREN) {
		bodyJump := p.emitJump(value.OpJump)
		incrementStart := len(p.chunk().Code)
		p.expression()
		p.emitOp(value.OpPop)
		p.consume(token.RPAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(value.OpPop)
	}

	p.endScope()
}

func (p *parser) returnStatement() {
	if p.current_.typ == TypeScript {
		p.error("Can't return from top-level code.")
	}

	if p.match(token.SEMI) {
		p.emitReturn()
		return
	}

	if p.current_.typ == TypeInitializer {
		p.error("Can't return a value from an initializer.")
	}
	p.expression()
	p.consume(token.SEMI, "Expect ';' after return value.")
	p.emitOp(value.OpReturn)
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.EQ) {
		p.expression()
	} else {
		p.emitOp(value.OpNil)
	}
	p.consume(token.SEMI, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

// parseVariable consumes the variable's name, declares it as a local
// if inside a scope, and returns the name's constant index for use by
// DEFINE_GLOBAL at global scope (ignored for locals).
func (p *parser) parseVariable(message string) byte {
	p.consume(token.IDENT, message)
	name := p.previous.Lexeme
	p.declareVariable(name)
	if p.current_.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(name)
}

func (p *parser) defineVariable(global byte) {
	if p.current_.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOpByte(value.OpDefineGlobal, global)
}

func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(TypeFunction)
	p.defineVariable(global)
}

// function compiles a nested function body in a fresh fnCompiler,
// emitting OP_CLOSURE with its upvalue descriptor bytes into the
// *enclosing* chunk once the body is done.
func (p *parser) function(typ FunctionType) {
	name := p.previous.Lexeme
	p.pushCompiler(typ, name)
	p.beginScope()

	p.consume(token.LPAREN, "Expect '(' after function name.")
	if !p.check(token.RPAREN) {
		for {
			p.current_.function.Arity++
			if p.current_.function.Arity > maxArgs {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")
	p.consume(token.LBRACE, "Expect '{' before function body.")
	p.block()

	fc := p.current_
	fn := p.popCompiler()

	idx := p.makeConstant(value.ObjValue(fn))
	p.emitOpByte(value.OpClosure, idx)
	for i := 0; i < fn.UpvalueCount; i++ {
		uv := fc.upvalues[i]
		if uv.isLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(uv.index)
	}
}

func (p *parser) classDeclaration() {
	p.consume(token.IDENT, "Expect class name.")
	className := p.previous.Lexeme
	nameConstant := p.identifierConstant(className)
	p.declareVariable(className)

	p.emitOpByte(value.OpClass, nameConstant)
	p.defineVariable(nameConstant)

	cc := &classCompiler{enclosing: p.class}
	p.class = cc

	if p.match(token.LT) {
		p.consume(token.IDENT, "Expect superclass name.")
		variable(p, false)
		if p.previous.Lexeme == className {
			p.error("A class can't inherit from itself.")
		}

		p.beginScope()
		p.addLocal("super")
		p.defineVariable(0)

		namedVariable(p, className, false)
		p.emitOp(value.OpInherit)
		cc.hasSuperclass = true
	}

	namedVariable(p, className, false)
	p.consume(token.LBRACE, "Expect '{' before class body.")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.method()
	}
	p.consume(token.RBRACE, "Expect '}' after class body.")
	p.emitOp(value.OpPop)

	if cc.hasSuperclass {
		p.endScope()
	}
	p.class = p.class.enclosing
}

func (p *parser) method() {
	p.consume(token.IDENT, "Expect method name.")
	name := p.previous.Lexeme
	constant := p.identifierConstant(name)

	typ := TypeMethod
	if name == "init" {
		typ = TypeInitializer
	}
	p.function(typ)
	p.emitOpByte(value.OpMethod, constant)
}
