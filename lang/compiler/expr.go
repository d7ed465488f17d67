package compiler

import (
	"strconv"

	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
)

// precedence orders operator binding strength, lowest first, so that
// parsePrecedence(p) only consumes infix operators at least as binding
// as p.
type precedence uint8

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(p *parser, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Token]parseRule

func init() {
	rules = map[token.Token]parseRule{
		token.LPAREN:   {grouping, call, precCall},
		token.DOT:      {nil, dot, precCall},
		token.MINUS:    {unary, binary, precTerm},
		token.PLUS:     {nil, binary, precTerm},
		token.SLASH:    {nil, binary, precFactor},
		token.STAR:     {nil, binary, precFactor},
		token.BANG:     {unary, nil, precNone},
		token.BANGEQ:   {nil, binary, precEquality},
		token.EQEQ:     {nil, binary, precEquality},
		token.GT:       {nil, binary, precComparison},
		token.GE:       {nil, binary, precComparison},
		token.LT:       {nil, binary, precComparison},
		token.LE:       {nil, binary, precComparison},
		token.IDENT:    {variable, nil, precNone},
		token.STRING:   {stringLiteral, nil, precNone},
		token.NUMBER:   {number, nil, precNone},
		token.AND:      {nil, and_, precAnd},
		token.OR:       {nil, or_, precOr},
		token.FALSE:    {literal, nil, precNone},
		token.NIL:      {literal, nil, precNone},
		token.TRUE:     {literal, nil, precNone},
		token.THIS:     {this_, nil, precNone},
		token.SUPER:    {super_, nil, precNone},
	}
}

func getRule(t token.Token) parseRule {
	if r, ok := rules[t]; ok {
		return r
	}
	return parseRule{}
}

func (p *parser) expression() {
	p.parsePrecedence(precAssignment)
}

func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	prefix := getRule(p.previous.Type).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefix(p, canAssign)

	for prec <= getRule(p.current.Type).precedence {
		p.advance()
		infix := getRule(p.previous.Type).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.error("Invalid assignment target.")
	}
}

func number(p *parser, _ bool) {
	n, _ := strconv.ParseFloat(p.previous.Lexeme, 64)
	p.emitConstant(value.NumberValue(n))
}

func stringLiteral(p *parser, _ bool) {
	raw := p.previous.Lexeme
	s := raw[1 : len(raw)-1]
	p.emitConstant(value.ObjValue(p.heap.InternString(s)))
}

func literal(p *parser, _ bool) {
	switch p.previous.Type {
	case token.FALSE:
		p.emitOp(value.OpFalse)
	case token.TRUE:
		p.emitOp(value.OpTrue)
	case token.NIL:
		p.emitOp(value.OpNil)
	}
}

func grouping(p *parser, _ bool) {
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after expression.")
}

func unary(p *parser, _ bool) {
	opType := p.previous.Type
	p.parsePrecedence(precUnary)
	switch opType {
	case token.BANG:
		p.emitOp(value.OpNot)
	case token.MINUS:
		p.emitOp(value.OpNegate)
	}
}

func binary(p *parser, _ bool) {
	opType := p.previous.Type
	rule := getRule(opType)
	p.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.BANGEQ:
		p.emitOps(value.OpEqual, value.OpNot)
	case token.EQEQ:
		p.emitOp(value.OpEqual)
	case token.GT:
		p.emitOp(value.OpGreater)
	case token.GE:
		p.emitOps(value.OpLess, value.OpNot)
	case token.LT:
		p.emitOp(value.OpLess)
	case token.LE:
		p.emitOps(value.OpGreater, value.OpNot)
	case token.PLUS:
		p.emitOp(value.OpAdd)
	case token.MINUS:
		p.emitOp(value.OpSubtract)
	case token.STAR:
		p.emitOp(value.OpMultiply)
	case token.SLASH:
		p.emitOp(value.OpDivide)
	}
}

func and_(p *parser, _ bool) {
	endJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func or_(p *parser, _ bool) {
	elseJump := p.emitJump(value.OpJumpIfFalse)
	endJump := p.emitJump(value.OpJump)
	p.patchJump(elseJump)
	p.emitOp(value.OpPop)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func call(p *parser, _ bool) {
	argCount := p.argumentList()
	p.emitOpByte(value.OpCall, argCount)
}

func (p *parser) argumentList() byte {
	var argCount int
	if !p.check(token.RPAREN) {
		for {
			p.expression()
			if argCount == maxArgs {
				p.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(argCount)
}

func dot(p *parser, canAssign bool) {
	p.consume(token.IDENT, "Expect property name after '.'.")
	name := p.identifierConstant(p.previous.Lexeme)

	switch {
	case canAssign && p.match(token.EQ):
		p.expression()
		p.emitOpByte(value.OpSetProperty, name)
	case p.match(token.LPAREN):
		argCount := p.argumentList()
		p.emitOpByte(value.OpInvoke, name)
		p.emitByte(argCount)
	default:
		p.emitOpByte(value.OpGetProperty, name)
	}
}

func variable(p *parser, canAssign bool) {
	namedVariable(p, p.previous.Lexeme, canAssign)
}

func this_(p *parser, _ bool) {
	if p.class == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	namedVariable(p, "this", false)
}

func super_(p *parser, _ bool) {
	switch {
	case p.class == nil:
		p.error("Can't use 'super' outside of a class.")
	case !p.class.hasSuperclass:
		p.error("Can't use 'super' in a class with no superclass.")
	}

	p.consume(token.DOT, "Expect '.' after 'super'.")
	p.consume(token.IDENT, "Expect superclass method name.")
	name := p.identifierConstant(p.previous.Lexeme)

	namedVariable(p, "this", false)
	if p.match(token.LPAREN) {
		argCount := p.argumentList()
		namedVariable(p, "super", false)
		p.emitOpByte(value.OpSuperInvoke, name)
		p.emitByte(argCount)
	} else {
		namedVariable(p, "super", false)
		p.emitOpByte(value.OpGetSuper, name)
	}
}

// namedVariable resolves name through the local -> upvalue -> global
// order and emits the matching get/set opcode pair.
func namedVariable(p *parser, name string, canAssign bool) {
	var getOp, setOp value.Opcode
	var arg byte

	if slot := resolveLocal(p, p.current_, name); slot != -1 {
		getOp, setOp = value.OpGetLocal, value.OpSetLocal
		arg = byte(slot)
	} else if slot := resolveUpvalue(p, p.current_, name); slot != -1 {
		getOp, setOp = value.OpGetUpvalue, value.OpSetUpvalue
		arg = byte(slot)
	} else {
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
		arg = p.identifierConstant(name)
	}

	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emitOpByte(setOp, arg)
	} else {
		p.emitOpByte(getOp, arg)
	}
}
