package compiler

import (
	"strconv"

	"github.com/mna/lumen/lang/chunk"
	"github.com/mna/lumen/lang/token"
)

func number(p *parser, _ bool) {
	n, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.errorf("invalid number literal %q", p.previous.Lexeme)
		return
	}
	idx, err := p.chunk().AddNumber(n)
	if err != nil {
		p.errorf("%s", err)
		return
	}
	p.emitOpByte(chunk.Number, byte(idx))
}

func str(p *parser, _ bool) {
	idx, err := p.chunk().AddString(p.previous.Lexeme)
	if err != nil {
		p.errorf("%s", err)
		return
	}
	p.emitOpByte(chunk.String, byte(idx))
}

func literal(p *parser, _ bool) {
	switch p.previous.Kind {
	case token.NIL:
		p.emitOp(chunk.Nil)
	case token.TRUE:
		p.emitOp(chunk.True)
	case token.FALSE:
		p.emitOp(chunk.False)
	}
}

func grouping(p *parser, _ bool) {
	p.expression()
	p.consume(token.RPAREN, "expect ')' after expression")
}

func unary(p *parser, _ bool) {
	op := p.previous.Kind
	p.parsePrecedence(PrecUnary)
	switch op {
	case token.MINUS:
		p.emitOp(chunk.Negate)
	case token.BANG:
		p.emitOp(chunk.Not)
	}
}

func binary(p *parser, _ bool) {
	op := p.previous.Kind
	rule := getRule(op)
	p.parsePrecedence(rule.precedence + 1)

	switch op {
	case token.PLUS:
		p.emitOp(chunk.Addition)
	case token.MINUS:
		p.emitOp(chunk.Subtract)
	case token.STAR:
		p.emitOp(chunk.Multiply)
	case token.SLASH:
		p.emitOp(chunk.Divide)
	case token.EQ_EQ:
		p.emitOp(chunk.Equal)
	case token.BANG_EQ:
		p.emitOp(chunk.Equal)
		p.emitOp(chunk.Not)
	case token.GT:
		p.emitOp(chunk.Greater)
	case token.GT_EQ:
		p.emitOp(chunk.Less)
		p.emitOp(chunk.Not)
	case token.LT:
		p.emitOp(chunk.Less)
	case token.LT_EQ:
		p.emitOp(chunk.Greater)
		p.emitOp(chunk.Not)
	}
}

// and_ short-circuits: if the left operand is falsey, skip the right
// operand entirely and leave the left value (falsey) as the result.
func and_(p *parser, _ bool) {
	endJump := p.emitJump(chunk.JumpFalse)
	p.emitOp(chunk.Pop)
	p.parsePrecedence(PrecAnd)
	p.patchJump(endJump)
}

// or_ short-circuits the opposite way: if the left operand is truthy, skip
// the right operand.
func or_(p *parser, _ bool) {
	elseJump := p.emitJump(chunk.JumpFalse)
	endJump := p.emitJump(chunk.Jump)

	p.patchJump(elseJump)
	p.emitOp(chunk.Pop)

	p.parsePrecedence(PrecOr)
	p.patchJump(endJump)
}

func call(p *parser, _ bool) {
	argCount := argumentList(p)
	p.emitOpByte(chunk.Call, byte(argCount))
}

func argumentList(p *parser) int {
	count := 0
	if !p.check(token.RPAREN) {
		for {
			p.expression()
			if count == 255 {
				p.errorf("can't have more than 255 arguments")
			}
			count++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "expect ')' after arguments")
	return count
}

func variable(p *parser, canAssign bool) {
	namedVariable(p, p.previous.Lexeme, canAssign)
}

// namedVariable resolves name against the current function's own scope
// stack first, then against the global namespace, emitting a Get or Set
// instruction (Set only when canAssign and an `=` follows). An identifier
// found in neither place is a compile error: unlike a name-based global
// lookup, the slot-table design here has nothing to defer resolution to at
// run time.
func namedVariable(p *parser, name string, canAssign bool) {
	var getOp, setOp chunk.Opcode
	var slot int

	if s, ok := p.ctx.resolveLocal(name); ok {
		getOp, setOp, slot = chunk.GetLocal, chunk.SetLocal, s
	} else if s, ok := p.globals.Get(name); ok {
		getOp, setOp, slot = chunk.GetGlobal, chunk.SetGlobal, s
	} else {
		p.errorf("undefined variable %q", name)
		return
	}

	idx, err := p.chunk().AddVariable(slot)
	if err != nil {
		p.errorf("%s", err)
		return
	}

	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emitOpByte(setOp, byte(idx))
	} else {
		p.emitOpByte(getOp, byte(idx))
	}
}
