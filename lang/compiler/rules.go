package compiler

import "github.com/mna/lumen/lang/token"

// A parseFunc is a Pratt-parser prefix or infix handler. canAssign is true
// only when the enclosing parsePrecedence call is at or below assignment
// precedence, so that e.g. `a + b = c` never lets `variable` consume the
// trailing `= c`.
type parseFunc func(p *parser, canAssign bool)

type parseRule struct {
	prefix, infix parseFunc
	precedence    Precedence
}

var rules = map[token.Kind]parseRule{
	token.LPAREN:    {prefix: grouping, infix: call, precedence: PrecCall},
	token.MINUS:     {prefix: unary, infix: binary, precedence: PrecTerm},
	token.PLUS:      {infix: binary, precedence: PrecTerm},
	token.SLASH:     {infix: binary, precedence: PrecFactor},
	token.STAR:      {infix: binary, precedence: PrecFactor},
	token.BANG:      {prefix: unary},
	token.BANG_EQ:   {infix: binary, precedence: PrecEquality},
	token.EQ_EQ:     {infix: binary, precedence: PrecEquality},
	token.GT:        {infix: binary, precedence: PrecComparison},
	token.GT_EQ:     {infix: binary, precedence: PrecComparison},
	token.LT:        {infix: binary, precedence: PrecComparison},
	token.LT_EQ:     {infix: binary, precedence: PrecComparison},
	token.IDENT:     {prefix: variable},
	token.NUMBER:    {prefix: number},
	token.STRING:    {prefix: str},
	token.NIL:       {prefix: literal},
	token.TRUE:      {prefix: literal},
	token.FALSE:     {prefix: literal},
	token.AND:       {infix: and_, precedence: PrecAnd},
	token.OR:        {infix: or_, precedence: PrecOr},
}

func getRule(k token.Kind) parseRule { return rules[k] }

// parsePrecedence consumes a prefix expression, then keeps folding in infix
// operators whose own precedence is at least p.
func (p *parser) parsePrecedence(prec Precedence) {
	p.advance()
	rule := getRule(p.previous.Kind)
	if rule.prefix == nil {
		p.errorf("expect expression")
		return
	}

	canAssign := prec <= PrecAssignment
	rule.prefix(p, canAssign)

	for prec <= getRule(p.current.Kind).precedence {
		p.advance()
		infix := getRule(p.previous.Kind).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.errorf("invalid assignment target")
	}
}

func (p *parser) expression() { p.parsePrecedence(PrecAssignment) }
