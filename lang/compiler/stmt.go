package compiler

import (
	"github.com/mna/lumen/lang/chunk"
	"github.com/mna/lumen/lang/token"
)

const maxParams = 255

func (p *parser) declaration() {
	switch {
	case p.match(token.VAR):
		p.varDeclaration()
	case p.match(token.FUN):
		p.funDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.LBRACE):
		p.ctx.beginScope()
		p.block()
		p.closeScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "expect '}' after block")
}

// closeScope pops the current scope, emitting one Pop per local it held.
func (p *parser) closeScope() {
	n := p.ctx.endScope()
	for i := 0; i < n; i++ {
		p.emitOp(chunk.Pop)
	}
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "expect ';' after value")
	p.emitOp(chunk.Print)
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "expect ';' after expression")
	p.emitOp(chunk.Pop)
}

// varDeclaration binds a name to either a global slot (at depth 0) or a
// local slot (anywhere deeper). The name only becomes visible to its own
// initializer's resolution after the initializer has been fully parsed, so
// `var x = x;` always sees the outer x, if any, never itself.
func (p *parser) varDeclaration() {
	if !p.match(token.IDENT) {
		p.errorAtCurrentf("expect variable name")
		return
	}
	name := p.previous.Lexeme
	line := p.previous.Line

	redeclared := p.isDeclaredInCurrentScope(name)
	if redeclared {
		p.errorf("variable %q already declared in this scope", name)
	}

	if p.match(token.EQ) {
		p.expression()
	} else {
		p.emitOp(chunk.Nil)
	}
	p.consume(token.SEMICOLON, "expect ';' after variable declaration")

	if redeclared {
		return
	}
	p.bindVariable(name, line)
}

func (p *parser) isDeclaredInCurrentScope(name string) bool {
	if p.ctx.currentDepth == 0 {
		return p.globals.Has(name)
	}
	return p.ctx.topScope().Has(name)
}

// bindVariable finishes a declaration whose value is already on top of the
// stack: at depth 0 it assigns a fresh global slot and emits DefineGlobal;
// otherwise it just reserves the next local slot, since the stack slot the
// value already occupies IS the local.
func (p *parser) bindVariable(name string, line int) {
	if p.ctx.currentDepth == 0 {
		slot := p.globals.Count()
		if slot >= maxGlobals {
			p.errorf("too many global variables in one program")
			return
		}
		p.globals.Put(name, slot)
		idx, err := p.chunk().AddVariable(slot)
		if err != nil {
			p.errorf("%s", err)
			return
		}
		p.emitOpByteAt(chunk.DefineGlobal, byte(idx), line)
		return
	}
	p.ctx.declareLocal(name)
}

func (p *parser) ifStatement() {
	p.consume(token.LPAREN, "expect '(' after 'if'")
	p.expression()
	p.consume(token.RPAREN, "expect ')' after condition")

	thenJump := p.emitJump(chunk.JumpFalse)
	p.emitOp(chunk.Pop)
	p.statement()

	elseJump := p.emitJump(chunk.Jump)
	p.patchJump(thenJump)
	p.emitOp(chunk.Pop)

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := p.chunk().CodeSize()

	p.consume(token.LPAREN, "expect '(' after 'while'")
	p.expression()
	p.consume(token.RPAREN, "expect ')' after condition")

	exitJump := p.emitJump(chunk.JumpFalse)
	p.emitOp(chunk.Pop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(chunk.Pop)
}

func (p *parser) forStatement() {
	p.ctx.beginScope()
	p.consume(token.LPAREN, "expect '(' after 'for'")

	switch {
	case p.match(token.SEMICOLON):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := p.chunk().CodeSize()
	exitJump := -1
	if !p.match(token.SEMICOLON) {
		p.expression()
		p.consume(token.SEMICOLON, "expect ';' after loop condition")
		exitJump = p.emitJump(chunk.JumpFalse)
		p.emitOp(chunk.Pop)
	}

	if !p.match(token.RPAREN) {
		bodyJump := p.emitJump(chunk.Jump)

		incrStart := p.chunk().CodeSize()
		p.expression()
		p.emitOp(chunk.Pop)
		p.consume(token.RPAREN, "expect ')' after for clauses")

		p.emitLoop(loopStart)
		loopStart = incrStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(chunk.Pop)
	}

	p.closeScope()
}

func (p *parser) returnStatement() {
	if p.ctx.enclosing == nil {
		p.errorf("can't return from top-level code")
	}
	if p.match(token.SEMICOLON) {
		p.emitOp(chunk.Nil)
	} else {
		p.expression()
		p.consume(token.SEMICOLON, "expect ';' after return value")
	}
	p.emitOp(chunk.Return)
}

// funDeclaration compiles `fun name(params) { body }`. The reference only
// allows function declarations at the top level; the name's global slot is
// reserved before the body is compiled so a function can call itself by
// name.
func (p *parser) funDeclaration() {
	if p.ctx.enclosing != nil || p.ctx.currentDepth != 0 {
		p.errorf("functions may only be declared at the top level")
	}

	if !p.match(token.IDENT) {
		p.errorAtCurrentf("expect function name")
		return
	}
	name := p.previous.Lexeme
	line := p.previous.Line

	redeclared := p.isDeclaredInCurrentScope(name)
	if redeclared {
		p.errorf("variable %q already declared in this scope", name)
	}
	if !redeclared {
		p.bindGlobalSlotOnly(name)
	}

	fn := p.compileFunction(name)

	idx, err := p.chunk().AddFunction(fn)
	if err != nil {
		p.errorf("%s", err)
		return
	}
	p.emitOpByteAt(chunk.Function, byte(idx), line)

	if !redeclared {
		slot, _ := p.globals.Get(name)
		varIdx, err := p.chunk().AddVariable(slot)
		if err != nil {
			p.errorf("%s", err)
			return
		}
		p.emitOpByteAt(chunk.DefineGlobal, byte(varIdx), line)
	}
}

// bindGlobalSlotOnly reserves a global slot for name without emitting a
// DefineGlobal, used by funDeclaration to make the name resolvable inside
// its own body before the Function constant and binding instruction exist.
func (p *parser) bindGlobalSlotOnly(name string) {
	slot := p.globals.Count()
	if slot >= maxGlobals {
		p.errorf("too many global variables in one program")
		return
	}
	p.globals.Put(name, slot)
}

// compileFunction parses a function's parameter list and body in a fresh
// compile context, returning the resulting Function. Execution returns here
// (to the enclosing context) once the body's closing '}' is consumed.
func (p *parser) compileFunction(name string) *chunk.Function {
	fn := &chunk.Function{Name: name, Chunk: chunk.New()}
	enclosing := p.ctx
	p.ctx = newCompileContext(enclosing, fn)
	p.ctx.beginScope()

	p.consume(token.LPAREN, "expect '(' after function name")
	if !p.check(token.RPAREN) {
		for {
			fn.ParamCount++
			if fn.ParamCount > maxParams {
				p.errorAtCurrentf("can't have more than %d parameters", maxParams)
			}
			if !p.match(token.IDENT) {
				p.errorAtCurrentf("expect parameter name")
				break
			}
			if redecl := p.isDeclaredInCurrentScope(p.previous.Lexeme); redecl {
				p.errorf("duplicate parameter name %q", p.previous.Lexeme)
			} else {
				p.ctx.declareLocal(p.previous.Lexeme)
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "expect ')' after parameters")
	p.consume(token.LBRACE, "expect '{' before function body")
	p.block()

	emitReturn(p, p.line())

	p.ctx = enclosing
	return fn
}
