// Package compiler implements a single-pass Pratt parser that compiles
// source text directly to bytecode, with no separate AST pass. It resolves
// identifiers to local or global slots as it goes and back-patches forward
// jumps once their targets are known.
package compiler

import (
	"fmt"
	"go/scanner"
	"go/token"

	"github.com/dolthub/swiss"

	langscanner "github.com/mna/lumen/lang/scanner"
	langtoken "github.com/mna/lumen/lang/token"

	"github.com/mna/lumen/lang/chunk"
)

const maxGlobals = 256

// A Compiler compiles one or more top-level programs against a persistent
// global namespace. Running several source strings through the same
// Compiler (as a REPL does) lets later ones reference globals defined by
// earlier ones, because the identifier-to-slot map and the underlying
// runtime global array both outlive a single Compile call.
type Compiler struct {
	globals *swiss.Map[string, int]
}

// New returns a Compiler with an empty global namespace.
func New() *Compiler {
	return &Compiler{globals: swiss.NewMap[string, int](maxGlobals)}
}

// Compile compiles source (attributed to filename in diagnostics) to a
// top-level Function. On error the returned error is a scanner.ErrorList
// with one or more entries, collected via panic-mode recovery so that one
// malformed statement doesn't suppress the rest of the file's diagnostics.
func (c *Compiler) Compile(filename, source string) (*chunk.Function, error) {
	p := &parser{
		filename: filename,
		sc:       langscanner.New(source),
		globals:  c.globals,
	}

	fn := &chunk.Function{Chunk: chunk.New()}
	p.ctx = newCompileContext(nil, fn)

	p.advance()
	for !p.check(langtoken.EOF) {
		p.declaration()
	}
	p.consume(langtoken.EOF, "expect end of expression")

	emitReturn(p, p.line())

	p.errs.Sort()
	if err := p.errs.Err(); err != nil {
		return nil, err
	}
	return fn, nil
}

// parser holds the per-Compile-call state: token cursor, error accumulator
// and the stack of compile contexts currently being built.
type parser struct {
	filename string
	sc       *langscanner.Scanner

	previous, current langtoken.Token

	panicMode bool
	errs      scanner.ErrorList

	globals *swiss.Map[string, int]

	ctx *compileContext
}

func (p *parser) pos() token.Position {
	return token.Position{Filename: p.filename, Line: p.previous.Line}
}

func (p *parser) line() int { return p.previous.Line }

func (p *parser) errorf(format string, args ...any) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.errs.Add(p.pos(), fmt.Sprintf(format, args...))
}

func (p *parser) errorAtCurrentf(format string, args ...any) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.errs.Add(token.Position{Filename: p.filename, Line: p.current.Line}, fmt.Sprintf(format, args...))
}

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.sc.Scan()
		if p.current.Kind != langtoken.ILLEGAL {
			break
		}
		p.errorAtCurrentf("%s", p.current.Lexeme)
	}
}

func (p *parser) check(k langtoken.Kind) bool { return p.current.Kind == k }

func (p *parser) match(k langtoken.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(k langtoken.Kind, msg string) {
	if p.current.Kind == k {
		p.advance()
		return
	}
	p.errorAtCurrentf("%s", msg)
}

// synchronize is called after a statement-level error to skip tokens until
// a likely statement boundary, so a single mistake reports one diagnostic
// instead of a cascade.
func (p *parser) synchronize() {
	p.panicMode = false

	for p.current.Kind != langtoken.EOF {
		if p.previous.Kind == langtoken.SEMICOLON {
			return
		}
		switch p.current.Kind {
		case langtoken.CLASS, langtoken.FUN, langtoken.VAR, langtoken.FOR,
			langtoken.IF, langtoken.WHILE, langtoken.PRINT, langtoken.RETURN:
			return
		}
		p.advance()
	}
}

// chunk returns the Chunk under construction for the current context.
func (p *parser) chunk() *chunk.Chunk { return p.ctx.function.Chunk }

func (p *parser) emitByte(b byte) { p.chunk().WriteByte(b, p.line()) }

func (p *parser) emitOp(op chunk.Opcode) { p.emitByte(byte(op)) }

func (p *parser) emitOpByte(op chunk.Opcode, arg byte) {
	p.emitOp(op)
	p.emitByte(arg)
}

func (p *parser) emitOpByteAt(op chunk.Opcode, arg byte, line int) {
	p.chunk().WriteByte(byte(op), line)
	p.chunk().WriteByte(arg, line)
}

func emitReturn(p *parser, line int) {
	p.chunk().WriteByte(byte(chunk.Nil), line)
	p.chunk().WriteByte(byte(chunk.Return), line)
}
