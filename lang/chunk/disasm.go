package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// dasm accumulates disassembly output, short-circuiting further writes once
// an error has occurred so call sites don't need to check err after every
// step.
type dasm struct {
	buf *bytes.Buffer
	err error
}

func (d *dasm) writef(format string, args ...any) {
	if d.err != nil {
		return
	}
	if _, err := fmt.Fprintf(d.buf, format, args...); err != nil {
		d.err = err
	}
}

// Dasm renders fn and, recursively, every function reachable through its
// function pool, as human-readable disassembly text.
func Dasm(fn *Function) (string, error) {
	d := &dasm{buf: new(bytes.Buffer)}
	d.function(fn)
	if d.err != nil {
		return "", d.err
	}
	return d.buf.String(), nil
}

func (d *dasm) function(fn *Function) {
	d.writef("== %s ==\n", fn.String())

	c := fn.Chunk
	offset := 0
	for offset < len(c.code) {
		offset = d.instruction(c, offset)
	}

	for _, nested := range c.functions {
		d.function(nested)
	}
}

func (d *dasm) instruction(c *Chunk, offset int) int {
	op := Opcode(c.code[offset])
	line := c.lines[offset]

	d.writef("%04d %4d %s", offset, line, op)

	size := operandSize(op)
	switch {
	case d.err != nil:
		// already broken, fall through to advance the offset anyway
	case size == 2:
		arg := int(binary.LittleEndian.Uint16(c.code[offset+1 : offset+3]))
		switch op {
		case Jump, JumpFalse:
			d.writef(" -> %d", offset+3+arg)
		case JumpBack:
			d.writef(" -> %d", offset+3-arg)
		}
	case size == 1:
		arg := int(c.code[offset+1])
		switch op {
		case Number:
			d.writef(" %d '%g'", arg, c.numbers[arg])
		case String:
			d.writef(" %d %q", arg, c.strings[arg])
		case Function:
			d.writef(" %d '%s'", arg, c.functions[arg].String())
		case DefineGlobal, GetGlobal, SetGlobal:
			d.writef(" %d (slot %d)", arg, c.variables[arg])
		default:
			d.writef(" %d", arg)
		}
	}
	d.writef("\n")

	return offset + 1 + size
}
