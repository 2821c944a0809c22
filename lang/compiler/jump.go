package compiler

import "github.com/mna/lumen/lang/chunk"

const maxJump = 0xFFFF

// emitJump writes a placeholder forward jump (op followed by a two-byte
// offset, patched later by patchJump) and returns the offset of the opcode
// byte.
func (p *parser) emitJump(op chunk.Opcode) int {
	p.emitOp(op)
	offset := p.chunk().CodeSize()
	p.emitByte(0xFF)
	p.emitByte(0xFF)
	return offset - 1
}

// patchJump fills in the placeholder left by emitJump at offset so that the
// jump lands on the instruction that comes right after everything emitted
// since.
func (p *parser) patchJump(offset int) {
	jump := p.chunk().CodeSize() - offset - 3
	if jump > maxJump {
		p.errorf("too much code to jump over")
		return
	}
	p.chunk().PatchByte(offset+1, byte(jump&0xFF))
	p.chunk().PatchByte(offset+2, byte(jump>>8))
}

// emitLoop emits a JumpBack targeting label, the code offset to resume at.
func (p *parser) emitLoop(label int) {
	p.emitOp(chunk.JumpBack)
	jump := p.chunk().CodeSize() - label + 2
	if jump > maxJump {
		p.errorf("loop body too large")
		return
	}
	p.emitByte(byte(jump & 0xFF))
	p.emitByte(byte(jump >> 8))
}
