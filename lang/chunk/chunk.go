// Package chunk defines the compiled form of a function body: a byte-coded
// instruction stream, its parallel line-number table, and the four constant
// pools addressed by the instruction stream's 8-bit pool-index operands.
package chunk

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// maxPoolSize is the capacity of every constant pool. Pool indices are
// encoded as a single byte in the instruction stream, so no pool may exceed
// this size.
const maxPoolSize = 256

// OverflowError is returned by the Add* methods when a constant pool is
// already at maxPoolSize entries. The compiler turns it into a
// line-prefixed compile error.
type OverflowError struct {
	Pool string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("too many %s constants in one chunk (max %d)", e.Pool, maxPoolSize)
}

// A Function is a named, parameter-count-annotated chunk. The top-level
// script is represented as a Function with an empty Name and zero
// ParamCount. Functions are referenced by value and shared: copying a
// Value that holds a Function only copies the pointer.
type Function struct {
	Name       string
	ParamCount int
	Chunk      *Chunk
}

func (fn *Function) String() string {
	if fn.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", fn.Name)
}

// A Chunk is the compiled form of one function body: the instruction
// stream, a parallel line-number table (lines[i] is the source line of
// code[i]), and four constant pools addressed by 8-bit indices from the
// instruction stream.
type Chunk struct {
	code  []byte
	lines []int

	numbers   []float64
	strings   []string
	variables []int
	functions []*Function
}

// New returns an empty Chunk ready to be written to.
func New() *Chunk {
	return &Chunk{}
}

// WriteByte appends b to the instruction stream, recording line as its
// source line.
func (c *Chunk) WriteByte(b byte, line int) {
	c.code = append(c.code, b)
	c.lines = append(c.lines, line)
}

// PatchByte overwrites the byte at offset, used to back-patch a previously
// emitted placeholder jump operand.
func (c *Chunk) PatchByte(offset int, b byte) {
	c.code[offset] = b
}

// CodeSize returns the current length of the instruction stream, i.e. the
// offset the next WriteByte will be written at.
func (c *Chunk) CodeSize() int { return len(c.code) }

// ByteAt returns the instruction-stream byte at offset.
func (c *Chunk) ByteAt(offset int) byte { return c.code[offset] }

// LineAt returns the source line recorded for the instruction-stream byte
// at offset.
func (c *Chunk) LineAt(offset int) int { return c.lines[offset] }

// AddNumber interns n into the number pool, returning the index of its
// existing entry if the same literal was already added (a loop body that
// references the same constant every iteration would otherwise exhaust the
// pool), or appending a new one, or an *OverflowError if the pool is full.
func (c *Chunk) AddNumber(n float64) (int, error) {
	if idx := slices.Index(c.numbers, n); idx >= 0 {
		return idx, nil
	}
	if len(c.numbers) >= maxPoolSize {
		return 0, &OverflowError{Pool: "number"}
	}
	c.numbers = append(c.numbers, n)
	return len(c.numbers) - 1, nil
}

// Number returns the number pool entry at idx.
func (c *Chunk) Number(idx int) float64 { return c.numbers[idx] }

// AddString interns s into the string pool the same way AddNumber interns
// numbers, or returns an *OverflowError if the pool is full.
func (c *Chunk) AddString(s string) (int, error) {
	if idx := slices.Index(c.strings, s); idx >= 0 {
		return idx, nil
	}
	if len(c.strings) >= maxPoolSize {
		return 0, &OverflowError{Pool: "string"}
	}
	c.strings = append(c.strings, s)
	return len(c.strings) - 1, nil
}

// String returns the string pool entry at idx.
func (c *Chunk) String(idx int) string { return c.strings[idx] }

// AddVariable interns slot into the variable pool, the same way AddNumber
// interns numbers: every Get/Set/Define of the same slot shares one pool
// entry, so a variable referenced many times in one function body can't by
// itself exhaust the pool. slot means different things depending on the
// opcode that ends up addressing it: a global array index for
// DefineGlobal/GetGlobal/SetGlobal, a stack-relative local index for
// GetLocal/SetLocal. Routing both through the same pool keeps every
// variable-access opcode's operand a uniform one-byte pool index.
func (c *Chunk) AddVariable(slot int) (int, error) {
	if idx := slices.Index(c.variables, slot); idx >= 0 {
		return idx, nil
	}
	if len(c.variables) >= maxPoolSize {
		return 0, &OverflowError{Pool: "variable"}
	}
	c.variables = append(c.variables, slot)
	return len(c.variables) - 1, nil
}

// Variable returns the global or local slot recorded at pool index idx.
func (c *Chunk) Variable(idx int) int { return c.variables[idx] }

// AddFunction appends fn to the function pool and returns its index, or an
// *OverflowError if the pool is full.
func (c *Chunk) AddFunction(fn *Function) (int, error) {
	if len(c.functions) >= maxPoolSize {
		return 0, &OverflowError{Pool: "function"}
	}
	c.functions = append(c.functions, fn)
	return len(c.functions) - 1, nil
}

// Function returns the function pool entry at idx.
func (c *Chunk) Function(idx int) *Function { return c.functions[idx] }
