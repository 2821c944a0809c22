package machine

import "github.com/mna/lumen/lang/chunk"

// A Frame is one level of the call stack: the function currently executing,
// the instruction pointer into its chunk, and stackBase, the index of the
// first argument on the VM's operand stack (one past the callee itself, so
// local slot 0 is stack[stackBase-1], the callee; slot N>=1 is the Nth
// argument at stack[stackBase-1+N]).
type Frame struct {
	function  *chunk.Function
	ip        int
	stackBase int
}
