// Package machine implements the stack-based virtual machine that executes
// compiled chunks: call frames, the operand stack, and the fixed global
// slot array.
package machine

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/mna/lumen/lang/chunk"
	"github.com/mna/lumen/lang/compiler"
	"github.com/mna/lumen/lang/types"
)

const maxGlobalSlots = 256

// A VM owns everything needed to run compiled chunks: the call stack, the
// operand stack, and the global slot array. Reusing one VM (and the
// Compiler passed to Interpret) across calls is what lets a REPL session
// keep globals defined by earlier lines visible to later ones.
type VM struct {
	// Stdout and Stderr are where Print writes and where runtime error
	// diagnostics go, respectively. If nil, os.Stdout and os.Stderr are used.
	Stdout io.Writer
	Stderr io.Writer

	// MaxSteps caps the number of dispatch-loop iterations a single
	// Interpret call may execute before it is aborted with a *ResourceError.
	// A value <= 0 means no limit.
	MaxSteps int

	// MaxCallDepth caps the number of nested Call frames. A value <= 0 means
	// no limit.
	MaxCallDepth int

	frames []Frame
	stack  []types.Value

	globals     [maxGlobalSlots]types.Value
	globalIsSet [maxGlobalSlots]bool

	stdout io.Writer
	stderr io.Writer
}

func (vm *VM) init() {
	if vm.stdout == nil {
		if vm.Stdout != nil {
			vm.stdout = vm.Stdout
		} else {
			vm.stdout = os.Stdout
		}
	}
	if vm.stderr == nil {
		if vm.Stderr != nil {
			vm.stderr = vm.Stderr
		} else {
			vm.stderr = os.Stderr
		}
	}
}

// Interpret compiles source with comp and runs the resulting top-level
// function to completion. The operand stack and call frame stack start
// empty on every call; only the global slot array and comp's identifier
// table persist across calls on the same VM.
func (vm *VM) Interpret(comp *compiler.Compiler, filename, source string) error {
	vm.init()

	fn, err := comp.Compile(filename, source)
	if err != nil {
		return err
	}

	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]

	vm.push(types.Function(fn))
	vm.frames = append(vm.frames, Frame{function: fn, stackBase: 1})

	if err := vm.run(); err != nil {
		// a RuntimeError is printed where it is raised; a ResourceError is
		// printed here.
		if _, ok := err.(*ResourceError); ok {
			fmt.Fprintln(vm.stderr, err.Error())
		}
		return err
	}
	return nil
}

func (vm *VM) push(v types.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() types.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distanceFromTop int) types.Value {
	return vm.stack[len(vm.stack)-1-distanceFromTop]
}

func (vm *VM) currentFrame() *Frame { return &vm.frames[len(vm.frames)-1] }

func (vm *VM) readByte() byte {
	fr := vm.currentFrame()
	b := fr.function.Chunk.ByteAt(fr.ip)
	fr.ip++
	return b
}

func (vm *VM) readShort() int {
	fr := vm.currentFrame()
	c := fr.function.Chunk
	lo, hi := c.ByteAt(fr.ip), c.ByteAt(fr.ip+1)
	fr.ip += 2
	return int(binary.LittleEndian.Uint16([]byte{lo, hi}))
}

func (vm *VM) currentLine() int {
	fr := vm.currentFrame()
	return fr.function.Chunk.LineAt(fr.ip - 1)
}

func (vm *VM) runtimeErrorf(format string, args ...any) error {
	err := &RuntimeError{Message: fmt.Sprintf(format, args...), Line: vm.currentLine()}
	fmt.Fprintln(vm.stderr, err.Error())
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	return err
}

// run is the dispatch loop: it decodes one instruction at a time from the
// current frame's chunk and executes it, returning nil once the top-level
// frame returns, or an error (RuntimeError or ResourceError) the first time
// an instruction can't proceed.
func (vm *VM) run() error {
	steps := 0
	for {
		steps++
		if vm.MaxSteps > 0 && steps > vm.MaxSteps {
			return &ResourceError{Message: fmt.Sprintf("exceeded maximum of %d steps", vm.MaxSteps)}
		}

		op := chunk.Opcode(vm.readByte())
		switch op {
		case chunk.Return:
			result := vm.pop()
			finishedFrame := vm.frames[len(vm.frames)-1]
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				return nil
			}
			vm.stack = vm.stack[:finishedFrame.stackBase-1]
			vm.push(result)

		case chunk.Nil:
			vm.push(types.Nil)
		case chunk.True:
			vm.push(types.Bool(true))
		case chunk.False:
			vm.push(types.Bool(false))

		case chunk.Number:
			idx := vm.readByte()
			vm.push(types.Number(vm.currentFrame().function.Chunk.Number(int(idx))))
		case chunk.String:
			idx := vm.readByte()
			vm.push(types.String(vm.currentFrame().function.Chunk.String(int(idx))))
		case chunk.Function:
			idx := vm.readByte()
			vm.push(types.Function(vm.currentFrame().function.Chunk.Function(int(idx))))

		case chunk.Not:
			vm.push(vm.pop().Not())
		case chunk.Negate:
			v, err := vm.pop().Negate()
			if err != nil {
				return vm.runtimeErrorf("%s", err)
			}
			vm.push(v)

		case chunk.Addition:
			b, a := vm.pop(), vm.pop()
			v, err := a.Add(b)
			if err != nil {
				return vm.runtimeErrorf("%s", err)
			}
			vm.push(v)
		case chunk.Subtract:
			b, a := vm.pop(), vm.pop()
			v, err := a.Sub(b)
			if err != nil {
				return vm.runtimeErrorf("%s", err)
			}
			vm.push(v)
		case chunk.Multiply:
			b, a := vm.pop(), vm.pop()
			v, err := a.Mul(b)
			if err != nil {
				return vm.runtimeErrorf("%s", err)
			}
			vm.push(v)
		case chunk.Divide:
			b, a := vm.pop(), vm.pop()
			v, err := a.Div(b)
			if err != nil {
				return vm.runtimeErrorf("%s", err)
			}
			vm.push(v)

		case chunk.Equal:
			b, a := vm.pop(), vm.pop()
			vm.push(types.Bool(a.Equal(b)))
		case chunk.Greater:
			b, a := vm.pop(), vm.pop()
			r, err := a.Greater(b)
			if err != nil {
				return vm.runtimeErrorf("%s", err)
			}
			vm.push(types.Bool(r))
		case chunk.Less:
			b, a := vm.pop(), vm.pop()
			r, err := a.Less(b)
			if err != nil {
				return vm.runtimeErrorf("%s", err)
			}
			vm.push(types.Bool(r))

		case chunk.Print:
			fmt.Fprintln(vm.stdout, vm.pop().String())
		case chunk.Pop:
			vm.pop()

		case chunk.DefineGlobal:
			idx := vm.readByte()
			slot := vm.currentFrame().function.Chunk.Variable(int(idx))
			if vm.globalIsSet[slot] {
				return vm.runtimeErrorf("global variable already defined")
			}
			vm.globalIsSet[slot] = true
			vm.globals[slot] = vm.pop()

		case chunk.GetGlobal:
			idx := vm.readByte()
			slot := vm.currentFrame().function.Chunk.Variable(int(idx))
			if !vm.globalIsSet[slot] {
				return vm.runtimeErrorf("undefined variable")
			}
			vm.push(vm.globals[slot])

		case chunk.SetGlobal:
			idx := vm.readByte()
			slot := vm.currentFrame().function.Chunk.Variable(int(idx))
			if !vm.globalIsSet[slot] {
				return vm.runtimeErrorf("undefined variable")
			}
			vm.globals[slot] = vm.peek(0)

		case chunk.GetLocal:
			idx := vm.readByte()
			slot := vm.currentFrame().function.Chunk.Variable(int(idx))
			vm.push(vm.stack[vm.currentFrame().stackBase-1+slot])

		case chunk.SetLocal:
			idx := vm.readByte()
			slot := vm.currentFrame().function.Chunk.Variable(int(idx))
			vm.stack[vm.currentFrame().stackBase-1+slot] = vm.peek(0)

		case chunk.JumpFalse:
			offset := vm.readShort()
			if !vm.peek(0).Truthy() {
				vm.currentFrame().ip += offset
			}
		case chunk.Jump:
			offset := vm.readShort()
			vm.currentFrame().ip += offset
		case chunk.JumpBack:
			offset := vm.readShort()
			vm.currentFrame().ip -= offset

		case chunk.Call:
			argCount := int(vm.readByte())
			if err := vm.call(argCount); err != nil {
				return err
			}

		default:
			return vm.runtimeErrorf("illegal opcode %d", op)
		}
	}
}

func (vm *VM) call(argCount int) error {
	callee := vm.peek(argCount)
	if !callee.IsFunction() {
		return vm.runtimeErrorf("can only call functions")
	}
	fn := callee.AsFunction()
	if fn.ParamCount != argCount {
		return vm.runtimeErrorf("expected %d arguments but got %d", fn.ParamCount, argCount)
	}

	if vm.MaxCallDepth > 0 && len(vm.frames) >= vm.MaxCallDepth {
		return &ResourceError{Message: fmt.Sprintf("exceeded maximum call depth of %d", vm.MaxCallDepth)}
	}

	vm.frames = append(vm.frames, Frame{function: fn, stackBase: len(vm.stack) - argCount})
	return nil
}
