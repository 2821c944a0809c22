package maincmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/lumen/lang/compiler"
	"github.com/mna/lumen/lang/machine"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := loadVMConfig()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	vm := &machine.VM{
		Stdout:       stdio.Stdout,
		Stderr:       stdio.Stderr,
		MaxSteps:     cfg.MaxSteps,
		MaxCallDepth: cfg.MaxCallDepth,
	}
	comp := compiler.New()

	if len(args) == 0 {
		return repl(ctx, stdio, comp, vm)
	}
	return RunFiles(comp, vm, args...)
}

// RunFiles compiles and runs each file in turn against the same Compiler
// and VM, so a global defined by an earlier file is visible to a later
// one. It stops at the first file that fails, matching the way a shell
// script invoking the same binary multiple times would stop at the first
// nonzero exit code.
func RunFiles(comp *compiler.Compiler, vm *machine.VM, files ...string) error {
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintln(vm.Stderr, err)
			return err
		}
		if err := vm.Interpret(comp, name, string(src)); err != nil {
			// Interpret prints machine errors itself, but not compile errors.
			if !isMachineError(err) {
				fmt.Fprintln(vm.Stderr, err)
			}
			return err
		}
	}
	return nil
}

// repl runs one line of input at a time against a persistent Compiler and
// VM, so variables and functions defined on one line stay visible on the
// next. A line that fails to compile or run prints its diagnostic and
// continues the session rather than exiting, the way an interactive
// session should behave; Interpret already resets the operand and frame
// stacks on every call, so one bad line can't corrupt the next.
func repl(ctx context.Context, stdio mainer.Stdio, comp *compiler.Compiler, vm *machine.VM) error {
	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return scanner.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		// a RuntimeError/ResourceError is already printed by Interpret; a
		// compile error is not, so print it here. Either way the session
		// keeps going, since Interpret resets the stacks on every call.
		if err := vm.Interpret(comp, "<stdin>", line); err != nil {
			if !isMachineError(err) {
				fmt.Fprintln(stdio.Stderr, err)
			}
		}
	}
}

func isMachineError(err error) bool {
	var rerr *machine.RuntimeError
	var xerr *machine.ResourceError
	return errors.As(err, &rerr) || errors.As(err, &xerr)
}
