package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/lumen/lang/chunk"
	"github.com/mna/lumen/lang/compiler"
)

func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return DisassembleFiles(stdio, args...)
}

// DisassembleFiles compiles each file independently (a fresh Compiler per
// file, so one file's globals never leak into another's disassembly) and
// prints the resulting chunk, including any nested function chunks.
func DisassembleFiles(stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		fn, err := compiler.New().Compile(name, string(src))
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		out, err := chunk.Dasm(fn)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(stdio.Stdout, "== %s ==\n%s", name, out)
	}
	return firstErr
}
