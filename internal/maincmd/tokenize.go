package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/lumen/lang/scanner"
	"github.com/mna/lumen/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

// TokenizeFiles scans each file independently and prints its tokens, one
// per line, in source order. It keeps scanning a file after a bad
// character rather than stopping, the same recovery the compiler itself
// relies on, so one mistake doesn't hide the rest of the file's tokens.
func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	var failed bool
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
			failed = true
			continue
		}

		sc := scanner.New(string(src))
		for {
			tok := sc.Scan()
			fmt.Fprintf(stdio.Stdout, "%s:%d: %s\n", name, tok.Line, tok)
			if tok.Kind == token.ILLEGAL {
				failed = true
			}
			if tok.Kind == token.EOF {
				break
			}
		}
	}
	if failed {
		return fmt.Errorf("tokenize: one or more files failed to scan cleanly")
	}
	return nil
}
