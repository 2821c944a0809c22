package maincmd_test

import (
	"bytes"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/mna/lumen/internal/filetest"
	"github.com/mna/lumen/internal/maincmd"
	"github.com/mna/lumen/lang/compiler"
	"github.com/mna/lumen/lang/machine"
)

var testUpdateRunTests = flag.Bool("test.update-run-tests", false, "If set, replace expected run test results with actual results.")

// TestRun runs every program in testdata/in against a fresh Compiler and VM
// and diffs its stdout and stderr against the golden files in testdata/out.
func TestRun(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lumen") {
		t.Run(fi.Name(), func(t *testing.T) {
			var out, errOut bytes.Buffer
			vm := &machine.VM{Stdout: &out, Stderr: &errOut}

			_ = maincmd.RunFiles(compiler.New(), vm, filepath.Join(srcDir, fi.Name()))

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateRunTests)
			filetest.DiffErrors(t, fi, errOut.String(), resultDir, testUpdateRunTests)
		})
	}
}

// TestTokenize exercises the tokenize subcommand end to end, including its
// mainer.Stdio plumbing.
func TestTokenize(t *testing.T) {
	var out bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out}
	err := maincmd.TokenizeFiles(stdio, filepath.Join("testdata", "in", "arithmetic.lumen"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected tokenize output, got none")
	}
}
