package machine_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/lumen/lang/compiler"
	"github.com/mna/lumen/lang/machine"
)

func run(t *testing.T, src string) (stdout string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	vm := &machine.VM{Stdout: &out, Stderr: &errOut}
	err = vm.Interpret(compiler.New(), "test", src)
	return out.String(), err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestArithmeticGrouping(t *testing.T) {
	out, err := run(t, `print (1 + 2) * 3;`)
	require.NoError(t, err)
	require.Equal(t, "9\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	require.Equal(t, "foobar\n", out)
}

func TestLocalsAndBlockShadowing(t *testing.T) {
	out, err := run(t, `
		var x = "outer";
		{
			var x = "inner";
			print x;
		}
		print x;
	`)
	require.NoError(t, err)
	require.Equal(t, "inner\nouter\n", out)
}

func TestIfElseControlFlow(t *testing.T) {
	out, err := run(t, `
		if (1 < 2) { print "yes"; } else { print "no"; }
		if (1 > 2) { print "yes"; } else { print "no"; }
	`)
	require.NoError(t, err)
	require.Equal(t, "yes\nno\n", out)
}

func TestWhileLoop(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		while (i < 3) {
			print i;
			i = i + 1;
		}
	`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestForLoop(t *testing.T) {
	out, err := run(t, `
		for (var i = 0; i < 3; i = i + 1) {
			print i;
		}
	`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestFunctionCallAndReturn(t *testing.T) {
	out, err := run(t, `
		fun add(a, b) {
			return a + b;
		}
		print add(2, 3);
	`)
	require.NoError(t, err)
	require.Equal(t, "5\n", out)
}

func TestRecursiveFunction(t *testing.T) {
	out, err := run(t, `
		fun fib(n) {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`)
	require.NoError(t, err)
	require.Equal(t, "55\n", out)
}

func TestFunctionWithoutExplicitReturnYieldsNil(t *testing.T) {
	out, err := run(t, `
		fun noop() {}
		print noop();
	`)
	require.NoError(t, err)
	require.Equal(t, "nil\n", out)
}

func TestAndOrShortCircuit(t *testing.T) {
	out, err := run(t, `
		print false and (1 / 0 == 0);
		print true or (1 / 0 == 0);
	`)
	require.NoError(t, err)
	require.Equal(t, "false\ntrue\n", out)
}

func TestRuntimeTypeErrorOnAddMismatch(t *testing.T) {
	_, err := run(t, `print 1 + "two";`)
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestRuntimeErrorMessageFormat(t *testing.T) {
	_, err := run(t, "print 1 + \"two\";")
	require.Error(t, err)
	require.Regexp(t, `: \[line 1\] in script$`, err.Error())
}

func TestCallNonFunctionIsRuntimeError(t *testing.T) {
	_, err := run(t, `var x = 1; print x();`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "can only call functions")
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	_, err := run(t, `
		fun f(a, b) { return a + b; }
		print f(1);
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected 2 arguments but got 1")
}

func TestDivisionAndComparisonChain(t *testing.T) {
	out, err := run(t, `print 10 / 2 >= 5;`)
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}

func TestMaxStepsSafetyValve(t *testing.T) {
	var out, errOut bytes.Buffer
	vm := &machine.VM{Stdout: &out, Stderr: &errOut, MaxSteps: 5}
	err := vm.Interpret(compiler.New(), "test", `
		var i = 0;
		while (i < 1000) { i = i + 1; }
	`)
	require.Error(t, err)
	var rerr *machine.ResourceError
	require.ErrorAs(t, err, &rerr)
}

func TestMaxCallDepthSafetyValve(t *testing.T) {
	var out, errOut bytes.Buffer
	vm := &machine.VM{Stdout: &out, Stderr: &errOut, MaxCallDepth: 3}
	err := vm.Interpret(compiler.New(), "test", `
		fun recurse(n) {
			return recurse(n + 1);
		}
		print recurse(0);
	`)
	require.Error(t, err)
	var rerr *machine.ResourceError
	require.ErrorAs(t, err, &rerr)
}

func TestGlobalsPersistAcrossInterpretCallsOnSameVM(t *testing.T) {
	var out, errOut bytes.Buffer
	vm := &machine.VM{Stdout: &out, Stderr: &errOut}
	comp := compiler.New()
	require.NoError(t, vm.Interpret(comp, "repl1", `var x = 10;`))
	require.NoError(t, vm.Interpret(comp, "repl2", `print x;`))
	require.Equal(t, "10\n", out.String())
}

func TestRedefiningGlobalIsCompileError(t *testing.T) {
	// the compiler rejects a second top-level `var x` before the machine
	// runs anything, so this exercises that compile-time path.
	_, err := run(t, `var x = 1; var x = 2;`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already declared")
}

func TestRuntimeErrorIsPrintedToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	vm := &machine.VM{Stdout: &out, Stderr: &errOut}
	err := vm.Interpret(compiler.New(), "test", `print 1 + "two";`)
	require.Error(t, err)
	require.NotEmpty(t, errOut.String())
}
