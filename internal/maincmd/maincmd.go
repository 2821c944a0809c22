// Package maincmd wires the lumen command-line entry point: argument
// parsing, subcommand dispatch and exit-code mapping. It keeps the
// reflection-based command table the original tooling used, so adding a
// subcommand is just adding a method with the right shape.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"go/scanner"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"

	"github.com/mna/lumen/lang/machine"
)

const binName = "lumen"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the %[1]s scripting language.

The <command> can be one of:
       run                       Compile and run one or more source files.
                                 With no path, reads a REPL session from
                                 stdin, compiling and running one line at a
                                 time against persistent global state.
       tokenize                  Run the scanner phase only and print the
                                 resulting tokens, one per line.
       disassemble               Compile and print the bytecode
                                 disassembly of the resulting chunk(s),
                                 without running them.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

The run command's safety valves can be overridden with the environment
variables LUMEN_MAX_STEPS and LUMEN_MAX_CALL_DEPTH.
`, binName)
)

// vmConfig holds the VM's resource limits, loaded from the environment so a
// pathological script can't hang the process under its default limits.
type vmConfig struct {
	MaxSteps     int `env:"LUMEN_MAX_STEPS" envDefault:"10000000"`
	MaxCallDepth int `env:"LUMEN_MAX_CALL_DEPTH" envDefault:"1000"`
}

func loadVMConfig() (vmConfig, error) {
	var cfg vmConfig
	if err := env.Parse(&cfg); err != nil {
		return vmConfig{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Exit codes follow the sysexits.h convention the reference interpreter
// uses: 65 for a program that never started running (a scan or compile
// error), 70 for one that started but failed while running.
const (
	exitSuccess      mainer.ExitCode = 0
	exitCompileError mainer.ExitCode = 65
	exitRuntimeError mainer.ExitCode = 70
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if (cmdName == "tokenize" || cmdName == "disassemble") && len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}

	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return exitCompileError
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return exitSuccess
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return exitSuccess
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command prints its own diagnostics; only the exit code is
		// decided here, based on what kind of error it was.
		return exitCodeFor(err)
	}
	return exitSuccess
}

// exitCodeFor maps a command error to the exit status a shell script can
// branch on.
func exitCodeFor(err error) mainer.ExitCode {
	var rerr *machine.RuntimeError
	var xerr *machine.ResourceError
	if errors.As(err, &rerr) || errors.As(err, &xerr) {
		return exitRuntimeError
	}
	var list scanner.ErrorList
	if errors.As(err, &list) {
		return exitCompileError
	}
	var single *scanner.Error
	if errors.As(err, &single) {
		return exitCompileError
	}
	return exitCompileError
}

// valid commands are those that take a mainer.Stdio and a slice of strings
// as input and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		// must take 4 parameters (including receiver) and return 1
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
