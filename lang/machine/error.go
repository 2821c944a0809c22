package machine

import "fmt"

// A RuntimeError is a failure detected while running compiled bytecode: an
// operand-type mismatch, an undefined or uninitialized global, a redefined
// global slot, a call of a non-function, or an arity mismatch. Line is the
// source line active when the failing instruction executed.
type RuntimeError struct {
	Message string
	Line    int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s : [line %d] in script", e.Message, e.Line)
}

// A ResourceError is raised by the step-count or call-depth safety valves,
// distinct from a language-level RuntimeError: it is not something the
// program being run did wrong, but a host-imposed limit on it.
type ResourceError struct {
	Message string
}

func (e *ResourceError) Error() string { return e.Message }
