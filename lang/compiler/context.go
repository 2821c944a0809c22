package compiler

import (
	"github.com/dolthub/swiss"

	"github.com/mna/lumen/lang/chunk"
)

// A compileContext holds the state for one function being compiled. The
// top-level script is compiled in the root context; each `fun` declaration
// pushes a new one. Contexts form a stack via enclosing, but identifier
// resolution never crosses a function boundary: scopes only ever searches
// the current context's own scope stack, falling through straight to the
// compiler-wide global slot map.
type compileContext struct {
	enclosing *compileContext

	function *chunk.Function

	// scopes is an ordered stack of block scopes, one map per nested `{ }`,
	// pushed by beginScope and popped by endScope. It never holds an entry
	// for depth 0: depth 0 in the root context is the global scope (tracked
	// separately in the compiler's globals map), and a function context calls
	// beginScope before declaring its parameters (see compileFunction), so
	// parameters and body locals start at depth 1. Every live scopes entry is
	// therefore depth >= 1. Keeping this as a stack of maps rather than
	// a single map keyed by depth avoids reusing a depth number across
	// sibling blocks that open and close at the same nesting level.
	scopes []*swiss.Map[string, int]

	localCount   int
	currentDepth int
}

func newCompileContext(enclosing *compileContext, fn *chunk.Function) *compileContext {
	return &compileContext{
		enclosing: enclosing,
		function:  fn,
		// localCount starts at 1: slot 0 is reserved for the function value
		// itself (the callee, or the top-level script), matching the machine's
		// call convention where GetLocal 0 yields the running function.
		localCount: 1,
	}
}

func (cc *compileContext) beginScope() {
	cc.currentDepth++
	cc.scopes = append(cc.scopes, swiss.NewMap[string, int](8))
}

// endScope pops the innermost scope and returns the number of locals it
// held, so the caller can emit one Pop per local.
func (cc *compileContext) endScope() int {
	top := cc.scopes[len(cc.scopes)-1]
	cc.scopes = cc.scopes[:len(cc.scopes)-1]
	cc.currentDepth--
	n := top.Count()
	cc.localCount -= n
	return n
}

func (cc *compileContext) topScope() *swiss.Map[string, int] {
	return cc.scopes[len(cc.scopes)-1]
}

// declareLocal reserves the next local slot for name in the innermost
// scope. It reports whether name was already declared in that same scope
// (a redeclaration error), in which case no slot is reserved.
func (cc *compileContext) declareLocal(name string) (slot int, redeclared bool) {
	top := cc.topScope()
	if top.Has(name) {
		return 0, true
	}
	slot = cc.localCount
	top.Put(name, slot)
	cc.localCount++
	return slot, false
}

// resolveLocal searches this context's own scope stack, innermost first,
// for name.
func (cc *compileContext) resolveLocal(name string) (slot int, ok bool) {
	for i := len(cc.scopes) - 1; i >= 0; i-- {
		if slot, ok := cc.scopes[i].Get(name); ok {
			return slot, true
		}
	}
	return 0, false
}
