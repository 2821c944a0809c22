// Package types defines Value, the tagged union of runtime values the
// compiler emits as constants and the machine pushes on its operand stack.
package types

import (
	"fmt"
	"strconv"

	"github.com/mna/lumen/lang/chunk"
)

// Kind identifies which variant of Value is populated.
type Kind int8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	default:
		return "invalid"
	}
}

// A Value is a runtime value. Exactly one field is meaningful, selected by
// Kind; the zero Value is Nil. String and Function are cheap to copy:
// string holds Go's own immutable, reference-counted-by-the-runtime backing
// array, and fn is a pointer, so copying a Value never deep-copies either.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	fn   *chunk.Function
}

// Nil is the singleton nil value.
var Nil = Value{kind: KindNil}

// Bool returns the Value wrapping b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns the Value wrapping n.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns the Value wrapping s.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Function returns the Value wrapping fn.
func Function(fn *chunk.Function) Value { return Value{kind: KindFunction, fn: fn} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool      { return v.kind == KindNil }
func (v Value) IsBool() bool     { return v.kind == KindBool }
func (v Value) IsNumber() bool   { return v.kind == KindNumber }
func (v Value) IsString() bool   { return v.kind == KindString }
func (v Value) IsFunction() bool { return v.kind == KindFunction }

// AsBool returns the wrapped bool. The caller must have checked IsBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the wrapped float64. The caller must have checked
// IsNumber.
func (v Value) AsNumber() float64 { return v.n }

// AsString returns the wrapped string. The caller must have checked
// IsString.
func (v Value) AsString() string { return v.s }

// AsFunction returns the wrapped *chunk.Function. The caller must have
// checked IsFunction.
func (v Value) AsFunction() *chunk.Function { return v.fn }

// Truthy implements the canonical falsey rule: only Bool(false) and Nil are
// falsey, everything else (including Number(0) and String("")) is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

// Equal implements same-variant structural equality. Values of different
// kinds are never equal, including Number(0) vs Bool(false) or any other
// cross-variant pairing; Function equality is by identity of the underlying
// *chunk.Function.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindFunction:
		return v.fn == other.fn
	default:
		return false
	}
}

// TypeError reports an operation attempted on a value (or pair of values) of
// the wrong kind.
type TypeError struct {
	Op     string
	Kind   Kind
	Kind2  Kind
	Binary bool
}

func (e *TypeError) Error() string {
	if e.Binary {
		if e.Op == "-" || e.Op == "*" || e.Op == "/" {
			return fmt.Sprintf("operands for %s must be numbers, got %s and %s", e.Op, e.Kind, e.Kind2)
		}
		return fmt.Sprintf("operand types for %s must match and be number or string, got %s and %s", e.Op, e.Kind, e.Kind2)
	}
	return fmt.Sprintf("operand for %s must be %s, got %s", e.Op, e.Kind2, e.Kind)
}

// Less implements the `<` ordering. Ordering is defined only between two
// Numbers or two Strings; any other pairing is a *TypeError.
func (v Value) Less(other Value) (bool, error) {
	if v.kind != other.kind || (v.kind != KindNumber && v.kind != KindString) {
		return false, &TypeError{Op: "<", Kind: v.kind, Kind2: other.kind, Binary: true}
	}
	if v.kind == KindNumber {
		return v.n < other.n, nil
	}
	return v.s < other.s, nil
}

// Greater implements the `>` ordering, with the same domain restriction as
// Less.
func (v Value) Greater(other Value) (bool, error) {
	if v.kind != other.kind || (v.kind != KindNumber && v.kind != KindString) {
		return false, &TypeError{Op: ">", Kind: v.kind, Kind2: other.kind, Binary: true}
	}
	if v.kind == KindNumber {
		return v.n > other.n, nil
	}
	return v.s > other.s, nil
}

// Add implements `+`: numeric addition for two Numbers, concatenation for
// two Strings. Any other pairing is a *TypeError.
func (v Value) Add(other Value) (Value, error) {
	switch {
	case v.kind == KindNumber && other.kind == KindNumber:
		return Number(v.n + other.n), nil
	case v.kind == KindString && other.kind == KindString:
		return String(v.s + other.s), nil
	default:
		return Nil, &TypeError{Op: "+", Kind: v.kind, Kind2: other.kind, Binary: true}
	}
}

func (v Value) arith(op string, other Value, f func(a, b float64) float64) (Value, error) {
	if v.kind != KindNumber || other.kind != KindNumber {
		return Nil, &TypeError{Op: op, Kind: v.kind, Kind2: other.kind, Binary: true}
	}
	return Number(f(v.n, other.n)), nil
}

// Sub implements `-` on two Numbers.
func (v Value) Sub(other Value) (Value, error) {
	return v.arith("-", other, func(a, b float64) float64 { return a - b })
}

// Mul implements `*` on two Numbers.
func (v Value) Mul(other Value) (Value, error) {
	return v.arith("*", other, func(a, b float64) float64 { return a * b })
}

// Div implements `/` on two Numbers. Division by zero follows float64
// semantics (±Inf or NaN) rather than failing; the reference behavior does
// not special-case it.
func (v Value) Div(other Value) (Value, error) {
	return v.arith("/", other, func(a, b float64) float64 { return a / b })
}

// Negate implements unary `-`. Only Number may be negated.
func (v Value) Negate() (Value, error) {
	if v.kind != KindNumber {
		return Nil, &TypeError{Op: "-", Kind: v.kind, Kind2: KindNumber, Binary: false}
	}
	return Number(-v.n), nil
}

// Not implements unary `!`, following the same truthiness rule as Truthy.
func (v Value) Not() Value {
	return Bool(!v.Truthy())
}

// String renders v the way Print writes it: numbers use the shortest
// round-tripping decimal form, strings are printed without quotes.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString:
		return v.s
	case KindFunction:
		return v.fn.String()
	default:
		return "<invalid value>"
	}
}
