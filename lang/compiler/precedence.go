package compiler

// Precedence orders the binding power of infix operators, ascending. A
// prefix parser calls parsePrecedence(p) to consume everything that binds
// at least as tightly as p.
type Precedence int8

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)
