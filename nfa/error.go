// Package nfa provides a Thompson NFA over arbitrary ordered alphabets.
//
// The NFA is compiled from an ast.Node tree. Input-consuming transitions carry
// an interval.RangeSet predicate intersected with the alphabet's accredited
// set; non-consuming transitions are either plain epsilons or functional
// transitions whose effects (captures, repeat guards, balance pops, identity
// checks, assertions) are interpreted by the backtrack package.
package nfa

import (
	"errors"
	"fmt"
)

// Common NFA errors
var (
	// ErrUnsupportedConstruct indicates an AST node the compiler can not
	// translate
	ErrUnsupportedConstruct = errors.New("unsupported construct")

	// ErrUnknownGroup indicates a backreference to a group that does not exist
	ErrUnknownGroup = errors.New("unknown group")

	// ErrInvalidRepeat indicates repetition bounds that are negative or reversed
	ErrInvalidRepeat = errors.New("invalid repetition bounds")

	// ErrTooComplex indicates the pattern is too complex to compile
	ErrTooComplex = errors.New("pattern too complex")

	// ErrNotRegular indicates an operation that requires a regular automaton
	// (no backreferences, lookaheads, balance groups or anchors)
	ErrNotRegular = errors.New("automaton is not regular")

	// ErrInvalidConfig indicates invalid configuration was provided
	ErrInvalidConfig = errors.New("invalid NFA configuration")
)

// CompileError wraps compilation errors with the offending node
type CompileError struct {
	Node string
	Err  error
}

// Error implements the error interface
func (e *CompileError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("NFA compilation failed at %s: %v", e.Node, e.Err)
	}
	return fmt.Sprintf("NFA compilation failed: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *CompileError) Unwrap() error {
	return e.Err
}

// BuildError represents an error during NFA construction via the Builder API
type BuildError struct {
	Message string
	StateID StateID
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.StateID != InvalidState {
		return fmt.Sprintf("NFA build error at state %d: %s", e.StateID, e.Message)
	}
	return fmt.Sprintf("NFA build error: %s", e.Message)
}
