// Package backtrack runs NFAs with capture semantics.
//
// The executor is a depth-first search over an explicit state stack; a
// parallel capture stack holds the bookkeeping of functional transitions
// (capture starts and ends, repeat iteration marks, balance pops). Every
// capture entry is owned by the state frame that created it and disappears
// when that frame is popped, so abandoning a branch also abandons every
// capture made on it.
package backtrack

import "errors"

var (
	// ErrStepLimitExceeded indicates the search ran out of its step budget.
	ErrStepLimitExceeded = errors.New("backtracking step limit exceeded")

	// ErrInvalidConfig indicates invalid configuration was provided
	ErrInvalidConfig = errors.New("invalid backtrack configuration")
)
