package interval

import (
	"errors"
	"fmt"
)

// Range algebra errors
var (
	// ErrInvalidRange indicates malformed bounds: min > max, or a single point
	// with an exclusive bound.
	ErrInvalidRange = errors.New("invalid range")

	// ErrRangeNotOverlapping indicates an attempt to merge ranges that neither
	// overlap nor are adjacent.
	ErrRangeNotOverlapping = errors.New("ranges neither overlap nor are adjacent")

	// ErrNoSuccessor is returned by RangeInfo.Next at the domain maximum.
	ErrNoSuccessor = errors.New("value has no successor")

	// ErrNoPredecessor is returned by RangeInfo.Prev at the domain minimum.
	ErrNoPredecessor = errors.New("value has no predecessor")
)

// RangeError records the operation and the offending bounds of a failed
// range operation.
type RangeError struct {
	Op     string
	Bounds string
	Err    error
}

// Error implements the error interface
func (e *RangeError) Error() string {
	return fmt.Sprintf("interval %s %s: %v", e.Op, e.Bounds, e.Err)
}

// Unwrap returns the underlying error
func (e *RangeError) Unwrap() error {
	return e.Err
}
