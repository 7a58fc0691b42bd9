// Package conv provides checked integer conversions for arena indices.
//
// Automata store states in slices and hand out 32-bit handles. Narrowing a
// slice length into a handle must never wrap silently, so these helpers panic
// on overflow: an automaton that large is a programming error, not a
// recoverable condition.
package conv

import "math"

// ID is any handle type backed by a uint32.
type ID interface {
	~uint32
}

// ToID narrows a slice index into a handle of type I.
// Panics if n < 0 or n >= math.MaxUint32 (the top values are reserved as
// sentinels by the automaton packages).
func ToID[I ID](n int) I {
	if n < 0 || uint64(n) >= math.MaxUint32-1 {
		panic("integer overflow: index out of handle range")
	}
	return I(n)
}

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
func IntToUint32(n int) uint32 {
	if n < 0 || uint64(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}
