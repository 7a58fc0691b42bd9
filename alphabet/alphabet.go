// Package alphabet supplies the domains automata are built over.
//
// An Alphabet is a discrete, totally ordered domain (the interval.RangeInfo
// part) together with its accredited set: the universe of values an automaton
// is allowed to transition on. Every transition predicate is intersected with
// the accredited set, so an alphabet can narrow its underlying type, e.g. a
// byte alphabet restricted to printable ASCII.
package alphabet

import (
	"cmp"
	"fmt"
	"unicode/utf8"

	"golang.org/x/exp/constraints"

	"github.com/coregx/fsmregex/interval"
)

// Alphabet is an ordered discrete domain plus the set of values automata may
// consume.
type Alphabet[T any] interface {
	interval.RangeInfo[T]

	// Accredited returns the universe of values automata may transition on.
	// Callers must not mutate the returned set.
	Accredited() *interval.RangeSet[T]
}

// Integer is the alphabet of integers in [Min, Max].
type Integer[T constraints.Integer] struct {
	min, max   T
	accredited *interval.RangeSet[T]
}

// NewInteger creates an integer alphabet covering [min, max].
// It fails with interval.ErrInvalidRange when min > max.
func NewInteger[T constraints.Integer](min, max T) (*Integer[T], error) {
	a := &Integer[T]{min: min, max: max}
	r, err := interval.Closed[T](a, min, max)
	if err != nil {
		return nil, err
	}
	a.accredited = interval.SetOf[T](a, r)
	return a, nil
}

func mustInteger[T constraints.Integer](min, max T) *Integer[T] {
	a, err := NewInteger(min, max)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns the alphabet of all 256 byte values.
func Bytes() *Integer[byte] {
	return mustInteger[byte](0, 255)
}

// ASCII returns the byte alphabet restricted to [0, 127].
func ASCII() *Integer[byte] {
	return mustInteger[byte](0, 127)
}

// Runes returns the alphabet of code points [0, utf8.MaxRune]. Values are
// ordered numerically; no Unicode semantics beyond that are implied.
func Runes() *Integer[rune] {
	return mustInteger[rune](0, utf8.MaxRune)
}

// Int32 returns the alphabet of every int32 value.
func Int32() *Integer[int32] {
	return mustInteger[int32](-1<<31, 1<<31-1)
}

// Compare orders values numerically.
func (a *Integer[T]) Compare(x, y T) int {
	return cmp.Compare(x, y)
}

// Next returns v+1, or ErrNoSuccessor at the alphabet maximum.
func (a *Integer[T]) Next(v T) (T, error) {
	if v >= a.max {
		return v, fmt.Errorf("%w: %v", interval.ErrNoSuccessor, v)
	}
	return v + 1, nil
}

// Prev returns v-1, or ErrNoPredecessor at the alphabet minimum.
func (a *Integer[T]) Prev(v T) (T, error) {
	if v <= a.min {
		return v, fmt.Errorf("%w: %v", interval.ErrNoPredecessor, v)
	}
	return v - 1, nil
}

// Accredited returns [Min, Max].
func (a *Integer[T]) Accredited() *interval.RangeSet[T] {
	return a.accredited
}

// Min returns the smallest value of the alphabet.
func (a *Integer[T]) Min() T { return a.min }

// Max returns the largest value of the alphabet.
func (a *Integer[T]) Max() T { return a.max }
