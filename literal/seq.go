// Package literal extracts literal prefixes from pattern trees.
//
// The primary use case is prefiltering: if every match of a pattern must
// start with one of a few literal sequences (e.g., "foo" or "bar" for
// /(foo|bar)x*/), a fast literal search can skip input where no match can
// start before the backtracking engine runs.
//
// Key concepts:
//   - A Literal is a concrete value sequence that every match of some
//     alternative starts with
//   - A Seq is a set of alternative literals
//   - Minimize and LongestCommonPrefix help choose a prefilter strategy
package literal

import (
	"fmt"
	"slices"
	"strings"
)

// Literal is a value sequence extracted from a pattern.
//
// Complete reports whether the literal is everything the pattern consumes
// along its alternative (true) or only a prefix of it (false).
//
// Example:
//   - Pattern "abc"     → Literal{"abc", true}
//   - Pattern "ab" .* c → Literal{"ab", false}
type Literal[T any] struct {
	// Values is the literal sequence.
	Values []T

	// Complete reports whether nothing follows Values in a match.
	Complete bool
}

// NewLiteral creates a Literal.
func NewLiteral[T any](values []T, complete bool) Literal[T] {
	return Literal[T]{Values: values, Complete: complete}
}

// Len returns the number of values in the literal.
func (l Literal[T]) Len() int {
	return len(l.Values)
}

// String returns a debugging representation: "literal{[1 2 3], complete=true}".
func (l Literal[T]) String() string {
	return fmt.Sprintf("literal{%v, complete=%t}", l.Values, l.Complete)
}

// Seq is a set of alternative literals.
//
// An empty Seq carries no information. A Seq holding an empty, incomplete
// literal means some alternative has no known prefix; such a Seq cannot
// drive a prefilter (see Usable).
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("foo"), true),
//	    literal.NewLiteral([]byte("bar"), true),
//	)
//	fmt.Println(seq.Len()) // Output: 2
type Seq[T any] struct {
	literals []Literal[T]
}

// NewSeq creates a new sequence from the given literals.
func NewSeq[T any](lits ...Literal[T]) *Seq[T] {
	return &Seq[T]{literals: lits}
}

// Len returns the number of literals in the sequence.
func (s *Seq[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the literal at index i. Panics if i is out of bounds.
func (s *Seq[T]) Get(i int) Literal[T] {
	return s.literals[i]
}

// IsEmpty returns true if the sequence has no literals.
func (s *Seq[T]) IsEmpty() bool {
	return s == nil || len(s.literals) == 0
}

// Literals returns the literals of the sequence. The slice must not be
// modified.
func (s *Seq[T]) Literals() []Literal[T] {
	if s == nil {
		return nil
	}
	return s.literals
}

// Usable reports whether the sequence can drive a prefilter: it has at least
// one literal and none of them is empty.
func (s *Seq[T]) Usable() bool {
	if s.IsEmpty() {
		return false
	}
	for _, lit := range s.literals {
		if lit.Len() == 0 {
			return false
		}
	}
	return true
}

// IsExact reports whether every literal is complete, i.e. the pattern
// matches exactly the literals of the sequence.
func (s *Seq[T]) IsExact() bool {
	if s.IsEmpty() {
		return false
	}
	for _, lit := range s.literals {
		if !lit.Complete {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the sequence.
func (s *Seq[T]) Clone() *Seq[T] {
	if s == nil {
		return nil
	}
	cloned := make([]Literal[T], len(s.literals))
	for i, lit := range s.literals {
		cloned[i] = Literal[T]{Values: slices.Clone(lit.Values), Complete: lit.Complete}
	}
	return &Seq[T]{literals: cloned}
}

// Minimize removes redundant literals for prefix matching.
//
// A literal L is redundant if a kept literal S is a prefix of L: any input
// starting with L also starts with S. Equal literals collapse into one that
// is complete only if all of them were. The order of the survivors is
// shortest first, ties in original order.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("foobar"), true),
//	    literal.NewLiteral([]byte("foo"), true),
//	)
//	seq.Minimize(cmp.Compare[byte])
//	fmt.Println(seq.Len()) // Output: 1 (only "foo" remains)
func (s *Seq[T]) Minimize(compare func(a, b T) int) {
	if s.IsEmpty() {
		return
	}
	slices.SortStableFunc(s.literals, func(a, b Literal[T]) int {
		return a.Len() - b.Len()
	})

	kept := make([]Literal[T], 0, len(s.literals))
	for _, current := range s.literals {
		redundant := false
		for j := range kept {
			if !isPrefix(kept[j].Values, current.Values, compare) {
				continue
			}
			redundant = true
			if kept[j].Len() == current.Len() {
				kept[j].Complete = kept[j].Complete && current.Complete
			} else {
				// A longer alternative exists, so the shorter one no longer
				// covers whole matches.
				kept[j].Complete = false
			}
			break
		}
		if !redundant {
			kept = append(kept, current)
		}
	}
	s.literals = kept
}

// LongestCommonPrefix returns the longest common prefix of all literals in
// the sequence. It returns an empty slice if the sequence is empty or the
// literals share no prefix.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("hello"), true),
//	    literal.NewLiteral([]byte("help"), true),
//	)
//	prefix := seq.LongestCommonPrefix(cmp.Compare[byte])
//	fmt.Println(string(prefix)) // Output: hel
func (s *Seq[T]) LongestCommonPrefix(compare func(a, b T) int) []T {
	if s.IsEmpty() {
		return []T{}
	}
	prefix := s.literals[0].Values
	for _, lit := range s.literals[1:] {
		prefix = commonPrefix(prefix, lit.Values, compare)
		if len(prefix) == 0 {
			return []T{}
		}
	}
	return slices.Clone(prefix)
}

// String returns a debugging representation of the sequence.
func (s *Seq[T]) String() string {
	parts := make([]string, s.Len())
	for i, lit := range s.Literals() {
		parts[i] = lit.String()
	}
	return "Seq[" + strings.Join(parts, ", ") + "]"
}

func isPrefix[T any](prefix, s []T, compare func(a, b T) int) bool {
	if len(prefix) > len(s) {
		return false
	}
	return slices.EqualFunc(prefix, s[:len(prefix)], func(a, b T) bool {
		return compare(a, b) == 0
	})
}

func commonPrefix[T any](a, b []T, compare func(a, b T) int) []T {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if compare(a[i], b[i]) != 0 {
			return a[:i]
		}
	}
	return a[:n]
}
