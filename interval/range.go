// Package interval implements range algebra over any totally ordered,
// discrete domain.
//
// The automaton packages never look at alphabet values directly. Every
// transition predicate is a RangeSet, and every set operation they need
// (union for merging transitions, intersection and difference for splitting
// them into disjoint atoms) is expressed here in terms of a RangeInfo: a
// comparison plus successor and predecessor functions. That is enough to make
// construction work the same way for bytes, runes, integers, enum values or
// values adapted from another domain.
//
// Two ranges that do not overlap may still be merged when they are adjacent
// in the domain: [0, 4) and [4, 9] merge into [0, 9], and so do [0, 3] and
// [4, 9] over the integers, because nothing lies between 3 and 4.
package interval

import (
	"fmt"
	"iter"
)

// RangeInfo describes the order of a discrete domain.
//
// Next and Prev return the successor and predecessor of a value. They fail
// with ErrNoSuccessor / ErrNoPredecessor at the domain's boundaries; they
// never wrap around.
type RangeInfo[T any] interface {
	Compare(a, b T) int
	Next(v T) (T, error)
	Prev(v T) (T, error)
}

// Range is an immutable interval of domain values.
//
// Each bound is either inclusive or exclusive. A Range is valid when
// min < max, or when min == max and both bounds are inclusive. A valid range
// may still hold no values in a discrete domain, e.g. (3, 4) over integers;
// IsEmpty reports that case.
type Range[T any] struct {
	info   RangeInfo[T]
	min    T
	max    T
	canMin bool
	canMax bool
}

// IsValid reports whether the bounds describe a well-formed range.
func IsValid[T any](info RangeInfo[T], min, max T, canMin, canMax bool) bool {
	c := info.Compare(min, max)
	switch {
	case c > 0:
		return false
	case c == 0:
		return canMin && canMax
	default:
		return true
	}
}

// New creates a range. It fails with ErrInvalidRange if the bounds are
// malformed; bounds are never clamped.
func New[T any](info RangeInfo[T], min, max T, canMin, canMax bool) (Range[T], error) {
	if !IsValid(info, min, max, canMin, canMax) {
		return Range[T]{}, &RangeError{
			Op:     "new",
			Bounds: formatBounds(min, max, canMin, canMax),
			Err:    ErrInvalidRange,
		}
	}
	return Range[T]{info: info, min: min, max: max, canMin: canMin, canMax: canMax}, nil
}

// Closed creates the inclusive range [min, max].
func Closed[T any](info RangeInfo[T], min, max T) (Range[T], error) {
	return New(info, min, max, true, true)
}

// Single creates the range holding exactly v.
func Single[T any](info RangeInfo[T], v T) Range[T] {
	return Range[T]{info: info, min: v, max: v, canMin: true, canMax: true}
}

// closed builds an inclusive range without validation. Callers guarantee
// lo <= hi.
func closed[T any](info RangeInfo[T], lo, hi T) Range[T] {
	return Range[T]{info: info, min: lo, max: hi, canMin: true, canMax: true}
}

// Min returns the lower bound.
func (r Range[T]) Min() T { return r.min }

// Max returns the upper bound.
func (r Range[T]) Max() T { return r.max }

// CanTakeMin reports whether the lower bound is inclusive.
func (r Range[T]) CanTakeMin() bool { return r.canMin }

// CanTakeMax reports whether the upper bound is inclusive.
func (r Range[T]) CanTakeMax() bool { return r.canMax }

// Info returns the domain description the range was built with.
func (r Range[T]) Info() RangeInfo[T] { return r.info }

// Contains reports whether v lies inside the range.
func (r Range[T]) Contains(v T) bool {
	if r.info == nil {
		return false
	}
	c := r.info.Compare(v, r.min)
	if c < 0 || (c == 0 && !r.canMin) {
		return false
	}
	c = r.info.Compare(v, r.max)
	return c < 0 || (c == 0 && r.canMax)
}

// First returns the smallest value in the range.
// ok is false when the range holds no values.
func (r Range[T]) First() (v T, ok bool) {
	if r.info == nil {
		return v, false
	}
	if r.canMin {
		return r.min, true
	}
	n, err := r.info.Next(r.min)
	if err != nil || !r.Contains(n) {
		return v, false
	}
	return n, true
}

// Last returns the largest value in the range.
// ok is false when the range holds no values.
func (r Range[T]) Last() (v T, ok bool) {
	if r.info == nil {
		return v, false
	}
	if r.canMax {
		return r.max, true
	}
	p, err := r.info.Prev(r.max)
	if err != nil || !r.Contains(p) {
		return v, false
	}
	return p, true
}

// bounds returns the effective inclusive bounds.
func (r Range[T]) bounds() (lo, hi T, ok bool) {
	lo, ok = r.First()
	if !ok {
		return lo, hi, false
	}
	hi, ok = r.Last()
	if !ok || r.info.Compare(lo, hi) > 0 {
		return lo, hi, false
	}
	return lo, hi, true
}

// IsEmpty reports whether the range holds no values.
func (r Range[T]) IsEmpty() bool {
	_, _, ok := r.bounds()
	return !ok
}

// Equal reports whether both ranges hold exactly the same values.
func (r Range[T]) Equal(o Range[T]) bool {
	lo1, hi1, ok1 := r.bounds()
	lo2, hi2, ok2 := o.bounds()
	if !ok1 || !ok2 {
		return ok1 == ok2
	}
	return r.info.Compare(lo1, lo2) == 0 && r.info.Compare(hi1, hi2) == 0
}

// Values iterates over every value of the range in ascending order.
func (r Range[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		lo, hi, ok := r.bounds()
		if !ok {
			return
		}
		for v := lo; ; {
			if !yield(v) {
				return
			}
			if r.info.Compare(v, hi) >= 0 {
				return
			}
			next, err := r.info.Next(v)
			if err != nil {
				return
			}
			v = next
		}
	}
}

// String formats the range in interval notation, e.g. "[1, 4)".
func (r Range[T]) String() string {
	return formatBounds(r.min, r.max, r.canMin, r.canMax)
}

func formatBounds[T any](min, max T, canMin, canMax bool) string {
	open, end := "(", ")"
	if canMin {
		open = "["
	}
	if canMax {
		end = "]"
	}
	return fmt.Sprintf("%s%v, %v%s", open, min, max, end)
}

// touches reports whether a range ending at hi and a range starting at lo
// overlap or are adjacent, given both bounds are inclusive.
func touches[T any](info RangeInfo[T], hi, lo T) bool {
	return info.Compare(hi, lo) >= 0 || succeeds(info, hi, lo)
}

// IsOverlap reports whether the two ranges share at least one value,
// honoring exclusive bounds at shared endpoints.
func IsOverlap[T any](a, b Range[T]) bool {
	lo1, hi1, ok1 := a.bounds()
	lo2, hi2, ok2 := b.bounds()
	if !ok1 || !ok2 {
		return false
	}
	info := a.info
	return info.Compare(lo1, hi2) <= 0 && info.Compare(lo2, hi1) <= 0
}

// IsAdjacent reports whether the ranges do not overlap but no domain value
// lies between them.
func IsAdjacent[T any](a, b Range[T]) bool {
	lo1, hi1, ok1 := a.bounds()
	lo2, hi2, ok2 := b.bounds()
	if !ok1 || !ok2 || IsOverlap(a, b) {
		return false
	}
	info := a.info
	return succeeds(info, hi1, lo2) || succeeds(info, hi2, lo1)
}

// succeeds reports whether lo is the immediate successor of hi.
func succeeds[T any](info RangeInfo[T], hi, lo T) bool {
	next, err := info.Next(hi)
	return err == nil && info.Compare(next, lo) == 0
}

// Union merges two overlapping or adjacent ranges.
// It fails with ErrRangeNotOverlapping otherwise. An empty operand is the
// identity.
//
// The result takes the smaller lower and the larger upper bound; on a tie the
// more inclusive flag wins.
func Union[T any](a, b Range[T]) (Range[T], error) {
	if a.IsEmpty() {
		return b, nil
	}
	if b.IsEmpty() {
		return a, nil
	}
	if !IsOverlap(a, b) && !IsAdjacent(a, b) {
		return Range[T]{}, &RangeError{
			Op:     "union",
			Bounds: a.String() + " + " + b.String(),
			Err:    ErrRangeNotOverlapping,
		}
	}
	info := a.info
	u := Range[T]{info: info}
	switch c := info.Compare(a.min, b.min); {
	case c < 0:
		u.min, u.canMin = a.min, a.canMin
	case c > 0:
		u.min, u.canMin = b.min, b.canMin
	default:
		u.min, u.canMin = a.min, a.canMin || b.canMin
	}
	switch c := info.Compare(a.max, b.max); {
	case c > 0:
		u.max, u.canMax = a.max, a.canMax
	case c < 0:
		u.max, u.canMax = b.max, b.canMax
	default:
		u.max, u.canMax = a.max, a.canMax || b.canMax
	}
	return u, nil
}

// TryUnion is Union without the error: ok is false when the ranges can not be
// merged.
func TryUnion[T any](a, b Range[T]) (Range[T], bool) {
	u, err := Union(a, b)
	return u, err == nil
}

// Intersect returns the values common to both ranges.
// ok is false when they do not overlap; that is a normal outcome, not an
// error.
func Intersect[T any](a, b Range[T]) (Range[T], bool) {
	if !IsOverlap(a, b) {
		return Range[T]{}, false
	}
	info := a.info
	r := Range[T]{info: info}
	switch c := info.Compare(a.min, b.min); {
	case c > 0:
		r.min, r.canMin = a.min, a.canMin
	case c < 0:
		r.min, r.canMin = b.min, b.canMin
	default:
		r.min, r.canMin = a.min, a.canMin && b.canMin
	}
	switch c := info.Compare(a.max, b.max); {
	case c < 0:
		r.max, r.canMax = a.max, a.canMax
	case c > 0:
		r.max, r.canMax = b.max, b.canMax
	default:
		r.max, r.canMax = a.max, a.canMax && b.canMax
	}
	if !IsValid(info, r.min, r.max, r.canMin, r.canMax) || r.IsEmpty() {
		return Range[T]{}, false
	}
	return r, true
}

// Except returns the values of a that are not in b, as zero, one or two
// inclusive ranges in ascending order.
func Except[T any](a, b Range[T]) []Range[T] {
	lo1, hi1, ok1 := a.bounds()
	if !ok1 {
		return nil
	}
	if !IsOverlap(a, b) {
		return []Range[T]{closed(a.info, lo1, hi1)}
	}
	lo2, hi2, _ := b.bounds()
	info := a.info
	var out []Range[T]
	if info.Compare(lo1, lo2) < 0 {
		if p, err := info.Prev(lo2); err == nil {
			out = append(out, closed(info, lo1, p))
		}
	}
	if info.Compare(hi2, hi1) < 0 {
		if n, err := info.Next(hi2); err == nil {
			out = append(out, closed(info, n, hi1))
		}
	}
	return out
}
