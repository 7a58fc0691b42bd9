package alphabet

import (
	"github.com/coregx/fsmregex/interval"
)

// Condition returns the accredited values satisfying pred.
//
// The accredited set is scanned value by value, so the cost is linear in its
// size; consecutive accepted values collapse into single ranges.
func Condition[T any](a Alphabet[T], pred func(T) bool) *interval.RangeSet[T] {
	out := interval.NewSet[T](a)
	var (
		lo, hi T
		open   bool
	)
	flush := func() {
		if open {
			if r, err := interval.Closed[T](a, lo, hi); err == nil {
				out.Insert(r)
			}
			open = false
		}
	}
	for _, r := range a.Accredited().Ranges() {
		for v := range r.Values() {
			if !pred(v) {
				flush()
				continue
			}
			if !open {
				lo, open = v, true
			}
			hi = v
		}
		flush()
	}
	return out
}

// Set returns the accredited values among vs.
func Set[T any](a Alphabet[T], vs ...T) *interval.RangeSet[T] {
	return interval.SetOfValues[T](a, vs...).Intersect(a.Accredited())
}

// Span returns the accredited values in the given range.
func Span[T any](a Alphabet[T], min, max T, canMin, canMax bool) (*interval.RangeSet[T], error) {
	r, err := interval.New[T](a, min, max, canMin, canMax)
	if err != nil {
		return nil, err
	}
	return interval.SetOf[T](a, r).Intersect(a.Accredited()), nil
}
