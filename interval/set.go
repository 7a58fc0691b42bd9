package interval

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"
)

// RangeSet is a set of domain values stored as sorted, disjoint, maximally
// merged inclusive ranges: no two stored ranges overlap or are adjacent.
//
// Insert is the only mutating operation. Union, Intersect, Except and
// SymmetricExcept build new sets, so a receiver is never left partially
// updated.
type RangeSet[T any] struct {
	info   RangeInfo[T]
	ranges []Range[T]
}

// NewSet creates an empty set over the given domain.
func NewSet[T any](info RangeInfo[T]) *RangeSet[T] {
	return &RangeSet[T]{info: info}
}

// SetOf creates a set holding the values of every given range.
func SetOf[T any](info RangeInfo[T], rs ...Range[T]) *RangeSet[T] {
	s := NewSet(info)
	for _, r := range rs {
		s.Insert(r)
	}
	return s
}

// SetOfValues creates a set holding exactly the given values.
func SetOfValues[T any](info RangeInfo[T], vs ...T) *RangeSet[T] {
	s := NewSet(info)
	for _, v := range vs {
		s.Insert(Single(info, v))
	}
	return s
}

// Info returns the domain description of the set.
func (s *RangeSet[T]) Info() RangeInfo[T] {
	return s.info
}

// Insert adds the values of r, merging it with every stored range it
// overlaps or touches.
func (s *RangeSet[T]) Insert(r Range[T]) {
	lo, hi, ok := r.bounds()
	if !ok {
		return
	}
	out := make([]Range[T], 0, len(s.ranges)+1)
	i := 0
	for i < len(s.ranges) && !touches(s.info, s.ranges[i].max, lo) {
		out = append(out, s.ranges[i])
		i++
	}
	for i < len(s.ranges) && touches(s.info, hi, s.ranges[i].min) {
		if s.info.Compare(s.ranges[i].min, lo) < 0 {
			lo = s.ranges[i].min
		}
		if s.info.Compare(s.ranges[i].max, hi) > 0 {
			hi = s.ranges[i].max
		}
		i++
	}
	out = append(out, closed(s.info, lo, hi))
	out = append(out, s.ranges[i:]...)
	s.ranges = out
}

// Contains reports whether v is in the set.
func (s *RangeSet[T]) Contains(v T) bool {
	if s == nil {
		return false
	}
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.info.Compare(s.ranges[i].max, v) >= 0
	})
	return i < len(s.ranges) && s.info.Compare(s.ranges[i].min, v) <= 0
}

// IsEmpty reports whether the set holds no values.
func (s *RangeSet[T]) IsEmpty() bool {
	return s == nil || len(s.ranges) == 0
}

// Len returns the number of stored ranges.
func (s *RangeSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ranges)
}

// Ranges returns a copy of the stored ranges in ascending order.
func (s *RangeSet[T]) Ranges() []Range[T] {
	if s == nil {
		return nil
	}
	return slices.Clone(s.ranges)
}

// Clone returns an independent copy of the set.
func (s *RangeSet[T]) Clone() *RangeSet[T] {
	if s == nil {
		return nil
	}
	return &RangeSet[T]{info: s.info, ranges: slices.Clone(s.ranges)}
}

// Union returns the values in either set.
func (s *RangeSet[T]) Union(o *RangeSet[T]) *RangeSet[T] {
	if o.IsEmpty() {
		return s.Clone()
	}
	if s.IsEmpty() {
		return &RangeSet[T]{info: s.info, ranges: slices.Clone(o.ranges)}
	}
	all := make([]Range[T], 0, len(s.ranges)+len(o.ranges))
	i, j := 0, 0
	for i < len(s.ranges) || j < len(o.ranges) {
		switch {
		case j >= len(o.ranges):
			all = append(all, s.ranges[i])
			i++
		case i >= len(s.ranges):
			all = append(all, o.ranges[j])
			j++
		case s.info.Compare(s.ranges[i].min, o.ranges[j].min) <= 0:
			all = append(all, s.ranges[i])
			i++
		default:
			all = append(all, o.ranges[j])
			j++
		}
	}
	return &RangeSet[T]{info: s.info, ranges: sweep(s.info, all)}
}

// sweep merges touching neighbors of ranges sorted by lower bound.
func sweep[T any](info RangeInfo[T], sorted []Range[T]) []Range[T] {
	out := make([]Range[T], 0, len(sorted))
	for _, r := range sorted {
		if n := len(out); n > 0 && touches(info, out[n-1].max, r.min) {
			if info.Compare(r.max, out[n-1].max) > 0 {
				out[n-1] = closed(info, out[n-1].min, r.max)
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Intersect returns the values in both sets.
func (s *RangeSet[T]) Intersect(o *RangeSet[T]) *RangeSet[T] {
	out := &RangeSet[T]{info: s.info}
	if s.IsEmpty() || o.IsEmpty() {
		return out
	}
	i, j := 0, 0
	for i < len(s.ranges) && j < len(o.ranges) {
		a, b := s.ranges[i], o.ranges[j]
		lo, hi := a.min, a.max
		if s.info.Compare(b.min, lo) > 0 {
			lo = b.min
		}
		if s.info.Compare(b.max, hi) < 0 {
			hi = b.max
		}
		if s.info.Compare(lo, hi) <= 0 {
			out.ranges = append(out.ranges, closed(s.info, lo, hi))
		}
		if s.info.Compare(a.max, b.max) < 0 {
			i++
		} else {
			j++
		}
	}
	return out
}

// Except returns the values of s that are not in o.
func (s *RangeSet[T]) Except(o *RangeSet[T]) *RangeSet[T] {
	if s.IsEmpty() || o.IsEmpty() {
		return s.Clone()
	}
	info := s.info
	out := &RangeSet[T]{info: info}
	j := 0
	for _, a := range s.ranges {
		lo, hi := a.min, a.max
		for j < len(o.ranges) && info.Compare(o.ranges[j].max, lo) < 0 {
			j++
		}
		alive := true
		for k := j; alive && k < len(o.ranges); k++ {
			b := o.ranges[k]
			if info.Compare(b.min, hi) > 0 {
				break
			}
			if info.Compare(b.min, lo) > 0 {
				p, _ := info.Prev(b.min)
				out.ranges = append(out.ranges, closed(info, lo, p))
			}
			if info.Compare(b.max, hi) >= 0 {
				alive = false
				break
			}
			lo, _ = info.Next(b.max)
		}
		if alive {
			out.ranges = append(out.ranges, closed(info, lo, hi))
		}
	}
	return out
}

// SymmetricExcept returns the values in exactly one of the sets.
func (s *RangeSet[T]) SymmetricExcept(o *RangeSet[T]) *RangeSet[T] {
	if o.IsEmpty() {
		return s.Clone()
	}
	return s.Except(o).Union(o.Except(s))
}

// Overlaps reports whether the sets share at least one value.
func (s *RangeSet[T]) Overlaps(o *RangeSet[T]) bool {
	return !s.Intersect(o).IsEmpty()
}

// Equal reports whether both sets hold the same values.
func (s *RangeSet[T]) Equal(o *RangeSet[T]) bool {
	if s.Len() != o.Len() {
		return false
	}
	for i := range s.Len() {
		a, b := s.ranges[i], o.ranges[i]
		if s.info.Compare(a.min, b.min) != 0 || s.info.Compare(a.max, b.max) != 0 {
			return false
		}
	}
	return true
}

// Single returns the only value of the set.
// ok is false unless the set holds exactly one value.
func (s *RangeSet[T]) Single() (v T, ok bool) {
	if s.Len() != 1 || s.info.Compare(s.ranges[0].min, s.ranges[0].max) != 0 {
		return v, false
	}
	return s.ranges[0].min, true
}

// CountUpTo counts the values of the set, stopping once limit is exceeded.
// ok is false when the set holds more than limit values.
func (s *RangeSet[T]) CountUpTo(limit int) (n int, ok bool) {
	for range s.Values() {
		n++
		if n > limit {
			return n, false
		}
	}
	return n, true
}

// Values iterates over every value of the set in ascending order.
func (s *RangeSet[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		if s == nil {
			return
		}
		for _, r := range s.ranges {
			for v := range r.Values() {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Check verifies the set's invariant: every stored range is non-empty and
// inclusive, and consecutive ranges are sorted, disjoint and not adjacent.
func (s *RangeSet[T]) Check() error {
	for i, r := range s.ranges {
		if !r.canMin || !r.canMax || s.info.Compare(r.min, r.max) > 0 {
			return fmt.Errorf("range %d %v is not a non-empty closed range", i, r)
		}
		if i > 0 && touches(s.info, s.ranges[i-1].max, r.min) {
			return fmt.Errorf("ranges %d %v and %d %v overlap or are adjacent",
				i-1, s.ranges[i-1], i, r)
		}
	}
	return nil
}

// String formats the set, e.g. "{[1, 3], [7, 7]}".
func (s *RangeSet[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, r := range s.ranges {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
