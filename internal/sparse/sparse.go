// Package sparse provides a sparse set over automaton state handles.
//
// A sparse set supports O(1) insertion, membership testing and clearing while
// keeping a dense list of members in insertion order. Epsilon-closure
// computation relies on both properties: membership to stop revisiting states
// and insertion order to keep transition priority stable.
package sparse

import "slices"

// Set is a set of handles drawn from a universe [0, capacity).
type Set[I ~uint32] struct {
	sparse []uint32 // value -> index in dense
	dense  []I
}

// New creates a set able to hold handles in [0, capacity).
func New[I ~uint32](capacity int) *Set[I] {
	return &Set[I]{
		sparse: make([]uint32, capacity),
		dense:  make([]I, 0, capacity),
	}
}

// Insert adds v to the set and reports whether it was newly added.
// Panics if v is outside the universe.
func (s *Set[I]) Insert(v I) bool {
	if s.Contains(v) {
		return false
	}
	s.sparse[v] = uint32(len(s.dense))
	s.dense = append(s.dense, v)
	return true
}

// Contains reports whether v is in the set.
func (s *Set[I]) Contains(v I) bool {
	if int(v) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[v]
	return int(idx) < len(s.dense) && s.dense[idx] == v
}

// Clear removes all members in O(1).
func (s *Set[I]) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of members.
func (s *Set[I]) Len() int {
	return len(s.dense)
}

// IsEmpty reports whether the set has no members.
func (s *Set[I]) IsEmpty() bool {
	return len(s.dense) == 0
}

// Values returns the members in insertion order.
// The returned slice is valid until the next mutation.
func (s *Set[I]) Values() []I {
	return s.dense
}

// Sorted returns a sorted copy of the members.
func (s *Set[I]) Sorted() []I {
	out := slices.Clone(s.dense)
	slices.Sort(out)
	return out
}
