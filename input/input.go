// Package input provides the pull-based readers the matching engine
// consumes.
//
// A Reader hands out one value at a time and remembers what it handed out,
// so the engine can roll back to any earlier position while backtracking and
// compare captured spans for backreferences. Readers are single-consumer and
// not safe for concurrent use.
package input

// Reader is a pull-based cursor over a sequence of values.
type Reader[T any] interface {
	// Peek returns the value at the current position without consuming it.
	// ok is false at the end of the input.
	Peek() (v T, ok bool)

	// Read consumes and returns the value at the current position.
	// ok is false at the end of the input.
	Read() (v T, ok bool)

	// Pos returns the number of values consumed so far.
	Pos() int

	// Rollback moves the cursor back to pos, which must not be ahead of the
	// furthest position read and must not have been released.
	Rollback(pos int)

	// Slice returns the values in [start, end). The range must have been
	// read already. The result must not be modified.
	Slice(start, end int) []T
}

// Slice is a Reader over an in-memory slice.
type Slice[T any] struct {
	data []T
	pos  int
}

// FromSlice returns a reader over data. The slice is not copied.
func FromSlice[T any](data []T) *Slice[T] {
	return &Slice[T]{data: data}
}

// Peek implements Reader
func (s *Slice[T]) Peek() (v T, ok bool) {
	if s.pos >= len(s.data) {
		return v, false
	}
	return s.data[s.pos], true
}

// Read implements Reader
func (s *Slice[T]) Read() (v T, ok bool) {
	if s.pos >= len(s.data) {
		return v, false
	}
	s.pos++
	return s.data[s.pos-1], true
}

// Pos implements Reader
func (s *Slice[T]) Pos() int { return s.pos }

// Rollback implements Reader. Unlike streams, a slice may also be moved
// forward to any position within the data.
func (s *Slice[T]) Rollback(pos int) {
	if pos < 0 || pos > len(s.data) {
		panic("input: rollback out of range")
	}
	s.pos = pos
}

// Slice implements Reader
func (s *Slice[T]) Slice(start, end int) []T {
	return s.data[start:end:end]
}

// Len returns the length of the underlying data.
func (s *Slice[T]) Len() int { return len(s.data) }
