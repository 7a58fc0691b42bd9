package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
)

// Stream is a Reader over values pulled on demand from a source. Every value
// pulled is kept in a history buffer until Release drops it.
type Stream[T any] struct {
	next func() (T, bool)
	stop func()
	err  error

	buf  []T // history; buf[0] is at position base
	base int
	pos  int
	done bool
}

// FromFunc returns a stream pulling values from next until it reports false.
func FromFunc[T any](next func() (T, bool)) *Stream[T] {
	return &Stream[T]{next: next}
}

// FromSeq returns a stream over seq. Close releases the underlying iterator
// when the stream is abandoned before its end.
func FromSeq[T any](seq iter.Seq[T]) *Stream[T] {
	next, stop := iter.Pull(seq)
	return &Stream[T]{next: next, stop: stop}
}

// FromRuneReader returns a stream of the runes decoded from r. A read error
// other than io.EOF ends the stream and is reported by Err.
func FromRuneReader(r io.RuneReader) *Stream[rune] {
	s := &Stream[rune]{}
	s.next = func() (rune, bool) {
		c, _, err := r.ReadRune()
		if err != nil {
			s.fail(err)
			return 0, false
		}
		return c, true
	}
	return s
}

// FromByteReader returns a stream of the bytes read from r. When r is not an
// io.ByteReader it is buffered.
func FromByteReader(r io.Reader) *Stream[byte] {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	s := &Stream[byte]{}
	s.next = func() (byte, bool) {
		c, err := br.ReadByte()
		if err != nil {
			s.fail(err)
			return 0, false
		}
		return c, true
	}
	return s
}

func (s *Stream[T]) fail(err error) {
	if !errors.Is(err, io.EOF) {
		s.err = fmt.Errorf("input: read at position %d: %w", s.base+len(s.buf), err)
	}
}

// Err returns the error that ended the stream, if any.
func (s *Stream[T]) Err() error { return s.err }

// Close stops the source iterator. Reading after Close reports the end of
// the input once the history is exhausted.
func (s *Stream[T]) Close() {
	if s.stop != nil {
		s.stop()
	}
	s.done = true
}

// fill pulls values until position pos is buffered.
func (s *Stream[T]) fill(pos int) bool {
	for pos >= s.base+len(s.buf) {
		if s.done {
			return false
		}
		v, ok := s.next()
		if !ok {
			s.done = true
			return false
		}
		s.buf = append(s.buf, v)
	}
	return true
}

// Peek implements Reader
func (s *Stream[T]) Peek() (v T, ok bool) {
	if !s.fill(s.pos) {
		return v, false
	}
	return s.buf[s.pos-s.base], true
}

// Read implements Reader
func (s *Stream[T]) Read() (v T, ok bool) {
	v, ok = s.Peek()
	if ok {
		s.pos++
	}
	return v, ok
}

// Pos implements Reader
func (s *Stream[T]) Pos() int { return s.pos }

// Rollback implements Reader. It panics when pos was released or was never
// read.
func (s *Stream[T]) Rollback(pos int) {
	if pos < s.base || pos > s.base+len(s.buf) {
		panic(fmt.Sprintf("input: rollback to %d outside retained history [%d, %d]",
			pos, s.base, s.base+len(s.buf)))
	}
	s.pos = pos
}

// Slice implements Reader
func (s *Stream[T]) Slice(start, end int) []T {
	if start < s.base || end > s.base+len(s.buf) || start > end {
		panic(fmt.Sprintf("input: slice [%d, %d) outside retained history [%d, %d]",
			start, end, s.base, s.base+len(s.buf)))
	}
	return s.buf[start-s.base : end-s.base : end-s.base]
}

// Release drops the history before pos, which must not be ahead of the
// current position. Positions before pos can no longer be rolled back to
// or sliced.
func (s *Stream[T]) Release(pos int) {
	if pos > s.pos {
		pos = s.pos
	}
	if pos <= s.base {
		return
	}
	// Copy so that slices handed out earlier stay intact.
	s.buf = slices.Clone(s.buf[pos-s.base:])
	s.base = pos
}

// Retained returns the number of values held in the history buffer.
func (s *Stream[T]) Retained() int { return len(s.buf) }
