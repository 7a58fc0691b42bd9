package alphabet

import (
	"errors"
	"fmt"

	"github.com/coregx/fsmregex/interval"
)

// ErrDuplicateValue is returned by NewEnum when a value is listed twice.
var ErrDuplicateValue = errors.New("duplicate enum value")

// Enum is an alphabet over an explicit, ordered list of values. It makes the
// range algebra usable over domains with no numeric order of their own,
// such as tokens or states of another machine.
type Enum[T comparable] struct {
	values     []T
	index      map[T]int
	accredited *interval.RangeSet[T]
}

// NewEnum creates an alphabet whose order is the order of values.
func NewEnum[T comparable](values ...T) (*Enum[T], error) {
	e := &Enum[T]{
		values: append([]T(nil), values...),
		index:  make(map[T]int, len(values)),
	}
	for i, v := range values {
		if _, dup := e.index[v]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateValue, v)
		}
		e.index[v] = i
	}
	e.accredited = interval.NewSet[T](e)
	if len(values) > 0 {
		r, err := interval.Closed[T](e, values[0], values[len(values)-1])
		if err != nil {
			return nil, err
		}
		e.accredited.Insert(r)
	}
	return e, nil
}

// Ordinal returns the position of v in the enum, or -1 when v is unknown.
func (e *Enum[T]) Ordinal(v T) int {
	if i, ok := e.index[v]; ok {
		return i
	}
	return -1
}

// Values returns the enum values in order.
func (e *Enum[T]) Values() []T {
	return append([]T(nil), e.values...)
}

// Compare orders values by their position. Unknown values sort before every
// member, so no range ever contains them.
func (e *Enum[T]) Compare(a, b T) int {
	return e.Ordinal(a) - e.Ordinal(b)
}

// Next returns the value listed after v.
func (e *Enum[T]) Next(v T) (T, error) {
	i := e.Ordinal(v)
	if i < 0 || i+1 >= len(e.values) {
		return v, fmt.Errorf("%w: %v", interval.ErrNoSuccessor, v)
	}
	return e.values[i+1], nil
}

// Prev returns the value listed before v.
func (e *Enum[T]) Prev(v T) (T, error) {
	i := e.Ordinal(v)
	if i <= 0 {
		return v, fmt.Errorf("%w: %v", interval.ErrNoPredecessor, v)
	}
	return e.values[i-1], nil
}

// Accredited returns the set of every enum value.
func (e *Enum[T]) Accredited() *interval.RangeSet[T] {
	return e.accredited
}
