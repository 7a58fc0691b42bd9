package alphabet

import (
	"github.com/coregx/fsmregex/interval"
)

// Adapted is an alphabet over T borrowed from an alphabet over U through an
// order-preserving bijection.
type Adapted[T, U any] struct {
	base       Alphabet[U]
	to         func(T) U
	from       func(U) T
	accredited *interval.RangeSet[T]
}

// Adapt exposes base as an alphabet over T. to and from must be inverse,
// order-preserving functions between T and U.
func Adapt[T, U any](base Alphabet[U], to func(T) U, from func(U) T) *Adapted[T, U] {
	a := &Adapted[T, U]{base: base, to: to, from: from}
	a.accredited = interval.NewSet[T](a)
	for _, r := range base.Accredited().Ranges() {
		if rr, err := interval.Closed[T](a, from(r.Min()), from(r.Max())); err == nil {
			a.accredited.Insert(rr)
		}
	}
	return a
}

// Compare orders values by their image in the base alphabet.
func (a *Adapted[T, U]) Compare(x, y T) int {
	return a.base.Compare(a.to(x), a.to(y))
}

// Next returns the successor of v in the base alphabet.
func (a *Adapted[T, U]) Next(v T) (T, error) {
	n, err := a.base.Next(a.to(v))
	if err != nil {
		return v, err
	}
	return a.from(n), nil
}

// Prev returns the predecessor of v in the base alphabet.
func (a *Adapted[T, U]) Prev(v T) (T, error) {
	p, err := a.base.Prev(a.to(v))
	if err != nil {
		return v, err
	}
	return a.from(p), nil
}

// Accredited returns the base accredited set mapped into T.
func (a *Adapted[T, U]) Accredited() *interval.RangeSet[T] {
	return a.accredited
}
