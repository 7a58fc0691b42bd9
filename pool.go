package fsmregex

import (
	"sync"

	"github.com/coregx/fsmregex/backtrack"
	"github.com/coregx/fsmregex/nfa"
	"github.com/coregx/fsmregex/prefilter"
)

// searchState holds the mutable state of one search: the backtracking
// machine with its stacks and the prefilter effectiveness tracker.
//
// A Regex is shared between goroutines; each search takes its own state
// from the pool.
type searchState[T any] struct {
	machine *backtrack.Machine[T]
	tracker *prefilter.Tracker
}

func (s *searchState[T]) reset() {
	if s.tracker != nil {
		s.tracker.Reset()
	}
}

// searchStatePool recycles search states for one compiled pattern.
type searchStatePool[T any] struct {
	pool sync.Pool

	nfa       *nfa.NFA[T]
	config    backtrack.Config
	prefilter prefilter.Prefilter
}

func newSearchStatePool[T any](n *nfa.NFA[T], config backtrack.Config, pf prefilter.Prefilter) *searchStatePool[T] {
	p := &searchStatePool[T]{
		nfa:       n,
		config:    config,
		prefilter: pf,
	}
	p.pool = sync.Pool{
		New: func() any {
			return &searchState[T]{
				machine: backtrack.NewMachine(p.nfa, p.config),
				tracker: prefilter.NewTracker(p.prefilter),
			}
		},
	}
	return p
}

func (p *searchStatePool[T]) get() *searchState[T] {
	return p.pool.Get().(*searchState[T])
}

func (p *searchStatePool[T]) put(state *searchState[T]) {
	if state == nil {
		return
	}
	state.reset()
	p.pool.Put(state)
}
