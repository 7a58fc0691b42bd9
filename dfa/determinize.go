package dfa

import (
	"fmt"
	"slices"

	"github.com/coregx/fsmregex/interval"
	"github.com/coregx/fsmregex/nfa"
)

// Determinize converts a regular NFA into an equivalent DFA by subset
// construction over the alphabet's accredited set.
//
// Every DFA state stands for the epsilon closure of a set of NFA states;
// capture and repeat effects count as epsilon. Only the important states of
// a closure (terminal, or with an accept transition) identify a DFA state,
// so closures that differ in pass-through states alone share one state. Leaving a state, the accept
// sets of its NFA states are refined into disjoint atoms, and all atoms that
// lead to the same DFA state are merged into one transition.
func Determinize[T any](n *nfa.NFA[T], cfg Config) (*DFA[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !n.IsRegular() {
		return nil, &DFAError{Kind: NotRegular, Message: "cannot determinize", Cause: nfa.ErrNotRegular}
	}
	d := &determinizer[T]{
		nfa:  n,
		cfg:  cfg,
		b:    NewBuilder(n.Alphabet()),
		seen: make(map[StateKey][]StateID),
	}
	start, err := d.state(d.important(n.Closure(n.Start())))
	if err != nil {
		return nil, err
	}
	for len(d.work) > 0 {
		id := d.work[0]
		d.work = d.work[1:]
		if err := d.expand(id); err != nil {
			return nil, err
		}
	}
	return d.b.Build(start), nil
}

type determinizer[T any] struct {
	nfa  *nfa.NFA[T]
	cfg  Config
	b    *Builder[T]
	seen map[StateKey][]StateID
	work []StateID
}

// state returns the DFA state for the sorted NFA state set, creating and
// enqueueing it on first sight.
func (d *determinizer[T]) state(set []nfa.StateID) (StateID, error) {
	key := ComputeStateKey(set)
	for _, id := range d.seen[key] {
		if slices.Equal(d.b.states[id].nfaStates, set) {
			return id, nil
		}
	}
	if d.b.States() >= d.cfg.MaxStates {
		return InvalidState, &DFAError{
			Kind:    StateLimitExceeded,
			Message: fmt.Sprintf("DFA state limit exceeded (%d states)", d.cfg.MaxStates),
		}
	}
	terminal := false
	for _, s := range set {
		if d.nfa.IsTerminal(s) {
			terminal = true
			break
		}
	}
	id := d.b.AddState(terminal)
	d.b.states[id].nfaStates = set
	d.seen[key] = append(d.seen[key], id)
	d.work = append(d.work, id)
	return id, nil
}

// important keeps the states of a sorted closure that decide acceptance or
// consume input.
func (d *determinizer[T]) important(closure []nfa.StateID) []nfa.StateID {
	out := closure[:0]
	for _, s := range closure {
		if d.nfa.IsTerminal(s) || d.consumes(s) {
			out = append(out, s)
		}
	}
	return out
}

func (d *determinizer[T]) consumes(s nfa.StateID) bool {
	for _, t := range d.nfa.State(s).Transitions() {
		if t.Kind == nfa.Accept {
			return true
		}
	}
	return false
}

func (d *determinizer[T]) expand(id StateID) error {
	var moves []nfa.Transition[T]
	for _, s := range d.b.states[id].nfaStates {
		for _, t := range d.nfa.State(s).Transitions() {
			if t.Kind == nfa.Accept && !t.Set.IsEmpty() {
				moves = append(moves, t)
			}
		}
	}
	if len(moves) == 0 {
		return nil
	}
	sets := make([]*interval.RangeSet[T], len(moves))
	for i, t := range moves {
		sets[i] = t.Set
	}

	var order []StateID
	merged := make(map[StateID]*interval.RangeSet[T])
	for _, atom := range Refine(d.nfa.Alphabet().Accredited(), sets) {
		var targets []nfa.StateID
		for _, t := range moves {
			if t.Set.Overlaps(atom) {
				targets = append(targets, t.Target)
			}
		}
		to, err := d.state(d.important(d.nfa.Closure(targets...)))
		if err != nil {
			return err
		}
		if acc, ok := merged[to]; ok {
			merged[to] = acc.Union(atom)
		} else {
			merged[to] = atom
			order = append(order, to)
		}
	}
	for _, to := range order {
		d.b.AddTransition(id, to, merged[to])
	}
	return nil
}

// Refine partitions the part of universe covered by sets into disjoint
// atoms such that every atom lies entirely inside or entirely outside each
// set. The atom order depends only on the order of sets.
func Refine[T any](universe *interval.RangeSet[T], sets []*interval.RangeSet[T]) []*interval.RangeSet[T] {
	var atoms []*interval.RangeSet[T]
	for _, s := range sets {
		rest := s.Intersect(universe)
		if rest.IsEmpty() {
			continue
		}
		next := make([]*interval.RangeSet[T], 0, len(atoms)+1)
		for _, a := range atoms {
			in := a.Intersect(rest)
			if in.IsEmpty() {
				next = append(next, a)
				continue
			}
			next = append(next, in)
			if out := a.Except(rest); !out.IsEmpty() {
				next = append(next, out)
			}
			rest = rest.Except(in)
		}
		if !rest.IsEmpty() {
			next = append(next, rest)
		}
		atoms = next
	}
	return atoms
}
