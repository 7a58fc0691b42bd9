// Package dfa provides deterministic automata built from regular NFAs by
// subset construction.
//
// Transitions consume values of interval.RangeSet predicates. The sets
// leaving a state are pairwise disjoint; the builder panics when that
// determinism invariant would be broken, since it can only happen through a
// programming error. A DFA is immutable once built and safe for concurrent
// use.
package dfa

import (
	"fmt"
	"strings"

	"github.com/coregx/fsmregex/alphabet"
	"github.com/coregx/fsmregex/nfa"
)

// DFA is a deterministic automaton over the alphabet T.
type DFA[T any] struct {
	alphabet alphabet.Alphabet[T]
	states   []State[T]
	start    StateID
}

// Alphabet returns the alphabet the DFA was built over.
func (d *DFA[T]) Alphabet() alphabet.Alphabet[T] { return d.alphabet }

// Start returns the start state.
func (d *DFA[T]) Start() StateID { return d.start }

// States returns the number of states.
func (d *DFA[T]) States() int { return len(d.states) }

// State returns the state with the given ID, or nil if the ID is invalid.
func (d *DFA[T]) State(id StateID) *State[T] {
	if int(id) >= len(d.states) {
		return nil
	}
	return &d.states[id]
}

// IsTerminal reports whether id accepts.
func (d *DFA[T]) IsTerminal(id StateID) bool {
	if s := d.State(id); s != nil {
		return s.terminal
	}
	return false
}

// Step returns the state reached from id on v. ok is false when no
// transition accepts v.
func (d *DFA[T]) Step(id StateID, v T) (next StateID, ok bool) {
	for _, t := range d.states[id].transitions {
		if t.Set.Contains(v) {
			return t.Target, true
		}
	}
	return InvalidState, false
}

// Accepts reports whether the whole input is in the DFA's language.
func (d *DFA[T]) Accepts(input []T) bool {
	cur := d.start
	for _, v := range input {
		next, ok := d.Step(cur, v)
		if !ok {
			return false
		}
		cur = next
	}
	return d.states[cur].terminal
}

// LongestMatch runs the DFA from position at and returns the end of the
// longest accepted prefix of input[at:].
func (d *DFA[T]) LongestMatch(input []T, at int) (end int, ok bool) {
	cur := d.start
	if d.states[cur].terminal {
		end, ok = at, true
	}
	for i := at; i < len(input); i++ {
		next, found := d.Step(cur, input[i])
		if !found {
			break
		}
		cur = next
		if d.states[cur].terminal {
			end, ok = i+1, true
		}
	}
	return end, ok
}

// Reverse returns an NFA accepting the reversal of the DFA's language.
// Every transition is flipped; a fresh start state has epsilon transitions
// to the former terminal states, and the former start state is terminal.
func (d *DFA[T]) Reverse() (*nfa.NFA[T], error) {
	b := nfa.NewBuilderWithCapacity(d.alphabet, len(d.states)+1)
	for range d.states {
		b.AddState()
	}
	start := b.AddState()
	for _, s := range d.states {
		if s.terminal {
			if err := b.AddEpsilon(start, nfa.StateID(s.id)); err != nil {
				return nil, err
			}
		}
		for _, t := range s.transitions {
			if err := b.AddAccept(nfa.StateID(t.Target), nfa.StateID(s.id), t.Set); err != nil {
				return nil, err
			}
		}
	}
	if err := b.SetTerminal(nfa.StateID(d.start), true); err != nil {
		return nil, err
	}
	b.SetStart(start)
	return b.Build()
}

// String returns a human-readable listing of the DFA
func (d *DFA[T]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DFA{states: %d, start: %d}\n", len(d.states), d.start)
	for i := range d.states {
		s := &d.states[i]
		mark := " "
		if s.terminal {
			mark = "*"
		}
		fmt.Fprintf(&sb, "%s%d:", mark, s.id)
		for _, t := range s.transitions {
			fmt.Fprintf(&sb, " %v->%d", t.Set, t.Target)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
