package dfa

import (
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/coregx/fsmregex/alphabet"
	"github.com/coregx/fsmregex/internal/conv"
	"github.com/coregx/fsmregex/interval"
	"github.com/coregx/fsmregex/nfa"
)

// StateID uniquely identifies a DFA state within its automaton.
type StateID uint32

// InvalidState represents an invalid/uninitialized state ID
const InvalidState StateID = 0xFFFFFFFF

// Transition consumes one value of Set and moves to Target.
type Transition[T any] struct {
	Set    *interval.RangeSet[T]
	Target StateID
}

// State is a DFA state. The sets of its transitions are pairwise disjoint.
type State[T any] struct {
	id          StateID
	terminal    bool
	transitions []Transition[T]

	// nfaStates is the sorted set of important NFA states this state
	// stands for.
	// Empty for hand-built automata.
	nfaStates []nfa.StateID
}

// ID returns the state's identifier
func (s *State[T]) ID() StateID { return s.id }

// IsTerminal returns true if this state accepts
func (s *State[T]) IsTerminal() bool { return s.terminal }

// Transitions returns the outgoing transitions.
// The returned slice must not be modified.
func (s *State[T]) Transitions() []Transition[T] { return s.transitions }

// NFAStates returns the NFA states this DFA state was built from.
func (s *State[T]) NFAStates() []nfa.StateID { return s.nfaStates }

// String returns a human-readable representation of the state
func (s *State[T]) String() string {
	if s.terminal {
		return fmt.Sprintf("State(%d, terminal, %d transitions)", s.id, len(s.transitions))
	}
	return fmt.Sprintf("State(%d, %d transitions)", s.id, len(s.transitions))
}

// attach adds a transition to the state. A nil set stands for an epsilon
// transition. Attaching an epsilon, or a set overlapping an existing
// transition, breaks determinism and panics.
func (s *State[T]) attach(set *interval.RangeSet[T], target StateID) {
	if set == nil {
		panic(fmt.Sprintf("dfa: epsilon transition attached to state %d", s.id))
	}
	for _, t := range s.transitions {
		if t.Set.Overlaps(set) {
			panic(fmt.Sprintf("dfa: state %d: transition %v -> %d overlaps %v -> %d",
				s.id, set, target, t.Set, t.Target))
		}
	}
	s.transitions = append(s.transitions, Transition[T]{Set: set, Target: target})
}

// StateKey is a hash of a sorted NFA state set, used to find DFA states
// that stand for the same set.
type StateKey uint64

// ComputeStateKey computes a hash-based key for a set of NFA states.
//
// The key must be consistent: the same set of NFA states (regardless of order)
// should produce the same key. We achieve this by sorting the states before hashing.
//
// This uses FNV-1a hash for speed and decent distribution.
func ComputeStateKey(nfaStates []nfa.StateID) StateKey {
	if len(nfaStates) == 0 {
		return StateKey(0)
	}
	sorted := nfaStates
	if !slices.IsSorted(sorted) {
		sorted = slices.Clone(nfaStates)
		slices.Sort(sorted)
	}

	h := fnv.New64a()
	buf := make([]byte, 0, 4*len(sorted))
	for _, sid := range sorted {
		buf = append(buf, byte(sid), byte(sid>>8), byte(sid>>16), byte(sid>>24))
	}
	// hash.Hash.Write never returns an error per documentation
	_, _ = h.Write(buf)
	return StateKey(h.Sum64())
}

// Builder assembles a DFA state by state. It enforces the determinism
// invariant as transitions are added.
type Builder[T any] struct {
	alphabet alphabet.Alphabet[T]
	states   []State[T]
}

// NewBuilder creates a builder for a DFA over a.
func NewBuilder[T any](a alphabet.Alphabet[T]) *Builder[T] {
	return &Builder[T]{alphabet: a}
}

// AddState adds a state and returns its ID.
func (b *Builder[T]) AddState(terminal bool) StateID {
	id := conv.ToID[StateID](len(b.states))
	b.states = append(b.states, State[T]{id: id, terminal: terminal})
	return id
}

// States returns the number of states added so far.
func (b *Builder[T]) States() int {
	return len(b.states)
}

// AddTransition adds a transition consuming set. The set is intersected
// with the accredited set; transitions left empty are dropped. It panics
// when set is nil (an epsilon transition), when either state is unknown, or
// when set overlaps another transition leaving from.
func (b *Builder[T]) AddTransition(from, to StateID, set *interval.RangeSet[T]) {
	if int(from) >= len(b.states) || int(to) >= len(b.states) {
		panic(fmt.Sprintf("dfa: transition %d -> %d references unknown state", from, to))
	}
	if set != nil {
		set = set.Intersect(b.alphabet.Accredited())
		if set.IsEmpty() {
			return
		}
	}
	b.states[from].attach(set, to)
}

// Build returns the DFA starting at start.
func (b *Builder[T]) Build(start StateID) *DFA[T] {
	if int(start) >= len(b.states) {
		panic(fmt.Sprintf("dfa: unknown start state %d", start))
	}
	return &DFA[T]{alphabet: b.alphabet, states: b.states, start: start}
}
