package nfa

import (
	"fmt"

	"github.com/coregx/fsmregex/alphabet"
	"github.com/coregx/fsmregex/interval"
)

// StateID uniquely identifies an NFA state.
// This is a 32-bit unsigned integer for compact representation.
type StateID uint32

// InvalidState represents an invalid/uninitialized state ID
const InvalidState StateID = 0xFFFFFFFF

// TransitionKind is the closed set of transition types.
type TransitionKind uint8

const (
	// Epsilon moves to the target without consuming input.
	Epsilon TransitionKind = iota

	// Accept consumes one input value contained in the transition's set.
	Accept

	// Functional performs a side effect (capture bookkeeping, an identity
	// check, an assertion) without consuming input. Only the capture engine
	// interprets effects; automaton-level algorithms treat the capture and
	// repeat effects as epsilon.
	Functional

	// Backreference consumes the input last captured by a group.
	Backreference
)

// String returns a human-readable representation of the TransitionKind
func (k TransitionKind) String() string {
	switch k {
	case Epsilon:
		return "Epsilon"
	case Accept:
		return "Accept"
	case Functional:
		return "Functional"
	case Backreference:
		return "Backreference"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// EffectKind identifies what a functional transition does.
type EffectKind uint8

const (
	// CaptureStart opens a capture in slot ID at the current position.
	CaptureStart EffectKind = iota + 1

	// CaptureEnd closes the latest open capture of slot ID.
	CaptureEnd

	// RepeatEnter records the position an iteration of loop ID starts at.
	RepeatEnter

	// RepeatCheck fails when the current iteration of loop ID consumed
	// nothing, which stops empty iterations from looping forever.
	RepeatCheck

	// BalancePop removes the latest capture of balance slot ID and fails when
	// there is none.
	BalancePop

	// IDCheck succeeds when slot ID holds a capture (or, with Negate, when it
	// holds none).
	IDCheck

	// AssertBegin succeeds at the start of the input.
	AssertBegin

	// AssertEnd succeeds at the end of the input.
	AssertEnd

	// LookAhead runs the sub-automaton starting at Sub at the current
	// position and succeeds when it matches (or, with Negate, when it
	// does not).
	LookAhead
)

// String returns a human-readable representation of the EffectKind
func (k EffectKind) String() string {
	switch k {
	case CaptureStart:
		return "CaptureStart"
	case CaptureEnd:
		return "CaptureEnd"
	case RepeatEnter:
		return "RepeatEnter"
	case RepeatCheck:
		return "RepeatCheck"
	case BalancePop:
		return "BalancePop"
	case IDCheck:
		return "IDCheck"
	case AssertBegin:
		return "AssertBegin"
	case AssertEnd:
		return "AssertEnd"
	case LookAhead:
		return "LookAhead"
	default:
		return fmt.Sprintf("Effect(%d)", k)
	}
}

// IsRegular reports whether the effect leaves the accepted language
// unchanged, so automaton algorithms may treat it as epsilon.
func (k EffectKind) IsRegular() bool {
	switch k {
	case CaptureStart, CaptureEnd, RepeatEnter, RepeatCheck:
		return true
	}
	return false
}

// Effect is the side effect of a functional transition.
type Effect struct {
	Kind   EffectKind
	ID     int     // capture slot or loop index
	Negate bool    // IDCheck and LookAhead
	Sub    StateID // LookAhead sub-automaton start
}

// String returns a human-readable representation of the effect
func (e Effect) String() string {
	switch e.Kind {
	case AssertBegin, AssertEnd:
		return e.Kind.String()
	case LookAhead:
		return fmt.Sprintf("LookAhead(sub=%d, negate=%v)", e.Sub, e.Negate)
	case IDCheck:
		return fmt.Sprintf("IDCheck(%d, negate=%v)", e.ID, e.Negate)
	default:
		return fmt.Sprintf("%s(%d)", e.Kind, e.ID)
	}
}

// Transition is an edge of the automaton. Set is only meaningful for Accept,
// Effect only for Functional, Slot only for Backreference.
type Transition[T any] struct {
	Kind   TransitionKind
	Target StateID
	Set    *interval.RangeSet[T]
	Effect Effect
	Slot   int
}

// Consumes reports whether taking the transition reads input.
func (t *Transition[T]) Consumes() bool {
	return t.Kind == Accept || t.Kind == Backreference
}

// Accepts reports whether an Accept transition admits v.
func (t *Transition[T]) Accepts(v T) bool {
	return t.Kind == Accept && t.Set.Contains(v)
}

// String returns a human-readable representation of the transition
func (t *Transition[T]) String() string {
	switch t.Kind {
	case Accept:
		return fmt.Sprintf("%v -> %d", t.Set, t.Target)
	case Functional:
		return fmt.Sprintf("%v -> %d", t.Effect, t.Target)
	case Backreference:
		return fmt.Sprintf("\\%d -> %d", t.Slot, t.Target)
	default:
		return fmt.Sprintf("ε -> %d", t.Target)
	}
}

// State represents a single NFA state with its outgoing transitions.
type State[T any] struct {
	id          StateID
	terminal    bool
	transitions []Transition[T]
}

// ID returns the state's unique identifier
func (s *State[T]) ID() StateID {
	return s.id
}

// IsTerminal returns true if reaching this state completes a match
func (s *State[T]) IsTerminal() bool {
	return s.terminal
}

// Transitions returns the outgoing transitions in traversal order:
// non-consuming transitions first, each group in insertion order.
// The returned slice must not be modified.
func (s *State[T]) Transitions() []Transition[T] {
	return s.transitions
}

// String returns a human-readable representation of the state
func (s *State[T]) String() string {
	if s.terminal {
		return fmt.Sprintf("State(%d, terminal, %d transitions)", s.id, len(s.transitions))
	}
	return fmt.Sprintf("State(%d, %d transitions)", s.id, len(s.transitions))
}

// NFA is a Thompson-style automaton over the alphabet T.
//
// States live in one arena and are referenced by StateID. An NFA is
// immutable once built and safe for concurrent use.
type NFA[T any] struct {
	alphabet alphabet.Alphabet[T]
	states   []State[T]
	start    StateID

	// groups names every capture slot. Slot 0 is the whole match; slots
	// 1..numGroups-1 are pattern groups; the remaining slots belong to
	// balance groups and are not reported in matches.
	groups    []string
	numGroups int

	loops   int
	regular bool
	simple  bool
}

// Alphabet returns the alphabet the NFA was built over.
func (n *NFA[T]) Alphabet() alphabet.Alphabet[T] {
	return n.alphabet
}

// Start returns the start state.
func (n *NFA[T]) Start() StateID {
	return n.start
}

// State returns the state with the given ID.
// Returns nil if the ID is invalid.
func (n *NFA[T]) State(id StateID) *State[T] {
	if int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}

// States returns the total number of states in the NFA
func (n *NFA[T]) States() int {
	return len(n.states)
}

// IsTerminal returns true if the given state completes a match
func (n *NFA[T]) IsTerminal(id StateID) bool {
	if s := n.State(id); s != nil {
		return s.terminal
	}
	return false
}

// NumGroups returns the number of reported groups, including group 0.
func (n *NFA[T]) NumGroups() int {
	return n.numGroups
}

// Slots returns the number of capture slots, balance slots included.
func (n *NFA[T]) Slots() int {
	return len(n.groups)
}

// GroupNames returns the names of the reported groups; unnamed groups and
// group 0 have the empty name.
func (n *NFA[T]) GroupNames() []string {
	return append([]string(nil), n.groups[:n.numGroups]...)
}

// GroupIndex returns the slot of the named group, or -1.
func (n *NFA[T]) GroupIndex(name string) int {
	for i, g := range n.groups[:n.numGroups] {
		if name != "" && g == name {
			return i
		}
	}
	return -1
}

// Loops returns the number of unbounded repetitions, i.e. loop indices.
func (n *NFA[T]) Loops() int {
	return n.loops
}

// IsRegular reports whether every transition is an epsilon, an accept or a
// regular effect, i.e. whether the NFA can be determinized.
func (n *NFA[T]) IsRegular() bool {
	return n.regular
}

// IsSimple reports whether the NFA is regular apart from begin/end
// anchors, which Accepts resolves by position.
func (n *NFA[T]) IsSimple() bool {
	return n.simple
}

// String returns a human-readable representation of the NFA
func (n *NFA[T]) String() string {
	return fmt.Sprintf("NFA{states: %d, start: %d, groups: %d, loops: %d, regular: %v}",
		len(n.states), n.start, n.numGroups, n.loops, n.regular)
}
