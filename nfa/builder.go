package nfa

import (
	"fmt"
	"slices"

	"github.com/coregx/fsmregex/alphabet"
	"github.com/coregx/fsmregex/internal/conv"
	"github.com/coregx/fsmregex/interval"
)

// Builder constructs NFAs incrementally using a low-level API.
// This provides full control over NFA construction and is used by the Compiler.
type Builder[T any] struct {
	alphabet  alphabet.Alphabet[T]
	states    []State[T]
	start     StateID
	maxStates int

	groups    []string
	numGroups int
	loops     int
}

// NewBuilder creates a new NFA builder over the given alphabet
func NewBuilder[T any](a alphabet.Alphabet[T]) *Builder[T] {
	return NewBuilderWithCapacity(a, 16)
}

// NewBuilderWithCapacity creates a new NFA builder with specified initial capacity
func NewBuilderWithCapacity[T any](a alphabet.Alphabet[T], capacity int) *Builder[T] {
	return &Builder[T]{
		alphabet:  a,
		states:    make([]State[T], 0, capacity),
		start:     InvalidState,
		groups:    []string{""},
		numGroups: 1,
	}
}

// SetMaxStates limits the number of states; 0 means unlimited.
func (b *Builder[T]) SetMaxStates(n int) {
	b.maxStates = n
}

// AddState adds a state with no transitions and returns its ID.
// Returns InvalidState once the state limit is reached.
func (b *Builder[T]) AddState() StateID {
	if b.maxStates > 0 && len(b.states) >= b.maxStates {
		return InvalidState
	}
	id := conv.ToID[StateID](len(b.states))
	b.states = append(b.states, State[T]{id: id})
	return id
}

// States returns the current number of states
func (b *Builder[T]) States() int {
	return len(b.states)
}

func (b *Builder[T]) state(id StateID) (*State[T], error) {
	if int(id) >= len(b.states) {
		return nil, &BuildError{Message: "state ID out of bounds", StateID: id}
	}
	return &b.states[id], nil
}

func (b *Builder[T]) attach(from StateID, t Transition[T]) error {
	s, err := b.state(from)
	if err != nil {
		return err
	}
	if int(t.Target) >= len(b.states) {
		return &BuildError{
			Message: fmt.Sprintf("invalid target state %d", t.Target),
			StateID: from,
		}
	}
	s.transitions = append(s.transitions, t)
	return nil
}

// AddEpsilon adds an epsilon transition from -> to.
func (b *Builder[T]) AddEpsilon(from, to StateID) error {
	return b.attach(from, Transition[T]{Kind: Epsilon, Target: to})
}

// AddAccept adds a transition consuming one value of set. The set is
// intersected with the alphabet's accredited set.
func (b *Builder[T]) AddAccept(from, to StateID, set *interval.RangeSet[T]) error {
	if set == nil {
		set = interval.NewSet[T](b.alphabet)
	}
	return b.attach(from, Transition[T]{
		Kind:   Accept,
		Target: to,
		Set:    set.Intersect(b.alphabet.Accredited()),
	})
}

// AddFunctional adds a non-consuming transition carrying an effect.
func (b *Builder[T]) AddFunctional(from, to StateID, e Effect) error {
	if e.Kind == 0 {
		return &BuildError{Message: "functional transition without effect", StateID: from}
	}
	return b.attach(from, Transition[T]{Kind: Functional, Target: to, Effect: e})
}

// AddBackreference adds a transition consuming the input last captured in
// slot.
func (b *Builder[T]) AddBackreference(from, to StateID, slot int) error {
	return b.attach(from, Transition[T]{Kind: Backreference, Target: to, Slot: slot})
}

// SetTerminal marks or unmarks a state as terminal.
func (b *Builder[T]) SetTerminal(id StateID, terminal bool) error {
	s, err := b.state(id)
	if err != nil {
		return err
	}
	s.terminal = terminal
	return nil
}

// SetStart sets the starting state for the NFA
func (b *Builder[T]) SetStart(start StateID) {
	b.start = start
}

// AddGroup allocates a capture slot and returns its index. Reported groups
// must all be added before any balance slot.
func (b *Builder[T]) AddGroup(name string, reported bool) int {
	b.groups = append(b.groups, name)
	if reported {
		b.numGroups = len(b.groups)
	}
	return len(b.groups) - 1
}

// AddLoop allocates a loop index for RepeatEnter/RepeatCheck effects.
func (b *Builder[T]) AddLoop() int {
	b.loops++
	return b.loops - 1
}

// Validate checks that the NFA is well-formed:
// - Start state is valid
// - All state references point to valid states
// - Effects reference existing slots, loops and sub-automata
func (b *Builder[T]) Validate() error {
	if b.start == InvalidState {
		return &BuildError{Message: "start state not set", StateID: InvalidState}
	}
	if int(b.start) >= len(b.states) {
		return &BuildError{Message: "start state out of bounds", StateID: b.start}
	}
	for i := range b.states {
		s := &b.states[i]
		for _, t := range s.transitions {
			if int(t.Target) >= len(b.states) {
				return &BuildError{Message: fmt.Sprintf("invalid target state %d", t.Target), StateID: s.id}
			}
			switch t.Kind {
			case Functional:
				if err := b.validateEffect(s.id, t.Effect); err != nil {
					return err
				}
			case Backreference:
				if t.Slot <= 0 || t.Slot >= len(b.groups) {
					return &BuildError{Message: fmt.Sprintf("backreference to unknown slot %d", t.Slot), StateID: s.id}
				}
			}
		}
	}
	return nil
}

func (b *Builder[T]) validateEffect(id StateID, e Effect) error {
	switch e.Kind {
	case CaptureStart, CaptureEnd, BalancePop, IDCheck:
		if e.ID <= 0 || e.ID >= len(b.groups) {
			return &BuildError{Message: fmt.Sprintf("%v references unknown slot", e), StateID: id}
		}
	case RepeatEnter, RepeatCheck:
		if e.ID < 0 || e.ID >= b.loops {
			return &BuildError{Message: fmt.Sprintf("%v references unknown loop", e), StateID: id}
		}
	case LookAhead:
		if int(e.Sub) >= len(b.states) {
			return &BuildError{Message: fmt.Sprintf("%v references unknown state", e), StateID: id}
		}
	}
	return nil
}

// Build validates the graph and returns the immutable NFA. Transitions are
// put in traversal order: non-consuming first, each group keeping insertion
// order.
func (b *Builder[T]) Build() (*NFA[T], error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	states := make([]State[T], len(b.states))
	regular, simple := true, true
	for i, s := range b.states {
		ts := slices.Clone(s.transitions)
		slices.SortStableFunc(ts, func(x, y Transition[T]) int {
			return boolOrder(x.Consumes()) - boolOrder(y.Consumes())
		})
		for _, t := range ts {
			switch {
			case t.Kind == Backreference:
				regular, simple = false, false
			case t.Kind != Functional || t.Effect.Kind.IsRegular():
			case t.Effect.Kind == AssertBegin || t.Effect.Kind == AssertEnd:
				regular = false
			default:
				regular, simple = false, false
			}
		}
		states[i] = State[T]{id: s.id, terminal: s.terminal, transitions: ts}
	}
	return &NFA[T]{
		alphabet:  b.alphabet,
		states:    states,
		start:     b.start,
		groups:    slices.Clone(b.groups),
		numGroups: b.numGroups,
		loops:     b.loops,
		regular:   regular,
		simple:    simple,
	}, nil
}

func boolOrder(b bool) int {
	if b {
		return 1
	}
	return 0
}
