package nfa

import (
	"github.com/coregx/fsmregex/internal/sparse"
)

// Closure returns the sorted set of states reachable from ids through
// epsilon transitions and regular effects, ids included.
func (n *NFA[T]) Closure(ids ...StateID) []StateID {
	set := sparse.New[StateID](len(n.states))
	n.closure(set, nil, ids, func(Effect) bool { return false })
	return set.Sorted()
}

// closure extends set with everything reachable from ids without consuming
// input. Functional transitions with irregular effects are followed when
// pass approves them. stack is scratch space and is returned for reuse.
func (n *NFA[T]) closure(set *sparse.Set[StateID], stack, ids []StateID, pass func(Effect) bool) []StateID {
	stack = stack[:0]
	for _, id := range ids {
		if set.Insert(id) {
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range n.states[id].transitions {
			switch t.Kind {
			case Epsilon:
			case Functional:
				if !t.Effect.Kind.IsRegular() && !pass(t.Effect) {
					continue
				}
			default:
				continue
			}
			if set.Insert(t.Target) {
				stack = append(stack, t.Target)
			}
		}
	}
	return stack
}

// Accepts reports whether the whole input is in the NFA's language,
// simulating all paths at once. Capture and repeat effects act as epsilon;
// anchors hold at the ends of the input. It fails with ErrNotRegular when the
// NFA uses backreferences, lookaheads or balance groups.
func (n *NFA[T]) Accepts(input []T) (bool, error) {
	if !n.simple {
		return false, ErrNotRegular
	}
	cur := sparse.New[StateID](len(n.states))
	next := sparse.New[StateID](len(n.states))
	var stack, targets []StateID

	anchors := func(pos int) func(Effect) bool {
		return func(e Effect) bool {
			switch e.Kind {
			case AssertBegin:
				return pos == 0
			case AssertEnd:
				return pos == len(input)
			}
			return false
		}
	}

	stack = n.closure(cur, stack, []StateID{n.start}, anchors(0))
	for i, v := range input {
		targets = targets[:0]
		for _, id := range cur.Values() {
			for _, t := range n.states[id].transitions {
				if t.Accepts(v) {
					targets = append(targets, t.Target)
				}
			}
		}
		if len(targets) == 0 {
			return false, nil
		}
		next.Clear()
		stack = n.closure(next, stack, targets, anchors(i+1))
		cur, next = next, cur
	}
	for _, id := range cur.Values() {
		if n.states[id].terminal {
			return true, nil
		}
	}
	return false, nil
}
