package backtrack

import (
	"fmt"

	"github.com/coregx/fsmregex/nfa"
)

// StateStackItem is one visit of an NFA state: the point execution returns
// to when a later choice fails.
type StateStackItem struct {
	FSM   int         // 0 for the main automaton, nesting depth inside lookaheads
	State nfa.StateID // the state visited
	Pos   int         // input position at the visit
	Next  int         // index of the next ordered transition to try
}

// StateStack reifies the search tree of the backtracking executor.
type StateStack struct {
	items []StateStackItem
}

// Push adds a frame.
func (s *StateStack) Push(item StateStackItem) {
	s.items = append(s.items, item)
}

// Pop removes the top frame. It panics on an empty stack.
func (s *StateStack) Pop() StateStackItem {
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top
}

// Top returns the top frame for in-place updates.
func (s *StateStack) Top() *StateStackItem {
	return &s.items[len(s.items)-1]
}

// Len returns the number of frames.
func (s *StateStack) Len() int { return len(s.items) }

// Truncate drops frames until n remain.
func (s *StateStack) Truncate(n int) {
	s.items = s.items[:n]
}

// Items returns the frames bottom to top. The slice must not be modified.
func (s *StateStack) Items() []StateStackItem { return s.items }

// Token is the kind of a capture stack entry.
type Token uint8

const (
	// Open starts a capture of slot ID at Start.
	Open Token = iota + 1
	// Close completes a capture of slot ID spanning [Start, Start+Length).
	Close
	// Mark records that an iteration of loop ID began at Start.
	Mark
	// Drop removes the latest live capture of slot ID.
	Drop
)

func (t Token) String() string {
	switch t {
	case Open:
		return "Open"
	case Close:
		return "Close"
	case Mark:
		return "Mark"
	case Drop:
		return "Drop"
	default:
		return fmt.Sprintf("Token(%d)", t)
	}
}

// CaptureStackItem is one capture bookkeeping entry. It is valid while the
// state stack holds at least StateCount frames.
type CaptureStackItem struct {
	StateCount int
	Token      Token
	ID         int
	Start      int
	Length     int
}

// CaptureStack holds the capture entries of the current search branch.
type CaptureStack struct {
	items []CaptureStackItem
}

// Push adds an entry.
func (s *CaptureStack) Push(item CaptureStackItem) {
	s.items = append(s.items, item)
}

// Len returns the number of entries.
func (s *CaptureStack) Len() int { return len(s.items) }

// Truncate drops entries until n remain.
func (s *CaptureStack) Truncate(n int) {
	s.items = s.items[:n]
}

// Discard drops the entries pushed by frames above the first stateCount
// state frames.
func (s *CaptureStack) Discard(stateCount int) {
	n := len(s.items)
	for n > 0 && s.items[n-1].StateCount > stateCount {
		n--
	}
	s.items = s.items[:n]
}

// Items returns the entries bottom to top. The slice must not be modified.
func (s *CaptureStack) Items() []CaptureStackItem { return s.items }

// open returns the latest Open entry of slot.
func (s *CaptureStack) open(slot int) (CaptureStackItem, bool) {
	for i := len(s.items) - 1; i >= 0; i-- {
		if it := s.items[i]; it.Token == Open && it.ID == slot {
			return it, true
		}
	}
	return CaptureStackItem{}, false
}

// mark returns the latest Mark entry of loop.
func (s *CaptureStack) mark(loop int) (CaptureStackItem, bool) {
	for i := len(s.items) - 1; i >= 0; i-- {
		if it := s.items[i]; it.Token == Mark && it.ID == loop {
			return it, true
		}
	}
	return CaptureStackItem{}, false
}

// last returns the latest Close entry of slot that no Drop removed.
func (s *CaptureStack) last(slot int) (CaptureStackItem, bool) {
	drops := 0
	for i := len(s.items) - 1; i >= 0; i-- {
		it := s.items[i]
		if it.ID != slot {
			continue
		}
		switch it.Token {
		case Drop:
			drops++
		case Close:
			if drops == 0 {
				return it, true
			}
			drops--
		}
	}
	return CaptureStackItem{}, false
}

// captures returns the live Close entries per slot, oldest first.
func (s *CaptureStack) captures(slots int) [][]CaptureStackItem {
	out := make([][]CaptureStackItem, slots)
	for _, it := range s.items {
		if it.ID >= slots {
			continue
		}
		switch it.Token {
		case Close:
			out[it.ID] = append(out[it.ID], it)
		case Drop:
			if n := len(out[it.ID]); n > 0 {
				out[it.ID] = out[it.ID][:n-1]
			}
		}
	}
	return out
}
