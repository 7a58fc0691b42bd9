package backtrack

import (
	"context"
	"fmt"

	"github.com/coregx/fsmregex/input"
	"github.com/coregx/fsmregex/nfa"
)

// Config configures the backtracking executor.
type Config struct {
	// MaxSteps bounds the number of transitions tried per search, across all
	// start positions. 0 means unlimited.
	// Default: 10,000,000
	MaxSteps int

	// CheckInterval is the number of steps between context checks.
	// Default: 1024
	CheckInterval int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxSteps:      10_000_000,
		CheckInterval: 1024,
	}
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: MaxSteps must be >= 0, got %d", ErrInvalidConfig, c.MaxSteps)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: CheckInterval must be > 0, got %d", ErrInvalidConfig, c.CheckInterval)
	}
	return nil
}

// Machine executes one NFA against readers. Matches follow leftmost-first
// priority: the first accepting path in transition order wins, so greedy
// and lazy repeats and alternation order behave as in backtracking regex
// engines.
//
// A Machine holds per-search state and must not be shared between
// goroutines; the NFA it runs may be.
type Machine[T any] struct {
	nfa    *nfa.NFA[T]
	config Config
	trace  BackTraceService

	ctx        context.Context
	r          input.Reader[T]
	steps      int
	requireEnd bool
}

// NewMachine creates an executor for n.
func NewMachine[T any](n *nfa.NFA[T], config Config) *Machine[T] {
	if config.CheckInterval <= 0 {
		config.CheckInterval = 1024
	}
	return &Machine[T]{nfa: n, config: config}
}

// NFA returns the automaton the machine runs.
func (m *Machine[T]) NFA() *nfa.NFA[T] { return m.nfa }

// Trace exposes the machine's stacks. Between searches both are empty.
func (m *Machine[T]) Trace() *BackTraceService { return &m.trace }

func (m *Machine[T]) begin(ctx context.Context, r input.Reader[T], requireEnd bool) {
	m.ctx, m.r, m.requireEnd = ctx, r, requireEnd
	m.steps = 0
	m.trace.Reset()
}

func (m *Machine[T]) end() {
	m.trace.Reset()
	m.ctx, m.r = nil, nil
}

// MatchAt attempts a match starting exactly at pos. It returns nil when
// there is none.
func (m *Machine[T]) MatchAt(ctx context.Context, r input.Reader[T], pos int) (*Match[T], error) {
	m.begin(ctx, r, false)
	defer m.end()
	return m.attempt(pos)
}

// MatchExact reports a match only when it starts at pos and reaches the end
// of the input.
func (m *Machine[T]) MatchExact(ctx context.Context, r input.Reader[T], pos int) (*Match[T], error) {
	m.begin(ctx, r, true)
	defer m.end()
	return m.attempt(pos)
}

// releaser is implemented by readers that can drop consumed history.
type releaser interface {
	Release(pos int)
}

// Find returns the leftmost match starting at or after the reader's
// current position, or nil. Readers with a Release method drop the history
// before each start position tried.
func (m *Machine[T]) Find(ctx context.Context, r input.Reader[T]) (*Match[T], error) {
	m.begin(ctx, r, false)
	defer m.end()

	rel, _ := r.(releaser)
	for start := r.Pos(); ; start++ {
		if rel != nil {
			rel.Release(start)
		}
		match, err := m.attempt(start)
		if match != nil || err != nil {
			return match, err
		}
		r.Rollback(start)
		if _, ok := r.Read(); !ok {
			return nil, nil
		}
	}
}

func (m *Machine[T]) attempt(start int) (*Match[T], error) {
	m.trace.Reset()
	end, ok, err := m.run(m.nfa.Start(), start, 0)
	if err != nil || !ok {
		m.trace.Reset()
		return nil, err
	}
	match := m.match(start, end)
	m.trace.Reset()
	m.r.Rollback(end)
	return match, nil
}

// run searches from state at pos until a terminal state accepts. On
// success the frames of the accepting path stay on the stack; on failure
// the stacks are back at their height on entry.
func (m *Machine[T]) run(state nfa.StateID, pos, fsm int) (end int, ok bool, err error) {
	states := &m.trace.States
	base := states.Len()
	m.trace.visit(StateStackItem{FSM: fsm, State: state, Pos: pos})

	for states.Len() > base {
		if err := m.tick(); err != nil {
			return 0, false, err
		}
		top := states.Top()
		s := m.nfa.State(top.State)
		if top.Next == 0 && s.IsTerminal() && (fsm > 0 || !m.requireEnd || m.atEnd(top.Pos)) {
			return top.Pos, true, nil
		}
		ts := s.Transitions()
		if top.Next >= len(ts) {
			m.trace.Backtrack()
			continue
		}
		t := &ts[top.Next]
		top.Next++
		if err := m.take(t, top.Pos, fsm); err != nil {
			return 0, false, err
		}
	}
	return 0, false, nil
}

func (m *Machine[T]) tick() error {
	m.steps++
	if m.config.MaxSteps > 0 && m.steps > m.config.MaxSteps {
		return fmt.Errorf("%w: %d steps", ErrStepLimitExceeded, m.config.MaxSteps)
	}
	if m.ctx != nil && m.steps%m.config.CheckInterval == 0 {
		if err := m.ctx.Err(); err != nil {
			return fmt.Errorf("backtrack: search cancelled: %w", err)
		}
	}
	return nil
}

func (m *Machine[T]) atEnd(pos int) bool {
	m.r.Rollback(pos)
	_, ok := m.r.Peek()
	return !ok
}

// take tries t from a frame at pos. A transition that fails pushes nothing;
// the caller then moves on to the frame's next transition.
func (m *Machine[T]) take(t *nfa.Transition[T], pos, fsm int) error {
	next := StateStackItem{FSM: fsm, State: t.Target, Pos: pos}
	switch t.Kind {
	case nfa.Epsilon:
		m.trace.visit(next)
	case nfa.Accept:
		m.r.Rollback(pos)
		if v, ok := m.r.Read(); ok && t.Set.Contains(v) {
			next.Pos++
			m.trace.visit(next)
		}
	case nfa.Backreference:
		if n, ok := m.backreference(t.Slot, pos); ok {
			next.Pos += n
			m.trace.visit(next)
		}
	case nfa.Functional:
		cp := m.trace.Checkpoint()
		ok, err := m.apply(t.Effect, next)
		if err != nil {
			return err
		}
		if !ok {
			m.trace.Restore(cp)
		}
	}
	return nil
}

// apply performs a functional effect and, on success, visits next.
func (m *Machine[T]) apply(e nfa.Effect, next StateStackItem) (bool, error) {
	pos := next.Pos
	caps := &m.trace.Captures
	switch e.Kind {
	case nfa.CaptureStart:
		m.trace.visit(next)
		m.trace.record(Open, e.ID, pos, 0)
	case nfa.CaptureEnd:
		open, ok := caps.open(e.ID)
		if !ok {
			return false, nil
		}
		m.trace.visit(next)
		m.trace.record(Close, e.ID, open.Start, pos-open.Start)
	case nfa.RepeatEnter:
		m.trace.visit(next)
		m.trace.record(Mark, e.ID, pos, 0)
	case nfa.RepeatCheck:
		if mark, ok := caps.mark(e.ID); ok && mark.Start == pos {
			return false, nil
		}
		m.trace.visit(next)
	case nfa.BalancePop:
		if _, ok := caps.last(e.ID); !ok {
			return false, nil
		}
		m.trace.visit(next)
		m.trace.record(Drop, e.ID, pos, 0)
	case nfa.IDCheck:
		_, ok := caps.last(e.ID)
		if ok == e.Negate {
			return false, nil
		}
		m.trace.visit(next)
	case nfa.AssertBegin:
		if pos != 0 {
			return false, nil
		}
		m.trace.visit(next)
	case nfa.AssertEnd:
		if !m.atEnd(pos) {
			return false, nil
		}
		m.trace.visit(next)
	case nfa.LookAhead:
		ok, err := m.look(e.Sub, pos, next.FSM+1)
		if err != nil || ok == e.Negate {
			return false, err
		}
		m.trace.visit(next)
	default:
		return false, fmt.Errorf("backtrack: unknown effect %v", e)
	}
	return true, nil
}

// look runs a lookahead body as an atomic nested search on the same stacks.
// Whatever it matched, its frames and captures are discarded.
func (m *Machine[T]) look(sub nfa.StateID, pos, fsm int) (bool, error) {
	cp := m.trace.Checkpoint()
	_, ok, err := m.run(sub, pos, fsm)
	m.trace.Restore(cp)
	return ok, err
}

// backreference compares the input at pos with the latest capture of slot
// and returns the number of values matched.
func (m *Machine[T]) backreference(slot, pos int) (int, bool) {
	c, ok := m.trace.Captures.last(slot)
	if !ok {
		return 0, false
	}
	want := m.r.Slice(c.Start, c.Start+c.Length)
	info := m.nfa.Alphabet()
	m.r.Rollback(pos)
	for _, w := range want {
		v, ok := m.r.Read()
		if !ok || info.Compare(v, w) != 0 {
			return 0, false
		}
	}
	return len(want), true
}

// match builds the result from the accepting path's capture entries.
func (m *Machine[T]) match(start, end int) *Match[T] {
	names := m.nfa.GroupNames()
	perSlot := m.trace.Captures.captures(len(names))
	groups := make([]Group[T], len(names))
	groups[0] = Group[T]{
		Capture: m.capture(start, end-start),
		success: true,
	}
	groups[0].captures = []Capture[T]{groups[0].Capture}
	for slot := 1; slot < len(names); slot++ {
		g := Group[T]{name: names[slot]}
		for _, it := range perSlot[slot] {
			g.captures = append(g.captures, m.capture(it.Start, it.Length))
		}
		if n := len(g.captures); n > 0 {
			g.Capture = g.captures[n-1]
			g.success = true
		}
		groups[slot] = g
	}
	return &Match[T]{groups: groups}
}

func (m *Machine[T]) capture(index, length int) Capture[T] {
	return Capture[T]{index: index, length: length, value: m.r.Slice(index, index+length)}
}
