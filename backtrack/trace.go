package backtrack

// Snapshot records the heights of both stacks.
type Snapshot struct {
	States   int
	Captures int
}

// BackTraceService couples the state and capture stacks: frames and the
// capture entries they created are always dropped together.
type BackTraceService struct {
	States   StateStack
	Captures CaptureStack
}

// Checkpoint returns the current stack heights.
func (b *BackTraceService) Checkpoint() Snapshot {
	return Snapshot{States: b.States.Len(), Captures: b.Captures.Len()}
}

// Restore truncates both stacks to a snapshot taken earlier on the same
// branch.
func (b *BackTraceService) Restore(s Snapshot) {
	b.States.Truncate(s.States)
	b.Captures.Truncate(s.Captures)
}

// Backtrack pops the top frame and discards the capture entries it owned.
func (b *BackTraceService) Backtrack() StateStackItem {
	top := b.States.Pop()
	b.Captures.Discard(b.States.Len())
	return top
}

// visit pushes a frame for state at pos.
func (b *BackTraceService) visit(item StateStackItem) {
	b.States.Push(item)
}

// record pushes a capture entry owned by the top frame.
func (b *BackTraceService) record(token Token, id, start, length int) {
	b.Captures.Push(CaptureStackItem{
		StateCount: b.States.Len(),
		Token:      token,
		ID:         id,
		Start:      start,
		Length:     length,
	})
}

// Reset empties both stacks, keeping their storage.
func (b *BackTraceService) Reset() {
	b.Restore(Snapshot{})
}
