package backtrack

import "fmt"

// Capture is one span of the input: Length values starting at Index.
type Capture[T any] struct {
	index  int
	length int
	value  []T
}

// Index returns the position of the first value.
func (c Capture[T]) Index() int { return c.index }

// Length returns the number of values.
func (c Capture[T]) Length() int { return c.length }

// End returns the position after the last value.
func (c Capture[T]) End() int { return c.index + c.length }

// Value returns the captured values. The slice aliases the input and must
// not be modified.
func (c Capture[T]) Value() []T { return c.value }

func (c Capture[T]) String() string {
	return fmt.Sprintf("[%d, %d)", c.index, c.index+c.length)
}

// Group is the result of one capture group. Its span is the group's last
// capture; Captures lists every capture the group made on the matching
// path, oldest first, minus those removed by balance pops.
type Group[T any] struct {
	Capture[T]
	name     string
	success  bool
	captures []Capture[T]
}

// Name returns the group name, or "" for unnamed groups.
func (g Group[T]) Name() string { return g.name }

// Success reports whether the group captured anything.
func (g Group[T]) Success() bool { return g.success }

// Captures returns the capture history of the group.
func (g Group[T]) Captures() []Capture[T] { return g.captures }

// Match is a successful match. Group 0 spans the whole match.
type Match[T any] struct {
	groups []Group[T]
}

// Index returns the position the match starts at.
func (m *Match[T]) Index() int { return m.groups[0].index }

// Length returns the number of values matched.
func (m *Match[T]) Length() int { return m.groups[0].length }

// End returns the position after the match.
func (m *Match[T]) End() int { return m.groups[0].End() }

// Value returns the matched values.
func (m *Match[T]) Value() []T { return m.groups[0].value }

// Groups returns all groups, group 0 first.
func (m *Match[T]) Groups() []Group[T] { return m.groups }

// Group returns group i. It panics when i is out of range.
func (m *Match[T]) Group(i int) Group[T] { return m.groups[i] }

// Named returns the group with the given name.
func (m *Match[T]) Named(name string) (Group[T], bool) {
	for _, g := range m.groups[1:] {
		if name != "" && g.name == name {
			return g, true
		}
	}
	return Group[T]{}, false
}

func (m *Match[T]) String() string {
	return fmt.Sprintf("Match%v", m.groups[0].Capture)
}
