// Package ast defines the pattern tree the compiler consumes.
//
// The node set is closed: Node has an unexported method, and the compiler
// dispatches with a type switch over the concrete types below. Every node is
// generic over the alphabet type T so a tree can only be compiled against an
// alphabet of the same type.
package ast

import (
	"fmt"
	"strings"

	"github.com/coregx/fsmregex/interval"
)

// Unbounded is the Repeat.Max value for repetitions with no upper bound.
const Unbounded = -1

// Node is a pattern tree node.
type Node[T any] interface {
	fmt.Stringer
	node(T)
}

// Const matches exactly one value.
type Const[T any] struct {
	Value T
}

// Range matches one value inside the given bounds.
type Range[T any] struct {
	Min, Max   T
	CanTakeMin bool
	CanTakeMax bool
}

// Set matches one value of a precomputed set.
type Set[T any] struct {
	Values *interval.RangeSet[T]
}

// Condition matches one value satisfying Pred. The predicate is evaluated
// once per accredited value at compile time.
type Condition[T any] struct {
	Name string
	Pred func(T) bool
}

// Series matches its items one after another.
type Series[T any] struct {
	Items []Node[T]
}

// Parallels matches any one of its items; earlier items have priority.
type Parallels[T any] struct {
	Items []Node[T]
}

// Repeat matches Inner between Min and Max times (Max may be Unbounded).
// Greedy repeats prefer more iterations; Lazy ones prefer fewer.
type Repeat[T any] struct {
	Inner Node[T]
	Min   int
	Max   int
	Lazy  bool
}

// Group wraps Inner. A captive group records the span Inner matched; groups
// with the same non-empty Name share one capture slot.
type Group[T any] struct {
	Inner   Node[T]
	Name    string
	Captive bool
}

// Backreference matches the input last captured by a group, referenced by
// Name or, when Name is empty, by Index (1-based, in order of appearance).
type Backreference[T any] struct {
	Name  string
	Index int
}

// AnchorKind selects the position an Anchor asserts.
type AnchorKind uint8

const (
	// Begin asserts the start of the input.
	Begin AnchorKind = iota
	// End asserts the end of the input.
	End
)

// Anchor is a zero-width assertion about the input position.
type Anchor[T any] struct {
	Kind AnchorKind
}

// Look is a zero-width lookahead: it succeeds when Inner matches (or, with
// Negate, does not match) at the current position, without consuming input.
type Look[T any] struct {
	Inner  Node[T]
	Negate bool
}

// Balance wraps Inner in the balance-group role Item was bound to in
// Registry. An opening item pushes the span it matched onto its group; a
// closing item pops the group's latest span and fails when there is none.
type Balance[T any] struct {
	Inner    Node[T]
	Registry *Balances
	Item     BalanceItemID
}

// BalanceCheck asserts that Group's stack is empty (Empty) or not.
type BalanceCheck[T any] struct {
	Registry *Balances
	Group    BalanceGroupID
	Empty    bool
}

func (Const[T]) node(T)         {}
func (Range[T]) node(T)         {}
func (Set[T]) node(T)           {}
func (Condition[T]) node(T)     {}
func (Series[T]) node(T)        {}
func (Parallels[T]) node(T)     {}
func (Repeat[T]) node(T)        {}
func (Group[T]) node(T)         {}
func (Backreference[T]) node(T) {}
func (Anchor[T]) node(T)        {}
func (Look[T]) node(T)          {}
func (Balance[T]) node(T)       {}
func (BalanceCheck[T]) node(T)  {}

func (n Const[T]) String() string { return fmt.Sprintf("Const(%v)", n.Value) }

func (n Range[T]) String() string {
	open, end := "(", ")"
	if n.CanTakeMin {
		open = "["
	}
	if n.CanTakeMax {
		end = "]"
	}
	return fmt.Sprintf("Range%s%v, %v%s", open, n.Min, n.Max, end)
}

func (n Set[T]) String() string {
	if n.Values == nil {
		return "Set{}"
	}
	return "Set" + n.Values.String()
}

func (n Condition[T]) String() string {
	if n.Name == "" {
		return "Condition"
	}
	return "Condition(" + n.Name + ")"
}

func (n Series[T]) String() string { return "Series" + list(n.Items) }

func (n Parallels[T]) String() string { return "Parallels" + list(n.Items) }

func (n Repeat[T]) String() string {
	max := "inf"
	if n.Max != Unbounded {
		max = fmt.Sprint(n.Max)
	}
	lazy := ""
	if n.Lazy {
		lazy = "?"
	}
	return fmt.Sprintf("Repeat{%d,%s}%s(%v)", n.Min, max, lazy, n.Inner)
}

func (n Group[T]) String() string {
	kind := "Group"
	if n.Captive {
		kind = "Capture"
	}
	if n.Name != "" {
		kind += "<" + n.Name + ">"
	}
	return fmt.Sprintf("%s(%v)", kind, n.Inner)
}

func (n Backreference[T]) String() string {
	if n.Name != "" {
		return "Backreference<" + n.Name + ">"
	}
	return fmt.Sprintf("Backreference(%d)", n.Index)
}

func (n Anchor[T]) String() string {
	if n.Kind == End {
		return "End"
	}
	return "Begin"
}

func (n Look[T]) String() string {
	if n.Negate {
		return fmt.Sprintf("NotAhead(%v)", n.Inner)
	}
	return fmt.Sprintf("Ahead(%v)", n.Inner)
}

func (n Balance[T]) String() string {
	return fmt.Sprintf("Balance#%d(%v)", n.Item, n.Inner)
}

func (n BalanceCheck[T]) String() string {
	if n.Empty {
		return fmt.Sprintf("BalanceEmpty#%d", n.Group)
	}
	return fmt.Sprintf("BalanceAny#%d", n.Group)
}

func list[T any](items []Node[T]) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprint(it)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
