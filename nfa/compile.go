package nfa

import (
	"errors"
	"fmt"

	"github.com/coregx/fsmregex/alphabet"
	"github.com/coregx/fsmregex/ast"
	"github.com/coregx/fsmregex/interval"
)

// CompilerConfig configures NFA compilation behavior
type CompilerConfig struct {
	// MaxStates limits the number of NFA states a pattern may compile to.
	// Bounded repetitions unroll their body, so large counts grow quickly.
	// Default: 100_000
	MaxStates int

	// MaxRecursionDepth limits recursion during compilation to prevent stack overflow
	// Default: 1000
	MaxRecursionDepth int
}

// DefaultCompilerConfig returns a compiler configuration with sensible defaults
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		MaxStates:         100_000,
		MaxRecursionDepth: 1000,
	}
}

// Validate checks that the configuration is usable
func (c CompilerConfig) Validate() error {
	if c.MaxStates < 2 {
		return fmt.Errorf("%w: MaxStates must be at least 2, got %d", ErrInvalidConfig, c.MaxStates)
	}
	if c.MaxRecursionDepth < 1 {
		return fmt.Errorf("%w: MaxRecursionDepth must be positive, got %d", ErrInvalidConfig, c.MaxRecursionDepth)
	}
	return nil
}

type balanceKey struct {
	registry *ast.Balances
	group    ast.BalanceGroupID
}

// Compiler compiles ast.Node trees into Thompson NFAs over one alphabet.
// A Compiler is not safe for concurrent use; the NFAs it returns are.
type Compiler[T any] struct {
	config   CompilerConfig
	alphabet alphabet.Alphabet[T]
	builder  *Builder[T]
	depth    int // current recursion depth

	named    map[string]int
	order    []int // slot per captive group, in pre-order
	next     int   // index into order during construction
	balances map[balanceKey]int
}

// NewCompiler creates a new NFA compiler with the given configuration
func NewCompiler[T any](a alphabet.Alphabet[T], config CompilerConfig) *Compiler[T] {
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = 1000
	}
	return &Compiler[T]{config: config, alphabet: a}
}

// Compile is a convenience wrapper around NewCompiler and Compiler.Compile.
func Compile[T any](n ast.Node[T], a alphabet.Alphabet[T], config CompilerConfig) (*NFA[T], error) {
	return NewCompiler(a, config).Compile(n)
}

// Compile translates the tree rooted at n into an NFA. On failure the
// partially built automaton is discarded and the error is a *CompileError
// naming the offending node.
func (c *Compiler[T]) Compile(n ast.Node[T]) (*NFA[T], error) {
	if n == nil {
		return nil, &CompileError{Err: fmt.Errorf("%w: nil pattern", ErrUnsupportedConstruct)}
	}
	c.builder = NewBuilder(c.alphabet)
	c.builder.SetMaxStates(c.config.MaxStates)
	c.depth = 0
	c.next = 0

	if err := c.assignSlots(n); err != nil {
		return nil, err
	}

	start, err := c.newState(n)
	if err != nil {
		return nil, err
	}
	end, err := c.compile(n, start)
	if err != nil {
		return nil, err
	}
	if err := c.builder.SetTerminal(end, true); err != nil {
		return nil, &CompileError{Err: err}
	}
	c.builder.SetStart(start)

	nfa, err := c.builder.Build()
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	return nfa, nil
}

// assignSlots numbers the capture groups in pre-order before construction so
// that backreferences may point forward. Groups sharing a name share a slot.
// Balance groups get the slots after all pattern groups.
func (c *Compiler[T]) assignSlots(root ast.Node[T]) error {
	c.named = make(map[string]int)
	c.order = c.order[:0]
	c.balances = make(map[balanceKey]int)

	ast.Walk(root, func(n ast.Node[T]) bool {
		g, ok := n.(ast.Group[T])
		if !ok || !g.Captive {
			return true
		}
		if g.Name != "" {
			if slot, ok := c.named[g.Name]; ok {
				c.order = append(c.order, slot)
				return true
			}
		}
		slot := c.builder.AddGroup(g.Name, true)
		if g.Name != "" {
			c.named[g.Name] = slot
		}
		c.order = append(c.order, slot)
		return true
	})

	var err error
	ast.Walk(root, func(n ast.Node[T]) bool {
		var key balanceKey
		switch n := n.(type) {
		case ast.Balance[T]:
			if n.Registry == nil {
				err = c.fail(n, fmt.Errorf("%w: balance item without registry", ast.ErrInvalidOperation))
				return false
			}
			g, _, ok := n.Registry.Lookup(n.Item)
			if !ok {
				err = c.fail(n, fmt.Errorf("%w: item %d is not bound to a group", ast.ErrInvalidOperation, n.Item))
				return false
			}
			key = balanceKey{n.Registry, g}
		case ast.BalanceCheck[T]:
			if n.Registry == nil || int(n.Group) < 0 || int(n.Group) >= n.Registry.Groups() {
				err = c.fail(n, fmt.Errorf("%w: balance group %d", ErrUnknownGroup, n.Group))
				return false
			}
			key = balanceKey{n.Registry, n.Group}
		default:
			return err == nil
		}
		if _, ok := c.balances[key]; !ok {
			c.balances[key] = c.builder.AddGroup(key.registry.Name(key.group), false)
		}
		return err == nil
	})
	return err
}

func (c *Compiler[T]) fail(n ast.Node[T], err error) error {
	var ce *CompileError
	if errors.As(err, &ce) {
		return err
	}
	return &CompileError{Node: describe(n), Err: err}
}

func describe[T any](n ast.Node[T]) string {
	const limit = 64
	s := fmt.Sprint(n)
	if len(s) > limit {
		s = s[:limit-3] + "..."
	}
	return s
}

func (c *Compiler[T]) newState(n ast.Node[T]) (StateID, error) {
	id := c.builder.AddState()
	if id == InvalidState {
		return InvalidState, c.fail(n, fmt.Errorf("%w: more than %d states", ErrTooComplex, c.config.MaxStates))
	}
	return id, nil
}

// compile threads n from the state from and returns the fragment's exit
// state. The exit state is always fresh: it has no outgoing transitions.
func (c *Compiler[T]) compile(n ast.Node[T], from StateID) (StateID, error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.config.MaxRecursionDepth {
		return InvalidState, c.fail(n, fmt.Errorf("%w: nesting deeper than %d", ErrTooComplex, c.config.MaxRecursionDepth))
	}

	switch n := n.(type) {
	case ast.Const[T]:
		return c.leaf(n, from, alphabet.Set(c.alphabet, n.Value))
	case ast.Range[T]:
		set, err := alphabet.Span(c.alphabet, n.Min, n.Max, n.CanTakeMin, n.CanTakeMax)
		if err != nil {
			return InvalidState, c.fail(n, err)
		}
		return c.leaf(n, from, set)
	case ast.Set[T]:
		set := n.Values
		if set == nil {
			set = interval.NewSet[T](c.alphabet)
		} else if err := set.Check(); err != nil {
			return InvalidState, c.fail(n, err)
		}
		return c.leaf(n, from, set)
	case ast.Condition[T]:
		if n.Pred == nil {
			return InvalidState, c.fail(n, fmt.Errorf("%w: condition without predicate", ErrUnsupportedConstruct))
		}
		return c.leaf(n, from, alphabet.Condition(c.alphabet, n.Pred))
	case ast.Series[T]:
		return c.series(n, from)
	case ast.Parallels[T]:
		return c.parallels(n, from)
	case ast.Repeat[T]:
		return c.repeat(n, from)
	case ast.Group[T]:
		return c.group(n, from)
	case ast.Backreference[T]:
		return c.backreference(n, from)
	case ast.Anchor[T]:
		kind := AssertBegin
		if n.Kind == ast.End {
			kind = AssertEnd
		}
		return c.functional(n, from, Effect{Kind: kind})
	case ast.Look[T]:
		return c.look(n, from)
	case ast.Balance[T]:
		return c.balance(n, from)
	case ast.BalanceCheck[T]:
		slot := c.balances[balanceKey{n.Registry, n.Group}]
		return c.functional(n, from, Effect{Kind: IDCheck, ID: slot, Negate: n.Empty})
	default:
		return InvalidState, c.fail(n, fmt.Errorf("%w: %T", ErrUnsupportedConstruct, n))
	}
}

func (c *Compiler[T]) leaf(n ast.Node[T], from StateID, set *interval.RangeSet[T]) (StateID, error) {
	end, err := c.newState(n)
	if err != nil {
		return InvalidState, err
	}
	if err := c.builder.AddAccept(from, end, set); err != nil {
		return InvalidState, c.fail(n, err)
	}
	return end, nil
}

func (c *Compiler[T]) functional(n ast.Node[T], from StateID, e Effect) (StateID, error) {
	end, err := c.newState(n)
	if err != nil {
		return InvalidState, err
	}
	if err := c.builder.AddFunctional(from, end, e); err != nil {
		return InvalidState, c.fail(n, err)
	}
	return end, nil
}

func (c *Compiler[T]) epsilon(n ast.Node[T], from, to StateID) error {
	if err := c.builder.AddEpsilon(from, to); err != nil {
		return c.fail(n, err)
	}
	return nil
}

func (c *Compiler[T]) series(n ast.Series[T], from StateID) (StateID, error) {
	cur := from
	for _, item := range n.Items {
		next, err := c.compile(item, cur)
		if err != nil {
			return InvalidState, err
		}
		cur = next
	}
	end, err := c.newState(n)
	if err != nil {
		return InvalidState, err
	}
	return end, c.epsilon(n, cur, end)
}

// parallels gives every alternative its own entry state so that each
// alternative's transitions stay grouped in priority order.
func (c *Compiler[T]) parallels(n ast.Parallels[T], from StateID) (StateID, error) {
	end, err := c.newState(n)
	if err != nil {
		return InvalidState, err
	}
	for _, item := range n.Items {
		entry, err := c.newState(n)
		if err != nil {
			return InvalidState, err
		}
		if err := c.epsilon(n, from, entry); err != nil {
			return InvalidState, err
		}
		exit, err := c.compile(item, entry)
		if err != nil {
			return InvalidState, err
		}
		if err := c.epsilon(n, exit, end); err != nil {
			return InvalidState, err
		}
	}
	return end, nil
}

func (c *Compiler[T]) repeat(n ast.Repeat[T], from StateID) (StateID, error) {
	if n.Min < 0 || n.Max < ast.Unbounded || (n.Max != ast.Unbounded && n.Max < n.Min) {
		return InvalidState, c.fail(n, fmt.Errorf("%w: {%d,%d}", ErrInvalidRepeat, n.Min, n.Max))
	}

	// Slots of groups inside the body repeat for every copy.
	first := c.next
	cur := from
	for i := 0; i < n.Min; i++ {
		c.next = first
		next, err := c.compile(n.Inner, cur)
		if err != nil {
			return InvalidState, err
		}
		cur = next
	}

	end, err := c.newState(n)
	if err != nil {
		return InvalidState, err
	}

	if n.Max == ast.Unbounded {
		c.next = first
		loop := c.builder.AddLoop()
		body, err := c.newState(n)
		if err != nil {
			return InvalidState, err
		}
		enter := func() error {
			if err := c.builder.AddFunctional(cur, body, Effect{Kind: RepeatEnter, ID: loop}); err != nil {
				return c.fail(n, err)
			}
			return nil
		}
		if n.Lazy {
			if err := c.epsilon(n, cur, end); err != nil {
				return InvalidState, err
			}
			if err := enter(); err != nil {
				return InvalidState, err
			}
		} else {
			if err := enter(); err != nil {
				return InvalidState, err
			}
			if err := c.epsilon(n, cur, end); err != nil {
				return InvalidState, err
			}
		}
		exit, err := c.compile(n.Inner, body)
		if err != nil {
			return InvalidState, err
		}
		if err := c.builder.AddFunctional(exit, cur, Effect{Kind: RepeatCheck, ID: loop}); err != nil {
			return InvalidState, c.fail(n, err)
		}
		return end, nil
	}

	for i := n.Min; i < n.Max; i++ {
		c.next = first
		next, err := c.newState(n)
		if err != nil {
			return InvalidState, err
		}
		targets := [2]StateID{next, end}
		if n.Lazy {
			targets = [2]StateID{end, next}
		}
		for _, t := range targets {
			if err := c.epsilon(n, cur, t); err != nil {
				return InvalidState, err
			}
		}
		if cur, err = c.compile(n.Inner, next); err != nil {
			return InvalidState, err
		}
	}
	if n.Min == 0 && n.Max == 0 {
		c.skip(n.Inner)
	}
	return end, c.epsilon(n, cur, end)
}

// skip advances the group cursor past the captive groups of a subtree that
// is not compiled.
func (c *Compiler[T]) skip(n ast.Node[T]) {
	ast.Walk(n, func(n ast.Node[T]) bool {
		if g, ok := n.(ast.Group[T]); ok && g.Captive {
			c.next++
		}
		return true
	})
}

func (c *Compiler[T]) group(n ast.Group[T], from StateID) (StateID, error) {
	if !n.Captive {
		return c.compile(n.Inner, from)
	}
	slot := c.order[c.next]
	c.next++
	open, err := c.functional(n, from, Effect{Kind: CaptureStart, ID: slot})
	if err != nil {
		return InvalidState, err
	}
	exit, err := c.compile(n.Inner, open)
	if err != nil {
		return InvalidState, err
	}
	return c.functional(n, exit, Effect{Kind: CaptureEnd, ID: slot})
}

func (c *Compiler[T]) backreference(n ast.Backreference[T], from StateID) (StateID, error) {
	slot := n.Index
	if n.Name != "" {
		s, ok := c.named[n.Name]
		if !ok {
			return InvalidState, c.fail(n, fmt.Errorf("%w: %q", ErrUnknownGroup, n.Name))
		}
		slot = s
	} else if slot < 1 || slot >= c.builder.numGroups {
		return InvalidState, c.fail(n, fmt.Errorf("%w: %d", ErrUnknownGroup, n.Index))
	}
	end, err := c.newState(n)
	if err != nil {
		return InvalidState, err
	}
	if err := c.builder.AddBackreference(from, end, slot); err != nil {
		return InvalidState, c.fail(n, err)
	}
	return end, nil
}

// look builds the lookahead body as a separate fragment of the same arena.
// Its exit is terminal; it is only reachable through the LookAhead effect.
func (c *Compiler[T]) look(n ast.Look[T], from StateID) (StateID, error) {
	sub, err := c.newState(n)
	if err != nil {
		return InvalidState, err
	}
	exit, err := c.compile(n.Inner, sub)
	if err != nil {
		return InvalidState, err
	}
	if err := c.builder.SetTerminal(exit, true); err != nil {
		return InvalidState, c.fail(n, err)
	}
	return c.functional(n, from, Effect{Kind: LookAhead, Sub: sub, Negate: n.Negate})
}

func (c *Compiler[T]) balance(n ast.Balance[T], from StateID) (StateID, error) {
	g, role, _ := n.Registry.Lookup(n.Item)
	slot := c.balances[balanceKey{n.Registry, g}]
	if role == ast.RoleClose {
		exit, err := c.compile(n.Inner, from)
		if err != nil {
			return InvalidState, err
		}
		return c.functional(n, exit, Effect{Kind: BalancePop, ID: slot})
	}
	open, err := c.functional(n, from, Effect{Kind: CaptureStart, ID: slot})
	if err != nil {
		return InvalidState, err
	}
	exit, err := c.compile(n.Inner, open)
	if err != nil {
		return InvalidState, err
	}
	return c.functional(n, exit, Effect{Kind: CaptureEnd, ID: slot})
}
