package literal

import (
	"github.com/coregx/fsmregex/alphabet"
	"github.com/coregx/fsmregex/ast"
	"github.com/coregx/fsmregex/interval"
)

// ExtractorConfig configures literal extraction limits.
//
// These limits prevent excessive extraction from complex patterns:
//   - MaxLiterals: prevents memory bloat from alternations like (a|b|c|d|...)
//   - MaxLiteralLen: prevents extracting very long literals
//   - MaxClassSize: prevents expanding large sets like [a-z]
type ExtractorConfig struct {
	// MaxLiterals limits the number of literals extracted. A pattern that
	// would need more yields no prefix information. Default: 64.
	MaxLiterals int

	// MaxLiteralLen limits the length of each literal; longer ones are
	// truncated and marked incomplete. Default: 64.
	MaxLiteralLen int

	// MaxClassSize limits the size of value sets to expand.
	// Sets like {a, b, c} are expanded to three literals; larger sets end
	// extraction at that point. Default: 10.
	MaxClassSize int
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  10,
	}
}

const maxDepth = 100

// Extractor extracts prefix literals from pattern trees over one alphabet.
//
// The result is sound: every match of the pattern starts with one of the
// extracted literals. When some alternative has no literal prefix (it starts
// with an unbounded set, a backreference, an optional part, ...) the
// result contains an empty literal and Usable reports false.
//
// Example:
//
//	ext := literal.New(alphabet.Bytes(), literal.DefaultConfig())
//	seq := ext.ExtractPrefixes(ast.Or(ast.Str[byte]('f', 'o', 'o'), ast.Str[byte]('b', 'a', 'r')))
//	// seq = ["foo", "bar"], both complete
type Extractor[T any] struct {
	alphabet alphabet.Alphabet[T]
	config   ExtractorConfig
}

// New creates a new Extractor for patterns over a.
func New[T any](a alphabet.Alphabet[T], config ExtractorConfig) *Extractor[T] {
	return &Extractor[T]{alphabet: a, config: config}
}

// ExtractPrefixes returns the literals every match of n starts with, after
// Minimize.
//
// Handles these node types:
//   - Const, Range, Set: the accredited values, when there are at most
//     MaxClassSize of them
//   - Series: cross product of the items' literals
//   - Parallels: union of all alternatives
//   - Repeat: Min copies of the inner literals; incomplete unless Min == Max
//   - Group, Balance: transparent
//   - Anchor, Look, BalanceCheck: zero-width, consume nothing
//   - Condition, Backreference: unknown
func (e *Extractor[T]) ExtractPrefixes(n ast.Node[T]) *Seq[T] {
	seq := e.extract(n, 0)
	seq.Minimize(e.alphabet.Compare)
	return seq
}

// unknown is the sequence of a node that gives no prefix information.
func unknown[T any]() *Seq[T] {
	return NewSeq(NewLiteral[T](nil, false))
}

// empty is the sequence of a node that consumes nothing.
func empty[T any]() *Seq[T] {
	return NewSeq(NewLiteral[T](nil, true))
}

func (e *Extractor[T]) extract(n ast.Node[T], depth int) *Seq[T] {
	if depth > maxDepth {
		return unknown[T]()
	}

	switch n := n.(type) {
	case ast.Const[T]:
		return e.expandSet(alphabet.Set(e.alphabet, n.Value))

	case ast.Range[T]:
		set, err := alphabet.Span(e.alphabet, n.Min, n.Max, n.CanTakeMin, n.CanTakeMax)
		if err != nil {
			return unknown[T]()
		}
		return e.expandSet(set)

	case ast.Set[T]:
		if n.Values == nil {
			return unknown[T]()
		}
		return e.expandSet(n.Values.Intersect(e.alphabet.Accredited()))

	case ast.Series[T]:
		return e.series(n.Items, depth)

	case ast.Parallels[T]:
		var all []Literal[T]
		for _, item := range n.Items {
			seq := e.extract(item, depth+1)
			all = append(all, seq.literals...)
			if len(all) > e.config.MaxLiterals {
				return unknown[T]()
			}
		}
		if len(all) == 0 {
			return unknown[T]()
		}
		return NewSeq(all...)

	case ast.Repeat[T]:
		if n.Min == 0 {
			return unknown[T]()
		}
		copies := min(n.Min, e.config.MaxLiteralLen)
		items := make([]ast.Node[T], copies)
		for i := range items {
			items[i] = n.Inner
		}
		seq := e.series(items, depth)
		if n.Max != n.Min || copies < n.Min {
			seq.markIncomplete()
		}
		return seq

	case ast.Group[T]:
		return e.extract(n.Inner, depth+1)

	case ast.Balance[T]:
		return e.extract(n.Inner, depth+1)

	case ast.Anchor[T], ast.Look[T], ast.BalanceCheck[T]:
		return empty[T]()

	default:
		return unknown[T]()
	}
}

// series extends every complete literal with the literals of the next item
// until none is complete or a limit is reached.
func (e *Extractor[T]) series(items []ast.Node[T], depth int) *Seq[T] {
	acc := empty[T]()
	for _, item := range items {
		if !acc.hasComplete() {
			break
		}
		next := e.extract(item, depth+1)
		product := e.cross(acc, next)
		if product == nil {
			acc.markIncomplete()
			break
		}
		acc = product
	}
	return acc
}

// cross returns the concatenation of a's complete literals with each of b's
// literals. It returns nil when the product exceeds MaxLiterals.
func (e *Extractor[T]) cross(a, b *Seq[T]) *Seq[T] {
	var out []Literal[T]
	for _, x := range a.literals {
		if !x.Complete {
			out = append(out, x)
			continue
		}
		for _, y := range b.literals {
			values := make([]T, 0, len(x.Values)+len(y.Values))
			values = append(values, x.Values...)
			values = append(values, y.Values...)
			lit := NewLiteral(values, y.Complete)
			if lit.Len() > e.config.MaxLiteralLen {
				lit = NewLiteral(lit.Values[:e.config.MaxLiteralLen], false)
			}
			out = append(out, lit)
		}
		if len(out) > e.config.MaxLiterals {
			return nil
		}
	}
	return NewSeq(out...)
}

func (e *Extractor[T]) expandSet(set *interval.RangeSet[T]) *Seq[T] {
	if _, ok := set.CountUpTo(e.config.MaxClassSize); !ok || set.IsEmpty() {
		return unknown[T]()
	}
	var lits []Literal[T]
	for v := range set.Values() {
		lits = append(lits, NewLiteral([]T{v}, true))
	}
	return NewSeq(lits...)
}

func (s *Seq[T]) hasComplete() bool {
	for _, lit := range s.literals {
		if lit.Complete {
			return true
		}
	}
	return false
}

func (s *Seq[T]) markIncomplete() {
	for i := range s.literals {
		s.literals[i].Complete = false
	}
}
