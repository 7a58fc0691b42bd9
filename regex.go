// Package fsmregex provides a regular expression engine over arbitrary
// ordered alphabets.
//
// Patterns are trees of ast nodes, generic over the value type T, compiled
// against an alphabet that orders T and names the values transitions may
// consume (the accredited set). Bytes, runes, bounded integers and explicit
// enumerations are supported out of the box.
//
// Compilation builds a Thompson NFA. Regular patterns also get a DFA by
// subset construction, and byte patterns with literal prefixes get a
// prefilter. Searches that report spans and captures run on a backtracking
// engine with leftmost-first priority.
//
// Basic usage:
//
//	// (a|b)+c over bytes
//	node := ast.Seq(ast.Plus(ast.Capture(ast.Or(ast.Str[byte]('a'), ast.Str[byte]('b')))), ast.Str[byte]('c'))
//	re, err := fsmregex.Compile(node, alphabet.Bytes(), fsmregex.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := re.Find(ctx, []byte("xxabac"))
//	fmt.Println(m.Index(), m.Length()) // 4 2
//
// A Regex is safe for concurrent use.
package fsmregex

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/coregx/fsmregex/alphabet"
	"github.com/coregx/fsmregex/ast"
	"github.com/coregx/fsmregex/backtrack"
	"github.com/coregx/fsmregex/dfa"
	"github.com/coregx/fsmregex/input"
	"github.com/coregx/fsmregex/literal"
	"github.com/coregx/fsmregex/nfa"
	"github.com/coregx/fsmregex/prefilter"
)

// Match is a successful match: group 0 spans the whole match.
type Match[T any] = backtrack.Match[T]

// Group is the result of one capture slot within a match.
type Group[T any] = backtrack.Group[T]

// Capture is one span of the input.
type Capture[T any] = backtrack.Capture[T]

// Regex is a compiled pattern.
type Regex[T any] struct {
	nfa       *nfa.NFA[T]
	dfa       *dfa.DFA[T]
	prefilter prefilter.Prefilter
	config    Config
	pool      *searchStatePool[T]
}

// Compile compiles the pattern n over alphabet a.
//
// It fails with an *nfa.CompileError for unsupported or malformed nodes
// and with a *ConfigError for an invalid configuration. A DFA that would
// exceed MaxDFAStates is not an error: the pattern runs without it.
func Compile[T any](n ast.Node[T], a alphabet.Alphabet[T], config Config) (*Regex[T], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	log := config.logger()

	fsm, err := nfa.Compile(n, a, nfa.CompilerConfig{
		MaxStates:         config.MaxNFAStates,
		MaxRecursionDepth: config.MaxRecursionDepth,
	})
	if err != nil {
		return nil, err
	}

	re := &Regex[T]{nfa: fsm, config: config}
	if err := re.buildDFA(); err != nil {
		return nil, err
	}
	if config.EnablePrefilter {
		re.prefilter = bytePrefilter(n, a)
	}
	re.pool = newSearchStatePool(fsm, backtrack.Config{
		MaxSteps:      config.MaxSteps,
		CheckInterval: backtrack.DefaultConfig().CheckInterval,
	}, re.prefilter)

	log.Debug("fsmregex: compiled pattern",
		"nfa_states", fsm.States(),
		"groups", fsm.NumGroups(),
		"regular", fsm.IsRegular(),
		"dfa_states", re.dfaStates(),
		"prefilter", re.Strategy(),
	)
	return re, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile[T any](n ast.Node[T], a alphabet.Alphabet[T], config Config) *Regex[T] {
	re, err := Compile(n, a, config)
	if err != nil {
		panic(fmt.Sprintf("fsmregex: Compile(%v): %v", n, err))
	}
	return re
}

func (re *Regex[T]) buildDFA() error {
	log := re.config.logger()
	if !re.config.EnableDFA {
		return nil
	}
	if !re.nfa.IsRegular() {
		log.Debug("fsmregex: pattern is not regular, skipping DFA")
		return nil
	}
	cfg := dfa.DefaultConfig().WithMaxStates(re.config.MaxDFAStates)
	d, err := dfa.Determinize(re.nfa, cfg)
	if errors.Is(err, dfa.ErrStateLimitExceeded) {
		log.Debug("fsmregex: DFA state limit exceeded, falling back to backtracking",
			"max_states", re.config.MaxDFAStates)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fsmregex: determinize: %w", err)
	}
	if re.config.Minimize {
		before := d.States()
		if d, err = d.Minimize(cfg); err != nil {
			if errors.Is(err, dfa.ErrStateLimitExceeded) {
				log.Debug("fsmregex: DFA minimization exceeded state limit, falling back to backtracking")
				return nil
			}
			return fmt.Errorf("fsmregex: minimize: %w", err)
		}
		log.Debug("fsmregex: minimized DFA", "before", before, "after", d.States())
	}
	re.dfa = d
	return nil
}

// bytePrefilter builds a prefilter when T is byte.
func bytePrefilter[T any](n ast.Node[T], a alphabet.Alphabet[T]) prefilter.Prefilter {
	var zero T
	if _, ok := any(zero).(byte); !ok {
		return nil
	}
	bn, ok := any(n).(ast.Node[byte])
	if !ok {
		return nil
	}
	ba, ok := any(a).(alphabet.Alphabet[byte])
	if !ok {
		return nil
	}
	prefixes := literal.New(ba, literal.DefaultConfig()).ExtractPrefixes(bn)
	return prefilter.NewBuilder(prefixes).Build()
}

func (re *Regex[T]) dfaStates() int {
	if re.dfa == nil {
		return 0
	}
	return re.dfa.States()
}

// NFA returns the compiled NFA.
func (re *Regex[T]) NFA() *nfa.NFA[T] { return re.nfa }

// DFA returns the DFA, or nil when the pattern is not regular, the DFA was
// disabled or it exceeded MaxDFAStates.
func (re *Regex[T]) DFA() *dfa.DFA[T] { return re.dfa }

// NumGroups returns the number of capture groups, including group 0.
func (re *Regex[T]) NumGroups() int { return re.nfa.NumGroups() }

// GroupNames returns the name of each group; unnamed groups have "".
func (re *Regex[T]) GroupNames() []string { return re.nfa.GroupNames() }

// Strategy describes the prefilter in use, or "none".
func (re *Regex[T]) Strategy() string {
	if re.prefilter == nil {
		return "none"
	}
	return re.prefilter.String()
}

// String returns a summary of the compiled pattern.
func (re *Regex[T]) String() string {
	return fmt.Sprintf("Regex{nfa: %d states, dfa: %d states, prefilter: %s}",
		re.nfa.States(), re.dfaStates(), re.Strategy())
}

// Find returns the leftmost match in input, or nil.
func (re *Regex[T]) Find(ctx context.Context, in []T) (*Match[T], error) {
	return re.FindAt(ctx, in, 0)
}

// FindAt returns the leftmost match starting at or after at, or nil.
// Anchors still refer to the whole input.
func (re *Regex[T]) FindAt(ctx context.Context, in []T, at int) (*Match[T], error) {
	if at < 0 || at > len(in) {
		return nil, nil
	}
	st := re.pool.get()
	defer re.pool.put(st)
	return re.find(ctx, st, input.FromSlice(in), in, at)
}

func (re *Regex[T]) find(ctx context.Context, st *searchState[T], r *input.Slice[T], in []T, at int) (*Match[T], error) {
	if st.tracker == nil {
		r.Rollback(at)
		return st.machine.Find(ctx, r)
	}
	haystack := any(in).([]byte)
	for start := at; start <= len(in); start++ {
		candidate := st.tracker.Find(haystack, start)
		if candidate < 0 {
			return nil, nil
		}
		start = candidate
		m, err := st.machine.MatchAt(ctx, r, start)
		if err != nil {
			return nil, err
		}
		if m != nil {
			st.tracker.ConfirmMatch()
			return m, nil
		}
	}
	return nil, nil
}

// FindReader returns the leftmost match read from r, starting at its
// current position. Stream readers drop the history before each start
// position tried, so unbounded streams run in bounded memory as long as
// matches stay short.
func (re *Regex[T]) FindReader(ctx context.Context, r input.Reader[T]) (*Match[T], error) {
	st := re.pool.get()
	defer re.pool.put(st)
	return st.machine.Find(ctx, r)
}

// FindAll calls fn for each successive non-overlapping match in input
// until fn returns false. An empty match is never reported at the end of
// the previous match.
func (re *Regex[T]) FindAll(ctx context.Context, in []T, fn func(*Match[T]) bool) error {
	for m, err := range re.All(ctx, in) {
		if err != nil {
			return err
		}
		if !fn(m) {
			return nil
		}
	}
	return nil
}

// All returns an iterator over the successive non-overlapping matches in
// input. A search error is yielded once, with a nil match, and ends the
// iteration.
func (re *Regex[T]) All(ctx context.Context, in []T) iter.Seq2[*Match[T], error] {
	return func(yield func(*Match[T], error) bool) {
		st := re.pool.get()
		defer re.pool.put(st)
		r := input.FromSlice(in)

		at, prevEnd := 0, -1
		for at <= len(in) {
			m, err := re.find(ctx, st, r, in, at)
			if err != nil {
				yield(nil, err)
				return
			}
			if m == nil {
				return
			}
			if m.Length() == 0 && m.Index() == prevEnd {
				// Empty match adjacent to the previous one: retry one
				// position later.
				at = m.Index() + 1
				continue
			}
			if !yield(m, nil) {
				return
			}
			prevEnd = m.End()
			at = m.End()
			if m.Length() == 0 {
				at++
			}
		}
	}
}

// IsMatch reports whether input contains a match. Regular patterns are
// answered by the DFA. A nil ctx is never cancelled.
func (re *Regex[T]) IsMatch(ctx context.Context, in []T) (bool, error) {
	if re.dfa == nil {
		m, err := re.Find(ctx, in)
		return m != nil, err
	}
	st := re.pool.get()
	defer re.pool.put(st)

	var haystack []byte
	if st.tracker != nil {
		haystack = any(in).([]byte)
	}
	for start := 0; start <= len(in); start++ {
		if st.tracker != nil {
			if start = st.tracker.Find(haystack, start); start < 0 {
				return false, nil
			}
		}
		if _, ok := re.dfa.LongestMatch(in, start); ok {
			if st.tracker != nil {
				st.tracker.ConfirmMatch()
			}
			return true, nil
		}
		if ctx != nil && start%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

// MatchExact matches the pattern against the whole input and returns the
// match with its captures, or nil.
func (re *Regex[T]) MatchExact(ctx context.Context, in []T) (*Match[T], error) {
	if re.dfa != nil && !re.dfa.Accepts(in) {
		return nil, nil
	}
	st := re.pool.get()
	defer re.pool.put(st)
	return st.machine.MatchExact(ctx, input.FromSlice(in), 0)
}
