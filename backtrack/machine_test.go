package backtrack

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/fsmregex/alphabet"
	"github.com/coregx/fsmregex/ast"
	"github.com/coregx/fsmregex/input"
	"github.com/coregx/fsmregex/nfa"
)

func c(r rune) ast.Node[rune] { return ast.Const[rune]{Value: r} }

func digit() ast.Node[rune] { return ast.Span[rune]('0', '9') }

func lower() ast.Node[rune] { return ast.Span[rune]('a', 'z') }

func newMachine(t *testing.T, pattern ast.Node[rune], cfg Config) *Machine[rune] {
	t.Helper()
	n, err := nfa.Compile(pattern, alphabet.Runes(), nfa.DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile(%v) error: %v", pattern, err)
	}
	return NewMachine(n, cfg)
}

func find(t *testing.T, pattern ast.Node[rune], s string) *Match[rune] {
	t.Helper()
	m := newMachine(t, pattern, DefaultConfig())
	match, err := m.Find(context.Background(), input.FromSlice([]rune(s)))
	if err != nil {
		t.Fatalf("Find(%q) error: %v", s, err)
	}
	return match
}

// span is a comparable summary of a group.
type span struct {
	Index, Length int
	Success       bool
}

func spans(m *Match[rune]) []span {
	var out []span
	for _, g := range m.Groups() {
		out = append(out, span{g.Index(), g.Length(), g.Success()})
	}
	return out
}

func TestFind(t *testing.T) {
	optional := ast.Seq[rune](ast.Optional(c('a')), c('b'), ast.Optional(c('c')))
	tests := []struct {
		name    string
		pattern ast.Node[rune]
		input   string
		want    []span // nil for no match
	}{
		{"digits", ast.Capture(ast.Between(digit(), 1, 3)), "123", []span{{0, 3, true}, {0, 3, true}}},
		{"digits_capped", ast.Capture(ast.Between(digit(), 1, 3)), "12345", []span{{0, 3, true}, {0, 3, true}}},
		{"optional_b", optional, "b", []span{{0, 1, true}}},
		{"optional_abc", optional, "abc", []span{{0, 3, true}}},
		{"optional_x", optional, "x", nil},
		{"unanchored", ast.Plus(digit()), "ab42c", []span{{2, 2, true}}},
		{"greedy", ast.Seq[rune](ast.Capture(ast.Star(c('a'))), ast.Capture(ast.Star(c('a')))), "aaa",
			[]span{{0, 3, true}, {0, 3, true}, {3, 0, true}}},
		{"lazy", ast.Seq[rune](
			ast.Capture(ast.Repeat[rune]{Inner: c('a'), Max: ast.Unbounded, Lazy: true}),
			ast.Capture(ast.Star(c('a')))), "aaa",
			[]span{{0, 3, true}, {0, 0, true}, {0, 3, true}}},
		{"lazy_bounded", ast.Repeat[rune]{Inner: c('a'), Min: 1, Max: 3, Lazy: true}, "aaa", []span{{0, 1, true}}},
		{"leftmost_first", ast.Or(ast.Str('a'), ast.Str('a', 'b')), "ab", []span{{0, 1, true}}},
		{"unmatched_group", ast.Or(ast.Capture(c('x')), c('y')), "y", []span{{0, 1, true}, {0, 0, false}}},
		{"empty_iteration", ast.Star(ast.Optional(c('a'))), "b", []span{{0, 0, true}}},
		{"nested_star", ast.Seq[rune](ast.Star(ast.Star(c('a'))), c('b')), "aab", []span{{0, 3, true}}},
		{"end_anchor", ast.Seq[rune](c('a'), ast.Anchor[rune]{Kind: ast.End}), "aba", []span{{2, 1, true}}},
		{"begin_anchor", ast.Seq[rune](ast.Anchor[rune]{Kind: ast.Begin}, c('b')), "ab", nil},
		{"backreference", ast.Seq[rune](ast.Capture(ast.Plus(lower())), c('-'), ast.Backreference[rune]{Index: 1}),
			"xx abc-abc", []span{{3, 7, true}, {3, 3, true}}},
		{"backreference_mismatch", ast.Seq[rune](ast.Capture(ast.Plus(lower())), c('-'), ast.Backreference[rune]{Index: 1}),
			"abc-abd", nil},
		{"named_backreference", ast.Seq[rune](ast.Named("w", lower()), ast.Backreference[rune]{Name: "w"}),
			"abccd", []span{{2, 2, true}, {2, 1, true}}},
		{"lookahead", ast.Seq[rune](ast.Look[rune]{Inner: ast.Str('a', 'b')}, c('a')), "ac ab", []span{{3, 1, true}}},
		{"negative_lookahead", ast.Seq[rune](ast.Look[rune]{Inner: c('b'), Negate: true}, lower()), "ba", []span{{1, 1, true}}},
		{"lookahead_discards_captures", ast.Seq[rune](ast.Look[rune]{Inner: ast.Capture(c('a'))}, c('a')), "a",
			[]span{{0, 1, true}, {0, 0, false}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := find(t, tt.pattern, tt.input)
			if tt.want == nil {
				if m != nil {
					t.Fatalf("Find(%q) = %v, want no match", tt.input, m)
				}
				return
			}
			if m == nil {
				t.Fatalf("Find(%q) = nil, want match", tt.input)
			}
			if diff := cmp.Diff(tt.want, spans(m)); diff != "" {
				t.Errorf("groups mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCaptureValues(t *testing.T) {
	m := find(t, ast.Plus(ast.Capture(digit())), "x123")
	if m == nil {
		t.Fatal("no match")
	}
	if got := string(m.Value()); got != "123" {
		t.Errorf("Value() = %q, want %q", got, "123")
	}
	g := m.Group(1)
	if got := string(g.Value()); got != "3" {
		t.Errorf("Group(1).Value() = %q, want %q", got, "3")
	}
	var history []string
	for _, c := range g.Captures() {
		history = append(history, string(c.Value()))
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, history); diff != "" {
		t.Errorf("Captures() mismatch (-want +got):\n%s", diff)
	}
}

func TestNamedGroupsShareSlot(t *testing.T) {
	pattern := ast.Seq[rune](ast.Or(ast.Named("v", c('a')), ast.Named("v", c('b'))), ast.Named("w", c('!')))
	m := find(t, pattern, "b!")
	if m == nil {
		t.Fatal("no match")
	}
	g, ok := m.Named("v")
	if !ok || g.Index() != 0 || g.Length() != 1 {
		t.Errorf("Named(v) = (%v, %v), want [0, 1)", g, ok)
	}
	if _, ok := m.Named("missing"); ok {
		t.Error("Named(missing) found a group")
	}
	if len(m.Groups()) != 3 {
		t.Errorf("len(Groups()) = %d, want 3", len(m.Groups()))
	}
}

func balanced(t *testing.T) ast.Node[rune] {
	t.Helper()
	reg := ast.NewBalances()
	g := reg.NewGroup("paren")
	open, closing := reg.NewItem(), reg.NewItem()
	if err := reg.Bind(g, open, ast.RoleOpen); err != nil {
		t.Fatal(err)
	}
	if err := reg.Bind(g, closing, ast.RoleClose); err != nil {
		t.Fatal(err)
	}
	return ast.Seq[rune](
		ast.Star(ast.Or[rune](
			ast.Balance[rune]{Inner: c('('), Registry: reg, Item: open},
			ast.Balance[rune]{Inner: c(')'), Registry: reg, Item: closing},
		)),
		ast.BalanceCheck[rune]{Registry: reg, Group: g, Empty: true},
	)
}

func TestBalanceGroups(t *testing.T) {
	m := newMachine(t, balanced(t), DefaultConfig())
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"()", true},
		{"(()())", true},
		{"(()", false},
		{"())", false},
		{")(", false},
	}
	for _, tt := range tests {
		match, err := m.MatchExact(context.Background(), input.FromSlice([]rune(tt.input)), 0)
		if err != nil {
			t.Fatalf("MatchExact(%q) error: %v", tt.input, err)
		}
		if got := match != nil; got != tt.want {
			t.Errorf("MatchExact(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMatchAt(t *testing.T) {
	m := newMachine(t, ast.Plus(digit()), DefaultConfig())
	r := input.FromSlice([]rune("a12"))
	match, err := m.MatchAt(context.Background(), r, 0)
	if err != nil || match != nil {
		t.Errorf("MatchAt(0) = (%v, %v), want no match", match, err)
	}
	match, err = m.MatchAt(context.Background(), r, 1)
	if err != nil || match == nil || match.End() != 3 {
		t.Errorf("MatchAt(1) = (%v, %v), want [1, 3)", match, err)
	}
	if r.Pos() != 3 {
		t.Errorf("reader position after match = %d, want 3", r.Pos())
	}
}

func TestRollbackRestoresSnapshot(t *testing.T) {
	// (a+)+b against "aaac": every greedy iteration fails on 'c'.
	pattern := ast.Seq[rune](ast.Plus(ast.Capture(ast.Plus(c('a')))), c('b'))
	m := newMachine(t, pattern, DefaultConfig())
	m.begin(context.Background(), input.FromSlice([]rune("aaac")), false)
	defer m.end()

	// Leave something below the attempt so the snapshot is not trivial.
	m.trace.visit(StateStackItem{State: m.nfa.Start()})
	m.trace.record(Mark, 0, 0, 0)
	before := m.trace.Checkpoint()
	capsBefore := slices.Clone(m.trace.Captures.Items())

	_, ok, err := m.run(m.nfa.Start(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("run succeeded, want failure")
	}
	if diff := cmp.Diff(before, m.trace.Checkpoint()); diff != "" {
		t.Errorf("stack heights after failed branch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(capsBefore, m.trace.Captures.Items()); diff != "" {
		t.Errorf("capture stack after failed branch (-want +got):\n%s", diff)
	}
}

func TestCaptureStackDiscard(t *testing.T) {
	var b BackTraceService
	b.visit(StateStackItem{})
	b.record(Open, 1, 0, 0)
	b.visit(StateStackItem{Pos: 1})
	b.record(Close, 1, 0, 1)
	b.record(Mark, 0, 1, 0)

	b.Backtrack()
	want := []CaptureStackItem{{StateCount: 1, Token: Open, ID: 1}}
	if diff := cmp.Diff(want, b.Captures.Items()); diff != "" {
		t.Errorf("captures after Backtrack (-want +got):\n%s", diff)
	}
	b.Backtrack()
	if b.Captures.Len() != 0 || b.States.Len() != 0 {
		t.Errorf("stacks not empty: %d states, %d captures", b.States.Len(), b.Captures.Len())
	}
}

func TestCaptureStackDrop(t *testing.T) {
	var s CaptureStack
	s.Push(CaptureStackItem{Token: Close, ID: 2, Start: 0, Length: 1})
	s.Push(CaptureStackItem{Token: Close, ID: 2, Start: 1, Length: 1})
	s.Push(CaptureStackItem{Token: Drop, ID: 2})

	last, ok := s.last(2)
	if !ok || last.Start != 0 {
		t.Errorf("last(2) = (%+v, %v), want the first capture", last, ok)
	}
	s.Push(CaptureStackItem{Token: Drop, ID: 2})
	if _, ok := s.last(2); ok {
		t.Error("last(2) found a capture after two drops")
	}
	if got := s.captures(3)[2]; len(got) != 0 {
		t.Errorf("captures(3)[2] = %v, want none", got)
	}
}

func TestStepLimit(t *testing.T) {
	// (a*)*b is exponential without memoization.
	pattern := ast.Seq[rune](ast.Star(ast.Star(c('a'))), c('b'))
	m := newMachine(t, pattern, Config{MaxSteps: 1000, CheckInterval: 1024})
	_, err := m.Find(context.Background(), input.FromSlice([]rune("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")))
	if !errors.Is(err, ErrStepLimitExceeded) {
		t.Errorf("Find() error = %v, want ErrStepLimitExceeded", err)
	}
	if m.Trace().States.Len() != 0 {
		t.Error("stacks not reset after error")
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := newMachine(t, ast.Plus(digit()), Config{CheckInterval: 1})
	_, err := m.Find(ctx, input.FromSlice([]rune("abc123")))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Find() error = %v, want context.Canceled", err)
	}
}

func TestFind_Stream(t *testing.T) {
	m := newMachine(t, ast.Seq[rune](ast.Capture(ast.Plus(lower())), c('='), ast.Capture(ast.Plus(digit()))), DefaultConfig())
	s := input.FromSeq(slices.Values([]rune("-- key=42;")))
	defer s.Close()

	match, err := m.Find(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if match == nil {
		t.Fatal("no match")
	}
	if got := string(match.Group(1).Value()) + "|" + string(match.Group(2).Value()); got != "key|42" {
		t.Errorf("groups = %q, want %q", got, "key|42")
	}
	if s.Retained() > len("key=42;") {
		t.Errorf("Retained() = %d, history before the match was not released", s.Retained())
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
	if err := (Config{MaxSteps: -1, CheckInterval: 1}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
	}
	if err := (Config{}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
	}
}
