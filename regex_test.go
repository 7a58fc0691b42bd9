package fsmregex

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/fsmregex/alphabet"
	"github.com/coregx/fsmregex/ast"
	"github.com/coregx/fsmregex/input"
	"github.com/coregx/fsmregex/interval"
	"github.com/coregx/fsmregex/nfa"
)

func b(v byte) ast.Node[byte] { return ast.Const[byte]{Value: v} }

func str(s string) ast.Node[byte] { return ast.Str([]byte(s)...) }

func digits() ast.Node[byte] { return ast.Plus(ast.Span[byte]('0', '9')) }

func compile(t *testing.T, n ast.Node[byte]) *Regex[byte] {
	t.Helper()
	re, err := Compile(n, alphabet.Bytes(), DefaultConfig())
	if err != nil {
		t.Fatalf("Compile(%v) error: %v", n, err)
	}
	return re
}

type span struct{ Index, Length int }

func spanOf[T any](m *Match[T]) *span {
	if m == nil {
		return nil
	}
	return &span{m.Index(), m.Length()}
}

func TestFind_Scenarios(t *testing.T) {
	optional := ast.Seq(ast.Optional(b('a')), b('b'), ast.Optional(b('c')))
	tests := []struct {
		name    string
		pattern ast.Node[byte]
		input   string
		want    *span
	}{
		{"optional only b", optional, "b", &span{0, 1}},
		{"optional all", optional, "abc", &span{0, 3}},
		{"optional none", optional, "x", nil},
		{"digits", digits(), "ab123cd", &span{2, 3}},
		{"literal", str("foo"), "xxfoo", &span{2, 3}},
		{"alternation", ast.Or(str("foo"), str("bar")), "xbarfoo", &span{1, 3}},
		{"anchored", ast.Seq[byte](ast.Anchor[byte]{Kind: ast.Begin}, str("hi")), "hi hi", &span{0, 2}},
		{"anchored miss", ast.Seq[byte](ast.Anchor[byte]{Kind: ast.Begin}, str("hi")), " hi", nil},
		{"end anchored", ast.Seq[byte](str("hi"), ast.Anchor[byte]{Kind: ast.End}), "hi hi", &span{3, 2}},
		{"backreference", ast.Seq[byte](ast.Capture(ast.Span[byte]('a', 'z')), ast.Backreference[byte]{Index: 1}), "abccd", &span{2, 2}},
		{"empty pattern", ast.Seq[byte](), "abc", &span{0, 0}},
		{"empty input", digits(), "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := compile(t, tt.pattern)
			m, err := re.Find(context.Background(), []byte(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, spanOf(m)); diff != "" {
				t.Errorf("Find(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestFind_CaptureDigits(t *testing.T) {
	re := compile(t, ast.Capture(ast.Seq(ast.Between(ast.Span[byte]('0', '9'), 1, 3))))
	m, err := re.Find(context.Background(), []byte("123"))
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("no match")
	}
	if re.NumGroups() != 2 {
		t.Fatalf("NumGroups() = %d, want 2", re.NumGroups())
	}
	g0, g1 := m.Group(0), m.Group(1)
	if g0.Index() != 0 || g0.Length() != 3 {
		t.Errorf("group 0 = [%d, %d), want [0, 3)", g0.Index(), g0.End())
	}
	if g1.Index() != g0.Index() || g1.Length() != g0.Length() || !g1.Success() {
		t.Errorf("group 1 = %v, want the same span as group 0", g1)
	}
}

func TestRoundTrip_EnumeratedSet(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		set := interval.SetOf(alphabet.Bytes(),
			mustClosed[byte](t, alphabet.Bytes(), 'a', 'c'),
			mustClosed[byte](t, alphabet.Bytes(), 'x', 'z'),
		)
		re := compile(t, ast.Plus(ast.Node[byte](ast.Set[byte]{Values: set})))
		s := slices.Collect(set.Values())
		m, err := re.MatchExact(context.Background(), s)
		if err != nil || m == nil {
			t.Fatalf("MatchExact(%q) = %v, %v", s, m, err)
		}
	})

	t.Run("runes", func(t *testing.T) {
		set := interval.SetOf(alphabet.Runes(), mustClosed[rune](t, alphabet.Runes(), 'α', 'ω'))
		re, err := Compile(ast.Plus(ast.Node[rune](ast.Set[rune]{Values: set})), alphabet.Runes(), DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		s := slices.Collect(set.Values())
		m, err := re.MatchExact(context.Background(), s)
		if err != nil || m == nil || m.Length() != len(s) {
			t.Fatalf("MatchExact(%q) = %v, %v", string(s), m, err)
		}
	})

	t.Run("enum", func(t *testing.T) {
		colors, err := alphabet.NewEnum("red", "green", "blue", "black")
		if err != nil {
			t.Fatal(err)
		}
		blues, err := alphabet.Span[string](colors, "green", "blue", true, true)
		if err != nil {
			t.Fatal(err)
		}
		pattern := ast.Seq[string](ast.Const[string]{Value: "red"}, ast.Plus(ast.Node[string](ast.Set[string]{Values: blues})))
		re, err := Compile(pattern, alphabet.Alphabet[string](colors), DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		s := append([]string{"red"}, slices.Collect(blues.Values())...)
		m, err := re.MatchExact(context.Background(), s)
		if err != nil || m == nil {
			t.Fatalf("MatchExact(%v) = %v, %v", s, m, err)
		}
		if m, _ := re.MatchExact(context.Background(), []string{"red", "black"}); m != nil {
			t.Errorf("MatchExact(red black) = %v, want nil", m)
		}
	})
}

func mustClosed[T any](t *testing.T, info interval.RangeInfo[T], lo, hi T) interval.Range[T] {
	t.Helper()
	r, err := interval.Closed(info, lo, hi)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestFindAll(t *testing.T) {
	tests := []struct {
		name    string
		pattern ast.Node[byte]
		input   string
		want    []span
	}{
		{"digits", digits(), "a1b22c333", []span{{1, 1}, {3, 2}, {6, 3}}},
		{"empty matches", ast.Star(b('a')), "baaa", []span{{0, 0}, {1, 3}}},
		{"none", digits(), "abc", nil},
		{"literals", ast.Or(str("ab"), str("cd")), "abxcdab", []span{{0, 2}, {3, 2}, {5, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := compile(t, tt.pattern)
			var got []span
			err := re.FindAll(context.Background(), []byte(tt.input), func(m *Match[byte]) bool {
				got = append(got, *spanOf(m))
				return true
			})
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FindAll(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestAll_StopsEarly(t *testing.T) {
	re := compile(t, digits())
	var got []string
	for m, err := range re.All(context.Background(), []byte("1 22 333 4444")) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, string(m.Value()))
		if len(got) == 2 {
			break
		}
	}
	if diff := cmp.Diff([]string{"1", "22"}, got); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestAll_Error(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 100
	cfg.EnablePrefilter = false
	re, err := Compile(ast.Seq(ast.Star(ast.Star(b('a'))), b('b')), alphabet.Bytes(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	err = re.FindAll(context.Background(), bytes.Repeat([]byte("a"), 30), func(*Match[byte]) bool { return true })
	if err == nil {
		t.Fatal("FindAll() error = nil, want step limit error")
	}
}

func TestIsMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern ast.Node[byte]
		input   string
		want    bool
	}{
		{"dfa hit", digits(), "abc9", true},
		{"dfa miss", digits(), "abc", false},
		{"prefilter hit", ast.Seq(str("foo"), ast.Star(b('o'))), "xfooo", true},
		{"prefilter miss", ast.Seq(str("foo"), ast.Star(b('o'))), "xfo", false},
		{"backreference", ast.Seq[byte](ast.Capture(b('a')), ast.Backreference[byte]{Index: 1}), "baab", true},
		{"backreference miss", ast.Seq[byte](ast.Capture(b('a')), ast.Backreference[byte]{Index: 1}), "abab", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := compile(t, tt.pattern)
			got, err := re.IsMatch(context.Background(), []byte(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("IsMatch(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatchExact(t *testing.T) {
	re := compile(t, ast.Seq(ast.Named("year", digits()), b('-'), ast.Named("month", digits())))
	m, err := re.MatchExact(context.Background(), []byte("2024-10"))
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("MatchExact() = nil")
	}
	year, ok := m.Named("year")
	if !ok || string(year.Value()) != "2024" {
		t.Errorf("year = %v, %v", year, ok)
	}
	if diff := cmp.Diff([]string{"", "year", "month"}, re.GroupNames()); diff != "" {
		t.Errorf("GroupNames() mismatch (-want +got):\n%s", diff)
	}

	for _, in := range []string{"2024-10x", "x2024-10", "2024"} {
		if m, err := re.MatchExact(context.Background(), []byte(in)); err != nil || m != nil {
			t.Errorf("MatchExact(%q) = %v, %v, want nil", in, m, err)
		}
	}
}

func TestCompile_Strategy(t *testing.T) {
	tests := []struct {
		name     string
		pattern  ast.Node[byte]
		strategy string
		dfa      bool
	}{
		{"literal", ast.Seq(str("foo"), ast.Star(b('o'))), `memmem("foo")`, true},
		{"byte", ast.Seq(b('x'), ast.Star(b('y'))), `memchr('x')`, true},
		{"alternation", ast.Or(str("foo"), str("bar")), "aho-corasick(2 literals)", true},
		{"small class", digits(), "byteset(10)", true},
		{"no prefix", ast.Plus(ast.Span[byte]('a', 'z')), "none", true},
		{"backreference", ast.Seq[byte](ast.Capture(str("ab")), ast.Backreference[byte]{Index: 1}), `memmem("ab")`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := compile(t, tt.pattern)
			if got := re.Strategy(); got != tt.strategy {
				t.Errorf("Strategy() = %s, want %s", got, tt.strategy)
			}
			if got := re.DFA() != nil; got != tt.dfa {
				t.Errorf("DFA() != nil is %v, want %v", got, tt.dfa)
			}
			if re.NFA() == nil {
				t.Error("NFA() = nil")
			}
		})
	}

	re, err := Compile(ast.Str('a', 'b'), alphabet.Runes(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if re.Strategy() != "none" {
		t.Errorf("rune Strategy() = %s, want none", re.Strategy())
	}
}

func TestPrefilter_MatchesWithout(t *testing.T) {
	patterns := []ast.Node[byte]{
		ast.Seq(str("ab"), ast.Star(b('a'))),
		ast.Or(str("aba"), str("bb")),
		ast.Seq(ast.Or(b('a'), b('c')), b('b')),
		ast.Seq[byte](ast.Capture(str("ba")), ast.Backreference[byte]{Index: 1}),
	}
	off := DefaultConfig()
	off.EnablePrefilter = false
	rng := rand.New(rand.NewPCG(5, 8))
	for _, p := range patterns {
		with := compile(t, p)
		without, err := Compile(p, alphabet.Bytes(), off)
		if err != nil {
			t.Fatal(err)
		}
		if with.Strategy() == "none" {
			t.Fatalf("%v: no prefilter", p)
		}
		for i := 0; i < 300; i++ {
			in := make([]byte, rng.IntN(12))
			for j := range in {
				in[j] = "abc"[rng.IntN(3)]
			}
			var got, want []span
			collect := func(dst *[]span) func(*Match[byte]) bool {
				return func(m *Match[byte]) bool {
					*dst = append(*dst, *spanOf(m))
					return true
				}
			}
			if err := with.FindAll(context.Background(), in, collect(&got)); err != nil {
				t.Fatal(err)
			}
			if err := without.FindAll(context.Background(), in, collect(&want)); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("%v on %q: prefilter changes matches (-want +got):\n%s", p, in, diff)
			}
		}
	}
}

func TestPrefilter_OverlappingLiterals(t *testing.T) {
	digit := ast.Condition[byte]{Name: "digit", Pred: func(v byte) bool { return v >= '0' && v <= '9' }}
	patterns := []ast.Node[byte]{
		ast.Or(str("abcd"), ast.Seq[byte](str("bc"), digit)),
		ast.Or(str("abcd"), str("bc")),
		ast.Or(str("xyzzy"), str("zz"), str("y")),
	}
	inputs := []string{"abcd", "xabcd", "bc1", "abc5d", "abcdbc", "xyzzyzz", "zzxyzzy", ""}
	off := DefaultConfig()
	off.EnablePrefilter = false
	ctx := context.Background()

	for _, p := range patterns {
		with := compile(t, p)
		without, err := Compile(p, alphabet.Bytes(), off)
		if err != nil {
			t.Fatal(err)
		}
		if with.Strategy() == "none" {
			t.Fatalf("%v: no prefilter", p)
		}
		for _, in := range inputs {
			wantM, err := without.Find(ctx, []byte(in))
			if err != nil {
				t.Fatal(err)
			}
			gotM, err := with.Find(ctx, []byte(in))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(spanOf(wantM), spanOf(gotM)); diff != "" {
				t.Errorf("%v: Find(%q) mismatch (-want +got):\n%s", p, in, diff)
			}

			var want, got []span
			_ = without.FindAll(ctx, []byte(in), func(m *Match[byte]) bool { want = append(want, *spanOf(m)); return true })
			_ = with.FindAll(ctx, []byte(in), func(m *Match[byte]) bool { got = append(got, *spanOf(m)); return true })
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("%v: FindAll(%q) mismatch (-want +got):\n%s", p, in, diff)
			}

			wantOK, _ := without.IsMatch(ctx, []byte(in))
			gotOK, _ := with.IsMatch(ctx, []byte(in))
			if gotOK != wantOK {
				t.Errorf("%v: IsMatch(%q) = %v, want %v", p, in, gotOK, wantOK)
			}
		}
	}
}

func TestCompile_DFAFallbackLogs(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.MaxDFAStates = 64
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// (a|b)*a(a|b){8} needs 2^9 DFA states.
	ab := ast.Or(b('a'), b('b'))
	re, err := Compile(ast.Seq(ast.Star(ab), b('a'), ast.Between(ab, 8, 8)), alphabet.Bytes(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if re.DFA() != nil {
		t.Error("DFA() != nil beyond the state limit")
	}
	for _, want := range []string{"DFA state limit exceeded", "compiled pattern", "dfa_states=0"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log lacks %q:\n%s", want, buf.String())
		}
	}
	ok, err := re.IsMatch(context.Background(), []byte("bbabbbbbbbb"))
	if err != nil || !ok {
		t.Errorf("IsMatch() = %v, %v, want true", ok, err)
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(ast.Node[byte](ast.Condition[byte]{Name: "nil"}), alphabet.Bytes(), DefaultConfig())
	if !errors.Is(err, nfa.ErrUnsupportedConstruct) {
		t.Errorf("Compile(nil condition) error = %v, want ErrUnsupportedConstruct", err)
	}

	_, err = Compile(str("a"), alphabet.Bytes(), Config{})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "MaxNFAStates" {
		t.Errorf("Compile(Config{}) error = %v, want *ConfigError for MaxNFAStates", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic")
		}
	}()
	MustCompile(ast.Node[byte](ast.Backreference[byte]{Name: "missing"}), alphabet.Bytes(), DefaultConfig())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"default", func(*Config) {}, ""},
		{"dfa states", func(c *Config) { c.MaxDFAStates = 0 }, "MaxDFAStates"},
		{"dfa disabled", func(c *Config) { c.EnableDFA = false; c.MaxDFAStates = 0 }, ""},
		{"recursion", func(c *Config) { c.MaxRecursionDepth = 5 }, "MaxRecursionDepth"},
		{"steps", func(c *Config) { c.MaxSteps = -1 }, "MaxSteps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Errorf("Validate() = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestFindReader(t *testing.T) {
	re, err := Compile(ast.Seq(ast.Str('i', 'd', '='), ast.Capture(ast.Plus(ast.Span('0', '9')))), alphabet.Runes(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	r := input.FromRuneReader(strings.NewReader("name=x id=42;"))
	m, err := re.FindReader(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Index() != 7 || string(m.Group(1).Value()) != "42" {
		t.Errorf("FindReader() = %v", m)
	}
}

func TestFindAt(t *testing.T) {
	re := compile(t, digits())
	in := []byte("1 22 333")
	m, err := re.FindAt(context.Background(), in, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&span{2, 2}, spanOf(m)); diff != "" {
		t.Errorf("FindAt(2) mismatch (-want +got):\n%s", diff)
	}
	if m, _ := re.FindAt(context.Background(), in, len(in)+1); m != nil {
		t.Errorf("FindAt(out of range) = %v", m)
	}
}

func TestConcurrentFind(t *testing.T) {
	re := compile(t, ast.Seq(str("id"), ast.Capture(digits())))
	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				m, err := re.Find(context.Background(), []byte("xx id123 yy"))
				if err != nil || m == nil || string(m.Group(1).Value()) != "123" {
					errs <- "wrong result"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}

func TestFind_Cancelled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 0
	cfg.EnablePrefilter = false
	re, err := Compile(ast.Seq(ast.Star(ast.Star(b('a'))), b('b')), alphabet.Bytes(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := re.Find(ctx, bytes.Repeat([]byte("a"), 40)); !errors.Is(err, context.Canceled) {
		t.Errorf("Find() error = %v, want context.Canceled", err)
	}
}

func TestIsMatch_Context(t *testing.T) {
	re := compile(t, ast.Seq(ast.Plus(ast.Span[byte]('a', 'z')), b('!')))
	if re.DFA() == nil {
		t.Fatal("DFA() = nil")
	}
	in := bytes.Repeat([]byte("ab1"), 1000)

	var none context.Context
	if ok, err := re.IsMatch(none, in); err != nil || ok {
		t.Errorf("IsMatch(nil ctx) = %v, %v, want false, nil", ok, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := re.IsMatch(ctx, in); !errors.Is(err, context.Canceled) {
		t.Errorf("IsMatch(cancelled) error = %v, want context.Canceled", err)
	}
}
