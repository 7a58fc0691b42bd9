package alphabet

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/fsmregex/interval"
)

func TestInteger_Boundaries(t *testing.T) {
	a := Bytes()
	if _, err := a.Next(255); !errors.Is(err, interval.ErrNoSuccessor) {
		t.Errorf("Next(255) error = %v, want ErrNoSuccessor", err)
	}
	if _, err := a.Prev(0); !errors.Is(err, interval.ErrNoPredecessor) {
		t.Errorf("Prev(0) error = %v, want ErrNoPredecessor", err)
	}
	if v, err := a.Next('a'); err != nil || v != 'b' {
		t.Errorf("Next('a') = %q, %v", v, err)
	}
	if got := a.Accredited().String(); got != "{[0, 255]}" {
		t.Errorf("Accredited = %s", got)
	}
	if _, err := NewInteger[int](5, 1); !errors.Is(err, interval.ErrInvalidRange) {
		t.Errorf("NewInteger(5, 1) error = %v, want ErrInvalidRange", err)
	}
}

func TestRunes_CharScenario(t *testing.T) {
	a := Runes()
	s := Set[rune](a, 'a', 'c')
	if s.Contains('b') {
		t.Error("{'a', 'c'} should not contain 'b'")
	}
	if !s.Contains('a') || !s.Contains('c') {
		t.Error("{'a', 'c'} should contain 'a' and 'c'")
	}
}

type color string

func TestEnum(t *testing.T) {
	e, err := NewEnum[color]("red", "green", "blue", "black")
	if err != nil {
		t.Fatal(err)
	}
	r, err := interval.Closed[color](e, "green", "blue")
	if err != nil {
		t.Fatal(err)
	}
	if !r.Contains("green") || !r.Contains("blue") || r.Contains("red") || r.Contains("purple") {
		t.Error("wrong membership in [green, blue]")
	}
	s := interval.SetOfValues[color](e, "red", "green")
	if s.Len() != 1 {
		t.Errorf("adjacent enum values should merge, got %v", s)
	}
	if _, err := e.Next("black"); !errors.Is(err, interval.ErrNoSuccessor) {
		t.Errorf("Next(black) error = %v", err)
	}
	if _, err := NewEnum[color]("red", "red"); !errors.Is(err, ErrDuplicateValue) {
		t.Errorf("duplicate enum error = %v", err)
	}
}

func TestAdapt(t *testing.T) {
	type level int
	base := ASCII()
	a := Adapt[level, byte](base, func(l level) byte { return byte(l) }, func(b byte) level { return level(b) })
	if got := a.Accredited().String(); got != "{[0, 127]}" {
		t.Errorf("Accredited = %s", got)
	}
	if n, err := a.Next(level(10)); err != nil || n != 11 {
		t.Errorf("Next(10) = %v, %v", n, err)
	}
	if _, err := a.Next(level(127)); !errors.Is(err, interval.ErrNoSuccessor) {
		t.Errorf("Next(127) error = %v", err)
	}
}

func TestCondition(t *testing.T) {
	a := ASCII()
	digits := Condition[byte](a, func(b byte) bool { return b >= '0' && b <= '9' })
	if got := digits.String(); got != "{[48, 57]}" {
		t.Errorf("digits = %s", got)
	}
	vowels := Condition[byte](a, func(b byte) bool { return slices.Contains([]byte("aeiou"), b) })
	if diff := cmp.Diff([]byte("aeiou"), slices.Collect(vowels.Values())); diff != "" {
		t.Errorf("vowels mismatch (-want +got):\n%s", diff)
	}
}

func TestSpan_ClipsToAccredited(t *testing.T) {
	s, err := Span[byte](ASCII(), 100, 200, true, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.String(); got != "{[100, 127]}" {
		t.Errorf("Span = %s", got)
	}
	if _, err := Span[byte](ASCII(), 5, 5, false, true); !errors.Is(err, interval.ErrInvalidRange) {
		t.Errorf("Span error = %v, want ErrInvalidRange", err)
	}
}
