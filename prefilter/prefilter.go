// Package prefilter provides fast candidate search for byte patterns using
// extracted literal prefixes.
//
// A prefilter quickly skips positions in the haystack where no match can
// start. The engine then verifies each candidate with the full automaton.
//
// The package selects a strategy from the extracted literals:
//   - Single byte → memchr (bytes.IndexByte)
//   - Single substring → memmem (rare byte scan + verification)
//   - Only single-byte literals → byte set table scan
//   - Several literals sharing a prefix of 2+ bytes → memmem on the prefix
//   - Several literals → Aho-Corasick automaton
//
// Example usage:
//
//	prefixes := literal.New(alphabet.Bytes(), literal.DefaultConfig()).ExtractPrefixes(node)
//	pf := prefilter.NewBuilder(prefixes).Build()
//	if pf != nil {
//	    pos := pf.Find(haystack, 0)
//	}
package prefilter

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/coregx/ahocorasick"
	"golang.org/x/sys/cpu"

	"github.com/coregx/fsmregex/literal"
)

// Prefilter finds candidate match starts before the full engine runs.
type Prefilter interface {
	// Find returns the index of the first candidate at or after start, or -1
	// if no candidate exists. A candidate is a position where one of the
	// literals starts; it does not guarantee a match.
	//
	// No match of the pattern starts in [start, Find(haystack, start)).
	Find(haystack []byte, start int) int

	// IsComplete reports whether a candidate is always a match: every
	// literal is the whole text of a match.
	IsComplete() bool

	// LiteralLen returns the length of every literal when IsComplete is
	// true and all literals share one length, and 0 otherwise.
	LiteralLen() int

	// String names the strategy for logging.
	String() string
}

// Builder constructs a prefilter from extracted prefix literals.
type Builder struct {
	prefixes *literal.Seq[byte]
}

// NewBuilder creates a new prefilter builder. prefixes may be nil.
func NewBuilder(prefixes *literal.Seq[byte]) *Builder {
	return &Builder{prefixes: prefixes}
}

// Build constructs the best prefilter for the literals, or returns nil if
// none can be built (no literals, or some alternative has no known prefix).
func (b *Builder) Build() Prefilter {
	return selectPrefilter(b.prefixes)
}

func selectPrefilter(seq *literal.Seq[byte]) Prefilter {
	if !seq.Usable() {
		return nil
	}
	complete := seq.IsExact()

	if seq.Len() == 1 {
		lit := seq.Get(0)
		if lit.Len() == 1 {
			return &memchrPrefilter{needle: lit.Values[0], complete: complete}
		}
		return newMemmemPrefilter(lit.Values, complete)
	}

	if maxLen(seq) == 1 {
		p := &byteSetPrefilter{complete: complete}
		for _, lit := range seq.Literals() {
			p.set[lit.Values[0]] = true
			p.count++
		}
		return p
	}

	if prefix := seq.LongestCommonPrefix(cmp.Compare[byte]); len(prefix) >= minSharedPrefix {
		return newMemmemPrefilter(prefix, false)
	}

	p, err := newAhoCorasickPrefilter(seq, complete)
	if err != nil {
		return nil
	}
	return p
}

// minSharedPrefix is the shortest common prefix worth a single-substring
// scan instead of an automaton.
const minSharedPrefix = 2

func maxLen(seq *literal.Seq[byte]) int {
	n := 0
	for _, lit := range seq.Literals() {
		n = max(n, lit.Len())
	}
	return n
}

func inBounds(haystack []byte, start int) bool {
	return start >= 0 && start < len(haystack)
}

// memchrPrefilter searches for a single byte.
type memchrPrefilter struct {
	needle   byte
	complete bool
}

func (p *memchrPrefilter) Find(haystack []byte, start int) int {
	if !inBounds(haystack, start) {
		return -1
	}
	idx := bytes.IndexByte(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

func (p *memchrPrefilter) IsComplete() bool { return p.complete }

func (p *memchrPrefilter) LiteralLen() int {
	if p.complete {
		return 1
	}
	return 0
}

func (p *memchrPrefilter) String() string { return fmt.Sprintf("memchr(%q)", p.needle) }

// memmemPrefilter searches for a single substring.
//
// On CPUs with AVX2 the runtime's bytes.Index is vectorized and used
// directly. Elsewhere the rarest byte of the needle is located with
// bytes.IndexByte and the needle is verified around it.
type memmemPrefilter struct {
	needle   []byte
	complete bool
	rare     byte
	offset   int
	direct   bool
}

func newMemmemPrefilter(needle []byte, complete bool) *memmemPrefilter {
	rare, offset := selectRareByte(needle)
	return &memmemPrefilter{
		needle:   slices.Clone(needle),
		complete: complete,
		rare:     rare,
		offset:   offset,
		direct:   cpu.X86.HasAVX2,
	}
}

func (p *memmemPrefilter) Find(haystack []byte, start int) int {
	if !inBounds(haystack, start) {
		return -1
	}
	if p.direct {
		idx := bytes.Index(haystack[start:], p.needle)
		if idx == -1 {
			return -1
		}
		return start + idx
	}
	return p.findRare(haystack, start)
}

func (p *memmemPrefilter) findRare(haystack []byte, start int) int {
	n := len(p.needle)
	for i := start + p.offset; i+n-p.offset <= len(haystack); {
		idx := bytes.IndexByte(haystack[i:len(haystack)-n+p.offset+1], p.rare)
		if idx == -1 {
			return -1
		}
		at := i + idx - p.offset
		if bytes.Equal(haystack[at:at+n], p.needle) {
			return at
		}
		i += idx + 1
	}
	return -1
}

func (p *memmemPrefilter) IsComplete() bool { return p.complete }

func (p *memmemPrefilter) LiteralLen() int {
	if p.complete {
		return len(p.needle)
	}
	return 0
}

func (p *memmemPrefilter) String() string { return fmt.Sprintf("memmem(%q)", p.needle) }

// byteSetPrefilter searches for any byte of a small set.
type byteSetPrefilter struct {
	set      [256]bool
	count    int
	complete bool
}

func (p *byteSetPrefilter) Find(haystack []byte, start int) int {
	if !inBounds(haystack, start) {
		return -1
	}
	for i, b := range haystack[start:] {
		if p.set[b] {
			return start + i
		}
	}
	return -1
}

func (p *byteSetPrefilter) IsComplete() bool { return p.complete }

func (p *byteSetPrefilter) LiteralLen() int {
	if p.complete {
		return 1
	}
	return 0
}

func (p *byteSetPrefilter) String() string { return fmt.Sprintf("byteset(%d)", p.count) }

// ahoCorasickPrefilter searches for several literals at once.
//
// The automaton reports the occurrence that ends first, not the one that
// starts first, so Find steps back by the longest literal from its end.
type ahoCorasickPrefilter struct {
	auto     *ahocorasick.Automaton
	count    int
	complete bool
	length   int
	longest  int
}

func newAhoCorasickPrefilter(seq *literal.Seq[byte], complete bool) (*ahoCorasickPrefilter, error) {
	builder := ahocorasick.NewBuilder()
	length := seq.Get(0).Len()
	for _, lit := range seq.Literals() {
		builder.AddPattern(lit.Values)
		if lit.Len() != length {
			length = 0
		}
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("prefilter: build aho-corasick automaton: %w", err)
	}
	return &ahoCorasickPrefilter{
		auto:     auto,
		count:    seq.Len(),
		complete: complete,
		length:   length,
		longest:  maxLen(seq),
	}, nil
}

func (p *ahoCorasickPrefilter) Find(haystack []byte, start int) int {
	if !inBounds(haystack, start) {
		return -1
	}
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	// A literal starting before m.Start ends at or after m.End.
	return max(start, m.End-p.longest)
}

func (p *ahoCorasickPrefilter) IsComplete() bool { return p.complete }

func (p *ahoCorasickPrefilter) LiteralLen() int {
	if p.complete {
		return p.length
	}
	return 0
}

func (p *ahoCorasickPrefilter) String() string {
	return fmt.Sprintf("aho-corasick(%d literals)", p.count)
}
