// Package codegen emits Go source for a DFA over an integer alphabet.
//
// The generated code has no dependencies: each DFA state becomes a case of
// a switch, each transition a range condition on the current value. Two
// functions are emitted per DFA:
//
//	func <Name>Accepts(input []T) bool
//	func <Name>Longest(input []T, at int) (end int, ok bool)
//
// with the semantics of dfa.DFA.Accepts and dfa.DFA.LongestMatch.
package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"

	"github.com/dave/jennifer/jen"
	"golang.org/x/exp/constraints"

	"github.com/coregx/fsmregex/dfa"
	"github.com/coregx/fsmregex/interval"
)

// ErrInvalidConfig is returned for unusable generator configurations.
var ErrInvalidConfig = errors.New("codegen: invalid config")

// Config configures code generation.
type Config struct {
	// Package is the package clause of the generated file.
	Package string

	// Name prefixes the generated function names. It must be a Go
	// identifier; start it with an upper-case letter to export the
	// functions.
	Name string

	// TypeName is the element type of the input slices. Empty means the
	// Go name of T (e.g. "uint8" for byte).
	TypeName string

	// Pattern, when set, is quoted in the file header.
	Pattern string
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if !token.IsIdentifier(c.Package) {
		return fmt.Errorf("%w: package %q is not an identifier", ErrInvalidConfig, c.Package)
	}
	if !token.IsIdentifier(c.Name) {
		return fmt.Errorf("%w: name %q is not an identifier", ErrInvalidConfig, c.Name)
	}
	return nil
}

// Generator emits code for one DFA.
type Generator[T constraints.Integer] struct {
	dfa    *dfa.DFA[T]
	config Config
	file   *jen.File
}

// New creates a generator for d.
func New[T constraints.Integer](d *dfa.DFA[T], config Config) (*Generator[T], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.TypeName == "" {
		var zero T
		config.TypeName = fmt.Sprintf("%T", zero)
	}
	return &Generator[T]{dfa: d, config: config}, nil
}

// Generate builds the file and writes it to w.
func (g *Generator[T]) Generate(w io.Writer) error {
	g.file = jen.NewFile(g.config.Package)
	g.file.HeaderComment("Code generated by fsmregex. DO NOT EDIT.")
	if g.config.Pattern != "" {
		g.file.Comment(fmt.Sprintf("Pattern: %s", g.config.Pattern))
	}

	g.accepts()
	g.file.Line()
	g.longest()
	g.file.Line()
	g.terminal()

	if err := g.file.Render(w); err != nil {
		return fmt.Errorf("codegen: render %s: %w", g.config.Name, err)
	}
	return nil
}

// Source returns the generated file.
func (g *Generator[T]) Source() ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Generate(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator[T]) name(suffix string) string {
	return g.config.Name + suffix
}

func (g *Generator[T]) terminalName() string {
	return "is" + g.config.Name + "Terminal"
}

func (g *Generator[T]) elem() *jen.Statement {
	return jen.Index().Id(g.config.TypeName)
}

func (g *Generator[T]) start() jen.Code {
	return jen.Lit(int(g.dfa.Start()))
}

// accepts emits <Name>Accepts.
func (g *Generator[T]) accepts() {
	reject := jen.Return(jen.False())
	g.file.Commentf("%s reports whether input as a whole is accepted.", g.name("Accepts"))
	g.file.Func().Id(g.name("Accepts")).
		Params(jen.Id("input").Add(g.elem())).
		Bool().
		Block(
			jen.Id("state").Op(":=").Add(g.start()),
			jen.For(g.rangeInput()).Block(
				g.dispatch(reject),
			),
			jen.Return(jen.Id(g.terminalName()).Call(jen.Id("state"))),
		)
}

// longest emits <Name>Longest.
func (g *Generator[T]) longest() {
	stop := jen.Return(jen.Id("end"), jen.Id("ok"))
	g.file.Commentf("%s returns the end of the longest accepted prefix of input[at:].", g.name("Longest"))
	g.file.Func().Id(g.name("Longest")).
		Params(jen.Id("input").Add(g.elem()), jen.Id("at").Int()).
		Params(jen.Id("end").Int(), jen.Id("ok").Bool()).
		Block(
			jen.Id("state").Op(":=").Add(g.start()),
			jen.If(jen.Id(g.terminalName()).Call(jen.Id("state"))).Block(
				jen.List(jen.Id("end"), jen.Id("ok")).Op("=").List(jen.Id("at"), jen.True()),
			),
			jen.For(jen.Id("i").Op(":=").Id("at"), jen.Id("i").Op("<").Len(jen.Id("input")), jen.Id("i").Op("++")).Block(
				g.load(),
				g.dispatch(stop),
				jen.If(jen.Id(g.terminalName()).Call(jen.Id("state"))).Block(
					jen.List(jen.Id("end"), jen.Id("ok")).Op("=").List(jen.Id("i").Op("+").Lit(1), jen.True()),
				),
			),
			stop,
		)
}

// rangeInput emits the Accepts loop header. v is only declared when some
// transition reads it.
func (g *Generator[T]) rangeInput() jen.Code {
	if !g.reads() {
		return jen.Range().Id("input")
	}
	return jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Id("input")
}

func (g *Generator[T]) load() jen.Code {
	if !g.reads() {
		return jen.Null()
	}
	return jen.Id("v").Op(":=").Id("input").Index(jen.Id("i"))
}

func (g *Generator[T]) reads() bool {
	for id := 0; id < g.dfa.States(); id++ {
		if len(g.dfa.State(dfa.StateID(id)).Transitions()) > 0 {
			return true
		}
	}
	return false
}

// terminal emits the helper reporting accepting states.
func (g *Generator[T]) terminal() {
	var terminals []jen.Code
	for id := 0; id < g.dfa.States(); id++ {
		if g.dfa.IsTerminal(dfa.StateID(id)) {
			terminals = append(terminals, jen.Lit(id))
		}
	}
	body := []jen.Code{jen.Return(jen.False())}
	if len(terminals) > 0 {
		body = []jen.Code{
			jen.Switch(jen.Id("state")).Block(
				jen.Case(terminals...).Block(jen.Return(jen.True())),
			),
			jen.Return(jen.False()),
		}
	}
	g.file.Func().Id(g.terminalName()).
		Params(jen.Id("state").Int()).
		Bool().
		Block(body...)
}

// dispatch emits the per-state switch moving state on v. fail runs when no
// transition accepts v.
func (g *Generator[T]) dispatch(fail jen.Code) jen.Code {
	cases := make([]jen.Code, 0, g.dfa.States()+1)
	for id := 0; id < g.dfa.States(); id++ {
		s := g.dfa.State(dfa.StateID(id))
		ts := s.Transitions()
		if len(ts) == 0 {
			cases = append(cases, jen.Case(jen.Lit(id)).Block(fail))
			continue
		}
		inner := make([]jen.Code, 0, len(ts)+1)
		for _, t := range ts {
			inner = append(inner, jen.Case(g.condition(t.Set)).Block(
				jen.Id("state").Op("=").Lit(int(t.Target)),
			))
		}
		inner = append(inner, jen.Default().Block(fail))
		cases = append(cases, jen.Case(jen.Lit(id)).Block(jen.Switch().Block(inner...)))
	}
	cases = append(cases, jen.Default().Block(fail))
	return jen.Switch(jen.Id("state")).Block(cases...)
}

// condition emits a boolean expression testing v against set.
func (g *Generator[T]) condition(set *interval.RangeSet[T]) jen.Code {
	cond := jen.Null()
	for i, r := range set.Ranges() {
		lo, _ := r.First()
		hi, _ := r.Last()
		if i > 0 {
			cond.Op("||")
		}
		if lo == hi {
			cond.Id("v").Op("==").Add(num(lo))
		} else {
			cond.Id("v").Op(">=").Add(num(lo)).Op("&&").Id("v").Op("<=").Add(num(hi))
		}
	}
	return cond
}

func num[T constraints.Integer](v T) jen.Code {
	return jen.Id(fmt.Sprint(v))
}
