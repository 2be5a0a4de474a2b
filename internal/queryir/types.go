package queryir

import (
	"strconv"
	"strings"
)

// TermKind classifies a query term.
type TermKind string

const (
	// TermVariable is a query variable. Value keeps the sigil ("?x").
	TermVariable TermKind = "variable"

	// TermIRI is a full IRI. Value has no angle brackets.
	TermIRI TermKind = "iri"

	// TermPrefixed is a prefixed name ("saref:hasPart").
	TermPrefixed TermKind = "prefixed"

	// TermLiteral is a string, numeric or boolean literal. Value is the
	// lexical form.
	TermLiteral TermKind = "literal"
)

// Term is a subject, predicate or object of a triple pattern.
type Term struct {
	Kind  TermKind
	Value string

	// Datatype is the literal's datatype IRI or prefixed name, if any.
	Datatype string

	// Lang is the literal's language tag, if any.
	Lang string
}

// Var returns a variable term. A missing "?" is added.
func Var(name string) Term {
	if !strings.HasPrefix(name, "?") {
		name = "?" + name
	}
	return Term{Kind: TermVariable, Value: name}
}

// IRI returns a full IRI term.
func IRI(iri string) Term {
	return Term{Kind: TermIRI, Value: iri}
}

// Prefixed returns a prefixed-name term.
func Prefixed(name string) Term {
	return Term{Kind: TermPrefixed, Value: name}
}

// Literal returns a plain literal term.
func Literal(value string) Term {
	return Term{Kind: TermLiteral, Value: value}
}

// IsVariable reports whether the term is a variable.
func (t Term) IsVariable() bool {
	return t.Kind == TermVariable
}

// String renders the term as it would appear in query text. IRIs are
// bracketed and literals quoted.
func (t Term) String() string {
	switch t.Kind {
	case TermIRI:
		return "<" + t.Value + ">"
	case TermLiteral:
		return strconv.Quote(t.Value)
	}
	return t.Value
}

// Pattern is an element of a WHERE group.
//
// This is a sealed interface - only types in this package implement it.
type Pattern interface {
	patternNode() // Marker method - seals interface to this package
}

// Triple is a single (subject, predicate, object) pattern.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func (Triple) patternNode() {}

// Group is a braced block of patterns.
type Group struct {
	Patterns []Pattern
}

func (Group) patternNode() {}

// NotExists is a FILTER NOT EXISTS block. Triples inside it must be absent
// for the query to match.
type NotExists struct {
	Group Group
}

func (NotExists) patternNode() {}

// Query is a parsed requirement query.
type Query struct {
	// Base is the BASE IRI, if declared.
	Base string

	// Prefixes maps declared prefix labels (without colon) to IRIs.
	Prefixes map[string]string

	Distinct bool

	// Star is set for SELECT *. Projection is then empty.
	Star bool

	// Projection lists selected variables with their sigil, in order.
	Projection []string

	Where Group
}

// Variables returns every variable name in order of first appearance,
// projected variables first.
func (q *Query) Variables() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, v := range q.Projection {
		add(v)
	}
	Walk(q.Where, func(t Triple, _ bool) {
		for _, term := range [3]Term{t.Subject, t.Predicate, t.Object} {
			if term.IsVariable() {
				add(term.Value)
			}
		}
	})
	return out
}

// Triples returns every triple pattern in walk order.
func (q *Query) Triples() []Triple {
	var out []Triple
	Walk(q.Where, func(t Triple, _ bool) {
		out = append(out, t)
	})
	return out
}
