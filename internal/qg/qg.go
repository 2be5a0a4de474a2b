// Package qg implements query graphs: the property-graph form of a
// requirement query.
//
// A query graph is built from a parsed query with one node per subject and
// object and one edge per triple pattern. Edges carry the pattern's
// polarity (MustExist), which flips inside every FILTER NOT EXISTS block.
// Binding a result row with Instantiate turns variables into individuals,
// UpdateStatus classifies every element against a knowledge graph, and
// Solve derives the helper graph that shows how missing requirements can be
// routed through existing material.
//
// Mutating operations work on a copy unless asked to work in place.
package qg

import (
	"fmt"
	"slices"

	"github.com/roach88/reqgraph/internal/compiler"
	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/queryir"
)

// QueryGraph is a property graph derived from a query.
type QueryGraph struct {
	*graph.Graph

	ns           ir.Namespaces
	query        *queryir.Query
	fold         foldRecord
	instantiated bool
}

// Option configures a mutating operation.
type Option func(*opConfig)

type opConfig struct {
	inPlace bool
}

// InPlace makes the operation mutate and return the receiver instead of a
// copy.
func InPlace() Option {
	return func(c *opConfig) { c.inPlace = true }
}

func apply(opts []Option) opConfig {
	var c opConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Parse parses query text and builds its query graph.
func Parse(text string, ns ir.Namespaces) (*QueryGraph, error) {
	q, err := compiler.ParseQuery(text)
	if err != nil {
		return nil, err
	}
	return Build(q, ns)
}

// Build walks q and returns its query graph. Terms are canonicalized
// through ns so that two prefixes bound to the same IRI yield the same
// node and edge names. Repeated triples are merged; the polarity of the
// last occurrence wins.
func Build(q *queryir.Query, ns ir.Namespaces) (*QueryGraph, error) {
	if q == nil {
		return nil, fmt.Errorf("build query graph: nil query")
	}

	g := &QueryGraph{Graph: graph.New(), ns: ns, query: q}
	var err error
	queryir.Walk(q.Where, func(t queryir.Triple, mustExist bool) {
		if err != nil {
			return
		}
		switch t.Predicate.Kind {
		case queryir.TermIRI, queryir.TermPrefixed:
		default:
			err = fmt.Errorf("build query graph: triple %s %s %s: predicate must be an IRI or prefixed name",
				t.Subject, t.Predicate, t.Object)
			return
		}

		s := g.termName(t.Subject)
		o := g.termName(t.Object)
		g.AddNode(s, graph.NodeAttrs{Kind: termKind(t.Subject)})
		g.AddNode(o, graph.NodeAttrs{Kind: termKind(t.Object)})

		kind := graph.EdgeVarToClass
		if t.Subject.IsVariable() && t.Object.IsVariable() {
			kind = graph.EdgeVarToVar
		}
		g.AddEdge(s, o, g.termName(t.Predicate), graph.EdgeAttrs{Kind: kind, MustExist: mustExist})
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *QueryGraph) termName(t queryir.Term) string {
	switch t.Kind {
	case queryir.TermVariable:
		return t.Value
	case queryir.TermIRI:
		return g.ns.Canonical(t.String(), g.query.Prefixes)
	case queryir.TermPrefixed:
		return g.ns.Canonical(t.Value, g.query.Prefixes)
	default:
		return t.String()
	}
}

func termKind(t queryir.Term) graph.NodeKind {
	if t.IsVariable() {
		return graph.KindVariable
	}
	return graph.KindClass
}

// Namespaces returns the prefix table the graph was built with.
func (g *QueryGraph) Namespaces() ir.Namespaces {
	return g.ns
}

// Query returns the parsed query the graph was built from. It is nil for
// graphs assembled by hand.
func (g *QueryGraph) Query() *queryir.Query {
	return g.query
}

// Instantiated reports whether a result row has been bound.
func (g *QueryGraph) Instantiated() bool {
	return g.instantiated
}

// Variables returns the names of variable nodes in insertion order.
func (g *QueryGraph) Variables() []string {
	var out []string
	for _, name := range g.Nodes() {
		if attrs, _ := g.Node(name); attrs.Kind == graph.KindVariable {
			out = append(out, name)
		}
	}
	return out
}

// Clone returns an independent copy, fold record included.
func (g *QueryGraph) Clone() *QueryGraph {
	return &QueryGraph{
		Graph:        g.Graph.Clone(),
		ns:           slices.Clone(g.ns),
		query:        g.query,
		fold:         g.fold.clone(),
		instantiated: g.instantiated,
	}
}

func (g *QueryGraph) target(inPlace bool) *QueryGraph {
	if inPlace {
		return g
	}
	return g.Clone()
}
