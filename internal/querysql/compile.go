// Package querysql compiles requirement queries to SQL over the store's
// triples view.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/queryir"
)

// Statement is a compiled query.
type Statement struct {
	SQL    string
	Params []any

	// Columns names the variable each SELECT column binds, in order of
	// first appearance outside NOT EXISTS blocks.
	Columns []string
}

// SQLCompiler compiles queries to parameterized SQL for SQLite.
//
// CRITICAL: ALL queries include ORDER BY for deterministic results.
// CRITICAL: All constants are parameterized, never interpolated.
type SQLCompiler struct {
	ns ir.Namespaces
}

// NewSQLCompiler creates a compiler resolving names through ns.
func NewSQLCompiler(ns ir.Namespaces) *SQLCompiler {
	return &SQLCompiler{ns: ns}
}

// Compile converts a query to a Statement.
//
// Each triple pattern becomes one alias of the triples view. Repeated
// variables become equality conditions between aliases and constants become
// parameters. Nested groups join the enclosing scope. A NOT EXISTS block
// becomes a correlated NOT EXISTS sub-select which sees every variable bound
// in its enclosing scopes, wherever in the group it was bound.
//
// rdf:type triples match inferred typings through the class closure.
func (c *SQLCompiler) Compile(q *queryir.Query) (*Statement, error) {
	if q == nil {
		return nil, fmt.Errorf("cannot compile nil query")
	}

	b := &builder{ns: c.ns, prefixes: q.Prefixes}
	sc, err := b.scope(q.Where, nil)
	if err != nil {
		return nil, err
	}

	st := &Statement{Params: sc.params, Columns: sc.order}

	selectList := "1"
	if len(sc.order) > 0 {
		cols := make([]string, len(sc.order))
		for i, v := range sc.order {
			cols[i] = sc.vars[v]
		}
		selectList = strings.Join(cols, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if q.Distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(selectList)
	sb.WriteString(sc.body())
	sb.WriteString(" ORDER BY ")
	sb.WriteString(c.stableOrderKey(q, sc))
	st.SQL = sb.String()

	return st, nil
}

// stableOrderKey returns the ORDER BY clause for a query.
// MANDATORY: Every query MUST call this function.
//
// Rows follow source declaration order (the seq of each matched triple),
// with the bound values as COLLATE BINARY tiebreakers. DISTINCT queries
// order by their columns only.
func (c *SQLCompiler) stableOrderKey(q *queryir.Query, sc *scope) string {
	var keys []string
	if !q.Distinct {
		for _, alias := range sc.aliases {
			keys = append(keys, alias+".seq ASC")
		}
	}
	for _, v := range sc.order {
		keys = append(keys, sc.vars[v]+" COLLATE BINARY ASC")
	}
	if len(keys) == 0 {
		return "1"
	}
	return strings.Join(keys, ", ")
}

type builder struct {
	ns       ir.Namespaces
	prefixes map[string]string
	next     int
}

// scope is one level of the query: the top-level WHERE group or a NOT
// EXISTS block.
type scope struct {
	aliases []string
	conds   []string
	params  []any

	// vars maps every visible variable to its column expression.
	vars map[string]string

	// order lists the variables first bound in this scope.
	order []string
}

func (s *scope) body() string {
	var sb strings.Builder
	if len(s.aliases) > 0 {
		from := make([]string, len(s.aliases))
		for i, a := range s.aliases {
			from[i] = "triples " + a
		}
		sb.WriteString(" FROM ")
		sb.WriteString(strings.Join(from, ", "))
	}
	if len(s.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(s.conds, " AND "))
	}
	return sb.String()
}

func (b *builder) scope(g queryir.Group, outer map[string]string) (*scope, error) {
	sc := &scope{vars: make(map[string]string, len(outer))}
	for k, v := range outer {
		sc.vars[k] = v
	}

	triples, negs := flatten(g)
	for _, t := range triples {
		if err := b.triple(sc, t); err != nil {
			return nil, err
		}
	}

	for _, neg := range negs {
		sub, err := b.scope(neg.Group, sc.vars)
		if err != nil {
			return nil, err
		}
		sc.conds = append(sc.conds, "NOT EXISTS (SELECT 1"+sub.body()+")")
		sc.params = append(sc.params, sub.params...)
	}
	return sc, nil
}

func (b *builder) triple(sc *scope, t queryir.Triple) error {
	alias := fmt.Sprintf("t%d", b.next)
	b.next++
	sc.aliases = append(sc.aliases, alias)

	if t.Predicate.Kind == queryir.TermLiteral {
		return fmt.Errorf("literal predicate %s is not supported", t.Predicate)
	}

	positions := [3]struct {
		term   queryir.Term
		column string
	}{
		{t.Subject, "subject"},
		{t.Predicate, "predicate"},
		{t.Object, "object"},
	}
	for _, p := range positions {
		expr := alias + "." + p.column
		if p.term.IsVariable() {
			if bound, ok := sc.vars[p.term.Value]; ok {
				sc.conds = append(sc.conds, bound+" = "+expr)
				continue
			}
			sc.vars[p.term.Value] = expr
			sc.order = append(sc.order, p.term.Value)
			continue
		}
		sc.conds = append(sc.conds, expr+" = ?")
		sc.params = append(sc.params, b.constant(p.term, p.column == "predicate"))
	}
	return nil
}

// constant resolves a non-variable term to the name stored for it.
func (b *builder) constant(t queryir.Term, predicate bool) any {
	if t.Kind == queryir.TermLiteral {
		return t.Value
	}
	name := t.Value
	if t.Kind == queryir.TermIRI {
		name = t.String()
	}
	name = b.ns.Canonical(name, b.prefixes)
	if predicate && b.ns.IsTypePredicate(name) {
		return ir.TypeRelation
	}
	return b.ns.ToInternal(name)
}

// flatten returns the triples of g and its nested groups, and the NOT
// EXISTS blocks found at the same level.
func flatten(g queryir.Group) ([]queryir.Triple, []queryir.NotExists) {
	var triples []queryir.Triple
	var negs []queryir.NotExists
	for _, p := range g.Patterns {
		switch pat := p.(type) {
		case queryir.Triple:
			triples = append(triples, pat)
		case *queryir.Triple:
			triples = append(triples, *pat)
		case queryir.Group:
			t, n := flatten(pat)
			triples = append(triples, t...)
			negs = append(negs, n...)
		case *queryir.Group:
			t, n := flatten(*pat)
			triples = append(triples, t...)
			negs = append(negs, n...)
		case queryir.NotExists:
			negs = append(negs, pat)
		case *queryir.NotExists:
			negs = append(negs, *pat)
		}
	}
	return triples, negs
}
