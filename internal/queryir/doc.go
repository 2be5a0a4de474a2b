// Package queryir provides the closed syntax tree for requirement queries.
//
// Requirement queries are the triple-pattern subset of SPARQL: a SELECT
// over a group of triple patterns that may nest further groups and
// FILTER NOT EXISTS blocks. Nothing else is representable.
//
// SEALED INTERFACES:
//
// Pattern is a sealed interface using the marker method pattern. Only
// Triple, Group and NotExists implement it, so consumers can switch over
// patterns exhaustively:
//
//	switch p := pattern.(type) {
//	case Triple:
//	    // a single (subject, predicate, object) pattern
//	case Group:
//	    // a nested { ... } block
//	case NotExists:
//	    // a negated block: every triple inside flips polarity
//	}
//
// POLARITY:
//
// Walk visits triples depth first and passes each one's polarity
// (mustExist). Polarity is a property of nesting depth: it flips on entry
// to a NOT EXISTS block and is restored on exit, so a sibling block after a
// negation sees the outer polarity and a doubly negated triple is required
// again.
//
// Consumers:
//   - qg.Build turns a query into a query graph
//   - querysql.Compile turns a query into SQL over the triple store
package queryir
