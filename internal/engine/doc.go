// Package engine evaluates requirement queries against a loaded store.
//
// A query is compiled to SQL over the store's triples view (see
// internal/querysql), executed, and shaped into an ir.ResultSet whose
// columns are the query's variables in order of first appearance,
// projected variables first. Variables the query does not bind in its
// result keep their own name as value, so instantiating a query graph with
// the row leaves them as fresh nodes.
//
// Evaluation may be restricted to a set of individuals, typically the
// members of a knowledge-graph partition: rows naming any stored individual
// outside that set are dropped.
//
// CRITICAL PATTERNS:
//
// Deterministic Results:
// Every compiled statement carries an ORDER BY on source declaration order
// with COLLATE BINARY tiebreakers. Identical stores and queries produce
// identical result sets.
//
// Logical Clock:
// Each evaluation is stamped with a monotonic seq from Clock.Next() for
// log correlation. Wall-clock time is never used for ordering.
package engine
