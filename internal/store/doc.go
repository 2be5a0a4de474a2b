// Package store provides SQLite-backed storage for the triples a reasoner
// asserts, so requirement queries can be evaluated as SQL.
//
// The schema holds:
//   - individuals: one row per individual with its most specific class
//   - class_closure: the reflexive transitive subclass closure
//   - assertions: object-property triples between individuals
//   - data_values: data-property values in lexical form
//
// Two views sit on top. typings expands every individual to all of its
// inferred classes, and triples unions assertions, typings (under the
// predicate "rdf.type") and data values into one subject/predicate/object
// relation.
//
// # Deterministic Reads
//
// Every query orders by seq, the declaration order of the source ontology,
// with a COLLATE BINARY tiebreaker. Identical ontologies load to identical
// stores and produce identical result orders.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
