// Package ir provides the foundational value types shared by every reqgraph
// package.
//
// This package imports nothing internal. It holds:
//   - IRValue, the sealed family of data-property values stored on graph nodes
//   - MarshalCanonical, RFC 8785 canonical JSON used for snapshots and hashing
//   - ResultSet, the tabular output of the query engine
//   - Namespaces, the bidirectional mapping between prefixed query names
//     ("saref:hasPart") and the reasoner's dotted internal names ("core.hasPart")
//   - Issue, the data form of recoverable diagnostic conditions
//
// Key design constraints:
//   - NO float types in IR values; floats are carried as IRString
//   - Snapshots and hashes depend only on content, never on iteration order
//   - All JSON tags use snake_case
package ir
