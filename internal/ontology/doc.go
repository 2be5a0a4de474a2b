// Package ontology provides the reasoner the graph layers query: the class
// hierarchy with its transitive closure, property declarations and the
// asserted individuals.
//
// Names are the reasoner's dotted internal names ("core.Widget"). Query
// terms are mapped into this form with ir.Namespaces.ToInternal before
// lookup.
package ontology
