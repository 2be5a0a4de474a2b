package ir

import (
	"strings"
)

// RDFTypeIRI is the full IRI of the "is of type" predicate.
const RDFTypeIRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// TypePredicate is the canonical prefixed name of the "is of type" predicate.
const TypePredicate = "rdf:type"

// TypeRelation is the internal name of the "is of type" predicate.
const TypeRelation = "rdf.type"

// Namespace binds a query prefix to its IRI and to the module name the
// reasoner uses for dotted internal names.
type Namespace struct {
	Prefix string `yaml:"prefix" json:"prefix" validate:"required"`
	IRI    string `yaml:"iri" json:"iri" validate:"required"`
	Module string `yaml:"module" json:"module" validate:"required"`
}

// Namespaces is an ordered prefix table. Earlier entries win when two
// entries share an IRI or a module.
type Namespaces []Namespace

// DefaultNamespaces returns the SAREF mapping: "saref:" names live in the
// reasoner's "core" module.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		{Prefix: "saref", IRI: "https://saref.etsi.org/core/", Module: "core"},
		{Prefix: "saref4inma", IRI: "https://saref.etsi.org/saref4inma/", Module: "saref4inma"},
		{Prefix: "rdf", IRI: "http://www.w3.org/1999/02/22-rdf-syntax-ns#", Module: "rdf"},
		{Prefix: "rdfs", IRI: "http://www.w3.org/2000/01/rdf-schema#", Module: "rdfs"},
		{Prefix: "owl", IRI: "http://www.w3.org/2002/07/owl#", Module: "owl"},
	}
}

// IsTypePredicate reports whether name denotes rdf:type in any of the
// spellings a query or graph may carry.
func (ns Namespaces) IsTypePredicate(name string) bool {
	switch name {
	case TypePredicate, "a", "<" + RDFTypeIRI + ">", RDFTypeIRI, TypeRelation:
		return true
	}
	return false
}

// Canonical rewrites a term as written in a query into its canonical
// prefixed form. declared holds the query's own PREFIX declarations
// (label without colon → IRI). Prefixed names whose declared IRI matches a
// configured namespace take the configured label, so "s:hasPart" and
// "saref:hasPart" agree when s and saref denote the same IRI. Full IRIs
// ("<...>") under a configured namespace are shortened the same way.
// Anything else is returned unchanged.
func (ns Namespaces) Canonical(name string, declared map[string]string) string {
	if ns.IsTypePredicate(name) {
		return TypePredicate
	}
	if iri, ok := unbracket(name); ok {
		if short, ok := ns.shorten(iri); ok {
			return short
		}
		return name
	}
	prefix, local, ok := strings.Cut(name, ":")
	if !ok || strings.HasPrefix(name, "?") {
		return name
	}
	if iri, ok := declared[prefix]; ok {
		if short, ok := ns.shorten(iri + local); ok {
			return short
		}
	}
	return name
}

// ToInternal maps a prefixed name to the reasoner's dotted internal name:
// "saref:hasPart" → "core.hasPart". Unknown prefixes keep their label as
// the module. Names already in dotted form are returned unchanged.
func (ns Namespaces) ToInternal(name string) string {
	if iri, ok := unbracket(name); ok {
		for _, n := range ns {
			if local, ok := strings.CutPrefix(iri, n.IRI); ok && local != "" {
				return n.Module + "." + local
			}
		}
		return name
	}
	if strings.HasPrefix(name, "?") {
		return name
	}
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return name
	}
	for _, n := range ns {
		if n.Prefix == prefix {
			return n.Module + "." + local
		}
	}
	return prefix + "." + local
}

// ToPrefixed is the inverse of ToInternal: "core.hasPart" → "saref:hasPart".
// The module is split at the first dot.
func (ns Namespaces) ToPrefixed(name string) string {
	if strings.HasPrefix(name, "?") || strings.HasPrefix(name, "<") {
		return name
	}
	module, local, ok := strings.Cut(name, ".")
	if !ok {
		return name
	}
	for _, n := range ns {
		if n.Module == module {
			return n.Prefix + ":" + local
		}
	}
	return module + ":" + local
}

func (ns Namespaces) shorten(iri string) (string, bool) {
	if iri == RDFTypeIRI {
		return TypePredicate, true
	}
	for _, n := range ns {
		if local, ok := strings.CutPrefix(iri, n.IRI); ok && local != "" {
			return n.Prefix + ":" + local, true
		}
	}
	return "", false
}

func unbracket(name string) (string, bool) {
	if len(name) > 2 && name[0] == '<' && name[len(name)-1] == '>' {
		return name[1 : len(name)-1], true
	}
	return "", false
}
