package compiler

import (
	"fmt"

	"github.com/roach88/reqgraph/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// OntologySpec errors (E101-E109)
	ErrUnknownClass      = "E101" // class reference not declared
	ErrUnknownProperty   = "E102" // property reference not declared
	ErrUnknownIndividual = "E103" // fact object is not a declared individual
	ErrPropertyKind      = "E104" // object property used as data or vice versa
	ErrDuplicateName     = "E105" // duplicate class/property/individual name
	ErrDomainViolation   = "E106" // fact subject outside the property's domain
	ErrRangeViolation    = "E107" // fact object outside the property's range
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.OntologySpec:
		return validateOntology(spec)
	case ir.OntologySpec:
		return validateOntology(&spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// validateOntology checks referential integrity: every class, property and
// individual an ontology mentions must be declared, facts must use object
// properties, data must use data properties, and facts must respect
// declared domains and ranges (subclasses included).
func validateOntology(spec *ir.OntologySpec) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	classes := make(map[string]ir.ClassSpec)
	for _, c := range spec.Classes {
		if _, dup := classes[c.Name]; dup {
			add(ErrDuplicateName, "classes."+c.Name, "class declared twice")
		}
		classes[c.Name] = c
	}
	for _, c := range spec.Classes {
		for _, parent := range c.Parents {
			if _, ok := classes[parent]; !ok {
				add(ErrUnknownClass, "classes."+c.Name+".parents", "unknown parent class %q", parent)
			}
		}
	}

	props := make(map[string]ir.PropertySpec)
	for _, p := range spec.Properties {
		if _, dup := props[p.Name]; dup {
			add(ErrDuplicateName, "properties."+p.Name, "property declared twice")
		}
		props[p.Name] = p
		for _, c := range append(append([]string{}, p.Domain...), p.Range...) {
			if _, ok := classes[c]; !ok && p.Kind == ir.PropertyObject {
				add(ErrUnknownClass, "properties."+p.Name, "unknown class %q in domain/range", c)
			}
		}
	}

	individuals := make(map[string]ir.IndividualSpec)
	for _, ind := range spec.Individuals {
		if _, dup := individuals[ind.Name]; dup {
			add(ErrDuplicateName, "individuals."+ind.Name, "individual declared twice")
		}
		individuals[ind.Name] = ind
		if _, ok := classes[ind.Class]; !ok {
			add(ErrUnknownClass, "individuals."+ind.Name+".class", "unknown class %q", ind.Class)
		}
	}

	isA := func(class string, allowed []string) bool {
		if len(allowed) == 0 {
			return true
		}
		for _, a := range ancestorsOf(class, classes) {
			for _, want := range allowed {
				if a == want {
					return true
				}
			}
		}
		return false
	}

	for _, ind := range spec.Individuals {
		for _, f := range ind.Facts {
			field := fmt.Sprintf("individuals.%s.facts.%s", ind.Name, f.Property)
			p, ok := props[f.Property]
			if !ok {
				add(ErrUnknownProperty, field, "unknown property %q", f.Property)
				continue
			}
			if p.Kind != ir.PropertyObject {
				add(ErrPropertyKind, field, "data property %q used as a fact", f.Property)
				continue
			}
			obj, ok := individuals[f.Object]
			if !ok {
				add(ErrUnknownIndividual, field, "unknown individual %q", f.Object)
				continue
			}
			if !isA(ind.Class, p.Domain) {
				add(ErrDomainViolation, field, "%s (%s) is outside the domain of %s", ind.Name, ind.Class, f.Property)
			}
			if !isA(obj.Class, p.Range) {
				add(ErrRangeViolation, field, "%s (%s) is outside the range of %s", obj.Name, obj.Class, f.Property)
			}
		}
		for _, name := range ind.Data.SortedKeys() {
			field := fmt.Sprintf("individuals.%s.data.%s", ind.Name, name)
			p, ok := props[name]
			if !ok {
				add(ErrUnknownProperty, field, "unknown property %q", name)
				continue
			}
			if p.Kind != ir.PropertyData {
				add(ErrPropertyKind, field, "object property %q used as data", name)
			}
		}
	}

	return errs
}

// ancestorsOf returns class followed by every transitive superclass,
// breadth first. Cycles are tolerated.
func ancestorsOf(class string, classes map[string]ir.ClassSpec) []string {
	out := []string{class}
	seen := map[string]bool{class: true}
	for i := 0; i < len(out); i++ {
		for _, parent := range classes[out[i]].Parents {
			if !seen[parent] {
				seen[parent] = true
				out = append(out, parent)
			}
		}
	}
	return out
}
