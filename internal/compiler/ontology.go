package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/reqgraph/internal/ir"
)

// CompileOntology parses a CUE value into an OntologySpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the root of an ontology package:
//
//	name: "widgets"
//	classes: {
//		"core.Device": {}
//		"core.Widget": parents: ["core.Device"]
//	}
//	properties: {
//		"core.hasPart":  {kind: "object", domain: ["core.Device"]}
//		"core.hasValue": {kind: "data"}
//	}
//	individuals: {
//		X: {class: "core.Widget", facts: "core.hasPart": ["Y"], data: "core.hasValue": 3}
//	}
//
// Declaration order is preserved for classes, properties, individuals and
// facts. Float data values are kept as strings.
func CompileOntology(v cue.Value) (*ir.OntologySpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.OntologySpec{}
	if nameVal, ok := optional(v, "name"); ok {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Name = name
	}

	var err error
	if spec.Classes, err = parseClasses(v); err != nil {
		return nil, err
	}
	if spec.Properties, err = parseProperties(v); err != nil {
		return nil, err
	}
	if spec.Individuals, err = parseIndividuals(v); err != nil {
		return nil, err
	}

	if len(spec.Classes) == 0 && len(spec.Individuals) == 0 {
		return nil, &CompileError{
			Field:   "classes",
			Message: "ontology declares no classes and no individuals",
			Pos:     v.Pos(),
		}
	}

	return spec, nil
}

// eachField calls fn for every field of the struct at path under v, in
// declaration order. A missing path has no fields.
func eachField(v cue.Value, path string, fn func(name string, field cue.Value) error) error {
	if path != "" {
		v = v.LookupPath(cue.ParsePath(path))
		if !v.Exists() {
			return nil
		}
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Selector().Unquoted(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// optional looks up an optional field and reports whether it exists.
func optional(v cue.Value, field string) (cue.Value, bool) {
	f := v.LookupPath(cue.ParsePath(field))
	return f, f.Exists()
}

func parseClasses(v cue.Value) ([]ir.ClassSpec, error) {
	var classes []ir.ClassSpec
	err := eachField(v, "classes", func(name string, c cue.Value) error {
		class := ir.ClassSpec{Name: name}
		if parents, ok := optional(c, "parents"); ok {
			var err error
			if class.Parents, err = stringList(parents); err != nil {
				return err
			}
		}
		classes = append(classes, class)
		return nil
	})
	return classes, err
}

// parseProperties reads property declarations. kind defaults to object.
func parseProperties(v cue.Value) ([]ir.PropertySpec, error) {
	var props []ir.PropertySpec
	err := eachField(v, "properties", func(name string, p cue.Value) error {
		prop := ir.PropertySpec{Name: name, Kind: ir.PropertyObject}

		if kindVal, ok := optional(p, "kind"); ok {
			kind, err := kindVal.String()
			if err != nil {
				return formatCUEError(err)
			}
			prop.Kind = ir.PropertyKind(kind)
			if prop.Kind != ir.PropertyObject && prop.Kind != ir.PropertyData {
				return &CompileError{
					Field:   "kind",
					Message: fmt.Sprintf("property %s: kind must be \"object\" or \"data\", got %q", name, kind),
					Pos:     kindVal.Pos(),
				}
			}
		}

		for _, f := range []struct {
			name string
			dst  *[]string
		}{{"domain", &prop.Domain}, {"range", &prop.Range}} {
			if list, ok := optional(p, f.name); ok {
				var err error
				if *f.dst, err = stringList(list); err != nil {
					return err
				}
			}
		}

		props = append(props, prop)
		return nil
	})
	return props, err
}

// parseIndividuals reads individuals with their class, object-property
// facts and data values.
func parseIndividuals(v cue.Value) ([]ir.IndividualSpec, error) {
	var individuals []ir.IndividualSpec
	err := eachField(v, "individuals", func(name string, i cue.Value) error {
		indiv := ir.IndividualSpec{Name: name}

		classVal, ok := optional(i, "class")
		if !ok {
			return &CompileError{
				Field:   "class",
				Message: fmt.Sprintf("individual %s: class is required", name),
				Pos:     i.Pos(),
			}
		}
		class, err := classVal.String()
		if err != nil {
			return formatCUEError(err)
		}
		indiv.Class = class

		// facts: property -> object or list of objects.
		if facts, ok := optional(i, "facts"); ok {
			err := eachField(facts, "", func(prop string, objs cue.Value) error {
				objects, err := stringList(objs)
				for _, o := range objects {
					indiv.Facts = append(indiv.Facts, ir.Fact{Property: prop, Object: o})
				}
				return err
			})
			if err != nil {
				return err
			}
		}

		// data: property -> scalar or list of scalars.
		if data, ok := optional(i, "data"); ok {
			indiv.Data = ir.IRObject{}
			err := eachField(data, "", func(prop string, val cue.Value) error {
				dv, err := dataValue(val)
				if err != nil {
					return err
				}
				indiv.Data[prop] = dv
				return nil
			})
			if err != nil {
				return err
			}
		}

		individuals = append(individuals, indiv)
		return nil
	})
	return individuals, err
}

// dataValue converts a concrete CUE value to an IRValue.
// Floats become strings since IR values carry no float type.
func dataValue(v cue.Value) (ir.IRValue, error) {
	var (
		out ir.IRValue
		err error
	)
	switch v.Kind() {
	case cue.StringKind:
		var s string
		s, err = v.String()
		out = ir.IRString(s)
	case cue.IntKind:
		var n int64
		n, err = v.Int64()
		out = ir.IRInt(n)
	case cue.FloatKind:
		var f float64
		if f, err = v.Float64(); err == nil {
			return ir.FromAny(f)
		}
	case cue.BoolKind:
		var b bool
		b, err = v.Bool()
		out = ir.IRBool(b)
	case cue.ListKind:
		arr := ir.IRArray{}
		var iter cue.Iterator
		if iter, err = v.List(); err == nil {
			for iter.Next() {
				elem, err := dataValue(iter.Value())
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
		}
		out = arr
	default:
		return nil, &CompileError{
			Field:   "data",
			Message: fmt.Sprintf("unsupported data value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
	if err != nil {
		return nil, formatCUEError(err)
	}
	return out, nil
}

// stringList accepts a string or a list of strings.
func stringList(v cue.Value) ([]string, error) {
	if s, err := v.String(); err == nil {
		return []string{s}, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError turns the first CUE error into a CompileError carrying its
// position. Errors without a position are returned as they are.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	if pos := errors.Positions(errs[0]); len(pos) > 0 {
		return &CompileError{Field: "cue", Message: errs[0].Error(), Pos: pos[0]}
	}
	return err
}
