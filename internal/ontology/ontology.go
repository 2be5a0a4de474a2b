package ontology

import (
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/reqgraph/internal/ir"
)

// Reasoner answers the ontology questions the graph layers ask.
// Every list is returned in declaration order.
type Reasoner interface {
	// Classes returns every declared class.
	Classes() []string

	// Properties returns every declared property.
	Properties() []string

	// Individuals returns every asserted individual.
	Individuals() []string

	// ClassOf returns the most specific asserted class of an individual.
	ClassOf(individual string) (string, error)

	// Facts returns the object-property assertions with individual as
	// subject.
	Facts(individual string) ([]ir.Fact, error)

	// Data returns the data-property values of an individual.
	Data(individual string) (ir.IRObject, error)

	// Ancestors returns class followed by all its transitive superclasses.
	Ancestors(class string) ([]string, error)

	// Descendants returns class followed by all its transitive subclasses.
	Descendants(class string) ([]string, error)

	// Property returns a property declaration.
	Property(name string) (ir.PropertySpec, error)
}

// DefaultCacheSize bounds the memoized ancestor and descendant lists.
const DefaultCacheSize = 512

// Option configures an Ontology.
type Option func(*options)

type options struct {
	cacheSize int
}

// WithCacheSize sets how many class closures are memoized per direction.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// Ontology is the in-memory Reasoner built from a compiled OntologySpec.
// It is immutable after New and safe for concurrent use.
type Ontology struct {
	name        string
	classes     []string
	parents     map[string][]string
	children    map[string][]string
	properties  []string
	props       map[string]ir.PropertySpec
	individuals []string
	indiv       map[string]ir.IndividualSpec

	ancestors   *lru.Cache[string, []string]
	descendants *lru.Cache[string, []string]
}

var _ Reasoner = (*Ontology)(nil)

// New indexes spec. It fails with a LookupError when a parent class, an
// individual's class or a fact's object is not declared.
func New(spec *ir.OntologySpec, opts ...Option) (*Ontology, error) {
	if spec == nil {
		return nil, fmt.Errorf("ontology: nil spec")
	}
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	ont := &Ontology{
		name:     spec.Name,
		parents:  make(map[string][]string),
		children: make(map[string][]string),
		props:    make(map[string]ir.PropertySpec),
		indiv:    make(map[string]ir.IndividualSpec),
	}

	for _, c := range spec.Classes {
		if _, dup := ont.parents[c.Name]; !dup {
			ont.classes = append(ont.classes, c.Name)
		}
		ont.parents[c.Name] = slices.Clone(c.Parents)
	}
	for _, c := range ont.classes {
		for _, p := range ont.parents[c] {
			if _, ok := ont.parents[p]; !ok {
				return nil, fmt.Errorf("class %s: %w", c, NewLookupError(KindClass, p, ont.classes))
			}
			if !slices.Contains(ont.children[p], c) {
				ont.children[p] = append(ont.children[p], c)
			}
		}
	}

	for _, p := range spec.Properties {
		if _, dup := ont.props[p.Name]; !dup {
			ont.properties = append(ont.properties, p.Name)
		}
		ont.props[p.Name] = p
	}

	for _, ind := range spec.Individuals {
		if _, ok := ont.parents[ind.Class]; !ok {
			return nil, fmt.Errorf("individual %s: %w", ind.Name, NewLookupError(KindClass, ind.Class, ont.classes))
		}
		if _, dup := ont.indiv[ind.Name]; !dup {
			ont.individuals = append(ont.individuals, ind.Name)
		}
		ont.indiv[ind.Name] = ind
	}
	for _, name := range ont.individuals {
		for _, f := range ont.indiv[name].Facts {
			if _, ok := ont.indiv[f.Object]; !ok {
				return nil, fmt.Errorf("individual %s %s: %w", name, f.Property,
					NewLookupError(KindIndividual, f.Object, ont.individuals))
			}
		}
	}

	var err error
	if ont.ancestors, err = lru.New[string, []string](o.cacheSize); err != nil {
		return nil, err
	}
	if ont.descendants, err = lru.New[string, []string](o.cacheSize); err != nil {
		return nil, err
	}
	return ont, nil
}

// Name returns the ontology's declared name.
func (o *Ontology) Name() string { return o.name }

// Classes returns every declared class.
func (o *Ontology) Classes() []string { return slices.Clone(o.classes) }

// Properties returns every declared object property.
func (o *Ontology) Properties() []string { return slices.Clone(o.properties) }

// Individuals returns every asserted individual.
func (o *Ontology) Individuals() []string { return slices.Clone(o.individuals) }

// HasIndividual reports whether individual is asserted.
func (o *Ontology) HasIndividual(individual string) bool {
	_, ok := o.indiv[individual]
	return ok
}

// ClassOf returns the class an individual is asserted to belong to.
func (o *Ontology) ClassOf(individual string) (string, error) {
	ind, err := o.individual(individual)
	if err != nil {
		return "", err
	}
	return ind.Class, nil
}

// Facts returns the object-property assertions made about individual.
func (o *Ontology) Facts(individual string) ([]ir.Fact, error) {
	ind, err := o.individual(individual)
	if err != nil {
		return nil, err
	}
	return slices.Clone(ind.Facts), nil
}

// Data returns a copy of the data properties attached to individual.
func (o *Ontology) Data(individual string) (ir.IRObject, error) {
	ind, err := o.individual(individual)
	if err != nil {
		return nil, err
	}
	return ind.Data.Clone(), nil
}

// Property returns the declaration of an object property.
func (o *Ontology) Property(name string) (ir.PropertySpec, error) {
	p, ok := o.props[name]
	if !ok {
		return ir.PropertySpec{}, NewLookupError(KindProperty, name, o.properties)
	}
	return p, nil
}

// Ancestors returns class followed by every superclass, nearest first.
func (o *Ontology) Ancestors(class string) ([]string, error) {
	return o.closure(class, o.parents, o.ancestors)
}

// Descendants returns class followed by every subclass, nearest first.
func (o *Ontology) Descendants(class string) ([]string, error) {
	return o.closure(class, o.children, o.descendants)
}

func (o *Ontology) individual(name string) (ir.IndividualSpec, error) {
	ind, ok := o.indiv[name]
	if !ok {
		return ir.IndividualSpec{}, NewLookupError(KindIndividual, name, o.individuals)
	}
	return ind, nil
}

// closure walks edges breadth first from class. Cycles in the hierarchy
// terminate because every class is visited once.
func (o *Ontology) closure(class string, edges map[string][]string, cache *lru.Cache[string, []string]) ([]string, error) {
	if _, ok := o.parents[class]; !ok {
		return nil, NewLookupError(KindClass, class, o.classes)
	}
	if cached, ok := cache.Get(class); ok {
		return slices.Clone(cached), nil
	}

	out := []string{class}
	seen := map[string]bool{class: true}
	for i := 0; i < len(out); i++ {
		for _, next := range edges[out[i]] {
			if !seen[next] {
				seen[next] = true
				out = append(out, next)
			}
		}
	}

	cache.Add(class, out)
	return slices.Clone(out), nil
}

// Domain returns the declared domain of a property. An empty domain means
// every class is permitted.
func Domain(r Reasoner, property string) ([]string, error) {
	p, err := r.Property(property)
	if err != nil {
		return nil, err
	}
	return slices.Clone(p.Domain), nil
}

// InClasses reports whether class, or one of its ancestors, is listed in
// allowed. An empty allowed list admits every class.
func InClasses(r Reasoner, class string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	anc, err := r.Ancestors(class)
	if err != nil {
		return false
	}
	for _, a := range anc {
		if slices.Contains(allowed, a) {
			return true
		}
	}
	return false
}

// InstancesOf returns the individuals whose class is class or one of its
// subclasses, in declaration order.
func InstancesOf(r Reasoner, class string) ([]string, error) {
	desc, err := r.Descendants(class)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, ind := range r.Individuals() {
		c, err := r.ClassOf(ind)
		if err != nil {
			return nil, err
		}
		if slices.Contains(desc, c) {
			out = append(out, ind)
		}
	}
	return out, nil
}
