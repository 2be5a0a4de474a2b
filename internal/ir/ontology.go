package ir

// PropertyKind distinguishes relations between individuals from
// data-valued attributes.
type PropertyKind string

const (
	PropertyObject PropertyKind = "object"
	PropertyData   PropertyKind = "data"
)

// OntologySpec is the compiled form of an ontology source: the class
// hierarchy, declared properties and asserted individuals. Names are the
// reasoner's dotted internal names ("core.Widget").
type OntologySpec struct {
	Name        string           `json:"name"`
	Classes     []ClassSpec      `json:"classes"`
	Properties  []PropertySpec   `json:"properties"`
	Individuals []IndividualSpec `json:"individuals"`
}

// ClassSpec declares a class and its direct superclasses.
type ClassSpec struct {
	Name    string   `json:"name"`
	Parents []string `json:"parents,omitempty"`
}

// PropertySpec declares a property. Empty Domain or Range means
// unrestricted.
type PropertySpec struct {
	Name   string       `json:"name"`
	Kind   PropertyKind `json:"kind"`
	Domain []string     `json:"domain,omitempty"`
	Range  []string     `json:"range,omitempty"`
}

// IndividualSpec declares an individual with its most specific class,
// object-property assertions in source order and data-property values.
type IndividualSpec struct {
	Name  string   `json:"name"`
	Class string   `json:"class"`
	Facts []Fact   `json:"facts,omitempty"`
	Data  IRObject `json:"data,omitempty"`
}

// Fact is one object-property assertion: subject Property Object.
type Fact struct {
	Property string `json:"property"`
	Object   string `json:"object"`
}
