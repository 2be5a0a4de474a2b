package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/ontology"
)

// WidgetSpec returns the compiled form of the widget plant used across the
// test suites.
//
//	X (Widget) ──hasPart──▶ Y (Gadget, hasValue 3)
//	X ──hasPart──▶ S1 (Sensor) ──controls──▶ Y
//	X ──locatedIn──▶ R1 (Room)
//	W2 (Widget) ──hasPart──▶ G2 (Gadget)
//	W2 ──locatedIn──▶ R2 (Room)
//
// Dividing along core.Room keyed by core.Widget yields two partitions,
// X and W2.
func WidgetSpec() *ir.OntologySpec {
	return &ir.OntologySpec{
		Name: "widgets",
		Classes: []ir.ClassSpec{
			{Name: "core.Device"},
			{Name: "core.Widget", Parents: []string{"core.Device"}},
			{Name: "core.Gadget", Parents: []string{"core.Device"}},
			{Name: "core.Sensor", Parents: []string{"core.Device"}},
			{Name: "core.Room"},
		},
		Properties: []ir.PropertySpec{
			{Name: "core.hasPart", Kind: ir.PropertyObject, Domain: []string{"core.Device"}, Range: []string{"core.Device"}},
			{Name: "core.locatedIn", Kind: ir.PropertyObject, Domain: []string{"core.Device"}, Range: []string{"core.Room"}},
			{Name: "core.controls", Kind: ir.PropertyObject, Domain: []string{"core.Sensor"}, Range: []string{"core.Device"}},
			{Name: "core.hasValue", Kind: ir.PropertyData},
		},
		Individuals: []ir.IndividualSpec{
			{Name: "X", Class: "core.Widget", Facts: []ir.Fact{
				{Property: "core.hasPart", Object: "Y"},
				{Property: "core.hasPart", Object: "S1"},
				{Property: "core.locatedIn", Object: "R1"},
			}},
			{Name: "Y", Class: "core.Gadget", Data: ir.IRObject{"core.hasValue": ir.IRInt(3)}},
			{Name: "S1", Class: "core.Sensor", Facts: []ir.Fact{
				{Property: "core.controls", Object: "Y"},
			}},
			{Name: "W2", Class: "core.Widget", Facts: []ir.Fact{
				{Property: "core.hasPart", Object: "G2"},
				{Property: "core.locatedIn", Object: "R2"},
			}},
			{Name: "G2", Class: "core.Gadget"},
			{Name: "R1", Class: "core.Room"},
			{Name: "R2", Class: "core.Room"},
		},
	}
}

// WidgetOntology returns a reasoner over WidgetSpec.
func WidgetOntology(t testing.TB) *ontology.Ontology {
	t.Helper()
	o, err := ontology.New(WidgetSpec())
	require.NoError(t, err)
	return o
}

// WidgetCUE is WidgetSpec in the CUE ontology format.
const WidgetCUE = `
name: "widgets"

classes: {
	"core.Device": {}
	"core.Widget": parents: ["core.Device"]
	"core.Gadget": parents: ["core.Device"]
	"core.Sensor": parents: ["core.Device"]
	"core.Room": {}
}

properties: {
	"core.hasPart": {kind: "object", domain: ["core.Device"], range: ["core.Device"]}
	"core.locatedIn": {kind: "object", domain: ["core.Device"], range: ["core.Room"]}
	"core.controls": {kind: "object", domain: ["core.Sensor"], range: ["core.Device"]}
	"core.hasValue": {kind: "data"}
}

individuals: {
	X: {
		class: "core.Widget"
		facts: {
			"core.hasPart": ["Y", "S1"]
			"core.locatedIn": "R1"
		}
	}
	Y: {
		class: "core.Gadget"
		data: "core.hasValue": 3
	}
	S1: {
		class: "core.Sensor"
		facts: "core.controls": "Y"
	}
	W2: {
		class: "core.Widget"
		facts: {
			"core.hasPart": "G2"
			"core.locatedIn": "R2"
		}
	}
	G2: class: "core.Gadget"
	R1: class: "core.Room"
	R2: class: "core.Room"
}
`

// Queries over the widget plant.
const (
	// HasPartQuery asks for any widget with a part.
	HasPartQuery = `PREFIX saref: <https://saref.etsi.org/core/>
SELECT ?a ?b WHERE {
	?a a saref:Widget .
	?a saref:hasPart ?b .
}`

	// NoSensorQuery asks for widgets with no sensor part.
	NoSensorQuery = `PREFIX saref: <https://saref.etsi.org/core/>
SELECT ?w WHERE {
	?w a saref:Widget .
	FILTER NOT EXISTS { ?w saref:hasPart ?s . ?s a saref:Sensor }
}`
)
