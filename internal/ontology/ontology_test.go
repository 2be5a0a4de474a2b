package ontology

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqgraph/internal/ir"
)

func testSpec() *ir.OntologySpec {
	return &ir.OntologySpec{
		Name: "widgets",
		Classes: []ir.ClassSpec{
			{Name: "core.Device"},
			{Name: "core.Widget", Parents: []string{"core.Device"}},
			{Name: "core.Gadget", Parents: []string{"core.Device"}},
			{Name: "core.SmartWidget", Parents: []string{"core.Widget"}},
			{Name: "core.Room"},
		},
		Properties: []ir.PropertySpec{
			{Name: "core.hasPart", Kind: ir.PropertyObject, Domain: []string{"core.Device"}},
			{Name: "core.locatedIn", Kind: ir.PropertyObject, Range: []string{"core.Room"}},
			{Name: "core.hasValue", Kind: ir.PropertyData},
		},
		Individuals: []ir.IndividualSpec{
			{Name: "X", Class: "core.SmartWidget", Facts: []ir.Fact{{Property: "core.hasPart", Object: "Y"}}},
			{Name: "Y", Class: "core.Gadget", Data: ir.IRObject{"core.hasValue": ir.IRInt(3)}},
			{Name: "R", Class: "core.Room"},
		},
	}
}

func mustNew(t *testing.T) *Ontology {
	t.Helper()
	o, err := New(testSpec())
	require.NoError(t, err)
	return o
}

func TestNewIndexesDeclarations(t *testing.T) {
	o := mustNew(t)

	assert.Equal(t, "widgets", o.Name())
	assert.Equal(t, []string{"core.Device", "core.Widget", "core.Gadget", "core.SmartWidget", "core.Room"}, o.Classes())
	assert.Equal(t, []string{"core.hasPart", "core.locatedIn", "core.hasValue"}, o.Properties())
	assert.Equal(t, []string{"X", "Y", "R"}, o.Individuals())
	assert.True(t, o.HasIndividual("Y"))
	assert.False(t, o.HasIndividual("Z"))
}

func TestNewRejectsUnknownReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ir.OntologySpec)
		kind   LookupKind
		target string
	}{
		{"unknown parent", func(s *ir.OntologySpec) { s.Classes[1].Parents = []string{"core.Devise"} }, KindClass, "core.Devise"},
		{"unknown individual class", func(s *ir.OntologySpec) { s.Individuals[2].Class = "core.Rom" }, KindClass, "core.Rom"},
		{"unknown fact object", func(s *ir.OntologySpec) { s.Individuals[0].Facts[0].Object = "Z" }, KindIndividual, "Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec()
			tt.mutate(spec)

			_, err := New(spec)
			require.Error(t, err)
			assert.True(t, IsLookupError(err))

			var le *LookupError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.kind, le.Kind)
			assert.Equal(t, tt.target, le.Name)
		})
	}
}

func TestNewNilSpec(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.False(t, IsLookupError(err))
}

func TestIndividualLookups(t *testing.T) {
	o := mustNew(t)

	class, err := o.ClassOf("X")
	require.NoError(t, err)
	assert.Equal(t, "core.SmartWidget", class)

	facts, err := o.Facts("X")
	require.NoError(t, err)
	assert.Equal(t, []ir.Fact{{Property: "core.hasPart", Object: "Y"}}, facts)

	data, err := o.Data("Y")
	require.NoError(t, err)
	assert.Equal(t, ir.IRObject{"core.hasValue": ir.IRInt(3)}, data)

	data["core.hasValue"] = ir.IRInt(99)
	again, _ := o.Data("Y")
	assert.Equal(t, ir.IRInt(3), again["core.hasValue"], "Data must return a copy")

	_, err = o.ClassOf("Q")
	assert.True(t, IsLookupError(err))
}

func TestAncestorsAndDescendants(t *testing.T) {
	o := mustNew(t)

	anc, err := o.Ancestors("core.SmartWidget")
	require.NoError(t, err)
	assert.Equal(t, []string{"core.SmartWidget", "core.Widget", "core.Device"}, anc)

	desc, err := o.Descendants("core.Device")
	require.NoError(t, err)
	assert.Equal(t, []string{"core.Device", "core.Widget", "core.Gadget", "core.SmartWidget"}, desc)

	// cached result must not alias the caller's slice
	anc[0] = "mutated"
	again, err := o.Ancestors("core.SmartWidget")
	require.NoError(t, err)
	assert.Equal(t, "core.SmartWidget", again[0])

	_, err = o.Ancestors("core.Gizmo")
	assert.True(t, IsLookupError(err))
}

func TestAncestorsToleratesCycles(t *testing.T) {
	spec := &ir.OntologySpec{Classes: []ir.ClassSpec{
		{Name: "core.A", Parents: []string{"core.B"}},
		{Name: "core.B", Parents: []string{"core.A"}},
	}}
	o, err := New(spec, WithCacheSize(1))
	require.NoError(t, err)

	anc, err := o.Ancestors("core.A")
	require.NoError(t, err)
	assert.Equal(t, []string{"core.A", "core.B"}, anc)
}

func TestDomainAndInClasses(t *testing.T) {
	o := mustNew(t)

	domain, err := Domain(o, "core.hasPart")
	require.NoError(t, err)
	assert.Equal(t, []string{"core.Device"}, domain)

	domain, err = Domain(o, "core.locatedIn")
	require.NoError(t, err)
	assert.Empty(t, domain)

	assert.True(t, InClasses(o, "core.SmartWidget", []string{"core.Device"}))
	assert.False(t, InClasses(o, "core.Room", []string{"core.Device"}))
	assert.True(t, InClasses(o, "core.Room", nil), "empty domain admits every class")
	assert.False(t, InClasses(o, "core.Gizmo", []string{"core.Device"}))

	_, err = Domain(o, "core.hasPrt")
	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, KindProperty, le.Kind)
	assert.Equal(t, []string{"core.hasPart"}, le.Suggestions)
}

func TestInstancesOf(t *testing.T) {
	o := mustNew(t)

	devices, err := InstancesOf(o, "core.Device")
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, devices)

	widgets, err := InstancesOf(o, "core.Widget")
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, widgets)
}

func TestConcurrentClosure(t *testing.T) {
	o := mustNew(t)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			class := []string{"core.SmartWidget", "core.Device"}[i%2]
			_, err := o.Ancestors(class)
			assert.NoError(t, err)
			_, err = o.Descendants(class)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestLookupErrorMessage(t *testing.T) {
	err := NewLookupError(KindClass, "core.Widgt", []string{"core.Widget", "core.Gadget", "core.Room"})
	assert.Equal(t, []string{"core.Widget", "core.Gadget"}, err.Suggestions)
	assert.Equal(t, `LOOKUP_FAILURE: unknown class "core.Widgt" (did you mean core.Widget, core.Gadget?)`, err.Error())

	plain := &LookupError{Kind: KindVariable, Name: "?z"}
	assert.Equal(t, `LOOKUP_FAILURE: unknown variable "?z"`, plain.Error())

	wrapped := fmt.Errorf("instantiate: %w", plain)
	assert.True(t, IsLookupError(wrapped))
}

func TestSuggest(t *testing.T) {
	known := []string{"alpha", "alpah", "beta", "alphabet", "alpha"}

	assert.Equal(t, []string{"alpah"}, Suggest("alpha", known), "exact matches are not suggestions")
	assert.Empty(t, Suggest("zzzzzz", known))
	assert.Len(t, Suggest("a", []string{"b", "c", "d", "e"}), 3, "suggestions are capped")
}
