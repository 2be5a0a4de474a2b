package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqgraph/internal/ir"
)

func TestCompileOntologyBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		name: "widgets"
		classes: {
			"core.Device": {}
			"core.Widget": parents: ["core.Device"]
			"core.Gadget": parents: "core.Device"
		}
		properties: {
			"core.hasPart": {kind: "object", domain: ["core.Device"], range: "core.Device"}
			"core.hasValue": {kind: "data"}
			"core.consistsOf": {}
		}
		individuals: {
			X: {
				class: "core.Widget"
				facts: "core.hasPart": ["Y", "Z"]
			}
			Y: {
				class: "core.Gadget"
				facts: "core.consistsOf": "Z"
				data: {
					"core.hasValue": 3
					"core.hasRatio": 0.5
					"core.hasLabel": "left"
					"core.isActive": true
					"core.hasTags": ["a", 1]
				}
			}
			Z: class: "core.Gadget"
		}
	`)
	require.NoError(t, v.Err())

	spec, err := CompileOntology(v)
	require.NoError(t, err)

	assert.Equal(t, "widgets", spec.Name)
	assert.Equal(t, []ir.ClassSpec{
		{Name: "core.Device"},
		{Name: "core.Widget", Parents: []string{"core.Device"}},
		{Name: "core.Gadget", Parents: []string{"core.Device"}},
	}, spec.Classes)

	require.Len(t, spec.Properties, 3)
	assert.Equal(t, ir.PropertySpec{
		Name: "core.hasPart", Kind: ir.PropertyObject,
		Domain: []string{"core.Device"}, Range: []string{"core.Device"},
	}, spec.Properties[0])
	assert.Equal(t, ir.PropertyData, spec.Properties[1].Kind)
	assert.Equal(t, ir.PropertyObject, spec.Properties[2].Kind, "kind defaults to object")

	require.Len(t, spec.Individuals, 3)
	x := spec.Individuals[0]
	assert.Equal(t, "X", x.Name)
	assert.Equal(t, "core.Widget", x.Class)
	assert.Equal(t, []ir.Fact{
		{Property: "core.hasPart", Object: "Y"},
		{Property: "core.hasPart", Object: "Z"},
	}, x.Facts)

	y := spec.Individuals[1]
	assert.Equal(t, []ir.Fact{{Property: "core.consistsOf", Object: "Z"}}, y.Facts)
	assert.Equal(t, ir.IRInt(3), y.Data["core.hasValue"])
	assert.Equal(t, ir.IRString("0.5"), y.Data["core.hasRatio"])
	assert.Equal(t, ir.IRString("left"), y.Data["core.hasLabel"])
	assert.Equal(t, ir.IRBool(true), y.Data["core.isActive"])
	assert.Equal(t, ir.IRArray{ir.IRString("a"), ir.IRInt(1)}, y.Data["core.hasTags"])

	assert.Empty(t, spec.Individuals[2].Facts)
}

func TestCompileOntologyMissingClass(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		classes: "core.A": {}
		individuals: X: facts: "core.p": "Y"
	`)
	require.NoError(t, v.Err())

	_, err := CompileOntology(v)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "class", ce.Field)
	assert.Contains(t, err.Error(), "individual X: class is required")
}

func TestCompileOntologyBadPropertyKind(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		classes: "core.A": {}
		properties: "core.p": kind: "annotation"
	`)
	require.NoError(t, v.Err())

	_, err := CompileOntology(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind")
	assert.Contains(t, err.Error(), `"annotation"`)
}

func TestCompileOntologyEmpty(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`name: "empty"`)
	require.NoError(t, v.Err())

	_, err := CompileOntology(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no classes and no individuals")
}

func TestCompileOntologyNonStringParents(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`classes: "core.A": parents: [1]`)
	require.NoError(t, v.Err())

	_, err := CompileOntology(v)
	require.Error(t, err)
}

func TestCompileOntologyCUEError(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		name: "a"
		name: "b"
	`)

	_, err := CompileOntology(v)
	require.Error(t, err)
}

func TestCompileErrorFormat(t *testing.T) {
	e := &CompileError{Field: "kind", Message: "bad"}
	assert.Equal(t, "kind: bad", e.Error())
}
