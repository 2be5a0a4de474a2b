package qg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/queryir"
	"github.com/roach88/reqgraph/internal/testutil"
)

var ns = ir.DefaultNamespaces()

func mustParse(t *testing.T, text string) *QueryGraph {
	t.Helper()
	g, err := Parse(text, ns)
	require.NoError(t, err)
	return g
}

func edge(t *testing.T, g *QueryGraph, src, dst, label string) graph.EdgeAttrs {
	t.Helper()
	a, ok := g.Edge(graph.EdgeKey{Src: src, Dst: dst, Label: label})
	require.True(t, ok, "edge %s -%s-> %s", src, label, dst)
	return a
}

func node(t *testing.T, g *QueryGraph, name string) graph.NodeAttrs {
	t.Helper()
	a, ok := g.Node(name)
	require.True(t, ok, "node %s", name)
	return a
}

func TestBuildHasPart(t *testing.T) {
	g := mustParse(t, testutil.HasPartQuery)

	assert.Equal(t, []string{"?a", "saref:Widget", "?b"}, g.Nodes())
	assert.Equal(t, graph.KindVariable, node(t, g, "?a").Kind)
	assert.Equal(t, graph.KindClass, node(t, g, "saref:Widget").Kind)

	typ := edge(t, g, "?a", "saref:Widget", ir.TypePredicate)
	assert.Equal(t, graph.EdgeVarToClass, typ.Kind)
	assert.True(t, typ.MustExist)

	part := edge(t, g, "?a", "?b", "saref:hasPart")
	assert.Equal(t, graph.EdgeVarToVar, part.Kind)
	assert.True(t, part.MustExist)

	assert.Equal(t, []string{"?a", "?b"}, g.Variables())
	require.NotNil(t, g.Query())
	assert.Equal(t, []string{"?a", "?b"}, g.Query().Projection)
	assert.False(t, g.Instantiated())
}

func TestBuildCanonicalizesPrefixes(t *testing.T) {
	g := mustParse(t, `PREFIX s: <https://saref.etsi.org/core/>
SELECT ?a WHERE {
	?a s:hasPart ?b .
	?a saref:hasPart ?b .
	?a <https://saref.etsi.org/core/hasPart> ?b .
}`)

	assert.Equal(t, 1, g.NumEdges(), "the same predicate under three spellings is one edge")
	assert.True(t, g.HasEdge(graph.EdgeKey{Src: "?a", Dst: "?b", Label: "saref:hasPart"}))
}

func TestBuildPolarity(t *testing.T) {
	g := mustParse(t, `SELECT ?a WHERE {
	?a ex:p ?b .
	FILTER NOT EXISTS {
		?b ex:q ?c .
		FILTER NOT EXISTS { ?c ex:r ?d }
	}
	?a ex:s ?e .
}`)

	assert.True(t, edge(t, g, "?a", "?b", "ex:p").MustExist)
	assert.False(t, edge(t, g, "?b", "?c", "ex:q").MustExist)
	assert.True(t, edge(t, g, "?c", "?d", "ex:r").MustExist, "double negation restores the requirement")
	assert.True(t, edge(t, g, "?a", "?e", "ex:s").MustExist, "a block after a negation sees the outer polarity")
}

func TestBuildRepeatedTripleLastPolarityWins(t *testing.T) {
	g := mustParse(t, `SELECT ?a WHERE { ?a ex:p ?b . FILTER NOT EXISTS { ?a ex:p ?b } }`)

	assert.Equal(t, 1, g.NumEdges())
	assert.False(t, edge(t, g, "?a", "?b", "ex:p").MustExist)
}

func TestBuildLiteralObject(t *testing.T) {
	g := mustParse(t, `SELECT ?a WHERE { ?a ex:label "left" }`)

	assert.Equal(t, graph.KindClass, node(t, g, `"left"`).Kind)
	assert.Equal(t, graph.EdgeVarToClass, edge(t, g, "?a", `"left"`, "ex:label").Kind)
}

func TestBuildRejectsVariablePredicate(t *testing.T) {
	q := &queryir.Query{Where: queryir.Group{Patterns: []queryir.Pattern{
		queryir.Triple{Subject: queryir.Var("a"), Predicate: queryir.Var("p"), Object: queryir.Var("b")},
	}}}

	_, err := Build(q, ns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predicate must be an IRI")
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(nil, ns)
	require.Error(t, err)

	_, err = Parse("SELECT", ns)
	require.Error(t, err)
}

func TestBuildEmptyWhere(t *testing.T) {
	g := mustParse(t, `SELECT * WHERE { }`)
	assert.Equal(t, 0, g.NumNodes())
}

func TestCloneIsIndependent(t *testing.T) {
	g := mustParse(t, testutil.HasPartQuery).FoldClass(false)
	c := g.Clone()

	c.RemoveNode("?b")
	c.UnfoldClass(true)

	assert.True(t, g.HasNode("?b"))
	assert.True(t, g.Folded(), "unfolding the clone must not clear the original's record")
	assert.False(t, c.Folded())
}

func TestDisplayView(t *testing.T) {
	g := mustParse(t, testutil.NoSensorQuery)
	view := g.DisplayView()

	required := edge(t, view, "?w", "saref:Widget", ir.TypePredicate)
	assert.Equal(t, "#000000", required.Style.Color)
	assert.Equal(t, "solid", required.Style.Line)

	forbidden := edge(t, view, "?w", "?s", "saref:hasPart")
	assert.Equal(t, "#d62628", forbidden.Style.Color)
	assert.Equal(t, "dashed", forbidden.Style.Line)

	assert.Equal(t, "#000000", node(t, view, "saref:Widget").Style.Background)
	assert.Zero(t, edge(t, g, "?w", "?s", "saref:hasPart").Style, "DisplayView must not style the receiver")
}
