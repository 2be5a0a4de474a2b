package qg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/testutil"
)

func snapshotHash(t *testing.T, g *QueryGraph) string {
	t.Helper()
	h, err := g.Hash()
	require.NoError(t, err)
	return h
}

func TestFoldClass(t *testing.T) {
	g := mustParse(t, testutil.HasPartQuery)
	folded := g.FoldClass(false)

	assert.Equal(t, []string{"?a", "?b"}, folded.Nodes())
	assert.Equal(t, 1, folded.NumEdges())
	assert.Equal(t, "saref:Widget", node(t, folded, "?a").Class)
	assert.True(t, folded.Folded())

	assert.Equal(t, 3, g.NumNodes(), "FoldClass without inPlace must not mutate the receiver")
	assert.False(t, g.Folded())
}

func TestFoldUnfoldRoundTrip(t *testing.T) {
	queries := map[string]string{
		"has part":     testutil.HasPartQuery,
		"no sensor":    testutil.NoSensorQuery,
		"two types":    `SELECT ?a WHERE { ?a a saref:Widget . ?a rdf:type saref:Device . ?a saref:hasPart ?b }`,
		"shared class": `SELECT ?a WHERE { ?a a saref:Widget . ?b a saref:Widget . ?a saref:hasPart ?b }`,
	}

	for name, text := range queries {
		t.Run(name, func(t *testing.T) {
			g := mustParse(t, text)
			before := g.Snapshot()

			restored := g.FoldClass(false).UnfoldClass(false)
			assert.Equal(t, before, restored.Snapshot())
			assert.Equal(t, snapshotHash(t, g), snapshotHash(t, restored))
			assert.False(t, restored.Folded())
		})
	}
}

func TestFoldInPlace(t *testing.T) {
	g := mustParse(t, testutil.HasPartQuery)
	hash := snapshotHash(t, g)

	same := g.FoldClass(true)
	assert.Same(t, g, same)
	assert.False(t, g.HasNode("saref:Widget"))

	g.UnfoldClass(true)
	assert.Equal(t, hash, snapshotHash(t, g))
}

func TestFoldMultipleTypesKeepsLastClass(t *testing.T) {
	g := mustParse(t, `SELECT ?a WHERE { ?a a saref:Widget . ?a a saref:Device }`)
	folded := g.FoldClass(false)

	assert.Equal(t, "saref:Device", node(t, folded, "?a").Class)
	assert.Equal(t, []string{"?a"}, folded.Nodes())

	restored := folded.UnfoldClass(false)
	assert.Equal(t, "", node(t, restored, "?a").Class)
	assert.Equal(t, 2, restored.NumEdges())
}

func TestFoldKeepsReferencedClassNode(t *testing.T) {
	g := mustParse(t, `SELECT ?a WHERE { ?a a saref:Widget . ?a ex:sameKindAs saref:Widget }`)
	folded := g.FoldClass(false)

	assert.True(t, folded.HasNode("saref:Widget"))
	assert.Equal(t, 1, folded.NumEdges())
	assert.True(t, folded.HasEdge(graph.EdgeKey{Src: "?a", Dst: "saref:Widget", Label: "ex:sameKindAs"}))

	assert.Equal(t, g.Snapshot(), folded.UnfoldClass(false).Snapshot())
}

func TestFoldSkipsVariableClass(t *testing.T) {
	g := mustParse(t, `SELECT ?a ?t WHERE { ?a a ?t }`)
	folded := g.FoldClass(false)

	assert.Equal(t, 1, folded.NumEdges())
	assert.False(t, folded.Folded())
	assert.Equal(t, "", node(t, folded, "?a").Class)
}

func TestFoldTwiceAccumulates(t *testing.T) {
	g := mustParse(t, testutil.HasPartQuery)
	folded := g.FoldClass(false)
	folded.AddEdge("?b", "saref:Gadget", ir.TypePredicate, graph.EdgeAttrs{Kind: graph.EdgeVarToClass, MustExist: true})
	folded.UpdateNode("saref:Gadget", func(a *graph.NodeAttrs) { a.Kind = graph.KindClass })
	folded.FoldClass(true)

	assert.Equal(t, "saref:Gadget", node(t, folded, "?b").Class)
	restored := folded.UnfoldClass(false)
	assert.Equal(t, 4, restored.NumNodes())
	assert.Equal(t, 3, restored.NumEdges())
}

func TestUnfoldWithoutFold(t *testing.T) {
	g := mustParse(t, testutil.HasPartQuery)
	assert.Equal(t, g.Snapshot(), g.UnfoldClass(false).Snapshot())
}

func TestUnfoldAfterInstantiateFollowsRelabel(t *testing.T) {
	k := loadKG(t)
	g := mustParse(t, testutil.HasPartQuery).FoldClass(false)

	inst, err := g.Instantiate(row("?a", "X", "?b", "Y"), k)
	require.NoError(t, err)

	restored := inst.UnfoldClass(false)
	assert.True(t, restored.HasEdge(graph.EdgeKey{Src: "X", Dst: "saref:Widget", Label: ir.TypePredicate}))
	assert.False(t, restored.HasNode("?a"))
}
