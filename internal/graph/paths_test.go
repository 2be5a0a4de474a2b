package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleEdgePathsUndirected(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", "p", EdgeAttrs{})
	g.AddEdge("c", "b", "q", EdgeAttrs{}) // reversed direction still routes
	g.AddEdge("a", "c", "r", EdgeAttrs{})

	paths := g.SimpleEdgePaths("a", "c")
	require.Len(t, paths, 2)
	assert.Equal(t, []EdgeKey{{"a", "b", "p"}, {"c", "b", "q"}}, paths[0])
	assert.Equal(t, []EdgeKey{{"a", "c", "r"}}, paths[1])
}

func TestSimpleEdgePathsParallelEdges(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", "p", EdgeAttrs{})
	g.AddEdge("b", "a", "q", EdgeAttrs{})

	paths := g.SimpleEdgePaths("a", "b")
	assert.Len(t, paths, 2)
}

func TestSimpleEdgePathsNoRoute(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", "p", EdgeAttrs{})
	g.AddNode("z", NodeAttrs{})

	assert.Empty(t, g.SimpleEdgePaths("a", "z"))
	assert.Nil(t, g.SimpleEdgePaths("a", "a"))
	assert.Nil(t, g.SimpleEdgePaths("a", "missing"))
}

func TestSimpleEdgePathsNoRepeatedNodes(t *testing.T) {
	g := New()
	// square a-b-c-d-a plus diagonal b-d
	g.AddEdge("a", "b", "p", EdgeAttrs{})
	g.AddEdge("b", "c", "p", EdgeAttrs{})
	g.AddEdge("c", "d", "p", EdgeAttrs{})
	g.AddEdge("d", "a", "p", EdgeAttrs{})
	g.AddEdge("b", "d", "p", EdgeAttrs{})

	paths := g.SimpleEdgePaths("a", "c")
	assert.Len(t, paths, 4)
	for _, path := range paths {
		seen := map[string]int{}
		for _, k := range path {
			seen[k.Src]++
			seen[k.Dst]++
		}
		for n, count := range seen {
			if n != "a" && n != "c" {
				assert.Equal(t, 2, count, "interior node %s visited once", n)
			}
		}
	}
}

func TestComponents(t *testing.T) {
	g := New()
	g.AddNode("solo", NodeAttrs{})
	g.AddEdge("x", "y", "p", EdgeAttrs{})
	g.AddEdge("z", "y", "p", EdgeAttrs{})
	g.AddEdge("m", "n", "p", EdgeAttrs{})

	assert.Equal(t, [][]string{{"solo"}, {"x", "y", "z"}, {"m", "n"}}, g.Components())
}
