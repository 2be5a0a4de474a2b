package status

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyEdgeTable(t *testing.T) {
	type cell struct {
		exists, mustExist bool
	}
	cells := []cell{{true, true}, {true, false}, {false, true}, {false, false}}

	rows := []struct {
		name  string
		pairs [][2]Node
		want  [4]Edge
	}{
		{
			name:  "ok/ok",
			pairs: [][2]Node{{NodeOK, NodeOK}},
			want:  [4]Edge{EdgeOK, EdgeDel, EdgeAdd2OK, EdgeWarn},
		},
		{
			name:  "new",
			pairs: [][2]Node{{NodeOK, NodeNew}, {NodeNew, NodeOK}, {NodeNew, NodeNew}},
			want:  [4]Edge{EdgeAdd2New, EdgeWarn, EdgeAdd2New, EdgeWarn},
		},
		{
			name:  "existing",
			pairs: [][2]Node{{NodeOK, NodeExisting}, {NodeExisting, NodeOK}, {NodeExisting, NodeExisting}},
			want:  [4]Edge{EdgeOKExisting, EdgeDelExisting, EdgeAdd2Existing, EdgeWarn},
		},
		{
			name:  "new/existing",
			pairs: [][2]Node{{NodeNew, NodeExisting}, {NodeExisting, NodeNew}},
			want:  [4]Edge{EdgeAdd2NewExisting, EdgeWarn, EdgeAdd2NewExisting, EdgeWarn},
		},
	}

	for _, row := range rows {
		for _, pair := range row.pairs {
			for i, c := range cells {
				name := fmt.Sprintf("%s/%s exists=%v must=%v", pair[0], pair[1], c.exists, c.mustExist)
				t.Run(name, func(t *testing.T) {
					got, ok := ClassifyEdge(pair[0], pair[1], c.exists, c.mustExist)
					assert.True(t, ok)
					assert.Equal(t, row.want[i], got)
				})
			}
		}
	}
}

func TestClassifyEdgeUnsupportedPairs(t *testing.T) {
	for _, pair := range [][2]Node{
		{NodeUnset, NodeOK},
		{NodeOK, NodeUnset},
		{NodeUnset, NodeUnset},
		{Node("bogus"), NodeExisting},
	} {
		got, ok := ClassifyEdge(pair[0], pair[1], true, true)
		assert.False(t, ok)
		assert.Equal(t, EdgeWarn, got)
	}
}

func TestClassifyEdgeTotality(t *testing.T) {
	nodes := []Node{NodeUnset, NodeOK, NodeNew, NodeExisting}
	for _, s := range nodes {
		for _, o := range nodes {
			for _, exists := range []bool{true, false} {
				for _, must := range []bool{true, false} {
					got, _ := ClassifyEdge(s, o, exists, must)
					assert.True(t, got.Valid(), "%s/%s produced %q", s, o, got)
					sym, _ := ClassifyEdge(o, s, exists, must)
					assert.Equal(t, got, sym, "classification must be symmetric")
				}
			}
		}
	}
}

func TestEdgePredicates(t *testing.T) {
	adds := 0
	for _, e := range AllEdges() {
		if e.IsAdd() {
			adds++
			assert.False(t, e.IsDel())
		}
	}
	assert.Equal(t, 4, adds)
	assert.True(t, EdgeDelExisting.IsDel())
	assert.True(t, EdgeWarn.IsWarn())
	assert.False(t, Edge("").Valid())
	assert.Len(t, AllEdges(), 9)
}
