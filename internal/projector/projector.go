// Package projector marks knowledge-graph edges matched by query results.
package projector

import (
	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/kg"
	"github.com/roach88/reqgraph/internal/qg"
	"github.com/roach88/reqgraph/internal/status"
)

// Project highlights, for every row of rs, the edges of k that realize an
// edge of the uninstantiated query graph q under that row's binding.
// Variables resolve through the binding and constants to their internal
// names. It returns the marked graph (a copy unless inPlace) and the number
// of distinct edges highlighted.
//
// An empty rs returns k unchanged.
func Project(k *kg.KnowledgeGraph, q *qg.QueryGraph, rs ir.ResultSet, inPlace bool) (*kg.KnowledgeGraph, int) {
	if rs.Empty() || k == nil || q == nil {
		return k, 0
	}

	out := k
	if !inPlace {
		out = k.Clone()
	}

	ns := q.Namespaces()
	resolve := func(name string, binding map[string]string) string {
		if v, ok := binding[name]; ok {
			return v
		}
		return ns.ToInternal(name)
	}

	marked := make(map[graph.EdgeKey]bool)
	edges := q.Edges()
	for i := range rs.Len() {
		binding := rs.Binding(i)
		for _, e := range edges {
			key := graph.EdgeKey{
				Src:   resolve(e.Src, binding),
				Dst:   resolve(e.Dst, binding),
				Label: ns.ToInternal(e.Label),
			}
			if marked[key] || !out.HasEdge(key) {
				continue
			}
			out.UpdateEdge(key, func(a *graph.EdgeAttrs) {
				a.Highlight = true
				a.Style = a.Style.Merge(status.HighlightStyle())
			})
			marked[key] = true
		}
	}
	return out, len(marked)
}
