package graph

import (
	"cmp"
	"slices"

	"github.com/roach88/reqgraph/internal/ir"
)

// Snapshot returns a deterministic representation of the graph suitable
// for ir.MarshalCanonical: nodes sorted by name, edges sorted by key, every
// attribute present.
func (g *Graph) Snapshot() map[string]any {
	names := g.Nodes()
	slices.Sort(names)
	nodes := make([]any, 0, len(names))
	for _, name := range names {
		a, _ := g.Node(name)
		data := a.Data
		if data == nil {
			data = ir.IRObject{}
		}
		nodes = append(nodes, map[string]any{
			"name":   name,
			"kind":   string(a.Kind),
			"class":  a.Class,
			"status": string(a.Status),
			"use":    a.Use,
			"data":   data,
			"style":  a.Style.Map(),
		})
	}

	keys := g.Edges()
	slices.SortFunc(keys, CompareKeys)
	edges := make([]any, 0, len(keys))
	for _, k := range keys {
		a, _ := g.Edge(k)
		edges = append(edges, map[string]any{
			"src":        k.Src,
			"dst":        k.Dst,
			"label":      k.Label,
			"kind":       string(a.Kind),
			"must_exist": a.MustExist,
			"exists":     a.Exists,
			"use":        a.Use,
			"status":     string(a.Status),
			"highlight":  a.Highlight,
			"style":      a.Style.Map(),
		})
	}

	return map[string]any{
		"version": ir.SnapshotVersion,
		"nodes":   nodes,
		"edges":   edges,
	}
}

// CompareKeys orders edge keys by source, target, then label.
func CompareKeys(a, b EdgeKey) int {
	return cmp.Or(
		cmp.Compare(a.Src, b.Src),
		cmp.Compare(a.Dst, b.Dst),
		cmp.Compare(a.Label, b.Label),
	)
}

// Hash returns the content hash of the graph's snapshot.
func (g *Graph) Hash() (string, error) {
	return ir.GraphHash(g.Snapshot())
}
