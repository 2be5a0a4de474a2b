package qg

import (
	"slices"

	"github.com/roach88/reqgraph/internal/graph"
)

// foldRecord remembers what FoldClass removed so UnfoldClass can put it
// back exactly.
type foldRecord struct {
	nodes []foldedNode
	edges []foldedEdge
}

type foldedNode struct {
	name  string
	attrs graph.NodeAttrs
}

type foldedEdge struct {
	key   graph.EdgeKey
	attrs graph.EdgeAttrs
	// prevClass is the subject's class before this edge was folded into it.
	prevClass string
}

func (r foldRecord) clone() foldRecord {
	out := foldRecord{
		nodes: slices.Clone(r.nodes),
		edges: slices.Clone(r.edges),
	}
	for i := range out.nodes {
		out.nodes[i].attrs.Data = out.nodes[i].attrs.Data.Clone()
	}
	return out
}

func (r foldRecord) empty() bool {
	return len(r.nodes) == 0 && len(r.edges) == 0
}

// relabel follows node renames made by Instantiate.
func (r *foldRecord) relabel(mapping map[string]string) {
	for i := range r.edges {
		if to, ok := mapping[r.edges[i].key.Src]; ok {
			r.edges[i].key.Src = to
		}
	}
}

// FoldClass turns every "is of type" edge into the subject's Class
// attribute. The edge is removed, and so is its class node once nothing
// else references it. Edges whose object is a variable are left alone.
//
// Folding twice accumulates: a single UnfoldClass undoes both.
func (g *QueryGraph) FoldClass(inPlace bool) *QueryGraph {
	out := g.target(inPlace)

	var folded []graph.EdgeKey
	for _, key := range out.Edges() {
		if !out.ns.IsTypePredicate(key.Label) {
			continue
		}
		if obj, _ := out.Node(key.Dst); obj.Kind == graph.KindVariable {
			continue
		}
		folded = append(folded, key)
	}

	for _, key := range folded {
		attrs, _ := out.Edge(key)
		subj, _ := out.Node(key.Src)
		out.fold.edges = append(out.fold.edges, foldedEdge{key: key, attrs: attrs, prevClass: subj.Class})
		out.UpdateNode(key.Src, func(a *graph.NodeAttrs) { a.Class = key.Dst })
		out.RemoveEdge(key)
	}

	for _, key := range folded {
		if !out.HasNode(key.Dst) || len(out.Neighbors(key.Dst)) > 0 {
			continue
		}
		attrs, _ := out.Node(key.Dst)
		attrs.Data = attrs.Data.Clone()
		out.fold.nodes = append(out.fold.nodes, foldedNode{name: key.Dst, attrs: attrs})
		out.RemoveNode(key.Dst)
	}

	return out
}

// UnfoldClass restores every node and edge removed by FoldClass and resets
// each subject's Class to its value before folding. A graph that was never
// folded is returned unchanged.
func (g *QueryGraph) UnfoldClass(inPlace bool) *QueryGraph {
	out := g.target(inPlace)
	if out.fold.empty() {
		return out
	}

	for _, n := range out.fold.nodes {
		out.AddNode(n.name, n.attrs)
	}
	for i := len(out.fold.edges) - 1; i >= 0; i-- {
		e := out.fold.edges[i]
		out.AddEdge(e.key.Src, e.key.Dst, e.key.Label, e.attrs)
		out.UpdateNode(e.key.Src, func(a *graph.NodeAttrs) { a.Class = e.prevClass })
	}
	out.fold = foldRecord{}

	return out
}

// Folded reports whether the graph holds folded type declarations.
func (g *QueryGraph) Folded() bool {
	return !g.fold.empty()
}
