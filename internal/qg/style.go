package qg

import (
	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/status"
)

// DisplayView returns a copy of an uninstantiated graph styled by node
// kind, edge kind and edge polarity.
func (g *QueryGraph) DisplayView() *QueryGraph {
	out := g.Clone()
	for _, name := range out.Nodes() {
		out.UpdateNode(name, func(a *graph.NodeAttrs) {
			a.Style = status.NodeKindStyle(string(a.Kind))
		})
	}
	for _, key := range out.Edges() {
		out.UpdateEdge(key, func(a *graph.EdgeAttrs) {
			a.Style = status.EdgeKindStyle(string(a.Kind)).Merge(status.EdgePolarityStyle(a.MustExist))
		})
	}
	return out
}

// ApplyStyle sets every node's style from its kind and status and every
// edge's style from its status. It mutates and returns the receiver.
func (g *QueryGraph) ApplyStyle() *QueryGraph {
	for _, name := range g.Nodes() {
		g.UpdateNode(name, func(a *graph.NodeAttrs) {
			a.Style = status.NodeKindStyle(string(a.Kind)).Merge(status.NodeStatusStyle(a.Status))
		})
	}
	for _, key := range g.Edges() {
		g.UpdateEdge(key, func(a *graph.EdgeAttrs) {
			a.Style = status.EdgeStatusStyle(a.Status)
		})
	}
	return g
}
