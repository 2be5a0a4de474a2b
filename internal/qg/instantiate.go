package qg

import (
	"fmt"

	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/kg"
	"github.com/roach88/reqgraph/internal/ontology"
	"github.com/roach88/reqgraph/internal/status"
)

// Instantiate binds the first row of rs to the graph's variables.
//
// Every variable node is renamed to its bound individual and becomes an
// instance. With a knowledge graph, a bound individual present in k takes
// k's class and data and gets status ok; an absent one gets status new.
// Every edge is re-keyed to the reasoner's internal predicate name and
// Exists records whether k holds the same triple. All nodes and edges are
// marked for use.
//
// An empty rs returns the receiver unchanged. A variable with no column in
// rs is a LookupError and leaves the receiver untouched.
func (g *QueryGraph) Instantiate(rs ir.ResultSet, k *kg.KnowledgeGraph, opts ...Option) (*QueryGraph, error) {
	if rs.Empty() {
		return g, nil
	}
	for _, v := range g.Variables() {
		if rs.Column(v) < 0 {
			return nil, fmt.Errorf("instantiate: %w", ontology.NewLookupError(ontology.KindVariable, v, rs.Columns))
		}
	}

	out := g.target(apply(opts).inPlace)

	mapping := make(map[string]string)
	var order []string
	for _, name := range out.Nodes() {
		out.UpdateNode(name, func(a *graph.NodeAttrs) {
			a.Use = true
			if a.Kind != graph.KindVariable {
				return
			}
			value, _ := rs.Value(0, name)
			mapping[name] = value
			order = append(order, name)

			a.Kind = graph.KindInstance
			if a.Class != "" {
				a.Class = out.ns.ToInternal(a.Class)
			}
			if k == nil {
				return
			}
			known, ok := k.Node(value)
			if !ok {
				a.Status = status.NodeNew
				return
			}
			a.Class = known.Class
			if len(known.Data) > 0 {
				data := a.Data.Clone()
				if data == nil {
					data = ir.IRObject{}
				}
				for key, v := range known.Data {
					data[key] = v
				}
				a.Data = data
			}
			a.Status = status.NodeOK
		})
	}

	for _, name := range order {
		if err := out.Relabel(name, mapping[name]); err != nil {
			return nil, fmt.Errorf("instantiate: %w", err)
		}
	}
	out.fold.relabel(mapping)

	for _, key := range out.Edges() {
		if !out.HasEdge(key) {
			continue
		}
		rekeyed, err := out.RekeyEdge(key, out.ns.ToInternal(key.Label))
		if err != nil {
			return nil, fmt.Errorf("instantiate: %w", err)
		}
		out.UpdateEdge(rekeyed, func(a *graph.EdgeAttrs) {
			a.Use = true
			if k != nil {
				a.Exists = k.HasEdge(rekeyed)
			}
		})
	}

	out.instantiated = true
	return out, nil
}

// UpdateStatus classifies every node, then every edge.
//
// Nodes: a variable is new, an instance keeps ok or new, any other instance
// is existing context. Edges: status.ClassifyEdge over the endpoint
// statuses, Exists and MustExist. Each edge classified warn yields a
// STRUCTURAL_INCONSISTENCY issue.
func (g *QueryGraph) UpdateStatus() []ir.Issue {
	g.updateNodeStatus()
	return g.updateEdgeStatus()
}

func (g *QueryGraph) updateNodeStatus() {
	for _, name := range g.Nodes() {
		g.UpdateNode(name, func(a *graph.NodeAttrs) {
			switch a.Kind {
			case graph.KindVariable:
				a.Status = status.NodeNew
			case graph.KindInstance:
				if a.Status != status.NodeOK && a.Status != status.NodeNew {
					a.Status = status.NodeExisting
				}
			}
		})
	}
}

func (g *QueryGraph) updateEdgeStatus() []ir.Issue {
	var issues []ir.Issue
	for _, key := range g.Edges() {
		s, _ := g.Node(key.Src)
		o, _ := g.Node(key.Dst)
		g.UpdateEdge(key, func(a *graph.EdgeAttrs) {
			st, supported := status.ClassifyEdge(s.Status, o.Status, a.Exists, a.MustExist)
			a.Status = st
			if !st.IsWarn() {
				return
			}
			msg := "relationship is absent and forbidden between bound individuals"
			if !supported {
				msg = fmt.Sprintf("unsupported endpoint statuses %q/%q", s.Status, o.Status)
			}
			issues = append(issues, g.issue(ir.IssueStructural, key, msg))
		})
	}
	return issues
}

func (g *QueryGraph) issue(code ir.IssueCode, key graph.EdgeKey, msg string) ir.Issue {
	return ir.Issue{
		Code:      code,
		Message:   msg,
		Subject:   key.Src,
		Predicate: g.ns.ToPrefixed(key.Label),
		Object:    key.Dst,
	}
}
