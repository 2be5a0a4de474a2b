package qg

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/kg"
	"github.com/roach88/reqgraph/internal/ontology"
	"github.com/roach88/reqgraph/internal/status"
)

// SolveOptions configures Solve.
type SolveOptions struct {
	// OrderExisting is how many hops of knowledge-graph neighbours are
	// pulled in as existing context before routing. Zero routes only
	// through nodes the query already binds.
	OrderExisting int

	// InPlace makes Solve mutate the receiver.
	InPlace bool

	// Logger receives routing decisions at debug level. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// SolveReport summarizes a Solve run.
type SolveReport struct {
	// ContextNodes counts knowledge-graph nodes pulled in as context.
	ContextNodes int `json:"context_nodes"`

	// Missing lists the edges classified add* before routing.
	Missing []graph.EdgeKey `json:"missing"`

	// Routed lists the missing edges for which at least one route to an
	// anchor was marked.
	Routed []graph.EdgeKey `json:"routed"`

	// Unresolved lists the missing edges left without a route.
	Unresolved []graph.EdgeKey `json:"unresolved"`

	// Issues holds every recoverable condition met along the way.
	Issues []ir.Issue `json:"issues"`
}

// Solve derives the helper graph for a result row.
//
// The graph is instantiated against k and classified. OrderExisting hops of
// neighbours are pulled in from k as unused context. For every missing
// (add*) edge, each existing context node whose class falls in the
// predicate's domain is an anchor candidate; every simple undirected path
// from the edge's subject to the anchor is marked for use and inherits the
// edge's MustExist, unless the anchor already has the required edge to the
// object. Unused elements are then pruned and the result is classified and
// styled again.
//
// Missing edges with no route stay in the output and are reported as
// UNROUTABLE_REQUIREMENT. A predicate unknown to r is reported as
// LOOKUP_FAILURE. An empty rs yields the graph unchanged with an
// EMPTY_RESULT issue.
func (g *QueryGraph) Solve(rs ir.ResultSet, k *kg.KnowledgeGraph, r ontology.Reasoner, opts SolveOptions) (*QueryGraph, *SolveReport, error) {
	if k == nil {
		return nil, nil, errors.New("solve: nil knowledge graph")
	}
	if r == nil {
		return nil, nil, errors.New("solve: nil reasoner")
	}
	if opts.OrderExisting < 0 {
		return nil, nil, fmt.Errorf("solve: negative order_existing %d", opts.OrderExisting)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	report := &SolveReport{}
	out := g.target(opts.InPlace)
	if rs.Empty() {
		report.Issues = append(report.Issues, ir.Issue{
			Code:    ir.IssueEmptyResult,
			Message: "no result rows; graph left unchanged",
		})
		return out, report, nil
	}

	if _, err := out.Instantiate(rs, k, InPlace()); err != nil {
		return nil, nil, fmt.Errorf("solve: %w", err)
	}
	out.UpdateStatus()

	report.ContextNodes = out.expandContext(k, opts.OrderExisting)
	out.updateNodeStatus()

	out.route(r, report, logger)

	out.prune()
	report.Issues = append(report.Issues, out.UpdateStatus()...)
	out.ApplyStyle()

	logger.Debug("solve complete",
		"nodes", out.NumNodes(),
		"edges", out.NumEdges(),
		"missing", len(report.Missing),
		"unresolved", len(report.Unresolved))

	return out, report, nil
}

// expandContext pulls order hops of undirected neighbours from k. New
// nodes and edges are unused; edges keep their direction in k.
func (g *QueryGraph) expandContext(k *kg.KnowledgeGraph, order int) int {
	added := 0
	for range order {
		for _, name := range g.Nodes() {
			if !k.HasNode(name) {
				continue
			}
			for _, key := range k.Neighbors(name) {
				nb := key.Other(name)
				if !g.HasNode(nb) {
					attrs, _ := k.Node(nb)
					attrs.Data = attrs.Data.Clone()
					attrs.Use = false
					attrs.Status = status.NodeUnset
					attrs.Style = status.Style{}
					g.AddNode(nb, attrs)
					added++
				}
				reverse := graph.EdgeKey{Src: key.Dst, Dst: key.Src, Label: key.Label}
				if g.HasEdge(key) || g.HasEdge(reverse) {
					continue
				}
				g.AddEdge(key.Src, key.Dst, key.Label, graph.EdgeAttrs{Exists: true, MustExist: true})
			}
		}
	}
	return added
}

// route marks the routes that resolve each missing edge. Anchors and paths
// are computed on a snapshot taken before any marking.
func (g *QueryGraph) route(r ontology.Reasoner, report *SolveReport, logger *slog.Logger) {
	snapshot := g.Graph.Clone()

	for _, key := range snapshot.Edges() {
		attrs, _ := snapshot.Edge(key)
		if !attrs.Status.IsAdd() {
			continue
		}
		report.Missing = append(report.Missing, key)

		domain, err := ontology.Domain(r, key.Label)
		if err != nil {
			report.Unresolved = append(report.Unresolved, key)
			report.Issues = append(report.Issues, g.issue(ir.IssueLookupFailure, key, err.Error()))
			continue
		}

		anchors, routed := 0, false
		for _, anchor := range snapshot.Nodes() {
			a, _ := snapshot.Node(anchor)
			if a.Status != status.NodeExisting || anchor == key.Src {
				continue
			}
			if !ontology.InClasses(r, a.Class, domain) {
				continue
			}
			anchors++
			if g.HasEdge(graph.EdgeKey{Src: anchor, Dst: key.Dst, Label: key.Label}) {
				continue
			}
			for _, path := range snapshot.SimpleEdgePaths(key.Src, anchor) {
				g.markPath(path, attrs.MustExist)
				routed = true
				logger.Debug("route marked",
					"edge", key.String(),
					"anchor", anchor,
					"hops", len(path))
			}
		}

		if routed {
			report.Routed = append(report.Routed, key)
			continue
		}
		report.Unresolved = append(report.Unresolved, key)
		msg := "no path from subject to an anchor"
		if anchors == 0 {
			msg = "no existing anchor in the predicate's domain"
		}
		report.Issues = append(report.Issues, g.issue(ir.IssueUnroutable, key, msg))
	}
}

func (g *QueryGraph) markPath(path []graph.EdgeKey, mustExist bool) {
	for _, e := range path {
		g.UpdateEdge(e, func(a *graph.EdgeAttrs) {
			a.Use = true
			a.MustExist = mustExist
		})
		for _, n := range [2]string{e.Src, e.Dst} {
			g.UpdateNode(n, func(a *graph.NodeAttrs) { a.Use = true })
		}
	}
}

// prune removes every unused edge, then every unused node.
func (g *QueryGraph) prune() {
	for _, key := range g.Edges() {
		if a, _ := g.Edge(key); !a.Use {
			g.RemoveEdge(key)
		}
	}
	for _, name := range g.Nodes() {
		if a, _ := g.Node(name); !a.Use {
			g.RemoveNode(name)
		}
	}
}
