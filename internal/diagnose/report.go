package diagnose

import (
	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/kg"
	"github.com/roach88/reqgraph/internal/qg"
	"github.com/roach88/reqgraph/internal/status"
)

// Report is the outcome of one Check.
type Report struct {
	RunID     string
	Query     string
	Violation string

	// Rows are the requirement query's results.
	Rows ir.ResultSet

	// ViolationRows are the violation query's results, when one was given.
	ViolationRows *ir.ResultSet

	// Dropped counts rows removed because they left the partition.
	Dropped int

	// Instantiated is the folded requirement graph with the first target
	// row bound and every element classified. It is the folded, unbound
	// graph when there was nothing to bind.
	Instantiated *qg.QueryGraph

	// Helper is the solved graph. Nil when no requirement was missing.
	Helper *qg.QueryGraph
	Solve  *qg.SolveReport

	// Projected is the knowledge graph with matched requirement edges
	// highlighted; Highlighted counts them.
	Projected   *kg.KnowledgeGraph
	Highlighted int

	Issues    []ir.Issue
	Satisfied bool
	Stages    []StageTiming
}

// Result returns the graph callers should show: the helper graph when one
// was derived, the instantiated graph otherwise.
func (r *Report) Result() *qg.QueryGraph {
	if r.Helper != nil {
		return r.Helper
	}
	return r.Instantiated
}

// EdgeStatuses lists the status of every edge in Result, in edge order.
func (r *Report) EdgeStatuses() []status.Edge {
	g := r.Result()
	if g == nil {
		return nil
	}
	var out []status.Edge
	for _, key := range g.Edges() {
		if a, _ := g.Edge(key); a.Status != "" {
			out = append(out, a.Status)
		}
	}
	return out
}

// Snapshot returns a deterministic form of the report for
// ir.MarshalCanonical. Stage timings are left out. Result sets and the
// result graph carry content hashes so runs can be compared without
// diffing them.
func (r *Report) Snapshot() map[string]any {
	issues := make([]any, 0, len(r.Issues))
	for _, i := range r.Issues {
		m := map[string]any{"code": string(i.Code), "message": i.Message}
		if i.Predicate != "" {
			m["subject"] = i.Subject
			m["predicate"] = i.Predicate
			m["object"] = i.Object
		}
		issues = append(issues, m)
	}

	out := map[string]any{
		"version":     ir.SnapshotVersion,
		"run_id":      r.RunID,
		"satisfied":   r.Satisfied,
		"rows":        resultSnapshot(r.Rows),
		"dropped":     r.Dropped,
		"highlighted": r.Highlighted,
		"issues":      issues,
	}
	if r.ViolationRows != nil {
		out["violation_rows"] = resultSnapshot(*r.ViolationRows)
	}
	if r.Instantiated != nil {
		out["instantiated"] = r.Instantiated.Snapshot()
	}
	if r.Helper != nil {
		out["helper"] = r.Helper.Snapshot()
	}
	if g := r.Result(); g != nil {
		if h, err := g.Hash(); err == nil {
			out["result_hash"] = h
		}
	}
	if r.Solve != nil {
		out["solve"] = map[string]any{
			"context_nodes": r.Solve.ContextNodes,
			"missing":       keyList(r.Solve.Missing),
			"routed":        keyList(r.Solve.Routed),
			"unresolved":    keyList(r.Solve.Unresolved),
		}
	}
	return out
}

func resultSnapshot(rs ir.ResultSet) map[string]any {
	rows := make([]any, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rows = append(rows, row)
	}
	columns := rs.Columns
	if columns == nil {
		columns = []string{}
	}
	out := map[string]any{"columns": columns, "rows": rows}
	if h, err := ir.ResultHash(rs); err == nil {
		out["hash"] = h
	}
	return out
}

func keyList(keys []graph.EdgeKey) []any {
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}
