package harness

import (
	"slices"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/reqgraph/internal/diagnose"
	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ir"
)

// Summary returns the status view of a report compared by golden files:
// the verdict, requirement rows, and the status of every node and edge of
// the result graph.
func Summary(name string, rep *diagnose.Report) map[string]any {
	g := rep.Result()

	nodes := map[string]any{}
	for _, n := range g.Nodes() {
		a, _ := g.Node(n)
		nodes[n] = string(a.Status)
	}

	keys := g.Edges()
	slices.SortFunc(keys, graph.CompareKeys)
	edges := make([]any, 0, len(keys))
	for _, k := range keys {
		a, _ := g.Edge(k)
		edges = append(edges, map[string]any{"key": k.String(), "status": string(a.Status)})
	}

	rows := make([]any, 0, rep.Rows.Len())
	for _, row := range rep.Rows.Rows {
		rows = append(rows, row)
	}

	issues := make([]any, 0, len(rep.Issues))
	for _, i := range rep.Issues {
		issues = append(issues, string(i.Code))
	}

	return map[string]any{
		"version":   ir.SnapshotVersion,
		"name":      name,
		"satisfied": rep.Satisfied,
		"rows":      rows,
		"nodes":     nodes,
		"edges":     edges,
		"issues":    issues,
	}
}

// RunWithGolden executes a scenario and compares its summary against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's summary against its golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(Summary(name, result.Report))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
