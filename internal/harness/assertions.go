package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/reqgraph/internal/diagnose"
	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ir"
)

// AssertionError is one failed expectation.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// Check evaluates every expectation against rep and returns the failures
// in a stable order.
func Check(exp Expect, rep *diagnose.Report) []*AssertionError {
	var errs []*AssertionError
	add := func(err *AssertionError) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(checkSatisfied(exp, rep))
	add(checkRows(exp, rep))
	for _, err := range checkNodes(exp, rep) {
		add(err)
	}
	for _, err := range checkEdges(exp, rep) {
		add(err)
	}
	add(checkUnresolved(exp, rep))
	add(checkIssues(exp, rep))
	return errs
}

func checkSatisfied(exp Expect, rep *diagnose.Report) *AssertionError {
	if exp.Satisfied == nil || *exp.Satisfied == rep.Satisfied {
		return nil
	}
	return &AssertionError{
		Type:     "satisfied",
		Expected: fmt.Sprint(*exp.Satisfied),
		Actual:   fmt.Sprint(rep.Satisfied),
	}
}

func checkRows(exp Expect, rep *diagnose.Report) *AssertionError {
	if exp.Rows == nil || *exp.Rows == rep.Rows.Len() {
		return nil
	}
	return &AssertionError{
		Type:     "rows",
		Expected: fmt.Sprintf("%d rows", *exp.Rows),
		Actual:   fmt.Sprintf("%d rows %v", rep.Rows.Len(), rep.Rows.Rows),
	}
}

func checkNodes(exp Expect, rep *diagnose.Report) []*AssertionError {
	g := rep.Result()
	names := make([]string, 0, len(exp.Nodes))
	for name := range exp.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []*AssertionError
	for _, name := range names {
		want := exp.Nodes[name]
		a, ok := g.Node(name)
		switch {
		case !ok:
			errs = append(errs, &AssertionError{
				Type:     "node",
				Expected: fmt.Sprintf("%s with status %s", name, want),
				Actual:   fmt.Sprintf("no such node in %v", g.Nodes()),
			})
		case a.Status != want:
			errs = append(errs, &AssertionError{
				Type:     "node",
				Expected: fmt.Sprintf("%s with status %s", name, want),
				Actual:   fmt.Sprintf("status %q", a.Status),
			})
		}
	}
	return errs
}

func checkEdges(exp Expect, rep *diagnose.Report) []*AssertionError {
	g := rep.Result()
	var errs []*AssertionError
	for _, e := range exp.Edges {
		key := graph.EdgeKey{Src: e.Subject, Dst: e.Object, Label: e.Predicate}
		a, ok := g.Edge(key)
		switch {
		case !ok:
			errs = append(errs, &AssertionError{
				Type:     "edge",
				Expected: fmt.Sprintf("%s with status %s", key, e.Status),
				Actual:   "no such edge in " + edgeList(g.Edges()),
			})
		case a.Status != e.Status:
			errs = append(errs, &AssertionError{
				Type:     "edge",
				Expected: fmt.Sprintf("%s with status %s", key, e.Status),
				Actual:   fmt.Sprintf("status %q", a.Status),
			})
		}
	}
	return errs
}

func checkUnresolved(exp Expect, rep *diagnose.Report) *AssertionError {
	if exp.Unresolved == nil {
		return nil
	}
	got := 0
	if rep.Solve != nil {
		got = len(rep.Solve.Unresolved)
	}
	if got == *exp.Unresolved {
		return nil
	}
	return &AssertionError{
		Type:     "unresolved",
		Expected: fmt.Sprint(*exp.Unresolved),
		Actual:   fmt.Sprint(got),
	}
}

func checkIssues(exp Expect, rep *diagnose.Report) *AssertionError {
	if exp.Issues == nil {
		return nil
	}
	got := make([]string, 0, len(rep.Issues))
	for _, i := range rep.Issues {
		got = append(got, string(i.Code))
	}
	if slices.Equal(exp.Issues, got) {
		return nil
	}
	return &AssertionError{
		Type:     "issues",
		Expected: fmt.Sprint(exp.Issues),
		Actual:   issueList(rep.Issues),
	}
}

func edgeList(keys []graph.EdgeKey) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func issueList(issues []ir.Issue) string {
	parts := make([]string, 0, len(issues))
	for _, i := range issues {
		parts = append(parts, i.String())
	}
	return "[" + strings.Join(parts, "; ") + "]"
}
