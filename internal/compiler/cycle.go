package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/reqgraph/internal/ir"
)

// CycleWarning reports classes that are (transitively) their own ancestor.
// The reasoner still loads such an ontology and treats every class on the
// cycle as equivalent.
type CycleWarning struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
	Level   string   `json:"level"`
}

// AnalyzeClassCycles reports every cycle in the subclass relation, one
// warning per group of mutually reachable classes. A warning's path starts
// at the group's smallest class name and is the shortest way back to it.
// Warnings are sorted by that first class.
func AnalyzeClassCycles(spec *ir.OntologySpec) []CycleWarning {
	warnings := []CycleWarning{}
	if spec == nil {
		return warnings
	}

	parents := map[string][]string{}
	for _, c := range spec.Classes {
		parents[c.Name] = append(parents[c.Name], c.Parents...)
	}
	names := make([]string, 0, len(parents))
	for name, ps := range parents {
		slices.Sort(ps)
		parents[name] = slices.Compact(ps)
		names = append(names, name)
	}
	slices.Sort(names)

	reach := make(map[string]map[string]bool, len(names))
	for _, name := range names {
		reach[name] = ancestors(parents, name)
	}

	grouped := map[string]bool{}
	for _, name := range names {
		if grouped[name] || !reach[name][name] {
			continue
		}
		// name is the smallest member since names are visited in order.
		group := map[string]bool{name: true}
		for other := range reach[name] {
			if reach[other][name] {
				group[other] = true
			}
		}
		for member := range group {
			grouped[member] = true
		}
		warnings = append(warnings, cycleWarning(shortestCycle(parents, group, name), len(group)))
	}
	return warnings
}

// ancestors returns every class reachable from start by parent edges.
// start is included only when it lies on a cycle.
func ancestors(parents map[string][]string, start string) map[string]bool {
	seen := map[string]bool{}
	queue := slices.Clone(parents[start])
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if seen[c] {
			continue
		}
		seen[c] = true
		queue = append(queue, parents[c]...)
	}
	return seen
}

// shortestCycle walks breadth-first from start through group members and
// returns the first path that comes back to start. A self edge only counts
// when start is alone in its group.
func shortestCycle(parents map[string][]string, group map[string]bool, start string) []string {
	prev := map[string]string{}
	queue := []string{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, p := range parents[c] {
			if !group[p] {
				continue
			}
			if p == start {
				if c == start && len(group) > 1 {
					continue
				}
				path := []string{start}
				for n := c; n != start; n = prev[n] {
					path = append(path, n)
				}
				path = append(path, start)
				slices.Reverse(path[1 : len(path)-1])
				return path
			}
			if _, ok := prev[p]; !ok {
				prev[p] = c
				queue = append(queue, p)
			}
		}
	}
	return []string{start, start}
}

func cycleWarning(path []string, size int) CycleWarning {
	w := CycleWarning{Path: path, Level: "warning"}
	if size == 1 {
		w.Message = fmt.Sprintf("Class is its own parent: %s → %s", path[0], path[0])
	} else {
		w.Message = "Subclass cycle detected: " + strings.Join(path, " → ")
	}
	return w
}
