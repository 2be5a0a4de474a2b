package graph

import (
	"slices"
)

// undirected builds an adjacency list ignoring direction. Edge indices are
// listed in insertion order for every node.
func (g *Graph) undirected() map[NodeID][]int {
	adj := make(map[NodeID][]int, len(g.byName))
	for i, e := range g.edges {
		if e.dead {
			continue
		}
		adj[e.ref.src] = append(adj[e.ref.src], i)
		if e.ref.dst != e.ref.src {
			adj[e.ref.dst] = append(adj[e.ref.dst], i)
		}
	}
	return adj
}

// SimpleEdgePaths enumerates every simple path from src to dst treating
// edges as undirected. Parallel edges yield distinct paths. Each path is the
// ordered list of traversed edge keys (keys keep their stored direction).
// It returns nil when either node is missing or src == dst.
func (g *Graph) SimpleEdgePaths(src, dst string) [][]EdgeKey {
	s, ok := g.byName[src]
	if !ok {
		return nil
	}
	d, ok := g.byName[dst]
	if !ok || s == d {
		return nil
	}
	adj := g.undirected()
	visited := map[NodeID]bool{s: true}
	var (
		paths [][]EdgeKey
		stack []int
		walk  func(at NodeID)
	)
	walk = func(at NodeID) {
		for _, i := range adj[at] {
			ref := g.edges[i].ref
			next := ref.dst
			if next == at {
				next = ref.src
			}
			if visited[next] {
				continue
			}
			stack = append(stack, i)
			if next == d {
				path := make([]EdgeKey, len(stack))
				for j, idx := range stack {
					path[j] = g.key(g.edges[idx])
				}
				paths = append(paths, path)
			} else {
				visited[next] = true
				walk(next)
				visited[next] = false
			}
			stack = stack[:len(stack)-1]
		}
	}
	walk(s)
	return paths
}

// Components returns the connected components in the undirected sense.
// Components are ordered by their earliest node and list members in
// insertion order.
func (g *Graph) Components() [][]string {
	adj := g.undirected()
	seen := make(map[NodeID]bool, len(g.byName))
	var out [][]string
	for id, n := range g.nodes {
		start := NodeID(id)
		if n.dead || seen[start] {
			continue
		}
		seen[start] = true
		members := []NodeID{start}
		queue := []NodeID{start}
		for len(queue) > 0 {
			at := queue[0]
			queue = queue[1:]
			for _, i := range adj[at] {
				ref := g.edges[i].ref
				for _, next := range [2]NodeID{ref.src, ref.dst} {
					if !seen[next] {
						seen[next] = true
						members = append(members, next)
						queue = append(queue, next)
					}
				}
			}
		}
		slices.Sort(members)
		names := make([]string, len(members))
		for i, m := range members {
			names[i] = g.nodes[m].name
		}
		out = append(out, names)
	}
	return out
}
