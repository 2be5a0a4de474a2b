// Package graph implements the directed multi-edge property graph that both
// knowledge graphs and query graphs are built on.
//
// Nodes are addressed by name and stored in an arena indexed by NodeID.
// Edges are identified by (source, target, label); several labels may
// connect the same ordered pair. Iteration always follows insertion order so
// every derived artifact is deterministic.
package graph

import (
	"fmt"
	"slices"

	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/status"
)

// NodeID is an arena index. IDs are stable for the lifetime of a graph and
// are never reused.
type NodeID int

// NodeKind distinguishes query variables, class constants and individuals.
type NodeKind string

const (
	KindVariable NodeKind = "variable"
	KindClass    NodeKind = "class"
	KindInstance NodeKind = "instance"
)

// EdgeKind records whether both endpoints of a query edge were variables.
// Knowledge-graph edges leave it empty.
type EdgeKind string

const (
	EdgeVarToVar   EdgeKind = "var2var"
	EdgeVarToClass EdgeKind = "var2class"
)

// NodeAttrs is the fixed attribute record of a node.
type NodeAttrs struct {
	Kind   NodeKind
	Class  string
	Status status.Node
	Use    bool
	Data   ir.IRObject
	Style  status.Style
}

// merge overlays the non-zero fields of b. Data entries are merged key by key.
func (a NodeAttrs) merge(b NodeAttrs) NodeAttrs {
	if b.Kind != "" {
		a.Kind = b.Kind
	}
	if b.Class != "" {
		a.Class = b.Class
	}
	if b.Status != status.NodeUnset {
		a.Status = b.Status
	}
	if b.Use {
		a.Use = true
	}
	if len(b.Data) > 0 {
		data := a.Data.Clone()
		if data == nil {
			data = ir.IRObject{}
		}
		for k, v := range b.Data {
			data[k] = v
		}
		a.Data = data
	}
	a.Style = a.Style.Merge(b.Style)
	return a
}

// EdgeAttrs is the fixed attribute record of an edge.
type EdgeAttrs struct {
	Kind      EdgeKind
	MustExist bool
	Exists    bool
	Use       bool
	Status    status.Edge
	Highlight bool
	Style     status.Style
}

// EdgeKey identifies an edge.
type EdgeKey struct {
	Src   string
	Dst   string
	Label string
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%s -%s-> %s", k.Src, k.Label, k.Dst)
}

// Other returns the endpoint of k opposite to name.
func (k EdgeKey) Other(name string) string {
	if k.Src == name {
		return k.Dst
	}
	return k.Src
}

type nodeEntry struct {
	name  string
	attrs NodeAttrs
	dead  bool
}

type edgeRef struct {
	src, dst NodeID
	label    string
}

type edgeEntry struct {
	ref   edgeRef
	attrs EdgeAttrs
	dead  bool
}

// Graph is a directed multigraph with named nodes. The zero value is not
// usable; call New.
//
// Graph is not safe for concurrent mutation.
type Graph struct {
	nodes  []nodeEntry
	byName map[string]NodeID
	edges  []edgeEntry
	byRef  map[edgeRef]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		byName: make(map[string]NodeID),
		byRef:  make(map[edgeRef]int),
	}
}

// AddNode inserts a node, or merges attrs into an existing one.
func (g *Graph) AddNode(name string, attrs NodeAttrs) NodeID {
	if id, ok := g.byName[name]; ok {
		g.nodes[id].attrs = g.nodes[id].attrs.merge(attrs)
		return id
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, nodeEntry{name: name, attrs: attrs})
	g.byName[name] = id
	return id
}

// AddEdge inserts an edge, creating missing endpoints with zero attributes.
// Adding an existing key replaces its attributes (last write wins).
func (g *Graph) AddEdge(src, dst, label string, attrs EdgeAttrs) EdgeKey {
	s := g.ensure(src)
	d := g.ensure(dst)
	ref := edgeRef{src: s, dst: d, label: label}
	if i, ok := g.byRef[ref]; ok {
		g.edges[i].attrs = attrs
	} else {
		g.byRef[ref] = len(g.edges)
		g.edges = append(g.edges, edgeEntry{ref: ref, attrs: attrs})
	}
	return EdgeKey{Src: src, Dst: dst, Label: label}
}

func (g *Graph) ensure(name string) NodeID {
	if id, ok := g.byName[name]; ok {
		return id
	}
	return g.AddNode(name, NodeAttrs{})
}

// HasNode reports whether a node exists.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.byName[name]
	return ok
}

// HasEdge reports whether an edge exists.
func (g *Graph) HasEdge(key EdgeKey) bool {
	_, ok := g.edgeIndex(key)
	return ok
}

// Node returns a node's attributes. The Data map is shared with the graph;
// use SetNode or UpdateNode to change it.
func (g *Graph) Node(name string) (NodeAttrs, bool) {
	id, ok := g.byName[name]
	if !ok {
		return NodeAttrs{}, false
	}
	return g.nodes[id].attrs, true
}

// Edge returns an edge's attributes.
func (g *Graph) Edge(key EdgeKey) (EdgeAttrs, bool) {
	i, ok := g.edgeIndex(key)
	if !ok {
		return EdgeAttrs{}, false
	}
	return g.edges[i].attrs, true
}

// SetNode replaces a node's attributes.
func (g *Graph) SetNode(name string, attrs NodeAttrs) error {
	id, ok := g.byName[name]
	if !ok {
		return fmt.Errorf("node %q not found", name)
	}
	g.nodes[id].attrs = attrs
	return nil
}

// SetEdge replaces an edge's attributes.
func (g *Graph) SetEdge(key EdgeKey, attrs EdgeAttrs) error {
	i, ok := g.edgeIndex(key)
	if !ok {
		return fmt.Errorf("edge %s not found", key)
	}
	g.edges[i].attrs = attrs
	return nil
}

// UpdateNode applies fn to a node's attributes in place.
func (g *Graph) UpdateNode(name string, fn func(*NodeAttrs)) bool {
	id, ok := g.byName[name]
	if !ok {
		return false
	}
	fn(&g.nodes[id].attrs)
	return true
}

// UpdateEdge applies fn to an edge's attributes in place.
func (g *Graph) UpdateEdge(key EdgeKey, fn func(*EdgeAttrs)) bool {
	i, ok := g.edgeIndex(key)
	if !ok {
		return false
	}
	fn(&g.edges[i].attrs)
	return true
}

// RemoveNode deletes a node and every incident edge.
func (g *Graph) RemoveNode(name string) bool {
	id, ok := g.byName[name]
	if !ok {
		return false
	}
	for i := range g.edges {
		e := &g.edges[i]
		if !e.dead && (e.ref.src == id || e.ref.dst == id) {
			g.killEdge(i)
		}
	}
	g.nodes[id].dead = true
	g.nodes[id].attrs = NodeAttrs{}
	delete(g.byName, name)
	return true
}

// RemoveEdge deletes an edge. Endpoints are kept.
func (g *Graph) RemoveEdge(key EdgeKey) bool {
	i, ok := g.edgeIndex(key)
	if !ok {
		return false
	}
	g.killEdge(i)
	return true
}

func (g *Graph) killEdge(i int) {
	delete(g.byRef, g.edges[i].ref)
	g.edges[i].dead = true
}

// Relabel renames a node. When newName already exists the two nodes are
// merged: attributes of oldName are overlaid on newName and its edges are
// moved over, replacing any edge that already has the resulting key.
func (g *Graph) Relabel(oldName, newName string) error {
	if oldName == newName {
		if !g.HasNode(oldName) {
			return fmt.Errorf("node %q not found", oldName)
		}
		return nil
	}
	oid, ok := g.byName[oldName]
	if !ok {
		return fmt.Errorf("node %q not found", oldName)
	}
	tid, exists := g.byName[newName]
	if !exists {
		g.nodes[oid].name = newName
		delete(g.byName, oldName)
		g.byName[newName] = oid
		return nil
	}

	g.nodes[tid].attrs = g.nodes[tid].attrs.merge(g.nodes[oid].attrs)
	for i := range g.edges {
		e := &g.edges[i]
		if e.dead || (e.ref.src != oid && e.ref.dst != oid) {
			continue
		}
		ref := e.ref
		if ref.src == oid {
			ref.src = tid
		}
		if ref.dst == oid {
			ref.dst = tid
		}
		g.moveEdge(i, ref)
	}
	g.nodes[oid].dead = true
	g.nodes[oid].attrs = NodeAttrs{}
	delete(g.byName, oldName)
	return nil
}

// RekeyEdge changes an edge's label. If the new key is already taken the
// existing edge receives this edge's attributes and this edge is removed.
func (g *Graph) RekeyEdge(key EdgeKey, label string) (EdgeKey, error) {
	i, ok := g.edgeIndex(key)
	if !ok {
		return EdgeKey{}, fmt.Errorf("edge %s not found", key)
	}
	ref := g.edges[i].ref
	ref.label = label
	g.moveEdge(i, ref)
	return EdgeKey{Src: key.Src, Dst: key.Dst, Label: label}, nil
}

func (g *Graph) moveEdge(i int, ref edgeRef) {
	if ref == g.edges[i].ref {
		return
	}
	delete(g.byRef, g.edges[i].ref)
	if j, taken := g.byRef[ref]; taken {
		g.edges[j].attrs = g.edges[i].attrs
		g.edges[i].dead = true
		return
	}
	g.edges[i].ref = ref
	g.byRef[ref] = i
}

func (g *Graph) edgeIndex(key EdgeKey) (int, bool) {
	s, ok := g.byName[key.Src]
	if !ok {
		return 0, false
	}
	d, ok := g.byName[key.Dst]
	if !ok {
		return 0, false
	}
	i, ok := g.byRef[edgeRef{src: s, dst: d, label: key.Label}]
	return i, ok
}

func (g *Graph) key(e edgeEntry) EdgeKey {
	return EdgeKey{Src: g.nodes[e.ref.src].name, Dst: g.nodes[e.ref.dst].name, Label: e.ref.label}
}

// NumNodes returns the number of live nodes.
func (g *Graph) NumNodes() int {
	return len(g.byName)
}

// NumEdges returns the number of live edges.
func (g *Graph) NumEdges() int {
	return len(g.byRef)
}

// Nodes returns node names in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.byName))
	for _, n := range g.nodes {
		if !n.dead {
			out = append(out, n.name)
		}
	}
	return out
}

// Edges returns edge keys in insertion order.
func (g *Graph) Edges() []EdgeKey {
	out := make([]EdgeKey, 0, len(g.byRef))
	for _, e := range g.edges {
		if !e.dead {
			out = append(out, g.key(e))
		}
	}
	return out
}

// Neighbors returns every edge incident to name, in either direction, in
// insertion order.
func (g *Graph) Neighbors(name string) []EdgeKey {
	id, ok := g.byName[name]
	if !ok {
		return nil
	}
	var out []EdgeKey
	for _, e := range g.edges {
		if !e.dead && (e.ref.src == id || e.ref.dst == id) {
			out = append(out, g.key(e))
		}
	}
	return out
}

// Clone returns an independent deep copy.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		nodes:  slices.Clone(g.nodes),
		byName: make(map[string]NodeID, len(g.byName)),
		edges:  slices.Clone(g.edges),
		byRef:  make(map[edgeRef]int, len(g.byRef)),
	}
	for i := range out.nodes {
		out.nodes[i].attrs.Data = out.nodes[i].attrs.Data.Clone()
	}
	for k, v := range g.byName {
		out.byName[k] = v
	}
	for k, v := range g.byRef {
		out.byRef[k] = v
	}
	return out
}

// Subgraph returns an independent graph induced by names. Unknown names are
// ignored. Insertion order follows g.
func (g *Graph) Subgraph(names []string) *Graph {
	keep := make(map[NodeID]bool, len(names))
	for _, n := range names {
		if id, ok := g.byName[n]; ok {
			keep[id] = true
		}
	}
	out := New()
	for id, n := range g.nodes {
		if !n.dead && keep[NodeID(id)] {
			attrs := n.attrs
			attrs.Data = attrs.Data.Clone()
			out.AddNode(n.name, attrs)
		}
	}
	for _, e := range g.edges {
		if !e.dead && keep[e.ref.src] && keep[e.ref.dst] {
			k := g.key(e)
			out.AddEdge(k.Src, k.Dst, k.Label, e.attrs)
		}
	}
	return out
}
