// Package kg builds knowledge graphs: property graphs of the individuals a
// reasoner asserts, one instance node per individual and one edge per
// object-property assertion.
package kg

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/roach88/reqgraph/internal/graph"
	"github.com/roach88/reqgraph/internal/ontology"
)

// KnowledgeGraph is a property graph of asserted individuals. Every edge
// carries Exists = true. Partitions produced by Divide also remember the
// border nodes cut away from the whole graph.
type KnowledgeGraph struct {
	*graph.Graph

	trimmed []string
}

// New wraps g as a knowledge graph.
func New(g *graph.Graph) *KnowledgeGraph {
	if g == nil {
		g = graph.New()
	}
	return &KnowledgeGraph{Graph: g}
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	exclude []string
	logger  *slog.Logger
}

// ExcludeRelations skips object-property assertions with these internal
// names.
func ExcludeRelations(names ...string) LoadOption {
	return func(c *loadConfig) {
		c.exclude = append(c.exclude, names...)
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(l *slog.Logger) LoadOption {
	return func(c *loadConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Load builds a knowledge graph from every individual r asserts. Data
// properties become node Data entries rather than edges.
func Load(r ontology.Reasoner, opts ...LoadOption) (*KnowledgeGraph, error) {
	cfg := loadConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	g := graph.New()
	individuals := r.Individuals()
	for _, name := range individuals {
		class, err := r.ClassOf(name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		data, err := r.Data(name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		g.AddNode(name, graph.NodeAttrs{Kind: graph.KindInstance, Class: class, Data: data})
	}

	skipped := 0
	for _, name := range individuals {
		facts, err := r.Facts(name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		for _, f := range facts {
			if slices.Contains(cfg.exclude, f.Property) {
				skipped++
				continue
			}
			g.AddEdge(name, f.Object, f.Property, graph.EdgeAttrs{Exists: true})
		}
	}

	cfg.logger.Debug("knowledge graph loaded",
		"nodes", g.NumNodes(),
		"edges", g.NumEdges(),
		"excluded", skipped)

	return New(g), nil
}

// Trimmed returns the border nodes removed when this partition was cut out
// of a larger graph. It is empty for a graph built by Load.
func (k *KnowledgeGraph) Trimmed() []string {
	return slices.Clone(k.trimmed)
}

// Members returns every node name plus the trimmed names. Query rows whose
// individuals fall outside this set do not belong to the graph.
func (k *KnowledgeGraph) Members() []string {
	out := k.Nodes()
	for _, t := range k.trimmed {
		if !k.HasNode(t) {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns an independent copy.
func (k *KnowledgeGraph) Clone() *KnowledgeGraph {
	return &KnowledgeGraph{Graph: k.Graph.Clone(), trimmed: slices.Clone(k.trimmed)}
}

// Divide cuts the graph along border classes and returns one partition per
// remaining connected component (undirected sense). Each partition is keyed
// by the name of its key-class node; with no key classes the component's
// index is used instead. Class membership is exact, not inherited.
//
// Every partition's Trimmed list holds all removed border nodes. A
// component with no key-class node yields a LookupError.
func (k *KnowledgeGraph) Divide(border, key []string) (map[string]*KnowledgeGraph, error) {
	cut := k.Graph.Clone()
	var trimmed []string
	for _, name := range k.Nodes() {
		attrs, _ := k.Node(name)
		if slices.Contains(border, attrs.Class) {
			cut.RemoveNode(name)
			trimmed = append(trimmed, name)
		}
	}

	parts := make(map[string]*KnowledgeGraph)
	for i, members := range cut.Components() {
		id := strconv.Itoa(i)
		if len(key) > 0 {
			var keys []string
			for _, m := range members {
				attrs, _ := cut.Node(m)
				if slices.Contains(key, attrs.Class) {
					keys = append(keys, m)
				}
			}
			if len(keys) == 0 {
				return nil, fmt.Errorf("partition %d (%s): %w", i, members[0],
					&ontology.LookupError{Kind: ontology.KindPartition, Name: members[0]})
			}
			slices.Sort(keys)
			id = keys[0]
		}
		parts[id] = &KnowledgeGraph{Graph: cut.Subgraph(members), trimmed: slices.Clone(trimmed)}
	}
	return parts, nil
}

// PartitionKeys returns the keys of parts in sorted order.
func PartitionKeys(parts map[string]*KnowledgeGraph) []string {
	keys := make([]string, 0, len(parts))
	for id := range parts {
		keys = append(keys, id)
	}
	slices.Sort(keys)
	return keys
}
