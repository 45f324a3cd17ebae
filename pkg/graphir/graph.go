// Package graphir implements HAR's Semantic Graph intermediate
// representation: Operation/Dependency value types plus the Graph
// container and its dependency algebra (validate, topological sort,
// partition, merge).
//
// A Graph is a flat, immutable-from-the-caller's-perspective value: a
// slice of Operations, a slice of Dependencies, and free-form metadata.
// Every transformation (AddOperation, AddDependency, Merge, PartitionBy)
// returns a new Graph; the one a caller already holds is never mutated
// underneath it, since cyclic object graphs buy nothing a flat value
// type with id-based edges doesn't already give you.
package graphir

import (
	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/jinzhu/copier"
)

// Graph is HAR's dialect-neutral IR.
type Graph struct {
	operations   []*Operation
	dependencies []*Dependency
	metadata     map[string]interface{}

	// index maps operation id -> position in operations, backed by a
	// persistent radix tree so every functional builder below can hand
	// out a new Graph without a reader of the old one ever observing a
	// torn index.
	index *iradix.Tree
}

// New constructs a Graph from the given vertices/edges/metadata with no
// validation performed.
func New(vertices []*Operation, edges []*Dependency, metadata map[string]interface{}) *Graph {
	g := &Graph{
		operations:   append([]*Operation(nil), vertices...),
		dependencies: append([]*Dependency(nil), edges...),
		metadata:     cloneMeta(metadata),
		index:        iradix.New(),
	}
	for i, op := range g.operations {
		g.index, _, _ = g.index.Insert([]byte(op.ID), i)
	}
	return g
}

// Empty returns a Graph with no vertices or edges.
func Empty() *Graph {
	return New(nil, nil, nil)
}

func cloneMeta(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// cloneOperation deep-copies op so that a Graph produced by Merge or
// PartitionBy never aliases the Params/Target/Metadata maps of the graph
// it was built from — required for the "immutable thereafter" lifecycle
// rule to actually hold under mutation of a caller's own maps.
func cloneOperation(op *Operation) *Operation {
	var out Operation
	if err := copier.CopyWithOption(&out, op, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on structurally incompatible types, which
		// cannot happen copying Operation onto Operation.
		panic(err)
	}
	return &out
}

// Metadata returns the graph's free-form metadata map.
func (g *Graph) Metadata() map[string]interface{} { return g.metadata }

// WithMetadata returns a new Graph sharing this one's vertices/edges but
// with the given metadata key set.
func (g *Graph) WithMetadata(key string, value interface{}) *Graph {
	meta := cloneMeta(g.metadata)
	meta[key] = value
	return &Graph{operations: g.operations, dependencies: g.dependencies, metadata: meta, index: g.index}
}

// AddOperation returns a new Graph with op appended (functional builder).
func (g *Graph) AddOperation(op *Operation) *Graph {
	ops := append(append([]*Operation(nil), g.operations...), op)
	idx, _, _ := g.index.Insert([]byte(op.ID), len(g.operations))
	return &Graph{operations: ops, dependencies: g.dependencies, metadata: g.metadata, index: idx}
}

// AddDependency returns a new Graph with dep appended.
func (g *Graph) AddDependency(dep *Dependency) *Graph {
	deps := append(append([]*Dependency(nil), g.dependencies...), dep)
	return &Graph{operations: g.operations, dependencies: deps, metadata: g.metadata, index: g.index}
}

// Operations returns the graph's vertices in insertion order. The slice
// is a defensive copy; mutating it does not affect the Graph.
func (g *Graph) Operations() []*Operation {
	return append([]*Operation(nil), g.operations...)
}

// Dependencies returns the graph's edges in insertion order.
func (g *Graph) Dependencies() []*Dependency {
	return append([]*Dependency(nil), g.dependencies...)
}

// FindOperation looks up a vertex by id via the radix index.
func (g *Graph) FindOperation(id string) (*Operation, bool) {
	v, ok := g.index.Get([]byte(id))
	if !ok {
		return nil, false
	}
	idx := v.(int)
	if idx < 0 || idx >= len(g.operations) {
		return nil, false
	}
	return g.operations[idx], true
}

// OperationsByType filters vertices by OperationType, preserving
// insertion order.
func (g *Graph) OperationsByType(t OperationType) []*Operation {
	var out []*Operation
	for _, op := range g.operations {
		if op.Type == t {
			out = append(out, op)
		}
	}
	return out
}

// DependenciesFor returns the incoming edges of vertex id, preserving
// insertion order.
func (g *Graph) DependenciesFor(id string) []*Dependency {
	var out []*Dependency
	for _, d := range g.dependencies {
		if d.To == id {
			out = append(out, d)
		}
	}
	return out
}

// OperationCount returns the number of vertices.
func (g *Graph) OperationCount() int { return len(g.operations) }

// DependencyCount returns the number of edges.
func (g *Graph) DependencyCount() int { return len(g.dependencies) }

// IsEmpty reports whether the graph has no vertices.
func (g *Graph) IsEmpty() bool { return len(g.operations) == 0 }

// hasCycle reports whether the full edge set — every DependencyType,
// not just the order-constraining ones TopologicalSort honors — contains
// a cycle. This is invariant 2 ("the edge set is acyclic"), which binds
// regardless of edge kind; it is checked independently of
// TopologicalSort's linearization, which only has to respect
// requires/sequential/depends_on/before (invariant 5). Three-color DFS:
// white (unvisited), gray (on the current recursion stack), black (done).
func (g *Graph) hasCycle() bool {
	adjacency := make(map[string][]string, len(g.operations))
	for _, d := range g.dependencies {
		if _, ok := g.FindOperation(d.From); !ok {
			continue // dangling ref; Validate step 1 reports this separately
		}
		if _, ok := g.FindOperation(d.To); !ok {
			continue
		}
		adjacency[d.From] = append(adjacency[d.From], d.To)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.operations))

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, next := range adjacency[id] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, op := range g.operations {
		if color[op.ID] == white {
			if visit(op.ID) {
				return true
			}
		}
	}
	return false
}
