package graphir

import (
	"github.com/elliotchance/orderedmap"
	iradix "github.com/hashicorp/go-immutable-radix"
)

// PartitionResult is one group produced by Graph.PartitionBy.
type PartitionResult struct {
	Key      string
	Subgraph *Graph
}

// PartitionBy groups vertices by the key f returns for each Operation. An
// edge survives into a subgraph iff both its endpoints mapped to that
// subgraph's key; cross-partition edges are dropped silently. Group order follows first-encounter order of each key
// while scanning Operations().
func (g *Graph) PartitionBy(f func(*Operation) string) []PartitionResult {
	keyOf := make(map[string]string, len(g.operations))
	groups := orderedmap.NewOrderedMap()

	for _, op := range g.operations {
		key := f(op)
		keyOf[op.ID] = key
		raw, ok := groups.Get(key)
		if !ok {
			raw = &Graph{metadata: cloneMeta(g.metadata), index: iradix.New()}
			groups.Set(key, raw)
		}
		sub := raw.(*Graph)
		sub.operations = append(sub.operations, cloneOperation(op))
		sub.index, _, _ = sub.index.Insert([]byte(op.ID), len(sub.operations)-1)
	}

	for _, d := range g.dependencies {
		fromKey, fromOK := keyOf[d.From]
		toKey, toOK := keyOf[d.To]
		if !fromOK || !toOK || fromKey != toKey {
			continue
		}
		raw, _ := groups.Get(fromKey)
		sub := raw.(*Graph)
		sub.dependencies = append(sub.dependencies, d)
	}

	out := make([]PartitionResult, 0, groups.Len())
	for el := groups.Front(); el != nil; el = el.Next() {
		out = append(out, PartitionResult{Key: el.Key.(string), Subgraph: el.Value.(*Graph)})
	}
	return out
}

// Merge unions graphs into one. Vertices are deduplicated by id,
// first-occurrence wins (an id seen again in a later graph is dropped,
// not overwritten); edges are deduplicated by {from,to,type} the same
// way. Encounter order across all input graphs, scanned
// in slice order, is preserved in the result.
func Merge(graphs []*Graph) *Graph {
	opSeen := orderedmap.NewOrderedMap()
	depSeen := orderedmap.NewOrderedMap()
	meta := map[string]interface{}{}

	for _, g := range graphs {
		for k, v := range g.metadata {
			if _, ok := meta[k]; !ok {
				meta[k] = v
			}
		}
		for _, op := range g.operations {
			if _, ok := opSeen.Get(op.ID); !ok {
				opSeen.Set(op.ID, cloneOperation(op))
			}
		}
		for _, d := range g.dependencies {
			key := d.dedupKey()
			if _, ok := depSeen.Get(key); !ok {
				depSeen.Set(key, d)
			}
		}
	}

	ops := make([]*Operation, 0, opSeen.Len())
	for el := opSeen.Front(); el != nil; el = el.Next() {
		ops = append(ops, el.Value.(*Operation))
	}
	deps := make([]*Dependency, 0, depSeen.Len())
	for el := depSeen.Front(); el != nil; el = el.Next() {
		deps = append(deps, el.Value.(*Dependency))
	}

	return New(ops, deps, meta)
}
