package graphir

import (
	"github.com/elliotchance/orderedmap"

	"github.com/hyperpolymath/har/pkg/harerr"
)

// TopologicalSort linearizes the graph's vertices so that every
// order-constraining edge (DependencyType.ConstrainsOrder) points from an
// earlier vertex to a later one. Ties are broken by insertion order:
// among vertices with zero unresolved incoming edges, the one that
// appeared earliest in Operations() goes first. The ready set is kept
// in an orderedmap and scanned for the earliest-inserted vertex at each
// step.
//
// This only orders by the order-constraining subset of edges; it does
// not by itself guarantee the full edge set (including notifies/watches)
// is acyclic — see Graph.hasCycle, which Validate also runs.
//
// Returns a *harerr.Error of Kind harerr.CircularDependency (matching
// harerr.ErrCircularDependency under errors.Is) if any vertex cannot be
// scheduled (a cycle through order-constraining edges).
func (g *Graph) TopologicalSort() ([]*Operation, error) {
	indegree := make(map[string]int, len(g.operations))
	for _, op := range g.operations {
		indegree[op.ID] = 0
	}

	// outgoing[id] lists the ids that depend on id, for order-constraining
	// edges only — notifies/watches never gate scheduling.
	outgoing := make(map[string][]string, len(g.operations))
	for _, d := range g.dependencies {
		if !d.Type.ConstrainsOrder() {
			continue
		}
		if _, ok := indegree[d.To]; !ok {
			continue // dangling ref; Validate reports this separately
		}
		if _, ok := indegree[d.From]; !ok {
			continue
		}
		indegree[d.To]++
		outgoing[d.From] = append(outgoing[d.From], d.To)
	}

	pos := make(map[string]int, len(g.operations))
	ready := orderedmap.NewOrderedMap()
	for i, op := range g.operations {
		pos[op.ID] = i
		if indegree[op.ID] == 0 {
			ready.Set(op.ID, op)
		}
	}

	result := make([]*Operation, 0, len(g.operations))
	for ready.Len() > 0 {
		first := ready.Front()
		for el := first.Next(); el != nil; el = el.Next() {
			if pos[el.Key.(string)] < pos[first.Key.(string)] {
				first = el
			}
		}
		id := first.Key.(string)
		op := first.Value.(*Operation)
		ready.Delete(id)
		result = append(result, op)

		for _, next := range outgoing[id] {
			indegree[next]--
			if indegree[next] == 0 {
				nextOp, _ := g.FindOperation(next)
				ready.Set(next, nextOp)
			}
		}
	}

	if len(result) != len(g.operations) {
		return nil, harerr.New(harerr.CircularDependency, "")
	}
	return result, nil
}
