package graphir

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/harerr"
)

func op(id string, typ OperationType, params map[string]interface{}) *Operation {
	o := NewOperation(id, typ)
	for k, v := range params {
		o.Params[k] = v
	}
	return o
}

func TestEmptyGraph(t *testing.T) {
	g := Empty()
	assert.True(t, g.IsEmpty())
	assert.Equal(t, 0, g.OperationCount())
	assert.Nil(t, g.Validate())

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestSingleVertexGraph(t *testing.T) {
	a := op("a", OpPackageInstall, map[string]interface{}{"package": "nginx"})
	g := New([]*Operation{a}, nil, nil)

	assert.Nil(t, g.Validate())
	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Len(t, order, 1)
	assert.Equal(t, "a", order[0].ID)
}

func TestValidateInvalidReferences(t *testing.T) {
	a := op("a", OpPackageInstall, map[string]interface{}{"package": "nginx"})
	g := New([]*Operation{a}, []*Dependency{NewDependency("a", "ghost", DepRequires)}, nil)

	verr := g.Validate()
	require.NotNil(t, verr)
	assert.Equal(t, harerr.InvalidReferences, verr.Kind)
	assert.Contains(t, verr.InvalidRefs, "ghost")
}

func TestValidateInvalidOperations(t *testing.T) {
	bad := NewOperation("a", OpPackageInstall) // missing required "package"
	g := New([]*Operation{bad}, nil, nil)

	verr := g.Validate()
	require.NotNil(t, verr)
	assert.Equal(t, harerr.InvalidOperations, verr.Kind)
	require.Len(t, verr.InvalidOps, 1)
	assert.Equal(t, "a", verr.InvalidOps[0].ID)
}

func TestValidateCircularDependency(t *testing.T) {
	a := op("a", OpServiceStart, map[string]interface{}{"service": "nginx"})
	b := op("b", OpServiceStart, map[string]interface{}{"service": "redis"})
	g := New([]*Operation{a, b}, []*Dependency{
		NewDependency("a", "b", DepRequires),
		NewDependency("b", "a", DepRequires),
	}, nil)

	verr := g.Validate()
	require.NotNil(t, verr)
	assert.Equal(t, harerr.CircularDependency, verr.Kind)

	_, err := g.TopologicalSort()
	require.Error(t, err)
	assert.True(t, errors.Is(err, harerr.ErrCircularDependency))
}

func TestTopologicalSortRespectsOrderAndInsertionTieBreak(t *testing.T) {
	// c and d are both unconstrained; insertion order is c, d, so a
	// correct stable sort puts c before d whenever both are ready.
	a := op("a", OpPackageInstall, map[string]interface{}{"package": "base"})
	b := op("b", OpServiceStart, map[string]interface{}{"service": "app"})
	c := op("c", OpCommandRun, map[string]interface{}{"command": "echo c"})
	d := op("d", OpCommandRun, map[string]interface{}{"command": "echo d"})

	g := New([]*Operation{a, b, c, d}, []*Dependency{
		NewDependency("a", "b", DepRequires),
	}, nil)

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := map[string]int{}
	for i, o := range order {
		pos[o.ID] = i
	}
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["c"], pos["d"])
}

func TestTopologicalSortIgnoresNonOrderingEdges(t *testing.T) {
	a := op("a", OpFileWrite, map[string]interface{}{"path": "/etc/x.conf", "content": "x"})
	b := op("b", OpServiceRestart, map[string]interface{}{"service": "x"})

	// notifies does not constrain order; without any requires/before edge
	// either linearization is valid, but sorting must still succeed.
	g := New([]*Operation{a, b}, []*Dependency{
		NewDependency("a", "b", DepNotifies),
	}, nil)

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Len(t, order, 2)
}

func TestValidateCatchesCycleThroughNotifiesAndWatchesOnly(t *testing.T) {
	a := op("a", OpFileWrite, map[string]interface{}{"path": "/etc/x.conf", "content": "x"})
	b := op("b", OpServiceRestart, map[string]interface{}{"service": "x"})

	// Neither edge is order-constraining, so TopologicalSort alone would
	// never notice this cycle; Validate must still reject it, since
	// invariant 2 (acyclic edge set) is not qualified by edge type.
	g := New([]*Operation{a, b}, []*Dependency{
		NewDependency("a", "b", DepNotifies),
		NewDependency("b", "a", DepWatches),
	}, nil)

	_, sortErr := g.TopologicalSort()
	require.NoError(t, sortErr)

	verr := g.Validate()
	require.NotNil(t, verr)
	assert.True(t, verr.Circular)
}

func TestPartitionByCompletenessAndCrossPartitionDrop(t *testing.T) {
	a := op("a", OpPackageInstall, map[string]interface{}{"package": "nginx"})
	a.Target["os"] = "ubuntu"
	b := op("b", OpServiceStart, map[string]interface{}{"service": "nginx"})
	b.Target["os"] = "ubuntu"
	c := op("c", OpPackageInstall, map[string]interface{}{"package": "httpd"})
	c.Target["os"] = "rhel"

	g := New([]*Operation{a, b, c}, []*Dependency{
		NewDependency("a", "b", DepRequires), // same partition, survives
		NewDependency("a", "c", DepRequires), // cross partition, dropped
	}, nil)

	parts := g.PartitionBy(func(o *Operation) string { return o.TargetString("os") })
	require.Len(t, parts, 2)

	total := 0
	for _, p := range parts {
		total += p.Subgraph.OperationCount()
		if p.Key == "ubuntu" {
			assert.Equal(t, 1, p.Subgraph.DependencyCount())
		}
		if p.Key == "rhel" {
			assert.Equal(t, 0, p.Subgraph.DependencyCount())
		}
	}
	assert.Equal(t, 3, total)
}

func TestMergeDedupesByIDAndEdgeKeyFirstOccurrenceWins(t *testing.T) {
	a1 := op("a", OpPackageInstall, map[string]interface{}{"package": "nginx"})
	a2 := op("a", OpPackageInstall, map[string]interface{}{"package": "SHOULD_NOT_WIN"})
	b := op("b", OpServiceStart, map[string]interface{}{"service": "nginx"})

	g1 := New([]*Operation{a1, b}, []*Dependency{NewDependency("a", "b", DepRequires)}, nil)
	g2 := New([]*Operation{a2}, []*Dependency{NewDependency("a", "b", DepRequires)}, nil)

	merged := Merge([]*Graph{g1, g2})

	assert.Equal(t, 2, merged.OperationCount())
	assert.Equal(t, 1, merged.DependencyCount())

	found, ok := merged.FindOperation("a")
	require.True(t, ok)
	assert.Equal(t, "nginx", found.ParamString("package"))
}

func TestMergeIsOrderInsensitiveUpToFirstOccurrence(t *testing.T) {
	a := op("a", OpPackageInstall, map[string]interface{}{"package": "nginx"})
	b := op("b", OpServiceStart, map[string]interface{}{"service": "nginx"})
	dep := NewDependency("a", "b", DepRequires)

	g1 := New([]*Operation{a}, nil, nil)
	g2 := New([]*Operation{b}, []*Dependency{dep}, nil)

	merged1 := Merge([]*Graph{g1, g2})
	merged2 := Merge([]*Graph{g2, g1})

	assert.True(t, cmp.Equal(merged1.OperationCount(), merged2.OperationCount()))
	assert.ElementsMatch(t, idsOf(merged1.Operations()), idsOf(merged2.Operations()))
}

func idsOf(ops []*Operation) []string {
	out := make([]string, len(ops))
	for i, o := range ops {
		out[i] = o.ID
	}
	return out
}
