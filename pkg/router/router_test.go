package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
)

func buildTestRouter() *Router {
	table := NewRoutingTable([]RoutingRule{
		{
			Pattern: Pattern{Operation: string(graphir.OpPackageInstall)},
			Backends: []BackendDescriptor{
				{Name: "apt", Type: BackendLocal, Priority: 10},
				{Name: "cloud-pkg", Type: BackendCloud, Priority: 5},
			},
		},
	})
	health := NewHealthChecker(DefaultConfig())
	policy := NewPolicyEngine(nil)
	return NewRouter(table, health, policy)
}

func TestRouteProducesDecisionPerOperation(t *testing.T) {
	r := buildTestRouter()
	a := graphir.NewOperation("a", graphir.OpPackageInstall)
	a.Params["package"] = "nginx"
	g := graphir.New([]*graphir.Operation{a}, nil, nil)

	plan, err := r.Route(g, "ansible", nil)
	require.NoError(t, err)
	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, "apt", plan.Decisions[0].ChosenBackend)
	assert.Equal(t, []string{"cloud-pkg"}, plan.Decisions[0].Alternatives)
	assert.Equal(t, "pattern_match", plan.Decisions[0].Reason)
}

func TestRouteFailsWhenNoBackendMatches(t *testing.T) {
	r := buildTestRouter()
	a := graphir.NewOperation("a", graphir.OpServiceStart)
	a.Params["service"] = "nginx"
	g := graphir.New([]*graphir.Operation{a}, nil, nil)

	_, err := r.Route(g, "ansible", nil)
	require.Error(t, err)

	var herr *harerr.Error
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, harerr.RoutingFailed, herr.Kind)
}

func TestRouteRejectsInvalidGraphBeforeRouting(t *testing.T) {
	r := buildTestRouter()
	bad := graphir.NewOperation("a", graphir.OpPackageInstall) // missing "package"
	g := graphir.New([]*graphir.Operation{bad}, nil, nil)

	_, err := r.Route(g, "ansible", nil)
	require.Error(t, err)
}

func TestRouteExcludesUnhealthyBackends(t *testing.T) {
	r := buildTestRouter()
	r.Health.SetHealth("local:apt", StatusUnhealthy)

	a := graphir.NewOperation("a", graphir.OpPackageInstall)
	a.Params["package"] = "nginx"
	g := graphir.New([]*graphir.Operation{a}, nil, nil)

	plan, err := r.Route(g, "ansible", nil)
	require.NoError(t, err)
	assert.Equal(t, "cloud-pkg", plan.Decisions[0].ChosenBackend)
}
