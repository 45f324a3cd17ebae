package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
)

func TestApplyPoliciesDenyShortCircuits(t *testing.T) {
	policies := []Policy{
		{Name: "deny-cloud", Type: PolicyDeny, Priority: 100, Condition: PolicyCondition{BackendType: "cloud"}},
	}
	engine := NewPolicyEngine(policies)

	backends := []BackendDescriptor{
		{Name: "aws", Type: BackendCloud, Priority: 5},
		{Name: "local", Type: BackendLocal, Priority: 5},
	}
	op := graphir.NewOperation("a", graphir.OpComputeInstanceCreate)

	survivors := engine.ApplyPolicies(backends, op, nil)
	require.Len(t, survivors, 1)
	assert.Equal(t, "local", survivors[0].Name)
}

func TestApplyPoliciesPreferBoostsOrdering(t *testing.T) {
	policies := []Policy{
		{Name: "prefer-local", Type: PolicyPrefer, Priority: 50, PreferBoost: 100, Condition: PolicyCondition{BackendType: "local"}},
	}
	engine := NewPolicyEngine(policies)

	backends := []BackendDescriptor{
		{Name: "cloud-a", Type: BackendCloud, Priority: 10},
		{Name: "local-a", Type: BackendLocal, Priority: 1},
	}
	op := graphir.NewOperation("a", graphir.OpComputeInstanceCreate)

	survivors := engine.ApplyPolicies(backends, op, nil)
	require.Len(t, survivors, 2)
	assert.Equal(t, "local-a", survivors[0].Name)
}

func TestApplyPoliciesRespectsOptsFilter(t *testing.T) {
	policies := []Policy{
		{Name: "deny-all-cloud", Type: PolicyDeny, Priority: 10, Condition: PolicyCondition{BackendType: "cloud"}},
	}
	engine := NewPolicyEngine(policies)

	backends := []BackendDescriptor{{Name: "aws", Type: BackendCloud, Priority: 5}}
	op := graphir.NewOperation("a", graphir.OpComputeInstanceCreate)

	// Policy not named in opts is skipped entirely.
	survivors := engine.ApplyPolicies(backends, op, []string{"some-other-policy"})
	assert.Len(t, survivors, 1)
}

func TestApplyPoliciesUnknownConditionKeyVacuouslySatisfied(t *testing.T) {
	policies := []Policy{
		{Name: "allow-all", Type: PolicyAllow, Priority: 1, Condition: PolicyCondition{}},
	}
	engine := NewPolicyEngine(policies)
	backends := []BackendDescriptor{{Name: "x", Type: BackendLocal, Priority: 1}}
	op := graphir.NewOperation("a", graphir.OpCommandRun)

	survivors := engine.ApplyPolicies(backends, op, nil)
	assert.Len(t, survivors, 1)
}

func TestCollectReportsCounters(t *testing.T) {
	policies := []Policy{
		{Name: "deny-cloud", Type: PolicyDeny, Priority: 100, Condition: PolicyCondition{BackendType: "cloud"}},
	}
	engine := NewPolicyEngine(policies)
	backends := []BackendDescriptor{{Name: "aws", Type: BackendCloud, Priority: 5}}
	op := graphir.NewOperation("a", graphir.OpComputeInstanceCreate)

	engine.ApplyPolicies(backends, op, nil)

	snapshot, err := engine.Collect()
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot)
}
