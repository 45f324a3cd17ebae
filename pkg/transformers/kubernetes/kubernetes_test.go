package kubernetes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
)

func TestTransformEmitsDeploymentDocument(t *testing.T) {
	deploy := graphir.NewOperation("app", graphir.OpContainerDeploymentCreate)
	out, err := Transform(graphir.New([]*graphir.Operation{deploy}, nil, nil), Options{Namespace: "demo"})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "kind: Deployment")
	assert.Contains(t, text, "namespace: demo")
}

func TestTransformEmitsNetworkPolicyForNamespacedFirewallRule(t *testing.T) {
	fw := graphir.NewOperation("fw-1", graphir.OpFirewallRule)
	fw.Target["namespace"] = "demo"
	out, err := Transform(graphir.New([]*graphir.Operation{fw}, nil, nil), Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "kind: NetworkPolicy")
}

func TestTransformSkipsFirewallRuleWithoutNamespace(t *testing.T) {
	fw := graphir.NewOperation("fw-1", graphir.OpFirewallRule)
	out, err := Transform(graphir.New([]*graphir.Operation{fw}, nil, nil), Options{})
	require.NoError(t, err)
	assert.True(t, strings.TrimSpace(string(out)) == "")
}
