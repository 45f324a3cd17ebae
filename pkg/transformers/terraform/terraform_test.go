package terraform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
)

func TestTransformEmitsProviderSpecificResourceType(t *testing.T) {
	vm := graphir.NewOperation("vm-main", graphir.OpComputeInstanceCreate)
	vm.Params["cidr_block"] = "10.0.0.0/16"

	out, err := Transform(graphir.New([]*graphir.Operation{vm}, nil, nil), Options{Provider: "gcp"})
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))

	resources, ok := doc["resource"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, resources, "google_compute_instance")
}

func TestTransformDefaultsToAWS(t *testing.T) {
	vm := graphir.NewOperation("vm-main", graphir.OpComputeInstanceCreate)
	out, err := Transform(graphir.New([]*graphir.Operation{vm}, nil, nil), Options{})
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	resources, ok := doc["resource"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, resources, "aws_instance")
}

func TestTransformUsesResourceNameMetadataOverOperationID(t *testing.T) {
	// op.ID mirrors how the Terraform parser builds ids ("type-name"),
	// which collides with the sanitized form of a different resource's
	// name; resource_name metadata must win so the emitted resource stays
	// addressable as "aws_vpc.main" and not "aws_vpc.aws_vpc_main".
	vpc := graphir.NewOperation("aws_vpc-main", graphir.OpNetworkCreate)
	vpc.Params["cidr_block"] = "10.0.0.0/16"
	vpc.Metadata["resource_type"] = "aws_vpc"
	vpc.Metadata["resource_name"] = "main"

	out, err := Transform(graphir.New([]*graphir.Operation{vpc}, nil, nil), Options{Provider: "aws"})
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))

	resources, ok := doc["resource"].(map[string]interface{})
	require.True(t, ok)
	vpcs, ok := resources["aws_vpc"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, vpcs, "main")
	assert.NotContains(t, vpcs, "aws_vpc_main")
}

func TestTransformLiftsVariablesFromMetadata(t *testing.T) {
	vm := graphir.NewOperation("vm-main", graphir.OpComputeInstanceCreate)
	g := graphir.New([]*graphir.Operation{vm}, nil, map[string]interface{}{
		"terraform_variables": map[string]interface{}{"region": map[string]interface{}{"default": "us-east-1"}},
	})
	out, err := Transform(g, Options{})
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Contains(t, doc, "variable")
}
