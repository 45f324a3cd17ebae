package bridge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
)

func buildSampleGraph() *graphir.Graph {
	a := graphir.NewOperation("a", graphir.OpPackageInstall)
	a.Params["package"] = "nginx"
	a.Target["os"] = "ubuntu"

	b := graphir.NewOperation("b", graphir.OpServiceStart)
	b.Params["service"] = "nginx"
	b.Metadata["notes"] = "started after install"

	dep := graphir.NewDependency("a", "b", graphir.DepRequires)
	dep.Metadata["source"] = "requisite"

	return graphir.New(
		[]*graphir.Operation{a, b},
		[]*graphir.Dependency{dep},
		map[string]interface{}{"dialect": "ansible"},
	)
}

func TestRoundTripPreservesStructure(t *testing.T) {
	g := buildSampleGraph()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g))

	g2, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, g.OperationCount(), g2.OperationCount())
	assert.Equal(t, g.DependencyCount(), g2.DependencyCount())
	assert.Equal(t, g.Metadata()["dialect"], g2.Metadata()["dialect"])

	a, ok := g2.FindOperation("a")
	require.True(t, ok)
	assert.Equal(t, "nginx", a.ParamString("package"))
	assert.Equal(t, "ubuntu", a.TargetString("os"))

	deps := g2.DependenciesFor("b")
	require.Len(t, deps, 1)
	assert.Equal(t, graphir.DepRequires, deps[0].Type)
	assert.Equal(t, "requisite", deps[0].Metadata["source"])
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	g := buildSampleGraph()

	data, err := Marshal(g)
	require.NoError(t, err)

	g2, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, g.OperationCount(), g2.OperationCount())

	data2, err := Marshal(g2)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(data2))
}

func TestDecodeEmptyEnvelope(t *testing.T) {
	g, err := Unmarshal([]byte(`{"vertices":[],"edges":[],"metadata":{}}`))
	require.NoError(t, err)
	assert.True(t, g.IsEmpty())
}

func TestDecodeMalformedEnvelope(t *testing.T) {
	_, err := Unmarshal([]byte(`not json`))
	require.Error(t, err)
}
