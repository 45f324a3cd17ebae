package ansible

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
)

func buildInstallStartGraph() *graphir.Graph {
	install := graphir.NewOperation("install-nginx", graphir.OpPackageInstall)
	install.Params["package"] = "nginx"
	install.Target["os"] = "ubuntu"

	start := graphir.NewOperation("start-nginx", graphir.OpServiceStart)
	start.Params["service"] = "nginx"

	dep := graphir.NewDependency(install.ID, start.ID, graphir.DepSequential)
	return graphir.New([]*graphir.Operation{install, start}, []*graphir.Dependency{dep}, nil)
}

func TestTransformEmitsPackageThenServiceTasks(t *testing.T) {
	out, err := Transform(buildInstallStartGraph(), Options{Hosts: "web", Become: true})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "hosts: web")
	assert.Contains(t, text, "become: true")
	assert.True(t, strings.Index(text, "apt:") < strings.Index(text, "service:"))
}

func TestTransformFailsOnCircularGraph(t *testing.T) {
	a := graphir.NewOperation("a", graphir.OpCommandRun)
	b := graphir.NewOperation("b", graphir.OpCommandRun)
	deps := []*graphir.Dependency{
		graphir.NewDependency(a.ID, b.ID, graphir.DepSequential),
		graphir.NewDependency(b.ID, a.ID, graphir.DepSequential),
	}
	_, err := Transform(graphir.New([]*graphir.Operation{a, b}, deps, nil), Options{})
	assert.Error(t, err)
}

func TestTransformEmitsDebugTaskForUnsupportedOp(t *testing.T) {
	op := graphir.NewOperation("vm-1", graphir.OpComputeInstanceCreate)
	out, err := Transform(graphir.New([]*graphir.Operation{op}, nil, nil), Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "debug:")
}
