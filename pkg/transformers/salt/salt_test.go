package salt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
)

func TestTransformEmitsPkgInstalledThenServiceRunning(t *testing.T) {
	install := graphir.NewOperation("install-nginx", graphir.OpPackageInstall)
	install.Params["package"] = "nginx"
	start := graphir.NewOperation("start-nginx", graphir.OpServiceStart)
	start.Params["service"] = "nginx"
	dep := graphir.NewDependency(install.ID, start.ID, graphir.DepSequential)

	out, err := Transform(graphir.New([]*graphir.Operation{install, start}, []*graphir.Dependency{dep}, nil))
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.Index(text, "pkg.installed") < strings.Index(text, "service.running"))
}
