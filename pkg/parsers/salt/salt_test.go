package salt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
)

const slsWithRequire = `
nginx:
  pkg.installed: []
  service.running:
    - require:
      - pkg: nginx
`

func TestRequireProducesRequiresEdge(t *testing.T) {
	g, err := Parse([]byte(slsWithRequire))
	require.NoError(t, err)
	require.Equal(t, 2, g.OperationCount())

	svc := g.OperationsByType(graphir.OpServiceStart)
	require.Len(t, svc, 1)

	deps := g.DependenciesFor(svc[0].ID)
	require.Len(t, deps, 1)
	assert.Equal(t, graphir.DepRequires, deps[0].Type)
}

func TestValidateRejectsNonMapping(t *testing.T) {
	assert.Error(t, Validate([]byte("- just\n- a\n- list")))
}
