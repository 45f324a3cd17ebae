package puppet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
)

const chainingManifest = `
package { 'nginx':
  ensure => present,
}
service { 'nginx':
  ensure => running,
}
Package['nginx'] -> Service['nginx']
`

func TestChainingArrowProducesRequiresEdge(t *testing.T) {
	g, err := Parse([]byte(chainingManifest))
	require.NoError(t, err)
	require.Equal(t, 2, g.OperationCount())

	svc := g.OperationsByType(graphir.OpServiceStart)
	require.Len(t, svc, 1)

	deps := g.DependenciesFor(svc[0].ID)
	require.Len(t, deps, 1)
	assert.Equal(t, graphir.DepRequires, deps[0].Type)
}

const metaparamManifest = `
package { 'nginx':
  ensure => present,
}
service { 'nginx':
  ensure  => running,
  require => Package['nginx'],
}
`

func TestRequireMetaparameterProducesRequiresEdge(t *testing.T) {
	g, err := Parse([]byte(metaparamManifest))
	require.NoError(t, err)

	pkg := g.OperationsByType(graphir.OpPackageInstall)
	require.Len(t, pkg, 1)
	svc := g.OperationsByType(graphir.OpServiceStart)
	require.Len(t, svc, 1)

	deps := g.DependenciesFor(svc[0].ID)
	require.Len(t, deps, 1)
	assert.Equal(t, pkg[0].ID, deps[0].From)
}

const classManifest = `
class webserver {
  package { 'nginx':
    ensure => present,
  }
  service { 'nginx':
    ensure => running,
  }
}
`

func TestClassOfOnlyFlattenableResourcesIsTaggedNotWrapped(t *testing.T) {
	g, err := Parse([]byte(classManifest))
	require.NoError(t, err)
	require.Equal(t, 2, g.OperationCount())

	for _, op := range g.Operations() {
		assert.Equal(t, "webserver", op.Metadata["puppet_class"])
	}
}

func TestValidateRejectsEmptyManifest(t *testing.T) {
	assert.Error(t, Validate([]byte("# just a comment\n")))
}
