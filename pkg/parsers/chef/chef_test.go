package chef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
)

const recipe = `
package 'nginx' do
  action :install
end

service 'nginx' do
  action [:enable, :start]
end
`

func TestSequentialFallbackOrdering(t *testing.T) {
	g, err := Parse([]byte(recipe), Options{})
	require.NoError(t, err)
	require.Equal(t, 2, g.OperationCount())

	install := g.OperationsByType(graphir.OpPackageInstall)
	require.Len(t, install, 1)
	start := g.OperationsByType(graphir.OpServiceStart)
	require.Len(t, start, 1)

	deps := g.DependenciesFor(start[0].ID)
	require.Len(t, deps, 1)
	assert.Equal(t, graphir.DepSequential, deps[0].Type)
	assert.Equal(t, install[0].ID, deps[0].From)
}

const recipeWithNotify = `
template '/etc/nginx/nginx.conf' do
  source 'nginx.conf.erb'
  notifies :restart, 'service[nginx]'
end

service 'nginx' do
  action [:enable, :start]
end
`

func TestNotifiesProducesNotifiesEdge(t *testing.T) {
	g, err := Parse([]byte(recipeWithNotify), Options{CookbookName: "web", CookbookVersion: "1.0.0"})
	require.NoError(t, err)

	svc := g.OperationsByType(graphir.OpServiceStart)
	require.Len(t, svc, 1)

	deps := g.DependenciesFor(svc[0].ID)
	var kinds []graphir.DependencyType
	for _, d := range deps {
		kinds = append(kinds, d.Type)
	}
	assert.Contains(t, kinds, graphir.DepNotifies)

	assert.Equal(t, "web", g.Metadata()["cookbook_name"])
	assert.Equal(t, "1.0.0", g.Metadata()["cookbook_version"])
}

func TestValidateRejectsContentWithoutResourceBlocks(t *testing.T) {
	assert.Error(t, Validate([]byte("# just a comment\n")))
}
