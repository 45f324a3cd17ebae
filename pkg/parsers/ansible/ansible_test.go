package ansible

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/har/pkg/graphir"
)

const scenarioA = `
- hosts: web
  tasks:
    - name: Install nginx
      apt: { name: nginx, state: present }
    - name: Start nginx
      service: { name: nginx, state: started }
`

func TestParsePackageAndServiceSequential(t *testing.T) {
	g, err := Parse([]byte(scenarioA))
	require.NoError(t, err)
	require.Equal(t, 2, g.OperationCount())

	install := g.OperationsByType(graphir.OpPackageInstall)
	require.Len(t, install, 1)
	assert.Equal(t, "nginx", install[0].ParamString("package"))

	start := g.OperationsByType(graphir.OpServiceStart)
	require.Len(t, start, 1)
	assert.Equal(t, "nginx", start[0].ParamString("service"))

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, install[0].ID, order[0].ID)
	assert.Equal(t, start[0].ID, order[1].ID)
}

const notifyPlaybook = `
- hosts: web
  tasks:
    - name: Update config
      copy: { dest: /etc/nginx/nginx.conf, content: "x" }
      notify: Restart nginx
  handlers:
    - name: Restart nginx
      service: { name: nginx, state: restarted }
`

func TestNotifyProducesNotifiesEdgeToHandler(t *testing.T) {
	g, err := Parse([]byte(notifyPlaybook))
	require.NoError(t, err)

	write := g.OperationsByType(graphir.OpFileWrite)
	require.Len(t, write, 1)
	restart := g.OperationsByType(graphir.OpServiceRestart)
	require.Len(t, restart, 1)

	deps := g.DependenciesFor(restart[0].ID)
	require.Len(t, deps, 1)
	assert.Equal(t, graphir.DepNotifies, deps[0].Type)
	assert.Equal(t, write[0].ID, deps[0].From)
}

func TestValidateRejectsMalformedYAML(t *testing.T) {
	err := Validate([]byte("not: [valid"))
	assert.Error(t, err)
}
