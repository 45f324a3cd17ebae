// Package salt lowers a graphir.Graph into Salt SLS YAML.
package salt

import (
	"fmt"
	"strings"

	"github.com/hyperpolymath/har/pkg/graphir"
)

// Transform lowers g into state-id -> module.function declarations, in
// topological order.
func Transform(g *graphir.Graph) ([]byte, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, op := range order {
		b.WriteString(lowerState(op))
	}
	return []byte(b.String()), nil
}

func lowerState(op *graphir.Operation) string {
	switch op.Type {
	case graphir.OpPackageInstall, graphir.OpPackageUpgrade, graphir.OpPackageRemove:
		fn := "pkg.installed"
		if op.Type == graphir.OpPackageRemove {
			fn = "pkg.removed"
		}
		return state(op.ParamString("package"), fn, "name: "+op.ParamString("package"))
	case graphir.OpServiceStart, graphir.OpServiceStop:
		fn := "service.running"
		if op.Type == graphir.OpServiceStop {
			fn = "service.dead"
		}
		return state(op.ParamString("service"), fn, "name: "+op.ParamString("service"))
	case graphir.OpFileWrite:
		return state(op.ParamString("path"), "file.managed", fmt.Sprintf("name: %s\n    - contents: %q", op.ParamString("path"), op.ParamString("content")))
	case graphir.OpDirectory:
		return state(op.ParamString("path"), "file.directory", "name: "+op.ParamString("path"))
	case graphir.OpUserCreate:
		return state(op.ParamString("username"), "user.present", "name: "+op.ParamString("username"))
	case graphir.OpCommandRun:
		return state(op.ID, "cmd.run", "name: "+op.ParamString("command"))
	default:
		return state(op.ID, "test.show_notification", fmt.Sprintf("text: %q", "no Salt equivalent for "+string(op.Type)))
	}
}

func state(id, fn, attrs string) string {
	return fmt.Sprintf("%s:\n  %s:\n    - %s\n", id, fn, attrs)
}
