// Package chef lowers a graphir.Graph into a Chef recipe.
package chef

import (
	"fmt"
	"strings"

	"github.com/hyperpolymath/har/pkg/graphir"
)

// Options carries the cookbook header comment.
type Options struct {
	CookbookName    string
	CookbookVersion string
}

// Transform lowers g into Chef resource blocks, in topological order.
func Transform(g *graphir.Graph, opts Options) ([]byte, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if opts.CookbookName != "" {
		version := opts.CookbookVersion
		if version == "" {
			version = "0.0.0"
		}
		fmt.Fprintf(&b, "# Cookbook:: %s (%s)\n\n", opts.CookbookName, version)
	}

	for _, op := range order {
		b.WriteString(lowerResource(op))
	}
	return []byte(b.String()), nil
}

func lowerResource(op *graphir.Operation) string {
	switch op.Type {
	case graphir.OpPackageInstall, graphir.OpPackageUpgrade, graphir.OpPackageRemove:
		action := "install"
		if op.Type == graphir.OpPackageUpgrade {
			action = "upgrade"
		} else if op.Type == graphir.OpPackageRemove {
			action = "remove"
		}
		return block("package", op.ParamString("package"), "action :"+action)
	case graphir.OpServiceStart, graphir.OpServiceStop:
		if op.Type == graphir.OpServiceStop {
			return block("service", op.ParamString("service"), "action :stop")
		}
		return block("service", op.ParamString("service"), "action [:enable, :start]")
	case graphir.OpFileWrite:
		return block("file", op.ParamString("path"), fmt.Sprintf("content %q", op.ParamString("content")))
	case graphir.OpDirectory:
		return block("directory", op.ParamString("path"), "action :create")
	case graphir.OpUserCreate:
		return block("user", op.ParamString("username"), "action :create")
	case graphir.OpCommandRun:
		return block("execute", op.ParamString("command"), fmt.Sprintf("command %q", op.ParamString("command")))
	default:
		return fmt.Sprintf("# no Chef equivalent for %s (%s)\n\n", op.Type, op.ID)
	}
}

func block(typ, name, body string) string {
	return fmt.Sprintf("%s %q do\n  %s\nend\n\n", typ, name, body)
}
