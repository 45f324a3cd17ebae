// Package puppet lowers a graphir.Graph into a Puppet manifest.
// Emission is line-oriented, same as the regex-based parser.
package puppet

import (
	"fmt"
	"strings"

	"github.com/hyperpolymath/har/pkg/graphir"
)

// Options configures the emitted manifest.
type Options struct {
	ClassName string // optional enclosing class wrapper
}

// Transform lowers g into Puppet resource declarations, in topological
// order, optionally wrapped in a named class.
func Transform(g *graphir.Graph, opts Options) ([]byte, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	var body strings.Builder
	for _, op := range order {
		body.WriteString(lowerResource(op))
	}

	if opts.ClassName == "" {
		return []byte(body.String()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "class %s {\n", opts.ClassName)
	for _, line := range strings.Split(strings.TrimRight(body.String(), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func lowerResource(op *graphir.Operation) string {
	switch op.Type {
	case graphir.OpPackageInstall, graphir.OpPackageUpgrade, graphir.OpPackageRemove:
		ensure := "present"
		if op.Type == graphir.OpPackageUpgrade {
			ensure = "latest"
		} else if op.Type == graphir.OpPackageRemove {
			ensure = "absent"
		}
		return decl("package", op.ParamString("package"), "ensure => "+ensure)
	case graphir.OpServiceStart, graphir.OpServiceStop:
		ensure := "running"
		if op.Type == graphir.OpServiceStop {
			ensure = "stopped"
		}
		return decl("service", op.ParamString("service"), fmt.Sprintf("ensure => %s,\n    enable  => true", ensure))
	case graphir.OpFileWrite:
		return decl("file", op.ParamString("path"), "ensure  => file")
	case graphir.OpDirectory:
		return decl("file", op.ParamString("path"), "ensure  => directory")
	case graphir.OpUserCreate:
		return decl("user", op.ParamString("username"), "ensure => present")
	case graphir.OpCommandRun:
		return decl("exec", op.ID, fmt.Sprintf("command => %q", op.ParamString("command")))
	default:
		return fmt.Sprintf("# no Puppet equivalent for %s (%s)\n", op.Type, op.ID)
	}
}

func decl(typ, title, attrs string) string {
	return fmt.Sprintf("%s { %q:\n    %s,\n}\n", typ, title, attrs)
}
