// Package ansible lowers a graphir.Graph into an Ansible playbook.
package ansible

import (
	"fmt"
	"strings"

	"github.com/hyperpolymath/har/pkg/graphir"
)

// Options configures the emitted play.
type Options struct {
	Hosts  string
	Become bool
}

// osToModule is the fixed package-manager lookup keyed by op.target.os.
var osToModule = map[string]string{
	"debian":  "apt",
	"ubuntu":  "apt",
	"redhat":  "yum",
	"centos":  "yum",
	"oracle":  "yum",
	"fedora":  "dnf",
	"rocky":   "dnf",
	"alma":    "dnf",
	"suse":    "zypper",
	"alpine":  "apk",
	"arch":    "pacman",
	"manjaro": "pacman",
	"darwin":  "homebrew",
	"windows": "win_chocolatey",
}

// Transform lowers g into a single-play YAML playbook, in topological
// order. Ops with no Ansible equivalent degrade to a `debug` task rather
// than failing the transform.
func Transform(g *graphir.Graph, opts Options) ([]byte, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	hosts := opts.Hosts
	if hosts == "" {
		hosts = "all"
	}

	var b strings.Builder
	b.WriteString("---\n- hosts: " + hosts + "\n")
	if opts.Become {
		b.WriteString("  become: true\n")
	}
	b.WriteString("  tasks:\n")
	for _, op := range order {
		b.WriteString(lowerTask(op))
	}
	return []byte(b.String()), nil
}

func lowerTask(op *graphir.Operation) string {
	switch op.Type {
	case graphir.OpPackageInstall, graphir.OpPackageUpgrade, graphir.OpPackageRemove:
		module := osToModule[strings.ToLower(op.TargetString("os"))]
		if module == "" {
			module = "package"
		}
		state := "present"
		if op.Type == graphir.OpPackageUpgrade {
			state = "latest"
		} else if op.Type == graphir.OpPackageRemove {
			state = "absent"
		}
		return task(op, fmt.Sprintf("%s: { name: %s, state: %s }", module, op.ParamString("package"), state))
	case graphir.OpServiceStart, graphir.OpServiceStop, graphir.OpServiceRestart:
		state := map[graphir.OperationType]string{
			graphir.OpServiceStart:   "started",
			graphir.OpServiceStop:    "stopped",
			graphir.OpServiceRestart: "restarted",
		}[op.Type]
		return task(op, fmt.Sprintf("service: { name: %s, state: %s }", op.ParamString("service"), state))
	case graphir.OpFileWrite:
		return task(op, fmt.Sprintf("copy: { dest: %s, content: %q }", op.ParamString("path"), op.ParamString("content")))
	case graphir.OpDirectory:
		return task(op, fmt.Sprintf("file: { path: %s, state: directory }", op.ParamString("path")))
	case graphir.OpFileDelete:
		return task(op, fmt.Sprintf("file: { path: %s, state: absent }", op.ParamString("path")))
	case graphir.OpUserCreate:
		return task(op, fmt.Sprintf("user: { name: %s, state: present }", op.ParamString("username")))
	case graphir.OpUserRemove:
		return task(op, fmt.Sprintf("user: { name: %s, state: absent }", op.ParamString("username")))
	case graphir.OpCommandRun:
		return task(op, fmt.Sprintf("command: %s", op.ParamString("command")))
	default:
		return task(op, fmt.Sprintf("debug: { msg: %q }", "no Ansible equivalent for "+string(op.Type)))
	}
}

func task(op *graphir.Operation, body string) string {
	return fmt.Sprintf("    - name: %s\n      %s\n", op.ID, body)
}
