// Package ansible lifts Ansible playbook YAML into the Semantic Graph IR.
package ansible

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
)

type play struct {
	Hosts     string                 `yaml:"hosts"`
	Become    bool                   `yaml:"become"`
	Vars      map[string]interface{} `yaml:"vars"`
	VarsFiles []string               `yaml:"vars_files"`
	Tasks     []map[string]interface{} `yaml:"tasks"`
	Handlers  []map[string]interface{} `yaml:"handlers"`
}

// moduleToType maps an Ansible module name to its IR OperationType for
// modules whose IR type does not depend on a state value.
var moduleToType = map[string]graphir.OperationType{
	"user":      graphir.OpUserCreate,
	"group":     graphir.OpGroupCreate,
	"command":   graphir.OpCommandRun,
	"shell":     graphir.OpCommandRun,
	"cron":      graphir.OpCronCreate,
	"mount":     graphir.OpMountPoint,
	"git":       graphir.OpGitCheckout,
	"unarchive": graphir.OpArchiveExtract,
	"copy":      graphir.OpFileWrite,
	"template":  graphir.OpFileWrite,
	"file":      graphir.OpFileWrite, // refined to directory/delete below by state
}

var packageModules = map[string]bool{
	"apt": true, "yum": true, "dnf": true, "zypper": true, "apk": true,
	"pacman": true, "homebrew": true, "win_chocolatey": true, "package": true,
}

// Parse lifts Ansible playbook YAML (a list of plays) into a Graph.
func Parse(content []byte) (*graphir.Graph, error) {
	var plays []play
	if err := yaml.Unmarshal(content, &plays); err != nil {
		return nil, harerr.Wrap(harerr.AnsibleParseError, "decoding playbook YAML", err)
	}

	var ops []*graphir.Operation
	var deps []*graphir.Dependency
	handlerIDByName := map[string]string{}
	seq := 0

	for playIdx, p := range plays {
		playVars := map[string]interface{}{
			"vars":       p.Vars,
			"vars_files": p.VarsFiles,
		}

		// First pass over handlers: parse them as ordinary operations so
		// notify references in tasks can resolve to a handler id
		// regardless of declaration order.
		handlerOps := make([]*graphir.Operation, 0, len(p.Handlers))
		for _, h := range p.Handlers {
			op := taskToOperation(h, &seq, playVars, p)
			if name, ok := h["name"].(string); ok {
				handlerIDByName[name] = op.ID
			}
			handlerOps = append(handlerOps, op)
			ops = append(ops, op)
		}

		var prevID string
		for taskIdx, t := range p.Tasks {
			op := taskToOperation(t, &seq, playVars, p)
			ops = append(ops, op)

			if prevID != "" {
				deps = append(deps, graphir.NewDependency(prevID, op.ID, graphir.DepSequential))
			}
			prevID = op.ID

			for _, handlerName := range notifyTargets(t["notify"]) {
				if hid, ok := handlerIDByName[handlerName]; ok {
					deps = append(deps, graphir.NewDependency(op.ID, hid, graphir.DepNotifies))
				}
			}
			_ = taskIdx
		}
		_ = playIdx
	}

	return graphir.New(ops, deps, map[string]interface{}{"dialect": "ansible"}), nil
}

func notifyTargets(raw interface{}) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// moduleBody separates a task's bookkeeping keys (name, notify, when,
// tags, become) from its single module invocation key.
func moduleBody(t map[string]interface{}) (module string, body map[string]interface{}) {
	reserved := map[string]bool{"name": true, "notify": true, "when": true, "tags": true, "become": true}
	for k, v := range t {
		if reserved[k] {
			continue
		}
		if m, ok := v.(map[string]interface{}); ok {
			return k, m
		}
		// Some modules (e.g. "command: echo hi") take a bare string.
		if s, ok := v.(string); ok {
			return k, map[string]interface{}{"_free_form": s}
		}
	}
	return "", nil
}

func taskToOperation(t map[string]interface{}, seq *int, playVars map[string]interface{}, p play) *graphir.Operation {
	module, body := moduleBody(t)
	id := fmt.Sprintf("ansible-%d", *seq)
	*seq++

	typ := classify(module, body)
	op := graphir.NewOperation(id, typ)
	op.Metadata["dialect"] = "ansible"
	op.Metadata["module"] = module
	op.Metadata["raw"] = t
	if name, ok := t["name"].(string); ok {
		op.Metadata["name"] = name
	}
	op.Params["_play_vars"] = playVars
	op.Target["hosts"] = p.Hosts
	if p.Become {
		op.Target["become"] = true
	}

	normalizeParams(op, module, body)
	return op
}

// classify picks the IR OperationType for a module invocation, using the
// state value to choose among install/upgrade/remove and
// start/stop/restart where the dialect conflates verb and state.
func classify(module string, body map[string]interface{}) graphir.OperationType {
	state, _ := body["state"].(string)

	if packageModules[module] {
		switch state {
		case "absent", "removed":
			return graphir.OpPackageRemove
		case "latest":
			return graphir.OpPackageUpgrade
		default:
			return graphir.OpPackageInstall
		}
	}
	if module == "service" || module == "systemd" {
		switch state {
		case "stopped":
			return graphir.OpServiceStop
		case "restarted", "reloaded":
			return graphir.OpServiceRestart
		default:
			if enabled, ok := body["enabled"].(bool); ok && enabled && state == "" {
				return graphir.OpServiceEnable
			}
			return graphir.OpServiceStart
		}
	}
	if module == "file" {
		switch state {
		case "directory":
			return graphir.OpDirectory
		case "absent":
			return graphir.OpFileDelete
		}
		return graphir.OpFileWrite
	}
	if module == "user" {
		if state == "absent" {
			return graphir.OpUserRemove
		}
		return graphir.OpUserCreate
	}
	if t, ok := moduleToType[module]; ok {
		return t
	}
	return graphir.Passthrough(module)
}

// normalizeParams copies the module body into op.Params under HAR's
// normalized parameter vocabulary.
func normalizeParams(op *graphir.Operation, module string, body map[string]interface{}) {
	for k, v := range body {
		switch {
		case packageModules[module] && k == "name":
			op.Params["package"] = v
		case (module == "service" || module == "systemd") && k == "name":
			op.Params["service"] = v
		case module == "user" && k == "name":
			op.Params["username"] = v
		case (module == "copy" || module == "template") && k == "dest":
			op.Params["path"] = v
		case module == "file" && k == "path":
			op.Params["path"] = v
		case module == "cron" && k == "job":
			op.Params["command"] = v
		case k == "_free_form":
			op.Params["command"] = v
		default:
			op.Params[k] = v
		}
	}
}

// Validate performs a cheap structural check only: the content must at
// least decode as a YAML sequence of play mappings.
func Validate(content []byte) error {
	var plays []map[string]interface{}
	if err := yaml.Unmarshal(content, &plays); err != nil {
		return harerr.Wrap(harerr.AnsibleParseError, "not a valid playbook document", err)
	}
	return nil
}
