// Package salt lifts Salt SLS YAML (state-id -> module.function mapping)
// into the Semantic Graph IR.
package salt

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
)

// stateDecl is one state-id's parsed function invocation.
type stateDecl struct {
	stateID    string
	module     string
	function   string
	params     map[string]interface{}
	requisites map[string][]requisiteRef // key: "require" | "watch" | "prereq"
}

type requisiteRef struct {
	module string
	name   string
}

// Parse lifts Salt SLS YAML into a Graph, preserving top-level state-id
// declaration order (read via yaml.Node, since Go maps do not).
func Parse(content []byte) (*graphir.Graph, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, harerr.Wrap(harerr.SaltParseError, "decoding SLS YAML", err)
	}
	if len(doc.Content) == 0 {
		return graphir.New(nil, nil, map[string]interface{}{"dialect": "salt"}), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, harerr.New(harerr.SaltParseError, "top-level document is not a mapping")
	}

	decls, err := decodeStates(root)
	if err != nil {
		return nil, err
	}

	// principalIndex[module+"\x00"+name] -> op ids seen so far, in order.
	principalIndex := map[string][]string{}
	ops := make([]*graphir.Operation, 0, len(decls))
	idOf := map[string]string{} // stateID -> op id

	for i, d := range decls {
		id := fmt.Sprintf("salt-%d", i)
		idOf[d.stateID] = id

		typ := classify(d.module, d.function)
		op := graphir.NewOperation(id, typ)
		op.Metadata["dialect"] = "salt"
		op.Metadata["state_id"] = d.stateID
		op.Metadata["module"] = d.module
		for k, v := range d.params {
			op.Params[normalizeParamKey(d.module, k)] = v
		}
		if v, ok := templatedValue(d.params); ok {
			op.Metadata["templated"] = v
		}
		ops = append(ops, op)

		principal := principalName(d)
		key := d.module + "\x00" + principal
		principalIndex[key] = append(principalIndex[key], id)
	}

	var deps []*graphir.Dependency
	for i, d := range decls {
		fromID := idOf[d.stateID]
		for kind, refs := range d.requisites {
			depType := graphir.DepRequires
			if kind == "watch" {
				depType = graphir.DepWatches
			}
			for _, ref := range refs {
				key := ref.module + "\x00" + ref.name
				candidates := principalIndex[key]
				if len(candidates) == 0 {
					continue
				}
				dep := graphir.NewDependency(candidates[0], fromID, depType)
				dep.Metadata["requisite"] = kind
				if len(candidates) > 1 {
					dep.Metadata["requisite_ambiguous"] = true
				}
				deps = append(deps, dep)
			}
		}
		_ = i
	}

	return graphir.New(ops, deps, map[string]interface{}{"dialect": "salt"}), nil
}

func templatedValue(params map[string]interface{}) (bool, bool) {
	for _, v := range params {
		if s, ok := v.(string); ok && (strings.Contains(s, "pillar.get") || strings.Contains(s, "grains.get")) {
			return true, true
		}
	}
	return false, false
}

func principalName(d stateDecl) string {
	if name, ok := d.params["name"].(string); ok {
		return name
	}
	return d.stateID
}

func decodeStates(root *yaml.Node) ([]stateDecl, error) {
	var decls []stateDecl
	for i := 0; i+1 < len(root.Content); i += 2 {
		stateID := root.Content[i].Value
		funcMap := root.Content[i+1]
		if funcMap.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(funcMap.Content); j += 2 {
			funcKey := funcMap.Content[j].Value
			if !strings.Contains(funcKey, ".") {
				continue // "include"/"extend" and other non-state directives
			}
			module, function, _ := strings.Cut(funcKey, ".")

			d := stateDecl{
				stateID:    stateID,
				module:     module,
				function:   function,
				params:     map[string]interface{}{},
				requisites: map[string][]requisiteRef{},
			}

			seq := funcMap.Content[j+1]
			if seq.Kind == yaml.SequenceNode {
				for _, entry := range seq.Content {
					if entry.Kind != yaml.MappingNode {
						continue
					}
					var entryMap map[string]interface{}
					if err := entry.Decode(&entryMap); err != nil {
						return nil, harerr.Wrap(harerr.SaltParseError, "decoding state entry for "+stateID, err)
					}
					for k, v := range entryMap {
						if k == "require" || k == "watch" || k == "prereq" {
							d.requisites[k] = append(d.requisites[k], parseRequisites(v)...)
							continue
						}
						d.params[k] = v
					}
				}
			}
			decls = append(decls, d)
		}
	}
	return decls, nil
}

func parseRequisites(v interface{}) []requisiteRef {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []requisiteRef
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		for module, name := range m {
			if s, ok := name.(string); ok {
				out = append(out, requisiteRef{module: module, name: s})
			}
		}
	}
	return out
}

func classify(module, function string) graphir.OperationType {
	switch module {
	case "pkg":
		switch function {
		case "removed", "purged":
			return graphir.OpPackageRemove
		case "latest":
			return graphir.OpPackageUpgrade
		default:
			return graphir.OpPackageInstall
		}
	case "service":
		switch function {
		case "dead":
			return graphir.OpServiceStop
		default:
			return graphir.OpServiceStart
		}
	case "file":
		switch function {
		case "directory":
			return graphir.OpDirectory
		case "absent":
			return graphir.OpFileDelete
		default:
			return graphir.OpFileWrite
		}
	case "user":
		if function == "absent" {
			return graphir.OpUserRemove
		}
		return graphir.OpUserCreate
	case "group":
		return graphir.OpGroupCreate
	case "cmd":
		return graphir.OpCommandRun
	case "cron":
		return graphir.OpCronCreate
	case "mount":
		return graphir.OpMountPoint
	case "archive":
		return graphir.OpArchiveExtract
	case "git":
		return graphir.OpGitCheckout
	default:
		return graphir.Passthrough(module + "." + function)
	}
}

func normalizeParamKey(module, key string) string {
	switch {
	case module == "pkg" && key == "name":
		return "package"
	case module == "service" && key == "name":
		return "service"
	case module == "user" && key == "name":
		return "username"
	case module == "cmd" && key == "name":
		return "command"
	default:
		return key
	}
}

// Validate performs a cheap structural check: the document must decode
// as a YAML mapping.
func Validate(content []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return harerr.Wrap(harerr.SaltParseError, "not valid YAML", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return harerr.New(harerr.SaltParseError, "top-level document is not a mapping")
	}
	return nil
}
