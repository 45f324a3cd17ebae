// Package chef lifts a Chef recipe (Ruby DSL) into the Semantic Graph IR
// using a regular-expression scanner.
package chef

import (
	"regexp"
	"strings"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
)

// Options carries cookbook metadata attached to the resulting Graph's
// metadata, mirroring a Chef cookbook's metadata.rb name/version.
type Options struct {
	CookbookName    string
	CookbookVersion string
}

type resourceDecl struct {
	typ        string
	name       string
	actions    []string
	attrs      map[string]string
	notifies   []reference
	subscribes []reference
}

type reference struct {
	typ  string
	name string
}

var blockPattern = regexp.MustCompile(`(?s)([a-z_]+)\s+'([^']+)'\s+do(.*?)\nend`)
var actionLinePattern = regexp.MustCompile(`action\s+(\[[^\]]*\]|:[a-zA-Z_]+)`)
var attrLinePattern = regexp.MustCompile(`(?m)^\s*([a-zA-Z_]+)\s+'([^']*)'\s*$`)
var notifyLinePattern = regexp.MustCompile(`notifies\s+:[a-zA-Z_]+,\s*'([a-zA-Z_]+)\[([^\]]+)\]'`)
var subscribeLinePattern = regexp.MustCompile(`subscribes\s+:[a-zA-Z_]+,\s*'([a-zA-Z_]+)\[([^\]]+)\]'`)

// Parse scans recipe text for resource blocks, attaching sequential
// ordering between declarations without explicit wiring and notifies /
// subscribes edges where present.
func Parse(content []byte, opts Options) (*graphir.Graph, error) {
	text := string(content)
	matches := blockPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, harerr.New(harerr.ChefParseError, "no resource blocks found")
	}

	decls := make([]resourceDecl, 0, len(matches))
	for _, m := range matches {
		body := m[3]
		d := resourceDecl{typ: m[1], name: strings.Trim(m[2], "'"), attrs: map[string]string{}}
		for _, am := range actionLinePattern.FindAllStringSubmatch(body, -1) {
			d.actions = append(d.actions, parseActions(am[1])...)
		}
		for _, am := range attrLinePattern.FindAllStringSubmatch(body, -1) {
			if am[1] == "action" {
				continue
			}
			d.attrs[am[1]] = am[2]
		}
		for _, nm := range notifyLinePattern.FindAllStringSubmatch(body, -1) {
			d.notifies = append(d.notifies, reference{typ: nm[1], name: strings.Trim(nm[2], "'\"")})
		}
		for _, sm := range subscribeLinePattern.FindAllStringSubmatch(body, -1) {
			d.subscribes = append(d.subscribes, reference{typ: sm[1], name: strings.Trim(sm[2], "'\"")})
		}
		decls = append(decls, d)
	}

	ops := make([]*graphir.Operation, 0, len(decls))
	idByRef := map[string]string{}
	seenIDs := map[string]bool{}
	for _, d := range decls {
		id := graphir.Dedupe(d.typ+"-"+sanitize(d.name), seenIDs)
		op := graphir.NewOperation(id, classify(d.typ, d.actions))
		op.Metadata["dialect"] = "chef"
		op.Metadata["parser"] = "regex"
		op.Metadata["resource_type"] = d.typ
		op.Metadata["resource_name"] = d.name
		for k, v := range d.attrs {
			op.Params[k] = v
		}
		if op.ParamString(identityParam(d.typ)) == "" {
			op.Params[identityParam(d.typ)] = d.name
		}
		ops = append(ops, op)
		idByRef[d.typ+"\x00"+d.name] = id
	}

	var deps []*graphir.Dependency
	seen := map[string]bool{}
	addDep := func(from, to string, typ graphir.DependencyType) {
		if from == "" || to == "" || from == to {
			return
		}
		key := from + "\x00" + to + "\x00" + string(typ)
		if seen[key] {
			return
		}
		seen[key] = true
		deps = append(deps, graphir.NewDependency(from, to, typ))
	}

	wired := map[string]bool{}
	for i, d := range decls {
		for _, ref := range append(append([]reference(nil), d.notifies...), d.subscribes...) {
			wired[ops[i].ID] = true
			wired[idByRef[ref.typ+"\x00"+ref.name]] = true
		}
	}
	prevID := ""
	for _, op := range ops {
		if wired[op.ID] {
			continue
		}
		addDep(prevID, op.ID, graphir.DepSequential)
		prevID = op.ID
	}
	for i, d := range decls {
		fromID := ops[i].ID
		for _, ref := range d.notifies {
			addDep(fromID, idByRef[ref.typ+"\x00"+ref.name], graphir.DepNotifies)
		}
		for _, ref := range d.subscribes {
			addDep(idByRef[ref.typ+"\x00"+ref.name], fromID, graphir.DepWatches)
		}
	}

	meta := map[string]interface{}{"dialect": "chef", "parser": "regex"}
	if opts.CookbookName != "" {
		meta["cookbook_name"] = opts.CookbookName
	}
	if opts.CookbookVersion != "" {
		meta["cookbook_version"] = opts.CookbookVersion
	}
	return graphir.New(ops, deps, meta), nil
}

func parseActions(raw string) []string {
	raw = strings.Trim(raw, "[]")
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, ":")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' {
			return '_'
		}
		return r
	}, s)
}

func identityParam(typ string) string {
	switch typ {
	case "package":
		return "package"
	case "service":
		return "service"
	case "file", "directory":
		return "path"
	case "user":
		return "username"
	case "execute":
		return "command"
	default:
		return "name"
	}
}

func classify(typ string, actions []string) graphir.OperationType {
	has := func(a string) bool {
		for _, x := range actions {
			if x == a {
				return true
			}
		}
		return false
	}
	switch typ {
	case "package":
		if has("remove") || has("purge") {
			return graphir.OpPackageRemove
		}
		if has("upgrade") {
			return graphir.OpPackageUpgrade
		}
		return graphir.OpPackageInstall
	case "service":
		if has("stop") {
			return graphir.OpServiceStop
		}
		if has("restart") {
			return graphir.OpServiceRestart
		}
		return graphir.OpServiceStart
	case "file":
		if has("delete") {
			return graphir.OpFileDelete
		}
		return graphir.OpFileWrite
	case "directory":
		return graphir.OpDirectory
	case "user":
		if has("remove") {
			return graphir.OpUserRemove
		}
		return graphir.OpUserCreate
	case "group":
		return graphir.OpGroupCreate
	case "execute":
		return graphir.OpCommandRun
	case "cron":
		return graphir.OpCronCreate
	case "mount":
		return graphir.OpMountPoint
	case "git":
		return graphir.OpGitCheckout
	default:
		return graphir.Passthrough(typ)
	}
}

// Validate performs a cheap structural check: at least one resource
// block must be found.
func Validate(content []byte) error {
	if len(blockPattern.FindAllStringSubmatch(string(content), -1)) == 0 {
		return harerr.New(harerr.ChefParseError, "no resource blocks found")
	}
	return nil
}
