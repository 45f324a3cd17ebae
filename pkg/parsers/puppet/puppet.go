// Package puppet lifts a Puppet manifest into the Semantic Graph IR using
// a regular-expression scanner rather than a real tokenizer.
package puppet

import (
	"regexp"
	"strings"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
)

// resourceDecl is one `type { 'title': attr => value, ... }` block.
type resourceDecl struct {
	typ   string
	title string
	attrs map[string]string
	class string // enclosing class name, if any
}

var resourceBlockPattern = regexp.MustCompile(`(?s)([a-z][a-zA-Z0-9_:]*)\s*\{\s*'?([^:'\{\}]+?)'?\s*:(.*?)\n\s*\}`)
var attrPattern = regexp.MustCompile(`([a-zA-Z_]+)\s*=>\s*([^,\n]+),?`)
var classPattern = regexp.MustCompile(`(?s)class\s+([a-zA-Z0-9_:]+)\s*\{(.*)\}\s*$`)
var refPattern = regexp.MustCompile(`(?i)([a-zA-Z]+)\['([^']+)'\]`)
var requiresArrowPattern = regexp.MustCompile(`(?i)([a-zA-Z]+\['[^']+'\])\s*->\s*([a-zA-Z]+\['[^']+'\])`)
var watchesArrowPattern = regexp.MustCompile(`(?i)([a-zA-Z]+\['[^']+'\])\s*~>\s*([a-zA-Z]+\['[^']+'\])`)

var resourceIRTypes = map[string]bool{"package": true, "service": true, "file": true}

// Parse scans manifest text for resource declarations, metaparameter
// requisites (require/before/notify/subscribe) and chaining arrows
//, flattening any enclosing class whose body
// contains only package/service/file resources.
func Parse(content []byte) (*graphir.Graph, error) {
	text := string(content)

	className := ""
	body := text
	if m := classPattern.FindStringSubmatch(text); m != nil {
		className = m[1]
		body = m[2]
	}

	matches := resourceBlockPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, harerr.New(harerr.PuppetParseError, "no resource declarations found")
	}

	decls := make([]resourceDecl, 0, len(matches))
	for _, m := range matches {
		typ := strings.ToLower(strings.TrimSpace(m[1]))
		title := strings.TrimSpace(m[2])
		attrs := map[string]string{}
		for _, am := range attrPattern.FindAllStringSubmatch(m[3], -1) {
			key := strings.TrimSpace(am[1])
			val := strings.Trim(strings.TrimSpace(am[2]), "'\"")
			attrs[key] = val
		}
		decls = append(decls, resourceDecl{typ: typ, title: title, attrs: attrs, class: className})
	}

	flattenClass := className != "" && allFlattenable(decls)

	ops := make([]*graphir.Operation, 0, len(decls))
	idByRef := map[string]string{} // "type['title']" lowercased -> op id
	seenIDs := map[string]bool{}
	for _, d := range decls {
		id := graphir.Dedupe(d.typ+"-"+sanitize(d.title), seenIDs)
		op := graphir.NewOperation(id, classify(d.typ, d.attrs))
		op.Metadata["dialect"] = "puppet"
		op.Metadata["parser"] = "regex"
		op.Metadata["resource_type"] = d.typ
		op.Metadata["title"] = d.title
		if flattenClass {
			op.Metadata["puppet_class"] = className
		}
		for k, v := range d.attrs {
			op.Params[normalizeParamKey(d.typ, k)] = v
		}
		if op.ParamString(identityParam(d.typ)) == "" {
			op.Params[identityParam(d.typ)] = d.title
		}
		ops = append(ops, op)
		idByRef[refKeyRaw(d.typ, d.title)] = id
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

	for i, d := range decls {
		fromID := ops[i].ID
		if v, ok := d.attrs["require"]; ok {
			for _, ref := range refPattern.FindAllStringSubmatch(v, -1) {
				addDep(idByRef[refKeyRaw(ref[1], ref[2])], fromID, graphir.DepRequires)
			}
		}
		if v, ok := d.attrs["subscribe"]; ok {
			for _, ref := range refPattern.FindAllStringSubmatch(v, -1) {
				addDep(idByRef[refKeyRaw(ref[1], ref[2])], fromID, graphir.DepWatches)
			}
		}
		if v, ok := d.attrs["before"]; ok {
			for _, ref := range refPattern.FindAllStringSubmatch(v, -1) {
				addDep(fromID, idByRef[refKeyRaw(ref[1], ref[2])], graphir.DepRequires)
			}
		}
		if v, ok := d.attrs["notify"]; ok {
			for _, ref := range refPattern.FindAllStringSubmatch(v, -1) {
				addDep(fromID, idByRef[refKeyRaw(ref[1], ref[2])], graphir.DepWatches)
			}
		}
	}

	for _, m := range requiresArrowPattern.FindAllStringSubmatch(text, -1) {
		addDep(idOfRefLiteral(m[1], idByRef), idOfRefLiteral(m[2], idByRef), graphir.DepRequires)
	}
	for _, m := range watchesArrowPattern.FindAllStringSubmatch(text, -1) {
		addDep(idOfRefLiteral(m[1], idByRef), idOfRefLiteral(m[2], idByRef), graphir.DepWatches)
	}

	meta := map[string]interface{}{"dialect": "puppet", "parser": "regex"}
	if className != "" {
		meta["class_name"] = className
	}
	return graphir.New(ops, deps, meta), nil
}

func idOfRefLiteral(literal string, idByRef map[string]string) string {
	m := refPattern.FindStringSubmatch(literal)
	if m == nil {
		return ""
	}
	return idByRef[refKeyRaw(m[1], m[2])]
}

func allFlattenable(decls []resourceDecl) bool {
	for _, d := range decls {
		if !resourceIRTypes[d.typ] {
			return false
		}
	}
	return true
}

func refKeyRaw(typ, title string) string {
	return strings.ToLower(typ) + "['" + title + "']"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\'' {
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
	default:
		return "name"
	}
}

func classify(typ string, attrs map[string]string) graphir.OperationType {
	switch typ {
	case "package":
		if attrs["ensure"] == "absent" || attrs["ensure"] == "purged" {
			return graphir.OpPackageRemove
		}
		if attrs["ensure"] == "latest" {
			return graphir.OpPackageUpgrade
		}
		return graphir.OpPackageInstall
	case "service":
		if attrs["ensure"] == "stopped" {
			return graphir.OpServiceStop
		}
		return graphir.OpServiceStart
	case "file":
		if attrs["ensure"] == "absent" {
			return graphir.OpFileDelete
		}
		return graphir.OpFileWrite
	case "directory":
		return graphir.OpDirectory
	case "user":
		if attrs["ensure"] == "absent" {
			return graphir.OpUserRemove
		}
		return graphir.OpUserCreate
	case "group":
		return graphir.OpGroupCreate
	case "exec":
		return graphir.OpCommandRun
	case "cron":
		return graphir.OpCronCreate
	case "mount":
		return graphir.OpMountPoint
	default:
		return graphir.Passthrough(typ)
	}
}

func normalizeParamKey(typ, key string) string {
	switch {
	case typ == "exec" && key == "command":
		return "command"
	default:
		return key
	}
}

// Validate performs a cheap structural check: at least one resource
// declaration must be found.
func Validate(content []byte) error {
	if len(resourceBlockPattern.FindAllStringSubmatch(string(content), -1)) == 0 {
		return harerr.New(harerr.PuppetParseError, "no resource declarations found")
	}
	return nil
}
