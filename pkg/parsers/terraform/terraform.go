// Package terraform lifts Terraform JSON (canonical) configuration into
// the Semantic Graph IR.
package terraform

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
)

type documentAttrs struct {
	DependsOn []string `mapstructure:"depends_on"`
}

// resourceTypeToIR maps the Terraform resource type prefix closest to
// each op family HAR's lowering table names; everything else
// degrades to a tool.<type> passthrough, since most AWS/GCP/Azure
// resource types have no IR peer.
var resourceTypeToIR = map[string]graphir.OperationType{
	"aws_instance":                  graphir.OpComputeInstanceCreate,
	"google_compute_instance":       graphir.OpComputeInstanceCreate,
	"azurerm_linux_virtual_machine": graphir.OpComputeInstanceCreate,
	"aws_s3_bucket":                 graphir.OpStorageBucketCreate,
	"google_storage_bucket":         graphir.OpStorageBucketCreate,
	"aws_security_group":            graphir.OpFirewallRule,
	"google_compute_firewall":       graphir.OpFirewallRule,
	"aws_vpc":                       graphir.OpNetworkCreate,
	"google_compute_network":        graphir.OpNetworkCreate,
	"aws_lb":                        graphir.OpLoadBalancerCreate,
	"google_compute_forwarding_rule": graphir.OpLoadBalancerCreate,
	"aws_route53_record":            graphir.OpDNSRecordCreate,
	"google_dns_record_set":         graphir.OpDNSRecordCreate,
	"aws_iam_user":                  graphir.OpUserCreate,
	"null_resource":                 graphir.OpCommandRun,
	"aws_db_instance":               graphir.OpDatabaseCreate,
	"google_sql_database_instance":  graphir.OpDatabaseCreate,
}

var refPattern = regexp.MustCompile(`\$?\{?([a-zA-Z_][a-zA-Z0-9_]*\.[a-zA-Z_][a-zA-Z0-9_]*)(\.[a-zA-Z0-9_]+)*\}?`)

// Parse lifts a canonical Terraform JSON document into a Graph.
func Parse(content []byte) (*graphir.Graph, error) {
	top, err := decodeOrderedObject(content)
	if err != nil {
		return nil, harerr.Wrap(harerr.TerraformParseError, "decoding Terraform JSON document", err)
	}

	var ops []*graphir.Operation
	idByAddress := map[string]string{} // "type.name" -> op id
	rawByID := map[string]map[string]interface{}{}
	seq := 0
	meta := map[string]interface{}{"dialect": "terraform"}

	for _, section := range top {
		switch section.Key {
		case "resource":
			resourceOps, err := parseResources(section.Value, &seq, idByAddress, rawByID)
			if err != nil {
				return nil, err
			}
			ops = append(ops, resourceOps...)
		case "variable":
			var v map[string]interface{}
			_ = json.Unmarshal(section.Value, &v)
			meta["terraform_variables"] = v
		case "output":
			var v map[string]interface{}
			_ = json.Unmarshal(section.Value, &v)
			meta["terraform_outputs"] = v
		case "locals":
			var v map[string]interface{}
			_ = json.Unmarshal(section.Value, &v)
			meta["terraform_locals"] = v
		}
	}

	deps := recoverDependencies(ops, idByAddress, rawByID)
	return graphir.New(ops, deps, meta), nil
}

func parseResources(data json.RawMessage, seq *int, idByAddress map[string]string, rawByID map[string]map[string]interface{}) ([]*graphir.Operation, error) {
	types, err := decodeOrderedObject(data)
	if err != nil {
		return nil, harerr.Wrap(harerr.TerraformParseError, "decoding resource block", err)
	}

	var ops []*graphir.Operation
	for _, typeEntry := range types {
		names, err := decodeOrderedObject(typeEntry.Value)
		if err != nil {
			return nil, harerr.Wrap(harerr.TerraformParseError, "decoding resource names for "+typeEntry.Key, err)
		}
		for _, nameEntry := range names {
			var attrs map[string]interface{}
			if err := json.Unmarshal(nameEntry.Value, &attrs); err != nil {
				return nil, harerr.Wrap(harerr.TerraformParseError, "decoding resource attributes", err)
			}

			id := typeEntry.Key + "-" + nameEntry.Key
			_ = seq
			address := typeEntry.Key + "." + nameEntry.Key

			typ, ok := resourceTypeToIR[typeEntry.Key]
			if !ok {
				typ = graphir.Passthrough(typeEntry.Key)
			}

			op := graphir.NewOperation(id, typ)
			op.Metadata["dialect"] = "terraform"
			op.Metadata["resource_type"] = typeEntry.Key
			op.Metadata["resource_name"] = nameEntry.Key
			op.Target["provider"] = providerOf(typeEntry.Key)

			var da documentAttrs
			_ = mapstructure.Decode(attrs, &da)
			delete(attrs, "depends_on")
			for k, v := range attrs {
				op.Params[k] = v
			}
			op.Metadata["depends_on"] = da.DependsOn

			idByAddress[address] = id
			rawByID[id] = attrs
			ops = append(ops, op)
		}
	}
	return ops, nil
}

func providerOf(resourceType string) string {
	switch {
	case strings.HasPrefix(resourceType, "aws_"):
		return "aws"
	case strings.HasPrefix(resourceType, "google_"):
		return "gcp"
	case strings.HasPrefix(resourceType, "azurerm_"):
		return "azure"
	default:
		return ""
	}
}

// recoverDependencies builds depends_on edges from explicit lists and
// requires edges from implicit ${type.name...} / bare type.name
// references found anywhere in a resource's JSON-encoded values,
// deduplicated by {from,to,type}.
func recoverDependencies(ops []*graphir.Operation, idByAddress map[string]string, rawByID map[string]map[string]interface{}) []*graphir.Dependency {
	seen := map[string]bool{}
	var deps []*graphir.Dependency

	addDep := func(from, to string, typ graphir.DependencyType) {
		if from == to {
			return
		}
		key := from + "\x00" + to + "\x00" + string(typ)
		if seen[key] {
			return
		}
		seen[key] = true
		deps = append(deps, graphir.NewDependency(from, to, typ))
	}

	for _, op := range ops {
		for _, addr := range toStringSlice(op.Metadata["depends_on"]) {
			if toID, ok := idByAddress[addr]; ok {
				addDep(toID, op.ID, graphir.DepDependsOn)
			}
		}

		raw, _ := json.Marshal(rawByID[op.ID])
		text := string(raw)
		for _, match := range refPattern.FindAllStringSubmatch(text, -1) {
			addr := match[1]
			if toID, ok := idByAddress[addr]; ok && toID != op.ID {
				addDep(toID, op.ID, graphir.DepRequires)
			}
		}
	}
	return deps
}

func toStringSlice(v interface{}) []string {
	s, _ := v.([]string)
	return s
}

// Validate performs a cheap structural check only: the content must
// decode as a JSON object.
func Validate(content []byte) error {
	var v map[string]interface{}
	if err := json.Unmarshal(content, &v); err != nil {
		return harerr.Wrap(harerr.TerraformParseError, "not a valid JSON document", err)
	}
	return nil
}
