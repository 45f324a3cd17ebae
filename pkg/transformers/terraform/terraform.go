// Package terraform lowers a graphir.Graph into Terraform JSON
// (canonical) or a pretty-printed HCL rendering thereof.
package terraform

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
	"github.com/hyperpolymath/har/pkg/harlog"
)

// Options configures the emitted configuration.
type Options struct {
	Provider string // aws | gcp | azure, default aws
	Region   string
	Format   string // json | hcl, default json
}

type instanceTypeSet struct {
	compute string
	bucket  string
	fw      string
	network string
	lb      string
	dns     string
}

var providerTypes = map[string]instanceTypeSet{
	"aws": {
		compute: "aws_instance", bucket: "aws_s3_bucket", fw: "aws_security_group",
		network: "aws_vpc", lb: "aws_lb", dns: "aws_route53_record",
	},
	"gcp": {
		compute: "google_compute_instance", bucket: "google_storage_bucket", fw: "google_compute_firewall",
		network: "google_compute_network", lb: "google_compute_forwarding_rule", dns: "google_dns_record_set",
	},
	"azure": {
		compute: "azurerm_linux_virtual_machine", bucket: "", fw: "", network: "", lb: "", dns: "",
	},
}

var defaultRegion = map[string]string{"aws": "us-east-1", "gcp": "us-central1", "azure": ""}

// Transform lowers g into a Terraform JSON document (or HCL rendering),
// in topological order. Ops with no Terraform peer are skipped with a
// logged notice.
func Transform(g *graphir.Graph, opts Options) ([]byte, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	provider := opts.Provider
	if provider == "" {
		provider = "aws"
	}
	region := opts.Region
	if region == "" {
		region = defaultRegion[provider]
	}
	types := providerTypes[provider]

	resources := map[string]map[string]interface{}{}
	for _, op := range order {
		typeName, attrs, ok := lowerResource(op, types)
		if !ok {
			harlog.WithComponent("transformer.terraform").Warn().
				Str("operation_id", op.ID).Str("operation_type", string(op.Type)).
				Msg("no Terraform equivalent, operation skipped")
			continue
		}
		if resources[typeName] == nil {
			resources[typeName] = map[string]interface{}{}
		}
		resources[typeName][resourceName(op)] = attrs
	}

	doc := map[string]interface{}{
		"terraform": map[string]interface{}{
			"required_providers": map[string]interface{}{
				provider: map[string]interface{}{"source": providerSource(provider)},
			},
		},
		"provider": map[string]interface{}{
			provider: map[string]interface{}{"region": region},
		},
		"resource": resources,
	}
	if v, ok := g.Metadata()["terraform_variables"]; ok {
		doc["variable"] = v
	}
	if v, ok := g.Metadata()["terraform_outputs"]; ok {
		doc["output"] = v
	}
	if v, ok := g.Metadata()["terraform_locals"]; ok {
		doc["locals"] = v
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, harerr.Wrap(harerr.TransformFailed, "encoding Terraform JSON", err)
	}

	if strings.ToLower(opts.Format) == "hcl" {
		return renderHCL(doc), nil
	}
	return body, nil
}

func lowerResource(op *graphir.Operation, types instanceTypeSet) (string, map[string]interface{}, bool) {
	attrs := map[string]interface{}{}
	for k, v := range op.Params {
		attrs[k] = v
	}

	switch op.Type {
	case graphir.OpComputeInstanceCreate:
		if types.compute == "" {
			return "", nil, false
		}
		return types.compute, attrs, true
	case graphir.OpStorageBucketCreate:
		if types.bucket == "" {
			return "", nil, false
		}
		return types.bucket, attrs, true
	case graphir.OpFirewallRule:
		if types.fw == "" {
			return "", nil, false
		}
		return types.fw, attrs, true
	case graphir.OpNetworkCreate:
		if types.network == "" {
			return "", nil, false
		}
		return types.network, attrs, true
	case graphir.OpLoadBalancerCreate:
		if types.lb == "" {
			return "", nil, false
		}
		return types.lb, attrs, true
	case graphir.OpDNSRecordCreate:
		if types.dns == "" {
			return "", nil, false
		}
		return types.dns, attrs, true
	case graphir.OpUserCreate:
		return "aws_iam_user", attrs, true
	case graphir.OpCommandRun:
		attrs["provisioner_command"] = op.ParamString("command")
		return "null_resource", attrs, true
	default:
		return "", nil, false
	}
}

func providerSource(provider string) string {
	switch provider {
	case "gcp":
		return "hashicorp/google"
	case "azure":
		return "hashicorp/azurerm"
	default:
		return "hashicorp/aws"
	}
}

// resourceName picks the emitted resource's local name. Graphs parsed
// from Terraform itself carry the original "resource_name" metadata the
// parser populated from the HCL block's name label; preferring it over
// op.ID keeps round-tripped resources addressable under the same name,
// so another resource's unchanged "${aws_vpc.main.id}"-style
// interpolation still resolves after a parse-then-transform cycle. Ops
// that originated from a different dialect carry no such metadata and
// fall back to the operation id.
func resourceName(op *graphir.Operation) string {
	if v, ok := op.Metadata["resource_name"]; ok {
		if name, ok := v.(string); ok && name != "" {
			return sanitize(name)
		}
	}
	return sanitize(op.ID)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return '_'
		}
		return r
	}, s)
}

// renderHCL pretty-prints the document's resource blocks as hand-formatted
// HCL, sufficient for human review rather than a byte-identical
// reproduction of terraform fmt's output. Only the "resource" section is
// rendered: the terraform, provider, variable, output and locals sections
// are not, and every attribute value is written as a quoted string of its
// Go formatting, so numbers, booleans, maps and lists lose their HCL types.
func renderHCL(doc map[string]interface{}) []byte {
	var b strings.Builder

	if resources, ok := doc["resource"].(map[string]interface{}); ok {
		keys := sortedKeys(resources)
		for _, typeName := range keys {
			names, ok := resources[typeName].(map[string]interface{})
			if !ok {
				continue
			}
			nameKeys := sortedKeys(names)
			for _, name := range nameKeys {
				attrs, _ := names[name].(map[string]interface{})
				fmt.Fprintf(&b, "resource %q %q {\n", typeName, name)
				for _, k := range sortedKeys(attrs) {
					fmt.Fprintf(&b, "  %s = %q\n", k, fmt.Sprint(attrs[k]))
				}
				b.WriteString("}\n\n")
			}
		}
	}
	return []byte(b.String())
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
