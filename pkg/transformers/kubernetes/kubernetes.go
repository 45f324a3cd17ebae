// Package kubernetes lowers a graphir.Graph into a multi-document
// Kubernetes YAML manifest.
package kubernetes

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
)

// Options configures the emitted manifest.
type Options struct {
	Namespace string
}

type meta struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace,omitempty"`
}

type document struct {
	APIVersion string      `yaml:"apiVersion"`
	Kind       string      `yaml:"kind"`
	Metadata   meta        `yaml:"metadata"`
	Spec       interface{} `yaml:"spec,omitempty"`
	Data       interface{} `yaml:"data,omitempty"`
}

// Transform lowers g into documents in topological order. If the graph
// contains a firewall_rule targeted at a Kubernetes namespace, a
// NetworkPolicy is emitted; dependency edges otherwise only affect
// emission order via the topological sort.
func Transform(g *graphir.Graph, opts Options) ([]byte, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	var docs []document
	for _, op := range order {
		doc, ok := lower(op, opts)
		if !ok {
			continue
		}
		docs = append(docs, doc...)
	}

	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("---\n")
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, harerr.Wrap(harerr.TransformFailed, "encoding manifest for "+doc.Metadata.Name, err)
		}
		b.Write(out)
	}
	return []byte(b.String()), nil
}

func lower(op *graphir.Operation, opts Options) ([]document, bool) {
	ns := opts.Namespace
	if t := op.TargetString("namespace"); t != "" {
		ns = t
	}

	switch op.Type {
	case graphir.OpContainerDeploymentCreate:
		docs := []document{{
			APIVersion: "apps/v1",
			Kind:       "Deployment",
			Metadata:   meta{Name: op.ID, Namespace: ns},
			Spec:       op.Params,
		}}
		if v, ok := op.Metadata["companion_service"]; ok && v == true {
			docs = append(docs, document{
				APIVersion: "v1",
				Kind:       "Service",
				Metadata:   meta{Name: op.ID + "-svc", Namespace: ns},
				Spec:       map[string]interface{}{"selector": map[string]interface{}{"app": op.ID}},
			})
		}
		return docs, true
	case graphir.OpFileWrite, graphir.OpDirectory:
		data := map[string]interface{}{}
		if c := op.ParamString("content"); c != "" {
			data["content"] = c
		}
		return []document{{
			APIVersion: "v1",
			Kind:       "ConfigMap",
			Metadata:   meta{Name: sanitize(op.ID), Namespace: ns},
			Data:       data,
		}}, true
	case graphir.OpUserCreate:
		return []document{{
			APIVersion: "v1",
			Kind:       "ServiceAccount",
			Metadata:   meta{Name: op.ParamString("username"), Namespace: ns},
		}}, true
	case graphir.OpFirewallRule:
		if ns == "" {
			return nil, false
		}
		return []document{{
			APIVersion: "networking.k8s.io/v1",
			Kind:       "NetworkPolicy",
			Metadata:   meta{Name: op.ID, Namespace: ns},
			Spec:       op.Params,
		}}, true
	default:
		return nil, false
	}
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '/' {
			return '-'
		}
		return r
	}, s)
}
