// Package kubernetes lifts a multi-document Kubernetes YAML manifest into
// the Semantic Graph IR.
package kubernetes

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
)

type manifest struct {
	APIVersion string                 `yaml:"apiVersion"`
	Kind       string                 `yaml:"kind"`
	Metadata   metadataBlock          `yaml:"metadata"`
	Spec       map[string]interface{} `yaml:"spec"`
}

type metadataBlock struct {
	Name      string            `yaml:"name"`
	Namespace string            `yaml:"namespace"`
	Labels    map[string]string `yaml:"labels"`
}

var kindToIR = map[string]graphir.OperationType{
	"Deployment":            graphir.OpContainerDeploymentCreate,
	"Pod":                   graphir.OpContainerDeploymentCreate,
	"StatefulSet":           graphir.OpContainerDeploymentCreate,
	"DaemonSet":             graphir.OpContainerDeploymentCreate,
	"Service":               graphir.OpContainerServiceCreate,
	"ConfigMap":             graphir.OpConfigMapCreate,
	"Secret":                graphir.OpSecretCreate,
	"Namespace":             graphir.OpNamespaceCreate,
	"Ingress":               graphir.OpIngressRule,
	"HorizontalPodAutoscaler": graphir.OpAutoscalePolicy,
	"PersistentVolumeClaim": graphir.OpVolumeCreate,
}

// Parse splits a `---`-delimited multi-document manifest and recovers
// Service→Deployment (label selector), Pod/Deployment→ConfigMap/Secret
// (envFrom/volume refs), and namespaced-resource→Namespace dependencies.
func Parse(content []byte) (*graphir.Graph, error) {
	docs, err := splitDocuments(content)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, harerr.New(harerr.KubernetesParseError, "no documents found")
	}

	ops := make([]*graphir.Operation, 0, len(docs))
	idByKindName := map[string]string{}   // "Kind/name" -> op id
	namespaceIDByName := map[string]string{}
	selectorsByServiceID := map[string]map[string]string{}
	labelsByDeploymentID := map[string]map[string]string{}
	seenIDs := map[string]bool{}

	for _, m := range docs {
		id := graphir.Dedupe(fmt.Sprintf("%s-%s", strings.ToLower(m.Kind), m.Metadata.Name), seenIDs)
		typ, ok := kindToIR[m.Kind]
		if !ok {
			typ = graphir.Passthrough(strings.ToLower(m.Kind))
		}

		op := graphir.NewOperation(id, typ)
		op.Metadata["dialect"] = "kubernetes"
		op.Metadata["kind"] = m.Kind
		op.Metadata["name"] = m.Metadata.Name
		if m.Metadata.Namespace != "" {
			op.Target["namespace"] = m.Metadata.Namespace
		}
		op.Params["name"] = m.Metadata.Name
		for k, v := range m.Spec {
			op.Params[k] = v
		}

		ops = append(ops, op)
		idByKindName[m.Kind+"/"+m.Metadata.Name] = id

		if m.Kind == "Namespace" {
			namespaceIDByName[m.Metadata.Name] = id
		}
		if m.Kind == "Service" {
			selectorsByServiceID[id] = selectorFrom(m.Spec)
		}
		if m.Kind == "Deployment" || m.Kind == "StatefulSet" || m.Kind == "DaemonSet" {
			labelsByDeploymentID[id] = podTemplateLabels(m.Spec)
		}
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

	for i, m := range docs {
		toID := ops[i].ID
		if m.Metadata.Namespace != "" {
			if nsID, ok := namespaceIDByName[m.Metadata.Namespace]; ok {
				addDep(nsID, toID, graphir.DepRequires)
			}
		}
		for _, ref := range configMapSecretRefs(m.Spec) {
			if refID, ok := idByKindName["ConfigMap/"+ref]; ok {
				addDep(refID, toID, graphir.DepRequires)
			}
			if refID, ok := idByKindName["Secret/"+ref]; ok {
				addDep(refID, toID, graphir.DepRequires)
			}
		}
	}

	// Service -> Deployment: first deployment whose pod-template labels
	// satisfy the service's selector, in insertion order (documented
	// imprecision - no real label-matching disambiguation attempted).
	for svcID, selector := range selectorsByServiceID {
		if len(selector) == 0 {
			continue
		}
		for i := range docs {
			depID := ops[i].ID
			labels, ok := labelsByDeploymentID[depID]
			if !ok {
				continue
			}
			if selectorSatisfiedBy(selector, labels) {
				dep := graphir.NewDependency(depID, svcID, graphir.DepRequires)
				dep.Metadata["linked_by"] = "insertion_order"
				deps = append(deps, dep)
				break
			}
		}
	}

	meta := map[string]interface{}{"dialect": "kubernetes"}
	return graphir.New(ops, deps, meta), nil
}

func selectorFrom(spec map[string]interface{}) map[string]string {
	sel, ok := spec["selector"].(map[string]interface{})
	if !ok {
		return nil
	}
	out := map[string]string{}
	for k, v := range sel {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func podTemplateLabels(spec map[string]interface{}) map[string]string {
	template, ok := spec["template"].(map[string]interface{})
	if !ok {
		return nil
	}
	meta, ok := template["metadata"].(map[string]interface{})
	if !ok {
		return nil
	}
	labels, ok := meta["labels"].(map[string]interface{})
	if !ok {
		return nil
	}
	out := map[string]string{}
	for k, v := range labels {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func selectorSatisfiedBy(selector, labels map[string]string) bool {
	for k, v := range selector {
		if labels[k] != v {
			return false
		}
	}
	return true
}

// configMapSecretRefs walks envFrom and volumes for
// configMapRef/secretRef/configMap/secret name references.
func configMapSecretRefs(spec map[string]interface{}) []string {
	var names []string
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch t := v.(type) {
		case map[string]interface{}:
			for k, inner := range t {
				switch k {
				case "configMapRef", "secretRef", "configMapKeyRef", "secretKeyRef", "configMap", "secret":
					if m, ok := inner.(map[string]interface{}); ok {
						if name, ok := m["name"].(string); ok {
							names = append(names, name)
						}
					}
				default:
					walk(inner)
				}
			}
		case []interface{}:
			for _, item := range t {
				walk(item)
			}
		}
	}
	walk(spec)
	return names
}

func splitDocuments(content []byte) ([]manifest, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(content)))
	var docs []manifest
	for {
		var m manifest
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, harerr.Wrap(harerr.KubernetesParseError, "decoding manifest document", err)
		}
		if m.Kind == "" {
			continue
		}
		docs = append(docs, m)
	}
	return docs, nil
}

// Validate performs a cheap structural check: at least one document
// must declare a kind, and every document that declares a kind must also
// declare apiVersion. Documents without a kind are skipped, as in Parse.
func Validate(content []byte) error {
	docs, err := splitDocuments(content)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return harerr.New(harerr.KubernetesParseError, "no documents found")
	}
	for _, m := range docs {
		if m.APIVersion == "" || m.Kind == "" {
			return harerr.New(harerr.KubernetesParseError, "document missing apiVersion or kind")
		}
	}
	return nil
}
