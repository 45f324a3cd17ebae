package transformers

import (
	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
	"github.com/hyperpolymath/har/pkg/transformers/ansible"
	"github.com/hyperpolymath/har/pkg/transformers/chef"
	"github.com/hyperpolymath/har/pkg/transformers/kubernetes"
	"github.com/hyperpolymath/har/pkg/transformers/puppet"
	"github.com/hyperpolymath/har/pkg/transformers/salt"
	"github.com/hyperpolymath/har/pkg/transformers/terraform"
)

type transformFunc func(*graphir.Graph, Options) ([]byte, error)

var registry = map[Dialect]transformFunc{
	Ansible: func(g *graphir.Graph, o Options) ([]byte, error) {
		return ansible.Transform(g, ansible.Options{Hosts: o.Hosts, Become: o.Become})
	},
	Salt: func(g *graphir.Graph, o Options) ([]byte, error) {
		return salt.Transform(g)
	},
	Terraform: func(g *graphir.Graph, o Options) ([]byte, error) {
		return terraform.Transform(g, terraform.Options{Provider: o.Provider, Region: o.Region, Format: o.Format})
	},
	Puppet: func(g *graphir.Graph, o Options) ([]byte, error) {
		return puppet.Transform(g, puppet.Options{ClassName: o.ClassName})
	},
	Chef: func(g *graphir.Graph, o Options) ([]byte, error) {
		return chef.Transform(g, chef.Options{CookbookName: o.CookbookName, CookbookVersion: o.CookbookVersion})
	},
	Kubernetes: func(g *graphir.Graph, o Options) ([]byte, error) {
		return kubernetes.Transform(g, kubernetes.Options{Namespace: o.Namespace})
	},
}

// Transform dispatches g to the lowering for opts.To; unknown target ->
// unsupported_target.
func Transform(g *graphir.Graph, opts Options) ([]byte, error) {
	fn, ok := registry[opts.To]
	if !ok {
		return nil, harerr.New(harerr.UnsupportedTarget, string(opts.To))
	}
	return fn(g, opts)
}

// SupportedTargets returns the set of dialects Transform can emit.
func SupportedTargets() []Dialect {
	return []Dialect{Ansible, Salt, Terraform, Puppet, Chef, Kubernetes}
}
