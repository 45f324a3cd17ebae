// Package parsers dispatches source text to the dialect-specific parser
// that lifts it into a graphir.Graph.
package parsers

import (
	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
	"github.com/hyperpolymath/har/pkg/parsers/ansible"
	"github.com/hyperpolymath/har/pkg/parsers/chef"
	"github.com/hyperpolymath/har/pkg/parsers/detect"
	"github.com/hyperpolymath/har/pkg/parsers/kubernetes"
	"github.com/hyperpolymath/har/pkg/parsers/puppet"
	"github.com/hyperpolymath/har/pkg/parsers/salt"
	"github.com/hyperpolymath/har/pkg/parsers/terraform"
)

// Dialect is the closed enumeration of source formats HAR can parse.
type Dialect string

const (
	Ansible    Dialect = "ansible"
	Salt       Dialect = "salt"
	Terraform  Dialect = "terraform"
	Puppet     Dialect = "puppet"
	Chef       Dialect = "chef"
	Kubernetes Dialect = "kubernetes"
)

// Options carries per-parse configuration (e.g. Chef cookbook metadata).
type Options struct {
	CookbookName    string
	CookbookVersion string
}

// Parser is the shared per-dialect contract.
type Parser interface {
	Parse(content []byte, opts Options) (*graphir.Graph, error)
	Validate(content []byte) error
}

type parserFunc struct {
	parse    func([]byte, Options) (*graphir.Graph, error)
	validate func([]byte) error
}

func (p parserFunc) Parse(content []byte, opts Options) (*graphir.Graph, error) {
	return p.parse(content, opts)
}

func (p parserFunc) Validate(content []byte) error {
	return p.validate(content)
}

// registry maps each Dialect to its Parser. Built once at package init;
// a small typed registry rather than a map keyed by free-form strings.
var registry = map[Dialect]Parser{
	Ansible: parserFunc{
		parse:    func(c []byte, o Options) (*graphir.Graph, error) { return ansible.Parse(c) },
		validate: ansible.Validate,
	},
	Salt: parserFunc{
		parse:    func(c []byte, o Options) (*graphir.Graph, error) { return salt.Parse(c) },
		validate: salt.Validate,
	},
	Terraform: parserFunc{
		parse:    func(c []byte, o Options) (*graphir.Graph, error) { return terraform.Parse(c) },
		validate: terraform.Validate,
	},
	Puppet: parserFunc{
		parse:    func(c []byte, o Options) (*graphir.Graph, error) { return puppet.Parse(c) },
		validate: puppet.Validate,
	},
	Chef: parserFunc{
		parse: func(c []byte, o Options) (*graphir.Graph, error) {
			return chef.Parse(c, chef.Options{CookbookName: o.CookbookName, CookbookVersion: o.CookbookVersion})
		},
		validate: chef.Validate,
	},
	Kubernetes: parserFunc{
		parse:    func(c []byte, o Options) (*graphir.Graph, error) { return kubernetes.Parse(c) },
		validate: kubernetes.Validate,
	},
}

// Parse dispatches content to the parser for format, autodetecting it
// from filename/content when format is empty.
func Parse(format, filename string, content []byte, opts Options) (*graphir.Graph, error) {
	d := Dialect(format)
	if d == "" {
		guessed, err := detect.Detect(filename, content)
		if err != nil {
			return nil, err
		}
		d = Dialect(guessed)
	}

	p, ok := registry[d]
	if !ok {
		return nil, harerr.New(harerr.UnsupportedFormat, string(d))
	}
	return p.Parse(content, opts)
}

// SupportedDialects returns the set of dialects Parse can handle.
func SupportedDialects() []Dialect {
	return []Dialect{Ansible, Salt, Terraform, Puppet, Chef, Kubernetes}
}
