// Package transformers lowers a graphir.Graph back into dialect-native
// text: topological_sort, then per-op dialect lowering,
// concatenated into the target's document structure.
package transformers

// Dialect is the closed enumeration of target formats HAR can emit.
type Dialect string

const (
	Ansible    Dialect = "ansible"
	Salt       Dialect = "salt"
	Terraform  Dialect = "terraform"
	Puppet     Dialect = "puppet"
	Chef       Dialect = "chef"
	Kubernetes Dialect = "kubernetes"
)

// Options carries every per-target knob a lowering can use: Ansible
// hosts/become, Terraform provider/region/format, Puppet's optional
// class wrapper, Chef's cookbook header.
type Options struct {
	To Dialect

	// Ansible
	Hosts  string
	Become bool

	// Terraform
	Provider string // aws | gcp | azure
	Region   string
	Format   string // json | hcl

	// Puppet
	ClassName string

	// Chef
	CookbookName    string
	CookbookVersion string

	// Kubernetes
	Namespace string
}
