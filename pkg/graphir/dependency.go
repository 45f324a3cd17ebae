package graphir

// DependencyType is one of the six edge kinds recognized by the IR.
type DependencyType string

const (
	DepSequential DependencyType = "sequential"
	DepRequires   DependencyType = "requires"
	DepBefore     DependencyType = "before"
	DepNotifies   DependencyType = "notifies"
	DepWatches    DependencyType = "watches"
	DepDependsOn  DependencyType = "depends_on"
)

// orderingKinds are the DependencyType values that constrain
// linearization order (invariant 5): A must precede B. notifies/watches
// are deliberately excluded — a notification is a runtime side-effect
// fired after its triggering resource converges, not a structural
// prerequisite, and real recipes commonly notify a resource declared
// earlier in the file (Chef's "notifies :restart, 'service[x]'" is
// routine even when service[x] precedes the notifier). Requiring that
// edge to also hold in the linearization would reject recipes that are
// perfectly valid in their own dialect. The full edge set — including
// notifies/watches — is still required to be acyclic; see
// Graph.hasCycle, used by Validate independently of this linearization.
var orderingKinds = map[DependencyType]bool{
	DepSequential: true,
	DepRequires:   true,
	DepDependsOn:  true,
	DepBefore:     true,
}

// ConstrainsOrder reports whether edges of this type must be respected
// by any valid topological linearization.
func (t DependencyType) ConstrainsOrder() bool {
	return orderingKinds[t]
}

// Dependency is a directed edge in the Semantic Graph.
type Dependency struct {
	From     string
	To       string
	Type     DependencyType
	Metadata map[string]interface{}
}

// NewDependency constructs a Dependency with an initialized metadata map.
func NewDependency(from, to string, typ DependencyType) *Dependency {
	return &Dependency{From: from, To: to, Type: typ, Metadata: map[string]interface{}{}}
}

// dedupKey identifies a Dependency for the {from,to,type} dedup rule used
// by Graph.Merge and Graph.PartitionBy.
func (d *Dependency) dedupKey() string {
	return d.From + "\x00" + d.To + "\x00" + string(d.Type)
}
