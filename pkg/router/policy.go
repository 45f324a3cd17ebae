package router

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hyperpolymath/har/pkg/graphir"
)

// PolicyEngine evaluates Policies against candidate backends. It keeps
// its own prometheus registry rather than registering
// into the global default registry, since HAR embeds as a library and
// should not claim process-wide metric names a host application might
// also want.
type PolicyEngine struct {
	policies []Policy
	registry *prometheus.Registry

	evaluations *prometheus.CounterVec
	denials     *prometheus.CounterVec
}

// NewPolicyEngine constructs an engine over the given policies. Policies
// are not required to be pre-sorted; the engine keeps a copy sorted by
// descending priority (stable for ties).
func NewPolicyEngine(policies []Policy) *PolicyEngine {
	reg := prometheus.NewRegistry()

	evaluations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "har_policy_evaluations_total",
			Help: "Total number of policy evaluations by policy name and action",
		},
		[]string{"policy", "action"},
	)
	denials := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "har_policy_denials_total",
			Help: "Total number of backend denials by policy name",
		},
		[]string{"policy"},
	)
	reg.MustRegister(evaluations, denials)

	sorted := append([]Policy(nil), policies...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })

	return &PolicyEngine{
		policies:    sorted,
		registry:    reg,
		evaluations: evaluations,
		denials:     denials,
	}
}

// Collect snapshots the engine's counters into a plain map, keyed
// "<metric>/<policy>/<action>" for evaluations and "<metric>/<policy>"
// for denials (e.g. "har_policy_denials_total/deny-cloud") — a
// lightweight alternative to standing up an HTTP /metrics endpoint.
func (e *PolicyEngine) Collect() (map[string]float64, error) {
	mfs, err := e.registry.Gather()
	if err != nil {
		return nil, err
	}
	out := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			key := mf.GetName()
			if p, ok := labels["policy"]; ok {
				key += "/" + p
			}
			if a, ok := labels["action"]; ok {
				key += "/" + a
			}
			out[key] = m.GetCounter().GetValue()
		}
	}
	return out, nil
}

// evalOpts narrows opts to the names of policies a caller wants applied;
// an empty slice means "apply all".
type evalOpts struct {
	names map[string]bool
}

func newEvalOpts(policyNames []string) evalOpts {
	if len(policyNames) == 0 {
		return evalOpts{}
	}
	names := make(map[string]bool, len(policyNames))
	for _, n := range policyNames {
		names[n] = true
	}
	return evalOpts{names: names}
}

func (o evalOpts) applies(name string) bool {
	return o.names == nil || o.names[name]
}

// ApplyPolicies returns the backends that survive policy evaluation for
// op, ordered by descending effective priority: the backend's Priority
// plus the summed PreferBoost of every prefer policy that matched it
// (stable for ties).
func (e *PolicyEngine) ApplyPolicies(backends []BackendDescriptor, op *graphir.Operation, opts []string) []BackendDescriptor {
	active := newEvalOpts(opts)
	boosts := make(map[string]int, len(backends))
	denied := make(map[string]bool, len(backends))

	for _, b := range backends {
		for _, p := range e.policies {
			if !active.applies(p.Name) {
				continue
			}
			if !conditionMatches(p.Condition, b, op) {
				continue
			}
			e.evaluations.WithLabelValues(p.Name, string(p.Type)).Inc()

			switch p.Type {
			case PolicyDeny:
				denied[b.Name] = true
				e.denials.WithLabelValues(p.Name).Inc()
			case PolicyPrefer:
				boosts[b.Name] += p.PreferBoost
			case PolicyAllow, PolicyRequire:
				// contributes :allow; no-op beyond the evaluation counter
				// since a backend starts allowed unless explicitly denied.
			}

			if denied[b.Name] {
				// First deny terminates evaluation for this backend.
				break
			}
		}
	}

	survivors := make([]BackendDescriptor, 0, len(backends))
	for _, b := range backends {
		if !denied[b.Name] {
			survivors = append(survivors, b)
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		pi := survivors[i].Priority + boosts[survivors[i].Name]
		pj := survivors[j].Priority + boosts[survivors[j].Name]
		return pi > pj
	})
	return survivors
}

// conditionMatches implements condition evaluation: an empty condition
// (all fields blank) always matches; otherwise every specified
// field must match, with unknown/unsupported keys vacuously satisfied.
func conditionMatches(c PolicyCondition, b BackendDescriptor, op *graphir.Operation) bool {
	if c.BackendType != "" && c.BackendType != string(b.Type) {
		return false
	}
	if c.BackendLocality != "" && c.BackendLocality != b.Locality {
		return false
	}
	if c.OperationType != "" && c.OperationType != string(op.Type) {
		return false
	}
	if c.Environment != "" && c.Environment != op.TargetString("environment") {
		return false
	}
	if c.DeviceType != "" && c.DeviceType != op.TargetString("device_type") {
		return false
	}
	return true
}
