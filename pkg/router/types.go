// Package router implements HAR's control plane: a hot-reloadable
// RoutingTable, a polling HealthChecker, a PolicyEngine, and the Router
// that composes them into routing decisions over a graphir.Graph.
package router

import (
	"time"

	"github.com/hyperpolymath/har/pkg/graphir"
)

// BackendType is one of the four kinds a backend descriptor can be.
type BackendType string

const (
	BackendLocal       BackendType = "local"
	BackendRemote      BackendType = "remote"
	BackendCloud       BackendType = "cloud"
	BackendPassthrough BackendType = "passthrough"
)

// BackendDescriptor names a concrete tool or subsystem capable of
// executing an operation.
type BackendDescriptor struct {
	Name         string
	Type         BackendType
	Priority     int
	Locality     string
	Capabilities []string
	HealthCheck  *HealthCheckSpec
	Metadata     map[string]interface{}
}

// ID returns the "<type>:<name>" key HealthChecker indexes backends by.
func (b BackendDescriptor) ID() string {
	return string(b.Type) + ":" + b.Name
}

// HasCapability reports whether b advertises the given capability tag.
func (b BackendDescriptor) HasCapability(tag string) bool {
	for _, c := range b.Capabilities {
		if c == tag {
			return true
		}
	}
	return false
}

// HealthCheckSpec configures how a backend's liveness is probed.
type HealthCheckSpec struct {
	Type     CheckType
	URL      string        // http
	Address  string        // tcp
	Function func() Result // function
	Interval time.Duration
	Timeout  time.Duration
}

// FieldMatcher is a single pattern field: nil/"*" matches anything, a
// plain string is an exact match, a string containing "*" is a glob.
type FieldMatcher = string

// Pattern is the partial-match criteria of a RoutingRule.
type Pattern struct {
	Operation FieldMatcher
	Target    map[string]FieldMatcher
}

// RoutingRule pairs a Pattern with the backends that satisfy it.
type RoutingRule struct {
	Pattern  Pattern
	Backends []BackendDescriptor
}

// RoutingDecision records how one Operation was routed.
type RoutingDecision struct {
	Operation      string // op id
	ChosenBackend  string // backend name, empty if none
	Alternatives   []string
	Reason         string
	Timestamp      time.Time
	Error          string
}

// RoutingPlan is a Graph plus the parallel sequence of decisions for a
// target dialect.
type RoutingPlan struct {
	Graph     *graphir.Graph
	Decisions []RoutingDecision
	Target    string
	Metadata  map[string]interface{}
}

// PolicyType is one of the four policy actions.
type PolicyType string

const (
	PolicyAllow   PolicyType = "allow"
	PolicyDeny    PolicyType = "deny"
	PolicyRequire PolicyType = "require"
	PolicyPrefer  PolicyType = "prefer"
)

// PolicyCondition is a partial match over {backend, operation, opts}.
type PolicyCondition struct {
	BackendType     string
	BackendLocality string
	OperationType   string
	Environment     string
	DeviceType      string
}

// Policy is a named rule the PolicyEngine evaluates against candidate
// backends.
type Policy struct {
	Name      string
	Type      PolicyType
	Priority  int
	Condition PolicyCondition
	// PreferBoost is added to a backend's effective priority when Type
	// is PolicyPrefer.
	PreferBoost int
}

// HealthStatus is one of the four liveness states a backend can be in.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusUnknown   HealthStatus = "unknown"
)
