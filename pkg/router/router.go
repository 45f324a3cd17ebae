package router

import (
	"time"

	"github.com/hyperpolymath/har/pkg/graphir"
	"github.com/hyperpolymath/har/pkg/harerr"
	"github.com/hyperpolymath/har/pkg/harlog"
)

// Router composes a RoutingTable, HealthChecker, and PolicyEngine into
// routing decisions over a Graph.
type Router struct {
	Table   *RoutingTable
	Health  *HealthChecker
	Policy  *PolicyEngine
}

// NewRouter constructs a Router from its three collaborators.
func NewRouter(table *RoutingTable, health *HealthChecker, policy *PolicyEngine) *Router {
	return &Router{Table: table, Health: health, Policy: policy}
}

// Route validates g, then routes each of its operations to a backend,
// returning a RoutingPlan.
func (r *Router) Route(g *graphir.Graph, target string, policyOpts []string) (*RoutingPlan, error) {
	if verr := g.Validate(); verr != nil {
		return nil, harerr.Wrap(harerr.RoutingFailed, "graph failed validation", verr)
	}

	log := harlog.WithComponent("router")
	decisions := make([]RoutingDecision, 0, g.OperationCount())
	var failures []string

	for _, op := range g.Operations() {
		decision := r.routeOne(op, target, policyOpts)
		decisions = append(decisions, decision)
		if decision.Error != "" {
			failures = append(failures, op.ID+": "+decision.Error)
			log.Warn().Str("operation_id", op.ID).Str("reason", decision.Error).Msg("routing failed for operation")
		}
	}

	if len(failures) > 0 {
		return nil, harerr.New(harerr.RoutingFailed, joinErrors(failures))
	}

	plan := &RoutingPlan{
		Graph:     g,
		Decisions: decisions,
		Target:    target,
		Metadata: map[string]interface{}{
			"routed_at":        time.Now(),
			"policies_applied": policyOpts,
		},
	}
	return plan, nil
}

func (r *Router) routeOne(op *graphir.Operation, target string, policyOpts []string) RoutingDecision {
	now := time.Now()

	candidates := r.Table.Match(op, target)
	candidates = r.Health.FilterHealthy(candidates)
	candidates = r.Policy.ApplyPolicies(candidates, op, policyOpts)

	if len(candidates) == 0 {
		return RoutingDecision{
			Operation: op.ID,
			Timestamp: now,
			Error:     string(harerr.NoBackendAvailable),
		}
	}

	chosen := candidates[0]
	alternatives := make([]string, 0, len(candidates)-1)
	for _, c := range candidates[1:] {
		alternatives = append(alternatives, c.Name)
	}

	return RoutingDecision{
		Operation:     op.ID,
		ChosenBackend: chosen.Name,
		Alternatives:  alternatives,
		Reason:        "pattern_match",
		Timestamp:     now,
	}
}

func joinErrors(errs []string) string {
	out := ""
	for i, e := range errs {
		if i > 0 {
			out += "; "
		}
		out += e
	}
	return out
}
