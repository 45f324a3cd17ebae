package graphir

import (
	"fmt"
	"strings"

	"github.com/hyperpolymath/har/pkg/harerr"
)

// InvalidOperation pairs a vertex id with why it failed per-type param
// validation.
type InvalidOperation struct {
	ID     string
	Reason string
}

// ValidationError reports why Graph.Validate rejected a graph. Exactly
// one of InvalidRefs, Circular, or InvalidOps is populated.
type ValidationError struct {
	Kind        harerr.Kind
	InvalidRefs []string
	Circular    bool
	InvalidOps  []InvalidOperation
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case harerr.InvalidReferences:
		return fmt.Sprintf("invalid_references: %s", strings.Join(e.InvalidRefs, ", "))
	case harerr.CircularDependency:
		return "circular_dependency"
	case harerr.InvalidOperations:
		parts := make([]string, len(e.InvalidOps))
		for i, io := range e.InvalidOps {
			parts[i] = fmt.Sprintf("%s: %s", io.ID, io.Reason)
		}
		return fmt.Sprintf("invalid_operations: %s", strings.Join(parts, "; "))
	default:
		return string(e.Kind)
	}
}

// Is lets errors.Is(err, harerr.ErrCircularDependency) match a
// ValidationError carrying the same Kind, without importing graphir into
// harerr.
func (e *ValidationError) Is(target error) bool {
	if he, ok := target.(*harerr.Error); ok {
		return e.Kind == he.Kind
	}
	return false
}

// Validate checks the three invariants owned by the Graph itself.
func (g *Graph) Validate() *ValidationError {
	// 1. Every edge endpoint refers to an extant vertex id.
	var badRefs []string
	seenBad := map[string]bool{}
	for _, d := range g.dependencies {
		if _, ok := g.FindOperation(d.From); !ok && !seenBad[d.From] {
			badRefs = append(badRefs, d.From)
			seenBad[d.From] = true
		}
		if _, ok := g.FindOperation(d.To); !ok && !seenBad[d.To] {
			badRefs = append(badRefs, d.To)
			seenBad[d.To] = true
		}
	}
	if len(badRefs) > 0 {
		return &ValidationError{Kind: harerr.InvalidReferences, InvalidRefs: badRefs}
	}

	// 2. The edge set is acyclic — every DependencyType, not only the
	// order-constraining subset TopologicalSort linearizes over. Any
	// cycle TopologicalSort would hit is a subset of this, so this
	// check alone covers both.
	if g.hasCycle() {
		return &ValidationError{Kind: harerr.CircularDependency, Circular: true}
	}

	// 4. Per-type required-parameter rules.
	var invalid []InvalidOperation
	for _, op := range g.operations {
		if ok, reason := op.ValidateParams(); !ok {
			invalid = append(invalid, InvalidOperation{ID: op.ID, Reason: reason})
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{Kind: harerr.InvalidOperations, InvalidOps: invalid}
	}

	return nil
}
