// Package harerr defines HAR's tagged error taxonomy.
//
// Every fatal condition in the pipeline is a *harerr.Error with a closed
// Kind, so call sites can branch with errors.Is/errors.As instead of
// string-matching messages. Kinds that degrade instead of fail (unknown
// verb, unsupported op type) are never wrapped here — they are logged
// and skipped at the call site.
package harerr

import "fmt"

// Kind is a closed enumeration of HAR's fatal error categories.
type Kind string

const (
	// Parse errors, one per source dialect.
	AnsibleParseError    Kind = "ansible_parse_error"
	SaltParseError       Kind = "salt_parse_error"
	TerraformParseError  Kind = "terraform_parse_error"
	PuppetParseError     Kind = "puppet_parse_error"
	ChefParseError       Kind = "chef_parse_error"
	KubernetesParseError Kind = "kubernetes_parse_error"

	// Graph validation errors.
	InvalidReferences  Kind = "invalid_references"
	CircularDependency Kind = "circular_dependency"
	InvalidOperations  Kind = "invalid_operations"

	// Routing errors.
	NoBackendAvailable Kind = "no_backend_available"
	RoutingFailed      Kind = "routing_failed"

	// Transform errors.
	UnsupportedTarget Kind = "unsupported_target"
	TransformFailed   Kind = "transform_failed"

	// Dispatch/bridge errors.
	UnsupportedFormat Kind = "unsupported_format"
	BridgeDecodeError Kind = "bridge_decode_error"
)

// Error is HAR's uniform tagged error value.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so
// errors.Is(err, harerr.ErrCircularDependency) matches any *Error of Kind
// CircularDependency regardless of its Detail or Cause.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New constructs an *Error of the given kind with a detail message.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap constructs an *Error of the given kind wrapping a lower-level cause.
func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

// sentinel returns a zero-detail *Error of kind k, usable as an
// errors.Is(err, harerr.ErrCircularDependency) target.
func sentinel(k Kind) *Error { return &Error{Kind: k} }

// Sentinels for errors.Is comparisons where no detail is needed at the
// call site. Only these two Kinds have a sentinel; for the others,
// compare against a *Error built with New.
var (
	ErrCircularDependency = sentinel(CircularDependency)
	ErrNoBackendAvailable = sentinel(NoBackendAvailable)
)
