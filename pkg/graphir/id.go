package graphir

import "github.com/google/uuid"

// Dedupe returns base if it hasn't been handed out before (recording it
// in seen); otherwise it appends a short random suffix so two distinct
// resources that happen to share a type+name never collide onto the
// same vertex id. Regex- and title-keyed parsers (Puppet, Chef,
// Kubernetes) build ids from source text that offers no uniqueness
// guarantee on its own, unlike Ansible's sequence counter or
// Terraform's provider-enforced resource addresses.
func Dedupe(base string, seen map[string]bool) string {
	if !seen[base] {
		seen[base] = true
		return base
	}
	for {
		candidate := base + "-" + uuid.NewString()[:8]
		if !seen[candidate] {
			seen[candidate] = true
			return candidate
		}
	}
}
