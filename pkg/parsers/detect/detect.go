// Package detect autodetects a source file's IaC dialect from its
// filename and content: extension heuristics first, then a content
// sniff as a fallback.
package detect

import (
	"path/filepath"
	"strings"

	"github.com/hyperpolymath/har/pkg/harerr"
)

func byExtension(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".tf":
		return "terraform", true
	case ".sls":
		return "salt", true
	case ".pp":
		return "puppet", true
	case ".rb":
		return "chef", true
	}
	if ext == ".json" {
		return "", false // ambiguous: Terraform JSON vs. plain JSON manifest
	}
	return "", false
}

func bySniff(content []byte) (string, bool) {
	text := string(content)

	switch {
	case strings.Contains(text, "\"resource\"") || strings.Contains(text, "\"planned_values\""):
		return "terraform", true
	case strings.Contains(text, "hosts:") && (strings.Contains(text, "tasks:") || strings.Contains(text, "- hosts")):
		return "ansible", true
	case strings.Contains(text, "apiVersion:") && strings.Contains(text, "kind:"):
		return "kubernetes", true
	case looksLikeSaltTopLevel(text):
		return "salt", true
	}
	return "", false
}

// looksLikeSaltTopLevel recognizes Salt SLS's state-id -> module-dict
// shape: a top-level mapping whose values are themselves mappings keyed
// by a dotted module.function string, without Ansible's hosts:/tasks:
// or Kubernetes's apiVersion:/kind: markers.
func looksLikeSaltTopLevel(text string) bool {
	return (strings.Contains(text, ".installed") ||
		strings.Contains(text, ".running") ||
		strings.Contains(text, ".managed")) &&
		!strings.Contains(text, "apiVersion:")
}

// Detect returns the guessed Dialect string for content, trying filename
// extension heuristics first and falling back to a content sniff.
func Detect(filename string, content []byte) (string, error) {
	if filename != "" {
		if d, ok := byExtension(filename); ok {
			return d, nil
		}
	}
	if d, ok := bySniff(content); ok {
		return d, nil
	}
	return "", harerr.New(harerr.UnsupportedFormat, "could not detect dialect for "+filename)
}
