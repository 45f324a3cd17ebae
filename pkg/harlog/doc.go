// Package harlog wraps zerolog with component-tagged child loggers.
//
// The router package (routing table loads and reloads, health checks,
// operations that fail to route) logs through WithComponent/WithBackend
// loggers, the Terraform transformer logs a warning for each operation it
// skips, and cmd/har configures the level and output with Init. Parsers
// and the other transformers do not log: a passthrough fallback is
// visible in the operation's tool.<verb> type; the Ansible, Salt, Puppet
// and Chef transformers write a notice for an unsupported op into the
// emitted document, and the Kubernetes transformer drops it silently.
package harlog
