// Package router implements the control plane that decides which
// backend executes each operation in a Graph.
//
// Three collaborators back the Router:
//
//   - RoutingTable matches an Operation's type and target fields against
//     glob-capable patterns loaded from YAML, hot-reloadable via
//     WatchReload without a request ever observing a half-loaded table.
//   - HealthChecker polls backends on independent tickers and answers
//     Healthy(id) from an in-memory map; an unregistered backend fails
//     open to healthy, while a registered one counts only once a check or
//     an override has marked it healthy or degraded.
//   - PolicyEngine evaluates allow/deny/require/prefer rules in priority
//     order, denying a backend on the first matching deny.
//
// Route runs these three in sequence per operation — match, filter,
// policy — and never forbids two operations on the same resource from
// landing on different backends; detecting that conflict is left as a
// future extension.
package router
