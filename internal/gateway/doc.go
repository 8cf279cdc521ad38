// Package gateway is the single choke point for outbound calls to external
// metadata providers.
//
// One Gateway instance is shared by every adapter. It owns the pacing limiter
// (consecutive calls anywhere in the process are at least MinInterval apart),
// a circuit breaker per provider, and the failure classification that turns
// HTTP and network outcomes into the service error taxonomy:
//
//   - 429 and connection-level failures become services.ErrRateLimited
//   - 5xx and open breakers become services.ErrSourceUnavailable
//   - caller cancellation is returned unchanged
//   - every other status passes through for the adapter to interpret
package gateway
