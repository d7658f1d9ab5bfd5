// Package monitoring provides Prometheus metrics for the launcher backend.
//
// Tracked concerns:
//   - HTTP request counts, durations, and status codes (gin middleware)
//   - profile operations (add, rename, clone, delete, ...) by outcome
//   - partition reaper sweeps by outcome (removed, trashed, queued)
//   - pending-delete queue depth
//   - active session windows
//
// Metrics are registered on the default registry and served through
// promhttp on /metrics.
package monitoring
