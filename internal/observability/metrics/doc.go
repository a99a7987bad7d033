// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Accumulation metrics (records extracted, dropped, duplicated, pages loaded)
//   - Audit outcome metrics (run results, run duration)
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint in watch mode.
//
// Example usage:
//
//	import "orderwatch/internal/observability/metrics"
//
//	func auditListing(target string) {
//	    start := time.Now()
//	    // ... run the audit ...
//	    metrics.RecordAuditRun(target, metrics.OutcomeOK, time.Since(start))
//	}
package metrics
