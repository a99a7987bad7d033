// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Accumulation metrics track the pagination/extraction loop.
var (
	// ItemsExtractedTotal counts raw records returned by the page source,
	// before admission, by audit target.
	ItemsExtractedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_items_extracted_total",
			Help: "Total number of raw records extracted from listing pages",
		},
		[]string{"target"},
	)

	// ItemsDroppedTotal counts records rejected by the admission check,
	// by target and rejection reason.
	ItemsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_items_dropped_total",
			Help: "Total number of extracted records dropped at admission",
		},
		[]string{"target", "reason"},
	)

	// DuplicateItemsTotal counts admitted items whose ID was already seen
	// during the same run. Duplicates are kept, not removed.
	DuplicateItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_duplicate_items_total",
			Help: "Total number of admitted items re-extracted across page loads",
		},
		[]string{"target"},
	)

	// PagesLoadedTotal counts successful load-more invocations.
	PagesLoadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_pages_loaded_total",
			Help: "Total number of additional listing pages loaded",
		},
		[]string{"target"},
	)
)

// Audit outcome metrics track whole-run results.
var (
	// AuditRunsTotal counts completed audit runs by target and outcome
	// ("ok", "violation", "invalid_timestamp", "error").
	AuditRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_runs_total",
			Help: "Total number of audit runs by outcome",
		},
		[]string{"target", "outcome"},
	)

	// AuditDuration measures the wall-clock duration of a full audit run.
	AuditDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audit_run_duration_seconds",
			Help:    "Audit run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"target"},
	)
)
