package metrics

import "time"

// Outcome labels recorded by RecordAuditRun.
const (
	OutcomeOK               = "ok"
	OutcomeViolation        = "violation"
	OutcomeInvalidTimestamp = "invalid_timestamp"
	OutcomeError            = "error"
)

// RecordItemsExtracted records the number of raw records returned by one
// extraction pass over a listing page.
func RecordItemsExtracted(target string, count int) {
	ItemsExtractedTotal.WithLabelValues(target).Add(float64(count))
}

// RecordItemDropped records one record rejected at admission.
// Reason is the offending field ("title", "timestamp").
func RecordItemDropped(target, reason string) {
	ItemsDroppedTotal.WithLabelValues(target, reason).Inc()
}

// RecordDuplicateItem records an admitted item whose ID was already seen
// earlier in the same run.
func RecordDuplicateItem(target string) {
	DuplicateItemsTotal.WithLabelValues(target).Inc()
}

// RecordPageLoaded records one successful load-more invocation.
func RecordPageLoaded(target string) {
	PagesLoadedTotal.WithLabelValues(target).Inc()
}

// RecordAuditRun records the outcome and duration of a completed audit run.
func RecordAuditRun(target, outcome string, duration time.Duration) {
	AuditRunsTotal.WithLabelValues(target, outcome).Inc()
	AuditDuration.WithLabelValues(target).Observe(duration.Seconds())
}
