// Package accumulate provides the use case that assembles an ordered-by-arrival
// collection of listing items from a paginated page source. It drives the
// source's extract/load-more cycle until a target number of valid items has
// been gathered.
package accumulate

import "errors"

// Sentinel errors for accumulate use case operations.
var (
	// ErrPageBudgetExceeded indicates the pagination loop hit its maximum
	// page-load bound before gathering the target number of items. The bound
	// protects against sources that keep loading pages without ever reaching
	// the target count.
	ErrPageBudgetExceeded = errors.New("page load budget exceeded")

	// ErrInvalidTarget indicates the requested target item count is not a
	// positive integer.
	ErrInvalidTarget = errors.New("target must be a positive integer")
)
