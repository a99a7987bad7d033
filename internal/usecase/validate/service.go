// Package validate provides the use case that checks a fixed-size sample of
// accumulated listing items for strict descending-time order. It is a pure
// function of its input: sampling, sorting and verification produce a Result
// value, never a fault, since an out-of-order listing is an expected and
// reportable outcome.
package validate

import (
	"fmt"
	"math"
	"sort"

	"orderwatch/internal/domain/entity"
)

// ViolationKind classifies why a sample failed validation.
type ViolationKind string

const (
	// KindOrderViolation means an adjacent pair in the sorted sample was
	// strictly ascending.
	KindOrderViolation ViolationKind = "order_violation"

	// KindInvalidTimestamp means a sampled item carried a non-finite
	// timestamp that would make comparisons non-transitive.
	KindInvalidTimestamp ViolationKind = "invalid_timestamp"
)

// Violation describes the first point at which a sample failed validation.
// Position is the 0-based index into the sorted sample; for
// KindInvalidTimestamp it is the index into the selection order and Previous
// is zero.
type Violation struct {
	Kind     ViolationKind
	Position int
	Current  entity.Item
	Previous entity.Item
}

// String returns a one-line description of the violation for logs and reports.
func (v *Violation) String() string {
	switch v.Kind {
	case KindInvalidTimestamp:
		return fmt.Sprintf("item %q at position %d has a non-finite timestamp", v.Current.Title, v.Position)
	default:
		return fmt.Sprintf("item %q at position %d is newer than its predecessor %q", v.Current.Title, v.Position, v.Previous.Title)
	}
}

// Result is the terminal output of one validation run: either the ordered
// sample, or the first violation found.
type Result struct {
	Ordered   []entity.Item
	Violation *Violation
}

// OK reports whether the sample passed validation.
func (r Result) OK() bool {
	return r.Violation == nil
}

// Check validates that the first n items of the collection form a descending
// time sequence once sorted.
//
// It selects the first n items in insertion order (items beyond n are never
// examined), rejects any sampled item whose timestamp is not a finite number,
// sorts the sample by timestamp descending (stable, so ties keep selection
// order), and scans adjacent pairs for a strictly ascending step. The first
// failure is reported; the scan does not continue past it.
//
// The collection must hold at least n items; that precondition is the
// caller's to enforce via the accumulator contract.
func Check(collection []entity.Item, n int) Result {
	sample := make([]entity.Item, n)
	copy(sample, collection[:n])

	// Non-finite timestamps break comparator transitivity, so they are
	// rejected before the sort rather than silently passed through it.
	for i, item := range sample {
		if math.IsNaN(item.TimestampMs) || math.IsInf(item.TimestampMs, 0) {
			return Result{Violation: &Violation{
				Kind:     KindInvalidTimestamp,
				Position: i,
				Current:  item,
			}}
		}
	}

	sort.SliceStable(sample, func(i, j int) bool {
		return sample[i].TimestampMs > sample[j].TimestampMs
	})

	for i := 1; i < len(sample); i++ {
		if sample[i].TimestampMs > sample[i-1].TimestampMs {
			return Result{Violation: &Violation{
				Kind:     KindOrderViolation,
				Position: i,
				Current:  sample[i],
				Previous: sample[i-1],
			}}
		}
	}

	return Result{Ordered: sample}
}
