// Package console renders audit results as a human-readable report.
package console

import (
	"fmt"
	"io"

	"orderwatch/internal/usecase/validate"
)

// timeFormat is the timestamp layout used in report lines.
const timeFormat = "2006-01-02 15:04:05 MST"

// Reporter writes audit reports to an output stream.
type Reporter struct {
	w io.Writer
}

// New creates a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report renders the outcome of one audit: an enumerated 1-indexed listing of
// the validated items followed by a success marker, or a single failure line
// naming the offending position and the conflicting items.
func (r *Reporter) Report(name string, result validate.Result) {
	fmt.Fprintf(r.w, "=== %s ===\n", name)

	if !result.OK() {
		v := result.Violation
		switch v.Kind {
		case validate.KindInvalidTimestamp:
			fmt.Fprintf(r.w, "FAIL: invalid timestamp at position %d: %q\n",
				v.Position+1, v.Current.Title)
		default:
			fmt.Fprintf(r.w, "FAIL: order violation at position %d: %q (%s) is newer than %q (%s)\n",
				v.Position+1,
				v.Current.Title, v.Current.Time().Format(timeFormat),
				v.Previous.Title, v.Previous.Time().Format(timeFormat))
		}
		return
	}

	for i, item := range result.Ordered {
		fmt.Fprintf(r.w, "%3d. %s  %s\n", i+1, item.Time().Format(timeFormat), item.Title)
	}
	fmt.Fprintf(r.w, "OK: %d items in descending time order\n", len(result.Ordered))
}

// ReportError renders a fatal run error for one audit target.
func (r *Reporter) ReportError(name string, err error) {
	fmt.Fprintf(r.w, "=== %s ===\n", name)
	fmt.Fprintf(r.w, "ERROR: %v\n", err)
}
