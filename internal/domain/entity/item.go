// Package entity defines the core domain entities and validation logic for the
// application. It contains the listing item value type, its admission rules,
// and domain-specific errors.
package entity

import (
	"math"
	"time"
)

// RawItem is one record as extracted from a listing page, before admission.
// Fields come straight from the DOM and may be incomplete: UnixSeconds is nil
// when the source row carried no usable timestamp, and may be NaN or infinite
// when the source emitted a non-numeric value.
type RawItem struct {
	ID          string
	Title       string
	UnixSeconds *float64
}

// Item represents one admitted entry of a "newest items" listing.
// TimestampMs is milliseconds since the UNIX epoch, derived from the
// source-provided seconds value. IDs are unique within a single page of the
// source but not across a whole run.
type Item struct {
	ID          string
	Title       string
	TimestampMs float64
}

// Time returns the item's publication time in UTC.
func (i Item) Time() time.Time {
	return time.UnixMilli(int64(i.TimestampMs)).UTC()
}

// NewItem admits a raw extraction record as an Item.
// Admission requires a non-empty title and a present, finite timestamp.
// Records failing admission are rejected with a ValidationError naming the
// offending field; callers drop them rather than storing partial records.
func NewItem(raw RawItem) (Item, error) {
	if raw.Title == "" {
		return Item{}, &ValidationError{Field: "title", Message: "title is required"}
	}
	if raw.UnixSeconds == nil {
		return Item{}, &ValidationError{Field: "timestamp", Message: "timestamp is required"}
	}
	secs := *raw.UnixSeconds
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return Item{}, &ValidationError{Field: "timestamp", Message: "timestamp is not a finite number"}
	}
	return Item{
		ID:          raw.ID,
		Title:       raw.Title,
		TimestampMs: secs * 1000,
	}, nil
}
