package entity

import (
	"strconv"
	"strings"
	"time"
)

// timeLayouts are the textual timestamp formats accepted from listing pages,
// tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseUnixSeconds parses a source-provided timestamp string into UNIX
// seconds. It accepts a plain numeric seconds value, a "<ISO> <unix>" pair as
// emitted by Hacker News age attributes (the trailing token wins), or an
// ISO-8601/RFC3339 time. Returns nil when the string carries no usable
// timestamp, so callers can feed the result straight into the admission check.
func ParseUnixSeconds(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	// "2025-01-02T03:04:05 1735787045" style pairs: the numeric token is
	// authoritative.
	if fields := strings.Fields(raw); len(fields) == 2 {
		if secs, err := strconv.ParseFloat(fields[1], 64); err == nil {
			return &secs
		}
		raw = fields[0]
	}

	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return &secs
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			secs := float64(t.Unix())
			return &secs
		}
	}

	return nil
}
