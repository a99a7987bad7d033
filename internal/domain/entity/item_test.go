package entity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestNewItem_AdmitsCompleteRecord(t *testing.T) {
	item, err := NewItem(RawItem{
		ID:          "45821311",
		Title:       "Show HN: A tiny ordering auditor",
		UnixSeconds: floatPtr(1735787045),
	})

	require.NoError(t, err)
	assert.Equal(t, "45821311", item.ID)
	assert.Equal(t, "Show HN: A tiny ordering auditor", item.Title)
	assert.Equal(t, 1735787045_000.0, item.TimestampMs)
}

func TestNewItem_RejectsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawItem
		field string
	}{
		{
			name:  "empty title",
			raw:   RawItem{ID: "1", Title: "", UnixSeconds: floatPtr(0.5)},
			field: "title",
		},
		{
			name:  "missing timestamp",
			raw:   RawItem{ID: "2", Title: "No time"},
			field: "timestamp",
		},
		{
			name:  "NaN timestamp",
			raw:   RawItem{ID: "3", Title: "Not a number", UnixSeconds: floatPtr(math.NaN())},
			field: "timestamp",
		},
		{
			name:  "infinite timestamp",
			raw:   RawItem{ID: "4", Title: "Unbounded", UnixSeconds: floatPtr(math.Inf(1))},
			field: "timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewItem(tt.raw)

			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestItem_Time(t *testing.T) {
	item := Item{TimestampMs: 1735787045_000}

	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), item.Time())
}

func TestParseUnixSeconds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{name: "plain unix seconds", raw: "1735787045", want: floatPtr(1735787045)},
		{name: "fractional seconds", raw: "1735787045.5", want: floatPtr(1735787045.5)},
		{name: "iso plus unix pair", raw: "2025-01-02T03:04:05 1735787045", want: floatPtr(1735787045)},
		{name: "rfc3339", raw: "2025-01-02T03:04:05Z", want: floatPtr(1735787045)},
		{name: "iso without zone", raw: "2025-01-02T03:04:05", want: floatPtr(1735787045)},
		{name: "surrounding whitespace", raw: "  1735787045  ", want: floatPtr(1735787045)},
		{name: "empty", raw: "", want: nil},
		{name: "garbage", raw: "3 minutes ago", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUnixSeconds(tt.raw)

			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestValidateListingURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https url", url: "https://news.ycombinator.com/newest", wantErr: false},
		{name: "http url", url: "http://example.com/new", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com/new", wantErr: true},
		{name: "missing host", url: "https:///newest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateListingURL(tt.url)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
