package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveRelativeDate(t *testing.T) {
	// A Wednesday.
	ref := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		expr string
		want string
	}{
		{"today", "2026-08-26"},
		{"now", "2026-08-26"},
		{"Tomorrow", "2026-08-27"},
		{"yesterday", "2026-08-25"},
		{"in 3 days", "2026-08-29"},
		{"in 1 day", "2026-08-27"},
		{"5 days ago", "2026-08-21"},
		{"1 day ago", "2026-08-25"},
		{"next week", "2026-09-02"},
		{"last week", "2026-08-19"},
		{"next month", "2026-09-26"},
		{"last month", "2026-07-26"},
		{"this week", "2026-08-30"},
		{"last monday", "2026-08-17"},
		{"last sunday", "2026-08-23"},
		{"2026-09-15", "2026-09-15"},
		{"august 30", "2026-08-30"},
		{"august 3rd", "2026-08-03"},
		{"September 1, 2026", "2026-09-01"},
		{"gibberish expression", "2026-08-26"},
		{"", "2026-08-26"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveRelativeDate(tc.expr, ref), "expr=%q", tc.expr)
	}
}
