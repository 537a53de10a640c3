package http

import (
	"net/url"
	"testing"
	"time"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     string
		wantLabel string
		wantStart string
		wantEnd   string
	}{
		{"default is the pay cycle", "", "This Pay Cycle", "2025-05-25", "2025-06-24"},
		{"explicit pay cycle", "period=pay-cycle", "This Pay Cycle", "2025-05-25", "2025-06-24"},
		{"this month", "period=this-month", "This Month", "2025-06-01", "2025-06-30"},
		{"last month", "period=last-month", "Last Month", "2025-05-01", "2025-05-31"},
		{"last 3 months", "period=last-3-months", "Last 3 Months", "2025-04-01", "2025-06-30"},
		{"this year", "period=this-year", "This Year", "2025-01-01", "2025-12-31"},
		{"custom", "period=custom&start=2025-02-01&end=2025-03-15", "1 Feb 2025 to 15 Mar 2025", "2025-02-01", "2025-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			p, err := resolvePeriod(q, now)
			if err != nil {
				t.Fatalf("resolvePeriod: %v", err)
			}
			if p.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", p.Label, tt.wantLabel)
			}
			if got := p.Start.Format(dateLayout); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := p.End.Format(dateLayout); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestResolvePeriodRejectsInvalid(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	bad := []string{
		"period=bogus",
		"period=custom",
		"period=custom&start=2025-02-01",
		"period=custom&start=not-a-date&end=2025-03-01",
		"period=custom&start=2025-03-15&end=2025-02-01",
	}
	for _, query := range bad {
		q, err := url.ParseQuery(query)
		if err != nil {
			t.Fatalf("ParseQuery: %v", err)
		}
		if _, err := resolvePeriod(q, now); err == nil {
			t.Errorf("resolvePeriod(%q) accepted invalid input", query)
		}
	}
}
