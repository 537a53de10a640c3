package core

import (
	"fmt"
	"time"
)

// PayCycleDay is the day income lands; the household's accounting period
// runs from the 25th of one month through the 24th of the next.
const PayCycleDay = 25

// Period is a resolved date interval. Start and End are inclusive calendar
// days; Contains treats End as end-of-day.
type Period struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside the period, inclusive on both
// ends.
func (p Period) Contains(t time.Time) bool {
	end := time.Date(p.End.Year(), p.End.Month(), p.End.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), p.End.Location())
	return !t.Before(p.Start) && !t.After(end)
}

// PayCycle returns the pay cycle containing now: the 25th of the current or
// previous month through the 24th of the following month. This is the
// default display period.
func PayCycle(now time.Time) Period {
	start := time.Date(now.Year(), now.Month(), PayCycleDay, 0, 0, 0, 0, now.Location())
	if now.Day() < PayCycleDay {
		start = start.AddDate(0, -1, 0)
	}
	end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return Period{Start: start, End: end, Label: "This Pay Cycle"}
}

// CalendarMonth returns the calendar month containing now.
func CalendarMonth(now time.Time) Period {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)
	return Period{Start: start, End: end, Label: "This Month"}
}

// LastMonth returns the previous calendar month.
func LastMonth(now time.Time) Period {
	p := CalendarMonth(now.AddDate(0, -1, 0))
	p.Label = "Last Month"
	return p
}

// LastNMonths returns the last n calendar months including the current one.
func LastNMonths(now time.Time, n int) Period {
	if n < 1 {
		n = 1
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(n - 1), 0)
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, -1)
	return Period{Start: start, End: end, Label: fmt.Sprintf("Last %d Months", n)}
}

// ThisYear returns the calendar year containing now.
func ThisYear(now time.Time) Period {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
	return Period{Start: start, End: end, Label: "This Year"}
}

// CustomPeriod builds a period from an explicit range.
func CustomPeriod(start, end time.Time, label string) Period {
	if label == "" {
		label = fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	}
	return Period{Start: start, End: end, Label: label}
}

// DefaultPeriod is the period used when the caller supplies none.
func DefaultPeriod(now time.Time) Period {
	return PayCycle(now)
}

// TrailingMonths returns the n trailing calendar months before the month
// containing now, most recent first. Historical baselines always use these
// windows, independent of whichever display period is selected.
func TrailingMonths(now time.Time, n int) []Period {
	out := make([]Period, 0, n)
	for i := 1; i <= n; i++ {
		m := CalendarMonth(now.AddDate(0, -i, 0))
		m.Label = m.Start.Format("Jan 2006")
		out = append(out, m)
	}
	return out
}

// RecentMonths returns the n calendar months ending with the month
// containing now, most recent first. The one-shot advisor uses these
// windows; unlike TrailingMonths they include the current month.
func RecentMonths(now time.Time, n int) []Period {
	out := make([]Period, 0, n)
	for i := 0; i < n; i++ {
		m := CalendarMonth(now.AddDate(0, -i, 0))
		m.Label = m.Start.Format("Jan 2006")
		out = append(out, m)
	}
	return out
}

// FilterPeriod returns the transactions dated inside p, preserving order.
func FilterPeriod(txs []Transaction, p Period) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
