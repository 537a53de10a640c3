package http

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"begroting/internal/core"
)

// Named period selectors accepted on the period query parameter. Custom
// requires start and end as calendar days.
const (
	periodPayCycle    = "pay-cycle"
	periodThisMonth   = "this-month"
	periodLastMonth   = "last-month"
	periodLast3Months = "last-3-months"
	periodThisYear    = "this-year"
	periodCustom      = "custom"
)

// resolvePeriod maps the period query parameters onto a resolved interval.
// An absent period means the default pay cycle.
func resolvePeriod(q url.Values, now time.Time) (core.Period, error) {
	name := strings.TrimSpace(q.Get("period"))

	switch name {
	case "":
		return core.DefaultPeriod(now), nil
	case periodPayCycle:
		return core.PayCycle(now), nil
	case periodThisMonth:
		return core.CalendarMonth(now), nil
	case periodLastMonth:
		return core.LastMonth(now), nil
	case periodLast3Months:
		return core.LastNMonths(now, 3), nil
	case periodThisYear:
		return core.ThisYear(now), nil
	case periodCustom:
		return parseCustomPeriod(q)
	default:
		return core.Period{}, fmt.Errorf("unknown period %q", name)
	}
}

func parseCustomPeriod(q url.Values) (core.Period, error) {
	startStr := strings.TrimSpace(q.Get("start"))
	endStr := strings.TrimSpace(q.Get("end"))
	if startStr == "" || endStr == "" {
		return core.Period{}, fmt.Errorf("custom period requires start and end")
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return core.Period{}, fmt.Errorf("invalid start %q: %w", startStr, err)
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return core.Period{}, fmt.Errorf("invalid end %q: %w", endStr, err)
	}
	if end.Before(start) {
		return core.Period{}, fmt.Errorf("end %s before start %s", endStr, startStr)
	}

	label := fmt.Sprintf("%s to %s", start.Format("2 Jan 2006"), end.Format("2 Jan 2006"))
	return core.CustomPeriod(start, end, label), nil
}
