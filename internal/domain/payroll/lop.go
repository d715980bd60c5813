package payroll

import (
	"math"
	"time"

	"payrollsuite/internal/domain/leave"
)

// LOPDaysByEmployee derives loss-of-pay days per employee within [from, to].
// Each calendar date counts at most once: a date covered by both an approved
// request and an attendance mark is not subtracted twice. A request covering
// fewer days than its span (half days) weighs days/span on each of its dates.
func LOPDaysByEmployee(requests []leave.LOPRequest, marks []leave.LOPMark, from, to time.Time) map[string]float64 {
	from, to = dateOnly(from), dateOnly(to)
	perDate := map[string]map[time.Time]float64{}
	mark := func(employeeID string, d time.Time, weight float64) {
		if d.Before(from) || d.After(to) || weight <= 0 {
			return
		}
		dates, ok := perDate[employeeID]
		if !ok {
			dates = map[time.Time]float64{}
			perDate[employeeID] = dates
		}
		dates[d] = math.Max(dates[d], math.Min(weight, 1))
	}

	for _, r := range requests {
		start, end := dateOnly(r.StartDate), dateOnly(r.EndDate)
		span, err := leave.CalculateDays(start, end)
		if err != nil || span <= 0 {
			continue
		}
		weight := r.Days / span
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			mark(r.EmployeeID, d, weight)
		}
	}
	for _, m := range marks {
		mark(m.EmployeeID, dateOnly(m.Date), 1)
	}

	out := make(map[string]float64, len(perDate))
	for employeeID, dates := range perDate {
		total := 0.0
		for _, w := range dates {
			total += w
		}
		out[employeeID] = round2(total)
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
