package leave

import (
	"errors"
	"time"
)

var errInvalidRange = errors.New("end date before start date")

// CalculateDays returns the inclusive calendar day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	start, end = truncate(start), truncate(end)
	if end.Before(start) {
		return 0, errInvalidRange
	}
	return float64(int(end.Sub(start).Hours()/24) + 1), nil
}

// CalculateRequestDays returns the inclusive day count with optional half-day
// start and end boundaries.
func CalculateRequestDays(start, end time.Time, startHalf, endHalf bool) (float64, error) {
	days, err := CalculateDays(start, end)
	if err != nil {
		return 0, err
	}
	if truncate(start).Equal(truncate(end)) && startHalf && endHalf {
		return 0, ErrInvalidHalfDay
	}
	if startHalf {
		days -= 0.5
	}
	if endHalf {
		days -= 0.5
	}
	if days <= 0 {
		return 0, ErrInvalidHalfDay
	}
	return days, nil
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns the first and last calendar day of a month.
func MonthBounds(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}
