package tax

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var financialYearPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ValidateFinancialYear accepts YYYY-YY where YY is the year after YYYY.
func ValidateFinancialYear(fy string) error {
	m := financialYearPattern.FindStringSubmatch(fy)
	if m == nil {
		return ErrInvalidFinancialYear
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if (start+1)%100 != end {
		return ErrInvalidFinancialYear
	}
	return nil
}

// FinancialYear names the April-to-March year containing t.
func FinancialYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}
