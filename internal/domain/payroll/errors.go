package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrCycleNotFound     = errors.New("payroll cycle not found")
	ErrPayslipNotFound   = errors.New("payslip not found")
	ErrDuplicateCycle    = errors.New("payroll cycle already exists for that month")
	ErrInvalidTransition = errors.New("invalid payroll cycle transition")
	ErrInvalidPeriod     = errors.New("month must be 1-12 and year 2000-2100")
	ErrInvalidSettings   = errors.New("invalid payroll settings")
	ErrUnsupportedFormat = errors.New("format must be csv or xlsx")
)

// StateError names the action and the status that refused it.
type StateError struct {
	Action  string
	Current string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a payroll cycle in status %s", e.Action, e.Current)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidTransition
}
