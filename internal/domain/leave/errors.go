package leave

import "errors"

var (
	ErrNotFound        = errors.New("leave request not found")
	ErrNotPending      = errors.New("leave request is not pending")
	ErrInvalidHalfDay  = errors.New("invalid half-day range")
	ErrNoEmployee      = errors.New("no employee record is linked to this account")
	ErrSelfApproval    = errors.New("cannot decide your own leave request")
	ErrDaysExceedRange = errors.New("days exceed the requested date range")
)

// StateError reports a decision attempted on a request that is no longer pending.
type StateError struct {
	Current string
}

func (e *StateError) Error() string {
	return "leave request is " + e.Current
}

func (e *StateError) Unwrap() error {
	return ErrNotPending
}
