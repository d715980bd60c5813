package employee

import "errors"

var (
	ErrNotFound              = errors.New("employee not found")
	ErrDuplicateCode         = errors.New("employee code already exists")
	ErrDuplicateCompensation = errors.New("compensation already exists for that effective date")
	ErrInvalidCompensation   = errors.New("basic, hra and special allowance must not exceed ctc")
)
