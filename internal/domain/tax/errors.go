package tax

import "errors"

var (
	ErrInvalidFinancialYear = errors.New("financial year must look like 2024-25")
	ErrNegativeAmount       = errors.New("declared amounts cannot be negative")
	ErrNoEmployee           = errors.New("no employee record is linked to this account")
)
