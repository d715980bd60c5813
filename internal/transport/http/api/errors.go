package api

import (
	"errors"
	"log/slog"
	"net/http"

	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/domain/employee"
	"payrollsuite/internal/domain/leave"
	"payrollsuite/internal/domain/payroll"
	"payrollsuite/internal/domain/tax"
)

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorTable = []mapping{
	{auth.ErrPINFormat, http.StatusBadRequest, "validation_error", ""},
	{payroll.ErrInvalidPeriod, http.StatusBadRequest, "validation_error", ""},
	{payroll.ErrInvalidSettings, http.StatusBadRequest, "validation_error", ""},
	{payroll.ErrUnsupportedFormat, http.StatusBadRequest, "validation_error", ""},
	{employee.ErrInvalidCompensation, http.StatusBadRequest, "validation_error", ""},
	{leave.ErrInvalidHalfDay, http.StatusBadRequest, "validation_error", ""},
	{leave.ErrDaysExceedRange, http.StatusBadRequest, "validation_error", ""},
	{leave.ErrNoEmployee, http.StatusBadRequest, "no_employee", ""},
	{tax.ErrInvalidFinancialYear, http.StatusBadRequest, "validation_error", ""},
	{tax.ErrNegativeAmount, http.StatusBadRequest, "validation_error", ""},
	{tax.ErrNoEmployee, http.StatusBadRequest, "no_employee", ""},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", ""},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "unauthorized", ""},
	{auth.ErrInvalidPIN, http.StatusUnauthorized, "invalid_pin", "Invalid PIN"},

	{auth.ErrPINSetupRequired, http.StatusForbidden, "pin_setup_required", ""},
	{auth.ErrForbidden, http.StatusForbidden, "forbidden", ""},
	{leave.ErrSelfApproval, http.StatusForbidden, "forbidden", ""},

	{auth.ErrUserNotFound, http.StatusNotFound, "user_not_found", ""},
	{auth.ErrTenantNotFound, http.StatusNotFound, "tenant_not_found", ""},
	{employee.ErrNotFound, http.StatusNotFound, "not_found", ""},
	{leave.ErrNotFound, http.StatusNotFound, "not_found", ""},
	{payroll.ErrCycleNotFound, http.StatusNotFound, "not_found", ""},
	{payroll.ErrPayslipNotFound, http.StatusNotFound, "not_found", ""},

	{auth.ErrPINAlreadySet, http.StatusConflict, "conflict", ""},
	{auth.ErrEmailInUse, http.StatusConflict, "conflict", ""},
	{payroll.ErrDuplicateCycle, http.StatusConflict, "conflict", ""},
	{employee.ErrDuplicateCode, http.StatusConflict, "conflict", ""},
	{employee.ErrDuplicateCompensation, http.StatusConflict, "conflict", ""},

	{payroll.ErrInvalidTransition, http.StatusBadRequest, "invalid_state", ""},
	{leave.ErrNotPending, http.StatusBadRequest, "invalid_state", ""},
}

// FromError writes the response for a domain error. Unknown errors are logged
// and answered with a generic 500.
func FromError(w http.ResponseWriter, err error, requestID string) {
	var tokenErr *auth.TokenError
	if errors.As(err, &tokenErr) {
		FailReason(w, http.StatusUnauthorized, "unauthorized", tokenErr.Reason, "authentication failed", requestID)
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			message := m.message
			if message == "" {
				message = err.Error()
			}
			Fail(w, m.status, m.code, message, requestID)
			return
		}
	}
	slog.Error("request failed", "requestId", requestID, "err", err)
	Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
}
