package auth

const (
	CapEmployeeRead          = "EMPLOYEE_READ"
	CapEmployeeReadSensitive = "EMPLOYEE_READ_SENSITIVE"
	CapEmployeeWrite         = "EMPLOYEE_WRITE"
	CapCompensationWrite     = "COMPENSATION_WRITE"
	CapPayrollReadAll        = "PAYROLL_READ_ALL"
	CapPayrollReadTotals     = "PAYROLL_READ_TOTALS"
	CapPayrollCreate         = "PAYROLL_CREATE"
	CapPayrollSubmit         = "PAYROLL_SUBMIT"
	CapPayrollApprove        = "PAYROLL_APPROVE"
	CapPayrollProcess        = "PAYROLL_PROCESS"
	CapPayrollSettingsWrite  = "PAYROLL_SETTINGS_WRITE"
	CapPayslipReadOwn        = "PAYSLIP_READ_OWN"
	CapLeaveRequestOwn       = "LEAVE_REQUEST_OWN"
	CapLeaveApprove          = "LEAVE_APPROVE"
	CapAttendanceReadOwn     = "ATTENDANCE_READ_OWN"
	CapTaxDeclarationOwn     = "TAX_DECLARATION_OWN"
	CapReportsExport         = "REPORTS_EXPORT"
	CapAuditRead             = "AUDIT_READ"
)

var AllCapabilities = []string{
	CapEmployeeRead,
	CapEmployeeReadSensitive,
	CapEmployeeWrite,
	CapCompensationWrite,
	CapPayrollReadAll,
	CapPayrollReadTotals,
	CapPayrollCreate,
	CapPayrollSubmit,
	CapPayrollApprove,
	CapPayrollProcess,
	CapPayrollSettingsWrite,
	CapPayslipReadOwn,
	CapLeaveRequestOwn,
	CapLeaveApprove,
	CapAttendanceReadOwn,
	CapTaxDeclarationOwn,
	CapReportsExport,
	CapAuditRead,
}

var selfService = []string{
	CapPayslipReadOwn,
	CapLeaveRequestOwn,
	CapAttendanceReadOwn,
	CapTaxDeclarationOwn,
}

var RoleCapabilities = map[string][]string{
	RoleEmployee: selfService,
	RoleManager:  append([]string{CapEmployeeRead, CapLeaveApprove}, selfService...),
	RoleDirector: append([]string{CapEmployeeRead, CapPayrollReadTotals}, selfService...),
	RoleCEO:      append([]string{CapEmployeeRead, CapPayrollReadTotals}, selfService...),
	RoleHR:       AllCapabilities,
	RoleAdmin:    AllCapabilities,
	RoleOwner:    AllCapabilities,
}

// Can reports whether the user holds capability. Allowlisted superadmins hold
// every capability.
func (u UserContext) Can(capability string) bool {
	if u.Superadmin {
		return true
	}
	for _, c := range RoleCapabilities[NormalizeRole(u.Role)] {
		if c == capability {
			return true
		}
	}
	return false
}
