package auth

import "strings"

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleDirector = "director"
	RoleCEO      = "ceo"
	RoleAdmin    = "admin"
	RoleOwner    = "owner"

	PayrollRoleAdmin    = "payroll_admin"
	PayrollRoleEmployee = "payroll_employee"
)

// rolePrecedence orders roles from most to least privileged.
var rolePrecedence = []string{RoleOwner, RoleAdmin, RoleHR, RoleCEO, RoleDirector, RoleManager, RoleEmployee}

func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func IsKnownRole(role string) bool {
	role = NormalizeRole(role)
	for _, known := range rolePrecedence {
		if known == role {
			return true
		}
	}
	return false
}

// DeriveRole picks the most privileged known role from the HR portal's list.
func DeriveRole(hrRoles []string) string {
	asserted := map[string]bool{}
	for _, r := range hrRoles {
		asserted[NormalizeRole(r)] = true
	}
	for _, role := range rolePrecedence {
		if asserted[role] {
			return role
		}
	}
	return RoleEmployee
}

// DerivePayrollRole keeps an explicit assertion, otherwise CEO, Admin and HR
// map to payroll_admin and everything else to payroll_employee.
func DerivePayrollRole(explicit string, hrRoles []string) string {
	switch explicit = NormalizeRole(explicit); explicit {
	case PayrollRoleAdmin, PayrollRoleEmployee:
		return explicit
	}
	for _, r := range hrRoles {
		switch NormalizeRole(r) {
		case RoleCEO, RoleAdmin, RoleHR:
			return PayrollRoleAdmin
		}
	}
	return PayrollRoleEmployee
}
