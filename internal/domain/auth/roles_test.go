package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePayrollRole(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		roles    []string
		want     string
	}{
		{name: "explicit admin wins", explicit: "payroll_admin", roles: []string{"employee"}, want: PayrollRoleAdmin},
		{name: "explicit employee wins", explicit: "PAYROLL_EMPLOYEE", roles: []string{"CEO"}, want: PayrollRoleEmployee},
		{name: "ceo", roles: []string{"CEO"}, want: PayrollRoleAdmin},
		{name: "hr mixed case", roles: []string{"employee", "Hr"}, want: PayrollRoleAdmin},
		{name: "admin", roles: []string{"admin"}, want: PayrollRoleAdmin},
		{name: "director is not payroll admin", roles: []string{"director"}, want: PayrollRoleEmployee},
		{name: "unknown explicit ignored", explicit: "root", roles: []string{"manager"}, want: PayrollRoleEmployee},
		{name: "no roles", want: PayrollRoleEmployee},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DerivePayrollRole(tc.explicit, tc.roles))
		})
	}
}

func TestDeriveRole(t *testing.T) {
	assert.Equal(t, RoleOwner, DeriveRole([]string{"employee", "OWNER", "hr"}))
	assert.Equal(t, RoleHR, DeriveRole([]string{"ceo", "hr"}))
	assert.Equal(t, RoleDirector, DeriveRole([]string{" Director ", "manager"}))
	assert.Equal(t, RoleEmployee, DeriveRole([]string{"intern"}))
	assert.Equal(t, RoleEmployee, DeriveRole(nil))
}
