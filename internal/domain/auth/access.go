package auth

import "strings"

// Tier is the payroll visibility granted to a caller.
type Tier int

const (
	TierNone Tier = iota
	// TierSelf sees only records that belong to the caller.
	TierSelf
	// TierAggregate sees counts, sums and averages, never a per-employee figure.
	TierAggregate
	// TierFull sees every record including compensation, bank and tax IDs.
	TierFull
)

func (t Tier) String() string {
	switch t {
	case TierSelf:
		return "self"
	case TierAggregate:
		return "aggregate"
	case TierFull:
		return "full"
	default:
		return "none"
	}
}

func ResolveTier(u UserContext) Tier {
	switch {
	case u.UserID == "" || u.TenantID == "":
		return TierNone
	case u.Can(CapPayrollReadAll):
		return TierFull
	case u.Can(CapPayrollReadTotals):
		return TierAggregate
	case u.Can(CapPayslipReadOwn):
		return TierSelf
	default:
		return TierNone
	}
}

// Owns reports whether a record owned by employeeID/email belongs to the caller.
func (u UserContext) Owns(employeeID, email string) bool {
	if employeeID != "" && u.EmployeeID != "" && employeeID == u.EmployeeID {
		return true
	}
	return email != "" && u.Email != "" && strings.EqualFold(email, u.Email)
}

// IsSuperadmin matches email against the configured allowlist.
func IsSuperadmin(email string, allowlist []string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, candidate := range allowlist {
		if strings.EqualFold(strings.TrimSpace(candidate), email) {
			return true
		}
	}
	return false
}
