package auth

import "time"

type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	OrgID       string     `json:"orgId"`
	HRUserID    string     `json:"hrUserId,omitempty"`
	Role        string     `json:"role"`
	PayrollRole string     `json:"payrollRole"`
	PINHash     string     `json:"-"`
	PINSetAt    *time.Time `json:"pinSetAt,omitempty"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (u User) HasPIN() bool {
	return u.PINHash != ""
}

// UserContext is the authenticated caller, passed explicitly into services.
type UserContext struct {
	UserID      string
	TenantID    string
	Email       string
	Role        string
	PayrollRole string
	EmployeeID  string
	PINVerified bool
	Superadmin  bool
}

// SSOResult is what the SSO entry point hands back to the transport layer.
type SSOResult struct {
	User        User   `json:"user"`
	Token       string `json:"token"`
	NeedsPIN    bool   `json:"needsPinSetup"`
	RedirectTo  string `json:"redirectTo"`
	Provisioned string `json:"provisioned"`
}

// Provisioning outcomes of an SSO upsert.
const (
	ProvisionCreated = "created"
	ProvisionUpdated = "updated"
	ProvisionLinked  = "linked"
)
