package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SSOClaims are asserted by the HR portal.
type SSOClaims struct {
	OrgID       string   `json:"org_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	PayrollRole string   `json:"payroll_role,omitempty"`
	jwt.RegisteredClaims
}

type SSOConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// SSOProfile is the verified identity handed to the user store.
type SSOProfile struct {
	HRUserID    string
	OrgID       string
	TenantID    string
	Email       string
	Name        string
	Role        string
	PayrollRole string
}

func VerifySSOToken(cfg SSOConfig, tokenString string) (SSOProfile, error) {
	if strings.TrimSpace(tokenString) == "" {
		return SSOProfile{}, &TokenError{Reason: ReasonMissing}
	}
	claims := &SSOClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return SSOProfile{}, classify(err)
	}

	profile := SSOProfile{
		HRUserID:    strings.TrimSpace(claims.Subject),
		OrgID:       strings.TrimSpace(claims.OrgID),
		Email:       strings.ToLower(strings.TrimSpace(claims.Email)),
		Name:        strings.TrimSpace(claims.Name),
		Role:        DeriveRole(claims.Roles),
		PayrollRole: DerivePayrollRole(claims.PayrollRole, claims.Roles),
	}
	if profile.HRUserID == "" || profile.OrgID == "" || profile.Email == "" {
		return SSOProfile{}, &TokenError{Reason: ReasonMissingClaims}
	}
	if profile.Name == "" {
		profile.Name = profile.Email
	}
	return profile, nil
}

// RedirectFor picks the landing page after SSO.
func RedirectFor(u User) string {
	switch {
	case !u.HasPIN():
		return "/setup-pin"
	case u.PayrollRole == PayrollRoleAdmin:
		return "/dashboard"
	default:
		return "/employee-portal"
	}
}
