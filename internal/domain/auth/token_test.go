package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSSOSecret     = "sso-secret"
	testSessionSecret = "session-secret"
)

var testSSO = SSOConfig{Secret: testSSOSecret, Issuer: "hr-app", Audience: "payroll-app"}

func signSSO(t *testing.T, secret string, method jwt.SigningMethod, mutate func(*SSOClaims)) string {
	t.Helper()
	claims := SSOClaims{
		OrgID: "org-1",
		Email: "Ann@Example.com",
		Name:  "Ann",
		Roles: []string{"HR"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "hr-42",
			Issuer:    "hr-app",
			Audience:  jwt.ClaimStrings{"payroll-app"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if mutate != nil {
		mutate(&claims)
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	var tokenErr *TokenError
	require.True(t, errors.As(err, &tokenErr), "expected TokenError, got %v", err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	return tokenErr.Reason
}

func TestVerifySSOToken(t *testing.T) {
	profile, err := VerifySSOToken(testSSO, signSSO(t, testSSOSecret, jwt.SigningMethodHS256, nil))
	require.NoError(t, err)
	assert.Equal(t, "hr-42", profile.HRUserID)
	assert.Equal(t, "org-1", profile.OrgID)
	assert.Equal(t, "ann@example.com", profile.Email)
	assert.Equal(t, RoleHR, profile.Role)
	assert.Equal(t, PayrollRoleAdmin, profile.PayrollRole)
}

func TestVerifySSOTokenRejections(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  string
	}{
		{name: "empty", token: func(t *testing.T) string { return "" }, want: ReasonMissing},
		{name: "garbage", token: func(t *testing.T) string { return "not.a.jwt" }, want: ReasonMalformed},
		{
			name: "expired",
			token: func(t *testing.T) string {
				return signSSO(t, testSSOSecret, jwt.SigningMethodHS256, func(c *SSOClaims) {
					c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
				})
			},
			want: ReasonExpired,
		},
		{
			name:  "wrong secret",
			token: func(t *testing.T) string { return signSSO(t, "other", jwt.SigningMethodHS256, nil) },
			want:  ReasonInvalidSignature,
		},
		{
			name:  "wrong algorithm",
			token: func(t *testing.T) string { return signSSO(t, testSSOSecret, jwt.SigningMethodHS512, nil) },
			want:  ReasonInvalidSignature,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				return signSSO(t, testSSOSecret, jwt.SigningMethodHS256, func(c *SSOClaims) { c.Issuer = "evil" })
			},
			want: ReasonInvalidIssuer,
		},
		{
			name: "wrong audience",
			token: func(t *testing.T) string {
				return signSSO(t, testSSOSecret, jwt.SigningMethodHS256, func(c *SSOClaims) {
					c.Audience = jwt.ClaimStrings{"other-app"}
				})
			},
			want: ReasonInvalidAudience,
		},
		{
			name: "missing subject",
			token: func(t *testing.T) string {
				return signSSO(t, testSSOSecret, jwt.SigningMethodHS256, func(c *SSOClaims) { c.Subject = "" })
			},
			want: ReasonMissingClaims,
		},
		{
			name: "missing org",
			token: func(t *testing.T) string {
				return signSSO(t, testSSOSecret, jwt.SigningMethodHS256, func(c *SSOClaims) { c.OrgID = "" })
			},
			want: ReasonMissingClaims,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := VerifySSOToken(testSSO, tc.token(t))
			require.Error(t, err)
			assert.Equal(t, tc.want, reasonOf(t, err))
		})
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSessionSecret, Claims{
		UserID: "u1", TenantID: "t1", Email: "ann@example.com", Role: RoleHR,
		PayrollRole: PayrollRoleAdmin, PINVerified: true,
	}, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSessionSecret, token)
	require.NoError(t, err)
	u := claims.UserContext()
	assert.Equal(t, "u1", u.UserID)
	assert.Equal(t, "t1", u.TenantID)
	assert.True(t, u.PINVerified)

	_, err = ParseToken("wrong", token)
	assert.Equal(t, ReasonInvalidSignature, reasonOf(t, err))

	expired, err := GenerateToken(testSessionSecret, Claims{UserID: "u1", TenantID: "t1"}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSessionSecret, expired)
	assert.Equal(t, ReasonExpired, reasonOf(t, err))
}
