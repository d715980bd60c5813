package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/transport/http/api"
)

const secret = "test-secret"

type parser struct{}

func (parser) ParseSession(token string) (auth.UserContext, error) {
	claims, err := auth.ParseToken(secret, token)
	if err != nil {
		return auth.UserContext{}, err
	}
	return claims.UserContext(), nil
}

func sessionToken(t *testing.T, claims auth.Claims, ttl time.Duration) string {
	t.Helper()
	token, err := auth.GenerateToken(secret, claims, ttl)
	require.NoError(t, err)
	return token
}

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var env api.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAuthReadsCookieAndBearer(t *testing.T) {
	token := sessionToken(t, auth.Claims{UserID: "u1", TenantID: "t1", Email: "boss@example.com", Role: auth.RoleEmployee, PINVerified: true}, time.Hour)

	var seen auth.UserContext
	h := Auth(parser{}, []string{"BOSS@example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "u1", seen.UserID)
	assert.True(t, seen.Superadmin)

	seen = auth.UserContext{}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "t1", seen.TenantID)
}

func TestRequireAuthReportsReason(t *testing.T) {
	h := chain(noContent(), Auth(parser{}, nil), RequireAuth)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.ReasonMissing, envelope(t, rec).Reason)

	expired := sessionToken(t, auth.Claims{UserID: "u1", TenantID: "t1"}, -time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.ReasonExpired, envelope(t, rec).Reason)
}

func TestRequirePinVerifiedBlocksPendingSession(t *testing.T) {
	h := chain(noContent(), Auth(parser{}, nil), RequireAuth, RequirePinVerified)

	pending := sessionToken(t, auth.Claims{UserID: "u1", TenantID: "t1", PINVerified: false}, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	req.Header.Set("Authorization", "Bearer "+pending)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "pin_setup_required", envelope(t, rec).Error)

	full := sessionToken(t, auth.Claims{UserID: "u1", TenantID: "t1", PINVerified: true}, time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/employees", nil)
	req.Header.Set("Authorization", "Bearer "+full)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAnyCapability(t *testing.T) {
	h := RequireAnyCapability(auth.CapPayrollReadAll, auth.CapPayrollReadTotals)(noContent())
	cases := []struct {
		role string
		want int
	}{
		{auth.RoleHR, http.StatusNoContent},
		{auth.RoleDirector, http.StatusNoContent},
		{auth.RoleManager, http.StatusForbidden},
		{auth.RoleEmployee, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/payroll-cycles", nil)
		req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u", TenantID: "t", Role: tc.role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, tc.role)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payroll-cycles", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSuperadminBypassesCapabilities(t *testing.T) {
	h := RequireCapability(auth.CapAuditRead)(noContent())
	req := httptest.NewRequest(http.MethodGet, "/audit-logs", nil)
	req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u", TenantID: "t", Role: auth.RoleEmployee, Superadmin: true}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestIDPropagatesOrMints(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-request-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-request-1", seen)
	assert.Equal(t, "upstream-request-1", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Len(t, seen, 36)
}
