package authhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrollsuite/internal/domain/audit"
	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/platform/metrics"
	"payrollsuite/internal/transport/http/middleware"
)

type fakeService struct {
	ssoResult auth.SSOResult
	ssoErr    error
	loginErr  error
	pinSet    bool
}

func (f *fakeService) HandleSSO(_ context.Context, token string) (auth.SSOResult, error) {
	if token == "" {
		return auth.SSOResult{}, &auth.TokenError{Reason: auth.ReasonMissing}
	}
	return f.ssoResult, f.ssoErr
}

func (f *fakeService) SetupPIN(_ context.Context, caller auth.UserContext, pin string) (auth.User, string, error) {
	if pin == "12" {
		return auth.User{}, "", auth.ErrPINFormat
	}
	return auth.User{ID: caller.UserID, OrgID: caller.TenantID, PINHash: "x", PayrollRole: auth.PayrollRoleEmployee}, "full-token", nil
}

func (f *fakeService) PINStatus(context.Context, string) (bool, error) {
	return f.pinSet, nil
}

func (f *fakeService) LoginPIN(_ context.Context, email, _ string) (auth.User, string, error) {
	if f.loginErr != nil {
		return auth.User{}, "", f.loginErr
	}
	return auth.User{ID: "u1", Email: email, OrgID: "t1", PINHash: "x", PayrollRole: auth.PayrollRoleAdmin}, "login-token", nil
}

type recorder struct{ entries []audit.Entry }

func (r *recorder) Log(_ context.Context, e audit.Entry) { r.entries = append(r.entries, e) }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Reason  string          `json:"reason"`
}

func setup(svc *fakeService) (*chi.Mux, *recorder, *metrics.Collector) {
	rec := &recorder{}
	collector := metrics.New()
	h := NewHandler(svc, rec, collector, time.Hour, true)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Test-User") != "" {
				req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{
					UserID: req.Header.Get("X-Test-User"), TenantID: "t1", Email: "a@example.com",
					Role: auth.RoleEmployee, PayrollRole: auth.PayrollRoleEmployee,
				}))
			}
			next.ServeHTTP(w, req)
		})
	})
	h.RegisterRoutes(r)
	return r, rec, collector
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestSSORedirectsAndSetsCookie(t *testing.T) {
	svc := &fakeService{ssoResult: auth.SSOResult{
		User: auth.User{ID: "u1", OrgID: "t1"}, Token: "pending-token", NeedsPIN: true, RedirectTo: "/setup-pin", Provisioned: auth.ProvisionCreated,
	}}
	r, rec, _ := setup(svc)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sso?token=abc", nil))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/setup-pin", rr.Header().Get("Location"))
	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)
	assert.Equal(t, "pending-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.ActionSSOLogin, rec.entries[0].Action)
	assert.Equal(t, "t1", rec.entries[0].TenantID)
}

func TestSSOJSONFormat(t *testing.T) {
	svc := &fakeService{ssoResult: auth.SSOResult{User: auth.User{ID: "u1", OrgID: "t1"}, Token: "tok", RedirectTo: "/dashboard"}}
	r, _, _ := setup(svc)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sso?token=abc&format=json", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	env := decode(t, rr)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"redirectTo":"/dashboard"`)
}

func TestSSORejectionCountsAndReportsReason(t *testing.T) {
	r, rec, collector := setup(&fakeService{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sso", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, auth.ReasonMissing, decode(t, rr).Reason)
	assert.Empty(t, rec.entries)
	assert.EqualValues(t, 1, collector.Snapshot()["ssoRejectedTotal"])
}

func TestLoginPIN(t *testing.T) {
	r, rec, _ := setup(&fakeService{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login-pin", strings.NewReader(`{"email":"a@example.com","pin":"123456"}`)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"redirectTo":"/dashboard"`)
	require.NotNil(t, sessionCookie(rr))
	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.ActionPINLogin, rec.entries[0].Action)
}

func TestLoginPINWrongPIN(t *testing.T) {
	r, _, collector := setup(&fakeService{loginErr: auth.ErrInvalidPIN})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login-pin", strings.NewReader(`{"email":"a@example.com","pin":"0000"}`)))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid_pin", decode(t, rr).Error)
	assert.EqualValues(t, 1, collector.Snapshot()["pinFailuresTotal"])
}

func TestLoginPINValidation(t *testing.T) {
	r, _, _ := setup(&fakeService{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login-pin", strings.NewReader(`{"email":"not-an-email"}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decode(t, rr).Error)
}

func TestPINStatus(t *testing.T) {
	r, _, _ := setup(&fakeService{pinSet: true})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pin-status?email=a@example.com", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"pinSet":true}`, string(decode(t, rr).Data))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pin-status", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSetupPINRequiresSession(t *testing.T) {
	r, _, _ := setup(&fakeService{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/setup-pin", strings.NewReader(`{"pin":"123456"}`)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSetupPIN(t *testing.T) {
	r, rec, _ := setup(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/setup-pin", strings.NewReader(`{"pin":"123456"}`))
	req.Header.Set("X-Test-User", "u1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "full-token", sessionCookie(rr).Value)
	assert.Contains(t, rr.Body.String(), `"redirectTo":"/employee-portal"`)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.ActionPINSetup, rec.entries[0].Action)

	req = httptest.NewRequest(http.MethodPost, "/setup-pin", strings.NewReader(`{"pin":"12"}`))
	req.Header.Set("X-Test-User", "u1")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionAndLogout(t *testing.T) {
	r, _, _ := setup(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("X-Test-User", "u1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"tier":"self"`)
	assert.Contains(t, rr.Body.String(), `"pinVerified":false`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)
	assert.Equal(t, "", cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}
