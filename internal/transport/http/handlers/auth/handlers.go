package authhandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"payrollsuite/internal/domain/audit"
	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/platform/metrics"
	"payrollsuite/internal/transport/http/api"
	"payrollsuite/internal/transport/http/middleware"
	"payrollsuite/internal/transport/http/shared"
)

// Service is the session and credential surface the handler drives.
type Service interface {
	HandleSSO(ctx context.Context, token string) (auth.SSOResult, error)
	SetupPIN(ctx context.Context, caller auth.UserContext, pin string) (auth.User, string, error)
	PINStatus(ctx context.Context, email string) (bool, error)
	LoginPIN(ctx context.Context, email, pin string) (auth.User, string, error)
}

type Handler struct {
	Service      Service
	Audit        audit.Recorder
	Metrics      *metrics.Collector
	SessionTTL   time.Duration
	SecureCookie bool
	// PINLimit throttles PIN login attempts; nil disables it.
	PINLimit func(http.Handler) http.Handler
}

func NewHandler(service Service, recorder audit.Recorder, collector *metrics.Collector, ttl time.Duration, secureCookie bool) *Handler {
	return &Handler{Service: service, Audit: recorder, Metrics: collector, SessionTTL: ttl, SecureCookie: secureCookie}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sso", h.HandleSSO)
	r.Get("/pin-status", h.HandlePINStatus)
	if h.PINLimit != nil {
		r.With(h.PINLimit).Post("/login-pin", h.HandleLoginPIN)
	} else {
		r.Post("/login-pin", h.HandleLoginPIN)
	}
	r.Post("/logout", h.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/session", h.HandleSession)
		r.Post("/setup-pin", h.HandleSetupPIN)
	})
}

type pinSetupRequest struct {
	PIN string `json:"pin" validate:"required"`
}

type pinLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	PIN   string `json:"pin" validate:"required"`
}

type sessionView struct {
	UserID      string `json:"userId"`
	TenantID    string `json:"tenantId"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	PayrollRole string `json:"payrollRole"`
	EmployeeID  string `json:"employeeId,omitempty"`
	PINVerified bool   `json:"pinVerified"`
	Superadmin  bool   `json:"superadmin"`
	Tier        string `json:"tier"`
}

func (h *Handler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) record(r *http.Request, user auth.User, action string, details map[string]any) {
	h.Audit.Log(r.Context(), audit.Entry{
		TenantID: user.OrgID, ActorID: user.ID, Action: action, EntityType: "user", EntityID: user.ID,
		RequestID: shared.GetRequestID(r), IP: middleware.ClientIP(r), Details: details,
	})
}

// HandleSSO is the HR portal entry point. Browsers are redirected; callers
// asking for format=json get the same decision as data.
func (h *Handler) HandleSSO(w http.ResponseWriter, r *http.Request) {
	requestID := shared.GetRequestID(r)
	result, err := h.Service.HandleSSO(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.Metrics.SSORejected()
		api.FromError(w, err, requestID)
		return
	}
	h.setSession(w, result.Token)
	h.record(r, result.User, audit.ActionSSOLogin, map[string]any{"provisioned": result.Provisioned, "needsPinSetup": result.NeedsPIN})

	if r.URL.Query().Get("format") == "json" {
		api.Success(w, result, requestID)
		return
	}
	http.Redirect(w, r, result.RedirectTo, http.StatusFound)
}

func (h *Handler) HandleSetupPIN(w http.ResponseWriter, r *http.Request) {
	requestID := shared.GetRequestID(r)
	caller, _ := middleware.GetUser(r.Context())
	var payload pinSetupRequest
	if !shared.DecodeAndValidate(w, r, &payload) {
		return
	}
	user, token, err := h.Service.SetupPIN(r.Context(), caller, payload.PIN)
	if err != nil {
		api.FromError(w, err, requestID)
		return
	}
	h.setSession(w, token)
	h.record(r, user, audit.ActionPINSetup, nil)
	api.Success(w, map[string]any{"token": token, "redirectTo": auth.RedirectFor(user)}, requestID)
}

func (h *Handler) HandlePINStatus(w http.ResponseWriter, r *http.Request) {
	requestID := shared.GetRequestID(r)
	email := r.URL.Query().Get("email")
	if email == "" {
		api.FailValidation(w, []api.FieldIssue{{Field: "email", Reason: "is required"}}, requestID)
		return
	}
	pinSet, err := h.Service.PINStatus(r.Context(), email)
	if err != nil {
		api.FromError(w, err, requestID)
		return
	}
	api.Success(w, map[string]bool{"pinSet": pinSet}, requestID)
}

func (h *Handler) HandleLoginPIN(w http.ResponseWriter, r *http.Request) {
	requestID := shared.GetRequestID(r)
	var payload pinLoginRequest
	if !shared.DecodeAndValidate(w, r, &payload) {
		return
	}
	user, token, err := h.Service.LoginPIN(r.Context(), payload.Email, payload.PIN)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPIN) || errors.Is(err, auth.ErrInvalidCredentials) {
			h.Metrics.PINFailure()
		}
		api.FromError(w, err, requestID)
		return
	}
	h.setSession(w, token)
	h.record(r, user, audit.ActionPINLogin, nil)
	api.Success(w, map[string]any{"token": token, "redirectTo": auth.RedirectFor(user)}, requestID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	api.Success(w, map[string]string{"status": "logged_out"}, shared.GetRequestID(r))
}

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, sessionView{
		UserID:      user.UserID,
		TenantID:    user.TenantID,
		Email:       user.Email,
		Role:        user.Role,
		PayrollRole: user.PayrollRole,
		EmployeeID:  user.EmployeeID,
		PINVerified: user.PINVerified,
		Superadmin:  user.Superadmin,
		Tier:        auth.ResolveTier(user).String(),
	}, shared.GetRequestID(r))
}
