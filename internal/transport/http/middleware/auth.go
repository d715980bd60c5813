package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/transport/http/api"
)

const SessionCookie = "session"

// SessionParser turns a session token into the caller it names.
type SessionParser interface {
	ParseSession(token string) (auth.UserContext, error)
}

// SessionToken reads the session cookie, falling back to a bearer header.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// Auth attaches the caller when a valid session is presented. A rejected
// token is remembered so RequireAuth can report its reason.
func Auth(sessions SessionParser, adminEmails []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := sessions.ParseSession(token)
			if err != nil {
				var tokenErr *auth.TokenError
				if !errors.As(err, &tokenErr) {
					tokenErr = &auth.TokenError{Reason: auth.ReasonMalformed, Err: err}
				}
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyTokenErr, tokenErr)))
				return
			}
			user.Superadmin = auth.IsSuperadmin(user.Email, adminEmails)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			reason := auth.ReasonMissing
			if tokenErr := tokenError(r.Context()); tokenErr != nil {
				reason = tokenErr.Reason
			}
			api.FailReason(w, http.StatusUnauthorized, "unauthorized", reason, "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePinVerified blocks pending sessions that have not set up a PIN yet.
func RequirePinVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			api.FailReason(w, http.StatusUnauthorized, "unauthorized", auth.ReasonMissing, "authentication required", GetRequestID(r.Context()))
			return
		}
		if !user.PINVerified {
			api.FromError(w, auth.ErrPINSetupRequired, GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
