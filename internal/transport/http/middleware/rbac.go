package middleware

import (
	"net/http"

	"payrollsuite/internal/transport/http/api"
)

func RequireCapability(capability string) func(http.Handler) http.Handler {
	return RequireAnyCapability(capability)
}

// RequireAnyCapability admits callers holding at least one of capabilities.
func RequireAnyCapability(capabilities ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			for _, c := range capabilities {
				if user.Can(c) {
					next.ServeHTTP(w, r)
					return
				}
			}
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
		})
	}
}
