package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v3"
)

// Logger is the access log, written on the process logger in ECS layout.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		Level:         slog.LevelInfo,
		Schema:        httplog.SchemaECS,
		RecoverPanics: true,
		Skip: func(r *http.Request, respStatus int) bool {
			return r.URL.Path == "/healthz" || r.URL.Path == "/readyz"
		},
	})
}

// LogCaller adds the request and caller ids to the access log entry.
func LogCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attrs := []slog.Attr{slog.String("requestId", GetRequestID(r.Context()))}
		if user, ok := GetUser(r.Context()); ok {
			attrs = append(attrs, slog.String("userId", user.UserID), slog.String("tenantId", user.TenantID))
		}
		httplog.SetAttrs(r.Context(), attrs...)
		next.ServeHTTP(w, r)
	})
}
