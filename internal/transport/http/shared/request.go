package shared

import (
	"net/http"
	"strconv"
	"strings"

	"payrollsuite/internal/requestctx"
)

func GetRequestID(r *http.Request) string {
	return requestctx.GetRequestID(r.Context())
}

// QueryInt parses an integer query parameter. Missing values yield fallback;
// malformed ones report ok=false.
func QueryInt(r *http.Request, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
