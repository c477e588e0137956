package api

import (
	"net/http"
	"strings"
)

// BearerAuth validates a static bearer token against the configured set.
// Token issuance and user resolution live outside this system; an empty
// token set disables the check (demo mode).
func BearerAuth(tokens []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		allowed[t] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "missing Authorization header",
				})
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || !allowed[parts[1]] {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "invalid bearer token",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
