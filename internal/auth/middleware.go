package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// Middleware rejects requests without a valid "Authorization: Bearer <key>"
// header. A missing or malformed header gets 401, a wrong key gets 403.
func (km *KeyManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			deny(w, http.StatusUnauthorized, "Unauthorized: missing bearer token")
			return
		}
		if !km.Validate(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))) {
			deny(w, http.StatusForbidden, "Forbidden: invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
