package middleware

import (
	"net/http"
	"os"
	"strings"
)

// allowedOrigins is the comma-separated CORS_ORIGINS list. Empty means any
// origin is reflected back, which suits the mobile apps and local dashboard
// development.
func allowedOrigins() map[string]bool {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return nil
	}
	out := make(map[string]bool)
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out[o] = true
		}
	}
	return out
}

// EnableCORS reflects the request origin when it is allowed and answers
// preflight requests.
func EnableCORS(next http.Handler) http.Handler {
	allowed := allowedOrigins()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowed == nil || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
