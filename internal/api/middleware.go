package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/NeroQue/course-marketplace-backend/pkg/token"
)

// EnableCORS adds CORS headers so frontend can talk to the API
func (s *Server) EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// allow all origins for now - should probably restrict this later
		w.Header().Set("Access-Control-Allow-Origin", "*")

		// allow the HTTP methods we use
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		// Authorization needed for the bearer token
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// handle preflight requests from browser
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		// pass request along to actual handler
		next.ServeHTTP(w, r)
	})
}

// Authenticate verifies the bearer token and stores its claims on the
// request context for handlers to pick up
func (s *Server) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeAuthError(w, http.StatusUnauthorized, "Authorization token required")
			return
		}

		claims, err := s.Tokens.Parse(raw)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next(w, r.WithContext(token.NewContext(r.Context(), claims)))
	}
}

// RequireRole authenticates and then checks the caller's role.
// Authenticated users with the wrong role get a 403, not a 401.
func (s *Server) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return s.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := token.FromContext(r.Context())
		if !ok || claims.Role != role {
			writeAuthError(w, http.StatusForbidden, "Forbidden: you do not have permission to perform this action")
			return
		}
		next(w, r)
	})
}

// bearerToken pulls the token out of the Authorization header
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// writeAuthError sends the standard error body without pulling the
// handlers package into the middleware
func writeAuthError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
