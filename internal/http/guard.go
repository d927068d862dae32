package http

import (
	"log/slog"
	"net/http"
)

// PublicPaths lists the API routes reachable without a session; every
// other /api route requires authentication.
var PublicPaths = []string{
	"/api/auth/login",
	"/api/auth/signup",
	"/api/auth/forgot-password",
	"/api/auth/reset-password",
}

// IsPublic reports whether a path is reachable without a session.
func IsPublic(path string) bool {
	for _, p := range PublicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// requireAuth rejects requests made without an established session and
// points the client at the login page. The session is initialized on
// first use so a restart restores a remembered sign-in before the first
// verdict.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.session == nil {
			writeError(w, http.StatusServiceUnavailable, "Identity provider not configured")
			return
		}
		if err := s.session.Init(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Session initialization failed", "error", err)
		}

		snap := s.session.Snapshot()
		if !snap.Authenticated {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    "Authentication required",
				"redirect": "/auth/login",
			})
			return
		}

		next(w, r)
	}
}
