package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getProfile(w, r)
	case http.MethodPut, http.MethodPatch:
		s.updateProfile(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch)
	}
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	profile := s.session.Profile()
	if profile == nil {
		writeError(w, http.StatusNotFound, "No profile loaded")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// updateProfile accepts a partial document of profile fields, e.g.
// {"displayName": "...", "preferences": {"theme": "dark"}}.
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var updates map[string]any
	if err := decodeJSON(w, r, &updates); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(updates) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := s.session.UpdateProfile(r.Context(), updates); err != nil {
		writeStoreError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Profile updated",
		"uid", s.session.Snapshot().UID)

	writeJSON(w, http.StatusOK, s.session.Profile())
}
