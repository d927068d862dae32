package http

import (
	"log/slog"
	"net/http"

	"rentledger/internal/core"
)

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTypes(w, r)
	case http.MethodPost:
		s.createType(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.stores.ListTypes(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) createType(w http.ResponseWriter, r *http.Request) {
	var t core.AdditionalExpenseType
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = ""
	t.Name = sanitizeInput(t.Name)
	t.Description = sanitizeInput(t.Description)

	if err := t.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.stores.CreateType(r.Context(), t)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense type created", "type_id", id, "name", t.Name)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleTypeByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/expense-types/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing type id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updateType(w, r, id)
	case http.MethodDelete:
		s.deleteType(w, r, id)
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) updateType(w http.ResponseWriter, r *http.Request, id string) {
	var t core.AdditionalExpenseType
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = id
	t.Name = sanitizeInput(t.Name)
	t.Description = sanitizeInput(t.Description)

	if err := t.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.stores.UpdateType(r.Context(), t); err != nil {
		writeStoreError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense type updated", "type_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) deleteType(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.stores.DeleteType(r.Context(), core.AdditionalExpenseType{ID: id}); err != nil {
		writeStoreError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense type deleted", "type_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleTypeSeed creates the default categories when none exist yet.
func (s *Server) handleTypeSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	seeded, err := s.stores.SeedDefaultTypes(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Default expense types seeded", "seeded", seeded)
	writeJSON(w, http.StatusOK, map[string]int{"seeded": seeded})
}
