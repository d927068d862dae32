package http

import (
	"log/slog"
	"net/http"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)

	page, err := s.stores.List(r.Context(), opts)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Listed expenses",
		"page", page.CurrentPage,
		"page_size", opts.PageSize,
		"total_items", page.TotalItems)

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var exp core.Expense
	if err := decodeJSON(w, r, &exp); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp.ID = ""
	exp.Date = sanitizeInput(exp.Date)

	if err := exp.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.stores.Create(r.Context(), exp)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	expensesCreated.Inc()
	s.dashCache.Purge()

	slog.InfoContext(r.Context(), "Expense created",
		"expense_id", id, "date", exp.Date)

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/expenses/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing expense id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updateExpense(w, r, id)
	case http.MethodDelete:
		s.deleteExpense(w, r, id)
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request, id string) {
	var exp core.Expense
	if err := decodeJSON(w, r, &exp); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp.ID = id
	exp.Date = sanitizeInput(exp.Date)

	if err := exp.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.stores.Update(r.Context(), exp); err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.dashCache.Purge()

	slog.InfoContext(r.Context(), "Expense updated", "expense_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.stores.Delete(r.Context(), core.Expense{ID: id}); err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.dashCache.Purge()

	slog.InfoContext(r.Context(), "Expense deleted", "expense_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleExpenseSeed imports raw spreadsheet rows synchronously.
func (s *Server) handleExpenseSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var rows []store.SeedRow
	if err := decodeJSON(w, r, &rows); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusBadRequest, "No rows to import")
		return
	}

	imported, err := s.stores.SeedBulk(r.Context(), rows)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.dashCache.Purge()

	slog.InfoContext(r.Context(), "Seed import completed",
		"row_count", len(rows), "imported", imported)

	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// handleExpenseImport queues raw rows for the background worker.
func (s *Server) handleExpenseImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "Import queue not configured")
		return
	}

	var rows []store.SeedRow
	if err := decodeJSON(w, r, &rows); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusBadRequest, "No rows to import")
		return
	}

	if err := s.publisher.PublishImport(r.Context(), rows); err != nil {
		slog.ErrorContext(r.Context(), "Failed to queue import", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Import queue unavailable")
		return
	}

	importRowsQueued.Add(float64(len(rows)))

	slog.InfoContext(r.Context(), "Import queued", "row_count", len(rows))
	writeJSON(w, http.StatusAccepted, map[string]int{"queued": len(rows)})
}
