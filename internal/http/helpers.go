package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"rentledger/internal/log"
	"rentledger/internal/store"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFieldErrors reports per-field validation messages.
func writeFieldErrors(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":  "Validation failed",
		"fields": fields,
	})
}

// writeStoreError maps a store failure onto the API surface. Lost
// connectivity sends clients to the offline page.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Store operation failed",
		"error", err, "path", r.URL.Path, "method", r.Method)

	if store.IsConnectivity(err) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":    "The service is unreachable. You appear to be offline.",
			"redirect": "/offline",
		})
		return
	}
	if store.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// parseListOptions reads pagination, sort and search query parameters.
func parseListOptions(r *http.Request) store.ListOptions {
	q := r.URL.Query()
	opts := store.ListOptions{
		SortField:     strings.TrimSpace(q.Get("sortField")),
		SortDirection: strings.TrimSpace(q.Get("sortDirection")),
		SearchTerm:    strings.TrimSpace(q.Get("search")),
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Page = n
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.PageSize = n
		}
	}
	return opts.Normalize()
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// pathID extracts the trailing document ID of a subtree route like
// /api/expenses/{id}. Empty for nested segments.
func pathID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
