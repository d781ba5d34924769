package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/top242011/relife-app/internal/directory"
)

// directoryHandler serves the four reference tables. The table is fixed per
// route group when the handler methods are mounted.
type directoryHandler struct {
	store *directory.Store
	table directory.Table
	label string
}

func newDirectoryHandler(store *directory.Store, table directory.Table, label string) *directoryHandler {
	return &directoryHandler{store: store, table: table, label: label}
}

// List handles GET /api/v1/{table} (public).
func (h *directoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context(), h.table)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list "+h.label)
		return
	}
	if entries == nil {
		entries = []*directory.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// Get handles GET /api/v1/{table}/{id} (public).
func (h *directoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}

	e, err := h.store.GetByID(r.Context(), h.table, id)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", h.label+" entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get "+h.label)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Create handles POST /api/v1/{table} (authenticated).
func (h *directoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in directory.CreateEntryInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}

	e, err := h.store.Create(r.Context(), h.table, in)
	if err != nil {
		if errors.Is(err, directory.ErrNameTaken) {
			writeError(w, http.StatusConflict, "conflict", "an entry with this name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create "+h.label)
		return
	}

	auditLog(r, "create", string(h.table), strconv.FormatInt(e.ID, 10), "name", e.Name)

	writeJSON(w, http.StatusCreated, e)
}

// Update handles PUT /api/v1/{table}/{id} (authenticated).
func (h *directoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}

	var in directory.UpdateEntryInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	e, err := h.store.Update(r.Context(), h.table, id, in)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", h.label+" entry not found")
		case errors.Is(err, directory.ErrNameTaken):
			writeError(w, http.StatusConflict, "conflict", "an entry with this name already exists")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to update "+h.label)
		}
		return
	}

	auditLog(r, "update", string(h.table), strconv.FormatInt(id, 10))

	writeJSON(w, http.StatusOK, e)
}

// Delete handles DELETE /api/v1/{table}/{id} (authenticated).
func (h *directoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}

	if err := h.store.Delete(r.Context(), h.table, id); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", h.label+" entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete "+h.label)
		return
	}

	auditLog(r, "delete", string(h.table), strconv.FormatInt(id, 10))

	w.WriteHeader(http.StatusNoContent)
}
