package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/top242011/relife-app/internal/member"
)

// membersHandler groups member roster HTTP handlers.
type membersHandler struct {
	store *member.Store
}

func newMembersHandler(store *member.Store) *membersHandler {
	return &membersHandler{store: store}
}

// parseID extracts a positive int64 path parameter.
func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// List handles GET /api/v1/members (public). With open_data=true only
// members who opted into disclosure are returned.
func (h *membersHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		members []*member.Member
		err     error
	)
	if r.URL.Query().Get("open_data") == "true" {
		members, err = h.store.ListOpenData(r.Context())
	} else {
		members, err = h.store.List(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list members")
		return
	}
	if members == nil {
		members = []*member.Member{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

// Get handles GET /api/v1/members/{id} (public).
func (h *membersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "member id must be a positive integer")
		return
	}

	m, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "member not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get member")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Create handles POST /api/v1/members (authenticated).
func (h *membersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in member.CreateMemberInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.FirstName == "" || in.LastName == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "first_name and last_name are required")
		return
	}

	m, err := h.store.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, member.ErrDuplicate) {
			writeError(w, http.StatusConflict, "conflict", "a member with this student id or email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create member")
		return
	}

	auditLog(r, "create", "member", strconv.FormatInt(m.ID, 10))

	writeJSON(w, http.StatusCreated, m)
}

// Update handles PUT /api/v1/members/{id} (authenticated).
func (h *membersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "member id must be a positive integer")
		return
	}

	var in member.UpdateMemberInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	m, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, member.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "member not found")
		case errors.Is(err, member.ErrDuplicate):
			writeError(w, http.StatusConflict, "conflict", "a member with this student id or email already exists")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to update member")
		}
		return
	}

	auditLog(r, "update", "member", strconv.FormatInt(id, 10))

	writeJSON(w, http.StatusOK, m)
}

// Delete handles DELETE /api/v1/members/{id} (authenticated).
func (h *membersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "member id must be a positive integer")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, member.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "member not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete member")
		return
	}

	auditLog(r, "delete", "member", strconv.FormatInt(id, 10))

	w.WriteHeader(http.StatusNoContent)
}
