package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/top242011/relife-app/internal/meeting"
)

// regulationsHandler groups draft-regulation HTTP handlers.
type regulationsHandler struct {
	store *meeting.Store
}

func newRegulationsHandler(store *meeting.Store) *regulationsHandler {
	return &regulationsHandler{store: store}
}

// List handles GET /api/v1/draft-regulations (public).
func (h *regulationsHandler) List(w http.ResponseWriter, r *http.Request) {
	regs, err := h.store.ListRegulations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list regulations")
		return
	}
	if regs == nil {
		regs = []*meeting.DraftRegulation{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"regulations": regs})
}

// Get handles GET /api/v1/draft-regulations/{id} (public).
func (h *regulationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "regulation id must be a positive integer")
		return
	}

	reg, err := h.store.GetRegulation(r.Context(), id)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "regulation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get regulation")
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Create handles POST /api/v1/draft-regulations (authenticated).
func (h *regulationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in meeting.CreateRegulationInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.Title == "" || in.Content == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "title and content are required")
		return
	}
	if !meeting.ValidProposedAt(in.ProposedAt) {
		writeError(w, http.StatusBadRequest, "validation_error", "proposed_at is not a known origin")
		return
	}

	reg, err := h.store.CreateRegulation(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create regulation")
		return
	}

	auditLog(r, "create", "draft_regulation", strconv.FormatInt(reg.ID, 10), "title", reg.Title)

	writeJSON(w, http.StatusCreated, reg)
}

// Update handles PUT /api/v1/draft-regulations/{id} (authenticated).
func (h *regulationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "regulation id must be a positive integer")
		return
	}

	var in meeting.UpdateRegulationInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.ProposedAt != nil && !meeting.ValidProposedAt(*in.ProposedAt) {
		writeError(w, http.StatusBadRequest, "validation_error", "proposed_at is not a known origin")
		return
	}
	if in.Status != nil && !meeting.ValidRegulationStatus(*in.Status) {
		writeError(w, http.StatusBadRequest, "validation_error", "status must be one of draft, proposed, passed, rejected")
		return
	}

	reg, err := h.store.UpdateRegulation(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "regulation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update regulation")
		return
	}

	auditLog(r, "update", "draft_regulation", strconv.FormatInt(id, 10))

	writeJSON(w, http.StatusOK, reg)
}

// Delete handles DELETE /api/v1/draft-regulations/{id} (authenticated).
func (h *regulationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "regulation id must be a positive integer")
		return
	}

	if err := h.store.DeleteRegulation(r.Context(), id); err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "regulation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete regulation")
		return
	}

	auditLog(r, "delete", "draft_regulation", strconv.FormatInt(id, 10))

	w.WriteHeader(http.StatusNoContent)
}
