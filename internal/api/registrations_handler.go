package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/top242011/relife-app/internal/auth"
	"github.com/top242011/relife-app/internal/metrics"
)

// registrationsHandler groups the admin review endpoints.
type registrationsHandler struct {
	svc     *auth.Service
	metrics *metrics.Metrics
}

func newRegistrationsHandler(svc *auth.Service, m *metrics.Metrics) *registrationsHandler {
	return &registrationsHandler{svc: svc, metrics: m}
}

// List handles GET /api/v1/admin/registrations (admin).
func (h *registrationsHandler) List(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.AllRegistrations(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"registrations": reqs})
}

// ListPending handles GET /api/v1/admin/registrations/pending (admin).
func (h *registrationsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.PendingRegistrations(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"registrations": reqs})
}

// Approve handles POST /api/v1/admin/registrations/{id}/approve (admin).
func (h *registrationsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_id", "registration id is required")
		return
	}

	reviewer, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	cred, err := h.svc.ApproveRegistration(r.Context(), id, reviewer)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.metrics.IncRegistrationDecision("approved")
	auditLog(r, "approve", "registration_request", id, "new_user_id", cred.ID)

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": cred})
}

// rejectRequest is the JSON body for rejecting a registration.
type rejectRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// Reject handles POST /api/v1/admin/registrations/{id}/reject (admin).
func (h *registrationsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_id", "registration id is required")
		return
	}

	reviewer, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req rejectRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
			return
		}
	}

	if err := h.svc.RejectRegistration(r.Context(), id, reviewer, req.Reason); err != nil {
		writeAppError(w, err)
		return
	}

	h.metrics.IncRegistrationDecision("rejected")
	auditLog(r, "reject", "registration_request", id)

	w.WriteHeader(http.StatusNoContent)
}
