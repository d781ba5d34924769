package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/top242011/relife-app/internal/meeting"
)

// meetingsHandler groups meeting, attendance, agenda, and vote handlers.
type meetingsHandler struct {
	store *meeting.Store
}

func newMeetingsHandler(store *meeting.Store) *meetingsHandler {
	return &meetingsHandler{store: store}
}

// List handles GET /api/v1/meetings (public).
func (h *meetingsHandler) List(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.store.ListMeetings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list meetings")
		return
	}
	if meetings == nil {
		meetings = []*meeting.Meeting{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"meetings": meetings})
}

// Get handles GET /api/v1/meetings/{id} (public).
func (h *meetingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "meeting id must be a positive integer")
		return
	}

	m, err := h.store.GetMeeting(r.Context(), id)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "meeting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get meeting")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Create handles POST /api/v1/meetings (authenticated).
func (h *meetingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in meeting.CreateMeetingInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "title is required")
		return
	}
	if in.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "validation_error", "date is required")
		return
	}

	m, err := h.store.CreateMeeting(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create meeting")
		return
	}

	auditLog(r, "create", "meeting", strconv.FormatInt(m.ID, 10), "title", m.Title)

	writeJSON(w, http.StatusCreated, m)
}

// Update handles PUT /api/v1/meetings/{id} (authenticated).
func (h *meetingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "meeting id must be a positive integer")
		return
	}

	var in meeting.UpdateMeetingInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	m, err := h.store.UpdateMeeting(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "meeting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update meeting")
		return
	}

	auditLog(r, "update", "meeting", strconv.FormatInt(id, 10))

	writeJSON(w, http.StatusOK, m)
}

// Delete handles DELETE /api/v1/meetings/{id} (authenticated).
func (h *meetingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "meeting id must be a positive integer")
		return
	}

	if err := h.store.DeleteMeeting(r.Context(), id); err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "meeting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete meeting")
		return
	}

	auditLog(r, "delete", "meeting", strconv.FormatInt(id, 10))

	w.WriteHeader(http.StatusNoContent)
}

// ListAttendances handles GET /api/v1/meetings/{id}/attendances (public).
func (h *meetingsHandler) ListAttendances(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "meeting id must be a positive integer")
		return
	}

	attendances, err := h.store.ListAttendances(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list attendances")
		return
	}
	if attendances == nil {
		attendances = []*meeting.Attendance{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attendances": attendances})
}

// RecordAttendance handles POST /api/v1/meetings/{id}/attendances
// (authenticated). A duplicate (meeting, member) pair is a conflict.
func (h *meetingsHandler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "meeting id must be a positive integer")
		return
	}

	var in meeting.RecordAttendanceInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.MemberID < 1 {
		writeError(w, http.StatusBadRequest, "validation_error", "member_id is required")
		return
	}
	if !meeting.ValidAttendanceStatus(in.Status) {
		writeError(w, http.StatusBadRequest, "validation_error", "status must be one of present, absent, excused")
		return
	}

	a, err := h.store.RecordAttendance(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, meeting.ErrDuplicate) {
			writeError(w, http.StatusConflict, "conflict", "attendance already recorded for this member")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to record attendance")
		return
	}

	auditLog(r, "record_attendance", "meeting", strconv.FormatInt(id, 10),
		"member_id", in.MemberID, "status", in.Status)

	writeJSON(w, http.StatusCreated, a)
}

// updateAttendanceRequest is the JSON body for changing an attendance record.
type updateAttendanceRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note,omitempty"`
}

// UpdateAttendance handles PUT /api/v1/attendances/{id} (authenticated).
func (h *meetingsHandler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "attendance id must be a positive integer")
		return
	}

	var req updateAttendanceRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if !meeting.ValidAttendanceStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "validation_error", "status must be one of present, absent, excused")
		return
	}

	if err := h.store.UpdateAttendanceStatus(r.Context(), id, req.Status, req.Note); err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "attendance record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update attendance")
		return
	}

	auditLog(r, "update_attendance", "attendance", strconv.FormatInt(id, 10), "status", req.Status)

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAttendance handles DELETE /api/v1/attendances/{id} (authenticated).
func (h *meetingsHandler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "attendance id must be a positive integer")
		return
	}

	if err := h.store.DeleteAttendance(r.Context(), id); err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "attendance record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete attendance")
		return
	}

	auditLog(r, "delete_attendance", "attendance", strconv.FormatInt(id, 10))

	w.WriteHeader(http.StatusNoContent)
}

// ListAgendas handles GET /api/v1/meetings/{id}/agendas (public).
func (h *meetingsHandler) ListAgendas(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "meeting id must be a positive integer")
		return
	}

	agendas, err := h.store.ListAgendas(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list agendas")
		return
	}
	if agendas == nil {
		agendas = []*meeting.Agenda{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"agendas": agendas})
}

// CreateAgenda handles POST /api/v1/meetings/{id}/agendas (authenticated).
func (h *meetingsHandler) CreateAgenda(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "meeting id must be a positive integer")
		return
	}

	var in meeting.CreateAgendaInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "title is required")
		return
	}
	if in.Status != "" && !meeting.ValidAgendaStatus(in.Status) {
		writeError(w, http.StatusBadRequest, "validation_error", "status must be one of proposed, considering, passed, failed")
		return
	}

	a, err := h.store.CreateAgenda(r.Context(), id, in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create agenda")
		return
	}

	auditLog(r, "create", "agenda", strconv.FormatInt(a.ID, 10), "meeting_id", id)

	writeJSON(w, http.StatusCreated, a)
}

// GetAgenda handles GET /api/v1/agendas/{id} (public).
func (h *meetingsHandler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "agenda id must be a positive integer")
		return
	}

	a, err := h.store.GetAgenda(r.Context(), id)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "agenda not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get agenda")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// UpdateAgenda handles PUT /api/v1/agendas/{id} (authenticated).
func (h *meetingsHandler) UpdateAgenda(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "agenda id must be a positive integer")
		return
	}

	var in meeting.UpdateAgendaInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.Status != nil && !meeting.ValidAgendaStatus(*in.Status) {
		writeError(w, http.StatusBadRequest, "validation_error", "status must be one of proposed, considering, passed, failed")
		return
	}

	a, err := h.store.UpdateAgenda(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "agenda not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update agenda")
		return
	}

	auditLog(r, "update", "agenda", strconv.FormatInt(id, 10))

	writeJSON(w, http.StatusOK, a)
}

// DeleteAgenda handles DELETE /api/v1/agendas/{id} (authenticated).
func (h *meetingsHandler) DeleteAgenda(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "agenda id must be a positive integer")
		return
	}

	if err := h.store.DeleteAgenda(r.Context(), id); err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "agenda not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete agenda")
		return
	}

	auditLog(r, "delete", "agenda", strconv.FormatInt(id, 10))

	w.WriteHeader(http.StatusNoContent)
}

// ListVotes handles GET /api/v1/agendas/{id}/votes (public).
func (h *meetingsHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "agenda id must be a positive integer")
		return
	}

	votes, err := h.store.ListVotes(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list votes")
		return
	}
	if votes == nil {
		votes = []*meeting.Vote{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"votes": votes})
}

// CastVote handles POST /api/v1/agendas/{id}/votes (authenticated). A
// second vote by the same member on the same item is a conflict.
func (h *meetingsHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "agenda id must be a positive integer")
		return
	}

	var in meeting.CastVoteInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.MemberID < 1 {
		writeError(w, http.StatusBadRequest, "validation_error", "member_id is required")
		return
	}
	if !meeting.ValidVoteChoice(in.Choice) {
		writeError(w, http.StatusBadRequest, "validation_error", "choice must be one of agree, disagree, abstain, not_voted")
		return
	}

	v, err := h.store.CastVote(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, meeting.ErrDuplicate) {
			writeError(w, http.StatusConflict, "conflict", "this member has already voted on this item")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to cast vote")
		return
	}

	auditLog(r, "cast_vote", "agenda", strconv.FormatInt(id, 10),
		"member_id", in.MemberID, "choice", in.Choice)

	writeJSON(w, http.StatusCreated, v)
}

// updateVoteRequest is the JSON body for changing a recorded vote.
type updateVoteRequest struct {
	Choice string `json:"choice"`
}

// UpdateVote handles PUT /api/v1/votes/{id} (authenticated).
func (h *meetingsHandler) UpdateVote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "vote id must be a positive integer")
		return
	}

	var req updateVoteRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if !meeting.ValidVoteChoice(req.Choice) {
		writeError(w, http.StatusBadRequest, "validation_error", "choice must be one of agree, disagree, abstain, not_voted")
		return
	}

	if err := h.store.UpdateVote(r.Context(), id, req.Choice); err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "vote not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update vote")
		return
	}

	auditLog(r, "update_vote", "vote", strconv.FormatInt(id, 10), "choice", req.Choice)

	w.WriteHeader(http.StatusNoContent)
}

// DeleteVote handles DELETE /api/v1/votes/{id} (authenticated).
func (h *meetingsHandler) DeleteVote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "vote id must be a positive integer")
		return
	}

	if err := h.store.DeleteVote(r.Context(), id); err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "vote not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete vote")
		return
	}

	auditLog(r, "delete_vote", "vote", strconv.FormatInt(id, 10))

	w.WriteHeader(http.StatusNoContent)
}

// GetReport handles GET /api/v1/meetings/{id}/report (public).
func (h *meetingsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "meeting id must be a positive integer")
		return
	}

	rep, err := h.store.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get report")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// reportRequest is the JSON body for writing a meeting report.
type reportRequest struct {
	Content string `json:"content"`
}

// PutReport handles PUT /api/v1/meetings/{id}/report (authenticated).
// Creates the report if none exists, replaces it otherwise.
func (h *meetingsHandler) PutReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "meeting id must be a positive integer")
		return
	}

	var req reportRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "content is required")
		return
	}

	rep, err := h.store.UpsertReport(r.Context(), id, req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to save report")
		return
	}

	auditLog(r, "put_report", "meeting", strconv.FormatInt(id, 10))

	writeJSON(w, http.StatusOK, rep)
}
