package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/top242011/relife-app/internal/member"
)

// AssignmentStore is the member-relation surface the handlers need.
// *member.AssignmentStore implements it.
type AssignmentStore interface {
	Add(ctx context.Context, kind member.Kind, in member.AddAssignmentInput) (int64, error)
	Remove(ctx context.Context, kind member.Kind, memberID, targetID int64) error
	ListForMember(ctx context.Context, kind member.Kind, memberID int64) ([]*member.Assignment, error)
	AddRole(ctx context.Context, in member.AddRoleInput) (*member.RoleAssignment, error)
	UpdateRole(ctx context.Context, id int64, in member.UpdateRoleInput) (*member.RoleAssignment, error)
	RemoveRoleByID(ctx context.Context, id int64) error
	RemoveRole(ctx context.Context, memberID int64, role string) error
	ListRoles(ctx context.Context, memberID int64) ([]*member.RoleAssignment, error)
}

// assignmentsHandler groups the member-relation HTTP handlers. The three
// foreign-key relations share one set of handlers parameterized by kind;
// party roles have their own because the target is an enum, not a row.
type assignmentsHandler struct {
	store AssignmentStore
}

func newAssignmentsHandler(store AssignmentStore) *assignmentsHandler {
	return &assignmentsHandler{store: store}
}

// assignmentKind maps the URL segment to a relation kind.
func assignmentKind(r *http.Request) (member.Kind, bool) {
	k := member.Kind(chi.URLParam(r, "kind"))
	switch k {
	case "positions":
		return member.KindPosition, true
	case "departments":
		return member.KindDepartment, true
	case "committees":
		return member.KindCommittee, true
	}
	return "", false
}

// List handles GET /api/v1/members/{id}/{kind} (public).
func (h *assignmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	memberID, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "member id must be a positive integer")
		return
	}
	kind, ok := assignmentKind(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown assignment kind")
		return
	}

	assignments, err := h.store.ListForMember(r.Context(), kind, memberID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list assignments")
		return
	}
	if assignments == nil {
		assignments = []*member.Assignment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assignments": assignments})
}

// Add handles POST /api/v1/members/{id}/{kind} (authenticated).
func (h *assignmentsHandler) Add(w http.ResponseWriter, r *http.Request) {
	memberID, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "member id must be a positive integer")
		return
	}
	kind, ok := assignmentKind(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown assignment kind")
		return
	}

	var in member.AddAssignmentInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.TargetID < 1 {
		writeError(w, http.StatusBadRequest, "validation_error", "target_id is required")
		return
	}
	in.MemberID = memberID

	id, err := h.store.Add(r.Context(), kind, in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to add assignment")
		return
	}

	auditLog(r, "add_assignment", string(kind), strconv.FormatInt(id, 10),
		"member_id", memberID, "target_id", in.TargetID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// Remove handles DELETE /api/v1/members/{id}/{kind}/{targetID}
// (authenticated). Every matching (member, target) row is removed.
func (h *assignmentsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	memberID, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "member id must be a positive integer")
		return
	}
	kind, ok := assignmentKind(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown assignment kind")
		return
	}
	targetID, ok := parseID(r, "targetID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "target id must be a positive integer")
		return
	}

	if err := h.store.Remove(r.Context(), kind, memberID, targetID); err != nil {
		if errors.Is(err, member.ErrAssignmentNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "assignment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to remove assignment")
		return
	}

	auditLog(r, "remove_assignment", string(kind), strconv.FormatInt(targetID, 10), "member_id", memberID)

	w.WriteHeader(http.StatusNoContent)
}

// ListRoles handles GET /api/v1/members/{id}/roles (public).
func (h *assignmentsHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	memberID, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "member id must be a positive integer")
		return
	}

	roles, err := h.store.ListRoles(r.Context(), memberID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list roles")
		return
	}
	if roles == nil {
		roles = []*member.RoleAssignment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"roles": roles})
}

// AddRole handles POST /api/v1/members/{id}/roles (authenticated).
func (h *assignmentsHandler) AddRole(w http.ResponseWriter, r *http.Request) {
	memberID, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "member id must be a positive integer")
		return
	}

	var in member.AddRoleInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if !member.ValidRole(in.Role) {
		writeError(w, http.StatusBadRequest, "validation_error", "role must be one of council_member, committee_member, regular_member")
		return
	}
	in.MemberID = memberID

	role, err := h.store.AddRole(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to add role")
		return
	}

	auditLog(r, "add_role", "member_role", strconv.FormatInt(role.ID, 10),
		"member_id", memberID, "role", in.Role)

	writeJSON(w, http.StatusCreated, role)
}

// UpdateRole handles PUT /api/v1/member-roles/{id} (authenticated).
func (h *assignmentsHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "role assignment id must be a positive integer")
		return
	}

	var in member.UpdateRoleInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if in.Role != nil && !member.ValidRole(*in.Role) {
		writeError(w, http.StatusBadRequest, "validation_error", "role must be one of council_member, committee_member, regular_member")
		return
	}

	role, err := h.store.UpdateRole(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, member.ErrAssignmentNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "role assignment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update role")
		return
	}

	auditLog(r, "update_role", "member_role", strconv.FormatInt(id, 10))

	writeJSON(w, http.StatusOK, role)
}

// RemoveRoleByID handles DELETE /api/v1/member-roles/{id} (authenticated).
func (h *assignmentsHandler) RemoveRoleByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "role assignment id must be a positive integer")
		return
	}

	if err := h.store.RemoveRoleByID(r.Context(), id); err != nil {
		if errors.Is(err, member.ErrAssignmentNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "role assignment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to remove role")
		return
	}

	auditLog(r, "remove_role", "member_role", strconv.FormatInt(id, 10))

	w.WriteHeader(http.StatusNoContent)
}

// RemoveRole handles DELETE /api/v1/members/{id}/roles/{role}
// (authenticated). Every row linking the member to the role is removed.
func (h *assignmentsHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	memberID, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id", "member id must be a positive integer")
		return
	}
	role := chi.URLParam(r, "role")
	if !member.ValidRole(role) {
		writeError(w, http.StatusBadRequest, "validation_error", "unknown role")
		return
	}

	if err := h.store.RemoveRole(r.Context(), memberID, role); err != nil {
		if errors.Is(err, member.ErrAssignmentNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "role assignment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to remove role")
		return
	}

	auditLog(r, "remove_role", "member_role", role, "member_id", memberID)

	w.WriteHeader(http.StatusNoContent)
}
