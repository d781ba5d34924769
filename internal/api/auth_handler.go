package api

import (
	"net/http"

	"github.com/top242011/relife-app/internal/auth"
	"github.com/top242011/relife-app/internal/metrics"
)

// authHandler groups registration and session HTTP handlers.
type authHandler struct {
	svc        *auth.Service
	metrics    *metrics.Metrics
	production bool
}

func newAuthHandler(svc *auth.Service, m *metrics.Metrics, production bool) *authHandler {
	return &authHandler{svc: svc, metrics: m, production: production}
}

// Register handles POST /api/v1/auth/register (public).
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	req, err := h.svc.Register(r.Context(), in)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.metrics.IncRegistration()
	auditLog(r, "register", "registration_request", req.ID, "email", req.Email)

	writeJSON(w, http.StatusCreated, req)
}

// loginRequest is the JSON body for logging in.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login (public). On success it sets the
// session cookie; the identity is returned in the body.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	token, identity, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.IncAuthFailure("login")
		writeAppError(w, err)
		return
	}

	h.metrics.IncAuthSuccess("login")
	auth.SetSessionCookie(w, token, h.production)
	auditLog(r, "login", "user", identity.UserID)

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": identity})
}

// Logout handles POST /api/v1/auth/logout (authenticated). Revokes the
// session and clears the cookie.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.ReadSessionToken(r); token != "" {
		h.svc.Logout(token)
	}
	auth.ClearSessionCookie(w, h.production)

	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		auditLog(r, "logout", "user", id.UserID)
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me (authenticated).
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": identity})
}

// RegistrationStatus handles GET /api/v1/auth/registration-status (public).
// The body is null when no request exists for the email.
func (h *authHandler) RegistrationStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "email query parameter is required")
		return
	}

	status, err := h.svc.CheckRegistrationStatus(r.Context(), email)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
