package api

import (
	"log/slog"
	"net/http"

	"github.com/top242011/relife-app/internal/auth"
	"github.com/top242011/relife-app/internal/ratelimit"
)

// auditLog emits a structured audit log entry for a state-changing action.
// The acting identity is included when the request carries a session; public
// actions (registration) are logged without one.
func auditLog(r *http.Request, action string, resourceType string, resourceID string, detail ...any) {
	attrs := []any{
		"action", action,
		"resource_type", resourceType,
		"resource_id", resourceID,
		"ip", ratelimit.ClientIP(r),
		"request_id", RequestIDFromContext(r.Context()),
	}

	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		attrs = append(attrs, "actor_id", id.UserID, "actor_email", id.Email, "actor_role", id.Role)
	}

	attrs = append(attrs, detail...)
	slog.Info("audit", attrs...)
}
