package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"classified conflict", New(KindConflict, "email already in use"), KindConflict},
		{"classified not found", New(KindNotFound, "registration request not found"), KindNotFound},
		{"wrapped further up", fmt.Errorf("handling request: %w", New(KindForbidden, "admin access required")), KindForbidden},
		{"plain error", errors.New("connection refused"), KindInternal},
		{"nil cause internal", Internal(nil, "storage failure"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageOf_DoesNotLeakCause(t *testing.T) {
	cause := errors.New("pq: password authentication failed for user")
	err := Internal(cause, "failed to load registrations")

	if got := MessageOf(err); got != "failed to load registrations" {
		t.Errorf("MessageOf() = %q, want the client-safe message", got)
	}

	if got := MessageOf(cause); got != "internal server error" {
		t.Errorf("MessageOf(unclassified) = %q, want generic message", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("no rows in result set")
	err := Wrap(cause, KindNotFound, "member not found")

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if !Is(err, KindNotFound) {
		t.Error("expected Is(err, KindNotFound) to be true")
	}
	if Is(err, KindConflict) {
		t.Error("expected Is(err, KindConflict) to be false")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindBadRequest, "bad_request"},
		{KindUnauthorized, "unauthorized"},
		{KindForbidden, "forbidden"},
		{KindNotFound, "not_found"},
		{KindConflict, "conflict"},
		{KindInternal, "internal_error"},
		{KindUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
