package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/top242011/relife-app/internal/session"
)

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithCookie(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	return r
}

func TestLoadIdentity_AttachesIdentity(t *testing.T) {
	sessions := session.NewMemoryStore()
	sessions.Put("tok", session.Identity{UserID: "u1", Email: "a@x.com", Role: "user"})

	var got session.Identity
	var ok bool
	handler := LoadIdentity(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = IdentityFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), requestWithCookie("tok"))

	if !ok {
		t.Fatal("expected identity in context")
	}
	if got.UserID != "u1" {
		t.Errorf("unexpected identity: %+v", got)
	}
}

func TestLoadIdentity_UnknownTokenLeavesContextEmpty(t *testing.T) {
	sessions := session.NewMemoryStore()

	var ok bool
	handler := LoadIdentity(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = IdentityFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), requestWithCookie("stale"))
	if ok {
		t.Error("expected no identity for unknown token")
	}
}

func TestRequireUser(t *testing.T) {
	sessions := session.NewMemoryStore()
	sessions.Put("tok", session.Identity{UserID: "u1", Role: "user"})

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantHit    bool
	}{
		{"valid session", "tok", http.StatusOK, true},
		{"missing cookie", "", http.StatusUnauthorized, false},
		{"revoked token", "gone", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hit bool
			handler := LoadIdentity(sessions)(RequireUser(okHandler(&hit)))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWithCookie(tt.token))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if hit != tt.wantHit {
				t.Errorf("handler hit = %v, want %v", hit, tt.wantHit)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	sessions := session.NewMemoryStore()
	sessions.Put("admin-tok", session.Identity{UserID: "u1", Role: "admin"})
	sessions.Put("user-tok", session.Identity{UserID: "u2", Role: "user"})

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{"admin allowed", "admin-tok", http.StatusOK, ""},
		{"user forbidden", "user-tok", http.StatusForbidden, "forbidden"},
		{"anonymous unauthorized", "", http.StatusUnauthorized, "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hit bool
			handler := LoadIdentity(sessions)(RequireAdmin(okHandler(&hit)))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWithCookie(tt.token))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				var body errorResponse
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decoding error body: %v", err)
				}
				if body.Error.Code != tt.wantCode {
					t.Errorf("error code = %q, want %q", body.Error.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestRevokedSessionIsRejectedOnNextRequest(t *testing.T) {
	sessions := session.NewMemoryStore()
	sessions.Put("tok", session.Identity{UserID: "u1", Role: "user"})

	var hit bool
	handler := LoadIdentity(sessions)(RequireUser(okHandler(&hit)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithCookie("tok"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	sessions.Delete("tok")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithCookie("tok"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("resolution must re-run per request, got %d", rec.Code)
	}
}

func TestSetAndClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok123", false)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "tok123" {
		t.Errorf("unexpected cookie %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Error("cookie must be SameSite=Lax")
	}
	if c.Path != "/" {
		t.Errorf("cookie path = %q, want /", c.Path)
	}
	if c.MaxAge != 30*24*60*60 {
		t.Errorf("cookie max-age = %d, want 30 days", c.MaxAge)
	}
	if c.Secure {
		t.Error("Secure must be off outside production")
	}

	rec = httptest.NewRecorder()
	SetSessionCookie(rec, "tok123", true)
	if !rec.Result().Cookies()[0].Secure {
		t.Error("Secure must be on in production")
	}

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, false)
	c = rec.Result().Cookies()[0]
	if c.Value != "" || c.MaxAge >= 0 {
		t.Errorf("clear cookie should expire immediately, got value=%q maxage=%d", c.Value, c.MaxAge)
	}
}

func TestGenerateSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		tok, err := GenerateSessionToken()
		if err != nil {
			t.Fatalf("GenerateSessionToken error: %v", err)
		}
		if len(tok) != 64 {
			t.Fatalf("expected 64 hex chars, got %d", len(tok))
		}
		if seen[tok] {
			t.Fatal("duplicate token generated")
		}
		seen[tok] = true
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@x.com", "first.last@example.ac.th", "x+tag@sub.example.com"}
	invalid := []string{"", "plain", "@x.com", "a@", "A B <a@x.com>", "a@x.com, b@y.com"}

	for _, e := range valid {
		if !validEmail(e) {
			t.Errorf("validEmail(%q) = false, want true", e)
		}
	}
	for _, e := range invalid {
		if validEmail(e) {
			t.Errorf("validEmail(%q) = true, want false", e)
		}
	}
}
