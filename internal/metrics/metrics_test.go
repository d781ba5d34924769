package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandlerSummary(t *testing.T) {
	m := New()

	m.IncAuthSuccess("login")
	m.IncAuthSuccess("login")
	m.IncAuthFailure("bad_password")
	m.IncRegistration()
	m.IncRegistrationDecision("approved")
	m.IncRegistrationDecision("approved")
	m.IncRegistrationDecision("rejected")
	m.IncRateLimitRejection("register")
	m.RegisterSessionGauge(func() int { return 3 })
	m.RegisterDBPoolCollector(func() (int32, int32, int32) { return 10, 7, 3 })

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var sum Summary
	if err := json.NewDecoder(w.Body).Decode(&sum); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}

	if sum.Auth.Successes != 2 {
		t.Errorf("auth successes = %v, want 2", sum.Auth.Successes)
	}
	if sum.Auth.Failures != 1 {
		t.Errorf("auth failures = %v, want 1", sum.Auth.Failures)
	}
	if sum.Registrations.Submitted != 1 {
		t.Errorf("registrations submitted = %v, want 1", sum.Registrations.Submitted)
	}
	if sum.Registrations.Approved != 2 {
		t.Errorf("registrations approved = %v, want 2", sum.Registrations.Approved)
	}
	if sum.Registrations.Rejected != 1 {
		t.Errorf("registrations rejected = %v, want 1", sum.Registrations.Rejected)
	}
	if sum.RateLimit.Rejections != 1 {
		t.Errorf("ratelimit rejections = %v, want 1", sum.RateLimit.Rejections)
	}
	if sum.Sessions.Active != 3 {
		t.Errorf("active sessions = %v, want 3", sum.Sessions.Active)
	}
	if sum.DB.TotalConns != 10 || sum.DB.IdleConns != 7 || sum.DB.AcquiredConns != 3 {
		t.Errorf("db pool = %+v, want 10/7/3", sum.DB)
	}
	if sum.Server.StartTime == 0 {
		t.Error("server start time should be set")
	}
}

func TestHTTPCountersAndErrorRate(t *testing.T) {
	m := New()

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/members", "200").Add(3)
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/auth/login", "401").Inc()

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, r)

	var sum Summary
	if err := json.NewDecoder(w.Body).Decode(&sum); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if sum.HTTP.TotalRequests != 4 {
		t.Errorf("total requests = %v, want 4", sum.HTTP.TotalRequests)
	}
	if sum.HTTP.ErrorRate != 0.25 {
		t.Errorf("error rate = %v, want 0.25", sum.HTTP.ErrorRate)
	}
}
