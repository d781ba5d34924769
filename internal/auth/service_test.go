package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/top242011/relife-app/internal/apperr"
	"github.com/top242011/relife-app/internal/session"
	"github.com/top242011/relife-app/internal/user"
)

// fakeAccounts is an in-memory AccountStore mirroring the transactional
// semantics of the real store. The mutex stands in for the row lock the
// real store takes with SELECT FOR UPDATE: each method is atomic, so a
// concurrent approval observes either pending or the final status, never
// a half-applied one.
type fakeAccounts struct {
	mu            sync.Mutex
	credentials   map[string]*user.Credential          // by email
	registrations map[string]*user.RegistrationRequest // by id
	nextID        int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		credentials:   make(map[string]*user.Credential),
		registrations: make(map[string]*user.RegistrationRequest),
	}
}

func (f *fakeAccounts) GetCredentialByEmail(_ context.Context, email string) (*user.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.credentials[email]; ok {
		return c, nil
	}
	return nil, user.ErrNotFound
}

func (f *fakeAccounts) CreateRegistration(_ context.Context, in user.CreateRegistrationInput) (*user.RegistrationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.registrations {
		if r.Email == in.Email {
			return nil, user.ErrEmailTaken
		}
	}
	f.nextID++
	r := &user.RegistrationRequest{
		ID:           fmt.Sprintf("req-%d", f.nextID),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		StudentID:    in.StudentID,
		Status:       user.StatusPending,
	}
	f.registrations[r.ID] = r
	return r, nil
}

func (f *fakeAccounts) GetRegistrationByEmail(_ context.Context, email string) (*user.RegistrationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.registrations {
		if r.Email == email {
			return r, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeAccounts) ListRegistrations(_ context.Context, pendingOnly bool) ([]*user.RegistrationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*user.RegistrationRequest
	for _, r := range f.registrations {
		if !pendingOnly || r.Status == user.StatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAccounts) DeleteRegistration(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.registrations, id)
	return nil
}

func (f *fakeAccounts) ApproveRegistration(_ context.Context, requestID, reviewerID string) (*user.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.registrations[requestID]
	if !ok {
		return nil, user.ErrNotFound
	}
	if r.Status != user.StatusPending {
		return nil, user.ErrNotPending
	}
	if _, exists := f.credentials[r.Email]; exists {
		return nil, user.ErrEmailTaken
	}
	f.nextID++
	c := &user.Credential{
		ID:           fmt.Sprintf("cred-%d", f.nextID),
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		Role:         user.RoleUser,
		Active:       true,
	}
	f.credentials[c.Email] = c
	r.Status = user.StatusApproved
	r.ReviewedBy = &reviewerID
	return c, nil
}

func (f *fakeAccounts) RejectRegistration(_ context.Context, requestID, reviewerID string, reason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.registrations[requestID]
	if !ok {
		return user.ErrNotFound
	}
	if r.Status != user.StatusPending {
		return user.ErrNotPending
	}
	r.Status = user.StatusRejected
	r.ReviewedBy = &reviewerID
	r.RejectionReason = reason
	return nil
}

func newTestService() (*Service, *fakeAccounts, *session.MemoryStore) {
	accounts := newFakeAccounts()
	sessions := session.NewMemoryStore()
	return NewService(accounts, sessions), accounts, sessions
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}

// --- Register ---

func TestRegister_CreatesPendingRequest(t *testing.T) {
	svc, accounts, _ := newTestService()

	req, err := svc.Register(context.Background(), RegisterInput{
		Email:    "a@x.com",
		Password: "password1",
		Name:     "A A",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if req.Status != user.StatusPending {
		t.Errorf("expected pending status, got %q", req.Status)
	}
	if req.PasswordHash == "password1" {
		t.Error("password must be stored hashed")
	}
	if len(accounts.registrations) != 1 {
		t.Errorf("expected 1 registration, got %d", len(accounts.registrations))
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"malformed email", RegisterInput{Email: "not-an-email", Password: "password1", Name: "A"}},
		{"short password", RegisterInput{Email: "a@x.com", Password: "short", Name: "A"}},
		{"missing name", RegisterInput{Email: "a@x.com", Password: "password1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, accounts, _ := newTestService()
			_, err := svc.Register(context.Background(), tt.in)
			if !apperr.Is(err, apperr.KindBadRequest) {
				t.Errorf("expected bad request, got %v", err)
			}
			if len(accounts.registrations) != 0 {
				t.Error("validation failure must not insert a row")
			}
		})
	}
}

func TestRegister_ConflictOnExistingCredential(t *testing.T) {
	svc, accounts, _ := newTestService()
	accounts.credentials["a@x.com"] = &user.Credential{ID: "c1", Email: "a@x.com", Active: true}

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "password1", Name: "A"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
	if len(accounts.registrations) != 0 {
		t.Error("conflict must not insert a row")
	}
}

func TestRegister_ConflictOnPendingRequest(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "password1", Name: "A"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "password2", Name: "A"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict for pending request, got %v", err)
	}
}

func TestRegister_RejectedEmailCanReapply(t *testing.T) {
	svc, accounts, _ := newTestService()
	ctx := context.Background()
	admin := session.Identity{UserID: "admin-1", Role: "admin"}

	req, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "password1", Name: "A"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.RejectRegistration(ctx, req.ID, admin, nil); err != nil {
		t.Fatal(err)
	}

	again, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "password1", Name: "A"})
	if err != nil {
		t.Fatalf("re-application after rejection should succeed: %v", err)
	}
	if again.Status != user.StatusPending {
		t.Errorf("expected fresh pending request, got %q", again.Status)
	}
	if len(accounts.registrations) != 1 {
		t.Errorf("rejected row should be replaced, have %d rows", len(accounts.registrations))
	}
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	svc, accounts, sessions := newTestService()
	accounts.credentials["a@x.com"] = &user.Credential{
		ID: "c1", Email: "a@x.com", Name: "A A", Role: user.RoleUser,
		Active: true, PasswordHash: mustHash(t, "password1"),
	}

	token, id, err := svc.Login(context.Background(), "a@x.com", "password1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if id.UserID != "c1" || id.Email != "a@x.com" || id.Role != user.RoleUser {
		t.Errorf("unexpected identity: %+v", id)
	}

	stored, ok := sessions.Get(token)
	if !ok {
		t.Fatal("session not recorded in store")
	}
	if stored != id {
		t.Errorf("stored identity %+v differs from returned %+v", stored, id)
	}
}

func TestLogin_SameMessageForUnknownEmailAndWrongPassword(t *testing.T) {
	svc, accounts, _ := newTestService()
	accounts.credentials["a@x.com"] = &user.Credential{
		ID: "c1", Email: "a@x.com", Active: true, PasswordHash: mustHash(t, "password1"),
	}
	ctx := context.Background()

	_, _, unknownErr := svc.Login(ctx, "nobody@x.com", "password1")
	_, _, wrongErr := svc.Login(ctx, "a@x.com", "wrongpass1")

	if !apperr.Is(unknownErr, apperr.KindUnauthorized) || !apperr.Is(wrongErr, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for both, got %v / %v", unknownErr, wrongErr)
	}
	if apperr.MessageOf(unknownErr) != apperr.MessageOf(wrongErr) {
		t.Errorf("messages differ: %q vs %q (email-existence oracle)",
			apperr.MessageOf(unknownErr), apperr.MessageOf(wrongErr))
	}
}

func TestLogin_InactiveAccountIsForbidden(t *testing.T) {
	svc, accounts, _ := newTestService()
	accounts.credentials["a@x.com"] = &user.Credential{
		ID: "c1", Email: "a@x.com", Active: false, PasswordHash: mustHash(t, "password1"),
	}

	_, _, err := svc.Login(context.Background(), "a@x.com", "password1")
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("expected forbidden for inactive account, got %v", err)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	svc, accounts, sessions := newTestService()
	accounts.credentials["a@x.com"] = &user.Credential{
		ID: "c1", Email: "a@x.com", Active: true, PasswordHash: mustHash(t, "password1"),
	}

	token, _, err := svc.Login(context.Background(), "a@x.com", "password1")
	if err != nil {
		t.Fatal(err)
	}

	svc.Logout(token)
	if _, ok := sessions.Get(token); ok {
		t.Error("expected session to be revoked")
	}
}

// --- Registration review ---

func TestApproveRegistration_CreatesUserCredential(t *testing.T) {
	svc, accounts, _ := newTestService()
	ctx := context.Background()
	admin := session.Identity{UserID: "admin-1", Role: "admin"}

	req, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "password1", Name: "A A"})
	if err != nil {
		t.Fatal(err)
	}

	cred, err := svc.ApproveRegistration(ctx, req.ID, admin)
	if err != nil {
		t.Fatalf("ApproveRegistration failed: %v", err)
	}
	if cred.Role != user.RoleUser || !cred.Active {
		t.Errorf("expected active user credential, got role=%q active=%v", cred.Role, cred.Active)
	}
	if accounts.registrations[req.ID].Status != user.StatusApproved {
		t.Errorf("request not marked approved: %q", accounts.registrations[req.ID].Status)
	}
	if got := accounts.registrations[req.ID].ReviewedBy; got == nil || *got != "admin-1" {
		t.Error("reviewer not stamped")
	}

	// End to end: the approved applicant can now log in.
	_, id, err := svc.Login(ctx, "a@x.com", "password1")
	if err != nil {
		t.Fatalf("login after approval failed: %v", err)
	}
	if id.Role != user.RoleUser {
		t.Errorf("expected role user, got %q", id.Role)
	}
}

func TestApproveRegistration_RepeatedApprovalIsBadRequest(t *testing.T) {
	svc, accounts, _ := newTestService()
	ctx := context.Background()
	admin := session.Identity{UserID: "admin-1", Role: "admin"}

	req, _ := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "password1", Name: "A"})
	if _, err := svc.ApproveRegistration(ctx, req.ID, admin); err != nil {
		t.Fatal(err)
	}

	_, err := svc.ApproveRegistration(ctx, req.ID, admin)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("expected bad request on re-approval, got %v", err)
	}
	if len(accounts.credentials) != 1 {
		t.Errorf("expected exactly one credential, got %d", len(accounts.credentials))
	}
}

// Two approvals of the same request racing each other must produce exactly
// one credential. Against Postgres the SELECT FOR UPDATE row lock in the
// store serializes the pair; here the fake's per-method atomicity plays
// that part, and the loser surfaces as BadRequest (no longer pending) or
// Conflict (email already has a credential).
func TestApproveRegistration_ConcurrentApprovalsCreateOneCredential(t *testing.T) {
	svc, accounts, _ := newTestService()
	ctx := context.Background()

	req, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "password1", Name: "A"})
	if err != nil {
		t.Fatal(err)
	}

	const approvers = 8
	errs := make([]error, approvers)
	var wg sync.WaitGroup
	for i := 0; i < approvers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reviewer := session.Identity{UserID: fmt.Sprintf("admin-%d", i), Role: "admin"}
			_, errs[i] = svc.ApproveRegistration(ctx, req.ID, reviewer)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperr.Is(err, apperr.KindBadRequest), apperr.Is(err, apperr.KindConflict):
		default:
			t.Errorf("unexpected error from losing approval: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly one approval to win, got %d", successes)
	}
	if len(accounts.credentials) != 1 {
		t.Errorf("expected exactly one credential, got %d", len(accounts.credentials))
	}
	if accounts.registrations[req.ID].Status != user.StatusApproved {
		t.Errorf("request not marked approved: %q", accounts.registrations[req.ID].Status)
	}
}

func TestApproveRegistration_UnknownIDIsNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.ApproveRegistration(context.Background(), "missing", session.Identity{UserID: "admin-1"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRejectRegistration_StoresReasonAndCreatesNoCredential(t *testing.T) {
	svc, accounts, _ := newTestService()
	ctx := context.Background()
	admin := session.Identity{UserID: "admin-1", Role: "admin"}

	req, _ := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "password1", Name: "A"})
	reason := "incomplete student id"
	if err := svc.RejectRegistration(ctx, req.ID, admin, &reason); err != nil {
		t.Fatalf("RejectRegistration failed: %v", err)
	}

	r := accounts.registrations[req.ID]
	if r.Status != user.StatusRejected {
		t.Errorf("expected rejected, got %q", r.Status)
	}
	if r.RejectionReason == nil || *r.RejectionReason != reason {
		t.Error("rejection reason not stored verbatim")
	}
	if len(accounts.credentials) != 0 {
		t.Error("reject must not create a credential")
	}

	// Rejecting again is a bad request.
	if err := svc.RejectRegistration(ctx, req.ID, admin, nil); !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("expected bad request on re-review, got %v", err)
	}
}

func TestCheckRegistrationStatus(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	status, err := svc.CheckRegistrationStatus(ctx, "nobody@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if status != nil {
		t.Errorf("expected nil status for unknown email, got %+v", status)
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "password1", Name: "A"}); err != nil {
		t.Fatal(err)
	}
	status, err = svc.CheckRegistrationStatus(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if status == nil || status.Status != user.StatusPending {
		t.Errorf("expected pending status, got %+v", status)
	}
}
