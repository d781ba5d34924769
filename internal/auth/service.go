package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/top242011/relife-app/internal/apperr"
	"github.com/top242011/relife-app/internal/session"
	"github.com/top242011/relife-app/internal/user"
)

// AccountStore is the slice of the user store the auth service depends on.
type AccountStore interface {
	GetCredentialByEmail(ctx context.Context, email string) (*user.Credential, error)
	CreateRegistration(ctx context.Context, in user.CreateRegistrationInput) (*user.RegistrationRequest, error)
	GetRegistrationByEmail(ctx context.Context, email string) (*user.RegistrationRequest, error)
	ListRegistrations(ctx context.Context, pendingOnly bool) ([]*user.RegistrationRequest, error)
	DeleteRegistration(ctx context.Context, id string) error
	ApproveRegistration(ctx context.Context, requestID, reviewerID string) (*user.Credential, error)
	RejectRegistration(ctx context.Context, requestID, reviewerID string, reason *string) error
}

// Service provides the registration and session workflow.
type Service struct {
	accounts AccountStore
	sessions session.Store
}

// NewService creates an auth service over the given stores.
func NewService(accounts AccountStore, sessions session.Store) *Service {
	return &Service{accounts: accounts, sessions: sessions}
}

// RegisterInput holds the public registration form fields.
type RegisterInput struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	Name            string  `json:"name"`
	StudentID       *string `json:"student_id,omitempty"`
	EducationCenter *string `json:"education_center,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Reason          *string `json:"reason,omitempty"`
}

// Register validates the input, then files a pending registration request.
// It fails with a conflict if the email already has a credential or a
// registration under review. A previously rejected request is cleared so the
// applicant can re-apply.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.RegistrationRequest, error) {
	if !validEmail(in.Email) {
		return nil, apperr.New(apperr.KindBadRequest, "invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.New(apperr.KindBadRequest, "password must be at least 8 characters")
	}
	if in.Name == "" {
		return nil, apperr.New(apperr.KindBadRequest, "name is required")
	}

	if _, err := s.accounts.GetCredentialByEmail(ctx, in.Email); err == nil {
		return nil, apperr.New(apperr.KindConflict, "email already in use")
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, apperr.Internal(err, "failed to submit registration request")
	}

	existing, err := s.accounts.GetRegistrationByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if existing.Status != user.StatusRejected {
			return nil, apperr.New(apperr.KindConflict, "a registration request for this email is already under review")
		}
		// A rejected request does not block re-application.
		if err := s.accounts.DeleteRegistration(ctx, existing.ID); err != nil {
			return nil, apperr.Internal(err, "failed to submit registration request")
		}
	case errors.Is(err, user.ErrNotFound):
		// First application for this email.
	default:
		return nil, apperr.Internal(err, "failed to submit registration request")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "failed to submit registration request")
	}

	req, err := s.accounts.CreateRegistration(ctx, user.CreateRegistrationInput{
		Email:           in.Email,
		PasswordHash:    string(hash),
		Name:            in.Name,
		StudentID:       in.StudentID,
		EducationCenter: in.EducationCenter,
		Phone:           in.Phone,
		Reason:          in.Reason,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, apperr.Wrap(err, apperr.KindConflict, "a registration request for this email is already under review")
		}
		return nil, apperr.Internal(err, "failed to submit registration request")
	}
	return req, nil
}

// Login verifies the credentials and issues a session token. Unknown email
// and wrong password produce the same message so the endpoint cannot be used
// to probe for registered addresses.
func (s *Service) Login(ctx context.Context, email, password string) (string, session.Identity, error) {
	cred, err := s.accounts.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", session.Identity{}, apperr.New(apperr.KindUnauthorized, "invalid email or password")
		}
		return "", session.Identity{}, apperr.Internal(err, "failed to log in")
	}

	if !cred.Active {
		return "", session.Identity{}, apperr.New(apperr.KindForbidden, "account is suspended")
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return "", session.Identity{}, apperr.New(apperr.KindUnauthorized, "invalid email or password")
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return "", session.Identity{}, apperr.Internal(err, "failed to log in")
	}

	id := session.Identity{
		UserID: cred.ID,
		Email:  cred.Email,
		Name:   cred.Name,
		Role:   cred.Role,
	}
	s.sessions.Put(token, id)

	return token, id, nil
}

// Logout revokes the session token.
func (s *Service) Logout(token string) {
	s.sessions.Delete(token)
}

// RegistrationStatus is the public projection of a request's review state.
type RegistrationStatus struct {
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
}

// CheckRegistrationStatus looks up the review state for an email. Returns
// (nil, nil) when no request exists.
func (s *Service) CheckRegistrationStatus(ctx context.Context, email string) (*RegistrationStatus, error) {
	req, err := s.accounts.GetRegistrationByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal(err, "failed to check registration status")
	}
	return &RegistrationStatus{
		Status:          req.Status,
		CreatedAt:       req.CreatedAt,
		ReviewedAt:      req.ReviewedAt,
		RejectionReason: req.RejectionReason,
	}, nil
}

// PendingRegistrations returns pending requests, newest first.
func (s *Service) PendingRegistrations(ctx context.Context) ([]*user.RegistrationRequest, error) {
	reqs, err := s.accounts.ListRegistrations(ctx, true)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load registrations")
	}
	return reqs, nil
}

// AllRegistrations returns every request regardless of status, newest first.
func (s *Service) AllRegistrations(ctx context.Context) ([]*user.RegistrationRequest, error) {
	reqs, err := s.accounts.ListRegistrations(ctx, false)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load registrations")
	}
	return reqs, nil
}

// ApproveRegistration creates a credential for the request and marks it
// approved, stamping the reviewer. Already-reviewed requests are rejected
// with a bad-request error and left untouched.
func (s *Service) ApproveRegistration(ctx context.Context, requestID string, reviewer session.Identity) (*user.Credential, error) {
	cred, err := s.accounts.ApproveRegistration(ctx, requestID, reviewer.UserID)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			return nil, apperr.New(apperr.KindNotFound, "registration request not found")
		case errors.Is(err, user.ErrNotPending):
			return nil, apperr.New(apperr.KindBadRequest, "request has already been reviewed")
		case errors.Is(err, user.ErrEmailTaken):
			return nil, apperr.Wrap(err, apperr.KindConflict, "a credential with this email already exists")
		default:
			return nil, apperr.Internal(err, "failed to approve registration")
		}
	}
	return cred, nil
}

// RejectRegistration marks the request rejected with an optional reason.
// No credential is created.
func (s *Service) RejectRegistration(ctx context.Context, requestID string, reviewer session.Identity, reason *string) error {
	err := s.accounts.RejectRegistration(ctx, requestID, reviewer.UserID, reason)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			return apperr.New(apperr.KindNotFound, "registration request not found")
		case errors.Is(err, user.ErrNotPending):
			return apperr.New(apperr.KindBadRequest, "request has already been reviewed")
		default:
			return apperr.Internal(err, "failed to reject registration")
		}
	}
	return nil
}
