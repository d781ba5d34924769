package user

import "time"

// Credential roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Registration request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Credential represents a login account. It is created only by approving a
// registration request (or by the seed bootstrap) and is never deleted.
type Credential struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // "admin" or "user"
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateCredentialInput holds the fields required to create a credential.
// The password arrives already hashed; plaintext never reaches the store.
type CreateCredentialInput struct {
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Active       bool
}

// RegistrationRequest is a pending application for a credential.
type RegistrationRequest struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Name            string     `json:"name"`
	StudentID       *string    `json:"student_id,omitempty"`
	EducationCenter *string    `json:"education_center,omitempty"`
	Phone           *string    `json:"phone,omitempty"`
	Reason          *string    `json:"reason,omitempty"`
	Status          string     `json:"status"`
	ReviewedBy      *string    `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateRegistrationInput holds the fields for a new pending request.
type CreateRegistrationInput struct {
	Email           string
	PasswordHash    string
	Name            string
	StudentID       *string
	EducationCenter *string
	Phone           *string
	Reason          *string
}
