package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors surfaced by the store. The auth service maps these onto
// the client-facing error taxonomy.
var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already taken")
	ErrNotPending = errors.New("request is not pending")
)

const uniqueViolation = "23505"

// Store provides database operations for credentials and registration
// requests.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const credentialColumns = `id, email, password_hash, name, role, active, created_at, updated_at`

func scanCredential(scan func(dest ...any) error) (*Credential, error) {
	c := &Credential{}
	err := scan(&c.ID, &c.Email, &c.PasswordHash, &c.Name, &c.Role, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCredential inserts a new credential. Returns ErrEmailTaken if the
// email is already registered.
func (s *Store) CreateCredential(ctx context.Context, in CreateCredentialInput) (*Credential, error) {
	c, err := scanCredential(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, name, role, active)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING `+credentialColumns,
			in.Email, in.PasswordHash, in.Name, in.Role, in.Active,
		).Scan(dest...)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating credential: %w", err)
	}
	return c, nil
}

// GetCredentialByEmail retrieves a credential by email address.
func (s *Store) GetCredentialByEmail(ctx context.Context, email string) (*Credential, error) {
	c, err := scanCredential(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT `+credentialColumns+` FROM users WHERE email = $1`, email,
		).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting credential by email: %w", err)
	}
	return c, nil
}

const registrationColumns = `id, email, password_hash, name, student_id, education_center, phone, reason,
	 status, reviewed_by, reviewed_at, rejection_reason, created_at, updated_at`

func scanRegistration(scan func(dest ...any) error) (*RegistrationRequest, error) {
	r := &RegistrationRequest{}
	err := scan(&r.ID, &r.Email, &r.PasswordHash, &r.Name, &r.StudentID, &r.EducationCenter,
		&r.Phone, &r.Reason, &r.Status, &r.ReviewedBy, &r.ReviewedAt, &r.RejectionReason,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateRegistration inserts a new pending registration request. Returns
// ErrEmailTaken if a request with this email already exists.
func (s *Store) CreateRegistration(ctx context.Context, in CreateRegistrationInput) (*RegistrationRequest, error) {
	r, err := scanRegistration(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO registration_requests
			   (email, password_hash, name, student_id, education_center, phone, reason, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
			 RETURNING `+registrationColumns,
			in.Email, in.PasswordHash, in.Name, in.StudentID, in.EducationCenter, in.Phone, in.Reason,
		).Scan(dest...)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating registration request: %w", err)
	}
	return r, nil
}

// GetRegistrationByEmail retrieves a registration request by email.
func (s *Store) GetRegistrationByEmail(ctx context.Context, email string) (*RegistrationRequest, error) {
	r, err := scanRegistration(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT `+registrationColumns+` FROM registration_requests WHERE email = $1`, email,
		).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting registration by email: %w", err)
	}
	return r, nil
}

// ListRegistrations returns registration requests ordered by creation time
// descending, optionally restricted to pending ones.
func (s *Store) ListRegistrations(ctx context.Context, pendingOnly bool) ([]*RegistrationRequest, error) {
	query := `SELECT ` + registrationColumns + ` FROM registration_requests ORDER BY created_at DESC`
	if pendingOnly {
		query = `SELECT ` + registrationColumns + ` FROM registration_requests
		 WHERE status = 'pending' ORDER BY created_at DESC`
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	defer rows.Close()

	var requests []*RegistrationRequest
	for rows.Next() {
		r, err := scanRegistration(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning registration row: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// DeleteRegistration removes a registration request by id. Used to clear a
// rejected request so the email can re-apply.
func (s *Store) DeleteRegistration(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM registration_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting registration: %w", err)
	}
	return nil
}

// ApproveRegistration creates a credential from the request and marks the
// request approved, in a single transaction. The row lock taken by SELECT FOR
// UPDATE serializes concurrent approvals of the same request: the loser
// re-reads a non-pending status and gets ErrNotPending. If the credential
// insert hits the users email unique constraint the transaction rolls back
// and the request stays pending.
func (s *Store) ApproveRegistration(ctx context.Context, requestID, reviewerID string) (*Credential, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning approve transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	r, err := scanRegistration(func(dest ...any) error {
		return tx.QueryRow(ctx,
			`SELECT `+registrationColumns+` FROM registration_requests WHERE id = $1 FOR UPDATE`,
			requestID,
		).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("locking registration: %w", err)
	}
	if r.Status != StatusPending {
		return nil, ErrNotPending
	}

	c, err := scanCredential(func(dest ...any) error {
		return tx.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, name, role, active)
			 VALUES ($1, $2, $3, 'user', true)
			 RETURNING `+credentialColumns,
			r.Email, r.PasswordHash, r.Name,
		).Scan(dest...)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating credential from registration: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE registration_requests
		 SET status = 'approved', reviewed_by = $2, reviewed_at = $3, updated_at = $3
		 WHERE id = $1`,
		requestID, reviewerID, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("marking registration approved: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing approve transaction: %w", err)
	}
	return c, nil
}

// RejectRegistration marks a pending request rejected, stamping the reviewer,
// time, and optional reason. Non-pending requests return ErrNotPending.
func (s *Store) RejectRegistration(ctx context.Context, requestID, reviewerID string, reason *string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning reject transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM registration_requests WHERE id = $1 FOR UPDATE`, requestID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("locking registration: %w", err)
	}
	if status != StatusPending {
		return ErrNotPending
	}

	_, err = tx.Exec(ctx,
		`UPDATE registration_requests
		 SET status = 'rejected', reviewed_by = $2, reviewed_at = $3, rejection_reason = $4, updated_at = $3
		 WHERE id = $1`,
		requestID, reviewerID, time.Now(), reason,
	)
	if err != nil {
		return fmt.Errorf("marking registration rejected: %w", err)
	}

	return tx.Commit(ctx)
}

// PoolStat exposes connection pool statistics for the metrics collector.
func (s *Store) PoolStat() (total, idle, acquired int32) {
	st := s.pool.Stat()
	return st.TotalConns(), st.IdleConns(), st.AcquiredConns()
}
