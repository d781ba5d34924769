package member

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no member matches the given identifier.
	ErrNotFound = errors.New("member not found")
	// ErrDuplicate is returned when an insert or update collides with a
	// unique constraint (student id or email already on the roster).
	ErrDuplicate = errors.New("member already exists")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Store provides PostgreSQL-backed access to the member roster.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const memberColumns = `id, first_name, last_name, student_id, email, phone, education_center, is_open_data, created_at, updated_at`

func scanMember(scan func(dest ...any) error) (*Member, error) {
	var m Member
	err := scan(
		&m.ID, &m.FirstName, &m.LastName, &m.StudentID, &m.Email,
		&m.Phone, &m.EducationCenter, &m.IsOpenData, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns the full roster ordered by first name.
func (s *Store) List(ctx context.Context) ([]*Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM members ORDER BY first_name ASC, last_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()
	return collectMembers(rows)
}

// ListOpenData returns only the members who opted into public disclosure.
func (s *Store) ListOpenData(ctx context.Context) ([]*Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM members WHERE is_open_data = true ORDER BY first_name ASC, last_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing open-data members: %w", err)
	}
	defer rows.Close()
	return collectMembers(rows)
}

func collectMembers(rows pgx.Rows) ([]*Member, error) {
	var out []*Member
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}
	return out, nil
}

// GetByID returns a single member or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*Member, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	m, err := scanMember(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting member %d: %w", id, err)
	}
	return m, nil
}

// Create inserts a new member and returns the stored row.
func (s *Store) Create(ctx context.Context, in CreateMemberInput) (*Member, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO members (first_name, last_name, student_id, email, phone, education_center, is_open_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+memberColumns,
		in.FirstName, in.LastName, in.StudentID, in.Email, in.Phone, in.EducationCenter, in.IsOpenData)
	m, err := scanMember(row.Scan)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("creating member: %w", err)
	}
	return m, nil
}

// Update applies the non-nil fields of in to the member and returns the
// updated row. With no fields set it degenerates to a fetch.
func (s *Store) Update(ctx context.Context, id int64, in UpdateMemberInput) (*Member, error) {
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if in.FirstName != nil {
		addSet("first_name", *in.FirstName)
	}
	if in.LastName != nil {
		addSet("last_name", *in.LastName)
	}
	if in.StudentID != nil {
		addSet("student_id", *in.StudentID)
	}
	if in.Email != nil {
		addSet("email", *in.Email)
	}
	if in.Phone != nil {
		addSet("phone", *in.Phone)
	}
	if in.EducationCenter != nil {
		addSet("education_center", *in.EducationCenter)
	}
	if in.IsOpenData != nil {
		addSet("is_open_data", *in.IsOpenData)
	}
	if len(setClauses) == 0 {
		return s.GetByID(ctx, id)
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(
		`UPDATE members SET %s WHERE id = $%d RETURNING `+memberColumns,
		strings.Join(setClauses, ", "), argIdx)
	args = append(args, id)

	row := s.pool.QueryRow(ctx, query, args...)
	m, err := scanMember(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("updating member %d: %w", id, err)
	}
	return m, nil
}

// Delete removes a member. Assignment, attendance, and vote rows cascade
// at the schema level.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting member %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
