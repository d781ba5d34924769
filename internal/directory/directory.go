// Package directory manages the reference tables the rest of the system
// points at: positions, departments, committees, and meeting types. All
// four share the same shape (a unique name plus an optional description),
// so one store serves them, parameterized by table.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Table selects one of the reference tables.
type Table string

const (
	TablePositions    Table = "positions"
	TableDepartments  Table = "departments"
	TableCommittees   Table = "committees"
	TableMeetingTypes Table = "meeting_types"
)

var tables = map[Table]bool{
	TablePositions:    true,
	TableDepartments:  true,
	TableCommittees:   true,
	TableMeetingTypes: true,
}

// ValidTable reports whether t names a known reference table.
func ValidTable(t Table) bool {
	return tables[t]
}

var (
	// ErrNotFound is returned when no entry matches the given id.
	ErrNotFound = errors.New("entry not found")
	// ErrNameTaken is returned when an entry's name collides with an
	// existing entry in the same table.
	ErrNameTaken = errors.New("name already in use")
)

const uniqueViolation = "23505"

// Entry is a row in one of the reference tables.
type Entry struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateEntryInput holds the fields for a new entry.
type CreateEntryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// UpdateEntryInput holds optional fields for a partial entry update.
type UpdateEntryInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Store provides PostgreSQL-backed access to the reference tables.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const entryColumns = `id, name, description, created_at, updated_at`

func scanEntry(scan func(dest ...any) error) (*Entry, error) {
	var e Entry
	if err := scan(&e.ID, &e.Name, &e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func checkTable(t Table) error {
	if !tables[t] {
		return fmt.Errorf("unknown directory table %q", t)
	}
	return nil
}

// List returns all entries of a table ordered by name.
func (s *Store) List(ctx context.Context, table Table) ([]*Entry, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM %s ORDER BY name ASC`, entryColumns, table))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning %s entry: %w", table, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return out, nil
}

// GetByID returns a single entry or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, table Table, id int64) (*Entry, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, entryColumns, table), id)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s entry %d: %w", table, id, err)
	}
	return e, nil
}

// Create inserts a new entry and returns the stored row.
func (s *Store) Create(ctx context.Context, table Table, in CreateEntryInput) (*Entry, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, description) VALUES ($1, $2) RETURNING %s`, table, entryColumns),
		in.Name, in.Description)
	e, err := scanEntry(row.Scan)
	if isUniqueViolation(err) {
		return nil, ErrNameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s entry: %w", table, err)
	}
	return e, nil
}

// Update applies the non-nil fields of in to an entry and returns the
// updated row.
func (s *Store) Update(ctx context.Context, table Table, id int64, in UpdateEntryInput) (*Entry, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	if in.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *in.Name)
		argIdx++
	}
	if in.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *in.Description)
		argIdx++
	}
	if len(setClauses) == 0 {
		return s.GetByID(ctx, table, id)
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING %s`,
		table, strings.Join(setClauses, ", "), argIdx, entryColumns)
	args = append(args, id)

	row := s.pool.QueryRow(ctx, query, args...)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrNameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("updating %s entry %d: %w", table, id, err)
	}
	return e, nil
}

// Delete removes an entry. Assignment rows referencing it cascade at the
// schema level; meetings keep a nullable reference.
func (s *Store) Delete(ctx context.Context, table Table, id int64) error {
	if err := checkTable(table); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("deleting %s entry %d: %w", table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
