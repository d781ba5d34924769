package member

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Kind selects one of the foreign-key assignment relations.
type Kind string

const (
	KindPosition   Kind = "position"
	KindDepartment Kind = "department"
	KindCommittee  Kind = "committee"
)

// relation describes the SQL surface of one assignment kind.
type relation struct {
	table     string
	targetCol string
	refTable  string
}

var relations = map[Kind]relation{
	KindPosition:   {table: "member_positions", targetCol: "position_id", refTable: "positions"},
	KindDepartment: {table: "member_departments", targetCol: "department_id", refTable: "departments"},
	KindCommittee:  {table: "member_committees", targetCol: "committee_id", refTable: "committees"},
}

// ValidKind reports whether k names a known assignment relation.
func ValidKind(k Kind) bool {
	_, ok := relations[k]
	return ok
}

// ErrAssignmentNotFound is returned when a removal matches no rows.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentStore provides PostgreSQL-backed access to the member
// assignment relations. The relations permit duplicate (member, target)
// pairs so that a member can hold the same position over disjoint terms.
type AssignmentStore struct {
	pool *pgxpool.Pool
}

// NewAssignmentStore returns an AssignmentStore backed by the given pool.
func NewAssignmentStore(pool *pgxpool.Pool) *AssignmentStore {
	return &AssignmentStore{pool: pool}
}

// Add inserts an assignment of the given kind and returns its id.
func (s *AssignmentStore) Add(ctx context.Context, kind Kind, in AddAssignmentInput) (int64, error) {
	rel, ok := relations[kind]
	if !ok {
		return 0, fmt.Errorf("unknown assignment kind %q", kind)
	}
	var id int64
	err := s.pool.QueryRow(ctx, fmt.Sprintf(
		`INSERT INTO %s (member_id, %s, start_date, end_date, is_current)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rel.table, rel.targetCol),
		in.MemberID, in.TargetID, in.StartDate, in.EndDate, in.Current()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("adding %s assignment: %w", kind, err)
	}
	return id, nil
}

// Remove deletes every assignment row of the given kind linking memberID
// to targetID. Removing a pair with multiple terms drops them all.
func (s *AssignmentStore) Remove(ctx context.Context, kind Kind, memberID, targetID int64) error {
	rel, ok := relations[kind]
	if !ok {
		return fmt.Errorf("unknown assignment kind %q", kind)
	}
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE member_id = $1 AND %s = $2`, rel.table, rel.targetCol),
		memberID, targetID)
	if err != nil {
		return fmt.Errorf("removing %s assignment: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// ListForMember returns a member's assignments of the given kind with the
// referenced entity's name joined in, newest first.
func (s *AssignmentStore) ListForMember(ctx context.Context, kind Kind, memberID int64) ([]*Assignment, error) {
	rel, ok := relations[kind]
	if !ok {
		return nil, fmt.Errorf("unknown assignment kind %q", kind)
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT a.id, a.member_id, a.%[2]s, r.name, a.start_date, a.end_date, a.is_current, a.created_at
		 FROM %[1]s a
		 LEFT JOIN %[3]s r ON r.id = a.%[2]s
		 WHERE a.member_id = $1
		 ORDER BY a.created_at DESC, a.id DESC`,
		rel.table, rel.targetCol, rel.refTable),
		memberID)
	if err != nil {
		return nil, fmt.Errorf("listing %s assignments: %w", kind, err)
	}
	defer rows.Close()

	var out []*Assignment
	for rows.Next() {
		var a Assignment
		err := rows.Scan(&a.ID, &a.MemberID, &a.TargetID, &a.TargetName,
			&a.StartDate, &a.EndDate, &a.IsCurrent, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning %s assignment: %w", kind, err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s assignments: %w", kind, err)
	}
	return out, nil
}

const roleColumns = `id, member_id, role, start_date, end_date, is_current, created_at`

func scanRole(scan func(dest ...any) error) (*RoleAssignment, error) {
	var r RoleAssignment
	err := scan(&r.ID, &r.MemberID, &r.Role, &r.StartDate, &r.EndDate, &r.IsCurrent, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// AddRole inserts a party-role assignment and returns the stored row.
func (s *AssignmentStore) AddRole(ctx context.Context, in AddRoleInput) (*RoleAssignment, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO member_roles (member_id, role, start_date, end_date, is_current)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+roleColumns,
		in.MemberID, in.Role, in.StartDate, in.EndDate, in.Current())
	r, err := scanRole(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("adding role assignment: %w", err)
	}
	return r, nil
}

// UpdateRole applies the non-nil fields of in to a role assignment row.
func (s *AssignmentStore) UpdateRole(ctx context.Context, id int64, in UpdateRoleInput) (*RoleAssignment, error) {
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if in.Role != nil {
		addSet("role", *in.Role)
	}
	if in.StartDate != nil {
		addSet("start_date", *in.StartDate)
	}
	if in.EndDate != nil {
		addSet("end_date", *in.EndDate)
	}
	if in.IsCurrent != nil {
		addSet("is_current", *in.IsCurrent)
	}
	if len(setClauses) == 0 {
		return s.getRole(ctx, id)
	}

	query := fmt.Sprintf(
		`UPDATE member_roles SET %s WHERE id = $%d RETURNING `+roleColumns,
		strings.Join(setClauses, ", "), argIdx)
	args = append(args, id)

	row := s.pool.QueryRow(ctx, query, args...)
	r, err := scanRole(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating role assignment %d: %w", id, err)
	}
	return r, nil
}

func (s *AssignmentStore) getRole(ctx context.Context, id int64) (*RoleAssignment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM member_roles WHERE id = $1`, id)
	r, err := scanRole(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting role assignment %d: %w", id, err)
	}
	return r, nil
}

// RemoveRoleByID deletes a single role assignment row.
func (s *AssignmentStore) RemoveRoleByID(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM member_roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("removing role assignment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// RemoveRole deletes every role assignment linking memberID to role.
func (s *AssignmentStore) RemoveRole(ctx context.Context, memberID int64, role string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM member_roles WHERE member_id = $1 AND role = $2`, memberID, role)
	if err != nil {
		return fmt.Errorf("removing role assignments: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// ListRoles returns a member's party-role assignments, newest first.
func (s *AssignmentStore) ListRoles(ctx context.Context, memberID int64) ([]*RoleAssignment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM member_roles WHERE member_id = $1 ORDER BY created_at DESC, id DESC`,
		memberID)
	if err != nil {
		return nil, fmt.Errorf("listing role assignments: %w", err)
	}
	defer rows.Close()

	var out []*RoleAssignment
	for rows.Next() {
		r, err := scanRole(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning role assignment: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating role assignments: %w", err)
	}
	return out, nil
}
