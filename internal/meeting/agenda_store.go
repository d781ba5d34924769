package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ListAgendas returns a meeting's agenda items in their fixed order.
func (s *Store) ListAgendas(ctx context.Context, meetingID int64) ([]*Agenda, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, meeting_id, title, description, position, status, created_at
		 FROM agendas WHERE meeting_id = $1
		 ORDER BY position ASC, id ASC`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("listing agendas: %w", err)
	}
	defer rows.Close()

	var out []*Agenda
	for rows.Next() {
		var a Agenda
		err := rows.Scan(&a.ID, &a.MeetingID, &a.Title, &a.Description, &a.Position, &a.Status, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning agenda: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating agendas: %w", err)
	}
	return out, nil
}

// GetAgenda returns a single agenda item or ErrNotFound.
func (s *Store) GetAgenda(ctx context.Context, id int64) (*Agenda, error) {
	var a Agenda
	err := s.pool.QueryRow(ctx,
		`SELECT id, meeting_id, title, description, position, status, created_at
		 FROM agendas WHERE id = $1`, id).
		Scan(&a.ID, &a.MeetingID, &a.Title, &a.Description, &a.Position, &a.Status, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting agenda %d: %w", id, err)
	}
	return &a, nil
}

// CreateAgenda inserts a new agenda item under a meeting.
func (s *Store) CreateAgenda(ctx context.Context, meetingID int64, in CreateAgendaInput) (*Agenda, error) {
	status := in.Status
	if status == "" {
		status = AgendaProposed
	}
	var a Agenda
	err := s.pool.QueryRow(ctx,
		`INSERT INTO agendas (meeting_id, title, description, position, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, meeting_id, title, description, position, status, created_at`,
		meetingID, in.Title, in.Description, in.Position, status).
		Scan(&a.ID, &a.MeetingID, &a.Title, &a.Description, &a.Position, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating agenda: %w", err)
	}
	return &a, nil
}

// UpdateAgenda applies the non-nil fields of in and returns the updated row.
func (s *Store) UpdateAgenda(ctx context.Context, id int64, in UpdateAgendaInput) (*Agenda, error) {
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if in.Title != nil {
		addSet("title", *in.Title)
	}
	if in.Description != nil {
		addSet("description", *in.Description)
	}
	if in.Position != nil {
		addSet("position", *in.Position)
	}
	if in.Status != nil {
		addSet("status", *in.Status)
	}
	if len(setClauses) == 0 {
		return s.GetAgenda(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE agendas SET %s WHERE id = $%d
		RETURNING id, meeting_id, title, description, position, status, created_at`,
		strings.Join(setClauses, ", "), argIdx)
	args = append(args, id)

	var a Agenda
	err := s.pool.QueryRow(ctx, query, args...).
		Scan(&a.ID, &a.MeetingID, &a.Title, &a.Description, &a.Position, &a.Status, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating agenda %d: %w", id, err)
	}
	return &a, nil
}

// DeleteAgenda removes an agenda item. Its votes cascade at the schema level.
func (s *Store) DeleteAgenda(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM agendas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting agenda %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListVotes returns the votes on an agenda item with the member's name
// joined in.
func (s *Store) ListVotes(ctx context.Context, agendaID int64) ([]*Vote, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT v.id, v.agenda_id, v.member_id,
		        mb.first_name || ' ' || mb.last_name, v.choice, v.created_at
		 FROM votes v
		 LEFT JOIN members mb ON mb.id = v.member_id
		 WHERE v.agenda_id = $1
		 ORDER BY mb.first_name ASC, v.id ASC`, agendaID)
	if err != nil {
		return nil, fmt.Errorf("listing votes: %w", err)
	}
	defer rows.Close()

	var out []*Vote
	for rows.Next() {
		var v Vote
		err := rows.Scan(&v.ID, &v.AgendaID, &v.MemberID, &v.MemberName, &v.Choice, &v.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning vote: %w", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating votes: %w", err)
	}
	return out, nil
}

// CastVote records a member's vote on an agenda item. A second vote by the
// same member on the same item returns ErrDuplicate.
func (s *Store) CastVote(ctx context.Context, agendaID int64, in CastVoteInput) (*Vote, error) {
	var v Vote
	err := s.pool.QueryRow(ctx,
		`INSERT INTO votes (agenda_id, member_id, choice)
		 VALUES ($1, $2, $3)
		 RETURNING id, agenda_id, member_id, choice, created_at`,
		agendaID, in.MemberID, in.Choice).
		Scan(&v.ID, &v.AgendaID, &v.MemberID, &v.Choice, &v.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("casting vote: %w", err)
	}
	return &v, nil
}

// UpdateVote changes an existing vote's choice.
func (s *Store) UpdateVote(ctx context.Context, id int64, choice string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE votes SET choice = $1 WHERE id = $2`, choice, id)
	if err != nil {
		return fmt.Errorf("updating vote %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVote removes a vote.
func (s *Store) DeleteVote(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM votes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting vote %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
