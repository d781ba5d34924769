package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const regulationColumns = `r.id, r.title, r.content, r.proposed_at, r.proposer_id,
	mb.first_name || ' ' || mb.last_name, r.status, r.created_at, r.updated_at`

const regulationSelect = `SELECT ` + regulationColumns + `
	FROM draft_regulations r
	LEFT JOIN members mb ON mb.id = r.proposer_id`

func scanRegulation(scan func(dest ...any) error) (*DraftRegulation, error) {
	var r DraftRegulation
	err := scan(&r.ID, &r.Title, &r.Content, &r.ProposedAt, &r.ProposerID,
		&r.ProposerName, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRegulations returns all draft regulations, newest first.
func (s *Store) ListRegulations(ctx context.Context) ([]*DraftRegulation, error) {
	rows, err := s.pool.Query(ctx, regulationSelect+` ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing regulations: %w", err)
	}
	defer rows.Close()

	var out []*DraftRegulation
	for rows.Next() {
		r, err := scanRegulation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning regulation: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating regulations: %w", err)
	}
	return out, nil
}

// GetRegulation returns a single draft regulation or ErrNotFound.
func (s *Store) GetRegulation(ctx context.Context, id int64) (*DraftRegulation, error) {
	row := s.pool.QueryRow(ctx, regulationSelect+` WHERE r.id = $1`, id)
	r, err := scanRegulation(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting regulation %d: %w", id, err)
	}
	return r, nil
}

// CreateRegulation inserts a new draft regulation in the draft status.
func (s *Store) CreateRegulation(ctx context.Context, in CreateRegulationInput) (*DraftRegulation, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO draft_regulations (title, content, proposed_at, proposer_id, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		in.Title, in.Content, in.ProposedAt, in.ProposerID, RegulationDraft).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating regulation: %w", err)
	}
	return s.GetRegulation(ctx, id)
}

// UpdateRegulation applies the non-nil fields of in and returns the
// updated row.
func (s *Store) UpdateRegulation(ctx context.Context, id int64, in UpdateRegulationInput) (*DraftRegulation, error) {
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
	if in.Content != nil {
		addSet("content", *in.Content)
	}
	if in.ProposedAt != nil {
		addSet("proposed_at", *in.ProposedAt)
	}
	if in.ProposerID != nil {
		addSet("proposer_id", *in.ProposerID)
	}
	if in.Status != nil {
		addSet("status", *in.Status)
	}
	if len(setClauses) == 0 {
		return s.GetRegulation(ctx, id)
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE draft_regulations SET %s WHERE id = $%d`,
		strings.Join(setClauses, ", "), argIdx)
	args = append(args, id)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating regulation %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetRegulation(ctx, id)
}

// DeleteRegulation removes a draft regulation.
func (s *Store) DeleteRegulation(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM draft_regulations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting regulation %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
