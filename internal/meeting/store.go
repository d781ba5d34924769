package meeting

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
	// ErrNotFound is returned when no row matches the given identifier.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a member already has an attendance
	// record for a meeting or a vote on an agenda item.
	ErrDuplicate = errors.New("record already exists")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Store provides PostgreSQL-backed access to meetings and everything
// attached to them.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const meetingColumns = `m.id, m.title, m.date, m.location, m.meeting_type_id, t.name, m.description, m.is_open_data, m.created_at, m.updated_at`

const meetingSelect = `SELECT ` + meetingColumns + `
	FROM meetings m
	LEFT JOIN meeting_types t ON t.id = m.meeting_type_id`

func scanMeeting(scan func(dest ...any) error) (*Meeting, error) {
	var m Meeting
	err := scan(&m.ID, &m.Title, &m.Date, &m.Location, &m.MeetingTypeID,
		&m.MeetingTypeName, &m.Description, &m.IsOpenData, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMeetings returns all meetings, most recent first.
func (s *Store) ListMeetings(ctx context.Context) ([]*Meeting, error) {
	rows, err := s.pool.Query(ctx, meetingSelect+` ORDER BY m.date DESC, m.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	defer rows.Close()

	var out []*Meeting
	for rows.Next() {
		m, err := scanMeeting(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning meeting: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meetings: %w", err)
	}
	return out, nil
}

// GetMeeting returns a single meeting or ErrNotFound.
func (s *Store) GetMeeting(ctx context.Context, id int64) (*Meeting, error) {
	row := s.pool.QueryRow(ctx, meetingSelect+` WHERE m.id = $1`, id)
	m, err := scanMeeting(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting meeting %d: %w", id, err)
	}
	return m, nil
}

// CreateMeeting inserts a new meeting and returns the stored row.
func (s *Store) CreateMeeting(ctx context.Context, in CreateMeetingInput) (*Meeting, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO meetings (title, date, location, meeting_type_id, description, is_open_data)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		in.Title, in.Date, in.Location, in.MeetingTypeID, in.Description, in.IsOpenData).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating meeting: %w", err)
	}
	return s.GetMeeting(ctx, id)
}

// UpdateMeeting applies the non-nil fields of in and returns the updated row.
func (s *Store) UpdateMeeting(ctx context.Context, id int64, in UpdateMeetingInput) (*Meeting, error) {
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
	if in.Date != nil {
		addSet("date", *in.Date)
	}
	if in.Location != nil {
		addSet("location", *in.Location)
	}
	if in.MeetingTypeID != nil {
		addSet("meeting_type_id", *in.MeetingTypeID)
	}
	if in.Description != nil {
		addSet("description", *in.Description)
	}
	if in.IsOpenData != nil {
		addSet("is_open_data", *in.IsOpenData)
	}
	if len(setClauses) == 0 {
		return s.GetMeeting(ctx, id)
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE meetings SET %s WHERE id = $%d`,
		strings.Join(setClauses, ", "), argIdx)
	args = append(args, id)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating meeting %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetMeeting(ctx, id)
}

// DeleteMeeting removes a meeting. Attendance, agenda, vote, and report
// rows cascade at the schema level.
func (s *Store) DeleteMeeting(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting meeting %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const attendanceColumns = `a.id, a.meeting_id, a.member_id,
	mb.first_name || ' ' || mb.last_name, a.status, a.note, a.created_at`

// ListAttendances returns the attendance records for a meeting with the
// member's name joined in, ordered by member name.
func (s *Store) ListAttendances(ctx context.Context, meetingID int64) ([]*Attendance, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+attendanceColumns+`
		 FROM meeting_attendances a
		 LEFT JOIN members mb ON mb.id = a.member_id
		 WHERE a.meeting_id = $1
		 ORDER BY mb.first_name ASC, a.id ASC`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("listing attendances: %w", err)
	}
	defer rows.Close()

	var out []*Attendance
	for rows.Next() {
		var a Attendance
		err := rows.Scan(&a.ID, &a.MeetingID, &a.MemberID, &a.MemberName,
			&a.Status, &a.Note, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning attendance: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attendances: %w", err)
	}
	return out, nil
}

// RecordAttendance inserts an attendance record. A second record for the
// same (meeting, member) pair returns ErrDuplicate.
func (s *Store) RecordAttendance(ctx context.Context, meetingID int64, in RecordAttendanceInput) (*Attendance, error) {
	var a Attendance
	err := s.pool.QueryRow(ctx,
		`INSERT INTO meeting_attendances (meeting_id, member_id, status, note)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, meeting_id, member_id, status, note, created_at`,
		meetingID, in.MemberID, in.Status, in.Note).
		Scan(&a.ID, &a.MeetingID, &a.MemberID, &a.Status, &a.Note, &a.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("recording attendance: %w", err)
	}
	return &a, nil
}

// UpdateAttendanceStatus changes an existing attendance record's status.
func (s *Store) UpdateAttendanceStatus(ctx context.Context, id int64, status string, note *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE meeting_attendances SET status = $1, note = $2 WHERE id = $3`,
		status, note, id)
	if err != nil {
		return fmt.Errorf("updating attendance %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAttendance removes an attendance record.
func (s *Store) DeleteAttendance(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM meeting_attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting attendance %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetReport returns a meeting's written report or ErrNotFound.
func (s *Store) GetReport(ctx context.Context, meetingID int64) (*Report, error) {
	var r Report
	err := s.pool.QueryRow(ctx,
		`SELECT id, meeting_id, content, created_at, updated_at
		 FROM meeting_reports WHERE meeting_id = $1`, meetingID).
		Scan(&r.ID, &r.MeetingID, &r.Content, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting report for meeting %d: %w", meetingID, err)
	}
	return &r, nil
}

// UpsertReport creates or replaces a meeting's report content.
func (s *Store) UpsertReport(ctx context.Context, meetingID int64, content string) (*Report, error) {
	var r Report
	err := s.pool.QueryRow(ctx,
		`INSERT INTO meeting_reports (meeting_id, content)
		 VALUES ($1, $2)
		 ON CONFLICT (meeting_id) DO UPDATE SET content = EXCLUDED.content, updated_at = now()
		 RETURNING id, meeting_id, content, created_at, updated_at`,
		meetingID, content).
		Scan(&r.ID, &r.MeetingID, &r.Content, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting report for meeting %d: %w", meetingID, err)
	}
	return &r, nil
}
