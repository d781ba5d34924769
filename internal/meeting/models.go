package meeting

import "time"

// Meeting is a scheduled or past party meeting. MeetingTypeName is joined
// in from the meeting_types reference table when present.
type Meeting struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Date            time.Time `json:"date"`
	Location        *string   `json:"location,omitempty"`
	MeetingTypeID   *int64    `json:"meeting_type_id,omitempty"`
	MeetingTypeName *string   `json:"meeting_type_name,omitempty"`
	Description     *string   `json:"description,omitempty"`
	IsOpenData      bool      `json:"is_open_data"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateMeetingInput holds the fields for a new meeting.
type CreateMeetingInput struct {
	Title         string    `json:"title"`
	Date          time.Time `json:"date"`
	Location      *string   `json:"location,omitempty"`
	MeetingTypeID *int64    `json:"meeting_type_id,omitempty"`
	Description   *string   `json:"description,omitempty"`
	IsOpenData    bool      `json:"is_open_data"`
}

// UpdateMeetingInput holds optional fields for a partial meeting update.
type UpdateMeetingInput struct {
	Title         *string    `json:"title,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	Location      *string    `json:"location,omitempty"`
	MeetingTypeID *int64     `json:"meeting_type_id,omitempty"`
	Description   *string    `json:"description,omitempty"`
	IsOpenData    *bool      `json:"is_open_data,omitempty"`
}

// Attendance status values.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
)

// ValidAttendanceStatus reports whether status is a known attendance value.
func ValidAttendanceStatus(status string) bool {
	switch status {
	case AttendancePresent, AttendanceAbsent, AttendanceExcused:
		return true
	}
	return false
}

// Attendance records one member's presence at one meeting. At most one row
// exists per (meeting, member) pair. MemberName is joined in for display.
type Attendance struct {
	ID         int64     `json:"id"`
	MeetingID  int64     `json:"meeting_id"`
	MemberID   int64     `json:"member_id"`
	MemberName *string   `json:"member_name,omitempty"`
	Status     string    `json:"status"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordAttendanceInput holds the fields for a new attendance record.
type RecordAttendanceInput struct {
	MemberID int64   `json:"member_id"`
	Status   string  `json:"status"`
	Note     *string `json:"note,omitempty"`
}

// Agenda item status values.
const (
	AgendaProposed    = "proposed"
	AgendaConsidering = "considering"
	AgendaPassed      = "passed"
	AgendaFailed      = "failed"
)

// ValidAgendaStatus reports whether status is a known agenda status.
func ValidAgendaStatus(status string) bool {
	switch status {
	case AgendaProposed, AgendaConsidering, AgendaPassed, AgendaFailed:
		return true
	}
	return false
}

// Agenda is one item on a meeting's agenda, ordered by Position.
type Agenda struct {
	ID          int64     `json:"id"`
	MeetingID   int64     `json:"meeting_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Position    int       `json:"position"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateAgendaInput holds the fields for a new agenda item. An empty Status
// defaults to proposed.
type CreateAgendaInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Position    int     `json:"position"`
	Status      string  `json:"status,omitempty"`
}

// UpdateAgendaInput holds optional fields for a partial agenda update.
type UpdateAgendaInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Position    *int    `json:"position,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Vote choice values.
const (
	VoteAgree    = "agree"
	VoteDisagree = "disagree"
	VoteAbstain  = "abstain"
	VoteNotVoted = "not_voted"
)

// ValidVoteChoice reports whether choice is a known vote value.
func ValidVoteChoice(choice string) bool {
	switch choice {
	case VoteAgree, VoteDisagree, VoteAbstain, VoteNotVoted:
		return true
	}
	return false
}

// Vote records one member's vote on one agenda item. At most one row exists
// per (agenda, member) pair.
type Vote struct {
	ID         int64     `json:"id"`
	AgendaID   int64     `json:"agenda_id"`
	MemberID   int64     `json:"member_id"`
	MemberName *string   `json:"member_name,omitempty"`
	Choice     string    `json:"choice"`
	CreatedAt  time.Time `json:"created_at"`
}

// CastVoteInput holds the fields for a new vote.
type CastVoteInput struct {
	MemberID int64  `json:"member_id"`
	Choice   string `json:"choice"`
}

// Report is the written record of a meeting.
type Report struct {
	ID        int64     `json:"id"`
	MeetingID int64     `json:"meeting_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Origins a draft regulation can be proposed at.
const (
	ProposedInternal         = "internal"
	ProposedCentralCouncil   = "central_council"
	ProposedThaprajanCouncil = "thaprajan_council"
	ProposedRangsitCouncil   = "rangsit_council"
	ProposedLampangCouncil   = "lampang_council"
	ProposedCommittee        = "committee"
)

// ValidProposedAt reports whether origin is a known proposal origin.
func ValidProposedAt(origin string) bool {
	switch origin {
	case ProposedInternal, ProposedCentralCouncil, ProposedThaprajanCouncil,
		ProposedRangsitCouncil, ProposedLampangCouncil, ProposedCommittee:
		return true
	}
	return false
}

// Draft regulation status values.
const (
	RegulationDraft    = "draft"
	RegulationProposed = "proposed"
	RegulationPassed   = "passed"
	RegulationRejected = "rejected"
)

// ValidRegulationStatus reports whether status is a known regulation status.
func ValidRegulationStatus(status string) bool {
	switch status {
	case RegulationDraft, RegulationProposed, RegulationPassed, RegulationRejected:
		return true
	}
	return false
}

// DraftRegulation is a regulation working its way through the party's
// process. ProposerName is the proposing member's full name, joined in.
type DraftRegulation struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ProposedAt   string    `json:"proposed_at"`
	ProposerID   *int64    `json:"proposer_id,omitempty"`
	ProposerName *string   `json:"proposer_name,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRegulationInput holds the fields for a new draft regulation.
type CreateRegulationInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	ProposedAt string `json:"proposed_at"`
	ProposerID *int64 `json:"proposer_id,omitempty"`
}

// UpdateRegulationInput holds optional fields for a partial regulation update.
type UpdateRegulationInput struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	ProposedAt *string `json:"proposed_at,omitempty"`
	ProposerID *int64  `json:"proposer_id,omitempty"`
	Status     *string `json:"status,omitempty"`
}
