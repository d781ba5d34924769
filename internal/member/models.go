package member

import "time"

// Member is a party-roster entity. It is independent of a login credential.
type Member struct {
	ID              int64     `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	StudentID       *string   `json:"student_id,omitempty"`
	Email           *string   `json:"email,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	EducationCenter *string   `json:"education_center,omitempty"`
	IsOpenData      bool      `json:"is_open_data"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateMemberInput holds the fields required to create a member.
type CreateMemberInput struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	StudentID       *string `json:"student_id,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	EducationCenter *string `json:"education_center,omitempty"`
	IsOpenData      bool    `json:"is_open_data"`
}

// UpdateMemberInput holds optional fields for a partial member update.
type UpdateMemberInput struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	StudentID       *string `json:"student_id,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	EducationCenter *string `json:"education_center,omitempty"`
	IsOpenData      *bool   `json:"is_open_data,omitempty"`
}

// Assignment links a member to a position, department, or committee with
// temporal validity. TargetName is the referenced entity's display name,
// joined in by the store so callers never see an ambiguous row shape.
// A closed assignment keeps its row (IsCurrent=false, EndDate set) so that
// attendance and voting history stays reconstructible.
type Assignment struct {
	ID         int64      `json:"id"`
	MemberID   int64      `json:"member_id"`
	TargetID   int64      `json:"target_id"`
	TargetName *string    `json:"target_name,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	IsCurrent  bool       `json:"is_current"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AddAssignmentInput holds the fields for a new assignment row. IsCurrent
// is a pointer so that an omitted field is distinguishable from an explicit
// false; a new assignment is active unless the caller says otherwise.
type AddAssignmentInput struct {
	MemberID  int64      `json:"member_id"`
	TargetID  int64      `json:"target_id"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsCurrent *bool      `json:"is_current,omitempty"`
}

// Current resolves the is_current value, defaulting to true when omitted.
func (in AddAssignmentInput) Current() bool {
	if in.IsCurrent == nil {
		return true
	}
	return *in.IsCurrent
}

// Party-role values for the member-role relation.
const (
	RoleCouncilMember   = "council_member"
	RoleCommitteeMember = "committee_member"
	RoleRegularMember   = "regular_member"
)

// ValidRole reports whether role is one of the fixed party-role values.
func ValidRole(role string) bool {
	switch role {
	case RoleCouncilMember, RoleCommitteeMember, RoleRegularMember:
		return true
	}
	return false
}

// RoleAssignment links a member to a fixed party role with temporal
// validity. Unlike the other three relations the target is an enum value,
// not a foreign-key table.
type RoleAssignment struct {
	ID        int64      `json:"id"`
	MemberID  int64      `json:"member_id"`
	Role      string     `json:"role"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsCurrent bool       `json:"is_current"`
	CreatedAt time.Time  `json:"created_at"`
}

// AddRoleInput holds the fields for a new role assignment. IsCurrent
// defaults to true when omitted, as with AddAssignmentInput.
type AddRoleInput struct {
	MemberID  int64      `json:"member_id"`
	Role      string     `json:"role"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsCurrent *bool      `json:"is_current,omitempty"`
}

// Current resolves the is_current value, defaulting to true when omitted.
func (in AddRoleInput) Current() bool {
	if in.IsCurrent == nil {
		return true
	}
	return *in.IsCurrent
}

// UpdateRoleInput holds optional fields for a partial role-assignment update.
type UpdateRoleInput struct {
	Role      *string    `json:"role,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsCurrent *bool      `json:"is_current,omitempty"`
}
