package member

import (
	"encoding/json"
	"testing"
)

func TestValidRole(t *testing.T) {
	valid := []string{RoleCouncilMember, RoleCommitteeMember, RoleRegularMember}
	for _, role := range valid {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	invalid := []string{"", "admin", "Council_Member", "member"}
	for _, role := range invalid {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true, want false", role)
		}
	}
}

func TestValidKind(t *testing.T) {
	for _, k := range []Kind{KindPosition, KindDepartment, KindCommittee} {
		if !ValidKind(k) {
			t.Errorf("ValidKind(%q) = false, want true", k)
		}
	}
	for _, k := range []Kind{"", "role", "positions"} {
		if ValidKind(k) {
			t.Errorf("ValidKind(%q) = true, want false", k)
		}
	}
}

// A body that never mentions is_current must produce an active assignment;
// only an explicit false creates a historical one.
func TestAddAssignmentInputCurrentDefaultsTrue(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"omitted", `{"member_id":7,"target_id":3}`, true},
		{"explicit true", `{"member_id":7,"target_id":3,"is_current":true}`, true},
		{"explicit false", `{"member_id":7,"target_id":3,"is_current":false}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in AddAssignmentInput
			if err := json.Unmarshal([]byte(tt.body), &in); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := in.Current(); got != tt.want {
				t.Errorf("Current() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddRoleInputCurrentDefaultsTrue(t *testing.T) {
	var in AddRoleInput
	if err := json.Unmarshal([]byte(`{"member_id":7,"role":"council_member"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !in.Current() {
		t.Error("Current() = false for omitted is_current, want true")
	}

	if err := json.Unmarshal([]byte(`{"member_id":7,"role":"council_member","is_current":false}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.Current() {
		t.Error("Current() = true for explicit false, want false")
	}
}

func TestRelationsCoverAllKinds(t *testing.T) {
	for kind, rel := range relations {
		if rel.table == "" || rel.targetCol == "" || rel.refTable == "" {
			t.Errorf("relation for %q has empty fields: %+v", kind, rel)
		}
	}
}
