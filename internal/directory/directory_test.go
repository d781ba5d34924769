package directory

import "testing"

func TestValidTable(t *testing.T) {
	for _, tbl := range []Table{TablePositions, TableDepartments, TableCommittees, TableMeetingTypes} {
		if !ValidTable(tbl) {
			t.Errorf("ValidTable(%q) = false, want true", tbl)
		}
	}
	for _, tbl := range []Table{"", "users", "members", "position"} {
		if ValidTable(tbl) {
			t.Errorf("ValidTable(%q) = true, want false", tbl)
		}
	}
}

func TestCheckTableRejectsUnknown(t *testing.T) {
	if err := checkTable("votes"); err == nil {
		t.Fatal("checkTable accepted an unknown table")
	}
	if err := checkTable(TableCommittees); err != nil {
		t.Fatalf("checkTable rejected a known table: %v", err)
	}
}
