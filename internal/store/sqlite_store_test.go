package store

import (
	"errors"
	"math"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testMember() *Member {
	return &Member{
		FirstName:      "Mina",
		FatherName:     "Adel",
		FamilyName:     "Gerges",
		Phone1:         "01001234567",
		Phone1WhatsApp: true,
		Gender:         "male",
		BirthDate:      "1990-03-15",
		SocialStatus:   "married",
		MarriageDate:   "2015-06-20",
		Church:         "St Mark",
		Occupation:     "Engineer",
		Services:       []string{"Sunday School", "Choir"},
		PersonalTags:   []string{"servant"},
		IsDeacon:       true,
		SpouseName:     "Marina",
		Children: []Child{
			{Name: "Karas", BirthDate: "2017-01-10"},
			{Name: "Irini", BirthDate: "2019-11-02"},
		},
		CustomFields: map[string]any{"note": "founding family"},
	}
}

func TestInsertMemberAssignsID(t *testing.T) {
	s := newTestStore(t)

	m := testMember()
	if err := s.InsertMember(m); err != nil {
		t.Fatalf("InsertMember failed: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("Expected engine-assigned ID, got 0")
	}
	if m.CreatedAt == 0 || m.UpdatedAt == 0 {
		t.Error("Expected timestamps to be set on insert")
	}

	m2 := testMember()
	if err := s.InsertMember(m2); err != nil {
		t.Fatalf("InsertMember failed: %v", err)
	}
	if m2.ID == m.ID {
		t.Errorf("Expected distinct IDs, both got %d", m.ID)
	}
}

func TestMemberRoundTrip(t *testing.T) {
	s := newTestStore(t)

	m := testMember()
	if err := s.InsertMember(m); err != nil {
		t.Fatalf("InsertMember failed: %v", err)
	}

	got, err := s.GetMember(m.ID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetMember returned nil for existing member")
	}

	if got.FirstName != m.FirstName || got.FamilyName != m.FamilyName {
		t.Errorf("Name mismatch: got %s %s", got.FirstName, got.FamilyName)
	}
	if !got.Phone1WhatsApp || got.Phone2WhatsApp {
		t.Errorf("WhatsApp flags mismatch: got %v/%v", got.Phone1WhatsApp, got.Phone2WhatsApp)
	}
	if !got.IsDeacon || got.IsDeceased || got.IsArchived {
		t.Errorf("Boolean flags mismatch: %v/%v/%v", got.IsDeacon, got.IsDeceased, got.IsArchived)
	}
	if len(got.Services) != 2 || got.Services[0] != "Sunday School" {
		t.Errorf("Services mismatch: %v", got.Services)
	}
	if len(got.Children) != 2 || got.Children[1].Name != "Irini" {
		t.Errorf("Children mismatch: %v", got.Children)
	}
	// JSON numbers come back as float64; string values survive exactly.
	if got.CustomFields["note"] != "founding family" {
		t.Errorf("CustomFields mismatch: %v", got.CustomFields)
	}
	// Optional blanks stay blank.
	if got.GrandfatherName != "" || got.Phone2 != "" || got.Notes != "" {
		t.Errorf("Expected optional fields blank, got %q/%q/%q",
			got.GrandfatherName, got.Phone2, got.Notes)
	}
}

func TestEmptyCollectionsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	m := &Member{FirstName: "Bishoy", FatherName: "Samir", FamilyName: "Tadros", Gender: "male"}
	if err := s.InsertMember(m); err != nil {
		t.Fatalf("InsertMember failed: %v", err)
	}

	got, err := s.GetMember(m.ID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if got.Services == nil || len(got.Services) != 0 {
		t.Errorf("Expected empty services slice, got %#v", got.Services)
	}
	if got.Children == nil || len(got.Children) != 0 {
		t.Errorf("Expected empty children slice, got %#v", got.Children)
	}
	if got.CustomFields == nil || len(got.CustomFields) != 0 {
		t.Errorf("Expected empty custom fields map, got %#v", got.CustomFields)
	}
}

func TestInsertMemberUnencodableCustomField(t *testing.T) {
	s := newTestStore(t)

	m := testMember()
	m.CustomFields = map[string]any{"score": math.NaN()}
	if err := s.InsertMember(m); err == nil {
		t.Fatal("Expected error inserting unencodable custom field")
	}

	// Nothing was stored.
	n, err := s.CountMembers()
	if err != nil {
		t.Fatalf("CountMembers failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected no rows after rejected insert, got %d", n)
	}
}

func TestGetMemberAbsent(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetMember(999)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for absent member, got %+v", got)
	}
}

func TestUpdateMemberPartial(t *testing.T) {
	s := newTestStore(t)

	m := testMember()
	if err := s.InsertMember(m); err != nil {
		t.Fatalf("InsertMember failed: %v", err)
	}

	err := s.UpdateMember(m.ID, map[string]any{
		"phone1":       "01009999999",
		"isDeacon":     false,
		"services":     []string{"Visitations"},
		"customFields": map[string]any{"status": "moved"},
	})
	if err != nil {
		t.Fatalf("UpdateMember failed: %v", err)
	}

	got, err := s.GetMember(m.ID)
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if got.Phone1 != "01009999999" {
		t.Errorf("Expected updated phone, got %q", got.Phone1)
	}
	if got.IsDeacon {
		t.Error("Expected isDeacon false after update")
	}
	if len(got.Services) != 1 || got.Services[0] != "Visitations" {
		t.Errorf("Services mismatch after update: %v", got.Services)
	}
	// Untouched fields survive.
	if got.FirstName != "Mina" || got.SpouseName != "Marina" || len(got.Children) != 2 {
		t.Errorf("Unpatched fields changed: %s/%s/%d children",
			got.FirstName, got.SpouseName, len(got.Children))
	}
	if got.UpdatedAt <= m.UpdatedAt-1 {
		t.Errorf("Expected updatedAt refreshed, got %d (was %d)", got.UpdatedAt, m.UpdatedAt)
	}
}

func TestUpdateMemberUnknownField(t *testing.T) {
	s := newTestStore(t)

	m := testMember()
	if err := s.InsertMember(m); err != nil {
		t.Fatalf("InsertMember failed: %v", err)
	}

	err := s.UpdateMember(m.ID, map[string]any{"phone1; DROP TABLE members--": "x"})
	if err == nil {
		t.Fatal("Expected error for unknown field name")
	}

	// Table is intact and the row unchanged.
	got, err := s.GetMember(m.ID)
	if err != nil {
		t.Fatalf("GetMember after rejected update failed: %v", err)
	}
	if got.Phone1 != m.Phone1 {
		t.Errorf("Row changed by rejected update: %q", got.Phone1)
	}
}

func TestUpdateMemberMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateMember(424242, map[string]any{"phone1": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMemberCascades(t *testing.T) {
	s := newTestStore(t)

	m := testMember()
	if err := s.InsertMember(m); err != nil {
		t.Fatalf("InsertMember failed: %v", err)
	}
	other := &Member{FirstName: "Peter", FatherName: "Hany", FamilyName: "Khalil", Gender: "male"}
	if err := s.InsertMember(other); err != nil {
		t.Fatalf("InsertMember failed: %v", err)
	}

	for _, date := range []string{"2026-01-10", "2026-02-14"} {
		if err := s.InsertLog(&Log{MemberID: m.ID, Date: date, Tags: []string{"general"}}); err != nil {
			t.Fatalf("InsertLog failed: %v", err)
		}
	}
	if err := s.InsertLog(&Log{MemberID: other.ID, Date: "2026-03-01"}); err != nil {
		t.Fatalf("InsertLog failed: %v", err)
	}

	if err := s.DeleteMember(m.ID); err != nil {
		t.Fatalf("DeleteMember failed: %v", err)
	}

	got, err := s.GetMember(m.ID)
	if err != nil || got != nil {
		t.Errorf("Expected member gone, got %+v err %v", got, err)
	}
	logs, err := s.ListLogs()
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].MemberID != other.ID {
		t.Errorf("Expected only the other member's log to survive, got %d logs", len(logs))
	}

	if err := s.DeleteMember(m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestInsertLogUnknownMember(t *testing.T) {
	s := newTestStore(t)

	err := s.InsertLog(&Log{MemberID: 777, Date: "2026-01-01"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown member, got %v", err)
	}
}

func TestLogsOrderedNewestFirst(t *testing.T) {
	s := newTestStore(t)

	m := testMember()
	if err := s.InsertMember(m); err != nil {
		t.Fatalf("InsertMember failed: %v", err)
	}
	for _, date := range []string{"2026-02-01", "2026-05-01", "2026-03-01"} {
		if err := s.InsertLog(&Log{MemberID: m.ID, Date: date}); err != nil {
			t.Fatalf("InsertLog failed: %v", err)
		}
	}

	logs, err := s.LogsForMember(m.ID)
	if err != nil {
		t.Fatalf("LogsForMember failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("Expected 3 logs, got %d", len(logs))
	}
	if logs[0].Date != "2026-05-01" || logs[2].Date != "2026-02-01" {
		t.Errorf("Expected newest first, got %s .. %s", logs[0].Date, logs[2].Date)
	}
}

func TestTemplateCRUD(t *testing.T) {
	s := newTestStore(t)

	tpl := &Template{Title: "Feast greeting", Body: "Blessed feast, {first name}!"}
	if err := s.InsertTemplate(tpl); err != nil {
		t.Fatalf("InsertTemplate failed: %v", err)
	}
	if tpl.ID == 0 {
		t.Fatal("Expected engine-assigned template ID")
	}

	if err := s.UpdateTemplate(tpl.ID, map[string]any{"body": "Happy feast, {first name}!"}); err != nil {
		t.Fatalf("UpdateTemplate failed: %v", err)
	}

	templates, err := s.ListTemplates()
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if len(templates) != 1 || templates[0].Body != "Happy feast, {first name}!" {
		t.Errorf("Template list mismatch: %+v", templates)
	}

	if err := s.DeleteTemplate(tpl.ID); err != nil {
		t.Fatalf("DeleteTemplate failed: %v", err)
	}
	if err := s.DeleteTemplate(tpl.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Setting(SettingOccupations)
	if err != nil {
		t.Fatalf("Setting failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty list for absent key, got %#v", got)
	}

	if err := s.PutSetting(SettingOccupations, []string{"Engineer", "Doctor"}); err != nil {
		t.Fatalf("PutSetting failed: %v", err)
	}
	if err := s.PutSetting(SettingOccupations, []string{"Engineer", "Doctor", "Nurse"}); err != nil {
		t.Fatalf("PutSetting (overwrite) failed: %v", err)
	}

	got, err = s.Setting(SettingOccupations)
	if err != nil {
		t.Fatalf("Setting failed: %v", err)
	}
	if len(got) != 3 || got[2] != "Nurse" {
		t.Errorf("Setting mismatch: %v", got)
	}
}
