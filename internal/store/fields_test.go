package store

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildUpdateDeterministic(t *testing.T) {
	patch := map[string]any{
		"phone1":   "0100",
		"isDeacon": true,
		"notes":    "x",
	}

	query, args, err := buildUpdate("member", "members", memberFields, 7, patch)
	if err != nil {
		t.Fatalf("buildUpdate failed: %v", err)
	}

	want := "UPDATE members SET is_deacon = ?, notes = ?, phone1 = ? WHERE id = ?"
	if query != want {
		t.Errorf("Query mismatch:\n got  %s\n want %s", query, want)
	}
	if len(args) != 4 {
		t.Fatalf("Expected 4 args, got %d", len(args))
	}
	if args[0] != 1 {
		t.Errorf("Expected bool coerced to 1, got %v", args[0])
	}
	if args[3] != int64(7) {
		t.Errorf("Expected trailing id arg, got %v", args[3])
	}
}

func TestBuildUpdateRejectsUnknownField(t *testing.T) {
	_, _, err := buildUpdate("member", "members", memberFields, 1,
		map[string]any{"first_name = 'x', id": "y"})
	if err == nil {
		t.Fatal("Expected error for unknown field")
	}
	if strings.Contains(err.Error(), "UPDATE") {
		t.Errorf("Caller input leaked into SQL context: %v", err)
	}
}

func TestBuildUpdateEmptyPatch(t *testing.T) {
	_, _, err := buildUpdate("member", "members", memberFields, 1, map[string]any{})
	if err == nil {
		t.Fatal("Expected error for empty patch")
	}
}

func TestEncodeFieldTypeMismatch(t *testing.T) {
	_, err := encodeField("member", "isDeacon", memberFields["isDeacon"], "yes")
	if err == nil {
		t.Error("Expected error encoding string into bool field")
	}
	_, err = encodeField("member", "phone1", memberFields["phone1"], 42)
	if err == nil {
		t.Error("Expected error encoding int into text field")
	}
}

func TestDecodeStrings(t *testing.T) {
	for _, raw := range []string{"", "null"} {
		got, err := decodeStrings("member", "services", raw)
		if err != nil {
			t.Fatalf("decodeStrings(%q) failed: %v", raw, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("decodeStrings(%q): expected empty slice, got %#v", raw, got)
		}
	}

	got, err := decodeStrings("member", "services", `["a","b"]`)
	if err != nil {
		t.Fatalf("decodeStrings failed: %v", err)
	}
	if len(got) != 2 || got[1] != "b" {
		t.Errorf("decodeStrings mismatch: %v", got)
	}

	_, err = decodeStrings("member", "services", "{broken")
	var de *DecodeError
	if !errors.As(err, &de) || de.Column != "services" {
		t.Errorf("Expected DecodeError naming the column, got %v", err)
	}
}
