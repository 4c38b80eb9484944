package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by update/delete when no row carries the given id.
var ErrNotFound = errors.New("store: record not found")

// DecodeError reports a stored column value that cannot be coerced back to
// its domain type. The store fails fast rather than silently coercing.
type DecodeError struct {
	Entity string
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("store: decode %s.%s: %v", e.Entity, e.Column, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type fieldKind int

const (
	kindText fieldKind = iota
	kindBool
	kindInt
	kindJSON
)

type fieldDef struct {
	column string
	kind   fieldKind
}

// memberFields is the closed set of patchable member fields. Update
// statements are built only from column names found here; caller-supplied
// names never reach SQL text directly.
var memberFields = map[string]fieldDef{
	"firstName":       {"first_name", kindText},
	"fatherName":      {"father_name", kindText},
	"grandfatherName": {"grandfather_name", kindText},
	"familyName":      {"family_name", kindText},
	"phone1":          {"phone1", kindText},
	"phone1WhatsApp":  {"phone1_whatsapp", kindBool},
	"phone2":          {"phone2", kindText},
	"phone2WhatsApp":  {"phone2_whatsapp", kindBool},
	"gender":          {"gender", kindText},
	"birthDate":       {"birth_date", kindText},
	"socialStatus":    {"social_status", kindText},
	"marriageDate":    {"marriage_date", kindText},
	"church":          {"church", kindText},
	"confessionStart": {"confession_start", kindText},
	"occupation":      {"occupation", kindText},
	"services":        {"services", kindJSON},
	"personalTags":    {"personal_tags", kindJSON},
	"isDeacon":        {"is_deacon", kindBool},
	"isDeceased":      {"is_deceased", kindBool},
	"isArchived":      {"is_archived", kindBool},
	"notes":           {"notes", kindText},
	"spouseName":      {"spouse_name", kindText},
	"spousePhone":     {"spouse_phone", kindText},
	"children":        {"children", kindJSON},
	"photo":           {"photo", kindText},
	"customFields":    {"custom_fields", kindJSON},
	"updatedAt":       {"updated_at", kindInt},
}

var logFields = map[string]fieldDef{
	"memberId": {"member_id", kindInt},
	"date":     {"date", kindText},
	"notes":    {"notes", kindText},
	"tags":     {"tags", kindJSON},
}

var templateFields = map[string]fieldDef{
	"title":     {"title", kindText},
	"body":      {"body", kindText},
	"updatedAt": {"updated_at", kindInt},
}

// encodeField applies the coercion rule for one patch value.
func encodeField(entity, name string, def fieldDef, v any) (any, error) {
	switch def.kind {
	case kindText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("store: %s.%s: expected string, got %T", entity, name, v)
		}
		return s, nil
	case kindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("store: %s.%s: expected bool, got %T", entity, name, v)
		}
		return boolToInt(b), nil
	case kindInt:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case float64:
			return int64(n), nil
		}
		return nil, fmt.Errorf("store: %s.%s: expected integer, got %T", entity, name, v)
	case kindJSON:
		data, err := encodeJSON(v)
		if err != nil {
			return nil, fmt.Errorf("store: %s.%s: %w", entity, name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("store: %s.%s: unknown field kind", entity, name)
}

// buildUpdate constructs an UPDATE statement whose assignment list has one
// entry per patch field. Field names are resolved through the entity's
// closed field table; an unknown name is an error, never SQL text. Fields
// are sorted so the statement is deterministic for a given patch set.
func buildUpdate(entity, table string, defs map[string]fieldDef, id int64, patch map[string]any) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("store: update %s %d: empty patch", entity, id)
	}

	names := make([]string, 0, len(patch))
	for name := range patch {
		if _, ok := defs[name]; !ok {
			return "", nil, fmt.Errorf("store: update %s: unknown field %q", entity, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var assign strings.Builder
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		def := defs[name]
		val, err := encodeField(entity, name, def, patch[name])
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			assign.WriteString(", ")
		}
		assign.WriteString(def.column)
		assign.WriteString(" = ?")
		args = append(args, val)
	}
	args = append(args, id)

	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, assign.String()), args, nil
}

// decodeStrings coerces a JSON TEXT column back to a string slice.
// NULL or empty decodes to an empty slice, never nil.
func decodeStrings(entity, column, raw string) ([]string, error) {
	if raw == "" || raw == "null" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &DecodeError{Entity: entity, Column: column, Err: err}
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func decodeChildren(raw string) ([]Child, error) {
	if raw == "" || raw == "null" {
		return []Child{}, nil
	}
	var out []Child
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &DecodeError{Entity: "member", Column: "children", Err: err}
	}
	if out == nil {
		out = []Child{}
	}
	return out, nil
}

func decodeCustomFields(raw string) (map[string]any, error) {
	if raw == "" || raw == "null" {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &DecodeError{Entity: "member", Column: "custom_fields", Err: err}
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// encodeJSON marshals a collection value for a TEXT column. A value that
// cannot be marshaled (NaN in a custom field, say) is an error, never a
// silently stored blank.
func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullIfEmpty maps "" to NULL for optional TEXT columns. The decode side
// treats NULL and "" identically, so the coercion stays reversible.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
