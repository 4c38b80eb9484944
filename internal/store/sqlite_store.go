package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/kenisa/raai/internal/vault"
)

// Store is the SQLite-backed repository. The engine lives in memory; every
// mutating operation re-serializes the whole image into the attached vault
// (no batching). A nil vault makes the store purely in-memory, which is
// what tests and import validation use.
type Store struct {
	mu    sync.RWMutex
	db    *sql.DB
	vault *vault.Vault
}

// schema defines the four tables of the records core.
const schema = `
-- Members
CREATE TABLE IF NOT EXISTS members (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name TEXT NOT NULL,
    father_name TEXT NOT NULL,
    grandfather_name TEXT,
    family_name TEXT NOT NULL,
    phone1 TEXT,
    phone1_whatsapp INTEGER DEFAULT 0,
    phone2 TEXT,
    phone2_whatsapp INTEGER DEFAULT 0,
    gender TEXT NOT NULL,
    birth_date TEXT,
    social_status TEXT,
    marriage_date TEXT,
    church TEXT,
    confession_start TEXT,
    occupation TEXT,
    services TEXT,
    personal_tags TEXT,
    is_deacon INTEGER DEFAULT 0,
    is_deceased INTEGER DEFAULT 0,
    is_archived INTEGER DEFAULT 0,
    notes TEXT,
    spouse_name TEXT,
    spouse_phone TEXT,
    children TEXT,
    photo TEXT,
    custom_fields TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_members_family ON members(family_name);

-- Confession logs
-- Note: No foreign keys - the member/log relation is enforced by the repository
CREATE TABLE IF NOT EXISTS logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    member_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    notes TEXT,
    tags TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_logs_member ON logs(member_id);
CREATE INDEX IF NOT EXISTS idx_logs_date ON logs(date);

-- Message templates
CREATE TABLE IF NOT EXISTS templates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Settings key/value space (value is a JSON-encoded list of strings)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// New creates a fresh in-memory store with the schema applied and no vault
// attached. Production code goes through Initialize instead.
func New() (*Store, error) {
	db, err := openHandle()
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// openHandle opens an in-memory database pinned to a single connection.
// An in-memory SQLite database exists per connection, so the database/sql
// pool must never open a second one.
func openHandle() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// Member CRUD
// =============================================================================

const memberColumns = `id, first_name, father_name, grandfather_name, family_name,
	phone1, phone1_whatsapp, phone2, phone2_whatsapp, gender, birth_date,
	social_status, marriage_date, church, confession_start, occupation,
	services, personal_tags, is_deacon, is_deceased, is_archived, notes,
	spouse_name, spouse_phone, children, photo, custom_fields, created_at, updated_at`

// InsertMember inserts one member row. The engine assigns the identifier,
// which is echoed into m.ID.
func (s *Store) InsertMember(m *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insertMemberRow(m); err != nil {
		return err
	}
	return s.persistLocked()
}

func (s *Store) insertMemberRow(m *Member) error {
	now := time.Now().UnixMilli()
	if m.CreatedAt == 0 {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	services, err := encodeJSON(m.Services)
	if err != nil {
		return fmt.Errorf("insert member: services: %w", err)
	}
	personalTags, err := encodeJSON(m.PersonalTags)
	if err != nil {
		return fmt.Errorf("insert member: personal tags: %w", err)
	}
	children, err := encodeJSON(m.Children)
	if err != nil {
		return fmt.Errorf("insert member: children: %w", err)
	}
	customFields, err := encodeJSON(m.CustomFields)
	if err != nil {
		return fmt.Errorf("insert member: custom fields: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO members (first_name, father_name, grandfather_name, family_name,
			phone1, phone1_whatsapp, phone2, phone2_whatsapp, gender, birth_date,
			social_status, marriage_date, church, confession_start, occupation,
			services, personal_tags, is_deacon, is_deceased, is_archived, notes,
			spouse_name, spouse_phone, children, photo, custom_fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.FirstName, m.FatherName, nullIfEmpty(m.GrandfatherName), m.FamilyName,
		nullIfEmpty(m.Phone1), boolToInt(m.Phone1WhatsApp), nullIfEmpty(m.Phone2), boolToInt(m.Phone2WhatsApp),
		m.Gender, nullIfEmpty(m.BirthDate), m.SocialStatus, nullIfEmpty(m.MarriageDate),
		nullIfEmpty(m.Church), nullIfEmpty(m.ConfessionStart), nullIfEmpty(m.Occupation),
		services, personalTags,
		boolToInt(m.IsDeacon), boolToInt(m.IsDeceased), boolToInt(m.IsArchived),
		nullIfEmpty(m.Notes), nullIfEmpty(m.SpouseName), nullIfEmpty(m.SpousePhone),
		children, nullIfEmpty(m.Photo), customFields,
		m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	m.ID = id
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*Member, error) {
	var m Member
	var isDeacon, isDeceased, isArchived, p1wa, p2wa int
	var grandfather, phone1, phone2, birthDate, socialStatus, marriageDate sql.NullString
	var church, confessionStart, occupation, services, personalTags sql.NullString
	var notes, spouseName, spousePhone, children, photo, customFields sql.NullString

	err := row.Scan(
		&m.ID, &m.FirstName, &m.FatherName, &grandfather, &m.FamilyName,
		&phone1, &p1wa, &phone2, &p2wa, &m.Gender, &birthDate,
		&socialStatus, &marriageDate, &church, &confessionStart, &occupation,
		&services, &personalTags, &isDeacon, &isDeceased, &isArchived, &notes,
		&spouseName, &spousePhone, &children, &photo, &customFields,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.GrandfatherName = grandfather.String
	m.Phone1 = phone1.String
	m.Phone2 = phone2.String
	m.Phone1WhatsApp = p1wa != 0
	m.Phone2WhatsApp = p2wa != 0
	m.BirthDate = birthDate.String
	m.SocialStatus = socialStatus.String
	m.MarriageDate = marriageDate.String
	m.Church = church.String
	m.ConfessionStart = confessionStart.String
	m.Occupation = occupation.String
	m.Notes = notes.String
	m.SpouseName = spouseName.String
	m.SpousePhone = spousePhone.String
	m.Photo = photo.String
	m.IsDeacon = isDeacon != 0
	m.IsDeceased = isDeceased != 0
	m.IsArchived = isArchived != 0

	if m.Services, err = decodeStrings("member", "services", services.String); err != nil {
		return nil, err
	}
	if m.PersonalTags, err = decodeStrings("member", "personal_tags", personalTags.String); err != nil {
		return nil, err
	}
	if m.Children, err = decodeChildren(children.String); err != nil {
		return nil, err
	}
	if m.CustomFields, err = decodeCustomFields(customFields.String); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMember retrieves a member by ID. Returns (nil, nil) when absent.
func (s *Store) GetMember(id int64) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := scanMember(s.db.QueryRow(
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// ListMembers returns all members ordered by family then first name.
// Filtering (archived, deceased, search) is done by callers over the full
// result set.
func (s *Store) ListMembers() ([]*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT ` + memberColumns + ` FROM members ORDER BY family_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateMember applies a partial patch. The assignment list is built from
// exactly the fields present in patch; everything else is left untouched.
// Unknown field names are rejected, and a missing id is ErrNotFound.
func (s *Store) UpdateMember(id int64, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		p[k] = v
	}
	if _, ok := p["updatedAt"]; !ok {
		p["updatedAt"] = time.Now().UnixMilli()
	}

	if err := s.execUpdate("member", "members", memberFields, id, p); err != nil {
		return err
	}
	return s.persistLocked()
}

// DeleteMember removes a member and, first, all of its logs. The two
// deletes run in one transaction: the storage engine knows nothing about
// the relation, so the repository owns the cascade invariant.
func (s *Store) DeleteMember(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete member %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM logs WHERE member_id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete member %d logs: %w", id, err)
	}
	res, err := tx.Exec("DELETE FROM members WHERE id = ?", id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("delete member %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete member %d: %w", id, err)
	}
	return s.persistLocked()
}

// CountMembers returns the total number of member rows.
func (s *Store) CountMembers() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM members").Scan(&count)
	return count, err
}

// =============================================================================
// Log CRUD
// =============================================================================

// InsertLog inserts one confession log. The referenced member must exist;
// the reference is not re-validated afterward.
func (s *Store) InsertLog(l *Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insertLogRow(l); err != nil {
		return err
	}
	return s.persistLocked()
}

func (s *Store) insertLogRow(l *Log) error {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM members WHERE id = ?", l.MemberID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("insert log: member %d: %w", l.MemberID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}

	if l.CreatedAt == 0 {
		l.CreatedAt = time.Now().UnixMilli()
	}
	tags, err := encodeJSON(l.Tags)
	if err != nil {
		return fmt.Errorf("insert log: tags: %w", err)
	}
	res, err := s.db.Exec(`
		INSERT INTO logs (member_id, date, notes, tags, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, l.MemberID, l.Date, nullIfEmpty(l.Notes), tags, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	l.ID = id
	return nil
}

func scanLog(row rowScanner) (*Log, error) {
	var l Log
	var notes, tags sql.NullString

	if err := row.Scan(&l.ID, &l.MemberID, &l.Date, &notes, &tags, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Notes = notes.String

	var err error
	if l.Tags, err = decodeStrings("log", "tags", tags.String); err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLogs returns all logs ordered by date descending.
func (s *Store) ListLogs() ([]*Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLogs(`SELECT id, member_id, date, notes, tags, created_at
		FROM logs ORDER BY date DESC, id DESC`)
}

// LogsForMember returns one member's logs ordered by date descending.
func (s *Store) LogsForMember(memberID int64) ([]*Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLogs(`SELECT id, member_id, date, notes, tags, created_at
		FROM logs WHERE member_id = ? ORDER BY date DESC, id DESC`, memberID)
}

func (s *Store) queryLogs(query string, args ...any) ([]*Log, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// UpdateLog applies a partial patch to one log row.
func (s *Store) UpdateLog(id int64, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.execUpdate("log", "logs", logFields, id, patch); err != nil {
		return err
	}
	return s.persistLocked()
}

// DeleteLog removes one log row.
func (s *Store) DeleteLog(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.execDelete("logs", id); err != nil {
		return err
	}
	return s.persistLocked()
}

// =============================================================================
// Template CRUD
// =============================================================================

// InsertTemplate inserts one message template.
func (s *Store) InsertTemplate(t *Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insertTemplateRow(t); err != nil {
		return err
	}
	return s.persistLocked()
}

func (s *Store) insertTemplateRow(t *Template) error {
	now := time.Now().UnixMilli()
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	res, err := s.db.Exec(`
		INSERT INTO templates (title, body, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, t.Title, t.Body, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	t.ID = id
	return nil
}

// ListTemplates returns all templates ordered by title.
func (s *Store) ListTemplates() ([]*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, title, body, created_at, updated_at
		FROM templates ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Title, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, &t)
	}
	return templates, rows.Err()
}

// UpdateTemplate applies a partial patch to one template.
func (s *Store) UpdateTemplate(id int64, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		p[k] = v
	}
	if _, ok := p["updatedAt"]; !ok {
		p["updatedAt"] = time.Now().UnixMilli()
	}

	if err := s.execUpdate("template", "templates", templateFields, id, p); err != nil {
		return err
	}
	return s.persistLocked()
}

// DeleteTemplate removes one template.
func (s *Store) DeleteTemplate(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.execDelete("templates", id); err != nil {
		return err
	}
	return s.persistLocked()
}

// =============================================================================
// Settings
// =============================================================================

// Setting returns the string list stored under key. An absent key decodes
// to an empty list.
func (s *Store) Setting(key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeStrings("settings", key, value)
}

// PutSetting stores a string list under key, replacing any prior value.
// Duplicate detection is the caller's job.
func (s *Store) PutSetting(key string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.putSettingRow(key, values); err != nil {
		return err
	}
	return s.persistLocked()
}

func (s *Store) putSettingRow(key string, values []string) error {
	value, err := encodeJSON(values)
	if err != nil {
		return fmt.Errorf("put setting %q: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("put setting %q: %w", key, err)
	}
	return nil
}

// =============================================================================
// Shared update/delete plumbing
// =============================================================================

func (s *Store) execUpdate(entity, table string, defs map[string]fieldDef, id int64, patch map[string]any) error {
	query, args, err := buildUpdate(entity, table, defs, id, patch)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", entity, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) execDelete(table string, id int64) error {
	res, err := s.db.Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Compile-time interface check
var _ Storer = (*Store)(nil)
