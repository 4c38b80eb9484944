package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ncruces/go-sqlite3"
	"github.com/ncruces/go-sqlite3/ext/serdes"
)

// PersistError wraps a failed backup write. The repository mutation that
// triggered it has already been applied to the in-memory engine; the last
// successfully persisted image is still intact in the vault.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return "store: persist engine image: " + e.Err.Error() }

func (e *PersistError) Unwrap() error { return e.Err }

// rawSQLite is the ncruces driver's escape hatch to the underlying
// sqlite3 connection, reached through database/sql's Conn.Raw.
type rawSQLite interface {
	Raw() *sqlite3.Conn
}

// serializeImage produces the engine's native byte image
// (sqlite3_serialize) for the given handle.
func serializeImage(db *sql.DB) ([]byte, error) {
	conn, err := db.Conn(context.Background())
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var image []byte
	err = conn.Raw(func(driverConn any) error {
		raw, ok := driverConn.(rawSQLite)
		if !ok {
			return fmt.Errorf("driver connection does not expose the sqlite3 API")
		}
		data, err := serdes.Serialize(raw.Raw(), "main")
		if err != nil {
			return err
		}
		image = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return image, nil
}

// deserializeImage replaces the handle's in-memory database with the given
// byte image.
func deserializeImage(db *sql.DB, data []byte) error {
	conn, err := db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn any) error {
		raw, ok := driverConn.(rawSQLite)
		if !ok {
			return fmt.Errorf("driver connection does not expose the sqlite3 API")
		}
		return serdes.Deserialize(raw.Raw(), "main", data)
	})
	if err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}
	return nil
}

// requiredTables is the validation contract for restored and imported
// images: an image missing any of these is rejected.
var requiredTables = []string{"members", "logs", "templates", "settings"}

func validateTables(db *sql.DB) error {
	for _, table := range requiredTables {
		var n int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
			table).Scan(&n)
		if err != nil {
			return fmt.Errorf("inspect schema: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("image is missing table %q", table)
		}
	}
	return nil
}

// OpenImage constructs a store directly from a serialized engine image.
// The image is validated against the expected table set before the store
// is handed out; a truncated or foreign image is an error, not a handle.
func OpenImage(data []byte) (*Store, error) {
	db, err := openHandle()
	if err != nil {
		return nil, err
	}
	if err := deserializeImage(db, data); err != nil {
		db.Close()
		return nil, err
	}
	if err := validateTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// SerializeImage returns the engine's current byte image.
func (s *Store) SerializeImage() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return serializeImage(s.db)
}

// Persist serializes the engine image and writes it to the vault under
// ImageKey. A store with no vault attached persists nowhere.
func (s *Store) Persist() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	if s.vault == nil {
		return nil
	}
	data, err := serializeImage(s.db)
	if err != nil {
		return &PersistError{Err: err}
	}
	if err := s.vault.Put(ImageKey, data); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

// ExportFilename names a downloadable image export for the given day.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("kenisa-backup-%s.db", now.Format("2006-01-02"))
}

// ImportImage replaces the live engine with one built from the given
// bytes. The candidate is validated first; on any failure the current
// engine is retained untouched. On success the new state is persisted
// immediately.
func (s *Store) ImportImage(data []byte) error {
	candidate, err := OpenImage(data)
	if err != nil {
		return fmt.Errorf("import image: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.db
	s.db = candidate.db
	if old != nil {
		old.Close()
	}
	return s.persistLocked()
}
