package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`

// OpenSQLiteDB opens (creating if needed) the key-value database at dbPath.
func OpenSQLiteDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}

// SQLite stores the collection as one JSON value under a fixed key.
type SQLite[T any] struct {
	db  *sqlx.DB
	key string
}

// NewSQLite returns a collection stored under key in db.
func NewSQLite[T any](db *sqlx.DB, key string) *SQLite[T] {
	return &SQLite[T]{db: db, key: key}
}

// Load reads the value for the key. A missing row is an empty collection.
func (s *SQLite[T]) Load() ([]T, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM kv WHERE key = ?`, s.key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	items, err := decode[T]([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return items, nil
}

// Save upserts the value for the key.
func (s *SQLite[T]) Save(items []T) error {
	data, err := encode(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	_, err = s.db.Exec(`
INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		s.key, string(data))
	if err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}
