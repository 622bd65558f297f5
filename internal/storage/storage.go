// Package storage is the durable local key/value store the client keeps
// between runs. It plays the part of a browser's local storage: the session
// token lives under TokenKey.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

// TokenKey is the well-known key of the session token.
const TokenKey = "token"

const table = "local_storage"

type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the store at dbPath. ":memory:" gives a
// throwaway store for tests.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	// A single connection keeps :memory: databases consistent and serializes writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: dbPath}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS local_storage (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value under key and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := sq.Select("value").
		From(table).
		Where(sq.Eq{"key": key}).
		RunWith(s.db).
		QueryRow().
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := sq.Insert(table).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	_, err := sq.Delete(table).
		Where(sq.Eq{"key": key}).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}

// Keys lists stored keys in lexical order.
func (s *Store) Keys() ([]string, error) {
	rows, err := sq.Select("key").
		From(table).
		OrderBy("key").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Stats returns the number of stored keys and the database file size.
func (s *Store) Stats() (int, int64, error) {
	var count int
	err := sq.Select("COUNT(*)").
		From(table).
		RunWith(s.db).
		QueryRow().
		Scan(&count)
	if err != nil {
		return 0, 0, fmt.Errorf("counting keys: %w", err)
	}

	var size int64
	if info, err := os.Stat(s.path); err == nil {
		size = info.Size()
	}
	return count, size, nil
}
