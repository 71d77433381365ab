package store

import (
	"database/sql"
	"errors"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Sentinel errors for lookups. Backend failures are returned as-is.
var (
	ErrLearnerNotFound     = errors.New("learner not found")
	ErrInteractionNotFound = errors.New("interaction not found")
	ErrSessionNotFound     = errors.New("writing session not found")
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// DB exposes the underlying connection so sibling stores can share it.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping verifies the backend is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) Close() error {
	return s.db.Close()
}
