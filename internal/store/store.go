// Package store persists the client's local state in a small SQLite database.
//
// The only durable state the client keeps between runs is a handful of
// key-value entries, most importantly the credential token. Everything else
// (identity, quiz attempts, chat transcripts) is in-memory and rebuilt from
// the remote API.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// credentialKey is the fixed key under which the signed credential token is
// stored. It is the single entry that survives process restarts until logout
// or detected expiry.
const credentialKey = "credential"

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping state database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS client_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Set upserts a key-value pair in the client_state table.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO client_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// Get returns the value for a key.
// Returns empty string and nil error if the key is missing.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM client_state WHERE key = ?`, key)
	return err
}

// Credential returns the persisted credential token, or empty string if none.
func (s *Store) Credential() (string, error) {
	return s.Get(credentialKey)
}

// SetCredential persists the credential token.
func (s *Store) SetCredential(token string) error {
	return s.Set(credentialKey, token)
}

// DeleteCredential removes the persisted credential token.
func (s *Store) DeleteCredential() error {
	return s.Delete(credentialKey)
}
