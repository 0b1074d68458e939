package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// KeyValueStore is a generic string scratchpad backed by the key_values
// table.
type KeyValueStore struct {
	db *DB
}

// NewKeyValueStore creates a new KeyValueStore.
func NewKeyValueStore(db *DB) *KeyValueStore {
	return &KeyValueStore{db: db}
}

// Set upserts a key. Existing keys keep created_at and bump updated_at.
func (s *KeyValueStore) Set(key, value string) error {
	now := time.Now().Unix()
	_, err := s.db.Conn().Exec(
		`INSERT INTO key_values (key, value, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now, now,
	)
	if err != nil {
		return fmt.Errorf("set key %q: %w", key, err)
	}
	return nil
}

// Get returns the value for key; ok is false when the key is absent.
func (s *KeyValueStore) Get(key string) (value string, ok bool, err error) {
	row := s.db.Conn().QueryRow(`SELECT value FROM key_values WHERE key = ?`, key)
	err = row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get key %q: %w", key, err)
	}
	return value, true, nil
}

// Delete removes a key; deleting an absent key is not an error.
func (s *KeyValueStore) Delete(key string) error {
	if _, err := s.db.Conn().Exec(`DELETE FROM key_values WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

// ListKeys returns all keys in lexical order.
func (s *KeyValueStore) ListKeys() ([]string, error) {
	rows, err := s.db.Conn().Query(`SELECT key FROM key_values ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("list keys: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
