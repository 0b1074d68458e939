package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SavedQuery is a named SQL snippet scoped to one stored connection.
type SavedQuery struct {
	ID           string `json:"id"`
	ConnectionID int64  `json:"connectionId"`
	Name         string `json:"name"`
	SQL          string `json:"sql"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
}

// SavedQueryStore manages saved queries. Names are unique per connection.
type SavedQueryStore struct {
	db *DB
}

// NewSavedQueryStore creates a new SavedQueryStore.
func NewSavedQueryStore(db *DB) *SavedQueryStore {
	return &SavedQueryStore{db: db}
}

// Save upserts by (connection_id, name) and returns the query id.
func (s *SavedQueryStore) Save(q *SavedQuery) (string, error) {
	now := time.Now().Unix()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	_, err := s.db.Conn().Exec(
		`INSERT INTO saved_queries (id, connection_id, name, sql, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(connection_id, name) DO UPDATE SET
			sql = excluded.sql,
			updated_at = excluded.updated_at`,
		q.ID, q.ConnectionID, q.Name, q.SQL, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("save query %q: %w", q.Name, err)
	}

	row := s.db.Conn().QueryRow(
		`SELECT id, created_at FROM saved_queries WHERE connection_id = ? AND name = ?`,
		q.ConnectionID, q.Name,
	)
	if err := row.Scan(&q.ID, &q.CreatedAt); err != nil {
		return "", fmt.Errorf("read back query %q: %w", q.Name, err)
	}
	q.UpdatedAt = now
	return q.ID, nil
}

// Get returns the query with the given id, or nil when absent.
func (s *SavedQueryStore) Get(id string) (*SavedQuery, error) {
	row := s.db.Conn().QueryRow(
		`SELECT id, connection_id, name, sql, created_at, updated_at
		 FROM saved_queries WHERE id = ?`, id,
	)
	var q SavedQuery
	err := row.Scan(&q.ID, &q.ConnectionID, &q.Name, &q.SQL, &q.CreatedAt, &q.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get query %s: %w", id, err)
	}
	return &q, nil
}

// ListForConnection returns a connection's queries ordered by name.
func (s *SavedQueryStore) ListForConnection(connectionID int64) ([]SavedQuery, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, connection_id, name, sql, created_at, updated_at
		 FROM saved_queries WHERE connection_id = ? ORDER BY name`, connectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	var queries []SavedQuery
	for rows.Next() {
		var q SavedQuery
		if err := rows.Scan(&q.ID, &q.ConnectionID, &q.Name, &q.SQL, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list queries: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// Delete removes a query by id; absent ids are not an error.
func (s *SavedQueryStore) Delete(id string) error {
	if _, err := s.db.Conn().Exec(`DELETE FROM saved_queries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete query %s: %w", id, err)
	}
	return nil
}
