package storage

import (
	"database/sql"
	"fmt"
	"time"

	"dbpilot/internal/domain"
)

// ConnectionStore manages persisted connection descriptors.
type ConnectionStore struct {
	db *DB
}

// NewConnectionStore creates a new ConnectionStore.
func NewConnectionStore(db *DB) *ConnectionStore {
	return &ConnectionStore{db: db}
}

// Save upserts by name: an existing row with the same name keeps its id and
// created_at but has every other field overwritten. Returns the row id.
func (s *ConnectionStore) Save(cfg *domain.ConnectionConfig) (int64, error) {
	now := time.Now().Unix()

	_, err := s.db.Conn().Exec(
		`INSERT INTO connections (name, db_type, host, port, username, password, database, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			db_type = excluded.db_type,
			host = excluded.host,
			port = excluded.port,
			username = excluded.username,
			password = excluded.password,
			database = excluded.database,
			updated_at = excluded.updated_at`,
		cfg.Name, string(cfg.Type), cfg.Host, cfg.Port, cfg.Username, cfg.Password,
		nullable(cfg.Database), now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("save connection %q: %w", cfg.Name, err)
	}

	var id int64
	var createdAt int64
	row := s.db.Conn().QueryRow(`SELECT id, created_at FROM connections WHERE name = ?`, cfg.Name)
	if err := row.Scan(&id, &createdAt); err != nil {
		return 0, fmt.Errorf("read back connection %q: %w", cfg.Name, err)
	}

	cfg.ID = id
	cfg.CreatedAt = createdAt
	cfg.UpdatedAt = now
	return id, nil
}

// Delete removes a descriptor by name. Deleting an absent name is not an
// error.
func (s *ConnectionStore) Delete(name string) error {
	if _, err := s.db.Conn().Exec(`DELETE FROM connections WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete connection %q: %w", name, err)
	}
	return nil
}

// Get returns the descriptor with the given id, or nil when absent.
func (s *ConnectionStore) Get(id int64) (*domain.ConnectionConfig, error) {
	row := s.db.Conn().QueryRow(
		`SELECT id, name, db_type, host, port, username, password, database, created_at, updated_at
		 FROM connections WHERE id = ?`, id,
	)
	cfg, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get connection %d: %w", id, err)
	}
	return cfg, nil
}

// List returns every descriptor, most recently updated first.
func (s *ConnectionStore) List() ([]domain.ConnectionConfig, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, name, db_type, host, port, username, password, database, created_at, updated_at
		 FROM connections ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var configs []domain.ConnectionConfig
	for rows.Next() {
		cfg, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("list connections: %w", err)
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(row rowScanner) (*domain.ConnectionConfig, error) {
	var cfg domain.ConnectionConfig
	var dbType string
	var database sql.NullString

	err := row.Scan(&cfg.ID, &cfg.Name, &dbType, &cfg.Host, &cfg.Port,
		&cfg.Username, &cfg.Password, &database, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t, err := domain.ParseDatabaseType(dbType)
	if err != nil {
		return nil, err
	}
	cfg.Type = t
	cfg.Database = database.String
	return &cfg, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
