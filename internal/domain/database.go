package domain

import "fmt"

// DatabaseType identifies a supported SQL dialect.
type DatabaseType string

const (
	DatabaseTypeMySQL    DatabaseType = "MySQL"
	DatabaseTypePostgres DatabaseType = "PostgreSQL"
)

// ParseDatabaseType resolves a stored dialect tag. Unknown values are an
// error rather than a silent MySQL fallback.
func ParseDatabaseType(s string) (DatabaseType, error) {
	switch s {
	case string(DatabaseTypeMySQL):
		return DatabaseTypeMySQL, nil
	case string(DatabaseTypePostgres):
		return DatabaseTypePostgres, nil
	default:
		return "", Errorf("unknown database type %q", s)
	}
}

func (t DatabaseType) String() string {
	return string(t)
}

// ConnectionConfig is the persisted descriptor that parameterizes opening a
// live connection. ID is zero until the descriptor has been stored.
type ConnectionConfig struct {
	ID        int64        `json:"id,omitempty"`
	Name      string       `json:"name"`
	Type      DatabaseType `json:"type"`
	Host      string       `json:"host"`
	Port      uint16       `json:"port"`
	Username  string       `json:"username"`
	Password  string       `json:"password"`
	Database  string       `json:"database,omitempty"` // default database, may be empty
	CreatedAt int64        `json:"createdAt,omitempty"`
	UpdatedAt int64        `json:"updatedAt,omitempty"`
}

// PoolKey is the string key used to register this descriptor's live
// connection in the pool.
func (c ConnectionConfig) PoolKey() string {
	return fmt.Sprintf("%d", c.ID)
}

// DbError is the single error kind for every fallible driver, pool, and
// storage operation. Code carries the backend error code when one exists.
type DbError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *DbError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// Errorf builds a DbError with a formatted message.
func Errorf(format string, args ...any) *DbError {
	return &DbError{Message: fmt.Sprintf(format, args...)}
}
