package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"dbpilot/internal/domain"
)

// Conn is a live, authenticated session with a remote database. The
// underlying *sql.DB is exclusively owned; concurrent callers serialize
// through the connection mutex, so statements on one handle never
// interleave.
type Conn struct {
	mu  sync.Mutex
	db  *sql.DB
	cfg domain.ConnectionConfig
}

// NewConn wraps an opened handle. Used by plugins and by tests that
// substitute a mock driver.
func NewConn(db *sql.DB, cfg domain.ConnectionConfig) *Conn {
	return &Conn{db: db, cfg: cfg}
}

// Config returns the descriptor snapshot the connection was opened with.
func (c *Conn) Config() domain.ConnectionConfig {
	return c.cfg
}

// Ping verifies connectivity.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return domain.Errorf("ping %s: %v", c.cfg.Name, err)
	}
	return nil
}

// Close tears down the handle.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}

// Query runs a single statement and returns its typed result. Statement
// failures surface as *domain.ErrorResult; the call itself only fails on
// caller misuse.
func (c *Conn) Query(ctx context.Context, sqlText string, params []domain.SqlValue) domain.SqlResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runLocked(ctx, sqlText, params)
}

// runLocked executes one statement while the connection mutex is held.
func (c *Conn) runLocked(ctx context.Context, sqlText string, params []domain.SqlValue) domain.SqlResult {
	args := domain.BindArgs(params)
	start := time.Now()

	if isReadStatement(sqlText) {
		rows, err := c.db.QueryContext(ctx, sqlText, args...)
		if err != nil {
			return errorResult(err)
		}
		defer rows.Close()
		return collectRows(rows, start)
	}

	res, err := c.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return errorResult(err)
	}
	affected, _ := res.RowsAffected()
	return &domain.ExecResult{
		SQL:          sqlText,
		RowsAffected: affected,
		ElapsedMs:    time.Since(start).Milliseconds(),
	}
}

// isReadStatement detects statements that produce a row set.
func isReadStatement(sqlText string) bool {
	q := strings.ToUpper(strings.TrimSpace(sqlText))
	for _, prefix := range []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "EXPLAIN", "PRAGMA", "VALUES"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}

// collectRows drains a cursor into a stringified QueryResult.
func collectRows(rows *sql.Rows, start time.Time) domain.SqlResult {
	cols, err := rows.Columns()
	if err != nil {
		return errorResult(err)
	}

	out := make([][]*string, 0, 16)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return errorResult(err)
		}
		row := make([]*string, len(cols))
		for i, v := range values {
			row[i] = formatCell(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return errorResult(err)
	}

	return &domain.QueryResult{
		Columns:   cols,
		Rows:      out,
		ElapsedMs: time.Since(start).Milliseconds(),
	}
}

// formatCell stringifies a scanned value; nil stays nil (SQL NULL).
func formatCell(v any) *string {
	if v == nil {
		return nil
	}
	var s string
	switch val := v.(type) {
	case []byte:
		s = string(val)
	case string:
		s = val
	case int64:
		s = strconv.FormatInt(val, 10)
	case float64:
		s = strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	case time.Time:
		s = val.Format(time.RFC3339)
	default:
		s = fmt.Sprintf("%v", val)
	}
	return &s
}

// errorResult turns a driver error into an ErrorResult, extracting the
// backend code when the driver exposes one.
func errorResult(err error) *domain.ErrorResult {
	res := &domain.ErrorResult{Message: err.Error()}
	switch e := err.(type) {
	case *mysql.MySQLError:
		res.Code = strconv.FormatUint(uint64(e.Number), 10)
	case *pq.Error:
		res.Code = string(e.Code)
	}
	return res
}
