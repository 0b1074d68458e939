package service

import (
	"context"
	"fmt"

	"dbpilot/internal/dbclient"
	"dbpilot/internal/domain"
	"dbpilot/internal/pool"
	"dbpilot/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Session — business logic tying the store, plugins, and pool
// ─────────────────────────────────────────────────────────────

// Session routes caller requests to the right dialect plugin over the right
// live connection. One Session serves the whole application.
type Session struct {
	store   *storage.ConnectionStore
	queries *storage.SavedQueryStore
	pool    *pool.Pool
}

// NewSession creates a Session over the given stores and an empty pool.
func NewSession(store *storage.ConnectionStore, queries *storage.SavedQueryStore) *Session {
	return &Session{
		store:   store,
		queries: queries,
		pool:    pool.New(),
	}
}

// Pool exposes the live-connection registry.
func (s *Session) Pool() *pool.Pool {
	return s.pool
}

// ── Descriptor CRUD ────────────────────────────────────────

func (s *Session) ListConnections() ([]domain.ConnectionConfig, error) {
	return s.store.List()
}

func (s *Session) SaveConnection(cfg *domain.ConnectionConfig) (int64, error) {
	return s.store.Save(cfg)
}

func (s *Session) DeleteConnection(name string) error {
	return s.store.Delete(name)
}

// ── Live connection lifecycle ──────────────────────────────

// Connect opens a live handle for the stored descriptor and registers it in
// the pool under the descriptor's pool key. Reconnecting an already-open id
// replaces the old handle after closing it.
func (s *Session) Connect(ctx context.Context, id int64) (*dbclient.Conn, error) {
	cfg, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.Errorf("connection %d not found", id)
	}

	p, err := dbclient.PluginFor(cfg.Type)
	if err != nil {
		return nil, err
	}
	conn, err := p.Open(ctx, *cfg)
	if err != nil {
		return nil, err
	}

	key := cfg.PoolKey()
	if old := s.pool.Remove(key); old != nil {
		old.Close()
	}
	s.pool.Add(key, conn, *cfg)
	if cfg.Database != "" {
		s.pool.SetCurrentDatabase(cfg.Database)
	}
	return conn, nil
}

// Disconnect closes and unregisters one live connection. Unknown ids are a
// no-op.
func (s *Session) Disconnect(id string) error {
	conn := s.pool.Remove(id)
	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("close connection %s: %w", id, err)
	}
	return nil
}

// DisconnectAll closes every live connection.
func (s *Session) DisconnectAll() {
	for _, id := range s.pool.ListIDs() {
		if conn := s.pool.Remove(id); conn != nil {
			conn.Close()
		}
	}
}

// TestConnection opens and immediately closes a connection for the
// descriptor without touching the pool.
func (s *Session) TestConnection(ctx context.Context, cfg domain.ConnectionConfig) error {
	p, err := dbclient.PluginFor(cfg.Type)
	if err != nil {
		return err
	}
	conn, err := p.Open(ctx, cfg)
	if err != nil {
		return err
	}
	return conn.Close()
}

// current resolves the current pool entry and its plugin.
func (s *Session) current() (*dbclient.Conn, dbclient.Plugin, error) {
	conn := s.pool.Current()
	if conn == nil {
		return nil, nil, domain.Errorf("no current connection")
	}
	p, err := dbclient.PluginFor(conn.Config().Type)
	if err != nil {
		return nil, nil, err
	}
	return conn, p, nil
}

// resolve resolves a pool entry by id and its plugin.
func (s *Session) resolve(id string) (*dbclient.Conn, dbclient.Plugin, error) {
	conn := s.pool.Get(id)
	if conn == nil {
		return nil, nil, domain.Errorf("connection %s is not in the pool", id)
	}
	p, err := dbclient.PluginFor(conn.Config().Type)
	if err != nil {
		return nil, nil, err
	}
	return conn, p, nil
}

// ── Execution ──────────────────────────────────────────────

// ExecuteQuery runs one statement on the current connection.
func (s *Session) ExecuteQuery(ctx context.Context, query string, params []domain.SqlValue) (domain.SqlResult, error) {
	conn, p, err := s.current()
	if err != nil {
		return nil, err
	}
	return p.ExecuteQuery(ctx, conn, s.pool.CurrentDatabase(), query, params)
}

// ExecuteScript runs a multi-statement script on the current connection and
// returns one result per statement.
func (s *Session) ExecuteScript(ctx context.Context, script string, opts dbclient.ExecOptions) ([]domain.SqlResult, error) {
	conn, p, err := s.current()
	if err != nil {
		return nil, err
	}
	return p.ExecuteScript(ctx, conn, s.pool.CurrentDatabase(), script, opts)
}

// SwitchDatabase changes the focused database on the current connection.
// The pool selection is updated only when the dialect actually switched.
func (s *Session) SwitchDatabase(ctx context.Context, database string) (domain.SqlResult, error) {
	conn, p, err := s.current()
	if err != nil {
		return nil, err
	}
	res, err := p.SwitchDatabase(ctx, conn, database)
	if err != nil {
		return nil, err
	}
	if exec, ok := res.(*domain.ExecResult); ok && exec.Message == "Database changed" {
		s.pool.SetCurrentDatabase(database)
	}
	return res, nil
}

// ── Introspection ──────────────────────────────────────────

func (s *Session) ListDatabases(ctx context.Context, id string) ([]string, error) {
	conn, p, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	return p.ListDatabases(ctx, conn)
}

func (s *Session) ListDatabasesDetailed(ctx context.Context, id string) ([]domain.DatabaseInfo, error) {
	conn, p, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	return p.ListDatabasesDetailed(ctx, conn)
}

func (s *Session) ListTables(ctx context.Context, id, database string) ([]domain.TableInfo, error) {
	conn, p, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	return p.ListTables(ctx, conn, database)
}

func (s *Session) ListColumns(ctx context.Context, id, database, table string) ([]domain.ColumnInfo, error) {
	conn, p, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	return p.ListColumns(ctx, conn, database, table)
}

func (s *Session) ListIndexes(ctx context.Context, id, database, table string) ([]domain.IndexInfo, error) {
	conn, p, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	return p.ListIndexes(ctx, conn, database, table)
}

// ── Explorer tree ──────────────────────────────────────────

// BuildTree introspects one database on a pooled connection and returns
// its fully-populated explorer node.
func (s *Session) BuildTree(ctx context.Context, id, database string) (domain.DbNode, error) {
	conn, p, err := s.resolve(id)
	if err != nil {
		return domain.DbNode{}, err
	}
	return dbclient.BuildDatabaseTree(ctx, p, conn, id, database)
}

// LoadChildren lazily populates one explorer node in place.
func (s *Session) LoadChildren(ctx context.Context, node *domain.DbNode) error {
	conn, p, err := s.resolve(node.ConnectionID)
	if err != nil {
		return err
	}
	return dbclient.LoadNodeChildren(ctx, p, conn, node)
}

// ── Saved queries ──────────────────────────────────────────

func (s *Session) SaveQuery(q *storage.SavedQuery) (string, error) {
	return s.queries.Save(q)
}

func (s *Session) ListQueries(connectionID int64) ([]storage.SavedQuery, error) {
	return s.queries.ListForConnection(connectionID)
}

func (s *Session) DeleteQuery(id string) error {
	return s.queries.Delete(id)
}
