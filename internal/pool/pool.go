// Package pool keeps the registry of live database connections and the
// current connection/database selection.
package pool

import (
	"sync"

	"dbpilot/internal/dbclient"
	"dbpilot/internal/domain"
)

type entry struct {
	conn *dbclient.Conn
	cfg  domain.ConnectionConfig
}

// Pool maps connection ids to live handles. All methods are safe for
// concurrent use; per-handle query serialization is the handle's own
// concern.
type Pool struct {
	// currentID lives under mu rather than currentsMu so that the
	// current id never points outside entries, even across Add/Remove.
	mu        sync.RWMutex
	entries   map[string]entry
	currentID string

	currentsMu sync.Mutex
	currentDB  string
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{entries: make(map[string]entry)}
}

// Add registers a live handle under id, replacing any previous entry. The
// first entry added to an empty pool becomes current.
func (p *Pool) Add(id string, conn *dbclient.Conn, cfg domain.ConnectionConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries[id] = entry{conn: conn, cfg: cfg}
	if p.currentID == "" {
		p.currentID = id
	}
}

// Get returns the live handle for id, or nil when absent.
func (p *Pool) Get(id string) *dbclient.Conn {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entries[id].conn
}

// GetConfig returns the descriptor snapshot for id; ok is false when
// absent.
func (p *Pool) GetConfig(id string) (domain.ConnectionConfig, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[id]
	return e.cfg, ok
}

// Current returns the current connection's handle, or nil when no current
// connection is selected.
func (p *Pool) Current() *dbclient.Conn {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.currentID == "" {
		return nil
	}
	return p.entries[p.currentID].conn
}

// CurrentID returns the current connection id, or "".
func (p *Pool) CurrentID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentID
}

// CurrentConfig returns the current connection's descriptor; ok is false
// when no current connection is selected.
func (p *Pool) CurrentConfig() (domain.ConnectionConfig, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.currentID == "" {
		return domain.ConnectionConfig{}, false
	}
	e, ok := p.entries[p.currentID]
	return e.cfg, ok
}

// SetCurrent selects id as the current connection. Unknown ids are an
// error; the selection is unchanged on failure.
func (p *Pool) SetCurrent(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.entries[id]; !ok {
		return domain.Errorf("connection %s is not in the pool", id)
	}
	p.currentID = id
	return nil
}

// SetCurrentDatabase records the database the UI is focused on.
func (p *Pool) SetCurrentDatabase(name string) {
	p.currentsMu.Lock()
	defer p.currentsMu.Unlock()
	p.currentDB = name
}

// CurrentDatabase returns the focused database name, or "".
func (p *Pool) CurrentDatabase() string {
	p.currentsMu.Lock()
	defer p.currentsMu.Unlock()
	return p.currentDB
}

// Remove unregisters id and returns the removed handle so the caller can
// close it. Removing the current connection clears the selection. Absent
// ids return nil.
func (p *Pool) Remove(id string) *dbclient.Conn {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[id]
	if !ok {
		return nil
	}
	delete(p.entries, id)
	if p.currentID == id {
		p.currentID = ""
	}
	return e.conn
}

// IsConnected reports whether a current connection is selected.
func (p *Pool) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentID != ""
}

// ListIDs returns the registered connection ids in map order.
func (p *Pool) ListIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.entries))
	for id := range p.entries {
		ids = append(ids, id)
	}
	return ids
}

// ListAll returns a snapshot of every registered descriptor.
func (p *Pool) ListAll() []domain.ConnectionConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()

	configs := make([]domain.ConnectionConfig, 0, len(p.entries))
	for _, e := range p.entries {
		configs = append(configs, e.cfg)
	}
	return configs
}
