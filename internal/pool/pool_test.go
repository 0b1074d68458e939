package pool

import (
	"fmt"
	"sync"
	"testing"

	"dbpilot/internal/dbclient"
	"dbpilot/internal/domain"
)

func testEntry(id int64, name string) (*dbclient.Conn, domain.ConnectionConfig) {
	cfg := domain.ConnectionConfig{ID: id, Name: name, Type: domain.DatabaseTypeMySQL}
	return dbclient.NewConn(nil, cfg), cfg
}

func TestFirstAddBecomesCurrent(t *testing.T) {
	p := New()
	conn, cfg := testEntry(1, "first")

	p.Add("1", conn, cfg)

	if !p.IsConnected() {
		t.Fatal("pool not connected after first Add")
	}
	if p.Current() != conn {
		t.Error("Current() is not the first added handle")
	}
	if p.CurrentID() != "1" {
		t.Errorf("CurrentID() = %q, want 1", p.CurrentID())
	}

	// A second Add must not steal the selection.
	conn2, cfg2 := testEntry(2, "second")
	p.Add("2", conn2, cfg2)
	if p.CurrentID() != "1" {
		t.Errorf("CurrentID() after second Add = %q, want 1", p.CurrentID())
	}
}

func TestSetCurrent(t *testing.T) {
	p := New()
	conn1, cfg1 := testEntry(1, "a")
	conn2, cfg2 := testEntry(2, "b")
	p.Add("1", conn1, cfg1)
	p.Add("2", conn2, cfg2)

	if err := p.SetCurrent("2"); err != nil {
		t.Fatal(err)
	}
	if p.Current() != conn2 {
		t.Error("Current() did not follow SetCurrent")
	}

	if err := p.SetCurrent("missing"); err == nil {
		t.Error("SetCurrent accepted an unknown id")
	}
	if p.CurrentID() != "2" {
		t.Errorf("failed SetCurrent changed selection to %q", p.CurrentID())
	}
}

func TestRemoveClearsCurrent(t *testing.T) {
	p := New()
	conn, cfg := testEntry(1, "only")
	p.Add("1", conn, cfg)

	removed := p.Remove("1")
	if removed != conn {
		t.Error("Remove did not return the registered handle")
	}
	if p.IsConnected() {
		t.Error("pool still connected after removing the current entry")
	}
	if p.Current() != nil {
		t.Error("Current() non-nil after removal")
	}
	if p.Remove("1") != nil {
		t.Error("second Remove returned a handle")
	}
}

func TestRemoveOtherKeepsCurrent(t *testing.T) {
	p := New()
	conn1, cfg1 := testEntry(1, "a")
	conn2, cfg2 := testEntry(2, "b")
	p.Add("1", conn1, cfg1)
	p.Add("2", conn2, cfg2)

	p.Remove("2")
	if p.CurrentID() != "1" {
		t.Errorf("CurrentID() = %q, want 1", p.CurrentID())
	}
}

func TestCurrentDatabase(t *testing.T) {
	p := New()
	if p.CurrentDatabase() != "" {
		t.Errorf("fresh pool current database = %q", p.CurrentDatabase())
	}
	p.SetCurrentDatabase("shop")
	if p.CurrentDatabase() != "shop" {
		t.Errorf("current database = %q, want shop", p.CurrentDatabase())
	}
}

func TestGetConfig(t *testing.T) {
	p := New()
	conn, cfg := testEntry(4, "named")
	p.Add("4", conn, cfg)

	got, ok := p.GetConfig("4")
	if !ok || got.Name != "named" {
		t.Errorf("GetConfig = %+v, %v", got, ok)
	}
	if _, ok := p.GetConfig("nope"); ok {
		t.Error("GetConfig found an unknown id")
	}

	if current, ok := p.CurrentConfig(); !ok || current.ID != 4 {
		t.Errorf("CurrentConfig = %+v, %v", current, ok)
	}
}

func TestListAll(t *testing.T) {
	p := New()
	for i := int64(1); i <= 3; i++ {
		conn, cfg := testEntry(i, fmt.Sprintf("c%d", i))
		p.Add(cfg.PoolKey(), conn, cfg)
	}

	if got := len(p.ListIDs()); got != 3 {
		t.Errorf("ListIDs() = %d entries, want 3", got)
	}
	if got := len(p.ListAll()); got != 3 {
		t.Errorf("ListAll() = %d entries, want 3", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	p := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("%d", n)
			conn, cfg := testEntry(int64(n), "conn"+id)
			p.Add(id, conn, cfg)
			p.Get(id)
			p.SetCurrentDatabase("db" + id)
			p.IsConnected()
			p.ListAll()
			p.Remove(id)
		}(i)
	}
	wg.Wait()
}
