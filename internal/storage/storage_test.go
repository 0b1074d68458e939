package storage

import (
	"path/filepath"
	"testing"
	"time"

	"dbpilot/internal/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig(name string) domain.ConnectionConfig {
	return domain.ConnectionConfig{
		Name:     name,
		Type:     domain.DatabaseTypeMySQL,
		Host:     "localhost",
		Port:     3306,
		Username: "root",
		Password: "secret",
		Database: "shop",
	}
}

func TestSaveAssignsID(t *testing.T) {
	store := NewConnectionStore(testDB(t))

	cfg := testConfig("local")
	id, err := store.Save(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Error("Save returned id 0")
	}
	if cfg.ID != id {
		t.Errorf("descriptor id = %d, want %d", cfg.ID, id)
	}
	if cfg.CreatedAt == 0 || cfg.UpdatedAt == 0 {
		t.Errorf("timestamps not set: %+v", cfg)
	}
}

func TestSaveUpsertsByName(t *testing.T) {
	store := NewConnectionStore(testDB(t))

	first := testConfig("local")
	firstID, err := store.Save(&first)
	if err != nil {
		t.Fatal(err)
	}

	second := testConfig("local")
	second.Host = "db.internal"
	second.Port = 3307
	secondID, err := store.Save(&second)
	if err != nil {
		t.Fatal(err)
	}

	if secondID != firstID {
		t.Errorf("upsert allocated a new id: %d != %d", secondID, firstID)
	}

	got, err := store.Get(firstID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Host != "db.internal" || got.Port != 3307 {
		t.Errorf("upsert did not overwrite fields: %+v", got)
	}
	if got.CreatedAt != first.CreatedAt {
		t.Errorf("upsert changed created_at: %d != %d", got.CreatedAt, first.CreatedAt)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := NewConnectionStore(testDB(t))
	got, err := store.Get(999)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("Get(999) = %+v, want nil", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewConnectionStore(testDB(t))

	cfg := testConfig("doomed")
	if _, err := store.Save(&cfg); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete("doomed"); err != nil {
		t.Fatal(err)
	}
	// Absent rows delete cleanly.
	if err := store.Delete("doomed"); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if err := store.Delete("never-existed"); err != nil {
		t.Errorf("delete of unknown name: %v", err)
	}

	configs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(configs) != 0 {
		t.Errorf("List() after delete = %+v", configs)
	}
}

func TestListOrdersByUpdatedAtDesc(t *testing.T) {
	store := NewConnectionStore(testDB(t))

	older := testConfig("older")
	if _, err := store.Save(&older); err != nil {
		t.Fatal(err)
	}
	// Re-save "older" later so it carries the newest updated_at.
	time.Sleep(1100 * time.Millisecond)
	newer := testConfig("newer")
	if _, err := store.Save(&newer); err != nil {
		t.Fatal(err)
	}
	time.Sleep(1100 * time.Millisecond)
	if _, err := store.Save(&older); err != nil {
		t.Fatal(err)
	}

	configs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(configs) != 2 {
		t.Fatalf("List() = %d entries, want 2", len(configs))
	}
	if configs[0].Name != "older" || configs[1].Name != "newer" {
		t.Errorf("order = %q, %q; want older, newer", configs[0].Name, configs[1].Name)
	}
}

func TestEmptyDatabaseRoundTrips(t *testing.T) {
	store := NewConnectionStore(testDB(t))

	cfg := testConfig("nodb")
	cfg.Database = ""
	id, err := store.Save(&cfg)
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Database != "" {
		t.Errorf("database = %q, want empty", got.Database)
	}
}

func TestKeyValueStore(t *testing.T) {
	kv := NewKeyValueStore(testDB(t))

	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v", ok, err)
	}

	if err := kv.Set("theme", "dark"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set("theme", "light"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set("last_connection", "3"); err != nil {
		t.Fatal(err)
	}

	value, ok, err := kv.Get("theme")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || value != "light" {
		t.Errorf("Get(theme) = %q, %v; want light", value, ok)
	}

	keys, err := kv.ListKeys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "last_connection" || keys[1] != "theme" {
		t.Errorf("ListKeys() = %v", keys)
	}

	if err := kv.Delete("theme"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete("theme"); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if _, ok, _ := kv.Get("theme"); ok {
		t.Error("deleted key still present")
	}
}

func TestSavedQueryStore(t *testing.T) {
	db := testDB(t)
	connections := NewConnectionStore(db)
	store := NewSavedQueryStore(db)

	cfg := testConfig("local")
	connID, err := connections.Save(&cfg)
	if err != nil {
		t.Fatal(err)
	}

	q := &SavedQuery{ConnectionID: connID, Name: "daily orders", SQL: "SELECT 1"}
	id, err := store.Save(q)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("Save returned empty id")
	}

	// Saving the same name again updates in place.
	update := &SavedQuery{ConnectionID: connID, Name: "daily orders", SQL: "SELECT 2"}
	updateID, err := store.Save(update)
	if err != nil {
		t.Fatal(err)
	}
	if updateID != id {
		t.Errorf("upsert allocated a new id: %q != %q", updateID, id)
	}

	got, err := store.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.SQL != "SELECT 2" {
		t.Errorf("Get = %+v", got)
	}

	queries, err := store.ListForConnection(connID)
	if err != nil {
		t.Fatal(err)
	}
	if len(queries) != 1 {
		t.Errorf("ListForConnection = %d entries, want 1", len(queries))
	}

	if err := store.Delete(id); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get(id); got != nil {
		t.Errorf("query survived delete: %+v", got)
	}
}
