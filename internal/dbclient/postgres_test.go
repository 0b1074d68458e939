package dbclient

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"dbpilot/internal/domain"
)

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(domain.ConnectionConfig{
		Host:     "localhost",
		Username: "postgres",
		Password: "secret",
	})
	for _, part := range []string{
		"host=localhost", "port=5432", "user=postgres",
		"dbname=postgres", "sslmode=disable", "connect_timeout=5",
	} {
		if !strings.Contains(dsn, part) {
			t.Errorf("dsn %q missing %q", dsn, part)
		}
	}
}

func TestPostgresListColumnsPrimaryKey(t *testing.T) {
	conn, mock := mockConn(t)
	p := PostgresPlugin{}

	mock.ExpectQuery(`information_schema\.columns`).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows(
			[]string{"column_name", "data_type", "is_nullable", "column_default", "is_primary"}).
			AddRow("id", "integer", "NO", "nextval('users_id_seq')", true).
			AddRow("email", "character varying", "YES", nil, false))

	cols, err := p.ListColumns(context.Background(), conn, "shop", "users")
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 2 {
		t.Fatalf("got %d columns, want 2", len(cols))
	}

	id := cols[0]
	if !id.IsPrimaryKey || id.IsNullable {
		t.Errorf("id column = %+v", id)
	}
	if id.DefaultValue != "nextval('users_id_seq')" {
		t.Errorf("default = %q", id.DefaultValue)
	}

	email := cols[1]
	if email.IsPrimaryKey || !email.IsNullable {
		t.Errorf("email column = %+v", email)
	}
}

func TestPostgresListSequences(t *testing.T) {
	conn, mock := mockConn(t)
	p := PostgresPlugin{}

	mock.ExpectQuery(`information_schema\.sequences`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"sequence_name", "start_value", "increment", "min_value", "max_value"}).
			AddRow("order_seq", 1, 1, 1, 9223372036854775807))

	seqs, err := p.ListSequences(context.Background(), conn, "shop")
	if err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 1 {
		t.Fatalf("got %d sequences, want 1", len(seqs))
	}
	s := seqs[0]
	if s.Name != "order_seq" {
		t.Errorf("name = %q", s.Name)
	}
	if s.Start == nil || *s.Start != 1 {
		t.Errorf("start = %v", s.Start)
	}
	if s.Max == nil || *s.Max != 9223372036854775807 {
		t.Errorf("max = %v", s.Max)
	}
}

func TestPostgresListTablesNegativeReltuples(t *testing.T) {
	conn, mock := mockConn(t)
	p := PostgresPlugin{}

	mock.ExpectQuery(`FROM pg_class`).
		WillReturnRows(sqlmock.NewRows([]string{"relname", "obj_description", "reltuples"}).
			AddRow("users", "people", int64(-1)))

	tables, err := p.ListTables(context.Background(), conn, "shop")
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	// reltuples -1 means never analyzed; no row count is reported.
	if tables[0].RowCount != nil {
		t.Errorf("row count = %v, want nil", *tables[0].RowCount)
	}
	if tables[0].Comment != "people" {
		t.Errorf("comment = %q", tables[0].Comment)
	}
}
