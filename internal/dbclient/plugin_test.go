package dbclient

import (
	"context"
	"strings"
	"testing"

	"dbpilot/internal/domain"
)

func TestPluginFor(t *testing.T) {
	for _, dialect := range []domain.DatabaseType{domain.DatabaseTypeMySQL, domain.DatabaseTypePostgres} {
		p, err := PluginFor(dialect)
		if err != nil {
			t.Fatalf("PluginFor(%s): %v", dialect, err)
		}
		if p.Type() != dialect {
			t.Errorf("plugin type = %s, want %s", p.Type(), dialect)
		}
	}

	if _, err := PluginFor(domain.DatabaseType("SQLite")); err == nil {
		t.Error("PluginFor accepted an unknown dialect")
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		plugin Plugin
		ident  string
		want   string
	}{
		{MySQLPlugin{}, "users", "`users`"},
		{MySQLPlugin{}, "we`ird", "`we``ird`"},
		{PostgresPlugin{}, "users", `"users"`},
		{PostgresPlugin{}, `we"ird`, `"we""ird"`},
		{MySQLPlugin{}, "", "``"},
	}
	for _, tt := range tests {
		if got := tt.plugin.QuoteIdentifier(tt.ident); got != tt.want {
			t.Errorf("%s QuoteIdentifier(%q) = %q, want %q",
				tt.plugin.Type(), tt.ident, got, tt.want)
		}
	}
}

func TestMySQLCreateTableSQL(t *testing.T) {
	p := MySQLPlugin{}
	sqlText, err := p.GenerateCreateTableSQL(&domain.CreateTableRequest{
		DatabaseName: "shop",
		TableName:    "orders",
		Columns: []domain.ColumnInfo{
			{Name: "id", DataType: "INT", IsPrimaryKey: true},
			{Name: "note", DataType: "VARCHAR(255)", IsNullable: true, Comment: "buyer's note"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "CREATE TABLE `shop`.`orders` (`id` INT NOT NULL PRIMARY KEY, " +
		"`note` VARCHAR(255) COMMENT 'buyer''s note')"
	if sqlText != want {
		t.Errorf("got  %q\nwant %q", sqlText, want)
	}
}

func TestPostgresCreateTableSQLDropsComment(t *testing.T) {
	p := PostgresPlugin{}
	sqlText, err := p.GenerateCreateTableSQL(&domain.CreateTableRequest{
		TableName: "orders",
		Columns: []domain.ColumnInfo{
			{Name: "id", DataType: "INTEGER", IsPrimaryKey: true, Comment: "ignored"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `CREATE TABLE "orders" ("id" INTEGER NOT NULL PRIMARY KEY)`
	if sqlText != want {
		t.Errorf("got  %q\nwant %q", sqlText, want)
	}
}

func TestMySQLIndexSQL(t *testing.T) {
	p := MySQLPlugin{}
	sqlText, err := p.GenerateCreateIndexSQL(&domain.CreateIndexRequest{
		DatabaseName: "shop",
		TableName:    "orders",
		Index:        domain.IndexInfo{Name: "idx_a_b", Columns: []string{"a", "b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "CREATE INDEX `idx_a_b` ON `shop`.`orders` (`a`, `b`)"
	if sqlText != want {
		t.Errorf("got  %q\nwant %q", sqlText, want)
	}

	sqlText, err = p.GenerateCreateIndexSQL(&domain.CreateIndexRequest{
		DatabaseName: "shop",
		TableName:    "orders",
		Index:        domain.IndexInfo{Name: "uq_email", Columns: []string{"email"}, IsUnique: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	want = "CREATE UNIQUE INDEX `uq_email` ON `shop`.`orders` (`email`)"
	if sqlText != want {
		t.Errorf("got  %q\nwant %q", sqlText, want)
	}
}

func TestPostgresModifyColumnSQL(t *testing.T) {
	p := PostgresPlugin{}
	sqlText, err := p.GenerateModifyColumnSQL(&domain.ModifyColumnRequest{
		TableName: "orders",
		Column: domain.ColumnInfo{
			Name:         "qty",
			DataType:     "BIGINT",
			IsNullable:   false,
			DefaultValue: "0",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `ALTER TABLE "orders" ALTER COLUMN "qty" TYPE BIGINT;` + "\n" +
		`ALTER TABLE "orders" ALTER COLUMN "qty" SET NOT NULL;` + "\n" +
		`ALTER TABLE "orders" ALTER COLUMN "qty" SET DEFAULT 0`
	if sqlText != want {
		t.Errorf("got  %q\nwant %q", sqlText, want)
	}
}

func TestPostgresAlterDatabaseRejected(t *testing.T) {
	p := PostgresPlugin{}
	_, err := p.GenerateAlterDatabaseSQL(&domain.AlterDatabaseRequest{
		DatabaseName: "shop",
		Charset:      "UTF8",
	})
	if err == nil {
		t.Fatal("GenerateAlterDatabaseSQL succeeded, want error")
	}
	if !strings.Contains(err.Error(), "does not support altering") {
		t.Errorf("error = %q, want it to mention altering support", err)
	}
}

func TestPostgresDropTriggerRejected(t *testing.T) {
	p := PostgresPlugin{}
	if _, err := p.GenerateDropTriggerSQL(&domain.DropTriggerRequest{TriggerName: "trg"}); err == nil {
		t.Error("GenerateDropTriggerSQL succeeded, want error")
	}
}

func TestMySQLSequencesUnsupported(t *testing.T) {
	p := MySQLPlugin{}
	if _, err := p.GenerateCreateSequenceSQL(&domain.CreateSequenceRequest{}); err == nil {
		t.Error("GenerateCreateSequenceSQL succeeded, want error")
	}
	if _, err := p.GenerateDropSequenceSQL(&domain.DropSequenceRequest{}); err == nil {
		t.Error("GenerateDropSequenceSQL succeeded, want error")
	}

	seqs, err := p.ListSequences(context.Background(), nil, "any")
	if err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 0 {
		t.Errorf("ListSequences = %v, want empty", seqs)
	}
}

func TestPostgresSwitchDatabaseMessage(t *testing.T) {
	p := PostgresPlugin{}

	// No SQL is issued, so a nil handle is fine.
	res, err := p.SwitchDatabase(context.Background(), nil, "other")
	if err != nil {
		t.Fatal(err)
	}
	exec, ok := res.(*domain.ExecResult)
	if !ok {
		t.Fatalf("result is %T, want *ExecResult", res)
	}
	if exec.RowsAffected != 0 {
		t.Errorf("rows affected = %d, want 0", exec.RowsAffected)
	}
	want := "PostgreSQL cannot switch database on an existing connection. Please reconnect to database 'other'."
	if exec.Message != want {
		t.Errorf("message = %q\nwant      %q", exec.Message, want)
	}
}

func TestPostgresSequenceSQL(t *testing.T) {
	p := PostgresPlugin{}
	start, inc := int64(10), int64(2)
	sqlText, err := p.GenerateCreateSequenceSQL(&domain.CreateSequenceRequest{
		Sequence: domain.SequenceInfo{Name: "order_seq", Start: &start, Increment: &inc},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `CREATE SEQUENCE "order_seq" START 10 INCREMENT 2`
	if sqlText != want {
		t.Errorf("got  %q\nwant %q", sqlText, want)
	}

	if _, err := p.GenerateAlterSequenceSQL(&domain.AlterSequenceRequest{
		Sequence: domain.SequenceInfo{Name: "order_seq"},
	}); err == nil {
		t.Error("GenerateAlterSequenceSQL with no modifications succeeded, want error")
	}
}
