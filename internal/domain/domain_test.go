package domain

import (
	"testing"
)

func TestParseDatabaseType(t *testing.T) {
	for _, s := range []string{"MySQL", "PostgreSQL"} {
		got, err := ParseDatabaseType(s)
		if err != nil {
			t.Fatalf("ParseDatabaseType(%q): %v", s, err)
		}
		if got.String() != s {
			t.Errorf("ParseDatabaseType(%q) = %q", s, got)
		}
	}

	// Unknown dialects are an explicit error, never a silent fallback.
	for _, s := range []string{"", "mysql", "SQLite", "Oracle"} {
		if _, err := ParseDatabaseType(s); err == nil {
			t.Errorf("ParseDatabaseType(%q) succeeded, want error", s)
		}
	}
}

func TestDbErrorFormatting(t *testing.T) {
	plain := Errorf("connect to %s failed", "db1")
	if plain.Error() != "connect to db1 failed" {
		t.Errorf("Error() = %q", plain.Error())
	}

	coded := &DbError{Message: "duplicate entry", Code: "1062"}
	if coded.Error() != "duplicate entry (1062)" {
		t.Errorf("Error() = %q", coded.Error())
	}
}

func TestSqlValueArgs(t *testing.T) {
	vals := []SqlValue{
		NullValue(),
		IntValue(42),
		StringValue("x"),
		BoolValue(true),
	}
	args := BindArgs(vals)
	if len(args) != 4 {
		t.Fatalf("BindArgs len = %d", len(args))
	}
	if args[0] != nil {
		t.Errorf("null arg = %v", args[0])
	}
	if args[1] != int64(42) {
		t.Errorf("int arg = %v", args[1])
	}
	if args[2] != "x" {
		t.Errorf("string arg = %v", args[2])
	}
}

func TestCellText(t *testing.T) {
	if got := CellText(nil); got != "NULL" {
		t.Errorf("CellText(nil) = %q, want NULL", got)
	}
	s := "hello"
	if got := CellText(&s); got != "hello" {
		t.Errorf("CellText = %q", got)
	}
}

func TestSplitNodeID(t *testing.T) {
	tests := []struct {
		id   string
		want NodeContext
	}{
		{"3", NodeContext{ConnectionID: "3"}},
		{"3:shop", NodeContext{ConnectionID: "3", Database: "shop"}},
		{"3:shop:table_folder", NodeContext{ConnectionID: "3", Database: "shop", FolderKey: FolderKeyTables}},
		{"3:shop:table_folder:users", NodeContext{ConnectionID: "3", Database: "shop", FolderKey: FolderKeyTables, ObjectName: "users"}},
	}
	for _, tt := range tests {
		if got := SplitNodeID(tt.id); got != tt.want {
			t.Errorf("SplitNodeID(%q) = %+v, want %+v", tt.id, got, tt.want)
		}
	}
}

func TestNodeSorting(t *testing.T) {
	parent := NewDbNode("1:db", "db", NodeDatabase, "1")
	parent.Children = []DbNode{
		NewDbNode("1:db:views_folder", "Views (1)", NodeViewsFolder, "1"),
		NewDbNode("1:db:table_folder", "Tables (2)", NodeTablesFolder, "1"),
	}
	parent.Children[0].Children = []DbNode{
		NewDbNode("1:db:views_folder:Zeta", "Zeta", NodeView, "1"),
		NewDbNode("1:db:views_folder:alpha", "alpha", NodeView, "1"),
	}

	parent.SortChildrenRecursive()

	if parent.Children[0].Type != NodeTablesFolder {
		t.Errorf("first folder = %v, want tables", parent.Children[0].Type)
	}
	views := parent.Children[1]
	// Name comparison ignores case.
	if views.Children[0].Name != "alpha" || views.Children[1].Name != "Zeta" {
		t.Errorf("view order = %q, %q", views.Children[0].Name, views.Children[1].Name)
	}
}
