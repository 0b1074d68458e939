package dbclient

import (
	"reflect"
	"testing"
)

func TestSplitScript(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "two statements",
			script: "SELECT 1; SELECT 2",
			want:   []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:   "semicolon inside single quotes",
			script: "SELECT ';' ; SELECT 1",
			want:   []string{"SELECT ';'", "SELECT 1"},
		},
		{
			name:   "semicolon inside double quotes",
			script: `SELECT ";" FROM t; SELECT 2`,
			want:   []string{`SELECT ";" FROM t`, "SELECT 2"},
		},
		{
			name:   "doubled quote escape",
			script: "INSERT INTO t VALUES ('it''s; fine'); SELECT 1",
			want:   []string{"INSERT INTO t VALUES ('it''s; fine')", "SELECT 1"},
		},
		{
			name:   "line comment with semicolon",
			script: "SELECT 1 -- trailing; not a split\n; SELECT 2",
			want:   []string{"SELECT 1 -- trailing; not a split", "SELECT 2"},
		},
		{
			name:   "block comment with semicolon",
			script: "SELECT /* a; b */ 1; SELECT 2",
			want:   []string{"SELECT /* a; b */ 1", "SELECT 2"},
		},
		{
			name:   "comment-only statement dropped",
			script: "-- just a note\n; SELECT 1",
			want:   []string{"SELECT 1"},
		},
		{
			name:   "empty pieces dropped",
			script: ";;  ;SELECT 1;;",
			want:   []string{"SELECT 1"},
		},
		{
			name:   "trailing statement without semicolon",
			script: "SELECT 1; SELECT 2 ",
			want:   []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:   "empty script",
			script: "   \n\t ",
			want:   nil,
		},
		{
			name:   "unterminated quote consumes the rest",
			script: "SELECT 'open; SELECT 2",
			want:   []string{"SELECT 'open; SELECT 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitScript(tt.script)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitScript(%q) = %#v, want %#v", tt.script, got, tt.want)
			}
		})
	}
}

func TestIsReadStatement(t *testing.T) {
	reads := []string{
		"SELECT 1",
		"  select * from t",
		"WITH x AS (SELECT 1) SELECT * FROM x",
		"SHOW TABLES",
		"EXPLAIN SELECT 1",
	}
	for _, q := range reads {
		if !isReadStatement(q) {
			t.Errorf("isReadStatement(%q) = false, want true", q)
		}
	}

	writes := []string{
		"INSERT INTO t VALUES (1)",
		"UPDATE t SET a = 1",
		"USE `other`",
		"CREATE TABLE t (a INT)",
	}
	for _, q := range writes {
		if isReadStatement(q) {
			t.Errorf("isReadStatement(%q) = true, want false", q)
		}
	}
}
