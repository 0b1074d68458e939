package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"dbpilot/internal/domain"
)

// PostgresPlugin implements Plugin for PostgreSQL. Stateless. Introspection
// is scoped to the public schema.
type PostgresPlugin struct{}

func (PostgresPlugin) Type() domain.DatabaseType {
	return domain.DatabaseTypePostgres
}

func (PostgresPlugin) IdentifierQuote() string {
	return `"`
}

func (PostgresPlugin) QuoteIdentifier(ident string) string {
	return quoteIdent(ident, `"`)
}

// postgresDSN builds the lib/pq connection string from a descriptor.
func postgresDSN(cfg domain.ConnectionConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	database := cfg.Database
	if database == "" {
		database = "postgres"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable connect_timeout=5",
		cfg.Host, port, cfg.Username, cfg.Password, database,
	)
}

func (p PostgresPlugin) Open(ctx context.Context, cfg domain.ConnectionConfig) (*Conn, error) {
	db, err := sql.Open("postgres", postgresDSN(cfg))
	if err != nil {
		return nil, domain.Errorf("open postgres connection %q: %v", cfg.Name, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, domain.Errorf("connect to postgres %s:%d: %v", cfg.Host, cfg.Port, err)
	}
	return NewConn(db, cfg), nil
}

// ── Introspection ──────────────────────────────────────────

func (p PostgresPlugin) ListDatabases(ctx context.Context, conn *Conn) ([]string, error) {
	res, err := queryRows(ctx, conn,
		"SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname", nil)
	if err != nil {
		return nil, domain.Errorf("list databases: %v", err)
	}
	names := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if name := cellString(row, 0); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (p PostgresPlugin) ListDatabasesDetailed(ctx context.Context, conn *Conn) ([]domain.DatabaseInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT datname, pg_encoding_to_char(encoding), datcollate, pg_database_size(datname)
		   FROM pg_database
		  WHERE datistemplate = false
		  ORDER BY datname`, nil)
	if err != nil {
		return nil, domain.Errorf("list databases detailed: %v", err)
	}
	infos := make([]domain.DatabaseInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		infos = append(infos, domain.DatabaseInfo{
			Name:      cellString(row, 0),
			Charset:   cellString(row, 1),
			Collation: cellString(row, 2),
			SizeBytes: cellInt64(row, 3),
		})
	}
	return infos, nil
}

func (p PostgresPlugin) ListTables(ctx context.Context, conn *Conn, database string) ([]domain.TableInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT c.relname, obj_description(c.oid, 'pg_class'), c.reltuples::bigint
		   FROM pg_class c
		   JOIN pg_namespace n ON n.oid = c.relnamespace
		  WHERE n.nspname = 'public' AND c.relkind = 'r'
		  ORDER BY c.relname`, nil)
	if err != nil {
		return nil, domain.Errorf("list tables in %s: %v", database, err)
	}
	tables := make([]domain.TableInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		rowCount := cellInt64(row, 2)
		if rowCount != nil && *rowCount < 0 {
			// reltuples is -1 for never-analyzed tables
			rowCount = nil
		}
		tables = append(tables, domain.TableInfo{
			Name:     cellString(row, 0),
			Comment:  cellString(row, 1),
			RowCount: rowCount,
		})
	}
	return tables, nil
}

func (p PostgresPlugin) ListColumns(ctx context.Context, conn *Conn, database, table string) ([]domain.ColumnInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT c.column_name, c.data_type, c.is_nullable, c.column_default,
		        EXISTS (
		          SELECT 1
		            FROM information_schema.key_column_usage kcu
		            JOIN information_schema.table_constraints tc
		              ON tc.constraint_name = kcu.constraint_name
		             AND tc.table_schema = kcu.table_schema
		           WHERE kcu.table_schema = 'public'
		             AND kcu.table_name = c.table_name
		             AND kcu.column_name = c.column_name
		             AND tc.constraint_type = 'PRIMARY KEY'
		        ) AS is_primary
		   FROM information_schema.columns c
		  WHERE c.table_schema = 'public' AND c.table_name = $1
		  ORDER BY c.ordinal_position`,
		[]domain.SqlValue{domain.StringValue(table)})
	if err != nil {
		return nil, domain.Errorf("list columns of %s.%s: %v", database, table, err)
	}

	cols := make([]domain.ColumnInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		primary := cellString(row, 4)
		cols = append(cols, domain.ColumnInfo{
			Name:         cellString(row, 0),
			DataType:     cellString(row, 1),
			IsNullable:   cellString(row, 2) == "YES",
			IsPrimaryKey: primary == "t" || primary == "true" || primary == "1",
			DefaultValue: cellString(row, 3),
		})
	}
	return cols, nil
}

func (p PostgresPlugin) ListIndexes(ctx context.Context, conn *Conn, database, table string) ([]domain.IndexInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT i.relname AS index_name, a.attname AS column_name, ix.indisunique
		   FROM pg_class t
		   JOIN pg_index ix ON t.oid = ix.indrelid
		   JOIN pg_class i ON i.oid = ix.indexrelid
		   JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		  WHERE t.relname = $1 AND t.relkind = 'r'
		  ORDER BY i.relname, a.attnum`,
		[]domain.SqlValue{domain.StringValue(table)})
	if err != nil {
		return nil, domain.Errorf("list indexes of %s.%s: %v", database, table, err)
	}
	return collapseIndexRows(res.Rows, func(row []*string) (string, string, bool, string) {
		unique := cellString(row, 2)
		return cellString(row, 0), cellString(row, 1),
			unique == "t" || unique == "true", "btree"
	}), nil
}

func (p PostgresPlugin) ListViews(ctx context.Context, conn *Conn, database string) ([]domain.ViewInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT table_name, view_definition
		   FROM information_schema.views
		  WHERE table_schema = 'public'
		  ORDER BY table_name`, nil)
	if err != nil {
		return nil, domain.Errorf("list views in %s: %v", database, err)
	}
	views := make([]domain.ViewInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		views = append(views, domain.ViewInfo{
			Name:       cellString(row, 0),
			Definition: cellString(row, 1),
		})
	}
	return views, nil
}

func (p PostgresPlugin) ListFunctions(ctx context.Context, conn *Conn, database string) ([]domain.FunctionInfo, error) {
	return p.listRoutines(ctx, conn, database, "FUNCTION")
}

func (p PostgresPlugin) ListProcedures(ctx context.Context, conn *Conn, database string) ([]domain.FunctionInfo, error) {
	return p.listRoutines(ctx, conn, database, "PROCEDURE")
}

func (p PostgresPlugin) listRoutines(ctx context.Context, conn *Conn, database, kind string) ([]domain.FunctionInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT routine_name, data_type
		   FROM information_schema.routines
		  WHERE routine_schema = 'public' AND routine_type = $1
		  ORDER BY routine_name`,
		[]domain.SqlValue{domain.StringValue(kind)})
	if err != nil {
		return nil, domain.Errorf("list %ss in %s: %v", strings.ToLower(kind), database, err)
	}
	fns := make([]domain.FunctionInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		fns = append(fns, domain.FunctionInfo{
			Name:       cellString(row, 0),
			ReturnType: cellString(row, 1),
			Parameters: []string{},
		})
	}
	return fns, nil
}

func (p PostgresPlugin) ListTriggers(ctx context.Context, conn *Conn, database string) ([]domain.TriggerInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT trigger_name, event_object_table, event_manipulation, action_timing
		   FROM information_schema.triggers
		  WHERE trigger_schema = 'public'
		  ORDER BY trigger_name`, nil)
	if err != nil {
		return nil, domain.Errorf("list triggers in %s: %v", database, err)
	}
	triggers := make([]domain.TriggerInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		triggers = append(triggers, domain.TriggerInfo{
			Name:      cellString(row, 0),
			TableName: cellString(row, 1),
			Event:     cellString(row, 2),
			Timing:    cellString(row, 3),
		})
	}
	return triggers, nil
}

func (p PostgresPlugin) ListSequences(ctx context.Context, conn *Conn, database string) ([]domain.SequenceInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT sequence_name, start_value::bigint, increment::bigint,
		        min_value::bigint, max_value::bigint
		   FROM information_schema.sequences
		  WHERE sequence_schema = 'public'
		  ORDER BY sequence_name`, nil)
	if err != nil {
		return nil, domain.Errorf("list sequences in %s: %v", database, err)
	}
	seqs := make([]domain.SequenceInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		seqs = append(seqs, domain.SequenceInfo{
			Name:      cellString(row, 0),
			Start:     cellInt64(row, 1),
			Increment: cellInt64(row, 2),
			Min:       cellInt64(row, 3),
			Max:       cellInt64(row, 4),
		})
	}
	return seqs, nil
}

// ── Execution ──────────────────────────────────────────────

func (p PostgresPlugin) ExecuteQuery(ctx context.Context, conn *Conn, database, query string, params []domain.SqlValue) (domain.SqlResult, error) {
	return conn.Query(ctx, query, params), nil
}

func (p PostgresPlugin) ExecuteScript(ctx context.Context, conn *Conn, database, script string, opts ExecOptions) ([]domain.SqlResult, error) {
	return RunScript(ctx, conn, script, opts), nil
}

// SwitchDatabase never issues SQL: PostgreSQL cannot rebind the database
// of an open session, so the caller is told to reconnect.
func (p PostgresPlugin) SwitchDatabase(ctx context.Context, conn *Conn, database string) (domain.SqlResult, error) {
	return &domain.ExecResult{
		SQL:          fmt.Sprintf("-- switch to %s", database),
		RowsAffected: 0,
		Message: fmt.Sprintf(
			"PostgreSQL cannot switch database on an existing connection. Please reconnect to database '%s'.",
			database),
	}, nil
}

// ── DDL generation ─────────────────────────────────────────

func (p PostgresPlugin) GenerateCreateDatabaseSQL(req *domain.CreateDatabaseRequest) (string, error) {
	sqlText := fmt.Sprintf("CREATE DATABASE %s", p.QuoteIdentifier(req.DatabaseName))
	if req.Charset != "" {
		sqlText += fmt.Sprintf(" ENCODING '%s'", req.Charset)
	}
	if req.Collation != "" {
		sqlText += fmt.Sprintf(" LC_COLLATE '%s'", req.Collation)
	}
	return sqlText, nil
}

func (p PostgresPlugin) GenerateDropDatabaseSQL(req *domain.DropDatabaseRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP DATABASE IF EXISTS %s", p.QuoteIdentifier(req.DatabaseName)), nil
	}
	return fmt.Sprintf("DROP DATABASE %s", p.QuoteIdentifier(req.DatabaseName)), nil
}

// GenerateAlterDatabaseSQL always fails: encoding and collation are fixed
// at creation time in PostgreSQL.
func (p PostgresPlugin) GenerateAlterDatabaseSQL(req *domain.AlterDatabaseRequest) (string, error) {
	return "", domain.Errorf("PostgreSQL does not support altering database encoding/collation")
}

func (p PostgresPlugin) GenerateCreateTableSQL(req *domain.CreateTableRequest) (string, error) {
	defs := make([]string, 0, len(req.Columns))
	for i := range req.Columns {
		defs = append(defs, buildColumnDefinition(p, &req.Columns[i], true))
	}
	ifNotExists := ""
	if req.IfNotExists {
		ifNotExists = "IF NOT EXISTS "
	}
	return fmt.Sprintf("CREATE TABLE %s%s (%s)",
		ifNotExists, p.QuoteIdentifier(req.TableName), strings.Join(defs, ", ")), nil
}

func (p PostgresPlugin) GenerateDropTableSQL(req *domain.DropTableRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP TABLE IF EXISTS %s", p.QuoteIdentifier(req.TableName)), nil
	}
	return fmt.Sprintf("DROP TABLE %s", p.QuoteIdentifier(req.TableName)), nil
}

func (p PostgresPlugin) GenerateRenameTableSQL(req *domain.RenameTableRequest) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s",
		p.QuoteIdentifier(req.OldTableName), p.QuoteIdentifier(req.NewTableName)), nil
}

func (p PostgresPlugin) GenerateTruncateTableSQL(req *domain.TruncateTableRequest) (string, error) {
	return fmt.Sprintf("TRUNCATE TABLE %s", p.QuoteIdentifier(req.TableName)), nil
}

func (p PostgresPlugin) GenerateAddColumnSQL(req *domain.AddColumnRequest) (string, error) {
	def := buildColumnDefinition(p, &req.Column, false)
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		p.QuoteIdentifier(req.TableName), p.QuoteIdentifier(req.Column.Name), def), nil
}

func (p PostgresPlugin) GenerateDropColumnSQL(req *domain.DropColumnRequest) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s",
		p.QuoteIdentifier(req.TableName), p.QuoteIdentifier(req.ColumnName)), nil
}

// GenerateModifyColumnSQL emits separate ALTER statements for type,
// nullability, and default, joined with ";\n".
func (p PostgresPlugin) GenerateModifyColumnSQL(req *domain.ModifyColumnRequest) (string, error) {
	table := p.QuoteIdentifier(req.TableName)
	column := p.QuoteIdentifier(req.Column.Name)

	stmts := []string{
		fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", table, column, req.Column.DataType),
	}
	if req.Column.IsNullable {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", table, column))
	} else {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, column))
	}
	if req.Column.DefaultValue != "" {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s",
			table, column, req.Column.DefaultValue))
	}
	return strings.Join(stmts, ";\n"), nil
}

func (p PostgresPlugin) GenerateCreateIndexSQL(req *domain.CreateIndexRequest) (string, error) {
	unique := ""
	if req.Index.IsUnique {
		unique = "UNIQUE "
	}
	cols := make([]string, len(req.Index.Columns))
	for i, c := range req.Index.Columns {
		cols[i] = p.QuoteIdentifier(c)
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, p.QuoteIdentifier(req.Index.Name),
		p.QuoteIdentifier(req.TableName), strings.Join(cols, ", ")), nil
}

func (p PostgresPlugin) GenerateDropIndexSQL(req *domain.DropIndexRequest) (string, error) {
	return fmt.Sprintf("DROP INDEX %s", p.QuoteIdentifier(req.IndexName)), nil
}

func (p PostgresPlugin) GenerateCreateViewSQL(req *domain.CreateViewRequest) (string, error) {
	verb := "CREATE VIEW"
	if req.OrReplace {
		verb = "CREATE OR REPLACE VIEW"
	}
	return fmt.Sprintf("%s %s AS %s", verb, p.QuoteIdentifier(req.ViewName), req.Definition), nil
}

func (p PostgresPlugin) GenerateDropViewSQL(req *domain.DropViewRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP VIEW IF EXISTS %s", p.QuoteIdentifier(req.ViewName)), nil
	}
	return fmt.Sprintf("DROP VIEW %s", p.QuoteIdentifier(req.ViewName)), nil
}

func (p PostgresPlugin) GenerateCreateFunctionSQL(req *domain.CreateFunctionRequest) (string, error) {
	return req.Definition, nil
}

func (p PostgresPlugin) GenerateDropFunctionSQL(req *domain.DropFunctionRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP FUNCTION IF EXISTS %s", p.QuoteIdentifier(req.FunctionName)), nil
	}
	return fmt.Sprintf("DROP FUNCTION %s", p.QuoteIdentifier(req.FunctionName)), nil
}

func (p PostgresPlugin) GenerateCreateProcedureSQL(req *domain.CreateProcedureRequest) (string, error) {
	return req.Definition, nil
}

func (p PostgresPlugin) GenerateDropProcedureSQL(req *domain.DropProcedureRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP PROCEDURE IF EXISTS %s", p.QuoteIdentifier(req.ProcedureName)), nil
	}
	return fmt.Sprintf("DROP PROCEDURE %s", p.QuoteIdentifier(req.ProcedureName)), nil
}

func (p PostgresPlugin) GenerateCreateTriggerSQL(req *domain.CreateTriggerRequest) (string, error) {
	return req.Definition, nil
}

// GenerateDropTriggerSQL fails: PostgreSQL requires the table name, which
// the request does not carry.
func (p PostgresPlugin) GenerateDropTriggerSQL(req *domain.DropTriggerRequest) (string, error) {
	return "", domain.Errorf(
		"PostgreSQL requires a table name for DROP TRIGGER; use raw SQL: DROP TRIGGER %s ON <table>",
		req.TriggerName)
}

func (p PostgresPlugin) GenerateCreateSequenceSQL(req *domain.CreateSequenceRequest) (string, error) {
	sqlText := fmt.Sprintf("CREATE SEQUENCE %s", p.QuoteIdentifier(req.Sequence.Name))
	if req.Sequence.Start != nil {
		sqlText += fmt.Sprintf(" START %d", *req.Sequence.Start)
	}
	if req.Sequence.Increment != nil {
		sqlText += fmt.Sprintf(" INCREMENT %d", *req.Sequence.Increment)
	}
	if req.Sequence.Min != nil {
		sqlText += fmt.Sprintf(" MINVALUE %d", *req.Sequence.Min)
	}
	if req.Sequence.Max != nil {
		sqlText += fmt.Sprintf(" MAXVALUE %d", *req.Sequence.Max)
	}
	return sqlText, nil
}

func (p PostgresPlugin) GenerateDropSequenceSQL(req *domain.DropSequenceRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP SEQUENCE IF EXISTS %s", p.QuoteIdentifier(req.SequenceName)), nil
	}
	return fmt.Sprintf("DROP SEQUENCE %s", p.QuoteIdentifier(req.SequenceName)), nil
}

func (p PostgresPlugin) GenerateAlterSequenceSQL(req *domain.AlterSequenceRequest) (string, error) {
	name := p.QuoteIdentifier(req.Sequence.Name)
	var stmts []string
	if req.Sequence.Increment != nil {
		stmts = append(stmts, fmt.Sprintf("ALTER SEQUENCE %s INCREMENT %d", name, *req.Sequence.Increment))
	}
	if req.Sequence.Min != nil {
		stmts = append(stmts, fmt.Sprintf("ALTER SEQUENCE %s MINVALUE %d", name, *req.Sequence.Min))
	}
	if req.Sequence.Max != nil {
		stmts = append(stmts, fmt.Sprintf("ALTER SEQUENCE %s MAXVALUE %d", name, *req.Sequence.Max))
	}
	if len(stmts) == 0 {
		return "", domain.Errorf("no sequence modifications specified")
	}
	return strings.Join(stmts, ";\n"), nil
}
