package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"dbpilot/internal/domain"
)

// MySQLPlugin implements Plugin for MySQL. Stateless.
type MySQLPlugin struct{}

func (MySQLPlugin) Type() domain.DatabaseType {
	return domain.DatabaseTypeMySQL
}

func (MySQLPlugin) IdentifierQuote() string {
	return "`"
}

func (MySQLPlugin) QuoteIdentifier(ident string) string {
	return quoteIdent(ident, "`")
}

// mysqlDSN builds the driver DSN from a descriptor.
func mysqlDSN(cfg domain.ConnectionConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = 5 * time.Second
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func (p MySQLPlugin) Open(ctx context.Context, cfg domain.ConnectionConfig) (*Conn, error) {
	db, err := sql.Open("mysql", mysqlDSN(cfg))
	if err != nil {
		return nil, domain.Errorf("open mysql connection %q: %v", cfg.Name, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, domain.Errorf("connect to mysql %s:%d: %v", cfg.Host, cfg.Port, err)
	}
	return NewConn(db, cfg), nil
}

// ── Introspection ──────────────────────────────────────────

func (p MySQLPlugin) ListDatabases(ctx context.Context, conn *Conn) ([]string, error) {
	res, err := queryRows(ctx, conn,
		"SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA ORDER BY SCHEMA_NAME", nil)
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

func (p MySQLPlugin) ListDatabasesDetailed(ctx context.Context, conn *Conn) ([]domain.DatabaseInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT s.SCHEMA_NAME, s.DEFAULT_CHARACTER_SET_NAME, s.DEFAULT_COLLATION_NAME,
		        (SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES t
		          WHERE t.TABLE_SCHEMA = s.SCHEMA_NAME AND t.TABLE_TYPE = 'BASE TABLE'),
		        (SELECT COALESCE(SUM(t.DATA_LENGTH + t.INDEX_LENGTH), 0)
		           FROM INFORMATION_SCHEMA.TABLES t
		          WHERE t.TABLE_SCHEMA = s.SCHEMA_NAME)
		   FROM INFORMATION_SCHEMA.SCHEMATA s
		  ORDER BY s.SCHEMA_NAME`, nil)
	if err != nil {
		return nil, domain.Errorf("list databases detailed: %v", err)
	}
	infos := make([]domain.DatabaseInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		infos = append(infos, domain.DatabaseInfo{
			Name:       cellString(row, 0),
			Charset:    cellString(row, 1),
			Collation:  cellString(row, 2),
			TableCount: cellInt64(row, 3),
			SizeBytes:  cellInt64(row, 4),
		})
	}
	return infos, nil
}

func (p MySQLPlugin) ListTables(ctx context.Context, conn *Conn, database string) ([]domain.TableInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT TABLE_NAME, TABLE_COMMENT, ENGINE, TABLE_ROWS, CREATE_TIME, TABLE_COLLATION
		   FROM INFORMATION_SCHEMA.TABLES
		  WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		  ORDER BY TABLE_NAME`,
		[]domain.SqlValue{domain.StringValue(database)})
	if err != nil {
		return nil, domain.Errorf("list tables in %s: %v", database, err)
	}

	tables := make([]domain.TableInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		collation := cellString(row, 5)
		// Charset is the collation prefix before the first underscore,
		// e.g. utf8mb4_general_ci -> utf8mb4.
		charset := ""
		if ix := strings.Index(collation, "_"); ix > 0 {
			charset = collation[:ix]
		} else {
			charset = collation
		}
		tables = append(tables, domain.TableInfo{
			Name:       cellString(row, 0),
			Comment:    cellString(row, 1),
			Engine:     cellString(row, 2),
			RowCount:   cellInt64(row, 3),
			CreateTime: cellString(row, 4),
			Charset:    charset,
			Collation:  collation,
		})
	}
	return tables, nil
}

func (p MySQLPlugin) ListColumns(ctx context.Context, conn *Conn, database, table string) ([]domain.ColumnInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY, COLUMN_DEFAULT, COLUMN_COMMENT
		   FROM INFORMATION_SCHEMA.COLUMNS
		  WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		  ORDER BY ORDINAL_POSITION`,
		[]domain.SqlValue{domain.StringValue(database), domain.StringValue(table)})
	if err != nil {
		return nil, domain.Errorf("list columns of %s.%s: %v", database, table, err)
	}

	cols := make([]domain.ColumnInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		cols = append(cols, domain.ColumnInfo{
			Name:         cellString(row, 0),
			DataType:     cellString(row, 1),
			IsNullable:   cellString(row, 2) == "YES",
			IsPrimaryKey: cellString(row, 3) == "PRI",
			DefaultValue: cellString(row, 4),
			Comment:      cellString(row, 5),
		})
	}
	return cols, nil
}

func (p MySQLPlugin) ListIndexes(ctx context.Context, conn *Conn, database, table string) ([]domain.IndexInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE, INDEX_TYPE
		   FROM INFORMATION_SCHEMA.STATISTICS
		  WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		  ORDER BY INDEX_NAME, SEQ_IN_INDEX`,
		[]domain.SqlValue{domain.StringValue(database), domain.StringValue(table)})
	if err != nil {
		return nil, domain.Errorf("list indexes of %s.%s: %v", database, table, err)
	}
	return collapseIndexRows(res.Rows, func(row []*string) (string, string, bool, string) {
		return cellString(row, 0), cellString(row, 1), cellString(row, 2) == "0", cellString(row, 3)
	}), nil
}

func (p MySQLPlugin) ListViews(ctx context.Context, conn *Conn, database string) ([]domain.ViewInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT TABLE_NAME, VIEW_DEFINITION
		   FROM INFORMATION_SCHEMA.VIEWS
		  WHERE TABLE_SCHEMA = ?
		  ORDER BY TABLE_NAME`,
		[]domain.SqlValue{domain.StringValue(database)})
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

func (p MySQLPlugin) ListFunctions(ctx context.Context, conn *Conn, database string) ([]domain.FunctionInfo, error) {
	return p.listRoutines(ctx, conn, database, "FUNCTION")
}

func (p MySQLPlugin) ListProcedures(ctx context.Context, conn *Conn, database string) ([]domain.FunctionInfo, error) {
	return p.listRoutines(ctx, conn, database, "PROCEDURE")
}

func (p MySQLPlugin) listRoutines(ctx context.Context, conn *Conn, database, kind string) ([]domain.FunctionInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT ROUTINE_NAME, DTD_IDENTIFIER
		   FROM INFORMATION_SCHEMA.ROUTINES
		  WHERE ROUTINE_SCHEMA = ? AND ROUTINE_TYPE = ?
		  ORDER BY ROUTINE_NAME`,
		[]domain.SqlValue{domain.StringValue(database), domain.StringValue(kind)})
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

func (p MySQLPlugin) ListTriggers(ctx context.Context, conn *Conn, database string) ([]domain.TriggerInfo, error) {
	res, err := queryRows(ctx, conn,
		`SELECT TRIGGER_NAME, EVENT_OBJECT_TABLE, EVENT_MANIPULATION, ACTION_TIMING
		   FROM INFORMATION_SCHEMA.TRIGGERS
		  WHERE TRIGGER_SCHEMA = ?
		  ORDER BY TRIGGER_NAME`,
		[]domain.SqlValue{domain.StringValue(database)})
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

// ListSequences returns empty: MySQL has no sequence objects.
func (p MySQLPlugin) ListSequences(ctx context.Context, conn *Conn, database string) ([]domain.SequenceInfo, error) {
	return []domain.SequenceInfo{}, nil
}

// ── Execution ──────────────────────────────────────────────

func (p MySQLPlugin) ExecuteQuery(ctx context.Context, conn *Conn, database, query string, params []domain.SqlValue) (domain.SqlResult, error) {
	return conn.Query(ctx, query, params), nil
}

func (p MySQLPlugin) ExecuteScript(ctx context.Context, conn *Conn, database, script string, opts ExecOptions) ([]domain.SqlResult, error) {
	return RunScript(ctx, conn, script, opts), nil
}

// SwitchDatabase issues USE; MySQL rebinds the session in place.
func (p MySQLPlugin) SwitchDatabase(ctx context.Context, conn *Conn, database string) (domain.SqlResult, error) {
	sqlText := fmt.Sprintf("USE %s", p.QuoteIdentifier(database))
	res := conn.Query(ctx, sqlText, nil)
	if exec, ok := res.(*domain.ExecResult); ok && exec.Message == "" {
		exec.Message = "Database changed"
	}
	return res, nil
}

// ── DDL generation ─────────────────────────────────────────

func (p MySQLPlugin) GenerateCreateDatabaseSQL(req *domain.CreateDatabaseRequest) (string, error) {
	sqlText := fmt.Sprintf("CREATE DATABASE %s", p.QuoteIdentifier(req.DatabaseName))
	if req.Charset != "" {
		sqlText += " CHARACTER SET " + req.Charset
	}
	if req.Collation != "" {
		sqlText += " COLLATE " + req.Collation
	}
	return sqlText, nil
}

func (p MySQLPlugin) GenerateDropDatabaseSQL(req *domain.DropDatabaseRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP DATABASE IF EXISTS %s", p.QuoteIdentifier(req.DatabaseName)), nil
	}
	return fmt.Sprintf("DROP DATABASE %s", p.QuoteIdentifier(req.DatabaseName)), nil
}

func (p MySQLPlugin) GenerateAlterDatabaseSQL(req *domain.AlterDatabaseRequest) (string, error) {
	sqlText := fmt.Sprintf("ALTER DATABASE %s", p.QuoteIdentifier(req.DatabaseName))
	if req.Charset != "" {
		sqlText += " CHARACTER SET " + req.Charset
	}
	if req.Collation != "" {
		sqlText += " COLLATE " + req.Collation
	}
	return sqlText, nil
}

// qualify renders `db`.`object`.
func (p MySQLPlugin) qualify(database, object string) string {
	return p.QuoteIdentifier(database) + "." + p.QuoteIdentifier(object)
}

func (p MySQLPlugin) GenerateCreateTableSQL(req *domain.CreateTableRequest) (string, error) {
	defs := make([]string, 0, len(req.Columns))
	for i := range req.Columns {
		defs = append(defs, buildColumnDefinition(p, &req.Columns[i], true))
	}
	ifNotExists := ""
	if req.IfNotExists {
		ifNotExists = "IF NOT EXISTS "
	}
	return fmt.Sprintf("CREATE TABLE %s%s (%s)",
		ifNotExists, p.qualify(req.DatabaseName, req.TableName), strings.Join(defs, ", ")), nil
}

func (p MySQLPlugin) GenerateDropTableSQL(req *domain.DropTableRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP TABLE IF EXISTS %s", p.qualify(req.DatabaseName, req.TableName)), nil
	}
	return fmt.Sprintf("DROP TABLE %s", p.qualify(req.DatabaseName, req.TableName)), nil
}

func (p MySQLPlugin) GenerateRenameTableSQL(req *domain.RenameTableRequest) (string, error) {
	return fmt.Sprintf("RENAME TABLE %s TO %s",
		p.qualify(req.DatabaseName, req.OldTableName),
		p.qualify(req.DatabaseName, req.NewTableName)), nil
}

func (p MySQLPlugin) GenerateTruncateTableSQL(req *domain.TruncateTableRequest) (string, error) {
	return fmt.Sprintf("TRUNCATE TABLE %s", p.qualify(req.DatabaseName, req.TableName)), nil
}

func (p MySQLPlugin) GenerateAddColumnSQL(req *domain.AddColumnRequest) (string, error) {
	def := buildColumnDefinition(p, &req.Column, false)
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		p.qualify(req.DatabaseName, req.TableName), p.QuoteIdentifier(req.Column.Name), def), nil
}

func (p MySQLPlugin) GenerateDropColumnSQL(req *domain.DropColumnRequest) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s",
		p.qualify(req.DatabaseName, req.TableName), p.QuoteIdentifier(req.ColumnName)), nil
}

func (p MySQLPlugin) GenerateModifyColumnSQL(req *domain.ModifyColumnRequest) (string, error) {
	def := buildColumnDefinition(p, &req.Column, false)
	return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s",
		p.qualify(req.DatabaseName, req.TableName), p.QuoteIdentifier(req.Column.Name), def), nil
}

func (p MySQLPlugin) GenerateCreateIndexSQL(req *domain.CreateIndexRequest) (string, error) {
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
		p.qualify(req.DatabaseName, req.TableName), strings.Join(cols, ", ")), nil
}

func (p MySQLPlugin) GenerateDropIndexSQL(req *domain.DropIndexRequest) (string, error) {
	return fmt.Sprintf("DROP INDEX %s ON %s",
		p.QuoteIdentifier(req.IndexName), p.qualify(req.DatabaseName, req.TableName)), nil
}

func (p MySQLPlugin) GenerateCreateViewSQL(req *domain.CreateViewRequest) (string, error) {
	verb := "CREATE VIEW"
	if req.OrReplace {
		verb = "CREATE OR REPLACE VIEW"
	}
	return fmt.Sprintf("%s %s AS %s", verb, p.qualify(req.DatabaseName, req.ViewName), req.Definition), nil
}

func (p MySQLPlugin) GenerateDropViewSQL(req *domain.DropViewRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP VIEW IF EXISTS %s", p.qualify(req.DatabaseName, req.ViewName)), nil
	}
	return fmt.Sprintf("DROP VIEW %s", p.qualify(req.DatabaseName, req.ViewName)), nil
}

func (p MySQLPlugin) GenerateCreateFunctionSQL(req *domain.CreateFunctionRequest) (string, error) {
	return req.Definition, nil
}

func (p MySQLPlugin) GenerateDropFunctionSQL(req *domain.DropFunctionRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP FUNCTION IF EXISTS %s", p.qualify(req.DatabaseName, req.FunctionName)), nil
	}
	return fmt.Sprintf("DROP FUNCTION %s", p.qualify(req.DatabaseName, req.FunctionName)), nil
}

func (p MySQLPlugin) GenerateCreateProcedureSQL(req *domain.CreateProcedureRequest) (string, error) {
	return req.Definition, nil
}

func (p MySQLPlugin) GenerateDropProcedureSQL(req *domain.DropProcedureRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP PROCEDURE IF EXISTS %s", p.qualify(req.DatabaseName, req.ProcedureName)), nil
	}
	return fmt.Sprintf("DROP PROCEDURE %s", p.qualify(req.DatabaseName, req.ProcedureName)), nil
}

func (p MySQLPlugin) GenerateCreateTriggerSQL(req *domain.CreateTriggerRequest) (string, error) {
	return req.Definition, nil
}

func (p MySQLPlugin) GenerateDropTriggerSQL(req *domain.DropTriggerRequest) (string, error) {
	if req.IfExists {
		return fmt.Sprintf("DROP TRIGGER IF EXISTS %s", p.qualify(req.DatabaseName, req.TriggerName)), nil
	}
	return fmt.Sprintf("DROP TRIGGER %s", p.qualify(req.DatabaseName, req.TriggerName)), nil
}

func (p MySQLPlugin) GenerateCreateSequenceSQL(req *domain.CreateSequenceRequest) (string, error) {
	return "", domain.Errorf("MySQL does not support sequences")
}

func (p MySQLPlugin) GenerateDropSequenceSQL(req *domain.DropSequenceRequest) (string, error) {
	return "", domain.Errorf("MySQL does not support sequences")
}

func (p MySQLPlugin) GenerateAlterSequenceSQL(req *domain.AlterSequenceRequest) (string, error) {
	return "", domain.Errorf("MySQL does not support sequences")
}

// collapseIndexRows folds one row per (index, column) into one IndexInfo
// per index, preserving first-seen index order and per-index column order.
func collapseIndexRows(rows [][]*string, decode func([]*string) (name, column string, unique bool, kind string)) []domain.IndexInfo {
	byName := make(map[string]*domain.IndexInfo)
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		name, column, unique, kind := decode(row)
		info, ok := byName[name]
		if !ok {
			info = &domain.IndexInfo{Name: name, IsUnique: unique, IndexType: kind}
			byName[name] = info
			order = append(order, name)
		}
		info.Columns = append(info.Columns, column)
	}

	out := make([]domain.IndexInfo, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}
