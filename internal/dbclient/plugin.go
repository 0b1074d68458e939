package dbclient

import (
	"context"
	"strconv"
	"strings"

	"dbpilot/internal/domain"
)

// Plugin is the per-dialect capability set: open connections, introspect
// the catalog into normalized records, execute SQL, and template DDL.
// Plugins are stateless; all session state lives in the Conn they open.
type Plugin interface {
	Type() domain.DatabaseType

	// IdentifierQuote is the dialect's quote character; QuoteIdentifier
	// wraps an identifier, doubling embedded quote characters.
	IdentifierQuote() string
	QuoteIdentifier(ident string) string

	Open(ctx context.Context, cfg domain.ConnectionConfig) (*Conn, error)

	// Introspection. Results are ordered by object name unless noted.
	ListDatabases(ctx context.Context, conn *Conn) ([]string, error)
	ListDatabasesDetailed(ctx context.Context, conn *Conn) ([]domain.DatabaseInfo, error)
	ListTables(ctx context.Context, conn *Conn, database string) ([]domain.TableInfo, error)
	ListColumns(ctx context.Context, conn *Conn, database, table string) ([]domain.ColumnInfo, error)
	ListIndexes(ctx context.Context, conn *Conn, database, table string) ([]domain.IndexInfo, error)
	ListViews(ctx context.Context, conn *Conn, database string) ([]domain.ViewInfo, error)
	ListFunctions(ctx context.Context, conn *Conn, database string) ([]domain.FunctionInfo, error)
	ListProcedures(ctx context.Context, conn *Conn, database string) ([]domain.FunctionInfo, error)
	ListTriggers(ctx context.Context, conn *Conn, database string) ([]domain.TriggerInfo, error)
	ListSequences(ctx context.Context, conn *Conn, database string) ([]domain.SequenceInfo, error)

	// Execution. Statement failures come back as *domain.ErrorResult; the
	// error return is reserved for unusable connections and cancellation.
	ExecuteQuery(ctx context.Context, conn *Conn, database, query string, params []domain.SqlValue) (domain.SqlResult, error)
	ExecuteScript(ctx context.Context, conn *Conn, database, script string, opts ExecOptions) ([]domain.SqlResult, error)
	SwitchDatabase(ctx context.Context, conn *Conn, database string) (domain.SqlResult, error)

	// DDL templating: pure string builders, no I/O.
	GenerateCreateDatabaseSQL(req *domain.CreateDatabaseRequest) (string, error)
	GenerateDropDatabaseSQL(req *domain.DropDatabaseRequest) (string, error)
	GenerateAlterDatabaseSQL(req *domain.AlterDatabaseRequest) (string, error)
	GenerateCreateTableSQL(req *domain.CreateTableRequest) (string, error)
	GenerateDropTableSQL(req *domain.DropTableRequest) (string, error)
	GenerateRenameTableSQL(req *domain.RenameTableRequest) (string, error)
	GenerateTruncateTableSQL(req *domain.TruncateTableRequest) (string, error)
	GenerateAddColumnSQL(req *domain.AddColumnRequest) (string, error)
	GenerateDropColumnSQL(req *domain.DropColumnRequest) (string, error)
	GenerateModifyColumnSQL(req *domain.ModifyColumnRequest) (string, error)
	GenerateCreateIndexSQL(req *domain.CreateIndexRequest) (string, error)
	GenerateDropIndexSQL(req *domain.DropIndexRequest) (string, error)
	GenerateCreateViewSQL(req *domain.CreateViewRequest) (string, error)
	GenerateDropViewSQL(req *domain.DropViewRequest) (string, error)
	GenerateCreateFunctionSQL(req *domain.CreateFunctionRequest) (string, error)
	GenerateDropFunctionSQL(req *domain.DropFunctionRequest) (string, error)
	GenerateCreateProcedureSQL(req *domain.CreateProcedureRequest) (string, error)
	GenerateDropProcedureSQL(req *domain.DropProcedureRequest) (string, error)
	GenerateCreateTriggerSQL(req *domain.CreateTriggerRequest) (string, error)
	GenerateDropTriggerSQL(req *domain.DropTriggerRequest) (string, error)
	GenerateCreateSequenceSQL(req *domain.CreateSequenceRequest) (string, error)
	GenerateDropSequenceSQL(req *domain.DropSequenceRequest) (string, error)
	GenerateAlterSequenceSQL(req *domain.AlterSequenceRequest) (string, error)
}

// PluginFor returns the stateless plugin for a dialect.
func PluginFor(t domain.DatabaseType) (Plugin, error) {
	switch t {
	case domain.DatabaseTypeMySQL:
		return MySQLPlugin{}, nil
	case domain.DatabaseTypePostgres:
		return PostgresPlugin{}, nil
	default:
		return nil, domain.Errorf("no plugin for database type %q", t)
	}
}

// quoteIdent wraps an identifier in the given quote character, doubling
// embedded quotes.
func quoteIdent(ident, quote string) string {
	return quote + strings.ReplaceAll(ident, quote, quote+quote) + quote
}

// buildColumnDefinition renders a column clause for CREATE/ALTER TABLE.
// includeName controls whether the quoted column name leads the clause.
// MySQL additionally emits COMMENT; other dialects drop it here.
func buildColumnDefinition(p Plugin, col *domain.ColumnInfo, includeName bool) string {
	var b strings.Builder

	if includeName {
		b.WriteString(p.QuoteIdentifier(col.Name))
		b.WriteByte(' ')
	}
	b.WriteString(col.DataType)

	if !col.IsNullable {
		b.WriteString(" NOT NULL")
	}
	if col.DefaultValue != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(col.DefaultValue)
	}
	if col.IsPrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if col.Comment != "" && p.Type() == domain.DatabaseTypeMySQL {
		b.WriteString(" COMMENT '")
		b.WriteString(strings.ReplaceAll(col.Comment, "'", "''"))
		b.WriteString("'")
	}

	return b.String()
}

// queryRows runs introspection SQL and hands back the row set, folding
// statement errors into the error return (introspection has no use for
// per-statement ErrorResults).
func queryRows(ctx context.Context, conn *Conn, sqlText string, args []domain.SqlValue) (*domain.QueryResult, error) {
	res := conn.Query(ctx, sqlText, args)
	switch r := res.(type) {
	case *domain.QueryResult:
		return r, nil
	case *domain.ErrorResult:
		return nil, &domain.DbError{Message: r.Message, Code: r.Code}
	default:
		return nil, domain.Errorf("unexpected result type for introspection query")
	}
}

// cellString reads a cell as a string, "" for NULL or out of range.
func cellString(row []*string, ix int) string {
	if ix < 0 || ix >= len(row) || row[ix] == nil {
		return ""
	}
	return *row[ix]
}

// cellInt64 parses a cell as int64, nil for NULL or unparseable.
func cellInt64(row []*string, ix int) *int64 {
	s := cellString(row, ix)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
