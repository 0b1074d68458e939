package domain

// DDL request structs consumed by the per-dialect SQL generators. They are
// pure data; generators turn them into dialect-specific statements.

type CreateDatabaseRequest struct {
	DatabaseName string `json:"databaseName"`
	Charset      string `json:"charset,omitempty"`
	Collation    string `json:"collation,omitempty"`
}

type DropDatabaseRequest struct {
	DatabaseName string `json:"databaseName"`
	IfExists     bool   `json:"ifExists"`
}

type AlterDatabaseRequest struct {
	DatabaseName string `json:"databaseName"`
	Charset      string `json:"charset,omitempty"`
	Collation    string `json:"collation,omitempty"`
}

type CreateTableRequest struct {
	DatabaseName string       `json:"databaseName"`
	TableName    string       `json:"tableName"`
	Columns      []ColumnInfo `json:"columns"`
	IfNotExists  bool         `json:"ifNotExists"`
}

type DropTableRequest struct {
	DatabaseName string `json:"databaseName"`
	TableName    string `json:"tableName"`
	IfExists     bool   `json:"ifExists"`
}

type RenameTableRequest struct {
	DatabaseName string `json:"databaseName"`
	OldTableName string `json:"oldTableName"`
	NewTableName string `json:"newTableName"`
}

type TruncateTableRequest struct {
	DatabaseName string `json:"databaseName"`
	TableName    string `json:"tableName"`
}

type AddColumnRequest struct {
	DatabaseName string     `json:"databaseName"`
	TableName    string     `json:"tableName"`
	Column       ColumnInfo `json:"column"`
}

type DropColumnRequest struct {
	DatabaseName string `json:"databaseName"`
	TableName    string `json:"tableName"`
	ColumnName   string `json:"columnName"`
}

type ModifyColumnRequest struct {
	DatabaseName string     `json:"databaseName"`
	TableName    string     `json:"tableName"`
	Column       ColumnInfo `json:"column"`
}

type CreateIndexRequest struct {
	DatabaseName string    `json:"databaseName"`
	TableName    string    `json:"tableName"`
	Index        IndexInfo `json:"index"`
}

type DropIndexRequest struct {
	DatabaseName string `json:"databaseName"`
	TableName    string `json:"tableName"`
	IndexName    string `json:"indexName"`
}

type CreateViewRequest struct {
	DatabaseName string `json:"databaseName"`
	ViewName     string `json:"viewName"`
	Definition   string `json:"definition"`
	OrReplace    bool   `json:"orReplace"`
}

type DropViewRequest struct {
	DatabaseName string `json:"databaseName"`
	ViewName     string `json:"viewName"`
	IfExists     bool   `json:"ifExists"`
}

// CreateFunctionRequest carries a complete CREATE FUNCTION statement; the
// generator passes it through.
type CreateFunctionRequest struct {
	DatabaseName string `json:"databaseName"`
	Definition   string `json:"definition"`
}

type DropFunctionRequest struct {
	DatabaseName string `json:"databaseName"`
	FunctionName string `json:"functionName"`
	IfExists     bool   `json:"ifExists"`
}

type CreateProcedureRequest struct {
	DatabaseName string `json:"databaseName"`
	Definition   string `json:"definition"`
}

type DropProcedureRequest struct {
	DatabaseName  string `json:"databaseName"`
	ProcedureName string `json:"procedureName"`
	IfExists      bool   `json:"ifExists"`
}

type CreateTriggerRequest struct {
	DatabaseName string `json:"databaseName"`
	Definition   string `json:"definition"`
}

type DropTriggerRequest struct {
	DatabaseName string `json:"databaseName"`
	TriggerName  string `json:"triggerName"`
	IfExists     bool   `json:"ifExists"`
}

type CreateSequenceRequest struct {
	DatabaseName string       `json:"databaseName"`
	Sequence     SequenceInfo `json:"sequence"`
}

type DropSequenceRequest struct {
	DatabaseName string `json:"databaseName"`
	SequenceName string `json:"sequenceName"`
	IfExists     bool   `json:"ifExists"`
}

type AlterSequenceRequest struct {
	DatabaseName string       `json:"databaseName"`
	Sequence     SequenceInfo `json:"sequence"`
}
