package domain

// Catalog records are immutable snapshots produced by driver introspection.
// Optional string fields use "" for absent; optional numerics are pointers.

// DatabaseInfo describes one database (schema) on a server.
type DatabaseInfo struct {
	Name       string `json:"name"`
	Charset    string `json:"charset,omitempty"`
	Collation  string `json:"collation,omitempty"`
	SizeBytes  *int64 `json:"sizeBytes,omitempty"`
	TableCount *int64 `json:"tableCount,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

// TableInfo describes a base table.
type TableInfo struct {
	Name       string `json:"name"`
	Comment    string `json:"comment,omitempty"`
	Engine     string `json:"engine,omitempty"`
	RowCount   *int64 `json:"rowCount,omitempty"`
	CreateTime string `json:"createTime,omitempty"`
	Charset    string `json:"charset,omitempty"`
	Collation  string `json:"collation,omitempty"`
}

// ColumnInfo describes a column; it doubles as the column payload of DDL
// requests.
type ColumnInfo struct {
	Name         string `json:"name"`
	DataType     string `json:"dataType"`
	IsNullable   bool   `json:"isNullable"`
	IsPrimaryKey bool   `json:"isPrimaryKey"`
	DefaultValue string `json:"defaultValue,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// IndexInfo describes an index. Columns preserve key order.
type IndexInfo struct {
	Name      string   `json:"name"`
	Columns   []string `json:"columns"`
	IsUnique  bool     `json:"isUnique"`
	IndexType string   `json:"indexType,omitempty"`
}

// ViewInfo describes a view.
type ViewInfo struct {
	Name       string `json:"name"`
	Definition string `json:"definition,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

// FunctionInfo describes a stored function or procedure.
type FunctionInfo struct {
	Name       string   `json:"name"`
	ReturnType string   `json:"returnType,omitempty"`
	Parameters []string `json:"parameters"`
	Definition string   `json:"definition,omitempty"`
	Comment    string   `json:"comment,omitempty"`
}

// TriggerInfo describes a trigger.
type TriggerInfo struct {
	Name       string `json:"name"`
	TableName  string `json:"tableName"`
	Event      string `json:"event"`
	Timing     string `json:"timing"`
	Definition string `json:"definition,omitempty"`
}

// SequenceInfo describes a sequence (PostgreSQL; MySQL has none).
type SequenceInfo struct {
	Name      string `json:"name"`
	Start     *int64 `json:"start,omitempty"`
	Increment *int64 `json:"increment,omitempty"`
	Min       *int64 `json:"min,omitempty"`
	Max       *int64 `json:"max,omitempty"`
}
