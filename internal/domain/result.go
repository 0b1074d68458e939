package domain

// SqlResult is the outcome of executing a single statement: a row set, an
// exec summary, or a per-statement error. Exactly one variant is non-nil.
type SqlResult interface {
	isSqlResult()
}

// QueryResult is a fetched row set. Every row has len(Columns) cells; a nil
// cell is SQL NULL and is rendered by the UI as the literal "NULL".
type QueryResult struct {
	Columns   []string    `json:"columns"`
	Rows      [][]*string `json:"rows"`
	ElapsedMs int64       `json:"elapsedMs"`
}

// ExecResult summarizes a statement that returned no row set.
type ExecResult struct {
	SQL          string `json:"sql"`
	RowsAffected int64  `json:"rowsAffected"`
	ElapsedMs    int64  `json:"elapsedMs"`
	Message      string `json:"message,omitempty"`
}

// ErrorResult carries a statement failure inside an otherwise successful
// call, so scripts can report per-statement outcomes.
type ErrorResult struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (*QueryResult) isSqlResult() {}
func (*ExecResult) isSqlResult()  {}
func (*ErrorResult) isSqlResult() {}

// CellText renders a result cell for display: NULL becomes the literal
// string "NULL".
func CellText(cell *string) string {
	if cell == nil {
		return "NULL"
	}
	return *cell
}
