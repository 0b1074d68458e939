// Package editbuf holds the in-memory tabular model behind result-set
// editing: cell edits, row insertion and deletion, and extraction of the
// minimal diff to persist.
package editbuf

import (
	"sort"

	"dbpilot/internal/domain"
)

// newRowIDBase is the first synthetic id handed to added rows. Values in
// rowIndexMap at or above it refer to newRows instead of originalRows.
const newRowIDBase = 1_000_000

// RowStatus is the per-row editing state.
type RowStatus int

const (
	StatusOriginal RowStatus = iota
	StatusNew
	StatusModified
	StatusDeleted
)

func (s RowStatus) String() string {
	switch s {
	case StatusOriginal:
		return "Original"
	case StatusNew:
		return "New"
	case StatusModified:
		return "Modified"
	case StatusDeleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// CellKey addresses one cell by current row and column index.
type CellKey struct {
	Row int
	Col int
}

// CellChange records one edited cell for diff emission.
type CellChange struct {
	ColIx   int    `json:"colIx"`
	ColName string `json:"colName"`
	Old     string `json:"old"`
	New     string `json:"new"`
}

// RowChange is one entry of the diff produced by Changes.
type RowChange interface {
	isRowChange()
}

// DeletedChange reports an original row retired from the buffer.
type DeletedChange struct {
	OriginalData []string `json:"originalData"`
}

// UpdatedChange reports an original row with edited cells.
type UpdatedChange struct {
	OriginalData []string     `json:"originalData"`
	Changes      []CellChange `json:"changes"`
}

// AddedChange reports a row created in the buffer.
type AddedChange struct {
	Data []string `json:"data"`
}

func (DeletedChange) isRowChange() {}
func (UpdatedChange) isRowChange() {}
func (AddedChange) isRowChange()   {}

// Buffer is the editable model over one result set. It is not safe for
// concurrent mutation; one logical owner per buffer.
type Buffer struct {
	columns     []string
	columnTypes []string
	primaryKeys []int

	originalRows [][]string
	rows         [][]string

	rowIndexMap  map[int]int
	rowStatus    map[int]RowStatus
	cellChanges  map[CellKey]CellChange
	deletedRows  map[int]struct{}
	newRows      map[int][]string
	nextNewRowID int

	columnWidths []int
	onChange     func()
}

// New builds a buffer over the given result set. primaryKeys are column
// indices; rows are deep-copied so later driver reuse cannot alias the
// baseline.
func New(columns, columnTypes []string, rows [][]string, primaryKeys []int) *Buffer {
	b := &Buffer{}
	b.reset(columns, columnTypes, rows, primaryKeys)
	return b
}

// OnChange registers a single observer invoked after every mutation.
func (b *Buffer) OnChange(fn func()) {
	b.onChange = fn
}

func (b *Buffer) notify() {
	if b.onChange != nil {
		b.onChange()
	}
}

func (b *Buffer) reset(columns, columnTypes []string, rows [][]string, primaryKeys []int) {
	b.columns = columns
	b.columnTypes = columnTypes
	b.primaryKeys = primaryKeys

	b.originalRows = copyRows(rows)
	b.rows = copyRows(rows)

	b.rowIndexMap = make(map[int]int, len(rows))
	b.rowStatus = make(map[int]RowStatus, len(rows))
	for i := range rows {
		b.rowIndexMap[i] = i
		b.rowStatus[i] = StatusOriginal
	}
	b.cellChanges = make(map[CellKey]CellChange)
	b.deletedRows = make(map[int]struct{})
	b.newRows = make(map[int][]string)
	b.nextNewRowID = newRowIDBase

	b.columnWidths = computeColumnWidths(columns, rows)
}

// ── Read accessors ─────────────────────────────────────────

func (b *Buffer) Columns() []string     { return b.columns }
func (b *Buffer) ColumnTypes() []string { return b.columnTypes }
func (b *Buffer) PrimaryKeys() []int    { return b.primaryKeys }
func (b *Buffer) RowCount() int         { return len(b.rows) }

// Row returns the current data of one visible row.
func (b *Buffer) Row(ix int) []string {
	if ix < 0 || ix >= len(b.rows) {
		return nil
	}
	return b.rows[ix]
}

// Rows returns all visible rows.
func (b *Buffer) Rows() [][]string { return b.rows }

// Status returns the editing state of one visible row.
func (b *Buffer) Status(ix int) RowStatus {
	return b.rowStatus[ix]
}

// IsCellModified reports whether the cell carries an uncommitted edit; the
// UI uses this for highlighting.
func (b *Buffer) IsCellModified(row, col int) bool {
	_, ok := b.cellChanges[CellKey{Row: row, Col: col}]
	return ok
}

// ColumnWidths returns the display width per column in pixels, derived from
// header and cell text lengths.
func (b *Buffer) ColumnWidths() []int { return b.columnWidths }

// ── Mutations ──────────────────────────────────────────────

// EditCell sets a cell to newValue and reports whether anything changed.
// Edits to unchanged values, unknown cells, and deleted rows are no-ops.
// Re-editing a cell keeps the first recorded old value; an exact revert
// still leaves the change record in place (tests rely on this).
func (b *Buffer) EditCell(row, col int, newValue string) bool {
	if row < 0 || row >= len(b.rows) || col < 0 || col >= len(b.columns) {
		return false
	}
	if b.rowStatus[row] == StatusDeleted {
		return false
	}
	if b.rows[row][col] == newValue {
		return false
	}

	if b.rowStatus[row] == StatusNew {
		// New rows write through; the whole row is emitted on save.
		b.rows[row][col] = newValue
		b.notify()
		return true
	}

	key := CellKey{Row: row, Col: col}
	old := b.rows[row][col]
	if prior, ok := b.cellChanges[key]; ok {
		old = prior.Old
	}
	b.cellChanges[key] = CellChange{
		ColIx:   col,
		ColName: b.columns[col],
		Old:     old,
		New:     newValue,
	}
	b.rows[row][col] = newValue
	b.rowStatus[row] = StatusModified
	b.notify()
	return true
}

// AddRow appends an empty row in New state and returns its index.
func (b *Buffer) AddRow() int {
	row := make([]string, len(b.columns))
	ix := len(b.rows)
	id := b.nextNewRowID
	b.nextNewRowID++

	b.rows = append(b.rows, row)
	b.rowIndexMap[ix] = id
	b.rowStatus[ix] = StatusNew
	b.newRows[id] = row
	b.notify()
	return ix
}

// DeleteRow removes a visible row. New rows vanish entirely; original rows
// are retired and reported as Deleted by Changes. Rows after the removed
// one shift down by one.
func (b *Buffer) DeleteRow(row int) error {
	if row < 0 || row >= len(b.rows) {
		return domain.Errorf("row %d out of range", row)
	}

	mapped := b.rowIndexMap[row]
	if b.rowStatus[row] == StatusNew {
		delete(b.newRows, mapped)
	} else {
		b.deletedRows[mapped] = struct{}{}
	}

	b.rows = append(b.rows[:row], b.rows[row+1:]...)
	b.reindexAfterDelete(row)
	b.notify()
	return nil
}

// reindexAfterDelete rebuilds the auxiliary maps after removing the row at
// deleted. O(n), which is fine at interactive result-set sizes.
func (b *Buffer) reindexAfterDelete(deleted int) {
	indexMap := make(map[int]int, len(b.rowIndexMap))
	status := make(map[int]RowStatus, len(b.rowStatus))
	for ix, mapped := range b.rowIndexMap {
		switch {
		case ix < deleted:
			indexMap[ix] = mapped
			status[ix] = b.rowStatus[ix]
		case ix > deleted:
			indexMap[ix-1] = mapped
			status[ix-1] = b.rowStatus[ix]
		}
	}
	b.rowIndexMap = indexMap
	b.rowStatus = status

	changes := make(map[CellKey]CellChange, len(b.cellChanges))
	for key, change := range b.cellChanges {
		switch {
		case key.Row < deleted:
			changes[key] = change
		case key.Row > deleted:
			changes[CellKey{Row: key.Row - 1, Col: key.Col}] = change
		}
	}
	b.cellChanges = changes
}

// Changes extracts the pending diff: deletions first, then updates, then
// additions. Updates and additions follow visible row order; deletions
// follow original row order.
func (b *Buffer) Changes() []RowChange {
	var out []RowChange

	deleted := make([]int, 0, len(b.deletedRows))
	for orig := range b.deletedRows {
		deleted = append(deleted, orig)
	}
	sort.Ints(deleted)
	for _, orig := range deleted {
		out = append(out, DeletedChange{OriginalData: copyRow(b.originalRows[orig])})
	}

	for ix := 0; ix < len(b.rows); ix++ {
		if b.rowStatus[ix] != StatusModified {
			continue
		}
		orig := b.rowIndexMap[ix]
		if _, gone := b.deletedRows[orig]; gone {
			continue
		}
		cells := b.rowChanges(ix)
		if len(cells) == 0 {
			continue
		}
		out = append(out, UpdatedChange{
			OriginalData: copyRow(b.originalRows[orig]),
			Changes:      cells,
		})
	}

	for ix := 0; ix < len(b.rows); ix++ {
		if b.rowStatus[ix] == StatusNew {
			out = append(out, AddedChange{Data: copyRow(b.rows[ix])})
		}
	}

	return out
}

func (b *Buffer) rowChanges(row int) []CellChange {
	var cells []CellChange
	for key, change := range b.cellChanges {
		if key.Row == row {
			cells = append(cells, change)
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].ColIx < cells[j].ColIx })
	return cells
}

// ClearChanges discards all tracking; the current rows become the new
// baseline.
func (b *Buffer) ClearChanges() {
	b.reset(b.columns, b.columnTypes, b.rows, b.primaryKeys)
	b.notify()
}

// HasChanges reports whether any edit, addition, or deletion is pending.
func (b *Buffer) HasChanges() bool {
	return b.ChangesCount() > 0
}

// ChangesCount counts pending changes: modified rows plus deleted originals
// plus added rows.
func (b *Buffer) ChangesCount() int {
	modified := make(map[int]struct{})
	for key := range b.cellChanges {
		modified[key.Row] = struct{}{}
	}
	return len(modified) + len(b.deletedRows) + len(b.newRows)
}

// Replace swaps in a fresh result set, discarding all state.
func (b *Buffer) Replace(columns, columnTypes []string, rows [][]string, primaryKeys []int) {
	b.reset(columns, columnTypes, rows, primaryKeys)
	b.notify()
}

// ── Helpers ────────────────────────────────────────────────

const (
	pixelsPerChar  = 8
	minColumnWidth = 80
	maxColumnWidth = 300
)

func computeColumnWidths(columns []string, rows [][]string) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for i, w := range widths {
		px := w * pixelsPerChar
		if px < minColumnWidth {
			px = minColumnWidth
		}
		if px > maxColumnWidth {
			px = maxColumnWidth
		}
		widths[i] = px
	}
	return widths
}

func copyRow(row []string) []string {
	out := make([]string, len(row))
	copy(out, row)
	return out
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row)
	}
	return out
}
