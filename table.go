package smartspread

import (
	"fmt"
	"math"
	"sort"
)

// ColumnType is the inferred type of a column after reading a tab.
type ColumnType int

const (
	// TypeNull marks a column whose cells are all missing.
	TypeNull ColumnType = iota
	// TypeInt marks a nullable integer column.
	TypeInt
	// TypeFloat marks a nullable floating-point column.
	TypeFloat
	// TypeText marks a text column with missing values preserved as null.
	TypeText
)

func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeText:
		return "text"
	default:
		return "null"
	}
}

// Table is the canonical tabular representation shared by all three data
// shapes: ordered named columns, ordered rows, nullable typed cells. The
// grid is always rectangular - every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Types   []ColumnType
	Rows    [][]Cell
}

// NewTable creates an empty table with the given column names. All column
// types start as TypeNull until data is added and inferred.
func NewTable(columns []string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Types:   make([]ColumnType, len(columns)),
	}
	return t
}

// NumRows returns the number of data rows (the header is not a row).
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// AddColumn appends a new column filled with nulls for all existing rows.
func (t *Table) AddColumn(name string) {
	t.Columns = append(t.Columns, name)
	t.Types = append(t.Types, TypeNull)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], NullCell())
	}
}

// AppendRow adds a data row, padding or truncating to the column count.
func (t *Table) AppendRow(cells []Cell) {
	row := make([]Cell, len(t.Columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = NullCell()
		}
	}
	t.Rows = append(t.Rows, row)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: append([]string(nil), t.Columns...),
		Types:   append([]ColumnType(nil), t.Types...),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = append([]Cell(nil), row...)
	}
	return c
}

// Records converts the table to the record-list shape: one ordered map per
// row, keys are column names, missing cells are nil.
func (t *Table) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			rec[col] = row[i].Value()
		}
		records = append(records, rec)
	}
	return records
}

// RowList converts the table to the row-list shape: the header row followed
// by data rows, missing cells are nil.
func (t *Table) RowList() [][]interface{} {
	rows := make([][]interface{}, 0, len(t.Rows)+1)
	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	rows = append(rows, header)
	for _, row := range t.Rows {
		out := make([]interface{}, len(row))
		for i, cell := range row {
			out[i] = cell.Value()
		}
		rows = append(rows, out)
	}
	return rows
}

// wireRows converts the table to the grid sent to the Sheets API: header
// plus data rows, with missing cells as empty strings. The wire format has
// no null, only absence-as-empty-string.
func (t *Table) wireRows() [][]interface{} {
	rows := make([][]interface{}, 0, len(t.Rows)+1)
	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	rows = append(rows, header)
	for _, row := range t.Rows {
		out := make([]interface{}, len(row))
		for i, cell := range row {
			if cell.IsNull() {
				out[i] = ""
			} else {
				out[i] = cell.Value()
			}
		}
		rows = append(rows, out)
	}
	return rows
}

// tableFromGrid builds a canonical table from a raw value grid as returned
// by the Sheets API. Row 0 is the header; blank header cells get positional
// placeholder names; data rows are padded or truncated to the header width;
// empty cells become null; column types are inferred independently.
func tableFromGrid(values [][]interface{}) (*Table, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, fmt.Errorf("grid is empty or has no header row: %w", ErrInvalidState)
	}

	columns := make([]string, len(values[0]))
	for i, raw := range values[0] {
		name := NewCell(raw).String()
		if name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}
		columns[i] = name
	}

	t := NewTable(columns)
	for _, raw := range values[1:] {
		row := make([]Cell, 0, len(raw))
		for _, v := range raw {
			row = append(row, NewCell(v))
		}
		t.AppendRow(row)
	}

	inferColumns(t)
	return t, nil
}

// tableFromRecords builds a canonical table from the record-list shape. The
// column set comes from the first record; Go maps carry no insertion order,
// so columns are sorted by name to keep conversion deterministic.
func tableFromRecords(records []map[string]interface{}) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("record list is empty: %w", ErrInvalidState)
	}

	columns := make([]string, 0, len(records[0]))
	for col := range records[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	grid := make([][]interface{}, 0, len(records)+1)
	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	grid = append(grid, header)
	for _, rec := range records {
		row := make([]interface{}, len(columns))
		for i, col := range columns {
			row[i] = rec[col]
		}
		grid = append(grid, row)
	}

	return tableFromGrid(grid)
}

// inferColumns assigns each column a type based on its present values,
// independently of every other column. All values numeric with zero
// fractional part makes a nullable int column; all numeric makes a float
// column; anything else stays text. Missing values stay null in every case.
func inferColumns(t *Table) {
	for c := range t.Columns {
		hasValue := false
		isInt := true
		isNumeric := true

		for _, row := range t.Rows {
			cell := row[c]
			if cell.IsNull() {
				continue
			}
			hasValue = true
			f, ok := cell.numeric()
			if !ok {
				isInt = false
				isNumeric = false
				break
			}
			if f != math.Trunc(f) || math.IsInf(f, 0) {
				isInt = false
			}
		}

		switch {
		case !hasValue:
			t.Types[c] = TypeNull
		case isInt:
			t.Types[c] = TypeInt
			for _, row := range t.Rows {
				if row[c].IsNull() {
					continue
				}
				f, _ := row[c].numeric()
				row[c] = IntCell(int64(f))
			}
		case isNumeric:
			t.Types[c] = TypeFloat
			for _, row := range t.Rows {
				if row[c].IsNull() {
					continue
				}
				f, _ := row[c].numeric()
				row[c] = FloatCell(f)
			}
		default:
			t.Types[c] = TypeText
			for _, row := range t.Rows {
				if row[c].IsNull() {
					continue
				}
				row[c] = StringCell(row[c].String())
			}
		}
	}
}

// normalizeTable rectangularizes a caller-supplied table and infers column
// types so fingerprinting and writes always see canonical cells.
func normalizeTable(t *Table) *Table {
	n := t.Clone()
	if n.Types == nil || len(n.Types) != len(n.Columns) {
		n.Types = make([]ColumnType, len(n.Columns))
	}
	for i, row := range n.Rows {
		switch {
		case len(row) < len(n.Columns):
			padded := append([]Cell(nil), row...)
			for len(padded) < len(n.Columns) {
				padded = append(padded, NullCell())
			}
			n.Rows[i] = padded
		case len(row) > len(n.Columns):
			n.Rows[i] = row[:len(n.Columns)]
		}
	}
	inferColumns(n)
	return n
}
