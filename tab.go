package smartspread

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// DataFormat selects the in-memory shape a Tab exposes its data in.
type DataFormat string

const (
	// FormatDataFrame exposes data as the canonical typed *Table.
	FormatDataFrame DataFormat = "DataFrame"
	// FormatDict exposes data as a record list, one map per row.
	FormatDict DataFormat = "dict"
	// FormatList exposes data as a row list with the header as row 0.
	FormatList DataFormat = "list"
)

const (
	defaultTabRows = 1000
	defaultTabCols = 26

	// Header formatting is bounded to 26 columns regardless of data width.
	maxBoldCols = 26
)

// Tab is an accessor for a single named tab within a spreadsheet. On
// construction it creates the tab remotely if absent, eagerly reads its
// content into the canonical table and records a content fingerprint.
// WriteData skips the remote call entirely while the fingerprint is
// unchanged. The accessor borrows its Spread handle; it holds no remote
// session of its own.
type Tab struct {
	spread *Spread
	name   string
	format DataFormat

	// keepNumberFormatting reads cells as their formatted display text
	// instead of raw values, so numbers keep their formatting as strings.
	keepNumberFormatting bool

	table      *Table
	storedHash string
}

func newTab(ctx context.Context, spread *Spread, tabName string, format DataFormat, keepNumberFormatting bool) (*Tab, error) {
	if tabName == "" {
		return nil, fmt.Errorf("tab name cannot be empty: %w", ErrInvalidArgument)
	}
	switch format {
	case FormatDataFrame, FormatDict, FormatList:
	default:
		return nil, fmt.Errorf("invalid data format %q, must be %q, %q or %q: %w",
			format, FormatDataFrame, FormatList, FormatDict, ErrInvalidArgument)
	}

	t := &Tab{
		spread:               spread,
		name:                 tabName,
		format:               format,
		keepNumberFormatting: keepNumberFormatting,
	}

	info, err := spread.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	exists, err := spread.api.TabExists(ctx, info.ID, tabName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if tab %q exists: %w", tabName, err)
	}
	if !exists {
		if err := spread.api.AddTab(ctx, info.ID, tabName, defaultTabRows, defaultTabCols); err != nil {
			return nil, fmt.Errorf("failed to create tab %q: %w", tabName, err)
		}
		spread.invalidateTabNames()
	}

	if _, err := t.ReadData(ctx); err != nil {
		// A brand-new or headerless tab starts as an empty table with no
		// fingerprint, so the first write always goes through.
		if !errors.Is(err, ErrInvalidState) {
			return nil, err
		}
		t.table = NewTable(nil)
		t.storedHash = ""
	}

	return t, nil
}

// Name returns the tab's title.
func (t *Tab) Name() string {
	return t.name
}

// Format returns the data shape the accessor was constructed with.
func (t *Tab) Format() DataFormat {
	return t.format
}

// Table returns the canonical typed table backing the accessor.
func (t *Tab) Table() *Table {
	return t.table
}

// Data returns the current in-memory data in the accessor's shape: *Table,
// []map[string]interface{} or [][]interface{}. Missing cells are nil in the
// dict and list shapes.
func (t *Tab) Data() interface{} {
	return t.shaped()
}

// SetData replaces the in-memory data. Accepts any of the three shapes;
// everything else is rejected. The remote tab is untouched until WriteData.
func (t *Tab) SetData(data interface{}) error {
	switch v := data.(type) {
	case *Table:
		t.table = normalizeTable(v)
	case []map[string]interface{}:
		table, err := tableFromRecords(v)
		if err != nil {
			return fmt.Errorf("record-list data: %w", err)
		}
		t.table = table
	case [][]interface{}:
		table, err := tableFromGrid(v)
		if err != nil {
			return fmt.Errorf("row-list data: %w", err)
		}
		t.table = table
	default:
		return fmt.Errorf("unsupported data type %T, provide *Table, []map[string]interface{} or [][]interface{}: %w", data, ErrInvalidArgument)
	}
	return nil
}

// ReadData fetches the tab's full content, runs type inference and returns
// the result in the accessor's shape. The canonical table and fingerprint
// are updated as a side effect.
func (t *Tab) ReadData(ctx context.Context) (interface{}, error) {
	info, err := t.spread.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	values, err := t.spread.api.ReadTab(ctx, info.ID, t.name, t.keepNumberFormatting)
	if err != nil {
		return nil, fmt.Errorf("failed to read values from tab %q: %w", t.name, err)
	}

	table, err := tableFromGrid(values)
	if err != nil {
		return nil, fmt.Errorf("tab %q: %w", t.name, err)
	}

	t.table = table
	t.storedHash = fingerprint(table)

	log.Debug().
		Str("tab_name", t.name).
		Int("rows", table.NumRows()).
		Int("cols", table.NumCols()).
		Msg("Tab read")

	return t.shaped(), nil
}

// WriteData writes the in-memory data to the remote tab, skipping the
// remote call entirely when the content fingerprint matches the last read
// or written state. With overwriteTab the whole tab is cleared first and
// the grid written at A1; otherwise only the rectangle covering the grid is
// updated, leaving remote cells outside it untouched (shrinking data can
// leave stale cells behind - known limitation). With asTable, a basic
// filter is enabled, the header row frozen and bolded; those formatting
// steps apply independently and are not rolled back on partial failure.
func (t *Tab) WriteData(ctx context.Context, overwriteTab, asTable bool) error {
	currentHash := fingerprint(t.table)
	if t.storedHash != "" && t.storedHash == currentHash {
		log.Debug().
			Str("tab_name", t.name).
			Msg("Data unchanged, skipping write")
		return nil
	}

	if t.table == nil || t.table.NumCols() == 0 {
		return fmt.Errorf("cannot write empty data to tab %q: %w", t.name, ErrInvalidState)
	}
	values := t.table.wireRows()

	info, err := t.spread.Resolve(ctx)
	if err != nil {
		return err
	}

	if overwriteTab {
		if err := t.spread.api.ClearTab(ctx, info.ID, t.name); err != nil {
			return fmt.Errorf("failed to clear tab %q: %w", t.name, err)
		}
		rangeA1 := fmt.Sprintf("%s!A1", quoteTab(t.name))
		if err := t.spread.api.UpdateRange(ctx, info.ID, rangeA1, values); err != nil {
			return fmt.Errorf("failed to write data to tab %q: %w", t.name, err)
		}
	} else {
		rangeA1 := fmt.Sprintf("%s!A1:%s%d", quoteTab(t.name), columnLetter(len(values[0])), len(values))
		if err := t.spread.api.UpdateRange(ctx, info.ID, rangeA1, values); err != nil {
			return fmt.Errorf("failed to write data to tab %q: %w", t.name, err)
		}
	}

	if asTable {
		if err := t.spread.api.SetBasicFilter(ctx, info.ID, t.name); err != nil {
			return fmt.Errorf("failed to set basic filter on tab %q: %w", t.name, err)
		}
		if err := t.spread.api.FreezeRows(ctx, info.ID, t.name, 1); err != nil {
			return fmt.Errorf("failed to freeze header row on tab %q: %w", t.name, err)
		}
		boldCols := len(values[0])
		if boldCols > maxBoldCols {
			boldCols = maxBoldCols
		}
		if err := t.spread.api.FormatHeaderBold(ctx, info.ID, t.name, int64(boldCols)); err != nil {
			return fmt.Errorf("failed to bold header row on tab %q: %w", t.name, err)
		}
	}

	t.storedHash = currentHash

	log.Info().
		Str("tab_name", t.name).
		Int("rows", len(values)-1).
		Int("cols", len(values[0])).
		Bool("overwrite", overwriteTab).
		Msg("Data written")

	return nil
}

// FilterRowsByColumn returns the rows whose value in the named column
// contains pattern as a substring. Missing values never match. Read-only:
// neither the stored data nor the fingerprint changes.
func (t *Tab) FilterRowsByColumn(column, pattern string) (*Table, error) {
	if column == "" {
		return nil, fmt.Errorf("column cannot be empty: %w", ErrInvalidArgument)
	}
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty: %w", ErrInvalidArgument)
	}

	idx := t.table.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found in the data: %w", column, ErrInvalidArgument)
	}

	result := &Table{
		Columns: append([]string(nil), t.table.Columns...),
		Types:   append([]ColumnType(nil), t.table.Types...),
	}
	for _, row := range t.table.Rows {
		cell := row[idx]
		if cell.IsNull() {
			continue
		}
		if strings.Contains(cell.String(), pattern) {
			result.Rows = append(result.Rows, append([]Cell(nil), row...))
		}
	}
	return result, nil
}

// UpdateRowByColumnPattern updates the first row whose value in the named
// column exactly equals value, applying updates by column name; despite the
// name, matching is exact equality, not pattern matching. When no row
// matches, a new row is appended with value in the match column, the
// updates applied and nulls everywhere else. The match column and every
// update target column are created (null-filled) if absent. In-memory only;
// call WriteData to persist.
func (t *Tab) UpdateRowByColumnPattern(column string, value interface{}, updates map[string]interface{}) error {
	if column == "" {
		return fmt.Errorf("column cannot be empty: %w", ErrInvalidArgument)
	}
	if len(updates) == 0 {
		return fmt.Errorf("updates cannot be empty: %w", ErrInvalidArgument)
	}

	if t.table == nil {
		t.table = NewTable(nil)
	}

	if t.table.ColumnIndex(column) < 0 {
		t.table.AddColumn(column)
	}
	// Map iteration order is random; sort the update columns so any column
	// creation is deterministic.
	updateCols := make([]string, 0, len(updates))
	for col := range updates {
		updateCols = append(updateCols, col)
	}
	sort.Strings(updateCols)
	for _, col := range updateCols {
		if t.table.ColumnIndex(col) < 0 {
			t.table.AddColumn(col)
		}
	}

	matchIdx := t.table.ColumnIndex(column)
	matchCell := NewCell(value)

	rowIdx := -1
	for i, row := range t.table.Rows {
		if row[matchIdx].Equal(matchCell) {
			rowIdx = i
			break
		}
	}

	if rowIdx < 0 {
		row := make([]Cell, len(t.table.Columns))
		for i := range row {
			row[i] = NullCell()
		}
		row[matchIdx] = matchCell
		t.table.Rows = append(t.table.Rows, row)
		rowIdx = len(t.table.Rows) - 1

		log.Debug().
			Str("tab_name", t.name).
			Str("column", column).
			Msg("No matching row, appending new row")
	}

	for _, col := range updateCols {
		t.table.Rows[rowIdx][t.table.ColumnIndex(col)] = NewCell(updates[col])
	}

	inferColumns(t.table)
	return nil
}

// Refresh re-reads the tab from the remote spreadsheet and recomputes the
// fingerprint, making externally-made changes visible.
func (t *Tab) Refresh(ctx context.Context) error {
	_, err := t.ReadData(ctx)
	return err
}

func (t *Tab) shaped() interface{} {
	switch t.format {
	case FormatDict:
		return t.table.Records()
	case FormatList:
		return t.table.RowList()
	default:
		return t.table
	}
}

// columnLetter converts a 1-based column count to its A1 column label
// (1 -> A, 26 -> Z, 27 -> AA).
func columnLetter(n int) string {
	var label []byte
	for n > 0 {
		n--
		label = append([]byte{byte('A' + n%26)}, label...)
		n /= 26
	}
	return string(label)
}
