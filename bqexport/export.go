// Package bqexport uploads tab data to BigQuery, so a spreadsheet kept
// current through smartspread can feed analytics without a separate
// ingestion pipeline. The BigQuery schema is derived from the column types
// inferred at read time.
package bqexport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"smartspread"
)

// Exporter streams smartspread tables into BigQuery tables.
type Exporter struct {
	client *bigquery.Client
}

// New creates an exporter for the given project.
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	return &Exporter{client: client}, nil
}

// Close releases the underlying client.
func (e *Exporter) Close() error {
	return e.client.Close()
}

// Schema maps a table's inferred column types to a BigQuery schema. All
// fields are nullable since any cell may be missing.
func Schema(t *smartspread.Table) bigquery.Schema {
	schema := make(bigquery.Schema, 0, t.NumCols())
	for i, col := range t.Columns {
		schema = append(schema, &bigquery.FieldSchema{
			Name: FieldName(col),
			Type: fieldType(t.Types[i]),
		})
	}
	return schema
}

func fieldType(t smartspread.ColumnType) bigquery.FieldType {
	switch t {
	case smartspread.TypeInt:
		return bigquery.IntegerFieldType
	case smartspread.TypeFloat:
		return bigquery.FloatFieldType
	default:
		return bigquery.StringFieldType
	}
}

// FieldName sanitizes a spreadsheet column name into a valid BigQuery field
// name: letters, digits and underscores, not starting with a digit.
func FieldName(column string) string {
	var b strings.Builder
	for _, r := range column {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		return "_"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

// row adapts one table row to the inserter's ValueSaver interface. Missing
// cells are omitted so BigQuery records them as NULL.
type row struct {
	fields []string
	cells  []smartspread.Cell
}

func (r *row) Save() (map[string]bigquery.Value, string, error) {
	values := make(map[string]bigquery.Value, len(r.fields))
	for i, field := range r.fields {
		if r.cells[i].IsNull() {
			continue
		}
		values[field] = r.cells[i].Value()
	}
	return values, "", nil
}

// tableRows adapts all rows of a table for insertion.
func tableRows(t *smartspread.Table) []*row {
	fields := make([]string, t.NumCols())
	for i, col := range t.Columns {
		fields[i] = FieldName(col)
	}

	rows := make([]*row, 0, t.NumRows())
	for _, cells := range t.Rows {
		rows = append(rows, &row{fields: fields, cells: cells})
	}
	return rows
}

// Export streams a table into datasetID.tableID, creating the destination
// table with the derived schema if it does not exist yet.
func (e *Exporter) Export(ctx context.Context, datasetID, tableID string, t *smartspread.Table) error {
	if t == nil || t.NumCols() == 0 {
		return fmt.Errorf("cannot export an empty table: %w", smartspread.ErrInvalidState)
	}

	dest := e.client.Dataset(datasetID).Table(tableID)
	err := dest.Create(ctx, &bigquery.TableMetadata{Schema: Schema(t)})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("failed to create bigquery table %s.%s: %w", datasetID, tableID, err)
	}

	if t.NumRows() == 0 {
		return nil
	}

	if err := dest.Inserter().Put(ctx, tableRows(t)); err != nil {
		return fmt.Errorf("failed to insert rows into %s.%s: %w", datasetID, tableID, err)
	}

	log.Info().
		Str("dataset", datasetID).
		Str("table", tableID).
		Int("rows", t.NumRows()).
		Msg("Exported table to BigQuery")

	return nil
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 409
}
