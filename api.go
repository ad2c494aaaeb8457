package smartspread

import "context"

// SpreadsheetInfo describes a resolved remote spreadsheet.
type SpreadsheetInfo struct {
	ID    string
	Title string
	URL   string
}

// API defines the boundary to the remote spreadsheet service. It separates
// infrastructure concerns from the handle/accessor logic and is the seam
// mocked in tests.
//
// Note on interface{} usage:
// The Google Sheets API (google.golang.org/api/sheets/v4) uses
// [][]interface{} for cell values. That representation is required for API
// compatibility and is constrained to this boundary; everything above it
// works with the Cell type.
type API interface {
	// GetSpreadsheet fetches spreadsheet metadata by ID. Returns an error
	// matching ErrNotFound when no spreadsheet has that ID.
	GetSpreadsheet(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error)

	// FindSpreadsheetByName looks a spreadsheet up by its display name.
	// Returns an error matching ErrNotFound when no spreadsheet matches.
	FindSpreadsheetByName(ctx context.Context, name string) (*SpreadsheetInfo, error)

	// CreateSpreadsheet creates a new spreadsheet with the given title.
	CreateSpreadsheet(ctx context.Context, title string) (*SpreadsheetInfo, error)

	// ShareSpreadsheet grants the given role on a spreadsheet. An empty
	// email shares with anyone.
	ShareSpreadsheet(ctx context.Context, spreadsheetID, email, role string) error

	// ListTabs returns the ordered tab titles of a spreadsheet.
	ListTabs(ctx context.Context, spreadsheetID string) ([]string, error)

	// TabExists checks whether a tab with the given title exists.
	TabExists(ctx context.Context, spreadsheetID, tabName string) (bool, error)

	// AddTab creates a new tab with the given grid dimensions.
	AddTab(ctx context.Context, spreadsheetID, tabName string, rows, cols int64) error

	// ReadTab reads all values from a tab. With formatted set, values come
	// back as the formatted display text; otherwise as unformatted raw
	// values. Returns [][]interface{} as required by the Sheets API.
	ReadTab(ctx context.Context, spreadsheetID, tabName string, formatted bool) ([][]interface{}, error)

	// UpdateRange writes values into a sheet range.
	UpdateRange(ctx context.Context, spreadsheetID, rangeA1 string, values [][]interface{}) error

	// ClearTab clears all values in a tab.
	ClearTab(ctx context.Context, spreadsheetID, tabName string) error

	// SetBasicFilter enables a basic filter control over a tab.
	SetBasicFilter(ctx context.Context, spreadsheetID, tabName string) error

	// FreezeRows freezes the first n rows of a tab.
	FreezeRows(ctx context.Context, spreadsheetID, tabName string, rows int64) error

	// FormatHeaderBold bolds the first row across the given column count.
	FormatHeaderBold(ctx context.Context, spreadsheetID, tabName string, cols int64) error
}
