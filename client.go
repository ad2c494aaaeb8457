package smartspread

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client implements the API interface against the real Google Sheets and
// Drive services. Sheets covers cell values, tab management and formatting;
// Drive covers lookup-by-name and sharing, which the Sheets API cannot
// express.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// NewClientFromFile creates a client authenticated with a service-account
// key file.
func NewClientFromFile(ctx context.Context, credentialsFile string) (*Client, error) {
	return newClient(ctx, option.WithCredentialsFile(credentialsFile))
}

// NewClientFromJSON creates a client authenticated with an in-memory
// service-account JSON payload.
func NewClientFromJSON(ctx context.Context, credentialsJSON []byte) (*Client, error) {
	return newClient(ctx, option.WithCredentialsJSON(credentialsJSON))
}

func newClient(ctx context.Context, credentials option.ClientOption) (*Client, error) {
	scopes := option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope)

	sheetsService, err := sheets.NewService(ctx, credentials, scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	driveService, err := drive.NewService(ctx, credentials, scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Client{
		sheets: sheetsService,
		drive:  driveService,
	}, nil
}

// isRemoteNotFound reports whether a Google API error means the resource
// does not exist.
func isRemoteNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 404
}

func spreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}

// quoteTab wraps a tab title in single quotes so titles with spaces or
// punctuation form valid A1 ranges.
func quoteTab(tabName string) string {
	return "'" + strings.ReplaceAll(tabName, "'", "''") + "'"
}

// GetSpreadsheet fetches spreadsheet metadata by ID
func (c *Client) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	resp, err := c.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("spreadsheetId,spreadsheetUrl,properties.title").
		Context(ctx).
		Do()
	if err != nil {
		if isRemoteNotFound(err) {
			return nil, fmt.Errorf("spreadsheet %q: %w", spreadsheetID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get spreadsheet %q: %w", spreadsheetID, err)
	}

	return &SpreadsheetInfo{
		ID:    resp.SpreadsheetId,
		Title: resp.Properties.Title,
		URL:   resp.SpreadsheetUrl,
	}, nil
}

// FindSpreadsheetByName looks a spreadsheet up by display name via Drive
func (c *Client) FindSpreadsheetByName(ctx context.Context, name string) (*SpreadsheetInfo, error) {
	escaped := strings.ReplaceAll(name, `'`, `\'`)
	query := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false", escaped)

	resp, err := c.drive.Files.List().
		Q(query).
		Fields("files(id,name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search for spreadsheet %q: %w", name, err)
	}

	if len(resp.Files) == 0 {
		return nil, fmt.Errorf("spreadsheet %q: %w", name, ErrNotFound)
	}

	file := resp.Files[0]
	return &SpreadsheetInfo{
		ID:    file.Id,
		Title: file.Name,
		URL:   spreadsheetURL(file.Id),
	}, nil
}

// CreateSpreadsheet creates a new spreadsheet with the given title
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (*SpreadsheetInfo, error) {
	resp, err := c.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: title,
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet %q: %w", title, err)
	}

	log.Info().
		Str("spreadsheet_id", resp.SpreadsheetId).
		Str("title", title).
		Msg("Created spreadsheet")

	return &SpreadsheetInfo{
		ID:    resp.SpreadsheetId,
		Title: title,
		URL:   resp.SpreadsheetUrl,
	}, nil
}

// ShareSpreadsheet grants a role on the spreadsheet. An empty email grants
// the role to anyone.
func (c *Client) ShareSpreadsheet(ctx context.Context, spreadsheetID, email, role string) error {
	permission := &drive.Permission{Role: role}
	if email == "" {
		permission.Type = "anyone"
	} else {
		permission.Type = "user"
		permission.EmailAddress = email
	}

	_, err := c.drive.Permissions.Create(spreadsheetID, permission).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to share spreadsheet: %w", err)
	}

	log.Debug().
		Str("spreadsheet_id", spreadsheetID).
		Str("email", email).
		Str("role", role).
		Msg("Granted spreadsheet access")

	return nil
}

// ListTabs returns the ordered tab titles in the spreadsheet
func (c *Client) ListTabs(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := c.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		if isRemoteNotFound(err) {
			return nil, fmt.Errorf("spreadsheet %q: %w", spreadsheetID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		titles = append(titles, sheet.Properties.Title)
	}
	return titles, nil
}

// TabExists checks whether a tab with the given title exists
func (c *Client) TabExists(ctx context.Context, spreadsheetID, tabName string) (bool, error) {
	titles, err := c.ListTabs(ctx, spreadsheetID)
	if err != nil {
		return false, err
	}
	for _, title := range titles {
		if title == tabName {
			return true, nil
		}
	}
	return false, nil
}

// AddTab creates a new tab with the given grid dimensions
func (c *Client) AddTab(ctx context.Context, spreadsheetID, tabName string, rows, cols int64) error {
	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: tabName,
					GridProperties: &sheets.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
			},
		}},
	}

	_, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to create tab %q: %w", tabName, err)
	}

	log.Info().
		Str("tab_name", tabName).
		Msg("Created tab")

	return nil
}

// ReadTab reads all values from a tab, formatted or raw
func (c *Client) ReadTab(ctx context.Context, spreadsheetID, tabName string, formatted bool) ([][]interface{}, error) {
	renderOption := "UNFORMATTED_VALUE"
	if formatted {
		renderOption = "FORMATTED_VALUE"
	}

	resp, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, quoteTab(tabName)).
		ValueRenderOption(renderOption).
		Context(ctx).
		Do()
	if err != nil {
		if isRemoteNotFound(err) {
			return nil, fmt.Errorf("tab %q: %w", tabName, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read tab %q: %w", tabName, err)
	}

	return resp.Values, nil
}

// UpdateRange writes values into the given A1 range
func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, rangeA1 string, values [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := c.sheets.Spreadsheets.Values.Update(spreadsheetID, rangeA1, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update range %q: %w", rangeA1, err)
	}

	return nil
}

// ClearTab clears all values in a tab
func (c *Client) ClearTab(ctx context.Context, spreadsheetID, tabName string) error {
	_, err := c.sheets.Spreadsheets.Values.Clear(spreadsheetID, quoteTab(tabName), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to clear tab %q: %w", tabName, err)
	}

	return nil
}

// sheetID resolves a tab title to its numeric sheet ID for batch requests.
func (c *Client) sheetID(ctx context.Context, spreadsheetID, tabName string) (int64, error) {
	resp, err := c.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, sheet := range resp.Sheets {
		if sheet.Properties.Title == tabName {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("tab %q: %w", tabName, ErrNotFound)
}

func (c *Client) batchUpdate(ctx context.Context, spreadsheetID string, req *sheets.Request) error {
	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{req},
	}
	_, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).
		Context(ctx).
		Do()
	return err
}

// SetBasicFilter enables a basic filter control over the tab
func (c *Client) SetBasicFilter(ctx context.Context, spreadsheetID, tabName string) error {
	sheetID, err := c.sheetID(ctx, spreadsheetID, tabName)
	if err != nil {
		return err
	}

	req := &sheets.Request{
		SetBasicFilter: &sheets.SetBasicFilterRequest{
			Filter: &sheets.BasicFilter{
				Range: &sheets.GridRange{SheetId: sheetID},
			},
		},
	}
	if err := c.batchUpdate(ctx, spreadsheetID, req); err != nil {
		return fmt.Errorf("failed to set basic filter on tab %q: %w", tabName, err)
	}
	return nil
}

// FreezeRows freezes the first n rows of the tab
func (c *Client) FreezeRows(ctx context.Context, spreadsheetID, tabName string, rows int64) error {
	sheetID, err := c.sheetID(ctx, spreadsheetID, tabName)
	if err != nil {
		return err
	}

	req := &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId: sheetID,
				GridProperties: &sheets.GridProperties{
					FrozenRowCount: rows,
				},
			},
			Fields: "gridProperties.frozenRowCount",
		},
	}
	if err := c.batchUpdate(ctx, spreadsheetID, req); err != nil {
		return fmt.Errorf("failed to freeze rows on tab %q: %w", tabName, err)
	}
	return nil
}

// FormatHeaderBold bolds the first row across the given column count
func (c *Client) FormatHeaderBold(ctx context.Context, spreadsheetID, tabName string, cols int64) error {
	sheetID, err := c.sheetID(ctx, spreadsheetID, tabName)
	if err != nil {
		return err
	}

	req := &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    0,
				EndRowIndex:      1,
				StartColumnIndex: 0,
				EndColumnIndex:   cols,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true},
				},
			},
			Fields: "userEnteredFormat.textFormat.bold",
		},
	}
	if err := c.batchUpdate(ctx, spreadsheetID, req); err != nil {
		return fmt.Errorf("failed to bold header on tab %q: %w", tabName, err)
	}
	return nil
}
