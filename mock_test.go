package smartspread

import (
	"context"
	"fmt"
	"strings"
)

// mockAPI implements the API interface for testing with in-memory state and
// call counters.
type mockAPI struct {
	info    *SpreadsheetInfo
	byName  map[string]*SpreadsheetInfo
	tabs    []string
	data    map[string][][]interface{}
	created []*SpreadsheetInfo
	shares  []mockShare

	getCalls    int
	findCalls   int
	listCalls   int
	readCalls   int
	updateCalls int
	clearCalls  int
	filterCalls int
	freezeCalls int
	boldCalls   int

	lastUpdateRange string
	lastUpdateData  [][]interface{}

	failWith error
}

type mockShare struct {
	email string
	role  string
}

func newMockAPI() *mockAPI {
	return &mockAPI{
		info:   &SpreadsheetInfo{ID: "sheet-id-1", Title: "Test Sheet", URL: "https://docs.google.com/spreadsheets/d/sheet-id-1"},
		byName: make(map[string]*SpreadsheetInfo),
		data:   make(map[string][][]interface{}),
	}
}

func (m *mockAPI) hasTab(name string) bool {
	for _, t := range m.tabs {
		if t == name {
			return true
		}
	}
	return false
}

func (m *mockAPI) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.getCalls++
	if m.info != nil && spreadsheetID == m.info.ID {
		return m.info, nil
	}
	return nil, fmt.Errorf("spreadsheet %q: %w", spreadsheetID, ErrNotFound)
}

func (m *mockAPI) FindSpreadsheetByName(ctx context.Context, name string) (*SpreadsheetInfo, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.findCalls++
	if info, ok := m.byName[name]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("spreadsheet %q: %w", name, ErrNotFound)
}

func (m *mockAPI) CreateSpreadsheet(ctx context.Context, title string) (*SpreadsheetInfo, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	info := &SpreadsheetInfo{
		ID:    fmt.Sprintf("created-%d", len(m.created)+1),
		Title: title,
		URL:   fmt.Sprintf("https://docs.google.com/spreadsheets/d/created-%d", len(m.created)+1),
	}
	m.created = append(m.created, info)
	return info, nil
}

func (m *mockAPI) ShareSpreadsheet(ctx context.Context, spreadsheetID, email, role string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.shares = append(m.shares, mockShare{email: email, role: role})
	return nil
}

func (m *mockAPI) ListTabs(ctx context.Context, spreadsheetID string) ([]string, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.listCalls++
	return append([]string(nil), m.tabs...), nil
}

func (m *mockAPI) TabExists(ctx context.Context, spreadsheetID, tabName string) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	return m.hasTab(tabName), nil
}

func (m *mockAPI) AddTab(ctx context.Context, spreadsheetID, tabName string, rows, cols int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.tabs = append(m.tabs, tabName)
	return nil
}

func (m *mockAPI) ReadTab(ctx context.Context, spreadsheetID, tabName string, formatted bool) ([][]interface{}, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.readCalls++
	return m.data[tabName], nil
}

// tabFromRange extracts the tab title from a quoted A1 range.
func tabFromRange(rangeA1 string) string {
	name := rangeA1
	if i := strings.Index(name, "!"); i != -1 {
		name = name[:i]
	}
	return strings.Trim(name, "'")
}

func (m *mockAPI) UpdateRange(ctx context.Context, spreadsheetID, rangeA1 string, values [][]interface{}) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.updateCalls++
	m.lastUpdateRange = rangeA1
	m.lastUpdateData = values
	m.data[tabFromRange(rangeA1)] = values
	return nil
}

func (m *mockAPI) ClearTab(ctx context.Context, spreadsheetID, tabName string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.clearCalls++
	delete(m.data, tabName)
	return nil
}

func (m *mockAPI) SetBasicFilter(ctx context.Context, spreadsheetID, tabName string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.filterCalls++
	return nil
}

func (m *mockAPI) FreezeRows(ctx context.Context, spreadsheetID, tabName string, rows int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.freezeCalls++
	return nil
}

func (m *mockAPI) FormatHeaderBold(ctx context.Context, spreadsheetID, tabName string, cols int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.boldCalls++
	return nil
}
