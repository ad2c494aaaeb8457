package smartspread

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Spread is a handle on a remote spreadsheet, addressed by an opaque
// identifier that may be either a spreadsheet ID or a display name.
// Resolution and the tab-name list are cached after the first remote call;
// Refresh discards both caches.
type Spread struct {
	identifier string
	userEmail  string
	api        API

	resolved *SpreadsheetInfo
	tabNames []string
}

type spreadOptions struct {
	credentialsFile string
	credentialsJSON []byte
	userEmail       string
	api             API
}

// Option configures a Spread at construction time.
type Option func(*spreadOptions)

// WithCredentialsFile authenticates with a service-account key file.
func WithCredentialsFile(path string) Option {
	return func(o *spreadOptions) { o.credentialsFile = path }
}

// WithCredentialsJSON authenticates with an in-memory service-account JSON
// payload. Takes precedence over WithCredentialsFile when both are given.
func WithCredentialsJSON(data []byte) Option {
	return func(o *spreadOptions) { o.credentialsJSON = data }
}

// WithUserEmail sets the email granted write access when the spreadsheet is
// created.
func WithUserEmail(email string) Option {
	return func(o *spreadOptions) { o.userEmail = email }
}

// WithAPI substitutes the remote service boundary. Intended for tests.
func WithAPI(api API) Option {
	return func(o *spreadOptions) { o.api = api }
}

// New creates a spreadsheet handle. Exactly one credential source is
// required: a key file path or a JSON payload (unless WithAPI supplies the
// boundary directly). The remote spreadsheet is not contacted until the
// first operation that needs it.
func New(ctx context.Context, identifier string, opts ...Option) (*Spread, error) {
	var options spreadOptions
	for _, opt := range opts {
		opt(&options)
	}

	api := options.api
	if api == nil {
		var err error
		switch {
		case options.credentialsJSON != nil:
			api, err = NewClientFromJSON(ctx, options.credentialsJSON)
		case options.credentialsFile != "":
			api, err = NewClientFromFile(ctx, options.credentialsFile)
		default:
			return nil, fmt.Errorf("either a credentials file or service account JSON is required: %w", ErrInvalidArgument)
		}
		if err != nil {
			return nil, err
		}
	}

	return &Spread{
		identifier: identifier,
		userEmail:  options.userEmail,
		api:        api,
	}, nil
}

// Identifier returns the identifier the handle was constructed with.
func (s *Spread) Identifier() string {
	return s.identifier
}

// Resolve looks the spreadsheet up, trying the identifier as an ID first
// and as a display name second. The result is cached until Refresh.
func (s *Spread) Resolve(ctx context.Context) (*SpreadsheetInfo, error) {
	if s.resolved != nil {
		return s.resolved, nil
	}

	info, err := s.api.GetSpreadsheet(ctx, s.identifier)
	if err == nil {
		log.Debug().
			Str("spreadsheet_id", info.ID).
			Str("title", info.Title).
			Msg("Spreadsheet opened by ID")
		s.resolved = info
		return info, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	info, err = s.api.FindSpreadsheetByName(ctx, s.identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("spreadsheet %q not found by ID or name: %w", s.identifier, ErrNotFound)
		}
		return nil, err
	}

	log.Debug().
		Str("spreadsheet_id", info.ID).
		Str("title", info.Title).
		Msg("Spreadsheet opened by name")
	s.resolved = info
	return info, nil
}

// Create creates a new spreadsheet titled with the handle's identifier and
// caches it as the resolved spreadsheet. With sharePublicly set, anyone gets
// write access; the configured user email, if any, also gets write access.
// Creation is not idempotent - repeated calls create duplicate spreadsheets,
// so callers should check existence first.
func (s *Spread) Create(ctx context.Context, sharePublicly bool) (*SpreadsheetInfo, error) {
	info, err := s.api.CreateSpreadsheet(ctx, s.identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet %q: %w", s.identifier, err)
	}
	s.resolved = info
	s.tabNames = nil

	if sharePublicly {
		if err := s.api.ShareSpreadsheet(ctx, info.ID, "", "writer"); err != nil {
			return nil, fmt.Errorf("failed to share spreadsheet publicly: %w", err)
		}
		log.Info().
			Str("spreadsheet_id", info.ID).
			Msg("Spreadsheet shared publicly with write access")
	}

	if s.userEmail != "" {
		if err := s.api.ShareSpreadsheet(ctx, info.ID, s.userEmail, "writer"); err != nil {
			return nil, fmt.Errorf("failed to grant access to %q: %w", s.userEmail, err)
		}
		log.Info().
			Str("spreadsheet_id", info.ID).
			Str("email", s.userEmail).
			Msg("Access granted")
	}

	return info, nil
}

// GrantAccess shares the resolved spreadsheet at the given role. An empty
// email shares with anyone; an empty role defaults to owner.
func (s *Spread) GrantAccess(ctx context.Context, email, role string) error {
	if role == "" {
		role = "owner"
	}

	info, err := s.Resolve(ctx)
	if err != nil {
		return err
	}

	if err := s.api.ShareSpreadsheet(ctx, info.ID, email, role); err != nil {
		return fmt.Errorf("failed to grant access to spreadsheet: %w", err)
	}

	log.Info().
		Str("spreadsheet_id", info.ID).
		Str("email", email).
		Str("role", role).
		Msg("Access granted")

	return nil
}

// URL returns the resolved spreadsheet's URL.
func (s *Spread) URL(ctx context.Context) (string, error) {
	info, err := s.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// TabNames returns the ordered list of tab titles. Cached until Refresh or
// until a Tab accessor creates a new tab. Callers get their own copy, so
// mutating the result cannot corrupt the cache.
func (s *Spread) TabNames(ctx context.Context) ([]string, error) {
	if s.tabNames == nil {
		info, err := s.Resolve(ctx)
		if err != nil {
			return nil, err
		}

		names, err := s.api.ListTabs(ctx, info.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tab names: %w", err)
		}
		s.tabNames = names
	}
	return append([]string(nil), s.tabNames...), nil
}

// TabExists checks remotely whether a tab with the given name exists.
func (s *Spread) TabExists(ctx context.Context, tabName string) (bool, error) {
	if tabName == "" {
		return false, fmt.Errorf("tab name cannot be empty: %w", ErrInvalidArgument)
	}

	info, err := s.Resolve(ctx)
	if err != nil {
		return false, err
	}

	exists, err := s.api.TabExists(ctx, info.ID, tabName)
	if err != nil {
		return false, fmt.Errorf("failed to check if tab %q exists: %w", tabName, err)
	}
	return exists, nil
}

// Tab returns an accessor for the named tab, creating the tab remotely if
// absent and eagerly reading its current content.
func (s *Spread) Tab(ctx context.Context, tabName string, format DataFormat, keepNumberFormatting bool) (*Tab, error) {
	return newTab(ctx, s, tabName, format, keepNumberFormatting)
}

// Refresh discards the cached spreadsheet resolution and tab-name list so
// the next access re-fetches remote state.
func (s *Spread) Refresh() {
	s.resolved = nil
	s.tabNames = nil
}

// invalidateTabNames drops the cached tab list after a tab is created.
func (s *Spread) invalidateTabNames() {
	s.tabNames = nil
}
