package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the settings required by mode are present. The test
// mode needs nothing beyond a readable sample file, so only the generic
// bounds are checked for it.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "test":
	case "get_submission_data", "expand_misinfo_network":
		errs = append(errs, c.validateReddit()...)
		errs = append(errs, c.validateSheets()...)
		if mode == "get_submission_data" && c.Collect.ReferencePath == "" {
			errs = append(errs, "collect.reference_path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Collect.SubmissionLimit < 0 {
		errs = append(errs, "collect.submission_limit must be >= 0")
	}
	if c.Expand.Users < 0 {
		errs = append(errs, "expand.users must be >= 0")
	}
	if c.Expand.TopSubreddits < 0 {
		errs = append(errs, "expand.top_subreddits must be >= 0")
	}
	switch strings.ToLower(c.Store.Driver) {
	case "", "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateReddit() []string {
	var errs []string
	if c.Reddit.ClientID == "" {
		errs = append(errs, "reddit.client_id is required")
	}
	if c.Reddit.ClientSecret == "" {
		errs = append(errs, "reddit.client_secret is required")
	}
	if c.Reddit.UserAgent == "" {
		errs = append(errs, "reddit.user_agent is required")
	}
	return errs
}

func (c *Config) validateSheets() []string {
	var errs []string
	switch c.Sheets.Backend {
	case BackendGoogle:
		if c.Sheets.SpreadsheetID == "" {
			errs = append(errs, "sheets.spreadsheet_id is required")
		}
		if c.Sheets.CredentialsFile == "" {
			errs = append(errs, "sheets.credentials_file is required")
		}
	case BackendXLSX:
		if c.Sheets.WorkbookPath == "" {
			errs = append(errs, "sheets.workbook_path is required")
		}
	default:
		errs = append(errs, "sheets.backend must be google or xlsx")
	}
	if c.Sheets.TrackingSheet == "" || c.Sheets.DataSheet == "" {
		errs = append(errs, "sheets.tracking_sheet and sheets.data_sheet are required")
	}
	return errs
}
