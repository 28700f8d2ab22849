// Package sheets is a minimal Google Sheets v4 values client authenticated
// with a service account.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2/google"

	"github.com/sells-group/misinfo-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com/v4"
	// Scope grants read and write access to spreadsheets.
	Scope = "https://www.googleapis.com/auth/spreadsheets"
)

// ErrSheetNotFound is returned when a range names a sheet that does not exist.
var ErrSheetNotFound = errors.New("sheets: sheet not found")

// Client performs Sheets API value operations.
type Client interface {
	// GetValues returns the formatted values of a range.
	GetValues(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
	// UpdateValues writes rows starting at the top-left cell of rng, parsing
	// input as if typed by a user.
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]string) error
	// ClearValues clears every value in rng.
	ClearValues(ctx context.Context, spreadsheetID, rng string) error
	// SheetTitles lists the titles of the spreadsheet's sheets.
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	// AddSheet creates an empty sheet.
	AddSheet(ctx context.Context, spreadsheetID, title string) error
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets an already-authorized http.Client. Service account
// credentials are not parsed when it is set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Sheets client from service account JSON credentials.
func NewClient(ctx context.Context, credentialsJSON []byte, opts ...Option) (Client, error) {
	c := &httpClient{baseURL: defaultBaseURL}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		jwt, err := google.JWTConfigFromJSON(credentialsJSON, Scope)
		if err != nil {
			return nil, eris.Wrap(err, "sheets: parse service account credentials")
		}
		c.http = jwt.Client(ctx)
		c.http.Timeout = 30 * time.Second
	}
	return c, nil
}

// A1 builds an A1 range for sheet starting at column A of row (1-based).
// A row of zero or less selects the whole sheet.
func A1(sheet string, row int) string {
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if row <= 0 {
		return quoted
	}
	return fmt.Sprintf("%s!A%d", quoted, row)
}

type valueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}

func (c *httpClient) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	var vr valueRange
	if err := c.do(ctx, http.MethodGet, c.valuesURL(spreadsheetID, rng, ""), nil, &vr); err != nil {
		return nil, eris.Wrapf(err, "sheets: get %s", rng)
	}

	out := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		out[i] = cells
	}
	return out, nil
}

func (c *httpClient) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]string) error {
	body := valueRange{Range: rng, MajorDimension: "ROWS", Values: make([][]any, len(values))}
	for i, row := range values {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		body.Values[i] = cells
	}

	u := c.valuesURL(spreadsheetID, rng, "") + "?valueInputOption=USER_ENTERED"
	return eris.Wrapf(c.do(ctx, http.MethodPut, u, body, nil), "sheets: update %s", rng)
}

func (c *httpClient) ClearValues(ctx context.Context, spreadsheetID, rng string) error {
	u := c.valuesURL(spreadsheetID, rng, ":clear")
	return eris.Wrapf(c.do(ctx, http.MethodPost, u, struct{}{}, nil), "sheets: clear %s", rng)
}

type spreadsheetMeta struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

func (c *httpClient) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	u := c.baseURL + "/spreadsheets/" + url.PathEscape(spreadsheetID) + "?fields=sheets.properties.title"
	var meta spreadsheetMeta
	if err := c.do(ctx, http.MethodGet, u, nil, &meta); err != nil {
		return nil, eris.Wrap(err, "sheets: get spreadsheet")
	}
	titles := make([]string, 0, len(meta.Sheets))
	for _, s := range meta.Sheets {
		titles = append(titles, s.Properties.Title)
	}
	return titles, nil
}

func (c *httpClient) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	u := c.baseURL + "/spreadsheets/" + url.PathEscape(spreadsheetID) + ":batchUpdate"
	body := map[string]any{
		"requests": []any{
			map[string]any{"addSheet": map[string]any{"properties": map[string]any{"title": title}}},
		},
	}
	return eris.Wrapf(c.do(ctx, http.MethodPost, u, body, nil), "sheets: add sheet %s", title)
}

func (c *httpClient) valuesURL(spreadsheetID, rng, suffix string) string {
	return c.baseURL + "/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(rng) + suffix
}

func (c *httpClient) do(ctx context.Context, method, u string, in, out any) error {
	var reader io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "sheets: marshal request")
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return eris.Wrap(err, "sheets: create request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return eris.Wrap(err, "sheets: send request")
		}
		return resilience.NewTransientError(eris.Wrap(err, "sheets: send request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resilience.NewTransientError(eris.Wrap(err, "sheets: read response"), 0)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusBadRequest && bytes.Contains(respBody, []byte("Unable to parse range")) {
			return eris.Wrap(ErrSheetNotFound, string(bytes.TrimSpace(respBody)))
		}
		return resilience.StatusError("sheets", resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	return eris.Wrap(json.Unmarshal(respBody, out), "sheets: unmarshal response")
}
