// Package gsheet implements the question repository on the Google
// Sheets values API. This is the store the authoring workflow writes to
// and the quiz reads from: row 1 is the header, data rows hold
// statement, options a-d and the correct letter in columns A-F.
package gsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Repository reads and appends rows of one spreadsheet tab.
type Repository struct {
	spreadsheetID string
	sheetName     string
	token         string

	baseURL string
	client  *http.Client
}

// Option customises the repository; used mainly by tests.
type Option func(*Repository)

func WithBaseURL(url string) Option {
	return func(r *Repository) { r.baseURL = url }
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *Repository) { r.client = c }
}

func New(spreadsheetID, sheetName, token string, opts ...Option) *Repository {
	r := &Repository{
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		token:         token,
		baseURL:       defaultBaseURL,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type valueRange struct {
	Values [][]string `json:"values"`
}

// ReadAllRows fetches the whole tab and returns the data rows, header
// excluded.
func (r *Repository) ReadAllRows(ctx context.Context) ([][]string, error) {
	url := fmt.Sprintf("%s/spreadsheets/%s/values/%s", r.baseURL, r.spreadsheetID, r.sheetName)

	var vr valueRange
	if err := r.do(ctx, http.MethodGet, url, nil, &vr); err != nil {
		return nil, fmt.Errorf("read sheet values: %w", err)
	}

	if len(vr.Values) <= 1 {
		return nil, nil
	}
	return vr.Values[1:], nil
}

// AppendRows writes the rows into the contiguous A:F range starting at
// the given 1-based row number, in a single update call.
func (r *Repository) AppendRows(ctx context.Context, rows [][]string, startRow int) error {
	if len(rows) == 0 {
		return nil
	}

	rangeName := fmt.Sprintf("%s!A%d:F%d", r.sheetName, startRow, startRow+len(rows)-1)
	url := fmt.Sprintf("%s/spreadsheets/%s/values/%s?valueInputOption=RAW",
		r.baseURL, r.spreadsheetID, rangeName)

	body, err := json.Marshal(valueRange{Values: rows})
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	if err := r.do(ctx, http.MethodPut, url, body, nil); err != nil {
		return fmt.Errorf("update range %s: %w", rangeName, err)
	}
	return nil
}

func (r *Repository) do(ctx context.Context, method, url string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sheets api returned %s: %s", resp.Status, payload)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
