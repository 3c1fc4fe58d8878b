// Package sheets fetches grids from the Google Sheets API.
package sheets

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/claude/clientportal/internal/models"
)

// DefaultRange is read when no range is configured.
const DefaultRange = "A1:Z1000"

// Client reads spreadsheet values with a service account.
type Client struct {
	svc        *sheets.Service
	valueRange string

	mu   sync.Mutex
	tabs map[string]map[int64]string // spreadsheet ID -> tab gid -> tab title
}

// NewClient creates a read-only client from a service account key file.
func NewClient(ctx context.Context, credentialsPath, valueRange string) (*Client, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	config, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return NewWithService(svc, valueRange), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *sheets.Service, valueRange string) *Client {
	if valueRange == "" {
		valueRange = DefaultRange
	}
	return &Client{svc: svc, valueRange: valueRange, tabs: make(map[string]map[int64]string)}
}

// FetchGrid reads the values of a sheet. Numbers come back unformatted so
// they arrive as number cells; dates keep their formatted text.
func (c *Client) FetchGrid(ctx context.Context, sheet models.SheetData) (models.Grid, error) {
	id := SpreadsheetID(sheet)
	if id == "" {
		return nil, fmt.Errorf("sheet %q has no spreadsheet id", sheet.SheetTitle)
	}

	rng := c.valueRange
	if gid, ok := TabID(sheet.SheetURL); ok {
		title, err := c.tabTitle(ctx, id, gid)
		if err != nil {
			return nil, err
		}
		rng = quoteTab(title) + "!" + rng
	}

	resp, err := c.svc.Spreadsheets.Values.Get(id, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading values of %s: %w", id, err)
	}
	return models.GridFromValues(resp.Values), nil
}

// tabTitle resolves a tab gid to its title, caching the spreadsheet's tabs.
func (c *Client) tabTitle(ctx context.Context, spreadsheetID string, gid int64) (string, error) {
	c.mu.Lock()
	tabs, ok := c.tabs[spreadsheetID]
	c.mu.Unlock()

	if !ok {
		ss, err := c.svc.Spreadsheets.Get(spreadsheetID).
			Fields("sheets.properties(sheetId,title)").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("reading tabs of %s: %w", spreadsheetID, err)
		}
		tabs = make(map[int64]string, len(ss.Sheets))
		for _, s := range ss.Sheets {
			if s.Properties != nil {
				tabs[s.Properties.SheetId] = s.Properties.Title
			}
		}
		c.mu.Lock()
		c.tabs[spreadsheetID] = tabs
		c.mu.Unlock()
	}

	title, ok := tabs[gid]
	if !ok {
		return "", fmt.Errorf("spreadsheet %s has no tab with gid %d", spreadsheetID, gid)
	}
	return title, nil
}

// SpreadsheetID extracts the document ID from a sheet URL of the form
// https://docs.google.com/spreadsheets/d/{id}/edit. Sheets without a
// usable URL fall back to their sheetId.
func SpreadsheetID(sheet models.SheetData) string {
	const marker = "/spreadsheets/d/"
	if i := strings.Index(sheet.SheetURL, marker); i >= 0 {
		rest := sheet.SheetURL[i+len(marker):]
		if j := strings.IndexAny(rest, "/?#"); j >= 0 {
			rest = rest[:j]
		}
		if rest != "" {
			return rest
		}
	}
	return sheet.SheetID
}

// TabID reads the gid of a specific tab from a sheet URL, in either the
// query string or the fragment.
func TabID(sheetURL string) (int64, bool) {
	u, err := url.Parse(sheetURL)
	if err != nil {
		return 0, false
	}
	for _, raw := range []string{u.Fragment, u.RawQuery} {
		q, err := url.ParseQuery(raw)
		if err != nil {
			continue
		}
		if v := q.Get("gid"); v != "" {
			gid, err := strconv.ParseInt(v, 10, 64)
			if err == nil {
				return gid, true
			}
		}
	}
	return 0, false
}

// quoteTab quotes a tab title for A1 notation.
func quoteTab(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
