package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/clientportal/internal/models"
)

// IngestResult is the server's reply to an accepted document.
type IngestResult struct {
	ClientEmail       string    `json:"clientEmail"`
	TotalSpreadsheets int       `json:"totalSpreadsheets"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// Client sends client documents to the portal server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    func(attempt int) time.Duration
}

// NewClient creates a new HTTP client for the portal server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt-1)) * time.Second
		},
	}
}

// SendClient POSTs a document to the server's ingest endpoint.
// Retries up to 3 times with exponential backoff on network errors and 5xx
// responses; other statuses fail at once.
func (c *Client) SendClient(ctx context.Context, doc models.ClientData) (*IngestResult, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/ingest/", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var res IngestResult
			if err := json.Unmarshal(body, &res); err != nil {
				return nil, fmt.Errorf("decoding ingest response: %w", err)
			}
			return &res, nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, body)
		default:
			return nil, fmt.Errorf("ingest rejected (status %d): %s", resp.StatusCode, body)
		}
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
