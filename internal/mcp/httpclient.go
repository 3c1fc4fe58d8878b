package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/clientportal/internal/models"
	"github.com/claude/clientportal/internal/storage"
)

// HTTPClient implements DataSource by calling the portal REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The server
// resolves the caller from the connection, so email arguments are ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) GetClient(ctx context.Context, _ string) (*models.ClientData, error) {
	var cd models.ClientData
	if err := c.get(ctx, "/api/v1/client", nil, &cd); err != nil {
		return nil, err
	}
	return &cd, nil
}

func (c *HTTPClient) GetService(ctx context.Context, _ string, serviceID string) (*models.Service, error) {
	var svc models.Service
	path := "/api/v1/services/" + url.PathEscape(serviceID) + "/raw"
	if err := c.get(ctx, path, nil, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *HTTPClient) QueryRefreshLogs(ctx context.Context, _ string, limit int) ([]storage.RefreshLog, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var logs []storage.RefreshLog
	if err := c.get(ctx, "/api/v1/refresh-logs", params, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
