package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/clientportal/internal/storage"
)

func (h *handlers) clientSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	c, err := h.ds.GetClient(ctx, ClientEmailFromContext(ctx))
	if err != nil {
		return nil, err
	}

	summary := map[string]any{
		"clientEmail":       c.ClientEmail,
		"clientName":        c.ClientName,
		"totalSpreadsheets": c.TotalSpreadsheets,
		"lastUpdated":       c.LastUpdated,
		"services":          summarize(c),
	}
	return jsonContents(req.Params.URI, summary)
}

func (h *handlers) recentRefreshes(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logs, err := h.ds.QueryRefreshLogs(ctx, ClientEmailFromContext(ctx), 20)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []storage.RefreshLog{}
	}
	return jsonContents(req.Params.URI, logs)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
