package mcp

import (
	"context"

	"github.com/claude/clientportal/internal/models"
	"github.com/claude/clientportal/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	GetClient(ctx context.Context, email string) (*models.ClientData, error)
	GetService(ctx context.Context, email, serviceID string) (*models.Service, error)
	QueryRefreshLogs(ctx context.Context, email string, limit int) ([]storage.RefreshLog, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
