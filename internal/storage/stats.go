package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored client documents.
type DataStats struct {
	TotalClients      int64      `json:"total_clients"`
	TotalSpreadsheets int64      `json:"total_spreadsheets"`
	LastUpdated       *time.Time `json:"last_updated"`
	RefreshRuns       int64      `json:"refresh_runs_24h"`
	FailedSheets      int64      `json:"failed_sheets_24h"`
}

// GetDataStats returns portal-wide statistics.
func (db *DB) GetDataStats(ctx context.Context) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_spreadsheets), 0), MAX(last_updated)
		 FROM client_documents`,
	).Scan(&stats.TotalClients, &stats.TotalSpreadsheets, &stats.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("counting clients: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT run_id), COALESCE(SUM(sheets_failed), 0)
		 FROM refresh_logs
		 WHERE created_at > NOW() - INTERVAL '24 hours'`,
	).Scan(&stats.RefreshRuns, &stats.FailedSheets)
	if err != nil {
		return nil, fmt.Errorf("counting refresh runs: %w", err)
	}
	return stats, nil
}
