package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RefreshLog records the outcome of one refresh of a client or service.
type RefreshLog struct {
	ID           int64            `json:"id"`
	RunID        string           `json:"run_id"`
	ClientEmail  string           `json:"client_email"`
	CreatedAt    time.Time        `json:"created_at"`
	Trigger      string           `json:"trigger"`
	ServiceID    *string          `json:"service_id"`
	Status       string           `json:"status"`
	SheetsTotal  int              `json:"sheets_total"`
	SheetsFailed int              `json:"sheets_failed"`
	DurationMs   *int             `json:"duration_ms"`
	ErrorMessage *string          `json:"error_message"`
	Metadata     *json.RawMessage `json:"metadata"`
}

// InsertRefreshLog creates a new refresh log entry and returns its ID.
func (db *DB) InsertRefreshLog(ctx context.Context, log RefreshLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO refresh_logs (run_id, client_email, trigger, service_id, status,
		 sheets_total, sheets_failed, duration_ms, error_message, metadata)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING id`,
		log.RunID, log.ClientEmail, log.Trigger, log.ServiceID, log.Status,
		log.SheetsTotal, log.SheetsFailed, log.DurationMs, log.ErrorMessage, log.Metadata,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting refresh log: %w", err)
	}
	return id, nil
}

// UpdateRefreshLog updates an existing entry (typically from "running" to
// "success", "partial" or "error").
func (db *DB) UpdateRefreshLog(ctx context.Context, id int64, log RefreshLog) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE refresh_logs SET
		 status = $2, sheets_total = $3, sheets_failed = $4,
		 duration_ms = $5, error_message = $6, metadata = $7
		 WHERE id = $1`,
		id, log.Status, log.SheetsTotal, log.SheetsFailed,
		log.DurationMs, log.ErrorMessage, log.Metadata,
	)
	if err != nil {
		return fmt.Errorf("updating refresh log %d: %w", id, err)
	}
	return nil
}

// QueryRefreshLogs returns the most recent refresh logs for a client.
func (db *DB) QueryRefreshLogs(ctx context.Context, email string, limit int) ([]RefreshLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, run_id, client_email, created_at, trigger, service_id, status,
		 sheets_total, sheets_failed, duration_ms, error_message, metadata
		 FROM refresh_logs
		 WHERE client_email = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		email, limit)
	if err != nil {
		return nil, fmt.Errorf("querying refresh logs: %w", err)
	}
	defer rows.Close()

	var result []RefreshLog
	for rows.Next() {
		var l RefreshLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.ClientEmail, &l.CreatedAt, &l.Trigger, &l.ServiceID,
			&l.Status, &l.SheetsTotal, &l.SheetsFailed, &l.DurationMs, &l.ErrorMessage, &l.Metadata); err != nil {
			return nil, fmt.Errorf("scanning refresh log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
