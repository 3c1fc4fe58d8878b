package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/claude/clientportal/internal/models"
)

// ClientSummary is a client row without its document.
type ClientSummary struct {
	ClientEmail       string    `json:"clientEmail"`
	ClientName        string    `json:"clientName"`
	TotalSpreadsheets int       `json:"totalSpreadsheets"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// UpsertClient stores a full client document, replacing any previous one.
func (db *DB) UpsertClient(ctx context.Context, c models.ClientData) error {
	c.CountSpreadsheets()
	if c.LastUpdated.IsZero() {
		c.LastUpdated = time.Now().UTC()
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding client %s: %w", c.ClientEmail, err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO client_documents (client_email, client_name, total_spreadsheets, document, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_email) DO UPDATE
			SET client_name = EXCLUDED.client_name,
				total_spreadsheets = EXCLUDED.total_spreadsheets,
				document = EXCLUDED.document,
				last_updated = EXCLUDED.last_updated
	`, c.ClientEmail, c.ClientName, c.TotalSpreadsheets, doc, c.LastUpdated)
	if err != nil {
		return fmt.Errorf("upserting client %s: %w", c.ClientEmail, err)
	}
	return nil
}

// GetClient returns the document for a client email, or ErrNotFound.
func (db *DB) GetClient(ctx context.Context, email string) (*models.ClientData, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT document FROM client_documents WHERE client_email = $1`, email,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying client %s: %w", email, err)
	}

	var c models.ClientData
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("decoding client %s: %w", email, err)
	}
	return &c, nil
}

// GetService returns one service of a client, or ErrNotFound.
func (db *DB) GetService(ctx context.Context, email, serviceID string) (*models.Service, error) {
	c, err := db.GetClient(ctx, email)
	if err != nil {
		return nil, err
	}
	_, s := c.FindService(serviceID)
	if s == nil {
		return nil, ErrNotFound
	}
	return s, nil
}

// UpdateService replaces one service inside a client's document. The row is
// locked for the read-modify-write so concurrent refreshes do not clobber
// each other.
func (db *DB) UpdateService(ctx context.Context, email string, svc models.Service) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var doc []byte
	err = tx.QueryRow(ctx,
		`SELECT document FROM client_documents WHERE client_email = $1 FOR UPDATE`, email,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("locking client %s: %w", email, err)
	}

	var c models.ClientData
	if err := json.Unmarshal(doc, &c); err != nil {
		return fmt.Errorf("decoding client %s: %w", email, err)
	}
	if !c.ReplaceService(svc) {
		return ErrNotFound
	}
	c.LastUpdated = time.Now().UTC()

	doc, err = json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding client %s: %w", email, err)
	}
	_, err = tx.Exec(ctx, `
		UPDATE client_documents
		SET document = $2, total_spreadsheets = $3, last_updated = $4
		WHERE client_email = $1
	`, email, doc, c.TotalSpreadsheets, c.LastUpdated)
	if err != nil {
		return fmt.Errorf("updating client %s: %w", email, err)
	}
	return tx.Commit(ctx)
}

// ListClients returns every stored client without documents, by email.
func (db *DB) ListClients(ctx context.Context) ([]ClientSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT client_email, client_name, total_spreadsheets, last_updated
		 FROM client_documents
		 ORDER BY client_email`)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	var result []ClientSummary
	for rows.Next() {
		var s ClientSummary
		if err := rows.Scan(&s.ClientEmail, &s.ClientName, &s.TotalSpreadsheets, &s.LastUpdated); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
