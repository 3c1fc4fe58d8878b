// Package refresh re-fetches the grids behind client documents. A refresh
// replaces every grid of a service; a sheet that fails keeps its last good
// grid and records the failure in its error field.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/clientportal/internal/models"
	"github.com/claude/clientportal/internal/source"
	"github.com/claude/clientportal/internal/storage"
)

// Triggers recorded in refresh logs.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// Store is the persistence the refresher needs.
type Store interface {
	GetClient(ctx context.Context, email string) (*models.ClientData, error)
	UpsertClient(ctx context.Context, c models.ClientData) error
	UpdateService(ctx context.Context, email string, svc models.Service) error
	ListClients(ctx context.Context) ([]storage.ClientSummary, error)
	InsertRefreshLog(ctx context.Context, log storage.RefreshLog) (int64, error)
	UpdateRefreshLog(ctx context.Context, id int64, log storage.RefreshLog) error
}

// Result summarizes one refresh run.
type Result struct {
	RunID        string `json:"runId"`
	SheetsTotal  int    `json:"sheetsTotal"`
	SheetsFailed int    `json:"sheetsFailed"`
}

// Service refreshes client documents.
type Service struct {
	store     Store
	fetcher   source.GridFetcher
	directory source.Directory
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*clientLock
}

// clientLock is held by every writer of one client document. refs counts
// holders and waiters so the entry can be dropped once idle.
type clientLock struct {
	sync.Mutex
	refs int
}

// New creates a refresh service. directory may be nil, in which case the
// stored document is the only source of sheet references.
func New(store Store, fetcher source.GridFetcher, directory source.Directory, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		fetcher:   fetcher,
		directory: directory,
		logger:    logger,
		now:       time.Now,
		locks:     make(map[string]*clientLock),
	}
}

// lock serializes writes to the same client document.
func (s *Service) lock(email string) func() {
	s.mu.Lock()
	l, ok := s.locks[email]
	if !ok {
		l = &clientLock{}
		s.locks[email] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, email)
		}
		s.mu.Unlock()
	}
}

// Ingest stores a client document pushed by an uploader. It waits for any
// refresh of the same client so the refresh cannot overwrite it.
func (s *Service) Ingest(ctx context.Context, c models.ClientData) error {
	defer s.lock(c.ClientEmail)()

	if err := s.store.UpsertClient(ctx, c); err != nil {
		return fmt.Errorf("storing client %s: %w", c.ClientEmail, err)
	}
	return nil
}

// RefreshService re-fetches every grid of one service and stores the result.
func (s *Service) RefreshService(ctx context.Context, email, serviceID string) (*models.Service, Result, error) {
	defer s.lock(email)()

	res := Result{RunID: uuid.NewString()}
	c, err := s.store.GetClient(ctx, email)
	if err != nil {
		return nil, res, err
	}
	_, svc := c.FindService(serviceID)
	if svc == nil {
		return nil, res, storage.ErrNotFound
	}

	start := s.now()
	logID := s.startLog(ctx, res.RunID, email, TriggerManual, &serviceID)

	updated := s.fetchService(ctx, *svc, &res)
	err = s.store.UpdateService(ctx, email, updated)
	s.finishLog(ctx, logID, res, start, err)
	if err != nil {
		return nil, res, fmt.Errorf("storing service %s: %w", serviceID, err)
	}

	s.logger.Info("service refreshed",
		"client", email, "service", serviceID, "run", res.RunID,
		"sheets", res.SheetsTotal, "failed", res.SheetsFailed)
	return &updated, res, nil
}

// RefreshClient re-fetches every grid of a client. When a directory is
// configured its document replaces the stored one first, so services added
// by a professional appear on the next refresh.
func (s *Service) RefreshClient(ctx context.Context, email, trigger string) (Result, error) {
	defer s.lock(email)()

	res := Result{RunID: uuid.NewString()}
	c, err := s.loadClient(ctx, email)
	if err != nil {
		return res, err
	}

	start := s.now()
	logID := s.startLog(ctx, res.RunID, email, trigger, nil)

	for i := range c.Professionals {
		for j := range c.Professionals[i].Services {
			c.Professionals[i].Services[j] = s.fetchService(ctx, c.Professionals[i].Services[j], &res)
		}
	}
	c.LastUpdated = s.now().UTC()

	err = s.store.UpsertClient(ctx, *c)
	s.finishLog(ctx, logID, res, start, err)
	if err != nil {
		return res, fmt.Errorf("storing client %s: %w", email, err)
	}
	return res, nil
}

// RefreshAll refreshes every known client in turn. A failing client is
// logged and skipped.
func (s *Service) RefreshAll(ctx context.Context) error {
	emails, err := s.clientEmails(ctx)
	if err != nil {
		return err
	}

	var failed int
	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := s.RefreshClient(ctx, email, TriggerScheduled)
		if err != nil {
			failed++
			s.logger.Error("scheduled refresh failed", "client", email, "error", err)
			continue
		}
		s.logger.Info("client refreshed", "client", email, "run", res.RunID,
			"sheets", res.SheetsTotal, "failed", res.SheetsFailed)
	}
	s.logger.Info("scheduled refresh complete", "clients", len(emails), "failed", failed)
	return nil
}

// loadClient prefers the directory document and falls back to the stored
// copy when the directory does not know the client.
func (s *Service) loadClient(ctx context.Context, email string) (*models.ClientData, error) {
	if s.directory == nil {
		return s.store.GetClient(ctx, email)
	}

	fresh, err := s.directory.Client(ctx, email)
	if err != nil {
		s.logger.Warn("directory lookup failed, using stored document", "client", email, "error", err)
		return s.store.GetClient(ctx, email)
	}

	// Keep last good grids so a failed fetch below still has data to show.
	if stored, err := s.store.GetClient(ctx, email); err == nil {
		carryGrids(fresh, stored)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	return fresh, nil
}

// clientEmails lists clients from the directory when configured, plus any
// stored clients it does not know.
func (s *Service) clientEmails(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var emails []string

	if s.directory != nil {
		clients, err := s.directory.Clients(ctx)
		if err != nil {
			s.logger.Warn("listing directory clients failed", "error", err)
		}
		for _, c := range clients {
			if c.ClientEmail != "" && !seen[c.ClientEmail] {
				seen[c.ClientEmail] = true
				emails = append(emails, c.ClientEmail)
			}
		}
	}

	stored, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	for _, c := range stored {
		if !seen[c.ClientEmail] {
			seen[c.ClientEmail] = true
			emails = append(emails, c.ClientEmail)
		}
	}
	return emails, nil
}

// fetchService fetches each sheet of svc. Successful fetches replace the
// grid and clear the error; failures keep the previous grid. Static sheets
// are left untouched and not counted.
func (s *Service) fetchService(ctx context.Context, svc models.Service, res *Result) models.Service {
	sheets := make([]models.SheetData, len(svc.Spreadsheets))
	for i, sheet := range svc.Spreadsheets {
		g, err := s.fetcher.FetchGrid(ctx, sheet)
		if errors.Is(err, source.ErrStatic) {
			sheets[i] = sheet
			continue
		}
		res.SheetsTotal++
		if err != nil {
			res.SheetsFailed++
			sheet.Error = err.Error()
			s.logger.Warn("sheet fetch failed",
				"service", svc.ServiceID, "sheet", sheet.SheetID, "error", err)
		} else {
			sheet.Data = g
			sheet.Error = ""
		}
		sheet.RowCount = len(sheet.Data)
		sheets[i] = sheet
	}
	svc.Spreadsheets = sheets
	return svc
}

// carryGrids copies stored grids into a fresh directory document for sheets
// that match by service and sheet ID.
func carryGrids(fresh, stored *models.ClientData) {
	for i := range fresh.Professionals {
		for j := range fresh.Professionals[i].Services {
			svc := &fresh.Professionals[i].Services[j]
			_, old := stored.FindService(svc.ServiceID)
			if old == nil {
				continue
			}
			prev := make(map[string]models.Grid, len(old.Spreadsheets))
			for _, sh := range old.Spreadsheets {
				prev[sh.SheetID] = sh.Data
			}
			for k := range svc.Spreadsheets {
				sh := &svc.Spreadsheets[k]
				if len(sh.Data) == 0 {
					sh.Data = prev[sh.SheetID]
				}
			}
		}
	}
}

func (s *Service) startLog(ctx context.Context, runID, email, trigger string, serviceID *string) int64 {
	id, err := s.store.InsertRefreshLog(ctx, storage.RefreshLog{
		RunID:       runID,
		ClientEmail: email,
		Trigger:     trigger,
		ServiceID:   serviceID,
		Status:      "running",
	})
	if err != nil {
		s.logger.Error("failed to create refresh log", "error", err)
		return 0
	}
	return id
}

func (s *Service) finishLog(ctx context.Context, id int64, res Result, start time.Time, err error) {
	if id == 0 {
		return
	}
	durationMs := int(s.now().Sub(start).Milliseconds())
	log := storage.RefreshLog{
		Status:       "success",
		SheetsTotal:  res.SheetsTotal,
		SheetsFailed: res.SheetsFailed,
		DurationMs:   &durationMs,
	}
	switch {
	case err != nil:
		log.Status = "error"
		msg := err.Error()
		log.ErrorMessage = &msg
	case res.SheetsFailed > 0:
		log.Status = "partial"
	}
	if meta, mErr := json.Marshal(map[string]string{"run_id": res.RunID}); mErr == nil {
		raw := json.RawMessage(meta)
		log.Metadata = &raw
	}
	if uErr := s.store.UpdateRefreshLog(ctx, id, log); uErr != nil {
		s.logger.Error("failed to update refresh log", "error", uErr)
	}
}
