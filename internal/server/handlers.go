package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/claude/clientportal/internal/models"
	"github.com/claude/clientportal/internal/refresh"
	"github.com/claude/clientportal/internal/render"
	"github.com/claude/clientportal/internal/storage"
)

// maxGridBytes bounds posted grids and ingested documents.
const maxGridBytes = 16 << 20

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleClient(w http.ResponseWriter, r *http.Request) {
	login := userInfoFromContext(r).Login
	c, err := s.db.GetClient(r.Context(), login)
	if err != nil {
		s.writeStoreError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.lookupService(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.renderer.Service(*svc))
}

func (s *Server) handleServiceRaw(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.lookupService(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// refreshResponse is a refreshed service rendered, plus the run summary.
type refreshResponse struct {
	render.View
	Refresh refresh.Result `json:"refresh"`
}

func (s *Server) handleRefreshService(w http.ResponseWriter, r *http.Request) {
	login := userInfoFromContext(r).Login
	id := chi.URLParam(r, "id")

	svc, res, err := s.refresher.RefreshService(r.Context(), login, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("refresh error", "client", login, "service", id, "error", err)
		}
		s.writeStoreError(w, err, "service not found")
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{View: s.renderer.Service(*svc), Refresh: res})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	t := models.ParseServiceType(chi.URLParam(r, "type"))

	var g models.Grid
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGridBytes)).Decode(&g); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid grid: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.renderer.Grid(t, g))
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var c models.ClientData
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGridBytes)).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if c.ClientEmail == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "clientEmail is required"})
		return
	}

	c.CountSpreadsheets()
	if c.LastUpdated.IsZero() {
		c.LastUpdated = time.Now().UTC()
	}
	if err := s.refresher.Ingest(r.Context(), c); err != nil {
		s.log.Error("ingest error", "client", c.ClientEmail, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("client ingested", "client", c.ClientEmail, "spreadsheets", c.TotalSpreadsheets)
	writeJSON(w, http.StatusOK, map[string]any{
		"clientEmail":       c.ClientEmail,
		"totalSpreadsheets": c.TotalSpreadsheets,
		"lastUpdated":       c.LastUpdated,
	})
}

func (s *Server) handleRefreshLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryRefreshLogs(r.Context(), userInfoFromContext(r).Login, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []storage.RefreshLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// lookupService loads the caller's service named in the URL, writing the
// error response itself when it cannot.
func (s *Server) lookupService(w http.ResponseWriter, r *http.Request) (*models.Service, bool) {
	login := userInfoFromContext(r).Login
	svc, err := s.db.GetService(r.Context(), login, chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err, "service not found")
		return nil, false
	}
	return svc, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
