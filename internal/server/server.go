package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"tailscale.com/client/tailscale/apitype"

	"github.com/claude/clientportal/internal/models"
	"github.com/claude/clientportal/internal/refresh"
	"github.com/claude/clientportal/internal/render"
	"github.com/claude/clientportal/internal/storage"
)

// Store is the persistence the HTTP API reads and writes. *storage.DB
// satisfies it.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	GetClient(ctx context.Context, email string) (*models.ClientData, error)
	GetService(ctx context.Context, email, serviceID string) (*models.Service, error)
	QueryRefreshLogs(ctx context.Context, email string, limit int) ([]storage.RefreshLog, error)
	GetDataStats(ctx context.Context) (*storage.DataStats, error)
}

// Refresher owns writes to client documents: it re-fetches the grids of one
// service and stores ingested documents.
type Refresher interface {
	RefreshService(ctx context.Context, email, serviceID string) (*models.Service, refresh.Result, error)
	Ingest(ctx context.Context, c models.ClientData) error
}

// WhoIser resolves the Tailscale identity behind a remote address.
type WhoIser interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        Store
	refresher Refresher
	renderer  *render.Renderer
	log       *slog.Logger
	apiKey    string
	devLogin  string
	whois     WhoIser
	router    chi.Router
}

// New creates a new Server with all routes configured. Until SetTailscale
// is called every request is served as devLogin.
func New(db Store, refresher Refresher, renderer *render.Renderer, apiKey, devLogin string, log *slog.Logger) *Server {
	s := &Server{
		db:        db,
		refresher: refresher,
		renderer:  renderer,
		log:       log,
		apiKey:    apiKey,
		devLogin:  devLogin,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution to Tailscale WhoIs lookups.
func (s *Server) SetTailscale(whois WhoIser) {
	s.whois = whois
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Admin endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
	})
	s.router.With(APIKeyAuth(s.apiKey)).Get("/api/v1/stats", s.handleStats)

	// Client endpoints (identity from tsnet or dev login)
	s.router.Group(func(r chi.Router) {
		r.Use(s.identity)
		r.Get("/api/v1/me", s.handleMe)
		r.Get("/api/v1/client", s.handleClient)
		r.Get("/api/v1/services/{id}", s.handleService)
		r.Get("/api/v1/services/{id}/raw", s.handleServiceRaw)
		r.Post("/api/v1/services/{id}/refresh", s.handleRefreshService)
		r.Get("/api/v1/refresh-logs", s.handleRefreshLogs)
	})

	// Stateless parsing needs no identity.
	s.router.Post("/api/v1/parse/{type}", s.handleParse)
}

// MountMCP serves an MCP handler at /mcp behind the identity middleware so
// tools see the caller's login.
func (s *Server) MountMCP(h http.Handler) {
	s.router.With(s.identity).Handle("/mcp", h)
}

// SetFrontend mounts the embedded SPA filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
