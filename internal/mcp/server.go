package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/clientportal/internal/render"
)

type contextKey int

const clientEmailKey contextKey = iota

// ClientEmailFromContext extracts the client email injected by the transport
// layer. Without one the dev login "local" is used.
func ClientEmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(clientEmailKey).(string); ok && email != "" {
		return email
	}
	return "local"
}

// WithClientEmail returns a context scoped to the given client.
func WithClientEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, clientEmailKey, email)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, renderer *render.Renderer, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Client Portal", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Client portal server. Read the workout plans, meal plans and goals that professionals share with a client through spreadsheets. All data is scoped to the signed-in client."),
	)

	h := &handlers{ds: ds, renderer: renderer, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListServices, Handler: h.listServices},
		server.ServerTool{Tool: toolGetService, Handler: h.getService},
		server.ServerTool{Tool: toolGetWorkoutPlan, Handler: h.getWorkoutPlan},
		server.ServerTool{Tool: toolGetMealPlan, Handler: h.getMealPlan},
		server.ServerTool{Tool: toolGetGoals, Handler: h.getGoals},
		server.ServerTool{Tool: toolParseGrid, Handler: h.parseGrid},
		server.ServerTool{Tool: toolGetRefreshLogs, Handler: h.getRefreshLogs},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resClientSummary, Handler: h.clientSummary},
		server.ServerResource{Resource: resRecentRefreshes, Handler: h.recentRefreshes},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds       DataSource
	renderer *render.Renderer
	log      *slog.Logger
}

// --- Resource definitions ---

var resClientSummary = mcp.NewResource(
	"portal://client_summary",
	"Client Summary",
	mcp.WithResourceDescription("The client's professionals and services, with sheet counts and any sheets whose last refresh failed"),
	mcp.WithMIMEType("application/json"),
)

var resRecentRefreshes = mcp.NewResource(
	"portal://recent_refreshes",
	"Recent Refreshes",
	mcp.WithResourceDescription("The last 20 spreadsheet refresh runs for the client"),
	mcp.WithMIMEType("application/json"),
)
