package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/clientportal/internal/models"
	"github.com/claude/clientportal/internal/render"
	"github.com/claude/clientportal/internal/storage"
)

// --- Tool definitions ---

var toolListServices = mcp.NewTool("list_services",
	mcp.WithDescription("List the client's services grouped by professional. Use the serviceId values with the other tools."),
)

var toolGetService = mcp.NewTool("get_service",
	mcp.WithDescription("Render one service the way the portal shows it: workouts, meals, goals or raw tables depending on the service type."),
	mcp.WithString("service_id", mcp.Required(), mcp.Description("Service ID from list_services")),
)

var toolGetWorkoutPlan = mcp.NewTool("get_workout_plan",
	mcp.WithDescription("Get the workout days and exercises of a personal training service."),
	mcp.WithString("service_id", mcp.Description("Service ID. Defaults to the client's first personal service.")),
)

var toolGetMealPlan = mcp.NewTool("get_meal_plan",
	mcp.WithDescription("Get the meals and foods of a nutrition service."),
	mcp.WithString("service_id", mcp.Description("Service ID. Defaults to the client's first nutrition service.")),
)

var toolGetGoals = mcp.NewTool("get_goals",
	mcp.WithDescription("Get the goals of a coaching service with progress, bar value and status label."),
	mcp.WithString("service_id", mcp.Description("Service ID. Defaults to the client's first coach service.")),
)

var toolParseGrid = mcp.NewTool("parse_grid",
	mcp.WithDescription("Classify an arbitrary grid without storing it. The grid is a JSON array of rows, each row an array of strings, numbers or nulls."),
	mcp.WithString("type", mcp.Required(), mcp.Description("Classifier to apply"), mcp.Enum("personal", "nutricao", "coach", "other")),
	mcp.WithString("grid", mcp.Required(), mcp.Description("Grid as JSON, e.g. [[\"Exercício\",\"Séries\"],[\"Supino\",4]]")),
)

var toolGetRefreshLogs = mcp.NewTool("get_refresh_logs",
	mcp.WithDescription("List recent spreadsheet refresh runs for the client, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of runs. Defaults to 20.")),
)

// serviceSummary is one entry of list_services.
type serviceSummary struct {
	ServiceID    string             `json:"serviceId"`
	ServiceName  string             `json:"serviceName"`
	ServiceType  models.ServiceType `json:"serviceType"`
	Professional string             `json:"professional"`
	Sheets       int                `json:"sheets"`
	FailedSheets int                `json:"failedSheets"`
}

func summarize(c *models.ClientData) []serviceSummary {
	out := []serviceSummary{}
	for _, p := range c.Professionals {
		for _, s := range p.Services {
			sum := serviceSummary{
				ServiceID:    s.ServiceID,
				ServiceName:  s.ServiceName,
				ServiceType:  s.ServiceType,
				Professional: p.ProfessionalName,
				Sheets:       len(s.Spreadsheets),
			}
			for _, sh := range s.Spreadsheets {
				if sh.Error != "" {
					sum.FailedSheets++
				}
			}
			out = append(out, sum)
		}
	}
	return out
}

func (h *handlers) listServices(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email := ClientEmailFromContext(ctx)

	c, err := h.ds.GetClient(ctx, email)
	if err != nil {
		return h.queryError("list_services", err), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"clientName": c.ClientName,
		"services":   summarize(c),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getService(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("service_id")
	if err != nil {
		return mcp.NewToolResultError("service_id parameter is required"), nil
	}

	svc, err := h.ds.GetService(ctx, ClientEmailFromContext(ctx), id)
	if err != nil {
		return h.queryError("get_service", err), nil
	}

	result, err := mcp.NewToolResultJSON(h.renderer.Service(*svc))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, errResult := h.typedView(ctx, req, models.ServicePersonal)
	if errResult != nil {
		return errResult, nil
	}
	return viewResult(view, "workouts", view.Workouts)
}

func (h *handlers) getMealPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, errResult := h.typedView(ctx, req, models.ServiceNutrition)
	if errResult != nil {
		return errResult, nil
	}
	return viewResult(view, "meals", view.Meals)
}

func (h *handlers) getGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, errResult := h.typedView(ctx, req, models.ServiceCoach)
	if errResult != nil {
		return errResult, nil
	}
	return viewResult(view, "goals", view.Goals)
}

func (h *handlers) parseGrid(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type parameter is required"), nil
	}
	raw, err := req.RequireString("grid")
	if err != nil {
		return mcp.NewToolResultError("grid parameter is required"), nil
	}

	var g models.Grid
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return mcp.NewToolResultError("invalid grid: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(h.renderer.Grid(models.ParseServiceType(t), g))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRefreshLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	logs, err := h.ds.QueryRefreshLogs(ctx, ClientEmailFromContext(ctx), limit)
	if err != nil {
		return h.queryError("get_refresh_logs", err), nil
	}
	if logs == nil {
		logs = []storage.RefreshLog{}
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// typedView renders the requested service, or the client's first service of
// type t when no ID is given. A service of another type is rejected.
func (h *handlers) typedView(ctx context.Context, req mcp.CallToolRequest, t models.ServiceType) (render.View, *mcp.CallToolResult) {
	email := ClientEmailFromContext(ctx)
	id := req.GetString("service_id", "")

	var svc *models.Service
	if id != "" {
		s, err := h.ds.GetService(ctx, email, id)
		if err != nil {
			return render.View{}, h.queryError(string(t), err)
		}
		svc = s
	} else {
		c, err := h.ds.GetClient(ctx, email)
		if err != nil {
			return render.View{}, h.queryError(string(t), err)
		}
		svc = firstOfType(c, t)
		if svc == nil {
			return render.View{}, mcp.NewToolResultError(fmt.Sprintf("no %s service found", t))
		}
	}

	if svc.ServiceType != t {
		return render.View{}, mcp.NewToolResultError(fmt.Sprintf("service %s is a %s service, not %s", svc.ServiceID, svc.ServiceType, t))
	}
	return h.renderer.Service(*svc), nil
}

func firstOfType(c *models.ClientData, t models.ServiceType) *models.Service {
	for i := range c.Professionals {
		for j := range c.Professionals[i].Services {
			if c.Professionals[i].Services[j].ServiceType == t {
				return &c.Professionals[i].Services[j]
			}
		}
	}
	return nil
}

func viewResult[T any](v render.View, key string, items []T) (*mcp.CallToolResult, error) {
	if items == nil {
		items = []T{}
	}
	errs := v.Errors
	if errs == nil {
		errs = []render.SheetError{}
	}
	result, err := mcp.NewToolResultJSON(map[string]any{
		"serviceId":   v.ServiceID,
		"serviceName": v.ServiceName,
		key:           items,
		"errors":      errs,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) queryError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("not found")
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

