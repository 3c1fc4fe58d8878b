// Package render turns a service's grids into the view a client sees. The
// service type picks the classifier; each grid is classified on its own and
// the results are concatenated in grid order.
package render

import (
	"strconv"

	"github.com/claude/clientportal/internal/models"
	"github.com/claude/clientportal/internal/parse"
)

// View is one service ready for display.
type View struct {
	ServiceID   string             `json:"serviceId"`
	ServiceName string             `json:"serviceName"`
	ServiceType models.ServiceType `json:"serviceType"`
	Workouts    []WorkoutDay       `json:"workouts,omitempty"`
	Meals       []Meal             `json:"meals,omitempty"`
	Goals       []Goal             `json:"goals,omitempty"`
	Tables      []Table            `json:"tables,omitempty"`
	Errors      []SheetError       `json:"errors,omitempty"`
}

// WorkoutDay is a parsed day tagged with the sheet it came from.
type WorkoutDay struct {
	SheetID   string     `json:"sheetId"`
	DayName   string     `json:"dayName"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise carries a key that stays the same across refreshes as long as
// the exercise keeps its position in the sheet.
type Exercise struct {
	Key string `json:"key"`
	models.Exercise
}

// Meal is a parsed meal tagged with the sheet it came from.
type Meal struct {
	SheetID string `json:"sheetId"`
	models.Meal
}

// Goal adds presentation values to a parsed goal.
type Goal struct {
	SheetID string `json:"sheetId"`
	models.Goal
	Bar    float64 `json:"bar"`
	Status string  `json:"status"`
}

// Table is an unparsed grid shown as-is.
type Table struct {
	SheetID    string     `json:"sheetId"`
	SheetTitle string     `json:"sheetTitle"`
	Header     []string   `json:"header"`
	Rows       [][]string `json:"rows"`
}

// SheetError reports a sheet whose last fetch failed.
type SheetError struct {
	SheetID    string `json:"sheetId"`
	SheetTitle string `json:"sheetTitle"`
	Error      string `json:"error"`
}

// Renderer holds the classifier settings shared by every render call.
type Renderer struct {
	meals parse.MealParser
}

// New creates a Renderer. An empty keyword list uses the default meal names.
func New(mealKeywords []string) *Renderer {
	return &Renderer{meals: parse.NewMealParser(mealKeywords)}
}

// Service renders every sheet of s with the classifier for its type.
func (r *Renderer) Service(s models.Service) View {
	v := View{
		ServiceID:   s.ServiceID,
		ServiceName: s.ServiceName,
		ServiceType: models.ParseServiceType(string(s.ServiceType)),
	}
	for i, sheet := range s.Spreadsheets {
		if sheet.Error != "" {
			v.Errors = append(v.Errors, SheetError{
				SheetID:    sheet.SheetID,
				SheetTitle: sheet.SheetTitle,
				Error:      sheet.Error,
			})
		}
		r.addSheet(&v, i, sheet)
	}
	return v
}

// Grid renders a single grid as if it were the only sheet of a service of
// type t.
func (r *Renderer) Grid(t models.ServiceType, g models.Grid) View {
	return r.Service(models.Service{
		ServiceType:  t,
		Spreadsheets: []models.SheetData{{Data: g}},
	})
}

func (r *Renderer) addSheet(v *View, index int, sheet models.SheetData) {
	key := sheetKey(index, sheet)
	switch v.ServiceType {
	case models.ServicePersonal:
		for d, day := range parse.ParseWorkouts(sheet.Data) {
			wd := WorkoutDay{SheetID: sheet.SheetID, DayName: day.DayName}
			for e, ex := range day.Exercises {
				wd.Exercises = append(wd.Exercises, Exercise{Key: ExerciseKey(key, d, e), Exercise: ex})
			}
			v.Workouts = append(v.Workouts, wd)
		}
	case models.ServiceNutrition:
		for _, m := range r.meals.Parse(sheet.Data) {
			v.Meals = append(v.Meals, Meal{SheetID: sheet.SheetID, Meal: m})
		}
	case models.ServiceCoach:
		for _, g := range parse.ParseGoals(sheet.Data) {
			gv := Goal{SheetID: sheet.SheetID, Goal: g, Status: ProgressLabel(g.Progress)}
			if g.Progress != nil {
				gv.Bar = ClampProgress(*g.Progress)
			}
			v.Goals = append(v.Goals, gv)
		}
	default:
		if len(sheet.Data) > 0 {
			v.Tables = append(v.Tables, NewTable(sheet))
		}
	}
}

func sheetKey(index int, sheet models.SheetData) string {
	if sheet.SheetID != "" {
		return sheet.SheetID
	}
	return strconv.Itoa(index)
}

// ExerciseKey identifies an exercise by sheet, day index and exercise index.
// Completion checkboxes are keyed on it.
func ExerciseKey(sheet string, day, exercise int) string {
	return sheet + ":" + strconv.Itoa(day) + ":" + strconv.Itoa(exercise)
}
