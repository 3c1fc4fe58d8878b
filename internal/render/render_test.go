package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/claude/clientportal/internal/models"
)

func sheet(id string, rows ...[]any) models.SheetData {
	return models.SheetData{SheetID: id, SheetTitle: "Planilha " + id, Data: models.GridFromValues(rows)}
}

// TestServicePersonalConcatenatesSheets verifies workout days from several
// sheets are concatenated in sheet order.
func TestServicePersonalConcatenatesSheets(t *testing.T) {
	svc := models.Service{
		ServiceID:   "s1",
		ServiceType: models.ServicePersonal,
		Spreadsheets: []models.SheetData{
			sheet("a", []any{"Exercício", "Séries", "Repetições"}, []any{"Treino A", "", ""}, []any{"Supino", 4, 12}),
			sheet("b", []any{"Exercício", "Séries", "Repetições"}, []any{"Treino B", "", ""}, []any{"Agachamento", 4, 10}),
		},
	}
	v := New(nil).Service(svc)
	if len(v.Workouts) != 2 {
		t.Fatalf("workouts = %d, want 2", len(v.Workouts))
	}
	if v.Workouts[0].DayName != "Treino A" || v.Workouts[1].DayName != "Treino B" {
		t.Errorf("order = %q, %q", v.Workouts[0].DayName, v.Workouts[1].DayName)
	}
	if v.Workouts[1].SheetID != "b" {
		t.Errorf("sheetId = %q, want b", v.Workouts[1].SheetID)
	}
	if got := v.Workouts[1].Exercises[0].Key; got != "b:0:0" {
		t.Errorf("key = %q, want b:0:0", got)
	}
	if len(v.Meals) != 0 || len(v.Goals) != 0 || len(v.Tables) != 0 {
		t.Error("personal service produced non-workout sections")
	}
}

// TestServiceExerciseKeysStable verifies keys are reproducible and unique
// within a view.
func TestServiceExerciseKeysStable(t *testing.T) {
	svc := models.Service{ServiceType: models.ServicePersonal, Spreadsheets: []models.SheetData{
		sheet("", []any{"x"}, []any{"Dia 1", "", ""}, []any{"A", 1, 1}, []any{"B", 1, 1}, []any{"Dia 2", "", ""}, []any{"C", 1, 1}),
	}}
	r := New(nil)
	first, second := r.Service(svc), r.Service(svc)
	seen := map[string]bool{}
	for d, day := range first.Workouts {
		for e, ex := range day.Exercises {
			if seen[ex.Key] {
				t.Errorf("duplicate key %q", ex.Key)
			}
			seen[ex.Key] = true
			if second.Workouts[d].Exercises[e].Key != ex.Key {
				t.Errorf("key changed between renders: %q", ex.Key)
			}
		}
	}
	if got := first.Workouts[1].Exercises[0].Key; got != "0:1:0" {
		t.Errorf("key = %q, want 0:1:0", got)
	}
}

// TestServiceNutrition verifies the meal classifier runs for nutricao.
func TestServiceNutrition(t *testing.T) {
	svc := models.Service{ServiceType: models.ServiceNutrition, Spreadsheets: []models.SheetData{
		sheet("m", []any{"Refeição", "Alimento", "Quantidade", "Calorias"}, []any{"Café da Manhã", "Ovos", "3 unidades", "210"}),
	}}
	v := New(nil).Service(svc)
	if len(v.Meals) != 1 || v.Meals[0].MealName != "Café da Manhã" {
		t.Fatalf("meals = %+v", v.Meals)
	}
	if c := v.Meals[0].Foods[0].Calories; c == nil || *c != 210 {
		t.Errorf("calories = %v, want 210", c)
	}
}

// TestServiceCustomMealKeywords verifies the renderer passes its keyword
// list to the meal classifier.
func TestServiceCustomMealKeywords(t *testing.T) {
	svc := models.Service{ServiceType: models.ServiceNutrition, Spreadsheets: []models.SheetData{
		sheet("m", []any{"h"}, []any{"Breakfast", "Eggs"}, []any{"Lunch", "Rice"}),
	}}
	if v := New([]string{"breakfast", "lunch"}).Service(svc); len(v.Meals) != 2 {
		t.Errorf("meals = %d, want 2", len(v.Meals))
	}
	if v := New(nil).Service(svc); len(v.Meals) != 1 {
		t.Errorf("meals with default keywords = %d, want 1", len(v.Meals))
	}
}

// TestServiceCoachProgress verifies goals carry the clamped bar and label,
// with a missing progress shown as 0.
func TestServiceCoachProgress(t *testing.T) {
	svc := models.Service{ServiceType: models.ServiceCoach, Spreadsheets: []models.SheetData{
		sheet("g", []any{"Meta", "", "", "", "Progresso"}, []any{"A", "", "", "", 130}, []any{"B", "", "", "", "-5"}, []any{"C"}),
	}}
	v := New(nil).Service(svc)
	if len(v.Goals) != 3 {
		t.Fatalf("goals = %d, want 3", len(v.Goals))
	}
	if v.Goals[0].Bar != 100 || v.Goals[0].Status != "Concluído" {
		t.Errorf("goal A = %v %q", v.Goals[0].Bar, v.Goals[0].Status)
	}
	if *v.Goals[0].Progress != 130 {
		t.Errorf("progress = %v, want unclamped 130", *v.Goals[0].Progress)
	}
	if v.Goals[1].Bar != 0 || v.Goals[1].Status != "Começar" {
		t.Errorf("goal B = %v %q", v.Goals[1].Bar, v.Goals[1].Status)
	}
	if v.Goals[2].Bar != 0 || v.Goals[2].Status != "Começar" {
		t.Errorf("goal C = %v %q, want 0 %q", v.Goals[2].Bar, v.Goals[2].Status, "Começar")
	}
	if v.Goals[2].Progress != nil {
		t.Errorf("goal C progress = %v, want nil", *v.Goals[2].Progress)
	}
}

// TestServiceOtherRawTable verifies other and unknown types bypass parsing.
func TestServiceOtherRawTable(t *testing.T) {
	for _, typ := range []models.ServiceType{models.ServiceOther, "yoga"} {
		svc := models.Service{ServiceType: typ, Spreadsheets: []models.SheetData{
			sheet("o", []any{"Dia", "Atividade", "Duração"}, []any{"Seg", "Corrida"}, []any{}, []any{"Ter", "Natação", 30, "extra"}),
			{SheetID: "empty"},
		}}
		v := New(nil).Service(svc)
		if v.ServiceType != models.ServiceOther {
			t.Errorf("%s: serviceType = %q, want other", typ, v.ServiceType)
		}
		if len(v.Tables) != 1 {
			t.Fatalf("%s: tables = %d, want 1", typ, len(v.Tables))
		}
		tb := v.Tables[0]
		if len(tb.Rows) != 2 {
			t.Fatalf("%s: rows = %d, want 2", typ, len(tb.Rows))
		}
		if got := strings.Join(tb.Rows[0], "|"); got != "Seg|Corrida|" {
			t.Errorf("%s: padded row = %q", typ, got)
		}
		if got := strings.Join(tb.Rows[1], "|"); got != "Ter|Natação|30" {
			t.Errorf("%s: cut row = %q", typ, got)
		}
	}
}

// TestServiceSheetErrors verifies failed sheets are reported while their
// last good grid still renders.
func TestServiceSheetErrors(t *testing.T) {
	bad := sheet("g", []any{"Meta"}, []any{"Correr"})
	bad.Error = "fetch failed"
	v := New(nil).Service(models.Service{ServiceType: models.ServiceCoach, Spreadsheets: []models.SheetData{bad}})
	if len(v.Errors) != 1 || v.Errors[0].Error != "fetch failed" {
		t.Errorf("errors = %+v", v.Errors)
	}
	if len(v.Goals) != 1 {
		t.Errorf("goals = %d, want 1", len(v.Goals))
	}
}

// TestViewJSON verifies embedded records flatten into their wrappers.
func TestViewJSON(t *testing.T) {
	v := New(nil).Grid(models.ServicePersonal, models.GridFromValues([][]any{{"h"}, {"Supino", 4, 12}}))
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"dayName":"Treino"`, `"key":"0:0:0"`, `"name":"Supino"`, `"sets":"4"`, `"notes":""`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON missing %s: %s", want, data)
		}
	}
}

// TestNewTableNamesBlankHeaders verifies blank header cells get a
// positional "Coluna N" name, including columns only data rows reach.
func TestNewTableNamesBlankHeaders(t *testing.T) {
	tb := NewTable(sheet("o", []any{"Dia", "", "  ", "Obs"}, []any{"Seg", "Corrida", 5, "leve"}))
	want := "Dia|Coluna 2|Coluna 3|Obs"
	if got := strings.Join(tb.Header, "|"); got != want {
		t.Errorf("header = %q, want %q", got, want)
	}

	tb = NewTable(sheet("w", []any{}, []any{"Seg", "Corrida"}))
	if got := strings.Join(tb.Header, "|"); got != "Coluna 1|Coluna 2" {
		t.Errorf("empty header = %q, want %q", got, "Coluna 1|Coluna 2")
	}
}
