package parse

import (
	"reflect"
	"testing"
)

// TestParseMealsKeywordOpensMeal verifies that a populated row whose first
// column names a meal period opens that meal with the row as its first food.
func TestParseMealsKeywordOpensMeal(t *testing.T) {
	g := grid(
		row("Refeição", "Alimento", "Quantidade", "Calorias"),
		row("Café da Manhã", "Ovos", "3 unidades", "210"),
	)
	meals := ParseMeals(g)
	if len(meals) != 1 {
		t.Fatalf("meals = %d, want 1", len(meals))
	}
	m := meals[0]
	if m.MealName != "Café da Manhã" {
		t.Errorf("MealName = %q, want Café da Manhã", m.MealName)
	}
	if len(m.Foods) != 1 {
		t.Fatalf("foods = %d, want 1", len(m.Foods))
	}
	f := m.Foods[0]
	if f.Name != "Ovos" || f.Quantity != "3 unidades" {
		t.Errorf("food = %+v", f)
	}
	if f.Calories == nil || *f.Calories != 210 {
		t.Errorf("calories = %v, want 210", f.Calories)
	}
	if f.Protein != "" || f.Carbs != "" || f.Fat != "" {
		t.Errorf("missing macro columns should be empty strings: %+v", f)
	}
}

// TestParseMealsRepeatedKeywordRows verifies that every keyword row starts a
// meal, so a sheet repeating the meal name per food yields one meal per row.
func TestParseMealsRepeatedKeywordRows(t *testing.T) {
	g := grid(
		row("Refeição", "Alimento", "Quantidade", "Calorias", "Proteína", "Carboidrato", "Gordura"),
		row("Café da Manhã", "Ovos Mexidos", "3 unidades", "210", "18g", "2g", "15g"),
		row("Café da Manhã", "Pão Integral", "2 fatias", "140", "6g", "24g", "2g"),
		row("Almoço", "Frango Grelhado", "150g", "165", "31g", "0g", "3.6g"),
	)
	meals := ParseMeals(g)
	if len(meals) != 3 {
		t.Fatalf("meals = %d, want 3", len(meals))
	}
	if meals[2].MealName != "Almoço" {
		t.Errorf("meals[2] = %q, want Almoço", meals[2].MealName)
	}
	f := meals[2].Foods[0]
	if f.Protein != "31g" || f.Carbs != "0g" || f.Fat != "3.6g" {
		t.Errorf("macros = %q/%q/%q", f.Protein, f.Carbs, f.Fat)
	}
}

// TestParseMealsNonKeywordContinues verifies that a populated row without a
// meal keyword joins the open meal.
func TestParseMealsNonKeywordContinues(t *testing.T) {
	g := grid(
		row("Refeição", "Alimento"),
		row("Jantar", "Salmão", "150g", "280"),
		row("Opção 2", "Batata Doce", "150g", "130"),
	)
	meals := ParseMeals(g)
	if len(meals) != 1 {
		t.Fatalf("meals = %d, want 1", len(meals))
	}
	if len(meals[0].Foods) != 2 {
		t.Errorf("foods = %d, want 2", len(meals[0].Foods))
	}
}

// TestParseMealsFirstRowWithoutKeyword verifies that the first populated row
// opens a meal even without a keyword.
func TestParseMealsFirstRowWithoutKeyword(t *testing.T) {
	g := grid(
		row("Refeição", "Alimento"),
		row("Pré-treino", "Banana", "1 unidade", "105"),
	)
	meals := ParseMeals(g)
	if len(meals) != 1 || meals[0].MealName != "Pré-treino" {
		t.Fatalf("meals = %+v", meals)
	}
}

// TestParseMealsLabelOnlyRow verifies that a label-only row closes the open
// meal and names the next one.
func TestParseMealsLabelOnlyRow(t *testing.T) {
	g := grid(
		row("Refeição", "Alimento"),
		row("Almoço", "Arroz", "150g", "170"),
		row("Pós-treino", ""),
		row("Qualquer", "Whey", "30g", "120"),
	)
	meals := ParseMeals(g)
	if len(meals) != 2 {
		t.Fatalf("meals = %d, want 2", len(meals))
	}
	if meals[1].MealName != "Pós-treino" {
		t.Errorf("meals[1] = %q, want Pós-treino", meals[1].MealName)
	}
	if meals[1].Foods[0].Name != "Whey" {
		t.Errorf("food = %q, want Whey", meals[1].Foods[0].Name)
	}
}

// TestParseMealsLabelOnlyWithoutOpenMeal verifies that a label-only row is
// ignored when no meal is open, and empty meals are never emitted.
func TestParseMealsLabelOnlyWithoutOpenMeal(t *testing.T) {
	g := grid(
		row("Refeição", "Alimento"),
		row("Observações", ""),
		row("Ceia", "Chá", "1 xícara"),
		row("Fim", ""),
	)
	meals := ParseMeals(g)
	if len(meals) != 1 {
		t.Fatalf("meals = %d, want 1", len(meals))
	}
	if meals[0].MealName != "Ceia" {
		t.Errorf("MealName = %q, want Ceia", meals[0].MealName)
	}
	if meals[0].Foods[0].Calories != nil {
		t.Errorf("calories = %v, want nil", *meals[0].Foods[0].Calories)
	}
}

// TestParseMealsNumericCalories verifies number cells, zero included.
func TestParseMealsNumericCalories(t *testing.T) {
	g := grid(
		row("Refeição", "Alimento", "Quantidade", "Calorias"),
		row("Lanche", "Água", "500ml", 0),
		row("Lanche", "Maçã", "1", 52.5),
	)
	meals := ParseMeals(g)
	if len(meals) != 2 {
		t.Fatalf("meals = %d, want 2", len(meals))
	}
	if c := meals[0].Foods[0].Calories; c == nil || *c != 0 {
		t.Errorf("calories = %v, want 0", c)
	}
	if c := meals[1].Foods[0].Calories; c == nil || *c != 52.5 {
		t.Errorf("calories = %v, want 52.5", c)
	}
}

// TestMealParserCustomKeywords verifies the keyword list is configurable.
func TestMealParserCustomKeywords(t *testing.T) {
	p := NewMealParser([]string{" Breakfast ", "LUNCH", ""})
	g := grid(
		row("Meal", "Food"),
		row("Breakfast", "Eggs"),
		row("Lunch", "Rice"),
		row("Almoço", "Beans"),
	)
	meals := p.Parse(g)
	if len(meals) != 2 {
		t.Fatalf("meals = %d, want 2", len(meals))
	}
	if len(meals[1].Foods) != 2 {
		t.Errorf("lunch foods = %d, want 2 (Almoço is not a keyword here)", len(meals[1].Foods))
	}
}

// TestParseMealsDecomposedKeyword verifies a keyword written with combining
// accents (NFD) still opens a new meal.
func TestParseMealsDecomposedKeyword(t *testing.T) {
	g := grid(
		row("Refeição", "Alimento"),
		row("Lanche", "Maçã"),
		row("Almoc\u0327o", "Arroz"),
	)
	meals := ParseMeals(g)
	if len(meals) != 2 {
		t.Fatalf("meals = %d, want 2", len(meals))
	}
	if meals[1].MealName != "Almoc\u0327o" {
		t.Errorf("meal = %q, want the raw NFD name", meals[1].MealName)
	}
}

// TestMealParserFoldsCustomKeywords verifies custom keywords match regardless
// of accents on either side.
func TestMealParserFoldsCustomKeywords(t *testing.T) {
	p := NewMealParser([]string{"Pré-treino"})
	g := grid(
		row("Refeição", "Alimento"),
		row("Pre-treino", "Banana"),
		row("Pós", "Whey"),
		row("PRÉ-TREINO 2", "Aveia"),
	)
	meals := p.Parse(g)
	if len(meals) != 2 {
		t.Fatalf("meals = %d, want 2", len(meals))
	}
	if len(meals[0].Foods) != 2 || meals[1].MealName != "PRÉ-TREINO 2" {
		t.Errorf("meals = %+v", meals)
	}
}

// TestParseMealsTotality verifies empty and header-only grids.
func TestParseMealsTotality(t *testing.T) {
	for _, g := range [][]any{nil, row("Refeição", "Alimento")} {
		meals := ParseMeals(grid(g))
		if meals == nil || len(meals) != 0 {
			t.Errorf("meals = %#v, want empty", meals)
		}
	}
	if meals := ParseMeals(nil); meals == nil || len(meals) != 0 {
		t.Errorf("nil grid: meals = %#v", meals)
	}
}

// TestParseMealsIdempotent verifies that parsing twice gives equal output.
func TestParseMealsIdempotent(t *testing.T) {
	g := grid(
		row("Refeição", "Alimento", "Quantidade", "Calorias"),
		row("Almoço", "Arroz", "150g", "170"),
		row("Jantar", "Sopa", "1 prato", "x"),
	)
	if !reflect.DeepEqual(ParseMeals(g), ParseMeals(g)) {
		t.Error("two parses of the same grid differ")
	}
}
