package parse

import (
	"strings"

	"github.com/claude/clientportal/internal/models"
)

// DefaultMealKeywords are lowercase substrings that mark a column 0 value as
// a meal-period name. Matching folds case and accents on both sides.
var DefaultMealKeywords = []string{
	"café", "cafe",
	"almoço", "almoco",
	"jantar",
	"lanche",
	"ceia",
	"refeição", "refeicao",
}

var defaultMealKeys = foldKeywords(DefaultMealKeywords)

// Fixed food columns. Column 0 carries the meal name.
const (
	colFoodName     = 1
	colFoodQuantity = 2
	colFoodCalories = 3
	colFoodProtein  = 4
	colFoodCarbs    = 5
	colFoodFat      = 6
)

// MealParser segments meal-plan grids. The zero value uses DefaultMealKeywords.
type MealParser struct {
	// Keywords hold folded keys as produced by FoldKey.
	Keywords []string
}

// NewMealParser returns a parser matching the given keywords. An empty list
// falls back to DefaultMealKeywords.
func NewMealParser(keywords []string) MealParser {
	return MealParser{Keywords: foldKeywords(keywords)}
}

func foldKeywords(keywords []string) []string {
	var kw []string
	for _, k := range keywords {
		if k = FoldKey(k); k != "" {
			kw = append(kw, k)
		}
	}
	return kw
}

// ParseMeals segments a grid with the default keyword set.
func ParseMeals(grid models.Grid) []models.Meal {
	return MealParser{}.Parse(grid)
}

// Parse segments a grid into meals of foods.
//
// A row with values in columns 0 and 1 is a food (columns 1..6). Before it is
// appended, a new meal named after column 0 is opened when column 0 contains
// a meal keyword or when no meal is open. A row with column 0 only, while a
// meal is open, opens a new meal with no foods yet. Meals without foods are
// dropped.
func (p MealParser) Parse(grid models.Grid) []models.Meal {
	meals := []models.Meal{}
	if len(grid) < 2 {
		return meals
	}

	var current *models.Meal
	flush := func() {
		if current != nil && len(current.Foods) > 0 {
			meals = append(meals, *current)
		}
		current = nil
	}
	open := func(name string) {
		flush()
		current = &models.Meal{MealName: name, Foods: []models.FoodItem{}}
	}

	for _, row := range grid[1:] {
		first, second := row.At(0), row.At(1)
		switch {
		case !first.IsEmpty() && !second.IsEmpty():
			name := first.Trimmed()
			if current == nil || p.isMealName(name) {
				open(name)
			}
			current.Foods = append(current.Foods, food(row))
		case !first.IsEmpty() && current != nil:
			open(first.Trimmed())
		}
	}
	flush()
	return meals
}

// isMealName reports whether s contains any keyword, ignoring case and
// accents.
func (p MealParser) isMealName(s string) bool {
	keywords := p.Keywords
	if len(keywords) == 0 {
		keywords = defaultMealKeys
	}
	key := FoldKey(s)
	for _, k := range keywords {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}

func food(row models.Row) models.FoodItem {
	return models.FoodItem{
		Name:     row.At(colFoodName).Trimmed(),
		Quantity: cellText(row.At(colFoodQuantity)),
		Calories: ParseNumber(row.At(colFoodCalories)),
		Protein:  cellText(row.At(colFoodProtein)),
		Carbs:    cellText(row.At(colFoodCarbs)),
		Fat:      cellText(row.At(colFoodFat)),
	}
}
