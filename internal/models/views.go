package models

// Exercise is one row of a workout plan. Optional text fields are always
// present as "" rather than omitted.
type Exercise struct {
	Name   string `json:"name"`
	Sets   string `json:"sets"`
	Reps   string `json:"reps"`
	Rest   string `json:"rest"`
	Weight string `json:"weight"`
	Notes  string `json:"notes"`
}

// WorkoutDay is a named section of exercises. Never empty once emitted.
type WorkoutDay struct {
	DayName   string     `json:"dayName"`
	Exercises []Exercise `json:"exercises"`
}

// FoodItem is one row of a meal plan.
type FoodItem struct {
	Name     string   `json:"name"`
	Quantity string   `json:"quantity"`
	Calories *float64 `json:"calories,omitempty"`
	Protein  string   `json:"protein"`
	Carbs    string   `json:"carbs"`
	Fat      string   `json:"fat"`
}

// Meal is a named section of foods. Never empty once emitted.
type Meal struct {
	MealName string     `json:"mealName"`
	Time     string     `json:"time"`
	Foods    []FoodItem `json:"foods"`
}

// Goal is one tracked objective. Progress is a percentage and is not clamped.
type Goal struct {
	GoalName    string   `json:"goalName"`
	Description string   `json:"description"`
	Target      string   `json:"target"`
	Current     string   `json:"current"`
	Progress    *float64 `json:"progress,omitempty"`
	Deadline    string   `json:"deadline"`
}
