package parse

import "github.com/claude/clientportal/internal/models"

// DefaultDayName names the day opened for exercises that appear before any
// day header, and the single day produced by the flat fallback.
const DefaultDayName = "Treino"

// Header names tried before each fixed position. Lookups are accent- and
// case-insensitive, so "séries" also matches "Series".
var (
	colExerciseSets   = column{names: []string{"séries"}, pos: 1}
	colExerciseReps   = column{names: []string{"repetições"}, pos: 2}
	colExerciseRest   = column{names: []string{"descanso"}, pos: 3}
	colExerciseWeight = column{names: []string{"peso", "carga"}, pos: 4}
	colExerciseNotes  = column{names: []string{"observações", "notas"}, pos: 5}
)

// ParseWorkouts segments a grid into days of exercises.
//
// Row 0 is the header. A row with a value in column 0 and nothing in columns
// 1 and 2 opens a new day; a row with column 0 and either column 1 or 2 is an
// exercise of the open day (a "Treino" day is opened if none is). Days that
// end up without exercises are dropped. When no day survives, every data row
// with a column 0 value is read as an exercise of one "Treino" day.
func ParseWorkouts(grid models.Grid) []models.WorkoutDay {
	days := []models.WorkoutDay{}
	if len(grid) < 2 {
		return days
	}
	header := NewHeaderIndex(grid.Header())

	var current *models.WorkoutDay
	flush := func() {
		if current != nil && len(current.Exercises) > 0 {
			days = append(days, *current)
		}
		current = nil
	}

	for _, row := range grid[1:] {
		first := row.At(0)
		if first.IsEmpty() {
			continue
		}

		if isSectionRow(row) {
			flush()
			current = &models.WorkoutDay{DayName: first.Trimmed(), Exercises: []models.Exercise{}}
			continue
		}

		if current == nil {
			current = &models.WorkoutDay{DayName: DefaultDayName, Exercises: []models.Exercise{}}
		}
		current.Exercises = append(current.Exercises, header.exercise(row))
	}
	flush()

	if len(days) > 0 {
		return days
	}
	return flatWorkout(grid, header)
}

// flatWorkout reads every data row as an exercise, ignoring section shape.
func flatWorkout(grid models.Grid, header HeaderIndex) []models.WorkoutDay {
	var exercises []models.Exercise
	for _, row := range grid[1:] {
		if row.At(0).IsEmpty() {
			continue
		}
		exercises = append(exercises, header.exercise(row))
	}
	if len(exercises) == 0 {
		return []models.WorkoutDay{}
	}
	return []models.WorkoutDay{{DayName: DefaultDayName, Exercises: exercises}}
}

// isSectionRow reports the day-header shape: a label alone in column 0.
func isSectionRow(row models.Row) bool {
	return !row.At(0).IsEmpty() && row.At(1).IsEmpty() && row.At(2).IsEmpty()
}

func (h HeaderIndex) exercise(row models.Row) models.Exercise {
	return models.Exercise{
		Name:   row.At(0).Trimmed(),
		Sets:   h.text(row, colExerciseSets),
		Reps:   h.text(row, colExerciseReps),
		Rest:   h.text(row, colExerciseRest),
		Weight: h.text(row, colExerciseWeight),
		Notes:  h.text(row, colExerciseNotes),
	}
}
