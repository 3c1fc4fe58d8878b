package parse

import "github.com/claude/clientportal/internal/models"

// ParseGoals maps each data row with a column 0 value to one goal, in order.
// Columns: name, description, target, current, progress (numeric), deadline.
func ParseGoals(grid models.Grid) []models.Goal {
	goals := []models.Goal{}
	if len(grid) < 2 {
		return goals
	}
	for _, row := range grid[1:] {
		if row.At(0).IsEmpty() {
			continue
		}
		goals = append(goals, models.Goal{
			GoalName:    row.At(0).Trimmed(),
			Description: cellText(row.At(1)),
			Target:      cellText(row.At(2)),
			Current:     cellText(row.At(3)),
			Progress:    ParseNumber(row.At(4)),
			Deadline:    cellText(row.At(5)),
		})
	}
	return goals
}
