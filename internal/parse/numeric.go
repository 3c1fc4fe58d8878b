package parse

import (
	"math"
	"strconv"
	"strings"

	"github.com/claude/clientportal/internal/models"
)

// ParseNumber coerces a cell into a float. Number cells pass through (0
// included). Text is read up to the end of its leading decimal literal, so
// "210 kcal" gives 210 and "50%" gives 50. Only a dot is a decimal
// separator: "1,5" reads as 1. Empty or non-numeric cells give nil.
func ParseNumber(c models.Cell) *float64 {
	switch c.Kind {
	case models.CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return nil
		}
		v := c.Num
		return &v
	case models.CellText:
		lit := leadingNumber(strings.TrimSpace(c.Text))
		if lit == "" {
			return nil
		}
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	default:
		return nil
	}
}

// leadingNumber returns the longest prefix of s that is a decimal literal
// ([+-]digits[.digits][e[+-]digits]), or "" when s does not start with one.
func leadingNumber(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return s[:i]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
