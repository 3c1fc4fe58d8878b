package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellKind tags which variant of Cell is populated.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is one spreadsheet value: text, number, or empty.
// The zero value is the empty cell.
type Cell struct {
	Kind CellKind
	Text string
	Num  float64
}

// Text returns a text cell.
func Text(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// Number returns a number cell. NaN and infinities collapse to empty.
func Number(f float64) Cell {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Cell{}
	}
	return Cell{Kind: CellNumber, Num: f}
}

// Empty returns the empty cell.
func Empty() Cell {
	return Cell{}
}

// IsEmpty reports whether the cell carries no value. Whitespace-only text is
// empty; the number 0 is not.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	case CellNumber:
		return false
	default:
		return true
	}
}

// String renders the cell as display text. Numbers use the shortest
// representation that round-trips ("4", "60.5").
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Trimmed is String with surrounding whitespace removed.
func (c Cell) Trimmed() string {
	return strings.TrimSpace(c.String())
}

// MarshalJSON writes text as a JSON string, numbers as JSON numbers and empty as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellText:
		return json.Marshal(c.Text)
	case CellNumber:
		return json.Marshal(c.Num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar. Booleans become text, matching how
// spreadsheet exports stringify them; arrays and objects are rejected.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Cell{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = Text(strconv.FormatBool(b))
	case '[', '{':
		return fmt.Errorf("cell: unsupported JSON value %s", data)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("cell: %w", err)
		}
		*c = Number(f)
	}
	return nil
}

// CellFromValue converts a loosely typed value (as produced by JSON decoding,
// the Sheets API or Firestore) into a Cell.
func CellFromValue(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return x
	case string:
		return Text(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Text(x.String())
		}
		return Number(f)
	case bool:
		return Text(strconv.FormatBool(x))
	default:
		return Text(fmt.Sprint(x))
	}
}
