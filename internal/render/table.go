package render

import (
	"strconv"

	"github.com/claude/clientportal/internal/models"
)

// NewTable lays out a raw grid with its first row as the header. Data rows
// are cut or padded to the header width; blank rows are dropped. A sheet
// with an empty header row uses the widest data row instead. Blank header
// cells are named "Coluna N".
func NewTable(sheet models.SheetData) Table {
	t := Table{SheetID: sheet.SheetID, SheetTitle: sheet.SheetTitle, Header: []string{}, Rows: [][]string{}}
	if len(sheet.Data) == 0 {
		return t
	}

	width := len(sheet.Data[0])
	if width == 0 {
		for _, row := range sheet.Data[1:] {
			width = max(width, len(row))
		}
	}
	t.Header = rowText(sheet.Data[0], width)
	for i, h := range t.Header {
		if h == "" {
			t.Header[i] = "Coluna " + strconv.Itoa(i+1)
		}
	}
	for _, row := range sheet.Data[1:] {
		if row.IsBlank() {
			continue
		}
		t.Rows = append(t.Rows, rowText(row, width))
	}
	return t
}

func rowText(row models.Row, width int) []string {
	out := make([]string, width)
	for i := range out {
		out[i] = row.At(i).Trimmed()
	}
	return out
}
