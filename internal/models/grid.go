package models

// Row is one ordered sequence of cells. Rows of a Grid may differ in length.
type Row []Cell

// Grid is an untyped table as exported from a spreadsheet. Row 0 is
// conventionally the header row.
type Grid []Row

// At returns the cell at column i, or the empty cell when the row is shorter.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// IsBlank reports whether every cell in the row is empty.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Header returns row 0, or nil for an empty grid.
func (g Grid) Header() Row {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

// GridFromValues builds a Grid from nested loosely typed values.
func GridFromValues(values [][]any) Grid {
	g := make(Grid, 0, len(values))
	for _, vals := range values {
		row := make(Row, len(vals))
		for i, v := range vals {
			row[i] = CellFromValue(v)
		}
		g = append(g, row)
	}
	return g
}

// GridFromStrings builds a Grid of text cells; "" becomes the empty cell.
func GridFromStrings(values [][]string) Grid {
	g := make(Grid, 0, len(values))
	for _, vals := range values {
		row := make(Row, len(vals))
		for i, v := range vals {
			if v != "" {
				row[i] = Text(v)
			}
		}
		g = append(g, row)
	}
	return g
}
