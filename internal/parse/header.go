// Package parse classifies spreadsheet grids into workout, meal and goal records.
// Every function here is total: malformed input degrades to empty fields or
// skipped rows, never to an error.
package parse

import (
	"strings"
	"unicode"

	"github.com/claude/clientportal/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// HeaderIndex maps folded header text to its column index.
type HeaderIndex map[string]int

// NewHeaderIndex indexes a header row. The first occurrence of a repeated
// header wins. Empty header cells are not indexed.
func NewHeaderIndex(header models.Row) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, c := range header {
		key := FoldKey(c.String())
		if key == "" {
			continue
		}
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// Lookup returns the column of the first name present in the header.
func (h HeaderIndex) Lookup(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := h[FoldKey(n)]; ok {
			return i, true
		}
	}
	return -1, false
}

// FoldKey lowercases, trims and strips combining marks, so "Repetições",
// "repeticoes" and " REPETICOES " share one key.
func FoldKey(s string) string {
	// Transformers carry state; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// column describes where a field lives: any of the header names, else a
// fixed position.
type column struct {
	names []string
	pos   int
}

// text resolves a field for one row. A named column that is blank on this
// row falls through to the next candidate, ending at the fixed position.
func (h HeaderIndex) text(row models.Row, col column) string {
	for _, n := range col.names {
		i, ok := h.Lookup(n)
		if !ok {
			continue
		}
		if c := row.At(i); !c.IsEmpty() {
			return c.Trimmed()
		}
	}
	return cellText(row.At(col.pos))
}

// cellText is the trimmed display text of a cell, "" when empty.
func cellText(c models.Cell) string {
	if c.IsEmpty() {
		return ""
	}
	return c.Trimmed()
}
