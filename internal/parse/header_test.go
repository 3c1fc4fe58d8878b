package parse

import (
	"testing"

	"github.com/claude/clientportal/internal/models"
)

// TestFoldKey verifies case, accent and whitespace folding.
func TestFoldKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Repetições", "repeticoes"},
		{"  SÉRIES ", "series"},
		{"Observações", "observacoes"},
		{"Exercício", "exercicio"},
		{"peso", "peso"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := FoldKey(tc.in); got != tc.want {
			t.Errorf("FoldKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestHeaderIndexLookup verifies lookups try names in order and match
// regardless of accents.
func TestHeaderIndexLookup(t *testing.T) {
	h := NewHeaderIndex(models.Row{
		models.Text("Exercício"), models.Text("Series"), models.Empty(), models.Text("Carga"), models.Text("series"),
	})
	if i, ok := h.Lookup("séries"); !ok || i != 1 {
		t.Errorf("Lookup(séries) = %d, %v; want 1, true (first occurrence)", i, ok)
	}
	if i, ok := h.Lookup("peso", "carga"); !ok || i != 3 {
		t.Errorf("Lookup(peso, carga) = %d, %v; want 3, true", i, ok)
	}
	if _, ok := h.Lookup("descanso"); ok {
		t.Error("Lookup(descanso) found a column that does not exist")
	}
}

// TestHeaderIndexEmpty verifies an empty header yields no matches.
func TestHeaderIndexEmpty(t *testing.T) {
	h := NewHeaderIndex(nil)
	if _, ok := h.Lookup("séries"); ok {
		t.Error("empty header matched")
	}
}

// TestHeaderIndexNumericHeader verifies numeric header cells are indexed by
// their display text.
func TestHeaderIndexNumericHeader(t *testing.T) {
	h := NewHeaderIndex(models.Row{models.Number(2024)})
	if i, ok := h.Lookup("2024"); !ok || i != 0 {
		t.Errorf("Lookup(2024) = %d, %v", i, ok)
	}
}
