package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/claude/clientportal/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewWithService(svc, "")
}

// TestSpreadsheetID verifies the document ID is taken from the URL with
// sheetId as the fallback.
func TestSpreadsheetID(t *testing.T) {
	cases := []struct {
		sheet models.SheetData
		want  string
	}{
		{models.SheetData{SheetURL: "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0", SheetID: "x"}, "abc123"},
		{models.SheetData{SheetURL: "https://docs.google.com/spreadsheets/d/abc123", SheetID: "x"}, "abc123"},
		{models.SheetData{SheetURL: "https://docs.google.com/spreadsheets/...", SheetID: "x"}, "x"},
		{models.SheetData{SheetID: "plain"}, "plain"},
		{models.SheetData{}, ""},
	}
	for _, tc := range cases {
		if got := SpreadsheetID(tc.sheet); got != tc.want {
			t.Errorf("SpreadsheetID(%q, %q) = %q, want %q", tc.sheet.SheetURL, tc.sheet.SheetID, got, tc.want)
		}
	}
}

// TestTabID verifies gid parsing from fragment and query.
func TestTabID(t *testing.T) {
	if gid, ok := TabID("https://docs.google.com/spreadsheets/d/a/edit#gid=42"); !ok || gid != 42 {
		t.Errorf("fragment gid = %d, %v", gid, ok)
	}
	if gid, ok := TabID("https://docs.google.com/spreadsheets/d/a/edit?gid=7"); !ok || gid != 7 {
		t.Errorf("query gid = %d, %v", gid, ok)
	}
	if _, ok := TabID("https://docs.google.com/spreadsheets/d/a/edit"); ok {
		t.Error("gid found in URL without one")
	}
}

// TestFetchGrid verifies values are requested unformatted and decoded into
// typed cells.
func TestFetchGrid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/spreadsheets/abc/values/") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("valueRenderOption"); got != "UNFORMATTED_VALUE" {
			t.Errorf("valueRenderOption = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"range":"A1:Z1000","values":[["Exercício","Séries"],["Supino",4]]}`))
	})

	g, err := c.FetchGrid(context.Background(), models.SheetData{SheetURL: "https://docs.google.com/spreadsheets/d/abc/edit"})
	if err != nil {
		t.Fatalf("FetchGrid: %v", err)
	}
	if len(g) != 2 {
		t.Fatalf("rows = %d, want 2", len(g))
	}
	if g[1][1].Kind != models.CellNumber || g[1][1].Num != 4 {
		t.Errorf("cell = %+v, want number 4", g[1][1])
	}
}

// TestFetchGridTab verifies a gid in the URL selects the tab by title and
// the tab list is fetched once.
func TestFetchGridTab(t *testing.T) {
	var metaCalls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/values/") {
			if !strings.Contains(r.URL.Path, "Treino A") {
				t.Errorf("range path = %s, want tab title", r.URL.Path)
			}
			w.Write([]byte(`{"values":[["h"]]}`))
			return
		}
		metaCalls.Add(1)
		w.Write([]byte(`{"sheets":[{"properties":{"sheetId":0,"title":"Resumo"}},{"properties":{"sheetId":99,"title":"Treino A"}}]}`))
	})

	sheet := models.SheetData{SheetURL: "https://docs.google.com/spreadsheets/d/abc/edit#gid=99"}
	for range 2 {
		if _, err := c.FetchGrid(context.Background(), sheet); err != nil {
			t.Fatalf("FetchGrid: %v", err)
		}
	}
	if n := metaCalls.Load(); n != 1 {
		t.Errorf("tab lookups = %d, want 1", n)
	}
}

// TestFetchGridErrors verifies API failures and missing IDs are reported.
func TestFetchGridErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})
	if _, err := c.FetchGrid(context.Background(), models.SheetData{SheetID: "abc"}); err == nil {
		t.Error("expected error for 403")
	}
	if _, err := c.FetchGrid(context.Background(), models.SheetData{}); err == nil {
		t.Error("expected error for missing spreadsheet id")
	}
}
