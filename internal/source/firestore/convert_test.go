package firestore

import (
	"testing"
	"time"

	"github.com/claude/clientportal/internal/models"
)

func sampleDoc() map[string]any {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return map[string]any{
		"clientEmail": "cliente@exemplo.com",
		"clientName":  "Ana",
		"lastUpdated": "2024-03-02T10:00:00Z",
		"professionals": []any{
			map[string]any{
				"professionalId":   "p1",
				"professionalName": "João Silva",
				"services": []any{
					map[string]any{
						"serviceId":   "s1",
						"serviceName": "Treino",
						"serviceType": "personal",
						"spreadsheets": []any{
							map[string]any{
								"sheetId":   "a",
								"createdAt": created,
								"data": []any{
									map[string]any{"values": []any{"Exercício", "Séries"}},
									map[string]any{"cells": []any{"Supino", int64(4)}},
								},
							},
							map[string]any{
								"sheetId": "b",
								"data":    map[string]any{"1": []any{"Agachamento", 3.0}, "0": []any{"Exercício"}, "x": []any{"skip"}},
							},
							map[string]any{
								"sheetId": "c",
								"data":    `[["Meta"],["Correr",null]]`,
							},
						},
					},
					map[string]any{"serviceId": "s2", "serviceType": "pilates"},
					"not a map",
				},
			},
		},
	}
}

// TestClientFromMap verifies field mapping and every row encoding.
func TestClientFromMap(t *testing.T) {
	c := ClientFromMap("doc-1", sampleDoc())
	if c.ClientEmail != "cliente@exemplo.com" || c.ClientName != "Ana" {
		t.Errorf("client = %q %q", c.ClientEmail, c.ClientName)
	}
	if c.LastUpdated.IsZero() {
		t.Error("lastUpdated not parsed from RFC 3339 text")
	}
	if c.TotalSpreadsheets != 3 {
		t.Errorf("TotalSpreadsheets = %d, want 3", c.TotalSpreadsheets)
	}

	services := c.Professionals[0].Services
	if len(services) != 2 {
		t.Fatalf("services = %d, want 2 (non-map entries skipped)", len(services))
	}
	if services[1].ServiceType != models.ServiceOther {
		t.Errorf("unknown type = %q, want other", services[1].ServiceType)
	}

	sheets := services[0].Spreadsheets
	a := sheets[0].Data
	if len(a) != 2 || a[1][1].Kind != models.CellNumber || a[1][1].Num != 4 {
		t.Errorf("values/cells rows = %+v", a)
	}
	if sheets[0].CreatedAt.IsZero() {
		t.Error("createdAt not read from native timestamp")
	}
	if sheets[0].RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", sheets[0].RowCount)
	}

	b := sheets[1].Data
	if len(b) != 2 || b[0][0].Text != "Exercício" || b[1][0].Text != "Agachamento" {
		t.Errorf("indexed rows = %+v", b)
	}

	cg := sheets[2].Data
	if len(cg) != 2 || !cg[1][1].IsEmpty() {
		t.Errorf("json rows = %+v", cg)
	}
}

// TestClientFromMapDefaults verifies the doc ID stands in for a missing
// email and missing arrays yield empty values.
func TestClientFromMapDefaults(t *testing.T) {
	c := ClientFromMap("ana@exemplo.com", map[string]any{})
	if c.ClientEmail != "ana@exemplo.com" {
		t.Errorf("email = %q", c.ClientEmail)
	}
	if len(c.Professionals) != 0 || c.TotalSpreadsheets != 0 {
		t.Errorf("client = %+v", c)
	}
}

// TestGridFromValueMalformed verifies bad encodings give an empty grid.
func TestGridFromValueMalformed(t *testing.T) {
	for _, v := range []any{nil, 12, `not json`, true} {
		if g := gridFromValue(v); g == nil || len(g) != 0 {
			t.Errorf("gridFromValue(%v) = %#v, want empty", v, g)
		}
	}
}
