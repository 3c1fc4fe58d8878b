package firestore

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/claude/clientportal/internal/models"
)

// ClientFromMap converts a raw client document. Firestore cannot store
// arrays of arrays, so grid rows may arrive as maps wrapping a "values" or
// "cells" array, as a map keyed by row index, or as a JSON-encoded string.
func ClientFromMap(docID string, m map[string]any) models.ClientData {
	c := models.ClientData{
		ClientEmail: getString(m, "clientEmail"),
		ClientName:  getString(m, "clientName"),
		LastUpdated: getTime(m, "lastUpdated"),
	}
	if c.ClientEmail == "" {
		c.ClientEmail = docID
	}
	for _, p := range getMaps(m, "professionals") {
		c.Professionals = append(c.Professionals, professionalFromMap(p))
	}
	c.CountSpreadsheets()
	return c
}

func professionalFromMap(m map[string]any) models.Professional {
	p := models.Professional{
		ProfessionalID:    getString(m, "professionalId"),
		ProfessionalEmail: getString(m, "professionalEmail"),
		ProfessionalName:  getString(m, "professionalName"),
		ProfessionalPhoto: getString(m, "professionalPhoto"),
		Services:          []models.Service{},
	}
	for _, s := range getMaps(m, "services") {
		p.Services = append(p.Services, serviceFromMap(s))
	}
	return p
}

func serviceFromMap(m map[string]any) models.Service {
	s := models.Service{
		ServiceID:    getString(m, "serviceId"),
		ServiceName:  getString(m, "serviceName"),
		ServiceType:  models.ParseServiceType(getString(m, "serviceType")),
		Spreadsheets: []models.SheetData{},
	}
	for _, sh := range getMaps(m, "spreadsheets") {
		s.Spreadsheets = append(s.Spreadsheets, models.SheetData{
			SheetID:    getString(sh, "sheetId"),
			SheetURL:   getString(sh, "sheetUrl"),
			SheetTitle: getString(sh, "sheetTitle"),
			CreatedAt:  getTime(sh, "createdAt"),
			Data:       gridFromValue(sh["data"]),
		})
	}
	return s
}

// gridFromValue accepts every grid encoding a client document may use.
func gridFromValue(v any) models.Grid {
	switch x := v.(type) {
	case []any:
		g := make(models.Grid, 0, len(x))
		for _, r := range x {
			g = append(g, rowFromValue(r))
		}
		return g
	case map[string]any:
		keys := make([]int, 0, len(x))
		byIndex := make(map[int]any, len(x))
		for k, r := range x {
			i, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			keys = append(keys, i)
			byIndex[i] = r
		}
		sort.Ints(keys)
		g := make(models.Grid, 0, len(keys))
		for _, i := range keys {
			g = append(g, rowFromValue(byIndex[i]))
		}
		return g
	case string:
		var g models.Grid
		if err := json.Unmarshal([]byte(x), &g); err != nil {
			return models.Grid{}
		}
		return g
	default:
		return models.Grid{}
	}
}

func rowFromValue(v any) models.Row {
	switch x := v.(type) {
	case []any:
		row := make(models.Row, len(x))
		for i, c := range x {
			row[i] = models.CellFromValue(c)
		}
		return row
	case map[string]any:
		for _, key := range []string{"values", "cells"} {
			if inner, ok := x[key]; ok {
				return rowFromValue(inner)
			}
		}
		return models.Row{}
	default:
		return models.Row{models.CellFromValue(x)}
	}
}

// getString safely reads a string field.
func getString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getTime reads a timestamp stored natively or as RFC 3339 text.
func getTime(m map[string]any, key string) time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// getMaps reads an array of objects, skipping non-object entries.
func getMaps(m map[string]any, key string) []map[string]any {
	arr, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if mm, ok := v.(map[string]any); ok {
			out = append(out, mm)
		}
	}
	return out
}
