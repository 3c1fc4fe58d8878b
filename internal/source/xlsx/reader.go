// Package xlsx reads grids from local workbooks and CSV files.
package xlsx

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/claude/clientportal/internal/models"
)

// Sheet is one worksheet of a workbook.
type Sheet struct {
	Name string
	Grid models.Grid
}

// ReadWorkbook reads every visible worksheet of an .xlsx file in tab order.
func ReadWorkbook(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		if visible, err := f.GetSheetVisible(name); err == nil && !visible {
			continue
		}
		g, err := readSheet(f, name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, Sheet{Name: name, Grid: g})
	}
	return sheets, nil
}

// ReadSheet reads one worksheet by name. An empty name reads the first tab.
func ReadSheet(path, name string) (models.Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if name == "" {
		name = f.GetSheetName(0)
	}
	return readSheet(f, name)
}

func readSheet(f *excelize.File, name string) (models.Grid, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}
	g := make(models.Grid, 0, len(rows))
	for _, row := range rows {
		r := make(models.Row, len(row))
		for i, v := range row {
			r[i] = parseValue(v)
		}
		g = append(g, r)
	}
	return g, nil
}

// ReadCSV reads a comma separated grid. Rows may differ in length.
func ReadCSV(r io.Reader) (models.Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var g models.Grid
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		row := make(models.Row, len(rec))
		for i, v := range rec {
			row[i] = parseValue(v)
		}
		g = append(g, row)
	}
	return g, nil
}

// ReadFile reads a grid from an .xlsx or .csv file by extension. For
// workbooks, sheet selects the tab.
func ReadFile(path, sheet string) (models.Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadSheet(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// parseValue turns a cell string into a number cell when it is a plain
// decimal literal, and a text cell otherwise.
func parseValue(s string) models.Cell {
	if strings.TrimSpace(s) == "" {
		return models.Empty()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.Number(float64(i))
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return models.Number(f)
	}
	return models.Text(s)
}

// Fetcher serves sheets whose URL points at a local file. The sheet title
// names the tab to read.
type Fetcher struct {
	// Dir resolves relative paths.
	Dir string
}

// FetchGrid reads the file named by the sheet URL (a path or file:// URL).
func (f Fetcher) FetchGrid(_ context.Context, sheet models.SheetData) (models.Grid, error) {
	path := strings.TrimPrefix(sheet.SheetURL, "file://")
	if path == "" {
		return nil, fmt.Errorf("sheet %q has no file path", sheet.SheetID)
	}
	if !filepath.IsAbs(path) && f.Dir != "" {
		path = filepath.Join(f.Dir, path)
	}
	return ReadFile(path, sheet.SheetTitle)
}
