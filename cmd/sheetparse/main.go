// Command sheetparse classifies a local grid the way the portal would and
// prints the resulting view as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claude/clientportal/internal/models"
	"github.com/claude/clientportal/internal/render"
	"github.com/claude/clientportal/internal/source/xlsx"
)

var (
	outputPath   string
	pretty       bool
	serviceType  string
	sheetName    string
	mealKeywords []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetparse [input.xlsx|input.csv|input.json]",
		Short: "Parse a spreadsheet grid into workouts, meals or goals",
		Long: `sheetparse reads a workbook, CSV file or JSON grid and prints the view a
client would see for a service of the given type.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVarP(&serviceType, "type", "t", "other", "Service type: personal, nutricao, coach, other")
	rootCmd.Flags().StringVar(&sheetName, "sheet", "", "Workbook tab to read (default: every visible tab)")
	rootCmd.Flags().StringSliceVar(&mealKeywords, "meal-keywords", nil, "Meal keywords (default: built-in list)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	t := models.ServiceType(serviceType)
	if models.ParseServiceType(serviceType) != t {
		return fmt.Errorf("invalid type: %s (must be personal, nutricao, coach, or other)", serviceType)
	}

	sheets, err := loadSheets(inputPath, sheetName)
	if err != nil {
		return fmt.Errorf("reading input failed: %w", err)
	}

	svc := models.Service{
		ServiceID:    filepath.Base(inputPath),
		ServiceName:  strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)),
		ServiceType:  t,
		Spreadsheets: sheets,
	}
	view := render.New(mealKeywords).Service(svc)

	var jsonData []byte
	if pretty {
		jsonData, err = json.MarshalIndent(view, "", "  ")
	} else {
		jsonData, err = json.Marshal(view)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

// loadSheets reads the input as one or more sheets. JSON input is a single
// grid; workbooks yield every visible tab unless sheet names one.
func loadSheets(path, sheet string) ([]models.SheetData, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var g models.Grid
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("decoding grid: %w", err)
		}
		return []models.SheetData{{SheetID: base, SheetTitle: base, Data: g}}, nil
	case ".xlsx", ".xlsm":
		if sheet != "" {
			g, err := xlsx.ReadSheet(path, sheet)
			if err != nil {
				return nil, err
			}
			return []models.SheetData{{SheetID: sheet, SheetTitle: sheet, Data: g}}, nil
		}
		tabs, err := xlsx.ReadWorkbook(path)
		if err != nil {
			return nil, err
		}
		out := make([]models.SheetData, 0, len(tabs))
		for _, tab := range tabs {
			out = append(out, models.SheetData{SheetID: tab.Name, SheetTitle: tab.Name, Data: tab.Grid})
		}
		return out, nil
	default:
		g, err := xlsx.ReadFile(path, sheet)
		if err != nil {
			return nil, err
		}
		return []models.SheetData{{SheetID: base, SheetTitle: base, Data: g}}, nil
	}
}
