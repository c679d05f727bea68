package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/csvparser"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/selection"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/workbook"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xlsxparser"
	"github.com/ginjaninja78/presupuesto-analyzer/pkg/utils"
)

// =============================================================================
// WORKBOOK LOADING
// =============================================================================

// readWorkbook reads an .xlsx file, or a directory of CSV files.
func readWorkbook(path string) (*workbook.Raw, error) {
	if utils.IsDir(path) {
		logger.Debug("Reading %s as a CSV directory", path)
		return csvparser.ReadDir(path, csvparser.OptionsFromConfig(cfg))
	}
	logger.Debug("Reading %s as an xlsx workbook", path)
	return xlsxparser.ReadWorkbook(path, xlsxparser.Options{
		TitleSheet: cfg.Sheets.Title,
		TitleCell:  cfg.Sheets.TitleCell,
	})
}

// importWorkbook reads and imports the workbook at path.
//
// RETURNS:
//   - The import result. On a failed import it still carries the validation
//     report, unless the file could not be read at all.
//   - An error if the file cannot be read or required sheets are missing.
func importWorkbook(path string) (*workbook.Result, error) {
	raw, err := readWorkbook(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return workbook.NewImporter(cfg, logger).Import(raw)
}

// =============================================================================
// SELECTION FLAGS
// =============================================================================

// selectionFlags are the flags that narrow a command to part of the budget.
type selectionFlags struct {
	material string
	labor    string
	focus    string
	search   string
	items    []string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.material, "material", "", "Only items that use this material code")
	cmd.Flags().StringVar(&f.labor, "labor", "", "Only items that use this labor code")
	cmd.Flags().StringVar(&f.focus, "focus", "", "Budget item to drill into (materials-for-item, labor-for-item)")
	cmd.Flags().StringVar(&f.search, "search", "", "Free-text search of the budget table")
	cmd.Flags().StringSliceVar(&f.items, "items", nil, "Only these budget item codes (overrides --material and --labor)")
}

// state builds the selection the flags describe.
func (f *selectionFlags) state() selection.State {
	st := selection.New()
	if f.material != "" {
		st = st.ToggleMaterial(f.material)
	}
	if f.labor != "" {
		st = st.ToggleLabor(f.labor)
	}
	if f.focus != "" {
		st = st.FocusItem(f.focus)
	}
	if len(f.items) > 0 {
		st = st.SelectItems(f.items...)
	}
	if f.search != "" {
		st = st.SetGlobalText(f.search)
	}
	return st
}

// describe returns a one-line description of the active flags for logs.
func (f *selectionFlags) describe() string {
	var parts []string
	if len(f.items) > 0 {
		parts = append(parts, "items="+strings.Join(f.items, ","))
	}
	if f.material != "" {
		parts = append(parts, "material="+f.material)
	}
	if f.labor != "" {
		parts = append(parts, "labor="+f.labor)
	}
	if f.focus != "" {
		parts = append(parts, "focus="+f.focus)
	}
	if f.search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.search))
	}
	if len(parts) == 0 {
		return "all items"
	}
	return strings.Join(parts, " ")
}
