// =============================================================================
// Budget Analyzer - Workbook Import Contract
// =============================================================================
//
// A budget workbook is a fixed set of worksheets:
//
//   Presupuesto_General     budget items (required)
//   Catálogo_Materiales     material catalog (required)
//   Asignación_Materiales   material to item links (required)
//   Catálogo_ManoObra       labor catalog (optional)
//   Asignación_ManoObra     labor to item links (optional)
//   Hoja1!B1                project title (optional)
//
// Readers (xlsxparser, csvparser, the HTTP upload) produce a Raw value: the
// worksheets as plain rows. Load turns it into a Workbook or refuses it with a
// MissingSheetsError. There is no partial import: either every required sheet
// is present and a new Workbook exists, or nothing changes.
//
// =============================================================================

package workbook

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/config"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/validation"
)

// =============================================================================
// RAW WORKBOOK
// =============================================================================

// Raw is a workbook as read from its source, before normalization.
type Raw struct {
	// Source describes where the workbook came from (file path or upload
	// name). Used in logs and reports only.
	Source string

	// Sheets maps worksheet name to its rows, header row first.
	Sheets map[string][]sheet.Row

	// Order lists the worksheet names in workbook order.
	Order []string

	// Title is the project title read from the title cell, if any.
	Title string
}

// NewRaw returns an empty raw workbook.
func NewRaw(source string) *Raw {
	return &Raw{
		Source: source,
		Sheets: make(map[string][]sheet.Row),
	}
}

// Add stores the rows of a worksheet. Adding a name twice replaces the rows
// and keeps the original position.
func (r *Raw) Add(name string, rows []sheet.Row) {
	if _, ok := r.Sheets[name]; !ok {
		r.Order = append(r.Order, name)
	}
	r.Sheets[name] = rows
}

// Normalize converts every worksheet to a Sheet.
func (r *Raw) Normalize() map[string]*sheet.Sheet {
	out := make(map[string]*sheet.Sheet, len(r.Sheets))
	for name, rows := range r.Sheets {
		out[name] = sheet.FromRaw(name, rows)
	}
	return out
}

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook is a validated, normalized budget workbook. It is never modified
// after Load returns it.
type Workbook struct {
	Title  string
	Source string

	Budget              *sheet.Sheet
	MaterialsCatalog    *sheet.Sheet
	MaterialsAssignment *sheet.Sheet
	LaborCatalog        *sheet.Sheet
	LaborAssignment     *sheet.Sheet

	// Validation holds the warnings found while loading.
	Validation *validation.Result
}

// MissingSheetsError reports the required worksheets a workbook lacks.
type MissingSheetsError struct {
	Missing []string

	// Validation is the report that found the sheets missing.
	Validation *validation.Result
}

// Error implements the error interface.
func (e *MissingSheetsError) Error() string {
	return fmt.Sprintf("missing sheets: [%s]", strings.Join(e.Missing, ", "))
}

// Load validates raw and builds the Workbook.
//
// PARAMETERS:
//   - raw: The worksheets as read by a reader.
//   - cfg: Supplies sheet names, column keywords and the default title.
//
// RETURNS:
//   - The workbook. Optional sheets the workbook lacks are empty sheets.
//   - A *MissingSheetsError if any required sheet is absent.
func Load(raw *Raw, cfg *config.Config) (*Workbook, error) {
	if raw == nil {
		raw = NewRaw("")
	}
	sheets := raw.Normalize()

	result := validation.Validate(sheets, cfg)
	if !result.IsValid {
		return nil, &MissingSheetsError{Missing: result.MissingSheets, Validation: result}
	}

	pick := func(name string) *sheet.Sheet {
		if s, ok := sheets[name]; ok {
			return s
		}
		return sheet.Empty(name)
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = cfg.DefaultTitle
	}

	names := cfg.Sheets
	return &Workbook{
		Title:               title,
		Source:              raw.Source,
		Budget:              pick(names.Budget),
		MaterialsCatalog:    pick(names.MaterialsCatalog),
		MaterialsAssignment: pick(names.MaterialsAssignment),
		LaborCatalog:        pick(names.LaborCatalog),
		LaborAssignment:     pick(names.LaborAssignment),
		Validation:          result,
	}, nil
}
