// =============================================================================
// Budget Analyzer - Tabular Sheet Model
// =============================================================================
//
// This module normalizes a raw worksheet (a two-dimensional grid of cells
// whose first row holds the headers) into a Sheet with separate Headers and
// Rows. It also resolves the columns that matter to the analyzer (cost, type)
// from header text rather than fixed positions, because budget workbooks add
// and reorder informational columns freely.
//
// FIXED POSITIONS:
//   Only the identifying columns have fixed positions:
//   - Budget and catalog sheets: code in column A, name/description in B.
//   - Assignment sheets: resource code in A, item code in B, quantity in D,
//     unit in E.
//
// MISSING SHEETS:
//   A sheet that is absent from the workbook is represented by an empty Sheet
//   (no headers, no rows). Callers test Loaded() instead of checking for nil.
//
// =============================================================================

package sheet

import (
	"strings"
)

// NotFound is returned by column resolvers when no header matches.
const NotFound = -1

// Fixed column positions shared by every workbook.
const (
	// CodeColumn holds the entity code in budget and catalog sheets.
	CodeColumn = 0

	// NameColumn holds the entity name or description.
	NameColumn = 1

	// ResourceColumn holds the material/labor code in assignment sheets.
	ResourceColumn = 0

	// ItemColumn holds the budget item code in assignment sheets.
	ItemColumn = 1

	// QuantityColumn holds the quantity in assignment sheets.
	QuantityColumn = 3

	// UnitColumn holds the unit of measure in assignment sheets.
	UnitColumn = 4
)

// =============================================================================
// SHEET STRUCTURE
// =============================================================================

// Sheet is a normalized worksheet.
type Sheet struct {
	// Name is the worksheet name in the source workbook.
	Name string `json:"name"`

	// Headers is the first row of the worksheet, as text.
	Headers []string `json:"headers"`

	// Rows contains every non-blank row after the header row.
	Rows []Row `json:"rows"`
}

// Empty returns a sheet with no headers and no rows.
func Empty(name string) *Sheet {
	return &Sheet{
		Name:    name,
		Headers: []string{},
		Rows:    []Row{},
	}
}

// FromRaw builds a Sheet from raw worksheet rows.
//
// PARAMETERS:
//   - name: The worksheet name.
//   - raw: All worksheet rows, header row first. A nil or empty slice yields
//     an empty sheet.
//
// RETURNS:
//   - The normalized sheet. Fully blank data rows are skipped.
func FromRaw(name string, raw []Row) *Sheet {
	s := Empty(name)
	if len(raw) == 0 {
		return s
	}

	headers := make([]string, len(raw[0]))
	for i, c := range raw[0] {
		headers[i] = c.String()
	}
	s.Headers = headers

	for _, row := range raw[1:] {
		if isRowBlank(row) {
			continue
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// Loaded reports whether the sheet has a header row.
func (s *Sheet) Loaded() bool {
	return s != nil && len(s.Headers) > 0
}

// Len returns the number of data rows.
func (s *Sheet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Column returns the index of the header that equals name exactly, or
// NotFound.
func (s *Sheet) Column(name string) int {
	if s == nil {
		return NotFound
	}
	return FindColumn(s.Headers, func(h string) bool { return h == name })
}

// isRowBlank checks if a row contains only blank cells.
func isRowBlank(row Row) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// =============================================================================
// COLUMN RESOLUTION
// =============================================================================

// FindColumn returns the index of the first header satisfying match, or
// NotFound.
func FindColumn(headers []string, match func(header string) bool) int {
	for i, h := range headers {
		if match(h) {
			return i
		}
	}
	return NotFound
}

// HeaderContainsAny returns a predicate matching headers that contain any of
// the keywords, ignoring case.
func HeaderContainsAny(keywords ...string) func(string) bool {
	upper := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			upper = append(upper, strings.ToUpper(k))
		}
	}
	return func(header string) bool {
		h := strings.ToUpper(header)
		for _, k := range upper {
			if strings.Contains(h, k) {
				return true
			}
		}
		return false
	}
}

// ColumnRules holds the header keywords used to locate heuristic columns.
//
// CUSTOMIZATION: Workbooks written in another convention can override the
// keywords through the "columns" section of the configuration file.
type ColumnRules struct {
	// CostKeywords locate the cost column. The first header containing any
	// keyword wins.
	CostKeywords []string

	// TypeKeywords locate the type/category column of the budget sheet.
	TypeKeywords []string
}

// DefaultColumnRules returns the keywords used by the standard workbook.
func DefaultColumnRules() ColumnRules {
	return ColumnRules{
		CostKeywords: []string{"COSTO", "PRECIO", "TOTAL", "IMPORTE"},
		TypeKeywords: []string{"TIPO"},
	}
}

// Cost returns the cost column of headers, or NotFound.
func (r ColumnRules) Cost(headers []string) int {
	return FindColumn(headers, HeaderContainsAny(r.CostKeywords...))
}

// Type returns the type/category column of headers, or NotFound.
func (r ColumnRules) Type(headers []string) int {
	return FindColumn(headers, HeaderContainsAny(r.TypeKeywords...))
}
