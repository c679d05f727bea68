// =============================================================================
// Budget Analyzer - Filter Engine
// =============================================================================
//
// This module narrows the rows of a sheet down to what the user asked to see.
// Four kinds of filter are combined with logical AND:
//
//   1. External IDs   : restrict rows to a set of codes chosen elsewhere
//                       ("only items that use material M"). Applied first.
//   2. Global text    : case-insensitive substring match against ANY cell.
//   3. Checklist      : per column, the lower-cased cell must be one of the
//                       accepted values. An empty set accepts everything.
//   4. Column text    : per column, case-insensitive substring match against
//                       that column only. Checklist columns ignore it.
//
// The engine is synchronous and pure: the same sheet and Context always give
// the same rows, in input order. Debouncing keystrokes is the caller's job.
//
// =============================================================================

package filter

import (
	"strings"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xref"
)

// =============================================================================
// FILTER CONTEXT
// =============================================================================

// Context bundles every filter applied to one table.
type Context struct {
	// GlobalText is matched against the string form of every cell.
	// An empty string disables the global filter.
	GlobalText string

	// ColumnText maps a column index to a substring that the column must
	// contain. Empty values are ignored.
	ColumnText map[int]string

	// Checklist maps a column header to the trimmed, lower-cased values accepted for
	// that column. Every key marks the column as a checklist column, which
	// excludes it from ColumnText even when its set is empty. Columns that
	// the sheet does not have are ignored.
	Checklist map[string]xref.Set

	// ExternalIDs, when non-nil, keeps only rows whose IDColumn code is in
	// the set. A non-nil empty set keeps nothing.
	ExternalIDs xref.Set

	// IDColumn is the column compared against ExternalIDs.
	// Default: 0 (the code column).
	IDColumn int
}

// checklistColumn is a resolved checklist entry.
type checklistColumn struct {
	index    int
	accepted xref.Set
}

// Apply returns the rows of s that satisfy every filter in ctx.
//
// PARAMETERS:
//   - s: The sheet to filter. A nil sheet yields no rows.
//   - ctx: The filters to apply.
//
// RETURNS:
//   - The matching rows, in sheet order. Never nil.
func Apply(s *sheet.Sheet, ctx Context) []sheet.Row {
	if s == nil {
		return []sheet.Row{}
	}
	return ApplyRows(s.Headers, s.Rows, ctx)
}

// ApplyRows is Apply over an explicit header row and row slice.
func ApplyRows(headers []string, rows []sheet.Row, ctx Context) []sheet.Row {
	global := strings.ToLower(ctx.GlobalText)

	skipText := make(map[int]bool)
	var checklists []checklistColumn
	for name, accepted := range ctx.Checklist {
		idx := sheet.FindColumn(headers, func(h string) bool { return h == name })
		if idx == sheet.NotFound {
			continue
		}
		skipText[idx] = true
		if accepted.Len() > 0 {
			checklists = append(checklists, checklistColumn{index: idx, accepted: accepted})
		}
	}

	columnText := make(map[int]string, len(ctx.ColumnText))
	for idx, text := range ctx.ColumnText {
		if text == "" || skipText[idx] {
			continue
		}
		columnText[idx] = strings.ToLower(text)
	}

	out := make([]sheet.Row, 0, len(rows))
	for _, row := range rows {
		if ctx.ExternalIDs != nil && !ctx.ExternalIDs.Has(row.Key(ctx.IDColumn)) {
			continue
		}
		if global != "" && !matchesGlobal(row, global) {
			continue
		}
		if !matchesChecklists(row, checklists) {
			continue
		}
		if !matchesColumns(row, columnText) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// matchesGlobal reports whether any cell contains needle (already lower-cased).
func matchesGlobal(row sheet.Row, needle string) bool {
	for _, c := range row {
		if strings.Contains(strings.ToLower(c.String()), needle) {
			return true
		}
	}
	return false
}

func matchesChecklists(row sheet.Row, checklists []checklistColumn) bool {
	for _, cl := range checklists {
		if !cl.accepted.Has(checklistValue(row.At(cl.index))) {
			return false
		}
	}
	return true
}

func matchesColumns(row sheet.Row, columnText map[int]string) bool {
	for idx, needle := range columnText {
		if !strings.Contains(strings.ToLower(row.At(idx).String()), needle) {
			return false
		}
	}
	return true
}

// =============================================================================
// CHECKLIST OPTIONS
// =============================================================================

// Option is one choice offered by a checklist filter.
type Option struct {
	// Value is the trimmed, lower-cased value stored in Context.Checklist.
	Value string `json:"value"`

	// Label is the first spelling of the value found in the sheet.
	Label string `json:"label"`
}

// ChecklistOptions lists the distinct values of column, ignoring case and
// surrounding spaces, in first-seen order. Blank cells are skipped. A column the sheet does not
// have yields no options.
func ChecklistOptions(s *sheet.Sheet, column string) []Option {
	out := []Option{}
	idx := s.Column(column)
	if idx == sheet.NotFound {
		return out
	}

	seen := make(map[string]bool)
	for _, row := range s.Rows {
		cell := row.At(idx)
		norm := checklistValue(cell)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, Option{Value: norm, Label: strings.TrimSpace(cell.String())})
	}
	return out
}

// checklistValue is the form of a cell compared against checklist values:
// trimmed and lower-cased, the same as NormalizeChecklist.
func checklistValue(c sheet.Cell) string {
	return strings.ToLower(strings.TrimSpace(c.String()))
}

// NormalizeChecklist trims and lower-cases the selected values of a checklist
// filter.
func NormalizeChecklist(values []string) xref.Set {
	out := make(xref.Set, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out.Add(strings.ToLower(v))
		}
	}
	return out
}
