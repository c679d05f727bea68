// =============================================================================
// Budget Analyzer - Import Validation
// =============================================================================
//
// This module checks a freshly read workbook before it replaces the current
// session. Only one condition blocks an import: a required sheet is missing.
// Everything else the analyzer tolerates, and this module reports it as a
// warning so the user can fix the workbook at the source:
//
//   - Duplicate codes in a catalog or the budget (last row wins on lookup).
//   - Assignment rows whose item code is not in the budget (never selected).
//   - Assignment rows whose resource code is not in its catalog (shown by
//     code instead of name).
//   - Sheets where the cost or type column cannot be found (they count as
//     zero cost / "Sin tipo").
//   - Missing optional sheets (labor), which load as empty tables.
//
// ERROR HANDLING:
//   - Issues are collected, never returned as Go errors.
//   - Each issue names the sheet, the data row (1-based, header excluded) and
//     the rule that produced it.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/config"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xref"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Severity tells whether an issue blocks the import.
type Severity string

const (
	// SeverityError blocks the import.
	SeverityError Severity = "error"

	// SeverityWarning is reported but the import proceeds.
	SeverityWarning Severity = "warning"
)

// Rule names.
const (
	RuleMissingSheet     = "missing_sheet"
	RuleMissingOptional  = "missing_optional_sheet"
	RuleEmptySheet       = "empty_sheet"
	RuleDuplicateCode    = "duplicate_code"
	RuleOrphanItem       = "orphan_item"
	RuleUnknownResource  = "unknown_resource"
	RuleMissingCostCol   = "missing_cost_column"
	RuleMissingTypeCol   = "missing_type_column"
	RuleBlankBudgetCode  = "blank_budget_code"
	RuleUnparsableNumber = "unparsable_number"
)

// Issue is a single validation finding.
type Issue struct {
	Severity Severity `json:"severity" yaml:"severity"`

	// Sheet is the worksheet the issue was found in.
	Sheet string `json:"sheet" yaml:"sheet"`

	// Row is the 1-based data row, or 0 for sheet-level issues.
	Row int `json:"row,omitempty" yaml:"row,omitempty"`

	// Rule is the check that produced the issue.
	Rule string `json:"rule" yaml:"rule"`

	// Message is a human-readable description.
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (i *Issue) Error() string {
	if i.Row > 0 {
		return fmt.Sprintf("[%s] %s, row %d: %s", strings.ToUpper(string(i.Severity)), i.Sheet, i.Row, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(i.Severity)), i.Sheet, i.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the results of validation.
type Result struct {
	// IsValid is true if there are no errors.
	IsValid bool `json:"isValid" yaml:"isValid"`

	// Issues contains all errors and warnings, in check order.
	Issues []*Issue `json:"issues" yaml:"issues"`

	ErrorCount   int `json:"errorCount" yaml:"errorCount"`
	WarningCount int `json:"warningCount" yaml:"warningCount"`

	// MissingSheets lists the required sheets the workbook lacks.
	MissingSheets []string `json:"missingSheets,omitempty" yaml:"missingSheets,omitempty"`
}

func (r *Result) add(sev Severity, sheetName string, row int, rule, format string, args ...interface{}) {
	r.Issues = append(r.Issues, &Issue{
		Severity: sev,
		Sheet:    sheetName,
		Row:      row,
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
	})
	if sev == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// Errors returns the blocking issues.
func (r *Result) Errors() []*Issue {
	var out []*Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validate checks the sheets of a workbook.
//
// PARAMETERS:
//   - sheets: The normalized sheets, keyed by worksheet name. Sheets the
//     workbook does not have are absent from the map.
//   - cfg: Supplies sheet names and column keywords.
//
// RETURNS:
//   - The validation result. Never nil.
func Validate(sheets map[string]*sheet.Sheet, cfg *config.Config) *Result {
	result := &Result{IsValid: true, Issues: make([]*Issue, 0)}
	rules := cfg.ColumnRules()

	for _, name := range cfg.RequiredSheets() {
		if _, ok := sheets[name]; !ok {
			result.MissingSheets = append(result.MissingSheets, name)
			result.add(SeverityError, name, 0, RuleMissingSheet, "required sheet %q is missing", name)
		}
	}
	for _, name := range cfg.OptionalSheets() {
		if _, ok := sheets[name]; !ok {
			result.add(SeverityWarning, name, 0, RuleMissingOptional, "optional sheet %q is missing and loads as an empty table", name)
		}
	}
	if !result.IsValid {
		return result
	}

	names := cfg.Sheets
	budgetCodes := validateBudget(result, names.Budget, sheets[names.Budget], rules)

	validateResource(result, sheets[names.MaterialsCatalog], sheets[names.MaterialsAssignment], budgetCodes, rules)
	validateResource(result, sheets[names.LaborCatalog], sheets[names.LaborAssignment], budgetCodes, rules)

	return result
}

// validateBudget checks the budget sheet and returns its item codes.
func validateBudget(result *Result, name string, budget *sheet.Sheet, rules sheet.ColumnRules) xref.Set {
	codes := xref.NewSet()
	if !budget.Loaded() {
		result.add(SeverityWarning, name, 0, RuleEmptySheet, "sheet has no header row")
		return codes
	}

	costCol := rules.Cost(budget.Headers)
	if costCol == sheet.NotFound {
		result.add(SeverityWarning, budget.Name, 0, RuleMissingCostCol,
			"no header contains any of %s; item costs count as zero", strings.Join(rules.CostKeywords, ", "))
	}
	if rules.Type(budget.Headers) == sheet.NotFound {
		result.add(SeverityWarning, budget.Name, 0, RuleMissingTypeCol,
			"no header contains any of %s; every item is reported without type", strings.Join(rules.TypeKeywords, ", "))
	}

	for i, row := range budget.Rows {
		code := row.Key(sheet.CodeColumn)
		if code == "" {
			result.add(SeverityWarning, budget.Name, i+1, RuleBlankBudgetCode, "budget row has no item code")
			continue
		}
		if codes.Has(code) {
			result.add(SeverityWarning, budget.Name, i+1, RuleDuplicateCode, "item code %q appears more than once", code)
		}
		codes.Add(code)

		if costCol != sheet.NotFound {
			checkNumber(result, budget.Name, i+1, row.At(costCol), budget.Headers[costCol])
		}
	}
	return codes
}

// validateResource checks one catalog and its assignment sheet. Either may be
// nil when the workbook lacks it.
func validateResource(result *Result, catalog, assignment *sheet.Sheet, budgetCodes xref.Set, rules sheet.ColumnRules) {
	var known xref.Set
	if catalog.Loaded() {
		known = xref.NewSet()
		for i, row := range catalog.Rows {
			code := row.Key(sheet.CodeColumn)
			if code == "" {
				continue
			}
			if known.Has(code) {
				result.add(SeverityWarning, catalog.Name, i+1, RuleDuplicateCode,
					"code %q appears more than once; the last name wins", code)
			}
			known.Add(code)
		}
	}

	if !assignment.Loaded() {
		return
	}

	costCol := rules.Cost(assignment.Headers)
	if costCol == sheet.NotFound {
		result.add(SeverityWarning, assignment.Name, 0, RuleMissingCostCol,
			"no header contains any of %s; resource costs count as zero", strings.Join(rules.CostKeywords, ", "))
	}

	for i, row := range assignment.Rows {
		resource := row.Key(sheet.ResourceColumn)
		item := row.Key(sheet.ItemColumn)

		if item != "" && !budgetCodes.Has(item) {
			result.add(SeverityWarning, assignment.Name, i+1, RuleOrphanItem,
				"item code %q is not in the budget", item)
		}
		if known != nil && resource != "" && !known.Has(resource) {
			result.add(SeverityWarning, assignment.Name, i+1, RuleUnknownResource,
				"resource code %q is not in the catalog", resource)
		}
		checkNumber(result, assignment.Name, i+1, row.At(sheet.QuantityColumn), "quantity")
		if costCol != sheet.NotFound {
			checkNumber(result, assignment.Name, i+1, row.At(costCol), assignment.Headers[costCol])
		}
	}
}

// checkNumber warns about a non-blank cell that reads as zero only because it
// could not be parsed.
func checkNumber(result *Result, sheetName string, row int, c sheet.Cell, column string) {
	if c.IsBlank() || c.Kind() == sheet.KindNumber || sheet.LooksNumeric(c) {
		return
	}
	if sheet.ParseNumber(c) != 0 {
		return
	}
	result.add(SeverityWarning, sheetName, row, RuleUnparsableNumber,
		"%s value %q is not a number and counts as zero", column, c.String())
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatIssues formats issues for display or logging.
//
// PARAMETERS:
//   - issues: The issues to format.
//
// RETURNS:
//   - A formatted string containing all issues.
func FormatIssues(issues []*Issue) string {
	if len(issues) == 0 {
		return "No validation issues."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(issues)))
	for i, issue := range issues {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, issue.Error()))
	}
	return builder.String()
}
