package render

import (
	"fmt"
	"strconv"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/aggregate"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/filter"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/validation"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/workbook"
)

// =============================================================================
// TABLE VIEWS
// =============================================================================

// View prints one page of a table.
func (p *Printer) View(v filter.View) error {
	if p.format != FormatTable {
		return p.encode(v)
	}

	name := v.Name
	if v.Title != "" {
		name = fmt.Sprintf("%s: %s", v.Name, v.Title)
	}
	p.title(name)

	if len(v.Rows) == 0 {
		p.faint("  no rows")
	} else {
		tbl := p.newTable()
		tbl.AddRow(headerRow(v.Headers...)...)
		for _, row := range v.Rows {
			cells := make([]interface{}, len(v.Headers))
			for i, h := range v.Headers {
				cells[i] = DisplayCell(h, row.At(i))
			}
			tbl.AddRow(cells...)
		}
		p.table(tbl)
	}

	p.faint("page %d of %d, %d row(s) matched", v.Page, v.PageCount, v.Total)
	return nil
}

// Options prints the choices of a checklist column.
func (p *Printer) Options(column string, opts []filter.Option) error {
	if p.format != FormatTable {
		return p.encode(map[string]interface{}{"column": column, "options": opts})
	}

	p.title(column)
	tbl := p.newTable()
	tbl.AddRow(headerRow("VALUE", "LABEL")...)
	for _, o := range opts {
		tbl.AddRow(o.Value, o.Label)
	}
	p.table(tbl)
	return nil
}

// =============================================================================
// SUMMARY
// =============================================================================

// summaryDoc is the encoded form of a summary.
type summaryDoc struct {
	Title   string             `json:"title" yaml:"title"`
	Summary *aggregate.Summary `json:"summary" yaml:"summary"`
}

// Summary prints the aggregates of a selection under the project title.
func (p *Printer) Summary(title string, sum *aggregate.Summary) error {
	if p.format != FormatTable {
		return p.encode(summaryDoc{Title: title, Summary: sum})
	}

	p.title(title)
	tbl := p.newTable()
	tbl.AddRow("Total cost:", FormatAmount(sum.TotalCost))
	tbl.AddRow("Budget items:", sum.ItemCount)
	tbl.AddRow("Materials cost:", FormatAmount(sum.MaterialsCost))
	tbl.AddRow("Labor cost:", FormatAmount(sum.LaborCost))
	tbl.RightAlign(1)
	p.table(tbl)
	fmt.Fprintln(p.out)

	p.title("Cost by type")
	tbl = p.newTable()
	tbl.AddRow(headerRow("TYPE", "COST", "ITEMS", "SHARE", "AVERAGE")...)
	for _, c := range sum.ByCategory {
		tbl.AddRow(c.Name, FormatAmount(c.TotalCost), c.ItemCount, FormatPercent(c.PercentOfTotal), FormatAmount(c.AverageCost))
	}
	tbl.RightAlign(1)
	tbl.RightAlign(3)
	tbl.RightAlign(4)
	p.table(tbl)
	fmt.Fprintln(p.out)

	p.resources("Materials", sum.TopMaterials, len(sum.Materials))
	fmt.Fprintln(p.out)
	p.resources("Labor", sum.TopLabor, len(sum.Labor))
	return nil
}

func (p *Printer) resources(heading string, rows []aggregate.ResourceTotal, total int) {
	if len(rows) < total {
		heading = fmt.Sprintf("%s (top %d of %d)", heading, len(rows), total)
	}
	p.title(heading)
	if len(rows) == 0 {
		p.faint("  none")
		return
	}

	tbl := p.newTable()
	tbl.AddRow(headerRow("CODE", "NAME", "QUANTITY", "UNIT", "COST", "ITEMS")...)
	for _, r := range rows {
		tbl.AddRow(r.Code, r.Name, FormatAmount(r.TotalQuantity), r.Unit, FormatAmount(r.TotalCost), r.ItemCount)
	}
	tbl.RightAlign(2)
	tbl.RightAlign(4)
	p.table(tbl)
}

// =============================================================================
// IMPORT AND VALIDATION
// =============================================================================

// importDoc is the encoded form of an import result.
type importDoc struct {
	Source     string               `json:"source" yaml:"source"`
	Title      string               `json:"title,omitempty" yaml:"title,omitempty"`
	Stats      workbook.ImportStats `json:"stats" yaml:"stats"`
	Validation *validation.Result   `json:"validation" yaml:"validation"`
}

// Import prints the statistics and issues of an import.
func (p *Printer) Import(res *workbook.Result) error {
	doc := importDoc{Source: res.Source, Stats: res.Stats, Validation: res.Validation}
	if res.Session != nil {
		doc.Title = res.Session.Workbook.Title
	}
	if p.format != FormatTable {
		return p.encode(doc)
	}

	p.title("Import: " + res.Source)
	tbl := p.newTable()
	if doc.Title != "" {
		tbl.AddRow("Project:", doc.Title)
	}
	tbl.AddRow("Budget items:", res.Stats.BudgetItems)
	tbl.AddRow("Materials:", res.Stats.Materials)
	tbl.AddRow("Material assignments:", res.Stats.MaterialAssignments)
	tbl.AddRow("Labor types:", res.Stats.LaborTypes)
	tbl.AddRow("Labor assignments:", res.Stats.LaborAssignments)
	tbl.AddRow("Time elapsed:", res.Stats.ProcessingTime.String())
	p.table(tbl)
	fmt.Fprintln(p.out)

	if res.Validation != nil {
		return p.Validation(res.Validation)
	}
	return nil
}

// Validation prints a validation report.
func (p *Printer) Validation(res *validation.Result) error {
	if p.format != FormatTable {
		return p.encode(res)
	}

	p.title("Validation")
	if len(res.Issues) == 0 {
		p.faint("  no issues")
		return nil
	}

	tbl := p.newTable()
	tbl.AddRow(headerRow("SEVERITY", "SHEET", "ROW", "RULE", "MESSAGE")...)
	for _, issue := range res.Issues {
		sev := warnColor.Sprint(issue.Severity)
		if issue.Severity == validation.SeverityError {
			sev = errorColor.Sprint(issue.Severity)
		}
		row := ""
		if issue.Row > 0 {
			row = strconv.Itoa(issue.Row)
		}
		tbl.AddRow(sev, issue.Sheet, row, issue.Rule, issue.Message)
	}
	p.table(tbl)
	p.faint("%d error(s), %d warning(s)", res.ErrorCount, res.WarningCount)
	return nil
}
