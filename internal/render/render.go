// =============================================================================
// Budget Analyzer - Output Rendering
// =============================================================================
//
// This module prints table views, summaries, import statistics and
// validation reports in one of three formats:
//
//   table  aligned, colored terminal tables (the default)
//   json   indented JSON, the same shapes the HTTP API returns
//   yaml   YAML, convenient for diffing reports
//
// NUMBER DISPLAY:
//   In table format, numbers in amount columns (headers such as "Costo",
//   "Cantidad" or "Precio Unitario") are shown with thousands separators and
//   at most three decimals: 1234567.8912 prints as 1,234,567.891. Codes and
//   other columns print as stored.
//
// CUSTOMIZATION:
//   - Add header keywords to amountKeywords to format more columns.
//   - Change MaxColWidth to fit narrower terminals.
//
// =============================================================================

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
)

// Format selects how a Printer writes its output.
type Format string

// Supported formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat reads a format name. An empty name is FormatTable.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Printer writes analyzer output to a writer.
type Printer struct {
	out    io.Writer
	format Format

	// MaxColWidth wraps table cells wider than this many characters.
	// Default: 40
	MaxColWidth uint
}

// New creates a Printer. Use color.Output as out to get colors on Windows
// terminals.
func New(out io.Writer, format Format) *Printer {
	if format == "" {
		format = FormatTable
	}
	return &Printer{out: out, format: format, MaxColWidth: 40}
}

// Format returns the output format.
func (p *Printer) Format() Format {
	return p.format
}

// encode writes v as JSON or YAML.
func (p *Printer) encode(v interface{}) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q cannot encode values", p.format)
	}
}

// =============================================================================
// TABLE HELPERS
// =============================================================================

var (
	titleColor = color.New(color.Bold, color.Underline)
	headColor  = color.New(color.Bold)
	faintColor = color.New(color.Faint)
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
)

func (p *Printer) newTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = p.MaxColWidth
	tbl.Wrap = true
	return tbl
}

func (p *Printer) title(s string) {
	_, _ = titleColor.Fprintln(p.out, s)
}

func (p *Printer) faint(format string, args ...interface{}) {
	_, _ = faintColor.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) table(tbl *uitable.Table) {
	_, _ = fmt.Fprintln(p.out, tbl)
}

func headerRow(headers ...string) []interface{} {
	out := make([]interface{}, len(headers))
	for i, h := range headers {
		out[i] = headColor.Sprint(h)
	}
	return out
}

// =============================================================================
// NUMBER DISPLAY
// =============================================================================

// amountKeywords mark the columns whose numbers are formatted as amounts.
var amountKeywords = []string{
	"costo", "precio", "total", "importe", "cantidad", "rendimiento",
	"unitario", "monto", "unit", "cant.", "valor",
}

var numberPrinter = message.NewPrinter(language.English)

// FormatAmount formats v with thousands separators and at most three
// decimals.
func FormatAmount(v float64) string {
	return numberPrinter.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatPercent formats a percentage with one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// IsAmountColumn reports whether header names an amount column.
func IsAmountColumn(header string) bool {
	h := strings.ToLower(header)
	for _, k := range amountKeywords {
		if strings.Contains(h, k) {
			return true
		}
	}
	return false
}

// DisplayCell returns the table text of c in a column headed header.
func DisplayCell(header string, c sheet.Cell) string {
	if !IsAmountColumn(header) || !sheet.LooksNumeric(c) {
		return c.String()
	}
	return FormatAmount(sheet.ParseNumber(c))
}
