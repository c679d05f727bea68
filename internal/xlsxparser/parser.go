// =============================================================================
// Budget Analyzer - XLSX Workbook Reader
// =============================================================================
//
// This module reads a budget workbook (.xlsx) into a workbook.Raw value: every
// worksheet as rows of cells, plus the project title.
//
// CELL TYPES:
//   Numeric cells (including formulas with a numeric result) become number
//   cells holding the unformatted value, so "1.234,50" shown by Excel is read
//   as 1234.5. Every other cell is read as text. Empty cells stay empty.
//
// TITLE:
//   The project title is read from a fixed cell (Hoja1!B1 by default). A
//   workbook without that sheet or cell simply has no title.
//
// CUSTOMIZATION:
//   - Change the title location through the "sheets.title" and
//     "sheets.title_cell" configuration keys.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/workbook"
)

// Options controls where the reader looks for the project title.
type Options struct {
	// TitleSheet is the worksheet holding the title.
	// Default: "Hoja1"
	TitleSheet string

	// TitleCell is the cell holding the title.
	// Default: "B1"
	TitleCell string
}

// DefaultOptions returns the options matching the standard workbook.
func DefaultOptions() Options {
	return Options{TitleSheet: "Hoja1", TitleCell: "B1"}
}

// =============================================================================
// READING
// =============================================================================

// ReadWorkbook reads the workbook at path.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - opts: The title location.
//
// RETURNS:
//   - The raw workbook, with Source set to path.
//   - An error if the file cannot be opened or a sheet cannot be read.
func ReadWorkbook(path string, opts Options) (*workbook.Raw, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return read(f, path, opts)
}

// ReadWorkbookFrom reads a workbook from r, typically an upload.
func ReadWorkbookFrom(r io.Reader, source string, opts Options) (*workbook.Raw, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return read(f, source, opts)
}

func read(f *excelize.File, source string, opts Options) (*workbook.Raw, error) {
	raw := workbook.NewRaw(source)

	for _, name := range f.GetSheetList() {
		rows, err := readSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("error reading sheet '%s': %w", name, err)
		}
		raw.Add(name, rows)
	}

	raw.Title = readTitle(f, opts)
	return raw, nil
}

// readSheet reads every row of a worksheet. Trailing empty cells are dropped
// by excelize; rows keep their position, so blank rows come back empty.
func readSheet(f *excelize.File, name string) ([]sheet.Row, error) {
	values, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	rows := make([]sheet.Row, len(values))
	for r, rowValues := range values {
		row := make(sheet.Row, len(rowValues))
		for c, value := range rowValues {
			cell, err := toCell(f, name, c, r, value)
			if err != nil {
				return nil, err
			}
			row[c] = cell
		}
		rows[r] = row
	}
	return rows, nil
}

// toCell converts one raw value, asking excelize for the stored cell type
// only when the value could be a number.
func toCell(f *excelize.File, sheetName string, col, row int, value string) (sheet.Cell, error) {
	if value == "" {
		return sheet.EmptyCell(), nil
	}

	num, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return sheet.Str(value), nil
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return sheet.Cell{}, fmt.Errorf("invalid cell position (%d, %d): %w", col+1, row+1, err)
	}
	typ, err := f.GetCellType(sheetName, axis)
	if err != nil {
		return sheet.Cell{}, fmt.Errorf("failed to read type of %s: %w", axis, err)
	}

	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset, excelize.CellTypeDate:
		return sheet.Num(num), nil
	default:
		// Text that happens to look like a number ("001", "12") keeps its
		// spelling, which matters for codes.
		return sheet.Str(value), nil
	}
}

// readTitle returns the trimmed title cell, or "" when it is absent.
func readTitle(f *excelize.File, opts Options) string {
	if opts.TitleSheet == "" || opts.TitleCell == "" {
		return ""
	}
	if idx, err := f.GetSheetIndex(opts.TitleSheet); err != nil || idx < 0 {
		return ""
	}
	title, err := f.GetCellValue(opts.TitleSheet, opts.TitleCell)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(title)
}
