// =============================================================================
// Budget Analyzer - CSV Workbook Reader
// =============================================================================
//
// This module reads a budget workbook that was exported as one CSV file per
// worksheet into a workbook.Raw value. The directory layout mirrors the
// workbook:
//
//   obra/
//     Presupuesto_General.csv
//     Catálogo_Materiales.csv
//     Asignación_Materiales.csv
//     Catálogo_ManoObra.csv       (optional)
//     Asignación_ManoObra.csv     (optional)
//     Hoja1.csv                   (optional, title in B1)
//
// FEATURES:
//   - Configurable delimiter (Excel in Spanish locales exports with ";")
//   - UTF-8 (with or without BOM), Windows-1252 and ISO-8859-1 input
//   - File names are normalized to NFC, so names created on macOS still match
//     the configured sheet names
//
// CELL TYPES:
//   CSV carries no types: every non-empty field is a text cell. Numbers such
//   as "1.234,50" are parsed later by the sheet package, the same way text
//   cells from a workbook are.
//
// CUSTOMIZATION:
//   - Add an encoding to decoderFor and to the csv.encoding validation.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/config"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/workbook"
)

// ErrNoFiles is returned when a directory holds no CSV files.
var ErrNoFiles = errors.New("no CSV files found")

// Options contains the settings for reading CSV worksheets.
type Options struct {
	// Delimiter separates fields.
	// Default: ','
	Delimiter rune

	// Encoding names the character encoding of every file.
	// Default: "UTF-8"
	Encoding string

	// TitleSheet and TitleCell locate the project title.
	// Default: "Hoja1", "B1"
	TitleSheet string
	TitleCell  string
}

// OptionsFromConfig builds the reader options from the configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Delimiter:  cfg.DelimiterRune(),
		Encoding:   cfg.CSV.Encoding,
		TitleSheet: cfg.Sheets.Title,
		TitleCell:  cfg.Sheets.TitleCell,
	}
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadDir reads every .csv file in dir as a worksheet named after the file.
//
// PARAMETERS:
//   - dir: The directory holding the exported worksheets.
//   - opts: The CSV settings.
//
// RETURNS:
//   - The raw workbook, with Source set to dir and sheets in file name order.
//   - ErrNoFiles if the directory holds no CSV file.
//   - An error if the directory or a file cannot be read.
//
// Subdirectories are not searched.
func ReadDir(dir string, opts Options) (*workbook.Raw, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	raw := workbook.NewRaw(dir)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		rows, err := ReadFile(path, opts)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", entry.Name(), err)
		}
		raw.Add(SheetName(entry.Name()), rows)
	}

	if len(raw.Order) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}

	raw.Title, err = readTitle(raw, opts)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// SheetName derives the worksheet name from a CSV file name.
func SheetName(fileName string) string {
	base := filepath.Base(fileName)
	return norm.NFC.String(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ReadFile reads one CSV file as worksheet rows.
func ReadFile(path string, opts Options) ([]sheet.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadSheet(bufio.NewReader(file), opts)
}

// ReadSheet reads CSV records from r. Empty fields become empty cells and
// blank lines are skipped by encoding/csv.
func ReadSheet(r io.Reader, opts Options) ([]sheet.Row, error) {
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(dec.Reader(r))
	configureReader(reader, opts)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	rows := make([]sheet.Row, len(records))
	for i, record := range records {
		row := make(sheet.Row, len(record))
		for j, field := range record {
			row[j] = sheet.Str(field)
		}
		rows[i] = row
	}
	return rows, nil
}

// configureReader applies the delimiter and the lenient parsing the exports
// need: rows may have different lengths and quotes are not always escaped.
func configureReader(reader *csv.Reader, opts Options) {
	reader.Comma = opts.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ','
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// decoderFor returns the decoder for a configured encoding name.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8":
		// Excel writes a byte order mark in front of UTF-8 exports.
		return unicode.UTF8BOM.NewDecoder(), nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "ISO-8859-1", "LATIN1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// readTitle returns the trimmed title cell of the title sheet, or "" when the
// sheet or the cell is absent.
func readTitle(raw *workbook.Raw, opts Options) (string, error) {
	if opts.TitleSheet == "" || opts.TitleCell == "" {
		return "", nil
	}
	rows, ok := raw.Sheets[norm.NFC.String(opts.TitleSheet)]
	if !ok {
		return "", nil
	}

	col, row, err := excelize.CellNameToCoordinates(opts.TitleCell)
	if err != nil {
		return "", fmt.Errorf("invalid title cell %q: %w", opts.TitleCell, err)
	}
	if row > len(rows) {
		return "", nil
	}
	return strings.TrimSpace(rows[row-1].At(col - 1).String()), nil
}
