// =============================================================================
// Budget Analyzer - Cell Values
// =============================================================================
//
// A workbook cell is either empty, a string, or a number. The readers in
// xlsxparser and csvparser produce cells of these three kinds and everything
// downstream (filters, keys, aggregation) works from them.
//
// STRING FORM:
//   Search, per-column filters, checklist filters and entity codes all compare
//   against the string form of a cell. Numbers use the shortest decimal
//   representation ("101", "2.5", "-0.75"), so a code typed as a number in the
//   spreadsheet still matches the same code typed as text.
//
// =============================================================================

package sheet

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Cell holds.
type Kind int

const (
	// KindEmpty is a missing or blank cell.
	KindEmpty Kind = iota

	// KindString is a text cell.
	KindString

	// KindNumber is a numeric cell.
	KindNumber
)

// Cell is a single spreadsheet value.
type Cell struct {
	kind Kind
	str  string
	num  float64
}

// Row is an ordered sequence of cells.
type Row []Cell

// Str builds a text cell. An empty string yields an empty cell.
func Str(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{kind: KindString, str: s}
}

// Num builds a numeric cell.
func Num(f float64) Cell {
	return Cell{kind: KindNumber, num: f}
}

// EmptyCell returns the empty cell.
func EmptyCell() Cell {
	return Cell{}
}

// Kind reports the cell variant.
func (c Cell) Kind() Kind {
	return c.kind
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.kind == KindEmpty
}

// IsBlank reports whether the cell is empty or whitespace-only text.
func (c Cell) IsBlank() bool {
	switch c.kind {
	case KindEmpty:
		return true
	case KindString:
		return strings.TrimSpace(c.str) == ""
	default:
		return false
	}
}

// Float returns the numeric value and whether the cell is a number cell.
func (c Cell) Float() (float64, bool) {
	if c.kind != KindNumber {
		return 0, false
	}
	return c.num, true
}

// String returns the display form of the cell.
func (c Cell) String() string {
	switch c.kind {
	case KindString:
		return c.str
	case KindNumber:
		return FormatNumber(c.num)
	default:
		return ""
	}
}

// Key returns the trimmed string form, used whenever the cell identifies an
// entity (item, material or labor code).
func (c Cell) Key() string {
	return strings.TrimSpace(c.String())
}

// FormatNumber renders f without exponent or trailing zeros.
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// At returns the cell at index i, or the empty cell when the row is shorter.
// Rows read from spreadsheets drop trailing blanks, so every positional access
// goes through At.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Key returns the trimmed string form of the cell at index i.
func (r Row) Key(i int) string {
	return r.At(i).Key()
}

// Strings returns the string form of every cell in the row.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

// MarshalJSON encodes the cell as a JSON string, number, or null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindString:
		return json.Marshal(c.str)
	case KindNumber:
		if math.IsNaN(c.num) || math.IsInf(c.num, 0) {
			return []byte("null"), nil
		}
		return []byte(FormatNumber(c.num)), nil
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML encodes the cell as its natural scalar.
func (c Cell) MarshalYAML() (interface{}, error) {
	switch c.kind {
	case KindString:
		return c.str, nil
	case KindNumber:
		return c.num, nil
	default:
		return nil, nil
	}
}
