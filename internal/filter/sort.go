package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
)

// =============================================================================
// SORTING
// =============================================================================

// Direction is the sort order of a column.
type Direction int

const (
	// Asc sorts smallest first.
	Asc Direction = iota

	// Desc sorts largest first.
	Desc
)

// ParseDirection reads "asc"/"desc" (any case). Anything else is Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// numericShare is the fraction of non-blank cells that must read as numbers
// for a column to sort numerically.
const numericShare = 0.9

// NumericColumn reports whether column of rows should sort as numbers: at
// least 90% of its non-blank cells must look numeric. A column with no
// non-blank cells is not numeric.
func NumericColumn(rows []sheet.Row, column int) bool {
	var filled, numeric int
	for _, row := range rows {
		c := row.At(column)
		if c.IsBlank() {
			continue
		}
		filled++
		if sheet.LooksNumeric(c) {
			numeric++
		}
	}
	if filled == 0 {
		return false
	}
	return float64(numeric) >= numericShare*float64(filled)
}

// SortBy returns a sorted copy of rows ordered by column.
//
// The column type is decided once for the whole column (see NumericColumn),
// so every comparison in one sort uses the same rule. Numeric columns compare
// parsed values; other columns compare text with case-insensitive Spanish
// collation. The sort is stable: rows with equal keys keep their input order.
func SortBy(rows []sheet.Row, column int, dir Direction) []sheet.Row {
	out := append([]sheet.Row(nil), rows...)
	if len(out) < 2 || column < 0 {
		return out
	}

	var less func(a, b sheet.Row) bool
	if NumericColumn(out, column) {
		less = func(a, b sheet.Row) bool {
			return sheet.ParseNumber(a.At(column)) < sheet.ParseNumber(b.At(column))
		}
	} else {
		coll := collate.New(language.Spanish, collate.IgnoreCase)
		less = func(a, b sheet.Row) bool {
			return coll.CompareString(a.At(column).String(), b.At(column).String()) < 0
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if dir == Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// =============================================================================
// PAGINATION
// =============================================================================

// Paginate returns page number page (1-based) of size rows. Pages outside the
// available range, a page below 1 or a non-positive size yield an empty
// slice.
func Paginate(rows []sheet.Row, page, size int) []sheet.Row {
	if page < 1 || size <= 0 || page > PageCount(len(rows), size) {
		return []sheet.Row{}
	}
	start := (page - 1) * size
	end := len(rows)
	if size < end-start {
		end = start + size
	}
	return rows[start:end]
}

// PageCount returns ceil(total/size), or 0 when size is not positive.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}
