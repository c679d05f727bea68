package sheet

import (
	"strconv"
	"strings"
)

// =============================================================================
// NUMERIC PARSING POLICY
// =============================================================================
//
// Cost and quantity cells arrive either as real numbers or as text formatted
// by whoever typed the budget ("1.234,56", "1,234.56", "Bs. 250", "12,5").
// ParseNumber reduces all of them to a float64 and never fails: anything that
// cannot be read is worth zero.
//
// SEPARATOR RULES:
//   1. Both ',' and '.' present: the right-most one is the decimal mark and
//      the other one is a thousands separator.
//   2. Only ',' present: a single comma is the decimal mark ("12,5" = 12.5);
//      repeated commas are thousands separators ("1,234,567").
//   3. Only '.' present: a single dot is the decimal mark; repeated dots are
//      thousands separators ("1.234.567").
//   4. Every remaining character other than digits and one decimal point is
//      dropped; a minus sign in front of the first digit negates the value.

// ParseNumber returns the numeric value of a cell. Number cells pass through,
// text cells go through ParseText, empty cells are zero.
func ParseNumber(c Cell) float64 {
	switch c.kind {
	case KindNumber:
		return c.num
	case KindString:
		return ParseText(c.str)
	default:
		return 0
	}
}

// ParseText applies the separator rules to s. Only the span between the first
// and the last digit is inspected, so currency prefixes and unit suffixes
// ("Bs. 12.5", "250 m3") do not count as separators. A minus sign anywhere in
// front of the first digit makes the value negative. Unparsable input yields 0.
func ParseText(s string) float64 {
	start := strings.IndexFunc(s, isASCIIDigit)
	if start < 0 {
		return 0
	}
	end := strings.LastIndexFunc(s, isASCIIDigit)
	if start > 0 && (s[start-1] == '.' || s[start-1] == ',') {
		start--
	}
	negative := strings.Contains(s[:start], "-")
	body := s[start : end+1]

	commas := strings.Count(body, ",")
	dots := strings.Count(body, ".")

	var decimal rune
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(body, ",") > strings.LastIndex(body, ".") {
			decimal = ','
		} else {
			decimal = '.'
		}
	case commas == 1:
		decimal = ','
	case dots == 1:
		decimal = '.'
	}

	var b strings.Builder
	seenPoint := false
	for _, r := range body {
		switch {
		case isASCIIDigit(r):
			b.WriteRune(r)
		case decimal != 0 && r == decimal && !seenPoint:
			seenPoint = true
			b.WriteByte('.')
		}
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	if negative {
		f = -f
	}
	return f
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// LooksNumeric reports whether a cell reads as a number without dropping any
// characters: number cells, and text made only of digits, separators, spaces
// and a sign. Used to decide whether a column sorts numerically.
func LooksNumeric(c Cell) bool {
	switch c.kind {
	case KindNumber:
		return true
	case KindString:
		s := strings.TrimSpace(c.str)
		if s == "" {
			return false
		}
		digits := 0
		for i, r := range s {
			switch {
			case r >= '0' && r <= '9':
				digits++
			case r == '.' || r == ',' || r == ' ':
			case (r == '-' || r == '+') && i == 0:
			default:
				return false
			}
		}
		return digits > 0
	default:
		return false
	}
}
