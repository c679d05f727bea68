package xref

import (
	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
)

// Catalog resolves resource codes to display names.
//
// Codes are expected to be unique within a catalog sheet but nothing enforces
// it: when a code repeats, the last row wins and the code is reported by
// Duplicates so validation can warn about it.
type Catalog struct {
	names      map[string]string
	duplicates Set
}

// NewCatalog reads code (column A) and name (column B) from a catalog sheet.
func NewCatalog(catalog *sheet.Sheet) *Catalog {
	c := &Catalog{
		names:      make(map[string]string),
		duplicates: make(Set),
	}
	if catalog == nil {
		return c
	}

	for _, row := range catalog.Rows {
		code := row.Key(sheet.CodeColumn)
		if code == "" {
			continue
		}
		if _, seen := c.names[code]; seen {
			c.duplicates.Add(code)
		}
		c.names[code] = row.At(sheet.NameColumn).String()
	}
	return c
}

// Name returns the catalog name for code, falling back to the code itself
// when the catalog has no entry or the entry has no name.
func (c *Catalog) Name(code string) string {
	if name, ok := c.names[code]; ok && name != "" {
		return name
	}
	return code
}

// Has reports whether code has a catalog entry.
func (c *Catalog) Has(code string) bool {
	_, ok := c.names[code]
	return ok
}

// Len returns the number of distinct codes.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Duplicates returns codes that appear on more than one catalog row.
func (c *Catalog) Duplicates() Set {
	return c.duplicates.Clone()
}
