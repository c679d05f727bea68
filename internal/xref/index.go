// =============================================================================
// Budget Analyzer - Cross-Reference Index
// =============================================================================
//
// Assignment sheets (Asignación_Materiales, Asignación_ManoObra) are flat link
// tables: one row per (resource, budget item) pair. The Index groups those rows
// both ways so the analyzer can answer, without rescanning the sheet:
//   - "which budget items use material M"   -> ItemsForResource
//   - "which materials does item I use"     -> ResourcesForItem
//
// LIFECYCLE:
//   An Index is built once per import and never mutated afterwards. A new
//   import builds a new Index.
//
// =============================================================================

package xref

import (
	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
)

// Index is the bidirectional grouping of one assignment sheet.
type Index struct {
	byResource map[string][]int
	byItem     map[string][]int
	items      map[string]Set
	resources  map[string]Set
}

// NewIndex groups the rows of an assignment sheet by resource code (column A)
// and by item code (column B). Rows with a blank resource or item code are
// left out of the corresponding grouping. A nil or empty sheet yields an empty
// index.
func NewIndex(assignment *sheet.Sheet) *Index {
	idx := &Index{
		byResource: make(map[string][]int),
		byItem:     make(map[string][]int),
		items:      make(map[string]Set),
		resources:  make(map[string]Set),
	}
	if assignment == nil {
		return idx
	}

	for i, row := range assignment.Rows {
		resource := row.Key(sheet.ResourceColumn)
		item := row.Key(sheet.ItemColumn)

		if resource != "" {
			idx.byResource[resource] = append(idx.byResource[resource], i)
		}
		if item != "" {
			idx.byItem[item] = append(idx.byItem[item], i)
		}
		if resource == "" || item == "" {
			continue
		}

		if idx.items[resource] == nil {
			idx.items[resource] = make(Set)
		}
		idx.items[resource].Add(item)

		if idx.resources[item] == nil {
			idx.resources[item] = make(Set)
		}
		idx.resources[item].Add(resource)
	}
	return idx
}

// ItemsForResource returns the item codes linked to resource. The returned set
// is a copy and may be modified by the caller.
func (x *Index) ItemsForResource(resource string) Set {
	return x.items[resource].Clone()
}

// ResourcesForItem returns the resource codes linked to item. The returned set
// is a copy and may be modified by the caller.
func (x *Index) ResourcesForItem(item string) Set {
	return x.resources[item].Clone()
}

// RowsForResource returns the assignment row positions whose resource code is
// resource, in sheet order.
func (x *Index) RowsForResource(resource string) []int {
	return append([]int(nil), x.byResource[resource]...)
}

// RowsForItem returns the assignment row positions whose item code is item,
// in sheet order.
func (x *Index) RowsForItem(item string) []int {
	return append([]int(nil), x.byItem[item]...)
}

// Resources returns every resource code that appears in the sheet.
func (x *Index) Resources() Set {
	out := make(Set, len(x.byResource))
	for r := range x.byResource {
		out.Add(r)
	}
	return out
}

// Items returns every item code that appears in the sheet.
func (x *Index) Items() Set {
	out := make(Set, len(x.byItem))
	for i := range x.byItem {
		out.Add(i)
	}
	return out
}
