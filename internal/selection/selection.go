// =============================================================================
// Budget Analyzer - Selection State
// =============================================================================
//
// The selection decides which budget items feed the tables and the summary.
// It is in one of two modes:
//
//   ExplicitItems    The user picked a set of items by hand (the multi-select
//                    dialog). Only those items are selected, whatever material
//                    or labor filters are also set.
//
//   ResourceFilters  No items were picked by hand. The selected items are the
//                    ones that use the selected material AND the selected
//                    labor; an unset filter does not restrict. With neither
//                    filter set, every budget item is selected.
//
// State values are immutable: every transition returns a new State, so a
// session can swap its selection without locking readers out.
//
// =============================================================================

package selection

import (
	"strings"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xref"
)

// Mode is the active filter mode of a State. It is either ExplicitItems or
// ResourceFilters.
type Mode interface {
	isMode()
}

// ExplicitItems selects exactly IDs.
type ExplicitItems struct {
	IDs xref.Set
}

// ResourceFilters selects the items using Material and Labor. Empty fields
// do not restrict.
type ResourceFilters struct {
	Material string
	Labor    string
}

func (ExplicitItems) isMode()   {}
func (ResourceFilters) isMode() {}

// State is the user's current selection.
type State struct {
	explicit xref.Set
	material string
	labor    string
	focus    string
	global   string
}

// New returns the empty selection: resource filters mode with no filter set.
func New() State {
	return State{}
}

// Mode returns the active filter mode. A non-empty explicit item set always
// wins over the resource filters.
func (s State) Mode() Mode {
	if s.explicit.Len() > 0 {
		return ExplicitItems{IDs: s.explicit.Clone()}
	}
	return ResourceFilters{Material: s.material, Labor: s.labor}
}

// Material returns the selected material code, or "".
func (s State) Material() string { return s.material }

// Labor returns the selected labor code, or "".
func (s State) Labor() string { return s.labor }

// Focus returns the item opened for drill-down, or "".
func (s State) Focus() string { return s.focus }

// GlobalText returns the free-text search of the budget table.
func (s State) GlobalText() string { return s.global }

// SelectedItems returns the explicit item codes in ascending order.
func (s State) SelectedItems() []string { return s.explicit.Sorted() }

// SelectItems replaces the explicit item set. Blank codes are dropped; an
// empty list returns to resource filters mode.
func (s State) SelectItems(codes ...string) State {
	next := s
	next.explicit = xref.NewSet()
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			next.explicit.Add(c)
		}
	}
	return next
}

// ToggleItem adds code to the explicit item set, or removes it when present.
func (s State) ToggleItem(code string) State {
	code = strings.TrimSpace(code)
	if code == "" {
		return s
	}
	next := s
	next.explicit = s.explicit.Clone()
	if next.explicit.Has(code) {
		delete(next.explicit, code)
	} else {
		next.explicit.Add(code)
	}
	return next
}

// ToggleMaterial selects code as the material filter, or clears the filter
// when code is already selected.
func (s State) ToggleMaterial(code string) State {
	next := s
	next.material = toggle(s.material, code)
	return next
}

// ToggleLabor selects code as the labor filter, or clears the filter when
// code is already selected.
func (s State) ToggleLabor(code string) State {
	next := s
	next.labor = toggle(s.labor, code)
	return next
}

// FocusItem opens code for drill-down and drops any explicit item set, so
// the focused item is looked at on its own. An empty code closes the
// drill-down.
func (s State) FocusItem(code string) State {
	next := s
	next.focus = strings.TrimSpace(code)
	next.explicit = nil
	return next
}

// SetGlobalText sets the free-text search.
func (s State) SetGlobalText(text string) State {
	next := s
	next.global = text
	return next
}

// Reset clears every selection and the free-text search.
func (s State) Reset() State {
	return New()
}

// ItemIDs resolves the selection to the set of selected budget item codes.
//
// PARAMETERS:
//   - budget: The budget sheet; its code column lists every item.
//   - materials: Index of the material assignment sheet.
//   - labor: Index of the labor assignment sheet.
//
// RETURNS:
//   - The selected codes, always a subset of the budget codes. Explicit
//     items the budget does not list are dropped.
func (s State) ItemIDs(budget *sheet.Sheet, materials, labor *xref.Index) xref.Set {
	ids := xref.NewSet()
	for _, row := range budgetRows(budget) {
		if code := row.Key(sheet.CodeColumn); code != "" {
			ids.Add(code)
		}
	}

	switch m := s.Mode().(type) {
	case ExplicitItems:
		return ids.Intersect(m.IDs)
	case ResourceFilters:
		if m.Material != "" {
			ids = ids.Intersect(itemsFor(materials, m.Material))
		}
		if m.Labor != "" {
			ids = ids.Intersect(itemsFor(labor, m.Labor))
		}
		return ids
	}
	return xref.NewSet()
}

func budgetRows(budget *sheet.Sheet) []sheet.Row {
	if budget == nil {
		return nil
	}
	return budget.Rows
}

func itemsFor(idx *xref.Index, code string) xref.Set {
	if idx == nil {
		return xref.NewSet()
	}
	return idx.ItemsForResource(code)
}

func toggle(current, code string) string {
	code = strings.TrimSpace(code)
	if code == "" || code == current {
		return ""
	}
	return code
}
