// =============================================================================
// Budget Analyzer - Aggregation Engine
// =============================================================================
//
// This module turns a set of budget item codes into the roll-ups shown next to
// the tables:
//
//   - Total cost of the selected budget items.
//   - Cost per category (the TIPO column), with share of the total.
//   - Cost, quantity and usage per material and per labor type, computed from
//     the assignment rows of the selected items.
//
// PURITY:
//   Aggregate reads only its arguments. The same Source and item set always
//   give an identical Summary, including the order of every slice.
//
// MISSING COLUMNS:
//   A sheet without a cost column contributes zero cost. A budget sheet
//   without a type column puts every item in the "Sin tipo" category.
//
// =============================================================================

package aggregate

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xref"
)

// Uncategorized is the category of items whose type cell is blank.
const Uncategorized = "Sin tipo"

// DefaultTopN is the length of the chart slices when Source.TopN is not set.
const DefaultTopN = 10

// =============================================================================
// INPUT
// =============================================================================

// Resource is one resource family (materials or labor): its assignment link
// table and the catalog that names its codes.
type Resource struct {
	Assignment *sheet.Sheet
	Catalog    *xref.Catalog
}

// Source is everything Aggregate reads.
type Source struct {
	Budget    *sheet.Sheet
	Materials Resource
	Labor     Resource

	// Rules locate the cost and type columns of every sheet.
	Rules sheet.ColumnRules

	// TopN bounds TopMaterials and TopLabor.
	// Default: 10
	TopN int
}

// =============================================================================
// OUTPUT
// =============================================================================

// CategoryTotal is the roll-up of one budget category.
type CategoryTotal struct {
	Name           string  `json:"name" yaml:"name"`
	TotalCost      float64 `json:"totalCost" yaml:"totalCost"`
	ItemCount      int     `json:"itemCount" yaml:"itemCount"`
	PercentOfTotal float64 `json:"percentOfTotal" yaml:"percentOfTotal"`
	AverageCost    float64 `json:"averageCost" yaml:"averageCost"`
}

// ResourceTotal is the roll-up of one material or labor code.
type ResourceTotal struct {
	Code          string  `json:"code" yaml:"code"`
	Name          string  `json:"name" yaml:"name"`
	TotalCost     float64 `json:"totalCost" yaml:"totalCost"`
	TotalQuantity float64 `json:"totalQuantity" yaml:"totalQuantity"`
	Unit          string  `json:"unit" yaml:"unit"`

	// ItemCount is the number of distinct budget items using the resource.
	ItemCount int `json:"itemCount" yaml:"itemCount"`

	// Assignments is the number of assignment rows that contributed.
	Assignments int `json:"assignments" yaml:"assignments"`
}

// Summary is the complete roll-up of one item selection.
type Summary struct {
	TotalCost  float64         `json:"totalCost" yaml:"totalCost"`
	ItemCount  int             `json:"itemCount" yaml:"itemCount"`
	ByCategory []CategoryTotal `json:"byCategory" yaml:"byCategory"`

	MaterialsCost float64         `json:"materialsCost" yaml:"materialsCost"`
	LaborCost     float64         `json:"laborCost" yaml:"laborCost"`
	Materials     []ResourceTotal `json:"materials" yaml:"materials"`
	Labor         []ResourceTotal `json:"labor" yaml:"labor"`

	// TopMaterials and TopLabor are the chart slices: the first TopN entries
	// of Materials and Labor.
	TopMaterials []ResourceTotal `json:"topMaterials" yaml:"topMaterials"`
	TopLabor     []ResourceTotal `json:"topLabor" yaml:"topLabor"`
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate computes the Summary of the budget items whose code is in ids.
//
// PARAMETERS:
//   - src: The sheets, catalogs and column rules to read.
//   - ids: The selected item codes. A nil set selects every budget item.
//     Codes the budget does not list are ignored, so assignment rows
//     pointing at them are never counted.
//
// RETURNS:
//   - The summary. Never nil; slices are empty rather than nil.
//
// Materials are ordered by total cost and labor by total quantity, both
// descending, with ties broken by code.
func Aggregate(src Source, ids xref.Set) *Summary {
	topN := src.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	codes := budgetCodes(src.Budget)
	if ids != nil {
		codes = codes.Intersect(ids)
	}
	selected := codes.Has

	sum := &Summary{}
	sum.ByCategory, sum.TotalCost, sum.ItemCount = categories(src.Budget, src.Rules, selected)

	sum.Materials = resources(src.Materials, src.Rules, selected)
	sortResources(sum.Materials, func(r ResourceTotal) float64 { return r.TotalCost })
	sum.MaterialsCost = totalCost(sum.Materials)

	sum.Labor = resources(src.Labor, src.Rules, selected)
	sortResources(sum.Labor, func(r ResourceTotal) float64 { return r.TotalQuantity })
	sum.LaborCost = totalCost(sum.Labor)

	sum.TopMaterials = top(sum.Materials, topN)
	sum.TopLabor = top(sum.Labor, topN)
	return sum
}

func budgetCodes(budget *sheet.Sheet) xref.Set {
	out := xref.NewSet()
	if budget == nil {
		return out
	}
	for _, row := range budget.Rows {
		if code := row.Key(sheet.CodeColumn); code != "" {
			out.Add(code)
		}
	}
	return out
}

// categories groups the selected budget rows by their type cell.
func categories(budget *sheet.Sheet, rules sheet.ColumnRules, selected func(string) bool) ([]CategoryTotal, float64, int) {
	out := []CategoryTotal{}
	if budget == nil {
		return out, 0, 0
	}

	costCol := rules.Cost(budget.Headers)
	typeCol := rules.Type(budget.Headers)

	byName := make(map[string]*CategoryTotal)
	var total float64
	var count int
	for _, row := range budget.Rows {
		if !selected(row.Key(sheet.CodeColumn)) {
			continue
		}

		name := Uncategorized
		if typeCol != sheet.NotFound {
			if t := strings.TrimSpace(row.At(typeCol).String()); t != "" {
				name = t
			}
		}
		var cost float64
		if costCol != sheet.NotFound {
			cost = sheet.ParseNumber(row.At(costCol))
		}

		cat, ok := byName[name]
		if !ok {
			cat = &CategoryTotal{Name: name}
			byName[name] = cat
		}
		cat.TotalCost += cost
		cat.ItemCount++
		total += cost
		count++
	}

	for _, cat := range byName {
		if total != 0 {
			cat.PercentOfTotal = cat.TotalCost / total * 100
		}
		if cat.ItemCount > 0 {
			cat.AverageCost = cat.TotalCost / float64(cat.ItemCount)
		}
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCost != out[j].TotalCost {
			return out[i].TotalCost > out[j].TotalCost
		}
		return out[i].Name < out[j].Name
	})
	return out, total, count
}

// resources rolls up the assignment rows of the selected items per resource
// code. The result is unordered.
func resources(res Resource, rules sheet.ColumnRules, selected func(string) bool) []ResourceTotal {
	out := []ResourceTotal{}
	if res.Assignment == nil {
		return out
	}

	catalog := res.Catalog
	if catalog == nil {
		catalog = xref.NewCatalog(nil)
	}
	costCol := rules.Cost(res.Assignment.Headers)

	byCode := make(map[string]*ResourceTotal)
	items := make(map[string]xref.Set)
	for _, row := range res.Assignment.Rows {
		code := row.Key(sheet.ResourceColumn)
		item := row.Key(sheet.ItemColumn)
		if code == "" || !selected(item) {
			continue
		}

		rt, ok := byCode[code]
		if !ok {
			rt = &ResourceTotal{Code: code, Name: catalog.Name(code)}
			byCode[code] = rt
			items[code] = xref.NewSet()
		}
		if costCol != sheet.NotFound {
			rt.TotalCost += sheet.ParseNumber(row.At(costCol))
		}
		rt.TotalQuantity += sheet.ParseNumber(row.At(sheet.QuantityColumn))
		if rt.Unit == "" {
			rt.Unit = strings.TrimSpace(row.At(sheet.UnitColumn).String())
		}
		rt.Assignments++
		items[code].Add(item)
	}

	for code, rt := range byCode {
		rt.ItemCount = items[code].Len()
		out = append(out, *rt)
	}
	return out
}

// sortResources orders rows by key descending, then by code.
func sortResources(rows []ResourceTotal, key func(ResourceTotal) float64) {
	sort.Slice(rows, func(i, j int) bool {
		ki, kj := key(rows[i]), key(rows[j])
		if ki != kj {
			return ki > kj
		}
		return rows[i].Code < rows[j].Code
	})
}

func totalCost(rows []ResourceTotal) float64 {
	var total float64
	for _, r := range rows {
		total += r.TotalCost
	}
	return total
}

func top(rows []ResourceTotal, n int) []ResourceTotal {
	if len(rows) <= n {
		return append([]ResourceTotal{}, rows...)
	}
	return append([]ResourceTotal{}, rows[:n]...)
}
