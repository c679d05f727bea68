package aggregate

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xref"
)

func row(cells ...any) sheet.Row {
	out := make(sheet.Row, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case string:
			out[i] = sheet.Str(v)
		case int:
			out[i] = sheet.Num(float64(v))
		case float64:
			out[i] = sheet.Num(v)
		case nil:
			out[i] = sheet.EmptyCell()
		default:
			panic(fmt.Sprintf("unsupported cell %T", c))
		}
	}
	return out
}

func fixture() Source {
	budget := sheet.FromRaw("Presupuesto_General", []sheet.Row{
		row("Codigo", "Descripción", "Costo Total", "TIPO"),
		row("I1", "Excavación", 100, "Obra gruesa"),
		row("I2", "Hormigón", "1.200,50", "Obra gruesa"),
		row("I3", "Pintura", 300, "Acabados"),
		row("I4", "Limpieza", "n/a", nil),
	})
	matAssign := sheet.FromRaw("Asignación_Materiales", []sheet.Row{
		row("Cod Material", "Codigo Item", "Material", "Cantidad", "Und.", "Costo [Bs]"),
		row("M1", "I1", "Cemento", 10, "bolsa", 500),
		row("M1", "I2", "Cemento", "4,5", "bolsa", 225),
		row("M2", "I2", "Arena", 2, "m3", 150),
		row("M3", "I3", "Pintura", 5, "gl", 725),
		row("M2", "I9", "Arena", 1, "m3", 75),
	})
	matCatalog := sheet.FromRaw("Catálogo_Materiales", []sheet.Row{
		row("Codigo", "Material"),
		row("M1", "Cemento portland"),
		row("M2", "Arena fina"),
	})
	laborAssign := sheet.FromRaw("Asignación_ManoObra", []sheet.Row{
		row("Cod MO", "Codigo Item", "Mano de obra", "Horas", "Und.", "Costo"),
		row("L1", "I1", "Peón", 8, "hr", 160),
		row("L2", "I1", "Albañil", 4, "hr", 120),
		row("L1", "I2", "Peón", 6, "hr", 120),
		row("L2", "I3", "Albañil", 4, "hr", 120),
	})
	laborCatalog := sheet.FromRaw("Catálogo_ManoObra", []sheet.Row{
		row("Codigo", "Descripción"),
		row("L1", "Peón"),
		row("L2", "Albañil"),
	})

	return Source{
		Budget:    budget,
		Materials: Resource{Assignment: matAssign, Catalog: xref.NewCatalog(matCatalog)},
		Labor:     Resource{Assignment: laborAssign, Catalog: xref.NewCatalog(laborCatalog)},
		Rules:     sheet.DefaultColumnRules(),
	}
}

func TestAggregate_TwoCategories(t *testing.T) {
	t.Parallel()

	budget := sheet.FromRaw("Presupuesto_General", []sheet.Row{
		row("Codigo", "Descripción", "Costo", "TIPO"),
		row("I1", "Desc", 100, "Tipo A"),
		row("I2", "Desc2", 200, "Tipo B"),
	})

	sum := Aggregate(Source{Budget: budget, Rules: sheet.DefaultColumnRules()}, nil)

	require.Equal(t, 300.0, sum.TotalCost)
	require.Equal(t, 2, sum.ItemCount)
	require.Len(t, sum.ByCategory, 2)

	require.Equal(t, "Tipo B", sum.ByCategory[0].Name)
	require.Equal(t, 200.0, sum.ByCategory[0].TotalCost)
	require.InDelta(t, 66.666, sum.ByCategory[0].PercentOfTotal, 0.01)

	require.Equal(t, "Tipo A", sum.ByCategory[1].Name)
	require.Equal(t, 100.0, sum.ByCategory[1].TotalCost)
	require.InDelta(t, 33.333, sum.ByCategory[1].PercentOfTotal, 0.01)

	require.Empty(t, sum.Materials)
	require.Empty(t, sum.TopLabor)
}

func TestAggregate_Categories(t *testing.T) {
	t.Parallel()

	sum := Aggregate(fixture(), nil)

	require.InDelta(t, 1600.5, sum.TotalCost, 1e-9)
	require.Equal(t, 4, sum.ItemCount)

	names := make([]string, len(sum.ByCategory))
	for i, c := range sum.ByCategory {
		names[i] = c.Name
	}
	require.Equal(t, []string{"Obra gruesa", "Acabados", Uncategorized}, names)

	obra := sum.ByCategory[0]
	require.Equal(t, 2, obra.ItemCount)
	require.InDelta(t, 650.25, obra.AverageCost, 1e-9)

	sinTipo := sum.ByCategory[2]
	require.Equal(t, 1, sinTipo.ItemCount)
	require.Equal(t, 0.0, sinTipo.TotalCost, "unparsable cost counts as zero")

	var pct float64
	for _, c := range sum.ByCategory {
		pct += c.PercentOfTotal
	}
	require.InDelta(t, 100, pct, 1e-9)
}

func TestAggregate_ZeroTotal(t *testing.T) {
	t.Parallel()

	budget := sheet.FromRaw("Presupuesto_General", []sheet.Row{
		row("Codigo", "Descripción", "Costo", "TIPO"),
		row("I1", "Desc", 0, "Tipo A"),
		row("I2", "Desc2", "abc", "Tipo B"),
	})

	sum := Aggregate(Source{Budget: budget, Rules: sheet.DefaultColumnRules()}, nil)
	require.Equal(t, 0.0, sum.TotalCost)
	require.Len(t, sum.ByCategory, 2)
	for _, c := range sum.ByCategory {
		require.Equal(t, 0.0, c.PercentOfTotal)
	}
	require.Equal(t, "Tipo A", sum.ByCategory[0].Name, "equal costs order by name")
}

func TestAggregate_MissingColumns(t *testing.T) {
	t.Parallel()

	budget := sheet.FromRaw("Presupuesto_General", []sheet.Row{
		row("Codigo", "Descripción"),
		row("I1", "Desc"),
		row("I2", "Desc2"),
	})

	sum := Aggregate(Source{Budget: budget, Rules: sheet.DefaultColumnRules()}, nil)
	require.Equal(t, 0.0, sum.TotalCost)
	require.Equal(t, []CategoryTotal{{Name: Uncategorized, ItemCount: 2}}, sum.ByCategory)
}

func TestAggregate_Resources(t *testing.T) {
	t.Parallel()

	sum := Aggregate(fixture(), nil)

	require.Len(t, sum.Materials, 3, "I9 is an orphan and never selected")
	require.Equal(t, ResourceTotal{
		Code: "M1", Name: "Cemento portland", TotalCost: 725, TotalQuantity: 14.5, Unit: "bolsa", ItemCount: 2, Assignments: 2,
	}, sum.Materials[0])
	require.Equal(t, ResourceTotal{
		Code: "M3", Name: "M3", TotalCost: 725, TotalQuantity: 5, Unit: "gl", ItemCount: 1, Assignments: 1,
	}, sum.Materials[1], "missing catalog entry falls back to the code")
	require.Equal(t, "M2", sum.Materials[2].Code)
	require.Equal(t, 150.0, sum.Materials[2].TotalCost)

	// M1 and M3 tie on cost; the code breaks the tie.
	require.Equal(t, []string{"M1", "M3", "M2"}, []string{sum.Materials[0].Code, sum.Materials[1].Code, sum.Materials[2].Code})
}

func TestAggregate_LaborOrderedByQuantity(t *testing.T) {
	t.Parallel()

	sum := Aggregate(fixture(), nil)

	require.Len(t, sum.Labor, 2)
	require.Equal(t, "L1", sum.Labor[0].Code)
	require.Equal(t, "Peón", sum.Labor[0].Name)
	require.Equal(t, 14.0, sum.Labor[0].TotalQuantity)
	require.Equal(t, "L2", sum.Labor[1].Code)
	require.Equal(t, 8.0, sum.Labor[1].TotalQuantity)
	require.Equal(t, 520.0, sum.LaborCost)
}

func TestAggregate_SelectedItems(t *testing.T) {
	t.Parallel()

	sum := Aggregate(fixture(), xref.NewSet("I2"))

	require.InDelta(t, 1200.5, sum.TotalCost, 1e-9)
	require.Equal(t, 1, sum.ItemCount)
	require.Len(t, sum.Materials, 2)
	require.Equal(t, 375.0, sum.MaterialsCost)
	require.Equal(t, 120.0, sum.LaborCost)

	empty := Aggregate(fixture(), xref.NewSet())
	require.Equal(t, 0, empty.ItemCount)
	require.Empty(t, empty.ByCategory)
	require.Empty(t, empty.Materials)
}

func TestAggregate_SelectedOrphanIsIgnored(t *testing.T) {
	t.Parallel()

	sum := Aggregate(fixture(), xref.NewSet("I9"))
	require.Zero(t, sum.TotalCost)
	require.Zero(t, sum.ItemCount)
	require.Zero(t, sum.MaterialsCost)
	require.Empty(t, sum.Materials)
	require.Empty(t, sum.TopMaterials)

	sum = Aggregate(fixture(), xref.NewSet("I2", "I9"))
	require.Equal(t, 1, sum.ItemCount)
	require.Equal(t, 375.0, sum.MaterialsCost, "the I9 sand row stays out")
	for _, m := range sum.Materials {
		require.Equal(t, 1, m.ItemCount, m.Code)
		require.Equal(t, 1, m.Assignments, m.Code)
	}
}

func TestAggregate_TopN(t *testing.T) {
	t.Parallel()

	raw := []sheet.Row{row("Cod", "Item", "Desc", "Cant", "Und", "Costo")}
	budgetRaw := []sheet.Row{row("Codigo", "Desc", "Costo", "TIPO"), row("I1", "x", 1, "A")}
	for i := 0; i < 15; i++ {
		raw = append(raw, row(fmt.Sprintf("M%02d", i), "I1", "", 1, "u", i+1))
	}
	src := Source{
		Budget:    sheet.FromRaw("Presupuesto_General", budgetRaw),
		Materials: Resource{Assignment: sheet.FromRaw("Asignación_Materiales", raw)},
		Rules:     sheet.DefaultColumnRules(),
	}

	sum := Aggregate(src, nil)
	require.Len(t, sum.Materials, 15)
	require.Len(t, sum.TopMaterials, DefaultTopN)
	require.Equal(t, "M14", sum.TopMaterials[0].Code)

	src.TopN = 3
	require.Len(t, Aggregate(src, nil).TopMaterials, 3)
}

func TestAggregate_Deterministic(t *testing.T) {
	t.Parallel()

	src := fixture()
	ids := xref.NewSet("I1", "I2", "I3")

	first, err := json.Marshal(Aggregate(src, ids))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Aggregate(src, ids))
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}
