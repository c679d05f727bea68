package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xref"
)

func budgetSheet() *sheet.Sheet {
	return sheet.FromRaw("Presupuesto_General", []sheet.Row{
		{sheet.Str("Codigo Item"), sheet.Str("Descripción Item"), sheet.Str("Und."), sheet.Str("Costo [Bs]"), sheet.Str("TIPO")},
		{sheet.Str("I1"), sheet.Str("Excavación manual"), sheet.Str("m3"), sheet.Num(100), sheet.Str("Obra gruesa")},
		{sheet.Str("I2"), sheet.Str("Hormigón ciclópeo"), sheet.Str("M3"), sheet.Num(250.5), sheet.Str("obra gruesa")},
		{sheet.Str("I3"), sheet.Str("Pintura látex"), sheet.Str("m2"), sheet.Str("1.200,00"), sheet.Str("Acabados")},
		{sheet.Str("I4"), sheet.Str("Zócalo cerámico"), sheet.Str("ml"), sheet.Num(80), sheet.Str("Acabados")},
		{sheet.Str("I5"), sheet.Str("Limpieza final"), sheet.Str("glb"), sheet.Num(50)},
	})
}

func codes(rows []sheet.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key(0)
	}
	return out
}

func TestApply_GlobalText(t *testing.T) {
	t.Parallel()

	s := budgetSheet()

	require.Equal(t, []string{"I1", "I2"}, codes(Apply(s, Context{GlobalText: "OBRA"})))
	require.Equal(t, []string{"I2"}, codes(Apply(s, Context{GlobalText: "250.5"})), "numbers match by string form")
	require.Equal(t, codes(s.Rows), codes(Apply(s, Context{})), "empty text keeps every row in order")
	require.Empty(t, Apply(s, Context{GlobalText: "no existe"}))
}

func TestApply_GlobalTextIsUnicodeCaseInsensitive(t *testing.T) {
	t.Parallel()

	s := budgetSheet()
	require.Equal(t, []string{"I4"}, codes(Apply(s, Context{GlobalText: "ZÓCALO"})))
	require.Equal(t, []string{"I1", "I2", "I4"}, codes(Apply(s, Context{GlobalText: "ó"})))
	require.Equal(t, []string{"I5"}, codes(Apply(s, Context{GlobalText: "GLB"})))
}

func TestApply_Checklist(t *testing.T) {
	t.Parallel()

	s := budgetSheet()

	got := Apply(s, Context{Checklist: map[string]xref.Set{"Und.": NormalizeChecklist([]string{"M3"})}})
	require.Equal(t, []string{"I1", "I2"}, codes(got))

	got = Apply(s, Context{Checklist: map[string]xref.Set{"TIPO": xref.NewSet()}})
	require.Len(t, got, 5, "empty checklist imposes no restriction")

	got = Apply(s, Context{Checklist: map[string]xref.Set{"TIPO": NormalizeChecklist([]string{"obra gruesa", "acabados"})}})
	require.Equal(t, []string{"I1", "I2", "I3", "I4"}, codes(got))

	got = Apply(s, Context{Checklist: map[string]xref.Set{"No existe": xref.NewSet("x")}})
	require.Len(t, got, 5, "checklist on a missing column is ignored")
}

func TestApply_ColumnTextSkipsChecklistColumns(t *testing.T) {
	t.Parallel()

	s := budgetSheet()

	got := Apply(s, Context{ColumnText: map[int]string{1: "HORM"}})
	require.Equal(t, []string{"I2"}, codes(got))

	got = Apply(s, Context{
		ColumnText: map[int]string{4: "zzz"},
		Checklist:  map[string]xref.Set{"TIPO": xref.NewSet()},
	})
	require.Len(t, got, 5, "column text on a checklist column is ignored")

	got = Apply(s, Context{ColumnText: map[int]string{1: "a", 2: "m"}})
	require.Equal(t, []string{"I1", "I3", "I4"}, codes(got))
}

func TestApply_ExternalIDs(t *testing.T) {
	t.Parallel()

	s := budgetSheet()

	got := Apply(s, Context{ExternalIDs: xref.NewSet("I4", "I2", "I9"), GlobalText: "o"})
	require.Equal(t, []string{"I2", "I4"}, codes(got), "input order is preserved")

	require.Empty(t, Apply(s, Context{ExternalIDs: xref.NewSet()}))
}

func TestApply_ExternalIDsOnItemColumn(t *testing.T) {
	t.Parallel()

	assign := sheet.FromRaw("Asignación_Materiales", []sheet.Row{
		{sheet.Str("Cod Material"), sheet.Str("Codigo Item")},
		{sheet.Str("M1"), sheet.Str("I1")},
		{sheet.Str("M2"), sheet.Str("I2")},
	})
	got := Apply(assign, Context{ExternalIDs: xref.NewSet("I2"), IDColumn: 1})
	require.Len(t, got, 1)
	require.Equal(t, "M2", got[0].Key(0))
}

func TestChecklistOptions(t *testing.T) {
	t.Parallel()

	opts := ChecklistOptions(budgetSheet(), "TIPO")
	require.Equal(t, []Option{
		{Value: "obra gruesa", Label: "Obra gruesa"},
		{Value: "acabados", Label: "Acabados"},
	}, opts)
	require.Empty(t, ChecklistOptions(budgetSheet(), "No existe"))
}

func TestChecklistOptions_RoundTrip(t *testing.T) {
	t.Parallel()

	s := sheet.FromRaw("Presupuesto_General", []sheet.Row{
		{sheet.Str("Codigo"), sheet.Str("TIPO")},
		{sheet.Str("I1"), sheet.Str("Obra gruesa ")},
		{sheet.Str("I2"), sheet.Str("  obra GRUESA")},
		{sheet.Str("I3"), sheet.Str("Acabados")},
		{sheet.Str("I4"), sheet.Str("   ")},
	})

	opts := ChecklistOptions(s, "TIPO")
	require.Equal(t, []Option{
		{Value: "obra gruesa", Label: "Obra gruesa"},
		{Value: "acabados", Label: "Acabados"},
	}, opts)

	for _, opt := range opts {
		got := Apply(s, Context{Checklist: map[string]xref.Set{"TIPO": NormalizeChecklist([]string{opt.Value})}})
		require.NotEmpty(t, got, opt.Value)
	}
	got := Apply(s, Context{Checklist: map[string]xref.Set{"TIPO": NormalizeChecklist([]string{opts[0].Value})}})
	require.Equal(t, []string{"I1", "I2"}, codes(got))
}

func TestSortBy_Numeric(t *testing.T) {
	t.Parallel()

	s := budgetSheet()

	asc := SortBy(s.Rows, 3, Asc)
	require.Equal(t, []string{"I5", "I4", "I1", "I2", "I3"}, codes(asc))

	desc := SortBy(s.Rows, 3, Desc)
	require.Equal(t, []string{"I3", "I2", "I1", "I4", "I5"}, codes(desc))

	require.Equal(t, []string{"I1", "I2", "I3", "I4", "I5"}, codes(s.Rows), "input is not modified")
}

func TestSortBy_Text(t *testing.T) {
	t.Parallel()

	s := budgetSheet()
	got := SortBy(s.Rows, 1, Asc)
	require.Equal(t, []string{"I1", "I2", "I5", "I3", "I4"}, codes(got))
}

func TestSortBy_MixedColumnDecidedOnce(t *testing.T) {
	t.Parallel()

	rows := []sheet.Row{
		{sheet.Str("a"), sheet.Str("10")},
		{sheet.Str("b"), sheet.Str("9")},
		{sheet.Str("c"), sheet.Str("x")},
		{sheet.Str("d"), sheet.Str("100")},
	}
	require.False(t, NumericColumn(rows, 1))
	got := SortBy(rows, 1, Asc)
	require.Equal(t, []string{"10", "100", "9", "x"}, []string{
		got[0].At(1).String(), got[1].At(1).String(), got[2].At(1).String(), got[3].At(1).String(),
	})
}

func TestSortBy_Stable(t *testing.T) {
	t.Parallel()

	s := budgetSheet()
	got := SortBy(s.Rows, 4, Asc)
	require.Equal(t, []string{"I5", "I3", "I4", "I1", "I2"}, codes(got))
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	rows := make([]sheet.Row, 12)
	for i := range rows {
		rows[i] = sheet.Row{sheet.Str(fmt.Sprintf("I%02d", i))}
	}

	require.Equal(t, rows[5:10], Paginate(rows, 2, 5))
	require.Equal(t, rows[10:12], Paginate(rows, 3, 5))
	require.Empty(t, Paginate(rows, 10, 5))
	require.NotNil(t, Paginate(rows, 10, 5))
	require.Empty(t, Paginate(rows, 0, 5))
	require.Empty(t, Paginate(rows, 1, 0))
	maxInt := int(^uint(0) >> 1)
	require.Equal(t, rows, Paginate(rows, 1, maxInt))
	require.Equal(t, 1, PageCount(12, maxInt))

	// Huge pages are out of range, never a panic or a wrapped-around page.
	require.Empty(t, Paginate(rows, maxInt/2+2, 2))
	require.Empty(t, Paginate(rows, maxInt/4+2, 4))
	require.Empty(t, Paginate(rows, maxInt, 5))
	require.NotNil(t, Paginate(rows, maxInt, 5))
	require.Equal(t, 3, PageCount(12, 5))
	require.Equal(t, 0, PageCount(0, 5))
	require.Equal(t, 1, PageCount(5, 5))
}

func TestRun(t *testing.T) {
	t.Parallel()

	v := Run(budgetSheet(), Query{
		Context:  Context{GlobalText: "a"},
		Sort:     &SortSpec{Column: 3, Direction: Desc},
		Page:     1,
		PageSize: 2,
	})

	require.Equal(t, "Presupuesto_General", v.Name)
	require.Equal(t, 5, v.Total)
	require.Equal(t, 3, v.PageCount)
	require.Equal(t, []string{"I3", "I2"}, codes(v.Rows))
}
