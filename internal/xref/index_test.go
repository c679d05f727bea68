package xref

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
)

func assignmentSheet() *sheet.Sheet {
	return sheet.FromRaw("Asignación_Materiales", []sheet.Row{
		{sheet.Str("Cod Material"), sheet.Str("Codigo Item"), sheet.Str("Material"), sheet.Str("Cantidad Usada"), sheet.Str("Und."), sheet.Str("Costo [Bs]")},
		{sheet.Str("M1"), sheet.Str("I1"), sheet.Str("Cemento"), sheet.Num(10), sheet.Str("bolsa"), sheet.Num(500)},
		{sheet.Str("M1"), sheet.Str("I2"), sheet.Str("Cemento"), sheet.Num(4), sheet.Str("bolsa"), sheet.Num(200)},
		{sheet.Str("M2"), sheet.Str("I1"), sheet.Str("Arena"), sheet.Num(2), sheet.Str("m3"), sheet.Num(150)},
		{sheet.Num(3), sheet.Str(" I3 "), sheet.Str("Clavos"), sheet.Num(1), sheet.Str("kg"), sheet.Num(20)},
		{sheet.Str(""), sheet.Str("I4")},
	})
}

func TestIndex_ItemsForResource(t *testing.T) {
	t.Parallel()

	idx := NewIndex(assignmentSheet())

	require.Equal(t, []string{"I1", "I2"}, idx.ItemsForResource("M1").Sorted())
	require.Equal(t, []string{"I1"}, idx.ItemsForResource("M2").Sorted())
	require.Equal(t, []string{"I3"}, idx.ItemsForResource("3").Sorted(), "numeric codes and padded item codes match by string form")
	require.Equal(t, 0, idx.ItemsForResource("missing").Len())
}

func TestIndex_ResourcesForItem(t *testing.T) {
	t.Parallel()

	idx := NewIndex(assignmentSheet())

	require.Equal(t, []string{"M1", "M2"}, idx.ResourcesForItem("I1").Sorted())
	require.Equal(t, 0, idx.ResourcesForItem("I4").Len(), "rows without a resource code are not linked")
	require.Equal(t, []int{4}, idx.RowsForItem("I4"))
	require.Equal(t, []int{0, 2}, idx.RowsForItem("I1"))
	require.Equal(t, []int{0, 1}, idx.RowsForResource("M1"))
}

func TestIndex_ReturnedSetsAreCopies(t *testing.T) {
	t.Parallel()

	idx := NewIndex(assignmentSheet())
	items := idx.ItemsForResource("M1")
	items.Add("I9")

	require.False(t, idx.ItemsForResource("M1").Has("I9"))
}

func TestIndex_EmptySheet(t *testing.T) {
	t.Parallel()

	idx := NewIndex(sheet.Empty("Asignación_ManoObra"))
	require.Equal(t, 0, idx.Resources().Len())
	require.Equal(t, 0, NewIndex(nil).Items().Len())
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	cat := NewCatalog(sheet.FromRaw("Catálogo_Materiales", []sheet.Row{
		{sheet.Str("Codigo"), sheet.Str("Materiales")},
		{sheet.Str("M1 "), sheet.Str("Cemento portland")},
		{sheet.Str("M2"), sheet.Str("Arena fina")},
		{sheet.Str("M2"), sheet.Str("Arena gruesa")},
		{sheet.Str("M3")},
	}))

	require.Equal(t, "Cemento portland", cat.Name("M1"))
	require.Equal(t, "Arena gruesa", cat.Name("M2"), "last row wins on duplicate codes")
	require.Equal(t, "M3", cat.Name("M3"), "blank name falls back to the code")
	require.Equal(t, "M9", cat.Name("M9"))
	require.Equal(t, []string{"M2"}, cat.Duplicates().Sorted())
	require.Equal(t, 3, cat.Len())
}

func TestSetIntersect(t *testing.T) {
	t.Parallel()

	a := NewSet("I1", "I2", "I3")
	b := NewSet("I2", "I3", "I4")
	require.Equal(t, []string{"I2", "I3"}, a.Intersect(b).Sorted())
	require.Equal(t, 0, a.Intersect(nil).Len())
	require.False(t, Set(nil).Has("I1"))
}
