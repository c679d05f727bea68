package selection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xref"
)

type fixture struct {
	budget    *sheet.Sheet
	materials *xref.Index
	labor     *xref.Index
}

func newFixture() fixture {
	budget := sheet.FromRaw("Presupuesto_General", []sheet.Row{
		{sheet.Str("Codigo"), sheet.Str("Descripción")},
		{sheet.Str("I1"), sheet.Str("Excavación")},
		{sheet.Str("I2"), sheet.Str("Hormigón")},
		{sheet.Str("I3"), sheet.Str("Pintura")},
		{sheet.Num(4), sheet.Str("Limpieza")},
	})
	materials := sheet.FromRaw("Asignación_Materiales", []sheet.Row{
		{sheet.Str("Cod Material"), sheet.Str("Codigo Item")},
		{sheet.Str("M1"), sheet.Str("I1")},
		{sheet.Str("M1"), sheet.Str("I2")},
		{sheet.Str("M1"), sheet.Str("I9")},
		{sheet.Str("M2"), sheet.Str("I3")},
		{sheet.Str("M2"), sheet.Str("4")},
	})
	labor := sheet.FromRaw("Asignación_ManoObra", []sheet.Row{
		{sheet.Str("Cod MO"), sheet.Str("Codigo Item")},
		{sheet.Str("L1"), sheet.Str("I2")},
		{sheet.Str("L1"), sheet.Str("I3")},
	})
	return fixture{
		budget:    budget,
		materials: xref.NewIndex(materials),
		labor:     xref.NewIndex(labor),
	}
}

func (f fixture) ids(s State) []string {
	return s.ItemIDs(f.budget, f.materials, f.labor).Sorted()
}

func TestItemIDs_NoSelection(t *testing.T) {
	t.Parallel()

	f := newFixture()
	require.Equal(t, []string{"4", "I1", "I2", "I3"}, f.ids(New()))
	require.Equal(t, ResourceFilters{}, New().Mode())
}

func TestItemIDs_Material(t *testing.T) {
	t.Parallel()

	f := newFixture()
	s := New().ToggleMaterial("M1")

	require.Equal(t, []string{"I1", "I2"}, f.ids(s), "orphan I9 is not a budget item")
	require.Equal(t, []string{"4", "I3"}, f.ids(New().ToggleMaterial("M2")))
	require.Empty(t, f.ids(New().ToggleMaterial("M9")))
}

func TestItemIDs_MaterialAndLabor(t *testing.T) {
	t.Parallel()

	f := newFixture()
	s := New().ToggleMaterial("M1").ToggleLabor("L1")

	require.Equal(t, []string{"I2"}, f.ids(s))
	require.Equal(t, ResourceFilters{Material: "M1", Labor: "L1"}, s.Mode())
}

func TestItemIDs_ExplicitOverridesResources(t *testing.T) {
	t.Parallel()

	f := newFixture()
	s := New().SelectItems("I1", "I3", "4").ToggleMaterial("M1").ToggleLabor("L1")

	require.Equal(t, []string{"4", "I1", "I3"}, f.ids(s))
	_, explicit := s.Mode().(ExplicitItems)
	require.True(t, explicit)

	// Dropping the explicit set hands control back to the resource filters.
	s = s.SelectItems()
	require.Equal(t, []string{"I2"}, f.ids(s))
}

func TestItemIDs_ExplicitDropsCodesOutsideBudget(t *testing.T) {
	t.Parallel()

	f := newFixture()
	require.Equal(t, []string{"I1"}, f.ids(New().SelectItems("I1", "I9")))
	require.Empty(t, f.ids(New().SelectItems("I9")))

	// The explicit set itself keeps what was picked.
	require.Equal(t, []string{"I1", "I9"}, New().SelectItems("I1", "I9").SelectedItems())
}

func TestToggle(t *testing.T) {
	t.Parallel()

	s := New().ToggleMaterial("M1")
	require.Equal(t, "M1", s.Material())

	s = s.ToggleMaterial("M2")
	require.Equal(t, "M2", s.Material(), "another code replaces the selection")

	s = s.ToggleMaterial("M2")
	require.Equal(t, "", s.Material(), "the selected code deselects")

	s = New().ToggleItem("I1").ToggleItem("I2").ToggleItem("I1")
	require.Equal(t, []string{"I2"}, s.SelectedItems())
}

func TestTransitionsDoNotMutate(t *testing.T) {
	t.Parallel()

	base := New().SelectItems("I1")
	_ = base.ToggleItem("I2")
	_ = base.ToggleMaterial("M1")

	require.Equal(t, []string{"I1"}, base.SelectedItems())
	require.Equal(t, "", base.Material())
}

func TestFocusItemClearsExplicitItems(t *testing.T) {
	t.Parallel()

	s := New().SelectItems("I1", "I2").ToggleMaterial("M1").FocusItem("I3")
	require.Equal(t, "I3", s.Focus())
	require.Empty(t, s.SelectedItems())
	require.Equal(t, "M1", s.Material())
}

func TestReset(t *testing.T) {
	t.Parallel()

	s := New().
		SelectItems("I1").
		ToggleMaterial("M1").
		ToggleLabor("L1").
		FocusItem("I2").
		SetGlobalText("hormigón").
		Reset()

	require.Equal(t, New(), s)
	require.Equal(t, "", s.GlobalText())
}
