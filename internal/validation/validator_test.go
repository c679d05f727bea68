package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/config"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
)

func r(cells ...interface{}) sheet.Row {
	out := make(sheet.Row, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case string:
			out[i] = sheet.Str(v)
		case int:
			out[i] = sheet.Num(float64(v))
		}
	}
	return out
}

func validSheets() map[string]*sheet.Sheet {
	return map[string]*sheet.Sheet{
		"Presupuesto_General": sheet.FromRaw("Presupuesto_General", []sheet.Row{
			r("Codigo", "Descripción", "Costo Total", "TIPO"),
			r("I1", "Excavación", 100, "Obra gruesa"),
			r("I2", "Hormigón", "1.200,50", "Obra gruesa"),
		}),
		"Catálogo_Materiales": sheet.FromRaw("Catálogo_Materiales", []sheet.Row{
			r("Codigo", "Material"),
			r("M1", "Cemento"),
		}),
		"Asignación_Materiales": sheet.FromRaw("Asignación_Materiales", []sheet.Row{
			r("Cod", "Item", "Material", "Cantidad", "Und.", "Costo"),
			r("M1", "I1", "Cemento", 10, "bolsa", 50),
		}),
		"Catálogo_ManoObra": sheet.FromRaw("Catálogo_ManoObra", []sheet.Row{
			r("Codigo", "Mano de obra"),
			r("L1", "Albañil"),
		}),
		"Asignación_ManoObra": sheet.FromRaw("Asignación_ManoObra", []sheet.Row{
			r("Cod", "Item", "Mano de obra", "Horas", "Und.", "Costo"),
			r("L1", "I2", "Albañil", 8, "hr", 80),
		}),
	}
}

func rulesOf(result *Result) []string {
	out := make([]string, len(result.Issues))
	for i, issue := range result.Issues {
		out[i] = issue.Rule
	}
	return out
}

func TestValidate_Clean(t *testing.T) {
	t.Parallel()

	result := Validate(validSheets(), config.Default())
	require.True(t, result.IsValid)
	require.Empty(t, result.Issues)
	require.Equal(t, "No validation issues.", FormatIssues(result.Issues))
}

func TestValidate_MissingSheets(t *testing.T) {
	t.Parallel()

	sheets := validSheets()
	delete(sheets, "Catálogo_Materiales")
	delete(sheets, "Asignación_ManoObra")

	result := Validate(sheets, config.Default())
	require.False(t, result.IsValid)
	require.Equal(t, []string{"Catálogo_Materiales"}, result.MissingSheets)
	require.Equal(t, 1, result.ErrorCount)
	require.Equal(t, 1, result.WarningCount)
	require.Equal(t, []string{RuleMissingSheet, RuleMissingOptional}, rulesOf(result))
	require.Len(t, result.Errors(), 1)
	require.Equal(t, `[ERROR] Catálogo_Materiales: required sheet "Catálogo_Materiales" is missing`, result.Errors()[0].Error())
}

func TestValidate_OptionalSheetsOnly(t *testing.T) {
	t.Parallel()

	sheets := validSheets()
	delete(sheets, "Catálogo_ManoObra")
	delete(sheets, "Asignación_ManoObra")

	result := Validate(sheets, config.Default())
	require.True(t, result.IsValid)
	require.Equal(t, 2, result.WarningCount)
}

func TestValidate_Warnings(t *testing.T) {
	t.Parallel()

	sheets := validSheets()
	sheets["Presupuesto_General"] = sheet.FromRaw("Presupuesto_General", []sheet.Row{
		r("Codigo", "Descripción", "Monto"),
		r("I1", "Excavación"),
		r("I1", "Excavación bis"),
		r("", "Sin código"),
	})
	sheets["Catálogo_Materiales"] = sheet.FromRaw("Catálogo_Materiales", []sheet.Row{
		r("Codigo", "Material"),
		r("M1", "Cemento"),
		r("M1", "Cemento gris"),
	})
	sheets["Asignación_Materiales"] = sheet.FromRaw("Asignación_Materiales", []sheet.Row{
		r("Cod", "Item", "Material", "Cantidad", "Und.", "Costo"),
		r("M9", "I7", "Fierro", "n/a", "kg", "12,5"),
	})

	result := Validate(sheets, config.Default())
	require.True(t, result.IsValid, "warnings never block the import")
	require.Equal(t, 0, result.ErrorCount)
	require.Equal(t, []string{
		RuleMissingCostCol,
		RuleMissingTypeCol,
		RuleDuplicateCode,
		RuleBlankBudgetCode,
		RuleDuplicateCode,
		RuleOrphanItem,
		RuleUnknownResource,
		RuleUnparsableNumber,
		// Labor assignment references I2, which this budget lacks.
		RuleOrphanItem,
	}, rulesOf(result))

	unparsable := result.Issues[7]
	require.Equal(t, "Asignación_Materiales", unparsable.Sheet)
	require.Equal(t, 1, unparsable.Row)
	require.Equal(t, `[WARNING] Asignación_Materiales, row 1: quantity value "n/a" is not a number and counts as zero`, unparsable.Error())

	out := FormatIssues(result.Issues)
	require.Contains(t, out, "Validation completed with 9 issue(s):")
	require.Contains(t, out, `3. [WARNING] Presupuesto_General, row 2: item code "I1" appears more than once`)
}

func TestValidate_EmptyBudget(t *testing.T) {
	t.Parallel()

	sheets := validSheets()
	sheets["Presupuesto_General"] = sheet.Empty("Presupuesto_General")

	result := Validate(sheets, config.Default())
	require.True(t, result.IsValid)
	require.Equal(t, RuleEmptySheet, result.Issues[0].Rule)
}
