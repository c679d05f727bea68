// =============================================================================
// Budget Analyzer - Table Command
// =============================================================================
//
// This file defines the 'table' command, which prints one page of a table of
// an imported workbook with the filters, sort and selection given as flags.
//
// COMMAND USAGE:
//   presupuesto table <workbook> <table> [flags]
//
// TABLES:
//   presupuesto, catalogo-materiales, catalogo-mano-obra,
//   asignacion-materiales, asignacion-mano-obra, items-by-material,
//   items-by-labor, materials-for-item, labor-for-item, selected-items
//
// EXAMPLES:
//   presupuesto table obra.xlsx presupuesto -q hormigon --sort 3 --desc
//   presupuesto table obra.xlsx presupuesto --check TIPO=Estructura
//   presupuesto table obra.xlsx items-by-material --material M-001
//   presupuesto table obra.xlsx presupuesto --options TIPO
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/filter"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/workbook"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xref"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var tableSelection selectionFlags

var (
	tableQuery     string
	tableSort      int
	tableDesc      bool
	tablePage      int
	tableSize      int
	tableColumns   map[string]string
	tableChecks    []string
	tableOptionsOf string
)

// =============================================================================
// TABLE COMMAND DEFINITION
// =============================================================================

var tableCmd = &cobra.Command{
	Use:   "table <workbook> <table>",
	Short: "Print a filtered, sorted page of a workbook table",
	Long: `The table command imports a workbook and prints one page of one of its tables.

Available tables:
  ` + strings.Join(workbook.Tables(), "\n  ") + `

The drill-down tables need a selection: items-by-material needs --material,
items-by-labor needs --labor, the *-for-item tables need --focus and
selected-items needs --items.

With --options, the command lists the choices of a checklist column instead
of printing the table.`,
	Args: cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runTable(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)

	tableSelection.register(tableCmd)

	flags := tableCmd.Flags()
	flags.StringVarP(&tableQuery, "query", "q", "", "Global text filter")
	flags.IntVar(&tableSort, "sort", -1, "Sort by this column index (0-based)")
	flags.BoolVar(&tableDesc, "desc", false, "Sort in descending order")
	flags.IntVar(&tablePage, "page", 1, "Page to print (1-based)")
	flags.IntVar(&tableSize, "size", 0, "Rows per page (default from configuration)")
	flags.StringToStringVar(&tableColumns, "col", nil, "Per-column text filter, as index=text")
	flags.StringArrayVar(&tableChecks, "check", nil, "Accepted checklist value, as Header=value (repeatable)")
	flags.StringVar(&tableOptionsOf, "options", "", "List the checklist choices of this column")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runTable(path, table string) error {
	query, err := buildTableQuery()
	if err != nil {
		return err
	}

	res, err := importWorkbook(path)
	if err != nil {
		return err
	}
	session := res.Session.WithSelection(tableSelection.state())

	if tableOptionsOf != "" {
		opts, err := session.ChecklistOptions(table, tableOptionsOf)
		if err != nil {
			return tableError(table, err)
		}
		return printer.Options(tableOptionsOf, opts)
	}

	logger.Debug("Table %s for %s", table, tableSelection.describe())
	view, err := session.Table(table, query)
	if err != nil {
		return tableError(table, err)
	}
	return printer.View(view)
}

// buildTableQuery turns the table flags into a filter query.
func buildTableQuery() (filter.Query, error) {
	q := filter.Query{Page: tablePage, PageSize: tableSize}
	q.GlobalText = tableQuery

	if tablePage < 1 {
		return q, fmt.Errorf("invalid --page %d: must be positive", tablePage)
	}
	if tableSize < 0 {
		return q, fmt.Errorf("invalid --size %d: must not be negative", tableSize)
	}

	if tableSort >= 0 {
		dir := filter.Asc
		if tableDesc {
			dir = filter.Desc
		}
		q.Sort = &filter.SortSpec{Column: tableSort, Direction: dir}
	}

	if len(tableColumns) > 0 {
		q.ColumnText = make(map[int]string, len(tableColumns))
		for key, text := range tableColumns {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				return q, fmt.Errorf("invalid --col index %q", key)
			}
			q.ColumnText[idx] = text
		}
	}

	if len(tableChecks) > 0 {
		values := make(map[string][]string)
		for _, check := range tableChecks {
			column, value, ok := strings.Cut(check, "=")
			if !ok || column == "" {
				return q, fmt.Errorf("invalid --check %q: want Header=value", check)
			}
			values[column] = append(values[column], value)
		}
		q.Checklist = make(map[string]xref.Set, len(values))
		for column, vs := range values {
			q.Checklist[column] = filter.NormalizeChecklist(vs)
		}
	}
	return q, nil
}

// tableError adds a hint to the errors a user can fix with flags.
func tableError(table string, err error) error {
	switch {
	case errors.Is(err, workbook.ErrUnknownTable):
		return fmt.Errorf("%w (available: %s)", err, strings.Join(workbook.Tables(), ", "))
	case errors.Is(err, workbook.ErrNothingSelected):
		return fmt.Errorf("%w: use --material, --labor, --focus or --items to select what %s shows", err, table)
	}
	return err
}
