package workbook

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/aggregate"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/config"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/filter"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/selection"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xref"
)

// Table names accepted by Session.Table.
const (
	TableBudget              = "presupuesto"
	TableMaterialsCatalog    = "catalogo-materiales"
	TableMaterialsAssignment = "asignacion-materiales"
	TableLaborCatalog        = "catalogo-mano-obra"
	TableLaborAssignment     = "asignacion-mano-obra"

	// Drill-down tables follow the selection.
	TableItemsByMaterial  = "items-by-material"
	TableItemsByLabor     = "items-by-labor"
	TableMaterialsForItem = "materials-for-item"
	TableLaborForItem     = "labor-for-item"
	TableSelectedItems    = "selected-items"
)

var (
	// ErrUnknownTable is returned by Table for a name it does not serve.
	ErrUnknownTable = errors.New("unknown table")

	// ErrNothingSelected is returned by a drill-down table whose selection
	// is empty.
	ErrNothingSelected = errors.New("nothing selected")
)

// Family is one resource family (materials or labor), indexed.
type Family struct {
	Index   *xref.Index
	Catalog *xref.Catalog
}

// Session is one imported workbook together with its indexes and the user's
// selection. A Session is never modified; WithSelection returns a new one that
// shares the workbook and indexes.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Workbook  *Workbook       `json:"-"`
	Materials Family          `json:"-"`
	Labor     Family          `json:"-"`
	Selection selection.State `json:"-"`

	cfg *config.Config
}

// NewSession indexes wb and starts with an empty selection.
func NewSession(wb *Workbook, cfg *config.Config) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Workbook:  wb,
		Materials: Family{
			Index:   xref.NewIndex(wb.MaterialsAssignment),
			Catalog: xref.NewCatalog(wb.MaterialsCatalog),
		},
		Labor: Family{
			Index:   xref.NewIndex(wb.LaborAssignment),
			Catalog: xref.NewCatalog(wb.LaborCatalog),
		},
		Selection: selection.New(),
		cfg:       cfg,
	}
}

// WithSelection returns a copy of s using st.
func (s *Session) WithSelection(st selection.State) *Session {
	next := *s
	next.Selection = st
	return &next
}

// Config returns the configuration the session was built with.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// ItemIDs returns the budget item codes selected by the current selection.
func (s *Session) ItemIDs() xref.Set {
	return s.Selection.ItemIDs(s.Workbook.Budget, s.Materials.Index, s.Labor.Index)
}

// Summary aggregates the selected budget items.
func (s *Session) Summary() *aggregate.Summary {
	return aggregate.Aggregate(s.source(), s.ItemIDs())
}

func (s *Session) source() aggregate.Source {
	wb := s.Workbook
	return aggregate.Source{
		Budget:    wb.Budget,
		Materials: aggregate.Resource{Assignment: wb.MaterialsAssignment, Catalog: s.Materials.Catalog},
		Labor:     aggregate.Resource{Assignment: wb.LaborAssignment, Catalog: s.Labor.Catalog},
		Rules:     s.cfg.ColumnRules(),
		TopN:      s.cfg.Tables.TopN,
	}
}

// filtering reports whether the selection narrows the budget at all.
func (s *Session) filtering() bool {
	switch m := s.Selection.Mode().(type) {
	case selection.ExplicitItems:
		return true
	case selection.ResourceFilters:
		return m.Material != "" || m.Labor != ""
	}
	return false
}

// =============================================================================
// TABLES
// =============================================================================

// Tables lists the table names served by Table.
func Tables() []string {
	names := []string{
		TableBudget, TableMaterialsCatalog, TableMaterialsAssignment,
		TableLaborCatalog, TableLaborAssignment,
		TableItemsByMaterial, TableItemsByLabor,
		TableMaterialsForItem, TableLaborForItem, TableSelectedItems,
	}
	sort.Strings(names)
	return names
}

// Table returns one page of the named table.
//
// PARAMETERS:
//   - name: One of the Table* constants.
//   - q: Filters, sort and page. A zero PageSize uses the configured page
//     size. Configured checklist columns are always treated as checklist
//     columns, so their per-column text filters are ignored.
//
// RETURNS:
//   - The view.
//   - ErrUnknownTable for an unknown name, ErrNothingSelected for a
//     drill-down table without a selection to drill into.
//
// The budget and assignment tables follow the selection: while a material,
// labor or explicit item selection is active, they only show the selected
// items. The budget table also applies the selection's free-text search
// when q has none.
func (s *Session) Table(name string, q filter.Query) (filter.View, error) {
	q = s.prepare(q)
	wb := s.Workbook

	var (
		src   *sheet.Sheet
		rows  []sheet.Row
		title string
	)

	switch name {
	case TableBudget:
		src, rows = wb.Budget, wb.Budget.Rows
		if q.GlobalText == "" {
			q.GlobalText = s.Selection.GlobalText()
		}
		if s.filtering() {
			q.ExternalIDs = s.ItemIDs()
			q.IDColumn = sheet.CodeColumn
		}

	case TableMaterialsCatalog:
		src, rows = wb.MaterialsCatalog, wb.MaterialsCatalog.Rows

	case TableLaborCatalog:
		src, rows = wb.LaborCatalog, wb.LaborCatalog.Rows

	case TableMaterialsAssignment, TableLaborAssignment:
		src = wb.MaterialsAssignment
		if name == TableLaborAssignment {
			src = wb.LaborAssignment
		}
		rows = src.Rows
		if s.filtering() {
			q.ExternalIDs = s.ItemIDs()
			q.IDColumn = sheet.ItemColumn
		}

	case TableItemsByMaterial, TableItemsByLabor:
		family, code := s.Materials, s.Selection.Material()
		if name == TableItemsByLabor {
			family, code = s.Labor, s.Selection.Labor()
		}
		if code == "" {
			return filter.View{}, fmt.Errorf("%s: %w", name, ErrNothingSelected)
		}
		src, rows = wb.Budget, wb.Budget.Rows
		title = family.Catalog.Name(code)
		q.ExternalIDs = family.Index.ItemsForResource(code)
		q.IDColumn = sheet.CodeColumn

	case TableMaterialsForItem, TableLaborForItem:
		family, assignment := s.Materials, wb.MaterialsAssignment
		if name == TableLaborForItem {
			family, assignment = s.Labor, wb.LaborAssignment
		}
		item := s.Selection.Focus()
		if item == "" {
			return filter.View{}, fmt.Errorf("%s: %w", name, ErrNothingSelected)
		}
		src = assignment
		for _, i := range family.Index.RowsForItem(item) {
			rows = append(rows, assignment.Rows[i])
		}
		title = s.itemName(item)

	case TableSelectedItems:
		ids, ok := s.Selection.Mode().(selection.ExplicitItems)
		if !ok {
			return filter.View{}, fmt.Errorf("%s: %w", name, ErrNothingSelected)
		}
		src, rows = wb.Budget, wb.Budget.Rows
		q.ExternalIDs = ids.IDs
		q.IDColumn = sheet.CodeColumn

	default:
		return filter.View{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}

	view := filter.RunRows(name, src.Headers, rows, q)
	view.Title = title
	return view, nil
}

// ChecklistOptions lists the choices of a checklist filter on the named
// table's source sheet.
func (s *Session) ChecklistOptions(table, column string) ([]filter.Option, error) {
	src, err := s.sourceSheet(table)
	if err != nil {
		return nil, err
	}
	return filter.ChecklistOptions(src, column), nil
}

// ChecklistColumns returns the configured checklist headers present in the
// named table.
func (s *Session) ChecklistColumns(table string) ([]string, error) {
	src, err := s.sourceSheet(table)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, col := range s.cfg.Columns.Checklist {
		if src.Column(col) != sheet.NotFound {
			out = append(out, col)
		}
	}
	return out, nil
}

func (s *Session) sourceSheet(table string) (*sheet.Sheet, error) {
	wb := s.Workbook
	switch table {
	case TableBudget, TableItemsByMaterial, TableItemsByLabor, TableSelectedItems:
		return wb.Budget, nil
	case TableMaterialsCatalog:
		return wb.MaterialsCatalog, nil
	case TableLaborCatalog:
		return wb.LaborCatalog, nil
	case TableMaterialsAssignment, TableMaterialsForItem:
		return wb.MaterialsAssignment, nil
	case TableLaborAssignment, TableLaborForItem:
		return wb.LaborAssignment, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
}

// prepare applies configured defaults to q without touching the caller's
// maps.
func (s *Session) prepare(q filter.Query) filter.Query {
	if q.PageSize <= 0 {
		q.PageSize = s.cfg.Tables.PageSize
	}
	if q.Page == 0 {
		q.Page = 1
	}

	checklist := make(map[string]xref.Set, len(q.Checklist)+len(s.cfg.Columns.Checklist))
	for col, values := range q.Checklist {
		checklist[col] = values
	}
	for _, col := range s.cfg.Columns.Checklist {
		if _, ok := checklist[col]; !ok {
			checklist[col] = xref.NewSet()
		}
	}
	q.Checklist = checklist
	return q
}

// itemName returns the description of a budget item, or its code.
func (s *Session) itemName(code string) string {
	for _, row := range s.Workbook.Budget.Rows {
		if row.Key(sheet.CodeColumn) == code {
			if name := row.At(sheet.NameColumn).String(); name != "" {
				return name
			}
			break
		}
	}
	return code
}
