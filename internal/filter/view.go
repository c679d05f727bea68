package filter

import (
	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
)

// SortSpec selects the sort column and direction of a table view.
type SortSpec struct {
	Column    int
	Direction Direction
}

// Query is everything a table view needs: filters, sort and page.
type Query struct {
	Context

	// Sort is optional; nil keeps sheet order.
	Sort *SortSpec

	// Page is 1-based.
	// Default: 1
	Page int

	// PageSize is the number of rows per page.
	// Default: the caller's configured page size.
	PageSize int
}

// View is one page of a filtered, sorted table, ready for rendering.
type View struct {
	Name      string      `json:"name" yaml:"name"`
	Title     string      `json:"title,omitempty" yaml:"title,omitempty"`
	Headers   []string    `json:"headers" yaml:"headers"`
	Rows      []sheet.Row `json:"rows" yaml:"rows"`
	Total     int         `json:"total" yaml:"total"`
	Page      int         `json:"page" yaml:"page"`
	PageSize  int         `json:"pageSize" yaml:"pageSize"`
	PageCount int         `json:"pageCount" yaml:"pageCount"`
}

// Run filters, sorts and paginates s according to q.
func Run(s *sheet.Sheet, q Query) View {
	if s == nil {
		s = sheet.Empty("")
	}
	return RunRows(s.Name, s.Headers, s.Rows, q)
}

// RunRows is Run over an explicit header row and row slice, used for derived
// tables that are not whole sheets.
func RunRows(name string, headers []string, rows []sheet.Row, q Query) View {
	filtered := ApplyRows(headers, rows, q.Context)
	if q.Sort != nil {
		filtered = SortBy(filtered, q.Sort.Column, q.Sort.Direction)
	}

	page := q.Page
	if page == 0 {
		page = 1
	}

	return View{
		Name:      name,
		Headers:   headers,
		Rows:      Paginate(filtered, page, q.PageSize),
		Total:     len(filtered),
		Page:      page,
		PageSize:  q.PageSize,
		PageCount: PageCount(len(filtered), q.PageSize),
	}
}
