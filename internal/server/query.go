package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/filter"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xref"
)

// maxPageSize bounds the "size" parameter of table requests.
const maxPageSize = 500

// parseQuery reads the table query parameters:
//
//	q=texto            global text filter
//	col[2]=texto       text filter on column 2
//	check[TIPO]=valor  accepted value of a checklist column, repeatable
//	sort=3&dir=desc    sort column index and direction
//	page=2&size=50     1-based page and page size
func parseQuery(c *gin.Context) (filter.Query, error) {
	var q filter.Query
	q.GlobalText = c.Query("q")

	if cols := c.QueryMap("col"); len(cols) > 0 {
		q.ColumnText = make(map[int]string, len(cols))
		for key, text := range cols {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				return q, fmt.Errorf("invalid column filter index %q", key)
			}
			q.ColumnText[idx] = text
		}
	}

	for key, values := range c.Request.URL.Query() {
		if !strings.HasPrefix(key, "check[") || !strings.HasSuffix(key, "]") {
			continue
		}
		column := key[len("check[") : len(key)-1]
		if q.Checklist == nil {
			q.Checklist = make(map[string]xref.Set)
		}
		q.Checklist[column] = filter.NormalizeChecklist(values)
	}

	if raw := c.Query("sort"); raw != "" {
		col, err := strconv.Atoi(raw)
		if err != nil || col < 0 {
			return q, fmt.Errorf("invalid sort column %q", raw)
		}
		q.Sort = &filter.SortSpec{Column: col, Direction: filter.ParseDirection(c.Query("dir"))}
	}

	var err error
	if q.Page, err = positiveInt(c.Query("page")); err != nil {
		return q, fmt.Errorf("invalid page: %w", err)
	}
	if q.PageSize, err = positiveInt(c.Query("size")); err != nil {
		return q, fmt.Errorf("invalid size: %w", err)
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	return q, nil
}

// positiveInt parses an optional positive integer; "" yields 0.
func positiveInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
