package server

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/selection"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/validation"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/workbook"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/xlsxparser"
)

// =============================================================================
// RESPONSES
// =============================================================================

type sessionResponse struct {
	ID         string             `json:"id"`
	CreatedAt  time.Time          `json:"createdAt"`
	Title      string             `json:"title"`
	Source     string             `json:"source"`
	Counts     sessionCounts      `json:"counts"`
	Tables     []string           `json:"tables"`
	Selection  selectionResponse  `json:"selection"`
	Validation *validation.Result `json:"validation"`
}

type sessionCounts struct {
	BudgetItems         int `json:"budgetItems"`
	Materials           int `json:"materials"`
	MaterialAssignments int `json:"materialAssignments"`
	LaborTypes          int `json:"laborTypes"`
	LaborAssignments    int `json:"laborAssignments"`
}

type selectionResponse struct {
	// Mode is "items" while items are picked by hand, else "resources".
	Mode      string   `json:"mode"`
	Items     []string `json:"items"`
	Material  string   `json:"material"`
	Labor     string   `json:"labor"`
	Focus     string   `json:"focus"`
	Search    string   `json:"search"`
	ItemCount int      `json:"itemCount"`
}

func newSessionResponse(sess *workbook.Session) sessionResponse {
	wb := sess.Workbook
	return sessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Title:     wb.Title,
		Source:    wb.Source,
		Counts: sessionCounts{
			BudgetItems:         wb.Budget.Len(),
			Materials:           sess.Materials.Catalog.Len(),
			MaterialAssignments: wb.MaterialsAssignment.Len(),
			LaborTypes:          sess.Labor.Catalog.Len(),
			LaborAssignments:    wb.LaborAssignment.Len(),
		},
		Tables:     workbook.Tables(),
		Selection:  newSelectionResponse(sess),
		Validation: wb.Validation,
	}
}

func newSelectionResponse(sess *workbook.Session) selectionResponse {
	st := sess.Selection
	resp := selectionResponse{
		Mode:      "resources",
		Items:     st.SelectedItems(),
		Material:  st.Material(),
		Labor:     st.Labor(),
		Focus:     st.Focus(),
		Search:    st.GlobalText(),
		ItemCount: sess.ItemIDs().Len(),
	}
	if _, ok := st.Mode().(selection.ExplicitItems); ok {
		resp.Mode = "items"
	}
	return resp
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// session loads the :id session or answers 404.
func (s *Server) session(c *gin.Context) (*workbook.Session, bool) {
	sess, ok := s.sessions.get(c.Param("id"))
	if !ok {
		fail(c, http.StatusNotFound, errSessionNotFound)
		return nil, false
	}
	return sess, true
}

// =============================================================================
// STATUS
// =============================================================================

// getStatus GET /api/status
func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.sessions.len(),
		"uptime":   time.Since(s.started).Round(time.Second).String(),
	})
}

// =============================================================================
// IMPORT
// =============================================================================

// importRequest is the JSON form of an import: the worksheets already parsed
// by the browser. Cells are strings, numbers or null.
type importRequest struct {
	Source string                      `json:"source"`
	Title  string                      `json:"title"`
	Sheets map[string][][]interface{} `json:"sheets" binding:"required"`
}

// importWorkbook POST /api/import
//
// Accepts either a multipart form with the .xlsx file in the "file" field, or
// a JSON importRequest.
func (s *Server) importWorkbook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadMB<<20)

	var (
		raw *workbook.Raw
		err error
	)
	if strings.HasPrefix(c.ContentType(), "application/json") {
		raw, err = s.readJSONImport(c)
	} else {
		raw, err = s.readUpload(c)
	}
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	result, err := s.importer.Import(raw)
	if err != nil {
		var missing *workbook.MissingSheetsError
		if errors.As(err, &missing) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":         err.Error(),
				"missingSheets": missing.Missing,
				"validation":    result.Validation,
			})
			return
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}

	for _, id := range s.sessions.put(result.Session) {
		s.logger.Info("Dropped session %s to stay within %d sessions", id, s.cfg.Server.MaxSessions)
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": newSessionResponse(result.Session),
		"stats":   result.Stats,
	})
}

func (s *Server) readUpload(c *gin.Context) (*workbook.Raw, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing workbook upload in field \"file\": %w", err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	opts := xlsxparser.Options{TitleSheet: s.cfg.Sheets.Title, TitleCell: s.cfg.Sheets.TitleCell}
	return xlsxparser.ReadWorkbookFrom(file, header.Filename, opts)
}

func (s *Server) readJSONImport(c *gin.Context) (*workbook.Raw, error) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("invalid import request: %w", err)
	}

	source := req.Source
	if source == "" {
		source = "upload.json"
	}
	raw := workbook.NewRaw(source)
	raw.Title = req.Title

	names := make([]string, 0, len(req.Sheets))
	for name := range req.Sheets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := req.Sheets[name]
		rows := make([]sheet.Row, len(values))
		for i, record := range values {
			row := make(sheet.Row, len(record))
			for j, v := range record {
				cell, err := jsonCell(v)
				if err != nil {
					return nil, fmt.Errorf("sheet %q row %d column %d: %w", name, i+1, j+1, err)
				}
				row[j] = cell
			}
			rows[i] = row
		}
		raw.Add(name, rows)
	}
	return raw, nil
}

func jsonCell(v interface{}) (sheet.Cell, error) {
	switch val := v.(type) {
	case nil:
		return sheet.EmptyCell(), nil
	case string:
		return sheet.Str(val), nil
	case float64:
		return sheet.Num(val), nil
	case bool:
		if val {
			return sheet.Str("TRUE"), nil
		}
		return sheet.Str("FALSE"), nil
	default:
		return sheet.Cell{}, fmt.Errorf("unsupported cell value of type %T", v)
	}
}

// =============================================================================
// SESSIONS
// =============================================================================

// getSession GET /api/sessions/:id
func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// deleteSession DELETE /api/sessions/:id
func (s *Server) deleteSession(c *gin.Context) {
	if !s.sessions.delete(c.Param("id")) {
		fail(c, http.StatusNotFound, errSessionNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// =============================================================================
// TABLES
// =============================================================================

// getTable GET /api/sessions/:id/tables/:table
func (s *Server) getTable(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	q, err := parseQuery(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	view, err := sess.Table(c.Param("table"), q)
	if err != nil {
		fail(c, tableErrorStatus(err), err)
		return
	}

	checklist, _ := sess.ChecklistColumns(c.Param("table"))
	c.JSON(http.StatusOK, gin.H{
		"view":             view,
		"checklistColumns": checklist,
	})
}

// getChecklistOptions GET /api/sessions/:id/tables/:table/options?column=TIPO
func (s *Server) getChecklistOptions(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	column := c.Query("column")
	if column == "" {
		fail(c, http.StatusBadRequest, errors.New("query parameter \"column\" is required"))
		return
	}

	opts, err := sess.ChecklistOptions(c.Param("table"), column)
	if err != nil {
		fail(c, tableErrorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": column, "options": opts})
}

func tableErrorStatus(err error) int {
	switch {
	case errors.Is(err, workbook.ErrUnknownTable):
		return http.StatusNotFound
	case errors.Is(err, workbook.ErrNothingSelected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// SELECTION
// =============================================================================

// Selection actions.
const (
	actionSelectItems    = "select-items"
	actionToggleItem     = "toggle-item"
	actionToggleMaterial = "toggle-material"
	actionToggleLabor    = "toggle-labor"
	actionFocusItem      = "focus-item"
	actionSearch         = "search"
	actionReset          = "reset"
)

type selectionRequest struct {
	Action string   `json:"action" binding:"required"`
	Code   string   `json:"code"`
	Codes  []string `json:"codes"`
	Text   string   `json:"text"`
}

// apply returns st changed by the request.
func (r selectionRequest) apply(st selection.State) (selection.State, error) {
	switch r.Action {
	case actionSelectItems:
		return st.SelectItems(r.Codes...), nil
	case actionToggleItem:
		return st.ToggleItem(r.Code), nil
	case actionToggleMaterial:
		return st.ToggleMaterial(r.Code), nil
	case actionToggleLabor:
		return st.ToggleLabor(r.Code), nil
	case actionFocusItem:
		return st.FocusItem(r.Code), nil
	case actionSearch:
		return st.SetGlobalText(r.Text), nil
	case actionReset:
		return st.Reset(), nil
	}
	return st, fmt.Errorf("unknown selection action %q", r.Action)
}

// getSelection GET /api/sessions/:id/selection
func (s *Server) getSelection(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSelectionResponse(sess))
}

// updateSelection POST /api/sessions/:id/selection
func (s *Server) updateSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid selection request: %w", err))
		return
	}

	sess, err := s.sessions.update(c.Param("id"), func(cur *workbook.Session) (*workbook.Session, error) {
		st, err := req.apply(cur.Selection)
		if err != nil {
			return nil, err
		}
		return cur.WithSelection(st), nil
	})
	switch {
	case errors.Is(err, errSessionNotFound):
		fail(c, http.StatusNotFound, err)
		return
	case err != nil:
		fail(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, newSelectionResponse(sess))
}

// =============================================================================
// SUMMARY
// =============================================================================

// getSummary GET /api/sessions/:id/summary
func (s *Server) getSummary(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":   sess.Workbook.Title,
		"summary": sess.Summary(),
	})
}
