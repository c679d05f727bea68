// =============================================================================
// Budget Analyzer - HTTP API
// =============================================================================
//
// This module serves the analyzer to a browser front end as a JSON API.
//
// ROUTES:
//   GET    /api/status                                 server status
//   POST   /api/import                                 import a workbook
//   GET    /api/sessions/:id                           session overview
//   DELETE /api/sessions/:id                           drop a session
//   GET    /api/sessions/:id/tables/:table             one page of a table
//   GET    /api/sessions/:id/tables/:table/options     checklist choices
//   GET    /api/sessions/:id/selection                 current selection
//   POST   /api/sessions/:id/selection                 change the selection
//   GET    /api/sessions/:id/summary                   aggregates
//
// SESSIONS:
//   Every successful import creates a new session with its own ID. Sessions
//   live in memory only; the oldest is dropped once server.max_sessions is
//   reached.
//
// ERRORS:
//   Every error response is {"error": "..."}. Unknown sessions and tables are
//   404, bad requests and unreadable uploads are 400, and a workbook without
//   its required sheets is 422.
//
// =============================================================================

package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/config"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/logging"
	"github.com/ginjaninja78/presupuesto-analyzer/internal/workbook"
)

// Server is the HTTP server.
type Server struct {
	router   *gin.Engine
	cfg      *config.Config
	logger   logging.Logger
	importer *workbook.Importer
	sessions *sessionStore
	started  time.Time
}

// New creates a server with its routes registered. The gin mode is left to
// the caller.
func New(cfg *config.Config, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		router:   gin.New(),
		cfg:      cfg,
		logger:   logger,
		importer: workbook.NewImporter(cfg, logger),
		sessions: newSessionStore(cfg.Server.MaxSessions),
		started:  time.Now(),
	}
	s.router.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), requestLogger(s.logger))

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	s.RegisterRoutes(api)
}

// RegisterRoutes registers the API routes on router.
func (s *Server) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", s.getStatus)
	router.POST("/import", s.importWorkbook)

	sessions := router.Group("/sessions/:id")
	sessions.GET("", s.getSession)
	sessions.DELETE("", s.deleteSession)
	sessions.GET("/tables/:table", s.getTable)
	sessions.GET("/tables/:table/options", s.getChecklistOptions)
	sessions.GET("/selection", s.getSelection)
	sessions.POST("/selection", s.updateSelection)
	sessions.GET("/summary", s.getSummary)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address.
func (s *Server) Run() error {
	s.logger.Info("Listening on %s", s.cfg.Server.Addr)
	return s.router.Run(s.cfg.Server.Addr)
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
